package procurement

import "github.com/shopspring/decimal"

// CostTypeTotal aggregates extra costs of one type.
type CostTypeTotal struct {
	CostType string
	Total    decimal.Decimal
	Count    int
}

// LineAllocation is the per-line view of a landed-cost breakdown.
type LineAllocation struct {
	LineID             int64
	Description        string
	Quantity           decimal.Decimal
	UnitPrice          decimal.Decimal
	LineTotal          decimal.Decimal
	AllocatedExtraCost decimal.Decimal
	LandedUnitCost     decimal.Decimal
	LandedTotalCost    decimal.Decimal
	ExtraCostPerUnit   decimal.Decimal
}

// LandedCostSummary is the read-only cost breakdown for a GRN.
type LandedCostSummary struct {
	GRNID               int64
	GRNNumber           string
	IsImport            bool
	InvoiceTotal        decimal.Decimal
	TotalExtraCosts     decimal.Decimal
	TotalLandedCost     decimal.Decimal
	ExtraCostPercentage decimal.Decimal
	CostsByType         []CostTypeTotal
	Lines               []LineAllocation
}

// Summarize builds the landed-cost breakdown for a loaded GRN.
func Summarize(grn *GoodsReceipt) LandedCostSummary {
	summary := LandedCostSummary{
		GRNID:           grn.ID,
		GRNNumber:       grn.Number,
		IsImport:        grn.IsImport,
		InvoiceTotal:    grn.TotalAmount,
		TotalLandedCost: grn.TotalLandedCost,
	}

	byType := make(map[string]int)
	for _, cost := range grn.ExtraCosts {
		summary.TotalExtraCosts = summary.TotalExtraCosts.Add(cost.Amount)
		idx, ok := byType[cost.CostType]
		if !ok {
			byType[cost.CostType] = len(summary.CostsByType)
			summary.CostsByType = append(summary.CostsByType, CostTypeTotal{CostType: cost.CostType})
			idx = len(summary.CostsByType) - 1
		}
		summary.CostsByType[idx].Total = summary.CostsByType[idx].Total.Add(cost.Amount)
		summary.CostsByType[idx].Count++
	}

	if grn.TotalAmount.IsPositive() {
		summary.ExtraCostPercentage = summary.TotalExtraCosts.
			Div(grn.TotalAmount).Mul(decimal.NewFromInt(100)).Round(2)
	}

	for _, line := range grn.Lines {
		alloc := LineAllocation{
			LineID:             line.ID,
			Description:        line.Description,
			Quantity:           line.QuantityReceived,
			UnitPrice:          line.UnitPrice,
			LineTotal:          line.TotalPrice,
			AllocatedExtraCost: line.AllocatedExtraCost,
			LandedUnitCost:     line.LandedUnitCost,
			LandedTotalCost:    line.LandedTotalCost,
		}
		if line.QuantityReceived.IsPositive() && !line.AllocatedExtraCost.IsZero() {
			alloc.ExtraCostPerUnit = line.AllocatedExtraCost.Div(line.QuantityReceived).Round(4)
		}
		summary.Lines = append(summary.Lines, alloc)
	}
	return summary
}
