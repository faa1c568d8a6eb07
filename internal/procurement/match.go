package procurement

import "github.com/shopspring/decimal"

// matchTolerance allows for rounding when comparing document totals.
var matchTolerance = decimal.NewFromFloat(0.01)

// LineMatch compares one PO line against the accepted GRN amounts
// received against it.
type LineMatch struct {
	POLineID         int64
	Description      string
	QuantityOrdered  decimal.Decimal
	QuantityReceived decimal.Decimal
	POAmount         decimal.Decimal
	GRNAmount        decimal.Decimal
	Variance         decimal.Decimal
	IsMatched        bool
}

// MatchResult is the three-way comparison of PO, goods receipts and
// supplier invoices for one purchase order.
type MatchResult struct {
	POID         int64
	PONumber     string
	POTotal      decimal.Decimal
	GRNTotal     decimal.Decimal
	InvoiceTotal decimal.Decimal
	Variance     decimal.Decimal
	IsMatched    bool
	GRNCount     int
	InvoiceCount int
	Lines        []LineMatch
}

// ThreeWayMatch reconciles a purchase order against its accepted goods
// receipts and linked invoice totals. Only accepted GRNs participate.
func ThreeWayMatch(po *PurchaseOrder, receipts []GoodsReceipt, invoiceTotals []decimal.Decimal) MatchResult {
	result := MatchResult{
		POID:         po.ID,
		PONumber:     po.Number,
		POTotal:      po.TotalAmount,
		InvoiceCount: len(invoiceTotals),
	}

	for _, grn := range receipts {
		if grn.Status != GRNStatusAccepted {
			continue
		}
		result.GRNTotal = result.GRNTotal.Add(grn.TotalAmount)
		result.GRNCount++
	}
	for _, total := range invoiceTotals {
		result.InvoiceTotal = result.InvoiceTotal.Add(total)
	}

	result.Variance = result.POTotal.Sub(result.GRNTotal).Abs().
		Add(result.GRNTotal.Sub(result.InvoiceTotal).Abs())
	result.IsMatched = result.Variance.LessThan(matchTolerance)

	for _, line := range po.Lines {
		grnAmount := decimal.Zero
		for _, grn := range receipts {
			if grn.Status != GRNStatusAccepted {
				continue
			}
			for _, grnLine := range grn.Lines {
				if grnLine.POLineID != nil && *grnLine.POLineID == line.ID {
					grnAmount = grnAmount.Add(grnLine.TotalPrice)
				}
			}
		}
		variance := line.TotalPrice.Sub(grnAmount).Abs()
		result.Lines = append(result.Lines, LineMatch{
			POLineID:         line.ID,
			Description:      line.Description,
			QuantityOrdered:  line.QuantityOrdered,
			QuantityReceived: line.QuantityReceived,
			POAmount:         line.TotalPrice,
			GRNAmount:        grnAmount,
			Variance:         variance,
			IsMatched:        variance.LessThan(matchTolerance),
		})
	}
	return result
}
