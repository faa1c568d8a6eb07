package procurement

import (
	"log/slog"

	"github.com/shopspring/decimal"
)

// Allocator distributes a GRN's extra costs across its lines
// proportionally to invoice line value. It mutates only derived fields
// and is idempotent: re-running on unchanged input yields identical
// results, so it is safe to call after any extra-cost add/update/delete.
type Allocator struct {
	logger *slog.Logger
}

func NewAllocator(logger *slog.Logger) *Allocator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Allocator{logger: logger}
}

// Allocate recomputes allocated_extra_cost, landed_unit_cost and
// landed_total_cost on every line, then the header totals. Amounts
// round half-up to 2 decimals; per-unit extras to 4. The last line with
// value takes the remainder so the allocated sum reconciles exactly
// with total extra costs.
//
// A GRN whose lines carry zero total value is degenerate input: the
// allocator logs a warning and leaves the GRN unchanged.
func (a *Allocator) Allocate(grn *GoodsReceipt) {
	totalExtra := decimal.Zero
	for _, cost := range grn.ExtraCosts {
		totalExtra = totalExtra.Add(cost.Amount)
	}

	totalLineValue := decimal.Zero
	for i := range grn.Lines {
		totalLineValue = totalLineValue.Add(grn.Lines[i].TotalPrice)
	}
	if totalLineValue.IsZero() {
		a.logger.Warn("goods receipt has zero total line value, skipping allocation",
			slog.String("grn", grn.Number))
		return
	}

	// Lines with zero value never absorb the remainder, so find the
	// last line that participates in allocation.
	lastIdx := -1
	for i := range grn.Lines {
		if !grn.Lines[i].TotalPrice.IsZero() {
			lastIdx = i
		}
	}

	allocatedSum := decimal.Zero
	for i := range grn.Lines {
		line := &grn.Lines[i]
		if line.TotalPrice.IsZero() {
			line.AllocatedExtraCost = decimal.Zero
			line.LandedUnitCost = line.UnitPrice
			line.LandedTotalCost = line.TotalPrice
			continue
		}

		var allocated decimal.Decimal
		if i == lastIdx {
			allocated = totalExtra.Sub(allocatedSum)
		} else {
			ratio := line.TotalPrice.Div(totalLineValue)
			allocated = totalExtra.Mul(ratio).Round(2)
			allocatedSum = allocatedSum.Add(allocated)
		}
		line.AllocatedExtraCost = allocated

		if line.QuantityReceived.IsPositive() {
			extraPerUnit := allocated.Div(line.QuantityReceived).Round(4)
			line.LandedUnitCost = line.UnitPrice.Add(extraPerUnit)
			line.LandedTotalCost = line.LandedUnitCost.Mul(line.QuantityReceived).Round(2)
		} else {
			line.LandedUnitCost = line.UnitPrice
			line.LandedTotalCost = line.TotalPrice
		}
	}

	grn.TotalExtraCosts = totalExtra
	grn.TotalLandedCost = grn.TotalAmount.Add(totalExtra)
	grn.IsImport = totalExtra.IsPositive()

	a.logger.Info("allocated extra costs",
		slog.String("grn", grn.Number),
		slog.String("total_extra_costs", totalExtra.String()),
		slog.String("total_landed_cost", grn.TotalLandedCost.String()))
}
