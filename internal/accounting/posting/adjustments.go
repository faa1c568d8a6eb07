package posting

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meridianfm/meridian-erp/internal/accounting/journals"
	"github.com/meridianfm/meridian-erp/internal/accounting/mappings"
	"github.com/meridianfm/meridian-erp/internal/inventory"
)

// PostStockAdjustment records the value side of a manual stock
// correction. Positive quantities debit inventory, negative quantities
// debit the adjustment expense. Zero-value adjustments produce no
// entry.
func (s *Service) PostStockAdjustment(ctx context.Context, adj *inventory.StockAdjustment, postImmediately bool) (*journals.JournalEntry, error) {
	return s.postAdjustment(ctx, adjustmentPosting{
		txType:      mappings.TypeStockAdjustment,
		sourceType:  journals.SourceStockAdjustment,
		sourceID:    adj.ID,
		number:      adj.Number,
		description: fmt.Sprintf("Stock adjustment - %s", adj.Reason),
		quantity:    adj.Quantity,
		totalCost:   adj.TotalCost,
		siteID:      adj.SiteID,
		warehouseID: adj.WarehouseID,
		date:        adj.AdjustmentDate,
	}, postImmediately)
}

// PostCycleCountAdjustment records a cycle count variance. It uses the
// cycle-count mapping when configured, else the generic stock
// adjustment mapping.
func (s *Service) PostCycleCountAdjustment(ctx context.Context, adj *inventory.CycleCountAdjustment, postImmediately bool) (*journals.JournalEntry, error) {
	return s.postAdjustment(ctx, adjustmentPosting{
		txType:         mappings.TypeCycleCountAdjustment,
		fallbackTxType: mappings.TypeStockAdjustment,
		sourceType:     journals.SourceCycleCountAdjustment,
		sourceID:       adj.ID,
		number:         adj.Number,
		description:    fmt.Sprintf("Cycle count variance - %s", adj.Number),
		quantity:       adj.VarianceQuantity,
		totalCost:      adj.TotalCost,
		siteID:         adj.SiteID,
		warehouseID:    adj.WarehouseID,
		date:           adj.CountDate,
	}, postImmediately)
}

type adjustmentPosting struct {
	txType         string
	fallbackTxType string
	sourceType     string
	sourceID       int64
	number         string
	description    string
	quantity       decimal.Decimal
	totalCost      decimal.Decimal
	siteID         *int64
	warehouseID    *int64
	date           *time.Time
}

func (s *Service) postAdjustment(ctx context.Context, p adjustmentPosting, postImmediately bool) (*journals.JournalEntry, error) {
	cost := p.totalCost.Abs()
	if cost.IsZero() {
		s.logger.Info("adjustment has no value to post",
			slog.String("source_type", p.sourceType),
			slog.Int64("source_id", p.sourceID))
		return nil, nil
	}

	mapping, ok, err := s.mappings.Resolve(ctx, p.txType, "")
	if err != nil {
		return nil, err
	}
	if !ok && p.fallbackTxType != "" {
		mapping, ok, err = s.mappings.Resolve(ctx, p.fallbackTxType, "")
		if err != nil {
			return nil, err
		}
	}
	if !ok {
		s.logger.Warn("cannot post: missing account mapping",
			slog.String("transaction_type", p.txType))
		return nil, nil
	}

	var buID *int64
	if p.warehouseID != nil {
		buID, err = s.costCenters.ForWarehouse(ctx, *p.warehouseID)
		if err != nil {
			return nil, err
		}
	}

	// The mapping is stated for the increase direction. Decreases swap
	// the sides.
	debitAccount, creditAccount := mapping.DebitAccountID, mapping.CreditAccountID
	if p.quantity.IsNegative() {
		debitAccount, creditAccount = creditAccount, debitAccount
	}

	entryDate := s.now()
	if p.date != nil {
		entryDate = *p.date
	}

	var entry *journals.JournalEntry
	err = s.run(ctx, func(ctx context.Context, tx Tx) error {
		e, err := s.newEntry(ctx, entryDate)
		if err != nil {
			return err
		}
		e.Description = p.description
		e.Reference = p.number
		e.SourceType = p.sourceType
		e.SourceID = p.sourceID
		e.SourceNumber = p.number

		e.Lines = append(e.Lines, journals.JournalEntryLine{
			AccountID:      debitAccount,
			Debit:          cost,
			Description:    p.description,
			SiteID:         p.siteID,
			BusinessUnitID: buID,
		}, journals.JournalEntryLine{
			AccountID:      creditAccount,
			Credit:         cost,
			Description:    p.description,
			SiteID:         p.siteID,
			BusinessUnitID: buID,
		})

		if err := s.finalize(ctx, tx, &e, postImmediately); err != nil {
			return err
		}
		entry = &e
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("created inventory adjustment entry",
		slog.String("entry_number", entry.EntryNumber),
		slog.String("source_type", p.sourceType),
		slog.Int64("source_id", p.sourceID))
	return entry, nil
}
