package posting

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/meridianfm/meridian-erp/internal/accounting/journals"
	"github.com/meridianfm/meridian-erp/internal/accounting/mappings"
	"github.com/meridianfm/meridian-erp/internal/procurement"
)

// PostPOReceiving records inventory and payable for one received
// purchase-order line quantity. Foreign-currency orders convert to the
// company base currency at the stored rate; any conversion residual is
// posted as exchange difference when that mapping exists.
func (s *Service) PostPOReceiving(ctx context.Context, po *procurement.PurchaseOrder, line *procurement.POLine, quantity decimal.Decimal, postImmediately bool) (*journals.JournalEntry, error) {
	if !quantity.IsPositive() {
		s.logger.Info("no received quantity to post", slog.Int64("po_id", po.ID))
		return nil, nil
	}

	mapping, ok, err := s.resolveMapping(ctx, mappings.TypePOReceiving, "")
	if err != nil || !ok {
		return nil, err
	}

	value := quantity.Mul(line.UnitPrice).Round(2)
	if !value.IsPositive() {
		s.logger.Info("received line has no value", slog.Int64("po_line_id", line.ID))
		return nil, nil
	}

	// Tax follows the header ratio so partial receipts carry their
	// proportional share.
	tax := decimal.Zero
	if po.TaxAmount.IsPositive() && po.Subtotal.IsPositive() {
		tax = value.Mul(po.TaxAmount.Div(po.Subtotal)).Round(2)
	}

	var vatMapping mappings.AccountMapping
	haveVAT := false
	if tax.IsPositive() {
		vatMapping, haveVAT, err = s.mappings.Resolve(ctx, mappings.TypePOReceivingVAT, "")
		if err != nil {
			return nil, err
		}
		if !haveVAT {
			s.logger.Warn("no receiving VAT mapping, folding tax into inventory value",
				slog.Int64("po_id", po.ID))
			tax = decimal.Zero
		}
	}

	rate, err := s.rates.Rate(ctx, s.company.ID, po.Currency, s.baseCurrency())
	if err != nil {
		return nil, err
	}
	baseValue := value.Mul(rate).Round(2)
	baseTax := tax.Mul(rate).Round(2)
	baseGross := value.Add(tax).Mul(rate).Round(2)

	// Rounding the legs separately can leave cents against the gross
	// payable. Post the residual as exchange difference when mapped,
	// otherwise absorb it into the payable.
	residual := baseGross.Sub(baseValue).Sub(baseTax)
	var diffMapping mappings.AccountMapping
	haveDiff := false
	if !residual.IsZero() {
		diffMapping, haveDiff, err = s.mappings.Resolve(ctx, mappings.TypeExchangeDifference, "")
		if err != nil {
			return nil, err
		}
		if !haveDiff {
			baseGross = baseValue.Add(baseTax)
		}
	}

	var buID *int64
	if po.WarehouseID != nil {
		buID, err = s.costCenters.ForWarehouse(ctx, *po.WarehouseID)
		if err != nil {
			return nil, err
		}
	}

	entryDate := s.now()

	var entry *journals.JournalEntry
	err = s.run(ctx, func(ctx context.Context, tx Tx) error {
		e, err := s.newEntry(ctx, entryDate)
		if err != nil {
			return err
		}
		e.Description = fmt.Sprintf("PO receiving - %s", po.Number)
		e.Reference = po.Number
		e.SourceType = journals.SourcePOReceiving
		e.SourceID = line.ID
		e.SourceNumber = po.Number

		e.Lines = append(e.Lines, journals.JournalEntryLine{
			AccountID:      mapping.DebitAccountID,
			Debit:          baseValue,
			Description:    fmt.Sprintf("Inventory received - %s", line.Description),
			SiteID:         po.SiteID,
			BusinessUnitID: buID,
			ContractID:     po.ContractID,
			AddressBookID:  po.VendorID,
		})
		if baseTax.IsPositive() && haveVAT {
			e.Lines = append(e.Lines, journals.JournalEntryLine{
				AccountID:      vatMapping.DebitAccountID,
				Debit:          baseTax,
				Description:    "VAT Input",
				SiteID:         po.SiteID,
				BusinessUnitID: buID,
				AddressBookID:  po.VendorID,
			})
		}
		if !residual.IsZero() && haveDiff {
			diffLine := journals.JournalEntryLine{
				Description:    "Exchange difference",
				SiteID:         po.SiteID,
				BusinessUnitID: buID,
			}
			if residual.IsPositive() {
				diffLine.AccountID = diffMapping.DebitAccountID
				diffLine.Debit = residual
			} else {
				diffLine.AccountID = diffMapping.CreditAccountID
				diffLine.Credit = residual.Neg()
			}
			e.Lines = append(e.Lines, diffLine)
		}
		e.Lines = append(e.Lines, journals.JournalEntryLine{
			AccountID:      mapping.CreditAccountID,
			Credit:         baseGross,
			Description:    fmt.Sprintf("Payable - %s", po.Number),
			SiteID:         po.SiteID,
			BusinessUnitID: buID,
			AddressBookID:  po.VendorID,
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
	s.logger.Info("created PO receiving entry",
		slog.String("entry_number", entry.EntryNumber),
		slog.Int64("po_id", po.ID),
		slog.Int64("po_line_id", line.ID))
	return entry, nil
}
