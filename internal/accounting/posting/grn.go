package posting

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/meridianfm/meridian-erp/internal/accounting/journals"
	"github.com/meridianfm/meridian-erp/internal/accounting/mappings"
	"github.com/meridianfm/meridian-erp/internal/procurement"
)

// PostGoodsReceipt capitalizes an accepted goods receipt: inventory at
// landed cost, VAT input per the order's tax ratio, the supplier
// payable for the invoice value, and one accrual per extra-cost type.
// Foreign-currency receipts convert to the company base currency leg
// by leg; a rounding residual posts as exchange difference when that
// mapping exists, otherwise it folds into the payable.
func (s *Service) PostGoodsReceipt(ctx context.Context, grn *procurement.GoodsReceipt, postImmediately bool) (*journals.JournalEntry, error) {
	if grn.Status != procurement.GRNStatusAccepted {
		s.logger.Warn("goods receipt not accepted, skipping posting",
			slog.Int64("grn_id", grn.ID),
			slog.String("status", string(grn.Status)))
		return nil, nil
	}
	if grn.JournalEntryID != nil {
		s.logger.Info("goods receipt already posted", slog.Int64("grn_id", grn.ID))
		return nil, nil
	}

	invoiceValue := decimal.Zero
	landedValue := decimal.Zero
	for _, line := range grn.Lines {
		invoiceValue = invoiceValue.Add(line.TotalPrice)
		landedValue = landedValue.Add(line.EffectiveTotalCost())
	}
	if !landedValue.IsPositive() {
		s.logger.Info("goods receipt has no value to post", slog.Int64("grn_id", grn.ID))
		return nil, nil
	}

	mapping, ok, err := s.resolveMapping(ctx, mappings.TypeGoodsReceipt, "")
	if err != nil || !ok {
		return nil, err
	}

	tax := decimal.Zero
	if po := grn.PurchaseOrder; po != nil && po.TaxAmount.IsPositive() && po.Subtotal.IsPositive() {
		tax = invoiceValue.Mul(po.TaxAmount.Div(po.Subtotal)).Round(2)
	}
	var vatMapping mappings.AccountMapping
	haveVAT := false
	if tax.IsPositive() {
		vatMapping, haveVAT, err = s.mappings.Resolve(ctx, mappings.TypeGoodsReceiptVAT, "")
		if err != nil {
			return nil, err
		}
		if !haveVAT {
			s.logger.Warn("no goods receipt VAT mapping, skipping VAT leg",
				slog.Int64("grn_id", grn.ID))
			tax = decimal.Zero
		}
	}

	// Extra costs accrue per type so freight and duty clear against
	// their own invoices.
	extraByType := make(map[string]decimal.Decimal)
	for _, ec := range grn.ExtraCosts {
		extraByType[ec.CostType] = extraByType[ec.CostType].Add(ec.Amount)
	}
	costTypes := make([]string, 0, len(extraByType))
	for ct := range extraByType {
		costTypes = append(costTypes, ct)
	}
	sort.Strings(costTypes)

	rate, err := s.rates.Rate(ctx, s.company.ID, grn.Currency, s.baseCurrency())
	if err != nil {
		return nil, err
	}
	convert := func(d decimal.Decimal) decimal.Decimal {
		return d.Mul(rate).Round(2)
	}

	var buID *int64
	if grn.WarehouseID != nil {
		buID, err = s.costCenters.ForWarehouse(ctx, *grn.WarehouseID)
		if err != nil {
			return nil, err
		}
	}

	baseTax := convert(tax)
	basePayable := convert(invoiceValue.Add(tax))

	entryDate := grn.ReceiptDate

	var entry *journals.JournalEntry
	err = s.run(ctx, func(ctx context.Context, tx Tx) error {
		e, err := s.newEntry(ctx, entryDate)
		if err != nil {
			return err
		}
		e.Description = fmt.Sprintf("Goods receipt - %s", grn.Number)
		e.Reference = grn.Number
		e.SourceType = journals.SourceGoodsReceipt
		e.SourceID = grn.ID
		e.SourceNumber = grn.Number

		totalDebits := decimal.Zero
		for _, line := range grn.Lines {
			amount := convert(line.EffectiveTotalCost())
			if !amount.IsPositive() {
				continue
			}
			totalDebits = totalDebits.Add(amount)
			e.Lines = append(e.Lines, journals.JournalEntryLine{
				AccountID:      mapping.DebitAccountID,
				Debit:          amount,
				Description:    fmt.Sprintf("Inventory - %s", line.Description),
				BusinessUnitID: buID,
				AddressBookID:  grn.VendorID,
			})
		}
		if baseTax.IsPositive() && haveVAT {
			totalDebits = totalDebits.Add(baseTax)
			e.Lines = append(e.Lines, journals.JournalEntryLine{
				AccountID:      vatMapping.DebitAccountID,
				Debit:          baseTax,
				Description:    "VAT Input",
				BusinessUnitID: buID,
				AddressBookID:  grn.VendorID,
			})
		}

		totalCredits := basePayable
		e.Lines = append(e.Lines, journals.JournalEntryLine{
			AccountID:      mapping.CreditAccountID,
			Credit:         basePayable,
			Description:    fmt.Sprintf("Payable - %s", grn.Number),
			BusinessUnitID: buID,
			AddressBookID:  grn.VendorID,
		})
		for _, ct := range costTypes {
			amount := convert(extraByType[ct])
			if !amount.IsPositive() {
				continue
			}
			ecMapping, ecOK, err := s.mappings.Resolve(ctx, mappings.TypeGRNExtraCost, ct)
			if err != nil {
				return err
			}
			creditAccount := mapping.CreditAccountID
			if ecOK {
				creditAccount = ecMapping.CreditAccountID
			} else {
				s.logger.Warn("no extra cost mapping, accruing against payable",
					slog.String("cost_type", ct),
					slog.Int64("grn_id", grn.ID))
			}
			totalCredits = totalCredits.Add(amount)
			e.Lines = append(e.Lines, journals.JournalEntryLine{
				AccountID:      creditAccount,
				Credit:         amount,
				Description:    fmt.Sprintf("Accrued %s - %s", ct, grn.Number),
				BusinessUnitID: buID,
			})
		}

		// Per-leg rounding in foreign currency can leave cents open.
		residual := totalDebits.Sub(totalCredits)
		if !residual.IsZero() {
			diffMapping, diffOK, err := s.mappings.Resolve(ctx, mappings.TypeExchangeDifference, "")
			if err != nil {
				return err
			}
			if diffOK {
				diffLine := journals.JournalEntryLine{
					Description:    "Exchange difference",
					BusinessUnitID: buID,
				}
				if residual.IsPositive() {
					diffLine.AccountID = diffMapping.CreditAccountID
					diffLine.Credit = residual
				} else {
					diffLine.AccountID = diffMapping.DebitAccountID
					diffLine.Debit = residual.Neg()
				}
				e.Lines = append(e.Lines, diffLine)
			} else {
				// Adjust the payable leg in place.
				for i := range e.Lines {
					if e.Lines[i].Credit.Equal(basePayable) && e.Lines[i].AccountID == mapping.CreditAccountID {
						e.Lines[i].Credit = basePayable.Add(residual)
						break
					}
				}
			}
		}

		if err := s.finalize(ctx, tx, &e, postImmediately); err != nil {
			return err
		}
		grn.JournalEntryID = &e.ID
		if e.PostedAt != nil {
			grn.PostedBy = e.PostedBy
			grn.PostedAt = e.PostedAt
		}
		if err := tx.StampGoodsReceiptPosted(ctx, grn); err != nil {
			return err
		}
		entry = &e
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("created goods receipt entry",
		slog.String("entry_number", entry.EntryNumber),
		slog.Int64("grn_id", grn.ID),
		slog.String("landed_value", landedValue.String()))
	return entry, nil
}
