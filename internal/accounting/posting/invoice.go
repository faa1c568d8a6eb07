package posting

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/meridianfm/meridian-erp/internal/accounting/journals"
	"github.com/meridianfm/meridian-erp/internal/accounting/mappings"
	"github.com/meridianfm/meridian-erp/internal/invoicing"
)

// PostInvoiceAllocation creates the recognition entry for one invoice
// allocation period: expense net of VAT plus VAT input against the
// payable for the full period amount. Returns nil when the allocation
// has no invoice or no usable account mapping.
func (s *Service) PostInvoiceAllocation(ctx context.Context, period *invoicing.AllocationPeriod, postImmediately bool) (*journals.JournalEntry, error) {
	allocation := period.Allocation
	if allocation == nil || allocation.Invoice == nil {
		s.logger.Warn("no invoice loaded for allocation period", slog.Int64("period_id", period.ID))
		return nil, nil
	}
	invoice := allocation.Invoice

	siteID := allocation.EffectiveSiteID()
	data := invoicing.ParseInvoiceData(invoice.StructuredData)

	category := invoice.Category
	if category == "" {
		category = "expense"
	}
	mapping, ok, err := s.resolveMapping(ctx, mappings.TypeInvoiceExpense, category)
	if err != nil || !ok {
		return nil, err
	}

	amount := period.Amount
	vat := decimal.Zero
	totalTax := data.FinancialDetails.TotalTaxAmount
	if totalTax.IsPositive() && allocation.NumberOfPeriods > 0 {
		vat = totalTax.Div(decimal.NewFromInt(int64(allocation.NumberOfPeriods))).Round(2)
	}

	// A VAT amount with no VAT mapping folds into the expense line;
	// the entry must stay balanced.
	var vatMapping mappings.AccountMapping
	haveVAT := false
	if vat.IsPositive() {
		vatMapping, haveVAT, err = s.mappings.Resolve(ctx, mappings.TypeInvoiceVAT, "")
		if err != nil {
			return nil, err
		}
		if !haveVAT {
			s.logger.Warn("no VAT input mapping, folding VAT into expense",
				slog.String("category", category))
			vat = decimal.Zero
		}
	}

	supplier := data.Supplier.CompanyName
	if supplier == "" {
		supplier = "Unknown"
	}

	entryDate := s.now()
	if period.PeriodEnd != nil {
		entryDate = *period.PeriodEnd
	}

	var entry *journals.JournalEntry
	err = s.run(ctx, func(ctx context.Context, tx Tx) error {
		e, err := s.newEntry(ctx, entryDate)
		if err != nil {
			return err
		}
		e.Description = fmt.Sprintf("Invoice %s - %s - Period %d", data.DocumentInfo.InvoiceNumber, supplier, period.PeriodNumber)
		e.Reference = period.RecognitionNumber
		e.SourceType = journals.SourceInvoice
		e.SourceID = period.ID
		e.SourceNumber = fmt.Sprintf("INV-%d/P%d", invoice.ID, period.PeriodNumber)

		e.Lines = append(e.Lines, journals.JournalEntryLine{
			AccountID:     mapping.DebitAccountID,
			Debit:         amount.Sub(vat),
			Description:   fmt.Sprintf("Invoice expense - %s", category),
			SiteID:        siteID,
			ContractID:    allocation.ContractID,
			ProjectID:     allocation.ProjectID,
			AddressBookID: invoice.VendorID,
		})
		if vat.IsPositive() && haveVAT {
			e.Lines = append(e.Lines, journals.JournalEntryLine{
				AccountID:     vatMapping.DebitAccountID,
				Debit:         vat,
				Description:   "VAT Input",
				SiteID:        siteID,
				AddressBookID: invoice.VendorID,
			})
		}
		e.Lines = append(e.Lines, journals.JournalEntryLine{
			AccountID:     mapping.CreditAccountID,
			Credit:        amount,
			Description:   fmt.Sprintf("Payable to %s", supplier),
			SiteID:        siteID,
			AddressBookID: invoice.VendorID,
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
	s.logger.Info("created journal entry for allocation period",
		slog.String("entry_number", entry.EntryNumber),
		slog.Int64("period_id", period.ID))
	return entry, nil
}
