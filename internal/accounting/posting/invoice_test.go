package posting

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/meridianfm/meridian-erp/internal/accounting/journals"
	"github.com/meridianfm/meridian-erp/internal/accounting/mappings"
	"github.com/meridianfm/meridian-erp/internal/invoicing"
)

func allocationPeriod() *invoicing.AllocationPeriod {
	periodEnd := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	return &invoicing.AllocationPeriod{
		ID:                31,
		PeriodNumber:      3,
		Amount:            dec("1200.00"),
		PeriodEnd:         &periodEnd,
		RecognitionNumber: "REC-000031",
		Allocation: &invoicing.Allocation{
			ID:              12,
			SiteID:          ptr(4),
			ContractID:      ptr(8),
			NumberOfPeriods: 12,
			Invoice: &invoicing.Invoice{
				ID:       77,
				VendorID: ptr(55),
				Category: "utilities",
				StructuredData: []byte(`{
					"financial_details": {"total_tax_amount": "120.00"},
					"supplier": {"company_name": "Gulf Cooling LLC"},
					"document_info": {"invoice_number": "INV-7781"}
				}`),
			},
		},
	}
}

func TestPostInvoiceAllocation(t *testing.T) {
	env := newTestEnv(t)
	period := allocationPeriod()

	entry, err := env.svc.PostInvoiceAllocation(context.Background(), period, true)
	require.NoError(t, err)
	requireBalanced(t, entry)

	require.Equal(t, journals.SourceInvoice, entry.SourceType)
	require.Equal(t, int64(31), entry.SourceID)
	require.Equal(t, "REC-000031", entry.Reference)
	require.Equal(t, *period.PeriodEnd, entry.EntryDate)
	require.Contains(t, entry.Description, "INV-7781")
	require.Contains(t, entry.Description, "Gulf Cooling LLC")

	require.Len(t, entry.Lines, 3)
	// Expense net of the period's VAT share: 1200 - 120/12.
	require.Equal(t, acctExpense, entry.Lines[0].AccountID)
	require.True(t, entry.Lines[0].Debit.Equal(dec("1190.00")))
	require.Equal(t, ptr(4), entry.Lines[0].SiteID)
	require.Equal(t, ptr(8), entry.Lines[0].ContractID)
	require.Equal(t, ptr(55), entry.Lines[0].AddressBookID)

	require.Equal(t, acctVATInput, entry.Lines[1].AccountID)
	require.True(t, entry.Lines[1].Debit.Equal(dec("10.00")))

	require.Equal(t, acctAP, entry.Lines[2].AccountID)
	require.True(t, entry.Lines[2].Credit.Equal(dec("1200.00")))

	require.True(t, entry.TotalDebit.Equal(dec("1200.00")))
}

func TestPostInvoiceAllocationNoVATData(t *testing.T) {
	env := newTestEnv(t)
	period := allocationPeriod()
	period.Allocation.Invoice.StructuredData = nil

	entry, err := env.svc.PostInvoiceAllocation(context.Background(), period, true)
	require.NoError(t, err)
	requireBalanced(t, entry)
	require.Len(t, entry.Lines, 2)
	require.True(t, entry.Lines[0].Debit.Equal(dec("1200.00")))
}

func TestPostInvoiceAllocationVATFoldsWithoutMapping(t *testing.T) {
	var kept []mappings.AccountMapping
	for _, m := range defaultMappings() {
		if m.TransactionType != mappings.TypeInvoiceVAT {
			kept = append(kept, m)
		}
	}
	env := newTestEnv(t, withMappings(kept))

	entry, err := env.svc.PostInvoiceAllocation(context.Background(), allocationPeriod(), true)
	require.NoError(t, err)
	requireBalanced(t, entry)
	require.Len(t, entry.Lines, 2)
	require.True(t, entry.Lines[0].Debit.Equal(dec("1200.00")))
	require.True(t, entry.Lines[1].Credit.Equal(dec("1200.00")))
}

func TestPostInvoiceAllocationSiteFallsBackToContractSite(t *testing.T) {
	env := newTestEnv(t)
	period := allocationPeriod()
	period.Allocation.SiteID = nil
	period.Allocation.ContractSiteIDs = []int64{17, 18}

	entry, err := env.svc.PostInvoiceAllocation(context.Background(), period, true)
	require.NoError(t, err)
	require.Equal(t, ptr(17), entry.Lines[0].SiteID)
}

func TestPostInvoiceAllocationWithoutInvoice(t *testing.T) {
	env := newTestEnv(t)
	period := allocationPeriod()
	period.Allocation.Invoice = nil

	entry, err := env.svc.PostInvoiceAllocation(context.Background(), period, true)
	require.NoError(t, err)
	require.Nil(t, entry)
	require.Empty(t, env.store.tx.entries)
}

func TestPostInvoiceAllocationMissingExpenseMapping(t *testing.T) {
	env := newTestEnv(t, withMappings(nil))

	entry, err := env.svc.PostInvoiceAllocation(context.Background(), allocationPeriod(), true)
	require.NoError(t, err)
	require.Nil(t, entry)
}
