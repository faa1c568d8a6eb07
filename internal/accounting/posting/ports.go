package posting

import (
	"context"
	"time"

	"github.com/meridianfm/meridian-erp/internal/accounting/journals"
	"github.com/meridianfm/meridian-erp/internal/accounting/periods"
	"github.com/meridianfm/meridian-erp/internal/fieldservice"
	"github.com/meridianfm/meridian-erp/internal/inventory"
	"github.com/meridianfm/meridian-erp/internal/procurement"
)

// Store opens the transaction a posting operation runs inside. Either
// the whole posting persists or nothing does.
type Store interface {
	WithTx(ctx context.Context, fn func(context.Context, Tx) error) error
}

// Tx is the transactional storage surface of one posting. It embeds
// the balance updater's port so balance rows change in the same
// transaction as the entry.
type Tx interface {
	journals.BalanceTx

	// LastEntryNumber returns the lexicographically-last entry number
	// with the prefix for the company, or "" when none exists.
	LastEntryNumber(ctx context.Context, companyID int64, prefix string) (string, error)
	// InsertEntry persists the header and assigns its ID. Returns
	// shared.ErrDuplicateEntryNumber on an entry-number collision.
	InsertEntry(ctx context.Context, entry *journals.JournalEntry) error
	InsertLines(ctx context.Context, entryID int64, lines []journals.JournalEntryLine) error
	MarkPosted(ctx context.Context, entryID, postedBy int64, at time.Time) error

	// UpdateWorkOrderBilling writes back the actual-cost and billing
	// fields mutated by the billing operation.
	UpdateWorkOrderBilling(ctx context.Context, wo *fieldservice.WorkOrder) error

	// StampGoodsReceiptPosted persists the receipt's journal reference
	// in the same transaction as the entry; it is the guard that keeps
	// a reloaded receipt from posting twice.
	StampGoodsReceiptPosted(ctx context.Context, grn *procurement.GoodsReceipt) error
}

// PeriodFinder resolves the fiscal period covering an entry date.
type PeriodFinder interface {
	FindForDate(ctx context.Context, companyID int64, date time.Time) (periods.FiscalPeriod, error)
}

// PartsLedger reads the item ledger movements a work order generated.
type PartsLedger interface {
	ListForWorkOrder(ctx context.Context, companyID, workOrderID int64) ([]inventory.LedgerEntry, error)
}
