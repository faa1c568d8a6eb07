package journals

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus enumerates journal entry lifecycle states. The lifecycle
// ends at posted; corrections are reversal entries, never edits.
type EntryStatus string

const (
	EntryStatusDraft  EntryStatus = "draft"
	EntryStatusPosted EntryStatus = "posted"
)

// Source types stamped on auto-generated entries.
const (
	SourceInvoice              = "invoice"
	SourceWorkOrder            = "work_order"
	SourceWorkOrderBilling     = "work_order_billing"
	SourcePettyCash            = "petty_cash"
	SourcePettyCashReplenish   = "petty_cash_replenishment"
	SourcePOReceiving          = "po_receiving"
	SourceStockAdjustment      = "stock_adjustment"
	SourceCycleCountAdjustment = "cycle_count_adjustment"
	SourceGoodsReceipt         = "goods_receipt"
)

// JournalEntry is the header of a balanced double-entry posting.
// Totals are always computed from the lines, never entered directly.
type JournalEntry struct {
	ID              int64
	CompanyID       int64
	EntryNumber     string
	EntryDate       time.Time
	Description     string
	Reference       string
	SourceType      string
	SourceID        int64
	SourceNumber    string
	FiscalPeriodID  *int64
	Status          EntryStatus
	TotalDebit      decimal.Decimal
	TotalCredit     decimal.Decimal
	IsAutoGenerated bool
	CreatedBy       int64
	PostedBy        *int64
	PostedAt        *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Lines []JournalEntryLine
}

// JournalEntryLine carries one side of a posting plus analytical
// dimensions. Exactly one of Debit/Credit is non-zero.
type JournalEntryLine struct {
	ID             int64
	JournalEntryID int64
	LineNumber     int
	AccountID      int64
	Debit          decimal.Decimal
	Credit         decimal.Decimal
	Description    string

	SiteID         *int64
	BusinessUnitID *int64
	ContractID     *int64
	ProjectID      *int64
	WorkOrderID    *int64
	AddressBookID  *int64
}

// ComputeTotals sums the entry's lines into TotalDebit/TotalCredit.
func (e *JournalEntry) ComputeTotals() {
	debit := decimal.Zero
	credit := decimal.Zero
	for _, line := range e.Lines {
		debit = debit.Add(line.Debit)
		credit = credit.Add(line.Credit)
	}
	e.TotalDebit = debit
	e.TotalCredit = credit
}

// Balanced reports whether total debits equal total credits exactly.
func (e *JournalEntry) Balanced() bool {
	return e.TotalDebit.Equal(e.TotalCredit)
}

// AccountBalance accumulates per-period movement for one account under
// one (site, business unit) dimension pair.
type AccountBalance struct {
	ID             int64
	CompanyID      int64
	AccountID      int64
	FiscalPeriodID int64
	SiteID         *int64
	BusinessUnitID *int64
	PeriodDebit    decimal.Decimal
	PeriodCredit   decimal.Decimal
	OpeningBalance decimal.Decimal
	ClosingBalance decimal.Decimal
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// BalanceKey identifies one AccountBalance row.
type BalanceKey struct {
	CompanyID      int64
	AccountID      int64
	FiscalPeriodID int64
	SiteID         *int64
	BusinessUnitID *int64
}
