package inventory

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerTransactionType classifies item ledger movements.
type LedgerTransactionType string

const (
	LedgerTypeReceipt     LedgerTransactionType = "receipt"
	LedgerTypeIssue       LedgerTransactionType = "issue"
	LedgerTypeReturn      LedgerTransactionType = "return"
	LedgerTypeAdjustment  LedgerTransactionType = "adjustment"
	LedgerTypeCycleCount  LedgerTransactionType = "cycle_count"
	LedgerTypeTransferIn  LedgerTransactionType = "transfer_in"
	LedgerTypeTransferOut LedgerTransactionType = "transfer_out"
)

// LedgerEntry is one append-only stock movement. Quantity is signed by
// direction. Entries are never updated; corrections are new offsetting
// entries.
type LedgerEntry struct {
	ID              int64
	CompanyID       int64
	ItemID          int64
	WarehouseID     *int64
	TransactionType LedgerTransactionType
	Quantity        decimal.Decimal
	UnitCost        decimal.Decimal
	TotalCost       decimal.Decimal
	WorkOrderID     *int64
	CycleCountID    *int64
	POID            *int64
	GRNID           *int64
	Reference       string
	CreatedBy       int64
	CreatedAt       time.Time
}

// WorkOrderPartsCost nets issued against returned movements for a work
// order, floored at zero so over-returns never produce negative cost.
func WorkOrderPartsCost(entries []LedgerEntry) decimal.Decimal {
	issued := decimal.Zero
	returned := decimal.Zero
	for _, e := range entries {
		switch e.TransactionType {
		case LedgerTypeIssue:
			issued = issued.Add(e.TotalCost.Abs())
		case LedgerTypeReturn:
			returned = returned.Add(e.TotalCost.Abs())
		}
	}
	cost := issued.Sub(returned)
	if cost.IsNegative() {
		return decimal.Zero
	}
	return cost
}
