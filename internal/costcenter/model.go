package costcenter

import "time"

// BUType segments business units between P&L and balance-sheet usage.
type BUType string

const (
	BUTypeProfitLoss   BUType = "profit_loss"
	BUTypeBalanceSheet BUType = "balance_sheet"
)

// BusinessUnit is the cost-center dimension, independent of the chart
// of accounts.
type BusinessUnit struct {
	ID        int64
	CompanyID int64
	ParentID  *int64
	Code      string
	Name      string
	Type      BUType
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
