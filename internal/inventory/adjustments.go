package inventory

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockAdjustment is a manual quantity/value correction. Quantity is
// signed: positive increases stock, negative decreases it.
type StockAdjustment struct {
	ID             int64
	CompanyID      int64
	Number         string
	ItemID         int64
	WarehouseID    *int64
	SiteID         *int64
	Quantity       decimal.Decimal
	UnitCost       decimal.Decimal
	TotalCost      decimal.Decimal
	Reason         string
	AdjustmentDate *time.Time
}

// CycleCountAdjustment is the variance outcome of a completed cycle
// count for one item.
type CycleCountAdjustment struct {
	ID               int64
	CompanyID        int64
	Number           string
	CycleCountID     int64
	ItemID           int64
	WarehouseID      *int64
	SiteID           *int64
	VarianceQuantity decimal.Decimal
	UnitCost         decimal.Decimal
	TotalCost        decimal.Decimal
	CountDate        *time.Time
}
