package procurement

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchase order lifecycle statuses.
type POStatus string

const (
	POStatusDraft            POStatus = "draft"
	POStatusSent             POStatus = "sent"
	POStatusAcknowledged     POStatus = "acknowledged"
	POStatusPartiallyReceived POStatus = "partially_received"
	POStatusReceived         POStatus = "received"
	POStatusCancelled        POStatus = "cancelled"
)

// Goods receipt statuses.
type GRNStatus string

const (
	GRNStatusDraft             GRNStatus = "draft"
	GRNStatusPendingInspection GRNStatus = "pending_inspection"
	GRNStatusAccepted          GRNStatus = "accepted"
	GRNStatusCancelled         GRNStatus = "cancelled"
)

// Extra cost types recognized on imports.
const (
	CostTypeFreight   = "freight"
	CostTypeDuty      = "duty"
	CostTypeInsurance = "insurance"
	CostTypeHandling  = "handling"
	CostTypeOther     = "other"
)

// PurchaseOrder header.
type PurchaseOrder struct {
	ID           int64
	CompanyID    int64
	Number       string
	VendorID     *int64
	WarehouseID  *int64
	SiteID       *int64
	ContractID   *int64
	Currency     string
	ExchangeRate decimal.Decimal
	Subtotal     decimal.Decimal
	TaxAmount    decimal.Decimal
	TotalAmount  decimal.Decimal
	Status       POStatus
	OrderDate    time.Time

	Lines []POLine
}

// POLine is one ordered item.
type POLine struct {
	ID               int64
	POID             int64
	ItemID           *int64
	Description      string
	Unit             string
	QuantityOrdered  decimal.Decimal
	QuantityReceived decimal.Decimal
	UnitPrice        decimal.Decimal
	TotalPrice       decimal.Decimal
}

// GoodsReceipt is a GRN header. The landed-cost fields are derived and
// recomputed on every extra-cost change.
type GoodsReceipt struct {
	ID              int64
	CompanyID       int64
	Number          string
	POID            int64
	WarehouseID     *int64
	VendorID        *int64
	Currency        string
	ExchangeRate    decimal.Decimal
	TotalAmount     decimal.Decimal
	TotalExtraCosts decimal.Decimal
	TotalLandedCost decimal.Decimal
	IsImport        bool
	Status          GRNStatus
	ReceiptDate     time.Time
	JournalEntryID  *int64
	PostedBy        *int64
	PostedAt        *time.Time

	Lines      []GoodsReceiptLine
	ExtraCosts []GoodsReceiptExtraCost

	PurchaseOrder *PurchaseOrder
}

// GoodsReceiptLine carries invoice-basis pricing plus derived landed
// figures filled in by the allocator.
type GoodsReceiptLine struct {
	ID               int64
	GRNID            int64
	POLineID         *int64
	ItemID           *int64
	Description      string
	QuantityReceived decimal.Decimal
	QuantityAccepted decimal.Decimal
	UnitPrice        decimal.Decimal
	TotalPrice       decimal.Decimal

	AllocatedExtraCost decimal.Decimal
	LandedUnitCost     decimal.Decimal
	LandedTotalCost    decimal.Decimal
}

// GoodsReceiptExtraCost is an immutable incidental-cost fact (freight
// bill, duty assessment) attached to a GRN.
type GoodsReceiptExtraCost struct {
	ID          int64
	GRNID       int64
	CostType    string
	Description string
	Amount      decimal.Decimal
	CreatedAt   time.Time
}

// EffectiveUnitCost is the cost inventory and posting should use:
// the landed unit cost when present and positive, else the plain
// invoice unit price.
func (l GoodsReceiptLine) EffectiveUnitCost() decimal.Decimal {
	if l.LandedUnitCost.IsPositive() {
		return l.LandedUnitCost
	}
	return l.UnitPrice
}

// EffectiveTotalCost mirrors EffectiveUnitCost for line totals.
func (l GoodsReceiptLine) EffectiveTotalCost() decimal.Decimal {
	if l.LandedTotalCost.IsPositive() {
		return l.LandedTotalCost
	}
	return l.TotalPrice
}
