package fieldservice

import (
	"time"

	"github.com/shopspring/decimal"
)

// WOStatus enumerates work order lifecycle states.
type WOStatus string

const (
	WOStatusOpen       WOStatus = "open"
	WOStatusInProgress WOStatus = "in_progress"
	WOStatusCompleted  WOStatus = "completed"
	WOStatusCancelled  WOStatus = "cancelled"
)

// BillingStatus tracks the billable side of a work order.
type BillingStatus string

const (
	BillingStatusPending BillingStatus = "pending"
	BillingStatusBilled  BillingStatus = "billed"
)

// WorkOrder is the field-service aggregate the posting engine consumes.
// Relations (time entries) are loaded by the caller. The posting engine
// writes back only the actual-cost and billing fields.
type WorkOrder struct {
	ID        int64
	CompanyID int64
	Number    string
	Title     string
	Status    WOStatus

	SiteID              *int64
	ContractID          *int64
	ProjectID           *int64
	ClientAddressBookID *int64

	IsBillable         bool
	BillingStatus      BillingStatus
	LaborMarkupPercent decimal.Decimal
	PartsMarkupPercent decimal.Decimal
	VATRatePercent     decimal.Decimal

	ActualLaborCost decimal.Decimal
	ActualPartsCost decimal.Decimal
	ActualTotalCost decimal.Decimal
	BillableAmount  decimal.Decimal

	CompletedAt *time.Time
	ApprovedAt  *time.Time

	TimeEntries []TimeEntry
}

// TimeEntry is one technician time booking on a work order.
type TimeEntry struct {
	ID          int64
	WorkOrderID int64
	Hours       decimal.Decimal
	HourlyCost  decimal.Decimal
	TotalCost   decimal.Decimal
}

// LaborCost sums the work order's time entry costs.
func (w *WorkOrder) LaborCost() decimal.Decimal {
	total := decimal.Zero
	for _, te := range w.TimeEntries {
		total = total.Add(te.TotalCost)
	}
	return total
}

// CostDate is the journal entry date for completion postings: cost is
// recognized at approval when the order has been approved, otherwise at
// completion.
func (w *WorkOrder) CostDate(fallback time.Time) time.Time {
	if w.ApprovedAt != nil {
		return *w.ApprovedAt
	}
	if w.CompletedAt != nil {
		return *w.CompletedAt
	}
	return fallback
}

// BillableTotal applies the configured markups to actual costs,
// rounded to cents.
func (w *WorkOrder) BillableTotal(laborCost, partsCost decimal.Decimal) decimal.Decimal {
	if !w.IsBillable {
		return decimal.Zero
	}
	one := decimal.NewFromInt(1)
	hundred := decimal.NewFromInt(100)
	billableLabor := laborCost.Mul(one.Add(w.LaborMarkupPercent.Div(hundred)))
	billableParts := partsCost.Mul(one.Add(w.PartsMarkupPercent.Div(hundred)))
	return billableLabor.Add(billableParts).Round(2)
}
