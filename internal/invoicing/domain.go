package invoicing

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceData is the typed view of a processed invoice's extracted
// fields. All fields are optional; absent data reads as zero values,
// which posting treats as "no tax data / unknown supplier".
type InvoiceData struct {
	FinancialDetails struct {
		TotalTaxAmount decimal.Decimal `json:"total_tax_amount"`
	} `json:"financial_details"`
	Supplier struct {
		CompanyName string `json:"company_name"`
	} `json:"supplier"`
	DocumentInfo struct {
		InvoiceNumber string `json:"invoice_number"`
	} `json:"document_info"`
}

// ParseInvoiceData decodes the stored extraction payload. Malformed or
// empty payloads yield the zero value rather than an error.
func ParseInvoiceData(raw []byte) InvoiceData {
	var data InvoiceData
	if len(raw) == 0 {
		return data
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return InvoiceData{}
	}
	return data
}

// Invoice is a supplier invoice recognized over allocation periods.
type Invoice struct {
	ID             int64
	CompanyID      int64
	VendorID       *int64
	Category       string
	TotalAmount    decimal.Decimal
	StructuredData []byte
}

// Allocation spreads an invoice across periods and dimensions.
type Allocation struct {
	ID              int64
	InvoiceID       int64
	SiteID          *int64
	ContractID      *int64
	ProjectID       *int64
	NumberOfPeriods int

	Invoice *Invoice
	// ContractSiteIDs holds the contract's sites, loaded by the
	// caller, for the first-contract-site fallback.
	ContractSiteIDs []int64
}

// AllocationPeriod is one recognized slice of an allocation.
type AllocationPeriod struct {
	ID                int64
	AllocationID      int64
	PeriodNumber      int
	Amount            decimal.Decimal
	PeriodEnd         *time.Time
	RecognitionNumber string

	Allocation *Allocation
}

// EffectiveSiteID returns the allocation's site, falling back to the
// first contract site.
func (a *Allocation) EffectiveSiteID() *int64 {
	if a.SiteID != nil {
		return a.SiteID
	}
	if len(a.ContractSiteIDs) > 0 {
		id := a.ContractSiteIDs[0]
		return &id
	}
	return nil
}
