package fx

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate is a stored, company-scoped conversion rate.
type ExchangeRate struct {
	ID           int64
	CompanyID    int64
	FromCurrency string
	ToCurrency   string
	Rate         decimal.Decimal
	Source       string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
