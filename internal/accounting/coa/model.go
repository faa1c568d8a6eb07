package coa

import "time"

// NormalBalance tells which side increases an account.
type NormalBalance string

const (
	NormalBalanceDebit  NormalBalance = "debit"
	NormalBalanceCredit NormalBalance = "credit"
)

// AccountType groups accounts and fixes their normal balance.
type AccountType struct {
	ID            int64
	CompanyID     int64
	Code          string
	Name          string
	NormalBalance NormalBalance
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Account is a ledger account. ParentID builds the hierarchy; accounts
// referenced by posted lines are treated as immutable.
type Account struct {
	ID            int64
	CompanyID     int64
	AccountTypeID int64
	ParentID      *int64
	Code          string
	Name          string
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// NormalBalance is denormalized from the account type on load so
	// balance math never needs a second lookup.
	NormalBalance NormalBalance
}

// Company carries the configuration the posting engine reads.
type Company struct {
	ID              int64
	Name            string
	PrimaryCurrency string
}

// BaseCurrency returns the company's configured base currency, falling
// back to the supplied default when unset.
func (c Company) BaseCurrency(fallback string) string {
	if c.PrimaryCurrency != "" {
		return c.PrimaryCurrency
	}
	return fallback
}
