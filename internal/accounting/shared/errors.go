package shared

import "errors"

var (
	// ErrUnbalanced indicates debit != credit.
	ErrUnbalanced = errors.New("accounting: journal lines must balance")
	// ErrTooFewLines indicates less than two lines.
	ErrTooFewLines = errors.New("accounting: journal requires at least two lines")
	// ErrPeriodNotFound indicates no fiscal period covers the date.
	ErrPeriodNotFound = errors.New("accounting: no open fiscal period for date")
	// ErrJournalNotFound indicates missing entry.
	ErrJournalNotFound = errors.New("accounting: journal entry not found")
	// ErrAccountNotFound indicates missing account.
	ErrAccountNotFound = errors.New("accounting: account not found")
	// ErrCompanyNotFound indicates missing company.
	ErrCompanyNotFound = errors.New("accounting: company not found")
	// ErrRateNotFound indicates no stored exchange rate for the pair.
	ErrRateNotFound = errors.New("accounting: exchange rate not found")
	// ErrDuplicateEntryNumber indicates an entry-number collision.
	ErrDuplicateEntryNumber = errors.New("accounting: duplicate journal entry number")
	// ErrInvalidStatus indicates action can't proceed.
	ErrInvalidStatus = errors.New("accounting: invalid status transition")
)
