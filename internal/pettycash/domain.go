package pettycash

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus enumerates petty-cash transaction states.
type TransactionStatus string

const (
	TransactionStatusPending  TransactionStatus = "pending"
	TransactionStatusApproved TransactionStatus = "approved"
	TransactionStatusRejected TransactionStatus = "rejected"
)

// Transaction is an approved petty-cash spend.
type Transaction struct {
	ID              int64
	CompanyID       int64
	Number          string
	Status          TransactionStatus
	Category        string
	Amount          decimal.Decimal
	Description     string
	TransactionDate *time.Time
	WorkOrderID     *int64
	WorkOrderSiteID *int64
	ContractID      *int64
}

// Replenishment tops the fund back up from cash or bank.
type Replenishment struct {
	ID                int64
	CompanyID         int64
	Number            string
	Amount            decimal.Decimal
	Method            string
	ReferenceNumber   string
	ReplenishmentDate *time.Time
}
