package mappings

import "time"

// Transaction types the posting engine resolves accounts for.
const (
	TypeInvoiceExpense         = "invoice_expense"
	TypeInvoiceVAT             = "invoice_vat"
	TypeWorkOrderLabor         = "work_order_labor"
	TypeWorkOrderParts         = "work_order_parts"
	TypeWorkOrderRevenue       = "work_order_revenue"
	TypeWorkOrderVATOutput     = "work_order_vat_output"
	TypeWorkOrderCOGSLabor     = "work_order_cogs_labor"
	TypeWorkOrderCOGSParts     = "work_order_cogs_parts"
	TypePettyCashExpense       = "petty_cash_expense"
	TypePettyCashReplenishment = "petty_cash_replenishment"
	TypePOReceiving            = "po_receiving"
	TypePOReceivingVAT         = "po_receiving_vat"
	TypeStockAdjustment        = "stock_adjustment"
	TypeCycleCountAdjustment   = "cycle_count_adjustment"
	TypeGoodsReceipt           = "goods_receipt"
	TypeGoodsReceiptVAT        = "goods_receipt_vat"
	TypeGRNExtraCost           = "grn_extra_cost"
	TypeExchangeDifference     = "exchange_difference"
)

// AccountMapping links a (transaction type, category) pair to the debit
// and credit accounts postings should use. Category is optional; a
// mapping with an empty category is the generic fallback for its type.
type AccountMapping struct {
	ID              int64
	CompanyID       int64
	TransactionType string
	Category        string
	DebitAccountID  int64
	CreditAccountID int64
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
