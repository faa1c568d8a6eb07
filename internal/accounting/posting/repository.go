package posting

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridianfm/meridian-erp/internal/accounting/coa"
	"github.com/meridianfm/meridian-erp/internal/accounting/journals"
	"github.com/meridianfm/meridian-erp/internal/accounting/shared"
	"github.com/meridianfm/meridian-erp/internal/fieldservice"
	"github.com/meridianfm/meridian-erp/internal/platform/db"
	"github.com/meridianfm/meridian-erp/internal/procurement"
)

// PgStore is the pgx-backed posting store. Each posting runs inside a
// RepeatableRead transaction.
type PgStore struct {
	pool *pgxpool.Pool
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

func (s *PgStore) WithTx(ctx context.Context, fn func(context.Context, Tx) error) error {
	return db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(ctx, &pgTx{tx: tx})
	})
}

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) LastEntryNumber(ctx context.Context, companyID int64, prefix string) (string, error) {
	var number string
	err := t.tx.QueryRow(ctx, `
		SELECT entry_number FROM journal_entries
		WHERE company_id=$1 AND entry_number LIKE $2 || '%'
		ORDER BY entry_number DESC LIMIT 1
		FOR UPDATE`, companyID, prefix).Scan(&number)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return number, err
}

func (t *pgTx) InsertEntry(ctx context.Context, entry *journals.JournalEntry) error {
	err := t.tx.QueryRow(ctx, `
		INSERT INTO journal_entries (
			company_id, entry_number, entry_date, description, reference,
			source_type, source_id, source_number, fiscal_period_id, status,
			total_debit, total_credit, is_auto_generated, created_by,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,now(),now())
		RETURNING id`,
		entry.CompanyID, entry.EntryNumber, entry.EntryDate, entry.Description, entry.Reference,
		entry.SourceType, entry.SourceID, entry.SourceNumber, entry.FiscalPeriodID, entry.Status,
		entry.TotalDebit, entry.TotalCredit, entry.IsAutoGenerated, entry.CreatedBy,
	).Scan(&entry.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return shared.ErrDuplicateEntryNumber
		}
		return err
	}
	return nil
}

func (t *pgTx) InsertLines(ctx context.Context, entryID int64, lines []journals.JournalEntryLine) error {
	batch := &pgx.Batch{}
	for _, line := range lines {
		batch.Queue(`
			INSERT INTO journal_entry_lines (
				journal_entry_id, line_number, account_id, debit, credit, description,
				site_id, business_unit_id, contract_id, project_id, work_order_id, address_book_id
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
			entryID, line.LineNumber, line.AccountID, line.Debit, line.Credit, line.Description,
			line.SiteID, line.BusinessUnitID, line.ContractID, line.ProjectID, line.WorkOrderID, line.AddressBookID)
	}
	return t.tx.SendBatch(ctx, batch).Close()
}

func (t *pgTx) MarkPosted(ctx context.Context, entryID, postedBy int64, at time.Time) error {
	tag, err := t.tx.Exec(ctx, `
		UPDATE journal_entries
		SET status='posted', posted_by=$2, posted_at=$3, updated_at=now()
		WHERE id=$1 AND status='draft'`, entryID, postedBy, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrInvalidStatus
	}
	return nil
}

func (t *pgTx) AccountNormalBalance(ctx context.Context, companyID, accountID int64) (coa.NormalBalance, error) {
	var normal coa.NormalBalance
	err := t.tx.QueryRow(ctx, `
		SELECT at.normal_balance
		FROM accounts a JOIN account_types at ON at.id = a.account_type_id
		WHERE a.company_id=$1 AND a.id=$2`, companyID, accountID).Scan(&normal)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", shared.ErrAccountNotFound
	}
	return normal, err
}

func (t *pgTx) GetBalance(ctx context.Context, key journals.BalanceKey) (journals.AccountBalance, bool, error) {
	var b journals.AccountBalance
	err := t.tx.QueryRow(ctx, `
		SELECT id, company_id, account_id, fiscal_period_id, site_id, business_unit_id,
		       period_debit, period_credit, opening_balance, closing_balance, created_at, updated_at
		FROM account_balances
		WHERE company_id=$1 AND account_id=$2 AND fiscal_period_id=$3
		  AND site_id IS NOT DISTINCT FROM $4 AND business_unit_id IS NOT DISTINCT FROM $5
		FOR UPDATE`,
		key.CompanyID, key.AccountID, key.FiscalPeriodID, key.SiteID, key.BusinessUnitID,
	).Scan(&b.ID, &b.CompanyID, &b.AccountID, &b.FiscalPeriodID, &b.SiteID, &b.BusinessUnitID,
		&b.PeriodDebit, &b.PeriodCredit, &b.OpeningBalance, &b.ClosingBalance, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return journals.AccountBalance{}, false, nil
	}
	if err != nil {
		return journals.AccountBalance{}, false, err
	}
	return b, true, nil
}

func (t *pgTx) UpsertBalance(ctx context.Context, b journals.AccountBalance) error {
	if b.ID != 0 {
		_, err := t.tx.Exec(ctx, `
			UPDATE account_balances
			SET period_debit=$2, period_credit=$3, closing_balance=$4, updated_at=now()
			WHERE id=$1`,
			b.ID, b.PeriodDebit, b.PeriodCredit, b.ClosingBalance)
		return err
	}
	_, err := t.tx.Exec(ctx, `
		INSERT INTO account_balances (
			company_id, account_id, fiscal_period_id, site_id, business_unit_id,
			period_debit, period_credit, opening_balance, closing_balance,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,now(),now())`,
		b.CompanyID, b.AccountID, b.FiscalPeriodID, b.SiteID, b.BusinessUnitID,
		b.PeriodDebit, b.PeriodCredit, b.OpeningBalance, b.ClosingBalance)
	return err
}

func (t *pgTx) UpdateWorkOrderBilling(ctx context.Context, wo *fieldservice.WorkOrder) error {
	_, err := t.tx.Exec(ctx, `
		UPDATE work_orders
		SET actual_labor_cost=$2, actual_parts_cost=$3, actual_total_cost=$4,
		    billable_amount=$5, billing_status=$6, updated_at=now()
		WHERE id=$1`,
		wo.ID, wo.ActualLaborCost, wo.ActualPartsCost, wo.ActualTotalCost,
		wo.BillableAmount, wo.BillingStatus)
	return err
}

func (t *pgTx) StampGoodsReceiptPosted(ctx context.Context, grn *procurement.GoodsReceipt) error {
	_, err := t.tx.Exec(ctx, `
		UPDATE goods_receipts
		SET journal_entry_id=$2, posted_by=$3, posted_at=$4, updated_at=now()
		WHERE id=$1`,
		grn.ID, grn.JournalEntryID, grn.PostedBy, grn.PostedAt)
	return err
}
