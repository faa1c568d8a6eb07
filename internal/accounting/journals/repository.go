package journals

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridianfm/meridian-erp/internal/accounting/shared"
)

// Repository exposes read access to posted journals plus the integrity
// queries the background scan runs. Posting writes go through the
// posting package's transactional store.
type Repository interface {
	List(ctx context.Context, companyID int64) ([]JournalEntry, error)
	GetWithLines(ctx context.Context, companyID, entryID int64) (JournalEntry, error)

	ListCompanyIDs(ctx context.Context) ([]int64, error)
	// ListUnbalanced returns posted entries whose line sums disagree
	// with the stored totals or whose debits and credits differ.
	ListUnbalanced(ctx context.Context, companyID int64) ([]JournalEntry, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const entryColumns = `id, company_id, entry_number, entry_date, description, reference,
	source_type, source_id, source_number, fiscal_period_id, status,
	total_debit, total_credit, is_auto_generated, created_by, posted_by, posted_at,
	created_at, updated_at`

func scanEntry(row pgx.Row) (JournalEntry, error) {
	var e JournalEntry
	err := row.Scan(&e.ID, &e.CompanyID, &e.EntryNumber, &e.EntryDate, &e.Description, &e.Reference,
		&e.SourceType, &e.SourceID, &e.SourceNumber, &e.FiscalPeriodID, &e.Status,
		&e.TotalDebit, &e.TotalCredit, &e.IsAutoGenerated, &e.CreatedBy, &e.PostedBy, &e.PostedAt,
		&e.CreatedAt, &e.UpdatedAt)
	return e, err
}

func (r *repository) List(ctx context.Context, companyID int64) ([]JournalEntry, error) {
	rows, err := r.db.Query(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE company_id=$1 ORDER BY entry_number DESC`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []JournalEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *repository) GetWithLines(ctx context.Context, companyID, entryID int64) (JournalEntry, error) {
	entry, err := scanEntry(r.db.QueryRow(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE company_id=$1 AND id=$2`, companyID, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return JournalEntry{}, shared.ErrJournalNotFound
		}
		return JournalEntry{}, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, journal_entry_id, line_number, account_id, debit, credit, description,
		       site_id, business_unit_id, contract_id, project_id, work_order_id, address_book_id
		FROM journal_entry_lines WHERE journal_entry_id=$1 ORDER BY line_number`, entryID)
	if err != nil {
		return JournalEntry{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var l JournalEntryLine
		if err := rows.Scan(&l.ID, &l.JournalEntryID, &l.LineNumber, &l.AccountID, &l.Debit, &l.Credit, &l.Description,
			&l.SiteID, &l.BusinessUnitID, &l.ContractID, &l.ProjectID, &l.WorkOrderID, &l.AddressBookID); err != nil {
			return JournalEntry{}, err
		}
		entry.Lines = append(entry.Lines, l)
	}
	return entry, rows.Err()
}

func (r *repository) ListCompanyIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT company_id FROM journal_entries ORDER BY company_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *repository) ListUnbalanced(ctx context.Context, companyID int64) ([]JournalEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+entryColumns+`
		FROM journal_entries e
		WHERE e.company_id=$1 AND e.status='posted' AND (
			e.total_debit <> e.total_credit
			OR EXISTS (
				SELECT 1 FROM journal_entry_lines l
				WHERE l.journal_entry_id = e.id
				GROUP BY l.journal_entry_id
				HAVING SUM(l.debit) <> e.total_debit OR SUM(l.credit) <> e.total_credit
			)
		)
		ORDER BY e.entry_number`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []JournalEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
