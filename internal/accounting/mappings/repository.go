package mappings

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository loads account mappings.
type Repository interface {
	// ListActive returns every active mapping for the company.
	ListActive(ctx context.Context, companyID int64) ([]AccountMapping, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) ListActive(ctx context.Context, companyID int64) ([]AccountMapping, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, company_id, transaction_type, COALESCE(category, ''), debit_account_id, credit_account_id,
		       is_active, created_at, updated_at
		FROM default_account_mappings
		WHERE company_id=$1 AND is_active`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AccountMapping
	for rows.Next() {
		var m AccountMapping
		if err := rows.Scan(&m.ID, &m.CompanyID, &m.TransactionType, &m.Category, &m.DebitAccountID,
			&m.CreditAccountID, &m.IsActive, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
