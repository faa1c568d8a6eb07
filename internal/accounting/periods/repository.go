package periods

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridianfm/meridian-erp/internal/accounting/shared"
)

// Repository resolves fiscal periods for posting.
type Repository interface {
	// FindForDate returns the company period covering date, excluding
	// closed periods. ErrPeriodNotFound when no open period matches.
	FindForDate(ctx context.Context, companyID int64, date time.Time) (FiscalPeriod, error)
	Get(ctx context.Context, companyID, periodID int64) (FiscalPeriod, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) FindForDate(ctx context.Context, companyID int64, date time.Time) (FiscalPeriod, error) {
	var p FiscalPeriod
	err := r.db.QueryRow(ctx, `
		SELECT id, company_id, name, start_date, end_date, status, closed_at, created_at, updated_at
		FROM fiscal_periods
		WHERE company_id=$1 AND start_date<=$2 AND end_date>=$2 AND status<>'closed'
		ORDER BY start_date
		LIMIT 1`, companyID, date).
		Scan(&p.ID, &p.CompanyID, &p.Name, &p.StartDate, &p.EndDate, &p.Status, &p.ClosedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return FiscalPeriod{}, shared.ErrPeriodNotFound
		}
		return FiscalPeriod{}, err
	}
	return p, nil
}

func (r *repository) Get(ctx context.Context, companyID, periodID int64) (FiscalPeriod, error) {
	var p FiscalPeriod
	err := r.db.QueryRow(ctx, `
		SELECT id, company_id, name, start_date, end_date, status, closed_at, created_at, updated_at
		FROM fiscal_periods
		WHERE company_id=$1 AND id=$2`, companyID, periodID).
		Scan(&p.ID, &p.CompanyID, &p.Name, &p.StartDate, &p.EndDate, &p.Status, &p.ClosedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return FiscalPeriod{}, shared.ErrPeriodNotFound
		}
		return FiscalPeriod{}, err
	}
	return p, nil
}
