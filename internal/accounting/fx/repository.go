package fx

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridianfm/meridian-erp/internal/accounting/shared"
)

// Repository looks up stored exchange rates.
type Repository interface {
	GetRate(ctx context.Context, companyID int64, from, to string) (ExchangeRate, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) GetRate(ctx context.Context, companyID int64, from, to string) (ExchangeRate, error) {
	var rate ExchangeRate
	err := r.db.QueryRow(ctx, `
		SELECT id, company_id, from_currency, to_currency, rate, source, is_active, created_at, updated_at
		FROM exchange_rates
		WHERE company_id=$1 AND from_currency=$2 AND to_currency=$3 AND is_active
		ORDER BY updated_at DESC
		LIMIT 1`, companyID, strings.ToUpper(from), strings.ToUpper(to)).
		Scan(&rate.ID, &rate.CompanyID, &rate.FromCurrency, &rate.ToCurrency, &rate.Rate,
			&rate.Source, &rate.IsActive, &rate.CreatedAt, &rate.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ExchangeRate{}, shared.ErrRateNotFound
		}
		return ExchangeRate{}, err
	}
	return rate, nil
}
