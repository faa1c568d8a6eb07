package coa

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridianfm/meridian-erp/internal/accounting/shared"
)

// Repository exposes read-only account lookups for posting.
type Repository interface {
	GetAccount(ctx context.Context, companyID, accountID int64) (Account, error)
	GetCompany(ctx context.Context, companyID int64) (Company, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) GetAccount(ctx context.Context, companyID, accountID int64) (Account, error) {
	var a Account
	err := r.db.QueryRow(ctx, `
		SELECT a.id, a.company_id, a.account_type_id, a.parent_id, a.code, a.name, a.is_active,
		       a.created_at, a.updated_at, t.normal_balance
		FROM accounts a
		JOIN account_types t ON t.id = a.account_type_id
		WHERE a.company_id=$1 AND a.id=$2`, companyID, accountID).
		Scan(&a.ID, &a.CompanyID, &a.AccountTypeID, &a.ParentID, &a.Code, &a.Name, &a.IsActive,
			&a.CreatedAt, &a.UpdatedAt, &a.NormalBalance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, shared.ErrAccountNotFound
		}
		return Account{}, err
	}
	return a, nil
}

func (r *repository) GetCompany(ctx context.Context, companyID int64) (Company, error) {
	var c Company
	err := r.db.QueryRow(ctx, `SELECT id, name, COALESCE(primary_currency, '') FROM companies WHERE id=$1`, companyID).
		Scan(&c.ID, &c.Name, &c.PrimaryCurrency)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Company{}, shared.ErrCompanyNotFound
		}
		return Company{}, err
	}
	return c, nil
}
