package costcenter

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository exposes the lookups the resolver chains through. Each
// returns found=false for expected absence.
type Repository interface {
	SiteBusinessUnit(ctx context.Context, companyID, siteID int64) (int64, bool, error)
	AddressBookBusinessUnit(ctx context.Context, companyID, addressBookID int64) (int64, bool, error)
	ContractBusinessUnit(ctx context.Context, companyID, contractID int64) (int64, bool, error)
	WarehouseBusinessUnit(ctx context.Context, companyID, warehouseID int64) (int64, bool, error)
	// DefaultBusinessUnit returns the company's active top-level
	// business unit of the given type.
	DefaultBusinessUnit(ctx context.Context, companyID int64, buType BUType) (int64, bool, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) scanID(ctx context.Context, query string, args ...any) (int64, bool, error) {
	var id *int64
	err := r.db.QueryRow(ctx, query, args...).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	if id == nil {
		return 0, false, nil
	}
	return *id, true, nil
}

func (r *repository) SiteBusinessUnit(ctx context.Context, companyID, siteID int64) (int64, bool, error) {
	return r.scanID(ctx, `
		SELECT ab.business_unit_id
		FROM sites s
		JOIN address_book ab ON ab.id = s.address_book_id
		WHERE s.company_id=$1 AND s.id=$2`, companyID, siteID)
}

func (r *repository) AddressBookBusinessUnit(ctx context.Context, companyID, addressBookID int64) (int64, bool, error) {
	return r.scanID(ctx, `
		SELECT business_unit_id FROM address_book
		WHERE company_id=$1 AND id=$2`, companyID, addressBookID)
}

func (r *repository) ContractBusinessUnit(ctx context.Context, companyID, contractID int64) (int64, bool, error) {
	return r.scanID(ctx, `
		SELECT ab.business_unit_id
		FROM contracts c
		JOIN address_book ab ON ab.id = c.address_book_id
		WHERE c.company_id=$1 AND c.id=$2`, companyID, contractID)
}

func (r *repository) WarehouseBusinessUnit(ctx context.Context, companyID, warehouseID int64) (int64, bool, error) {
	return r.scanID(ctx, `
		SELECT business_unit_id FROM warehouses
		WHERE company_id=$1 AND id=$2`, companyID, warehouseID)
}

func (r *repository) DefaultBusinessUnit(ctx context.Context, companyID int64, buType BUType) (int64, bool, error) {
	return r.scanID(ctx, `
		SELECT id FROM business_units
		WHERE company_id=$1 AND type=$2 AND is_active AND parent_id IS NULL
		ORDER BY id
		LIMIT 1`, companyID, buType)
}
