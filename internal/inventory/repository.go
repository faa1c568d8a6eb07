package inventory

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository appends and reads item ledger movements.
type Repository interface {
	Append(ctx context.Context, entry LedgerEntry) (int64, error)
	ListForWorkOrder(ctx context.Context, companyID, workOrderID int64) ([]LedgerEntry, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) Append(ctx context.Context, entry LedgerEntry) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO item_ledger
			(company_id, item_id, warehouse_id, transaction_type, quantity, unit_cost, total_cost,
			 work_order_id, cycle_count_id, po_id, grn_id, reference, created_by, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,now())
		RETURNING id`,
		entry.CompanyID, entry.ItemID, entry.WarehouseID, entry.TransactionType,
		entry.Quantity, entry.UnitCost, entry.TotalCost,
		entry.WorkOrderID, entry.CycleCountID, entry.POID, entry.GRNID,
		entry.Reference, entry.CreatedBy).Scan(&id)
	return id, err
}

func (r *repository) ListForWorkOrder(ctx context.Context, companyID, workOrderID int64) ([]LedgerEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, company_id, item_id, warehouse_id, transaction_type, quantity, unit_cost, total_cost,
		       work_order_id, cycle_count_id, po_id, grn_id, COALESCE(reference, ''), created_by, created_at
		FROM item_ledger
		WHERE company_id=$1 AND work_order_id=$2
		ORDER BY id`, companyID, workOrderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []LedgerEntry
	for rows.Next() {
		var e LedgerEntry
		if err := rows.Scan(&e.ID, &e.CompanyID, &e.ItemID, &e.WarehouseID, &e.TransactionType,
			&e.Quantity, &e.UnitCost, &e.TotalCost,
			&e.WorkOrderID, &e.CycleCountID, &e.POID, &e.GRNID, &e.Reference, &e.CreatedBy, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
