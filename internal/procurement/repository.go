package procurement

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridianfm/meridian-erp/internal/shared"
)

// Repository loads GRN aggregates and persists their derived
// landed-cost fields.
type Repository interface {
	GetGoodsReceipt(ctx context.Context, companyID, grnID int64) (GoodsReceipt, error)
	// SaveLandedCosts writes the allocator's derived fields for the
	// header and every line in one transaction.
	SaveLandedCosts(ctx context.Context, grn *GoodsReceipt) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) GetGoodsReceipt(ctx context.Context, companyID, grnID int64) (GoodsReceipt, error) {
	var grn GoodsReceipt
	err := r.db.QueryRow(ctx, `
		SELECT id, company_id, grn_number, po_id, warehouse_id, vendor_id, currency,
		       COALESCE(exchange_rate, 1), total_amount, COALESCE(total_extra_costs, 0),
		       COALESCE(total_landed_cost, 0), COALESCE(is_import, false), status, receipt_date,
		       journal_entry_id, posted_by, posted_at
		FROM goods_receipts WHERE company_id=$1 AND id=$2`, companyID, grnID).
		Scan(&grn.ID, &grn.CompanyID, &grn.Number, &grn.POID, &grn.WarehouseID, &grn.VendorID, &grn.Currency,
			&grn.ExchangeRate, &grn.TotalAmount, &grn.TotalExtraCosts,
			&grn.TotalLandedCost, &grn.IsImport, &grn.Status, &grn.ReceiptDate,
			&grn.JournalEntryID, &grn.PostedBy, &grn.PostedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return GoodsReceipt{}, shared.ErrNotFound
		}
		return GoodsReceipt{}, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, grn_id, po_line_id, item_id, COALESCE(item_description, ''),
		       quantity_received, COALESCE(quantity_accepted, 0), unit_price, total_price,
		       COALESCE(allocated_extra_cost, 0), COALESCE(landed_unit_cost, 0), COALESCE(landed_total_cost, 0)
		FROM goods_receipt_lines WHERE grn_id=$1 ORDER BY id`, grnID)
	if err != nil {
		return GoodsReceipt{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var l GoodsReceiptLine
		if err := rows.Scan(&l.ID, &l.GRNID, &l.POLineID, &l.ItemID, &l.Description,
			&l.QuantityReceived, &l.QuantityAccepted, &l.UnitPrice, &l.TotalPrice,
			&l.AllocatedExtraCost, &l.LandedUnitCost, &l.LandedTotalCost); err != nil {
			return GoodsReceipt{}, err
		}
		grn.Lines = append(grn.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return GoodsReceipt{}, err
	}

	costRows, err := r.db.Query(ctx, `
		SELECT id, grn_id, cost_type, COALESCE(description, ''), amount, created_at
		FROM goods_receipt_extra_costs WHERE grn_id=$1 ORDER BY id`, grnID)
	if err != nil {
		return GoodsReceipt{}, err
	}
	defer costRows.Close()
	for costRows.Next() {
		var c GoodsReceiptExtraCost
		if err := costRows.Scan(&c.ID, &c.GRNID, &c.CostType, &c.Description, &c.Amount, &c.CreatedAt); err != nil {
			return GoodsReceipt{}, err
		}
		grn.ExtraCosts = append(grn.ExtraCosts, c)
	}
	return grn, costRows.Err()
}

func (r *repository) SaveLandedCosts(ctx context.Context, grn *GoodsReceipt) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("procurement: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		UPDATE goods_receipts
		SET total_extra_costs=$1, total_landed_cost=$2, is_import=$3, updated_at=now()
		WHERE id=$4`, grn.TotalExtraCosts, grn.TotalLandedCost, grn.IsImport, grn.ID)
	if err != nil {
		return err
	}
	for i := range grn.Lines {
		line := &grn.Lines[i]
		_, err = tx.Exec(ctx, `
			UPDATE goods_receipt_lines
			SET allocated_extra_cost=$1, landed_unit_cost=$2, landed_total_cost=$3
			WHERE id=$4`, line.AllocatedExtraCost, line.LandedUnitCost, line.LandedTotalCost, line.ID)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
