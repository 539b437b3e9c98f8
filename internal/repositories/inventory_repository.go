package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"stayops-backend/internal/models"
)

type InventoryRepository interface {
	// AppendTransaction writes one immutable ledger row. The ledger is the
	// source of truth; balances are a projection of it.
	AppendTransaction(ctx context.Context, txn *models.InventoryTransaction) error
	ListTransactions(ctx context.Context, supplyItemID, limit int) ([]*models.InventoryTransaction, error)
	ListAllTransactions(ctx context.Context) ([]*models.InventoryTransaction, error)

	// SumTransactions re-derives an item's net quantity from the full
	// ledger history. Used by the reconciliation endpoint and tests.
	SumTransactions(ctx context.Context, supplyItemID int) (int, error)

	// GetBalance returns (nil, nil) when no balance row exists yet; callers
	// treat that as quantity zero.
	GetBalance(ctx context.Context, supplyItemID int) (*models.InventoryBalance, error)
	UpsertBalance(ctx context.Context, supplyItemID, qtyOnHand int) error
	SetReorderPoint(ctx context.Context, supplyItemID, reorderPoint int) error
	ListBalances(ctx context.Context) ([]*models.BalanceView, error)
}

type inventoryRepo struct {
	db DB
}

func (r *inventoryRepo) AppendTransaction(ctx context.Context, txn *models.InventoryTransaction) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO inventory_transactions(supply_item_id, type, qty, reference_id, notes, created_by_user_id)
		 VALUES($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		txn.SupplyItemID, txn.Type, txn.Qty, txn.ReferenceID, txn.Notes, txn.CreatedByUserID,
	).Scan(&txn.ID, &txn.CreatedAt)
}

const txnColumns = `id, supply_item_id, type, qty, reference_id, COALESCE(notes, '') as notes,
	created_by_user_id, created_at`

func (r *inventoryRepo) listTxns(ctx context.Context, query string, args ...any) ([]*models.InventoryTransaction, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []*models.InventoryTransaction
	for rows.Next() {
		var t models.InventoryTransaction
		if err := rows.Scan(&t.ID, &t.SupplyItemID, &t.Type, &t.Qty, &t.ReferenceID,
			&t.Notes, &t.CreatedByUserID, &t.CreatedAt); err != nil {
			return nil, err
		}
		txns = append(txns, &t)
	}
	return txns, rows.Err()
}

func (r *inventoryRepo) ListTransactions(ctx context.Context, supplyItemID, limit int) ([]*models.InventoryTransaction, error) {
	if limit <= 0 {
		limit = 100
	}
	return r.listTxns(ctx,
		`SELECT `+txnColumns+`
		 FROM inventory_transactions
		 WHERE supply_item_id = $1
		 ORDER BY id DESC
		 LIMIT $2`,
		supplyItemID, limit)
}

func (r *inventoryRepo) ListAllTransactions(ctx context.Context) ([]*models.InventoryTransaction, error) {
	return r.listTxns(ctx,
		`SELECT `+txnColumns+` FROM inventory_transactions ORDER BY id`)
}

func (r *inventoryRepo) SumTransactions(ctx context.Context, supplyItemID int) (int, error) {
	var sum int
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(qty), 0) FROM inventory_transactions WHERE supply_item_id = $1`,
		supplyItemID).Scan(&sum)
	return sum, err
}

func (r *inventoryRepo) GetBalance(ctx context.Context, supplyItemID int) (*models.InventoryBalance, error) {
	var b models.InventoryBalance
	err := r.db.QueryRow(ctx,
		`SELECT supply_item_id, qty_on_hand, reorder_point, updated_at
		 FROM inventory_balances WHERE supply_item_id = $1`,
		supplyItemID).Scan(&b.SupplyItemID, &b.QtyOnHand, &b.ReorderPoint, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *inventoryRepo) UpsertBalance(ctx context.Context, supplyItemID, qtyOnHand int) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO inventory_balances(supply_item_id, qty_on_hand, updated_at)
		 VALUES($1, $2, NOW())
		 ON CONFLICT (supply_item_id)
		 DO UPDATE SET qty_on_hand = EXCLUDED.qty_on_hand, updated_at = NOW()`,
		supplyItemID, qtyOnHand)
	return err
}

func (r *inventoryRepo) SetReorderPoint(ctx context.Context, supplyItemID, reorderPoint int) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO inventory_balances(supply_item_id, qty_on_hand, reorder_point, updated_at)
		 VALUES($1, 0, $2, NOW())
		 ON CONFLICT (supply_item_id)
		 DO UPDATE SET reorder_point = EXCLUDED.reorder_point, updated_at = NOW()`,
		supplyItemID, reorderPoint)
	return err
}

func (r *inventoryRepo) ListBalances(ctx context.Context) ([]*models.BalanceView, error) {
	rows, err := r.db.Query(ctx,
		`SELECT si.id, si.name, si.unit,
			COALESCE(b.qty_on_hand, 0) as qty_on_hand,
			COALESCE(b.reorder_point, 0) as reorder_point,
			si.low_threshold
		 FROM supply_items si
		 LEFT JOIN inventory_balances b ON b.supply_item_id = si.id
		 WHERE si.is_active = true
		 ORDER BY si.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []*models.BalanceView
	for rows.Next() {
		var v models.BalanceView
		var lowThreshold int
		if err := rows.Scan(&v.SupplyItemID, &v.Name, &v.Unit, &v.QtyOnHand, &v.ReorderPoint, &lowThreshold); err != nil {
			return nil, err
		}
		v.Level = models.DeriveLevel(v.QtyOnHand, lowThreshold)
		v.NeedsReorder = v.QtyOnHand <= v.ReorderPoint && v.ReorderPoint > 0
		views = append(views, &v)
	}
	return views, rows.Err()
}
