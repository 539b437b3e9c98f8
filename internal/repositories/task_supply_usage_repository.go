package repositories

import (
	"context"

	"stayops-backend/internal/models"
)

type SupplyUsageRepository interface {
	ListByTask(ctx context.Context, taskID int) ([]*models.TaskSupplyUsage, error)

	// Upsert records what a task expects and what the operator reported
	// using, one row per (task, supply item).
	Upsert(ctx context.Context, usage *models.TaskSupplyUsage) error
	DeleteByTask(ctx context.Context, taskID int) error
}

type supplyUsageRepo struct {
	db DB
}

func (r *supplyUsageRepo) ListByTask(ctx context.Context, taskID int) ([]*models.TaskSupplyUsage, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, task_id, supply_item_id, expected_qty, qty_used, created_at, updated_at
		 FROM task_supply_usages WHERE task_id = $1 ORDER BY supply_item_id`,
		taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var usages []*models.TaskSupplyUsage
	for rows.Next() {
		var u models.TaskSupplyUsage
		if err := rows.Scan(&u.ID, &u.TaskID, &u.SupplyItemID, &u.ExpectedQty, &u.QtyUsed,
			&u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		usages = append(usages, &u)
	}
	return usages, rows.Err()
}

func (r *supplyUsageRepo) Upsert(ctx context.Context, u *models.TaskSupplyUsage) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO task_supply_usages(task_id, supply_item_id, expected_qty, qty_used)
		 VALUES($1, $2, $3, $4)
		 ON CONFLICT (task_id, supply_item_id)
		 DO UPDATE SET expected_qty = EXCLUDED.expected_qty, qty_used = EXCLUDED.qty_used, updated_at = NOW()
		 RETURNING id, created_at, updated_at`,
		u.TaskID, u.SupplyItemID, u.ExpectedQty, u.QtyUsed,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
}

func (r *supplyUsageRepo) DeleteByTask(ctx context.Context, taskID int) error {
	_, err := r.db.Exec(ctx, `DELETE FROM task_supply_usages WHERE task_id = $1`, taskID)
	return err
}
