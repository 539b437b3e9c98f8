package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"stayops-backend/internal/apperr"
	"stayops-backend/internal/models"
)

type SupplyItemRepository interface {
	Create(ctx context.Context, item *models.SupplyItem) error
	Get(ctx context.Context, id int) (*models.SupplyItem, error)
	List(ctx context.Context) ([]*models.SupplyItem, error)
	Update(ctx context.Context, item *models.SupplyItem) error
	Deactivate(ctx context.Context, id int) error
}

type supplyItemRepo struct {
	db DB
}

const supplyItemColumns = `id, name, unit, qty_standard, low_threshold, is_active, created_at, updated_at`

func scanSupplyItem(row pgx.Row) (*models.SupplyItem, error) {
	var i models.SupplyItem
	err := row.Scan(&i.ID, &i.Name, &i.Unit, &i.QtyStandard, &i.LowThreshold,
		&i.IsActive, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *supplyItemRepo) Create(ctx context.Context, i *models.SupplyItem) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO supply_items(name, unit, qty_standard, low_threshold, is_active)
		 VALUES($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		i.Name, i.Unit, i.QtyStandard, i.LowThreshold, i.IsActive,
	).Scan(&i.ID, &i.CreatedAt, &i.UpdatedAt)
}

func (r *supplyItemRepo) Get(ctx context.Context, id int) (*models.SupplyItem, error) {
	i, err := scanSupplyItem(r.db.QueryRow(ctx,
		`SELECT `+supplyItemColumns+` FROM supply_items WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("supply item %d not found", id)
	}
	return i, err
}

func (r *supplyItemRepo) List(ctx context.Context) ([]*models.SupplyItem, error) {
	rows, err := r.db.Query(ctx, `SELECT `+supplyItemColumns+` FROM supply_items ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.SupplyItem
	for rows.Next() {
		i, err := scanSupplyItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

func (r *supplyItemRepo) Update(ctx context.Context, i *models.SupplyItem) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE supply_items
		 SET name=$1, unit=$2, qty_standard=$3, low_threshold=$4, is_active=$5, updated_at=NOW()
		 WHERE id=$6`,
		i.Name, i.Unit, i.QtyStandard, i.LowThreshold, i.IsActive, i.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("supply item %d not found", i.ID)
	}
	return nil
}

func (r *supplyItemRepo) Deactivate(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE supply_items SET is_active = false, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("supply item %d not found", id)
	}
	return nil
}
