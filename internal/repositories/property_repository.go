package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"stayops-backend/internal/apperr"
	"stayops-backend/internal/models"
)

type PropertyRepository interface {
	Create(ctx context.Context, property *models.Property) error
	Get(ctx context.Context, id int) (*models.Property, error)
	List(ctx context.Context) ([]*models.Property, error)
	Update(ctx context.Context, property *models.Property) error
	Deactivate(ctx context.Context, id int) error
}

type propertyRepo struct {
	db DB
}

const propertyColumns = `id, name, COALESCE(address, '') as address, COALESCE(city, '') as city,
	max_guests, checklist_template, is_active, created_at, updated_at`

func scanProperty(row pgx.Row) (*models.Property, error) {
	var p models.Property
	var templateRaw []byte
	err := row.Scan(&p.ID, &p.Name, &p.Address, &p.City, &p.MaxGuests, &templateRaw,
		&p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(templateRaw) > 0 {
		if err := json.Unmarshal(templateRaw, &p.ChecklistTemplate); err != nil {
			return nil, fmt.Errorf("decode checklist template for property %d: %w", p.ID, err)
		}
	}
	return &p, nil
}

func (r *propertyRepo) Create(ctx context.Context, p *models.Property) error {
	templateRaw, err := json.Marshal(p.ChecklistTemplate)
	if err != nil {
		return fmt.Errorf("encode checklist template: %w", err)
	}
	return r.db.QueryRow(ctx,
		`INSERT INTO properties(name, address, city, max_guests, checklist_template, is_active)
		 VALUES($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		p.Name, p.Address, p.City, p.MaxGuests, templateRaw, p.IsActive,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *propertyRepo) Get(ctx context.Context, id int) (*models.Property, error) {
	p, err := scanProperty(r.db.QueryRow(ctx,
		`SELECT `+propertyColumns+` FROM properties WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("property %d not found", id)
	}
	return p, err
}

func (r *propertyRepo) List(ctx context.Context) ([]*models.Property, error) {
	rows, err := r.db.Query(ctx, `SELECT `+propertyColumns+` FROM properties ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var properties []*models.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		properties = append(properties, p)
	}
	return properties, rows.Err()
}

func (r *propertyRepo) Update(ctx context.Context, p *models.Property) error {
	templateRaw, err := json.Marshal(p.ChecklistTemplate)
	if err != nil {
		return fmt.Errorf("encode checklist template: %w", err)
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE properties
		 SET name=$1, address=$2, city=$3, max_guests=$4, checklist_template=$5, is_active=$6, updated_at=NOW()
		 WHERE id=$7`,
		p.Name, p.Address, p.City, p.MaxGuests, templateRaw, p.IsActive, p.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("property %d not found", p.ID)
	}
	return nil
}

func (r *propertyRepo) Deactivate(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE properties SET is_active = false, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("property %d not found", id)
	}
	return nil
}
