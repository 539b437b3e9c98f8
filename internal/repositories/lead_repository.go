package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"stayops-backend/internal/apperr"
	"stayops-backend/internal/models"
)

type LeadRepository interface {
	Create(ctx context.Context, lead *models.Lead) error
	Get(ctx context.Context, id int) (*models.Lead, error)
	List(ctx context.Context) ([]*models.Lead, error)
	ListByAssignee(ctx context.Context, userID int) ([]*models.Lead, error)
	UpdateStatus(ctx context.Context, id int, status string) error
}

type leadRepo struct {
	db DB
}

const leadColumns = `id, name, COALESCE(phone, '') as phone, COALESCE(email, '') as email,
	COALESCE(source, '') as source, status, assigned_user_id, COALESCE(notes, '') as notes,
	created_by_user_id, created_at, updated_at`

func scanLead(row pgx.Row) (*models.Lead, error) {
	var l models.Lead
	err := row.Scan(&l.ID, &l.Name, &l.Phone, &l.Email, &l.Source, &l.Status,
		&l.AssignedUserID, &l.Notes, &l.CreatedByUserID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *leadRepo) Create(ctx context.Context, l *models.Lead) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO leads(name, phone, email, source, status, assigned_user_id, notes, created_by_user_id)
		 VALUES($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at`,
		l.Name, l.Phone, l.Email, l.Source, l.Status, l.AssignedUserID, l.Notes, l.CreatedByUserID,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
}

func (r *leadRepo) Get(ctx context.Context, id int) (*models.Lead, error) {
	l, err := scanLead(r.db.QueryRow(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("lead %d not found", id)
	}
	return l, err
}

func (r *leadRepo) list(ctx context.Context, query string, args ...any) ([]*models.Lead, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []*models.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}

func (r *leadRepo) List(ctx context.Context) ([]*models.Lead, error) {
	return r.list(ctx, `SELECT `+leadColumns+` FROM leads ORDER BY id DESC`)
}

func (r *leadRepo) ListByAssignee(ctx context.Context, userID int) ([]*models.Lead, error) {
	return r.list(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE assigned_user_id = $1 ORDER BY id DESC`, userID)
}

func (r *leadRepo) UpdateStatus(ctx context.Context, id int, status string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE leads SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("lead %d not found", id)
	}
	return nil
}
