package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"stayops-backend/internal/apperr"
	"stayops-backend/internal/models"
)

type MaintenanceReportRepository interface {
	Create(ctx context.Context, report *models.MaintenanceReport) error
	Get(ctx context.Context, id int) (*models.MaintenanceReport, error)
	List(ctx context.Context) ([]*models.MaintenanceReport, error)
	UpdateStatus(ctx context.Context, id int, status string) error

	// DetachFromTask clears the task link on every report referencing the
	// task. Run before a task delete so reports survive it.
	DetachFromTask(ctx context.Context, taskID int) error
}

type maintenanceReportRepo struct {
	db DB
}

const reportColumns = `id, property_id, task_id, description, status, created_by_user_id, created_at, updated_at`

func scanReport(row pgx.Row) (*models.MaintenanceReport, error) {
	var m models.MaintenanceReport
	err := row.Scan(&m.ID, &m.PropertyID, &m.TaskID, &m.Description, &m.Status,
		&m.CreatedByUserID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *maintenanceReportRepo) Create(ctx context.Context, m *models.MaintenanceReport) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO maintenance_reports(property_id, task_id, description, status, created_by_user_id)
		 VALUES($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		m.PropertyID, m.TaskID, m.Description, m.Status, m.CreatedByUserID,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
}

func (r *maintenanceReportRepo) Get(ctx context.Context, id int) (*models.MaintenanceReport, error) {
	m, err := scanReport(r.db.QueryRow(ctx,
		`SELECT `+reportColumns+` FROM maintenance_reports WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("maintenance report %d not found", id)
	}
	return m, err
}

func (r *maintenanceReportRepo) List(ctx context.Context) ([]*models.MaintenanceReport, error) {
	rows, err := r.db.Query(ctx, `SELECT `+reportColumns+` FROM maintenance_reports ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []*models.MaintenanceReport
	for rows.Next() {
		m, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, m)
	}
	return reports, rows.Err()
}

func (r *maintenanceReportRepo) UpdateStatus(ctx context.Context, id int, status string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE maintenance_reports SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("maintenance report %d not found", id)
	}
	return nil
}

func (r *maintenanceReportRepo) DetachFromTask(ctx context.Context, taskID int) error {
	_, err := r.db.Exec(ctx,
		`UPDATE maintenance_reports SET task_id = NULL, updated_at = NOW() WHERE task_id = $1`, taskID)
	return err
}
