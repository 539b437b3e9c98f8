package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"stayops-backend/internal/apperr"
	"stayops-backend/internal/models"
)

type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	Get(ctx context.Context, id int) (*models.Task, error)
	List(ctx context.Context) ([]*models.Task, error)
	ListByAssignee(ctx context.Context, userID int) ([]*models.Task, error)
	ListByProperty(ctx context.Context, propertyID int) ([]*models.Task, error)
	UpdateChecklist(ctx context.Context, id int, checklist models.Checklist) error
	UpdateNotes(ctx context.Context, id int, notes string) error
	Delete(ctx context.Context, id int) error

	// Lifecycle transitions. Each compares against the required current
	// status inside the UPDATE itself and reports whether a row moved, so
	// two concurrent callers cannot both win the same transition.
	Start(ctx context.Context, id int) (bool, error)
	Complete(ctx context.Context, id int, at time.Time) (bool, error)
	Approve(ctx context.Context, id, reviewerID int) (bool, error)
	Reject(ctx context.Context, id, reviewerID int, reason string) (bool, error)
	Reopen(ctx context.Context, id int, note string) (bool, error)
}

type taskRepo struct {
	db DB
}

const taskColumns = `id, property_id, type,
	assignee_user_id, COALESCE(external_contact, '') as external_contact,
	auto_assigned, scheduled_date, status, checklist_data,
	COALESCE(notes, '') as notes,
	COALESCE(rejection_notes, '') as rejection_notes,
	COALESCE(reopen_note, '') as reopen_note,
	completed_at, reviewed_at, reviewed_by, reopened_at,
	created_by_user_id, created_at, updated_at`

func scanTask(row pgx.Row) (*models.Task, error) {
	var t models.Task
	var checklistRaw []byte
	err := row.Scan(
		&t.ID, &t.PropertyID, &t.Type,
		&t.AssigneeUserID, &t.ExternalContact,
		&t.AutoAssigned, &t.ScheduledDate, &t.Status, &checklistRaw,
		&t.Notes, &t.RejectionNotes, &t.ReopenNote,
		&t.CompletedAt, &t.ReviewedAt, &t.ReviewedBy, &t.ReopenedAt,
		&t.CreatedByUserID, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(checklistRaw) > 0 {
		if err := json.Unmarshal(checklistRaw, &t.Checklist); err != nil {
			return nil, fmt.Errorf("decode checklist for task %d: %w", t.ID, err)
		}
	}
	return &t, nil
}

func (r *taskRepo) Create(ctx context.Context, t *models.Task) error {
	checklistRaw, err := json.Marshal(t.Checklist)
	if err != nil {
		return fmt.Errorf("encode checklist: %w", err)
	}
	return r.db.QueryRow(ctx,
		`INSERT INTO tasks(property_id, type, assignee_user_id, external_contact, auto_assigned,
			scheduled_date, status, checklist_data, notes, created_by_user_id)
		 VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, created_at, updated_at`,
		t.PropertyID, t.Type, t.AssigneeUserID, t.ExternalContact, t.AutoAssigned,
		t.ScheduledDate, t.Status, checklistRaw, t.Notes, t.CreatedByUserID,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

func (r *taskRepo) Get(ctx context.Context, id int) (*models.Task, error) {
	t, err := scanTask(r.db.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("task %d not found", id)
	}
	return t, err
}

func (r *taskRepo) list(ctx context.Context, query string, args ...any) ([]*models.Task, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *taskRepo) List(ctx context.Context) ([]*models.Task, error) {
	return r.list(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY scheduled_date DESC, id DESC`)
}

func (r *taskRepo) ListByAssignee(ctx context.Context, userID int) ([]*models.Task, error) {
	return r.list(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE assignee_user_id = $1 ORDER BY scheduled_date DESC, id DESC`,
		userID)
}

func (r *taskRepo) ListByProperty(ctx context.Context, propertyID int) ([]*models.Task, error) {
	return r.list(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE property_id = $1 ORDER BY scheduled_date DESC, id DESC`,
		propertyID)
}

func (r *taskRepo) UpdateChecklist(ctx context.Context, id int, checklist models.Checklist) error {
	raw, err := json.Marshal(checklist)
	if err != nil {
		return fmt.Errorf("encode checklist: %w", err)
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE tasks SET checklist_data = $1, updated_at = NOW() WHERE id = $2`, raw, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("task %d not found", id)
	}
	return nil
}

func (r *taskRepo) UpdateNotes(ctx context.Context, id int, notes string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE tasks SET notes = $1, updated_at = NOW() WHERE id = $2`, notes, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("task %d not found", id)
	}
	return nil
}

func (r *taskRepo) Delete(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("task %d not found", id)
	}
	return nil
}

// transition runs one guarded status update and reports whether it won.
func (r *taskRepo) transition(ctx context.Context, query string, args ...any) (bool, error) {
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *taskRepo) Start(ctx context.Context, id int) (bool, error) {
	return r.transition(ctx,
		`UPDATE tasks SET status = $1, updated_at = NOW()
		 WHERE id = $2 AND status = $3`,
		models.StatusInProgress, id, models.StatusTodo)
}

func (r *taskRepo) Complete(ctx context.Context, id int, at time.Time) (bool, error) {
	return r.transition(ctx,
		`UPDATE tasks SET status = $1, completed_at = $2, updated_at = NOW()
		 WHERE id = $3 AND status = $4`,
		models.StatusCompleted, at, id, models.StatusInProgress)
}

func (r *taskRepo) Approve(ctx context.Context, id, reviewerID int) (bool, error) {
	// Approval also clears any rejection reason left over from an earlier
	// review round, so an APPROVED task never carries a stale verdict.
	return r.transition(ctx,
		`UPDATE tasks SET status = $1, reviewed_at = NOW(), reviewed_by = $2,
			rejection_notes = NULL, updated_at = NOW()
		 WHERE id = $3 AND status = $4`,
		models.StatusApproved, reviewerID, id, models.StatusCompleted)
}

func (r *taskRepo) Reject(ctx context.Context, id, reviewerID int, reason string) (bool, error) {
	return r.transition(ctx,
		`UPDATE tasks SET status = $1, reviewed_at = NOW(), reviewed_by = $2, rejection_notes = $3, updated_at = NOW()
		 WHERE id = $4 AND status = $5`,
		models.StatusRejected, reviewerID, reason, id, models.StatusCompleted)
}

func (r *taskRepo) Reopen(ctx context.Context, id int, note string) (bool, error) {
	// Reopening clears the previous run's completion and review marks so
	// the task goes around the loop cleanly.
	return r.transition(ctx,
		`UPDATE tasks SET status = $1, reopen_note = $2, reopened_at = NOW(),
			completed_at = NULL, reviewed_at = NULL, reviewed_by = NULL, updated_at = NOW()
		 WHERE id = $3 AND status = $4`,
		models.StatusInProgress, note, id, models.StatusRejected)
}
