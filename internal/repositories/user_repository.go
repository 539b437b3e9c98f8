package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"stayops-backend/internal/apperr"
	"stayops-backend/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	Get(ctx context.Context, id int) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error

	// ListEligibleAssignees returns active managers who are super admins or
	// hold the permission flag for the category, ordered by id so the
	// balancer's tie-break is stable.
	ListEligibleAssignees(ctx context.Context, category models.AssignmentCategory) ([]*models.User, error)

	// AdjustAssignmentCount applies a relative delta to one category
	// counter, flooring at zero. Atomic at the SQL level to avoid lost
	// updates under concurrent assignment.
	AdjustAssignmentCount(ctx context.Context, userID int, category models.AssignmentCategory, delta int) error
}

type userRepo struct {
	db DB
}

const userColumns = `id, name, email, COALESCE(phone, '') as phone, password_hash, role,
	is_super_admin, is_active,
	can_manage_leads, can_manage_analyses, can_manage_operations, can_manage_onboarding,
	lead_count, analysis_count, operation_count, onboarding_count,
	created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash, &u.Role,
		&u.IsSuperAdmin, &u.IsActive,
		&u.CanManageLeads, &u.CanManageAnalyses, &u.CanManageOperations, &u.CanManageOnboarding,
		&u.LeadCount, &u.AnalysisCount, &u.OperationCount, &u.OnboardingCount,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) Create(ctx context.Context, u *models.User) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO users(name, email, phone, password_hash, role, is_super_admin, is_active,
			can_manage_leads, can_manage_analyses, can_manage_operations, can_manage_onboarding)
		 VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id, created_at, updated_at`,
		u.Name, u.Email, u.Phone, u.PasswordHash, u.Role, u.IsSuperAdmin, u.IsActive,
		u.CanManageLeads, u.CanManageAnalyses, u.CanManageOperations, u.CanManageOnboarding,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
}

func (r *userRepo) Get(ctx context.Context, id int) (*models.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("user %d not found", id)
	}
	return u, err
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("user not found")
	}
	return u, err
}

func (r *userRepo) List(ctx context.Context) ([]*models.User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *userRepo) Update(ctx context.Context, u *models.User) error {
	_, err := r.db.Exec(ctx,
		`UPDATE users
		 SET name=$1, email=$2, phone=$3, password_hash=$4, role=$5, is_active=$6,
		     can_manage_leads=$7, can_manage_analyses=$8, can_manage_operations=$9, can_manage_onboarding=$10,
		     updated_at=NOW()
		 WHERE id=$11`,
		u.Name, u.Email, u.Phone, u.PasswordHash, u.Role, u.IsActive,
		u.CanManageLeads, u.CanManageAnalyses, u.CanManageOperations, u.CanManageOnboarding,
		u.ID,
	)
	return err
}

// counterColumn maps a category to its counter column. Categories are a
// closed enum; the column name never comes from user input.
func counterColumn(category models.AssignmentCategory) (string, error) {
	switch category {
	case models.CategoryLeads:
		return "lead_count", nil
	case models.CategoryAnalyses:
		return "analysis_count", nil
	case models.CategoryOperations:
		return "operation_count", nil
	case models.CategoryOnboarding:
		return "onboarding_count", nil
	}
	return "", apperr.Validation("unknown assignment category %q", category)
}

func permissionColumn(category models.AssignmentCategory) (string, error) {
	switch category {
	case models.CategoryLeads:
		return "can_manage_leads", nil
	case models.CategoryAnalyses:
		return "can_manage_analyses", nil
	case models.CategoryOperations:
		return "can_manage_operations", nil
	case models.CategoryOnboarding:
		return "can_manage_onboarding", nil
	}
	return "", apperr.Validation("unknown assignment category %q", category)
}

func (r *userRepo) ListEligibleAssignees(ctx context.Context, category models.AssignmentCategory) ([]*models.User, error) {
	permCol, err := permissionColumn(category)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(
		`SELECT %s FROM users
		 WHERE is_active = true AND role IN ($1, $2) AND (is_super_admin = true OR %s = true)
		 ORDER BY id`, userColumns, permCol)

	rows, err := r.db.Query(ctx, query, models.RoleManager, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *userRepo) AdjustAssignmentCount(ctx context.Context, userID int, category models.AssignmentCategory, delta int) error {
	col, err := counterColumn(category)
	if err != nil {
		return err
	}

	// GREATEST keeps the counter non-negative: a decrement at zero is a
	// no-op, not an error.
	query := fmt.Sprintf(
		`UPDATE users SET %s = GREATEST(0, %s + $1), updated_at = NOW() WHERE id = $2`, col, col)
	_, err = r.db.Exec(ctx, query, delta, userID)
	return err
}
