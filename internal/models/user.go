package models

import "time"

// Roles. Operators execute tasks on site; managers create, review and
// assign work; admins additionally manage users.
const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleOperator = "operator"
)

// AssignmentCategory identifies one of the four independent round-robin
// workload counters kept per user.
type AssignmentCategory string

const (
	CategoryLeads      AssignmentCategory = "leads"
	CategoryAnalyses   AssignmentCategory = "analyses"
	CategoryOperations AssignmentCategory = "operations"
	CategoryOnboarding AssignmentCategory = "onboarding"
)

// Categories lists all assignment categories in a stable order.
var Categories = []AssignmentCategory{CategoryLeads, CategoryAnalyses, CategoryOperations, CategoryOnboarding}

func (c AssignmentCategory) Valid() bool {
	switch c {
	case CategoryLeads, CategoryAnalyses, CategoryOperations, CategoryOnboarding:
		return true
	}
	return false
}

type User struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	PasswordHash string `json:"-"` // Never expose in JSON
	Role         string `json:"role"`
	IsSuperAdmin bool   `json:"is_super_admin"`
	IsActive     bool   `json:"is_active"`

	// Per-category permissions for the assignment balancer. A super admin
	// is eligible for every category regardless of these flags.
	CanManageLeads      bool `json:"can_manage_leads"`
	CanManageAnalyses   bool `json:"can_manage_analyses"`
	CanManageOperations bool `json:"can_manage_operations"`
	CanManageOnboarding bool `json:"can_manage_onboarding"`

	// Current workload counters, one per category, never negative.
	LeadCount       int `json:"lead_count"`
	AnalysisCount   int `json:"analysis_count"`
	OperationCount  int `json:"operation_count"`
	OnboardingCount int `json:"onboarding_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CanManage reports whether the user holds the permission flag for the
// given category.
func (u *User) CanManage(c AssignmentCategory) bool {
	switch c {
	case CategoryLeads:
		return u.CanManageLeads
	case CategoryAnalyses:
		return u.CanManageAnalyses
	case CategoryOperations:
		return u.CanManageOperations
	case CategoryOnboarding:
		return u.CanManageOnboarding
	}
	return false
}

// CountFor returns the workload counter for the given category.
func (u *User) CountFor(c AssignmentCategory) int {
	switch c {
	case CategoryLeads:
		return u.LeadCount
	case CategoryAnalyses:
		return u.AnalysisCount
	case CategoryOperations:
		return u.OperationCount
	case CategoryOnboarding:
		return u.OnboardingCount
	}
	return 0
}

// Actor is the already-authenticated identity the HTTP layer hands to every
// core operation. The core trusts these fields as verified.
type Actor struct {
	UserID       int
	Role         string
	IsSuperAdmin bool
}

// IsManager reports whether the actor may perform manager-level actions.
// Admins hold every manager privilege.
func (a Actor) IsManager() bool {
	return a.Role == RoleManager || a.Role == RoleAdmin || a.IsSuperAdmin
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse represents the response after successful authentication
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// CreateUserRequest represents the request body for creating a user
type CreateUserRequest struct {
	Name                string `json:"name"`
	Email               string `json:"email"`
	Phone               string `json:"phone"`
	Password            string `json:"password"`
	Role                string `json:"role"`
	IsSuperAdmin        bool   `json:"is_super_admin"`
	CanManageLeads      bool   `json:"can_manage_leads"`
	CanManageAnalyses   bool   `json:"can_manage_analyses"`
	CanManageOperations bool   `json:"can_manage_operations"`
	CanManageOnboarding bool   `json:"can_manage_onboarding"`
}

// UpdateUserRequest represents the request body for updating a user
type UpdateUserRequest struct {
	Name                string `json:"name"`
	Email               string `json:"email"`
	Phone               string `json:"phone"`
	Password            string `json:"password,omitempty"` // Optional
	Role                string `json:"role"`
	IsActive            bool   `json:"is_active"`
	CanManageLeads      bool   `json:"can_manage_leads"`
	CanManageAnalyses   bool   `json:"can_manage_analyses"`
	CanManageOperations bool   `json:"can_manage_operations"`
	CanManageOnboarding bool   `json:"can_manage_onboarding"`
}
