package models

import "time"

// Lead statuses. LOST is terminal and releases the owner's workload slot.
const (
	LeadStatusNew       = "NEW"
	LeadStatusContacted = "CONTACTED"
	LeadStatusWon       = "WON"
	LeadStatusLost      = "LOST"
)

// Lead is a prospective property owner in the CRM intake. New leads are
// routed to the least-loaded eligible manager by the assignment balancer.
type Lead struct {
	ID              int       `json:"id"`
	Name            string    `json:"name"`
	Phone           string    `json:"phone"`
	Email           string    `json:"email"`
	Source          string    `json:"source"`
	Status          string    `json:"status"`
	AssignedUserID  *int      `json:"assigned_user_id,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	CreatedByUserID int       `json:"created_by_user_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// CreateLeadRequest represents the request body for creating a lead
type CreateLeadRequest struct {
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Email  string `json:"email"`
	Source string `json:"source"`
	Notes  string `json:"notes"`
}
