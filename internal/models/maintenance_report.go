package models

import "time"

// MaintenanceReport is an issue reported at a property, optionally linked
// to the task that surfaced or resolves it. Deleting a task detaches the
// report instead of cascading into it.
type MaintenanceReport struct {
	ID              int       `json:"id"`
	PropertyID      int       `json:"property_id"`
	TaskID          *int      `json:"task_id,omitempty"`
	Description     string    `json:"description"`
	Status          string    `json:"status"` // OPEN, IN_PROGRESS, RESOLVED
	CreatedByUserID int       `json:"created_by_user_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// CreateMaintenanceReportRequest represents the request body for creating a report
type CreateMaintenanceReportRequest struct {
	PropertyID  int    `json:"property_id"`
	TaskID      *int   `json:"task_id"`
	Description string `json:"description"`
}
