package models

import "time"

// Property is a managed rental unit. ChecklistTemplate holds the same
// shape as a task checklist and seeds new tasks for this property.
type Property struct {
	ID                int       `json:"id"`
	Name              string    `json:"name"`
	Address           string    `json:"address"`
	City              string    `json:"city"`
	MaxGuests         int       `json:"max_guests"`
	ChecklistTemplate Checklist `json:"checklist_template"`
	IsActive          bool      `json:"is_active"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// CreatePropertyRequest represents the request body for creating a property
type CreatePropertyRequest struct {
	Name              string    `json:"name"`
	Address           string    `json:"address"`
	City              string    `json:"city"`
	MaxGuests         int       `json:"max_guests"`
	ChecklistTemplate Checklist `json:"checklist_template"`
}
