package models

import "time"

// TaskType represents the kind of work a task covers
type TaskType string

const (
	TaskTypeCleaning    TaskType = "CLEANING"
	TaskTypeMaintenance TaskType = "MAINTENANCE"
	TaskTypePreparation TaskType = "PREPARATION"
	TaskTypeInspection  TaskType = "INSPECTION"
	TaskTypeKeyHandover TaskType = "KEY_HANDOVER"
	TaskTypeOther       TaskType = "OTHER"
)

func (t TaskType) Valid() bool {
	switch t {
	case TaskTypeCleaning, TaskTypeMaintenance, TaskTypePreparation,
		TaskTypeInspection, TaskTypeKeyHandover, TaskTypeOther:
		return true
	}
	return false
}

// TaskStatus is the lifecycle state of a task. The only legal transitions
// are TODO -> IN_PROGRESS -> COMPLETED -> APPROVED or REJECTED, with
// REJECTED -> IN_PROGRESS as the single back-edge (reopen).
type TaskStatus string

const (
	StatusTodo       TaskStatus = "TODO"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusCompleted  TaskStatus = "COMPLETED"
	StatusApproved   TaskStatus = "APPROVED"
	StatusRejected   TaskStatus = "REJECTED"
)

// Task is a unit of work tied to a property, executed by an internal
// operator or an external contact and reviewed by a manager.
type Task struct {
	ID         int      `json:"id"`
	PropertyID int      `json:"property_id"`
	Type       TaskType `json:"type"`

	// Exactly one of AssigneeUserID / ExternalContact is set for
	// non-cleaning tasks; cleaning always has an internal assignee.
	AssigneeUserID  *int   `json:"assignee_user_id,omitempty"`
	ExternalContact string `json:"external_contact,omitempty"`

	// AutoAssigned marks tasks whose assignee came from the workload
	// balancer; their operations slot is released on approval or delete.
	AutoAssigned bool `json:"auto_assigned,omitempty"`

	ScheduledDate  time.Time  `json:"scheduled_date"`
	Status         TaskStatus `json:"status"`
	Checklist      Checklist  `json:"checklist_data"`
	Notes          string     `json:"notes,omitempty"`
	RejectionNotes string     `json:"rejection_notes,omitempty"`
	ReopenNote     string     `json:"reopen_note,omitempty"`

	CompletedAt *time.Time `json:"completed_at,omitempty"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	ReviewedBy  *int       `json:"reviewed_by,omitempty"`
	ReopenedAt  *time.Time `json:"reopened_at,omitempty"`

	CreatedByUserID int       `json:"created_by_user_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// IsAssignee reports whether userID is the task's internal assignee.
func (t *Task) IsAssignee(userID int) bool {
	return t.AssigneeUserID != nil && *t.AssigneeUserID == userID
}

// ActionResult is the outcome of a lifecycle action. AlreadyApplied marks
// the idempotent path: the target state already held, nothing was changed,
// and the caller should treat it as success. Tests and clients can tell
// "did work" from "was already done".
type ActionResult struct {
	Task           *Task `json:"task"`
	AlreadyApplied bool  `json:"already_applied"`
}

// CreateTaskRequest represents the request body for creating a task
type CreateTaskRequest struct {
	PropertyID      int      `json:"property_id"`
	Type            TaskType `json:"type"`
	AssigneeUserID  *int     `json:"assignee_user_id"`
	ExternalContact string   `json:"external_contact"`
	ScheduledDate   string   `json:"scheduled_date"` // YYYY-MM-DD
	Notes           string   `json:"notes"`
	UseTemplate     bool     `json:"use_template"`  // seed checklist from the property's template
	PickAssignee    bool     `json:"pick_assignee"` // route via the workload balancer instead of naming an assignee
}

// ChecklistOp is one checklist mutation. Op selects the shape; the other
// fields are read per-op.
type ChecklistOp struct {
	Op string `json:"op"` // toggle_supply | set_supply_usage | toggle_subtask | set_area | add_photo

	SupplyID  int    `json:"supply_id,omitempty"`
	Checked   bool   `json:"checked,omitempty"`
	QtyUsed   int    `json:"qty_used,omitempty"`
	AreaIndex int    `json:"area_index,omitempty"`
	SubTaskID int    `json:"sub_task_id,omitempty"`
	Completed bool   `json:"completed,omitempty"`
	Notes     string `json:"notes,omitempty"`
	PhotoURL  string `json:"photo_url,omitempty"`
}

// UpdateTaskNotesRequest replaces a task's free-form notes.
type UpdateTaskNotesRequest struct {
	Notes string `json:"notes"`
}

// RejectTaskRequest carries the mandatory rejection reason.
type RejectTaskRequest struct {
	Reason string `json:"reason"`
}

// ReopenTaskRequest carries the mandatory reopen note.
type ReopenTaskRequest struct {
	Note string `json:"note"`
}
