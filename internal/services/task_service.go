package services

import (
	"context"
	"log"
	"time"

	"stayops-backend/internal/apperr"
	"stayops-backend/internal/models"
	"stayops-backend/internal/repositories"
)

// TaskService owns the task lifecycle up to review: creation, checklist
// progress and completion. Review decisions live in ReviewService.
type TaskService struct {
	store      repositories.Store
	assignment *AssignmentService
	notifier   Notifier
}

func NewTaskService(store repositories.Store, assignment *AssignmentService, notifier Notifier) *TaskService {
	return &TaskService{store: store, assignment: assignment, notifier: notifier}
}

// Create validates assignment rules, optionally seeds the checklist from
// the property template and opens the task in TODO.
func (s *TaskService) Create(ctx context.Context, actor models.Actor, req *models.CreateTaskRequest) (*models.Task, error) {
	if !actor.IsManager() {
		return nil, apperr.Forbidden("only managers can create tasks")
	}
	if !req.Type.Valid() {
		return nil, apperr.Validation("unknown task type %q", req.Type)
	}

	autoAssigned := false
	if req.PickAssignee {
		if req.AssigneeUserID != nil || req.ExternalContact != "" {
			return nil, apperr.Validation("pick_assignee cannot be combined with a named assignee")
		}
		picked, err := s.assignment.Assign(ctx, models.CategoryOperations)
		if err != nil {
			return nil, err
		}
		if picked == nil {
			return nil, apperr.Validation("no eligible assignees for automatic routing")
		}
		req.AssigneeUserID = &picked.ID
		autoAssigned = true
	}
	releaseSlot := func() {
		if !autoAssigned {
			return
		}
		if err := s.assignment.Release(ctx, *req.AssigneeUserID, models.CategoryOperations); err != nil {
			log.Printf("[Task] failed to release slot for user %d: %v", *req.AssigneeUserID, err)
		}
	}

	hasAssignee := req.AssigneeUserID != nil
	hasExternal := req.ExternalContact != ""
	if req.Type == models.TaskTypeCleaning {
		// Cleaning runs the stay checklist, which only internal operators
		// can fill in.
		if !hasAssignee || hasExternal {
			return nil, apperr.Validation("cleaning tasks require an internal assignee")
		}
	} else if hasAssignee == hasExternal {
		return nil, apperr.Validation("exactly one of assignee or external contact is required")
	}

	scheduledDate, err := time.Parse("2006-01-02", req.ScheduledDate)
	if err != nil {
		releaseSlot()
		return nil, apperr.Validation("scheduled_date must be YYYY-MM-DD")
	}

	property, err := s.store.Properties().Get(ctx, req.PropertyID)
	if err != nil {
		releaseSlot()
		return nil, err
	}
	if hasAssignee {
		if _, err := s.store.Users().Get(ctx, *req.AssigneeUserID); err != nil {
			releaseSlot()
			return nil, err
		}
	}

	task := &models.Task{
		PropertyID:      property.ID,
		Type:            req.Type,
		AssigneeUserID:  req.AssigneeUserID,
		ExternalContact: req.ExternalContact,
		AutoAssigned:    autoAssigned,
		ScheduledDate:   scheduledDate,
		Status:          models.StatusTodo,
		Notes:           req.Notes,
		CreatedByUserID: actor.UserID,
	}
	if req.UseTemplate {
		task.Checklist = property.ChecklistTemplate
	}

	err = s.store.WithTx(ctx, func(tx repositories.Store) error {
		if err := tx.Tasks().Create(ctx, task); err != nil {
			return err
		}
		// Seed one usage row per linked supply line so expected vs used is
		// queryable without unpacking the checklist blob.
		for _, supply := range task.Checklist.StaySupplies {
			if supply.SupplyItemID == nil {
				continue
			}
			usage := &models.TaskSupplyUsage{
				TaskID:       task.ID,
				SupplyItemID: *supply.SupplyItemID,
				ExpectedQty:  supply.ExpectedQty,
			}
			if err := tx.SupplyUsages().Upsert(ctx, usage); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		releaseSlot()
		return nil, err
	}

	log.Printf("[Task] created task %d (%s) for property %d", task.ID, task.Type, task.PropertyID)
	if s.notifier != nil {
		s.notifier.TaskAssigned(task)
	}
	return task, nil
}

// Get enforces visibility: operators see only tasks assigned to them, and
// a task outside an operator's view reads as not found rather than
// forbidden, so its existence is not leaked.
func (s *TaskService) Get(ctx context.Context, actor models.Actor, id int) (*models.Task, error) {
	task, err := s.store.Tasks().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsManager() && !task.IsAssignee(actor.UserID) {
		return nil, apperr.NotFound("task %d not found", id)
	}
	return task, nil
}

func (s *TaskService) List(ctx context.Context, actor models.Actor) ([]*models.Task, error) {
	if actor.IsManager() {
		return s.store.Tasks().List(ctx)
	}
	return s.store.Tasks().ListByAssignee(ctx, actor.UserID)
}

func (s *TaskService) ListByProperty(ctx context.Context, actor models.Actor, propertyID int) ([]*models.Task, error) {
	if !actor.IsManager() {
		return nil, apperr.Forbidden("only managers can list tasks by property")
	}
	return s.store.Tasks().ListByProperty(ctx, propertyID)
}

// Start moves TODO -> IN_PROGRESS. A repeat start of a task already in
// progress reports AlreadyApplied instead of failing, so a double tap on
// a flaky connection is harmless.
func (s *TaskService) Start(ctx context.Context, actor models.Actor, id int) (*models.ActionResult, error) {
	task, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !task.IsAssignee(actor.UserID) && !actor.IsManager() {
		return nil, apperr.NotFound("task %d not found", id)
	}

	won, err := s.store.Tasks().Start(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.settleAction(ctx, id, won, "start", models.StatusTodo, models.StatusInProgress)
}

// MutateChecklist applies one checklist operation to an in-progress task.
// Supply operations also sync the per-task usage row.
func (s *TaskService) MutateChecklist(ctx context.Context, actor models.Actor, id int, op *models.ChecklistOp) (*models.Task, error) {
	task, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !task.IsAssignee(actor.UserID) && !actor.IsManager() {
		return nil, apperr.NotFound("task %d not found", id)
	}
	if task.Status != models.StatusInProgress {
		return nil, apperr.StateConflict("update checklist", string(models.StatusInProgress), string(task.Status))
	}

	var touched *models.StaySupply
	switch op.Op {
	case "toggle_supply":
		touched, err = task.Checklist.ToggleStaySupply(op.SupplyID)
	case "set_supply_usage":
		touched, err = task.Checklist.SetStaySupplyUsage(op.SupplyID, op.Checked, op.QtyUsed)
	case "toggle_subtask":
		err = task.Checklist.ToggleSubTask(op.AreaIndex, op.SubTaskID)
	case "set_area":
		err = task.Checklist.SetArea(op.AreaIndex, op.Completed, op.Notes)
	case "add_photo":
		err = task.Checklist.AddAreaPhoto(op.AreaIndex, op.PhotoURL)
	default:
		err = apperr.Validation("unknown checklist operation %q", op.Op)
	}
	if err != nil {
		return nil, err
	}

	err = s.store.WithTx(ctx, func(tx repositories.Store) error {
		if err := tx.Tasks().UpdateChecklist(ctx, id, task.Checklist); err != nil {
			return err
		}
		if touched != nil && touched.SupplyItemID != nil {
			usage := &models.TaskSupplyUsage{
				TaskID:       id,
				SupplyItemID: *touched.SupplyItemID,
				ExpectedQty:  touched.ExpectedQty,
				QtyUsed:      touched.QtyUsed,
			}
			if err := tx.SupplyUsages().Upsert(ctx, usage); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateNotes replaces the task's free-form notes.
func (s *TaskService) UpdateNotes(ctx context.Context, actor models.Actor, id int, notes string) (*models.Task, error) {
	task, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !task.IsAssignee(actor.UserID) && !actor.IsManager() {
		return nil, apperr.NotFound("task %d not found", id)
	}
	if err := s.store.Tasks().UpdateNotes(ctx, id, notes); err != nil {
		return nil, err
	}
	task.Notes = notes
	return task, nil
}

// Complete moves IN_PROGRESS -> COMPLETED after the checklist validates.
// Resubmitting an already completed task reports AlreadyApplied.
func (s *TaskService) Complete(ctx context.Context, actor models.Actor, id int) (*models.ActionResult, error) {
	task, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !task.IsAssignee(actor.UserID) && !actor.IsManager() {
		return nil, apperr.NotFound("task %d not found", id)
	}
	if task.Status == models.StatusCompleted {
		return &models.ActionResult{Task: task, AlreadyApplied: true}, nil
	}
	if task.Status != models.StatusInProgress {
		return nil, apperr.StateConflict("complete", string(models.StatusInProgress), string(task.Status))
	}
	if err := task.Checklist.ValidateComplete(); err != nil {
		return nil, err
	}

	won, err := s.store.Tasks().Complete(ctx, id, time.Now())
	if err != nil {
		return nil, err
	}
	return s.settleAction(ctx, id, won, "complete", models.StatusInProgress, models.StatusCompleted)
}

// Delete removes a task. Linked maintenance reports are detached first so
// they outlive the task that raised them.
func (s *TaskService) Delete(ctx context.Context, actor models.Actor, id int) error {
	if !actor.IsManager() {
		return apperr.Forbidden("only managers can delete tasks")
	}
	task, err := s.store.Tasks().Get(ctx, id)
	if err != nil {
		return err
	}
	err = s.store.WithTx(ctx, func(tx repositories.Store) error {
		if err := tx.Reports().DetachFromTask(ctx, id); err != nil {
			return err
		}
		if err := tx.SupplyUsages().DeleteByTask(ctx, id); err != nil {
			return err
		}
		return tx.Tasks().Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	// An auto-assigned task that never reached approval still holds its
	// assignee's operations slot.
	if task.AutoAssigned && task.Status != models.StatusApproved && task.AssigneeUserID != nil {
		if err := s.assignment.Release(ctx, *task.AssigneeUserID, models.CategoryOperations); err != nil {
			log.Printf("[Task] failed to release slot for user %d: %v", *task.AssigneeUserID, err)
		}
	}
	return nil
}

// settleAction resolves the outcome of an optimistic transition. When the
// guarded update moved no row, the task is re-read: already in the target
// state means an idempotent duplicate, anything else is a state conflict.
func (s *TaskService) settleAction(ctx context.Context, id int, won bool, action string, required, target models.TaskStatus) (*models.ActionResult, error) {
	task, err := s.store.Tasks().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if won {
		return &models.ActionResult{Task: task}, nil
	}
	if task.Status == target {
		return &models.ActionResult{Task: task, AlreadyApplied: true}, nil
	}
	return nil, apperr.StateConflict(action, string(required), string(task.Status))
}
