package services

import (
	"context"
	"log"

	"stayops-backend/internal/apperr"
	"stayops-backend/internal/models"
	"stayops-backend/internal/repositories"
)

// ReviewService owns the manager review step: approve, reject and reopen.
// Approval is where reported supply usage becomes inventory consumption,
// and both sides commit in one transaction.
type ReviewService struct {
	store      repositories.Store
	assignment *AssignmentService
	notifier   Notifier
	cache      BalanceCache
}

func NewReviewService(store repositories.Store, assignment *AssignmentService, notifier Notifier, cache BalanceCache) *ReviewService {
	return &ReviewService{store: store, assignment: assignment, notifier: notifier, cache: cache}
}

// Approve moves COMPLETED -> APPROVED and posts the task's supply
// consumption to the ledger atomically. Whichever concurrent approval
// loses the guarded update sees AlreadyApplied and posts nothing, so
// consumption lands exactly once per task.
func (s *ReviewService) Approve(ctx context.Context, actor models.Actor, id int) (*models.ActionResult, error) {
	if !actor.IsManager() {
		return nil, apperr.Forbidden("only managers can approve tasks")
	}

	var alreadyApplied bool
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		won, err := tx.Tasks().Approve(ctx, id, actor.UserID)
		if err != nil {
			return err
		}
		if !won {
			task, err := tx.Tasks().Get(ctx, id)
			if err != nil {
				return err
			}
			if task.Status == models.StatusApproved {
				alreadyApplied = true
				return nil
			}
			return apperr.StateConflict("approve", string(models.StatusCompleted), string(task.Status))
		}
		return PostTaskConsumption(ctx, tx, id, actor.UserID)
	})
	if err != nil {
		return nil, err
	}

	task, err := s.store.Tasks().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if alreadyApplied {
		return &models.ActionResult{Task: task, AlreadyApplied: true}, nil
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
	// Approval closes out an auto-routed task, freeing its assignee's
	// operations slot for the balancer.
	if task.AutoAssigned && task.AssigneeUserID != nil {
		if err := s.assignment.Release(ctx, *task.AssigneeUserID, models.CategoryOperations); err != nil {
			log.Printf("[Review] failed to release slot for user %d: %v", *task.AssigneeUserID, err)
		}
	}
	log.Printf("[Review] task %d approved by user %d", id, actor.UserID)
	if s.notifier != nil {
		s.notifier.TaskReviewed(task, true)
	}
	return &models.ActionResult{Task: task}, nil
}

// Reject moves COMPLETED -> REJECTED with a mandatory reason. No
// inventory is touched: consumption only posts on approval.
func (s *ReviewService) Reject(ctx context.Context, actor models.Actor, id int, reason string) (*models.ActionResult, error) {
	if !actor.IsManager() {
		return nil, apperr.Forbidden("only managers can reject tasks")
	}
	if reason == "" {
		return nil, apperr.Validation("a rejection reason is required")
	}

	won, err := s.store.Tasks().Reject(ctx, id, actor.UserID, reason)
	if err != nil {
		return nil, err
	}
	task, err := s.store.Tasks().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !won {
		if task.Status == models.StatusRejected {
			return &models.ActionResult{Task: task, AlreadyApplied: true}, nil
		}
		return nil, apperr.StateConflict("reject", string(models.StatusCompleted), string(task.Status))
	}

	log.Printf("[Review] task %d rejected by user %d", id, actor.UserID)
	if s.notifier != nil {
		s.notifier.TaskReviewed(task, false)
	}
	return &models.ActionResult{Task: task}, nil
}

// Reopen sends a rejected task back to IN_PROGRESS with a mandatory note.
// This is the lifecycle's only back-edge.
func (s *ReviewService) Reopen(ctx context.Context, actor models.Actor, id int, note string) (*models.ActionResult, error) {
	if !actor.IsManager() {
		return nil, apperr.Forbidden("only managers can reopen tasks")
	}
	if note == "" {
		return nil, apperr.Validation("a reopen note is required")
	}

	won, err := s.store.Tasks().Reopen(ctx, id, note)
	if err != nil {
		return nil, err
	}
	task, err := s.store.Tasks().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !won {
		if task.Status == models.StatusInProgress && task.ReopenNote != "" {
			return &models.ActionResult{Task: task, AlreadyApplied: true}, nil
		}
		return nil, apperr.StateConflict("reopen", string(models.StatusRejected), string(task.Status))
	}

	log.Printf("[Review] task %d reopened by user %d", id, actor.UserID)
	return &models.ActionResult{Task: task}, nil
}
