package services

import (
	"context"

	"stayops-backend/internal/apperr"
	"stayops-backend/internal/models"
	"stayops-backend/internal/repositories"
)

// AssignmentService routes new work to the least-loaded eligible user.
// Each of the four categories keeps an independent counter per user.
type AssignmentService struct {
	store repositories.Store
}

func NewAssignmentService(store repositories.Store) *AssignmentService {
	return &AssignmentService{store: store}
}

// PickAssignee returns the eligible user with the lowest counter for the
// category, or nil when nobody is eligible: the work stays unassigned
// rather than failing. Eligibility candidates come ordered by id, and
// the strict less-than comparison keeps the first seen, so ties go to
// the lowest id.
func (s *AssignmentService) PickAssignee(ctx context.Context, category models.AssignmentCategory) (*models.User, error) {
	if !category.Valid() {
		return nil, apperr.Validation("unknown assignment category %q", category)
	}
	candidates, err := s.store.Users().ListEligibleAssignees(ctx, category)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.CountFor(category) < best.CountFor(category) {
			best = c
		}
	}
	return best, nil
}

// Assign picks the least-loaded eligible user and claims a workload
// slot. Returns nil when nobody is eligible.
func (s *AssignmentService) Assign(ctx context.Context, category models.AssignmentCategory) (*models.User, error) {
	user, err := s.PickAssignee(ctx, category)
	if err != nil || user == nil {
		return nil, err
	}
	if err := s.store.Users().AdjustAssignmentCount(ctx, user.ID, category, 1); err != nil {
		return nil, err
	}
	return user, nil
}

// Release frees a workload slot when the assigned work reaches a terminal
// state. The counter floors at zero, so a double release is harmless.
func (s *AssignmentService) Release(ctx context.Context, userID int, category models.AssignmentCategory) error {
	return s.store.Users().AdjustAssignmentCount(ctx, userID, category, -1)
}
