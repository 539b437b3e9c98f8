package services

import (
	"context"
	"log"

	"stayops-backend/internal/apperr"
	"stayops-backend/internal/models"
	"stayops-backend/internal/repositories"
)

// LeadService handles CRM intake. New leads are routed through the
// assignment balancer; the terminal LOST status releases the owner's
// workload slot.
type LeadService struct {
	store      repositories.Store
	assignment *AssignmentService
	notifier   Notifier
}

func NewLeadService(store repositories.Store, assignment *AssignmentService, notifier Notifier) *LeadService {
	return &LeadService{store: store, assignment: assignment, notifier: notifier}
}

func (s *LeadService) Create(ctx context.Context, actor models.Actor, req *models.CreateLeadRequest) (*models.Lead, error) {
	if req.Name == "" {
		return nil, apperr.Validation("lead name is required")
	}
	if req.Phone == "" && req.Email == "" {
		return nil, apperr.Validation("a phone number or email is required")
	}

	owner, err := s.assignment.Assign(ctx, models.CategoryLeads)
	if err != nil {
		return nil, err
	}

	lead := &models.Lead{
		Name:            req.Name,
		Phone:           req.Phone,
		Email:           req.Email,
		Source:          req.Source,
		Status:          models.LeadStatusNew,
		Notes:           req.Notes,
		CreatedByUserID: actor.UserID,
	}
	if owner != nil {
		lead.AssignedUserID = &owner.ID
	}
	if err := s.store.Leads().Create(ctx, lead); err != nil {
		// Give the claimed slot back; the lead never landed.
		if owner != nil {
			if relErr := s.assignment.Release(ctx, owner.ID, models.CategoryLeads); relErr != nil {
				log.Printf("[Lead] failed to release slot for user %d: %v", owner.ID, relErr)
			}
		}
		return nil, err
	}

	if owner != nil {
		log.Printf("[Lead] created lead %d, assigned to user %d", lead.ID, owner.ID)
		if s.notifier != nil {
			s.notifier.LeadAssigned(lead)
		}
	} else {
		log.Printf("[Lead] created lead %d with no eligible owner, left unassigned", lead.ID)
	}
	return lead, nil
}

func (s *LeadService) Get(ctx context.Context, actor models.Actor, id int) (*models.Lead, error) {
	lead, err := s.store.Leads().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsManager() && (lead.AssignedUserID == nil || *lead.AssignedUserID != actor.UserID) {
		return nil, apperr.NotFound("lead %d not found", id)
	}
	return lead, nil
}

func (s *LeadService) List(ctx context.Context, actor models.Actor) ([]*models.Lead, error) {
	if actor.IsManager() {
		return s.store.Leads().List(ctx)
	}
	return s.store.Leads().ListByAssignee(ctx, actor.UserID)
}

func (s *LeadService) UpdateStatus(ctx context.Context, actor models.Actor, id int, status string) (*models.Lead, error) {
	switch status {
	case models.LeadStatusNew, models.LeadStatusContacted, models.LeadStatusWon, models.LeadStatusLost:
	default:
		return nil, apperr.Validation("unknown lead status %q", status)
	}

	lead, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.Leads().UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}

	// Losing a lead frees its owner's slot for the next intake.
	if status == models.LeadStatusLost && lead.Status != models.LeadStatusLost && lead.AssignedUserID != nil {
		if err := s.assignment.Release(ctx, *lead.AssignedUserID, models.CategoryLeads); err != nil {
			log.Printf("[Lead] failed to release slot for user %d: %v", *lead.AssignedUserID, err)
		}
	}

	lead.Status = status
	return lead, nil
}
