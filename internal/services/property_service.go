package services

import (
	"context"
	"log"

	"stayops-backend/internal/apperr"
	"stayops-backend/internal/models"
	"stayops-backend/internal/repositories"
)

// PropertyService manages the property catalog and checklist templates.
type PropertyService struct {
	store repositories.Store
}

func NewPropertyService(store repositories.Store) *PropertyService {
	return &PropertyService{store: store}
}

func (s *PropertyService) Create(ctx context.Context, actor models.Actor, req *models.CreatePropertyRequest) (*models.Property, error) {
	if !actor.IsManager() {
		return nil, apperr.Forbidden("only managers can create properties")
	}
	if req.Name == "" {
		return nil, apperr.Validation("property name is required")
	}

	property := &models.Property{
		Name:              req.Name,
		Address:           req.Address,
		City:              req.City,
		MaxGuests:         req.MaxGuests,
		ChecklistTemplate: req.ChecklistTemplate,
		IsActive:          true,
	}
	if err := s.store.Properties().Create(ctx, property); err != nil {
		return nil, err
	}
	log.Printf("[Property] created property %d (%s)", property.ID, property.Name)
	return property, nil
}

func (s *PropertyService) Get(ctx context.Context, id int) (*models.Property, error) {
	return s.store.Properties().Get(ctx, id)
}

func (s *PropertyService) List(ctx context.Context) ([]*models.Property, error) {
	return s.store.Properties().List(ctx)
}

func (s *PropertyService) Update(ctx context.Context, actor models.Actor, id int, req *models.CreatePropertyRequest) (*models.Property, error) {
	if !actor.IsManager() {
		return nil, apperr.Forbidden("only managers can update properties")
	}
	property, err := s.store.Properties().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != "" {
		property.Name = req.Name
	}
	property.Address = req.Address
	property.City = req.City
	property.MaxGuests = req.MaxGuests
	property.ChecklistTemplate = req.ChecklistTemplate
	if err := s.store.Properties().Update(ctx, property); err != nil {
		return nil, err
	}
	return property, nil
}

func (s *PropertyService) Deactivate(ctx context.Context, actor models.Actor, id int) error {
	if !actor.IsManager() {
		return apperr.Forbidden("only managers can deactivate properties")
	}
	return s.store.Properties().Deactivate(ctx, id)
}
