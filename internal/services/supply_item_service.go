package services

import (
	"context"

	"stayops-backend/internal/apperr"
	"stayops-backend/internal/models"
	"stayops-backend/internal/repositories"
)

// SupplyItemService manages the consumables catalog.
type SupplyItemService struct {
	store repositories.Store
	cache BalanceCache
}

func NewSupplyItemService(store repositories.Store, cache BalanceCache) *SupplyItemService {
	return &SupplyItemService{store: store, cache: cache}
}

func (s *SupplyItemService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}

func (s *SupplyItemService) Create(ctx context.Context, actor models.Actor, req *models.CreateSupplyItemRequest) (*models.SupplyItem, error) {
	if !actor.IsManager() {
		return nil, apperr.Forbidden("only managers can create supply items")
	}
	if req.Name == "" {
		return nil, apperr.Validation("supply item name is required")
	}
	if req.QtyStandard < 0 || req.LowThreshold < 0 {
		return nil, apperr.Validation("quantities cannot be negative")
	}
	if req.LowThreshold > req.QtyStandard {
		return nil, apperr.Validation("low threshold cannot exceed the standard quantity")
	}

	item := &models.SupplyItem{
		Name:         req.Name,
		Unit:         req.Unit,
		QtyStandard:  req.QtyStandard,
		LowThreshold: req.LowThreshold,
		IsActive:     true,
	}
	if err := s.store.SupplyItems().Create(ctx, item); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return item, nil
}

func (s *SupplyItemService) Get(ctx context.Context, id int) (*models.SupplyItem, error) {
	return s.store.SupplyItems().Get(ctx, id)
}

func (s *SupplyItemService) List(ctx context.Context) ([]*models.SupplyItem, error) {
	return s.store.SupplyItems().List(ctx)
}

func (s *SupplyItemService) Update(ctx context.Context, actor models.Actor, id int, req *models.CreateSupplyItemRequest) (*models.SupplyItem, error) {
	if !actor.IsManager() {
		return nil, apperr.Forbidden("only managers can update supply items")
	}
	item, err := s.store.SupplyItems().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != "" {
		item.Name = req.Name
	}
	if req.Unit != "" {
		item.Unit = req.Unit
	}
	if req.QtyStandard < 0 || req.LowThreshold < 0 {
		return nil, apperr.Validation("quantities cannot be negative")
	}
	item.QtyStandard = req.QtyStandard
	item.LowThreshold = req.LowThreshold
	if item.LowThreshold > item.QtyStandard {
		return nil, apperr.Validation("low threshold cannot exceed the standard quantity")
	}
	if err := s.store.SupplyItems().Update(ctx, item); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return item, nil
}

func (s *SupplyItemService) Deactivate(ctx context.Context, actor models.Actor, id int) error {
	if !actor.IsManager() {
		return apperr.Forbidden("only managers can deactivate supply items")
	}
	if err := s.store.SupplyItems().Deactivate(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}
