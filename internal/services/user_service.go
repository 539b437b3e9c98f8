package services

import (
	"context"
	"log"

	"stayops-backend/internal/apperr"
	"stayops-backend/internal/auth"
	"stayops-backend/internal/models"
	"stayops-backend/internal/repositories"
)

// UserService manages accounts. Only admins create or modify users.
type UserService struct {
	store repositories.Store
}

func NewUserService(store repositories.Store) *UserService {
	return &UserService{store: store}
}

func validRole(role string) bool {
	switch role {
	case models.RoleAdmin, models.RoleManager, models.RoleOperator:
		return true
	}
	return false
}

func (s *UserService) Create(ctx context.Context, actor models.Actor, req *models.CreateUserRequest) (*models.User, error) {
	if actor.Role != models.RoleAdmin && !actor.IsSuperAdmin {
		return nil, apperr.Forbidden("only admins can create users")
	}
	if req.Name == "" || req.Email == "" {
		return nil, apperr.Validation("name and email are required")
	}
	if len(req.Password) < 8 {
		return nil, apperr.Validation("password must be at least 8 characters")
	}
	if !validRole(req.Role) {
		return nil, apperr.Validation("unknown role %q", req.Role)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Name:                req.Name,
		Email:               req.Email,
		Phone:               req.Phone,
		PasswordHash:        hash,
		Role:                req.Role,
		IsSuperAdmin:        req.IsSuperAdmin,
		IsActive:            true,
		CanManageLeads:      req.CanManageLeads,
		CanManageAnalyses:   req.CanManageAnalyses,
		CanManageOperations: req.CanManageOperations,
		CanManageOnboarding: req.CanManageOnboarding,
	}
	if err := s.store.Users().Create(ctx, user); err != nil {
		return nil, err
	}
	log.Printf("[User] created user %d (%s)", user.ID, user.Role)
	return user, nil
}

func (s *UserService) Get(ctx context.Context, actor models.Actor, id int) (*models.User, error) {
	if !actor.IsManager() && actor.UserID != id {
		return nil, apperr.NotFound("user %d not found", id)
	}
	return s.store.Users().Get(ctx, id)
}

func (s *UserService) List(ctx context.Context, actor models.Actor) ([]*models.User, error) {
	if !actor.IsManager() {
		return nil, apperr.Forbidden("only managers can list users")
	}
	return s.store.Users().List(ctx)
}

func (s *UserService) Update(ctx context.Context, actor models.Actor, id int, req *models.UpdateUserRequest) (*models.User, error) {
	if actor.Role != models.RoleAdmin && !actor.IsSuperAdmin {
		return nil, apperr.Forbidden("only admins can update users")
	}
	user, err := s.store.Users().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Role != "" && !validRole(req.Role) {
		return nil, apperr.Validation("unknown role %q", req.Role)
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.Phone != "" {
		user.Phone = req.Phone
	}
	if req.Role != "" {
		user.Role = req.Role
	}
	if req.Password != "" {
		if len(req.Password) < 8 {
			return nil, apperr.Validation("password must be at least 8 characters")
		}
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	user.IsActive = req.IsActive
	user.CanManageLeads = req.CanManageLeads
	user.CanManageAnalyses = req.CanManageAnalyses
	user.CanManageOperations = req.CanManageOperations
	user.CanManageOnboarding = req.CanManageOnboarding

	if err := s.store.Users().Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
