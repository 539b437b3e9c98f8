package services

import (
	"context"
	"log"

	"stayops-backend/internal/apperr"
	"stayops-backend/internal/auth"
	"stayops-backend/internal/models"
	"stayops-backend/internal/repositories"
)

// AuthService authenticates users and mints access tokens.
type AuthService struct {
	store  repositories.Store
	tokens *auth.TokenManager
}

func NewAuthService(store repositories.Store, tokens *auth.TokenManager) *AuthService {
	return &AuthService{store: store, tokens: tokens}
}

// Login verifies credentials and returns a signed token. Unknown email
// and wrong password produce the same message so neither can be probed.
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.store.Users().GetByEmail(ctx, req.Email)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return nil, apperr.Forbidden("invalid email or password")
		}
		return nil, err
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, apperr.Forbidden("invalid email or password")
	}
	if !user.IsActive {
		return nil, apperr.Forbidden("account is disabled")
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, err
	}
	log.Printf("[Auth] user %d logged in", user.ID)
	return &models.AuthResponse{Token: token, User: user}, nil
}
