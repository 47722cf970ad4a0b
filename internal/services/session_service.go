package services

import (
	"context"
	"errors"
	"fmt"

	"dailydiet/internal/apperrors"
	"dailydiet/internal/models"
	"dailydiet/internal/repositories"
)

// SessionService resolves session tokens into users.
type SessionService struct {
	userRepo repositories.UserRepository
}

// NewSessionService creates a new SessionService.
func NewSessionService(userRepo repositories.UserRepository) *SessionService {
	return &SessionService{userRepo: userRepo}
}

// Resolve returns the user bound to token. A missing token and an unknown
// token fail identically with apperrors.ErrUnauthenticated.
func (s *SessionService) Resolve(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, fmt.Errorf("no session token: %w", apperrors.ErrUnauthenticated)
	}

	user, err := s.userRepo.GetBySessionID(ctx, token)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("invalid session token: %w", apperrors.ErrUnauthenticated)
		}
		return nil, fmt.Errorf("failed to resolve session: %w", err)
	}
	return user, nil
}
