package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"dailydiet/internal/apperrors"
	"dailydiet/internal/models"
	"dailydiet/internal/repositories"
	"dailydiet/internal/storage"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RegisterInput carries the fields needed to create a user.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// UpdateUserInput carries optional profile changes. Empty fields are left untouched.
type UpdateUserInput struct {
	Name   string
	Email  string
	Avatar string // base64 image or data URL
}

// UserService handles registration, login and profile management.
type UserService struct {
	userRepo repositories.UserRepository
	hasher   PasswordHasher
	sessions *SessionService
	avatars  storage.BlobStore
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repositories.UserRepository, hasher PasswordHasher, sessions *SessionService, avatars storage.BlobStore) *UserService {
	return &UserService{
		userRepo: userRepo,
		hasher:   hasher,
		sessions: sessions,
		avatars:  avatars,
	}
}

// Register creates a user bound to a session token. presentedToken is the
// caller's current cookie value, reused when no other user holds it.
func (s *UserService) Register(ctx context.Context, in RegisterInput, presentedToken string) (*models.User, error) {
	email := normalizeEmail(in.Email)

	if existing, err := s.userRepo.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, fmt.Errorf("email '%s' already registered: %w", email, apperrors.ErrConflict)
	} else if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	token, err := s.sessionFor(ctx, presentedToken, nil)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:        uuid.New().String(),
		SessionID: &token,
		Name:      strings.TrimSpace(in.Name),
		Email:     email,
		Password:  hashed,
	}
	// A concurrent registration can slip past the pre-check; the unique
	// index then reports apperrors.ErrConflict from the repository.
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	logrus.WithField("user_id", user.ID).Info("user registered")
	return user, nil
}

// Login verifies credentials and returns the session token bound to the user.
func (s *UserService) Login(ctx context.Context, email, password, presentedToken string) (string, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return "", err
	}

	if !s.hasher.Verify(password, user.Password) {
		return "", fmt.Errorf("password mismatch for user %s: %w", user.ID, apperrors.ErrInvalidCredentials)
	}

	token, err := s.sessionFor(ctx, presentedToken, user)
	if err != nil {
		return "", err
	}
	if token != user.Session() {
		user.SessionID = &token
		if err := s.userRepo.Update(ctx, user); err != nil {
			return "", fmt.Errorf("failed to persist session: %w", err)
		}
	}

	logrus.WithField("user_id", user.ID).Info("user logged in")
	return token, nil
}

// Update changes the profile of userID. Callers may only update themselves;
// any other id is reported as not found.
func (s *UserService) Update(ctx context.Context, actorID, userID string, in UpdateUserInput) (*models.User, error) {
	if actorID != userID {
		return nil, fmt.Errorf("user with ID %s not found: %w", userID, apperrors.ErrNotFound)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(in.Name); name != "" {
		user.Name = name
	}

	if email := normalizeEmail(in.Email); email != "" && email != user.Email {
		if existing, err := s.userRepo.GetByEmail(ctx, email); err == nil && existing.ID != user.ID {
			return nil, fmt.Errorf("email '%s' already registered: %w", email, apperrors.ErrConflict)
		} else if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		user.Email = email
	}

	if in.Avatar != "" {
		ref, err := s.storeAvatar(ctx, user.ID, in.Avatar)
		if err != nil {
			return nil, err
		}
		user.Avatar = &ref
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetBySession returns the user bound to a session token.
func (s *UserService) GetBySession(ctx context.Context, token string) (*models.User, error) {
	return s.sessions.Resolve(ctx, token)
}

func (s *UserService) storeAvatar(ctx context.Context, userID, payload string) (string, error) {
	avatar, err := DecodeAvatar(payload)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("avatars/%s/%s%s", userID, uuid.New().String(), avatar.Extension)
	ref, err := s.avatars.Put(ctx, key, avatar.ContentType, bytes.NewReader(avatar.Data))
	if err != nil {
		return "", fmt.Errorf("failed to store avatar: %w", err)
	}
	return ref, nil
}

// sessionFor picks the token to bind to owner (nil while registering).
// The presented token wins unless it is malformed or held by another user;
// then the owner's existing token, and finally a freshly minted one.
func (s *UserService) sessionFor(ctx context.Context, presented string, owner *models.User) (string, error) {
	if _, err := uuid.Parse(presented); err == nil {
		holder, err := s.userRepo.GetBySessionID(ctx, presented)
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			return presented, nil
		case err != nil:
			return "", err
		case owner != nil && holder.ID == owner.ID:
			return presented, nil
		}
	}

	if owner != nil && owner.Session() != "" {
		return owner.Session(), nil
	}
	return uuid.New().String(), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
