package services_test

import (
	"context"
	"errors"
	"testing"

	"dailydiet/internal/apperrors"
	"dailydiet/internal/models"
	"dailydiet/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionService_Resolve(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	service := services.NewSessionService(mockRepo)

	// Missing token fails without a lookup
	_, err := service.Resolve(ctx, "")
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	mockRepo.AssertNotCalled(t, "GetBySessionID", "")

	// Unknown token fails the same way
	mockRepo.On("GetBySessionID", "unknown").Return(nil, notFound("session")).Once()
	_, err = service.Resolve(ctx, "unknown")
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)

	// Known token resolves to its user
	mockRepo.On("GetBySessionID", "known").Return(&models.User{ID: "u1"}, nil).Once()
	user, err := service.Resolve(ctx, "known")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)

	// Storage failures are not reported as authentication failures
	mockRepo.On("GetBySessionID", "broken").Return(nil, errors.New("connection reset")).Once()
	_, err = service.Resolve(ctx, "broken")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrUnauthenticated)

	mockRepo.AssertExpectations(t)
}
