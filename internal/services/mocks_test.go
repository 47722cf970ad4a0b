package services_test

import (
	"context"
	"io"

	"dailydiet/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(_ context.Context, user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(_ context.Context, user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetBySessionID(_ context.Context, sessionID string) (*models.User, error) {
	args := m.Called(sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockBlobStore is a mock implementation of storage.BlobStore
type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) Put(_ context.Context, key, contentType string, body io.Reader) (string, error) {
	args := m.Called(key, contentType, body)
	return args.String(0), args.Error(1)
}

// MockMetricsCache is a mock implementation of services.MetricsCache
type MockMetricsCache struct {
	mock.Mock
}

func (m *MockMetricsCache) Get(_ context.Context, userID string) (*models.DietMetrics, bool, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.DietMetrics), args.Bool(1), args.Error(2)
}

func (m *MockMetricsCache) Set(_ context.Context, userID string, metrics *models.DietMetrics) error {
	args := m.Called(userID, metrics)
	return args.Error(0)
}

func (m *MockMetricsCache) Invalidate(_ context.Context, userID string) error {
	args := m.Called(userID)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of services.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishDietEvent(event string, diet models.Diet) error {
	args := m.Called(event, diet)
	return args.Error(0)
}
