package services

import (
	"context"
	"time"

	"dailydiet/internal/models"
	"dailydiet/internal/repositories"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Diet ledger event names published after successful writes.
const (
	EventDietCreated = "diet.created"
	EventDietUpdated = "diet.updated"
	EventDietDeleted = "diet.deleted"
)

// DietInput carries the mutable fields of a diet entry.
type DietInput struct {
	Name        string
	Description string
	IsOnDiet    bool
	Date        time.Time
}

// EventPublisher publishes diet ledger events to a broker.
type EventPublisher interface {
	PublishDietEvent(event string, diet models.Diet) error
}

// MetricsCache stores computed metrics per user.
type MetricsCache interface {
	Get(ctx context.Context, userID string) (*models.DietMetrics, bool, error)
	Set(ctx context.Context, userID string, metrics *models.DietMetrics) error
	Invalidate(ctx context.Context, userID string) error
}

// DietService handles business logic for diet entries. Every operation is
// scoped to the owning user.
type DietService struct {
	dietRepo  repositories.DietRepository
	cache     MetricsCache   // optional
	publisher EventPublisher // optional
}

// NewDietService creates a new DietService. cache and publisher may be nil.
func NewDietService(dietRepo repositories.DietRepository, cache MetricsCache, publisher EventPublisher) *DietService {
	return &DietService{
		dietRepo:  dietRepo,
		cache:     cache,
		publisher: publisher,
	}
}

// CreateDiet records a new entry for ownerID.
func (s *DietService) CreateDiet(ctx context.Context, ownerID string, in DietInput) (*models.Diet, error) {
	diet := &models.Diet{
		ID:          uuid.New().String(),
		UserID:      ownerID,
		Name:        in.Name,
		Description: in.Description,
		IsOnDiet:    in.IsOnDiet,
		Date:        in.Date.UTC(),
	}
	if err := s.dietRepo.Create(ctx, diet); err != nil {
		return nil, err
	}
	s.afterWrite(ctx, EventDietCreated, *diet)
	return diet, nil
}

// UpdateDiet overwrites the four mutable fields of an entry owned by ownerID.
func (s *DietService) UpdateDiet(ctx context.Context, ownerID, dietID string, in DietInput) (*models.Diet, error) {
	existing, err := s.dietRepo.GetByID(ctx, ownerID, dietID)
	if err != nil {
		return nil, err
	}

	existing.Name = in.Name
	existing.Description = in.Description
	existing.IsOnDiet = in.IsOnDiet
	existing.Date = in.Date.UTC()
	if err := s.dietRepo.Update(ctx, existing); err != nil {
		return nil, err
	}
	s.afterWrite(ctx, EventDietUpdated, *existing)
	return existing, nil
}

// GetDiet returns a single entry matching both dietID and ownerID.
func (s *DietService) GetDiet(ctx context.Context, ownerID, dietID string) (*models.Diet, error) {
	return s.dietRepo.GetByID(ctx, ownerID, dietID)
}

// ListDiets returns all entries owned by ownerID.
func (s *DietService) ListDiets(ctx context.Context, ownerID string) ([]models.Diet, error) {
	return s.dietRepo.ListByUser(ctx, ownerID)
}

// DeleteDiet removes an entry owned by ownerID.
func (s *DietService) DeleteDiet(ctx context.Context, ownerID, dietID string) error {
	if err := s.dietRepo.Delete(ctx, ownerID, dietID); err != nil {
		return err
	}
	s.afterWrite(ctx, EventDietDeleted, models.Diet{ID: dietID, UserID: ownerID})
	return nil
}

// afterWrite drops cached metrics and publishes the event. Failures here are
// logged only; the write itself already succeeded.
func (s *DietService) afterWrite(ctx context.Context, event string, diet models.Diet) {
	log := logrus.WithFields(logrus.Fields{"event": event, "diet_id": diet.ID, "user_id": diet.UserID})

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, diet.UserID); err != nil {
			log.WithError(err).Warn("failed to invalidate metrics cache")
		}
	}
	if s.publisher != nil {
		if err := s.publisher.PublishDietEvent(event, diet); err != nil {
			log.WithError(err).Warn("failed to publish diet event")
		}
	}
}
