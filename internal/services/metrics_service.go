package services

import (
	"context"

	"dailydiet/internal/models"
	"dailydiet/internal/repositories"

	"github.com/sirupsen/logrus"
)

// MetricsService aggregates statistics over a user's diet entries.
type MetricsService struct {
	dietRepo repositories.DietRepository
	cache    MetricsCache // optional
}

// NewMetricsService creates a new MetricsService. cache may be nil.
func NewMetricsService(dietRepo repositories.DietRepository, cache MetricsCache) *MetricsService {
	return &MetricsService{dietRepo: dietRepo, cache: cache}
}

// Summarize computes totals and the best on-diet sequence for ownerID.
func (s *MetricsService) Summarize(ctx context.Context, ownerID string) (*models.DietMetrics, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, ownerID)
		if err != nil {
			logrus.WithError(err).WithField("user_id", ownerID).Warn("metrics cache read failed")
		} else if ok {
			return cached, nil
		}
	}

	diets, err := s.dietRepo.ListByUserNewestFirst(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	metrics := &models.DietMetrics{
		TotalDiets:         len(diets),
		BestOnDietSequence: BestOnDietSequence(diets),
	}
	for _, d := range diets {
		if d.IsOnDiet {
			metrics.TotalDietsOnDiet++
		} else {
			metrics.TotalDietsOffDiet++
		}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, ownerID, metrics); err != nil {
			logrus.WithError(err).WithField("user_id", ownerID).Warn("metrics cache write failed")
		}
	}
	return metrics, nil
}

// BestOnDietSequence returns the longest run of consecutive on-diet entries.
// diets must already be ordered most recent first.
func BestOnDietSequence(diets []models.Diet) int {
	current, best := 0, 0
	for _, d := range diets {
		if d.IsOnDiet {
			current++
		} else {
			current = 0
		}
		if current > best {
			best = current
		}
	}
	return best
}
