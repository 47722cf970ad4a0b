package repositories

import (
	"context"

	"dailydiet/internal/models"
)

// DietRepository defines the interface for diet entry data access.
// Every lookup is scoped to the owning user.
type DietRepository interface {
	Create(ctx context.Context, diet *models.Diet) error
	Update(ctx context.Context, diet *models.Diet) error
	Delete(ctx context.Context, userID, id string) error
	GetByID(ctx context.Context, userID, id string) (*models.Diet, error)
	ListByUser(ctx context.Context, userID string) ([]models.Diet, error)
	// ListByUserNewestFirst returns the user's entries ordered by date descending.
	ListByUserNewestFirst(ctx context.Context, userID string) ([]models.Diet, error)
}
