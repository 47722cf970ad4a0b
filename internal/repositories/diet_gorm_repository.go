package repositories

import (
	"context"
	"errors"
	"fmt"

	"dailydiet/internal/apperrors"
	"dailydiet/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMDietRepository is a GORM implementation of DietRepository.
type GORMDietRepository struct {
	db *gorm.DB
}

// NewGORMDietRepository creates a new instance of GORMDietRepository.
func NewGORMDietRepository(db *gorm.DB) *GORMDietRepository {
	return &GORMDietRepository{
		db: db,
	}
}

// Create creates a new diet entry in the database.
func (r *GORMDietRepository) Create(ctx context.Context, diet *models.Diet) error {
	if diet.ID == "" {
		diet.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(diet).Error; err != nil {
		return fmt.Errorf("failed to create diet: %w", err)
	}
	return nil
}

// Update overwrites the mutable fields of an entry owned by diet.UserID.
func (r *GORMDietRepository) Update(ctx context.Context, diet *models.Diet) error {
	res := r.db.WithContext(ctx).
		Model(&models.Diet{}).
		Where("id = ? AND user_id = ?", diet.ID, diet.UserID).
		Select("name", "description", "is_on_diet", "date", "updated_at").
		Updates(diet)
	if res.Error != nil {
		return fmt.Errorf("failed to update diet: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("diet with ID %s not found for update: %w", diet.ID, apperrors.ErrNotFound)
	}
	return nil
}

// Delete deletes an entry by its ID when owned by userID.
func (r *GORMDietRepository) Delete(ctx context.Context, userID, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Diet{}, "id = ? AND user_id = ?", id, userID)
	if res.Error != nil {
		return fmt.Errorf("failed to delete diet: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("diet with ID %s not found for deletion: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

// GetByID retrieves a single entry matching both id and owner.
func (r *GORMDietRepository) GetByID(ctx context.Context, userID, id string) (*models.Diet, error) {
	var diet models.Diet
	if err := r.db.WithContext(ctx).First(&diet, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("diet with ID %s not found: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get diet by ID %s: %w", id, err)
	}
	return &diet, nil
}

// ListByUser retrieves every entry owned by userID in storage order.
func (r *GORMDietRepository) ListByUser(ctx context.Context, userID string) ([]models.Diet, error) {
	diets := []models.Diet{}
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&diets).Error; err != nil {
		return nil, fmt.Errorf("failed to list diets: %w", err)
	}
	return diets, nil
}

// ListByUserNewestFirst retrieves every entry owned by userID, most recent meal first.
func (r *GORMDietRepository) ListByUserNewestFirst(ctx context.Context, userID string) ([]models.Diet, error) {
	diets := []models.Diet{}
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("date DESC").Find(&diets).Error; err != nil {
		return nil, fmt.Errorf("failed to list diets by date: %w", err)
	}
	return diets, nil
}
