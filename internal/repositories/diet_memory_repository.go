package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"dailydiet/internal/apperrors"
	"dailydiet/internal/models"

	"github.com/google/uuid"
)

// MemoryDietRepository is an in-memory implementation of DietRepository.
// It keeps insertion order so ListByUser mirrors storage order.
type MemoryDietRepository struct {
	diets map[string]models.Diet
	order []string
	mu    sync.RWMutex
}

// NewMemoryDietRepository creates a new instance of MemoryDietRepository.
func NewMemoryDietRepository() *MemoryDietRepository {
	return &MemoryDietRepository{
		diets: make(map[string]models.Diet),
	}
}

// Create adds a new entry.
func (r *MemoryDietRepository) Create(_ context.Context, diet *models.Diet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if diet.ID == "" {
		diet.ID = uuid.New().String()
	}
	if _, ok := r.diets[diet.ID]; ok {
		return fmt.Errorf("diet with ID %s already exists: %w", diet.ID, apperrors.ErrConflict)
	}
	r.diets[diet.ID] = *diet
	r.order = append(r.order, diet.ID)
	return nil
}

// Update modifies an existing entry owned by diet.UserID.
func (r *MemoryDietRepository) Update(_ context.Context, diet *models.Diet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.diets[diet.ID]
	if !ok || current.UserID != diet.UserID {
		return fmt.Errorf("diet with ID %s not found for update: %w", diet.ID, apperrors.ErrNotFound)
	}
	current.Name = diet.Name
	current.Description = diet.Description
	current.IsOnDiet = diet.IsOnDiet
	current.Date = diet.Date
	r.diets[diet.ID] = current
	return nil
}

// Delete removes an entry owned by userID.
func (r *MemoryDietRepository) Delete(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.diets[id]
	if !ok || current.UserID != userID {
		return fmt.Errorf("diet with ID %s not found for deletion: %w", id, apperrors.ErrNotFound)
	}
	delete(r.diets, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// GetByID returns an entry matching both id and owner.
func (r *MemoryDietRepository) GetByID(_ context.Context, userID, id string) (*models.Diet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	diet, ok := r.diets[id]
	if !ok || diet.UserID != userID {
		return nil, fmt.Errorf("diet with ID %s not found: %w", id, apperrors.ErrNotFound)
	}
	return &diet, nil
}

// ListByUser returns the user's entries in insertion order.
func (r *MemoryDietRepository) ListByUser(_ context.Context, userID string) ([]models.Diet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	diets := []models.Diet{}
	for _, id := range r.order {
		if d := r.diets[id]; d.UserID == userID {
			diets = append(diets, d)
		}
	}
	return diets, nil
}

// ListByUserNewestFirst returns the user's entries ordered by date descending.
// Entries sharing a date keep insertion order.
func (r *MemoryDietRepository) ListByUserNewestFirst(ctx context.Context, userID string) ([]models.Diet, error) {
	diets, err := r.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(diets, func(i, j int) bool {
		return diets[i].Date.After(diets[j].Date)
	})
	return diets, nil
}
