package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/rpsms/sms-organizer-backend/internal/models"
	"gorm.io/gorm"
)

// FilterRepository defines the interface for filter data access. GetAll
// returns filters in creation order, which is also the order they are
// applied to messages.
type FilterRepository interface {
	Insert(ctx context.Context, filter *models.Filter) error
	Update(ctx context.Context, filter *models.Filter) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*models.Filter, error)
	GetAll(ctx context.Context) ([]models.Filter, error)
}

// filterRepository implements FilterRepository using GORM
type filterRepository struct {
	db *gorm.DB
}

// NewFilterRepository creates a new FilterRepository instance
func NewFilterRepository(db *gorm.DB) FilterRepository {
	return &filterRepository{db: db}
}

// Insert persists a new filter and assigns its id
func (r *filterRepository) Insert(ctx context.Context, filter *models.Filter) error {
	result := r.db.WithContext(ctx).Create(filter)
	if result.Error != nil {
		return fmt.Errorf("failed to insert filter: %w", result.Error)
	}
	return nil
}

// Update replaces a stored filter by id
func (r *filterRepository) Update(ctx context.Context, filter *models.Filter) error {
	if filter.ID == 0 {
		return ErrInvalidInput
	}
	result := r.db.WithContext(ctx).Model(&models.Filter{}).
		Where("id = ?", filter.ID).
		Select("*").Omit("id", "created_date").
		Updates(filter)
	if result.Error != nil {
		return fmt.Errorf("failed to update filter: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete deletes a filter by its ID
func (r *filterRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Filter{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete filter: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID retrieves a filter by its ID
func (r *filterRepository) GetByID(ctx context.Context, id uint) (*models.Filter, error) {
	var filter models.Filter
	result := r.db.WithContext(ctx).First(&filter, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get filter by ID: %w", result.Error)
	}
	return &filter, nil
}

// GetAll retrieves every filter in creation order
func (r *filterRepository) GetAll(ctx context.Context) ([]models.Filter, error) {
	var filters []models.Filter
	result := r.db.WithContext(ctx).Order("id ASC").Find(&filters)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get all filters: %w", result.Error)
	}
	return filters, nil
}
