package categories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefrontlabs/storefront/internal/repo"
	"github.com/storefrontlabs/storefront/pkg/db/models"
)

// Repository exposes category persistence operations.
type Repository struct {
	repo.Base
}

// NewRepository constructs a categories repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Create inserts a new category.
func (r *Repository) Create(ctx context.Context, category *models.Category) error {
	return r.DB(ctx).Create(category).Error
}

// FindByID loads a category by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := r.DB(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// List returns all categories ordered by name.
func (r *Repository) List(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	if err := r.DB(ctx).Order("name asc").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Update persists the provided category fields.
func (r *Repository) Update(ctx context.Context, category *models.Category) error {
	return r.DB(ctx).Save(category).Error
}

// Delete removes the category; product references become NULL via the FK.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.DB(ctx).Delete(&models.Category{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
