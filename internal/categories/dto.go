package categories

import (
	"time"

	"github.com/google/uuid"

	"github.com/storefrontlabs/storefront/pkg/db/models"
)

// CreateCategoryRequest is the inbound payload for category creation.
type CreateCategoryRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=120"`
	Slug        string  `json:"slug" validate:"omitempty,min=1,max=140"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

// UpdateCategoryRequest carries partial updates; nil fields are untouched.
type UpdateCategoryRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=120"`
	Slug        *string `json:"slug" validate:"omitempty,min=1,max=140"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

// CategoryDTO is the transport shape for catalog categories.
type CategoryDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description,omitempty"`
	CreatedBy   string    `json:"created_by"`
	UpdatedBy   string    `json:"updated_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func FromModel(c *models.Category) *CategoryDTO {
	if c == nil {
		return nil
	}
	return &CategoryDTO{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		CreatedBy:   c.CreatedBy,
		UpdatedBy:   c.UpdatedBy,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
