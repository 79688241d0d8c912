package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefrontlabs/storefront/pkg/db/models"
	"github.com/storefrontlabs/storefront/pkg/pagination"
)

// CreateProductRequest is the inbound payload for listing creation.
type CreateProductRequest struct {
	Name        string          `json:"name" validate:"required,min=1,max=200"`
	Description *string         `json:"description" validate:"omitempty,max=5000"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" validate:"gte=0"`
	CategoryID  *uuid.UUID      `json:"category_id"`
	ImageURL    *string         `json:"image_url" validate:"omitempty,url,max=2000"`
}

// UpdateProductRequest carries partial updates; nil fields are untouched.
type UpdateProductRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description" validate:"omitempty,max=5000"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock" validate:"omitempty,gte=0"`
	CategoryID  *uuid.UUID       `json:"category_id"`
	ImageURL    *string          `json:"image_url" validate:"omitempty,url,max=2000"`
	IsActive    *bool            `json:"is_active"`
}

// ProductDTO is the transport shape for catalog products.
type ProductDTO struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	CategoryID  *uuid.UUID      `json:"category_id,omitempty"`
	ImageURL    *string         `json:"image_url,omitempty"`
	IsActive    bool            `json:"is_active"`
	CreatedBy   string          `json:"created_by"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ListParams captures pagination and filter knobs for the browse endpoint.
type ListParams struct {
	CategoryID *uuid.UUID
	Pagination pagination.Params
}

// ListResult is one page of products plus the cursor for the next page.
type ListResult struct {
	Items      []ProductDTO `json:"items"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

func FromModel(p *models.Product) *ProductDTO {
	if p == nil {
		return nil
	}
	return &ProductDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		CategoryID:  p.CategoryID,
		ImageURL:    p.ImageURL,
		IsActive:    p.IsActive,
		CreatedBy:   p.CreatedBy,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
