package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefrontlabs/storefront/pkg/db/models"
	pkgerrors "github.com/storefrontlabs/storefront/pkg/errors"
	"github.com/storefrontlabs/storefront/pkg/pagination"
)

// Service defines the behavior needed by the products controller.
type Service interface {
	Create(ctx context.Context, actor Actor, req CreateProductRequest) (*ProductDTO, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, req UpdateProductRequest) (*ProductDTO, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
}

type categoryChecker interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
}

type service struct {
	products   Repository
	categories categoryChecker
}

// NewService constructs a products service with the provided dependencies.
func NewService(products Repository, categories categoryChecker) (Service, error) {
	if products == nil {
		return nil, fmt.Errorf("product repository is required")
	}
	if categories == nil {
		return nil, fmt.Errorf("category repository is required")
	}
	return &service{products: products, categories: categories}, nil
}

func (s *service) Create(ctx context.Context, actor Actor, req CreateProductRequest) (*ProductDTO, error) {
	if req.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	if err := s.checkCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	product := &models.Product{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price.Round(2),
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
		ImageURL:    req.ImageURL,
		IsActive:    true,
		CreatedBy:   actor.Email,
		UpdatedBy:   actor.Email,
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create product")
	}
	return FromModel(product), nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	rows, err := s.products.List(ctx, params)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		if strings.Contains(err.Error(), "cursor") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}

	limit := pagination.NormalizeLimit(params.Pagination.Limit)
	result := &ListResult{Items: make([]ProductDTO, 0, len(rows))}
	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}
	for i := range rows {
		result.Items = append(result.Items, *FromModel(&rows[i]))
	}
	if hasMore {
		last := rows[len(rows)-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return result, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.findProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(product), nil
}

func (s *service) Update(ctx context.Context, actor Actor, id uuid.UUID, req UpdateProductRequest) (*ProductDTO, error) {
	product, err := s.findProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, product); err != nil {
		return nil, err
	}

	if req.Name != nil {
		product.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		product.Description = req.Description
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
		}
		product.Price = req.Price.Round(2)
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock must not be negative")
		}
		product.Stock = *req.Stock
	}
	if req.CategoryID != nil {
		if err := s.checkCategory(ctx, req.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = req.CategoryID
	}
	if req.ImageURL != nil {
		product.ImageURL = req.ImageURL
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	product.UpdatedBy = actor.Email

	if err := s.products.Update(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update product")
	}
	return FromModel(product), nil
}

func (s *service) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	product, err := s.findProduct(ctx, id)
	if err != nil {
		return err
	}
	if err := Authorize(actor, product); err != nil {
		return err
	}

	if err := s.products.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete product")
	}
	return nil
}

func (s *service) checkCategory(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	if _, err := s.categories.FindByID(ctx, *id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, "category does not exist")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check category")
	}
	return nil
}

func (s *service) findProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	return product, nil
}
