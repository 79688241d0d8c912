package categories

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefrontlabs/storefront/pkg/db"
	"github.com/storefrontlabs/storefront/pkg/db/models"
	pkgerrors "github.com/storefrontlabs/storefront/pkg/errors"
)

// Service defines the behavior needed by the categories controller. Admin
// gating happens in middleware; the service assumes an authorized actor.
type Service interface {
	Create(ctx context.Context, actor string, req CreateCategoryRequest) (*CategoryDTO, error)
	List(ctx context.Context) ([]CategoryDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*CategoryDTO, error)
	Update(ctx context.Context, actor string, id uuid.UUID, req UpdateCategoryRequest) (*CategoryDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type categoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	categories categoryRepository
}

// NewService constructs a categories service with the provided dependencies.
func NewService(categories categoryRepository) (Service, error) {
	if categories == nil {
		return nil, fmt.Errorf("category repository is required")
	}
	return &service{categories: categories}, nil
}

func (s *service) Create(ctx context.Context, actor string, req CreateCategoryRequest) (*CategoryDTO, error) {
	name := strings.TrimSpace(req.Name)
	slug := strings.TrimSpace(req.Slug)
	if slug == "" {
		slug = Slugify(name)
	}
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name produces an empty slug")
	}

	category := &models.Category{
		ID:          uuid.New(),
		Name:        name,
		Slug:        slug,
		Description: req.Description,
		CreatedBy:   actor,
		UpdatedBy:   actor,
	}
	if err := s.categories.Create(ctx, category); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category name or slug already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create category")
	}
	return FromModel(category), nil
}

func (s *service) List(ctx context.Context) ([]CategoryDTO, error) {
	rows, err := s.categories.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list categories")
	}
	out := make([]CategoryDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*CategoryDTO, error) {
	category, err := s.findCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(category), nil
}

func (s *service) Update(ctx context.Context, actor string, id uuid.UUID, req UpdateCategoryRequest) (*CategoryDTO, error) {
	category, err := s.findCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		category.Name = strings.TrimSpace(*req.Name)
		if req.Slug == nil {
			category.Slug = Slugify(category.Name)
		}
	}
	if req.Slug != nil {
		category.Slug = strings.TrimSpace(*req.Slug)
	}
	if req.Description != nil {
		category.Description = req.Description
	}
	category.UpdatedBy = actor

	if err := s.categories.Update(ctx, category); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category name or slug already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update category")
	}
	return FromModel(category), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete category")
	}
	return nil
}

func (s *service) findCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load category")
	}
	return category, nil
}

var slugStripRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases the name and collapses non-alphanumeric runs to hyphens.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugStripRe.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
