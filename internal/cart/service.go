package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefrontlabs/storefront/pkg/db"
	"github.com/storefrontlabs/storefront/pkg/db/models"
	pkgerrors "github.com/storefrontlabs/storefront/pkg/errors"
)

// Service defines the behavior needed by the cart controller.
type Service interface {
	AddToCart(ctx context.Context, userID uuid.UUID, req AddItemRequest) (*CartDTO, error)
	ViewCart(ctx context.Context, userID uuid.UUID) (*CartDTO, error)
	RemoveFromCart(ctx context.Context, userID, productID uuid.UUID) (*CartDTO, error)
}

type productFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type service struct {
	client *db.Client
	carts  Repository
	finder productFinder
}

// ServiceParams bundles the dependencies required to build a cart service.
type ServiceParams struct {
	Client      *db.Client
	CartRepo    Repository
	ProductRepo productFinder
}

// NewService constructs a cart service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Client == nil {
		return nil, fmt.Errorf("db client is required")
	}
	if params.CartRepo == nil {
		return nil, fmt.Errorf("cart repository is required")
	}
	if params.ProductRepo == nil {
		return nil, fmt.Errorf("product repository is required")
	}
	return &service{
		client: params.Client,
		carts:  params.CartRepo,
		finder: params.ProductRepo,
	}, nil
}

// AddToCart merges the requested quantity into the user's cart. Stock is
// validated against the merged quantity but not decremented; stock only moves
// at checkout.
func (s *service) AddToCart(ctx context.Context, userID uuid.UUID, req AddItemRequest) (*CartDTO, error) {
	if req.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	product, err := s.finder.FindByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		carts := s.carts.WithTx(tx)

		cart, err := s.getOrCreateCart(ctx, carts, userID)
		if err != nil {
			return err
		}

		item, err := carts.FindItem(ctx, cart.ID, product.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart item")
		}

		merged := req.Quantity
		if item != nil {
			merged += item.Quantity
		}
		if merged > product.Stock {
			return insufficientStock(product, merged)
		}

		if item == nil {
			item = &models.CartItem{
				ID:        uuid.New(),
				CartID:    cart.ID,
				ProductID: product.ID,
			}
		}
		item.Quantity = merged
		if err := carts.SaveItem(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save cart item")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.ViewCart(ctx, userID)
}

// ViewCart lists the cart's lines. A missing cart reads as an empty one.
func (s *service) ViewCart(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	empty := &CartDTO{Items: []ItemDTO{}}

	cart, err := s.carts.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return empty, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}

	items, err := s.carts.ListItems(ctx, cart.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list cart items")
	}

	out := &CartDTO{Items: make([]ItemDTO, 0, len(items))}
	for i := range items {
		dto := itemFromModel(&items[i])
		out.Items = append(out.Items, dto)
		out.Total = out.Total.Add(dto.LineTotal)
	}
	return out, nil
}

// RemoveFromCart deletes the product's line. No stock write happens here;
// nothing was reserved at add time.
func (s *service) RemoveFromCart(ctx context.Context, userID, productID uuid.UUID) (*CartDTO, error) {
	cart, err := s.carts.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeCartNotFound, "cart not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}

	item, err := s.carts.FindItem(ctx, cart.ID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not in cart")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart item")
	}

	if err := s.carts.DeleteItem(ctx, item.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete cart item")
	}
	return s.ViewCart(ctx, userID)
}

func (s *service) getOrCreateCart(ctx context.Context, carts Repository, userID uuid.UUID) (*models.Cart, error) {
	cart, err := carts.FindByUserID(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}

	cart = &models.Cart{ID: uuid.New(), UserID: userID}
	if err := carts.Create(ctx, cart); err != nil {
		// Lost a race against a concurrent add; the winner's cart is ours too.
		if db.IsUniqueViolation(err, "idx_carts_user_id") {
			return carts.FindByUserID(ctx, userID)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create cart")
	}
	return cart, nil
}

func insufficientStock(product *models.Product, requested int) error {
	return pkgerrors.New(
		pkgerrors.CodeInsufficientStock,
		fmt.Sprintf("insufficient stock for %q", product.Name),
	).WithDetails(map[string]any{
		"product_id": product.ID,
		"product":    product.Name,
		"requested":  requested,
		"available":  product.Stock,
	})
}
