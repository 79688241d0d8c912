package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/storefrontlabs/storefront/internal/cart"
	"github.com/storefrontlabs/storefront/internal/orders"
	"github.com/storefrontlabs/storefront/internal/products"
	"github.com/storefrontlabs/storefront/pkg/db"
	"github.com/storefrontlabs/storefront/pkg/db/models"
	"github.com/storefrontlabs/storefront/pkg/enums"
	pkgerrors "github.com/storefrontlabs/storefront/pkg/errors"
)

// Service converts carts into orders. All stock movement in the system
// happens here, inside one transaction per checkout.
type Service interface {
	PlaceOrder(ctx context.Context, userID uuid.UUID) (*orders.OrderDTO, error)
	SelectiveCheckout(ctx context.Context, userID uuid.UUID, productIDs []uuid.UUID) (*orders.OrderDTO, error)
}

type service struct {
	client   *db.Client
	carts    cart.Repository
	products products.Repository
	orders   orders.Repository
}

// ServiceParams bundles the dependencies required to build a checkout service.
type ServiceParams struct {
	Client      *db.Client
	CartRepo    cart.Repository
	ProductRepo products.Repository
	OrderRepo   orders.Repository
}

// NewService constructs a checkout service with the provided dependencies.
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
	if params.OrderRepo == nil {
		return nil, fmt.Errorf("order repository is required")
	}
	return &service{
		client:   params.Client,
		carts:    params.CartRepo,
		products: params.ProductRepo,
		orders:   params.OrderRepo,
	}, nil
}

// PlaceOrder converts the user's whole cart into an order.
func (s *service) PlaceOrder(ctx context.Context, userID uuid.UUID) (*orders.OrderDTO, error) {
	return s.checkout(ctx, userID, nil)
}

// SelectiveCheckout converts only the cart lines matching the provided
// product ids; unmatched lines stay in the cart.
func (s *service) SelectiveCheckout(ctx context.Context, userID uuid.UUID, productIDs []uuid.UUID) (*orders.OrderDTO, error) {
	if len(productIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product_ids must not be empty")
	}
	selected := make(map[uuid.UUID]bool, len(productIDs))
	for _, id := range productIDs {
		selected[id] = true
	}
	return s.checkout(ctx, userID, selected)
}

func (s *service) checkout(ctx context.Context, userID uuid.UUID, selected map[uuid.UUID]bool) (*orders.OrderDTO, error) {
	userCart, err := s.carts.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeCartNotFound, "cart not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}

	var placed *models.Order
	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		carts := s.carts.WithTx(tx)
		prods := s.products.WithTx(tx)
		ords := s.orders.WithTx(tx)

		items, err := carts.ListItems(ctx, userCart.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list cart items")
		}
		if len(items) == 0 {
			return pkgerrors.New(pkgerrors.CodeCartEmpty, "cart has no items")
		}
		if selected != nil {
			filtered := items[:0]
			for _, item := range items {
				if selected[item.ProductID] {
					filtered = append(filtered, item)
				}
			}
			items = filtered
			if len(items) == 0 {
				return pkgerrors.New(pkgerrors.CodeCartEmpty, "no matching items in cart")
			}
		}

		// Lock every referenced product, then validate the whole cart before
		// touching any row.
		productIDs := make([]uuid.UUID, 0, len(items))
		for _, item := range items {
			productIDs = append(productIDs, item.ProductID)
		}
		locked, err := prods.LockByIDs(ctx, productIDs)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lock products")
		}
		byID := make(map[uuid.UUID]*models.Product, len(locked))
		for i := range locked {
			byID[locked[i].ID] = &locked[i]
		}

		for _, item := range items {
			product, ok := byID[item.ProductID]
			if !ok {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product no longer available").
					WithDetails(map[string]any{"product_id": item.ProductID})
			}
			if product.Stock < item.Quantity {
				return insufficientStock(product, item.Quantity)
			}
		}

		order := &models.Order{
			ID:          uuid.New(),
			UserID:      userID,
			Status:      enums.OrderStatusPending,
			TotalAmount: decimal.Zero,
			OrderedAt:   time.Now(),
		}
		if err := ords.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
		}

		total := decimal.Zero
		orderItems := make([]models.OrderItem, 0, len(items))
		drained := make([]uuid.UUID, 0, len(items))
		for _, item := range items {
			product := byID[item.ProductID]
			productID := item.ProductID

			orderItems = append(orderItems, models.OrderItem{
				ID:               uuid.New(),
				OrderID:          order.ID,
				ProductID:        &productID,
				ProductName:      product.Name,
				Quantity:         item.Quantity,
				PriceAtOrderTime: product.Price,
			})
			total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))

			ok, err := prods.AdjustStock(ctx, product.ID, -item.Quantity)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decrement stock")
			}
			if !ok {
				return insufficientStock(product, item.Quantity)
			}
			drained = append(drained, item.ID)
		}

		if err := ords.CreateItems(ctx, orderItems); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order items")
		}
		if err := ords.UpdateTotal(ctx, order.ID, total); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write order total")
		}
		if err := carts.DeleteItems(ctx, userCart.ID, drained); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "drain cart")
		}

		order.TotalAmount = total
		order.Items = orderItems
		placed = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	return orders.FromModel(placed), nil
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
