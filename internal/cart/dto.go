package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefrontlabs/storefront/pkg/db/models"
)

// AddItemRequest is the inbound payload for adding a product to the cart.
type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gte=1"`
}

// ItemDTO is one cart line enriched with product data.
type ItemDTO struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// CartDTO is the full cart view. A user without a cart reads as an empty one.
type CartDTO struct {
	Items []ItemDTO       `json:"items"`
	Total decimal.Decimal `json:"total"`
}

func itemFromModel(item *models.CartItem) ItemDTO {
	dto := ItemDTO{
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
	}
	if item.Product != nil {
		dto.Name = item.Product.Name
		dto.UnitPrice = item.Product.Price
		dto.LineTotal = item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
	}
	return dto
}
