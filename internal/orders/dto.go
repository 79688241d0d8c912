package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefrontlabs/storefront/pkg/db/models"
	"github.com/storefrontlabs/storefront/pkg/enums"
)

// ItemDTO is one purchased line as it was at order time.
type ItemDTO struct {
	ProductID        *uuid.UUID      `json:"product_id,omitempty"`
	ProductName      string          `json:"product_name"`
	Quantity         int             `json:"quantity"`
	PriceAtOrderTime decimal.Decimal `json:"price_at_order_time"`
	LineTotal        decimal.Decimal `json:"line_total"`
}

// OrderDTO is the transport shape for a placed order.
type OrderDTO struct {
	ID          uuid.UUID         `json:"id"`
	Status      enums.OrderStatus `json:"status"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
	OrderedAt   time.Time         `json:"ordered_at"`
	Items       []ItemDTO         `json:"items"`
}

// HistoryResult is one page of the user's order history.
type HistoryResult struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

func FromModel(o *models.Order) *OrderDTO {
	if o == nil {
		return nil
	}
	dto := &OrderDTO{
		ID:          o.ID,
		Status:      o.Status,
		TotalAmount: o.TotalAmount,
		OrderedAt:   o.OrderedAt,
		Items:       make([]ItemDTO, 0, len(o.Items)),
	}
	for i := range o.Items {
		item := &o.Items[i]
		dto.Items = append(dto.Items, ItemDTO{
			ProductID:        item.ProductID,
			ProductName:      item.ProductName,
			Quantity:         item.Quantity,
			PriceAtOrderTime: item.PriceAtOrderTime,
			LineTotal:        item.PriceAtOrderTime.Mul(decimal.NewFromInt(int64(item.Quantity))),
		})
	}
	return dto
}
