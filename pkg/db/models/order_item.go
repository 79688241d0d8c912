package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem snapshots one purchased line. The product reference is nullable so
// order history survives product deletion; name and price are copied at order
// time and never change afterwards.
type OrderItem struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID          uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID        *uuid.UUID      `gorm:"column:product_id;type:uuid"`
	Product          *Product        `gorm:"foreignKey:ProductID;constraint:OnDelete:SET NULL"`
	ProductName      string          `gorm:"column:product_name;not null"`
	Quantity         int             `gorm:"column:quantity;not null"`
	PriceAtOrderTime decimal.Decimal `gorm:"column:price_at_order_time;type:numeric(12,2);not null"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
}
