package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefrontlabs/storefront/pkg/enums"
)

// Order is the immutable record produced by checkout. TotalAmount always
// equals the sum of its items' quantity x price_at_order_time.
type Order struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index"`
	Status      enums.OrderStatus `gorm:"column:status;type:text;not null;default:'PENDING'"`
	TotalAmount decimal.Decimal   `gorm:"column:total_amount;type:numeric(12,2);not null"`
	Items       []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	OrderedAt   time.Time         `gorm:"column:ordered_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
