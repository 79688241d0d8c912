package models

import (
	"time"

	"github.com/google/uuid"
)

// Category groups products for catalog browsing.
type Category struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string    `gorm:"column:name;type:text;not null;uniqueIndex"`
	Slug        string    `gorm:"column:slug;type:text;not null;uniqueIndex"`
	Description *string   `gorm:"column:description"`
	CreatedBy   string    `gorm:"column:created_by;not null"`
	UpdatedBy   string    `gorm:"column:updated_by;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
