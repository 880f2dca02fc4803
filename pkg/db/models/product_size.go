package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductSize is a purchasable variant of a product, priced as a multiplier
// over the product's base price.
type ProductSize struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID   uuid.UUID       `gorm:"column:product_id;type:uuid;not null;index"`
	Label       string          `gorm:"column:label;not null"`
	WeightLabel *string         `gorm:"column:weight_label"`
	Multiplier  decimal.Decimal `gorm:"column:multiplier;type:numeric(6,3);not null"`
	Position    int             `gorm:"column:position;not null;default:0"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
