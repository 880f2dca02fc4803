package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem is one configured purchase line. UnitBasePrice snapshots the
// product base price already scaled by the chosen size multiplier.
type CartItem struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID        uuid.UUID       `gorm:"column:cart_id;type:uuid;not null;index"`
	ProductID     uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	ProductName   string          `gorm:"column:product_name;not null"`
	SizeID        *uuid.UUID      `gorm:"column:size_id;type:uuid"`
	SizeLabel     *string         `gorm:"column:size_label"`
	UnitBasePrice decimal.Decimal `gorm:"column:unit_base_price;type:numeric(12,2);not null"`
	Quantity      int             `gorm:"column:quantity;not null"`
	Message       *string         `gorm:"column:message"`
	Addons        []CartItemAddon `gorm:"foreignKey:CartItemID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
