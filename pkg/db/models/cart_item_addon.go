package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItemAddon is an add-on selection on a cart line. Quantity is always
// at least 1; a zero selection is deleted, never stored.
type CartItemAddon struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartItemID uuid.UUID       `gorm:"column:cart_item_id;type:uuid;not null;index"`
	AddonID    uuid.UUID       `gorm:"column:addon_id;type:uuid;not null"`
	Name       string          `gorm:"column:name;not null"`
	UnitPrice  decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Quantity   int             `gorm:"column:quantity;not null"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
