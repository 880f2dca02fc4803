package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItemAddon snapshots one add-on selection on an order line.
type OrderItemAddon struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderItemID uuid.UUID       `gorm:"column:order_item_id;type:uuid;not null;index"`
	AddonID     *uuid.UUID      `gorm:"column:addon_id;type:uuid"`
	Name        string          `gorm:"column:name;not null"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Quantity    int             `gorm:"column:quantity;not null"`
	LineTotal   decimal.Decimal `gorm:"column:line_total;type:numeric(12,2);not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
}
