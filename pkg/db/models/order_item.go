package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem snapshots a cart line at the moment of purchase.
type OrderItem struct {
	ID            uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID       uuid.UUID        `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID     *uuid.UUID       `gorm:"column:product_id;type:uuid"`
	Name          string           `gorm:"column:name;not null"`
	SizeLabel     *string          `gorm:"column:size_label"`
	UnitBasePrice decimal.Decimal  `gorm:"column:unit_base_price;type:numeric(12,2);not null"`
	Quantity      int              `gorm:"column:quantity;not null"`
	Message       *string          `gorm:"column:message"`
	LineTotal     decimal.Decimal  `gorm:"column:line_total;type:numeric(12,2);not null"`
	Addons        []OrderItemAddon `gorm:"foreignKey:OrderItemID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
