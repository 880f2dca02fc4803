package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/crumbandco/cakeshop-backend/pkg/enums"
)

// Order is the customer-facing purchase snapshot taken at checkout. Delivery
// fields are copied from the chosen address so later address edits cannot
// rewrite history.
type Order struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID        uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	Status        enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'pending'"`
	CustomerName  string              `gorm:"column:customer_name;not null"`
	Phone         string              `gorm:"column:phone;not null"`
	DeliveryDate  time.Time           `gorm:"column:delivery_date;not null"`
	DeliverySlot  *string             `gorm:"column:delivery_slot"`
	Street        string              `gorm:"column:street;not null"`
	City          string              `gorm:"column:city;not null"`
	PostalCode    string              `gorm:"column:postal_code;not null"`
	Landmark      *string             `gorm:"column:landmark"`
	Subtotal      decimal.Decimal     `gorm:"column:subtotal;type:numeric(12,2);not null"`
	Discount      decimal.Decimal     `gorm:"column:discount;type:numeric(12,2);not null"`
	Total         decimal.Decimal     `gorm:"column:total;type:numeric(12,2);not null"`
	CouponID      *uuid.UUID          `gorm:"column:coupon_id;type:uuid"`
	PaymentMethod enums.PaymentMethod `gorm:"column:payment_method;type:text;not null;default:'cod'"`
	Note          *string             `gorm:"column:note"`
	Items         []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CanceledAt    *time.Time          `gorm:"column:canceled_at"`
	DeliveredAt   *time.Time          `gorm:"column:delivered_at"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
