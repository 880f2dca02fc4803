package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/crumbandco/cakeshop-backend/pkg/enums"
)

// Coupon is a discount code with eligibility rules. Codes are stored
// canonicalized upper-case.
type Coupon struct {
	ID             uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code           string             `gorm:"column:code;not null;uniqueIndex"`
	DiscountType   enums.DiscountType `gorm:"column:discount_type;type:text;not null"`
	DiscountValue  decimal.Decimal    `gorm:"column:discount_value;type:numeric(12,2);not null"`
	ExpiresAt      *time.Time         `gorm:"column:expires_at"`
	MinOrderAmount *decimal.Decimal   `gorm:"column:min_order_amount;type:numeric(12,2)"`
	MaxUses        *int               `gorm:"column:max_uses"`
	MaxUsesPerUser *int               `gorm:"column:max_uses_per_user"`
	FirstOrderOnly bool               `gorm:"column:first_order_only;not null;default:false"`
	IsActive       bool               `gorm:"column:is_active;not null;default:true"`
	CreatedAt      time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
