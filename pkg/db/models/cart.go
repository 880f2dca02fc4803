package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/crumbandco/cakeshop-backend/pkg/enums"
)

// Cart is the single active basket for a user. Converted carts are kept for
// audit and a fresh one is opened on the next add.
type Cart struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID        `gorm:"column:user_id;type:uuid;not null;index"`
	Status    enums.CartStatus `gorm:"column:status;type:text;not null;default:'active'"`
	Items     []CartItem       `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
