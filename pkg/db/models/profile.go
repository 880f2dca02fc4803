package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Profile carries storefront preferences for a user.
type Profile struct {
	UserID           uuid.UUID      `gorm:"column:user_id;type:uuid;primaryKey"`
	Phone            *string        `gorm:"column:phone"`
	DefaultAddressID *uuid.UUID     `gorm:"column:default_address_id;type:uuid"`
	FavoriteFlavors  pq.StringArray `gorm:"column:favorite_flavors;type:text[];not null;default:ARRAY[]::text[]"`
	CreatedAt        time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
