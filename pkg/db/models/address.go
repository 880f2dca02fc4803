package models

import (
	"time"

	"github.com/google/uuid"
)

// Address is a saved delivery destination.
type Address struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID     uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	Label      string    `gorm:"column:label;not null;default:'home'"`
	Street     string    `gorm:"column:street;not null"`
	City       string    `gorm:"column:city;not null"`
	PostalCode string    `gorm:"column:postal_code;not null"`
	Landmark   *string   `gorm:"column:landmark"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
