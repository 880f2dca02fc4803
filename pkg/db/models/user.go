package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/crumbandco/cakeshop-backend/pkg/enums"
)

// User is an authenticated account, customer or admin.
type User struct {
	ID           uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string           `gorm:"column:email;not null;uniqueIndex"`
	PasswordHash string           `gorm:"column:password_hash;not null"`
	FirstName    string           `gorm:"column:first_name;not null"`
	LastName     string           `gorm:"column:last_name;not null"`
	Role         enums.MemberRole `gorm:"column:role;type:text;not null;default:'customer'"`
	IsActive     bool             `gorm:"column:is_active;not null;default:true"`
	Profile      *Profile         `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
