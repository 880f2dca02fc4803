package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/crumbandco/cakeshop-backend/pkg/enums"
)

// CustomerQuery is a contact-form submission handled by the back office.
type CustomerQuery struct {
	ID         uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name       string            `gorm:"column:name;not null"`
	Email      string            `gorm:"column:email;not null"`
	Phone      *string           `gorm:"column:phone"`
	Message    string            `gorm:"column:message;not null"`
	Status     enums.QueryStatus `gorm:"column:status;type:text;not null;default:'open'"`
	ResolvedAt *time.Time        `gorm:"column:resolved_at"`
	CreatedAt  time.Time         `gorm:"column:created_at;autoCreateTime"`
}
