package models

import (
	"time"

	"github.com/google/uuid"
)

// GalleryImage is a showcase asset stored in the gallery bucket.
type GalleryImage struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title      string    `gorm:"column:title;not null"`
	Caption    *string   `gorm:"column:caption"`
	ObjectPath string    `gorm:"column:object_path;not null"`
	Position   int       `gorm:"column:position;not null;default:0"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
