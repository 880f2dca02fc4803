package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Product is a catalog listing. BasePrice is the price of the smallest size;
// a ProductSize multiplier scales it.
type Product struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CategoryID  *uuid.UUID      `gorm:"column:category_id;type:uuid"`
	Name        string          `gorm:"column:name;not null"`
	Slug        string          `gorm:"column:slug;not null;uniqueIndex"`
	Description *string         `gorm:"column:description"`
	BasePrice   decimal.Decimal `gorm:"column:base_price;type:numeric(12,2);not null"`
	Tags        pq.StringArray  `gorm:"column:tags;type:text[];not null;default:ARRAY[]::text[]"`
	ImagePath   *string         `gorm:"column:image_path"`
	IsActive    bool            `gorm:"column:is_active;not null;default:true"`
	IsFeatured  bool            `gorm:"column:is_featured;not null;default:false"`
	Sizes       []ProductSize   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
