package repo

import (
	"context"

	"gorm.io/gorm"
)

// Base holds the gorm handle every domain repository embeds.
type Base struct {
	db *gorm.DB
}

// NewBase wraps a gorm connection for embedding.
func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB binds the connection to the request context when one is supplied.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}
