package favorites

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/crumbandco/cakeshop-backend/internal/repo"
	"github.com/crumbandco/cakeshop-backend/pkg/db/models"
	"github.com/crumbandco/cakeshop-backend/pkg/pagination"
)

// Page is one cursor page of favorites with their products preloaded.
type Page struct {
	Favorites  []models.Favorite `json:"favorites"`
	Products   []models.Product  `json:"products"`
	NextCursor string            `json:"next_cursor,omitempty"`
	Total      int64             `json:"total"`
}

// Repository persists user favorites.
type Repository interface {
	Add(ctx context.Context, userID, productID uuid.UUID) error
	Remove(ctx context.Context, userID, productID uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID, params pagination.Params) (Page, error)
	ProductExists(ctx context.Context, productID uuid.UUID) (bool, error)
}

type gormRepository struct {
	repo.Base
}

// NewRepository builds the gorm-backed favorites repository.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{Base: repo.NewBase(db)}
}

// Add inserts a favorite and ignores duplicates.
func (r *gormRepository) Add(ctx context.Context, userID, productID uuid.UUID) error {
	if userID == uuid.Nil || productID == uuid.Nil {
		return gorm.ErrInvalidValue
	}
	return r.DB(ctx).
		Exec(`INSERT INTO favorites (user_id, product_id) VALUES (?, ?) ON CONFLICT (user_id, product_id) DO NOTHING`,
			userID, productID).
		Error
}

func (r *gormRepository) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	return r.DB(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.Favorite{}).
		Error
}

func (r *gormRepository) List(ctx context.Context, userID uuid.UUID, params pagination.Params) (Page, error) {
	normalizedLimit := pagination.NormalizeLimit(params.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(params.Limit)
	cursor, err := pagination.ParseCursor(strings.TrimSpace(params.Cursor))
	if err != nil {
		return Page{}, err
	}

	query := r.DB(ctx).
		Model(&models.Favorite{}).
		Where("user_id = ?", userID)
	if cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Favorite
	if err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limitWithBuffer).
		Find(&rows).
		Error; err != nil {
		return Page{}, err
	}

	nextCursor := ""
	if len(rows) > normalizedLimit {
		rows = rows[:normalizedLimit]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	products := []models.Product{}
	if len(rows) > 0 {
		productIDs := make([]uuid.UUID, 0, len(rows))
		for _, fav := range rows {
			productIDs = append(productIDs, fav.ProductID)
		}
		if err := r.DB(ctx).
			Preload("Sizes", func(db *gorm.DB) *gorm.DB { return db.Order("product_sizes.multiplier ASC") }).
			Where("id IN ?", productIDs).
			Find(&products).
			Error; err != nil {
			return Page{}, err
		}
	}

	var total int64
	if err := r.DB(ctx).
		Model(&models.Favorite{}).
		Where("user_id = ?", userID).
		Count(&total).
		Error; err != nil {
		return Page{}, err
	}

	return Page{Favorites: rows, Products: products, NextCursor: nextCursor, Total: total}, nil
}

func (r *gormRepository) ProductExists(ctx context.Context, productID uuid.UUID) (bool, error) {
	var product models.Product
	err := r.DB(ctx).
		Select("id").
		Where("id = ? AND is_active = ?", productID, true).
		First(&product).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
