package orders

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/crumbandco/cakeshop-backend/internal/repo"
	"github.com/crumbandco/cakeshop-backend/pkg/db/models"
	"github.com/crumbandco/cakeshop-backend/pkg/enums"
	"github.com/crumbandco/cakeshop-backend/pkg/pagination"
)

// Page is one cursor page of orders.
type Page struct {
	Orders     []models.Order `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
	Total      int64          `json:"total"`
}

// ListFilter narrows the admin order listing.
type ListFilter struct {
	Status *enums.OrderStatus
	UserID *uuid.UUID
}

// Repository persists and reads orders.
type Repository interface {
	ForUser(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error)
	ByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	List(ctx context.Context, filter ListFilter, params pagination.Params) (Page, error)
	UpdateStatus(ctx context.Context, order *models.Order) error
}

type gormRepository struct {
	repo.Base
}

// NewRepository builds the gorm-backed order repository.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{Base: repo.NewBase(db)}
}

func (r *gormRepository) ForUser(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.DB(ctx).
		Preload("Items.Addons").
		Preload("Items").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *gormRepository) ByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.DB(ctx).
		Preload("Items.Addons").
		Preload("Items").
		Where("id = ?", orderID).
		First(&order).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *gormRepository) List(ctx context.Context, filter ListFilter, params pagination.Params) (Page, error) {
	normalizedLimit := pagination.NormalizeLimit(params.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(params.Limit)
	cursor, err := pagination.ParseCursor(strings.TrimSpace(params.Cursor))
	if err != nil {
		return Page{}, err
	}

	query := r.DB(ctx).
		Model(&models.Order{}).
		Preload("Items.Addons").
		Preload("Items")
	countQuery := r.DB(ctx).Model(&models.Order{})

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
		countQuery = countQuery.Where("status = ?", *filter.Status)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
		countQuery = countQuery.Where("user_id = ?", *filter.UserID)
	}
	if cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Order
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

	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return Page{}, err
	}

	return Page{Orders: rows, NextCursor: nextCursor, Total: total}, nil
}

func (r *gormRepository) UpdateStatus(ctx context.Context, order *models.Order) error {
	return r.DB(ctx).
		Model(&models.Order{}).
		Where("id = ?", order.ID).
		Updates(map[string]any{
			"status":       order.Status,
			"canceled_at":  order.CanceledAt,
			"delivered_at": order.DeliveredAt,
		}).
		Error
}
