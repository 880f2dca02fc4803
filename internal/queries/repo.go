package queries

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

// Page is one cursor page of customer queries.
type Page struct {
	Queries    []models.CustomerQuery `json:"queries"`
	NextCursor string                 `json:"next_cursor,omitempty"`
	Total      int64                  `json:"total"`
}

// Repository persists contact-form submissions.
type Repository interface {
	Create(ctx context.Context, query *models.CustomerQuery) error
	ByID(ctx context.Context, id uuid.UUID) (*models.CustomerQuery, error)
	List(ctx context.Context, status *enums.QueryStatus, params pagination.Params) (Page, error)
	UpdateStatus(ctx context.Context, query *models.CustomerQuery) error
}

type gormRepository struct {
	repo.Base
}

// NewRepository builds the gorm-backed queries repository.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{Base: repo.NewBase(db)}
}

func (r *gormRepository) Create(ctx context.Context, query *models.CustomerQuery) error {
	return r.DB(ctx).Create(query).Error
}

func (r *gormRepository) ByID(ctx context.Context, id uuid.UUID) (*models.CustomerQuery, error) {
	var query models.CustomerQuery
	err := r.DB(ctx).Where("id = ?", id).First(&query).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &query, nil
}

func (r *gormRepository) List(ctx context.Context, status *enums.QueryStatus, params pagination.Params) (Page, error) {
	normalizedLimit := pagination.NormalizeLimit(params.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(params.Limit)
	cursor, err := pagination.ParseCursor(strings.TrimSpace(params.Cursor))
	if err != nil {
		return Page{}, err
	}

	query := r.DB(ctx).Model(&models.CustomerQuery{})
	countQuery := r.DB(ctx).Model(&models.CustomerQuery{})
	if status != nil {
		query = query.Where("status = ?", *status)
		countQuery = countQuery.Where("status = ?", *status)
	}
	if cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.CustomerQuery
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

	return Page{Queries: rows, NextCursor: nextCursor, Total: total}, nil
}

func (r *gormRepository) UpdateStatus(ctx context.Context, query *models.CustomerQuery) error {
	return r.DB(ctx).
		Model(&models.CustomerQuery{}).
		Where("id = ?", query.ID).
		Updates(map[string]any{
			"status":      query.Status,
			"resolved_at": query.ResolvedAt,
		}).
		Error
}
