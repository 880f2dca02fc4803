package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/crumbandco/cakeshop-backend/internal/repo"
	"github.com/crumbandco/cakeshop-backend/pkg/enums"
)

// DailySales is revenue and order volume for one calendar day.
type DailySales struct {
	Day     time.Time       `gorm:"column:day" json:"day"`
	Revenue decimal.Decimal `gorm:"column:revenue" json:"revenue"`
	Orders  int64           `gorm:"column:orders" json:"orders"`
}

// ProductSales aggregates sold quantity and revenue per product.
type ProductSales struct {
	ProductID *uuid.UUID      `gorm:"column:product_id" json:"product_id,omitempty"`
	Name      string          `gorm:"column:name" json:"name"`
	Quantity  int64           `gorm:"column:quantity" json:"quantity"`
	Revenue   decimal.Decimal `gorm:"column:revenue" json:"revenue"`
}

// Totals is the headline block of the sales report.
type Totals struct {
	Revenue  decimal.Decimal `gorm:"column:revenue" json:"revenue"`
	Orders   int64           `gorm:"column:orders" json:"orders"`
	Canceled int64           `gorm:"column:canceled" json:"canceled"`
}

// Repository runs the report aggregates directly in SQL.
type Repository interface {
	Totals(ctx context.Context, from, to time.Time) (Totals, error)
	SalesByDay(ctx context.Context, from, to time.Time) ([]DailySales, error)
	TopProducts(ctx context.Context, from, to time.Time, limit int) ([]ProductSales, error)
}

type gormRepository struct {
	repo.Base
}

// NewRepository builds the gorm-backed analytics repository.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{Base: repo.NewBase(db)}
}

// Canceled orders are excluded from revenue but reported separately.
func (r *gormRepository) Totals(ctx context.Context, from, to time.Time) (Totals, error) {
	var totals Totals
	err := r.DB(ctx).Raw(`
SELECT
  COALESCE(SUM(total) FILTER (WHERE status <> ?), 0) AS revenue,
  COUNT(*) FILTER (WHERE status <> ?)                AS orders,
  COUNT(*) FILTER (WHERE status = ?)                 AS canceled
FROM orders
WHERE created_at >= ? AND created_at < ?`,
		enums.OrderStatusCanceled, enums.OrderStatusCanceled, enums.OrderStatusCanceled,
		from, to).
		Scan(&totals).
		Error
	return totals, err
}

func (r *gormRepository) SalesByDay(ctx context.Context, from, to time.Time) ([]DailySales, error) {
	var rows []DailySales
	err := r.DB(ctx).Raw(`
SELECT
  date_trunc('day', created_at) AS day,
  COALESCE(SUM(total), 0)       AS revenue,
  COUNT(*)                      AS orders
FROM orders
WHERE created_at >= ? AND created_at < ? AND status <> ?
GROUP BY 1
ORDER BY 1`,
		from, to, enums.OrderStatusCanceled).
		Scan(&rows).
		Error
	return rows, err
}

func (r *gormRepository) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]ProductSales, error) {
	var rows []ProductSales
	err := r.DB(ctx).Raw(`
SELECT
  oi.product_id,
  oi.name,
  SUM(oi.quantity)   AS quantity,
  SUM(oi.line_total) AS revenue
FROM order_items oi
JOIN orders o ON o.id = oi.order_id
WHERE o.created_at >= ? AND o.created_at < ? AND o.status <> ?
GROUP BY oi.product_id, oi.name
ORDER BY revenue DESC
LIMIT ?`,
		from, to, enums.OrderStatusCanceled, limit).
		Scan(&rows).
		Error
	return rows, err
}
