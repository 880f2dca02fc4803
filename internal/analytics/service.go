package analytics

import (
	"context"
	"time"

	pkgerrors "github.com/crumbandco/cakeshop-backend/pkg/errors"
)

const (
	defaultWindow   = 30 * 24 * time.Hour
	maxWindow       = 366 * 24 * time.Hour
	topProductCount = 10
)

// SalesRequest is the admin report window. Zero values fall back to the last
// thirty days ending now.
type SalesRequest struct {
	From time.Time
	To   time.Time
}

// SalesReport is the full admin sales dashboard payload.
type SalesReport struct {
	From        time.Time      `json:"from"`
	To          time.Time      `json:"to"`
	Totals      Totals         `json:"totals"`
	ByDay       []DailySales   `json:"by_day"`
	TopProducts []ProductSales `json:"top_products"`
}

// Service produces admin sales reports.
type Service interface {
	SalesReport(ctx context.Context, req SalesRequest) (*SalesReport, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService wires the analytics service.
func NewService(repo Repository) Service {
	return &service{repo: repo, now: time.Now}
}

func (s *service) SalesReport(ctx context.Context, req SalesRequest) (*SalesReport, error) {
	from, to, err := s.normalizeWindow(req)
	if err != nil {
		return nil, err
	}

	totals, err := s.repo.Totals(ctx, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "report totals")
	}
	byDay, err := s.repo.SalesByDay(ctx, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "report by day")
	}
	topProducts, err := s.repo.TopProducts(ctx, from, to, topProductCount)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "report top products")
	}

	if byDay == nil {
		byDay = []DailySales{}
	}
	if topProducts == nil {
		topProducts = []ProductSales{}
	}

	return &SalesReport{
		From:        from,
		To:          to,
		Totals:      totals,
		ByDay:       byDay,
		TopProducts: topProducts,
	}, nil
}

func (s *service) normalizeWindow(req SalesRequest) (time.Time, time.Time, error) {
	to := req.To
	if to.IsZero() {
		to = s.now()
	}
	from := req.From
	if from.IsZero() {
		from = to.Add(-defaultWindow)
	}
	if !from.Before(to) {
		return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "from must be before to")
	}
	if to.Sub(from) > maxWindow {
		return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "report window must not exceed one year")
	}
	return from.UTC(), to.UTC(), nil
}
