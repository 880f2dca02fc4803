package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/crumbandco/cakeshop-backend/pkg/db/models"
	"github.com/crumbandco/cakeshop-backend/pkg/enums"
	pkgerrors "github.com/crumbandco/cakeshop-backend/pkg/errors"
	"github.com/crumbandco/cakeshop-backend/pkg/logger"
	"github.com/crumbandco/cakeshop-backend/pkg/pagination"
)

// Service exposes order reads for customers and status management for admins.
type Service interface {
	HistoryForUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (Page, error)
	GetForUser(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error)
	AdminList(ctx context.Context, filter ListFilter, params pagination.Params) (Page, error)
	AdminGet(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, next enums.OrderStatus) (*models.Order, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
	now  func() time.Time
}

// NewService wires the order service.
func NewService(repo Repository, logg *logger.Logger) Service {
	return &service{repo: repo, logg: logg, now: time.Now}
}

func (s *service) HistoryForUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (Page, error) {
	page, err := s.repo.List(ctx, ListFilter{UserID: &userID}, params)
	if err != nil {
		return Page{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return page, nil
}

func (s *service) GetForUser(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.ForUser(ctx, userID, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func (s *service) AdminList(ctx context.Context, filter ListFilter, params pagination.Params) (Page, error) {
	page, err := s.repo.List(ctx, filter, params)
	if err != nil {
		return Page{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return page, nil
}

func (s *service) AdminGet(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.ByID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

// UpdateStatus advances an order along the delivery lifecycle. Illegal jumps
// are rejected with a state conflict so the admin UI can explain itself.
func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, next enums.OrderStatus) (*models.Order, error) {
	if !next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}

	order, err := s.AdminGet(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !order.Status.CanTransitionTo(next) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move order from %s to %s", order.Status, next))
	}

	order.Status = next
	switch next {
	case enums.OrderStatusDelivered:
		now := s.now()
		order.DeliveredAt = &now
	case enums.OrderStatusCanceled:
		now := s.now()
		order.CanceledAt = &now
	}

	if err := s.repo.UpdateStatus(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithOrderID(ctx, order.ID.String()), "order status updated")
	}
	return order, nil
}
