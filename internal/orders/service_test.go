package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/crumbandco/cakeshop-backend/pkg/db/models"
	pkgerrors "github.com/crumbandco/cakeshop-backend/pkg/errors"
	"github.com/crumbandco/cakeshop-backend/pkg/enums"
	"github.com/crumbandco/cakeshop-backend/pkg/pagination"
)

type stubRepo struct {
	order   *models.Order
	updated *models.Order
}

func (s *stubRepo) ForUser(_ context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	if s.order == nil || s.order.ID != orderID || s.order.UserID != userID {
		return nil, nil
	}
	return s.order, nil
}

func (s *stubRepo) ByID(_ context.Context, orderID uuid.UUID) (*models.Order, error) {
	if s.order == nil || s.order.ID != orderID {
		return nil, nil
	}
	return s.order, nil
}

func (s *stubRepo) List(context.Context, ListFilter, pagination.Params) (Page, error) {
	if s.order == nil {
		return Page{}, nil
	}
	return Page{Orders: []models.Order{*s.order}, Total: 1}, nil
}

func (s *stubRepo) UpdateStatus(_ context.Context, order *models.Order) error {
	s.updated = order
	return nil
}

func pendingOrder() *models.Order {
	return &models.Order{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Status: enums.OrderStatusPending,
	}
}

func TestUpdateStatusAllowsForwardTransition(t *testing.T) {
	repo := &stubRepo{order: pendingOrder()}
	svc := NewService(repo, nil)

	order, err := svc.UpdateStatus(context.Background(), repo.order.ID, enums.OrderStatusConfirmed)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if order.Status != enums.OrderStatusConfirmed {
		t.Fatalf("expected confirmed, got %s", order.Status)
	}
	if repo.updated == nil {
		t.Fatal("expected status persisted")
	}
}

func TestUpdateStatusRejectsBackwardTransition(t *testing.T) {
	repo := &stubRepo{order: pendingOrder()}
	repo.order.Status = enums.OrderStatusDelivered
	svc := NewService(repo, nil)

	_, err := svc.UpdateStatus(context.Background(), repo.order.ID, enums.OrderStatusPending)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if repo.updated != nil {
		t.Fatal("nothing may be persisted on a rejected transition")
	}
}

func TestUpdateStatusRejectsSkippedStep(t *testing.T) {
	repo := &stubRepo{order: pendingOrder()}
	svc := NewService(repo, nil)

	_, err := svc.UpdateStatus(context.Background(), repo.order.ID, enums.OrderStatusDelivered)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestUpdateStatusStampsDeliveredAt(t *testing.T) {
	repo := &stubRepo{order: pendingOrder()}
	repo.order.Status = enums.OrderStatusOutForDelivery
	svc := NewService(repo, nil)

	order, err := svc.UpdateStatus(context.Background(), repo.order.ID, enums.OrderStatusDelivered)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if order.DeliveredAt == nil {
		t.Fatal("expected delivered timestamp")
	}
}

func TestUpdateStatusStampsCanceledAt(t *testing.T) {
	repo := &stubRepo{order: pendingOrder()}
	svc := NewService(repo, nil)

	order, err := svc.UpdateStatus(context.Background(), repo.order.ID, enums.OrderStatusCanceled)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if order.CanceledAt == nil {
		t.Fatal("expected canceled timestamp")
	}
}

func TestGetForUserHidesOtherCustomersOrders(t *testing.T) {
	repo := &stubRepo{order: pendingOrder()}
	svc := NewService(repo, nil)

	_, err := svc.GetForUser(context.Background(), uuid.New(), repo.order.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}

	order, err := svc.GetForUser(context.Background(), repo.order.UserID, repo.order.ID)
	if err != nil {
		t.Fatalf("get own order: %v", err)
	}
	if order.ID != repo.order.ID {
		t.Fatal("unexpected order returned")
	}
}
