package addresses

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/crumbandco/cakeshop-backend/pkg/db/models"
	pkgerrors "github.com/crumbandco/cakeshop-backend/pkg/errors"
)

type stubRepo struct {
	byID map[uuid.UUID]*models.Address
}

func newStubRepo() *stubRepo {
	return &stubRepo{byID: map[uuid.UUID]*models.Address{}}
}

func (s *stubRepo) ListForUser(_ context.Context, userID uuid.UUID) ([]models.Address, error) {
	var out []models.Address
	for _, addr := range s.byID {
		if addr.UserID == userID {
			out = append(out, *addr)
		}
	}
	return out, nil
}

func (s *stubRepo) ForUser(_ context.Context, userID, addressID uuid.UUID) (*models.Address, error) {
	addr, ok := s.byID[addressID]
	if !ok || addr.UserID != userID {
		return nil, nil
	}
	copied := *addr
	return &copied, nil
}

func (s *stubRepo) Create(_ context.Context, address *models.Address) error {
	address.ID = uuid.New()
	s.byID[address.ID] = address
	return nil
}

func (s *stubRepo) Update(_ context.Context, address *models.Address) error {
	s.byID[address.ID] = address
	return nil
}

func (s *stubRepo) Delete(_ context.Context, userID, addressID uuid.UUID) error {
	addr, ok := s.byID[addressID]
	if ok && addr.UserID == userID {
		delete(s.byID, addressID)
	}
	return nil
}

func TestCreateRequiresStreetCityPostal(t *testing.T) {
	svc := NewService(newStubRepo())
	_, err := svc.Create(context.Background(), uuid.New(), UpsertInput{City: "Pune"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	fields, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected field details, got %#v", typed.Details())
	}
	if _, present := fields["street"]; !present {
		t.Fatalf("expected street in details, got %v", fields)
	}
	if _, present := fields["postal_code"]; !present {
		t.Fatalf("expected postal_code in details, got %v", fields)
	}
}

func TestCreateDefaultsLabel(t *testing.T) {
	svc := NewService(newStubRepo())
	address, err := svc.Create(context.Background(), uuid.New(), UpsertInput{
		Street:     "14 Lake Road",
		City:       "Pune",
		PostalCode: "411001",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if address.Label != "home" {
		t.Fatalf("expected default label, got %q", address.Label)
	}
}

func TestGetEnforcesOwnership(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)
	owner := uuid.New()

	address, err := svc.Create(context.Background(), owner, UpsertInput{
		Street:     "14 Lake Road",
		City:       "Pune",
		PostalCode: "411001",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = svc.Get(context.Background(), uuid.New(), address.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for other user, got %v", err)
	}
}

func TestDeleteMissingAddressIsNotFound(t *testing.T) {
	svc := NewService(newStubRepo())
	err := svc.Delete(context.Background(), uuid.New(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
