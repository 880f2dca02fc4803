package addresses

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/crumbandco/cakeshop-backend/pkg/db/models"
	pkgerrors "github.com/crumbandco/cakeshop-backend/pkg/errors"
)

// UpsertInput is the customer-facing address payload.
type UpsertInput struct {
	Label      string
	Street     string
	City       string
	PostalCode string
	Landmark   *string
}

// Service owns saved-address CRUD for the authenticated customer.
type Service interface {
	List(ctx context.Context, userID uuid.UUID) ([]models.Address, error)
	Get(ctx context.Context, userID, addressID uuid.UUID) (*models.Address, error)
	Create(ctx context.Context, userID uuid.UUID, input UpsertInput) (*models.Address, error)
	Update(ctx context.Context, userID, addressID uuid.UUID, input UpsertInput) (*models.Address, error)
	Delete(ctx context.Context, userID, addressID uuid.UUID) error
}

type service struct {
	repo Repository
}

// NewService wires the address service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (in UpsertInput) validate() error {
	fields := map[string]string{}
	if strings.TrimSpace(in.Street) == "" {
		fields["street"] = "street is required"
	}
	if strings.TrimSpace(in.City) == "" {
		fields["city"] = "city is required"
	}
	if strings.TrimSpace(in.PostalCode) == "" {
		fields["postal_code"] = "postal code is required"
	}
	if len(fields) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "missing required address fields").WithDetails(fields)
	}
	return nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	addresses, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list addresses")
	}
	return addresses, nil
}

func (s *service) Get(ctx context.Context, userID, addressID uuid.UUID) (*models.Address, error) {
	address, err := s.repo.ForUser(ctx, userID, addressID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load address")
	}
	if address == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
	}
	return address, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input UpsertInput) (*models.Address, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	address := &models.Address{
		UserID:     userID,
		Label:      labelOrDefault(input.Label),
		Street:     strings.TrimSpace(input.Street),
		City:       strings.TrimSpace(input.City),
		PostalCode: strings.TrimSpace(input.PostalCode),
		Landmark:   input.Landmark,
	}
	if err := s.repo.Create(ctx, address); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create address")
	}
	return address, nil
}

func (s *service) Update(ctx context.Context, userID, addressID uuid.UUID, input UpsertInput) (*models.Address, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	address, err := s.Get(ctx, userID, addressID)
	if err != nil {
		return nil, err
	}
	address.Label = labelOrDefault(input.Label)
	address.Street = strings.TrimSpace(input.Street)
	address.City = strings.TrimSpace(input.City)
	address.PostalCode = strings.TrimSpace(input.PostalCode)
	address.Landmark = input.Landmark
	if err := s.repo.Update(ctx, address); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update address")
	}
	return address, nil
}

func (s *service) Delete(ctx context.Context, userID, addressID uuid.UUID) error {
	if _, err := s.Get(ctx, userID, addressID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, userID, addressID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete address")
	}
	return nil
}

func labelOrDefault(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "home"
	}
	return label
}
