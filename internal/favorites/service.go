package favorites

import (
	"context"

	"github.com/google/uuid"

	pkgerrors "github.com/crumbandco/cakeshop-backend/pkg/errors"
	"github.com/crumbandco/cakeshop-backend/pkg/pagination"
)

// Service lets customers keep a shortlist of products.
type Service interface {
	Add(ctx context.Context, userID, productID uuid.UUID) error
	Remove(ctx context.Context, userID, productID uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID, params pagination.Params) (Page, error)
}

type service struct {
	repo Repository
}

// NewService wires the favorites service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Add is idempotent: favoriting a product twice is not an error.
func (s *service) Add(ctx context.Context, userID, productID uuid.UUID) error {
	exists, err := s.repo.ProductExists(ctx, productID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check product")
	}
	if !exists {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if err := s.repo.Add(ctx, userID, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add favorite")
	}
	return nil
}

func (s *service) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	if err := s.repo.Remove(ctx, userID, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove favorite")
	}
	return nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, params pagination.Params) (Page, error) {
	page, err := s.repo.List(ctx, userID, params)
	if err != nil {
		return Page{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list favorites")
	}
	return page, nil
}
