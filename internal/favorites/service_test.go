package favorites

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/crumbandco/cakeshop-backend/pkg/db/models"
	pkgerrors "github.com/crumbandco/cakeshop-backend/pkg/errors"
	"github.com/crumbandco/cakeshop-backend/pkg/pagination"
)

type stubRepo struct {
	products map[uuid.UUID]bool
	added    map[string]int
	removed  map[string]int
}

func key(userID, productID uuid.UUID) string {
	return userID.String() + "/" + productID.String()
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		products: map[uuid.UUID]bool{},
		added:    map[string]int{},
		removed:  map[string]int{},
	}
}

func (s *stubRepo) Add(_ context.Context, userID, productID uuid.UUID) error {
	s.added[key(userID, productID)]++
	return nil
}

func (s *stubRepo) Remove(_ context.Context, userID, productID uuid.UUID) error {
	s.removed[key(userID, productID)]++
	return nil
}

func (s *stubRepo) List(_ context.Context, userID uuid.UUID, _ pagination.Params) (Page, error) {
	var favs []models.Favorite
	for k := range s.added {
		if k[:36] == userID.String() {
			favs = append(favs, models.Favorite{UserID: userID})
		}
	}
	return Page{Favorites: favs, Total: int64(len(favs))}, nil
}

func (s *stubRepo) ProductExists(_ context.Context, productID uuid.UUID) (bool, error) {
	return s.products[productID], nil
}

func TestAddRejectsUnknownProduct(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)

	err := svc.Add(context.Background(), uuid.New(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(repo.added) != 0 {
		t.Fatal("nothing may be stored for unknown products")
	}
}

func TestAddAndRemoveFavorite(t *testing.T) {
	repo := newStubRepo()
	userID := uuid.New()
	productID := uuid.New()
	repo.products[productID] = true
	svc := NewService(repo)

	if err := svc.Add(context.Background(), userID, productID); err != nil {
		t.Fatalf("add: %v", err)
	}
	if repo.added[key(userID, productID)] != 1 {
		t.Fatal("expected favorite stored")
	}

	if err := svc.Remove(context.Background(), userID, productID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if repo.removed[key(userID, productID)] != 1 {
		t.Fatal("expected favorite removed")
	}
}
