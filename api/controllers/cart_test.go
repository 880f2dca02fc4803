package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/crumbandco/cakeshop-backend/api/middleware"
	cartsvc "github.com/crumbandco/cakeshop-backend/internal/cart"
)

type stubCartService struct {
	view     *cartsvc.View
	addInput cartsvc.AddItemInput
}

func (s *stubCartService) Get(ctx context.Context, userID uuid.UUID) (*cartsvc.View, error) {
	return s.view, nil
}

func (s *stubCartService) AddItem(ctx context.Context, userID uuid.UUID, input cartsvc.AddItemInput) (*cartsvc.View, error) {
	s.addInput = input
	return s.view, nil
}

func (s *stubCartService) SetItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*cartsvc.View, error) {
	return s.view, nil
}

func (s *stubCartService) AdjustAddon(ctx context.Context, userID, itemID, addonID uuid.UUID, delta int) (*cartsvc.View, error) {
	return s.view, nil
}

func (s *stubCartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*cartsvc.View, error) {
	return s.view, nil
}

func authenticatedRequest(method, target string, body *bytes.Reader) *http.Request {
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, body)
		req.Header.Set("Content-Type", "application/json")
	}
	ctx := middleware.WithUserID(req.Context(), uuid.NewString())
	return req.WithContext(ctx)
}

func TestCartFetchReturnsView(t *testing.T) {
	view := &cartsvc.View{
		ID:       uuid.New(),
		Items:    []cartsvc.ItemView{},
		Subtotal: decimal.NewFromInt(1200),
	}
	req := authenticatedRequest(http.MethodGet, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()
	CartFetch(&stubCartService{view: view}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data cartsvc.View `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Data.Subtotal.Equal(view.Subtotal) {
		t.Fatalf("expected subtotal %s got %s", view.Subtotal, envelope.Data.Subtotal)
	}
}

func TestCartFetchWithoutUser(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()
	CartFetch(&stubCartService{view: &cartsvc.View{}}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCartAddItemForwardsAddons(t *testing.T) {
	svc := &stubCartService{view: &cartsvc.View{}}
	productID := uuid.New()
	addonID := uuid.New()
	payload, _ := json.Marshal(map[string]any{
		"product_id": productID,
		"quantity":   2,
		"addons":     []map[string]any{{"addon_id": addonID, "quantity": 1}},
	})

	req := authenticatedRequest(http.MethodPost, "/api/v1/cart/items", bytes.NewReader(payload))
	resp := httptest.NewRecorder()
	CartAddItem(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	if svc.addInput.ProductID != productID || svc.addInput.Quantity != 2 {
		t.Fatalf("unexpected input %+v", svc.addInput)
	}
	if len(svc.addInput.Addons) != 1 || svc.addInput.Addons[0].AddonID != addonID {
		t.Fatalf("expected addon forwarded, got %+v", svc.addInput.Addons)
	}
}

func TestCartAddItemRejectsZeroQuantity(t *testing.T) {
	payload := []byte(`{"product_id":"` + uuid.NewString() + `","quantity":0}`)
	req := authenticatedRequest(http.MethodPost, "/api/v1/cart/items", bytes.NewReader(payload))
	resp := httptest.NewRecorder()
	CartAddItem(&stubCartService{view: &cartsvc.View{}}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
