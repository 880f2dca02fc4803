package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/crumbandco/cakeshop-backend/internal/cart"
)

type fakeRedis struct {
	values map[string]string
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{values: map[string]string{}}
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, _ time.Duration) error {
	switch v := value.(type) {
	case []byte:
		f.values[key] = string(v)
	case string:
		f.values[key] = v
	}
	return nil
}

func (f *fakeRedis) Get(_ context.Context, key string) (string, error) {
	value, ok := f.values[key]
	if !ok {
		return "", goredis.Nil
	}
	return value, nil
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.values, key)
	}
	return nil
}

func (f *fakeRedis) CheckoutDraftKey(userID string) string { return "cake:checkout_draft:" + userID }

func (f *fakeRedis) CustomerPhoneKey(userID string) string { return "cake:customer_phone:" + userID }

func dec(value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return d
}

func TestDraftSaveLoadRoundTrip(t *testing.T) {
	store := NewDraftStore(newFakeRedis(), time.Hour)
	userID := uuid.NewString()
	ctx := context.Background()

	message := "Happy Birthday Mira"
	draft := Draft{
		Items: []cart.ItemView{
			{
				ID:            uuid.New(),
				ProductID:     uuid.New(),
				ProductName:   "Velvet Royale",
				UnitBasePrice: dec("1200"),
				Quantity:      1,
				Message:       &message,
				Addons: []cart.AddonView{
					{ID: uuid.New(), AddonID: uuid.New(), Name: "Candles", UnitPrice: dec("50"), Quantity: 2},
				},
				ItemTotal: dec("1300"),
			},
		},
		Subtotal:   dec("1300"),
		Discount:   dec("130"),
		Total:      dec("1170"),
		CouponCode: "SAVE10",
	}

	if err := store.Save(ctx, userID, draft); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := store.Load(ctx, userID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected draft")
	}

	if len(loaded.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(loaded.Items))
	}
	item := loaded.Items[0]
	if item.ProductName != "Velvet Royale" || item.Quantity != 1 {
		t.Fatalf("item mismatch: %+v", item)
	}
	if item.Message == nil || *item.Message != message {
		t.Fatalf("message mismatch: %+v", item.Message)
	}
	if len(item.Addons) != 1 || item.Addons[0].Quantity != 2 || !item.Addons[0].UnitPrice.Equal(dec("50")) {
		t.Fatalf("addons mismatch: %+v", item.Addons)
	}
	if !loaded.Subtotal.Equal(draft.Subtotal) || !loaded.Discount.Equal(draft.Discount) || !loaded.Total.Equal(draft.Total) {
		t.Fatalf("totals mismatch: %+v", loaded)
	}
	if loaded.CouponCode != "SAVE10" {
		t.Fatalf("coupon mismatch: %q", loaded.CouponCode)
	}

	// saving again is idempotent for the reloaded content
	if err := store.Save(ctx, userID, *loaded); err != nil {
		t.Fatalf("resave: %v", err)
	}
	again, err := store.Load(ctx, userID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(again.Items) != 1 || !again.Total.Equal(loaded.Total) {
		t.Fatalf("round trip not idempotent: %+v", again)
	}
}

func TestDraftLoadMissingReturnsNil(t *testing.T) {
	store := NewDraftStore(newFakeRedis(), time.Hour)
	draft, err := store.Load(context.Background(), uuid.NewString())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if draft != nil {
		t.Fatalf("expected nil draft, got %+v", draft)
	}
}

func TestDraftLastWriteWins(t *testing.T) {
	store := NewDraftStore(newFakeRedis(), time.Hour)
	userID := uuid.NewString()
	ctx := context.Background()

	if err := store.Save(ctx, userID, Draft{Subtotal: dec("100"), Total: dec("100")}); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := store.Save(ctx, userID, Draft{Subtotal: dec("250"), Total: dec("250")}); err != nil {
		t.Fatalf("second save: %v", err)
	}

	loaded, err := store.Load(ctx, userID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !loaded.Total.Equal(dec("250")) {
		t.Fatalf("expected overwrite to 250, got %s", loaded.Total)
	}
}

func TestDraftClearAndRememberPhone(t *testing.T) {
	store := NewDraftStore(newFakeRedis(), time.Hour)
	userID := uuid.NewString()
	ctx := context.Background()

	if err := store.Save(ctx, userID, Draft{Total: dec("100")}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Clear(ctx, userID); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if draft, _ := store.Load(ctx, userID); draft != nil {
		t.Fatal("expected draft cleared")
	}

	if err := store.RememberPhone(ctx, userID, "+91 98200 12345"); err != nil {
		t.Fatalf("remember phone: %v", err)
	}
	phone, err := store.RememberedPhone(ctx, userID)
	if err != nil {
		t.Fatalf("load phone: %v", err)
	}
	if phone != "+91 98200 12345" {
		t.Fatalf("phone mismatch: %q", phone)
	}
}
