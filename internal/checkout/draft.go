package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/crumbandco/cakeshop-backend/internal/cart"
	pkgerrors "github.com/crumbandco/cakeshop-backend/pkg/errors"
)

// Draft is the ephemeral snapshot bridging the cart and checkout screens.
// Saves are wholesale overwrites, last write wins.
type Draft struct {
	Items      []cart.ItemView `json:"items"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Discount   decimal.Decimal `json:"discount"`
	Total      decimal.Decimal `json:"total"`
	CouponCode string          `json:"coupon_code,omitempty"`
	SavedAt    time.Time       `json:"saved_at"`
}

type draftRedis interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	CheckoutDraftKey(userID string) string
	CustomerPhoneKey(userID string) string
}

// DraftStore persists one draft per user in Redis, plus the remembered phone
// used to prefill the next checkout.
type DraftStore struct {
	redis draftRedis
	ttl   time.Duration
}

// NewDraftStore wires the draft store. A zero ttl keeps drafts forever.
func NewDraftStore(redis draftRedis, ttl time.Duration) *DraftStore {
	return &DraftStore{redis: redis, ttl: ttl}
}

func (s *DraftStore) Save(ctx context.Context, userID string, draft Draft) error {
	draft.SavedAt = time.Now().UTC()
	payload, err := json.Marshal(draft)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode checkout draft")
	}
	if err := s.redis.Set(ctx, s.redis.CheckoutDraftKey(userID), payload, s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save checkout draft")
	}
	return nil
}

// Load returns nil when no draft exists.
func (s *DraftStore) Load(ctx context.Context, userID string) (*Draft, error) {
	raw, err := s.redis.Get(ctx, s.redis.CheckoutDraftKey(userID))
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load checkout draft")
	}
	var draft Draft
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode checkout draft")
	}
	return &draft, nil
}

func (s *DraftStore) Clear(ctx context.Context, userID string) error {
	if err := s.redis.Del(ctx, s.redis.CheckoutDraftKey(userID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear checkout draft")
	}
	return nil
}

func (s *DraftStore) RememberPhone(ctx context.Context, userID, phone string) error {
	if phone == "" {
		return nil
	}
	if err := s.redis.Set(ctx, s.redis.CustomerPhoneKey(userID), phone, 0); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remember phone")
	}
	return nil
}

// RememberedPhone returns an empty string when nothing was stored.
func (s *DraftStore) RememberedPhone(ctx context.Context, userID string) (string, error) {
	phone, err := s.redis.Get(ctx, s.redis.CustomerPhoneKey(userID))
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", nil
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load remembered phone")
	}
	return phone, nil
}
