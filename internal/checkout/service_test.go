package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/crumbandco/cakeshop-backend/internal/coupons"
	"github.com/crumbandco/cakeshop-backend/pkg/db/models"
	pkgerrors "github.com/crumbandco/cakeshop-backend/pkg/errors"
	"github.com/crumbandco/cakeshop-backend/pkg/enums"
)

type stubCartRepo struct {
	cart        *models.Cart
	convertedID *uuid.UUID
}

func (s *stubCartRepo) ActiveCart(context.Context, uuid.UUID) (*models.Cart, error) {
	return s.cart, nil
}

func (s *stubCartRepo) CreateCart(context.Context, uuid.UUID) (*models.Cart, error) {
	return nil, errors.New("not used")
}

func (s *stubCartRepo) ItemForUser(context.Context, uuid.UUID, uuid.UUID) (*models.CartItem, error) {
	return nil, nil
}

func (s *stubCartRepo) CreateItem(context.Context, *models.CartItem) error { return nil }

func (s *stubCartRepo) UpdateItemQuantity(context.Context, uuid.UUID, int) error { return nil }

func (s *stubCartRepo) DeleteItem(context.Context, uuid.UUID) error { return nil }

func (s *stubCartRepo) ItemAddon(context.Context, uuid.UUID, uuid.UUID) (*models.CartItemAddon, error) {
	return nil, nil
}

func (s *stubCartRepo) CreateItemAddon(context.Context, *models.CartItemAddon) error { return nil }

func (s *stubCartRepo) UpdateItemAddonQuantity(context.Context, uuid.UUID, int) error { return nil }

func (s *stubCartRepo) DeleteItemAddon(context.Context, uuid.UUID) error { return nil }

func (s *stubCartRepo) ProductWithSizes(context.Context, uuid.UUID) (*models.Product, error) {
	return nil, nil
}

func (s *stubCartRepo) AddonByID(context.Context, uuid.UUID) (*models.Addon, error) {
	return nil, nil
}

func (s *stubCartRepo) MarkConverted(_ context.Context, _ *gorm.DB, cartID uuid.UUID) error {
	s.convertedID = &cartID
	return nil
}

type stubCoupons struct {
	result   coupons.Result
	recorded []uuid.UUID
}

func (s *stubCoupons) Validate(context.Context, coupons.ValidateInput) coupons.Result {
	return s.result
}

func (s *stubCoupons) RecordUsage(_ context.Context, _ *gorm.DB, couponID, _, _ uuid.UUID) error {
	s.recorded = append(s.recorded, couponID)
	return nil
}

type stubAddresses struct {
	address *models.Address
}

func (s *stubAddresses) ForUser(context.Context, uuid.UUID, uuid.UUID) (*models.Address, error) {
	return s.address, nil
}

type stubOrderWriter struct {
	created *models.Order
	err     error
}

func (s *stubOrderWriter) Create(_ context.Context, _ *gorm.DB, order *models.Order) error {
	if s.err != nil {
		return s.err
	}
	order.ID = uuid.New()
	s.created = order
	return nil
}

type stubTx struct {
	rolledBack bool
}

func (s *stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if err := fn(nil); err != nil {
		s.rolledBack = true
		return err
	}
	return nil
}

func activeCartFixture(userID uuid.UUID) *models.Cart {
	msg := "Happy Birthday"
	return &models.Cart{
		ID:     uuid.New(),
		UserID: userID,
		Status: enums.CartStatusActive,
		Items: []models.CartItem{
			{
				ID:            uuid.New(),
				ProductID:     uuid.New(),
				ProductName:   "Velvet Royale",
				UnitBasePrice: dec("1200"),
				Quantity:      1,
				Message:       &msg,
				Addons: []models.CartItemAddon{
					{ID: uuid.New(), AddonID: uuid.New(), Name: "Candles", UnitPrice: dec("50"), Quantity: 2},
					{ID: uuid.New(), AddonID: uuid.New(), Name: "Topper", UnitPrice: dec("30"), Quantity: 1},
				},
			},
		},
	}
}

func validInput() PlaceOrderInput {
	return PlaceOrderInput{
		CustomerName:  "Mira Rao",
		Phone:         "+91 98200 12345",
		DeliveryDate:  time.Now().Add(48 * time.Hour),
		NewAddress:    &NewAddressInput{Street: "14 Lake Road", City: "Pune", PostalCode: "411001"},
		PaymentMethod: enums.PaymentMethodCashOnDelivery,
	}
}

func newTestService(carts *stubCartRepo, cpns *stubCoupons, writer *stubOrderWriter, tx *stubTx) Service {
	return NewService(carts, cpns, &stubAddresses{}, writer, tx, nil, nil, DefaultRefLength)
}

func TestPlaceOrderBlockedOnMissingRequiredFields(t *testing.T) {
	userID := uuid.New()
	carts := &stubCartRepo{cart: activeCartFixture(userID)}
	writer := &stubOrderWriter{}
	svc := newTestService(carts, &stubCoupons{}, writer, &stubTx{})

	cases := []struct {
		name   string
		mutate func(*PlaceOrderInput)
		field  string
	}{
		{"missing name", func(in *PlaceOrderInput) { in.CustomerName = " " }, "customer_name"},
		{"missing phone", func(in *PlaceOrderInput) { in.Phone = "" }, "phone"},
		{"missing delivery date", func(in *PlaceOrderInput) { in.DeliveryDate = time.Time{} }, "delivery_date"},
		{"missing street", func(in *PlaceOrderInput) { in.NewAddress.Street = "" }, "street"},
		{"missing city", func(in *PlaceOrderInput) { in.NewAddress.City = "" }, "city"},
		{"missing postal code", func(in *PlaceOrderInput) { in.NewAddress.PostalCode = "" }, "postal_code"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput()
			tc.mutate(&input)

			_, err := svc.PlaceOrder(context.Background(), userID, input)
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
			fields, ok := typed.Details().(map[string]string)
			if !ok {
				t.Fatalf("expected field details, got %#v", typed.Details())
			}
			if _, present := fields[tc.field]; !present {
				t.Fatalf("expected field %q in details, got %v", tc.field, fields)
			}
			if writer.created != nil {
				t.Fatal("no order may be created when the gate fails")
			}
		})
	}
}

func TestPlaceOrderPersistsSnapshotInOneTransaction(t *testing.T) {
	userID := uuid.New()
	carts := &stubCartRepo{cart: activeCartFixture(userID)}
	writer := &stubOrderWriter{}
	tx := &stubTx{}
	svc := newTestService(carts, &stubCoupons{}, writer, tx)

	result, err := svc.PlaceOrder(context.Background(), userID, validInput())
	if err != nil {
		t.Fatalf("place order: %v", err)
	}

	if writer.created == nil {
		t.Fatal("expected order written")
	}
	order := writer.created
	if !order.Subtotal.Equal(dec("1330")) {
		t.Fatalf("expected subtotal 1330, got %s", order.Subtotal)
	}
	if !order.Total.Equal(dec("1330")) {
		t.Fatalf("expected total 1330, got %s", order.Total)
	}
	if order.Status != enums.OrderStatusPending {
		t.Fatalf("expected pending status, got %s", order.Status)
	}
	if len(order.Items) != 1 {
		t.Fatalf("expected 1 order item, got %d", len(order.Items))
	}
	item := order.Items[0]
	if !item.LineTotal.Equal(dec("1330")) {
		t.Fatalf("expected line total 1330, got %s", item.LineTotal)
	}
	if len(item.Addons) != 2 {
		t.Fatalf("expected 2 addon rows, got %d", len(item.Addons))
	}
	if !item.Addons[0].LineTotal.Equal(dec("100")) {
		t.Fatalf("expected addon line total 100, got %s", item.Addons[0].LineTotal)
	}

	if carts.convertedID == nil || *carts.convertedID != carts.cart.ID {
		t.Fatal("expected cart marked converted")
	}
	if result.OrderRef != OrderRef(order.ID, DefaultRefLength) {
		t.Fatalf("unexpected order ref %q", result.OrderRef)
	}
	if len(result.OrderRef) != DefaultRefLength {
		t.Fatalf("expected %d-char ref, got %q", DefaultRefLength, result.OrderRef)
	}
}

func TestPlaceOrderAppliesValidCoupon(t *testing.T) {
	userID := uuid.New()
	carts := &stubCartRepo{cart: activeCartFixture(userID)}
	couponID := uuid.New()
	cpns := &stubCoupons{result: coupons.Result{
		Valid:    true,
		Discount: dec("133"),
		CouponID: &couponID,
	}}
	writer := &stubOrderWriter{}
	svc := newTestService(carts, cpns, writer, &stubTx{})

	input := validInput()
	input.CouponCode = "SAVE10"
	result, err := svc.PlaceOrder(context.Background(), userID, input)
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	if !result.Discount.Equal(dec("133")) || !result.Total.Equal(dec("1197")) {
		t.Fatalf("unexpected totals %+v", result)
	}
	if len(cpns.recorded) != 1 || cpns.recorded[0] != couponID {
		t.Fatal("expected coupon usage recorded in the transaction")
	}
	if writer.created.CouponID == nil || *writer.created.CouponID != couponID {
		t.Fatal("expected coupon id stored on order")
	}
}

func TestPlaceOrderRejectsInvalidCoupon(t *testing.T) {
	userID := uuid.New()
	carts := &stubCartRepo{cart: activeCartFixture(userID)}
	cpns := &stubCoupons{result: coupons.Result{Valid: false, Message: "This coupon has expired"}}
	writer := &stubOrderWriter{}
	svc := newTestService(carts, cpns, writer, &stubTx{})

	input := validInput()
	input.CouponCode = "OLD"
	_, err := svc.PlaceOrder(context.Background(), userID, input)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if typed.Message() != "This coupon has expired" {
		t.Fatalf("expected coupon message surfaced, got %q", typed.Message())
	}
	if writer.created != nil {
		t.Fatal("no order may be created for an invalid coupon")
	}
}

func TestPlaceOrderEmptyCartRejected(t *testing.T) {
	userID := uuid.New()
	svc := newTestService(&stubCartRepo{}, &stubCoupons{}, &stubOrderWriter{}, &stubTx{})

	_, err := svc.PlaceOrder(context.Background(), userID, validInput())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPlaceOrderWriteFailureAbortsEverything(t *testing.T) {
	userID := uuid.New()
	carts := &stubCartRepo{cart: activeCartFixture(userID)}
	writer := &stubOrderWriter{err: errors.New("insert failed")}
	tx := &stubTx{}
	svc := newTestService(carts, &stubCoupons{}, writer, tx)

	_, err := svc.PlaceOrder(context.Background(), userID, validInput())
	if err == nil {
		t.Fatal("expected error")
	}
	if !tx.rolledBack {
		t.Fatal("expected transaction aborted")
	}
	if carts.convertedID != nil {
		t.Fatal("cart must stay active when the order write fails")
	}
}

func TestPlaceOrderClearsDraftOnSuccess(t *testing.T) {
	userID := uuid.New()
	carts := &stubCartRepo{cart: activeCartFixture(userID)}
	redis := newFakeRedis()
	drafts := NewDraftStore(redis, time.Hour)
	if err := drafts.Save(context.Background(), userID.String(), Draft{Total: dec("1330")}); err != nil {
		t.Fatalf("seed draft: %v", err)
	}

	svc := NewService(carts, &stubCoupons{}, &stubAddresses{}, &stubOrderWriter{}, &stubTx{}, drafts, nil, DefaultRefLength)
	if _, err := svc.PlaceOrder(context.Background(), userID, validInput()); err != nil {
		t.Fatalf("place order: %v", err)
	}

	if draft, _ := drafts.Load(context.Background(), userID.String()); draft != nil {
		t.Fatal("expected draft cleared after placement")
	}
	phone, err := drafts.RememberedPhone(context.Background(), userID.String())
	if err != nil {
		t.Fatalf("load phone: %v", err)
	}
	if phone != "+91 98200 12345" {
		t.Fatalf("expected phone remembered, got %q", phone)
	}
}

func TestPlaceOrderUsesSavedAddress(t *testing.T) {
	userID := uuid.New()
	carts := &stubCartRepo{cart: activeCartFixture(userID)}
	addressID := uuid.New()
	landmark := "Opposite the clock tower"
	addresses := &stubAddresses{address: &models.Address{
		ID:         addressID,
		UserID:     userID,
		Street:     "7 Hill View",
		City:       "Mumbai",
		PostalCode: "400001",
		Landmark:   &landmark,
	}}
	writer := &stubOrderWriter{}
	svc := NewService(carts, &stubCoupons{}, addresses, writer, &stubTx{}, nil, nil, DefaultRefLength)

	input := validInput()
	input.NewAddress = nil
	input.AddressID = &addressID
	if _, err := svc.PlaceOrder(context.Background(), userID, input); err != nil {
		t.Fatalf("place order: %v", err)
	}
	if writer.created.Street != "7 Hill View" || writer.created.City != "Mumbai" {
		t.Fatalf("expected saved address snapshot, got %+v", writer.created)
	}
	if writer.created.Landmark == nil || *writer.created.Landmark != landmark {
		t.Fatal("expected landmark copied")
	}
}
