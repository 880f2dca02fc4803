package coupons

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/crumbandco/cakeshop-backend/internal/pricing"
	"github.com/crumbandco/cakeshop-backend/pkg/db"
	"github.com/crumbandco/cakeshop-backend/pkg/db/models"
	"github.com/crumbandco/cakeshop-backend/pkg/enums"
	pkgerrors "github.com/crumbandco/cakeshop-backend/pkg/errors"
	"github.com/crumbandco/cakeshop-backend/pkg/logger"
)

const (
	msgInvalidCode    = "Invalid coupon code"
	msgInactive       = "This coupon is no longer active"
	msgExpired        = "This coupon has expired"
	msgUsageLimit     = "This coupon has reached its usage limit"
	msgAlreadyUsed    = "You have already used this coupon"
	msgFirstOrderOnly = "This coupon is only valid on your first order"
)

// ValidateInput carries everything the rule chain inspects.
type ValidateInput struct {
	Code     string
	Subtotal decimal.Decimal
	UserID   *uuid.UUID
}

// Result reports the outcome of one validation. Discount is zero whenever
// Valid is false.
type Result struct {
	Valid    bool
	Discount decimal.Decimal
	Message  string
	CouponID *uuid.UUID
	Coupon   *models.Coupon
}

// Service validates codes against the rule chain and owns admin CRUD. There
// is exactly one validation path; nothing bypasses the chain.
type Service interface {
	Validate(ctx context.Context, input ValidateInput) Result
	RecordUsage(ctx context.Context, tx *gorm.DB, couponID, userID, orderID uuid.UUID) error

	List(ctx context.Context) ([]models.Coupon, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Coupon, error)
	Create(ctx context.Context, input UpsertInput) (*models.Coupon, error)
	Update(ctx context.Context, id uuid.UUID, input UpsertInput) (*models.Coupon, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
	logg *logger.Logger
	now  func() time.Time
}

// NewService wires the coupon service.
func NewService(repo Repository, logg *logger.Logger) Service {
	return &service{repo: repo, logg: logg, now: time.Now}
}

func rejected(message string) Result {
	return Result{Valid: false, Discount: decimal.Zero, Message: message}
}

// Validate runs the rule chain in order and stops at the first failure so the
// caller always gets the most specific message. Any lookup or count failure
// degrades to the generic invalid result instead of erroring out.
func (s *service) Validate(ctx context.Context, input ValidateInput) Result {
	coupon, err := s.repo.FindByCode(ctx, input.Code)
	if err != nil {
		s.warn(ctx, "coupon lookup failed", err)
		return rejected(msgInvalidCode)
	}
	if coupon == nil {
		return rejected(msgInvalidCode)
	}

	if !coupon.IsActive {
		return rejected(msgInactive)
	}

	if coupon.ExpiresAt != nil && coupon.ExpiresAt.Before(s.now()) {
		return rejected(msgExpired)
	}

	if coupon.MinOrderAmount != nil && input.Subtotal.LessThan(*coupon.MinOrderAmount) {
		return rejected(fmt.Sprintf("Minimum order amount of %s required for this coupon",
			coupon.MinOrderAmount.StringFixed(0)))
	}

	if coupon.MaxUses != nil {
		used, err := s.repo.CountUsages(ctx, coupon.ID)
		if err != nil {
			s.warn(ctx, "coupon usage count failed", err)
			return rejected(msgInvalidCode)
		}
		if used >= int64(*coupon.MaxUses) {
			return rejected(msgUsageLimit)
		}
	}

	if input.UserID != nil && coupon.MaxUsesPerUser != nil {
		used, err := s.repo.CountUserUsages(ctx, coupon.ID, *input.UserID)
		if err != nil {
			s.warn(ctx, "coupon user usage count failed", err)
			return rejected(msgInvalidCode)
		}
		if used >= int64(*coupon.MaxUsesPerUser) {
			return rejected(msgAlreadyUsed)
		}
	}

	if input.UserID != nil && coupon.FirstOrderOnly {
		orders, err := s.repo.CountUserOrders(ctx, *input.UserID)
		if err != nil {
			s.warn(ctx, "order count failed", err)
			return rejected(msgInvalidCode)
		}
		if orders > 0 {
			return rejected(msgFirstOrderOnly)
		}
	}

	discount := pricing.Discount(
		input.Subtotal,
		coupon.DiscountValue,
		coupon.DiscountType == enums.DiscountTypePercentage,
	)

	id := coupon.ID
	return Result{
		Valid:    true,
		Discount: discount,
		Message:  "Coupon applied",
		CouponID: &id,
		Coupon:   coupon,
	}
}

func (s *service) RecordUsage(ctx context.Context, tx *gorm.DB, couponID, userID, orderID uuid.UUID) error {
	usage := &models.CouponUsage{
		CouponID: couponID,
		UserID:   userID,
		OrderID:  orderID,
	}
	if err := s.repo.RecordUsage(ctx, tx, usage); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record coupon usage")
	}
	return nil
}

// UpsertInput is the admin-facing coupon payload.
type UpsertInput struct {
	Code           string
	DiscountType   enums.DiscountType
	DiscountValue  decimal.Decimal
	ExpiresAt      *time.Time
	MinOrderAmount *decimal.Decimal
	MaxUses        *int
	MaxUsesPerUser *int
	FirstOrderOnly bool
	IsActive       bool
}

func (in UpsertInput) validate() error {
	if CanonicalCode(in.Code) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required")
	}
	if !in.DiscountType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid discount type")
	}
	if in.DiscountValue.IsNegative() || in.DiscountValue.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount value must be positive")
	}
	if in.DiscountType == enums.DiscountTypePercentage && in.DiscountValue.GreaterThan(decimal.NewFromInt(100)) {
		return pkgerrors.New(pkgerrors.CodeValidation, "percentage discount cannot exceed 100")
	}
	return nil
}

func (s *service) List(ctx context.Context) ([]models.Coupon, error) {
	coupons, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list coupons")
	}
	return coupons, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Coupon, error) {
	coupon, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
	}
	if coupon == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
	}
	return coupon, nil
}

func (s *service) Create(ctx context.Context, input UpsertInput) (*models.Coupon, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	coupon := &models.Coupon{
		Code:           CanonicalCode(input.Code),
		DiscountType:   input.DiscountType,
		DiscountValue:  input.DiscountValue,
		ExpiresAt:      input.ExpiresAt,
		MinOrderAmount: input.MinOrderAmount,
		MaxUses:        input.MaxUses,
		MaxUsesPerUser: input.MaxUsesPerUser,
		FirstOrderOnly: input.FirstOrderOnly,
		IsActive:       input.IsActive,
	}
	if err := s.repo.Create(ctx, coupon); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "coupon code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create coupon")
	}
	return coupon, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpsertInput) (*models.Coupon, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	coupon, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	coupon.Code = CanonicalCode(input.Code)
	coupon.DiscountType = input.DiscountType
	coupon.DiscountValue = input.DiscountValue
	coupon.ExpiresAt = input.ExpiresAt
	coupon.MinOrderAmount = input.MinOrderAmount
	coupon.MaxUses = input.MaxUses
	coupon.MaxUsesPerUser = input.MaxUsesPerUser
	coupon.FirstOrderOnly = input.FirstOrderOnly
	coupon.IsActive = input.IsActive
	if err := s.repo.Update(ctx, coupon); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "coupon code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update coupon")
	}
	return coupon, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete coupon")
	}
	return nil
}

func (s *service) warn(ctx context.Context, msg string, err error) {
	if s.logg == nil {
		return
	}
	s.logg.Warn(ctx, fmt.Sprintf("%s: %v", msg, err))
}
