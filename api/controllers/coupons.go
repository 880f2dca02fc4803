package controllers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/crumbandco/cakeshop-backend/api/responses"
	"github.com/crumbandco/cakeshop-backend/api/validators"
	cartsvc "github.com/crumbandco/cakeshop-backend/internal/cart"
	couponssvc "github.com/crumbandco/cakeshop-backend/internal/coupons"
	"github.com/crumbandco/cakeshop-backend/pkg/enums"
	pkgerrors "github.com/crumbandco/cakeshop-backend/pkg/errors"
	"github.com/crumbandco/cakeshop-backend/pkg/logger"
)

type couponValidateRequest struct {
	Code string `json:"code" validate:"required"`
}

type couponValidateResponse struct {
	Valid    bool            `json:"valid"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
	Message  string          `json:"message,omitempty"`
}

// CouponValidate checks a code against the caller's current cart subtotal and
// reports the discounted total. Nothing is reserved; checkout re-validates.
func CouponValidate(coupons couponssvc.Service, carts cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if coupons == nil || carts == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body couponValidateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := carts.Get(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result := coupons.Validate(r.Context(), couponssvc.ValidateInput{
			Code:     body.Code,
			Subtotal: view.Subtotal,
			UserID:   &userID,
		})

		responses.WriteSuccess(w, couponValidateResponse{
			Valid:    result.Valid,
			Discount: result.Discount,
			Total:    view.Subtotal.Sub(result.Discount),
			Message:  result.Message,
		})
	}
}

type couponRequest struct {
	Code           string           `json:"code" validate:"required"`
	DiscountType   string           `json:"discount_type" validate:"required"`
	DiscountValue  decimal.Decimal  `json:"discount_value" validate:"required"`
	ExpiresAt      *time.Time       `json:"expires_at"`
	MinOrderAmount *decimal.Decimal `json:"min_order_amount"`
	MaxUses        *int             `json:"max_uses"`
	MaxUsesPerUser *int             `json:"max_uses_per_user"`
	FirstOrderOnly bool             `json:"first_order_only"`
	IsActive       bool             `json:"is_active"`
}

func (c couponRequest) toInput() (couponssvc.UpsertInput, error) {
	discountType, err := enums.ParseDiscountType(c.DiscountType)
	if err != nil {
		return couponssvc.UpsertInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid discount type")
	}
	return couponssvc.UpsertInput{
		Code:           c.Code,
		DiscountType:   discountType,
		DiscountValue:  c.DiscountValue,
		ExpiresAt:      c.ExpiresAt,
		MinOrderAmount: c.MinOrderAmount,
		MaxUses:        c.MaxUses,
		MaxUsesPerUser: c.MaxUsesPerUser,
		FirstOrderOnly: c.FirstOrderOnly,
		IsActive:       c.IsActive,
	}, nil
}

func AdminCouponList(svc couponssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		coupons, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"coupons": coupons})
	}
}

func AdminCouponGet(svc couponssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		couponID, err := parseUUIDParam(r, "couponId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		coupon, err := svc.Get(r.Context(), couponID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, coupon)
	}
}

func AdminCouponCreate(svc couponssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		var body couponRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		coupon, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, coupon)
	}
}

func AdminCouponUpdate(svc couponssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		couponID, err := parseUUIDParam(r, "couponId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body couponRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		coupon, err := svc.Update(r.Context(), couponID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, coupon)
	}
}

func AdminCouponDelete(svc couponssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		couponID, err := parseUUIDParam(r, "couponId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), couponID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
