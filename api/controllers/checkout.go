package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/crumbandco/cakeshop-backend/api/responses"
	"github.com/crumbandco/cakeshop-backend/api/validators"
	cartsvc "github.com/crumbandco/cakeshop-backend/internal/cart"
	checkoutsvc "github.com/crumbandco/cakeshop-backend/internal/checkout"
	couponssvc "github.com/crumbandco/cakeshop-backend/internal/coupons"
	"github.com/crumbandco/cakeshop-backend/pkg/enums"
	pkgerrors "github.com/crumbandco/cakeshop-backend/pkg/errors"
	"github.com/crumbandco/cakeshop-backend/pkg/logger"
)

const deliveryDateLayout = "2006-01-02"

type draftSaveRequest struct {
	CouponCode string `json:"coupon_code"`
}

type draftResponse struct {
	Draft           *checkoutsvc.Draft `json:"draft"`
	RememberedPhone string             `json:"remembered_phone,omitempty"`
}

// CheckoutDraftSave snapshots the current cart into the draft. The coupon is
// validated against the live subtotal so the preview matches what checkout
// will charge. Saving replaces any earlier draft.
func CheckoutDraftSave(carts cartsvc.Service, coupons couponssvc.Service, drafts *checkoutsvc.DraftStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if carts == nil || coupons == nil || drafts == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body draftSaveRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := carts.Get(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		draft := checkoutsvc.Draft{
			Items:    view.Items,
			Subtotal: view.Subtotal,
			Discount: decimal.Zero,
			Total:    view.Subtotal,
		}
		if code := strings.TrimSpace(body.CouponCode); code != "" {
			result := coupons.Validate(r.Context(), couponssvc.ValidateInput{
				Code:     code,
				Subtotal: view.Subtotal,
				UserID:   &userID,
			})
			if !result.Valid {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, result.Message))
				return
			}
			draft.CouponCode = code
			draft.Discount = result.Discount
			draft.Total = view.Subtotal.Sub(result.Discount)
		}

		if err := drafts.Save(r.Context(), userID.String(), draft); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, draftResponse{Draft: &draft})
	}
}

// CheckoutDraftFetch returns the saved draft, if any, plus the phone number
// remembered from the customer's last order.
func CheckoutDraftFetch(drafts *checkoutsvc.DraftStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if drafts == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		draft, err := drafts.Load(r.Context(), userID.String())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		phone, err := drafts.RememberedPhone(r.Context(), userID.String())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, draftResponse{Draft: draft, RememberedPhone: phone})
	}
}

func CheckoutDraftClear(drafts *checkoutsvc.DraftStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if drafts == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := drafts.Clear(r.Context(), userID.String()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "cleared"})
	}
}

type checkoutAddressPayload struct {
	Street     string  `json:"street" validate:"required"`
	City       string  `json:"city" validate:"required"`
	PostalCode string  `json:"postal_code" validate:"required"`
	Landmark   *string `json:"landmark"`
}

type checkoutRequest struct {
	CustomerName  string                  `json:"customer_name" validate:"required"`
	Phone         string                  `json:"phone" validate:"required"`
	DeliveryDate  string                  `json:"delivery_date" validate:"required"`
	DeliverySlot  *string                 `json:"delivery_slot"`
	AddressID     *uuid.UUID              `json:"address_id"`
	NewAddress    *checkoutAddressPayload `json:"new_address"`
	PaymentMethod string                  `json:"payment_method" validate:"required"`
	CouponCode    string                  `json:"coupon_code"`
	Note          *string                 `json:"note"`
}

func (c checkoutRequest) toInput() (checkoutsvc.PlaceOrderInput, error) {
	deliveryDate, err := time.Parse(deliveryDateLayout, c.DeliveryDate)
	if err != nil {
		return checkoutsvc.PlaceOrderInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "delivery date must be YYYY-MM-DD")
	}
	method, err := enums.ParsePaymentMethod(c.PaymentMethod)
	if err != nil {
		return checkoutsvc.PlaceOrderInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method")
	}

	input := checkoutsvc.PlaceOrderInput{
		CustomerName:  c.CustomerName,
		Phone:         c.Phone,
		DeliveryDate:  deliveryDate,
		DeliverySlot:  c.DeliverySlot,
		AddressID:     c.AddressID,
		PaymentMethod: method,
		CouponCode:    c.CouponCode,
		Note:          c.Note,
	}
	if c.NewAddress != nil {
		input.NewAddress = &checkoutsvc.NewAddressInput{
			Street:     c.NewAddress.Street,
			City:       c.NewAddress.City,
			PostalCode: c.NewAddress.PostalCode,
			Landmark:   c.NewAddress.Landmark,
		}
	}
	return input, nil
}

// Checkout places the order from the persisted cart. Totals are re-derived
// server side; the draft is only a preview and is never trusted.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body checkoutRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.PlaceOrder(r.Context(), userID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
