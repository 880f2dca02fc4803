package checkout

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/crumbandco/cakeshop-backend/internal/cart"
	"github.com/crumbandco/cakeshop-backend/internal/coupons"
	"github.com/crumbandco/cakeshop-backend/internal/pricing"
	"github.com/crumbandco/cakeshop-backend/pkg/db/models"
	"github.com/crumbandco/cakeshop-backend/pkg/enums"
	pkgerrors "github.com/crumbandco/cakeshop-backend/pkg/errors"
	"github.com/crumbandco/cakeshop-backend/pkg/logger"
)

// DefaultRefLength is how many characters of the order id the confirmation
// screen shows.
const DefaultRefLength = 8

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// AddressSource resolves a saved delivery address owned by the customer.
type AddressSource interface {
	ForUser(ctx context.Context, userID, addressID uuid.UUID) (*models.Address, error)
}

type couponValidator interface {
	Validate(ctx context.Context, input coupons.ValidateInput) coupons.Result
	RecordUsage(ctx context.Context, tx *gorm.DB, couponID, userID, orderID uuid.UUID) error
}

// OrderWriter persists the order aggregate inside the caller's transaction.
type OrderWriter interface {
	Create(ctx context.Context, tx *gorm.DB, order *models.Order) error
}

type gormOrderWriter struct{}

// NewOrderWriter returns the gorm-backed writer. Create cascades the order's
// items and their add-ons in the same insert batch.
func NewOrderWriter() OrderWriter {
	return gormOrderWriter{}
}

func (gormOrderWriter) Create(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	return tx.WithContext(ctx).Create(order).Error
}

// NewAddressInput is a delivery address typed in at checkout.
type NewAddressInput struct {
	Street     string
	City       string
	PostalCode string
	Landmark   *string
}

// PlaceOrderInput is everything the checkout form submits.
type PlaceOrderInput struct {
	CustomerName  string
	Phone         string
	DeliveryDate  time.Time
	DeliverySlot  *string
	AddressID     *uuid.UUID
	NewAddress    *NewAddressInput
	PaymentMethod enums.PaymentMethod
	CouponCode    string
	Note          *string
}

// PlaceOrderResult is returned on successful placement.
type PlaceOrderResult struct {
	OrderID  uuid.UUID       `json:"order_id"`
	OrderRef string          `json:"order_ref"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// Service turns the active cart into a persisted order.
type Service interface {
	PlaceOrder(ctx context.Context, userID uuid.UUID, input PlaceOrderInput) (*PlaceOrderResult, error)
}

type service struct {
	carts     cart.Repository
	coupons   couponValidator
	addresses AddressSource
	orders    OrderWriter
	tx        txRunner
	drafts    *DraftStore
	logg      *logger.Logger
	refLength int
}

// NewService wires the checkout service.
func NewService(carts cart.Repository, coupons couponValidator, addresses AddressSource, orders OrderWriter, tx txRunner, drafts *DraftStore, logg *logger.Logger, refLength int) Service {
	if refLength <= 0 {
		refLength = DefaultRefLength
	}
	return &service{
		carts:     carts,
		coupons:   coupons,
		addresses: addresses,
		orders:    orders,
		tx:        tx,
		drafts:    drafts,
		logg:      logg,
		refLength: refLength,
	}
}

// PlaceOrder re-derives totals from the persisted cart, re-validates the
// coupon, and writes the order with all of its lines and add-ons in one
// transaction. Either everything lands or nothing does.
func (s *service) PlaceOrder(ctx context.Context, userID uuid.UUID, input PlaceOrderInput) (*PlaceOrderResult, error) {
	if err := validateGate(input); err != nil {
		return nil, err
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}

	activeCart, err := s.carts.ActiveCart(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if activeCart == nil || len(activeCart.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	street, city, postal, landmark, err := s.resolveAddress(ctx, userID, input)
	if err != nil {
		return nil, err
	}

	subtotal := cartSubtotal(activeCart)

	discount := decimal.Zero
	var couponID *uuid.UUID
	if code := strings.TrimSpace(input.CouponCode); code != "" {
		result := s.coupons.Validate(ctx, coupons.ValidateInput{
			Code:     code,
			Subtotal: subtotal,
			UserID:   &userID,
		})
		if !result.Valid {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, result.Message)
		}
		discount = result.Discount
		couponID = result.CouponID
	}

	total := subtotal.Sub(discount)

	order := &models.Order{
		UserID:        userID,
		Status:        enums.OrderStatusPending,
		CustomerName:  strings.TrimSpace(input.CustomerName),
		Phone:         strings.TrimSpace(input.Phone),
		DeliveryDate:  input.DeliveryDate,
		DeliverySlot:  input.DeliverySlot,
		Street:        street,
		City:          city,
		PostalCode:    postal,
		Landmark:      landmark,
		Subtotal:      subtotal,
		Discount:      discount,
		Total:         total,
		CouponID:      couponID,
		PaymentMethod: input.PaymentMethod,
		Note:          input.Note,
		Items:         orderItems(activeCart),
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.orders.Create(ctx, tx, order); err != nil {
			return err
		}
		if couponID != nil {
			if err := s.coupons.RecordUsage(ctx, tx, *couponID, userID, order.ID); err != nil {
				return err
			}
		}
		return s.carts.MarkConverted(ctx, tx, activeCart.ID)
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "place order")
	}

	// post-commit cleanup is best effort; the order already exists
	if s.drafts != nil {
		if err := s.drafts.Clear(ctx, userID.String()); err != nil && s.logg != nil {
			s.logg.Warn(ctx, "clear checkout draft failed")
		}
		if err := s.drafts.RememberPhone(ctx, userID.String(), order.Phone); err != nil && s.logg != nil {
			s.logg.Warn(ctx, "remember phone failed")
		}
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithOrderID(ctx, order.ID.String()), "order placed")
	}

	return &PlaceOrderResult{
		OrderID:  order.ID,
		OrderRef: OrderRef(order.ID, s.refLength),
		Subtotal: subtotal,
		Discount: discount,
		Total:    total,
	}, nil
}

// OrderRef truncates the order id into the short confirmation reference.
func OrderRef(id uuid.UUID, length int) string {
	compact := strings.ToUpper(strings.ReplaceAll(id.String(), "-", ""))
	if length <= 0 || length > len(compact) {
		length = DefaultRefLength
	}
	return compact[:length]
}

func validateGate(input PlaceOrderInput) error {
	fields := map[string]string{}
	if strings.TrimSpace(input.CustomerName) == "" {
		fields["customer_name"] = "name is required"
	}
	if strings.TrimSpace(input.Phone) == "" {
		fields["phone"] = "phone is required"
	}
	if input.DeliveryDate.IsZero() {
		fields["delivery_date"] = "delivery date is required"
	}
	if input.AddressID == nil {
		addr := input.NewAddress
		if addr == nil {
			fields["address"] = "delivery address is required"
		} else {
			if strings.TrimSpace(addr.Street) == "" {
				fields["street"] = "street is required"
			}
			if strings.TrimSpace(addr.City) == "" {
				fields["city"] = "city is required"
			}
			if strings.TrimSpace(addr.PostalCode) == "" {
				fields["postal_code"] = "postal code is required"
			}
		}
	}
	if len(fields) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "missing required checkout fields").WithDetails(fields)
	}
	return nil
}

func (s *service) resolveAddress(ctx context.Context, userID uuid.UUID, input PlaceOrderInput) (street, city, postal string, landmark *string, err error) {
	if input.AddressID != nil {
		address, lookupErr := s.addresses.ForUser(ctx, userID, *input.AddressID)
		if lookupErr != nil {
			return "", "", "", nil, pkgerrors.Wrap(pkgerrors.CodeDependency, lookupErr, "load address")
		}
		if address == nil {
			return "", "", "", nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
		}
		return address.Street, address.City, address.PostalCode, address.Landmark, nil
	}
	addr := input.NewAddress
	return strings.TrimSpace(addr.Street), strings.TrimSpace(addr.City), strings.TrimSpace(addr.PostalCode), addr.Landmark, nil
}

func cartSubtotal(c *models.Cart) decimal.Decimal {
	lines := make([]pricing.Line, 0, len(c.Items))
	for _, item := range c.Items {
		lines = append(lines, pricingLine(item))
	}
	return pricing.Subtotal(lines)
}

func pricingLine(item models.CartItem) pricing.Line {
	line := pricing.Line{UnitBasePrice: item.UnitBasePrice, Quantity: item.Quantity}
	for _, addon := range item.Addons {
		line.Addons = append(line.Addons, pricing.AddonSelection{
			AddonID:   addon.AddonID,
			Name:      addon.Name,
			UnitPrice: addon.UnitPrice,
			Quantity:  addon.Quantity,
		})
	}
	return line
}

func orderItems(c *models.Cart) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(c.Items))
	for _, cartItem := range c.Items {
		productID := cartItem.ProductID
		item := models.OrderItem{
			ProductID:     &productID,
			Name:          cartItem.ProductName,
			SizeLabel:     cartItem.SizeLabel,
			UnitBasePrice: cartItem.UnitBasePrice,
			Quantity:      cartItem.Quantity,
			Message:       cartItem.Message,
			LineTotal:     pricing.ItemTotal(pricingLine(cartItem)),
		}
		for _, addon := range cartItem.Addons {
			addonID := addon.AddonID
			item.Addons = append(item.Addons, models.OrderItemAddon{
				AddonID:   &addonID,
				Name:      addon.Name,
				UnitPrice: addon.UnitPrice,
				Quantity:  addon.Quantity,
				LineTotal: addon.UnitPrice.Mul(decimal.NewFromInt(int64(addon.Quantity))),
			})
		}
		items = append(items, item)
	}
	return items
}
