package pricing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AddonSelection is one priced extra on a cart line.
type AddonSelection struct {
	AddonID   uuid.UUID
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

// Line is the pricing view of a cart item. UnitBasePrice is the product base
// price already scaled by the chosen size multiplier.
type Line struct {
	UnitBasePrice decimal.Decimal
	Quantity      int
	Addons        []AddonSelection
}

// UnitPrice scales a product base price by a size multiplier.
func UnitPrice(basePrice, multiplier decimal.Decimal) decimal.Decimal {
	if multiplier.IsZero() {
		return basePrice
	}
	return basePrice.Mul(multiplier)
}

// ItemTotal computes unit*quantity plus every add-on at its own quantity.
func ItemTotal(line Line) decimal.Decimal {
	total := line.UnitBasePrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
	for _, addon := range line.Addons {
		total = total.Add(addon.UnitPrice.Mul(decimal.NewFromInt(int64(addon.Quantity))))
	}
	return total
}

// Subtotal folds ItemTotal over the cart. An empty cart is zero.
func Subtotal(lines []Line) decimal.Decimal {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(ItemTotal(line))
	}
	return subtotal
}

// Discount derives a coupon discount against a subtotal. Percentage values
// divide by 100 at full precision; the result is clamped to [0, subtotal].
func Discount(subtotal, value decimal.Decimal, percentage bool) decimal.Decimal {
	discount := value
	if percentage {
		discount = subtotal.Mul(value).Div(decimal.NewFromInt(100))
	}
	if discount.IsNegative() {
		return decimal.Zero
	}
	if discount.GreaterThan(subtotal) {
		return subtotal
	}
	return discount
}

// DisplayAmount rounds to the nearest whole currency unit. Stored values keep
// full precision; only rendering rounds.
func DisplayAmount(amount decimal.Decimal) int64 {
	return amount.Round(0).IntPart()
}
