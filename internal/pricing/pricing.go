// Package pricing holds the pure money math for a checkout: discount amount,
// total, and cash change. Everything here is stateless and never contacts the
// back office.
package pricing

import (
	"strings"

	"github.com/selular-pos/till/internal/enum"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// DiscountAmount derives the discount for a subtotal. Percentage discounts
// apply value% of the subtotal; fixed discounts apply the value directly.
// Negative values floor to zero and the result is clamped to [0, subtotal],
// so the derived total can never go negative. An unknown discount type yields
// zero.
func DiscountAmount(subtotal decimal.Decimal, discountType string, value decimal.Decimal) decimal.Decimal {
	if value.IsNegative() {
		value = decimal.Zero
	}

	var amount decimal.Decimal
	switch discountType {
	case enum.DiscountTypePercentage:
		amount = subtotal.Mul(value).Div(hundred)
	case enum.DiscountTypeFixed:
		amount = value
	default:
		return decimal.Zero
	}

	if amount.GreaterThan(subtotal) {
		return subtotal
	}
	return amount
}

// Total is the subtotal less the discount amount, floored at zero.
func Total(subtotal, discountAmount decimal.Decimal) decimal.Decimal {
	total := subtotal.Sub(discountAmount)
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}

// Change is the cash change for a payment: amount received minus total. A
// negative result is a valid value meaning the payment is insufficient; the
// checkout orchestrator uses it to refuse confirmation. Only meaningful for
// cash payments.
func Change(amountReceived, total decimal.Decimal) decimal.Decimal {
	return amountReceived.Sub(total)
}

// ParseAmount parses a user-entered amount. Empty or non-numeric input yields
// zero, which conservatively blocks cash confirmation downstream.
func ParseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
