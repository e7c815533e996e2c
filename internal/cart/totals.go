package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	zero    = decimal.Zero
)

// Totals holds the derived monetary values of a cart. Both are rounded to two
// decimal places.
type Totals struct {
	Subtotal decimal.Decimal
	Total    decimal.Decimal
}

// CalculateTotals derives subtotal and total from the cart and coupon state.
// The coupon discounts the total only when it is applied and still active at
// now; the percentage is bounded to [0, 100].
func CalculateTotals(items []CartItem, coupon *Coupon, applied bool, now time.Time) Totals {
	subtotal := zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal())
	}

	total := subtotal
	if coupon != nil && applied && coupon.ActiveAt(now) {
		pct := decimal.Min(decimal.Max(coupon.DiscountPercentage, zero), hundred)
		discount := subtotal.Mul(pct).Div(hundred)
		total = subtotal.Sub(discount)
	}

	return Totals{
		Subtotal: subtotal.Round(2),
		Total:    total.Round(2),
	}
}
