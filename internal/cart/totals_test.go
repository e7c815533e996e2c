package cart

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCalculateTotals(t *testing.T) {
	t.Parallel()

	future := testNow.Add(24 * time.Hour)
	past := testNow.Add(-time.Second)
	exampleCart := []CartItem{item("a", "10.00", 2), item("b", "5.50", 1)}

	tests := []struct {
		name     string
		items    []CartItem
		coupon   *Coupon
		applied  bool
		subtotal string
		total    string
	}{
		{name: "empty cart", subtotal: "0.00", total: "0.00"},
		{name: "no coupon", items: exampleCart, subtotal: "25.50", total: "25.50"},
		{name: "applied active coupon", items: exampleCart, coupon: coupon("SAVE20", 20, future), applied: true, subtotal: "25.50", total: "20.40"},
		{name: "coupon present but not applied", items: exampleCart, coupon: coupon("SAVE20", 20, future), subtotal: "25.50", total: "25.50"},
		{name: "applied flag without coupon", items: exampleCart, applied: true, subtotal: "25.50", total: "25.50"},
		{name: "expired coupon never discounts", items: exampleCart, coupon: coupon("OLD", 20, past), applied: true, subtotal: "25.50", total: "25.50"},
		{name: "coupon expiring exactly now is inactive", items: exampleCart, coupon: coupon("NOW", 20, testNow), applied: true, subtotal: "25.50", total: "25.50"},
		{name: "percentage above 100 is bounded", items: exampleCart, coupon: coupon("ALL", 150, future), applied: true, subtotal: "25.50", total: "0.00"},
		{name: "rounds half away from zero", items: []CartItem{item("x", "0.125", 1)}, subtotal: "0.13", total: "0.13"},
		{name: "discount rounding", items: []CartItem{item("x", "9.99", 3)}, coupon: coupon("C15", 15, future), applied: true, subtotal: "29.97", total: "25.47"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := CalculateTotals(tt.items, tt.coupon, tt.applied, testNow)
			assert.Equal(t, tt.subtotal, got.Subtotal.StringFixed(2))
			assert.Equal(t, tt.total, got.Total.StringFixed(2))
		})
	}
}

func TestCalculateTotalsIsIdempotent(t *testing.T) {
	t.Parallel()

	items := []CartItem{item("a", "3.333", 3), item("b", "0.015", 7)}
	c := coupon("X", 33, testNow.Add(time.Hour))

	first := CalculateTotals(items, c, true, testNow)
	second := CalculateTotals(items, c, true, testNow)
	assert.True(t, first.Subtotal.Equal(second.Subtotal))
	assert.True(t, first.Total.Equal(second.Total))
}

func TestCalculateTotalsSubtotalMatchesLineSum(t *testing.T) {
	t.Parallel()

	items := []CartItem{item("a", "1.10", 3), item("b", "2.05", 2), item("c", "0.99", 10)}
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	got := CalculateTotals(items, nil, false, testNow)
	assert.True(t, sum.Round(2).Equal(got.Subtotal), "expected %s got %s", sum, got.Subtotal)
}
