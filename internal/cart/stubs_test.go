package cart

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

var testNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

type stubRemote struct {
	mu    sync.Mutex
	calls []string

	cart      []CartItem
	cartErr   error
	addErr    error
	removeErr error
	updateErr error

	coupon      *Coupon
	couponErr   error
	validated   *Coupon
	validateErr error
	onValidate  func()

	lastCode     string
	lastQuantity int
}

func (s *stubRemote) record(call string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
}

func (s *stubRemote) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.calls))
	copy(out, s.calls)
	return out
}

func (s *stubRemote) GetCart(ctx context.Context) ([]CartItem, error) {
	s.record("get_cart")
	return s.cart, s.cartErr
}

func (s *stubRemote) AddToCart(ctx context.Context, productID string) error {
	s.record("add:" + productID)
	return s.addErr
}

func (s *stubRemote) RemoveFromCart(ctx context.Context, productID string) error {
	s.record("remove:" + productID)
	return s.removeErr
}

func (s *stubRemote) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	s.record("update:" + productID)
	s.mu.Lock()
	s.lastQuantity = quantity
	s.mu.Unlock()
	return s.updateErr
}

func (s *stubRemote) GetCoupon(ctx context.Context) (*Coupon, error) {
	s.record("get_coupon")
	return s.coupon, s.couponErr
}

func (s *stubRemote) ValidateCoupon(ctx context.Context, code string) (*Coupon, error) {
	s.record("validate:" + code)
	s.mu.Lock()
	s.lastCode = code
	s.mu.Unlock()
	if s.onValidate != nil {
		s.onValidate()
	}
	return s.validated, s.validateErr
}

// serviceError mimics a transport error carrying the service's message.
type serviceError struct {
	msg string
}

func (e serviceError) Error() string          { return "service error: " + e.msg }
func (e serviceError) ServiceMessage() string { return e.msg }

func item(id, price string, qty int) CartItem {
	return CartItem{Product: product(id, price), Quantity: qty}
}

func product(id, price string) Product {
	return Product{ID: id, Name: "product " + id, Price: decimal.RequireFromString(price)}
}

func coupon(code string, pct int64, expires time.Time) *Coupon {
	return &Coupon{Code: code, DiscountPercentage: decimal.NewFromInt(pct), ExpirationDate: expires}
}
