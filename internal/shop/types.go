package shop

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry.
type Product struct {
	ID          string
	Name        string
	Description string
	Image       string
	Category    string
	Price       decimal.Decimal
}

// Coupon is a percentage discount. An empty UserID makes it available to
// every shopper.
type Coupon struct {
	Code               string
	DiscountPercentage decimal.Decimal
	ExpirationDate     time.Time
	UserID             string
	Active             bool
}

// ActiveAt reports whether the coupon can still be redeemed at now.
func (c Coupon) ActiveAt(now time.Time) bool {
	return c.Active && c.ExpirationDate.After(now)
}

func (c Coupon) visibleTo(userID string) bool {
	return c.UserID == "" || c.UserID == userID
}

// User is a shopper account.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
}

// Line is one persisted cart row.
type Line struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// CartLine is a cart row joined with its catalog product.
type CartLine struct {
	Product
	Quantity int
}
