package shop

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/angelmondragon/cartsync/pkg/config"
	"github.com/angelmondragon/cartsync/pkg/security"
	"github.com/shopspring/decimal"
)

// Catalog holds the read-only products, coupons and accounts the service
// serves from.
type Catalog struct {
	products map[string]Product
	order    []string
	coupons  map[string]Coupon
	users    map[string]User
}

func NewCatalog(products []Product, coupons []Coupon, users []User) (*Catalog, error) {
	c := &Catalog{
		products: make(map[string]Product, len(products)),
		coupons:  make(map[string]Coupon, len(coupons)),
		users:    make(map[string]User, len(users)),
	}
	for _, p := range products {
		if strings.TrimSpace(p.ID) == "" {
			return nil, fmt.Errorf("product %q has no id", p.Name)
		}
		if _, dup := c.products[p.ID]; dup {
			return nil, fmt.Errorf("duplicate product id %q", p.ID)
		}
		if p.Price.IsNegative() {
			return nil, fmt.Errorf("product %q has a negative price", p.ID)
		}
		c.products[p.ID] = p
		c.order = append(c.order, p.ID)
	}
	for _, cp := range coupons {
		key := normalizeCode(cp.Code)
		if key == "" {
			return nil, fmt.Errorf("coupon without code")
		}
		if _, dup := c.coupons[key]; dup {
			return nil, fmt.Errorf("duplicate coupon code %q", cp.Code)
		}
		c.coupons[key] = cp
	}
	for _, u := range users {
		key := normalizeEmail(u.Email)
		if key == "" || u.ID == "" {
			return nil, fmt.Errorf("user needs an id and email")
		}
		c.users[key] = u
	}
	return c, nil
}

// Product returns the catalog entry for id.
func (c *Catalog) Product(id string) (Product, bool) {
	p, ok := c.products[id]
	return p, ok
}

// Products lists the catalog in seed order.
func (c *Catalog) Products() []Product {
	out := make([]Product, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.products[id])
	}
	return out
}

// Coupon looks up a coupon by code, case-insensitively.
func (c *Catalog) Coupon(code string) (Coupon, bool) {
	cp, ok := c.coupons[normalizeCode(code)]
	return cp, ok
}

// Best returns the highest discount coupon usable by userID at now.
func (c *Catalog) Best(userID string, now time.Time) (Coupon, bool) {
	candidates := make([]Coupon, 0, len(c.coupons))
	for _, cp := range c.coupons {
		if cp.visibleTo(userID) && cp.ActiveAt(now) {
			candidates = append(candidates, cp)
		}
	}
	if len(candidates) == 0 {
		return Coupon{}, false
	}
	sort.Slice(candidates, func(i, j int) bool {
		if cmp := candidates[i].DiscountPercentage.Cmp(candidates[j].DiscountPercentage); cmp != 0 {
			return cmp > 0
		}
		if !candidates[i].ExpirationDate.Equal(candidates[j].ExpirationDate) {
			return candidates[i].ExpirationDate.After(candidates[j].ExpirationDate)
		}
		return candidates[i].Code < candidates[j].Code
	})
	return candidates[0], true
}

// UserByEmail finds an account by email, case-insensitively.
func (c *Catalog) UserByEmail(email string) (User, bool) {
	u, ok := c.users[normalizeEmail(email)]
	return u, ok
}

// Seed password for the demo shopper accounts.
const DemoPassword = "cartsync-demo"

// SeedCatalog builds the demo catalog served by the reference service.
func SeedCatalog(now time.Time, pw config.PasswordConfig) (*Catalog, error) {
	hash, err := security.HashPassword(DemoPassword, pw)
	if err != nil {
		return nil, fmt.Errorf("hash demo password: %w", err)
	}

	products := []Product{
		{ID: "jeans-slim", Name: "Slim Fit Jeans", Category: "jeans", Price: decimal.RequireFromString("59.99"), Image: "/img/jeans-slim.jpg", Description: "Dark wash stretch denim"},
		{ID: "tee-basic", Name: "Basic Tee", Category: "t-shirts", Price: decimal.RequireFromString("19.50"), Image: "/img/tee-basic.jpg", Description: "Organic cotton crew neck"},
		{ID: "sneaker-low", Name: "Low Top Sneakers", Category: "shoes", Price: decimal.RequireFromString("89.00"), Image: "/img/sneaker-low.jpg", Description: "Canvas upper, rubber sole"},
		{ID: "jacket-rain", Name: "Rain Jacket", Category: "jackets", Price: decimal.RequireFromString("120.00"), Image: "/img/jacket-rain.jpg", Description: "Packable shell"},
		{ID: "cap-wool", Name: "Wool Cap", Category: "accessories", Price: decimal.RequireFromString("24.25"), Image: "/img/cap-wool.jpg"},
		{ID: "socks-pack", Name: "Sock Pack", Category: "accessories", Price: decimal.RequireFromString("12.00"), Image: "/img/socks-pack.jpg", Description: "Three pairs"},
	}
	users := []User{
		{ID: "user-ada", Email: "ada@example.com", Name: "Ada", PasswordHash: hash},
		{ID: "user-grace", Email: "grace@example.com", Name: "Grace", PasswordHash: hash},
	}
	coupons := []Coupon{
		{Code: "WELCOME10", DiscountPercentage: decimal.NewFromInt(10), ExpirationDate: now.AddDate(1, 0, 0), Active: true},
		{Code: "ADA20", DiscountPercentage: decimal.NewFromInt(20), ExpirationDate: now.AddDate(0, 1, 0), UserID: "user-ada", Active: true},
		{Code: "SPRING15", DiscountPercentage: decimal.NewFromInt(15), ExpirationDate: now.AddDate(0, 0, -1), Active: true},
		{Code: "RETIRED50", DiscountPercentage: decimal.NewFromInt(50), ExpirationDate: now.AddDate(1, 0, 0), Active: false},
	}
	return NewCatalog(products, coupons, users)
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
