package cart

import (
	"encoding/json"
	"fmt"
	"maps"
	"time"

	"github.com/shopspring/decimal"
)

// Product is the catalog entry a shopper adds to the cart. Fields the store
// does not inspect are kept in Extra and written back unchanged.
type Product struct {
	ID          string
	Name        string
	Description string
	Image       string
	Category    string
	Price       decimal.Decimal
	Extra       map[string]json.RawMessage
}

// CartItem is one distinct product in the cart. Quantity is always positive.
type CartItem struct {
	Product
	Quantity int
}

// LineTotal returns price times quantity, unrounded.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (i CartItem) clone() CartItem {
	i.Extra = maps.Clone(i.Extra)
	return i
}

// Coupon is a time-bounded percentage discount.
type Coupon struct {
	Code               string          `json:"code"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage"`
	ExpirationDate     time.Time       `json:"expirationDate"`
}

// ActiveAt reports whether the coupon expires strictly after now.
func (c Coupon) ActiveAt(now time.Time) bool {
	return c.ExpirationDate.After(now)
}

var productKeys = map[string]struct{}{
	"id": {}, "_id": {}, "name": {}, "description": {}, "image": {}, "category": {}, "price": {},
}

func (p *Product) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	return p.decodeFields(raw, productKeys)
}

func (p Product) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.encodeFields())
}

func (i *CartItem) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if err := i.Product.decodeFields(raw, productKeys, "quantity"); err != nil {
		return err
	}
	i.Quantity = 0
	if q, ok := raw["quantity"]; ok && string(q) != "null" {
		if err := json.Unmarshal(q, &i.Quantity); err != nil {
			return fmt.Errorf("decode quantity: %w", err)
		}
	}
	return nil
}

func (i CartItem) MarshalJSON() ([]byte, error) {
	fields := i.Product.encodeFields()
	fields["quantity"] = i.Quantity
	return json.Marshal(fields)
}

func (p *Product) decodeFields(raw map[string]json.RawMessage, known map[string]struct{}, extraKnown ...string) error {
	*p = Product{}
	// Document stores expose the identifier as _id.
	idKey := "id"
	if _, ok := raw[idKey]; !ok {
		idKey = "_id"
	}
	targets := []struct {
		key  string
		dest any
	}{
		{idKey, &p.ID},
		{"name", &p.Name},
		{"description", &p.Description},
		{"image", &p.Image},
		{"category", &p.Category},
		{"price", &p.Price},
	}
	for _, t := range targets {
		value, ok := raw[t.key]
		if !ok || string(value) == "null" {
			continue
		}
		if err := json.Unmarshal(value, t.dest); err != nil {
			return fmt.Errorf("decode %s: %w", t.key, err)
		}
	}

	skip := make(map[string]struct{}, len(extraKnown))
	for _, k := range extraKnown {
		skip[k] = struct{}{}
	}
	for key, value := range raw {
		if _, ok := known[key]; ok {
			continue
		}
		if _, ok := skip[key]; ok {
			continue
		}
		if p.Extra == nil {
			p.Extra = make(map[string]json.RawMessage)
		}
		p.Extra[key] = value
	}
	return nil
}

func (p Product) encodeFields() map[string]any {
	fields := make(map[string]any, len(p.Extra)+6)
	for k, v := range p.Extra {
		fields[k] = v
	}
	fields["id"] = p.ID
	fields["price"] = json.Number(p.Price.String())
	if p.Name != "" {
		fields["name"] = p.Name
	}
	if p.Description != "" {
		fields["description"] = p.Description
	}
	if p.Image != "" {
		fields["image"] = p.Image
	}
	if p.Category != "" {
		fields["category"] = p.Category
	}
	return fields
}
