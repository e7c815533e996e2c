package shop

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCatalogRejectsBadSeeds(t *testing.T) {
	_, err := NewCatalog([]Product{{Name: "nameless"}}, nil, nil)
	assert.Error(t, err)

	_, err = NewCatalog([]Product{{ID: "a"}, {ID: "a"}}, nil, nil)
	assert.Error(t, err)

	_, err = NewCatalog([]Product{{ID: "a", Price: price("-1")}}, nil, nil)
	assert.Error(t, err)

	_, err = NewCatalog(nil, []Coupon{{Code: "X"}, {Code: " x "}}, nil)
	assert.Error(t, err)

	_, err = NewCatalog(nil, nil, []User{{Email: "a@example.com"}})
	assert.Error(t, err)
}

func TestCatalogLookups(t *testing.T) {
	catalog := testCatalog(t)

	products := catalog.Products()
	require.NotEmpty(t, products)
	assert.Equal(t, "jeans-slim", products[0].ID)

	p, ok := catalog.Product("tee-basic")
	require.True(t, ok)
	assert.True(t, p.Price.Equal(price("19.5")))

	_, ok = catalog.Coupon(" welcome10 ")
	assert.True(t, ok)

	u, ok := catalog.UserByEmail("ADA@example.com")
	require.True(t, ok)
	assert.Equal(t, "user-ada", u.ID)
}

func TestCatalogBestCoupon(t *testing.T) {
	catalog := testCatalog(t)

	best, ok := catalog.Best("user-ada", testNow)
	require.True(t, ok)
	assert.Equal(t, "ADA20", best.Code)

	best, ok = catalog.Best("user-grace", testNow)
	require.True(t, ok)
	assert.Equal(t, "WELCOME10", best.Code)

	_, ok = catalog.Best("user-grace", testNow.AddDate(2, 0, 0))
	assert.False(t, ok)
}

func TestCatalogBestCouponTieBreaks(t *testing.T) {
	ten := decimal.NewFromInt(10)
	catalog, err := NewCatalog(nil, []Coupon{
		{Code: "B", DiscountPercentage: ten, ExpirationDate: testNow.Add(time.Hour), Active: true},
		{Code: "A", DiscountPercentage: ten, ExpirationDate: testNow.Add(time.Hour), Active: true},
		{Code: "LATER", DiscountPercentage: ten, ExpirationDate: testNow.Add(2 * time.Hour), Active: true},
	}, nil)
	require.NoError(t, err)

	best, ok := catalog.Best("", testNow)
	require.True(t, ok)
	assert.Equal(t, "LATER", best.Code, "later expiry wins on equal discount")

	catalog, err = NewCatalog(nil, []Coupon{
		{Code: "B", DiscountPercentage: ten, ExpirationDate: testNow.Add(time.Hour), Active: true},
		{Code: "A", DiscountPercentage: ten, ExpirationDate: testNow.Add(time.Hour), Active: true},
	}, nil)
	require.NoError(t, err)

	best, ok = catalog.Best("", testNow)
	require.True(t, ok)
	assert.Equal(t, "A", best.Code)
}

func TestCouponActiveAt(t *testing.T) {
	c := Coupon{ExpirationDate: testNow, Active: true}
	assert.False(t, c.ActiveAt(testNow))
	assert.True(t, c.ActiveAt(testNow.Add(-time.Nanosecond)))

	c.Active = false
	assert.False(t, c.ActiveAt(testNow.Add(-time.Hour)))
}
