package shop

import (
	"context"
	"errors"
	"sync"
	"testing"

	pkgerrors "github.com/angelmondragon/cartsync/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{Carts: NewMemoryRepository()})
	require.Error(t, err)

	_, err = NewService(ServiceParams{Catalog: testCatalog(t)})
	require.Error(t, err)
}

func TestAddProductIncrementsExistingLine(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	_, err := svc.AddProduct(ctx, "user-ada", "tee-basic")
	require.NoError(t, err)
	_, err = svc.AddProduct(ctx, "user-ada", "jeans-slim")
	require.NoError(t, err)
	lines, err := svc.AddProduct(ctx, "user-ada", "tee-basic")
	require.NoError(t, err)

	assert.Equal(t, []string{"tee-basic", "jeans-slim"}, ids(lines))
	assert.Equal(t, map[string]int{"tee-basic": 2, "jeans-slim": 1}, quantities(lines))
	assert.Equal(t, "Basic Tee", lines[0].Name)

	other, err := svc.Cart(ctx, "user-grace")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestAddProductRejectsUnknownOrBlank(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	_, err := svc.AddProduct(ctx, "user-ada", "nope")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	_, err = svc.AddProduct(ctx, "user-ada", " ")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = svc.AddProduct(ctx, "", "tee-basic")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized))
}

func TestRemoveProduct(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	for _, id := range []string{"tee-basic", "jeans-slim", "cap-wool"} {
		_, err := svc.AddProduct(ctx, "user-ada", id)
		require.NoError(t, err)
	}

	lines, err := svc.RemoveProduct(ctx, "user-ada", "jeans-slim")
	require.NoError(t, err)
	assert.Equal(t, []string{"tee-basic", "cap-wool"}, ids(lines))

	lines, err = svc.RemoveProduct(ctx, "user-ada", "not-in-cart")
	require.NoError(t, err)
	assert.Len(t, lines, 2)

	lines, err = svc.RemoveProduct(ctx, "user-ada", "")
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestSetQuantity(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	_, err := svc.AddProduct(ctx, "user-ada", "tee-basic")
	require.NoError(t, err)
	_, err = svc.AddProduct(ctx, "user-ada", "socks-pack")
	require.NoError(t, err)

	lines, err := svc.SetQuantity(ctx, "user-ada", "tee-basic", 5)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"tee-basic": 5, "socks-pack": 1}, quantities(lines))

	lines, err = svc.SetQuantity(ctx, "user-ada", "tee-basic", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"socks-pack"}, ids(lines))

	_, err = svc.SetQuantity(ctx, "user-ada", "tee-basic", 2)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	_, err = svc.SetQuantity(ctx, "user-ada", "socks-pack", -1)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestCartSkipsProductsMissingFromCatalog(t *testing.T) {
	repo := NewMemoryRepository()
	require.NoError(t, repo.Save(context.Background(), "user-ada", []Line{
		{ProductID: "discontinued", Quantity: 1},
		{ProductID: "cap-wool", Quantity: 3},
	}))

	lines, err := newTestService(t, repo).Cart(context.Background(), "user-ada")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"cap-wool": 3}, quantities(lines))
}

type failingRepo struct{ err error }

func (f failingRepo) Load(context.Context, string) ([]Line, error) { return nil, f.err }
func (f failingRepo) Save(context.Context, string, []Line) error  { return f.err }

func TestRepositoryFailuresAreDependencyErrors(t *testing.T) {
	svc := newTestService(t, failingRepo{err: errors.New("disk on fire")})

	_, err := svc.Cart(context.Background(), "user-ada")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeDependency))

	_, err = svc.AddProduct(context.Background(), "user-ada", "tee-basic")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeDependency))
}

func TestConcurrentAddsAreSerializedPerUser(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AddProduct(ctx, "user-ada", "tee-basic")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	lines, err := svc.Cart(ctx, "user-ada")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"tee-basic": 25}, quantities(lines))
}

func TestBestCoupon(t *testing.T) {
	svc := newTestService(t, nil)

	best, err := svc.BestCoupon(context.Background(), "user-ada")
	require.NoError(t, err)
	require.NotNil(t, best)
	assert.Equal(t, "ADA20", best.Code)
}

func TestValidateCoupon(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	cp, err := svc.ValidateCoupon(ctx, "user-grace", "welcome10")
	require.NoError(t, err)
	require.NotNil(t, cp)
	assert.Equal(t, "WELCOME10", cp.Code)

	cp, err = svc.ValidateCoupon(ctx, "user-grace", "SPRING15")
	require.NoError(t, err)
	require.NotNil(t, cp, "expired coupons are returned for the caller to reject")
	assert.False(t, cp.ActiveAt(testNow))

	for _, code := range []string{"NOPE", "RETIRED50"} {
		cp, err = svc.ValidateCoupon(ctx, "user-grace", code)
		require.NoError(t, err)
		assert.Nil(t, cp, code)
	}

	cp, err = svc.ValidateCoupon(ctx, "user-grace", "ADA20")
	require.NoError(t, err)
	assert.Nil(t, cp, "coupons owned by another shopper are not visible")

	_, err = svc.ValidateCoupon(ctx, "user-grace", "  ")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestAuthenticate(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	user, err := svc.Authenticate(ctx, "Ada@Example.com", DemoPassword)
	require.NoError(t, err)
	assert.Equal(t, "user-ada", user.ID)

	_, err = svc.Authenticate(ctx, "ada@example.com", "wrong")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized))

	_, err = svc.Authenticate(ctx, "nobody@example.com", DemoPassword)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized))
}
