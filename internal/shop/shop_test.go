package shop

import (
	"testing"
	"time"

	"github.com/angelmondragon/cartsync/pkg/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

var fastPasswords = config.PasswordConfig{
	ArgonMemoryKB:    1024,
	ArgonTime:        1,
	ArgonParallelism: 1,
	ArgonSaltLen:     16,
	ArgonKeyLen:      32,
}

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	catalog, err := SeedCatalog(testNow, fastPasswords)
	require.NoError(t, err)
	return catalog
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	if repo == nil {
		repo = NewMemoryRepository()
	}
	svc, err := NewService(ServiceParams{
		Catalog: testCatalog(t),
		Carts:   repo,
		Now:     func() time.Time { return testNow },
	})
	require.NoError(t, err)
	return svc
}

func quantities(lines []CartLine) map[string]int {
	out := make(map[string]int, len(lines))
	for _, line := range lines {
		out[line.ID] = line.Quantity
	}
	return out
}

func ids(lines []CartLine) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		out = append(out, line.ID)
	}
	return out
}

func price(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

