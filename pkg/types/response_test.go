package types

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoneyEncodesAsNumber(t *testing.T) {
	payload, err := json.Marshal(map[string]Money{"price": Money(decimal.RequireFromString("19.50"))})
	require.NoError(t, err)
	assert.JSONEq(t, `{"price":19.5}`, string(payload))
}

func TestMoneyDecodesNumbersAndStrings(t *testing.T) {
	var body struct {
		A Money `json:"a"`
		B Money `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":10.25,"b":"3"}`), &body))
	assert.True(t, decimal.Decimal(body.A).Equal(decimal.RequireFromString("10.25")))
	assert.True(t, decimal.Decimal(body.B).Equal(decimal.NewFromInt(3)))
}

func TestErrorEnvelopeOmitsEmptyDetails(t *testing.T) {
	payload, err := json.Marshal(ErrorEnvelope{Error: APIError{Code: "NOT_FOUND", Message: "Product not found"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":{"code":"NOT_FOUND","message":"Product not found"}}`, string(payload))
}
