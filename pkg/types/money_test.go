package types

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	cases := map[string]Money{
		"":       0,
		"0":      0,
		"12.5":   1250,
		" 4.99 ": 499,
		"0.005":  1,
		"10":     1000,
	}
	for raw, want := range cases {
		got, err := ParseMoney(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := ParseMoney("twelve")
	require.Error(t, err)
}

func TestMoneyJSONAcceptsNumbersAndStrings(t *testing.T) {
	var body struct {
		A Money `json:"a"`
		B Money `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 19.99, "b": "5"}`), &body))
	assert.Equal(t, Money(1999), body.A)
	assert.Equal(t, Money(500), body.B)

	out, err := json.Marshal(body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": 19.99, "b": 5.00}`, string(out))
}

func TestMoneyPercent(t *testing.T) {
	assert.Equal(t, Money(200), Money(1000).Percent(decimal.NewFromInt(20)))
	assert.Equal(t, Money(18), Money(333).Percent(decimal.NewFromFloat(5.5)))
	assert.Equal(t, Money(3000), Money(1000).Mul(3))
	assert.Equal(t, "12.30", Money(1230).String())
}
