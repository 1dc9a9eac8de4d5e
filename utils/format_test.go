package utils

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeRational(t *testing.T) {
	raw, ok := new(big.Int).SetString("1234500000000", 10)
	require.True(t, ok)

	v := MakeRational(raw, 9)
	assert.True(t, v.Equal(decimal.RequireFromString("1234.5")), "got %s", v)
	assert.True(t, MakeRational(nil, 9).IsZero())
}

func TestToRawRoundTrip(t *testing.T) {
	v := decimal.RequireFromString("0.000000001")
	assert.Equal(t, "1", ToRaw(v, 9).String())

	// digits past the token precision are dropped, never rounded up
	assert.Equal(t, "1", ToRaw(decimal.RequireFromString("0.0000000019"), 9).String())

	raw := ToRaw(decimal.RequireFromString("42.5"), 18)
	assert.True(t, MakeRational(raw, 18).Equal(decimal.RequireFromString("42.5")))
}

func TestFormatRational(t *testing.T) {
	assert.Equal(t, "1200.00", FormatRational(decimal.NewFromInt(1200), 2))
	assert.Equal(t, "0.13", FormatRational(decimal.RequireFromString("0.125"), 2))
}

func TestAbbreviateDecimal(t *testing.T) {
	assert.Equal(t, "1.500", AbbreviateDecimal(decimal.RequireFromString("1.5")))
	assert.Equal(t, "0.0₄123", AbbreviateDecimal(decimal.RequireFromString("0.0000123456")))
}
