package types

import (
	"math/big"
	"testing"

	commonerrors "github.com/ClipFinance/defi-gateway/common/errors"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmountFromRaw(t *testing.T) {
	wei, ok := new(big.Int).SetString("1500000000000000000", 10)
	require.True(t, ok)

	amount, err := AmountFromRaw(wei, 18)
	require.NoError(t, err)

	assert.Equal(t, "1500000000000000000", amount.RawString())
	assert.Equal(t, "1.5", amount.String())
	assert.Equal(t, uint8(18), amount.Decimals)
}

func TestAmountFromRawInvalid(t *testing.T) {
	_, err := AmountFromRaw(nil, 18)
	assert.True(t, errors.Is(err, commonerrors.ErrInvalidAmount))

	_, err = AmountFromRaw(big.NewInt(-1), 18)
	assert.True(t, errors.Is(err, commonerrors.ErrInvalidAmount))
}

func TestAmountFromString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		decimals uint8
		wantRaw  string
	}{
		{"whole ether", "1", 18, "1000000000000000000"},
		{"fractional ether", "1.5", 18, "1500000000000000000"},
		{"usdc six decimals", "2500.25", 6, "2500250000"},
		{"zero", "0", 18, "0"},
		{"smallest unit", "0.000000000000000001", 18, "1"},
		{"trailing zeros", "1.500", 18, "1500000000000000000"},
		{"zero decimal token", "42", 0, "42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, err := AmountFromString(tt.input, tt.decimals)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRaw, amount.RawString())
		})
	}
}

func TestAmountFromStringInvalid(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		decimals uint8
	}{
		{"too many fractional digits", "1.1234567", 6},
		{"fraction on zero decimal token", "1.5", 0},
		{"negative", "-1", 18},
		{"not a number", "one point five", 18},
		{"empty", "", 18},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AmountFromString(tt.input, tt.decimals)
			require.Error(t, err)
			assert.True(t, errors.Is(err, commonerrors.ErrInvalidAmount))
		})
	}
}

// Converting raw to human form and back must reproduce the original raw
// value exactly for any decimal count.
func TestAmountRoundTrip(t *testing.T) {
	raws := []string{
		"0",
		"1",
		"999",
		"1000000",
		"1500000000000000000",
		"123456789012345678901234567890",
	}
	decimalCounts := []uint8{0, 1, 6, 8, 18, 24}

	for _, rawStr := range raws {
		for _, decimals := range decimalCounts {
			raw, ok := new(big.Int).SetString(rawStr, 10)
			require.True(t, ok)

			human, err := AmountFromRaw(raw, decimals)
			require.NoError(t, err)

			back, err := AmountFromString(human.String(), decimals)
			require.NoError(t, err)

			assert.Zero(t, raw.Cmp(back.Raw),
				"round trip changed %s at %d decimals: got %s", rawStr, decimals, back.RawString())
		}
	}
}

func TestAmountFromDecimalTruncationBoundary(t *testing.T) {
	// 99.5 with one decimal of resolution is representable, 99.55 is not.
	amt, err := AmountFromDecimal(decimal.RequireFromString("99.5"), 1)
	require.NoError(t, err)
	assert.Equal(t, "995", amt.RawString())

	_, err = AmountFromDecimal(decimal.RequireFromString("99.55"), 1)
	assert.True(t, errors.Is(err, commonerrors.ErrInvalidAmount))
}

func TestAmountJSONShape(t *testing.T) {
	amount, err := AmountFromString("12.34", 6)
	require.NoError(t, err)

	data, err := amount.MarshalJSON()
	require.NoError(t, err)

	assert.JSONEq(t, `{"raw":"12340000","decimals":6,"human_readable":"12.34"}`, string(data))
}

func TestZeroAmount(t *testing.T) {
	zero := ZeroAmount(18)
	assert.True(t, zero.IsZero())
	assert.False(t, zero.IsPositive())
	assert.Equal(t, "0", zero.RawString())
}
