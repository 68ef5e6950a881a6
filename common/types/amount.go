package types

import (
	"encoding/json"
	"math/big"

	commonerrors "github.com/ClipFinance/defi-gateway/common/errors"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// TokenAmount is a fixed-point token value carried in both raw integer
// units and human-readable decimal form.
//
// Fields:
// - Raw: the amount in the token's smallest unit (wei for the native asset).
// - Decimals: the token's decimal count.
// - Human: the amount as an exact decimal, equal to Raw / 10^Decimals.
//
// Human is derived with exact decimal arithmetic, never through binary
// floating point, so the two representations round-trip losslessly within
// the token's decimal resolution.
type TokenAmount struct {
	Raw      *big.Int
	Decimals uint8
	Human    decimal.Decimal
}

// AmountFromRaw constructs a TokenAmount from raw integer units.
//
// Parameters:
// - raw: the amount in smallest units, must be non-nil and non-negative.
// - decimals: the token's decimal count.
//
// Returns:
// - TokenAmount: the constructed amount.
// - error: ErrInvalidAmount if raw is nil or negative.
func AmountFromRaw(raw *big.Int, decimals uint8) (TokenAmount, error) {
	if raw == nil {
		return TokenAmount{}, errors.Wrap(commonerrors.ErrInvalidAmount, "raw amount is nil")
	}
	if raw.Sign() < 0 {
		return TokenAmount{}, errors.Wrap(commonerrors.ErrInvalidAmount, "raw amount is negative")
	}
	return TokenAmount{
		Raw:      new(big.Int).Set(raw),
		Decimals: decimals,
		Human:    decimal.NewFromBigInt(raw, -int32(decimals)),
	}, nil
}

// AmountFromDecimal constructs a TokenAmount from a human-readable decimal.
//
// Parameters:
// - human: the decimal amount, must be non-negative and representable
//   within the token's decimal resolution.
// - decimals: the token's decimal count.
//
// Returns:
// - TokenAmount: the constructed amount.
// - error: ErrInvalidAmount if the value is negative or has more
//   fractional digits than decimals allows.
func AmountFromDecimal(human decimal.Decimal, decimals uint8) (TokenAmount, error) {
	if human.IsNegative() {
		return TokenAmount{}, errors.Wrap(commonerrors.ErrInvalidAmount, "amount is negative")
	}
	shifted := human.Shift(int32(decimals))
	if !shifted.IsInteger() {
		return TokenAmount{}, errors.Wrapf(commonerrors.ErrInvalidAmount,
			"amount has more than %d fractional digits", decimals)
	}
	return TokenAmount{
		Raw:      shifted.BigInt(),
		Decimals: decimals,
		Human:    human,
	}, nil
}

// AmountFromString parses a human-readable decimal string into a TokenAmount.
func AmountFromString(s string, decimals uint8) (TokenAmount, error) {
	human, err := decimal.NewFromString(s)
	if err != nil {
		return TokenAmount{}, errors.Wrapf(commonerrors.ErrInvalidAmount, "not a decimal number: %q", s)
	}
	return AmountFromDecimal(human, decimals)
}

// ZeroAmount returns a zero value amount for the given decimal count.
func ZeroAmount(decimals uint8) TokenAmount {
	return TokenAmount{
		Raw:      new(big.Int),
		Decimals: decimals,
		Human:    decimal.Zero,
	}
}

// IsZero reports whether the amount is zero.
func (a TokenAmount) IsZero() bool {
	return a.Raw == nil || a.Raw.Sign() == 0
}

// IsPositive reports whether the amount is strictly greater than zero.
func (a TokenAmount) IsPositive() bool {
	return a.Raw != nil && a.Raw.Sign() > 0
}

// RawString returns the raw amount as a decimal string, "0" for the zero value.
func (a TokenAmount) RawString() string {
	if a.Raw == nil {
		return "0"
	}
	return a.Raw.String()
}

// String returns the human-readable form.
func (a TokenAmount) String() string {
	return a.Human.String()
}

// MarshalJSON serializes the amount as a flat structure of strings so that
// arbitrary-precision values survive any JSON consumer.
func (a TokenAmount) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Raw           string `json:"raw"`
		Decimals      uint8  `json:"decimals"`
		HumanReadable string `json:"human_readable"`
	}{
		Raw:           a.RawString(),
		Decimals:      a.Decimals,
		HumanReadable: a.Human.String(),
	})
}
