package server

import (
	"github.com/ClipFinance/defi-gateway/common/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// defaultBoundaryDecimals is the decimal count an inbound amount string is
// parsed against before the swap service re-anchors it on the token's
// on-chain decimals. Eighteen admits the finest granularity any mainstream
// ERC20 uses.
const defaultBoundaryDecimals = 18

// containsControlChars reports whether a raw input carries control
// characters. Inputs with embedded control bytes are rejected before they
// reach a log line or an upstream call.
func containsControlChars(s string) bool {
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			return true
		}
	}
	return false
}

// parseAddressArg validates and parses a hex address argument.
func parseAddressArg(name, value string) (common.Address, *RPCError) {
	if value == "" {
		return common.Address{}, invalidParams("missing " + name)
	}
	if containsControlChars(value) || !common.IsHexAddress(value) {
		return common.Address{}, invalidParams("invalid " + name)
	}
	return common.HexToAddress(value), nil
}

// parseHashArg validates and parses a transaction hash argument.
func parseHashArg(name, value string) (common.Hash, *RPCError) {
	if value == "" {
		return common.Hash{}, invalidParams("missing " + name)
	}
	hash, err := types.ParseTxHash(value)
	if err != nil {
		return common.Hash{}, invalidParams("invalid " + name)
	}
	return hash, nil
}

// parseAmountArg validates a human-readable amount string and converts it
// to a boundary token amount. The limit is the configured maximum swap
// size; zero and negative amounts are rejected here so the services only
// ever see positive inputs.
func parseAmountArg(name, value string, limit decimal.Decimal) (types.TokenAmount, *RPCError) {
	if value == "" {
		return types.TokenAmount{}, invalidParams("missing " + name)
	}
	if containsControlChars(value) {
		return types.TokenAmount{}, invalidParams("invalid " + name)
	}
	human, err := decimal.NewFromString(value)
	if err != nil {
		return types.TokenAmount{}, invalidParams("invalid " + name + ": not a number")
	}
	if !human.IsPositive() {
		return types.TokenAmount{}, invalidParams("invalid " + name + ": must be positive")
	}
	if human.GreaterThan(limit) {
		return types.TokenAmount{}, invalidParams("invalid " + name + ": exceeds the maximum swap amount")
	}
	amount, err := types.AmountFromDecimal(human, defaultBoundaryDecimals)
	if err != nil {
		return types.TokenAmount{}, invalidParams("invalid " + name + ": too many decimal places")
	}
	return amount, nil
}

// parseSlippageArg validates a slippage tolerance percentage in [0, 100).
func parseSlippageArg(name, value string) (decimal.Decimal, *RPCError) {
	if value == "" {
		return decimal.Decimal{}, invalidParams("missing " + name)
	}
	slippage, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Decimal{}, invalidParams("invalid " + name + ": not a number")
	}
	if slippage.IsNegative() || slippage.GreaterThanOrEqual(decimal.NewFromInt(100)) {
		return decimal.Decimal{}, invalidParams("invalid " + name + ": must be in [0, 100)")
	}
	return slippage, nil
}
