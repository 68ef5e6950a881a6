package types

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Price sources reported in TokenPrice.Source. AMM-derived prices use
// PriceSourceAMMFee plus the fee tier, matching the route tags of swap
// results.
const (
	PriceSourceDirectNative = "direct_native"
	PriceSourceAMMFeePrefix = "amm_fee_"
	PriceSourceOracle       = "oracle"
)

// TokenPrice is the result of a price query.
//
// Fields:
// - TokenAddress: the priced token contract.
// - PriceETH: the token price denominated in the native asset.
// - PriceUSD: the token price in USD, nil when the oracle feed was
//   unavailable. Never fabricated from stale or partial data.
// - Source: which route produced PriceETH ("direct_native" or
//   "amm_fee_<tier>").
type TokenPrice struct {
	TokenAddress common.Address   `json:"token_address"`
	PriceETH     decimal.Decimal  `json:"price_eth"`
	PriceUSD     *decimal.Decimal `json:"price_usd,omitempty"`
	Source       string           `json:"source"`
}
