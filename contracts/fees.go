package contracts

import "github.com/ethereum/go-ethereum/common"

// Uniswap V3 fee tiers in hundredths of a bip, so 3000 means 0.30%.
const (
	FeeTierLow    uint32 = 500   // stablecoin pairs
	FeeTierMedium uint32 = 3000  // most pairs
	FeeTierHigh   uint32 = 10000 // exotic pairs
)

// FeeTiers returns the tiers in preference order. Quoting walks this list
// and the first tier with liquidity wins.
func FeeTiers() []uint32 {
	return []uint32{FeeTierLow, FeeTierMedium, FeeTierHigh}
}

// CommonFeeTier picks the likeliest fee tier for a pair: low for
// stablecoin-to-stablecoin, medium for everything else.
func CommonFeeTier(book AddressBook, tokenA, tokenB common.Address) uint32 {
	if book.IsStablecoin(tokenA) && book.IsStablecoin(tokenB) {
		return FeeTierLow
	}
	return FeeTierMedium
}
