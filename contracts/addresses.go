package contracts

import "github.com/ethereum/go-ethereum/common"

const (
	// NativeDecimals is the decimal count of the chain's native currency.
	NativeDecimals uint8 = 18

	// DefaultSwapGas is the gas estimate reported when a swap cannot be
	// simulated and no measured value exists.
	DefaultSwapGas uint64 = 200000
)

// AddressBook holds the deployed contract addresses for one chain.
//
// Fields:
// - USDC, USDT, DAI: the major stablecoins
// - WETH: the wrapped native token, priced 1:1 with ETH
// - UniswapV3Factory, UniswapV3Router, UniswapV3Quoter: the AMM deployment
// - ChainlinkETHUSDFeed: the ETH/USD aggregator, zero when unavailable
type AddressBook struct {
	USDC common.Address
	USDT common.Address
	DAI  common.Address
	WETH common.Address

	UniswapV3Factory common.Address
	UniswapV3Router  common.Address
	UniswapV3Quoter  common.Address

	ChainlinkETHUSDFeed common.Address
}

// MainnetAddressBook returns the canonical Ethereum mainnet deployment.
func MainnetAddressBook() AddressBook {
	return AddressBook{
		USDC: common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"),
		USDT: common.HexToAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7"),
		DAI:  common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F"),
		WETH: common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"),

		UniswapV3Factory: common.HexToAddress("0x1F98431c8aD98523631AE4a59f267346ea31F984"),
		UniswapV3Router:  common.HexToAddress("0xE592427A0AEce92De3Edee1F18E0157C05861564"),
		UniswapV3Quoter:  common.HexToAddress("0xb27308f9F90D607463bb33eA1BeBb41C27CE5AB6"),

		ChainlinkETHUSDFeed: common.HexToAddress("0x5f4eC3Df9cbd43714FE2740f5E3616155c5b8419"),
	}
}

// IsStablecoin reports whether the address is one of the book's stablecoins.
func (b AddressBook) IsStablecoin(address common.Address) bool {
	return address == b.USDC || address == b.USDT || address == b.DAI
}

// IsWrappedNative reports whether the address is the wrapped native token.
func (b AddressBook) IsWrappedNative(address common.Address) bool {
	return address == b.WETH
}

// HasPriceFeed reports whether an ETH/USD aggregator is configured.
func (b AddressBook) HasPriceFeed() bool {
	return b.ChainlinkETHUSDFeed != (common.Address{})
}
