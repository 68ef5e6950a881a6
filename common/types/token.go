package types

import "github.com/ethereum/go-ethereum/common"

// TokenInfo describes a known ERC20 token.
//
// Fields:
// - Symbol: the token's ticker symbol, upper case by convention.
// - Address: the token contract address.
// - Decimals: the token's decimal count.
type TokenInfo struct {
	Symbol   string
	Address  common.Address
	Decimals uint8
}

// BalanceInfo is the result of a balance query.
//
// Fields:
// - WalletAddress: the queried wallet.
// - TokenAddress: the token contract, nil for the native asset.
// - Amount: the balance in raw and human-readable form.
// - Symbol: the token symbol, "ETH" for the native asset.
type BalanceInfo struct {
	WalletAddress common.Address  `json:"wallet_address"`
	TokenAddress  *common.Address `json:"token_address,omitempty"`
	Amount        TokenAmount     `json:"amount"`
	Symbol        string          `json:"symbol"`
}
