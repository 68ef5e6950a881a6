package types

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
)

// BalanceReader provides balance query functionality.
type BalanceReader interface {
	// NativeBalance returns the native asset balance of an address.
	//
	// Parameters:
	// - ctx: the context for managing the request.
	// - address: the wallet address to query.
	//
	// Returns:
	// - TokenAmount: the balance in wei with native decimals.
	// - error: an error if the query fails.
	NativeBalance(ctx context.Context, address common.Address) (TokenAmount, error)

	// TokenBalance returns the ERC20 balance of an address together with
	// the token's decimals and symbol. The three underlying contract reads
	// run sequentially; a failure in any of them fails the whole query.
	//
	// Parameters:
	// - ctx: the context for managing the request.
	// - address: the wallet address to query.
	// - token: the token contract address.
	//
	// Returns:
	// - BalanceInfo: the balance with token metadata.
	// - error: an error if any sub-read fails.
	TokenBalance(ctx context.Context, address common.Address, token common.Address) (BalanceInfo, error)
}

// ContractCaller executes read-only contract calls.
type ContractCaller interface {
	// CallContract executes a read-only call against a contract.
	//
	// Parameters:
	// - ctx: the context for managing the request.
	// - to: the contract address.
	// - data: the ABI-encoded call data.
	//
	// Returns:
	// - []byte: the raw return data.
	// - error: an error if the call fails or reverts.
	CallContract(ctx context.Context, to common.Address, data []byte) ([]byte, error)
}

// GasEstimator provides gas estimation and gas price functionality.
type GasEstimator interface {
	// EstimateGas estimates the gas required for a call.
	EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error)

	// GasPrice returns the current suggested gas price in wei.
	GasPrice(ctx context.Context) (*big.Int, error)
}

// TransactionReader provides transaction lookup functionality.
type TransactionReader interface {
	// TransactionReceipt returns the receipt of a mined transaction, or
	// nil without error when the transaction is still pending or unknown.
	TransactionReceipt(ctx context.Context, hash common.Hash) (*gethtypes.Receipt, error)

	// BlockNumber returns the latest block number.
	BlockNumber(ctx context.Context) (uint64, error)
}

// NonceSource allocates transaction nonces for the gateway wallet.
type NonceSource interface {
	// NextNonce allocates the next nonce for the gateway wallet address.
	// The first allocation seeds the sequence from the chain's pending
	// nonce; later allocations increment locally without a network call.
	NextNonce(ctx context.Context) (uint64, error)
}

// HealthChecker probes upstream connectivity.
type HealthChecker interface {
	// HealthCheck verifies the current endpoint answers a trivial query.
	HealthCheck(ctx context.Context) error
}

// Provider combines all resilient RPC functionality exposed to the
// services layer.
type Provider interface {
	BalanceReader
	ContractCaller
	GasEstimator
	TransactionReader
	NonceSource
	HealthChecker

	// WalletAddress returns the address derived from the configured key.
	WalletAddress() common.Address

	// Close releases all endpoint connections.
	Close()
}
