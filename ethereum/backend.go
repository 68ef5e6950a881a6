package ethereum

import (
	"context"
	"math/big"

	goethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// rpcBackend is the slice of the Ethereum client the provider relies on.
// *ethclient.Client satisfies it; tests substitute scripted fakes.
type rpcBackend interface {
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	CallContract(ctx context.Context, msg goethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	EstimateGas(ctx context.Context, msg goethereum.CallMsg) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error)
	BlockNumber(ctx context.Context) (uint64, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	ChainID(ctx context.Context) (*big.Int, error)
	Close()
}

// dialFunc opens a backend connection for one endpoint URL.
type dialFunc func(ctx context.Context, rawURL string) (rpcBackend, error)

func dialEthclient(ctx context.Context, rawURL string) (rpcBackend, error) {
	return ethclient.DialContext(ctx, rawURL)
}
