package ethereum

import (
	"context"

	goethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
)

// TransactionReceipt returns the receipt of a mined transaction.
//
// Parameters:
// - ctx: the context for managing the request.
// - hash: the transaction hash.
//
// Returns:
// - *ethtypes.Receipt: the receipt, or nil when the transaction is still
//   pending or unknown to the node.
// - error: an error if the lookup itself fails.
func (p *Provider) TransactionReceipt(ctx context.Context, hash common.Hash) (*ethtypes.Receipt, error) {
	var receipt *ethtypes.Receipt
	err := p.execute(ctx, "transaction_receipt", func(ctx context.Context, client rpcBackend) error {
		found, err := client.TransactionReceipt(ctx, hash)
		if err != nil {
			if errors.Is(err, goethereum.NotFound) {
				// Not mined yet, or not known to this node. Either way the
				// transaction has no receipt, which is not a failure.
				receipt = nil
				return nil
			}
			return err
		}
		receipt = found
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction receipt")
	}
	return receipt, nil
}

// BlockNumber returns the latest block number.
func (p *Provider) BlockNumber(ctx context.Context) (uint64, error) {
	var number uint64
	err := p.execute(ctx, "block_number", func(ctx context.Context, client rpcBackend) error {
		latest, err := client.BlockNumber(ctx)
		if err != nil {
			return err
		}
		number = latest
		return nil
	})
	if err != nil {
		return 0, errors.Wrap(err, "failed to get block number")
	}
	return number, nil
}
