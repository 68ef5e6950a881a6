package ethereum

import (
	"context"
	"math/big"

	goethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// EstimateGas estimates the gas required to execute the given call.
//
// Parameters:
// - ctx: the context for managing the request.
// - call: the call to estimate, with From defaulting to the gateway wallet.
//
// Returns:
// - uint64: the estimated gas required for the call.
// - error: an error if the estimation fails or the call would revert.
func (p *Provider) EstimateGas(ctx context.Context, call goethereum.CallMsg) (uint64, error) {
	if call.From == (common.Address{}) {
		call.From = p.signer.Address()
	}

	var gas uint64
	err := p.execute(ctx, "estimate_gas", func(ctx context.Context, client rpcBackend) error {
		estimate, err := client.EstimateGas(ctx, call)
		if err != nil {
			return err
		}
		gas = estimate
		return nil
	})
	if err != nil {
		return 0, errors.Wrap(err, "failed to estimate gas")
	}
	return gas, nil
}

// GasPrice returns the current suggested gas price in wei.
func (p *Provider) GasPrice(ctx context.Context) (*big.Int, error) {
	var price *big.Int
	err := p.execute(ctx, "gas_price", func(ctx context.Context, client rpcBackend) error {
		suggested, err := client.SuggestGasPrice(ctx)
		if err != nil {
			return err
		}
		price = suggested
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get gas price")
	}
	return price, nil
}
