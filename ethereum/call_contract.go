package ethereum

import (
	"context"

	goethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

// CallContract executes a read-only call against a contract at the latest
// block.
//
// Parameters:
// - ctx: the context for managing the request.
// - to: the contract address.
// - data: the ABI-encoded call data.
//
// Returns:
// - []byte: the raw return data.
// - error: an error if the call fails; reverts surface as
//   ErrContractCallReverted with the revert reason preserved.
func (p *Provider) CallContract(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	var output []byte
	err := p.execute(ctx, "call_contract", func(ctx context.Context, client rpcBackend) error {
		result, err := client.CallContract(ctx, goethereum.CallMsg{
			To:   &to,
			Data: data,
		}, nil)
		if err != nil {
			return err
		}
		output = result
		return nil
	})
	if err != nil {
		return nil, err
	}
	return output, nil
}
