package ethereum

import (
	"context"
	"math/big"

	"github.com/ClipFinance/defi-gateway/common/types"
	"github.com/ClipFinance/defi-gateway/contracts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// NativeBalance returns the native asset balance of an address.
//
// Parameters:
// - ctx: the context for managing the request.
// - address: the wallet address to query.
//
// Returns:
// - types.TokenAmount: the balance in wei with 18 decimals.
// - error: an error if the query fails.
func (p *Provider) NativeBalance(ctx context.Context, address common.Address) (types.TokenAmount, error) {
	var raw *big.Int
	err := p.execute(ctx, "native_balance", func(ctx context.Context, client rpcBackend) error {
		balance, err := client.BalanceAt(ctx, address, nil)
		if err != nil {
			return err
		}
		raw = balance
		return nil
	})
	if err != nil {
		return types.TokenAmount{}, errors.Wrap(err, "failed to get native balance")
	}

	return types.AmountFromRaw(raw, contracts.NativeDecimals)
}

// TokenBalance returns the ERC20 balance of an address together with the
// token's decimals and symbol. The three contract reads run sequentially
// so a failed read names the exact call that broke.
//
// Parameters:
// - ctx: the context for managing the request.
// - address: the wallet address to query.
// - token: the token contract address.
//
// Returns:
// - types.BalanceInfo: the balance with token metadata.
// - error: an error if any of the three reads fails.
func (p *Provider) TokenBalance(ctx context.Context, address common.Address, token common.Address) (types.BalanceInfo, error) {
	raw, err := p.tokenBalanceOf(ctx, token, address)
	if err != nil {
		return types.BalanceInfo{}, errors.Wrap(err, "failed to read token balance")
	}

	decimals, err := p.TokenDecimals(ctx, token)
	if err != nil {
		return types.BalanceInfo{}, errors.Wrap(err, "failed to read token decimals")
	}

	symbol, err := p.TokenSymbol(ctx, token)
	if err != nil {
		return types.BalanceInfo{}, errors.Wrap(err, "failed to read token symbol")
	}

	amount, err := types.AmountFromRaw(raw, decimals)
	if err != nil {
		return types.BalanceInfo{}, err
	}

	tokenAddr := token
	return types.BalanceInfo{
		WalletAddress: address,
		TokenAddress:  &tokenAddr,
		Amount:        amount,
		Symbol:        symbol,
	}, nil
}

func (p *Provider) tokenBalanceOf(ctx context.Context, token, holder common.Address) (*big.Int, error) {
	data, err := contracts.PackBalanceOf(holder)
	if err != nil {
		return nil, err
	}

	output, err := p.CallContract(ctx, token, data)
	if err != nil {
		return nil, err
	}
	return contracts.UnpackBalanceOf(output)
}

// TokenDecimals reads the decimal count of an ERC20 token.
func (p *Provider) TokenDecimals(ctx context.Context, token common.Address) (uint8, error) {
	data, err := contracts.PackDecimals()
	if err != nil {
		return 0, err
	}

	output, err := p.CallContract(ctx, token, data)
	if err != nil {
		return 0, err
	}
	return contracts.UnpackDecimals(output)
}

// TokenSymbol reads the ticker symbol of an ERC20 token.
func (p *Provider) TokenSymbol(ctx context.Context, token common.Address) (string, error) {
	data, err := contracts.PackSymbol()
	if err != nil {
		return "", err
	}

	output, err := p.CallContract(ctx, token, data)
	if err != nil {
		return "", err
	}
	return contracts.UnpackSymbol(output)
}
