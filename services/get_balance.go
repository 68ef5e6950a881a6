package services

import (
	"context"

	"github.com/ClipFinance/defi-gateway/common/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
)

// NativeSymbol is the ticker reported for native asset balances.
const NativeSymbol = "ETH"

// GetNativeBalance returns the native asset balance of a wallet.
//
// Parameters:
// - ctx: the context for managing the request.
// - address: the wallet address to query.
//
// Returns:
// - types.BalanceInfo: the balance with the native symbol and no token address.
// - error: an error if the query fails.
func (s *Service) GetNativeBalance(ctx context.Context, address common.Address) (types.BalanceInfo, error) {
	s.logger.WithField("address", address.Hex()).Debug("Getting native balance")

	amount, err := s.backend.NativeBalance(ctx, address)
	if err != nil {
		return types.BalanceInfo{}, err
	}

	return types.BalanceInfo{
		WalletAddress: address,
		Amount:        amount,
		Symbol:        NativeSymbol,
	}, nil
}

// GetTokenBalance returns the ERC20 balance of a wallet together with the
// token's symbol and decimals.
//
// Parameters:
// - ctx: the context for managing the request.
// - address: the wallet address to query.
// - token: the token contract address.
//
// Returns:
// - types.BalanceInfo: the balance with token metadata.
// - error: an error if any of the underlying contract reads fails.
func (s *Service) GetTokenBalance(ctx context.Context, address, token common.Address) (types.BalanceInfo, error) {
	s.logger.WithFields(logrus.Fields{
		"address": address.Hex(),
		"token":   token.Hex(),
	}).Debug("Getting token balance")

	return s.backend.TokenBalance(ctx, address, token)
}
