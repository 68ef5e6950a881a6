package services

import (
	"context"

	"github.com/ClipFinance/defi-gateway/common/types"
	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
)

// GetTransactionStatus reports whether a transaction is pending, confirmed
// or failed, together with its confirmation depth.
//
// Parameters:
// - ctx: the context for managing the request.
// - hash: the transaction hash to look up.
//
// Returns:
// - types.TransactionStatusInfo: the status snapshot.
// - error: an error if the receipt or block number lookup fails.
func (s *Service) GetTransactionStatus(ctx context.Context, hash common.Hash) (types.TransactionStatusInfo, error) {
	s.logger.WithField("hash", hash.Hex()).Debug("Getting transaction status")

	receipt, err := s.backend.TransactionReceipt(ctx, hash)
	if err != nil {
		return types.TransactionStatusInfo{}, errors.Wrap(err, "failed to get transaction receipt")
	}
	if receipt == nil {
		return types.TransactionStatusInfo{
			Hash:   hash,
			Status: types.StatusPending,
		}, nil
	}

	status := types.StatusConfirmed
	if receipt.Status != gethtypes.ReceiptStatusSuccessful {
		status = types.StatusFailed
	}

	gasUsed := receipt.GasUsed
	info := types.TransactionStatusInfo{
		Hash:    hash,
		Status:  status,
		GasUsed: &gasUsed,
	}

	if receipt.BlockNumber != nil {
		latest, err := s.backend.BlockNumber(ctx)
		if err != nil {
			return types.TransactionStatusInfo{}, errors.Wrap(err, "failed to get latest block number")
		}

		blockNumber := receipt.BlockNumber.Uint64()
		info.BlockNumber = &blockNumber
		// The including block counts as the first confirmation.
		info.Confirmations = 1
		if latest > blockNumber {
			info.Confirmations = latest - blockNumber + 1
		}
	}

	return info, nil
}
