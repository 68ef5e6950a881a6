package services

import (
	"context"
	"math/big"
	"testing"

	"github.com/ClipFinance/defi-gateway/common/types"
	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTxHash = common.HexToHash("0xaaaabbbbccccddddeeeeffff0000111122223333444455556666777788889999")

func minedReceipt(status uint64, block int64, gasUsed uint64) *gethtypes.Receipt {
	return &gethtypes.Receipt{
		Status:      status,
		BlockNumber: big.NewInt(block),
		GasUsed:     gasUsed,
	}
}

func statusService(receipt *gethtypes.Receipt, receiptErr error, latest uint64) *Service {
	backend := &fakeBackend{
		receiptFn: func(ctx context.Context, hash common.Hash) (*gethtypes.Receipt, error) {
			return receipt, receiptErr
		},
		blockNumberFn: func(ctx context.Context) (uint64, error) {
			return latest, nil
		},
	}
	return New(backend, book, quietLogger())
}

func TestGetTransactionStatusConfirmed(t *testing.T) {
	svc := statusService(minedReceipt(gethtypes.ReceiptStatusSuccessful, 100, 84000), nil, 104)

	info, err := svc.GetTransactionStatus(context.Background(), testTxHash)
	require.NoError(t, err)

	assert.Equal(t, testTxHash, info.Hash)
	assert.Equal(t, types.StatusConfirmed, info.Status)
	require.NotNil(t, info.BlockNumber)
	assert.Equal(t, uint64(100), *info.BlockNumber)
	assert.Equal(t, uint64(5), info.Confirmations)
	require.NotNil(t, info.GasUsed)
	assert.Equal(t, uint64(84000), *info.GasUsed)
}

func TestGetTransactionStatusFailed(t *testing.T) {
	svc := statusService(minedReceipt(gethtypes.ReceiptStatusFailed, 100, 21000), nil, 100)

	info, err := svc.GetTransactionStatus(context.Background(), testTxHash)
	require.NoError(t, err)

	assert.Equal(t, types.StatusFailed, info.Status)
	assert.Equal(t, uint64(1), info.Confirmations, "the including block is the first confirmation")
}

func TestGetTransactionStatusPending(t *testing.T) {
	svc := statusService(nil, nil, 104)

	info, err := svc.GetTransactionStatus(context.Background(), testTxHash)
	require.NoError(t, err)

	assert.Equal(t, types.StatusPending, info.Status)
	assert.Zero(t, info.Confirmations)
	assert.Nil(t, info.BlockNumber)
	assert.Nil(t, info.GasUsed)
}

func TestGetTransactionStatusLookupError(t *testing.T) {
	svc := statusService(nil, errors.New("boom"), 104)

	_, err := svc.GetTransactionStatus(context.Background(), testTxHash)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get transaction receipt")
}
