package types

import "github.com/ethereum/go-ethereum/common"

// TransactionStatus represents the lifecycle state of a transaction.
type TransactionStatus string

const (
	// StatusPending is the status of a transaction not yet included in a block.
	StatusPending TransactionStatus = "pending"
	// StatusConfirmed is the status of a transaction included in a block with a success receipt.
	StatusConfirmed TransactionStatus = "confirmed"
	// StatusFailed is the status of a transaction included in a block with a failure receipt.
	StatusFailed TransactionStatus = "failed"
)

// String converts TransactionStatus to its string representation.
func (s TransactionStatus) String() string {
	return string(s)
}

// TransactionStatusInfo is the result of a transaction status query.
//
// Fields:
// - Hash: the transaction hash.
// - Status: pending, confirmed or failed.
// - BlockNumber: the including block, nil while pending.
// - Confirmations: blocks mined on top of the including block, inclusive.
//   Zero while pending.
// - GasUsed: gas consumed by the transaction, nil while pending.
type TransactionStatusInfo struct {
	Hash          common.Hash       `json:"transaction_hash"`
	Status        TransactionStatus `json:"status"`
	BlockNumber   *uint64           `json:"block_number,omitempty"`
	Confirmations uint64            `json:"confirmations"`
	GasUsed       *uint64           `json:"gas_used,omitempty"`
}
