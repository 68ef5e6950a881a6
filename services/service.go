// Package services implements the gateway tools: balance queries, price
// discovery, swap simulation and transaction status. The services own the
// financial computation and leave transport resilience (throttling,
// circuit breaking, retries, endpoint failover) to the backend they are
// built on.
package services

import (
	"context"

	"github.com/ClipFinance/defi-gateway/common/types"
	"github.com/ClipFinance/defi-gateway/contracts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
)

// Backend is the resilient RPC surface the services are built on. It is
// implemented by ethereum.Provider; every call already passes through the
// throttle, the current endpoint's circuit breaker and retry with
// failover.
type Backend interface {
	types.BalanceReader
	types.ContractCaller
	types.GasEstimator
	types.TransactionReader

	// TokenDecimals reads the decimal count of an ERC20 token.
	TokenDecimals(ctx context.Context, token common.Address) (uint8, error)
}

// Service exposes the gateway tool operations over a resilient backend.
type Service struct {
	backend Backend
	book    contracts.AddressBook
	logger  *logrus.Logger
}

// New creates a service facade over the given backend.
//
// Parameters:
// - backend: the resilient RPC provider.
// - book: the deployed contract addresses for the gateway's chain.
// - logger: the logger instance for service events.
//
// Returns:
// - *Service: the initialized service.
func New(backend Backend, book contracts.AddressBook, logger *logrus.Logger) *Service {
	return &Service{
		backend: backend,
		book:    book,
		logger:  logger,
	}
}
