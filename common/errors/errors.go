package errors

import "github.com/pkg/errors"

var (
	ErrInvalidAmount         = errors.New("invalid token amount")
	ErrInvalidAddress        = errors.New("invalid address")
	ErrInvalidConfig         = errors.New("invalid configuration")
	ErrCircuitOpen           = errors.New("circuit breaker is open")
	ErrThrottleTimeout       = errors.New("timed out waiting for a request slot")
	ErrUpstreamTimeout       = errors.New("upstream request timed out")
	ErrAllEndpointsExhausted = errors.New("all rpc endpoints exhausted")
	ErrNonceConflict         = errors.New("nonce conflict with chain state")
	ErrNoLiquidityRoute      = errors.New("no liquidity route for token pair")
	ErrContractCallReverted  = errors.New("contract call reverted")
	ErrTokenNotFound         = errors.New("token not found in registry")
	ErrNoHealthyEndpoint     = errors.New("no healthy rpc endpoint available")
	ErrDatabaseConnect       = errors.New("failed to connect to database")
)
