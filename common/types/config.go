package types

import "time"

// ProviderConfig holds the configuration for the Ethereum provider.
//
// Fields:
// - ChainID: the unique identifier of the target chain.
// - RPCURLs: ordered upstream endpoint URLs, first is preferred.
// - PrivateKey: hex-encoded signing key, used to derive the wallet address.
// - MaxConcurrentCalls: capacity of the outbound request throttle.
// - AcquireTimeout: how long a call may wait for a throttle permit.
// - RequestTimeout: upper bound for a single upstream request.
// - RetryAttempts: attempts per endpoint before failing over.
// - RetryBaseDelay: initial backoff delay between retries.
// - BreakerFailureThreshold: consecutive failures that open a breaker.
// - BreakerCooldown: base cooldown of an open breaker.
// - BreakerSuccessThreshold: half-open successes required to close.
// - BreakerMaxCooldown: cap for the grown cooldown, zero means 4x the base.
type ProviderConfig struct {
	ChainID                 uint64
	RPCURLs                 []string
	PrivateKey              string
	MaxConcurrentCalls      int64
	AcquireTimeout          time.Duration
	RequestTimeout          time.Duration
	RetryAttempts           uint
	RetryBaseDelay          time.Duration
	BreakerFailureThreshold int
	BreakerCooldown         time.Duration
	BreakerSuccessThreshold int
	BreakerMaxCooldown      time.Duration
}
