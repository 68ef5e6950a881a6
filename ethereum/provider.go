// Package ethereum implements the resilient RPC provider: a ring of
// upstream endpoints with per-endpoint circuit breaking, bounded
// concurrency, retries with exponential backoff, and failover between
// endpoints on connectivity loss.
package ethereum

import (
	"context"
	"time"

	commonerrors "github.com/ClipFinance/defi-gateway/common/errors"
	"github.com/ClipFinance/defi-gateway/common/types"
	"github.com/ClipFinance/defi-gateway/ethereum/breaker"
	"github.com/ClipFinance/defi-gateway/ethereum/nonce"
	"github.com/ClipFinance/defi-gateway/ethereum/signer"
	"github.com/ClipFinance/defi-gateway/ethereum/throttle"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	defaultRequestTimeout = 30 * time.Second
	defaultRetryAttempts  = 3
	defaultRetryBaseDelay = 100 * time.Millisecond
)

// Provider is the resilient gateway to a single Ethereum chain.
//
// Every call flows through the same pipeline: a throttle permit bounds
// concurrency, the active endpoint's circuit breaker guards the call, and
// transient failures retry with backoff before the provider fails over to
// the next endpoint in the ring.
type Provider struct {
	config *types.ProviderConfig
	logger *logrus.Logger

	signer signer.Signer
	ring   *endpointRing
	gate   *throttle.Gate
	nonces *nonce.Manager
	dial   dialFunc
}

var _ types.Provider = (*Provider)(nil)

// NewProvider connects to the configured endpoints and verifies that at
// least one of them answers.
//
// Parameters:
// - ctx: the context for managing connection setup.
// - config: the provider configuration.
// - logger: the logger for logging events.
//
// Returns:
// - *Provider: the connected provider.
// - error: an error if the configuration is invalid or no endpoint answers.
func NewProvider(ctx context.Context, config *types.ProviderConfig, logger *logrus.Logger) (*Provider, error) {
	return newProviderWithDial(ctx, config, logger, dialEthclient)
}

func newProviderWithDial(ctx context.Context, config *types.ProviderConfig, logger *logrus.Logger, dial dialFunc) (*Provider, error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	normalized := *config
	applyConfigDefaults(&normalized)

	walletSigner, err := signer.NewSignerFromHex(normalized.PrivateKey)
	if err != nil {
		return nil, errors.Wrap(commonerrors.ErrInvalidConfig, err.Error())
	}

	breakerConfig := breaker.Config{
		FailureThreshold: normalized.BreakerFailureThreshold,
		SuccessThreshold: normalized.BreakerSuccessThreshold,
		Cooldown:         normalized.BreakerCooldown,
		MaxCooldown:      normalized.BreakerMaxCooldown,
		IgnoreFailure:    endpointBlameless,
	}

	ring, err := newEndpointRing(ctx, normalized.RPCURLs, normalized.ChainID,
		normalized.RequestTimeout, breakerConfig, dial, logger)
	if err != nil {
		return nil, err
	}

	p := &Provider{
		config: &normalized,
		logger: logger,
		signer: walletSigner,
		ring:   ring,
		gate:   throttle.New(normalized.MaxConcurrentCalls, normalized.AcquireTimeout),
		dial:   dial,
	}
	p.nonces = nonce.NewManager(p, logger)

	logger.WithFields(logrus.Fields{
		"chain_id":  normalized.ChainID,
		"endpoints": ring.len(),
		"wallet":    walletSigner.Address().Hex(),
	}).Info("Ethereum provider initialized")

	return p, nil
}

func validateConfig(config *types.ProviderConfig) error {
	if config == nil {
		return errors.Wrap(commonerrors.ErrInvalidConfig, "nil provider config")
	}
	if len(config.RPCURLs) == 0 {
		return errors.Wrap(commonerrors.ErrInvalidConfig, "no rpc urls configured")
	}
	if config.ChainID == 0 {
		return errors.Wrap(commonerrors.ErrInvalidConfig, "chain id must be set")
	}
	if config.PrivateKey == "" {
		return errors.Wrap(commonerrors.ErrInvalidConfig, "private key must be set")
	}
	return nil
}

func applyConfigDefaults(config *types.ProviderConfig) {
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = defaultRequestTimeout
	}
	if config.RetryAttempts == 0 {
		config.RetryAttempts = defaultRetryAttempts
	}
	if config.RetryBaseDelay <= 0 {
		config.RetryBaseDelay = defaultRetryBaseDelay
	}
}

// endpointBlameless reports errors that say nothing about endpoint health:
// contract reverts are authoritative answers and caller cancellation is
// the caller's choice.
func endpointBlameless(err error) bool {
	return commonerrors.IsRevert(err) || errors.Is(err, context.Canceled)
}

// execute runs a call through the full resilience pipeline.
//
// Failover rules: a connectivity failure rotates the ring and tries the
// next endpoint until every endpoint has been tried once. An open circuit
// surfaces immediately and never rotates, since the breaker is already
// protecting that endpoint. Authoritative failures such as reverts surface
// from the endpoint that produced them.
func (p *Provider) execute(ctx context.Context, label string, call func(ctx context.Context, client rpcBackend) error) error {
	release, err := p.gate.Acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	var lastErr error
	for hop := 0; hop < p.ring.len(); hop++ {
		index, ep := p.ring.current()

		// An endpoint that never dialed gets its dial retried on demand
		// before any call is attempted against it.
		if ep.backend() == nil {
			if err := p.ring.redial(ctx, index, p.dial); err != nil {
				p.logger.WithFields(logrus.Fields{
					"operation": label,
					"endpoint":  ep.label,
				}).WithError(err).Warn("Endpoint still unreachable, failing over")

				lastErr = err
				p.ring.advanceFrom(index)
				continue
			}
		}

		err := ep.breaker.Do(ctx, func() error {
			return p.callWithRetries(ctx, label, ep, call)
		})
		if err == nil {
			return nil
		}

		if errors.Is(err, commonerrors.ErrCircuitOpen) {
			return errors.Wrap(err, label)
		}
		if ctx.Err() != nil {
			return err
		}
		if !commonerrors.IsConnectivity(err) && !errors.Is(err, commonerrors.ErrNoHealthyEndpoint) {
			return errors.Wrap(err, label)
		}

		p.logger.WithFields(logrus.Fields{
			"operation": label,
			"endpoint":  ep.label,
		}).WithError(err).Warn("Endpoint unreachable, failing over")

		lastErr = err
		p.ring.advanceFrom(index)
	}

	return errors.Wrapf(commonerrors.ErrAllEndpointsExhausted, "%s: last error: %v", label, lastErr)
}

// WalletAddress returns the address derived from the configured key.
func (p *Provider) WalletAddress() common.Address {
	return p.signer.Address()
}

// Signer exposes the wallet signer for callers that build transactions.
func (p *Provider) Signer() signer.Signer {
	return p.signer
}

// ChainID returns the configured chain ID.
func (p *Provider) ChainID() uint64 {
	return p.config.ChainID
}

// Rotate forces the cursor to the next endpoint in the ring.
func (p *Provider) Rotate() {
	index, _ := p.ring.current()
	p.ring.advanceFrom(index)
}

// CheckConnection probes the active endpoint. It implements the
// connection monitor's client interface.
func (p *Provider) CheckConnection(ctx context.Context) error {
	return p.HealthCheck(ctx)
}

// Failover rotates to the next endpoint and redials the one left behind
// so it can recover. It implements the connection monitor's client
// interface.
func (p *Provider) Failover(ctx context.Context) error {
	index, ep := p.ring.current()
	p.ring.advanceFrom(index)

	if err := p.ring.redial(ctx, index, p.dial); err != nil {
		p.logger.WithField("endpoint", ep.label).WithError(err).Warn("Endpoint redial failed after failover")
		return err
	}
	return nil
}

// Close releases all endpoint connections.
func (p *Provider) Close() {
	p.ring.closeAll()
}
