package ethereum

import (
	"context"
	"net/url"
	"strconv"
	"sync"
	"time"

	commonerrors "github.com/ClipFinance/defi-gateway/common/errors"
	"github.com/ClipFinance/defi-gateway/common/types"
	"github.com/ClipFinance/defi-gateway/ethereum/breaker"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// endpoint is one upstream RPC connection with its own circuit breaker.
// The client is swapped on redial, so reads go through backend. A nil
// client means the endpoint never dialed; dialErr records why.
type endpoint struct {
	label   string
	url     string
	breaker *breaker.Breaker
	healthy bool

	clientMutex sync.RWMutex
	client      rpcBackend
	dialErr     error
}

func (e *endpoint) backend() rpcBackend {
	e.clientMutex.RLock()
	defer e.clientMutex.RUnlock()
	return e.client
}

// swapClient installs a fresh connection and closes the one it replaces.
func (e *endpoint) swapClient(client rpcBackend) {
	e.clientMutex.Lock()
	old := e.client
	e.client = client
	e.dialErr = nil
	e.clientMutex.Unlock()

	if old != nil {
		old.Close()
	}
}

// endpointRing tracks the active endpoint among the configured upstreams.
// The cursor only moves forward, wrapping around, and only via a
// compare-and-advance so concurrent failures of the same endpoint rotate
// it exactly once.
type endpointRing struct {
	logger    *logrus.Logger
	endpoints []*endpoint

	cursorMutex sync.Mutex
	cursor      int
}

// newEndpointRing dials every configured URL and probes each connection.
// Endpoints that fail to dial or whose probe fails stay in the ring with
// the failure recorded; failover redials them on demand so a dead standby
// never prevents startup. At least one endpoint must pass the probe. An
// endpoint reporting a different chain ID is a configuration error.
func newEndpointRing(
	ctx context.Context,
	urls []string,
	chainID uint64,
	probeTimeout time.Duration,
	breakerConfig breaker.Config,
	dial dialFunc,
	logger *logrus.Logger,
) (*endpointRing, error) {
	ring := &endpointRing{logger: logger}

	for i, rawURL := range urls {
		ep := &endpoint{
			label:   endpointLabel(i, rawURL),
			url:     rawURL,
			breaker: breaker.New(endpointLabel(i, rawURL), breakerConfig, logger),
		}

		client, err := dial(ctx, rawURL)
		if err != nil {
			ep.dialErr = err
			logger.WithFields(logrus.Fields{
				"endpoint": ep.label,
			}).WithError(err).Warn("RPC endpoint failed to dial, keeping as standby")
			ring.endpoints = append(ring.endpoints, ep)
			continue
		}
		ep.client = client

		logger.WithFields(logrus.Fields{
			"endpoint":  ep.label,
			"transport": types.GetTransportMode(rawURL).String(),
		}).Debug("Dialed RPC endpoint")

		probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		reportedID, err := client.ChainID(probeCtx)
		cancel()

		switch {
		case err != nil:
			logger.WithFields(logrus.Fields{
				"endpoint": ep.label,
			}).WithError(err).Warn("RPC endpoint failed initial probe")
		case reportedID.Uint64() != chainID:
			ring.closeAll()
			client.Close()
			return nil, errors.Wrapf(commonerrors.ErrInvalidConfig,
				"endpoint %s serves chain %d, expected %d", ep.label, reportedID.Uint64(), chainID)
		default:
			ep.healthy = true
		}

		ring.endpoints = append(ring.endpoints, ep)
	}

	for i, ep := range ring.endpoints {
		if ep.healthy {
			ring.cursor = i
			return ring, nil
		}
	}

	ring.closeAll()
	return nil, errors.Wrap(commonerrors.ErrNoHealthyEndpoint, "initial endpoint probes")
}

// current returns the active endpoint and its index. The index is the
// token callers pass back to advanceFrom after a connectivity failure.
func (r *endpointRing) current() (int, *endpoint) {
	r.cursorMutex.Lock()
	defer r.cursorMutex.Unlock()
	return r.cursor, r.endpoints[r.cursor]
}

// advanceFrom rotates the cursor to the next endpoint, but only when the
// cursor still points at the failed index. A losing caller sees the cursor
// already moved and retries against the new endpoint instead of skipping it.
func (r *endpointRing) advanceFrom(failedIndex int) {
	r.cursorMutex.Lock()
	defer r.cursorMutex.Unlock()

	if r.cursor != failedIndex {
		return
	}
	next := (r.cursor + 1) % len(r.endpoints)
	r.logger.WithFields(logrus.Fields{
		"from": r.endpoints[r.cursor].label,
		"to":   r.endpoints[next].label,
	}).Warn("Rotating to next RPC endpoint")
	r.cursor = next
}

// redial replaces the connection of the endpoint at index so a failed
// upstream can recover later. A dial failure leaves the old connection
// in place.
func (r *endpointRing) redial(ctx context.Context, index int, dial dialFunc) error {
	ep := r.endpoints[index]

	client, err := dial(ctx, ep.url)
	if err != nil {
		return errors.Wrapf(err, "failed to redial rpc endpoint %s", ep.label)
	}

	ep.swapClient(client)
	r.logger.WithField("endpoint", ep.label).Info("Endpoint redialed")
	return nil
}

func (r *endpointRing) len() int {
	return len(r.endpoints)
}

func (r *endpointRing) closeAll() {
	for _, ep := range r.endpoints {
		if client := ep.backend(); client != nil {
			client.Close()
		}
	}
}

// endpointLabel renders an endpoint for logs without leaking URL paths,
// which commonly embed API keys.
func endpointLabel(index int, rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return "endpoint-" + strconv.Itoa(index)
	}
	return strconv.Itoa(index) + ":" + parsed.Host
}
