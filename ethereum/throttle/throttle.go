// Package throttle bounds the number of simultaneous outbound RPC calls.
// It is the single point of backpressure against the upstream network,
// independent of any rate limiting applied at the HTTP layer above.
package throttle

import (
	"context"
	"sync"
	"time"

	commonerrors "github.com/ClipFinance/defi-gateway/common/errors"
	"github.com/pkg/errors"
	"golang.org/x/sync/semaphore"
)

const (
	defaultCapacity       = 10
	defaultAcquireTimeout = 10 * time.Second
)

// Gate is a fixed-capacity permit pool. Acquisition blocks the calling
// goroutine until a permit frees up or the acquire timeout elapses. FIFO
// fairness is not guaranteed.
type Gate struct {
	sem      *semaphore.Weighted
	capacity int64
	timeout  time.Duration
}

// New creates a gate with the given capacity and acquire timeout.
// Non-positive values fall back to the defaults.
func New(capacity int64, acquireTimeout time.Duration) *Gate {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	if acquireTimeout <= 0 {
		acquireTimeout = defaultAcquireTimeout
	}
	return &Gate{
		sem:      semaphore.NewWeighted(capacity),
		capacity: capacity,
		timeout:  acquireTimeout,
	}
}

// Acquire obtains a permit, waiting up to the configured timeout.
//
// Parameters:
// - ctx: the caller's context; its cancellation preempts the wait.
//
// Returns:
// - func(): the release closure, safe to call more than once; the permit
//   is returned exactly once.
// - error: ErrThrottleTimeout when the pool stays full past the timeout,
//   or the caller's context error when ctx ends the wait first.
func (g *Gate) Acquire(ctx context.Context) (func(), error) {
	waitCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if err := g.sem.Acquire(waitCtx, 1); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.Wrapf(commonerrors.ErrThrottleTimeout, "after %s", g.timeout)
	}

	var once sync.Once
	return func() {
		once.Do(func() { g.sem.Release(1) })
	}, nil
}

// Capacity returns the configured permit count.
func (g *Gate) Capacity() int64 {
	return g.capacity
}
