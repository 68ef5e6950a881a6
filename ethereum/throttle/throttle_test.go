package throttle

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	commonerrors "github.com/ClipFinance/defi-gateway/common/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireNeverExceedsCapacity(t *testing.T) {
	const capacity = 3
	const callers = 20

	gate := New(capacity, time.Second)

	var inUse int64
	var peak int64
	var wg sync.WaitGroup

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			release, err := gate.Acquire(context.Background())
			assert.NoError(t, err)
			defer release()

			current := atomic.AddInt64(&inUse, 1)
			for {
				old := atomic.LoadInt64(&peak)
				if current <= old || atomic.CompareAndSwapInt64(&peak, old, current) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt64(&inUse, -1)
		}()
	}
	wg.Wait()

	require.LessOrEqual(t, atomic.LoadInt64(&peak), int64(capacity))
	require.Greater(t, atomic.LoadInt64(&peak), int64(0))
}

func TestAcquireTimesOutWithoutLeakingPermit(t *testing.T) {
	gate := New(1, 50*time.Millisecond)

	release, err := gate.Acquire(context.Background())
	require.NoError(t, err)

	_, err = gate.Acquire(context.Background())
	require.ErrorIs(t, err, commonerrors.ErrThrottleTimeout)

	release()

	// The rejected caller must not have consumed the permit.
	release, err = gate.Acquire(context.Background())
	require.NoError(t, err)
	release()
}

func TestAcquireHonorsParentContext(t *testing.T) {
	gate := New(1, time.Minute)

	release, err := gate.Acquire(context.Background())
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = gate.Acquire(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.NotErrorIs(t, err, commonerrors.ErrThrottleTimeout)
}

func TestReleaseIsIdempotent(t *testing.T) {
	gate := New(2, 50*time.Millisecond)

	release, err := gate.Acquire(context.Background())
	require.NoError(t, err)

	release()
	release()

	// A double release must not mint an extra permit.
	first, err := gate.Acquire(context.Background())
	require.NoError(t, err)
	second, err := gate.Acquire(context.Background())
	require.NoError(t, err)

	_, err = gate.Acquire(context.Background())
	require.ErrorIs(t, err, commonerrors.ErrThrottleTimeout)

	first()
	second()
}

func TestDefaultsApplied(t *testing.T) {
	gate := New(0, 0)

	assert.Equal(t, int64(defaultCapacity), gate.Capacity())
	assert.Equal(t, defaultAcquireTimeout, gate.timeout)
}
