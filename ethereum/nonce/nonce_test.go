package nonce

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"testing"

	commonerrors "github.com/ClipFinance/defi-gateway/common/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCounter struct {
	nonce uint64
	err   error
	calls int32
}

func (c *fakeCounter) PendingNonceAt(_ context.Context, _ common.Address) (uint64, error) {
	atomic.AddInt32(&c.calls, 1)
	if c.err != nil {
		return 0, c.err
	}
	return c.nonce, nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

var (
	wallet = common.HexToAddress("0x1111111111111111111111111111111111111111")
	other  = common.HexToAddress("0x2222222222222222222222222222222222222222")
)

func TestAllocateSeedsFromChainOnce(t *testing.T) {
	counter := &fakeCounter{nonce: 5}
	m := NewManager(counter, testLogger())

	for want := uint64(5); want < 8; want++ {
		got, err := m.Allocate(context.Background(), wallet)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&counter.calls))
}

func TestAllocateSeedFailure(t *testing.T) {
	counter := &fakeCounter{err: errors.New("connection refused")}
	m := NewManager(counter, testLogger())

	_, err := m.Allocate(context.Background(), wallet)
	require.Error(t, err)

	// A failed seed must not poison the record: the next attempt reseeds.
	counter.err = nil
	counter.nonce = 9
	got, err := m.Allocate(context.Background(), wallet)
	require.NoError(t, err)
	assert.Equal(t, uint64(9), got)
}

// Under N concurrent allocations the returned set must be exactly
// {next, next+1, ..., next+N-1}: no duplicates, no gaps.
func TestAllocateConcurrent(t *testing.T) {
	const callers = 50
	const seed = 100
	counter := &fakeCounter{nonce: seed}
	m := NewManager(counter, testLogger())

	results := make([]uint64, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			nonce, err := m.Allocate(context.Background(), wallet)
			assert.NoError(t, err)
			results[slot] = nonce
		}(i)
	}
	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i] < results[j] })
	for i, nonce := range results {
		assert.Equal(t, uint64(seed+i), nonce)
	}
	assert.Equal(t, callers, m.InFlight(wallet))
}

func TestAllocateIndependentAddresses(t *testing.T) {
	counter := &fakeCounter{nonce: 0}
	m := NewManager(counter, testLogger())

	first, err := m.Allocate(context.Background(), wallet)
	require.NoError(t, err)
	second, err := m.Allocate(context.Background(), other)
	require.NoError(t, err)

	assert.Equal(t, uint64(0), first)
	assert.Equal(t, uint64(0), second)
}

func TestReconcileAdvancesOnly(t *testing.T) {
	counter := &fakeCounter{nonce: 10}
	m := NewManager(counter, testLogger())

	_, err := m.Allocate(context.Background(), wallet)
	require.NoError(t, err)

	// Chain behind or equal: no movement.
	require.NoError(t, m.Reconcile(wallet, 3))
	require.NoError(t, m.Reconcile(wallet, 11))

	got, err := m.Allocate(context.Background(), wallet)
	require.NoError(t, err)
	assert.Equal(t, uint64(11), got)

	// Chain ahead with no live allocations: counter jumps forward cleanly.
	m.Confirm(wallet, 10)
	m.Confirm(wallet, 11)
	require.NoError(t, m.Reconcile(wallet, 20))
	got, err = m.Allocate(context.Background(), wallet)
	require.NoError(t, err)
	assert.Equal(t, uint64(20), got)
}

func TestReconcileReportsConflict(t *testing.T) {
	counter := &fakeCounter{nonce: 10}
	m := NewManager(counter, testLogger())

	allocated, err := m.Allocate(context.Background(), wallet)
	require.NoError(t, err)
	require.Equal(t, uint64(10), allocated)

	// The chain overtook the in-flight allocation: external transactions
	// consumed nonce 10 and beyond.
	err = m.Reconcile(wallet, 15)
	assert.True(t, errors.Is(err, commonerrors.ErrNonceConflict))
	assert.Zero(t, m.InFlight(wallet))

	// The first allocation after a conflicting reconcile surfaces the
	// conflict so the caller resyncs instead of signing blindly.
	_, err = m.Allocate(context.Background(), wallet)
	require.ErrorIs(t, err, commonerrors.ErrNonceConflict)

	// The conflict is reported exactly once: allocation then resumes
	// from the chain floor.
	got, err := m.Allocate(context.Background(), wallet)
	require.NoError(t, err)
	assert.Equal(t, uint64(15), got)
}

func TestResyncUsesChainCounter(t *testing.T) {
	counter := &fakeCounter{nonce: 4}
	m := NewManager(counter, testLogger())

	first, err := m.Allocate(context.Background(), wallet)
	require.NoError(t, err)
	m.Confirm(wallet, first)

	counter.nonce = 42
	require.NoError(t, m.Resync(context.Background(), wallet))

	got, err := m.Allocate(context.Background(), wallet)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), got)
}

func TestReleaseRollsBackLatestAllocation(t *testing.T) {
	counter := &fakeCounter{nonce: 0}
	m := NewManager(counter, testLogger())

	first, err := m.Allocate(context.Background(), wallet)
	require.NoError(t, err)
	second, err := m.Allocate(context.Background(), wallet)
	require.NoError(t, err)

	// Releasing the most recent allocation makes it available again.
	m.Release(wallet, second)
	again, err := m.Allocate(context.Background(), wallet)
	require.NoError(t, err)
	assert.Equal(t, second, again)

	// Releasing an older nonce only retires it from the in-flight set.
	m.Release(wallet, first)
	next, err := m.Allocate(context.Background(), wallet)
	require.NoError(t, err)
	assert.Equal(t, again+1, next)
}
