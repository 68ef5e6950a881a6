// Package nonce allocates transaction nonces per wallet address. Counters
// live in memory for the process lifetime and are seeded lazily from the
// chain-observed pending transaction count.
package nonce

import (
	"context"
	"sync"

	commonerrors "github.com/ClipFinance/defi-gateway/common/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// TransactionCounter reports the chain-observed pending transaction count
// for an address. Implemented by the provider's current endpoint client.
type TransactionCounter interface {
	PendingNonceAt(ctx context.Context, address common.Address) (uint64, error)
}

// record tracks nonce state for a single address. Each record has its own
// mutex so that a slow seed fetch for one address never blocks allocation
// for another.
type record struct {
	mu       sync.Mutex
	seeded   bool
	next     uint64
	inFlight map[uint64]struct{}

	// conflicted is set when reconciliation invalidated in-flight
	// allocations and cleared once an allocator has seen the conflict.
	conflicted bool
}

// Manager hands out strictly sequential nonces per address.
//
// Allocation is an atomic increment-and-read: the same nonce is never
// returned twice for the same address while the manager is alive, even
// under concurrent callers. Reconciliation only ever advances the local
// counter; it never decrements.
type Manager struct {
	counter TransactionCounter
	logger  *logrus.Logger

	mu      sync.Mutex
	records map[common.Address]*record
}

// NewManager creates a nonce manager backed by the given chain counter.
func NewManager(counter TransactionCounter, logger *logrus.Logger) *Manager {
	return &Manager{
		counter: counter,
		logger:  logger,
		records: make(map[common.Address]*record),
	}
}

// Allocate returns the next nonce for the address, seeding the counter
// from the chain on first use.
//
// Parameters:
// - ctx: the context for managing the seed request.
// - address: the wallet address to allocate for.
//
// Returns:
// - uint64: the allocated nonce.
// - error: an error if seeding from the chain fails, or ErrNonceConflict
//   once after reconciliation invalidated outstanding allocations.
func (m *Manager) Allocate(ctx context.Context, address common.Address) (uint64, error) {
	rec := m.recordFor(address)

	rec.mu.Lock()
	defer rec.mu.Unlock()

	if rec.conflicted {
		rec.conflicted = false
		return 0, errors.Wrap(commonerrors.ErrNonceConflict,
			"counter advanced past in-flight allocations, resync before allocating")
	}

	if !rec.seeded {
		chainNonce, err := m.counter.PendingNonceAt(ctx, address)
		if err != nil {
			return 0, errors.Wrap(err, "failed to seed nonce from chain")
		}
		rec.next = chainNonce
		rec.seeded = true
		m.logger.WithFields(logrus.Fields{
			"address": address.Hex(),
			"nonce":   chainNonce,
		}).Debug("seeded nonce counter from chain")
	}

	allocated := rec.next
	rec.next++
	rec.inFlight[allocated] = struct{}{}
	return allocated, nil
}

// Reconcile folds a chain-observed nonce into the local counter. The
// counter only moves forward: when the chain is ahead, external
// transactions were observed, the counter jumps to match and any in-flight
// allocation below the new floor is reported as a conflict for the caller
// to retry.
//
// Parameters:
// - address: the wallet address to reconcile.
// - chainNonce: the chain-observed pending transaction count.
//
// Returns:
// - error: ErrNonceConflict if outstanding allocations were invalidated.
func (m *Manager) Reconcile(address common.Address, chainNonce uint64) error {
	rec := m.recordFor(address)

	rec.mu.Lock()
	defer rec.mu.Unlock()

	if !rec.seeded {
		rec.next = chainNonce
		rec.seeded = true
		return nil
	}
	if chainNonce <= rec.next {
		return nil
	}

	var conflicted int
	for n := range rec.inFlight {
		if n < chainNonce {
			delete(rec.inFlight, n)
			conflicted++
		}
	}
	m.logger.WithFields(logrus.Fields{
		"address":     address.Hex(),
		"local_next":  rec.next,
		"chain_nonce": chainNonce,
		"conflicted":  conflicted,
	}).Warn("advanced nonce counter to chain state")
	rec.next = chainNonce

	if conflicted > 0 {
		rec.conflicted = true
		return errors.Wrapf(commonerrors.ErrNonceConflict,
			"%d in-flight allocations overtaken by chain", conflicted)
	}
	return nil
}

// Resync refetches the chain nonce and reconciles against it.
func (m *Manager) Resync(ctx context.Context, address common.Address) error {
	chainNonce, err := m.counter.PendingNonceAt(ctx, address)
	if err != nil {
		return errors.Wrap(err, "failed to fetch chain nonce")
	}
	return m.Reconcile(address, chainNonce)
}

// Confirm retires an in-flight nonce whose transaction was included.
func (m *Manager) Confirm(address common.Address, nonce uint64) {
	rec := m.recordFor(address)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	delete(rec.inFlight, nonce)
}

// Release returns an allocated nonce that was never used. Releasing the
// most recent allocation rolls the counter back so the sequence stays
// gapless; releasing an older nonce only drops it from the in-flight set.
func (m *Manager) Release(address common.Address, nonce uint64) {
	rec := m.recordFor(address)
	rec.mu.Lock()
	defer rec.mu.Unlock()

	delete(rec.inFlight, nonce)
	if nonce+1 == rec.next {
		rec.next = nonce
	}
}

// InFlight returns the number of allocated-but-unconfirmed nonces.
func (m *Manager) InFlight(address common.Address) int {
	rec := m.recordFor(address)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return len(rec.inFlight)
}

// recordFor returns the record for an address, creating it on first use.
func (m *Manager) recordFor(address common.Address) *record {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[address]
	if !ok {
		rec = &record{inFlight: make(map[uint64]struct{})}
		m.records[address] = rec
	}
	return rec
}
