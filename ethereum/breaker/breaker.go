// Package breaker implements a per-endpoint circuit breaker. Each upstream
// RPC endpoint owns one Breaker instance; the provider routes every call
// through the breaker of the endpoint it targets.
package breaker

import (
	"context"
	"sync"
	"time"

	commonerrors "github.com/ClipFinance/defi-gateway/common/errors"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// State represents the breaker state.
type State int

const (
	// StateClosed admits all calls and counts consecutive failures.
	StateClosed State = iota
	// StateOpen rejects all calls until the cooldown elapses.
	StateOpen
	// StateHalfOpen admits a single trial call at a time.
	StateHalfOpen
)

// String converts State to its string representation.
func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}

const (
	defaultFailureThreshold = 5
	defaultSuccessThreshold = 1
	defaultCooldown         = 30 * time.Second
)

// Config holds the breaker tuning parameters.
//
// Fields:
// - FailureThreshold: consecutive failures in Closed that open the breaker.
// - SuccessThreshold: consecutive trial successes in HalfOpen that close it.
// - Cooldown: base duration an open breaker rejects calls.
// - MaxCooldown: upper bound for the grown cooldown, defaults to 4x Cooldown.
// - IgnoreFailure: reports errors that say nothing bad about the endpoint,
//   such as contract reverts, which count as successful round trips. Nil
//   means every error counts as a failure.
type Config struct {
	FailureThreshold int
	SuccessThreshold int
	Cooldown         time.Duration
	MaxCooldown      time.Duration
	IgnoreFailure    func(error) bool
}

func (c Config) withDefaults() Config {
	if c.FailureThreshold <= 0 {
		c.FailureThreshold = defaultFailureThreshold
	}
	if c.SuccessThreshold <= 0 {
		c.SuccessThreshold = defaultSuccessThreshold
	}
	if c.Cooldown <= 0 {
		c.Cooldown = defaultCooldown
	}
	if c.MaxCooldown <= 0 {
		c.MaxCooldown = 4 * c.Cooldown
	}
	return c
}

// Breaker is a circuit breaker guarding a single upstream endpoint.
//
// State transitions are atomic with respect to concurrent callers: the
// mutex covers admission and result recording, and at most one HalfOpen
// trial call is outstanding at any moment. The cooldown doubles on every
// reopen from HalfOpen, capped at MaxCooldown, and resets to the base
// cooldown once the breaker closes.
type Breaker struct {
	name   string
	config Config
	logger *logrus.Logger
	now    func() time.Time

	mu            sync.Mutex
	state         State
	failures      int
	successes     int
	openedAt      time.Time
	cooldown      time.Duration
	trialInFlight bool
}

// New creates a circuit breaker for the named endpoint.
func New(name string, config Config, logger *logrus.Logger) *Breaker {
	config = config.withDefaults()
	return &Breaker{
		name:     name,
		config:   config,
		logger:   logger,
		now:      time.Now,
		state:    StateClosed,
		cooldown: config.Cooldown,
	}
}

// Do runs op through the breaker. When the breaker is open and the cooldown
// has not elapsed, Do fails fast with ErrCircuitOpen without invoking op.
// A second caller arriving while a HalfOpen trial is in flight also fails
// fast so that exactly one trial probes the endpoint at a time.
func (b *Breaker) Do(ctx context.Context, op func() error) error {
	trial, err := b.allow()
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		// The caller gave up before the call started. A cancelled call says
		// nothing about endpoint health, so the trial slot is returned
		// without recording an outcome.
		b.abandon(trial)
		return err
	}

	opErr := op()
	b.record(opErr, trial)
	return opErr
}

// State returns the current breaker state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// allow decides whether a call may proceed and whether it is the HalfOpen
// trial. The Open to HalfOpen transition happens here, on the first call
// admitted after the cooldown.
func (b *Breaker) allow() (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return false, nil

	case StateOpen:
		if b.now().Sub(b.openedAt) < b.cooldown {
			return false, errors.Wrapf(commonerrors.ErrCircuitOpen, "endpoint %s", b.name)
		}
		b.state = StateHalfOpen
		b.trialInFlight = true
		b.logFields().Debug("circuit breaker admitting trial call")
		return true, nil

	default: // StateHalfOpen
		if b.trialInFlight {
			return false, errors.Wrapf(commonerrors.ErrCircuitOpen, "endpoint %s trial in flight", b.name)
		}
		b.trialInFlight = true
		return true, nil
	}
}

// record applies the outcome of an admitted call.
func (b *Breaker) record(opErr error, trial bool) {
	failed := opErr != nil
	if failed && b.config.IgnoreFailure != nil && b.config.IgnoreFailure(opErr) {
		// The endpoint answered authoritatively; the call failing is not
		// the endpoint's fault.
		failed = false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if trial {
		b.trialInFlight = false
		if failed {
			b.reopenLocked()
			return
		}
		b.successes++
		if b.successes >= b.config.SuccessThreshold {
			b.closeLocked()
		}
		return
	}

	if b.state != StateClosed {
		// A late result from a call admitted before the breaker opened.
		return
	}
	if failed {
		b.failures++
		if b.failures >= b.config.FailureThreshold {
			b.openLocked()
		}
		return
	}
	b.failures = 0
}

// abandon returns a trial slot without recording an outcome.
func (b *Breaker) abandon(trial bool) {
	if !trial {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.trialInFlight = false
}

func (b *Breaker) openLocked() {
	b.state = StateOpen
	b.openedAt = b.now()
	b.cooldown = b.config.Cooldown
	b.successes = 0
	b.logFields().Warn("circuit breaker opened")
}

func (b *Breaker) reopenLocked() {
	b.state = StateOpen
	b.openedAt = b.now()
	b.cooldown = 2 * b.cooldown
	if b.cooldown > b.config.MaxCooldown {
		b.cooldown = b.config.MaxCooldown
	}
	b.successes = 0
	b.logFields().Warn("circuit breaker reopened after failed trial")
}

func (b *Breaker) closeLocked() {
	b.state = StateClosed
	b.failures = 0
	b.successes = 0
	b.cooldown = b.config.Cooldown
	b.logFields().Info("circuit breaker closed")
}

func (b *Breaker) logFields() *logrus.Entry {
	return b.logger.WithFields(logrus.Fields{
		"endpoint": b.name,
		"state":    b.state.String(),
		"cooldown": b.cooldown.String(),
	})
}
