// Package connectionmonitor periodically probes the upstream connection
// and fails over to the next endpoint when the active one stays
// unreachable.
package connectionmonitor

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// defaultProbeInterval defines the interval between connection probes.
	defaultProbeInterval = 30 * time.Second
	// defaultMaxFailures defines how many consecutive probe failures
	// trigger a failover.
	defaultMaxFailures = 3
)

// Monitor represents the connection state monitoring interface.
type Monitor interface {
	// Start starts connection monitoring.
	Start(ctx context.Context) error
	// Stop stops connection monitoring.
	Stop()
}

// Client represents the provider surface the monitor drives.
type Client interface {
	// CheckConnection checks if the active endpoint answers.
	CheckConnection(ctx context.Context) error
	// Failover switches to the next endpoint.
	Failover(ctx context.Context) error
}

type connectionMonitor struct {
	client      Client
	logger      *logrus.Logger
	label       string
	interval    time.Duration
	maxFailures int

	monitorMutex sync.Mutex
	stopChan     chan struct{}
	isMonitoring bool
}

// NewConnectionMonitor creates a new connection monitor instance.
//
// Parameters:
// - client: the provider to probe and fail over.
// - logger: the logger for logging purposes.
// - label: the name of the monitored connection, used in log fields.
//
// Returns:
// - Monitor: the new connection monitor instance.
func NewConnectionMonitor(client Client, logger *logrus.Logger, label string) Monitor {
	return &connectionMonitor{
		client:      client,
		logger:      logger,
		label:       label,
		interval:    defaultProbeInterval,
		maxFailures: defaultMaxFailures,
	}
}

// Start starts connection monitoring.
//
// Parameters:
// - ctx: the context for managing the monitoring goroutine.
//
// Returns:
// - error: an error if the connection monitor is already running.
func (m *connectionMonitor) Start(ctx context.Context) error {
	m.monitorMutex.Lock()
	defer m.monitorMutex.Unlock()

	if m.isMonitoring {
		return errors.Errorf("connection monitor is already running for %s", m.label)
	}
	m.stopChan = make(chan struct{})
	m.isMonitoring = true

	go m.monitorConnection(ctx, m.stopChan)
	return nil
}

// Stop stops connection monitoring.
func (m *connectionMonitor) Stop() {
	m.monitorMutex.Lock()
	defer m.monitorMutex.Unlock()

	if !m.isMonitoring {
		return
	}

	close(m.stopChan)
	m.isMonitoring = false
}

// monitorConnection probes the connection on every tick and fails over
// once the failure budget is spent.
func (m *connectionMonitor) monitorConnection(ctx context.Context, stop <-chan struct{}) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	failures := 0
	for {
		select {
		case <-ctx.Done():
			m.logger.WithField("connection", m.label).Info("Connection monitoring stopped due to context cancellation")
			return

		case <-stop:
			m.logger.WithField("connection", m.label).Info("Connection monitoring stopped")
			return

		case <-ticker.C:
			failures = m.probe(ctx, failures)
		}
	}
}

// probe runs one connection check and returns the updated count of
// consecutive failures. Reaching the failure budget triggers a failover
// and resets the count so the next endpoint gets a fresh window.
func (m *connectionMonitor) probe(ctx context.Context, failures int) int {
	if err := m.client.CheckConnection(ctx); err != nil {
		failures++
		m.logger.WithFields(logrus.Fields{
			"connection": m.label,
			"failures":   failures,
			"budget":     m.maxFailures,
		}).WithError(err).Warn("Connection probe failed")

		if failures < m.maxFailures {
			return failures
		}

		if err := m.client.Failover(ctx); err != nil {
			m.logger.WithFields(logrus.Fields{
				"connection": m.label,
				"error":      err,
			}).Error("Failover failed")
		} else {
			m.logger.WithField("connection", m.label).Info("Failed over to next endpoint")
		}
		return 0
	}

	if failures > 0 {
		m.logger.WithFields(logrus.Fields{
			"connection": m.label,
			"failures":   failures,
		}).Info("Connection recovered")
	}
	return 0
}
