package errors

import (
	"context"
	"strings"

	"github.com/pkg/errors"
)

// kinds lists every domain error that is allowed to cross the service
// boundary. Order matters: the first match wins in Kind.
var kinds = []error{
	ErrInvalidAmount,
	ErrInvalidAddress,
	ErrInvalidConfig,
	ErrCircuitOpen,
	ErrThrottleTimeout,
	ErrUpstreamTimeout,
	ErrAllEndpointsExhausted,
	ErrNonceConflict,
	ErrNoLiquidityRoute,
	ErrContractCallReverted,
	ErrTokenNotFound,
	ErrNoHealthyEndpoint,
	ErrDatabaseConnect,
}

var connectivityMarkers = []string{
	"connection refused",
	"connection reset",
	"no such host",
	"network is unreachable",
	"broken pipe",
	"i/o timeout",
	"eof",
	"502 bad gateway",
	"503 service unavailable",
	"dial tcp",
	"websocket: close",
}

var revertMarkers = []string{
	"execution reverted",
	"revert",
	"invalid opcode",
	"out of gas",
}

// Kind returns the domain error an arbitrary error wraps, or nil when the
// error carries no classified kind.
func Kind(err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// IsConnectivity reports whether the error indicates the upstream endpoint
// itself is unreachable or unresponsive, which makes the call eligible for
// endpoint failover. Circuit-open and revert errors are never connectivity
// failures.
func IsConnectivity(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrCircuitOpen) || errors.Is(err, ErrContractCallReverted) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrUpstreamTimeout) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range connectivityMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// IsRetryable reports whether a failed upstream call may be retried against
// the same endpoint. Reverts and domain validation errors are permanent.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if IsRevert(err) {
		return false
	}
	if kind := Kind(err); kind != nil && kind != ErrUpstreamTimeout {
		return false
	}
	if IsConnectivity(err) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "timed out") ||
		strings.Contains(msg, "deadline exceeded") ||
		strings.Contains(msg, "too many requests") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "temporarily unavailable")
}

// IsRevert reports whether the error is an application-level contract revert.
func IsRevert(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrContractCallReverted) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range revertMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// Classify maps a raw upstream error onto the domain taxonomy. Errors that
// already carry a domain kind pass through unchanged; raw detail is expected
// to be logged by the caller before the classified error replaces it.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if Kind(err) != nil {
		return err
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrUpstreamTimeout
	}
	if IsRevert(err) {
		if reason := revertReason(err); reason != "" {
			return errors.Wrap(ErrContractCallReverted, reason)
		}
		return ErrContractCallReverted
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "timed out") {
		return ErrUpstreamTimeout
	}
	return err
}

// SafeMessage returns the human-readable summary allowed to cross the
// process boundary. Upstream detail never leaks: unclassified errors are
// reported with a generic message.
func SafeMessage(err error) string {
	if err == nil {
		return ""
	}
	if kind := Kind(err); kind != nil {
		if kind == ErrContractCallReverted {
			return err.Error()
		}
		return kind.Error()
	}
	return "internal error"
}

// RetrySuggested reports whether the condition behind a classified error
// is transient enough that the caller may retry the same request later.
func RetrySuggested(err error) bool {
	switch Kind(err) {
	case ErrCircuitOpen, ErrThrottleTimeout, ErrUpstreamTimeout,
		ErrAllEndpointsExhausted, ErrNonceConflict, ErrNoHealthyEndpoint:
		return true
	}
	return false
}

// revertReason extracts the revert reason string when the node reported one.
func revertReason(err error) string {
	msg := err.Error()
	const prefix = "execution reverted"
	idx := strings.Index(strings.ToLower(msg), prefix)
	if idx < 0 {
		return ""
	}
	reason := strings.TrimLeft(msg[idx+len(prefix):], ": ")
	return strings.TrimSpace(reason)
}
