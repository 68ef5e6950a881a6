package ethereum

import (
	"context"

	commonerrors "github.com/ClipFinance/defi-gateway/common/errors"
	"github.com/cenkalti/backoff/v5"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// callWithRetries runs one upstream call against a single endpoint,
// retrying transient failures with exponential backoff. Every attempt gets
// its own request timeout; the caller's context bounds the whole sequence.
// The returned error is already classified.
func (p *Provider) callWithRetries(
	ctx context.Context,
	label string,
	ep *endpoint,
	call func(ctx context.Context, client rpcBackend) error,
) error {
	attempt := 0
	operation := func() (struct{}, error) {
		attempt++

		client := ep.backend()
		if client == nil {
			return struct{}{}, backoff.Permanent(
				errors.Wrapf(commonerrors.ErrNoHealthyEndpoint, "endpoint %s never dialed", ep.label))
		}

		attemptCtx, cancel := context.WithTimeout(ctx, p.config.RequestTimeout)
		err := call(attemptCtx, client)
		cancel()

		if err == nil {
			return struct{}{}, nil
		}

		classified := commonerrors.Classify(err)
		if !commonerrors.IsRetryable(classified) {
			return struct{}{}, backoff.Permanent(classified)
		}

		p.logger.WithFields(logrus.Fields{
			"operation": label,
			"endpoint":  ep.label,
			"attempt":   attempt,
		}).WithError(err).Warn("Upstream call failed, retrying")
		return struct{}{}, classified
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = p.config.RetryBaseDelay

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(expo),
		backoff.WithMaxTries(p.config.RetryAttempts),
	)
	return err
}
