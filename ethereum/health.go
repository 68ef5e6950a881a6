package ethereum

import (
	"context"

	"github.com/pkg/errors"
)

// HealthCheck verifies the active endpoint answers a trivial query. It
// flows through the normal pipeline, so a check against a tripped endpoint
// fails fast with ErrCircuitOpen and repeated failures rotate the ring.
func (p *Provider) HealthCheck(ctx context.Context) error {
	err := p.execute(ctx, "health_check", func(ctx context.Context, client rpcBackend) error {
		_, err := client.BlockNumber(ctx)
		return err
	})
	if err != nil {
		return errors.Wrap(err, "health check failed")
	}
	return nil
}
