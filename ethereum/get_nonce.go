package ethereum

import (
	"context"

	commonerrors "github.com/ClipFinance/defi-gateway/common/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// PendingNonceAt returns the chain-observed pending transaction count for
// an address. This is the seed source for the local nonce manager.
func (p *Provider) PendingNonceAt(ctx context.Context, address common.Address) (uint64, error) {
	var pending uint64
	err := p.execute(ctx, "pending_nonce", func(ctx context.Context, client rpcBackend) error {
		count, err := client.PendingNonceAt(ctx, address)
		if err != nil {
			return err
		}
		pending = count
		return nil
	})
	if err != nil {
		return 0, errors.Wrap(err, "failed to get pending nonce")
	}
	return pending, nil
}

// NextNonce allocates the next nonce for the gateway wallet address. The
// first allocation seeds the counter from the chain's pending nonce; later
// allocations increment locally without a network call. When the counter
// was invalidated by externally submitted transactions, the provider
// resyncs against the chain once and allocates from the new floor.
func (p *Provider) NextNonce(ctx context.Context) (uint64, error) {
	address := p.signer.Address()

	allocated, err := p.nonces.Allocate(ctx, address)
	if err == nil {
		return allocated, nil
	}
	if !errors.Is(err, commonerrors.ErrNonceConflict) {
		return 0, err
	}

	p.logger.WithField("address", address.Hex()).
		Warn("Nonce counter invalidated, resyncing from chain")
	if resyncErr := p.nonces.Resync(ctx, address); resyncErr != nil &&
		!errors.Is(resyncErr, commonerrors.ErrNonceConflict) {
		return 0, resyncErr
	}
	return p.nonces.Allocate(ctx, address)
}

// ConfirmNonce marks a previously allocated wallet nonce as landed on
// chain.
func (p *Provider) ConfirmNonce(nonce uint64) {
	p.nonces.Confirm(p.signer.Address(), nonce)
}

// ReleaseNonce returns an allocated wallet nonce that was never broadcast.
func (p *Provider) ReleaseNonce(nonce uint64) {
	p.nonces.Release(p.signer.Address(), nonce)
}

// ResyncNonces reconciles the local wallet nonce counter against chain
// state. It returns ErrNonceConflict when outstanding allocations were
// invalidated by externally submitted transactions.
func (p *Provider) ResyncNonces(ctx context.Context) error {
	return p.nonces.Resync(ctx, p.signer.Address())
}
