package services

import (
	"context"
	"math/big"

	commonerrors "github.com/ClipFinance/defi-gateway/common/errors"
	"github.com/ClipFinance/defi-gateway/contracts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// quoteExactInput asks the quoter for the output of a single-hop
// exact-input swap at one fee tier.
func (s *Service) quoteExactInput(ctx context.Context, tokenIn, tokenOut common.Address, fee uint32, amountIn *big.Int) (*big.Int, error) {
	data, err := contracts.PackQuoteExactInputSingle(tokenIn, tokenOut, fee, amountIn)
	if err != nil {
		return nil, err
	}

	output, err := s.backend.CallContract(ctx, s.book.UniswapV3Quoter, data)
	if err != nil {
		return nil, err
	}
	return contracts.UnpackQuoteExactInputSingle(output)
}

// selectFeeTier walks the fee tiers in preference order quoting the given
// input size and returns the first tier with a usable quote together with
// the quoted output. A pool that reverts or quotes zero output is treated
// as having no liquidity for the pair; a nil output with a nil error means
// no tier quoted. An infrastructure failure says nothing about liquidity
// and surfaces as an error instead of exhausting the tiers.
func (s *Service) selectFeeTier(ctx context.Context, tokenIn, tokenOut common.Address, amountIn *big.Int) (uint32, *big.Int, error) {
	for _, tier := range contracts.FeeTiers() {
		quoted, err := s.quoteExactInput(ctx, tokenIn, tokenOut, tier, amountIn)
		if err != nil {
			if infrastructureFailure(err) {
				return 0, nil, err
			}
			s.logger.WithFields(logrus.Fields{
				"token_in":  tokenIn.Hex(),
				"token_out": tokenOut.Hex(),
				"fee_tier":  tier,
			}).WithError(err).Debug("Fee tier did not quote")
			continue
		}
		if quoted.Sign() == 0 {
			continue
		}
		return tier, quoted, nil
	}
	return 0, nil, nil
}

// infrastructureFailure reports errors caused by the RPC layer rather than
// by the pool being quoted.
func infrastructureFailure(err error) bool {
	switch {
	case errors.Is(err, commonerrors.ErrAllEndpointsExhausted),
		errors.Is(err, commonerrors.ErrCircuitOpen),
		errors.Is(err, commonerrors.ErrThrottleTimeout),
		errors.Is(err, commonerrors.ErrUpstreamTimeout),
		errors.Is(err, commonerrors.ErrNoHealthyEndpoint):
		return true
	}
	return commonerrors.IsConnectivity(err)
}

// oneWholeUnit returns 10^decimals, the raw representation of exactly one
// token.
func oneWholeUnit(decimals uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
}
