package services

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ClipFinance/defi-gateway/common/types"
	"github.com/ClipFinance/defi-gateway/contracts"
	goethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// simulationRecipient is the placeholder recipient of simulated swaps.
// The simulation is a read-only call so no funds ever move to it.
var simulationRecipient = common.HexToAddress("0x0000000000000000000000000000000000000001")

// swapDeadlineSlack is how far in the future simulated swap deadlines lie.
const swapDeadlineSlack = 30 * time.Minute

var (
	oneHundred = decimal.NewFromInt(100)
	one        = decimal.NewFromInt(1)
)

// SimulateSwap quotes an exact-input single-hop swap and simulates the
// router call without moving funds.
//
// The result degrades instead of failing when the chain cooperates only
// partially: a quote that fails on every fee tier yields a conservative
// placeholder result tagged "quote_failed"; a successful quote whose
// router simulation fails yields the quote-derived amounts tagged
// "quote_only_fee_<tier>". Only invalid parameters or a failure to read
// token metadata surface as errors.
//
// Parameters:
// - ctx: the context for managing the request.
// - params: the swap parameters, validated semantically before any call.
//
// Returns:
// - types.SwapResult: the simulation outcome with its route tag.
// - error: an error for invalid parameters or failed metadata reads.
func (s *Service) SimulateSwap(ctx context.Context, params types.SwapQuoteParams) (types.SwapResult, error) {
	if err := params.Validate(); err != nil {
		return types.SwapResult{}, err
	}

	s.logger.WithFields(logrus.Fields{
		"from_token": params.FromToken.Hex(),
		"to_token":   params.ToToken.Hex(),
		"amount_in":  params.AmountIn.String(),
	}).Debug("Simulating swap")

	fromDecimals, err := s.backend.TokenDecimals(ctx, params.FromToken)
	if err != nil {
		return types.SwapResult{}, errors.Wrap(err, "failed to read input token decimals")
	}
	toDecimals, err := s.backend.TokenDecimals(ctx, params.ToToken)
	if err != nil {
		return types.SwapResult{}, errors.Wrap(err, "failed to read output token decimals")
	}

	// Re-anchor the input on the token's on-chain decimal count. The caller
	// may have built the amount from a registry hint or a default.
	amountIn, err := types.AmountFromDecimal(params.AmountIn.Human, fromDecimals)
	if err != nil {
		return types.SwapResult{}, err
	}

	tier, estimatedOutRaw, quoteErr := s.selectFeeTier(ctx, params.FromToken, params.ToToken, amountIn.Raw)
	if estimatedOutRaw == nil {
		entry := s.logger.WithFields(logrus.Fields{
			"from_token": params.FromToken.Hex(),
			"to_token":   params.ToToken.Hex(),
		})
		if quoteErr != nil {
			entry = entry.WithError(quoteErr)
		}
		entry.Warn("Swap quote failed on every fee tier, returning degraded result")

		return types.SwapResult{
			AmountIn:           amountIn,
			EstimatedAmountOut: types.ZeroAmount(toDecimals),
			MinimumAmountOut:   types.ZeroAmount(toDecimals),
			PriceImpact:        decimal.Zero,
			GasEstimate:        contracts.DefaultSwapGas,
			Route:              types.RouteQuoteFailed,
		}, nil
	}

	estimatedOut, err := types.AmountFromRaw(estimatedOutRaw, toDecimals)
	if err != nil {
		return types.SwapResult{}, err
	}
	minimumOut, err := slippageFloor(estimatedOut, params.SlippageTolerance)
	if err != nil {
		return types.SwapResult{}, err
	}

	callData, err := contracts.PackExactInputSingle(contracts.ExactInputSingleParams{
		TokenIn:           params.FromToken,
		TokenOut:          params.ToToken,
		Fee:               new(big.Int).SetUint64(uint64(tier)),
		Recipient:         simulationRecipient,
		Deadline:          big.NewInt(time.Now().Add(swapDeadlineSlack).Unix()),
		AmountIn:          amountIn.Raw,
		AmountOutMinimum:  minimumOut.Raw,
		SqrtPriceLimitX96: big.NewInt(0),
	})
	if err != nil {
		return types.SwapResult{}, err
	}

	result := types.SwapResult{
		AmountIn:           amountIn,
		EstimatedAmountOut: estimatedOut,
		MinimumAmountOut:   minimumOut,
		PriceImpact:        decimal.Zero,
		GasEstimate:        s.estimateSwapGas(ctx, callData),
	}
	if gasPrice, err := s.backend.GasPrice(ctx); err == nil {
		cost := weiToNative(new(big.Int).Mul(new(big.Int).SetUint64(result.GasEstimate), gasPrice))
		result.GasCostETH = &cost
	} else {
		s.logger.WithError(err).Debug("Gas price unavailable, omitting swap cost")
	}

	if _, err := s.backend.CallContract(ctx, s.book.UniswapV3Router, callData); err != nil {
		s.logger.WithFields(logrus.Fields{
			"from_token": params.FromToken.Hex(),
			"to_token":   params.ToToken.Hex(),
			"fee_tier":   tier,
		}).WithError(err).Warn("Swap simulation failed, returning quote-only result")

		result.Route = fmt.Sprintf("%s%d", types.RouteQuoteOnlyPrefix, tier)
		return result, nil
	}

	result.Route = fmt.Sprintf("%s%d", types.RouteAMMFeePrefix, tier)
	result.PriceImpact = s.priceImpact(ctx, params.FromToken, params.ToToken, tier, fromDecimals, amountIn, estimatedOut)

	s.logger.WithFields(logrus.Fields{
		"route":        result.Route,
		"amount_out":   estimatedOut.String(),
		"price_impact": result.PriceImpact.String(),
	}).Debug("Swap simulated")

	return result, nil
}

// estimateSwapGas estimates gas for the packed router call, falling back
// to the default swap gas when the node will not estimate it.
func (s *Service) estimateSwapGas(ctx context.Context, callData []byte) uint64 {
	router := s.book.UniswapV3Router
	gas, err := s.backend.EstimateGas(ctx, goethereum.CallMsg{To: &router, Data: callData})
	if err != nil {
		s.logger.WithError(err).Debug("Gas estimation failed, using default swap gas")
		return contracts.DefaultSwapGas
	}
	return gas
}

// priceImpact compares the effective rate of the sized trade with the rate
// the pool reports for one whole input unit. A larger trade moves the pool
// against the trader, so the effective rate should be the lower one; noise
// in the other direction clamps to zero. Reported as a percentage.
func (s *Service) priceImpact(ctx context.Context, tokenIn, tokenOut common.Address, tier uint32, fromDecimals uint8, amountIn, estimatedOut types.TokenAmount) decimal.Decimal {
	oneUnit := oneWholeUnit(fromDecimals)
	unitOut, err := s.quoteExactInput(ctx, tokenIn, tokenOut, tier, oneUnit)
	if err != nil || unitOut.Sign() == 0 {
		s.logger.WithError(err).Debug("Unit reference quote unavailable, reporting zero price impact")
		return decimal.Zero
	}

	referenceRate := decimal.NewFromBigInt(unitOut, 0).Div(decimal.NewFromBigInt(oneUnit, 0))
	effectiveRate := decimal.NewFromBigInt(estimatedOut.Raw, 0).Div(decimal.NewFromBigInt(amountIn.Raw, 0))

	impact := referenceRate.Sub(effectiveRate).Div(referenceRate).Mul(oneHundred)
	if impact.IsNegative() {
		return decimal.Zero
	}
	return impact
}

// slippageFloor applies the slippage tolerance to the estimated output and
// truncates to the token's decimal resolution, so the floor is always
// representable on chain and never above the estimate.
func slippageFloor(estimated types.TokenAmount, tolerance decimal.Decimal) (types.TokenAmount, error) {
	keep := one.Sub(tolerance.Div(oneHundred))
	floor := estimated.Human.Mul(keep).Truncate(int32(estimated.Decimals))
	return types.AmountFromDecimal(floor, estimated.Decimals)
}

// weiToNative converts a raw wei value to a native asset decimal.
func weiToNative(wei *big.Int) decimal.Decimal {
	return decimal.NewFromBigInt(wei, -int32(contracts.NativeDecimals))
}
