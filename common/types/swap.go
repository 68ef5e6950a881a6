package types

import (
	"strings"

	commonerrors "github.com/ClipFinance/defi-gateway/common/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Route tags reported in SwapResult.Route, from best to most degraded:
// a fully simulated swap, a quote without simulation, and a quote failure
// answered with conservative defaults instead of an error.
const (
	RouteAMMFeePrefix    = "amm_fee_"
	RouteQuoteOnlyPrefix = "quote_only_fee_"
	RouteQuoteFailed     = "quote_failed"
)

var maxSlippage = decimal.NewFromInt(100)

// SwapQuoteParams are the arguments of a swap simulation.
//
// Fields:
// - FromToken: the input token contract.
// - ToToken: the output token contract, must differ from FromToken.
// - AmountIn: the exact input amount.
// - SlippageTolerance: the acceptable adverse price movement as a
//   percentage in [0, 100).
type SwapQuoteParams struct {
	FromToken         common.Address
	ToToken           common.Address
	AmountIn          TokenAmount
	SlippageTolerance decimal.Decimal
}

// Validate checks the semantic invariants of the parameters. Syntax
// validation of raw inputs belongs to the transport layer.
func (p SwapQuoteParams) Validate() error {
	if p.FromToken == p.ToToken {
		return errors.Wrap(commonerrors.ErrInvalidAddress, "from_token and to_token are the same")
	}
	if !p.AmountIn.IsPositive() {
		return errors.Wrap(commonerrors.ErrInvalidAmount, "amount_in must be positive")
	}
	if p.SlippageTolerance.IsNegative() || p.SlippageTolerance.GreaterThanOrEqual(maxSlippage) {
		return errors.Wrap(commonerrors.ErrInvalidAmount, "slippage_tolerance must be in [0, 100)")
	}
	return nil
}

// SwapResult is the outcome of a swap simulation.
//
// Fields:
// - AmountIn: the input amount echoed back.
// - EstimatedAmountOut: the quoted output amount.
// - MinimumAmountOut: the slippage-adjusted floor, truncated to the output
//   token's decimal resolution. Always <= EstimatedAmountOut.
// - PriceImpact: the percentage deviation the trade size causes relative
//   to the unit-reference rate. Zero on degraded routes.
// - GasEstimate: estimated gas units for the swap call.
// - GasCostETH: GasEstimate priced at the current gas price, nil when the
//   gas price was unavailable.
// - Route: the route tag recording how much of the simulation ladder
//   completed.
type SwapResult struct {
	AmountIn           TokenAmount      `json:"amount_in"`
	EstimatedAmountOut TokenAmount      `json:"estimated_amount_out"`
	MinimumAmountOut   TokenAmount      `json:"minimum_amount_out"`
	PriceImpact        decimal.Decimal  `json:"price_impact"`
	GasEstimate        uint64           `json:"gas_estimate"`
	GasCostETH         *decimal.Decimal `json:"gas_cost_eth,omitempty"`
	Route              string           `json:"route"`
}

// Degraded reports whether the result came from a partially failed
// simulation ladder rather than a full simulation.
func (r SwapResult) Degraded() bool {
	return r.Route == RouteQuoteFailed || strings.HasPrefix(r.Route, RouteQuoteOnlyPrefix)
}
