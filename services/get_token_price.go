package services

import (
	"context"
	"fmt"

	commonerrors "github.com/ClipFinance/defi-gateway/common/errors"
	"github.com/ClipFinance/defi-gateway/common/types"
	"github.com/ClipFinance/defi-gateway/contracts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// GetTokenPrice resolves a token's price in the native asset and, when the
// oracle feed answers, in USD.
//
// The wrapped native token is priced 1:1 without touching the AMM. Any
// other token is quoted against the wrapped native token for exactly one
// whole unit, trying fee tiers in preference order until one returns a
// usable quote. An unavailable oracle leaves the USD price nil instead of
// failing the call.
//
// Parameters:
// - ctx: the context for managing the request.
// - token: the token contract address to price.
//
// Returns:
// - types.TokenPrice: the resolved price with its source tag.
// - error: an error if a required read fails or no fee tier has liquidity.
func (s *Service) GetTokenPrice(ctx context.Context, token common.Address) (types.TokenPrice, error) {
	s.logger.WithField("token", token.Hex()).Debug("Getting token price")

	usdPrice := s.nativeUSDPrice(ctx)

	if s.book.IsWrappedNative(token) {
		return types.TokenPrice{
			TokenAddress: token,
			PriceETH:     decimal.NewFromInt(1),
			PriceUSD:     usdPrice,
			Source:       types.PriceSourceDirectNative,
		}, nil
	}

	decimals, err := s.backend.TokenDecimals(ctx, token)
	if err != nil {
		return types.TokenPrice{}, errors.Wrap(err, "failed to read token decimals")
	}

	tier, quotedWei, err := s.selectFeeTier(ctx, token, s.book.WETH, oneWholeUnit(decimals))
	if err != nil {
		return types.TokenPrice{}, errors.Wrap(err, "failed to quote token against wrapped native")
	}
	if quotedWei == nil {
		return types.TokenPrice{}, errors.Wrapf(commonerrors.ErrNoLiquidityRoute, "token %s", token.Hex())
	}

	priceETH := decimal.NewFromBigInt(quotedWei, -int32(contracts.NativeDecimals))
	price := types.TokenPrice{
		TokenAddress: token,
		PriceETH:     priceETH,
		Source:       fmt.Sprintf("%s%d", types.PriceSourceAMMFeePrefix, tier),
	}
	if usdPrice != nil {
		usd := priceETH.Mul(*usdPrice)
		price.PriceUSD = &usd
	}

	s.logger.WithFields(logrus.Fields{
		"token":     token.Hex(),
		"price_eth": priceETH.String(),
		"source":    price.Source,
	}).Debug("Resolved token price")

	return price, nil
}

// nativeUSDPrice reads the native/USD oracle feed. Failures are logged and
// reported as nil so price queries degrade instead of failing.
func (s *Service) nativeUSDPrice(ctx context.Context) *decimal.Decimal {
	price, err := s.fetchNativeUSDPrice(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("Native USD price unavailable")
		return nil
	}
	return &price
}

func (s *Service) fetchNativeUSDPrice(ctx context.Context) (decimal.Decimal, error) {
	if !s.book.HasPriceFeed() {
		return decimal.Zero, errors.New("no native USD price feed configured")
	}

	data, err := contracts.PackLatestRoundData()
	if err != nil {
		return decimal.Zero, err
	}
	output, err := s.backend.CallContract(ctx, s.book.ChainlinkETHUSDFeed, data)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "failed to read price feed round")
	}
	round, err := contracts.UnpackLatestRoundData(output)
	if err != nil {
		return decimal.Zero, err
	}
	if round.Answer.Sign() <= 0 {
		return decimal.Zero, errors.New("price feed returned a non-positive answer")
	}

	data, err = contracts.PackAggregatorDecimals()
	if err != nil {
		return decimal.Zero, err
	}
	output, err = s.backend.CallContract(ctx, s.book.ChainlinkETHUSDFeed, data)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "failed to read price feed decimals")
	}
	feedDecimals, err := contracts.UnpackAggregatorDecimals(output)
	if err != nil {
		return decimal.Zero, err
	}

	return decimal.NewFromBigInt(round.Answer, -int32(feedDecimals)), nil
}
