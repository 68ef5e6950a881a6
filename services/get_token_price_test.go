package services

import (
	"context"
	"math/big"
	"testing"

	commonerrors "github.com/ClipFinance/defi-gateway/common/errors"
	"github.com/ClipFinance/defi-gateway/common/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// healthyFeed scripts the oracle at 2500 USD with 8 feed decimals.
func healthyFeed() *contractScript {
	return &contractScript{
		feedAnswer:   big.NewInt(250000000000),
		feedDecimals: 8,
	}
}

func priceService(script *contractScript) *Service {
	backend := &fakeBackend{
		callContractFn:  script.callContract,
		tokenDecimalsFn: pairDecimals,
	}
	return New(backend, book, quietLogger())
}

func TestGetTokenPriceWrappedNativeIsDirect(t *testing.T) {
	script := healthyFeed()
	svc := priceService(script)

	price, err := svc.GetTokenPrice(context.Background(), book.WETH)
	require.NoError(t, err)

	assert.Equal(t, types.PriceSourceDirectNative, price.Source)
	assert.True(t, price.PriceETH.Equal(decimal.NewFromInt(1)), "native price must be exactly 1, got %s", price.PriceETH)
	require.NotNil(t, price.PriceUSD)
	assert.Equal(t, "2500", price.PriceUSD.String())
	assert.Empty(t, script.quotedFees, "pricing the wrapped native token must not touch the AMM")
}

func TestGetTokenPriceWrappedNativeSurvivesDeadAMM(t *testing.T) {
	script := &contractScript{feedErr: errors.New("feed down")}
	svc := priceService(script)

	price, err := svc.GetTokenPrice(context.Background(), book.WETH)
	require.NoError(t, err)

	assert.True(t, price.PriceETH.Equal(decimal.NewFromInt(1)))
	assert.Nil(t, price.PriceUSD)
	assert.Equal(t, types.PriceSourceDirectNative, price.Source)
}

func TestGetTokenPriceWalksFeeTiers(t *testing.T) {
	script := healthyFeed()
	script.quoteFn = func(fee uint32, amountIn *big.Int) (*big.Int, error) {
		if fee == 500 {
			return nil, errors.New("execution reverted")
		}
		// 0.0004 WETH per USDC.
		return big.NewInt(400000000000000), nil
	}
	svc := priceService(script)

	price, err := svc.GetTokenPrice(context.Background(), book.USDC)
	require.NoError(t, err)

	assert.Equal(t, "amm_fee_3000", price.Source)
	assert.Equal(t, "0.0004", price.PriceETH.String())
	require.NotNil(t, price.PriceUSD)
	assert.Equal(t, "1", price.PriceUSD.String())

	assert.Equal(t, []uint32{500, 3000}, script.quotedFees)
	require.Len(t, script.quotedSizes, 2)
	assert.Equal(t, "1000000", script.quotedSizes[0].String(), "reference size must be one whole token unit")
}

func TestGetTokenPriceSkipsZeroQuote(t *testing.T) {
	script := healthyFeed()
	script.quoteFn = func(fee uint32, amountIn *big.Int) (*big.Int, error) {
		if fee == 500 {
			return big.NewInt(0), nil
		}
		return big.NewInt(400000000000000), nil
	}
	svc := priceService(script)

	price, err := svc.GetTokenPrice(context.Background(), book.USDC)
	require.NoError(t, err)

	assert.Equal(t, "amm_fee_3000", price.Source)
	assert.Equal(t, []uint32{500, 3000}, script.quotedFees)
}

func TestGetTokenPriceNoLiquidityRoute(t *testing.T) {
	script := healthyFeed()
	svc := priceService(script)

	_, err := svc.GetTokenPrice(context.Background(), book.USDC)
	assert.ErrorIs(t, err, commonerrors.ErrNoLiquidityRoute)
	assert.Equal(t, []uint32{500, 3000, 10000}, script.quotedFees, "every fee tier must be tried before giving up")
}

func TestGetTokenPriceSurfacesRPCOutage(t *testing.T) {
	script := healthyFeed()
	script.quoteFn = func(fee uint32, amountIn *big.Int) (*big.Int, error) {
		return nil, errors.Wrap(commonerrors.ErrAllEndpointsExhausted,
			"eth_call: last error: dial tcp 10.0.0.5:8545: connect: connection refused")
	}
	svc := priceService(script)

	// A full RPC outage says nothing about the pair's liquidity.
	_, err := svc.GetTokenPrice(context.Background(), book.USDC)
	require.ErrorIs(t, err, commonerrors.ErrAllEndpointsExhausted)
	assert.NotErrorIs(t, err, commonerrors.ErrNoLiquidityRoute)
	assert.Equal(t, []uint32{500}, script.quotedFees, "an outage must short-circuit the tier walk")
}

func TestGetTokenPriceOracleDownLeavesUSDNil(t *testing.T) {
	script := &contractScript{feedErr: errors.New("feed down")}
	script.quoteFn = func(fee uint32, amountIn *big.Int) (*big.Int, error) {
		return big.NewInt(400000000000000), nil
	}
	svc := priceService(script)

	price, err := svc.GetTokenPrice(context.Background(), book.USDC)
	require.NoError(t, err)

	assert.Equal(t, "amm_fee_500", price.Source)
	assert.Equal(t, "0.0004", price.PriceETH.String())
	assert.Nil(t, price.PriceUSD)
}

func TestGetTokenPriceRejectsNonPositiveOracleAnswer(t *testing.T) {
	script := healthyFeed()
	script.feedAnswer = big.NewInt(-1)
	script.quoteFn = func(fee uint32, amountIn *big.Int) (*big.Int, error) {
		return big.NewInt(400000000000000), nil
	}
	svc := priceService(script)

	price, err := svc.GetTokenPrice(context.Background(), book.USDC)
	require.NoError(t, err)

	assert.Nil(t, price.PriceUSD, "a non-positive oracle answer must never become a USD price")
	assert.Equal(t, "0.0004", price.PriceETH.String())
}

func TestGetTokenPriceDecimalsReadFailure(t *testing.T) {
	script := healthyFeed()
	backend := &fakeBackend{
		callContractFn: script.callContract,
		tokenDecimalsFn: func(ctx context.Context, token common.Address) (uint8, error) {
			return 0, errors.Wrap(commonerrors.ErrContractCallReverted, "decimals")
		},
	}
	svc := New(backend, book, quietLogger())

	_, err := svc.GetTokenPrice(context.Background(), book.USDC)
	assert.ErrorIs(t, err, commonerrors.ErrContractCallReverted)
	assert.Empty(t, script.quotedFees)
}
