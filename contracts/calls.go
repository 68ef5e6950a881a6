package contracts

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// RoundData is the decoded result of a Chainlink latestRoundData call.
type RoundData struct {
	RoundID         *big.Int
	Answer          *big.Int
	StartedAt       *big.Int
	UpdatedAt       *big.Int
	AnsweredInRound *big.Int
}

// ExactInputSingleParams mirrors the router swap tuple. Field names must
// match the ABI component names for packing to work.
type ExactInputSingleParams struct {
	TokenIn           common.Address
	TokenOut          common.Address
	Fee               *big.Int
	Recipient         common.Address
	Deadline          *big.Int
	AmountIn          *big.Int
	AmountOutMinimum  *big.Int
	SqrtPriceLimitX96 *big.Int
}

// PackBalanceOf encodes an ERC20 balanceOf call for the given holder.
func PackBalanceOf(holder common.Address) ([]byte, error) {
	data, err := erc20ABI.Pack("balanceOf", holder)
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack balanceOf call")
	}
	return data, nil
}

// UnpackBalanceOf decodes the raw balance from a balanceOf result.
func UnpackBalanceOf(output []byte) (*big.Int, error) {
	values, err := erc20ABI.Unpack("balanceOf", output)
	if err != nil {
		return nil, errors.Wrap(err, "failed to unpack balanceOf result")
	}
	balance, ok := values[0].(*big.Int)
	if !ok {
		return nil, errors.New("unexpected balanceOf result type")
	}
	return balance, nil
}

// PackDecimals encodes an ERC20 decimals call.
func PackDecimals() ([]byte, error) {
	data, err := erc20ABI.Pack("decimals")
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack decimals call")
	}
	return data, nil
}

// UnpackDecimals decodes the token decimal count from a decimals result.
func UnpackDecimals(output []byte) (uint8, error) {
	values, err := erc20ABI.Unpack("decimals", output)
	if err != nil {
		return 0, errors.Wrap(err, "failed to unpack decimals result")
	}
	decimals, ok := values[0].(uint8)
	if !ok {
		return 0, errors.New("unexpected decimals result type")
	}
	return decimals, nil
}

// PackSymbol encodes an ERC20 symbol call.
func PackSymbol() ([]byte, error) {
	data, err := erc20ABI.Pack("symbol")
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack symbol call")
	}
	return data, nil
}

// UnpackSymbol decodes the token symbol from a symbol result.
func UnpackSymbol(output []byte) (string, error) {
	values, err := erc20ABI.Unpack("symbol", output)
	if err != nil {
		return "", errors.Wrap(err, "failed to unpack symbol result")
	}
	symbol, ok := values[0].(string)
	if !ok {
		return "", errors.New("unexpected symbol result type")
	}
	return symbol, nil
}

// PackName encodes an ERC20 name call.
func PackName() ([]byte, error) {
	data, err := erc20ABI.Pack("name")
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack name call")
	}
	return data, nil
}

// UnpackName decodes the token name from a name result.
func UnpackName(output []byte) (string, error) {
	values, err := erc20ABI.Unpack("name", output)
	if err != nil {
		return "", errors.Wrap(err, "failed to unpack name result")
	}
	name, ok := values[0].(string)
	if !ok {
		return "", errors.New("unexpected name result type")
	}
	return name, nil
}

// PackTotalSupply encodes an ERC20 totalSupply call.
func PackTotalSupply() ([]byte, error) {
	data, err := erc20ABI.Pack("totalSupply")
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack totalSupply call")
	}
	return data, nil
}

// UnpackTotalSupply decodes the raw supply from a totalSupply result.
func UnpackTotalSupply(output []byte) (*big.Int, error) {
	values, err := erc20ABI.Unpack("totalSupply", output)
	if err != nil {
		return nil, errors.Wrap(err, "failed to unpack totalSupply result")
	}
	supply, ok := values[0].(*big.Int)
	if !ok {
		return nil, errors.New("unexpected totalSupply result type")
	}
	return supply, nil
}

// PackLatestRoundData encodes a Chainlink latestRoundData call.
func PackLatestRoundData() ([]byte, error) {
	data, err := aggregatorABI.Pack("latestRoundData")
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack latestRoundData call")
	}
	return data, nil
}

// UnpackLatestRoundData decodes a full oracle round.
func UnpackLatestRoundData(output []byte) (*RoundData, error) {
	values, err := aggregatorABI.Unpack("latestRoundData", output)
	if err != nil {
		return nil, errors.Wrap(err, "failed to unpack latestRoundData result")
	}
	if len(values) != 5 {
		return nil, errors.Errorf("unexpected latestRoundData arity: %d", len(values))
	}

	round := &RoundData{}
	fields := []**big.Int{&round.RoundID, &round.Answer, &round.StartedAt, &round.UpdatedAt, &round.AnsweredInRound}
	for i, field := range fields {
		value, ok := values[i].(*big.Int)
		if !ok {
			return nil, errors.Errorf("unexpected latestRoundData field type at index %d", i)
		}
		*field = value
	}
	return round, nil
}

// PackAggregatorDecimals encodes a feed decimals call.
func PackAggregatorDecimals() ([]byte, error) {
	data, err := aggregatorABI.Pack("decimals")
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack aggregator decimals call")
	}
	return data, nil
}

// UnpackAggregatorDecimals decodes the feed decimal count.
func UnpackAggregatorDecimals(output []byte) (uint8, error) {
	values, err := aggregatorABI.Unpack("decimals", output)
	if err != nil {
		return 0, errors.Wrap(err, "failed to unpack aggregator decimals result")
	}
	decimals, ok := values[0].(uint8)
	if !ok {
		return 0, errors.New("unexpected aggregator decimals result type")
	}
	return decimals, nil
}

// PackQuoteExactInputSingle encodes a single-hop quote.
//
// Parameters:
// - tokenIn: the input token contract address
// - tokenOut: the output token contract address
// - fee: the pool fee tier in hundredths of a bip
// - amountIn: the input amount in raw base units
//
// The sqrt price limit is always zero, meaning no price bound.
func PackQuoteExactInputSingle(tokenIn, tokenOut common.Address, fee uint32, amountIn *big.Int) ([]byte, error) {
	data, err := quoterABI.Pack(
		"quoteExactInputSingle",
		tokenIn,
		tokenOut,
		new(big.Int).SetUint64(uint64(fee)),
		amountIn,
		big.NewInt(0),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack quoteExactInputSingle call")
	}
	return data, nil
}

// UnpackQuoteExactInputSingle decodes the quoted output amount.
func UnpackQuoteExactInputSingle(output []byte) (*big.Int, error) {
	values, err := quoterABI.Unpack("quoteExactInputSingle", output)
	if err != nil {
		return nil, errors.Wrap(err, "failed to unpack quoteExactInputSingle result")
	}
	amountOut, ok := values[0].(*big.Int)
	if !ok {
		return nil, errors.New("unexpected quoteExactInputSingle result type")
	}
	return amountOut, nil
}

// PackExactInputSingle encodes a router swap for simulation.
func PackExactInputSingle(params ExactInputSingleParams) ([]byte, error) {
	data, err := routerABI.Pack("exactInputSingle", params)
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack exactInputSingle call")
	}
	return data, nil
}

// UnpackExactInputSingle decodes the simulated output amount.
func UnpackExactInputSingle(output []byte) (*big.Int, error) {
	values, err := routerABI.Unpack("exactInputSingle", output)
	if err != nil {
		return nil, errors.Wrap(err, "failed to unpack exactInputSingle result")
	}
	amountOut, ok := values[0].(*big.Int)
	if !ok {
		return nil, errors.New("unexpected exactInputSingle result type")
	}
	return amountOut, nil
}

// PackGetPool encodes a factory pool lookup.
func PackGetPool(tokenA, tokenB common.Address, fee uint32) ([]byte, error) {
	data, err := factoryABI.Pack("getPool", tokenA, tokenB, new(big.Int).SetUint64(uint64(fee)))
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack getPool call")
	}
	return data, nil
}

// UnpackGetPool decodes the pool address. The zero address means no pool
// exists for the pair and fee tier.
func UnpackGetPool(output []byte) (common.Address, error) {
	values, err := factoryABI.Unpack("getPool", output)
	if err != nil {
		return common.Address{}, errors.Wrap(err, "failed to unpack getPool result")
	}
	pool, ok := values[0].(common.Address)
	if !ok {
		return common.Address{}, errors.New("unexpected getPool result type")
	}
	return pool, nil
}
