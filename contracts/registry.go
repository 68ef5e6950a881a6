package contracts

import (
	"sort"
	"strings"
	"sync"

	commonerrors "github.com/ClipFinance/defi-gateway/common/errors"
	"github.com/ClipFinance/defi-gateway/common/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// TokenRegistry resolves token symbols and addresses to token metadata.
// It is seeded with the well-known mainnet tokens and can be extended at
// runtime, for example from a database-backed token list.
type TokenRegistry struct {
	logger      *logrus.Logger
	tokensMutex sync.RWMutex
	bySymbol    map[string]types.TokenInfo
	byAddress   map[common.Address]types.TokenInfo
}

// NewTokenRegistry creates a registry seeded from the address book.
func NewTokenRegistry(book AddressBook, logger *logrus.Logger) *TokenRegistry {
	r := &TokenRegistry{
		logger:    logger,
		bySymbol:  make(map[string]types.TokenInfo),
		byAddress: make(map[common.Address]types.TokenInfo),
	}

	r.Register(types.TokenInfo{Symbol: "USDC", Address: book.USDC, Decimals: 6})
	r.Register(types.TokenInfo{Symbol: "USDT", Address: book.USDT, Decimals: 6})
	r.Register(types.TokenInfo{Symbol: "DAI", Address: book.DAI, Decimals: 18})
	r.Register(types.TokenInfo{Symbol: "WETH", Address: book.WETH, Decimals: 18})

	return r
}

// Register adds or replaces a token entry. Symbols are stored upper case.
func (r *TokenRegistry) Register(token types.TokenInfo) {
	symbol := strings.ToUpper(strings.TrimSpace(token.Symbol))
	token.Symbol = symbol

	r.tokensMutex.Lock()
	r.bySymbol[symbol] = token
	r.byAddress[token.Address] = token
	r.tokensMutex.Unlock()

	if r.logger != nil {
		r.logger.WithFields(logrus.Fields{
			"symbol":   symbol,
			"address":  token.Address.Hex(),
			"decimals": token.Decimals,
		}).Debug("Registered token")
	}
}

// BySymbol looks up a token by its ticker symbol, case insensitive.
// "ETH" resolves to the wrapped native token.
func (r *TokenRegistry) BySymbol(symbol string) (types.TokenInfo, error) {
	normalized := strings.ToUpper(strings.TrimSpace(symbol))
	if normalized == "ETH" {
		normalized = "WETH"
	}

	r.tokensMutex.RLock()
	token, ok := r.bySymbol[normalized]
	r.tokensMutex.RUnlock()

	if !ok {
		return types.TokenInfo{}, errors.Wrap(commonerrors.ErrTokenNotFound, symbol)
	}
	return token, nil
}

// ByAddress looks up a token by its contract address.
func (r *TokenRegistry) ByAddress(address common.Address) (types.TokenInfo, bool) {
	r.tokensMutex.RLock()
	token, ok := r.byAddress[address]
	r.tokensMutex.RUnlock()
	return token, ok
}

// Resolve turns a token reference into a contract address. The reference
// may be a hex address or a registered symbol.
func (r *TokenRegistry) Resolve(ref string) (common.Address, error) {
	trimmed := strings.TrimSpace(ref)
	if common.IsHexAddress(trimmed) {
		return common.HexToAddress(trimmed), nil
	}

	token, err := r.BySymbol(trimmed)
	if err != nil {
		return common.Address{}, err
	}
	return token.Address, nil
}

// Known returns all registered tokens, ordered by symbol.
func (r *TokenRegistry) Known() []types.TokenInfo {
	r.tokensMutex.RLock()
	tokens := make([]types.TokenInfo, 0, len(r.bySymbol))
	for _, token := range r.bySymbol {
		tokens = append(tokens, token)
	}
	r.tokensMutex.RUnlock()

	sort.Slice(tokens, func(i, j int) bool { return tokens[i].Symbol < tokens[j].Symbol })
	return tokens
}
