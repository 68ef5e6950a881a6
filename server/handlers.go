package server

import (
	"encoding/json"
	"net/http"

	commonerrors "github.com/ClipFinance/defi-gateway/common/errors"
	"github.com/ClipFinance/defi-gateway/common/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// toolDescriptor is one entry of the tools/list response.
type toolDescriptor struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// toolCatalog is the tool surface the gateway advertises.
var toolCatalog = []toolDescriptor{
	{Name: "get_balance", Description: "Query ETH and ERC20 token balances with proper decimals"},
	{Name: "get_token_price", Description: "Get current token price in USD or ETH (input: token address or symbol)"},
	{Name: "swap_tokens", Description: "Simulate Uniswap token swap via eth_call"},
	{Name: "get_transaction_status", Description: "Get the status of a transaction, including confirmations"},
}

// handleRPC decodes the JSON-RPC envelope and dispatches to a tool. Tools
// are reachable both through tools/call and as direct methods.
func (s *Server) handleRPC(c *gin.Context) {
	var req Request
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		c.JSON(http.StatusOK, failure(nil, parseError()))
		return
	}

	if rpcErr := validateEnvelope(&req); rpcErr != nil {
		c.JSON(http.StatusOK, failure(req.ID, rpcErr))
		return
	}

	switch req.Method {
	case "tools/list":
		c.JSON(http.StatusOK, success(req.ID, gin.H{"tools": toolCatalog}))
	case "tools/call":
		var call struct {
			Name      string          `json:"name"`
			Arguments json.RawMessage `json:"arguments"`
		}
		if err := json.Unmarshal(req.Params, &call); err != nil {
			c.JSON(http.StatusOK, failure(req.ID, invalidParams("malformed tools/call params")))
			return
		}
		s.dispatchTool(c, req.ID, call.Name, call.Arguments)
	default:
		s.dispatchTool(c, req.ID, req.Method, req.Params)
	}
}

// dispatchTool routes one tool invocation by name.
func (s *Server) dispatchTool(c *gin.Context, id json.RawMessage, name string, args json.RawMessage) {
	switch name {
	case "get_balance":
		s.handleGetBalance(c, id, args)
	case "get_token_price":
		s.handleGetTokenPrice(c, id, args)
	case "swap_tokens":
		s.handleSwapTokens(c, id, args)
	case "get_transaction_status":
		s.handleGetTransactionStatus(c, id, args)
	default:
		c.JSON(http.StatusOK, failure(id, methodNotFound()))
	}
}

func (s *Server) handleGetBalance(c *gin.Context, id json.RawMessage, args json.RawMessage) {
	var params struct {
		WalletAddress        string `json:"wallet_address"`
		TokenContractAddress string `json:"token_contract_address"`
	}
	if rpcErr := decodeArgs(args, &params); rpcErr != nil {
		c.JSON(http.StatusOK, failure(id, rpcErr))
		return
	}

	wallet, rpcErr := parseAddressArg("wallet_address", params.WalletAddress)
	if rpcErr != nil {
		c.JSON(http.StatusOK, failure(id, rpcErr))
		return
	}

	var (
		info types.BalanceInfo
		err  error
	)
	if params.TokenContractAddress == "" {
		info, err = s.tools.GetNativeBalance(c.Request.Context(), wallet)
	} else {
		var token common.Address
		token, rpcErr = parseAddressArg("token_contract_address", params.TokenContractAddress)
		if rpcErr != nil {
			c.JSON(http.StatusOK, failure(id, rpcErr))
			return
		}
		info, err = s.tools.GetTokenBalance(c.Request.Context(), wallet, token)
	}
	if err != nil {
		s.respondError(c, id, "balance_query_failed", err)
		return
	}

	c.JSON(http.StatusOK, success(id, info))
}

func (s *Server) handleGetTokenPrice(c *gin.Context, id json.RawMessage, args json.RawMessage) {
	var params struct {
		TokenAddress string `json:"token_address"`
		TokenSymbol  string `json:"token_symbol"`
	}
	if rpcErr := decodeArgs(args, &params); rpcErr != nil {
		c.JSON(http.StatusOK, failure(id, rpcErr))
		return
	}

	var token common.Address
	switch {
	case params.TokenAddress != "":
		addr, rpcErr := parseAddressArg("token_address", params.TokenAddress)
		if rpcErr != nil {
			c.JSON(http.StatusOK, failure(id, rpcErr))
			return
		}
		token = addr
	case params.TokenSymbol != "":
		if containsControlChars(params.TokenSymbol) {
			c.JSON(http.StatusOK, failure(id, invalidParams("invalid token_symbol")))
			return
		}
		addr, err := s.registry.Resolve(params.TokenSymbol)
		if err != nil {
			c.JSON(http.StatusOK, failure(id, invalidParams("unknown token_symbol")))
			return
		}
		token = addr
	default:
		c.JSON(http.StatusOK, failure(id, invalidParams("token_address or token_symbol is required")))
		return
	}

	price, err := s.tools.GetTokenPrice(c.Request.Context(), token)
	if err != nil {
		s.respondError(c, id, "price_query_failed", err)
		return
	}

	c.JSON(http.StatusOK, success(id, price))
}

func (s *Server) handleSwapTokens(c *gin.Context, id json.RawMessage, args json.RawMessage) {
	var params struct {
		FromToken         string `json:"from_token"`
		ToToken           string `json:"to_token"`
		Amount            string `json:"amount"`
		SlippageTolerance string `json:"slippage_tolerance"`
	}
	if rpcErr := decodeArgs(args, &params); rpcErr != nil {
		c.JSON(http.StatusOK, failure(id, rpcErr))
		return
	}

	fromToken, rpcErr := parseAddressArg("from_token", params.FromToken)
	if rpcErr != nil {
		c.JSON(http.StatusOK, failure(id, rpcErr))
		return
	}
	toToken, rpcErr := parseAddressArg("to_token", params.ToToken)
	if rpcErr != nil {
		c.JSON(http.StatusOK, failure(id, rpcErr))
		return
	}
	amountIn, rpcErr := parseAmountArg("amount", params.Amount, s.maxSwap)
	if rpcErr != nil {
		c.JSON(http.StatusOK, failure(id, rpcErr))
		return
	}
	slippage, rpcErr := parseSlippageArg("slippage_tolerance", params.SlippageTolerance)
	if rpcErr != nil {
		c.JSON(http.StatusOK, failure(id, rpcErr))
		return
	}

	result, err := s.tools.SimulateSwap(c.Request.Context(), types.SwapQuoteParams{
		FromToken:         fromToken,
		ToToken:           toToken,
		AmountIn:          amountIn,
		SlippageTolerance: slippage,
	})
	if err != nil {
		s.respondError(c, id, "swap_simulation_failed", err)
		return
	}

	c.JSON(http.StatusOK, success(id, result))
}

func (s *Server) handleGetTransactionStatus(c *gin.Context, id json.RawMessage, args json.RawMessage) {
	var params struct {
		TransactionHash string `json:"transaction_hash"`
	}
	if rpcErr := decodeArgs(args, &params); rpcErr != nil {
		c.JSON(http.StatusOK, failure(id, rpcErr))
		return
	}

	hash, rpcErr := parseHashArg("transaction_hash", params.TransactionHash)
	if rpcErr != nil {
		c.JSON(http.StatusOK, failure(id, rpcErr))
		return
	}

	info, err := s.tools.GetTransactionStatus(c.Request.Context(), hash)
	if err != nil {
		s.respondError(c, id, "status_query_failed", err)
		return
	}

	c.JSON(http.StatusOK, success(id, info))
}

// decodeArgs unmarshals tool arguments, tolerating an absent params
// object so missing-field errors stay specific.
func decodeArgs(args json.RawMessage, into interface{}) *RPCError {
	if len(args) == 0 {
		return invalidParams("missing arguments")
	}
	if err := json.Unmarshal(args, into); err != nil {
		return invalidParams("malformed arguments")
	}
	return nil
}

// respondError maps a failed core call onto a JSON-RPC error. The full
// error is logged server-side; only the classified kind's safe summary
// crosses to the client, with a retry hint for transient conditions.
func (s *Server) respondError(c *gin.Context, id json.RawMessage, operation string, err error) {
	s.logger.WithFields(logrus.Fields{
		"request_id": c.GetString("request_id"),
		"operation":  operation,
	}).WithError(err).Error("Tool invocation failed")

	classified := commonerrors.Classify(err)

	code := codeInternalError
	switch commonerrors.Kind(classified) {
	case commonerrors.ErrInvalidAmount, commonerrors.ErrInvalidAddress, commonerrors.ErrTokenNotFound:
		code = codeInvalidParams
	}

	c.JSON(http.StatusOK, failure(id, &RPCError{
		Code:    code,
		Message: commonerrors.SafeMessage(classified),
		Data: gin.H{
			"retry_suggested": commonerrors.RetrySuggested(classified),
			"error_type":      operation,
		},
	}))
}
