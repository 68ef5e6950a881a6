package server

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/ClipFinance/defi-gateway/common/types"
	"github.com/ClipFinance/defi-gateway/config"
	"github.com/ClipFinance/defi-gateway/contracts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// healthProbeTimeout bounds the RPC probe behind the health endpoint.
const healthProbeTimeout = 5 * time.Second

// Tools is the service surface the server dispatches to. It is
// implemented by services.Service.
type Tools interface {
	GetNativeBalance(ctx context.Context, address common.Address) (types.BalanceInfo, error)
	GetTokenBalance(ctx context.Context, address, token common.Address) (types.BalanceInfo, error)
	GetTokenPrice(ctx context.Context, token common.Address) (types.TokenPrice, error)
	SimulateSwap(ctx context.Context, params types.SwapQuoteParams) (types.SwapResult, error)
	GetTransactionStatus(ctx context.Context, hash common.Hash) (types.TransactionStatusInfo, error)
}

// Server is the HTTP JSON-RPC front of the gateway.
type Server struct {
	tools    Tools
	registry *contracts.TokenRegistry
	health   types.HealthChecker
	config   config.ServerConfig
	maxSwap  decimal.Decimal
	logger   *logrus.Logger

	httpServer *http.Server
}

// New creates a server over the given service surface.
//
// Parameters:
// - tools: the gateway services the JSON-RPC methods dispatch to.
// - registry: the token registry resolving token_symbol arguments.
// - health: the provider probe behind the health endpoint.
// - cfg: the HTTP server settings.
// - maxSwapAmount: the largest human-readable swap input accepted.
// - logger: the logger instance for server events.
//
// Returns:
// - *Server: the initialized server, not yet listening.
func New(
	tools Tools,
	registry *contracts.TokenRegistry,
	health types.HealthChecker,
	cfg config.ServerConfig,
	maxSwapAmount decimal.Decimal,
	logger *logrus.Logger,
) *Server {
	return &Server{
		tools:    tools,
		registry: registry,
		health:   health,
		config:   cfg,
		maxSwap:  maxSwapAmount,
		logger:   logger,
	}
}

// Router builds the gin engine with the full middleware chain. Exposed
// separately from Start so tests can drive it with httptest.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		recovery(s.logger),
		requestID(),
		requestLogger(s.logger),
		securityHeaders(),
		corsAllowOrigins(s.config.CORSAllowOrigins),
		rateLimit(s.config.RateLimitRPS, s.config.RateLimitBurst),
		bodyLimit(s.config.MaxBodyBytes),
		requestTimeout(s.config.RequestTimeout),
	)

	router.POST("/", s.handleRPC)
	router.GET("/health", s.handleHealth)

	return router
}

// Start begins serving on the configured host and port. It blocks until
// the listener fails or Shutdown is called.
func (s *Server) Start() error {
	addr := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.WithField("addr", addr).Info("JSON-RPC server listening")

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "failed to serve http")
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return errors.Wrap(s.httpServer.Shutdown(ctx), "failed to shut down http server")
}

// handleHealth reports gateway health. A failing or slow RPC probe
// degrades the status instead of erroring, so load balancers can keep
// routing reads that may still be served by a failover endpoint.
func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthProbeTimeout)
	defer cancel()

	body := gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := s.health.HealthCheck(ctx); err != nil {
		s.logger.WithError(err).Warn("Health probe failed")
		body["status"] = "degraded"
		body["details"] = gin.H{"rpc_status": "unhealthy"}
		c.JSON(http.StatusOK, body)
		return
	}

	body["details"] = gin.H{"rpc_status": "healthy"}
	c.JSON(http.StatusOK, body)
}
