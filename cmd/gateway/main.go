// Command gateway runs the resilient Ethereum JSON-RPC gateway: a small
// HTTP front exposing balance, price, swap simulation and transaction
// status tools over a failover-aware upstream provider.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ClipFinance/defi-gateway/common/types"
	"github.com/ClipFinance/defi-gateway/config"
	"github.com/ClipFinance/defi-gateway/connectionmonitor"
	"github.com/ClipFinance/defi-gateway/contracts"
	"github.com/ClipFinance/defi-gateway/dbconfig"
	"github.com/ClipFinance/defi-gateway/ethereum"
	"github.com/ClipFinance/defi-gateway/server"
	"github.com/ClipFinance/defi-gateway/services"
	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
)

// shutdownGrace is how long in-flight requests get to finish on shutdown.
const shutdownGrace = 10 * time.Second

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	} else {
		logger.WithField("level", cfg.LogLevel).Warn("Unknown log level, using info")
	}

	registry := contracts.NewTokenRegistry(cfg.Book, logger)

	if cfg.DatabaseURL != "" {
		mergeDatabaseConfig(cfg, registry, logger)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	provider, err := ethereum.NewProvider(ctx, &cfg.Provider, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize ethereum provider")
	}
	defer provider.Close()

	logger.WithFields(logrus.Fields{
		"wallet":   provider.WalletAddress().Hex(),
		"chain_id": provider.ChainID(),
	}).Info("Ethereum provider ready")

	monitor := connectionmonitor.NewConnectionMonitor(provider, logger, "ethereum")
	if err := monitor.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to start connection monitor")
	}
	defer monitor.Stop()

	svc := services.New(provider, cfg.Book, logger)
	srv := server.New(svc, registry, provider, cfg.Server, cfg.MaxSwapAmount, logger)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.WithField("signal", sig.String()).Info("Shutting down")
	case err := <-serverErr:
		if err != nil {
			logger.WithError(err).Error("Server failed")
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("Server shutdown incomplete")
	}
}

// mergeDatabaseConfig extends the environment-derived configuration with
// rows from the shared configuration database. Endpoints are appended in
// priority order behind the configured URLs; tokens extend the registry.
// A database failure is logged and skipped so the gateway still starts
// from the environment alone.
func mergeDatabaseConfig(cfg *config.Config, registry *contracts.TokenRegistry, logger *logrus.Logger) {
	db, err := dbconfig.New(cfg.DatabaseURL)
	if err != nil {
		logger.WithError(err).Warn("Configuration database unavailable, using environment only")
		return
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	endpoints, err := db.GetEndpointsByChainID(ctx, cfg.Provider.ChainID, true)
	if err != nil {
		logger.WithError(err).Warn("Failed to load endpoints from database")
	} else {
		known := make(map[string]struct{}, len(cfg.Provider.RPCURLs))
		for _, url := range cfg.Provider.RPCURLs {
			known[url] = struct{}{}
		}
		for _, ep := range endpoints {
			if _, ok := known[ep.URL]; ok {
				continue
			}
			cfg.Provider.RPCURLs = append(cfg.Provider.RPCURLs, ep.URL)
		}
		logger.WithField("endpoints", len(cfg.Provider.RPCURLs)).Info("Endpoint list merged from database")
	}

	tokens, err := db.GetTokensByChainID(ctx, cfg.Provider.ChainID)
	if err != nil {
		logger.WithError(err).Warn("Failed to load tokens from database")
		return
	}
	for _, token := range tokens {
		registry.Register(types.TokenInfo{
			Symbol:   token.Symbol,
			Address:  common.HexToAddress(token.Address),
			Decimals: uint8(token.Decimals),
		})
	}
}
