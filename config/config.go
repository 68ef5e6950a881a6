// Package config loads the gateway configuration from the environment,
// with a best-effort .env bootstrap for local development.
package config

import (
	"encoding/hex"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	commonerrors "github.com/ClipFinance/defi-gateway/common/errors"
	"github.com/ClipFinance/defi-gateway/common/types"
	"github.com/ClipFinance/defi-gateway/contracts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// ServerConfig holds the HTTP server settings.
//
// Fields:
// - Host: the listen address.
// - Port: the listen port.
// - RequestTimeout: upper bound for handling one HTTP request.
// - MaxBodyBytes: maximum accepted request body size.
// - RateLimitRPS: sustained requests per second admitted per client.
// - RateLimitBurst: burst size of the rate limiter.
// - CORSAllowOrigins: allowed CORS origins, "*" for any.
type ServerConfig struct {
	Host             string
	Port             int
	RequestTimeout   time.Duration
	MaxBodyBytes     int64
	RateLimitRPS     float64
	RateLimitBurst   int
	CORSAllowOrigins []string
}

// Config is the complete gateway configuration.
//
// Fields:
// - Provider: endpoint, throttle, retry and breaker settings.
// - Server: HTTP server settings.
// - Book: deployed contract addresses, mainnet defaults with env overrides.
// - MaxSwapAmount: largest human-readable input amount a swap may request.
// - DatabaseURL: optional PostgreSQL DSN for the shared config database.
// - LogLevel: logrus level name.
type Config struct {
	Provider      types.ProviderConfig
	Server        ServerConfig
	Book          contracts.AddressBook
	MaxSwapAmount decimal.Decimal
	DatabaseURL   string
	LogLevel      string
}

// Load reads the configuration from the environment. A .env file in the
// working directory is merged in first when present.
//
// Returns:
// - *Config: the validated configuration.
// - error: an error if a required value is missing or out of range.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, using process environment")
	}

	urls := getEnvAsSlice("ETHEREUM_RPC_URLS")
	if len(urls) == 0 {
		// Single-endpoint deployments often configure the singular form.
		urls = getEnvAsSlice("ETHEREUM_RPC_URL")
	}

	book, err := loadAddressBook()
	if err != nil {
		return nil, err
	}

	config := &Config{
		Provider: types.ProviderConfig{
			ChainID:                 getEnvAsUint64("CHAIN_ID", 1),
			RPCURLs:                 urls,
			PrivateKey:              strings.TrimSpace(os.Getenv("PRIVATE_KEY")),
			MaxConcurrentCalls:      int64(getEnvAsInt("MAX_CONCURRENT_REQUESTS", 10)),
			AcquireTimeout:          getEnvAsSeconds("THROTTLE_ACQUIRE_TIMEOUT_SECONDS", 10),
			RequestTimeout:          getEnvAsSeconds("REQUEST_TIMEOUT_SECONDS", 30),
			RetryAttempts:           uint(getEnvAsInt("RETRY_ATTEMPTS", 3)),
			RetryBaseDelay:          time.Duration(getEnvAsInt("RETRY_BASE_DELAY_MS", 100)) * time.Millisecond,
			BreakerFailureThreshold: getEnvAsInt("BREAKER_FAILURE_THRESHOLD", 5),
			BreakerCooldown:         getEnvAsSeconds("BREAKER_COOLDOWN_SECONDS", 30),
			BreakerSuccessThreshold: getEnvAsInt("BREAKER_SUCCESS_THRESHOLD", 3),
			BreakerMaxCooldown:      getEnvAsSeconds("BREAKER_MAX_COOLDOWN_SECONDS", 0),
		},
		Server: ServerConfig{
			Host:             getEnv("SERVER_HOST", "127.0.0.1"),
			Port:             getEnvAsInt("SERVER_PORT", 3000),
			RequestTimeout:   getEnvAsSeconds("HTTP_TIMEOUT_SECONDS", 30),
			MaxBodyBytes:     int64(getEnvAsInt("HTTP_MAX_BODY_BYTES", 1<<20)),
			RateLimitRPS:     getEnvAsFloat("RATE_LIMIT_RPS", 10),
			RateLimitBurst:   getEnvAsInt("RATE_LIMIT_BURST", 20),
			CORSAllowOrigins: getEnvAsSliceDefault("CORS_ALLOW_ORIGINS", []string{"*"}),
		},
		Book:          book,
		MaxSwapAmount: getEnvAsDecimal("MAX_SWAP_AMOUNT", decimal.NewFromInt(1000)),
		DatabaseURL:   strings.TrimSpace(os.Getenv("DATABASE_URL")),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks that every configured value is usable.
func (c *Config) Validate() error {
	if len(c.Provider.RPCURLs) == 0 {
		return errors.Wrap(commonerrors.ErrInvalidConfig, "ETHEREUM_RPC_URLS must list at least one endpoint")
	}
	for _, raw := range c.Provider.RPCURLs {
		parsed, err := url.Parse(raw)
		if err != nil || parsed.Host == "" {
			return errors.Wrapf(commonerrors.ErrInvalidConfig, "malformed rpc url %q", raw)
		}
		switch parsed.Scheme {
		case "http", "https", "ws", "wss":
		default:
			return errors.Wrapf(commonerrors.ErrInvalidConfig, "unsupported rpc url scheme %q", parsed.Scheme)
		}
	}

	if err := validatePrivateKey(c.Provider.PrivateKey); err != nil {
		return err
	}
	if c.Provider.ChainID == 0 {
		return errors.Wrap(commonerrors.ErrInvalidConfig, "CHAIN_ID must be positive")
	}
	if c.Provider.MaxConcurrentCalls <= 0 {
		return errors.Wrap(commonerrors.ErrInvalidConfig, "MAX_CONCURRENT_REQUESTS must be positive")
	}
	if c.Provider.AcquireTimeout <= 0 || c.Provider.RequestTimeout <= 0 {
		return errors.Wrap(commonerrors.ErrInvalidConfig, "timeouts must be positive")
	}
	if c.Provider.RetryAttempts == 0 {
		return errors.Wrap(commonerrors.ErrInvalidConfig, "RETRY_ATTEMPTS must be positive")
	}
	if c.Provider.BreakerFailureThreshold <= 0 || c.Provider.BreakerSuccessThreshold <= 0 {
		return errors.Wrap(commonerrors.ErrInvalidConfig, "breaker thresholds must be positive")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return errors.Wrapf(commonerrors.ErrInvalidConfig, "SERVER_PORT %d out of range", c.Server.Port)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return errors.Wrap(commonerrors.ErrInvalidConfig, "HTTP_MAX_BODY_BYTES must be positive")
	}
	if c.Server.RateLimitRPS <= 0 || c.Server.RateLimitBurst < 1 {
		return errors.Wrap(commonerrors.ErrInvalidConfig, "rate limit settings must be positive")
	}
	if len(c.Server.CORSAllowOrigins) == 0 {
		return errors.Wrap(commonerrors.ErrInvalidConfig, "CORS_ALLOW_ORIGINS must not be empty")
	}

	if !c.MaxSwapAmount.IsPositive() {
		return errors.Wrap(commonerrors.ErrInvalidConfig, "MAX_SWAP_AMOUNT must be positive")
	}
	return nil
}

func validatePrivateKey(key string) error {
	trimmed := strings.TrimPrefix(key, "0x")
	if trimmed == "" {
		return errors.Wrap(commonerrors.ErrInvalidConfig, "PRIVATE_KEY must be set")
	}
	if len(trimmed) != 64 {
		return errors.Wrap(commonerrors.ErrInvalidConfig, "PRIVATE_KEY must be 32 bytes of hex")
	}
	if _, err := hex.DecodeString(trimmed); err != nil {
		return errors.Wrap(commonerrors.ErrInvalidConfig, "PRIVATE_KEY is not valid hex")
	}
	return nil
}

// loadAddressBook starts from the mainnet deployment and applies env
// overrides so the gateway can target forks and testnets.
func loadAddressBook() (contracts.AddressBook, error) {
	book := contracts.MainnetAddressBook()

	overrides := []struct {
		key    string
		target *common.Address
	}{
		{"USDC_ADDRESS", &book.USDC},
		{"USDT_ADDRESS", &book.USDT},
		{"DAI_ADDRESS", &book.DAI},
		{"WETH_ADDRESS", &book.WETH},
		{"UNISWAP_FACTORY_ADDRESS", &book.UniswapV3Factory},
		{"UNISWAP_ROUTER_ADDRESS", &book.UniswapV3Router},
		{"UNISWAP_QUOTER_ADDRESS", &book.UniswapV3Quoter},
		{"CHAINLINK_ETH_USD_FEED", &book.ChainlinkETHUSDFeed},
	}
	for _, o := range overrides {
		value := strings.TrimSpace(os.Getenv(o.key))
		if value == "" {
			continue
		}
		if !common.IsHexAddress(value) {
			return contracts.AddressBook{}, errors.Wrapf(commonerrors.ErrInvalidConfig, "%s is not a hex address", o.key)
		}
		*o.target = common.HexToAddress(value)
	}
	return book, nil
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		logrus.WithField("key", key).Warnf("Not an integer, using default %d", defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvAsUint64(key string, defaultValue uint64) uint64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		logrus.WithField("key", key).Warnf("Not an unsigned integer, using default %d", defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		logrus.WithField("key", key).Warnf("Not a number, using default %g", defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvAsSeconds(key string, defaultSeconds int) time.Duration {
	return time.Duration(getEnvAsInt(key, defaultSeconds)) * time.Second
}

func getEnvAsDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		logrus.WithField("key", key).Warnf("Not a decimal, using default %s", defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvAsSlice(key string) []string {
	var values []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}

func getEnvAsSliceDefault(key string, defaultValue []string) []string {
	if values := getEnvAsSlice(key); len(values) > 0 {
		return values
	}
	return defaultValue
}
