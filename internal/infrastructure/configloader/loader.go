package configloader

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the YAML file.
const (
	EnvConfigPath     = "OFFRAMP_CONFIG"
	EnvPrivateKey     = "OFFRAMP_PRIVATE_KEY"
	EnvKeyFile        = "OFFRAMP_KEY_FILE"
	EnvKeyPassword    = "OFFRAMP_KEY_PASSWORD"
	EnvRPCURL         = "OFFRAMP_RPC_URL"
	EnvFirebaseAPIKey = "OFFRAMP_FIREBASE_API_KEY"
	EnvLogLevel       = "OFFRAMP_LOG_LEVEL"
)

// DefaultConfigPath is used when neither a flag nor OFFRAMP_CONFIG names a file.
const DefaultConfigPath = "config/config.yml"

// Lisk Sepolia and the contracts deployed there.
const (
	defaultTargetChainID = 4202
	defaultFiatSend      = "0x1D683929B76cA50217C3B9C8CE4CcA9a0454a13d"
	defaultUSDT          = "0xAE134a846a92CA8E7803Ca075A1a0EE854Cd6168"
	defaultGHSFiat       = "0x84Fd74850911d28C4B8A722b6CE8Aa0Df802f08A"
	defaultMomoNFT       = "0x063EC4E9d7C55A572d3f24d600e1970df75e84cA"
)

// Wallet modes.
const (
	WalletModeKeyed    = "keyed"
	WalletModeProvider = "provider"
)

// LoggingConfig holds logging-specific configurations.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`
}

// ChainConfig describes the network every write must happen on.
type ChainConfig struct {
	TargetChainID     uint64  `yaml:"targetChainID"`
	RPCURL            string  `yaml:"rpcURL"` // overrides the built-in primary RPC of the target network
	ConnectTimeoutMs  int64   `yaml:"connectTimeoutMs"`
	RPCTimeoutMs      int64   `yaml:"rpcTimeoutMs"`
	RateLimit         float64 `yaml:"rateLimit"` // requests per second per network, 0 disables limiting
	BurstLimit        int     `yaml:"burstLimit"`
	ReceiptPollMs     int64   `yaml:"receiptPollMs"`
	VerifyAfterSwitch bool    `yaml:"verifyAfterSwitch"`
}

// ContractsConfig holds the deployed contract addresses.
type ContractsConfig struct {
	FiatSend string `yaml:"fiatSend"`
	USDT     string `yaml:"usdt"`
	GHSFiat  string `yaml:"ghsFiat"`
	MomoNFT  string `yaml:"momoNFT"`
}

// OfframpConfig holds the product limits of the offramp.
type OfframpConfig struct {
	DefaultExchangeRate float64 `yaml:"defaultExchangeRate"` // used when conversionRate() cannot be read
	MaxTransferGHS      float64 `yaml:"maxTransferGHS"`
	CountryCode         string  `yaml:"countryCode"`
	Region              string  `yaml:"region"`
	HistoryFromBlock    uint64  `yaml:"historyFromBlock"`
	HistoryBlockSpan    uint64  `yaml:"historyBlockSpan"`
}

// WalletConfig selects how transactions are signed.
type WalletConfig struct {
	Mode        string `yaml:"mode"` // keyed or provider
	PrivateKey  string `yaml:"-"`
	KeyFile     string `yaml:"keyFile"`
	KeyPassword string `yaml:"-"`
	ProviderURL string `yaml:"providerURL"`
}

// OTPConfig holds the Firebase phone auth settings.
type OTPConfig struct {
	BaseURL              string `yaml:"baseURL"`
	APIKey               string `yaml:"-"`
	RecaptchaToken       string `yaml:"recaptchaToken"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
}

// CacheConfig holds configuration for caching.
type CacheConfig struct {
	DefaultExpirationMinutes int `yaml:"defaultExpirationMinutes"`
	CleanupIntervalMinutes   int `yaml:"cleanupIntervalMinutes"`
}

// TokensConfig points at the token list directory.
type TokensConfig struct {
	Dir string `yaml:"dir"`
}

// MetricsConfig selects the textfile the counters are written to.
type MetricsConfig struct {
	File string `yaml:"file"`
}

// Config is the top-level configuration structure.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Chain     ChainConfig     `yaml:"chain"`
	Contracts ContractsConfig `yaml:"contracts"`
	Offramp   OfframpConfig   `yaml:"offramp"`
	Wallet    WalletConfig    `yaml:"wallet"`
	OTP       OTPConfig       `yaml:"otp"`
	Cache     CacheConfig     `yaml:"cache"`
	Tokens    TokensConfig    `yaml:"tokens"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// ConnectTimeout returns the dial timeout for RPC endpoints.
func (c *Config) ConnectTimeout() time.Duration {
	return time.Duration(c.Chain.ConnectTimeoutMs) * time.Millisecond
}

// RPCTimeout returns the per-call RPC timeout.
func (c *Config) RPCTimeout() time.Duration {
	return time.Duration(c.Chain.RPCTimeoutMs) * time.Millisecond
}

// ReceiptPollInterval returns how often a pending transaction is checked.
func (c *Config) ReceiptPollInterval() time.Duration {
	return time.Duration(c.Chain.ReceiptPollMs) * time.Millisecond
}

// OTPTimeout returns the timeout of one identity toolkit request.
func (c *Config) OTPTimeout() time.Duration {
	return time.Duration(c.OTP.RequestTimeoutMillis) * time.Millisecond
}

// CacheTTL returns the default expiration of read caches.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.DefaultExpirationMinutes) * time.Minute
}

// CacheCleanup returns the purge interval of read caches.
func (c *Config) CacheCleanup() time.Duration {
	return time.Duration(c.Cache.CleanupIntervalMinutes) * time.Minute
}

// Load reads .env (if present), then the YAML configuration file at path, applies environment
// overrides and defaults, and validates the result. A missing YAML file is not an error:
// the built-in Lisk Sepolia defaults are used.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.Warnf("Failed to load .env file: %v", err)
	}

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		path = DefaultConfigPath
	}

	var cfg Config
	logrus.Infof("Loading configuration from path: %s", path)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			logrus.Errorf("Failed to unmarshal config data from %s: %v", path, err)
			return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		logrus.Warnf("Config file %s not found, using built-in defaults", path)
	default:
		logrus.Errorf("Failed to read config file %s: %v", path, err)
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}

	logrus.Info("Configuration loaded successfully.")
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvPrivateKey); v != "" {
		cfg.Wallet.PrivateKey = strings.TrimPrefix(strings.TrimSpace(v), "0x")
	}
	if v := os.Getenv(EnvKeyFile); v != "" {
		cfg.Wallet.KeyFile = v
	}
	if v := os.Getenv(EnvKeyPassword); v != "" {
		cfg.Wallet.KeyPassword = v
	}
	if v := os.Getenv(EnvRPCURL); v != "" {
		cfg.Chain.RPCURL = v
	}
	if v := os.Getenv(EnvFirebaseAPIKey); v != "" {
		cfg.OTP.APIKey = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	if cfg.Chain.TargetChainID == 0 {
		cfg.Chain.TargetChainID = defaultTargetChainID
		logrus.Infof("chain.targetChainID not set, defaulting to %d (Lisk Sepolia)", cfg.Chain.TargetChainID)
	}
	if cfg.Chain.ConnectTimeoutMs <= 0 {
		cfg.Chain.ConnectTimeoutMs = 10000
	}
	if cfg.Chain.RPCTimeoutMs <= 0 {
		cfg.Chain.RPCTimeoutMs = 10000
		logrus.Infof("chain.rpcTimeoutMs not set, defaulting to %d ms", cfg.Chain.RPCTimeoutMs)
	}
	if cfg.Chain.BurstLimit <= 0 {
		cfg.Chain.BurstLimit = 1
	}
	if cfg.Chain.ReceiptPollMs <= 0 {
		cfg.Chain.ReceiptPollMs = 2000
	}

	if cfg.Contracts.FiatSend == "" {
		cfg.Contracts.FiatSend = defaultFiatSend
	}
	if cfg.Contracts.USDT == "" {
		cfg.Contracts.USDT = defaultUSDT
	}
	if cfg.Contracts.GHSFiat == "" {
		cfg.Contracts.GHSFiat = defaultGHSFiat
	}
	if cfg.Contracts.MomoNFT == "" {
		cfg.Contracts.MomoNFT = defaultMomoNFT
	}

	if cfg.Offramp.DefaultExchangeRate <= 0 {
		cfg.Offramp.DefaultExchangeRate = 14
		logrus.Infof("offramp.defaultExchangeRate not set, defaulting to %v GHS per USDT", cfg.Offramp.DefaultExchangeRate)
	}
	if cfg.Offramp.MaxTransferGHS <= 0 {
		cfg.Offramp.MaxTransferGHS = 25000
	}
	if cfg.Offramp.CountryCode == "" {
		cfg.Offramp.CountryCode = "+233"
	}
	if cfg.Offramp.Region == "" {
		cfg.Offramp.Region = "GH"
	}
	if cfg.Offramp.HistoryBlockSpan == 0 {
		cfg.Offramp.HistoryBlockSpan = 10000
	}

	if cfg.Wallet.Mode == "" {
		cfg.Wallet.Mode = WalletModeKeyed
	}

	if cfg.OTP.BaseURL == "" {
		cfg.OTP.BaseURL = "https://identitytoolkit.googleapis.com/v1"
	}
	if cfg.OTP.RequestTimeoutMillis <= 0 {
		cfg.OTP.RequestTimeoutMillis = 10000
	}

	if cfg.Cache.DefaultExpirationMinutes <= 0 {
		cfg.Cache.DefaultExpirationMinutes = 5
		logrus.Infof("cache.defaultExpirationMinutes not set, defaulting to %d minutes", cfg.Cache.DefaultExpirationMinutes)
	}
	if cfg.Cache.CleanupIntervalMinutes <= 0 {
		cfg.Cache.CleanupIntervalMinutes = 10
	}

	if cfg.Tokens.Dir == "" {
		cfg.Tokens.Dir = "data/tokens"
	}
}

func validate(cfg *Config) error {
	switch cfg.Wallet.Mode {
	case WalletModeKeyed, WalletModeProvider:
	default:
		return fmt.Errorf("unknown wallet.mode %q, expected %q or %q", cfg.Wallet.Mode, WalletModeKeyed, WalletModeProvider)
	}
	if cfg.Wallet.Mode == WalletModeProvider && cfg.Wallet.ProviderURL == "" {
		return fmt.Errorf("wallet.providerURL is required in %s mode", WalletModeProvider)
	}
	for name, addr := range map[string]string{
		"fiatSend": cfg.Contracts.FiatSend,
		"usdt":     cfg.Contracts.USDT,
		"ghsFiat":  cfg.Contracts.GHSFiat,
		"momoNFT":  cfg.Contracts.MomoNFT,
	} {
		if !common.IsHexAddress(addr) {
			return fmt.Errorf("contracts.%s is not a valid address: %q", name, addr)
		}
	}
	if cfg.Chain.RateLimit < 0 {
		return fmt.Errorf("chain.rateLimit must not be negative, got %s", strconv.FormatFloat(cfg.Chain.RateLimit, 'f', -1, 64))
	}
	return nil
}
