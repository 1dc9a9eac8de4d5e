// Package config loads the bot configuration from a TOML file, a .env file and
// the environment.
package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/meme-bots/lp-cycler/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	DefaultTokenAddress      = "0x6aedb157b9ca86e32200857aa2579d47098ace39" // Spiral
	DefaultTokenDecimals     = 9
	DefaultComparatorAddress = "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48" // USDC
	DefaultRouter            = "0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D" // Uniswap V2
	DefaultPairInitCodeHash  = "96e8ac4277198ff8b6f785478aa9a39f403cb768dd02cbee326c3e7da348845f"

	DefaultRateLimitPerSecond = 2
	DefaultTxTimeout          = 5 * time.Minute
	DefaultGasPriceRefresh    = 10 * time.Second
	DefaultLogLevel           = "info"

	EnvPrivateWalletKey = "PRIVATE_WALLET_KEY"
	EnvRPC              = "JSON_RPC_ENDPOINT_URL"
)

// decimalValue accepts TOML strings, integers and floats. Floats go through
// their shortest decimal representation.
type decimalValue struct {
	decimal.NullDecimal
}

func (v *decimalValue) UnmarshalTOML(data interface{}) error {
	switch x := data.(type) {
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			v.NullDecimal = decimal.NullDecimal{}
			return nil
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return err
		}
		v.NullDecimal = decimal.NewNullDecimal(d)
	case int64:
		v.NullDecimal = decimal.NewNullDecimal(decimal.NewFromInt(x))
	case float64:
		d, err := decimal.NewFromString(strconv.FormatFloat(x, 'f', -1, 64))
		if err != nil {
			return err
		}
		v.NullDecimal = decimal.NewNullDecimal(d)
	default:
		return fmt.Errorf("expected a decimal, got %T", data)
	}
	return nil
}

type file struct {
	TokenQuantityToUse        decimalValue `toml:"token-quantity-to-use"`
	ComparatorQuantityToUse   decimalValue `toml:"comparator-quantity-to-use"`
	PingIntervalMs            int64        `toml:"ping-interval-ms"`
	NegativeSupplySellTrigger decimalValue `toml:"negative-supply-sell-trigger"`
	NegativeSupplyBuyTrigger  decimalValue `toml:"negative-supply-buy-trigger"`
	PriceFallPercentTrigger   decimalValue `toml:"price-fall-percent-trigger"`
	SlippagePercent           decimalValue `toml:"slippage-percent"`
	PrivateWalletKey          string       `toml:"private-wallet-key"`
	JSONRPCEndpointURL        string       `toml:"json-rpc-endpoint-url"`

	TokenAddress           string `toml:"token-address"`
	TokenDecimals          *int   `toml:"token-decimals"`
	ComparatorAddress      string `toml:"comparator-address"`
	NegativeSupplyContract string `toml:"negative-supply-contract"`
	RouterAddress          string `toml:"router-address"`
	PairInitCodeHash       string `toml:"pair-init-code-hash"`
	RateLimitPerSecond     int    `toml:"rate-limit-per-second"`
	TxTimeoutSeconds       int    `toml:"tx-timeout-seconds"`
	GasPriceRefreshSeconds int    `toml:"gas-price-refresh-seconds"`

	LogLevel             string `toml:"log-level"`
	MetricsListenAddress string `toml:"metrics-listen-address"`
	JournalPath          string `toml:"journal-path"`
}

// LoadEnv reads .env from the working directory when present.
func LoadEnv() error {
	if err := godotenv.Load(); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// Load decodes path, applies defaults and environment overrides, and
// validates the result. Unknown keys are reported to logger.
func Load(path string, logger *zap.Logger) (*types.Config, error) {
	var f file
	meta, err := toml.DecodeFile(path, &f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if logger != nil {
		undecoded := meta.Undecoded()
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		for _, k := range keys {
			logger.Warn("unknown config key", zap.String("key", k), zap.String("file", path))
		}
	}

	cfg := f.toConfig()
	applyEnv(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	if err := f.required(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (f *file) toConfig() *types.Config {
	cfg := &types.Config{
		TokenQuantityToUse:        f.TokenQuantityToUse.NullDecimal,
		ComparatorQuantityToUse:   f.ComparatorQuantityToUse.NullDecimal,
		PingInterval:              time.Duration(f.PingIntervalMs) * time.Millisecond,
		NegativeSupplySellTrigger: f.NegativeSupplySellTrigger.Decimal,
		NegativeSupplyBuyTrigger:  f.NegativeSupplyBuyTrigger.Decimal,
		PriceFallPercentTrigger:   f.PriceFallPercentTrigger.Decimal,
		SlippagePercent:           f.SlippagePercent.Decimal,
		PrivateWalletKey:          strings.TrimSpace(f.PrivateWalletKey),
		RPC:                       strings.TrimSpace(f.JSONRPCEndpointURL),

		TokenAddress:           firstNonEmpty(f.TokenAddress, DefaultTokenAddress),
		TokenDecimals:          DefaultTokenDecimals,
		ComparatorAddress:      firstNonEmpty(f.ComparatorAddress, DefaultComparatorAddress),
		NegativeSupplyContract: f.NegativeSupplyContract,
		Router:                 firstNonEmpty(f.RouterAddress, DefaultRouter),
		PairInitCodeHash:       strings.TrimPrefix(firstNonEmpty(f.PairInitCodeHash, DefaultPairInitCodeHash), "0x"),
		RateLimitPerSecond:     DefaultRateLimitPerSecond,
		TxTimeout:              DefaultTxTimeout,
		GasPriceRefresh:        DefaultGasPriceRefresh,

		LogLevel:             firstNonEmpty(f.LogLevel, DefaultLogLevel),
		MetricsListenAddress: strings.TrimSpace(f.MetricsListenAddress),
		JournalPath:          strings.TrimSpace(f.JournalPath),
	}
	if f.TokenDecimals != nil {
		cfg.TokenDecimals = uint8(*f.TokenDecimals)
	}
	if cfg.NegativeSupplyContract == "" {
		cfg.NegativeSupplyContract = cfg.TokenAddress
	}
	if f.RateLimitPerSecond != 0 {
		cfg.RateLimitPerSecond = f.RateLimitPerSecond
	}
	if f.TxTimeoutSeconds != 0 {
		cfg.TxTimeout = time.Duration(f.TxTimeoutSeconds) * time.Second
	}
	if f.GasPriceRefreshSeconds != 0 {
		cfg.GasPriceRefresh = time.Duration(f.GasPriceRefreshSeconds) * time.Second
	}
	return cfg
}

// required reports options that have no sensible default.
func (f *file) required() error {
	for name, v := range map[string]decimalValue{
		"negative-supply-sell-trigger": f.NegativeSupplySellTrigger,
		"negative-supply-buy-trigger":  f.NegativeSupplyBuyTrigger,
		"price-fall-percent-trigger":   f.PriceFallPercentTrigger,
		"slippage-percent":             f.SlippagePercent,
	} {
		if !v.Valid {
			return invalid(name + " is required")
		}
	}
	if f.TokenDecimals != nil && (*f.TokenDecimals < 0 || *f.TokenDecimals > 77) {
		return invalid("token-decimals must be within [0, 77]")
	}
	return nil
}

func applyEnv(cfg *types.Config) {
	if v := strings.TrimSpace(os.Getenv(EnvPrivateWalletKey)); v != "" {
		cfg.PrivateWalletKey = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvRPC)); v != "" {
		cfg.RPC = v
	}
}

var hundred = decimal.NewFromInt(100)

func Validate(cfg *types.Config) error {
	if !cfg.TokenQuantityToUse.Valid && !cfg.ComparatorQuantityToUse.Valid {
		return types.ErrQuantityNotConfigured
	}
	if cfg.ComparatorQuantityToUse.Valid && !cfg.ComparatorQuantityToUse.Decimal.IsPositive() {
		return invalid("comparator-quantity-to-use must be positive")
	}
	if !cfg.ComparatorQuantityToUse.Valid && !cfg.TokenQuantityToUse.Decimal.IsPositive() {
		return invalid("token-quantity-to-use must be positive")
	}
	if cfg.PingInterval < time.Millisecond {
		return invalid("ping-interval-ms must be >= 1")
	}
	if cfg.PriceFallPercentTrigger.IsNegative() || cfg.PriceFallPercentTrigger.GreaterThan(hundred) {
		return invalid("price-fall-percent-trigger must be within [0, 100]")
	}
	if cfg.SlippagePercent.IsNegative() || cfg.SlippagePercent.GreaterThanOrEqual(hundred) {
		return invalid("slippage-percent must be within [0, 100)")
	}
	if cfg.PrivateWalletKey == "" {
		return invalid("private-wallet-key is required")
	}
	if !strings.HasPrefix(cfg.RPC, "http") && !strings.HasPrefix(cfg.RPC, "ws") {
		return invalid(fmt.Sprintf("json-rpc-endpoint-url must be http(s):// or ws(s)://, got %q", cfg.RPC))
	}
	for name, addr := range map[string]string{
		"token-address":            cfg.TokenAddress,
		"comparator-address":       cfg.ComparatorAddress,
		"negative-supply-contract": cfg.NegativeSupplyContract,
		"router-address":           cfg.Router,
	} {
		if !common.IsHexAddress(addr) {
			return invalid(fmt.Sprintf("%s is not an address: %q", name, addr))
		}
	}
	if b, err := hex.DecodeString(cfg.PairInitCodeHash); err != nil || len(b) != 32 {
		return invalid("pair-init-code-hash must be 32 hex-encoded bytes")
	}
	if cfg.RateLimitPerSecond <= 0 {
		return invalid("rate-limit-per-second must be positive")
	}
	if cfg.TxTimeout <= 0 || cfg.GasPriceRefresh <= 0 {
		return invalid("tx-timeout-seconds and gas-price-refresh-seconds must be positive")
	}
	return nil
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", types.ErrInvalidConfig, msg)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
