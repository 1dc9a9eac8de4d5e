package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type (
	Config struct {
		TokenQuantityToUse      decimal.NullDecimal
		ComparatorQuantityToUse decimal.NullDecimal

		PingInterval              time.Duration
		NegativeSupplySellTrigger decimal.Decimal
		NegativeSupplyBuyTrigger  decimal.Decimal
		PriceFallPercentTrigger   decimal.Decimal
		SlippagePercent           decimal.Decimal

		PrivateWalletKey string
		RPC              string

		TokenAddress           string
		TokenDecimals          uint8
		ComparatorAddress      string
		NegativeSupplyContract string // defaults to TokenAddress

		Router             string
		PairInitCodeHash   string
		RateLimitPerSecond int
		TxTimeout          time.Duration
		GasPriceRefresh    time.Duration

		LogLevel             string
		MetricsListenAddress string
		JournalPath          string
	}
)
