package types

import (
	"context"
	"crypto/ecdsa"

	"github.com/shopspring/decimal"
)

type (
	Wallet struct {
		Address    string
		PrivateKey *ecdsa.PrivateKey
	}

	CallRequest struct {
		Contract  string
		Signature string // canonical form, e.g. "balanceOf(address)"
		Args      []interface{}
		Outputs   []string // ABI type names, e.g. "uint256"
	}

	CreateTrackerRequest struct {
		Token      string
		Comparator string
	}

	AddLiquidityRequest struct {
		Wallet          *Wallet
		Tracker         Tracker
		TokenQuantity   decimal.Decimal
		SlippagePercent decimal.Decimal
	}

	AddLiquidityResponse struct {
		TxHash                      string
		PairQuantityReceived        decimal.Decimal
		TokenQuantityDeposited      decimal.Decimal
		ComparatorQuantityDeposited decimal.Decimal
	}

	RemoveLiquidityRequest struct {
		Wallet          *Wallet
		Tracker         Tracker
		PairQuantity    decimal.Decimal
		SlippagePercent decimal.Decimal
	}

	RemoveLiquidityResponse struct {
		TxHash                     string
		TokenQuantityReceived      decimal.Decimal
		ComparatorQuantityReceived decimal.Decimal
	}

	SellRequest struct {
		Wallet             *Wallet
		Tracker            Tracker
		ExactTokenQuantity decimal.Decimal
		SlippagePercent    decimal.Decimal
	}

	SellResponse struct {
		TxHash                      string
		ComparatorQuantity          decimal.Decimal
		AverageTokenPriceComparator decimal.Decimal
	}

	BuyRequest struct {
		Wallet                  *Wallet
		Tracker                 Tracker
		ExactComparatorQuantity decimal.Decimal
		SlippagePercent         decimal.Decimal
	}

	BuyResponse struct {
		TxHash                      string
		TokenQuantity               decimal.Decimal
		AverageTokenPriceComparator decimal.Decimal
	}

	// Tracker is bound to one pool and quotes the token in comparator units.
	Tracker interface {
		TokenAddress() string
		ComparatorAddress() string
		PairAddress() string
		GetNewPrice(ctx context.Context) (decimal.Decimal, error)
	}
)
