// Package oracle reads the monitored contract's negative supply metric.
package oracle

import (
	"context"
	"fmt"
	"math/big"

	"github.com/meme-bots/lp-cycler/types"
	"github.com/meme-bots/lp-cycler/utils"
	"github.com/shopspring/decimal"
)

const negativeSupplySignature = "negativeSupply()"

type SupplyOracle struct {
	caller   types.ContractCaller
	contract string
	decimals uint8
}

func NewSupplyOracle(caller types.ContractCaller, contract string, decimals uint8) *SupplyOracle {
	return &SupplyOracle{
		caller:   caller,
		contract: contract,
		decimals: decimals,
	}
}

// GetNegativeSupply performs one uncached read of negativeSupply() and scales
// the result by the token decimals.
func (o *SupplyOracle) GetNegativeSupply(ctx context.Context) (decimal.Decimal, error) {
	out, err := o.caller.Call(ctx, &types.CallRequest{
		Contract:  o.contract,
		Signature: negativeSupplySignature,
		Outputs:   []string{"uint256"},
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("negativeSupply(): %w", err)
	}
	if len(out) != 1 {
		return decimal.Zero, fmt.Errorf("negativeSupply() returned %d values: %w", len(out), types.ErrUnexpectedOutput)
	}
	raw, ok := out[0].(*big.Int)
	if !ok || raw == nil {
		return decimal.Zero, fmt.Errorf("negativeSupply() returned %T: %w", out[0], types.ErrUnexpectedOutput)
	}
	return utils.MakeRational(raw, o.decimals), nil
}
