package utils

import (
	"math/big"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Quote returns the amount of B matching amountA at the current reserve ratio.
func Quote(amountA, reserveA, reserveB *big.Int) *big.Int {
	if reserveA.Sign() == 0 {
		return big.NewInt(0)
	}
	return new(big.Int).Div(new(big.Int).Mul(amountA, reserveB), reserveA)
}

// ApplySlippage returns the minimum acceptable amount, rounded down.
func ApplySlippage(amount *big.Int, slippagePercent decimal.Decimal) *big.Int {
	keep := hundred.Sub(slippagePercent)
	if keep.Sign() <= 0 {
		return big.NewInt(0)
	}
	return decimal.NewFromBigInt(amount, 0).Mul(keep).Div(hundred).Floor().BigInt()
}

// ShareOf returns the part of reserve owned by liquidity out of totalSupply.
func ShareOf(liquidity, reserve, totalSupply *big.Int) *big.Int {
	if totalSupply.Sign() == 0 {
		return big.NewInt(0)
	}
	return new(big.Int).Div(new(big.Int).Mul(liquidity, reserve), totalSupply)
}
