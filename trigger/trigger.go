// Package trigger holds the predicates that gate the strategy's await phases.
package trigger

import (
	"context"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// PriceSource yields the pool's current token price in comparator units.
type PriceSource func(ctx context.Context) (decimal.Decimal, error)

func SellTriggerMet(currentSupply, sellThreshold decimal.Decimal) bool {
	return currentSupply.GreaterThan(sellThreshold)
}

func BuyTriggerMet(currentSupply, buyThreshold, currentPrice, targetPrice decimal.Decimal) bool {
	return currentSupply.LessThan(buyThreshold) && currentPrice.LessThan(targetPrice)
}

// EvaluateBuy is BuyTriggerMet with the price fetched lazily: price is only
// queried, once, after the supply bound already holds.
func EvaluateBuy(ctx context.Context, currentSupply, buyThreshold, targetPrice decimal.Decimal, price PriceSource) (bool, decimal.Decimal, error) {
	if !currentSupply.LessThan(buyThreshold) {
		return false, decimal.Zero, nil
	}
	p, err := price(ctx)
	if err != nil {
		return false, decimal.Zero, err
	}
	return BuyTriggerMet(currentSupply, buyThreshold, p, targetPrice), p, nil
}

// TargetPrice is executionPrice * (1 - fallPercent/100), exact to every digit.
func TargetPrice(executionPrice, fallPercent decimal.Decimal) decimal.Decimal {
	return executionPrice.Mul(hundred.Sub(fallPercent)).Shift(-2)
}
