package evm

import (
	"context"
	"math/big"
	"testing"

	"github.com/meme-bots/lp-cycler/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderReserves(t *testing.T) {
	reserves := &reservesOutput{Reserve0: big.NewInt(100), Reserve1: big.NewInt(900)}

	s, err := orderReserves(reserves, big.NewInt(300), true)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100), s.TokenReserve)
	assert.Equal(t, big.NewInt(900), s.ComparatorReserve)
	assert.Equal(t, big.NewInt(300), s.TotalSupply)

	s, err = orderReserves(reserves, big.NewInt(300), false)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(900), s.TokenReserve)
	assert.Equal(t, big.NewInt(100), s.ComparatorReserve)
}

func TestOrderReserves_Empty(t *testing.T) {
	_, err := orderReserves(&reservesOutput{Reserve0: big.NewInt(0), Reserve1: big.NewInt(5)}, big.NewInt(1), true)
	assert.ErrorIs(t, err, types.ErrInvalidPool)

	_, err = orderReserves(&reservesOutput{}, big.NewInt(1), true)
	assert.ErrorIs(t, err, types.ErrInvalidPool)
}

func TestSpotPrice(t *testing.T) {
	// 2,000 tokens (9 decimals) against 50 USDC (6 decimals).
	s := &poolState{
		TokenReserve:      new(big.Int).Mul(big.NewInt(2000), big.NewInt(1_000_000_000)),
		ComparatorReserve: big.NewInt(50_000_000),
	}
	assert.True(t, spotPrice(s, 9, 6).Equal(decimal.RequireFromString("0.025")))
}

type foreignTracker struct{}

func (foreignTracker) TokenAddress() string      { return "" }
func (foreignTracker) ComparatorAddress() string { return "" }
func (foreignTracker) PairAddress() string       { return "" }
func (foreignTracker) GetNewPrice(context.Context) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func TestResolve(t *testing.T) {
	v := &EVM{}
	wallet := &types.Wallet{Address: "0x2c7536E3605D9C16a7a3D7b1898e529396a65c23"}

	_, _, err := v.resolve(foreignTracker{}, wallet)
	assert.ErrorIs(t, err, types.ErrInvalidPool)

	_, _, err = v.resolve(&Tracker{evm: &EVM{}}, wallet)
	assert.ErrorIs(t, err, types.ErrInvalidPool)

	own := &Tracker{evm: v}
	_, _, err = v.resolve(own, nil)
	assert.ErrorIs(t, err, types.ErrInvalidConfig)

	tr, owner, err := v.resolve(own, wallet)
	require.NoError(t, err)
	assert.Same(t, own, tr)
	assert.Equal(t, wallet.Address, owner.Hex())
}

func TestTrade_RejectsForeignTracker(t *testing.T) {
	v := &EVM{}
	wallet := &types.Wallet{Address: "0x2c7536E3605D9C16a7a3D7b1898e529396a65c23"}
	ctx := context.Background()

	_, err := v.AddLiquidity(ctx, &types.AddLiquidityRequest{Wallet: wallet, Tracker: foreignTracker{}})
	assert.ErrorIs(t, err, types.ErrInvalidPool)
	_, err = v.RemoveLiquidity(ctx, &types.RemoveLiquidityRequest{Wallet: wallet, Tracker: foreignTracker{}})
	assert.ErrorIs(t, err, types.ErrInvalidPool)
	_, err = v.SellExactTokens(ctx, &types.SellRequest{Wallet: wallet, Tracker: foreignTracker{}})
	assert.ErrorIs(t, err, types.ErrInvalidPool)
	_, err = v.BuyTokensWithExact(ctx, &types.BuyRequest{Wallet: wallet, Tracker: foreignTracker{}})
	assert.ErrorIs(t, err, types.ErrInvalidPool)
}

func TestTrade_RejectsEmptyQuantities(t *testing.T) {
	v := &EVM{}
	own := &Tracker{evm: v}
	wallet := &types.Wallet{Address: "0x2c7536E3605D9C16a7a3D7b1898e529396a65c23"}
	ctx := context.Background()

	_, err := v.RemoveLiquidity(ctx, &types.RemoveLiquidityRequest{Wallet: wallet, Tracker: own, PairQuantity: decimal.Zero})
	assert.ErrorIs(t, err, types.ErrInsufficientBalance)
	_, err = v.SellExactTokens(ctx, &types.SellRequest{Wallet: wallet, Tracker: own, ExactTokenQuantity: decimal.Zero})
	assert.ErrorIs(t, err, types.ErrInsufficientBalance)
	_, err = v.BuyTokensWithExact(ctx, &types.BuyRequest{Wallet: wallet, Tracker: own, ExactComparatorQuantity: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, types.ErrInsufficientBalance)
}
