package evm

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/meme-bots/lp-cycler/types"
	"github.com/meme-bots/lp-cycler/utils"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AddLiquidity deposits TokenQuantity plus the comparator amount matching the
// pool ratio. When the comparator balance is short, both sides are scaled
// down to what the balance covers.
func (v *EVM) AddLiquidity(ctx context.Context, req *types.AddLiquidityRequest) (*types.AddLiquidityResponse, error) {
	tr, owner, err := v.resolve(req.Tracker, req.Wallet)
	if err != nil {
		return nil, err
	}
	tokenDecimals, comparatorDecimals, err := tr.decimals(ctx)
	if err != nil {
		return nil, err
	}

	state, err := tr.state(ctx)
	if err != nil {
		return nil, err
	}
	amountToken := utils.ToRaw(req.TokenQuantity, tokenDecimals)
	amountComparator := utils.Quote(amountToken, state.TokenReserve, state.ComparatorReserve)

	balance, err := v.balanceOf(ctx, tr.comparator, owner)
	if err != nil {
		return nil, err
	}
	if amountComparator.Cmp(balance) > 0 {
		v.logger.Warn("comparator balance short, scaling deposit down",
			zap.String("wanted", utils.MakeRational(amountComparator, comparatorDecimals).String()),
			zap.String("balance", utils.MakeRational(balance, comparatorDecimals).String()),
		)
		amountComparator = balance
		amountToken = utils.Quote(balance, state.ComparatorReserve, state.TokenReserve)
	}
	if amountToken.Sign() <= 0 || amountComparator.Sign() <= 0 {
		return nil, fmt.Errorf("%w: nothing to deposit", types.ErrInsufficientBalance)
	}

	routerAddr := common.HexToAddress(v.cfg.Router)
	if err := v.ensureAllowance(ctx, req.Wallet, tr.token, routerAddr, amountToken); err != nil {
		return nil, err
	}
	if err := v.ensureAllowance(ctx, req.Wallet, tr.comparator, routerAddr, amountComparator); err != nil {
		return nil, err
	}

	opts, err := v.transactOpts(ctx, req.Wallet)
	if err != nil {
		return nil, err
	}
	tx, err := v.router.Transact(opts, "addLiquidity",
		tr.token, tr.comparator,
		amountToken, amountComparator,
		utils.ApplySlippage(amountToken, req.SlippagePercent),
		utils.ApplySlippage(amountComparator, req.SlippagePercent),
		owner, v.deadline(),
	)
	if err != nil {
		return nil, fmt.Errorf("addLiquidity: %w", err)
	}
	receipt, err := v.waitMined(ctx, tx, "add_liquidity")
	if err != nil {
		return nil, err
	}

	liquidity, err := sumTransfers(receipt, tr.pair, sentTo(owner))
	if err != nil {
		return nil, err
	}
	tokenIn, err := sumTransfers(receipt, tr.token, sentFrom(owner))
	if err != nil {
		return nil, err
	}
	comparatorIn, err := sumTransfers(receipt, tr.comparator, sentFrom(owner))
	if err != nil {
		return nil, err
	}

	return &types.AddLiquidityResponse{
		TxHash:                      tx.Hash().Hex(),
		PairQuantityReceived:        utils.MakeRational(liquidity, types.PairDecimals),
		TokenQuantityDeposited:      utils.MakeRational(tokenIn, tokenDecimals),
		ComparatorQuantityDeposited: utils.MakeRational(comparatorIn, comparatorDecimals),
	}, nil
}

// RemoveLiquidity burns PairQuantity LP tokens. Minimum outputs are the
// wallet's current share of the reserves less slippage.
func (v *EVM) RemoveLiquidity(ctx context.Context, req *types.RemoveLiquidityRequest) (*types.RemoveLiquidityResponse, error) {
	tr, owner, err := v.resolve(req.Tracker, req.Wallet)
	if err != nil {
		return nil, err
	}

	liquidity := utils.ToRaw(req.PairQuantity, types.PairDecimals)
	if liquidity.Sign() <= 0 {
		return nil, fmt.Errorf("%w: nothing to withdraw", types.ErrInsufficientBalance)
	}
	tokenDecimals, comparatorDecimals, err := tr.decimals(ctx)
	if err != nil {
		return nil, err
	}
	state, err := tr.state(ctx)
	if err != nil {
		return nil, err
	}
	minToken := utils.ApplySlippage(utils.ShareOf(liquidity, state.TokenReserve, state.TotalSupply), req.SlippagePercent)
	minComparator := utils.ApplySlippage(utils.ShareOf(liquidity, state.ComparatorReserve, state.TotalSupply), req.SlippagePercent)

	routerAddr := common.HexToAddress(v.cfg.Router)
	if err := v.ensureAllowance(ctx, req.Wallet, tr.pair, routerAddr, liquidity); err != nil {
		return nil, err
	}

	opts, err := v.transactOpts(ctx, req.Wallet)
	if err != nil {
		return nil, err
	}
	tx, err := v.router.Transact(opts, "removeLiquidity",
		tr.token, tr.comparator,
		liquidity, minToken, minComparator,
		owner, v.deadline(),
	)
	if err != nil {
		return nil, fmt.Errorf("removeLiquidity: %w", err)
	}
	receipt, err := v.waitMined(ctx, tx, "remove_liquidity")
	if err != nil {
		return nil, err
	}

	tokenOut, err := sumTransfers(receipt, tr.token, sentTo(owner))
	if err != nil {
		return nil, err
	}
	comparatorOut, err := sumTransfers(receipt, tr.comparator, sentTo(owner))
	if err != nil {
		return nil, err
	}

	return &types.RemoveLiquidityResponse{
		TxHash:                     tx.Hash().Hex(),
		TokenQuantityReceived:      utils.MakeRational(tokenOut, tokenDecimals),
		ComparatorQuantityReceived: utils.MakeRational(comparatorOut, comparatorDecimals),
	}, nil
}

func (v *EVM) SellExactTokens(ctx context.Context, req *types.SellRequest) (*types.SellResponse, error) {
	tr, _, err := v.resolve(req.Tracker, req.Wallet)
	if err != nil {
		return nil, err
	}
	if !req.ExactTokenQuantity.IsPositive() {
		return nil, fmt.Errorf("%w: nothing to sell", types.ErrInsufficientBalance)
	}
	tokenDecimals, comparatorDecimals, err := tr.decimals(ctx)
	if err != nil {
		return nil, err
	}

	txHash, received, err := v.swapExact(ctx, req.Wallet, tr.token, tr.comparator,
		utils.ToRaw(req.ExactTokenQuantity, tokenDecimals), req.SlippagePercent)
	if err != nil {
		return nil, err
	}

	comparatorQuantity := utils.MakeRational(received, comparatorDecimals)
	return &types.SellResponse{
		TxHash:                      txHash,
		ComparatorQuantity:          comparatorQuantity,
		AverageTokenPriceComparator: comparatorQuantity.Div(req.ExactTokenQuantity),
	}, nil
}

func (v *EVM) BuyTokensWithExact(ctx context.Context, req *types.BuyRequest) (*types.BuyResponse, error) {
	tr, _, err := v.resolve(req.Tracker, req.Wallet)
	if err != nil {
		return nil, err
	}
	if !req.ExactComparatorQuantity.IsPositive() {
		return nil, fmt.Errorf("%w: nothing to spend", types.ErrInsufficientBalance)
	}
	tokenDecimals, comparatorDecimals, err := tr.decimals(ctx)
	if err != nil {
		return nil, err
	}

	txHash, received, err := v.swapExact(ctx, req.Wallet, tr.comparator, tr.token,
		utils.ToRaw(req.ExactComparatorQuantity, comparatorDecimals), req.SlippagePercent)
	if err != nil {
		return nil, err
	}

	tokenQuantity := utils.MakeRational(received, tokenDecimals)
	if !tokenQuantity.IsPositive() {
		return nil, fmt.Errorf("%w: bought zero tokens in %s", types.ErrUnexpectedOutput, txHash)
	}
	return &types.BuyResponse{
		TxHash:                      txHash,
		TokenQuantity:               tokenQuantity,
		AverageTokenPriceComparator: req.ExactComparatorQuantity.Div(tokenQuantity),
	}, nil
}

// swapExact spends exactly amountIn of in for as much of out as the router
// gives, accepting no less than the quoted amount less slippage. The received
// amount is read from the receipt so fee-on-transfer tokens are measured
// correctly.
func (v *EVM) swapExact(
	ctx context.Context,
	wallet *types.Wallet,
	in, out common.Address,
	amountIn *big.Int,
	slippage decimal.Decimal,
) (string, *big.Int, error) {
	owner := common.HexToAddress(wallet.Address)
	path := []common.Address{in, out}

	quoted, err := v.amountOut(ctx, amountIn, path)
	if err != nil {
		return "", nil, err
	}
	minOut := utils.ApplySlippage(quoted, slippage)

	routerAddr := common.HexToAddress(v.cfg.Router)
	if err := v.ensureAllowance(ctx, wallet, in, routerAddr, amountIn); err != nil {
		return "", nil, err
	}

	opts, err := v.transactOpts(ctx, wallet)
	if err != nil {
		return "", nil, err
	}
	tx, err := v.router.Transact(opts, "swapExactTokensForTokensSupportingFeeOnTransferTokens",
		amountIn, minOut, path, owner, v.deadline())
	if err != nil {
		return "", nil, fmt.Errorf("swap: %w", err)
	}
	receipt, err := v.waitMined(ctx, tx, "swap")
	if err != nil {
		return "", nil, err
	}

	got, err := sumTransfers(receipt, out, sentTo(owner))
	if err != nil {
		return "", nil, err
	}
	return tx.Hash().Hex(), got, nil
}

func (v *EVM) amountOut(ctx context.Context, amountIn *big.Int, path []common.Address) (*big.Int, error) {
	var out []interface{}
	if err := v.router.Call(&bind.CallOpts{Context: ctx}, &out, "getAmountsOut", amountIn, path); err != nil {
		return nil, fmt.Errorf("getAmountsOut: %w", err)
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("getAmountsOut: %w", types.ErrUnexpectedOutput)
	}
	amounts := *abi.ConvertType(out[0], new([]*big.Int)).(*[]*big.Int)
	if len(amounts) != len(path) {
		return nil, fmt.Errorf("getAmountsOut: %w", types.ErrUnexpectedOutput)
	}
	return amounts[len(amounts)-1], nil
}
