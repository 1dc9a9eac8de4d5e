package evm

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	t "github.com/ethereum/go-ethereum/core/types"
	"github.com/meme-bots/lp-cycler/types"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

var unlimitedApproveAmount, _ = new(big.Int).SetString("115792089237316195423570985008687907853269984665640564039457584007913129639935", 10)

type transferEvent struct {
	From  common.Address
	To    common.Address
	Value *big.Int
}

func (v *EVM) erc20(token common.Address) *bind.BoundContract {
	return bind.NewBoundContract(token, erc20ABI, v.client, v.client, v.client)
}

func callBig(ctx context.Context, contract *bind.BoundContract, method string, args ...interface{}) (*big.Int, error) {
	var out []interface{}
	if err := contract.Call(&bind.CallOpts{Context: ctx}, &out, method, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("%s: %w", method, types.ErrUnexpectedOutput)
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

func (v *EVM) balanceOf(ctx context.Context, token, owner common.Address) (*big.Int, error) {
	return callBig(ctx, v.erc20(token), "balanceOf", owner)
}

// Decimals reads decimals() once per token; the value is immutable.
func (v *EVM) Decimals(ctx context.Context, token common.Address) (uint8, error) {
	key := "decimals:" + token.Hex()
	if b, err := v.cache.Get(ctx, key); err == nil && len(b) == 1 {
		return b[0], nil
	}

	var out []interface{}
	if err := v.erc20(token).Call(&bind.CallOpts{Context: ctx}, &out, "decimals"); err != nil {
		return 0, fmt.Errorf("token %s decimals(): %w", token.Hex(), err)
	}
	if len(out) != 1 {
		return 0, fmt.Errorf("token %s decimals(): %w", token.Hex(), types.ErrUnexpectedOutput)
	}
	decimals := *abi.ConvertType(out[0], new(uint8)).(*uint8)

	if err := v.cache.Set(ctx, key, []byte{decimals}); err != nil {
		v.logger.Debug("cache decimals", zap.String("token", token.Hex()), zap.Error(err))
	}
	return decimals, nil
}

// ensureAllowance approves spender for an unlimited amount when the current
// allowance does not cover amount, and waits for the approval to be mined.
func (v *EVM) ensureAllowance(ctx context.Context, wallet *types.Wallet, token, spender common.Address, amount *big.Int) error {
	contract := v.erc20(token)
	owner := common.HexToAddress(wallet.Address)

	allowance, err := callBig(ctx, contract, "allowance", owner, spender)
	if err != nil {
		return fmt.Errorf("token %s: %w", token.Hex(), err)
	}
	if allowance.Cmp(amount) >= 0 {
		return nil
	}

	opts, err := v.transactOpts(ctx, wallet)
	if err != nil {
		return err
	}
	tx, err := contract.Transact(opts, "approve", spender, unlimitedApproveAmount)
	if err != nil {
		return fmt.Errorf("approve %s for %s: %w", token.Hex(), spender.Hex(), err)
	}
	_, err = v.waitMined(ctx, tx, "approve")
	return err
}

// sumTransfers adds up the Transfer events emitted by token in receipt that
// satisfy match.
func sumTransfers(receipt *t.Receipt, token common.Address, match func(e *transferEvent) bool) (*big.Int, error) {
	contract := bind.NewBoundContract(token, erc20ABI, nil, nil, nil)
	logs := lo.Filter(receipt.Logs, func(l *t.Log, _ int) bool {
		return l.Address == token && len(l.Topics) == 3 && l.Topics[0] == transferTopic
	})

	total := big.NewInt(0)
	found := false
	for _, l := range logs {
		var e transferEvent
		if err := contract.UnpackLog(&e, "Transfer", *l); err != nil {
			return nil, err
		}
		if match(&e) {
			total.Add(total, e.Value)
			found = true
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: token %s in %s", types.ErrTransferNotFound, token.Hex(), receipt.TxHash.Hex())
	}
	return total, nil
}

func sentTo(to common.Address) func(e *transferEvent) bool {
	return func(e *transferEvent) bool { return e.To == to }
}

func sentFrom(from common.Address) func(e *transferEvent) bool {
	return func(e *transferEvent) bool { return e.From == from }
}
