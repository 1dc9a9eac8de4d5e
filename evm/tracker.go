package evm

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/forta-network/go-multicall"
	"github.com/meme-bots/lp-cycler/types"
	"github.com/meme-bots/lp-cycler/utils"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type (
	reservesOutput struct {
		Reserve0           *big.Int
		Reserve1           *big.Int
		BlockTimestampLast uint32
	}

	balanceOutput struct {
		Balance *big.Int
	}

	// Tracker quotes one token/comparator pool.
	Tracker struct {
		evm           *EVM
		token         common.Address
		comparator    common.Address
		pair          common.Address
		pairContract  *multicall.Contract
		tokenIsToken0 bool
	}

	poolState struct {
		TokenReserve      *big.Int
		ComparatorReserve *big.Int
		TotalSupply       *big.Int
	}
)

var _ types.Tracker = (*Tracker)(nil)

func (v *EVM) CreateTracker(ctx context.Context, req *types.CreateTrackerRequest) (types.Tracker, error) {
	if !common.IsHexAddress(req.Token) || !common.IsHexAddress(req.Comparator) {
		return nil, fmt.Errorf("%w: bad token or comparator address", types.ErrInvalidPool)
	}
	token := common.HexToAddress(req.Token)
	comparator := common.HexToAddress(req.Comparator)
	if token == comparator {
		return nil, fmt.Errorf("%w: token and comparator are the same", types.ErrInvalidPool)
	}

	pair, err := CalculatePoolAddress(token, comparator, v.factory, v.cfg.PairInitCodeHash)
	if err != nil {
		return nil, err
	}
	pairContract, err := multicall.NewContract(PairABI, pair.Hex())
	if err != nil {
		return nil, err
	}

	tokenDecimals, err := v.Decimals(ctx, token)
	if err != nil {
		return nil, err
	}
	if tokenDecimals != v.cfg.TokenDecimals && token == common.HexToAddress(v.cfg.TokenAddress) {
		v.logger.Warn("token decimals differ from config, using on-chain value",
			zap.Uint8("configured", v.cfg.TokenDecimals),
			zap.Uint8("on_chain", tokenDecimals),
		)
	}
	if _, err := v.Decimals(ctx, comparator); err != nil {
		return nil, err
	}

	token0, _ := sortAddresses(token, comparator)
	tracker := &Tracker{
		evm:           v,
		token:         token,
		comparator:    comparator,
		pair:          pair,
		pairContract:  pairContract,
		tokenIsToken0: token0 == token,
	}

	if _, err := tracker.state(ctx); err != nil {
		return nil, fmt.Errorf("pair %s: %w", pair.Hex(), err)
	}

	v.logger.Info("tracking pool",
		zap.String("pair", pair.Hex()),
		zap.String("token", token.Hex()),
		zap.String("comparator", comparator.Hex()),
	)
	return tracker, nil
}

func (tr *Tracker) TokenAddress() string {
	return tr.token.Hex()
}

func (tr *Tracker) ComparatorAddress() string {
	return tr.comparator.Hex()
}

func (tr *Tracker) PairAddress() string {
	return tr.pair.Hex()
}

// GetNewPrice returns the spot price of one token in comparator units. It
// always reads fresh reserves.
func (tr *Tracker) GetNewPrice(ctx context.Context) (decimal.Decimal, error) {
	tokenDecimals, comparatorDecimals, err := tr.decimals(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	s, err := tr.state(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return spotPrice(s, tokenDecimals, comparatorDecimals), nil
}

// decimals goes through the gateway's metadata cache.
func (tr *Tracker) decimals(ctx context.Context) (token, comparator uint8, err error) {
	if token, err = tr.evm.Decimals(ctx, tr.token); err != nil {
		return 0, 0, err
	}
	if comparator, err = tr.evm.Decimals(ctx, tr.comparator); err != nil {
		return 0, 0, err
	}
	return token, comparator, nil
}

func spotPrice(s *poolState, tokenDecimals, comparatorDecimals uint8) decimal.Decimal {
	tokenReserve := utils.MakeRational(s.TokenReserve, tokenDecimals)
	comparatorReserve := utils.MakeRational(s.ComparatorReserve, comparatorDecimals)
	return comparatorReserve.Div(tokenReserve)
}

// state reads reserves and LP supply in one multicall round trip.
func (tr *Tracker) state(ctx context.Context) (*poolState, error) {
	calls, err := tr.evm.multicall.Call(
		&bind.CallOpts{Context: ctx},
		tr.pairContract.NewCall( // 0
			new(reservesOutput),
			"getReserves",
		),
		tr.pairContract.NewCall( // 1
			new(balanceOutput),
			"totalSupply",
		),
	)
	if err != nil {
		return nil, err
	}

	reserves := calls[0].Outputs.(*reservesOutput)
	totalSupply := calls[1].Outputs.(*balanceOutput).Balance
	return orderReserves(reserves, totalSupply, tr.tokenIsToken0)
}

func orderReserves(reserves *reservesOutput, totalSupply *big.Int, tokenIsToken0 bool) (*poolState, error) {
	if reserves.Reserve0 == nil || reserves.Reserve1 == nil ||
		reserves.Reserve0.Sign() == 0 || reserves.Reserve1.Sign() == 0 {
		return nil, fmt.Errorf("%w: no reserves", types.ErrInvalidPool)
	}
	s := &poolState{
		TokenReserve:      reserves.Reserve1,
		ComparatorReserve: reserves.Reserve0,
		TotalSupply:       totalSupply,
	}
	if tokenIsToken0 {
		s.TokenReserve, s.ComparatorReserve = reserves.Reserve0, reserves.Reserve1
	}
	return s, nil
}

// resolve checks that tr was created by v and returns the wallet address.
func (v *EVM) resolve(tr types.Tracker, wallet *types.Wallet) (*Tracker, common.Address, error) {
	tracker, ok := tr.(*Tracker)
	if !ok || tracker == nil || tracker.evm != v {
		return nil, common.Address{}, fmt.Errorf("%w: tracker was not created by this gateway", types.ErrInvalidPool)
	}
	if wallet == nil || !common.IsHexAddress(wallet.Address) {
		return nil, common.Address{}, fmt.Errorf("%w: wallet has no address", types.ErrInvalidConfig)
	}
	return tracker, common.HexToAddress(wallet.Address), nil
}
