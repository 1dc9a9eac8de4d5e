// Package strategy runs the liquidity/sell/buy-back cycle for one token pair.
//
// A cycle moves through six phases in fixed order:
//
//	add_liquidity -> await_sell_trigger -> remove_liquidity -> sell -> await_buy_trigger -> buy_back
//
// and then starts over. The two await phases poll the negative supply oracle
// (and, for the buy trigger, the pool price) at the configured interval with no
// upper bound on the wait. Gateway failures are never retried; the error is
// returned and the process is expected to exit.
package strategy

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/meme-bots/lp-cycler/journal"
	"github.com/meme-bots/lp-cycler/observability"
	"github.com/meme-bots/lp-cycler/trigger"
	"github.com/meme-bots/lp-cycler/types"
	"github.com/meme-bots/lp-cycler/utils"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type SupplySource interface {
	GetNegativeSupply(ctx context.Context) (decimal.Decimal, error)
}

type (
	Strategy struct {
		cfg     *types.Config
		trader  types.Trader
		oracle  SupplySource
		tracker types.Tracker
		wallet  *types.Wallet
		logger  *zap.Logger
		metrics *observability.Metrics
		journal *journal.Writer

		cycles uint64
	}

	Option func(*Strategy)

	// cycle carries the quantities one phase hands to the next. It is
	// discarded when the cycle ends.
	cycle struct {
		id     string
		number uint64
		phase  types.Phase

		pairQuantity       decimal.Decimal
		tokenQuantity      decimal.Decimal
		comparatorQuantity decimal.Decimal
		executionPrice     decimal.Decimal
		targetPrice        decimal.Decimal
		sellSupply         decimal.Decimal
		buySupply          decimal.Decimal
		buyPrice           decimal.Decimal
	}
)

func WithMetrics(m *observability.Metrics) Option {
	return func(s *Strategy) { s.metrics = m }
}

func WithJournal(w *journal.Writer) Option {
	return func(s *Strategy) { s.journal = w }
}

func New(
	cfg *types.Config,
	trader types.Trader,
	oracle SupplySource,
	tracker types.Tracker,
	wallet *types.Wallet,
	logger *zap.Logger,
	opts ...Option,
) (*Strategy, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", types.ErrInvalidConfig)
	}
	if !cfg.TokenQuantityToUse.Valid && !cfg.ComparatorQuantityToUse.Valid {
		return nil, types.ErrQuantityNotConfigured
	}
	if cfg.PingInterval <= 0 {
		return nil, fmt.Errorf("%w: ping interval must be positive", types.ErrInvalidConfig)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Strategy{
		cfg:     cfg,
		trader:  trader,
		oracle:  oracle,
		tracker: tracker,
		wallet:  wallet,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run resolves the token quantity once and then cycles until ctx is done or a
// phase fails. It never returns nil.
func (s *Strategy) Run(ctx context.Context) error {
	tokenQuantity, err := s.Prepare(ctx)
	if err != nil {
		return err
	}

	s.logger.Info("Ready. Running bot...",
		zap.String("token", s.tracker.TokenAddress()),
		zap.String("comparator", s.tracker.ComparatorAddress()),
		zap.String("pair", s.tracker.PairAddress()),
		zap.String("token_quantity", tokenQuantity.String()),
	)
	s.record(&journal.Event{Event: "start", Pair: s.tracker.PairAddress(), TokenQuantity: tokenQuantity.String()})

	for {
		if _, err := s.runCycle(ctx, tokenQuantity); err != nil {
			s.record(&journal.Event{Event: "stop", Cycle: s.cycles, Err: err.Error()})
			return err
		}
	}
}

// Prepare returns the token quantity every cycle deposits. With a comparator
// quantity configured it buys that quantity's worth of tokens once; otherwise
// it uses the configured token quantity.
func (s *Strategy) Prepare(ctx context.Context) (decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return decimal.Zero, err
	}

	var tokenQuantity decimal.Decimal
	switch {
	case s.cfg.ComparatorQuantityToUse.Valid:
		quantity := s.cfg.ComparatorQuantityToUse.Decimal
		s.logger.Info("Buying initial tokens with exact comparator quantity", zap.String("comparator_quantity", quantity.String()))

		res, err := s.trader.BuyTokensWithExact(ctx, &types.BuyRequest{
			Wallet:                  s.wallet,
			Tracker:                 s.tracker,
			ExactComparatorQuantity: quantity,
			SlippagePercent:         s.cfg.SlippagePercent,
		})
		if err != nil {
			return decimal.Zero, fmt.Errorf("initial buy: %w", err)
		}
		s.record(&journal.Event{
			Event:              "initial_buy",
			TxHash:             res.TxHash,
			TokenQuantity:      res.TokenQuantity.String(),
			ComparatorQuantity: quantity.String(),
		})
		tokenQuantity = res.TokenQuantity
	case s.cfg.TokenQuantityToUse.Valid:
		tokenQuantity = s.cfg.TokenQuantityToUse.Decimal
	default:
		return decimal.Zero, types.ErrQuantityNotConfigured
	}

	if !tokenQuantity.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: resolved token quantity is %s", types.ErrQuantityNotConfigured, tokenQuantity)
	}
	return tokenQuantity, nil
}

func (s *Strategy) runCycle(ctx context.Context, tokenQuantity decimal.Decimal) (*cycle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.cycles++
	c := &cycle{
		id:     uuid.NewString(),
		number: s.cycles,
	}

	steps := []struct {
		phase types.Phase
		run   func(context.Context, *cycle) error
	}{
		{types.PhaseAddLiquidity, func(ctx context.Context, c *cycle) error { return s.addLiquidity(ctx, c, tokenQuantity) }},
		{types.PhaseAwaitSellTrigger, s.awaitSellTrigger},
		{types.PhaseRemoveLiquidity, s.removeLiquidity},
		{types.PhaseSell, s.sell},
		{types.PhaseAwaitBuyTrigger, s.awaitBuyTrigger},
		{types.PhaseBuyBack, s.buyBack},
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return c, err
		}
		c.phase = step.phase
		s.metrics.SetPhase(step.phase)

		if err := step.run(ctx, c); err != nil {
			return c, fmt.Errorf("cycle %d %s: %w", c.number, step.phase, err)
		}
	}

	s.metrics.CycleCompleted()
	s.logger.Info("Cycle complete", zap.Uint64("cycle", c.number), zap.String("cycle_id", c.id))
	return c, nil
}

func (s *Strategy) addLiquidity(ctx context.Context, c *cycle, tokenQuantity decimal.Decimal) error {
	s.logger.Info("Step 1: Add liquidity to keep tokens in neutral charge...",
		zap.Uint64("cycle", c.number),
		zap.String("token_quantity", tokenQuantity.String()),
	)

	started := time.Now()
	res, err := s.trader.AddLiquidity(ctx, &types.AddLiquidityRequest{
		Wallet:          s.wallet,
		Tracker:         s.tracker,
		TokenQuantity:   tokenQuantity,
		SlippagePercent: s.cfg.SlippagePercent,
	})
	s.metrics.ObserveOperation(types.PhaseAddLiquidity, started, err)
	if err != nil {
		return err
	}

	c.pairQuantity = res.PairQuantityReceived
	s.record(&journal.Event{
		CycleID:            c.id,
		Cycle:              c.number,
		Event:              "phase",
		Phase:              c.phase.String(),
		TxHash:             res.TxHash,
		TokenQuantity:      res.TokenQuantityDeposited.String(),
		ComparatorQuantity: res.ComparatorQuantityDeposited.String(),
		PairQuantity:       res.PairQuantityReceived.String(),
	})
	return nil
}

func (s *Strategy) awaitSellTrigger(ctx context.Context, c *cycle) error {
	s.logger.Info("Step 2: Wait for negative supply to hit trigger...",
		zap.Uint64("cycle", c.number),
		zap.String("sell_trigger", s.cfg.NegativeSupplySellTrigger.String()),
	)

	err := utils.Poll(ctx, s.cfg.PingInterval, func(ctx context.Context) (bool, error) {
		supply, err := s.oracle.GetNegativeSupply(ctx)
		if err != nil {
			return false, err
		}
		s.metrics.ObservePoll(types.PhaseAwaitSellTrigger, supply)
		s.logger.Info("Negative Supply", zap.String("value", utils.FormatRational(supply, 2)))

		if !trigger.SellTriggerMet(supply, s.cfg.NegativeSupplySellTrigger) {
			return false, nil
		}
		c.sellSupply = supply
		return true, nil
	})
	if err != nil {
		return err
	}

	s.record(&journal.Event{
		CycleID:        c.id,
		Cycle:          c.number,
		Event:          "trigger",
		Phase:          c.phase.String(),
		NegativeSupply: c.sellSupply.String(),
	})
	return nil
}

func (s *Strategy) removeLiquidity(ctx context.Context, c *cycle) error {
	s.logger.Info("Step 3: Remove liquidity...",
		zap.Uint64("cycle", c.number),
		zap.String("pair_quantity", c.pairQuantity.String()),
	)

	started := time.Now()
	res, err := s.trader.RemoveLiquidity(ctx, &types.RemoveLiquidityRequest{
		Wallet:          s.wallet,
		Tracker:         s.tracker,
		PairQuantity:    c.pairQuantity,
		SlippagePercent: s.cfg.SlippagePercent,
	})
	s.metrics.ObserveOperation(types.PhaseRemoveLiquidity, started, err)
	if err != nil {
		return err
	}

	c.tokenQuantity = res.TokenQuantityReceived
	s.record(&journal.Event{
		CycleID:            c.id,
		Cycle:              c.number,
		Event:              "phase",
		Phase:              c.phase.String(),
		TxHash:             res.TxHash,
		TokenQuantity:      res.TokenQuantityReceived.String(),
		ComparatorQuantity: res.ComparatorQuantityReceived.String(),
		PairQuantity:       c.pairQuantity.String(),
	})
	return nil
}

func (s *Strategy) sell(ctx context.Context, c *cycle) error {
	s.logger.Info("Step 4: Sell tokens for comparator...",
		zap.Uint64("cycle", c.number),
		zap.String("token_quantity", c.tokenQuantity.String()),
	)

	started := time.Now()
	res, err := s.trader.SellExactTokens(ctx, &types.SellRequest{
		Wallet:             s.wallet,
		Tracker:            s.tracker,
		ExactTokenQuantity: c.tokenQuantity,
		SlippagePercent:    s.cfg.SlippagePercent,
	})
	s.metrics.ObserveOperation(types.PhaseSell, started, err)
	if err != nil {
		return err
	}

	c.comparatorQuantity = res.ComparatorQuantity
	c.executionPrice = res.AverageTokenPriceComparator
	s.record(&journal.Event{
		CycleID:            c.id,
		Cycle:              c.number,
		Event:              "phase",
		Phase:              c.phase.String(),
		TxHash:             res.TxHash,
		TokenQuantity:      c.tokenQuantity.String(),
		ComparatorQuantity: res.ComparatorQuantity.String(),
		Price:              res.AverageTokenPriceComparator.String(),
	})
	return nil
}

func (s *Strategy) awaitBuyTrigger(ctx context.Context, c *cycle) error {
	c.targetPrice = trigger.TargetPrice(c.executionPrice, s.cfg.PriceFallPercentTrigger)
	s.metrics.ObserveTarget(c.targetPrice)
	s.logger.Info("Step 5: Wait for negative supply to decrease and price to fall according to trigger settings...",
		zap.Uint64("cycle", c.number),
		zap.String("buy_trigger", s.cfg.NegativeSupplyBuyTrigger.String()),
		zap.String("execution_price", utils.AbbreviateDecimal(c.executionPrice)),
		zap.String("target_price", utils.AbbreviateDecimal(c.targetPrice)),
	)

	err := utils.Poll(ctx, s.cfg.PingInterval, func(ctx context.Context) (bool, error) {
		supply, err := s.oracle.GetNegativeSupply(ctx)
		if err != nil {
			return false, err
		}
		s.metrics.ObservePoll(types.PhaseAwaitBuyTrigger, supply)

		ok, price, err := trigger.EvaluateBuy(ctx, supply, s.cfg.NegativeSupplyBuyTrigger, c.targetPrice, s.tracker.GetNewPrice)
		if err != nil {
			return false, err
		}
		fields := []zap.Field{zap.String("value", utils.FormatRational(supply, 2))}
		if supply.LessThan(s.cfg.NegativeSupplyBuyTrigger) {
			s.metrics.ObservePrice(price)
			fields = append(fields, zap.String("price", utils.AbbreviateDecimal(price)))
		}
		s.logger.Debug("Negative Supply", fields...)

		if !ok {
			return false, nil
		}
		c.buySupply = supply
		c.buyPrice = price
		return true, nil
	})
	if err != nil {
		return err
	}

	s.record(&journal.Event{
		CycleID:        c.id,
		Cycle:          c.number,
		Event:          "trigger",
		Phase:          c.phase.String(),
		NegativeSupply: c.buySupply.String(),
		Price:          c.buyPrice.String(),
		TargetPrice:    c.targetPrice.String(),
	})
	return nil
}

func (s *Strategy) buyBack(ctx context.Context, c *cycle) error {
	s.logger.Info("Step 6: Buy back tokens...",
		zap.Uint64("cycle", c.number),
		zap.String("comparator_quantity", c.comparatorQuantity.String()),
	)

	started := time.Now()
	res, err := s.trader.BuyTokensWithExact(ctx, &types.BuyRequest{
		Wallet:                  s.wallet,
		Tracker:                 s.tracker,
		ExactComparatorQuantity: c.comparatorQuantity,
		SlippagePercent:         s.cfg.SlippagePercent,
	})
	s.metrics.ObserveOperation(types.PhaseBuyBack, started, err)
	if err != nil {
		return err
	}

	s.record(&journal.Event{
		CycleID:            c.id,
		Cycle:              c.number,
		Event:              "phase",
		Phase:              c.phase.String(),
		TxHash:             res.TxHash,
		TokenQuantity:      res.TokenQuantity.String(),
		ComparatorQuantity: c.comparatorQuantity.String(),
		Price:              res.AverageTokenPriceComparator.String(),
	})
	return nil
}

func (s *Strategy) record(ev *journal.Event) {
	if s.journal == nil {
		return
	}
	ev.TsMs = time.Now().UnixMilli()
	if err := s.journal.Write(ev); err != nil {
		s.logger.Warn("journal write failed", zap.Error(err))
	}
}
