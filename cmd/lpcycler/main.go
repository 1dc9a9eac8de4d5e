package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	cycler "github.com/meme-bots/lp-cycler"
	"github.com/meme-bots/lp-cycler/config"
	"github.com/meme-bots/lp-cycler/evm"
	"github.com/meme-bots/lp-cycler/journal"
	"github.com/meme-bots/lp-cycler/observability"
	"github.com/meme-bots/lp-cycler/oracle"
	"github.com/meme-bots/lp-cycler/strategy"
	"github.com/meme-bots/lp-cycler/types"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "./config.tml", "path to the TOML config file")
	flag.Parse()

	if err := config.LoadEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	bootLogger, err := newLogger(config.DefaultLogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg, err := config.Load(*configPath, bootLogger)
	if err != nil {
		bootLogger.Error("load config", zap.String("path", *configPath), zap.Error(err))
		os.Exit(1)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		bootLogger.Error("log level", zap.Error(err))
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = run(ctx, cfg, logger)
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		logger.Info("stopped")
	default:
		logger.Error("bot stopped", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = lvl
	return zc.Build()
}

func run(ctx context.Context, cfg *types.Config, logger *zap.Logger) error {
	wallet, err := evm.NewWallet(cfg.PrivateWalletKey)
	if err != nil {
		return err
	}
	logger.Info("wallet", zap.String("address", wallet.Address))

	gateway, err := cycler.NewGateway(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if err := gateway.Start(); err != nil {
		return err
	}
	defer func() {
		if err := gateway.Close(); err != nil {
			logger.Warn("close gateway", zap.Error(err))
		}
	}()

	tracker, err := gateway.CreateTracker(ctx, &types.CreateTrackerRequest{
		Token:      cfg.TokenAddress,
		Comparator: cfg.ComparatorAddress,
	})
	if err != nil {
		return err
	}

	metrics := observability.NewMetrics("lp_cycler")
	if cfg.MetricsListenAddress != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsListenAddress); err != nil {
				logger.Warn("metrics server", zap.Error(err))
			}
		}()
	}

	cycles := journal.New(cfg.JournalPath)
	defer func() {
		if err := cycles.Close(); err != nil {
			logger.Warn("close journal", zap.Error(err))
		}
	}()

	bot, err := strategy.New(
		cfg,
		gateway,
		oracle.NewSupplyOracle(gateway, cfg.NegativeSupplyContract, cfg.TokenDecimals),
		tracker,
		wallet,
		logger.Named("strategy"),
		strategy.WithMetrics(metrics),
		strategy.WithJournal(cycles),
	)
	if err != nil {
		return err
	}
	return bot.Run(ctx)
}
