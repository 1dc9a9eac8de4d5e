package evm

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type (
	watcherState uint8

	// Watcher keeps a recent gas price so transaction submission does not
	// pay for a round trip.
	Watcher struct {
		client       *ethclient.Client
		interval     time.Duration
		gasPrice     *big.Int
		gasPriceLock sync.RWMutex
		logger       *zap.Logger

		ctx          context.Context
		cancel       context.CancelFunc
		subprocesses errgroup.Group

		stateMu sync.Mutex
		state   watcherState
	}
)

const (
	watcherStatePending watcherState = iota
	watcherStateOpen
	watcherStateClosed
)

func NewWatcher(client *ethclient.Client, interval time.Duration, logger *zap.Logger) *Watcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		client:   client,
		interval: interval,
		gasPrice: big.NewInt(0),
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (w *Watcher) Start() error {
	w.stateMu.Lock()
	defer w.stateMu.Unlock()

	if w.state != watcherStatePending {
		return errors.New("cannot Start() watcher that has already been started")
	}

	w.state = watcherStateOpen

	w.subprocesses.Go(func() error {
		w.WatchGasPrice()
		return nil
	})
	return nil
}

func (w *Watcher) Close() error {
	w.stateMu.Lock()
	defer w.stateMu.Unlock()

	if w.state != watcherStateOpen {
		return errors.New("cannot Close() watcher that isn't open")
	}

	w.state = watcherStateClosed
	w.cancel()
	return w.subprocesses.Wait()
}

// WatchGasPrice refreshes the gas price immediately and then every interval
// until the watcher is closed.
func (w *Watcher) WatchGasPrice() {
	for {
		price, err := w.client.SuggestGasPrice(w.ctx)
		if err != nil {
			if w.ctx.Err() != nil {
				return
			}
			w.logger.Warn("refresh gas price", zap.Error(err))
		} else {
			w.setGasPrice(price)
		}

		select {
		case <-time.After(w.interval):
		case <-w.ctx.Done():
			return
		}
	}
}

func (w *Watcher) setGasPrice(price *big.Int) {
	w.gasPriceLock.Lock()
	w.gasPrice = price
	w.gasPriceLock.Unlock()
}

// GetGasPrice returns a copy of the last seen gas price, zero before the
// first refresh.
func (w *Watcher) GetGasPrice() *big.Int {
	var price *big.Int
	w.gasPriceLock.RLock()
	price = new(big.Int).Set(w.gasPrice)
	w.gasPriceLock.RUnlock()
	return price
}
