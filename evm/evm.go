package evm

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	t "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/forta-network/go-multicall"
	"github.com/meme-bots/lp-cycler/types"
	"github.com/meme-bots/lp-cycler/utils"
	"go.uber.org/zap"
)

// EVM is the Uniswap V2 gateway. One instance serves one wallet at a time;
// transactions are submitted sequentially and waited for before returning.
type EVM struct {
	cfg       *types.Config
	client    *ethclient.Client
	chainId   uint64
	watcher   *Watcher
	router    *bind.BoundContract
	factory   common.Address
	multicall *multicall.Caller
	cache     *utils.Cache
	logger    *zap.Logger
}

var _ types.Gateway = (*EVM)(nil)

func NewEVM(
	ctx context.Context,
	cfg *types.Config,
	logger *zap.Logger,
) (*EVM, error) {
	rpcClient, err := dial(ctx, cfg.RPC, cfg.RateLimitPerSecond)
	if err != nil {
		return nil, fmt.Errorf("dial rpc: %w", err)
	}
	client := ethclient.NewClient(rpcClient)

	succeed := false
	defer func() {
		if !succeed {
			client.Close()
		}
	}()

	chainId, err := ChainID(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("chain id: %w", err)
	}

	routerAddr := common.HexToAddress(cfg.Router)
	router := bind.NewBoundContract(routerAddr, routerABI, client, client, client)

	var out []interface{}
	if err := router.Call(&bind.CallOpts{Context: ctx}, &out, "factory"); err != nil {
		return nil, fmt.Errorf("router %s factory(): %w", routerAddr.Hex(), err)
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("router %s factory(): %w", routerAddr.Hex(), types.ErrUnexpectedOutput)
	}
	factory, ok := out[0].(common.Address)
	if !ok {
		return nil, fmt.Errorf("router %s factory(): %w", routerAddr.Hex(), types.ErrUnexpectedOutput)
	}

	caller, err := multicall.New(client)
	if err != nil {
		return nil, err
	}

	metadata, err := utils.NewCache()
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("evm")

	logger.Info("connected",
		zap.Uint64("chain_id", chainId),
		zap.String("router", routerAddr.Hex()),
		zap.String("factory", factory.Hex()),
	)

	succeed = true
	return &EVM{
		cfg:       cfg,
		client:    client,
		chainId:   chainId,
		watcher:   NewWatcher(client, cfg.GasPriceRefresh, logger),
		router:    router,
		factory:   factory,
		multicall: caller,
		cache:     metadata,
		logger:    logger,
	}, nil
}

func ChainID(ctx context.Context, client *ethclient.Client) (uint64, error) {
	cid, err := client.ChainID(ctx)
	if err != nil {
		return 0, err
	}
	return cid.Uint64(), nil
}

func (v *EVM) Start() error {
	return v.watcher.Start()
}

func (v *EVM) Close() error {
	err := v.watcher.Close()
	v.client.Close()
	return err
}

func (v *EVM) GetGasPrice() *big.Int {
	return v.watcher.GetGasPrice()
}

// transactOpts signs with wallet. A zero watcher gas price leaves pricing to
// the node.
func (v *EVM) transactOpts(ctx context.Context, wallet *types.Wallet) (*bind.TransactOpts, error) {
	if wallet == nil || wallet.PrivateKey == nil {
		return nil, fmt.Errorf("%w: wallet has no private key", types.ErrInvalidConfig)
	}
	auth, err := bind.NewKeyedTransactorWithChainID(wallet.PrivateKey, new(big.Int).SetUint64(v.chainId))
	if err != nil {
		return nil, err
	}
	auth.Context = ctx
	if gasPrice := v.GetGasPrice(); gasPrice.Sign() > 0 {
		auth.GasPrice = gasPrice
	}
	return auth, nil
}

func (v *EVM) deadline() *big.Int {
	return big.NewInt(time.Now().Add(v.cfg.TxTimeout).Unix())
}

// waitMined blocks until tx is included or the transaction timeout passes.
// A reverted transaction is reported as ErrTransactionFailed.
func (v *EVM) waitMined(ctx context.Context, tx *t.Transaction, what string) (*t.Receipt, error) {
	v.logger.Info("transaction sent", zap.String("op", what), zap.String("tx", tx.Hash().Hex()))

	ctx, cancel := context.WithTimeout(ctx, v.cfg.TxTimeout)
	defer cancel()

	receipt, err := bind.WaitMined(ctx, v.client, tx)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", what, tx.Hash().Hex(), err)
	}
	if ce := v.logger.Check(zap.DebugLevel, "receipt"); ce != nil {
		ce.Write(zap.String("op", what), zap.String("dump", spew.Sdump(receipt)))
	}
	if receipt.Status != t.ReceiptStatusSuccessful {
		return receipt, fmt.Errorf("%s %s: %w", what, tx.Hash().Hex(), types.ErrTransactionFailed)
	}

	v.logger.Info("transaction mined",
		zap.String("op", what),
		zap.String("tx", tx.Hash().Hex()),
		zap.Uint64("gas_used", receipt.GasUsed),
		zap.Stringer("block", receipt.BlockNumber),
	)
	return receipt, nil
}
