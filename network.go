// Package cycler wires the chain gateway used by the bot.
package cycler

import (
	"context"
	"strings"

	"github.com/meme-bots/lp-cycler/evm"
	"github.com/meme-bots/lp-cycler/types"
	"go.uber.org/zap"
)

// NewGateway connects to the JSON-RPC endpoint in cfg. Only EVM endpoints
// are supported.
func NewGateway(ctx context.Context, cfg *types.Config, logger *zap.Logger) (types.Gateway, error) {
	if !strings.HasPrefix(cfg.RPC, "http") && !strings.HasPrefix(cfg.RPC, "ws") {
		return nil, types.ErrNotImplemented
	}
	gateway, err := evm.NewEVM(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return gateway, nil
}
