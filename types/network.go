package types

import (
	"context"
)

type (
	ContractCaller interface {
		Call(ctx context.Context, req *CallRequest) ([]interface{}, error)
	}

	// Trader is the state-changing half of the gateway used by the strategy.
	Trader interface {
		AddLiquidity(ctx context.Context, req *AddLiquidityRequest) (*AddLiquidityResponse, error)
		RemoveLiquidity(ctx context.Context, req *RemoveLiquidityRequest) (*RemoveLiquidityResponse, error)
		SellExactTokens(ctx context.Context, req *SellRequest) (*SellResponse, error)
		BuyTokensWithExact(ctx context.Context, req *BuyRequest) (*BuyResponse, error)
	}

	Gateway interface {
		ContractCaller
		Trader
		Start() error
		Close() error
		CreateTracker(ctx context.Context, req *CreateTrackerRequest) (Tracker, error)
	}
)
