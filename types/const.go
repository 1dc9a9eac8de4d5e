package types

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseAddLiquidity
	PhaseAwaitSellTrigger
	PhaseRemoveLiquidity
	PhaseSell
	PhaseAwaitBuyTrigger
	PhaseBuyBack
)

var phaseNames = map[Phase]string{
	PhaseIdle:             "idle",
	PhaseAddLiquidity:     "add_liquidity",
	PhaseAwaitSellTrigger: "await_sell_trigger",
	PhaseRemoveLiquidity:  "remove_liquidity",
	PhaseSell:             "sell",
	PhaseAwaitBuyTrigger:  "await_buy_trigger",
	PhaseBuyBack:          "buy_back",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return "unknown"
}

const (
	// Uniswap V2 pair tokens always carry 18 decimals.
	PairDecimals uint8 = 18
)
