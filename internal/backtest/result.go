package backtest

import (
	"minialgo-go/internal/execution"
	"minialgo-go/internal/paper"
)

// PositionView is a final position marked at the last close of its symbol.
type PositionView struct {
	execution.Position
	Mark          float64
	UnrealizedPnL float64
}

// Result is everything a run produced, in causal order.
type Result struct {
	RunID         string
	BarsProcessed int
	StrategyIDs   []string
	Trades        []execution.Trade
	Skipped       []paper.Skip
	Positions     []PositionView
	LastClose     map[string]float64
	StrategyPnL   map[string]float64
	Blocked       []string
}

// IsBlocked reports whether the strategy ended the run blocked.
func (r *Result) IsBlocked(strategyID string) bool {
	for _, id := range r.Blocked {
		if id == strategyID {
			return true
		}
	}
	return false
}

// RealizedPnL sums realized PnL across strategies in configuration order.
func (r *Result) RealizedPnL() float64 {
	var total float64
	for _, id := range r.StrategyIDs {
		total += r.StrategyPnL[id]
	}
	return total
}

// UnrealizedPnL sums the marked PnL of all open positions.
func (r *Result) UnrealizedPnL() float64 {
	var total float64
	for _, p := range r.Positions {
		total += p.UnrealizedPnL
	}
	return total
}
