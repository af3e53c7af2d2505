// Package risk gates strategy signals against per-strategy PnL limits and position caps.
package risk

import (
	"errors"
	"fmt"
	"sort"

	"minialgo-go/internal/execution"
	"minialgo-go/internal/signal"
)

const (
	DefaultMaxPositionSize      int64   = 1
	DefaultMaxLossPerStrategy   float64 = -20000
	DefaultMaxProfitPerStrategy float64 = 50000
	DefaultQuantity             int64   = 1
)

// Limits encodes the guard-rails applied to every strategy.
type Limits struct {
	MaxPositionSize      int64
	MaxLossPerStrategy   float64 // negative; reaching it blocks the strategy
	MaxProfitPerStrategy float64 // reaching it blocks the strategy
	DefaultQuantity      int64
}

// DefaultLimits returns the limits used when nothing is configured.
func DefaultLimits() Limits {
	return Limits{
		MaxPositionSize:      DefaultMaxPositionSize,
		MaxLossPerStrategy:   DefaultMaxLossPerStrategy,
		MaxProfitPerStrategy: DefaultMaxProfitPerStrategy,
		DefaultQuantity:      DefaultQuantity,
	}
}

// Validate rejects limits that would make every approval meaningless.
func (l Limits) Validate() error {
	var errs []error
	if l.MaxPositionSize <= 0 {
		errs = append(errs, fmt.Errorf("max position size must be positive, got %d", l.MaxPositionSize))
	}
	if l.DefaultQuantity <= 0 {
		errs = append(errs, fmt.Errorf("default quantity must be positive, got %d", l.DefaultQuantity))
	}
	if l.MaxLossPerStrategy >= 0 {
		errs = append(errs, fmt.Errorf("max loss per strategy must be negative, got %.2f", l.MaxLossPerStrategy))
	}
	if l.MaxProfitPerStrategy <= 0 {
		errs = append(errs, fmt.Errorf("max profit per strategy must be positive, got %.2f", l.MaxProfitPerStrategy))
	}
	return errors.Join(errs...)
}

// Reason explains why a decision approved nothing.
type Reason string

const (
	ReasonNone          Reason = ""
	ReasonBlocked       Reason = "strategy blocked"
	ReasonMaxLoss       Reason = "max loss reached"
	ReasonMaxProfit     Reason = "max profit reached"
	ReasonPositionLimit Reason = "position limit reached"
)

// Decision is the outcome of evaluating one signal.
type Decision struct {
	Quantity int64
	Reason   Reason
}

// Approved reports whether any quantity was granted.
func (d Decision) Approved() bool { return d.Quantity > 0 }

// Gate tracks cumulative realized PnL per strategy and blocks strategies that cross their limits.
// Once blocked, a strategy stays blocked until Reset.
type Gate struct {
	limits  Limits
	pnl     map[string]float64
	blocked map[string]struct{}
}

// NewGate builds a gate with empty state.
func NewGate(limits Limits) *Gate {
	return &Gate{
		limits:  limits,
		pnl:     make(map[string]float64),
		blocked: make(map[string]struct{}),
	}
}

// Limits returns the configured limits.
func (g *Gate) Limits() Limits { return g.limits }

// Approve returns the quantity granted for the signal; zero means rejected.
func (g *Gate) Approve(sig signal.Signal, pos execution.Position) int64 {
	return g.Evaluate(sig, pos).Quantity
}

// Evaluate runs the checks in order: blocked, loss limit, profit limit, then position cap.
func (g *Gate) Evaluate(sig signal.Signal, pos execution.Position) Decision {
	id := sig.StrategyID()
	pnl, seen := g.pnl[id]
	if !seen {
		g.pnl[id] = 0
	}

	if _, ok := g.blocked[id]; ok {
		return Decision{Reason: ReasonBlocked}
	}
	if pnl <= g.limits.MaxLossPerStrategy {
		g.blocked[id] = struct{}{}
		return Decision{Reason: ReasonMaxLoss}
	}
	if pnl >= g.limits.MaxProfitPerStrategy {
		g.blocked[id] = struct{}{}
		return Decision{Reason: ReasonMaxProfit}
	}

	qty := pos.Quantity
	switch sig.Side() {
	case signal.Buy:
		if qty >= g.limits.MaxPositionSize {
			return Decision{Reason: ReasonPositionLimit}
		}
		return Decision{Quantity: min(g.limits.DefaultQuantity, g.limits.MaxPositionSize-qty)}
	case signal.Sell:
		if qty <= -g.limits.MaxPositionSize {
			return Decision{Reason: ReasonPositionLimit}
		}
		return Decision{Quantity: min(g.limits.DefaultQuantity, g.limits.MaxPositionSize+qty)}
	default:
		return Decision{Reason: ReasonPositionLimit}
	}
}

// UpdateStrategyPnL adds realized PnL from a closing trade.
func (g *Gate) UpdateStrategyPnL(strategyID string, realized float64) {
	g.pnl[strategyID] += realized
}

// StrategyPnL returns cumulative realized PnL, zero for unseen strategies.
func (g *Gate) StrategyPnL(strategyID string) float64 {
	return g.pnl[strategyID]
}

// IsBlocked reports whether the strategy hit a PnL limit.
func (g *Gate) IsBlocked(strategyID string) bool {
	_, ok := g.blocked[strategyID]
	return ok
}

// Reset wipes all PnL and blocked state.
func (g *Gate) Reset() {
	g.pnl = make(map[string]float64)
	g.blocked = make(map[string]struct{})
}

// Summary is a point-in-time copy of the gate state.
type Summary struct {
	StrategyPnL map[string]float64
	Blocked     []string
	Limits      Limits
}

// Summary copies the current state; Blocked is sorted.
func (g *Gate) Summary() Summary {
	pnl := make(map[string]float64, len(g.pnl))
	for id, v := range g.pnl {
		pnl[id] = v
	}
	blocked := make([]string, 0, len(g.blocked))
	for id := range g.blocked {
		blocked = append(blocked, id)
	}
	sort.Strings(blocked)
	return Summary{StrategyPnL: pnl, Blocked: blocked, Limits: g.limits}
}
