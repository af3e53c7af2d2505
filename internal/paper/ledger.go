// Package paper collects the outcome of a simulated run: executed trades and risk-rejected signals.
package paper

import (
	"sync"
	"time"

	"minialgo-go/internal/execution"
	"minialgo-go/internal/signal"
)

// TradeRecorder receives every executed trade.
type TradeRecorder interface {
	Record(execution.Trade)
}

// Skip describes a signal the risk gate refused.
type Skip struct {
	Timestamp       time.Time   `json:"timestamp"`
	StrategyID      string      `json:"strategy_id"`
	Symbol          string      `json:"symbol"`
	Side            signal.Side `json:"side"`
	Reason          string      `json:"reason"`
	CurrentPosition int64       `json:"current_position"`
	StrategyPnL     float64     `json:"strategy_pnl"`
}

// Ledger stores trades and skips in arrival order.
type Ledger struct {
	mu     sync.Mutex
	trades []execution.Trade
	skips  []Skip
}

// NewLedger creates an empty ledger optionally pre-sizing trade storage.
func NewLedger(capacity int) *Ledger {
	if capacity < 0 {
		capacity = 0
	}
	return &Ledger{trades: make([]execution.Trade, 0, capacity)}
}

// Record appends a trade to the ledger.
func (l *Ledger) Record(trade execution.Trade) {
	l.mu.Lock()
	l.trades = append(l.trades, trade)
	l.mu.Unlock()
}

// RecordSkip appends a rejected signal.
func (l *Ledger) RecordSkip(skip Skip) {
	l.mu.Lock()
	l.skips = append(l.skips, skip)
	l.mu.Unlock()
}

// Trades returns a copy of the recorded trades.
func (l *Ledger) Trades() []execution.Trade {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]execution.Trade, len(l.trades))
	copy(out, l.trades)
	return out
}

// Skips returns a copy of the recorded skips.
func (l *Ledger) Skips() []Skip {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Skip, len(l.skips))
	copy(out, l.skips)
	return out
}

// TradesFor returns the trades of one strategy in order.
func (l *Ledger) TradesFor(strategyID string) []execution.Trade {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []execution.Trade
	for _, t := range l.trades {
		if t.StrategyID == strategyID {
			out = append(out, t)
		}
	}
	return out
}

// Reset clears all stored trades and skips.
func (l *Ledger) Reset() {
	l.mu.Lock()
	l.trades = l.trades[:0]
	l.skips = nil
	l.mu.Unlock()
}
