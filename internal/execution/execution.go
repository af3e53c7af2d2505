// Package execution turns approved order quantities into position mutations and trade records.
package execution

import (
	"time"

	"minialgo-go/internal/signal"
)

// Side aliases the shared signal side so callers can stay within this package.
type Side = signal.Side

const (
	// Buy indicates a positive quantity.
	Buy = signal.Buy
	// Sell indicates a negative quantity.
	Sell = signal.Sell
)

// Trade is an immutable record of one execution. Quantity is signed: positive for BUY, negative for SELL.
type Trade struct {
	StrategyID  string    `json:"strategy_id"`
	Symbol      string    `json:"symbol"`
	Side        Side      `json:"side"`
	Quantity    int64     `json:"quantity"`
	Price       float64   `json:"price"`
	Timestamp   time.Time `json:"timestamp"`
	RealizedPnL float64   `json:"realized_pnl"`
	Reason      string    `json:"reason"`
}

// Closing reports whether the trade booked PnL.
func (t Trade) Closing() bool { return t.RealizedPnL != 0 }

type positionKey struct {
	strategyID string
	symbol     string
}

// Engine owns every position and the append-only trade log. It is not safe for concurrent use.
type Engine struct {
	positions []Position
	index     map[positionKey]int
	trades    []Trade
}

// NewEngine returns an engine with no positions and an empty log.
func NewEngine() *Engine {
	return &Engine{index: make(map[positionKey]int)}
}

// Execute applies a signed quantity at price. A zero quantity is ignored and reports false.
func (e *Engine) Execute(strategyID, symbol string, qty int64, price float64, ts time.Time, reason string) (Trade, bool) {
	if qty == 0 {
		return Trade{}, false
	}
	pos := e.slot(strategyID, symbol)

	trade := Trade{
		StrategyID: strategyID,
		Symbol:     symbol,
		Quantity:   qty,
		Price:      price,
		Timestamp:  ts,
		Reason:     reason,
	}
	if qty > 0 {
		trade.Side = Buy
		pos.buy(qty, price)
	} else {
		trade.Side = Sell
		trade.RealizedPnL = pos.sell(-qty, price)
	}

	e.trades = append(e.trades, trade)
	return trade, true
}

// Position returns a copy of the position for the pair, creating a flat one on first access.
func (e *Engine) Position(strategyID, symbol string) Position {
	return *e.slot(strategyID, symbol)
}

// Positions returns a copy of every position in first-access order.
func (e *Engine) Positions() []Position {
	out := make([]Position, len(e.positions))
	copy(out, e.positions)
	return out
}

// Trades returns a copy of the trade log in execution order.
func (e *Engine) Trades() []Trade {
	out := make([]Trade, len(e.trades))
	copy(out, e.trades)
	return out
}

// UnrealizedPnL marks the pair's position at mark.
func (e *Engine) UnrealizedPnL(strategyID, symbol string, mark float64) float64 {
	return e.slot(strategyID, symbol).UnrealizedPnL(mark)
}

func (e *Engine) slot(strategyID, symbol string) *Position {
	key := positionKey{strategyID: strategyID, symbol: symbol}
	if i, ok := e.index[key]; ok {
		return &e.positions[i]
	}
	e.positions = append(e.positions, Position{StrategyID: strategyID, Symbol: symbol})
	e.index[key] = len(e.positions) - 1
	return &e.positions[len(e.positions)-1]
}
