// Package signal standardizes payloads shared between data ingestion, strategies and the trading core.
package signal

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidSide is returned when a side other than BUY or SELL is supplied.
var ErrInvalidSide = errors.New("invalid side")

// Side enumerates trade directions.
type Side string

const (
	// Buy opens or adds to a long, or covers a short.
	Buy Side = "BUY"
	// Sell closes a long, or opens/extends a short.
	Sell Side = "SELL"
)

// ParseSide accepts BUY/SELL in any case.
func ParseSide(raw string) (Side, error) {
	switch Side(strings.ToUpper(strings.TrimSpace(raw))) {
	case Buy:
		return Buy, nil
	case Sell:
		return Sell, nil
	default:
		return "", fmt.Errorf("%w: %q must be BUY or SELL", ErrInvalidSide, raw)
	}
}

// Valid reports whether s is one of the two known sides.
func (s Side) Valid() bool { return s == Buy || s == Sell }

// Bar models one OHLC candle consumed by strategies.
type Bar struct {
	Timestamp time.Time
	Symbol    string
	Open      float64
	High      float64
	Low       float64
	Close     float64
}

// Signal expresses a trading intent produced by a strategy. Fields are read-only after New.
type Signal struct {
	strategyID string
	symbol     string
	side       Side
	ts         time.Time
	reason     string
}

// New validates the side and builds a Signal.
func New(strategyID, symbol string, side Side, ts time.Time, reason string) (Signal, error) {
	if !side.Valid() {
		return Signal{}, fmt.Errorf("%w: %q must be BUY or SELL", ErrInvalidSide, string(side))
	}
	return Signal{strategyID: strategyID, symbol: symbol, side: side, ts: ts, reason: reason}, nil
}

// MustNew is New for sides known at compile time; it panics on an invalid side.
func MustNew(strategyID, symbol string, side Side, ts time.Time, reason string) Signal {
	s, err := New(strategyID, symbol, side, ts, reason)
	if err != nil {
		panic(err)
	}
	return s
}

func (s Signal) StrategyID() string   { return s.strategyID }
func (s Signal) Symbol() string       { return s.symbol }
func (s Signal) Side() Side           { return s.side }
func (s Signal) Timestamp() time.Time { return s.ts }
func (s Signal) Reason() string       { return s.reason }

func (s Signal) String() string {
	return fmt.Sprintf("Signal(strategy=%s, symbol=%s, side=%s, reason=%q)", s.strategyID, s.symbol, s.side, s.reason)
}
