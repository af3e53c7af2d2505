package strategy

import (
	"minialgo-go/internal/indicator"
	sig "minialgo-go/internal/signal"
)

// EMACrossover buys on a bullish fast/slow EMA cross while flat and sells on the bearish cross while holding.
type EMACrossover struct {
	id       string
	symbol   string
	fast     int
	slow     int
	prices   *indicator.Window
	prevFast float64
	prevSlow float64
	primed   bool
	holding  bool
}

// NewEMACrossover defaults to fast 10 / slow 20.
func NewEMACrossover(id, symbol string, fast, slow int) *EMACrossover {
	if fast <= 0 {
		fast = 10
	}
	if slow <= 0 {
		slow = 20
	}
	return &EMACrossover{
		id:     orDefault(id, KindEMACrossover),
		symbol: symbol,
		fast:   fast,
		slow:   slow,
		prices: indicator.NewWindow(max(fast, slow) + 1),
	}
}

func (s *EMACrossover) ID() string { return s.id }

// OnBar needs slow+1 closes before it evaluates crosses.
func (s *EMACrossover) OnBar(bar sig.Bar) *sig.Signal {
	s.prices.Push(bar.Close)
	if !s.prices.Full() {
		return nil
	}

	fastEMA := indicator.WindowEMA(s.prices.Tail(s.fast), s.fast)
	slowEMA := indicator.WindowEMA(s.prices.Tail(s.slow), s.slow)

	var out *sig.Signal
	if s.primed {
		switch {
		case !s.holding && s.prevFast <= s.prevSlow && fastEMA > slowEMA:
			s.holding = true
			out = emit(s.id, s.symbol, sig.Buy, bar.Timestamp, "EMA bullish crossover")
		case s.holding && s.prevFast >= s.prevSlow && fastEMA < slowEMA:
			s.holding = false
			out = emit(s.id, s.symbol, sig.Sell, bar.Timestamp, "EMA bearish crossover")
		}
	}

	s.prevFast, s.prevSlow, s.primed = fastEMA, slowEMA, true
	return out
}
