package strategy

import (
	sig "minialgo-go/internal/signal"
)

// OpeningRange tracks the high/low of the session open, then trades breakouts above and breakdowns below it.
// The range is built once, from the first bar through the first bar at or after rangeEnd.
type OpeningRange struct {
	id       string
	symbol   string
	rangeEnd Clock
	high     float64
	low      float64
	started  bool
	done     bool
	holding  bool
}

// NewOpeningRange builds the strategy; the range closes at rangeEnd.
func NewOpeningRange(id, symbol string, rangeEnd Clock) *OpeningRange {
	return &OpeningRange{
		id:       orDefault(id, KindOpeningRange),
		symbol:   symbol,
		rangeEnd: rangeEnd,
	}
}

func (s *OpeningRange) ID() string { return s.id }

func (s *OpeningRange) OnBar(bar sig.Bar) *sig.Signal {
	if !s.done {
		if !s.started {
			s.high, s.low, s.started = bar.High, bar.Low, true
		} else {
			s.high = max(s.high, bar.High)
			s.low = min(s.low, bar.Low)
		}
		if s.rangeEnd.reached(bar.Timestamp) {
			s.done = true
		}
		return nil
	}

	if !s.holding && bar.Close > s.high {
		s.holding = true
		return emit(s.id, s.symbol, sig.Buy, bar.Timestamp, "ORB breakout high")
	}
	if s.holding && bar.Close < s.low {
		s.holding = false
		return emit(s.id, s.symbol, sig.Sell, bar.Timestamp, "ORB breakdown low")
	}
	return nil
}

// Range returns the opening range and whether it is complete.
func (s *OpeningRange) Range() (high, low float64, done bool) {
	return s.high, s.low, s.done
}
