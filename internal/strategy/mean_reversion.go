package strategy

import (
	"minialgo-go/internal/indicator"
	sig "minialgo-go/internal/signal"
)

// MeanReversion buys when the close drops below its SMA and exits once it recovers to the SMA.
type MeanReversion struct {
	id      string
	symbol  string
	prices  *indicator.Window
	holding bool
}

// NewMeanReversion defaults to a 20 bar SMA.
func NewMeanReversion(id, symbol string, period int) *MeanReversion {
	if period <= 0 {
		period = 20
	}
	return &MeanReversion{
		id:     orDefault(id, KindMeanReversion),
		symbol: symbol,
		prices: indicator.NewWindow(period),
	}
}

func (s *MeanReversion) ID() string { return s.id }

func (s *MeanReversion) OnBar(bar sig.Bar) *sig.Signal {
	s.prices.Push(bar.Close)
	if !s.prices.Full() {
		return nil
	}
	sma := s.prices.Mean()

	if !s.holding && bar.Close < sma {
		s.holding = true
		return emit(s.id, s.symbol, sig.Buy, bar.Timestamp, "Mean reversion entry")
	}
	if s.holding && bar.Close >= sma {
		s.holding = false
		return emit(s.id, s.symbol, sig.Sell, bar.Timestamp, "Mean reversion exit")
	}
	return nil
}
