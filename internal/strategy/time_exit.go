package strategy

import (
	"fmt"
	"time"

	sig "minialgo-go/internal/signal"
)

// TimeExit buys once per day at the entry time and sells once per day at the exit time.
type TimeExit struct {
	id        string
	symbol    string
	entry     Clock
	exit      Clock
	lastEntry time.Time
	lastExit  time.Time
}

// NewTimeExit builds the strategy with daily entry and exit clocks.
func NewTimeExit(id, symbol string, entry, exit Clock) *TimeExit {
	return &TimeExit{
		id:     orDefault(id, KindTimeExit),
		symbol: symbol,
		entry:  entry,
		exit:   exit,
	}
}

func (s *TimeExit) ID() string { return s.id }

func (s *TimeExit) OnBar(bar sig.Bar) *sig.Signal {
	day := truncateDay(bar.Timestamp)

	if s.entry.reached(bar.Timestamp) && !s.lastEntry.Equal(day) {
		s.lastEntry = day
		return emit(s.id, s.symbol, sig.Buy, bar.Timestamp, fmt.Sprintf("Entry time reached: %s", s.entry))
	}
	if s.exit.reached(bar.Timestamp) && !s.lastExit.Equal(day) {
		s.lastExit = day
		return emit(s.id, s.symbol, sig.Sell, bar.Timestamp, fmt.Sprintf("Exit time reached: %s", s.exit))
	}
	return nil
}

func truncateDay(ts time.Time) time.Time {
	y, m, d := ts.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, ts.Location())
}
