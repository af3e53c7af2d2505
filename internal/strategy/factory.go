// Package strategy contains the bar-driven signal generators.
package strategy

import (
	"fmt"
	"strings"
	"time"

	sig "minialgo-go/internal/signal"
)

// Strategy turns bars into trading signals. Implementations keep their own state and are not shared.
type Strategy interface {
	OnBar(bar sig.Bar) *sig.Signal
	ID() string
}

const (
	KindEMACrossover  = "ema_crossover"
	KindMeanReversion = "mean_reversion"
	KindOpeningRange  = "opening_range"
	KindTimeExit      = "time_exit"
)

// Params expresses tunable knobs required by strategy constructors. Zero values select defaults.
type Params struct {
	ID         string
	Kind       string
	Symbol     string
	FastPeriod int
	SlowPeriod int
	Period     int
	RangeEnd   string // HH:MM, opening range
	EntryTime  string // HH:MM, time exit
	ExitTime   string // HH:MM, time exit
}

// Build returns the strategy matching the configured kind.
func Build(p Params) (Strategy, error) {
	kind := strings.ToLower(strings.TrimSpace(p.Kind))
	if kind == "" {
		kind = strings.ToLower(strings.TrimSpace(p.ID))
	}
	switch kind {
	case KindEMACrossover, "ema":
		return NewEMACrossover(p.ID, p.Symbol, p.FastPeriod, p.SlowPeriod), nil
	case KindMeanReversion, "sma":
		return NewMeanReversion(p.ID, p.Symbol, p.Period), nil
	case KindOpeningRange, "orb", "opening_range_breakout":
		end, err := parseClock(p.RangeEnd, defaultRangeEnd)
		if err != nil {
			return nil, fmt.Errorf("strategy %s range_end: %w", p.ID, err)
		}
		return NewOpeningRange(p.ID, p.Symbol, end), nil
	case KindTimeExit:
		entry, err := parseClock(p.EntryTime, defaultEntryTime)
		if err != nil {
			return nil, fmt.Errorf("strategy %s entry_time: %w", p.ID, err)
		}
		exit, err := parseClock(p.ExitTime, defaultExitTime)
		if err != nil {
			return nil, fmt.Errorf("strategy %s exit_time: %w", p.ID, err)
		}
		return NewTimeExit(p.ID, p.Symbol, entry, exit), nil
	default:
		return nil, fmt.Errorf("unknown strategy kind %q", p.Kind)
	}
}

// Clock is a wall-clock time of day.
type Clock struct {
	Hour   int
	Minute int
}

var (
	defaultRangeEnd  = Clock{Hour: 9, Minute: 30}
	defaultEntryTime = Clock{Hour: 9, Minute: 30}
	defaultExitTime  = Clock{Hour: 15, Minute: 15}
)

func (c Clock) String() string { return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute) }

// reached reports whether ts is at or after the clock time on its own date.
func (c Clock) reached(ts time.Time) bool {
	h, m, _ := ts.Clock()
	return h > c.Hour || (h == c.Hour && m >= c.Minute)
}

func parseClock(raw string, fallback Clock) (Clock, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	t, err := time.Parse("15:04", raw)
	if err != nil {
		return Clock{}, err
	}
	return Clock{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func emit(id, symbol string, side sig.Side, ts time.Time, reason string) *sig.Signal {
	s := sig.MustNew(id, symbol, side, ts, reason)
	return &s
}

func orDefault(id, fallback string) string {
	if strings.TrimSpace(id) == "" {
		return fallback
	}
	return id
}
