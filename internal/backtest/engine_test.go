package backtest

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minialgo-go/internal/execution"
	"minialgo-go/internal/paper"
	"minialgo-go/internal/risk"
	sig "minialgo-go/internal/signal"
	"minialgo-go/internal/strategy"
)

// scripted emits a fixed side on chosen bar indices.
type scripted struct {
	id    string
	plan  map[int]sig.Side
	index int
}

func (s *scripted) ID() string { return s.id }

func (s *scripted) OnBar(bar sig.Bar) *sig.Signal {
	defer func() { s.index++ }()
	side, ok := s.plan[s.index]
	if !ok {
		return nil
	}
	out := sig.MustNew(s.id, bar.Symbol, side, bar.Timestamp, "scripted "+string(side))
	return &out
}

var start = time.Date(2024, 1, 2, 9, 15, 0, 0, time.UTC)

func bars(closes ...float64) []sig.Bar {
	out := make([]sig.Bar, len(closes))
	for i, c := range closes {
		out[i] = sig.Bar{Timestamp: start.Add(time.Duration(i) * time.Minute), Symbol: "NIFTY", Open: c, High: c, Low: c, Close: c}
	}
	return out
}

func limits() risk.Limits {
	return risk.Limits{MaxPositionSize: 5000, MaxLossPerStrategy: -1000, MaxProfitPerStrategy: 5000, DefaultQuantity: 5}
}

func run(t *testing.T, l risk.Limits, strategies []strategy.Strategy, closes ...float64) *Result {
	t.Helper()
	engine := NewEngine(zerolog.Nop(), strategies, risk.NewGate(l))
	res, err := engine.Run(context.Background(), bars(closes...))
	require.NoError(t, err)
	return res
}

func TestRunRoundTripFeedsPnLToGate(t *testing.T) {
	strat := &scripted{id: "s1", plan: map[int]sig.Side{0: sig.Buy, 1: sig.Sell}}
	res := run(t, limits(), []strategy.Strategy{strat}, 100, 110, 120)

	require.Len(t, res.Trades, 2)
	assert.Equal(t, int64(5), res.Trades[0].Quantity)
	assert.Equal(t, 100.0, res.Trades[0].Price)
	assert.Equal(t, int64(-5), res.Trades[1].Quantity)
	assert.InDelta(t, 50.0, res.Trades[1].RealizedPnL, 1e-9)
	assert.InDelta(t, 50.0, res.StrategyPnL["s1"], 1e-9)
	assert.InDelta(t, 50.0, res.RealizedPnL(), 1e-9)
	assert.Equal(t, 3, res.BarsProcessed)
	assert.NotEmpty(t, res.RunID)

	require.Len(t, res.Positions, 1)
	assert.True(t, res.Positions[0].Flat())
	assert.Equal(t, 120.0, res.LastClose["NIFTY"])
}

func TestRunLossLimitBlocksStrategy(t *testing.T) {
	l := limits()
	l.MaxLossPerStrategy = -40
	strat := &scripted{id: "loser", plan: map[int]sig.Side{0: sig.Buy, 1: sig.Sell, 2: sig.Buy, 3: sig.Sell}}
	res := run(t, l, []strategy.Strategy{strat}, 100, 90, 95, 99)

	require.Len(t, res.Trades, 2)
	require.Len(t, res.Skipped, 2)
	assert.Equal(t, "Risk manager rejected: max loss reached", res.Skipped[0].Reason)
	assert.InDelta(t, -50.0, res.Skipped[0].StrategyPnL, 1e-9)
	assert.Equal(t, "Risk manager rejected: strategy blocked", res.Skipped[1].Reason)
	assert.Equal(t, sig.Sell, res.Skipped[1].Side)
	assert.True(t, res.IsBlocked("loser"))
}

func TestRunPositionCapSkips(t *testing.T) {
	l := limits()
	l.MaxPositionSize = 5
	strat := &scripted{id: "s1", plan: map[int]sig.Side{0: sig.Buy, 1: sig.Buy}}
	res := run(t, l, []strategy.Strategy{strat}, 100, 101)

	require.Len(t, res.Trades, 1)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, int64(5), res.Skipped[0].CurrentPosition)
	assert.Contains(t, res.Skipped[0].Reason, string(risk.ReasonPositionLimit))

	pos := res.Positions[0]
	assert.Equal(t, int64(5), pos.Quantity)
	assert.InDelta(t, 5.0, pos.UnrealizedPnL, 1e-9)
	assert.InDelta(t, 5.0, res.UnrealizedPnL(), 1e-9)
}

func TestRunFlipScenario(t *testing.T) {
	l := limits()
	l.MaxPositionSize = 5
	l.DefaultQuantity = 8
	strat := &scripted{id: "s1", plan: map[int]sig.Side{0: sig.Buy, 1: sig.Sell}}
	res := run(t, l, []strategy.Strategy{strat}, 100, 90)

	require.Len(t, res.Trades, 2)
	assert.Equal(t, int64(5), res.Trades[0].Quantity)
	assert.Equal(t, int64(-8), res.Trades[1].Quantity)
	assert.InDelta(t, -50.0, res.Trades[1].RealizedPnL, 1e-9)

	pos := res.Positions[0].Position
	assert.Equal(t, execution.Position{StrategyID: "s1", Symbol: "NIFTY", Quantity: -3, AveragePrice: 90}, pos)
}

func TestRunStrategyOrderIsStable(t *testing.T) {
	a := &scripted{id: "a", plan: map[int]sig.Side{0: sig.Buy}}
	b := &scripted{id: "b", plan: map[int]sig.Side{0: sig.Sell}}
	res := run(t, limits(), []strategy.Strategy{a, b}, 100)

	require.Len(t, res.Trades, 2)
	assert.Equal(t, "a", res.Trades[0].StrategyID)
	assert.Equal(t, "b", res.Trades[1].StrategyID)
	assert.Equal(t, []string{"a", "b"}, res.StrategyIDs)
	assert.Equal(t, int64(-5), res.Positions[1].Quantity)
}

func TestRunForwardsToRecorder(t *testing.T) {
	rec := paper.NewLedger(0)
	strat := &scripted{id: "s1", plan: map[int]sig.Side{0: sig.Buy}}
	engine := NewEngine(zerolog.Nop(), []strategy.Strategy{strat}, risk.NewGate(limits()), WithRecorder(rec))
	_, err := engine.Run(context.Background(), bars(100))
	require.NoError(t, err)
	assert.Len(t, rec.Trades(), 1)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	strat := &scripted{id: "s1", plan: map[int]sig.Side{0: sig.Buy}}
	engine := NewEngine(zerolog.Nop(), []strategy.Strategy{strat}, risk.NewGate(limits()))

	res, err := engine.Run(ctx, bars(100, 101))
	assert.True(t, errors.Is(err, context.Canceled))
	require.NotNil(t, res)
	assert.Zero(t, res.BarsProcessed)
	assert.Empty(t, res.Trades)
}

func TestRunLogsProgress(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	strat := &scripted{id: "s1", plan: map[int]sig.Side{}}
	engine := NewEngine(logger, []strategy.Strategy{strat}, risk.NewGate(limits()), WithProgressEvery(2))

	_, err := engine.Run(context.Background(), bars(1, 2, 3, 4))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "progress")
	assert.Contains(t, buf.String(), "backtest complete")
}
