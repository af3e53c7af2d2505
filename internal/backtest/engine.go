// Package backtest replays bars through strategies, the risk gate and the execution engine.
package backtest

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"minialgo-go/internal/execution"
	"minialgo-go/internal/metrics"
	"minialgo-go/internal/paper"
	"minialgo-go/internal/risk"
	sig "minialgo-go/internal/signal"
	"minialgo-go/internal/strategy"
)

// Engine wires one run. Strategies are evaluated in the order given, for every bar.
type Engine struct {
	log        zerolog.Logger
	strategies []strategy.Strategy
	gate       *risk.Gate
	exec       *execution.Engine
	ledger     *paper.Ledger
	recorder   paper.TradeRecorder
	progress   int
}

// Option configures Engine construction parameters.
type Option func(*Engine)

// WithRecorder forwards every executed trade to r in addition to the ledger.
func WithRecorder(r paper.TradeRecorder) Option {
	return func(e *Engine) {
		if r != nil {
			e.recorder = r
		}
	}
}

// WithProgressEvery logs a progress line every n bars; 0 disables it.
func WithProgressEvery(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.progress = n
		}
	}
}

// NewEngine builds a run over fresh execution and ledger state.
func NewEngine(log zerolog.Logger, strategies []strategy.Strategy, gate *risk.Gate, opts ...Option) *Engine {
	e := &Engine{
		log:        log,
		strategies: strategies,
		gate:       gate,
		exec:       execution.NewEngine(),
		ledger:     paper.NewLedger(0),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run folds bars through the pipeline and returns the accumulated result.
// Cancellation is checked between bars; a cancelled run returns the partial result with ctx.Err().
func (e *Engine) Run(ctx context.Context, bars []sig.Bar) (*Result, error) {
	runID := uuid.NewString()
	log := e.log.With().Str("run", runID).Logger()
	log.Info().Int("bars", len(bars)).Strs("strategies", e.strategyIDs()).Msg("backtest starting")

	marks := make(map[string]float64)
	processed := 0
	for _, bar := range bars {
		if err := ctx.Err(); err != nil {
			log.Warn().Int("bars", processed).Msg("backtest cancelled")
			return e.result(runID, processed, marks), err
		}
		processed++
		marks[bar.Symbol] = bar.Close
		metrics.BarsTotal.WithLabelValues(bar.Symbol).Inc()

		for _, strat := range e.strategies {
			s := strat.OnBar(bar)
			if s == nil {
				continue
			}
			e.process(log, *s, bar.Close)
		}

		if e.progress > 0 && processed%e.progress == 0 {
			log.Debug().Int("bars", processed).Msg("progress")
		}
	}

	res := e.result(runID, processed, marks)
	log.Info().
		Int("bars", processed).
		Int("trades", len(res.Trades)).
		Int("skipped", len(res.Skipped)).
		Msg("backtest complete")
	return res, nil
}

func (e *Engine) process(log zerolog.Logger, s sig.Signal, price float64) {
	id, symbol := s.StrategyID(), s.Symbol()
	pos := e.exec.Position(id, symbol)

	decision := e.gate.Evaluate(s, pos)
	if !decision.Approved() {
		skip := paper.Skip{
			Timestamp:       s.Timestamp(),
			StrategyID:      id,
			Symbol:          symbol,
			Side:            s.Side(),
			Reason:          skipReason(decision.Reason),
			CurrentPosition: pos.Quantity,
			StrategyPnL:     e.gate.StrategyPnL(id),
		}
		e.ledger.RecordSkip(skip)
		metrics.SkippedTotal.WithLabelValues(id, string(decision.Reason)).Inc()
		log.Debug().Str("strategy", id).Str("side", string(s.Side())).Str("reason", skip.Reason).Msg("signal skipped")
		return
	}

	qty := decision.Quantity
	if s.Side() == sig.Sell {
		qty = -qty
	}
	trade, ok := e.exec.Execute(id, symbol, qty, price, s.Timestamp(), s.Reason())
	if !ok {
		return
	}
	e.ledger.Record(trade)
	if e.recorder != nil {
		e.recorder.Record(trade)
	}
	metrics.TradesTotal.WithLabelValues(id, string(trade.Side)).Inc()

	if trade.RealizedPnL != 0 {
		e.gate.UpdateStrategyPnL(id, trade.RealizedPnL)
		metrics.StrategyRealizedPnL.WithLabelValues(id).Set(e.gate.StrategyPnL(id))
	}
	log.Debug().
		Str("strategy", id).
		Str("side", string(trade.Side)).
		Int64("qty", trade.Quantity).
		Float64("px", trade.Price).
		Float64("pnl", trade.RealizedPnL).
		Str("reason", trade.Reason).
		Msg("trade")
}

func skipReason(r risk.Reason) string {
	if r == risk.ReasonNone {
		return "Risk manager rejected"
	}
	return fmt.Sprintf("Risk manager rejected: %s", r)
}

func (e *Engine) strategyIDs() []string {
	ids := make([]string, len(e.strategies))
	for i, s := range e.strategies {
		ids[i] = s.ID()
	}
	return ids
}

func (e *Engine) result(runID string, processed int, marks map[string]float64) *Result {
	positions := e.exec.Positions()
	views := make([]PositionView, len(positions))
	for i, p := range positions {
		mark, ok := marks[p.Symbol]
		view := PositionView{Position: p}
		if ok {
			view.Mark = mark
			view.UnrealizedPnL = p.UnrealizedPnL(mark)
		}
		views[i] = view
	}

	lastClose := make(map[string]float64, len(marks))
	for sym, px := range marks {
		lastClose[sym] = px
	}

	summary := e.gate.Summary()
	return &Result{
		RunID:         runID,
		BarsProcessed: processed,
		StrategyIDs:   e.strategyIDs(),
		Trades:        e.ledger.Trades(),
		Skipped:       e.ledger.Skips(),
		Positions:     views,
		LastClose:     lastClose,
		StrategyPnL:   summary.StrategyPnL,
		Blocked:       summary.Blocked,
	}
}
