// Package report derives per-strategy statistics from a run and writes the flat export files.
package report

import (
	"github.com/shopspring/decimal"

	"minialgo-go/internal/execution"
)

// StrategyMetrics summarizes closed trades of one strategy. Money and rate fields are rounded to 2dp.
type StrategyMetrics struct {
	StrategyID    string
	TotalTrades   int
	TotalPnL      float64
	WinningTrades int
	LosingTrades  int
	WinRatePct    float64
	AvgWin        float64
	AvgLoss       float64
}

// Calculate only counts trades that realized PnL; opening legs are ignored.
func Calculate(strategyID string, trades []execution.Trade) StrategyMetrics {
	m := StrategyMetrics{StrategyID: strategyID}

	var total, wins, losses float64
	for _, t := range trades {
		if t.StrategyID != strategyID || !t.Closing() {
			continue
		}
		m.TotalTrades++
		total += t.RealizedPnL
		switch {
		case t.RealizedPnL > 0:
			m.WinningTrades++
			wins += t.RealizedPnL
		case t.RealizedPnL < 0:
			m.LosingTrades++
			losses += t.RealizedPnL
		}
	}
	if m.TotalTrades == 0 {
		return m
	}

	m.TotalPnL = round2(total)
	m.WinRatePct = round2(float64(m.WinningTrades) / float64(m.TotalTrades) * 100)
	if m.WinningTrades > 0 {
		m.AvgWin = round2(wins / float64(m.WinningTrades))
	}
	if m.LosingTrades > 0 {
		m.AvgLoss = round2(losses / float64(m.LosingTrades))
	}
	return m
}

// CalculateAll returns metrics for every strategy id in order.
func CalculateAll(strategyIDs []string, trades []execution.Trade) []StrategyMetrics {
	out := make([]StrategyMetrics, len(strategyIDs))
	for i, id := range strategyIDs {
		out[i] = Calculate(id, trades)
	}
	return out
}

func round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

func fixed2(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
