package report

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minialgo-go/internal/backtest"
	"minialgo-go/internal/execution"
	"minialgo-go/internal/paper"
	"minialgo-go/internal/signal"
)

var ts = time.Date(2024, 1, 2, 9, 45, 0, 0, time.UTC)

func trades() []execution.Trade {
	return []execution.Trade{
		{StrategyID: "ema", Symbol: "NIFTY", Side: execution.Buy, Quantity: 5, Price: 100, Timestamp: ts, Reason: "in"},
		{StrategyID: "ema", Symbol: "NIFTY", Side: execution.Sell, Quantity: -5, Price: 110.5, Timestamp: ts.Add(time.Minute), RealizedPnL: 52.5, Reason: "out"},
		{StrategyID: "ema", Symbol: "NIFTY", Side: execution.Buy, Quantity: 5, Price: 100, Timestamp: ts.Add(2 * time.Minute)},
		{StrategyID: "ema", Symbol: "NIFTY", Side: execution.Sell, Quantity: -5, Price: 96.666, Timestamp: ts.Add(3 * time.Minute), RealizedPnL: -16.67},
		{StrategyID: "ema", Symbol: "NIFTY", Side: execution.Sell, Quantity: -5, Price: 101, Timestamp: ts.Add(4 * time.Minute), RealizedPnL: 10},
		{StrategyID: "mr", Symbol: "NIFTY", Side: execution.Buy, Quantity: 5, Price: 99, Timestamp: ts},
	}
}

func TestCalculate(t *testing.T) {
	m := Calculate("ema", trades())
	assert.Equal(t, StrategyMetrics{
		StrategyID:    "ema",
		TotalTrades:   3,
		TotalPnL:      45.83,
		WinningTrades: 2,
		LosingTrades:  1,
		WinRatePct:    66.67,
		AvgWin:        31.25,
		AvgLoss:       -16.67,
	}, m)
}

func TestCalculateNoClosedTrades(t *testing.T) {
	m := Calculate("mr", trades())
	assert.Equal(t, StrategyMetrics{StrategyID: "mr"}, m)

	all := CalculateAll([]string{"mr", "ghost"}, trades())
	require.Len(t, all, 2)
	assert.Equal(t, "ghost", all[1].StrategyID)
	assert.Zero(t, all[1].TotalTrades)
}

func readCSV(t *testing.T, data string) [][]string {
	t.Helper()
	rows, err := csv.NewReader(strings.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteTrades(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTrades(&buf, trades()[:2]))

	rows := readCSV(t, buf.String())
	require.Len(t, rows, 3)
	assert.Equal(t, tradeHeader, rows[0])
	assert.Equal(t, []string{"2024-01-02 09:46:00", "ema", "NIFTY", "SELL", "-5", "110.5", "52.50", "out"}, rows[2])
}

func TestWriteSkipped(t *testing.T) {
	var buf bytes.Buffer
	skips := []paper.Skip{{
		Timestamp:       ts,
		StrategyID:      "ema",
		Symbol:          "NIFTY",
		Side:            signal.Buy,
		Reason:          "Risk manager rejected: max loss reached",
		CurrentPosition: 0,
		StrategyPnL:     -1000.456,
	}}
	require.NoError(t, WriteSkipped(&buf, skips))

	rows := readCSV(t, buf.String())
	require.Len(t, rows, 2)
	assert.Equal(t, skippedHeader, rows[0])
	assert.Equal(t, []string{"2024-01-02 09:45:00", "ema", "NIFTY", "BUY", "Risk manager rejected: max loss reached", "0", "-1000.46"}, rows[1])
}

func TestWriteMetricsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "metrics.csv")
	metrics := CalculateAll([]string{"ema", "mr"}, trades())
	require.NoError(t, WriteFile(path, func(w io.Writer) error { return WriteMetrics(w, metrics) }))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	rows := readCSV(t, string(data))
	require.Len(t, rows, 3)
	assert.Equal(t, metricsHeader, rows[0])
	assert.Equal(t, []string{"ema", "3", "45.83", "2", "1", "66.67", "31.25", "-16.67"}, rows[1])
	assert.Equal(t, []string{"mr", "0", "0.00", "0", "0", "0.00", "0.00", "0.00"}, rows[2])
}

func TestWriteSummary(t *testing.T) {
	res := &backtest.Result{
		RunID:         "run-1",
		BarsProcessed: 10,
		StrategyIDs:   []string{"ema", "mr"},
		Trades:        trades()[:2],
		Skipped:       []paper.Skip{{Timestamp: ts, StrategyID: "mr", Side: signal.Buy, Reason: "Risk manager rejected: strategy blocked"}},
		Positions: []backtest.PositionView{{
			Position:      execution.Position{StrategyID: "mr", Symbol: "NIFTY", Quantity: 5, AveragePrice: 99},
			Mark:          101,
			UnrealizedPnL: 10,
		}},
		StrategyPnL: map[string]float64{"ema": 52.5, "mr": 0},
		Blocked:     []string{"mr"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, res))
	out := buf.String()

	assert.Contains(t, out, "Strategy: ema")
	assert.Contains(t, out, "PnL: +52.50")
	assert.Contains(t, out, "Reason: Risk manager rejected: strategy blocked")
	assert.Contains(t, out, "Qty=5 AvgPrice=99.00 UnrealizedPnL=10.00")
	assert.Contains(t, out, "[BLOCKED]")
	assert.Contains(t, out, "+62.50")
}
