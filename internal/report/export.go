package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"minialgo-go/internal/execution"
	"minialgo-go/internal/paper"
)

const timeFormat = "2006-01-02 15:04:05"

var (
	tradeHeader   = []string{"timestamp", "strategy_id", "symbol", "side", "quantity", "price", "realized_pnl", "reason"}
	skippedHeader = []string{"timestamp", "strategy_id", "symbol", "side", "reason", "current_position", "strategy_pnl"}
	metricsHeader = []string{"strategy_id", "total_trades", "total_pnl", "winning_trades", "losing_trades", "win_rate_%", "avg_win", "avg_loss"}
)

// WriteTrades writes one row per trade.
func WriteTrades(w io.Writer, trades []execution.Trade) error {
	rows := make([][]string, 0, len(trades))
	for _, t := range trades {
		rows = append(rows, []string{
			formatTime(t.Timestamp),
			t.StrategyID,
			t.Symbol,
			string(t.Side),
			strconv.FormatInt(t.Quantity, 10),
			strconv.FormatFloat(t.Price, 'f', -1, 64),
			fixed2(t.RealizedPnL),
			t.Reason,
		})
	}
	return writeCSV(w, tradeHeader, rows)
}

// WriteSkipped writes one row per rejected signal.
func WriteSkipped(w io.Writer, skips []paper.Skip) error {
	rows := make([][]string, 0, len(skips))
	for _, s := range skips {
		rows = append(rows, []string{
			formatTime(s.Timestamp),
			s.StrategyID,
			s.Symbol,
			string(s.Side),
			s.Reason,
			strconv.FormatInt(s.CurrentPosition, 10),
			fixed2(s.StrategyPnL),
		})
	}
	return writeCSV(w, skippedHeader, rows)
}

// WriteMetrics writes one row per strategy.
func WriteMetrics(w io.Writer, metrics []StrategyMetrics) error {
	rows := make([][]string, 0, len(metrics))
	for _, m := range metrics {
		rows = append(rows, []string{
			m.StrategyID,
			strconv.Itoa(m.TotalTrades),
			fixed2(m.TotalPnL),
			strconv.Itoa(m.WinningTrades),
			strconv.Itoa(m.LosingTrades),
			fixed2(m.WinRatePct),
			fixed2(m.AvgWin),
			fixed2(m.AvgLoss),
		})
	}
	return writeCSV(w, metricsHeader, rows)
}

// WriteFile creates path (and its directory) and hands the file to write.
func WriteFile(path string, write func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(file); err != nil {
		file.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return file.Close()
}

func writeCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

func formatTime(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.Format(timeFormat)
}
