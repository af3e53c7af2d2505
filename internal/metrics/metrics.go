package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	BarsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "backtest_bars_total", Help: "Count of bars replayed"},
		[]string{"symbol"},
	)
	TradesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "backtest_trades_total", Help: "Trades executed"},
		[]string{"strategy", "side"},
	)
	SkippedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "backtest_skipped_total", Help: "Signals rejected by the risk gate"},
		[]string{"strategy", "reason"},
	)
	StrategyRealizedPnL = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "backtest_strategy_realized_pnl", Help: "Cumulative realized PnL per strategy"},
		[]string{"strategy"},
	)
)

func init() {
	prometheus.MustRegister(BarsTotal, TradesTotal, SkippedTotal, StrategyRealizedPnL)
}

// Serve exposes /metrics on addr in the background.
func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}

// WriteTextfile dumps the default registry in the text exposition format, for node_exporter style collection.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
