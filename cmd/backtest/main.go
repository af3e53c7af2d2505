package main

import (
	"context"
	"flag"
	"io"
	"os"
	ossignal "os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"

	"minialgo-go/internal/backtest"
	"minialgo-go/internal/config"
	"minialgo-go/internal/feed"
	"minialgo-go/internal/metrics"
	"minialgo-go/internal/paper"
	"minialgo-go/internal/report"
	"minialgo-go/internal/risk"
	"minialgo-go/internal/strategy"
	"minialgo-go/internal/util"
)

func main() {
	configPath := flag.String("config", "internal/config/config.yaml", "path to the YAML config")
	envFile := flag.String("env", ".env", "optional .env file with BACKTEST_* overrides")
	flag.Parse()

	log := util.NewLogger("info", false)
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	cfg.ApplyEnv(*envFile)

	log = util.NewLogger(cfg.App.LogLevel, cfg.App.PrettyLogs)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	if cfg.App.MetricsAddr != "" {
		srv := metrics.Serve(cfg.App.MetricsAddr)
		defer srv.Close()
		log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")
	}

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	bars, err := feed.LoadCSV(cfg.Data.Path, cfg.Data.Symbol)
	if err != nil {
		log.Fatal().Err(err).Msg("load bars")
	}
	log.Info().Int("bars", bars.Len()).Str("path", cfg.Data.Path).Msg("bars loaded")

	strategies := make([]strategy.Strategy, 0, len(cfg.Strategies))
	for _, params := range cfg.StrategyParams() {
		s, err := strategy.Build(params)
		if err != nil {
			log.Fatal().Err(err).Msg("build strategy")
		}
		strategies = append(strategies, s)
	}

	opts := []backtest.Option{backtest.WithProgressEvery(cfg.Report.ProgressEveryN)}
	var jsonl *paper.JSONLRecorder
	if cfg.Report.TradesJSONL != "" {
		jsonl, err = paper.NewJSONLRecorder(output(cfg, cfg.Report.TradesJSONL))
		if err != nil {
			log.Fatal().Err(err).Msg("open trades jsonl")
		}
		opts = append(opts, backtest.WithRecorder(jsonl))
	}

	engine := backtest.NewEngine(log, strategies, risk.NewGate(cfg.RiskLimits()), opts...)
	res, err := engine.Run(ctx, bars.Bars())
	if jsonl != nil {
		if cerr := jsonl.Close(); cerr != nil {
			log.Error().Err(cerr).Msg("close trades jsonl")
		}
	}
	if err != nil {
		log.Fatal().Err(err).Msg("backtest aborted")
	}

	if cfg.Report.PrintSummary {
		if err := report.WriteSummary(os.Stdout, res); err != nil {
			log.Error().Err(err).Msg("print summary")
		}
	}
	if err := export(cfg, res, log); err != nil {
		log.Fatal().Err(err).Msg("export reports")
	}
	log.Info().Str("run", res.RunID).Msg("backtest completed")
}

func export(cfg *config.Config, res *backtest.Result, log zerolog.Logger) error {
	targets := []struct {
		path  string
		write func(io.Writer) error
	}{
		{cfg.Report.TradesCSV, func(w io.Writer) error { return report.WriteTrades(w, res.Trades) }},
		{cfg.Report.SkippedCSV, func(w io.Writer) error { return report.WriteSkipped(w, res.Skipped) }},
		{cfg.Report.MetricsCSV, func(w io.Writer) error {
			return report.WriteMetrics(w, report.CalculateAll(res.StrategyIDs, res.Trades))
		}},
	}
	for _, target := range targets {
		if target.path == "" {
			continue
		}
		path := output(cfg, target.path)
		if err := report.WriteFile(path, target.write); err != nil {
			return err
		}
		log.Info().Str("path", path).Msg("exported")
	}
	if cfg.Report.PromTextfile != "" {
		path := output(cfg, cfg.Report.PromTextfile)
		if err := metrics.WriteTextfile(path); err != nil {
			return err
		}
		log.Info().Str("path", path).Msg("exported")
	}
	return nil
}

func output(cfg *config.Config, name string) string {
	if filepath.IsAbs(name) || cfg.Report.OutputDir == "" {
		return name
	}
	return filepath.Join(cfg.Report.OutputDir, name)
}
