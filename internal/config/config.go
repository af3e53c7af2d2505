// Package config exposes strongly typed backtest configuration structs loaded from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"minialgo-go/internal/risk"
	"minialgo-go/internal/strategy"
)

// App captures process-wide runtime settings such as name, metrics, and logging.
type App struct {
	Name        string `yaml:"name"`
	LogLevel    string `yaml:"log_level"`
	PrettyLogs  bool   `yaml:"pretty_logs"`
	MetricsAddr string `yaml:"metrics_addr"`
}

// Data points at the bar file replayed by the run.
type Data struct {
	Path   string `yaml:"path"`
	Symbol string `yaml:"symbol"`
}

// Risk encodes the per-strategy guard-rails. Zero values fall back to risk defaults.
type Risk struct {
	MaxPositionSize      int64   `yaml:"max_position_size"`
	MaxLossPerStrategy   float64 `yaml:"max_loss_per_strategy"`
	MaxProfitPerStrategy float64 `yaml:"max_profit_per_strategy"`
	DefaultQuantity      int64   `yaml:"default_quantity"`
}

// Strategy configures one strategy instance. Kind defaults to ID.
type Strategy struct {
	ID         string `yaml:"id"`
	Kind       string `yaml:"kind"`
	FastPeriod int    `yaml:"fast_period"`
	SlowPeriod int    `yaml:"slow_period"`
	Period     int    `yaml:"period"`
	RangeEnd   string `yaml:"range_end"`
	EntryTime  string `yaml:"entry_time"`
	ExitTime   string `yaml:"exit_time"`
}

// Report lists the export targets; empty paths are skipped.
type Report struct {
	OutputDir      string `yaml:"output_dir"`
	TradesCSV      string `yaml:"trades_csv"`
	SkippedCSV     string `yaml:"skipped_csv"`
	MetricsCSV     string `yaml:"metrics_csv"`
	TradesJSONL    string `yaml:"trades_jsonl"`
	PromTextfile   string `yaml:"prom_textfile"`
	PrintSummary   bool   `yaml:"print_summary"`
	ProgressEveryN int    `yaml:"progress_every"`
}

// Config collects every configuration leaf for easy marshaling from YAML.
type Config struct {
	App        App        `yaml:"app"`
	Data       Data       `yaml:"data"`
	Risk       Risk       `yaml:"risk"`
	Strategies []Strategy `yaml:"strategies"`
	Report     Report     `yaml:"report"`
}

// Load reads a YAML file from disk and hydrates a Config struct.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return &config, nil
}

// Save persists a Config struct to disk as YAML.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Environment overrides honoured by ApplyEnv.
const (
	EnvDataPath    = "BACKTEST_DATA_PATH"
	EnvSymbol      = "BACKTEST_SYMBOL"
	EnvLogLevel    = "BACKTEST_LOG_LEVEL"
	EnvOutputDir   = "BACKTEST_OUTPUT_DIR"
	EnvMetricsAddr = "BACKTEST_METRICS_ADDR"
)

// ApplyEnv loads .env files (best-effort) and lets environment variables override file values.
func (c *Config) ApplyEnv(envFiles ...string) {
	_ = godotenv.Load(envFiles...)
	override(&c.Data.Path, EnvDataPath)
	override(&c.Data.Symbol, EnvSymbol)
	override(&c.App.LogLevel, EnvLogLevel)
	override(&c.Report.OutputDir, EnvOutputDir)
	override(&c.App.MetricsAddr, EnvMetricsAddr)
}

func override(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

// RiskLimits maps the risk section onto gate limits, filling unset values with defaults.
func (c *Config) RiskLimits() risk.Limits {
	limits := risk.DefaultLimits()
	if c.Risk.MaxPositionSize != 0 {
		limits.MaxPositionSize = c.Risk.MaxPositionSize
	}
	if c.Risk.MaxLossPerStrategy != 0 {
		limits.MaxLossPerStrategy = c.Risk.MaxLossPerStrategy
	}
	if c.Risk.MaxProfitPerStrategy != 0 {
		limits.MaxProfitPerStrategy = c.Risk.MaxProfitPerStrategy
	}
	if c.Risk.DefaultQuantity != 0 {
		limits.DefaultQuantity = c.Risk.DefaultQuantity
	}
	return limits
}

// StrategyParams converts every configured strategy into constructor params for the data symbol.
func (c *Config) StrategyParams() []strategy.Params {
	out := make([]strategy.Params, 0, len(c.Strategies))
	for _, s := range c.Strategies {
		out = append(out, strategy.Params{
			ID:         s.ID,
			Kind:       s.Kind,
			Symbol:     c.Data.Symbol,
			FastPeriod: s.FastPeriod,
			SlowPeriod: s.SlowPeriod,
			Period:     s.Period,
			RangeEnd:   s.RangeEnd,
			EntryTime:  s.EntryTime,
			ExitTime:   s.ExitTime,
		})
	}
	return out
}

// Validate reports every structural problem at once.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Data.Path) == "" {
		errs = append(errs, errors.New("data.path is required"))
	}
	if strings.TrimSpace(c.Data.Symbol) == "" {
		errs = append(errs, errors.New("data.symbol is required"))
	}
	if len(c.Strategies) == 0 {
		errs = append(errs, errors.New("at least one strategy is required"))
	}
	seen := make(map[string]struct{}, len(c.Strategies))
	for i, s := range c.Strategies {
		if strings.TrimSpace(s.ID) == "" {
			errs = append(errs, fmt.Errorf("strategies[%d].id is required", i))
			continue
		}
		if _, dup := seen[s.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate strategy id %q", s.ID))
		}
		seen[s.ID] = struct{}{}
	}
	if err := c.RiskLimits().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("risk: %w", err))
	}
	return errors.Join(errs...)
}
