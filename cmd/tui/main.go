package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"minialgo-go/internal/config"
)

const defaultConfigPath = "internal/config/config.yaml"

func main() {
	reader := bufio.NewReader(os.Stdin)

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	for {
		fmt.Println("\n=== MiniAlgo Backtest Control ===")
		fmt.Println("1) Show configuration summary")
		fmt.Println("2) Edit risk limits")
		fmt.Println("3) Edit data source")
		fmt.Println("4) Edit strategies")
		fmt.Println("5) Save config")
		fmt.Println("6) Run backtest")
		fmt.Println("7) Reload config from disk")
		fmt.Println("0) Exit")
		fmt.Print("Select option: ")

		input, _ := reader.ReadString('\n')
		choice := strings.TrimSpace(input)

		switch choice {
		case "1":
			printSummary(cfg)
		case "2":
			editRisk(reader, cfg)
		case "3":
			editData(reader, cfg)
		case "4":
			editStrategies(reader, cfg)
		case "5":
			if err := cfg.Validate(); err != nil {
				fmt.Fprintf(os.Stderr, "config invalid, not saved:\n%v\n", err)
			} else if err := saveConfig(cfg); err != nil {
				fmt.Fprintf(os.Stderr, "save failed: %v\n", err)
			} else {
				fmt.Println("config saved")
			}
		case "6":
			runBacktest(reader)
		case "7":
			reloaded, err := loadConfig()
			if err != nil {
				fmt.Fprintf(os.Stderr, "reload failed: %v\n", err)
			} else {
				cfg = reloaded
				fmt.Println("config reloaded")
			}
		case "0":
			return
		default:
			fmt.Println("unknown option")
		}
	}
}

func printSummary(cfg *config.Config) {
	limits := cfg.RiskLimits()
	fmt.Println("\n--- Configuration Summary ---")
	fmt.Printf("Data: %s (%s)\n", cfg.Data.Path, cfg.Data.Symbol)
	fmt.Printf("Max position size: %d\n", limits.MaxPositionSize)
	fmt.Printf("Default quantity: %d\n", limits.DefaultQuantity)
	fmt.Printf("Max loss per strategy: %.2f\n", limits.MaxLossPerStrategy)
	fmt.Printf("Max profit per strategy: %.2f\n", limits.MaxProfitPerStrategy)
	fmt.Println("Strategies:")
	for _, s := range cfg.Strategies {
		kind := s.Kind
		if kind == "" {
			kind = s.ID
		}
		fmt.Printf("  - %s (%s)\n", s.ID, kind)
	}
	fmt.Printf("Output dir: %s\n", cfg.Report.OutputDir)
}

func editRisk(reader *bufio.Reader, cfg *config.Config) {
	fmt.Println("\n--- Edit Risk Limits ---")
	limits := cfg.RiskLimits()
	cfg.Risk.MaxPositionSize = promptInt(reader, "Max position size", limits.MaxPositionSize)
	cfg.Risk.DefaultQuantity = promptInt(reader, "Default quantity", limits.DefaultQuantity)
	cfg.Risk.MaxLossPerStrategy = promptFloat(reader, "Max loss per strategy (negative)", limits.MaxLossPerStrategy)
	cfg.Risk.MaxProfitPerStrategy = promptFloat(reader, "Max profit per strategy", limits.MaxProfitPerStrategy)
	if err := cfg.RiskLimits().Validate(); err != nil {
		fmt.Printf("warning: %v\n", err)
	}
}

func editData(reader *bufio.Reader, cfg *config.Config) {
	fmt.Println("\n--- Edit Data Source ---")
	cfg.Data.Path = promptString(reader, "Bar CSV path", cfg.Data.Path)
	cfg.Data.Symbol = promptString(reader, "Symbol", cfg.Data.Symbol)
	cfg.Report.OutputDir = promptString(reader, "Output dir", cfg.Report.OutputDir)
}

func editStrategies(reader *bufio.Reader, cfg *config.Config) {
	fmt.Println("\n--- Edit Strategies ---")
	ids := make([]string, 0, len(cfg.Strategies))
	for _, s := range cfg.Strategies {
		ids = append(ids, s.ID)
	}
	fmt.Printf("Current strategies: %s\n", strings.Join(ids, ", "))
	fmt.Print("Enter strategy ids comma-separated (blank to keep): ")
	line, _ := reader.ReadString('\n')
	if strings.TrimSpace(line) == "" {
		return
	}
	existing := make(map[string]config.Strategy, len(cfg.Strategies))
	for _, s := range cfg.Strategies {
		existing[s.ID] = s
	}
	cfg.Strategies = nil
	for _, p := range strings.Split(strings.TrimSpace(line), ",") {
		id := strings.TrimSpace(p)
		if id == "" {
			continue
		}
		s, ok := existing[id]
		if !ok {
			s = config.Strategy{ID: id}
		}
		cfg.Strategies = append(cfg.Strategies, s)
	}
}

func runBacktest(reader *bufio.Reader) {
	fmt.Println("Running backtest (ENTER aborts)...")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd := exec.CommandContext(ctx, "go", "run", "./cmd/backtest", "-config", locateConfig())
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start backtest: %v\n", err)
		return
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	abort := make(chan struct{})
	go func() {
		_, _ = reader.ReadString('\n')
		close(abort)
	}()

	select {
	case err := <-done:
		if err != nil {
			fmt.Fprintf(os.Stderr, "backtest failed: %v\n", err)
		}
		fmt.Print("\nPress ENTER to return to menu...")
		<-abort
	case <-abort:
		cancel()
		select {
		case <-done:
		case <-time.After(500 * time.Millisecond):
		}
	}
}

func promptString(reader *bufio.Reader, label, current string) string {
	fmt.Printf("%s [%s]: ", label, current)
	line, _ := reader.ReadString('\n')
	if line = strings.TrimSpace(line); line != "" {
		return line
	}
	return current
}

func promptInt(reader *bufio.Reader, label string, current int64) int64 {
	fmt.Printf("%s [%d]: ", label, current)
	line, _ := reader.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return current
	}
	val, err := strconv.ParseInt(line, 10, 64)
	if err != nil {
		fmt.Printf("invalid number, keeping %d\n", current)
		return current
	}
	return val
}

func promptFloat(reader *bufio.Reader, label string, current float64) float64 {
	fmt.Printf("%s [%.2f]: ", label, current)
	line, _ := reader.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return current
	}
	val, err := strconv.ParseFloat(line, 64)
	if err != nil {
		fmt.Printf("invalid number, keeping %.2f\n", current)
		return current
	}
	return val
}

func loadConfig() (*config.Config, error) {
	return config.Load(locateConfig())
}

func saveConfig(cfg *config.Config) error {
	return config.Save(locateConfig(), cfg)
}

func locateConfig() string {
	return filepath.Clean(defaultConfigPath)
}
