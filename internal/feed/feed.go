// Package feed loads historical bars from flat files and replays them in timestamp order.
package feed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"minialgo-go/internal/signal"
)

// ErrMissingColumn is returned when the header lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

var requiredColumns = []string{"timestamp", "open", "high", "low", "close"}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Feed holds bars for a single symbol sorted by timestamp.
type Feed struct {
	symbol string
	bars   []signal.Bar
}

// LoadCSV opens path and parses it with Parse.
func LoadCSV(path, symbol string) (*Feed, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bars: %w", err)
	}
	defer file.Close()

	f, err := Parse(file, symbol)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse reads CSV rows with a header containing timestamp, open, high, low and close (any order, any case).
// Any malformed row aborts the load.
func Parse(r io.Reader, symbol string) (*Feed, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty input: header required")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
	}

	var bars []signal.Bar
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		bar, err := parseRow(record, cols, symbol)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		bars = append(bars, bar)
	}

	sort.SliceStable(bars, func(i, j int) bool {
		return bars[i].Timestamp.Before(bars[j].Timestamp)
	})
	return &Feed{symbol: symbol, bars: bars}, nil
}

// FromBars builds a feed from in-memory bars, sorting them by timestamp.
func FromBars(symbol string, bars []signal.Bar) *Feed {
	out := make([]signal.Bar, len(bars))
	copy(out, bars)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return &Feed{symbol: symbol, bars: out}
}

// Symbol returns the symbol stamped on every bar.
func (f *Feed) Symbol() string { return f.symbol }

// Len returns the number of bars.
func (f *Feed) Len() int { return len(f.bars) }

// Bars returns the bars in replay order. The slice must not be modified.
func (f *Feed) Bars() []signal.Bar { return f.bars }

func parseRow(record []string, cols map[string]int, symbol string) (signal.Bar, error) {
	field := func(name string) (string, error) {
		i := cols[name]
		if i >= len(record) {
			return "", fmt.Errorf("column %q missing from row", name)
		}
		return strings.TrimSpace(record[i]), nil
	}

	raw, err := field("timestamp")
	if err != nil {
		return signal.Bar{}, err
	}
	ts, err := parseTime(raw)
	if err != nil {
		return signal.Bar{}, err
	}

	var prices [4]float64
	for i, name := range requiredColumns[1:] {
		raw, err := field(name)
		if err != nil {
			return signal.Bar{}, err
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return signal.Bar{}, fmt.Errorf("parse %s %q: %w", name, raw, err)
		}
		prices[i] = v
	}

	return signal.Bar{
		Timestamp: ts,
		Symbol:    symbol,
		Open:      prices[0],
		High:      prices[1],
		Low:       prices[2],
		Close:     prices[3],
	}, nil
}

func parseTime(raw string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse timestamp %q: unsupported layout", raw)
}
