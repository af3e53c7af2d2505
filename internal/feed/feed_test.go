package feed

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"minialgo-go/internal/signal"
)

func TestLoadCSVSortsBars(t *testing.T) {
	f, err := LoadCSV(filepath.Join("testdata", "bars.csv"), "NIFTY")
	if err != nil {
		t.Fatalf("LoadCSV returned error: %v", err)
	}
	if f.Len() != 3 {
		t.Fatalf("expected 3 bars, got %d", f.Len())
	}
	bars := f.Bars()
	for i := 1; i < len(bars); i++ {
		if bars[i].Timestamp.Before(bars[i-1].Timestamp) {
			t.Fatalf("bars not sorted at %d", i)
		}
	}
	first := bars[0]
	if first.Symbol != "NIFTY" || first.Close != 99.5 || first.Timestamp.Minute() != 15 {
		t.Fatalf("unexpected first bar %+v", first)
	}
}

func TestLoadCSVMissingFile(t *testing.T) {
	if _, err := LoadCSV(filepath.Join(t.TempDir(), "missing.csv"), "NIFTY"); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestParseMissingColumn(t *testing.T) {
	_, err := Parse(strings.NewReader("time,open,high,low,close\n"), "NIFTY")
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
}

func TestParseMalformedRow(t *testing.T) {
	input := "Timestamp,Open,High,Low,Close\n2024-01-02T09:15:00Z,1,2,0.5,abc\n"
	_, err := Parse(strings.NewReader(input), "NIFTY")
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("expected line error, got %v", err)
	}
}

func TestParseBadTimestamp(t *testing.T) {
	input := "timestamp,open,high,low,close\n02/01/2024,1,2,0.5,1\n"
	if _, err := Parse(strings.NewReader(input), "NIFTY"); err == nil {
		t.Fatalf("expected timestamp error")
	}
}

func TestParseEmpty(t *testing.T) {
	if _, err := Parse(strings.NewReader(""), "NIFTY"); err == nil {
		t.Fatalf("expected error for empty input")
	}
}

func TestFromBarsSorts(t *testing.T) {
	base := time.Date(2024, 1, 2, 9, 15, 0, 0, time.UTC)
	in := []signal.Bar{{Timestamp: base.Add(time.Minute)}, {Timestamp: base}}
	f := FromBars("X", in)
	if !f.Bars()[0].Timestamp.Equal(base) {
		t.Fatalf("expected earliest bar first")
	}
	if !in[0].Timestamp.Equal(base.Add(time.Minute)) {
		t.Fatalf("input slice was mutated")
	}
}
