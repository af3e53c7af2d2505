package signal

import (
	"errors"
	"testing"
	"time"
)

func TestNewRejectsInvalidSide(t *testing.T) {
	_, err := New("ema", "NIFTY", Side("HOLD"), time.Now(), "")
	if !errors.Is(err, ErrInvalidSide) {
		t.Fatalf("expected ErrInvalidSide, got %v", err)
	}
}

func TestNewKeepsFields(t *testing.T) {
	ts := time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)
	sig, err := New("ema", "NIFTY", Buy, ts, "cross")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if sig.StrategyID() != "ema" || sig.Symbol() != "NIFTY" || sig.Side() != Buy || !sig.Timestamp().Equal(ts) || sig.Reason() != "cross" {
		t.Fatalf("unexpected signal %s", sig)
	}
}

func TestParseSide(t *testing.T) {
	cases := map[string]Side{"buy": Buy, " SELL ": Sell, "Buy": Buy}
	for raw, want := range cases {
		got, err := ParseSide(raw)
		if err != nil || got != want {
			t.Fatalf("ParseSide(%q) = %s, %v", raw, got, err)
		}
	}
	if _, err := ParseSide("short"); err == nil {
		t.Fatalf("expected error for unknown side")
	}
}
