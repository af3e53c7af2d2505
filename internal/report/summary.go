package report

import (
	"fmt"
	"io"
	"strings"

	"minialgo-go/internal/backtest"
)

var rule = strings.Repeat("-", 80)

// WriteSummary renders the human-readable run report: trade trace, skips, positions and PnL.
func WriteSummary(w io.Writer, res *backtest.Result) error {
	p := &printer{w: w}

	p.linef("Run %s: %d bars, %d trades, %d skipped", res.RunID, res.BarsProcessed, len(res.Trades), len(res.Skipped))

	p.section("TRADE-BY-TRADE EXECUTION TRACE")
	for _, id := range res.StrategyIDs {
		var printed bool
		for _, t := range res.Trades {
			if t.StrategyID != id {
				continue
			}
			if !printed {
				p.linef("\nStrategy: %s", id)
				printed = true
			}
			pnl := ""
			if t.Closing() {
				pnl = fmt.Sprintf(" | PnL: %+.2f", t.RealizedPnL)
			}
			p.linef("%-4s -> %s | Price: %7.2f | Qty: %+2d%s", t.Side, formatTime(t.Timestamp), t.Price, t.Quantity, pnl)
		}
	}

	p.section("SKIPPED TRADES (BLOCKED BY RISK MANAGER)")
	if len(res.Skipped) == 0 {
		p.linef("No trades were skipped by risk rules.")
	}
	for _, s := range res.Skipped {
		p.linef("SKIP -> %s | %-20s | %-4s | Reason: %s", formatTime(s.Timestamp), s.StrategyID, s.Side, s.Reason)
	}

	p.section("FINAL POSITION SUMMARY")
	if len(res.Positions) == 0 {
		p.linef("No open positions")
	}
	for _, pos := range res.Positions {
		p.linef("%-20s %-10s Qty=%d AvgPrice=%.2f UnrealizedPnL=%.2f", pos.StrategyID, pos.Symbol, pos.Quantity, pos.AveragePrice, pos.UnrealizedPnL)
	}

	p.section("STRATEGY PnL SUMMARY")
	for _, id := range res.StrategyIDs {
		blocked := ""
		if res.IsBlocked(id) {
			blocked = " [BLOCKED]"
		}
		p.linef("%-25s: %+10.2f%s", id, res.StrategyPnL[id], blocked)
	}
	realized, unrealized := res.RealizedPnL(), res.UnrealizedPnL()
	p.linef("\n%-25s: %+10.2f", "REALIZED", realized)
	p.linef("%-25s: %+10.2f", "UNREALIZED", unrealized)
	p.linef("%-25s: %+10.2f", "TOTAL PnL", realized+unrealized)
	return p.err
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) linef(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *printer) section(title string) {
	p.linef("\n%s\n%s", title, rule)
}
