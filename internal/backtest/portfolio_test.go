package backtest

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/prabhat-krai/ema-tracker/internal/rules"
)

func day(n int) time.Time {
	return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestEntrySignalsOpenPosition(t *testing.T) {
	for _, sig := range []rules.Signal{rules.SignalBullish, rules.SignalHoldAdd} {
		p := NewPortfolio()
		p.ProcessSignal(day(0), rules.Result{Symbol: "TCS", Signal: sig, CurrentPrice: 200})

		if !p.Holding("TCS") {
			t.Errorf("%s signal should open a position", sig)
		}
		if got := len(p.OpenPositions()); got != 1 {
			t.Errorf("%s: open positions = %d, want 1", sig, got)
		}
	}
}

func TestRepeatedEntryIsIdempotent(t *testing.T) {
	p := NewPortfolio()
	p.ProcessSignal(day(0), rules.Result{Symbol: "TCS", Signal: rules.SignalBullish, CurrentPrice: 200})
	p.ProcessSignal(day(7), rules.Result{Symbol: "TCS", Signal: rules.SignalHoldAdd, CurrentPrice: 210})

	positions := p.OpenPositions()
	if len(positions) != 1 {
		t.Fatalf("open positions = %d, want 1", len(positions))
	}
	if positions[0].EntryPrice != 200 {
		t.Errorf("entry price = %v, want original 200", positions[0].EntryPrice)
	}
	if got := len(p.Events()); got != 1 {
		t.Errorf("events = %d, want single BUY", got)
	}
}

func TestExitClosesAndComputesReturn(t *testing.T) {
	p := NewPortfolio()
	p.ProcessSignal(day(0), rules.Result{Symbol: "TCS", Signal: rules.SignalBullish, CurrentPrice: 200})
	p.ProcessSignal(day(28), rules.Result{Symbol: "TCS", Signal: rules.SignalExit, CurrentPrice: 190})

	if p.Holding("TCS") {
		t.Error("EXIT should close the position")
	}
	trades := p.ClosedTrades()
	if len(trades) != 1 {
		t.Fatalf("closed trades = %d, want 1", len(trades))
	}
	if got := trades[0].ReturnPct(); math.Abs(got-(-0.05)) > 1e-12 {
		t.Errorf("return = %v, want -0.05", got)
	}
}

func TestExitWhileFlatIsNoop(t *testing.T) {
	p := NewPortfolio()
	p.ProcessSignal(day(0), rules.Result{Symbol: "TCS", Signal: rules.SignalExit, CurrentPrice: 190})

	if len(p.ClosedTrades()) != 0 || len(p.Events()) != 0 {
		t.Error("EXIT with no open position should do nothing")
	}
}

func TestHoldSignalsDoNotClose(t *testing.T) {
	holds := []rules.Signal{rules.SignalWait, rules.SignalCautious, rules.SignalFading, rules.SignalUnknown}

	for _, sig := range holds {
		p := NewPortfolio()
		p.ProcessSignal(day(0), rules.Result{Symbol: "TCS", Signal: rules.SignalBullish, CurrentPrice: 200})
		p.ProcessSignal(day(7), rules.Result{Symbol: "TCS", Signal: sig, CurrentPrice: 150})

		if !p.Holding("TCS") {
			t.Errorf("%s should hold the open position", sig)
		}
		if len(p.ClosedTrades()) != 0 {
			t.Errorf("%s should not close trades", sig)
		}
	}
}

func TestHoldSignalsDoNotOpen(t *testing.T) {
	holds := []rules.Signal{rules.SignalWait, rules.SignalCautious, rules.SignalFading, rules.SignalUnknown}

	for _, sig := range holds {
		p := NewPortfolio()
		p.ProcessSignal(day(0), rules.Result{Symbol: "TCS", Signal: sig, CurrentPrice: 200})
		if p.Holding("TCS") {
			t.Errorf("%s should not open a position", sig)
		}
	}
}

func TestPerformanceCounts(t *testing.T) {
	p := NewPortfolio()
	p.ProcessSignal(day(0), rules.Result{Symbol: "AAA", Signal: rules.SignalBullish, CurrentPrice: 100})
	p.ProcessSignal(day(7), rules.Result{Symbol: "AAA", Signal: rules.SignalExit, CurrentPrice: 110})
	p.ProcessSignal(day(14), rules.Result{Symbol: "AAA", Signal: rules.SignalBullish, CurrentPrice: 100})
	p.ProcessSignal(day(21), rules.Result{Symbol: "AAA", Signal: rules.SignalExit, CurrentPrice: 90})

	perf := p.Performance(nil)
	if perf.TotalTrades != 2 || perf.WinningTrades != 1 || perf.LosingTrades != 1 {
		t.Errorf("counts = %d/%d/%d, want 2/1/1", perf.TotalTrades, perf.WinningTrades, perf.LosingTrades)
	}
	if perf.WinRate != 0.5 {
		t.Errorf("win rate = %v, want 0.5", perf.WinRate)
	}
	// (+10% - 10%) / 2 = 0
	if math.Abs(perf.AvgReturnPct) > 1e-12 {
		t.Errorf("avg return = %v, want 0", perf.AvgReturnPct)
	}
}

func TestZeroReturnCountsAsLoss(t *testing.T) {
	p := NewPortfolio()
	p.ProcessSignal(day(0), rules.Result{Symbol: "AAA", Signal: rules.SignalBullish, CurrentPrice: 100})
	p.ProcessSignal(day(7), rules.Result{Symbol: "AAA", Signal: rules.SignalExit, CurrentPrice: 100})

	perf := p.Performance(nil)
	if perf.WinningTrades != 0 || perf.LosingTrades != 1 {
		t.Errorf("flat trade counted as %d wins / %d losses, want 0/1", perf.WinningTrades, perf.LosingTrades)
	}
}

func TestPerformanceMarksOpenPositionToMarket(t *testing.T) {
	p := NewPortfolio()
	p.ProcessSignal(day(0), rules.Result{Symbol: "AAA", Signal: rules.SignalBullish, CurrentPrice: 100})

	// With a supplied price the open position becomes a synthetic trade.
	perf := p.Performance(map[string]float64{"AAA": 120})
	if perf.TotalTrades != 1 || perf.WinningTrades != 1 {
		t.Errorf("marked position: trades = %d, wins = %d, want 1/1", perf.TotalTrades, perf.WinningTrades)
	}
	if math.Abs(perf.AvgReturnPct-0.2) > 1e-12 {
		t.Errorf("avg return = %v, want 0.2", perf.AvgReturnPct)
	}

	// Portfolio state is untouched by the valuation.
	if !p.Holding("AAA") {
		t.Error("mark-to-market must not close the position")
	}

	// Without a price the open position is excluded.
	perf = p.Performance(nil)
	if perf.TotalTrades != 0 {
		t.Errorf("unpriced open position included: trades = %d, want 0", perf.TotalTrades)
	}
}

func TestEventLogFormat(t *testing.T) {
	p := NewPortfolio()
	p.ProcessSignal(day(0), rules.Result{Symbol: "TCS", Signal: rules.SignalBullish, CurrentPrice: 200})
	p.ProcessSignal(day(28), rules.Result{Symbol: "TCS", Signal: rules.SignalExit, CurrentPrice: 190})

	events := p.Events()
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}

	buy := events[0].String()
	if !strings.Contains(buy, "BUY") || !strings.Contains(buy, "BREAKOUT") {
		t.Errorf("buy event = %q", buy)
	}
	sell := events[1].String()
	if !strings.Contains(sell, "SELL") || !strings.Contains(sell, "Return: -5.00%") {
		t.Errorf("sell event = %q", sell)
	}
	if !strings.Contains(sell, "Signal: EXIT") {
		t.Errorf("sell event should name the closing signal: %q", sell)
	}
}

func TestHoldAddEntryLogsTrend(t *testing.T) {
	p := NewPortfolio()
	p.ProcessSignal(day(0), rules.Result{Symbol: "TCS", Signal: rules.SignalHoldAdd, CurrentPrice: 200})

	events := p.Events()
	if len(events) != 1 || !strings.Contains(events[0].String(), "TREND") {
		t.Errorf("HOLD_ADD entry should log TREND: %v", events)
	}
}
