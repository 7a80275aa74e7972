package actions

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prabhat-krai/ema-tracker/internal/rules"
)

func TestCompareCategorizesTransitions(t *testing.T) {
	old := map[string]rules.Signal{
		"AAPL": rules.SignalWait,
		"MSFT": rules.SignalBullish,
		"NVDA": rules.SignalHoldAdd,
		"META": rules.SignalExit,
		"AVGO": rules.SignalCautious,
		"LLY":  rules.SignalHoldAdd,
		"TSLA": rules.SignalWait,
	}
	new := map[string]rules.Signal{
		"AAPL":    rules.SignalBullish,
		"MSFT":    rules.SignalExit,
		"NVDA":    rules.SignalCautious,
		"META":    rules.SignalWait,
		"AVGO":    rules.SignalHoldAdd,
		"LLY":     rules.SignalFading,
		"TSLA":    rules.SignalWait,
		"NEW_STK": rules.SignalBullish,
	}

	transitions := Compare(old, new)
	if len(transitions) != 6 {
		t.Fatalf("Compare() returned %d transitions, want 6", len(transitions))
	}

	bySymbol := make(map[string]Transition)
	for _, tr := range transitions {
		bySymbol[tr.Symbol] = tr
	}

	tests := []struct {
		symbol   string
		category string
	}{
		{"AAPL", CategoryNewBuy},
		{"MSFT", CategoryNewSell},
		{"NVDA", CategoryDowngrade},
		{"LLY", CategoryDowngrade},
		{"META", CategoryUpgradeWatch},
		{"AVGO", CategoryUpgradeAccum},
	}
	for _, tt := range tests {
		tr, ok := bySymbol[tt.symbol]
		if !ok {
			t.Errorf("no transition for %s", tt.symbol)
			continue
		}
		if tr.Category != tt.category {
			t.Errorf("%s category = %q, want %q", tt.symbol, tr.Category, tt.category)
		}
	}

	if _, ok := bySymbol["TSLA"]; ok {
		t.Error("unchanged symbol should be skipped")
	}
	if _, ok := bySymbol["NEW_STK"]; ok {
		t.Error("symbol without history should be skipped")
	}
}

func TestCompareGroupsByCategory(t *testing.T) {
	old := map[string]rules.Signal{
		"ZZZ": rules.SignalWait,
		"AAA": rules.SignalBullish,
		"MMM": rules.SignalWait,
	}
	new := map[string]rules.Signal{
		"ZZZ": rules.SignalBullish,
		"AAA": rules.SignalExit,
		"MMM": rules.SignalBullish,
	}

	transitions := Compare(old, new)
	if len(transitions) != 3 {
		t.Fatalf("Compare() returned %d transitions, want 3", len(transitions))
	}

	// Stable ordering: grouped by category, symbols alphabetical within.
	for i := 1; i < len(transitions); i++ {
		prev, cur := transitions[i-1], transitions[i]
		if prev.Category > cur.Category {
			t.Errorf("transitions not grouped: %q after %q", cur.Category, prev.Category)
		}
		if prev.Category == cur.Category && prev.Symbol > cur.Symbol {
			t.Errorf("symbols not sorted within category: %s after %s", cur.Symbol, prev.Symbol)
		}
	}
}

func TestCompareNotes(t *testing.T) {
	transitions := Compare(
		map[string]rules.Signal{"INFY": rules.SignalWait},
		map[string]rules.Signal{"INFY": rules.SignalBullish},
	)
	if len(transitions) != 1 {
		t.Fatalf("Compare() returned %d transitions, want 1", len(transitions))
	}
	if transitions[0].Notes != "Changed from WAIT to BULLISH" {
		t.Errorf("Notes = %q", transitions[0].Notes)
	}
}

func TestWriteCSV(t *testing.T) {
	dir := t.TempDir()
	transitions := []Transition{
		{Symbol: "RELIANCE", Previous: rules.SignalWait, Current: rules.SignalBullish,
			Category: CategoryNewBuy, Notes: "Changed from WAIT to BULLISH"},
	}

	date := time.Date(2026, 2, 21, 0, 0, 0, 0, time.UTC)
	path, err := WriteCSV(transitions, dir, "INDIA", date)
	if err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	if filepath.Base(path) != "INDIA-ACTIONS_21-02-2026.csv" {
		t.Errorf("report filename = %s", filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "Symbol,Previous Signal,Current Signal,Action Category,Notes") {
		t.Error("missing CSV header")
	}
	if !strings.Contains(content, "RELIANCE") || !strings.Contains(content, "NEW BUY") {
		t.Errorf("report missing transition data:\n%s", content)
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	path, err := WriteCSV(nil, t.TempDir(), "INDIA", time.Now())
	if err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	if path != "" {
		t.Errorf("WriteCSV() with no transitions returned path %q", path)
	}
}
