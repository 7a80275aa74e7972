package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/prabhat-krai/ema-tracker/internal/rules"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "signals.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndReadRun(t *testing.T) {
	s := openTestStore(t)

	results := []rules.Result{
		{Symbol: "RELIANCE", Signal: rules.SignalBullish, CurrentPrice: 2500.50, Reason: "Above all weekly EMAs"},
		{Symbol: "TCS", Signal: rules.SignalExit, CurrentPrice: 3200.00, Reason: "Broke support with EMAs converging"},
	}

	runID, err := s.RecordRun("india", time.Now(), results)
	if err != nil {
		t.Fatalf("RecordRun() error = %v", err)
	}
	if runID == "" {
		t.Fatal("RecordRun() returned empty run id")
	}

	signals, err := s.RunSignals(runID)
	if err != nil {
		t.Fatalf("RunSignals() error = %v", err)
	}
	if len(signals) != 2 {
		t.Fatalf("RunSignals() returned %d rows, want 2", len(signals))
	}

	rel, ok := signals["RELIANCE"]
	if !ok {
		t.Fatal("RELIANCE not found in run signals")
	}
	if rel.Signal != rules.SignalBullish {
		t.Errorf("RELIANCE signal = %s, want %s", rel.Signal, rules.SignalBullish)
	}
	if rel.Price != 2500.50 {
		t.Errorf("RELIANCE price = %.2f, want 2500.50", rel.Price)
	}
	if rel.Reason != "Above all weekly EMAs" {
		t.Errorf("RELIANCE reason = %q", rel.Reason)
	}
}

func TestLatestRunsOrdering(t *testing.T) {
	s := openTestStore(t)

	base := time.Now().Add(-time.Hour)
	var ids []string
	for i := 0; i < 3; i++ {
		id, err := s.RecordRun("india", base.Add(time.Duration(i)*time.Minute), nil)
		if err != nil {
			t.Fatalf("RecordRun() error = %v", err)
		}
		ids = append(ids, id)
	}

	runs, err := s.LatestRuns("india", 2)
	if err != nil {
		t.Fatalf("LatestRuns() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("LatestRuns() returned %d runs, want 2", len(runs))
	}
	if runs[0].ID != ids[2] {
		t.Errorf("newest run = %s, want %s", runs[0].ID, ids[2])
	}
	if runs[1].ID != ids[1] {
		t.Errorf("second run = %s, want %s", runs[1].ID, ids[1])
	}
}

func TestLatestRunsFiltersMarket(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.RecordRun("india", time.Now(), nil); err != nil {
		t.Fatalf("RecordRun() error = %v", err)
	}
	if _, err := s.RecordRun("usa", time.Now(), nil); err != nil {
		t.Fatalf("RecordRun() error = %v", err)
	}

	runs, err := s.LatestRuns("usa", 10)
	if err != nil {
		t.Fatalf("LatestRuns() error = %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("LatestRuns(usa) returned %d runs, want 1", len(runs))
	}
	if runs[0].Market != "usa" {
		t.Errorf("run market = %s, want usa", runs[0].Market)
	}
}
