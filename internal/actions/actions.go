// Package actions turns the difference between two scan runs into a list of
// actionable signal transitions, written out as a dated CSV report.
package actions

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/prabhat-krai/ema-tracker/internal/rules"
)

// Action categories, from most to least urgent.
const (
	CategoryNewBuy       = "🚀 NEW BUY (Action: Buy Now)"
	CategoryNewSell      = "🚨 NEW SELL (Action: Sell Now)"
	CategoryDowngrade    = "⚠️ DOWNGRADE (Action: Caution/Trim)"
	CategoryUpgradeWatch = "📈 UPGRADE (Action: Watch closely)"
	CategoryUpgradeAccum = "📈 UPGRADE (Action: Accumulate/Hold)"
)

// Transition is one symbol whose signal changed in an actionable way.
type Transition struct {
	Symbol   string
	Previous rules.Signal
	Current  rules.Signal
	Category string
	Notes    string
}

func isCaution(s rules.Signal) bool {
	return s == rules.SignalCautious || s == rules.SignalFading
}

// Compare diffs two symbol → signal maps and returns the actionable
// transitions. Symbols absent from the previous run and symbols whose signal
// is unchanged are skipped. Results are grouped by category.
func Compare(old, new map[string]rules.Signal) []Transition {
	var transitions []Transition

	for symbol, newSignal := range new {
		oldSignal, ok := old[symbol]
		if !ok || oldSignal == newSignal {
			continue
		}

		var category string
		switch {
		case newSignal == rules.SignalBullish && oldSignal != rules.SignalBullish:
			category = CategoryNewBuy
		case newSignal == rules.SignalExit && oldSignal != rules.SignalExit:
			category = CategoryNewSell
		case isCaution(newSignal) && (oldSignal == rules.SignalHoldAdd || oldSignal == rules.SignalBullish):
			category = CategoryDowngrade
		case newSignal == rules.SignalWait && oldSignal == rules.SignalExit:
			category = CategoryUpgradeWatch
		case newSignal == rules.SignalHoldAdd && isCaution(oldSignal):
			category = CategoryUpgradeAccum
		default:
			continue
		}

		transitions = append(transitions, Transition{
			Symbol:   symbol,
			Previous: oldSignal,
			Current:  newSignal,
			Category: category,
			Notes:    fmt.Sprintf("Changed from %s to %s", oldSignal, newSignal),
		})
	}

	sort.Slice(transitions, func(i, j int) bool {
		if transitions[i].Category != transitions[j].Category {
			return transitions[i].Category < transitions[j].Category
		}
		return transitions[i].Symbol < transitions[j].Symbol
	})
	return transitions
}

// WriteCSV writes the transitions to <MARKET>-ACTIONS_<DD-MM-YYYY>.csv in
// outputDir and returns the file path. Nothing is written when there are no
// transitions.
func WriteCSV(transitions []Transition, outputDir, marketPrefix string, date time.Time) (string, error) {
	if len(transitions) == 0 {
		log.Info().Str("market", marketPrefix).Msg("no actionable transitions found")
		return "", nil
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}

	csvPath := filepath.Join(outputDir,
		fmt.Sprintf("%s-ACTIONS_%s.csv", marketPrefix, date.Format("02-01-2006")))

	f, err := os.Create(csvPath)
	if err != nil {
		return "", fmt.Errorf("create report: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"Symbol", "Previous Signal", "Current Signal", "Action Category", "Notes"}); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}
	for _, t := range transitions {
		record := []string{t.Symbol, string(t.Previous), string(t.Current), t.Category, t.Notes}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("write row %s: %w", t.Symbol, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush report: %w", err)
	}

	log.Info().Str("path", csvPath).Int("transitions", len(transitions)).Msg("action report generated")
	return csvPath, nil
}
