package backtest

import (
	"time"

	"github.com/google/uuid"

	"github.com/prabhat-krai/ema-tracker/internal/rules"
	"github.com/prabhat-krai/ema-tracker/internal/technical"
	"github.com/prabhat-krai/ema-tracker/pkg/model"
)

// Runner replays the rules engine week by week over a historical series.
type Runner struct {
	params technical.Params
}

// NewRunner creates a backtest runner with the given analysis parameters.
func NewRunner(params technical.Params) *Runner {
	return &Runner{params: params}
}

// RunResult bundles the simulated portfolio with run metadata.
type RunResult struct {
	RunID     string     `json:"run_id"`
	Symbol    string     `json:"symbol"`
	Start     time.Time  `json:"start"`
	End       time.Time  `json:"end"`
	Portfolio *Portfolio `json:"-"`
}

// Run walks the series forward over the last lookbackWeeks bars, feeding each
// week's signal to a fresh portfolio. At step i only bars[:i+1] are visible to
// the analysis, so a signal can never be influenced by later data. A series
// too short for any evaluation yields an empty, untouched portfolio.
func (r *Runner) Run(symbol string, candles []model.Candle, lookbackWeeks int) *RunResult {
	result := &RunResult{
		RunID:     uuid.NewString(),
		Symbol:    symbol,
		Portfolio: NewPortfolio(),
	}

	minHistory := r.params.MinHistory()
	total := len(candles)

	startIndex := total - lookbackWeeks
	if startIndex < minHistory {
		startIndex = minHistory
	}
	if startIndex >= total {
		return result
	}

	result.Start = candles[startIndex].Time
	result.End = candles[total-1].Time

	for i := startIndex; i < total; i++ {
		prefix := candles[:i+1]

		// Insufficient data mid-walk should not happen past minHistory, but a
		// failed extraction is a skipped step either way.
		ind, err := technical.Analyze(symbol, prefix, r.params)
		if err != nil {
			continue
		}

		res := rules.Evaluate(ind)
		result.Portfolio.ProcessSignal(candles[i].Time, res)
	}

	return result
}
