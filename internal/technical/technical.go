package technical

import (
	"errors"
	"math"
	"sort"

	"github.com/prabhat-krai/ema-tracker/pkg/model"
)

// ErrInsufficientData is returned when a series is too short for the long EMA
// warm-up, or when the computed indicators degenerate to NaN.
var ErrInsufficientData = errors.New("insufficient data for analysis")

// Params holds the tunable analysis parameters.
type Params struct {
	ShortPeriod          int     // short EMA period in weeks
	MediumPeriod         int     // medium EMA period in weeks
	LongPeriod           int     // long EMA period in weeks
	ConvergenceThreshold float64 // max spread ratio for EMAs to count as converging
	SwingLookback        int     // minimum bar separation between swing points
	LevelLookbackWeeks   int     // window for support/resistance detection
}

// DefaultParams returns the standard 10/20/40-week configuration.
func DefaultParams() Params {
	return Params{
		ShortPeriod:          10,
		MediumPeriod:         20,
		LongPeriod:           40,
		ConvergenceThreshold: 0.03,
		SwingLookback:        5,
		LevelLookbackWeeks:   52,
	}
}

// MinHistory is the number of weekly bars required before analysis: the long
// EMA warm-up plus a buffer against early-series noise.
func (p Params) MinHistory() int {
	return p.LongPeriod + 10
}

// Indicators is the full feature set for one instrument at one point in time,
// derived from a price-series prefix ending at the evaluation bar.
type Indicators struct {
	Symbol       string
	CurrentPrice float64
	EMA10W       float64
	EMA20W       float64
	EMA40W       float64
	Support      *float64
	Resistance   *float64

	EMAsConverging bool

	AboveEMA10W bool
	AboveEMA20W bool
	AboveEMA40W bool

	BrokeResistance bool
	BrokeSupport    bool
}

// EMASeries computes an exponential moving average over values with smoothing
// factor 2/(period+1), seeded by the first value and recurred forward.
func EMASeries(values []float64, period int) []float64 {
	if len(values) == 0 {
		return nil
	}
	alpha := 2.0 / (float64(period) + 1.0)
	out := make([]float64, len(values))
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// CheckConvergence reports whether the three EMAs sit within threshold of each
// other, measured as (max-min)/avg. NaN inputs or a non-positive average
// always report false.
func CheckConvergence(emaShort, emaMedium, emaLong, threshold float64) bool {
	if math.IsNaN(emaShort) || math.IsNaN(emaMedium) || math.IsNaN(emaLong) {
		return false
	}
	avg := (emaShort + emaMedium + emaLong) / 3
	if avg <= 0 {
		return false
	}
	maxEMA := math.Max(emaShort, math.Max(emaMedium, emaLong))
	minEMA := math.Min(emaShort, math.Min(emaMedium, emaLong))
	return (maxEMA-minEMA)/avg <= threshold
}

// FindSupportResistance detects swing-based levels in the most recent
// LevelLookbackWeeks bars. Resistance is the highest high among the last three
// accepted swing highs, support the lowest low among the last three swing
// lows. Either is nil when no swing points exist or the window is shorter
// than 2*SwingLookback+1 bars.
func FindSupportResistance(candles []model.Candle, p Params) (support, resistance *float64) {
	recent := candles
	if len(recent) > p.LevelLookbackWeeks {
		recent = recent[len(recent)-p.LevelLookbackWeeks:]
	}
	if len(recent) < p.SwingLookback*2+1 {
		return nil, nil
	}

	highs := model.Highs(recent)
	lows := model.Lows(recent)

	negLows := make([]float64, len(lows))
	for i, v := range lows {
		negLows[i] = -v
	}

	peakIdx := findPeaks(highs, p.SwingLookback)
	troughIdx := findPeaks(negLows, p.SwingLookback)

	if len(peakIdx) > 0 {
		if len(peakIdx) > 3 {
			peakIdx = peakIdx[len(peakIdx)-3:]
		}
		r := highs[peakIdx[0]]
		for _, i := range peakIdx[1:] {
			if highs[i] > r {
				r = highs[i]
			}
		}
		resistance = &r
	}

	if len(troughIdx) > 0 {
		if len(troughIdx) > 3 {
			troughIdx = troughIdx[len(troughIdx)-3:]
		}
		s := lows[troughIdx[0]]
		for _, i := range troughIdx[1:] {
			if lows[i] < s {
				s = lows[i]
			}
		}
		support = &s
	}

	return support, resistance
}

// findPeaks returns indices of local maxima separated by at least minDistance
// bars, sorted ascending. Candidates are strict local maxima; when two
// candidates conflict on distance, the taller one wins (index order breaks
// exact ties).
func findPeaks(values []float64, minDistance int) []int {
	var candidates []int
	for i := 1; i < len(values)-1; i++ {
		if values[i] > values[i-1] && values[i] > values[i+1] {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	// Greedy selection by height, rejecting anything too close to an
	// already-accepted peak.
	order := make([]int, len(candidates))
	copy(order, candidates)
	sort.SliceStable(order, func(a, b int) bool {
		if values[order[a]] != values[order[b]] {
			return values[order[a]] > values[order[b]]
		}
		return order[a] < order[b]
	})

	var accepted []int
	for _, idx := range order {
		ok := true
		for _, a := range accepted {
			if abs(idx-a) < minDistance {
				ok = false
				break
			}
		}
		if ok {
			accepted = append(accepted, idx)
		}
	}

	sort.Ints(accepted)
	return accepted
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Analyze computes the full indicator set for the given weekly series. It only
// ever sees the bars it is handed, so callers control the evaluation horizon.
func Analyze(symbol string, candles []model.Candle, p Params) (*Indicators, error) {
	if len(candles) < p.MinHistory() {
		return nil, ErrInsufficientData
	}

	closes := model.Closes(candles)
	emaShort := EMASeries(closes, p.ShortPeriod)
	emaMedium := EMASeries(closes, p.MediumPeriod)
	emaLong := EMASeries(closes, p.LongPeriod)

	last := len(candles) - 1
	currentPrice := closes[last]
	ema10 := emaShort[last]
	ema20 := emaMedium[last]
	ema40 := emaLong[last]

	if math.IsNaN(currentPrice) || math.IsNaN(ema10) || math.IsNaN(ema20) || math.IsNaN(ema40) {
		return nil, ErrInsufficientData
	}

	support, resistance := FindSupportResistance(candles, p)

	prevClose := currentPrice
	if last > 0 {
		prevClose = closes[last-1]
	}

	// Breakouts are edge-triggered: the level has to be crossed on this bar,
	// not merely exceeded.
	brokeResistance := false
	brokeSupport := false
	if resistance != nil {
		brokeResistance = currentPrice > *resistance && prevClose <= *resistance
	}
	if support != nil {
		brokeSupport = currentPrice < *support && prevClose >= *support
	}

	return &Indicators{
		Symbol:          symbol,
		CurrentPrice:    currentPrice,
		EMA10W:          ema10,
		EMA20W:          ema20,
		EMA40W:          ema40,
		Support:         support,
		Resistance:      resistance,
		EMAsConverging:  CheckConvergence(ema10, ema20, ema40, p.ConvergenceThreshold),
		AboveEMA10W:     currentPrice > ema10,
		AboveEMA20W:     currentPrice > ema20,
		AboveEMA40W:     currentPrice > ema40,
		BrokeResistance: brokeResistance,
		BrokeSupport:    brokeSupport,
	}, nil
}
