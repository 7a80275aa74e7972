package rules

import (
	"fmt"

	"github.com/prabhat-krai/ema-tracker/internal/technical"
)

// Signal represents the trading signal produced by the rules engine.
type Signal string

const (
	SignalExit     Signal = "EXIT"     // sell position
	SignalBullish  Signal = "BULLISH"  // buy signal
	SignalWait     Signal = "WAIT"     // watch list
	SignalCautious Signal = "CAUTIOUS" // reduce exposure
	SignalFading   Signal = "FADING"   // momentum weakening
	SignalHoldAdd  Signal = "HOLD_ADD" // maintain or add position
	SignalUnknown  Signal = "UNKNOWN"  // analysis inconclusive
)

// Result carries the signal plus the indicator values that produced it.
type Result struct {
	Symbol         string   `json:"symbol"`
	Signal         Signal   `json:"signal"`
	Reason         string   `json:"reason"`
	CurrentPrice   float64  `json:"current_price"`
	EMA10W         float64  `json:"ema_10w"`
	EMA20W         float64  `json:"ema_20w"`
	EMA40W         float64  `json:"ema_40w"`
	EMAsConverging bool     `json:"emas_converging"`
	Support        *float64 `json:"support,omitempty"`
	Resistance     *float64 `json:"resistance,omitempty"`
}

// rule is one row of the decision table: first predicate to match wins.
type rule struct {
	match  func(*technical.Indicators) bool
	signal Signal
	reason string
}

// decisionTable encodes the flowchart. Row order is significant: the
// converging branch is exhausted before the EMA hierarchy is consulted, and
// within the converging branch a support break beats a resistance break.
var decisionTable = []rule{
	{
		match: func(ind *technical.Indicators) bool {
			return ind.EMAsConverging &&
				(ind.BrokeSupport || (ind.Support != nil && ind.CurrentPrice < *ind.Support))
		},
		signal: SignalExit,
		reason: "Broke support with EMAs converging",
	},
	{
		match: func(ind *technical.Indicators) bool {
			return ind.EMAsConverging &&
				(ind.BrokeResistance || (ind.Resistance != nil && ind.CurrentPrice > *ind.Resistance))
		},
		signal: SignalBullish,
		reason: "Resistance breakout with EMAs converging",
	},
	{
		match:  func(ind *technical.Indicators) bool { return ind.EMAsConverging },
		signal: SignalWait,
		reason: "EMAs converging, no breakout yet",
	},
	{
		match:  func(ind *technical.Indicators) bool { return !ind.AboveEMA40W },
		signal: SignalExit,
		reason: "Below 40W EMA",
	},
	{
		match:  func(ind *technical.Indicators) bool { return !ind.AboveEMA20W },
		signal: SignalCautious,
		reason: "Below 20W EMA",
	},
	{
		match:  func(ind *technical.Indicators) bool { return !ind.AboveEMA10W },
		signal: SignalFading,
		reason: "Below 10W EMA - momentum fading",
	},
	{
		match:  func(ind *technical.Indicators) bool { return true },
		signal: SignalHoldAdd,
		reason: "Above all weekly EMAs",
	},
}

// Evaluate applies the decision table to a set of indicators. It is total:
// every well-formed indicator set maps to exactly one signal.
func Evaluate(ind *technical.Indicators) Result {
	res := Result{
		Symbol:         ind.Symbol,
		Signal:         SignalUnknown,
		Reason:         "Analysis inconclusive",
		CurrentPrice:   ind.CurrentPrice,
		EMA10W:         ind.EMA10W,
		EMA20W:         ind.EMA20W,
		EMA40W:         ind.EMA40W,
		EMAsConverging: ind.EMAsConverging,
		Support:        ind.Support,
		Resistance:     ind.Resistance,
	}

	for _, r := range decisionTable {
		if r.match(ind) {
			res.Signal = r.signal
			res.Reason = r.reason
			return res
		}
	}
	return res
}

// Emoji returns the console marker for a signal.
func Emoji(s Signal) string {
	switch s {
	case SignalExit:
		return "🔴"
	case SignalBullish, SignalHoldAdd:
		return "🟢"
	case SignalWait:
		return "🟡"
	case SignalCautious:
		return "🟠"
	case SignalFading:
		return "🟣"
	default:
		return "⚪"
	}
}

// FormatLine renders a result as a single aligned log line.
func FormatLine(r Result, currencySymbol string) string {
	return fmt.Sprintf("%s %-10s | %-15s | %s%10.2f | %s",
		Emoji(r.Signal), r.Signal, r.Symbol, currencySymbol, r.CurrentPrice, r.Reason)
}
