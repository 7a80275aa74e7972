package backtest

import (
	"fmt"
	"time"

	"github.com/prabhat-krai/ema-tracker/internal/rules"
)

// Position is an open holding: one unit of exposure, entered at the close of
// the week the entry signal fired.
type Position struct {
	Symbol     string    `json:"symbol"`
	EntryDate  time.Time `json:"entry_date"`
	EntryPrice float64   `json:"entry_price"`
}

// Trade is a completed round trip.
type Trade struct {
	Symbol     string    `json:"symbol"`
	EntryDate  time.Time `json:"entry_date"`
	EntryPrice float64   `json:"entry_price"`
	ExitDate   time.Time `json:"exit_date"`
	ExitPrice  float64   `json:"exit_price"`
}

// ReturnPct is the fractional return of the trade (0.05 = +5%).
func (t Trade) ReturnPct() float64 {
	return (t.ExitPrice - t.EntryPrice) / t.EntryPrice
}

// Event is one entry in the portfolio's append-only trade log.
type Event struct {
	Date   time.Time `json:"date"`
	Action string    `json:"action"` // "BUY" or "SELL"
	Symbol string    `json:"symbol"`
	Price  float64   `json:"price"`
	Detail string    `json:"detail"`
}

// String renders the event the way the trade log prints it.
func (e Event) String() string {
	return fmt.Sprintf("%s | %-4s | %-10s | %7.2f | %s",
		e.Date.Format("2006-01-02"), e.Action, e.Symbol, e.Price, e.Detail)
}

// Performance aggregates trade statistics for one portfolio.
type Performance struct {
	TotalTrades   int     `json:"total_trades"`
	WinningTrades int     `json:"winning_trades"`
	LosingTrades  int     `json:"losing_trades"`
	WinRate       float64 `json:"win_rate"`
	AvgReturnPct  float64 `json:"avg_return_pct"`
	Trades        []Trade `json:"trades"`
}

// Portfolio tracks open and closed positions for one backtest run. It holds
// at most one open position per symbol and is only ever mutated by its owning
// runner, so it needs no locking.
type Portfolio struct {
	holdings map[string]*Position
	closed   []Trade
	events   []Event
}

// NewPortfolio creates an empty portfolio.
func NewPortfolio() *Portfolio {
	return &Portfolio{holdings: make(map[string]*Position)}
}

// ProcessSignal applies one signal at the given date. Entries happen on
// BULLISH or HOLD_ADD while flat; a repeated entry signal on an open position
// is a no-op. Exits happen only on EXIT. Every other combination holds.
func (p *Portfolio) ProcessSignal(date time.Time, res rules.Result) {
	symbol := res.Symbol
	price := res.CurrentPrice

	switch res.Signal {
	case rules.SignalBullish, rules.SignalHoldAdd:
		if _, held := p.holdings[symbol]; held {
			return
		}
		p.holdings[symbol] = &Position{Symbol: symbol, EntryDate: date, EntryPrice: price}
		detail := "TREND"
		if res.Signal == rules.SignalBullish {
			detail = "BREAKOUT"
		}
		p.events = append(p.events, Event{Date: date, Action: "BUY", Symbol: symbol, Price: price, Detail: detail})

	case rules.SignalExit:
		pos, held := p.holdings[symbol]
		if !held {
			return
		}
		delete(p.holdings, symbol)
		trade := Trade{
			Symbol:     pos.Symbol,
			EntryDate:  pos.EntryDate,
			EntryPrice: pos.EntryPrice,
			ExitDate:   date,
			ExitPrice:  price,
		}
		p.closed = append(p.closed, trade)
		p.events = append(p.events, Event{
			Date:   date,
			Action: "SELL",
			Symbol: symbol,
			Price:  price,
			Detail: fmt.Sprintf("Return: %.2f%% | Signal: %s", trade.ReturnPct()*100, res.Signal),
		})
	}
	// WAIT, CAUTIOUS, FADING and UNKNOWN are explicit holds.
}

// OpenPositions returns the currently held positions.
func (p *Portfolio) OpenPositions() []Position {
	out := make([]Position, 0, len(p.holdings))
	for _, pos := range p.holdings {
		out = append(out, *pos)
	}
	return out
}

// Holding reports whether the symbol has an open position.
func (p *Portfolio) Holding(symbol string) bool {
	_, ok := p.holdings[symbol]
	return ok
}

// ClosedTrades returns the completed trades in close order.
func (p *Portfolio) ClosedTrades() []Trade {
	return p.closed
}

// Events returns the append-only trade log.
func (p *Portfolio) Events() []Event {
	return p.events
}

// Performance computes aggregate statistics over closed trades. When
// currentPrices supplies a price for a still-open position, that position is
// marked to market as a synthetic trade (portfolio state is untouched); open
// positions with no supplied price are excluded from the aggregates.
func (p *Portfolio) Performance(currentPrices map[string]float64) Performance {
	trades := make([]Trade, len(p.closed))
	copy(trades, p.closed)

	for symbol, pos := range p.holdings {
		price, ok := currentPrices[symbol]
		if !ok {
			continue
		}
		trades = append(trades, Trade{
			Symbol:     pos.Symbol,
			EntryDate:  pos.EntryDate,
			EntryPrice: pos.EntryPrice,
			ExitDate:   time.Now(),
			ExitPrice:  price,
		})
	}

	perf := Performance{Trades: trades, TotalTrades: len(trades)}
	if len(trades) == 0 {
		return perf
	}

	var sum float64
	for _, t := range trades {
		ret := t.ReturnPct()
		sum += ret
		if ret > 0 {
			perf.WinningTrades++
		} else {
			// A flat trade counts as a loss, not a wash.
			perf.LosingTrades++
		}
	}
	perf.WinRate = float64(perf.WinningTrades) / float64(len(trades))
	perf.AvgReturnPct = sum / float64(len(trades))
	return perf
}
