package main

import (
	"context"
	"fmt"
	stdlog "log"
	"time"

	"github.com/prabhat-krai/ema-tracker/internal/config"
	"github.com/prabhat-krai/ema-tracker/internal/provider"
	"github.com/prabhat-krai/ema-tracker/internal/ratelimit"
	"github.com/prabhat-krai/ema-tracker/internal/rules"
	"github.com/prabhat-krai/ema-tracker/internal/technical"
)

// Manual smoke check for the weekly data path: fetches a few symbols from the
// live source and prints the resulting candles and signals.
func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		stdlog.Fatal(err)
	}

	limiter := ratelimit.NewIntervalLimiter("yahoo", cfg.Data.Delay)
	prov := provider.NewYahooProvider(cfg.Market, limiter)
	params := cfg.Analysis.Params()
	ctx := context.Background()

	fmt.Printf("=== Weekly Fetch Test (%s) ===\n", cfg.Market)

	testSymbols := []string{"RELIANCE", "TCS", "HDFCBANK"}
	if cfg.Market == "usa" {
		testSymbols = []string{"AAPL", "MSFT", "NVDA"}
	}

	for _, sym := range testSymbols {
		start := time.Now()
		candles, err := prov.WeeklyCandles(ctx, sym, cfg.Data.HistoryYears)
		elapsed := time.Since(start)
		if err != nil {
			fmt.Printf("    %s: ERROR - %v (%.1fs)\n", sym, err, elapsed.Seconds())
			continue
		}

		last := candles[len(candles)-1]
		fmt.Printf("\n[%s] %d weekly candles in %s\n", sym, len(candles), elapsed.Round(time.Millisecond))
		fmt.Printf("    Last: %s O=%.2f H=%.2f L=%.2f C=%.2f V=%d\n",
			last.Time.Format("2006-01-02"), last.Open, last.High, last.Low, last.Close, last.Volume)

		ind, err := technical.Analyze(sym, candles, params)
		if err != nil {
			fmt.Printf("    analysis: ERROR - %v\n", err)
			continue
		}

		res := rules.Evaluate(ind)
		fmt.Printf("    EMAs: 10W=%.2f 20W=%.2f 40W=%.2f converging=%v\n",
			ind.EMA10W, ind.EMA20W, ind.EMA40W, ind.EMAsConverging)
		fmt.Printf("    Signal: %s %s - %s\n", rules.Emoji(res.Signal), res.Signal, res.Reason)
	}

	fmt.Println("\n=== Test Complete ===")
}
