package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/prabhat-krai/ema-tracker/internal/actions"
	"github.com/prabhat-krai/ema-tracker/internal/backtest"
	"github.com/prabhat-krai/ema-tracker/internal/config"
	"github.com/prabhat-krai/ema-tracker/internal/provider"
	"github.com/prabhat-krai/ema-tracker/internal/ratelimit"
	"github.com/prabhat-krai/ema-tracker/internal/rules"
	"github.com/prabhat-krai/ema-tracker/internal/scanner"
	"github.com/prabhat-krai/ema-tracker/internal/store"
	"github.com/prabhat-krai/ema-tracker/internal/symbols"
)

var (
	cfgFile    string
	market     string
	symbolList string
	topN       int
	workers    int
	years      int
	format     string
	verbose    bool
)

// Display order for grouped signal sections.
var signalOrder = []struct {
	signal rules.Signal
	title  string
}{
	{rules.SignalBullish, "BULLISH SIGNALS (Buy candidates)"},
	{rules.SignalExit, "EXIT SIGNALS (Sell candidates)"},
	{rules.SignalCautious, "CAUTIOUS (Reduce exposure)"},
	{rules.SignalFading, "MOMENTUM FADING"},
	{rules.SignalHoldAdd, "MAINTAIN / ADD (Strong positions)"},
	{rules.SignalWait, "WAIT / WATCH (Consolidating)"},
}

func main() {
	// Optional .env for EMATRACKER_* overrides
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "ematracker",
		Short: "Weekly EMA signal screener and backtester",
		Long: `ematracker classifies stocks with a weekly EMA rules flowchart:
10/20/40-week EMAs, EMA convergence and swing support/resistance breakouts.

Examples:
  ematracker scan --market india
  ematracker scan --market usa --symbols AAPL,MSFT,GOOGL
  ematracker backtest --market india --years 2
  ematracker actions --market india`,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")
	rootCmd.PersistentFlags().StringVar(&market, "market", "", "market universe: india, usa")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "show detailed output")

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan the universe and print the current signal for every symbol",
		RunE:  runScan,
	}
	scanCmd.Flags().StringVar(&symbolList, "symbols", "", "comma-separated list of symbols to scan (default: full universe)")
	scanCmd.Flags().IntVar(&topN, "top", 0, "scan only the first N symbols of the universe")
	scanCmd.Flags().IntVar(&workers, "workers", 0, "number of parallel workers")
	scanCmd.Flags().StringVar(&format, "format", "table", "output format: table, json")

	backtestCmd := &cobra.Command{
		Use:   "backtest",
		Short: "Replay the signal rules over historical weekly candles",
		RunE:  runBacktest,
	}
	backtestCmd.Flags().StringVar(&symbolList, "symbols", "", "comma-separated list of symbols (default: full universe)")
	backtestCmd.Flags().IntVar(&topN, "top", 0, "backtest only the first N symbols of the universe")
	backtestCmd.Flags().IntVar(&years, "years", 0, "backtest window in years")

	actionsCmd := &cobra.Command{
		Use:   "actions",
		Short: "Diff the two latest scans and write an action report",
		RunE:  runActions,
	}

	rootCmd.AddCommand(scanCmd, backtestCmd, actionsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads the YAML config and applies CLI overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if market != "" {
		cfg.Market = market
	}
	if workers > 0 {
		cfg.Scanner.Workers = workers
	}
	if years > 0 {
		cfg.Backtest.Years = years
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// setupLogging writes console output plus a JSON log file named
// <MARKET>_<DD-MM-YYYY>.log. The dated file is what makes scans diffable
// day over day.
func setupLogging(cfg *config.Config) (string, func(), error) {
	if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
		return "", nil, fmt.Errorf("create log dir: %w", err)
	}

	logPath := filepath.Join(cfg.LogDir,
		fmt.Sprintf("%s_%s.log", marketPrefix(cfg), time.Now().Format("02-01-2006")))
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return "", nil, fmt.Errorf("open log file: %w", err)
	}

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	log.Logger = zerolog.New(zerolog.MultiLevelWriter(console, logFile)).
		With().Timestamp().Logger()

	return logPath, func() { logFile.Close() }, nil
}

func marketPrefix(cfg *config.Config) string {
	return strings.ToUpper(cfg.Market)
}

func currencySymbol(cfg *config.Config) string {
	if cfg.Market == "usa" {
		return "$"
	}
	return "₹"
}

// universe resolves the symbol list for the current invocation.
func universe(cfg *config.Config) []string {
	var syms []string
	if symbolList != "" {
		syms = symbols.ParseList(symbolList)
	} else {
		syms = symbols.ForMarket(cfg.Market)
	}
	if topN > 0 && topN < len(syms) {
		syms = syms[:topN]
	}
	return syms
}

func newProvider(cfg *config.Config) provider.Provider {
	limiter := ratelimit.NewIntervalLimiter("yahoo", cfg.Data.Delay)
	return provider.NewCachingProvider(provider.NewYahooProvider(cfg.Market, limiter))
}

func newProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]█[reset]",
			SaucerHead:    "[green]█[reset]",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

func interruptibleContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nInterrupted. Stopping...")
		cancel()
	}()

	return ctx, cancel
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logPath, closeLog, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	syms := universe(cfg)
	if len(syms) == 0 {
		return fmt.Errorf("no symbols to scan")
	}

	ctx, cancel := interruptibleContext()
	defer cancel()

	fmt.Printf("Log file: %s\n", logPath)
	fmt.Printf("Scanning %d %s stocks for weekly EMA signals...\n\n", len(syms), marketPrefix(cfg))

	s := scanner.NewScanner(newProvider(cfg), cfg.Analysis.Params(),
		cfg.Data.HistoryYears, cfg.Scanner.Workers, cfg.Scanner.Timeout)

	bar := newProgressBar(len(syms), "Scanning")
	s.SetProgressCallback(func(scanned, total int) {
		bar.Set(scanned)
	})

	result, err := s.Scan(ctx, syms)
	if err != nil {
		return fmt.Errorf("scanning: %w", err)
	}

	bar.Finish()
	fmt.Println()

	// Per-symbol lines go both to console and to the dated log file.
	currency := currencySymbol(cfg)
	for _, r := range result.Results {
		log.Info().Msg(rules.FormatLine(r, currency))
	}

	if format == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(result.Results); err != nil {
			return err
		}
	} else {
		printScanSummary(result, currency)
	}

	return recordRunAndActions(cfg, result)
}

func printScanSummary(result *scanner.ScanResult, currency string) {
	grouped := result.BySignal()

	fmt.Println("\n" + strings.Repeat("=", 70))
	fmt.Println("  ANALYSIS RESULTS")
	fmt.Println(strings.Repeat("=", 70))

	for _, entry := range signalOrder {
		group := grouped[entry.signal]
		if len(group) == 0 {
			continue
		}
		sort.Slice(group, func(i, j int) bool { return group[i].Symbol < group[j].Symbol })

		fmt.Printf("\n%s %s:\n", rules.Emoji(entry.signal), entry.title)
		fmt.Println(strings.Repeat("-", 50))
		for _, r := range group {
			fmt.Printf("  %-15s %s%10.2f  %s\n", r.Symbol, currency, r.CurrentPrice, r.Reason)
		}
	}

	fmt.Println("\n" + strings.Repeat("=", 70))
	fmt.Println("  SUMMARY")
	fmt.Println(strings.Repeat("=", 70) + "\n")

	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Signal", "Count"}),
	)
	for _, entry := range signalOrder {
		if n := len(grouped[entry.signal]); n > 0 {
			table.Append([]string{fmt.Sprintf("%s %s", rules.Emoji(entry.signal), entry.signal), fmt.Sprintf("%d", n)})
		}
	}
	table.Render()

	fmt.Printf("\nTotal Analyzed: %d | Errors/Skipped: %d | Scan time: %s\n",
		len(result.Results), result.ErrorCount, result.ScanTime.Round(time.Second))
}

// recordRunAndActions persists the scan and, when a previous run exists,
// writes the signal-transition report.
func recordRunAndActions(cfg *config.Config, result *scanner.ScanResult) error {
	db, err := store.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("opening signal store: %w", err)
	}
	defer db.Close()

	now := time.Now()
	runID, err := db.RecordRun(cfg.Market, now, result.Results)
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	log.Debug().Str("run_id", runID).Msg("scan recorded")

	runs, err := db.LatestRuns(cfg.Market, 2)
	if err != nil {
		return fmt.Errorf("reading runs: %w", err)
	}
	if len(runs) < 2 {
		log.Info().Msg("no previous scan to diff against, skipping action report")
		return nil
	}

	old, err := db.RunSignals(runs[1].ID)
	if err != nil {
		return fmt.Errorf("reading previous run: %w", err)
	}

	oldSignals := make(map[string]rules.Signal, len(old))
	for sym, row := range old {
		oldSignals[sym] = row.Signal
	}
	newSignals := make(map[string]rules.Signal, len(result.Results))
	for _, r := range result.Results {
		newSignals[r.Symbol] = r.Signal
	}

	transitions := actions.Compare(oldSignals, newSignals)
	path, err := actions.WriteCSV(transitions, cfg.ReportDir, marketPrefix(cfg), now)
	if err != nil {
		return fmt.Errorf("writing action report: %w", err)
	}
	if path != "" {
		fmt.Printf("\nAction report: %s (%d transitions)\n", path, len(transitions))
	}
	return nil
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	_, closeLog, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	syms := universe(cfg)
	if len(syms) == 0 {
		return fmt.Errorf("no symbols to backtest")
	}

	ctx, cancel := interruptibleContext()
	defer cancel()

	fmt.Printf("Backtesting %d %s stocks over the last %d year(s)...\n\n",
		len(syms), marketPrefix(cfg), cfg.Backtest.Years)

	prov := newProvider(cfg)
	runner := backtest.NewRunner(cfg.Analysis.Params())
	bar := newProgressBar(len(syms), "Backtesting")

	// One extra year of history warms up the long EMA before the window opens.
	fetchYears := cfg.Backtest.Years + 1
	lookbackWeeks := cfg.Backtest.Years * 52

	var totalTrades, winningTrades int
	var sumReturns float64

	for i, sym := range syms {
		select {
		case <-ctx.Done():
			bar.Finish()
			fmt.Println("\nBacktest interrupted")
			return ctx.Err()
		default:
		}

		candles, err := prov.WeeklyCandles(ctx, sym, fetchYears)
		if err != nil {
			log.Error().Err(err).Str("symbol", sym).Msg("no data, skipping")
			bar.Set(i + 1)
			continue
		}

		run := runner.Run(sym, candles, lookbackWeeks)

		// Mark any still-open position to the final close.
		finalClose := candles[len(candles)-1].Close
		perf := run.Portfolio.Performance(map[string]float64{sym: finalClose})

		totalTrades += perf.TotalTrades
		winningTrades += perf.WinningTrades
		for _, t := range perf.Trades {
			sumReturns += t.ReturnPct()
		}

		if perf.TotalTrades > 0 {
			log.Info().
				Str("symbol", sym).
				Int("trades", perf.TotalTrades).
				Float64("win_rate", perf.WinRate).
				Float64("avg_return", perf.AvgReturnPct).
				Msg("backtest complete")

			fmt.Printf("\n  --- Trade Log for %s ---\n", sym)
			fmt.Println("  Date       | Act  | Symbol     |   Price | Details")
			fmt.Println("  " + strings.Repeat("-", 55))
			for _, e := range run.Portfolio.Events() {
				fmt.Printf("  %s\n", e)
			}
			fmt.Println("  " + strings.Repeat("-", 55))
		}
		bar.Set(i + 1)
	}

	bar.Finish()

	fmt.Println("\n\n" + strings.Repeat("=", 50))
	fmt.Println("  BACKTEST RESULTS")
	fmt.Println(strings.Repeat("=", 50))
	fmt.Printf("  Stocks Tested: %d\n", len(syms))
	fmt.Printf("  Total Trades:  %d\n", totalTrades)
	if totalTrades > 0 {
		fmt.Printf("  Win Rate:      %.1f%%\n", float64(winningTrades)/float64(totalTrades)*100)
		fmt.Printf("  Avg Return:    %.1f%%\n", sumReturns/float64(totalTrades)*100)
	} else {
		fmt.Println("  No trades were generated in the test window.")
	}
	fmt.Println(strings.Repeat("=", 50))
	return nil
}

func runActions(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	_, closeLog, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	db, err := store.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("opening signal store: %w", err)
	}
	defer db.Close()

	runs, err := db.LatestRuns(cfg.Market, 2)
	if err != nil {
		return fmt.Errorf("reading runs: %w", err)
	}
	if len(runs) < 2 {
		fmt.Println("Need at least two recorded scans to generate actions. Run `ematracker scan` first.")
		return nil
	}

	newRows, err := db.RunSignals(runs[0].ID)
	if err != nil {
		return fmt.Errorf("reading latest run: %w", err)
	}
	oldRows, err := db.RunSignals(runs[1].ID)
	if err != nil {
		return fmt.Errorf("reading previous run: %w", err)
	}

	oldSignals := make(map[string]rules.Signal, len(oldRows))
	for sym, row := range oldRows {
		oldSignals[sym] = row.Signal
	}
	newSignals := make(map[string]rules.Signal, len(newRows))
	for sym, row := range newRows {
		newSignals[sym] = row.Signal
	}

	transitions := actions.Compare(oldSignals, newSignals)
	if len(transitions) == 0 {
		fmt.Printf("No actionable transitions between %s and %s.\n",
			runs[1].Created.Format("2006-01-02"), runs[0].Created.Format("2006-01-02"))
		return nil
	}

	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Symbol", "Previous", "Current", "Action"}),
	)
	for _, t := range transitions {
		table.Append([]string{t.Symbol, string(t.Previous), string(t.Current), t.Category})
	}
	table.Render()

	path, err := actions.WriteCSV(transitions, cfg.ReportDir, marketPrefix(cfg), runs[0].Created)
	if err != nil {
		return fmt.Errorf("writing action report: %w", err)
	}
	fmt.Printf("\nAction report: %s (%d transitions)\n", path, len(transitions))
	return nil
}
