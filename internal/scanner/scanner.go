package scanner

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/prabhat-krai/ema-tracker/internal/provider"
	"github.com/prabhat-krai/ema-tracker/internal/rules"
	"github.com/prabhat-krai/ema-tracker/internal/technical"
)

// ProgressCallback is called with progress updates
type ProgressCallback func(scanned, total int)

// Scanner evaluates the weekly EMA signal for many symbols in parallel
type Scanner struct {
	provider     provider.Provider
	params       technical.Params
	historyYears int
	workers      int
	timeout      time.Duration
	progressFunc ProgressCallback
}

// ScanResult holds the outcome of a full universe scan
type ScanResult struct {
	TotalScanned int
	ErrorCount   int
	Results      []rules.Result
	ScanTime     time.Duration
}

// BySignal groups the results by their signal value
func (r *ScanResult) BySignal() map[rules.Signal][]rules.Result {
	grouped := make(map[rules.Signal][]rules.Result)
	for _, res := range r.Results {
		grouped[res.Signal] = append(grouped[res.Signal], res)
	}
	return grouped
}

// NewScanner creates a new scanner
func NewScanner(p provider.Provider, params technical.Params, historyYears, workers int, timeout time.Duration) *Scanner {
	return &Scanner{
		provider:     p,
		params:       params,
		historyYears: historyYears,
		workers:      workers,
		timeout:      timeout,
	}
}

// SetProgressCallback sets the progress callback function
func (s *Scanner) SetProgressCallback(fn ProgressCallback) {
	s.progressFunc = fn
}

// Scan fetches weekly candles for every symbol and classifies each one.
// Symbols whose fetch or analysis fails are counted and skipped.
func (s *Scanner) Scan(ctx context.Context, symbols []string) (*ScanResult, error) {
	startTime := time.Now()

	if len(symbols) == 0 {
		return &ScanResult{
			TotalScanned: 0,
			Results:      []rules.Result{},
			ScanTime:     time.Since(startTime),
		}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	jobChan := make(chan string, len(symbols))
	resultChan := make(chan rules.Result, len(symbols))

	for _, sym := range symbols {
		jobChan <- sym
	}
	close(jobChan)

	var scannedCount int64
	var errorCount int64

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sym := range jobChan {
				select {
				case <-ctx.Done():
					return
				default:
					result, err := s.scanOne(ctx, sym)
					if err != nil {
						log.Warn().Err(err).Str("symbol", sym).Msg("skipping symbol")
						atomic.AddInt64(&errorCount, 1)
					} else {
						resultChan <- result
					}

					count := atomic.AddInt64(&scannedCount, 1)
					if s.progressFunc != nil {
						s.progressFunc(int(count), len(symbols))
					}
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	var results []rules.Result
	for result := range resultChan {
		results = append(results, result)
	}

	return &ScanResult{
		TotalScanned: len(symbols),
		ErrorCount:   int(errorCount),
		Results:      results,
		ScanTime:     time.Since(startTime),
	}, nil
}

func (s *Scanner) scanOne(ctx context.Context, symbol string) (rules.Result, error) {
	candles, err := s.provider.WeeklyCandles(ctx, symbol, s.historyYears)
	if err != nil {
		return rules.Result{}, err
	}

	ind, err := technical.Analyze(symbol, candles, s.params)
	if err != nil {
		return rules.Result{}, err
	}

	return rules.Evaluate(ind), nil
}
