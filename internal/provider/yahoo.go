package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/prabhat-krai/ema-tracker/internal/ratelimit"
	"github.com/prabhat-krai/ema-tracker/pkg/model"
)

const yahooBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// YahooProvider implements the Provider interface for Yahoo Finance
// (unofficial API) at weekly resolution.
type YahooProvider struct {
	client  *http.Client
	limiter *ratelimit.Limiter
	market  string // "india" or "usa", controls ticker mapping
}

// NewYahooProvider creates a new Yahoo Finance provider. The limiter enforces
// the delay contract toward the data source.
func NewYahooProvider(market string, limiter *ratelimit.Limiter) *YahooProvider {
	return &YahooProvider{
		client:  &http.Client{Timeout: 30 * time.Second},
		limiter: limiter,
		market:  market,
	}
}

// Name returns the provider name
func (p *YahooProvider) Name() string {
	return "yahoo"
}

// IsAvailable always returns true (no API key needed)
func (p *YahooProvider) IsAvailable() bool {
	return true
}

// Ticker maps a symbol to the Yahoo ticker for this provider's market.
// NSE symbols get the ".NS" suffix and escaped ampersands.
func (p *YahooProvider) Ticker(symbol string) string {
	if p.market == "india" {
		return strings.ReplaceAll(symbol, "&", "%26") + ".NS"
	}
	return symbol
}

// yahooResponse represents the Yahoo Finance API response
type yahooResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol string `json:"symbol"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []float64 `json:"open"`
					High   []float64 `json:"high"`
					Low    []float64 `json:"low"`
					Close  []float64 `json:"close"`
					Volume []int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// WeeklyCandles fetches weekly OHLCV bars for the last N years. Retryable
// failures (network errors, 429s) are retried with exponential backoff; a
// definitive "no data" answer is not.
func (p *YahooProvider) WeeklyCandles(ctx context.Context, symbol string, years int) ([]model.Candle, error) {
	var candles []model.Candle

	op := func() error {
		var err error
		candles, err = p.fetchWeekly(ctx, symbol, years)
		if err == nil {
			return nil
		}
		if pe, ok := err.(*ProviderError); ok && !pe.Retryable {
			return backoff.Permanent(err)
		}
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return nil, err
	}
	return candles, nil
}

func (p *YahooProvider) fetchWeekly(ctx context.Context, symbol string, years int) ([]model.Candle, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	end := time.Now()
	start := end.AddDate(-years, 0, 0)

	url := fmt.Sprintf("%s/%s?period1=%d&period2=%d&interval=1wk&includePrePost=false",
		yahooBaseURL, p.Ticker(symbol), start.Unix(), end.Unix())

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Err: err, Retryable: true}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		p.limiter.SignalRateLimited()
		return nil, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("rate limited"), Retryable: true}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("status %d", resp.StatusCode), Retryable: false}
	}

	p.limiter.ResetBackoff()

	var data yahooResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if data.Chart.Error != nil {
		return nil, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("%s", data.Chart.Error.Description), Retryable: false}
	}

	if len(data.Chart.Result) == 0 || len(data.Chart.Result[0].Timestamp) == 0 {
		return nil, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("no data available"), Retryable: false}
	}

	result := data.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("no quote data"), Retryable: false}
	}
	quotes := result.Indicators.Quote[0]

	candles := make([]model.Candle, 0, len(result.Timestamp))
	for i := range result.Timestamp {
		if i >= len(quotes.Open) || i >= len(quotes.High) || i >= len(quotes.Low) || i >= len(quotes.Close) {
			continue
		}
		// Yahoo emits zeroed rows for weeks with no trading
		if quotes.Close[i] == 0 && quotes.Open[i] == 0 {
			continue
		}

		var volume int64
		if i < len(quotes.Volume) {
			volume = quotes.Volume[i]
		}

		candles = append(candles, model.Candle{
			Time:   time.Unix(result.Timestamp[i], 0),
			Open:   quotes.Open[i],
			High:   quotes.High[i],
			Low:    quotes.Low[i],
			Close:  quotes.Close[i],
			Volume: volume,
		})
	}

	if len(candles) == 0 {
		return nil, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("no usable bars"), Retryable: false}
	}

	return candles, nil
}
