package provider

import (
	"context"
	"fmt"
	"sync"

	"github.com/prabhat-krai/ema-tracker/pkg/model"
)

// CachingProvider wraps a Provider with an in-memory cache for WeeklyCandles.
// A scan followed by a backtest in the same process hits the source once per
// symbol.
type CachingProvider struct {
	inner Provider
	cache map[string][]model.Candle
	mu    sync.Mutex
}

// NewCachingProvider creates a caching wrapper.
func NewCachingProvider(inner Provider) *CachingProvider {
	return &CachingProvider{
		inner: inner,
		cache: make(map[string][]model.Candle),
	}
}

func (p *CachingProvider) Name() string      { return p.inner.Name() }
func (p *CachingProvider) IsAvailable() bool { return p.inner.IsAvailable() }

func (p *CachingProvider) WeeklyCandles(ctx context.Context, symbol string, years int) ([]model.Candle, error) {
	key := cacheKey(symbol, years)

	p.mu.Lock()
	if cached, ok := p.cache[key]; ok {
		p.mu.Unlock()
		return cached, nil
	}
	p.mu.Unlock()

	candles, err := p.inner.WeeklyCandles(ctx, symbol, years)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.cache[key] = candles
	p.mu.Unlock()

	return candles, nil
}

func cacheKey(symbol string, years int) string {
	return fmt.Sprintf("%s/%dy", symbol, years)
}
