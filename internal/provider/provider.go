package provider

import (
	"context"

	"github.com/prabhat-krai/ema-tracker/pkg/model"
)

// Provider defines the interface for weekly price-history sources
type Provider interface {
	// Name returns the provider name
	Name() string

	// WeeklyCandles fetches weekly OHLCV bars covering the given number of
	// years, ascending by timestamp
	WeeklyCandles(ctx context.Context, symbol string, years int) ([]model.Candle, error)

	// IsAvailable checks if the provider is usable
	IsAvailable() bool
}

// ProviderError represents a provider-specific error
type ProviderError struct {
	Provider  string
	Err       error
	Retryable bool
}

func (e *ProviderError) Error() string {
	return e.Provider + ": " + e.Err.Error()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
