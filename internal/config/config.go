package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/prabhat-krai/ema-tracker/internal/technical"
)

// Config represents the application configuration
type Config struct {
	Market   string         `yaml:"market"` // "india" or "usa"
	Data     DataConfig     `yaml:"data"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Backtest BacktestConfig `yaml:"backtest"`
	Scanner  ScannerConfig  `yaml:"scanner"`
	Store    StoreConfig    `yaml:"store"`
	LogDir   string         `yaml:"log_dir"`
	ReportDir string        `yaml:"report_dir"`
}

// DataConfig holds data-source settings
type DataConfig struct {
	HistoryYears int           `yaml:"history_years"`
	Delay        time.Duration `yaml:"delay"`      // enforced pause between source calls
	RateLimit    int           `yaml:"rate_limit"` // requests per minute
}

// AnalysisConfig holds the technical-analysis parameters
type AnalysisConfig struct {
	ShortPeriod          int     `yaml:"short_period"`
	MediumPeriod         int     `yaml:"medium_period"`
	LongPeriod           int     `yaml:"long_period"`
	ConvergenceThreshold float64 `yaml:"convergence_threshold"`
	SwingLookback        int     `yaml:"swing_lookback"`
	LevelLookbackWeeks   int     `yaml:"level_lookback_weeks"`
}

// Params converts the analysis section into technical.Params.
func (a AnalysisConfig) Params() technical.Params {
	return technical.Params{
		ShortPeriod:          a.ShortPeriod,
		MediumPeriod:         a.MediumPeriod,
		LongPeriod:           a.LongPeriod,
		ConvergenceThreshold: a.ConvergenceThreshold,
		SwingLookback:        a.SwingLookback,
		LevelLookbackWeeks:   a.LevelLookbackWeeks,
	}
}

// BacktestConfig holds backtest settings
type BacktestConfig struct {
	Years int `yaml:"years"`
}

// ScannerConfig holds scan settings
type ScannerConfig struct {
	Workers int           `yaml:"workers"`
	Timeout time.Duration `yaml:"timeout"`
}

// StoreConfig holds the signal-history database settings
type StoreConfig struct {
	Path string `yaml:"path"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Market: "india",
		Data: DataConfig{
			HistoryYears: 2,
			Delay:        2 * time.Second,
			RateLimit:    30,
		},
		Analysis: AnalysisConfig{
			ShortPeriod:          10,
			MediumPeriod:         20,
			LongPeriod:           40,
			ConvergenceThreshold: 0.03,
			SwingLookback:        5,
			LevelLookbackWeeks:   52,
		},
		Backtest: BacktestConfig{Years: 1},
		Scanner: ScannerConfig{
			Workers: 4,
			Timeout: 30 * time.Minute,
		},
		Store:     StoreConfig{Path: "signals.db"},
		LogDir:    "logs",
		ReportDir: "reports",
	}
}

// Load loads configuration from a YAML file
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Use defaults if file doesn't exist
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Override with environment variables if set
	if p := os.Getenv("EMATRACKER_STORE_PATH"); p != "" {
		cfg.Store.Path = p
	}
	if d := os.Getenv("EMATRACKER_LOG_DIR"); d != "" {
		cfg.LogDir = d
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Market != "india" && c.Market != "usa" {
		return fmt.Errorf("market must be \"india\" or \"usa\", got %q", c.Market)
	}
	if c.Data.HistoryYears < 1 {
		return fmt.Errorf("data.history_years must be at least 1")
	}
	if c.Data.Delay < 0 {
		return fmt.Errorf("data.delay must be >= 0")
	}
	a := c.Analysis
	if a.ShortPeriod < 1 || a.MediumPeriod <= a.ShortPeriod || a.LongPeriod <= a.MediumPeriod {
		return fmt.Errorf("analysis periods must satisfy 0 < short < medium < long")
	}
	if a.ConvergenceThreshold <= 0 {
		return fmt.Errorf("analysis.convergence_threshold must be positive")
	}
	if a.SwingLookback < 1 {
		return fmt.Errorf("analysis.swing_lookback must be at least 1")
	}
	if c.Backtest.Years < 1 {
		return fmt.Errorf("backtest.years must be at least 1")
	}
	if c.Scanner.Workers < 1 {
		return fmt.Errorf("scanner.workers must be at least 1")
	}
	return nil
}
