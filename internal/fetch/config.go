// File path: internal/fetch/config.go
package fetch

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config bounds the size of the context each fetcher gathers.
type Config struct {
	ComparableLimit int
	YearWindow      int
	SubmarketLimit  int
	TrendLimit      int
}

func DefaultConfig() Config {
	return Config{
		ComparableLimit: 5,
		YearWindow:      5,
		SubmarketLimit:  20,
		TrendLimit:      12,
	}
}

// LoadConfig builds a Config from defaults and INSIGHTS_* environment
// variables.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	fields := []struct {
		env    string
		target *int
	}{
		{"INSIGHTS_COMPARABLE_LIMIT", &cfg.ComparableLimit},
		{"INSIGHTS_YEAR_WINDOW", &cfg.YearWindow},
		{"INSIGHTS_SUBMARKET_LIMIT", &cfg.SubmarketLimit},
		{"INSIGHTS_TREND_LIMIT", &cfg.TrendLimit},
	}
	for _, field := range fields {
		value := strings.TrimSpace(os.Getenv(field.env))
		if value == "" {
			continue
		}
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", field.env, err)
		}
		*field.target = parsed
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.ComparableLimit <= 0 {
		cfg.ComparableLimit = defaults.ComparableLimit
	}
	if cfg.YearWindow <= 0 {
		cfg.YearWindow = defaults.YearWindow
	}
	if cfg.SubmarketLimit <= 0 {
		cfg.SubmarketLimit = defaults.SubmarketLimit
	}
	if cfg.TrendLimit <= 0 {
		cfg.TrendLimit = defaults.TrendLimit
	}
	return cfg
}

func (c Config) validate() error {
	if c.ComparableLimit <= 0 {
		return fmt.Errorf("comparable limit must be positive")
	}
	if c.YearWindow <= 0 {
		return fmt.Errorf("year window must be positive")
	}
	if c.SubmarketLimit <= 0 {
		return fmt.Errorf("submarket limit must be positive")
	}
	if c.TrendLimit <= 0 {
		return fmt.Errorf("trend limit must be positive")
	}
	return nil
}
