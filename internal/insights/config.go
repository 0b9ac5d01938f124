// File path: internal/insights/config.go
package insights

import (
	"fmt"
	"os"
	"strings"
	"time"
)

type Config struct {
	// WarmupTimeout bounds the web-search probe of Warmup.
	WarmupTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{WarmupTimeout: 10 * time.Second}
}

// LoadConfig reads INSIGHTS_WARMUP_TIMEOUT over the defaults.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	if value := strings.TrimSpace(os.Getenv("INSIGHTS_WARMUP_TIMEOUT")); value != "" {
		dur, err := time.ParseDuration(value)
		if err != nil {
			return Config{}, fmt.Errorf("parse INSIGHTS_WARMUP_TIMEOUT: %w", err)
		}
		cfg.WarmupTimeout = dur
	}
	return applyDefaults(cfg), nil
}

func applyDefaults(cfg Config) Config {
	if cfg.WarmupTimeout <= 0 {
		cfg.WarmupTimeout = DefaultConfig().WarmupTimeout
	}
	return cfg
}
