// File path: internal/data/orchestrator/config.go
package orchestrator

import (
	"fmt"

	"github.com/nicodishanthj/propinsight/internal/fetch"
	"github.com/nicodishanthj/propinsight/internal/store"
)

// Config controls the construction of the orchestrator: where the property
// dataset lives and how much context each fetcher may gather from it.
type Config struct {
	Store store.Config
	Fetch fetch.Config
}

// DefaultConfig returns the baseline configuration used when no overrides are
// supplied.
func DefaultConfig() Config {
	return applyDefaults(Config{})
}

// LoadConfig builds a Config from defaults, STORE_* and INSIGHTS_* environment
// variables.
func LoadConfig() (Config, error) {
	storeCfg, err := store.LoadConfig()
	if err != nil {
		return Config{}, fmt.Errorf("load store config: %w", err)
	}
	fetchCfg, err := fetch.LoadConfig()
	if err != nil {
		return Config{}, fmt.Errorf("load fetch config: %w", err)
	}
	return applyDefaults(Config{Store: storeCfg, Fetch: fetchCfg}), nil
}

func applyDefaults(cfg Config) Config {
	defaults := fetch.DefaultConfig()
	if cfg.Fetch == (fetch.Config{}) {
		cfg.Fetch = defaults
	}
	if cfg.Fetch.ComparableLimit <= 0 {
		cfg.Fetch.ComparableLimit = defaults.ComparableLimit
	}
	if cfg.Fetch.YearWindow <= 0 {
		cfg.Fetch.YearWindow = defaults.YearWindow
	}
	if cfg.Fetch.SubmarketLimit <= 0 {
		cfg.Fetch.SubmarketLimit = defaults.SubmarketLimit
	}
	if cfg.Fetch.TrendLimit <= 0 {
		cfg.Fetch.TrendLimit = defaults.TrendLimit
	}
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = store.DriverSQLite
	}
	return cfg
}
