// File path: internal/store/config.go
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/nicodishanthj/propinsight/internal/metrics"
)

const (
	DriverSQLite = "sqlite"
	DriverOracle = "oracle"
)

// Config describes how to reach the property store.
type Config struct {
	Driver string `json:"driver"`
	Path   string `json:"path"`
	DSN    string `json:"dsn"`

	Oracle OracleConfig `json:"oracle"`

	FirstYear int `json:"first_year"`
	LastYear  int `json:"last_year"`

	MaxOpenConns int `json:"max_open_conns"`
	MaxIdleConns int `json:"max_idle_conns"`

	ConnMaxLifetime       time.Duration `json:"-"`
	ConnMaxLifetimeString string        `json:"conn_max_lifetime"`

	ConnMaxIdleTime       time.Duration `json:"-"`
	ConnMaxIdleTimeString string        `json:"conn_max_idle_time"`

	BusyTimeout       time.Duration `json:"-"`
	BusyTimeoutString string        `json:"busy_timeout"`
}

// OracleConfig holds connection settings for an Oracle-hosted dataset.
type OracleConfig struct {
	Host           string `json:"host"`
	Port           string `json:"port"`
	Service        string `json:"service"`
	Username       string `json:"username"`
	Password       string `json:"password"`
	WalletLocation string `json:"wallet_location"`
}

// Years returns the configured year range of the per-year tables.
func (c Config) Years() metrics.YearRange {
	return metrics.YearRange{First: c.FirstYear, Last: c.LastYear}
}

func (c Config) Merge(override Config) Config {
	result := c
	if strings.TrimSpace(override.Driver) != "" {
		result.Driver = strings.ToLower(strings.TrimSpace(override.Driver))
	}
	if strings.TrimSpace(override.Path) != "" {
		result.Path = strings.TrimSpace(override.Path)
	}
	if strings.TrimSpace(override.DSN) != "" {
		result.DSN = strings.TrimSpace(override.DSN)
	}
	result.Oracle = result.Oracle.merge(override.Oracle)
	if override.FirstYear > 0 {
		result.FirstYear = override.FirstYear
	}
	if override.LastYear > 0 {
		result.LastYear = override.LastYear
	}
	if override.MaxOpenConns > 0 {
		result.MaxOpenConns = override.MaxOpenConns
	}
	if override.MaxIdleConns > 0 {
		result.MaxIdleConns = override.MaxIdleConns
	}
	if override.ConnMaxLifetime > 0 {
		result.ConnMaxLifetime = override.ConnMaxLifetime
	}
	if strings.TrimSpace(override.ConnMaxLifetimeString) != "" {
		result.ConnMaxLifetimeString = strings.TrimSpace(override.ConnMaxLifetimeString)
	}
	if override.ConnMaxIdleTime > 0 {
		result.ConnMaxIdleTime = override.ConnMaxIdleTime
	}
	if strings.TrimSpace(override.ConnMaxIdleTimeString) != "" {
		result.ConnMaxIdleTimeString = strings.TrimSpace(override.ConnMaxIdleTimeString)
	}
	if override.BusyTimeout > 0 {
		result.BusyTimeout = override.BusyTimeout
	}
	if strings.TrimSpace(override.BusyTimeoutString) != "" {
		result.BusyTimeoutString = strings.TrimSpace(override.BusyTimeoutString)
	}
	return result
}

func (o OracleConfig) merge(override OracleConfig) OracleConfig {
	result := o
	if v := strings.TrimSpace(override.Host); v != "" {
		result.Host = v
	}
	if v := strings.TrimSpace(override.Port); v != "" {
		result.Port = v
	}
	if v := strings.TrimSpace(override.Service); v != "" {
		result.Service = v
	}
	if v := strings.TrimSpace(override.Username); v != "" {
		result.Username = v
	}
	if override.Password != "" {
		result.Password = override.Password
	}
	if v := strings.TrimSpace(override.WalletLocation); v != "" {
		result.WalletLocation = v
	}
	return result
}

// LoadConfig layers STORE_CONFIG_FILE (JSON) and STORE_* environment variables
// over the defaults.
func LoadConfig() (Config, error) {
	cfg := Config{}
	if path := strings.TrimSpace(os.Getenv("STORE_CONFIG_FILE")); path != "" {
		fileCfg, err := loadConfigFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg = cfg.Merge(fileCfg)
	}
	envCfg, err := loadConfigEnv()
	if err != nil {
		return Config{}, err
	}
	cfg = cfg.Merge(envCfg)
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Driver == "" {
		c.Driver = DriverSQLite
	}
	if c.Driver == DriverSQLite && c.Path == "" && c.DSN == "" {
		c.Path = filepath.Join("data", "properties.db")
	}
	if c.Oracle.Port == "" {
		c.Oracle.Port = "1522"
	}
	if c.FirstYear <= 0 {
		c.FirstYear = metrics.DefaultFirstYear
	}
	if c.LastYear <= 0 {
		c.LastYear = metrics.DefaultLastYear
	}
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = 8
	}
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = c.MaxOpenConns
	}
	c.ConnMaxLifetime = resolveDuration(c.ConnMaxLifetime, c.ConnMaxLifetimeString, 15*time.Minute)
	c.ConnMaxIdleTime = resolveDuration(c.ConnMaxIdleTime, c.ConnMaxIdleTimeString, 5*time.Minute)
	c.BusyTimeout = resolveDuration(c.BusyTimeout, c.BusyTimeoutString, 5*time.Second)
}

func (c Config) validate() error {
	switch c.Driver {
	case DriverSQLite:
		if c.Path == "" && c.DSN == "" {
			return fmt.Errorf("sqlite path required")
		}
	case DriverOracle:
		if c.DSN == "" && (c.Oracle.Host == "" || c.Oracle.Service == "") {
			return fmt.Errorf("oracle host and service required")
		}
	default:
		return fmt.Errorf("unsupported store driver %q", c.Driver)
	}
	return c.Years().Validate()
}

func resolveDuration(current time.Duration, raw string, fallback time.Duration) time.Duration {
	if current > 0 {
		return current
	}
	if raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}

func loadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("read store config: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse store config: %w", err)
	}
	return cfg, nil
}

func loadConfigEnv() (Config, error) {
	cfg := Config{
		Driver: strings.TrimSpace(os.Getenv("STORE_DRIVER")),
		Path:   strings.TrimSpace(os.Getenv("STORE_PATH")),
		DSN:    strings.TrimSpace(os.Getenv("STORE_DSN")),
		Oracle: OracleConfig{
			Host:           strings.TrimSpace(os.Getenv("ORACLE_HOST")),
			Port:           strings.TrimSpace(os.Getenv("ORACLE_PORT")),
			Service:        strings.TrimSpace(os.Getenv("ORACLE_SERVICE")),
			Username:       strings.TrimSpace(os.Getenv("ORACLE_USERNAME")),
			Password:       os.Getenv("ORACLE_PASSWORD"),
			WalletLocation: strings.TrimSpace(os.Getenv("ORACLE_WALLET_LOCATION")),
		},
	}
	ints := []struct {
		key    string
		target *int
	}{
		{"STORE_FIRST_YEAR", &cfg.FirstYear},
		{"STORE_LAST_YEAR", &cfg.LastYear},
		{"STORE_MAX_OPEN_CONNS", &cfg.MaxOpenConns},
		{"STORE_MAX_IDLE_CONNS", &cfg.MaxIdleConns},
	}
	for _, item := range ints {
		raw := strings.TrimSpace(os.Getenv(item.key))
		if raw == "" {
			continue
		}
		value, err := strconv.Atoi(raw)
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", item.key, err)
		}
		if value > 0 {
			*item.target = value
		}
	}
	if lifetime := strings.TrimSpace(os.Getenv("STORE_CONN_MAX_LIFETIME")); lifetime != "" {
		cfg.ConnMaxLifetimeString = lifetime
	}
	if idle := strings.TrimSpace(os.Getenv("STORE_CONN_MAX_IDLE_TIME")); idle != "" {
		cfg.ConnMaxIdleTimeString = idle
	}
	if busy := strings.TrimSpace(os.Getenv("STORE_BUSY_TIMEOUT")); busy != "" {
		cfg.BusyTimeoutString = busy
	}
	return cfg, nil
}
