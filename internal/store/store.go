// File path: internal/store/store.go

// Package store is the read side of the property dataset: the properties
// table, the wide per-year history tables and the monthly rent time series.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/sijms/go-ora/v2"
	_ "modernc.org/sqlite"

	"github.com/nicodishanthj/propinsight/internal/metrics"
)

func init() {
	sqlx.BindDriver(DriverOracle, sqlx.NAMED)
}

// Store wraps a pooled sqlx.DB connection to the property dataset.
type Store struct {
	db      *sqlx.DB
	dialect dialect
	years   metrics.YearRange
}

// Open constructs a Store from environment configuration. A non-empty path
// overrides the configured SQLite file.
func Open(path string) (*Store, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		cfg.Path = trimmed
	}
	return OpenWithConfig(cfg)
}

// OpenWithConfig constructs a Store using the provided configuration. SQLite
// databases are migrated on open; Oracle schemas are provisioned externally.
func OpenWithConfig(cfg Config) (*Store, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	dsn, err := cfg.dataSourceName()
	if err != nil {
		return nil, err
	}
	db, err := sqlx.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.BusyTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Driver, err)
	}

	store := &Store{db: db, dialect: dialectFor(cfg.Driver), years: cfg.Years()}
	if cfg.Driver == DriverSQLite {
		if err := store.migrate(context.Background()); err != nil {
			db.Close()
			return nil, err
		}
	}
	return store, nil
}

func (c Config) dataSourceName() (string, error) {
	if c.DSN != "" {
		return c.DSN, nil
	}
	switch c.Driver {
	case DriverSQLite:
		abs, err := filepath.Abs(c.Path)
		if err != nil {
			return "", fmt.Errorf("resolve sqlite path: %w", err)
		}
		busy := int(c.BusyTimeout / time.Millisecond)
		if busy <= 0 {
			busy = 5000
		}
		return fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)", abs, busy), nil
	case DriverOracle:
		return oracleDSN(c.Oracle), nil
	default:
		return "", fmt.Errorf("unsupported store driver %q", c.Driver)
	}
}

// oracleDSN builds an encoded go-ora URL, using mTLS when a wallet is set.
func oracleDSN(cfg OracleConfig) string {
	query := url.Values{}
	query.Set("ssl", "true")
	if cfg.WalletLocation != "" {
		query.Set("wallet", cfg.WalletLocation)
	}
	return (&url.URL{
		Scheme:   "oracle",
		User:     url.UserPassword(cfg.Username, cfg.Password),
		Host:     cfg.Host + ":" + cfg.Port,
		Path:     "/" + cfg.Service,
		RawQuery: query.Encode(),
	}).String()
}

// Close releases the underlying database resources.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB exposes the underlying sqlx.DB for advanced callers.
func (s *Store) DB() *sqlx.DB {
	if s == nil {
		return nil
	}
	return s.db
}

// Years returns the year range covered by the history tables.
func (s *Store) Years() metrics.YearRange {
	if s == nil {
		return metrics.DefaultYearRange()
	}
	return s.years
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errors.New("property store not initialised")
	}
	return s.db.PingContext(ctx)
}

func (s *Store) migrate(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errors.New("property store not initialised")
	}
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	for i, stmt := range schemaStatements(s.years) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			tx.Rollback()
			return fmt.Errorf("execute schema statement %d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration: %w", err)
	}
	return nil
}
