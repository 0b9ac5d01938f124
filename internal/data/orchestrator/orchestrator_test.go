// File path: internal/data/orchestrator/orchestrator_test.go
package orchestrator

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nicodishanthj/propinsight/internal/fetch"
	"github.com/nicodishanthj/propinsight/internal/metrics"
	"github.com/nicodishanthj/propinsight/internal/property"
	"github.com/nicodishanthj/propinsight/internal/store"
)

func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"STORE_CONFIG_FILE",
		"STORE_DRIVER",
		"STORE_PATH",
		"STORE_DSN",
		"STORE_FIRST_YEAR",
		"STORE_LAST_YEAR",
		"STORE_MAX_OPEN_CONNS",
		"STORE_MAX_IDLE_CONNS",
		"STORE_CONN_MAX_LIFETIME",
		"STORE_CONN_MAX_IDLE_TIME",
		"STORE_BUSY_TIMEOUT",
		"INSIGHTS_COMPARABLE_LIMIT",
		"INSIGHTS_YEAR_WINDOW",
		"INSIGHTS_SUBMARKET_LIMIT",
		"INSIGHTS_TREND_LIMIT",
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if diff := cmp.Diff(fetch.DefaultConfig(), cfg.Fetch); diff != "" {
		t.Fatalf("fetch defaults mismatch (-want +got):\n%s", diff)
	}
	if cfg.Store.Driver != store.DriverSQLite {
		t.Fatalf("Driver = %q", cfg.Store.Driver)
	}
	if cfg.Store.Path != filepath.Join("data", "properties.db") {
		t.Fatalf("Path = %q", cfg.Store.Path)
	}
}

func TestLoadConfigEnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_PATH", "/tmp/props.db")
	t.Setenv("STORE_FIRST_YEAR", "2012")
	t.Setenv("INSIGHTS_COMPARABLE_LIMIT", "3")
	t.Setenv("INSIGHTS_TREND_LIMIT", "6")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Store.Path != "/tmp/props.db" {
		t.Errorf("Path = %q", cfg.Store.Path)
	}
	if cfg.Store.FirstYear != 2012 {
		t.Errorf("FirstYear = %d", cfg.Store.FirstYear)
	}
	if cfg.Fetch.ComparableLimit != 3 {
		t.Errorf("ComparableLimit = %d", cfg.Fetch.ComparableLimit)
	}
	if cfg.Fetch.TrendLimit != 6 {
		t.Errorf("TrendLimit = %d", cfg.Fetch.TrendLimit)
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("INSIGHTS_SUBMARKET_LIMIT", "many")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestNewOpensSQLiteStore(t *testing.T) {
	cfg := Config{Store: store.Config{
		Driver:    store.DriverSQLite,
		Path:      filepath.Join(t.TempDir(), "properties.db"),
		FirstYear: 2014,
		LastYear:  2016,
	}}
	orch, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = orch.Close() })

	if got := orch.Store().Years(); got != (metrics.YearRange{First: 2014, Last: 2016}) {
		t.Fatalf("Years = %+v", got)
	}
	want := []string{fetch.FetcherComparison, fetch.FetcherFact, fetch.FetcherInvestment, fetch.FetcherMarket, fetch.FetcherNone}
	if diff := cmp.Diff(want, orch.Fetchers().Names()); diff != "" {
		t.Fatalf("fetchers mismatch (-want +got):\n%s", diff)
	}
	if orch.Config().Fetch != fetch.DefaultConfig() {
		t.Fatalf("fetch config not defaulted: %+v", orch.Config().Fetch)
	}
}

func TestNewWithInjectedStore(t *testing.T) {
	stub := &stubStore{}
	orch, err := New(context.Background(), Config{}, WithStore(stub))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if orch.Store() != stub {
		t.Fatalf("store not applied")
	}
	if stub.pings != 1 {
		t.Fatalf("expected one ping, got %d", stub.pings)
	}
	if err := orch.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := orch.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if stub.closed != 1 {
		t.Fatalf("expected close count 1, got %d", stub.closed)
	}
}

func TestNewPingFailureClosesStore(t *testing.T) {
	stub := &stubStore{pingErr: errors.New("unreachable")}
	if _, err := New(context.Background(), Config{}, WithStore(stub)); err == nil {
		t.Fatal("expected ping failure")
	}
	if stub.closed != 1 {
		t.Fatalf("store not closed after failed ping")
	}

	skipped := &stubStore{pingErr: errors.New("unreachable")}
	if _, err := New(context.Background(), Config{}, WithStore(skipped), WithoutPing()); err != nil {
		t.Fatalf("New without ping: %v", err)
	}
	if skipped.pings != 0 {
		t.Fatalf("ping should be skipped")
	}
}

type stubStore struct {
	pings   int
	closed  int
	pingErr error
}

func (s *stubStore) Years() metrics.YearRange { return metrics.DefaultYearRange() }
func (s *stubStore) PropertyByKey(context.Context, store.Key) (*property.Property, error) {
	return nil, nil
}
func (s *stubStore) PropertiesBySubmarket(context.Context, string, string, int) ([]property.Property, error) {
	return nil, nil
}
func (s *stubStore) PropertiesByYearBuilt(context.Context, int, int, string, int) ([]property.Property, error) {
	return nil, nil
}
func (s *stubStore) History(context.Context, store.Metric, store.Key) (*store.SeriesRow, error) {
	return nil, nil
}
func (s *stubStore) SubmarketHistory(context.Context, store.Metric, string, string, int) ([]store.SeriesRow, error) {
	return nil, nil
}
func (s *stubStore) RentTrend(context.Context, string, int) ([]store.TrendPoint, error) {
	return nil, nil
}
func (s *stubStore) Ping(context.Context) error {
	s.pings++
	return s.pingErr
}
func (s *stubStore) Close() error {
	s.closed++
	return nil
}
