// File path: internal/fetch/fetch.go

// Package fetch gathers the store context used to answer one category of
// property question.
package fetch

import (
	"context"
	"sort"

	"github.com/nicodishanthj/propinsight/internal/common"
	"github.com/nicodishanthj/propinsight/internal/common/telemetry"
	"github.com/nicodishanthj/propinsight/internal/metrics"
	"github.com/nicodishanthj/propinsight/internal/property"
	"github.com/nicodishanthj/propinsight/internal/store"
)

// Store is the read-only data access the fetchers depend on. *store.Store
// satisfies it.
type Store interface {
	Years() metrics.YearRange
	PropertyByKey(ctx context.Context, key store.Key) (*property.Property, error)
	PropertiesBySubmarket(ctx context.Context, submarket, excludeID string, limit int) ([]property.Property, error)
	PropertiesByYearBuilt(ctx context.Context, low, high int, excludeID string, limit int) ([]property.Property, error)
	History(ctx context.Context, metric store.Metric, key store.Key) (*store.SeriesRow, error)
	SubmarketHistory(ctx context.Context, metric store.Metric, submarket, excludeID string, limit int) ([]store.SeriesRow, error)
	RentTrend(ctx context.Context, submarket string, limit int) ([]store.TrendPoint, error)
}

// Fetcher gathers the context for one question category.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, p property.Property) (*Bundle, error)
}

const (
	FetcherFact       = "fact"
	FetcherComparison = "comparison"
	FetcherInvestment = "investment"
	FetcherMarket     = "market"
	FetcherNone       = "none"
)

// Set holds every fetcher by name.
type Set struct {
	fetchers map[string]Fetcher
}

func NewSet(s Store, cfg Config) *Set {
	d := deps{store: s, cfg: applyDefaults(cfg)}
	set := &Set{fetchers: make(map[string]Fetcher)}
	for _, f := range []Fetcher{
		&factFetcher{d},
		&comparisonFetcher{d},
		&investmentFetcher{d},
		&marketFetcher{d},
		noneFetcher{},
	} {
		set.fetchers[f.Name()] = f
	}
	return set
}

func (s *Set) Lookup(name string) (Fetcher, bool) {
	f, ok := s.fetchers[name]
	return f, ok
}

func (s *Set) Names() []string {
	names := make([]string, 0, len(s.fetchers))
	for name := range s.fetchers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type deps struct {
	store Store
	cfg   Config
}

// history loads the subject's row of one metric table. A missing row yields
// an all-unavailable series and zero records.
func (d deps) history(ctx context.Context, metric store.Metric, key store.Key) (metrics.Series, int, error) {
	years := d.store.Years()
	row, err := d.store.History(ctx, metric, key)
	if err != nil {
		return metrics.EmptySeries(years), 0, err
	}
	if row == nil {
		return metrics.EmptySeries(years), 0, nil
	}
	return row.Values, 1, nil
}

func (d deps) subjectRent(ctx context.Context, key store.Key) (metrics.Series, int, error) {
	series, records, err := d.history(ctx, store.MetricRent, key)
	if err != nil {
		return series, 0, &StoreQueryError{Lookup: "subject rent history", Err: err}
	}
	return series, records, nil
}

// resolve fills a missing submarket, construction year or identifier from
// the stored properties row so peer queries have something to match on.
func (d deps) resolve(ctx context.Context, p property.Property) property.Property {
	if p.HasKnownSubmarket() && p.HasKnownYearBuilt() && p.HasKnownID() {
		return p
	}
	key := store.KeyFor(p)
	if key.Empty() {
		return p
	}
	record, err := d.store.PropertyByKey(ctx, key)
	if err != nil {
		storeFailure(ctx, "subject property record", err)
		return p
	}
	if record == nil {
		return p
	}
	if !p.HasKnownSubmarket() && record.HasKnownSubmarket() {
		p.Submarket = record.Submarket
	}
	if !p.HasKnownYearBuilt() && record.HasKnownYearBuilt() {
		p.YearBuilt = record.YearBuilt
	}
	if !p.HasKnownID() && record.HasKnownID() {
		p.ID = record.ID
	}
	return p
}

// optional wraps a non-critical sub-query for an errgroup: failures are
// logged and counted, and the caller keeps its empty result.
func optional(ctx context.Context, lookup string, fn func() error) func() error {
	return func() error {
		if err := fn(); err != nil && ctx.Err() == nil {
			storeFailure(ctx, lookup, err)
		}
		return nil
	}
}

func storeFailure(ctx context.Context, lookup string, err error) {
	common.Logger().WarnContext(ctx, "fetch: sub-query failed; using empty result", "lookup", lookup, "error", err)
	telemetry.RecordStoreFailure(lookup)
}

func excludeID(p property.Property) string {
	if p.HasKnownID() {
		return p.ID
	}
	return ""
}

// excludeSubject drops the subject from a comparable set, matching on the
// identifier when known and on the name otherwise.
func excludeSubject(rows []property.Property, subject property.Property) []property.Property {
	out := make([]property.Property, 0, len(rows))
	for _, row := range rows {
		if subject.HasKnownID() {
			if row.ID == subject.ID {
				continue
			}
		} else if subject.Name != property.DefaultName && row.Name == subject.Name {
			continue
		}
		out = append(out, row)
	}
	return out
}

func seriesOf(rows []store.SeriesRow) []metrics.Series {
	out := make([]metrics.Series, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Values)
	}
	return out
}

func nonNilRows(rows []store.SeriesRow) []store.SeriesRow {
	if rows == nil {
		return []store.SeriesRow{}
	}
	return rows
}

func nonNilProperties(rows []property.Property) []property.Property {
	if rows == nil {
		return []property.Property{}
	}
	return rows
}
