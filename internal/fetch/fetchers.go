// File path: internal/fetch/fetchers.go
package fetch

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/nicodishanthj/propinsight/internal/common/telemetry"
	"github.com/nicodishanthj/propinsight/internal/metrics"
	"github.com/nicodishanthj/propinsight/internal/property"
	"github.com/nicodishanthj/propinsight/internal/store"
)

// factFetcher returns the subject's rent history and nothing else.
type factFetcher struct{ deps }

func (f *factFetcher) Name() string { return FetcherFact }

func (f *factFetcher) Fetch(ctx context.Context, p property.Property) (*Bundle, error) {
	ctx, end := telemetry.StartSpan(ctx, "fetch.fact")
	defer end()
	rent, records, err := f.subjectRent(ctx, store.KeyFor(p))
	if err != nil {
		return nil, err
	}
	bundle := newBundle(f.Name())
	bundle.add(SectionRentHistory, rent, records)
	return bundle, nil
}

// subjectSeries holds the subject's three per-year histories.
type subjectSeries struct {
	rent, grade, position                     metrics.Series
	rentRecords, gradeRecords, positionRecords int
}

// goSubject schedules the subject history lookups on g. The rent lookup is
// the only critical query of every fetcher.
func (d deps) goSubject(ctx context.Context, g *errgroup.Group, key store.Key, out *subjectSeries) {
	years := d.store.Years()
	out.rent, out.grade, out.position = metrics.EmptySeries(years), metrics.EmptySeries(years), metrics.EmptySeries(years)
	g.Go(func() error {
		rent, records, err := d.subjectRent(ctx, key)
		if err != nil {
			return err
		}
		out.rent, out.rentRecords = rent, records
		return nil
	})
	g.Go(optional(ctx, "subject grade history", func() error {
		grade, records, err := d.history(ctx, store.MetricGrade, key)
		if err != nil {
			return err
		}
		out.grade, out.gradeRecords = grade, records
		return nil
	}))
	g.Go(optional(ctx, "subject price position history", func() error {
		position, records, err := d.history(ctx, store.MetricPricePosition, key)
		if err != nil {
			return err
		}
		out.position, out.positionRecords = position, records
		return nil
	}))
}

func (s subjectSeries) addTo(b *Bundle) {
	b.add(SectionRentHistory, s.rent, s.rentRecords)
	b.add(SectionGradeHistory, s.grade, s.gradeRecords)
	b.add(SectionPricePositionHistory, s.position, s.positionRecords)
}

// comparisonFetcher adds peer sets by submarket and by construction year.
type comparisonFetcher struct{ deps }

func (f *comparisonFetcher) Name() string { return FetcherComparison }

func (f *comparisonFetcher) Fetch(ctx context.Context, p property.Property) (*Bundle, error) {
	ctx, end := telemetry.StartSpan(ctx, "fetch.comparison")
	defer end()
	subject := f.resolve(ctx, p)
	g, gctx := errgroup.WithContext(ctx)

	var series subjectSeries
	f.goSubject(gctx, g, store.KeyFor(subject), &series)

	var similar, sameAge []property.Property
	if subject.HasKnownSubmarket() {
		g.Go(optional(gctx, "similar properties", func() error {
			rows, err := f.store.PropertiesBySubmarket(gctx, subject.Submarket, excludeID(subject), f.cfg.ComparableLimit)
			if err != nil {
				return err
			}
			similar = excludeSubject(rows, subject)
			return nil
		}))
	}
	if subject.HasKnownYearBuilt() {
		low, high := subject.YearBuilt-f.cfg.YearWindow, subject.YearBuilt+f.cfg.YearWindow
		g.Go(optional(gctx, "same-age properties", func() error {
			rows, err := f.store.PropertiesByYearBuilt(gctx, low, high, excludeID(subject), f.cfg.ComparableLimit)
			if err != nil {
				return err
			}
			sameAge = excludeSubject(rows, subject)
			return nil
		}))
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	bundle := newBundle(f.Name())
	series.addTo(bundle)
	similar, sameAge = nonNilProperties(similar), nonNilProperties(sameAge)
	bundle.add(SectionSimilarProperties, similar, len(similar))
	bundle.add(SectionSameAgeProperties, sameAge, len(sameAge))
	return bundle, nil
}

// investmentFetcher compares the subject's trajectory with its submarket
// peers.
type investmentFetcher struct{ deps }

func (f *investmentFetcher) Name() string { return FetcherInvestment }

func (f *investmentFetcher) Fetch(ctx context.Context, p property.Property) (*Bundle, error) {
	ctx, end := telemetry.StartSpan(ctx, "fetch.investment")
	defer end()
	subject := f.resolve(ctx, p)
	g, gctx := errgroup.WithContext(ctx)

	var series subjectSeries
	f.goSubject(gctx, g, store.KeyFor(subject), &series)

	var peers []store.SeriesRow
	if subject.HasKnownSubmarket() {
		g.Go(optional(gctx, "submarket rent history", func() error {
			rows, err := f.store.SubmarketHistory(gctx, store.MetricRent, subject.Submarket, excludeID(subject), f.cfg.SubmarketLimit)
			if err != nil {
				return err
			}
			peers = rows
			return nil
		}))
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	peers = nonNilRows(peers)
	investment := metrics.DeriveInvestment(series.rent, series.grade, series.position, seriesOf(peers))
	bundle := newBundle(f.Name())
	series.addTo(bundle)
	bundle.add(SectionSubmarketRentHistory, peers, len(peers))
	bundle.add(SectionInvestmentMetrics, investment, 0)
	return bundle, nil
}

// marketFetcher aggregates submarket-wide history and the monthly rent trend.
type marketFetcher struct{ deps }

func (f *marketFetcher) Name() string { return FetcherMarket }

func (f *marketFetcher) Fetch(ctx context.Context, p property.Property) (*Bundle, error) {
	ctx, end := telemetry.StartSpan(ctx, "fetch.market")
	defer end()
	subject := f.resolve(ctx, p)
	g, gctx := errgroup.WithContext(ctx)

	var series subjectSeries
	f.goSubject(gctx, g, store.KeyFor(subject), &series)

	var rents, grades, positions []store.SeriesRow
	var trend []store.TrendPoint
	if subject.HasKnownSubmarket() {
		submarketRows := func(lookup string, metric store.Metric, out *[]store.SeriesRow) {
			g.Go(optional(gctx, lookup, func() error {
				rows, err := f.store.SubmarketHistory(gctx, metric, subject.Submarket, "", f.cfg.SubmarketLimit)
				if err != nil {
					return err
				}
				*out = rows
				return nil
			}))
		}
		submarketRows("submarket rent history", store.MetricRent, &rents)
		submarketRows("submarket grade history", store.MetricGrade, &grades)
		submarketRows("submarket price position history", store.MetricPricePosition, &positions)
		g.Go(optional(gctx, "submarket rent trend", func() error {
			points, err := f.store.RentTrend(gctx, subject.Submarket, f.cfg.TrendLimit)
			if err != nil {
				return err
			}
			trend = points
			return nil
		}))
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rents, grades, positions = nonNilRows(rents), nonNilRows(grades), nonNilRows(positions)
	if trend == nil {
		trend = []store.TrendPoint{}
	}
	conditions := metrics.AggregateMarket(f.store.Years(), seriesOf(rents), seriesOf(grades))
	bundle := newBundle(f.Name())
	series.addTo(bundle)
	bundle.add(SectionSubmarketRentHistory, rents, len(rents))
	bundle.add(SectionSubmarketGradeHistory, grades, len(grades))
	bundle.add(SectionSubmarketPositionHistory, positions, len(positions))
	bundle.add(SectionMarketConditions, conditions, 0)
	bundle.add(SectionRentTrend, trend, len(trend))
	return bundle, nil
}

// noneFetcher gathers nothing; it serves questions unrelated to the property.
type noneFetcher struct{}

func (noneFetcher) Name() string { return FetcherNone }

func (noneFetcher) Fetch(ctx context.Context, p property.Property) (*Bundle, error) {
	return newBundle(FetcherNone), nil
}
