// File path: internal/store/queries.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/nicodishanthj/propinsight/internal/metrics"
	"github.com/nicodishanthj/propinsight/internal/property"
)

// PropertiesBySubmarket returns up to limit properties in submarket, never
// including excludeID.
func (s *Store) PropertiesBySubmarket(ctx context.Context, submarket, excludeID string, limit int) ([]property.Property, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("property store not initialised")
	}
	query, args := s.dialect.submarketPropertiesQuery(submarket, excludeID, limit)
	rows := []property.Property{}
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("select submarket properties: %w", err)
	}
	return normalizeRows(rows), nil
}

// PropertiesByYearBuilt returns up to limit properties built between low and
// high inclusive, closest construction year first, never including
// excludeID.
func (s *Store) PropertiesByYearBuilt(ctx context.Context, low, high int, excludeID string, limit int) ([]property.Property, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("property store not initialised")
	}
	query, args := s.dialect.sameAgePropertiesQuery(low, high, excludeID, limit)
	rows := []property.Property{}
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("select same-age properties: %w", err)
	}
	return normalizeRows(rows), nil
}

// PropertyByKey looks up the properties row for a subject, preferring an
// identifier match over a name match. It returns nil when nothing matches.
func (s *Store) PropertyByKey(ctx context.Context, key Key) (*property.Property, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("property store not initialised")
	}
	where, args := key.where()
	if where == "" {
		return nil, nil
	}
	query := `SELECT ` + s.dialect.propertyColumns() + `
                FROM properties
                WHERE ` + where + s.dialect.limit(1)
	var row property.Property
	if err := s.db.GetContext(ctx, &row, s.db.Rebind(query), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select property: %w", err)
	}
	normalized := normalizeRows([]property.Property{row})[0]
	return &normalized, nil
}

func normalizeRows(rows []property.Property) []property.Property {
	for i := range rows {
		normalized, err := property.Normalize(rows[i])
		if err == nil {
			rows[i] = normalized
		}
	}
	return rows
}

// Key identifies a subject property in the history tables.
type Key struct {
	ID   string
	Name string
}

// KeyFor builds a lookup key from a normalized property, skipping default
// placeholder values.
func KeyFor(p property.Property) Key {
	key := Key{}
	if p.HasKnownID() {
		key.ID = p.ID
	}
	if p.Name != "" && p.Name != property.DefaultName {
		key.Name = p.Name
	}
	return key
}

// Empty reports whether the key has nothing to match on.
func (k Key) Empty() bool {
	return k.ID == "" && k.Name == ""
}

func (k Key) where() (string, []any) {
	switch {
	case k.ID != "" && k.Name != "":
		return `(property_id = ? OR name = ?) ORDER BY CASE WHEN property_id = ? THEN 0 ELSE 1 END`, []any{k.ID, k.Name, k.ID}
	case k.ID != "":
		return `property_id = ?`, []any{k.ID}
	case k.Name != "":
		return `name = ?`, []any{k.Name}
	default:
		return "", nil
	}
}

// SeriesRow is one property's history from a per-year table.
type SeriesRow struct {
	PropertyID string         `json:"propertyId"`
	Name       string         `json:"name"`
	Submarket  string         `json:"submarket"`
	Values     metrics.Series `json:"values"`
}

// History loads the subject's row of the metric table. When the property is
// not present it returns nil and no error.
func (s *Store) History(ctx context.Context, metric Metric, key Key) (*SeriesRow, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("property store not initialised")
	}
	if !metric.valid() {
		return nil, fmt.Errorf("unknown metric %q", metric)
	}
	where, args := key.where()
	if where == "" {
		return nil, nil
	}
	query := s.historySelect(metric) + ` WHERE ` + where + s.dialect.limit(1)
	rows, err := s.scanHistory(ctx, metric, query, args...)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// SubmarketHistory loads up to limit rows of the metric table for submarket,
// never including excludeID when it is set.
func (s *Store) SubmarketHistory(ctx context.Context, metric Metric, submarket, excludeID string, limit int) ([]SeriesRow, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("property store not initialised")
	}
	if !metric.valid() {
		return nil, fmt.Errorf("unknown metric %q", metric)
	}
	query := s.historySelect(metric) + ` WHERE submarket = ?`
	args := []any{submarket}
	if excludeID != "" {
		query += excludeClause
		args = append(args, excludeID)
	}
	query += ` ORDER BY name` + s.dialect.limit(limit)
	return s.scanHistory(ctx, metric, query, args...)
}

func (s *Store) historySelect(metric Metric) string {
	columns := append([]string{"property_id", "name", "submarket"}, metric.columns(s.years)...)
	return `SELECT ` + strings.Join(columns, ", ") + ` FROM ` + metric.table()
}

func (s *Store) scanHistory(ctx context.Context, metric Metric, query string, args ...any) ([]SeriesRow, error) {
	rows, err := s.db.QueryxContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", metric.table(), err)
	}
	defer rows.Close()

	out := []SeriesRow{}
	for rows.Next() {
		raw := make(map[string]any)
		if err := rows.MapScan(raw); err != nil {
			return nil, fmt.Errorf("scan %s: %w", metric.table(), err)
		}
		out = append(out, s.decodeHistory(metric, lowerKeys(raw)))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", metric.table(), err)
	}
	return out, nil
}

func (s *Store) decodeHistory(metric Metric, raw map[string]any) SeriesRow {
	values := make(map[int]metrics.Value, s.years.Len())
	for _, year := range s.years.Years() {
		values[year] = metrics.ParseValue(raw[metric.Column(year)])
	}
	return SeriesRow{
		PropertyID: textValue(raw["property_id"]),
		Name:       textValue(raw["name"]),
		Submarket:  textValue(raw["submarket"]),
		Values:     metrics.NewSeries(s.years, values),
	}
}

// lowerKeys folds column names so upper-casing drivers decode the same way.
func lowerKeys(raw map[string]any) map[string]any {
	out := make(map[string]any, len(raw))
	for key, value := range raw {
		out[strings.ToLower(key)] = value
	}
	return out
}

func textValue(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

// TrendPoint is one monthly row of rent_time_series.
type TrendPoint struct {
	Date      string   `json:"date" db:"date"`
	Submarket string   `json:"submarket" db:"submarket"`
	Rent      *float64 `json:"rent" db:"rent"`
	YoYGrowth *float64 `json:"yoyGrowth" db:"yoy_growth"`
	MoMGrowth *float64 `json:"momGrowth" db:"mom_growth"`
}

// RentTrend returns the latest limit monthly points for submarket in
// ascending date order.
func (s *Store) RentTrend(ctx context.Context, submarket string, limit int) ([]TrendPoint, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("property store not initialised")
	}
	query, args := s.dialect.rentTrendQuery(submarket, limit)
	points := []TrendPoint{}
	if err := s.db.SelectContext(ctx, &points, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("select rent time series: %w", err)
	}
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
	return points, nil
}
