// File path: internal/store/schema.go
package store

import (
	"fmt"
	"strings"

	"github.com/nicodishanthj/propinsight/internal/metrics"
)

// Metric names one of the wide per-year history tables.
type Metric string

const (
	MetricRent          Metric = "rent"
	MetricGrade         Metric = "grade"
	MetricPricePosition Metric = "price_position"
)

// Metrics lists every history table.
func Metrics() []Metric {
	return []Metric{MetricRent, MetricGrade, MetricPricePosition}
}

func (m Metric) table() string {
	switch m {
	case MetricRent:
		return "rent_history"
	case MetricGrade:
		return "grade_history"
	case MetricPricePosition:
		return "price_position"
	default:
		return ""
	}
}

func (m Metric) columnPrefix() string {
	switch m {
	case MetricRent:
		return "rent_"
	case MetricGrade:
		return "grade_"
	case MetricPricePosition:
		return "position_"
	default:
		return ""
	}
}

// Column returns the per-year column name for year.
func (m Metric) Column(year int) string {
	return fmt.Sprintf("%s%d", m.columnPrefix(), year)
}

func (m Metric) columns(years metrics.YearRange) []string {
	out := make([]string, 0, years.Len())
	for _, year := range years.Years() {
		out = append(out, m.Column(year))
	}
	return out
}

func (m Metric) valid() bool {
	return m.table() != ""
}

func schemaStatements(years metrics.YearRange) []string {
	statements := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS properties (
                property_id TEXT PRIMARY KEY,
                name TEXT NOT NULL,
                address TEXT,
                city TEXT,
                state TEXT,
                year_built INTEGER,
                quantity INTEGER,
                level INTEGER,
                submarket TEXT,
                property_type TEXT,
                area_per_unit REAL
        );`,
		`CREATE INDEX IF NOT EXISTS idx_properties_submarket ON properties(submarket);`,
		`CREATE INDEX IF NOT EXISTS idx_properties_year_built ON properties(year_built);`,
		`CREATE INDEX IF NOT EXISTS idx_properties_name ON properties(name);`,
		`CREATE TABLE IF NOT EXISTS rent_time_series (
                id INTEGER PRIMARY KEY AUTOINCREMENT,
                date TEXT NOT NULL,
                city TEXT,
                state TEXT,
                submarket TEXT,
                yoy_growth REAL,
                mom_growth REAL,
                rent REAL
        );`,
		`CREATE INDEX IF NOT EXISTS idx_rent_time_series_submarket_date ON rent_time_series(submarket, date);`,
	}
	for _, metric := range Metrics() {
		columns := make([]string, 0, years.Len())
		for _, column := range metric.columns(years) {
			columns = append(columns, column+" TEXT")
		}
		statements = append(statements,
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
                property_id TEXT,
                name TEXT,
                submarket TEXT,
                %s
        );`, metric.table(), strings.Join(columns, ",\n                ")),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_property ON %s(property_id);`, metric.table(), metric.table()),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_name ON %s(name);`, metric.table(), metric.table()),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_submarket ON %s(submarket);`, metric.table(), metric.table()),
		)
	}
	return statements
}

// dialect captures the SQL differences between the supported drivers.
type dialect struct {
	driver string
}

func dialectFor(driver string) dialect {
	return dialect{driver: driver}
}

func (d dialect) limit(n int) string {
	if n <= 0 {
		return ""
	}
	if d.driver == DriverOracle {
		return fmt.Sprintf(" FETCH FIRST %d ROWS ONLY", n)
	}
	return fmt.Sprintf(" LIMIT %d", n)
}

// Oracle reserves these words as identifiers and folds unquoted names to
// upper case, so they are referenced as quoted upper-case names.
var oracleReserved = map[string]bool{"level": true, "date": true}

func (d dialect) ident(name string) string {
	if d.driver == DriverOracle && oracleReserved[name] {
		return `"` + strings.ToUpper(name) + `"`
	}
	return name
}

// text reads a nullable text column as a string. Oracle stores '' as NULL,
// so a single space stands in and is trimmed away when rows are filled.
func (d dialect) text(column string) string {
	if d.driver == DriverOracle {
		return fmt.Sprintf(`NVL(%s, ' ') AS "%s"`, column, column)
	}
	return fmt.Sprintf(`COALESCE(%s, '') AS "%s"`, column, column)
}

func (d dialect) propertyColumns() string {
	return strings.Join([]string{
		d.text("property_id"),
		d.text("name"),
		d.text("address"),
		d.text("city"),
		d.text("state"),
		`COALESCE(year_built, 0) AS "year_built"`,
		`COALESCE(quantity, 0) AS "quantity"`,
		`COALESCE(` + d.ident("level") + `, 0) AS "level"`,
		d.text("submarket"),
	}, ", ")
}

const excludeClause = ` AND (property_id IS NULL OR property_id <> ?)`

func (d dialect) submarketPropertiesQuery(submarket, excludeID string, limit int) (string, []any) {
	query := `SELECT ` + d.propertyColumns() + ` FROM properties WHERE submarket = ?`
	args := []any{submarket}
	if excludeID != "" {
		query += excludeClause
		args = append(args, excludeID)
	}
	return query + ` ORDER BY name` + d.limit(limit), args
}

// sameAgePropertiesQuery orders matches by distance from the middle of the
// year range.
func (d dialect) sameAgePropertiesQuery(low, high int, excludeID string, limit int) (string, []any) {
	target := low + (high-low)/2
	query := `SELECT ` + d.propertyColumns() + ` FROM properties WHERE year_built BETWEEN ? AND ?`
	args := []any{low, high}
	if excludeID != "" {
		query += excludeClause
		args = append(args, excludeID)
	}
	args = append(args, target)
	return query + ` ORDER BY ABS(year_built - ?), name` + d.limit(limit), args
}

func (d dialect) rentTrendQuery(submarket string, limit int) (string, []any) {
	date := d.ident("date")
	query := `SELECT ` + date + ` AS "date", ` + d.text("submarket") +
		`, rent AS "rent", yoy_growth AS "yoy_growth", mom_growth AS "mom_growth"` +
		` FROM rent_time_series WHERE submarket = ? ORDER BY ` + date + ` DESC` + d.limit(limit)
	return query, []any{submarket}
}
