// File path: internal/metrics/series.go
package metrics

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

const (
	DefaultFirstYear = 2008
	DefaultLastYear  = 2020
)

// YearRange is an inclusive span of calendar years.
type YearRange struct {
	First int `json:"first" yaml:"first"`
	Last  int `json:"last" yaml:"last"`
}

// DefaultYearRange covers the years present in the historical tables.
func DefaultYearRange() YearRange {
	return YearRange{First: DefaultFirstYear, Last: DefaultLastYear}
}

// Validate rejects inverted or non-positive ranges.
func (r YearRange) Validate() error {
	if r.First <= 0 || r.Last <= 0 {
		return fmt.Errorf("year range %d-%d must be positive", r.First, r.Last)
	}
	if r.First > r.Last {
		return fmt.Errorf("year range %d-%d is inverted", r.First, r.Last)
	}
	return nil
}

// Len returns the number of years in the range.
func (r YearRange) Len() int {
	if r.First > r.Last {
		return 0
	}
	return r.Last - r.First + 1
}

// Years lists every year in ascending order.
func (r YearRange) Years() []int {
	years := make([]int, 0, r.Len())
	for year := r.First; year <= r.Last; year++ {
		years = append(years, year)
	}
	return years
}

// Contains reports whether year falls inside the range.
func (r YearRange) Contains(year int) bool {
	return year >= r.First && year <= r.Last
}

// Point is a data-bearing year.
type Point struct {
	Year  int
	Value float64
}

// Label is a data-bearing year holding text.
type Label struct {
	Year int
	Text string
}

// Series maps every year of its range to exactly one Value.
type Series struct {
	years  YearRange
	values []Value
}

// NewSeries builds a Series over r. Years of r missing from values are
// Unavailable; entries outside r are dropped.
func NewSeries(r YearRange, values map[int]Value) Series {
	s := EmptySeries(r)
	for year, value := range values {
		if r.Contains(year) {
			s.values[year-r.First] = value
		}
	}
	return s
}

// EmptySeries returns a Series with every year Unavailable.
func EmptySeries(r YearRange) Series {
	values := make([]Value, r.Len())
	for i := range values {
		values[i] = Unavailable(MissingMarker)
	}
	return Series{years: r, values: values}
}

// Range returns the years covered by the series.
func (s Series) Range() YearRange {
	return s.years
}

// Len returns the number of yearly entries.
func (s Series) Len() int {
	return len(s.values)
}

// At returns the value for year, Unavailable when out of range.
func (s Series) At(year int) Value {
	if !s.years.Contains(year) || year-s.years.First >= len(s.values) {
		return Unavailable(MissingMarker)
	}
	return s.values[year-s.years.First]
}

// Numeric lists the years with numeric observations in ascending order.
func (s Series) Numeric() []Point {
	var points []Point
	for i, value := range s.values {
		if number, ok := value.Number(); ok {
			points = append(points, Point{Year: s.years.First + i, Value: number})
		}
	}
	return points
}

// Labels lists the years with text observations in ascending order.
func (s Series) Labels() []Label {
	var labels []Label
	for i, value := range s.values {
		if text, ok := value.Label(); ok {
			labels = append(labels, Label{Year: s.years.First + i, Text: text})
		}
	}
	return labels
}

// Available counts the years carrying any observation.
func (s Series) Available() int {
	count := 0
	for _, value := range s.values {
		if value.Available() {
			count++
		}
	}
	return count
}

// MarshalJSON renders the series as an object keyed by year.
func (s Series) MarshalJSON() ([]byte, error) {
	out := make(map[string]Value, len(s.values))
	for i, value := range s.values {
		out[strconv.Itoa(s.years.First+i)] = value
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts the object form produced by MarshalJSON. The range is
// inferred from the smallest and largest year present.
func (s *Series) UnmarshalJSON(data []byte) error {
	var raw map[string]Value
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	values := make(map[int]Value, len(raw))
	years := make([]int, 0, len(raw))
	for key, value := range raw {
		year, err := strconv.Atoi(key)
		if err != nil {
			return fmt.Errorf("series year %q: %w", key, err)
		}
		values[year] = value
		years = append(years, year)
	}
	if len(years) == 0 {
		*s = Series{}
		return nil
	}
	sort.Ints(years)
	*s = NewSeries(YearRange{First: years[0], Last: years[len(years)-1]}, values)
	return nil
}
