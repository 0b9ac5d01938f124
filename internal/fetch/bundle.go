// File path: internal/fetch/bundle.go
package fetch

import (
	"encoding/json"
	"fmt"
)

// Context sections a fetcher can contribute. The names double as prompt
// template variables and as the dataTypes reported to callers.
const (
	SectionRentHistory              = "rentHistory"
	SectionGradeHistory             = "gradeHistory"
	SectionPricePositionHistory     = "pricePositionHistory"
	SectionSimilarProperties        = "similarProperties"
	SectionSameAgeProperties        = "sameAgeProperties"
	SectionSubmarketRentHistory     = "submarketRentHistory"
	SectionSubmarketGradeHistory    = "submarketGradeHistory"
	SectionSubmarketPositionHistory = "submarketPricePositionHistory"
	SectionInvestmentMetrics        = "investmentMetrics"
	SectionMarketConditions         = "marketConditions"
	SectionRentTrend                = "rentTrend"
)

// Sections lists every section name in prompt order.
func Sections() []string {
	return []string{
		SectionRentHistory,
		SectionGradeHistory,
		SectionPricePositionHistory,
		SectionSimilarProperties,
		SectionSameAgeProperties,
		SectionSubmarketRentHistory,
		SectionSubmarketGradeHistory,
		SectionSubmarketPositionHistory,
		SectionInvestmentMetrics,
		SectionMarketConditions,
		SectionRentTrend,
	}
}

// Unavailable is the template value of a section the fetcher did not gather.
const Unavailable = "not available"

type section struct {
	name    string
	value   any
	records int
}

// Bundle is the context one fetcher gathered for one request.
type Bundle struct {
	Fetcher  string
	sections []section
}

func newBundle(fetcher string) *Bundle {
	return &Bundle{Fetcher: fetcher}
}

func (b *Bundle) add(name string, value any, records int) {
	b.sections = append(b.sections, section{name: name, value: value, records: records})
}

// Value returns the raw value of a section.
func (b *Bundle) Value(name string) (any, bool) {
	if b == nil {
		return nil, false
	}
	for _, s := range b.sections {
		if s.name == name {
			return s.value, true
		}
	}
	return nil, false
}

// DataTypes lists the sections present in the bundle in the order they were
// gathered. It is never nil.
func (b *Bundle) DataTypes() []string {
	out := []string{}
	if b == nil {
		return out
	}
	for _, s := range b.sections {
		out = append(out, s.name)
	}
	return out
}

// RecordsUsed counts the store rows behind the bundle.
func (b *Bundle) RecordsUsed() int {
	if b == nil {
		return 0
	}
	total := 0
	for _, s := range b.sections {
		total += s.records
	}
	return total
}

// TemplateValues serializes every known section to JSON text. Sections the
// fetcher did not gather are reported as Unavailable.
func (b *Bundle) TemplateValues() (map[string]any, error) {
	values := make(map[string]any, len(Sections()))
	for _, name := range Sections() {
		values[name] = Unavailable
	}
	if b == nil {
		return values, nil
	}
	for _, s := range b.sections {
		encoded, err := json.Marshal(s.value)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", s.name, err)
		}
		values[s.name] = string(encoded)
	}
	return values, nil
}
