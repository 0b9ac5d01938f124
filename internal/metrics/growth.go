// File path: internal/metrics/growth.go
package metrics

import "math"

// shortTermWindow is the number of trailing data-bearing years used for
// short-term growth.
const shortTermWindow = 3

// Growth summarises rent growth over a series. All rates are percentages.
type Growth struct {
	Annualized float64 `json:"compoundAnnualGrowth"`
	ShortTerm  float64 `json:"shortTermGrowth"`
	LongTerm   float64 `json:"longTermGrowth"`
	FirstYear  int     `json:"firstYear,omitempty"`
	LastYear   int     `json:"lastYear,omitempty"`
	DataPoints int     `json:"dataPoints"`
}

// RentGrowth computes compound, short-term and long-term growth between the
// numeric years of s. Fewer than two data points yields zero growth.
func RentGrowth(s Series) Growth {
	points := s.Numeric()
	growth := Growth{DataPoints: len(points)}
	if len(points) < 2 {
		return growth
	}
	first := points[0]
	last := points[len(points)-1]
	growth.FirstYear = first.Year
	growth.LastYear = last.Year

	growth.LongTerm = percentChange(first.Value, last.Value)

	span := last.Year - first.Year
	if span > 0 && first.Value > 0 {
		ratio := last.Value / first.Value
		if ratio > 0 {
			growth.Annualized = round2((math.Pow(ratio, 1/float64(span)) - 1) * 100)
		}
	}

	start := len(points) - shortTermWindow
	if start < 0 {
		start = 0
	}
	growth.ShortTerm = percentChange(points[start].Value, last.Value)
	return growth
}

// percentChange returns (to-from)/from as a rounded percentage, 0 when from
// is zero.
func percentChange(from, to float64) float64 {
	if from == 0 {
		return 0
	}
	return round2((to - from) / from * 100)
}

func round2(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return math.Round(x*100) / 100
}
