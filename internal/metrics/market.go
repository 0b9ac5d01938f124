// File path: internal/metrics/market.go
package metrics

import "sort"

// YearlyAverage is the cross-property mean rent for one year.
type YearlyAverage struct {
	Year       int     `json:"year"`
	Average    float64 `json:"averageRent"`
	Properties int     `json:"propertyCount"`
}

// YearOverYear is the growth between two consecutive data-bearing years.
type YearOverYear struct {
	FromYear int     `json:"fromYear"`
	ToYear   int     `json:"toYear"`
	Growth   float64 `json:"growth"`
}

// GradeShare is the percentage of graded properties holding each grade in a
// year.
type GradeShare struct {
	Year   int                `json:"year"`
	Shares map[string]float64 `json:"shares"`
	Graded int                `json:"gradedProperties"`
}

// MarketConditions aggregates a submarket's rent and grade history.
type MarketConditions struct {
	AverageRents      []YearlyAverage `json:"averageRents"`
	RentGrowth        []YearOverYear  `json:"rentGrowth"`
	GradeDistribution []GradeShare    `json:"gradeDistribution"`
	MarketExpansion   float64         `json:"marketExpansion"`
	DominantGrade     *string         `json:"dominantGrade"`
	SubmarketGrowth   Growth          `json:"submarketGrowth"`
	Properties        int             `json:"propertyCount"`
}

// AggregateMarket derives submarket-wide conditions from per-property rent and
// grade series. Empty input produces zeroed conditions with a nil dominant
// grade.
func AggregateMarket(r YearRange, rents, grades []Series) MarketConditions {
	averages := yearlyAverages(r, rents)
	conditions := MarketConditions{
		AverageRents:      averages,
		RentGrowth:        yearOverYear(averages),
		GradeDistribution: gradeDistribution(r, grades),
		Properties:        len(rents),
	}
	if conditions.AverageRents == nil {
		conditions.AverageRents = []YearlyAverage{}
	}
	if len(averages) >= 2 {
		first := averages[0]
		last := averages[len(averages)-1]
		conditions.MarketExpansion = percentChange(float64(first.Properties), float64(last.Properties))
	}
	conditions.DominantGrade = dominantGrade(conditions.GradeDistribution)
	conditions.SubmarketGrowth = RentGrowth(AverageSeries(r, rents))
	return conditions
}

func yearlyAverages(r YearRange, series []Series) []YearlyAverage {
	var out []YearlyAverage
	for _, year := range r.Years() {
		total := 0.0
		count := 0
		for _, s := range series {
			if number, ok := s.At(year).Number(); ok {
				total += number
				count++
			}
		}
		if count == 0 {
			continue
		}
		out = append(out, YearlyAverage{Year: year, Average: round2(total / float64(count)), Properties: count})
	}
	return out
}

func yearOverYear(averages []YearlyAverage) []YearOverYear {
	out := []YearOverYear{}
	for i := 1; i < len(averages); i++ {
		prev := averages[i-1]
		curr := averages[i]
		out = append(out, YearOverYear{
			FromYear: prev.Year,
			ToYear:   curr.Year,
			Growth:   percentChange(prev.Average, curr.Average),
		})
	}
	return out
}

func gradeDistribution(r YearRange, grades []Series) []GradeShare {
	out := []GradeShare{}
	for _, year := range r.Years() {
		counts := make(map[string]int)
		total := 0
		for _, s := range grades {
			label, ok := s.At(year).Label()
			if !ok {
				continue
			}
			grade := NormalizeGrade(label)
			if grade == "" {
				continue
			}
			counts[grade]++
			total++
		}
		if total == 0 {
			continue
		}
		shares := make(map[string]float64, len(counts))
		for grade, count := range counts {
			shares[grade] = round2(float64(count) / float64(total) * 100)
		}
		out = append(out, GradeShare{Year: year, Shares: shares, Graded: total})
	}
	return out
}

// dominantGrade picks the highest-share grade of the latest graded year.
// Ties go to the better grade.
func dominantGrade(distribution []GradeShare) *string {
	if len(distribution) == 0 {
		return nil
	}
	latest := distribution[len(distribution)-1]
	grades := make([]string, 0, len(latest.Shares))
	for grade := range latest.Shares {
		grades = append(grades, grade)
	}
	sort.Slice(grades, func(i, j int) bool {
		si, sj := latest.Shares[grades[i]], latest.Shares[grades[j]]
		if si != sj {
			return si > sj
		}
		scoreI, _ := GradeScore(grades[i])
		scoreJ, _ := GradeScore(grades[j])
		return scoreI > scoreJ
	})
	if len(grades) == 0 {
		return nil
	}
	dominant := grades[0]
	return &dominant
}
