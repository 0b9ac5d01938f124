// File path: internal/metrics/investment.go
package metrics

// PricePosition summarises a property's rent relative to its submarket.
type PricePosition struct {
	Average    float64 `json:"averagePricePosition"`
	Latest     float64 `json:"latestPricePosition"`
	LatestYear int     `json:"latestPricePositionYear,omitempty"`
	DataPoints int     `json:"dataPoints"`
}

// SummarizePricePosition averages every available ratio and reports the most
// recent one.
func SummarizePricePosition(s Series) PricePosition {
	points := s.Numeric()
	summary := PricePosition{DataPoints: len(points)}
	if len(points) == 0 {
		return summary
	}
	total := 0.0
	for _, point := range points {
		total += point.Value
	}
	last := points[len(points)-1]
	summary.Average = round4(total / float64(len(points)))
	summary.Latest = round4(last.Value)
	summary.LatestYear = last.Year
	return summary
}

// AverageSeries returns the per-year mean of the numeric values across
// series, over r. Years no series observed are Unavailable.
func AverageSeries(r YearRange, series []Series) Series {
	averages := make(map[int]Value, r.Len())
	for _, stat := range yearlyAverages(r, series) {
		averages[stat.Year] = Numeric(stat.Average)
	}
	return NewSeries(r, averages)
}

// InvestmentMetrics compares a property's performance with its submarket.
type InvestmentMetrics struct {
	Growth
	Trajectory      Trajectory    `json:"gradeTrajectory"`
	PricePosition   PricePosition `json:"pricePosition"`
	SubmarketGrowth Growth        `json:"submarketGrowth"`
	PeerCount       int           `json:"peerCount"`
}

// DeriveInvestment combines the subject's rent, grade and price-position
// history with its submarket peers' rent history.
func DeriveInvestment(rent, grade, position Series, peers []Series) InvestmentMetrics {
	r := rent.Range()
	if r.Len() == 0 {
		r = DefaultYearRange()
	}
	return InvestmentMetrics{
		Growth:          RentGrowth(rent),
		Trajectory:      GradeTrajectory(grade),
		PricePosition:   SummarizePricePosition(position),
		SubmarketGrowth: RentGrowth(AverageSeries(r, peers)),
		PeerCount:       len(peers),
	}
}

func round4(x float64) float64 {
	return round2(x*100) / 100
}
