// File path: internal/metrics/grade.go
package metrics

import (
	"strings"
)

// Trajectory labels.
const (
	SignificantImprovement = "Significant Improvement"
	SlightImprovement      = "Slight Improvement"
	Unchanged              = "Unchanged"
	SlightDecline          = "Slight Decline"
	SignificantDecline     = "Significant Decline"
)

const (
	gradeModifierStep    = 0.3
	significantThreshold = 0.5
)

var letterScores = map[byte]float64{
	'A': 4,
	'B': 3,
	'C': 2,
	'D': 1,
	'F': 0,
}

// GradeScore maps a letter grade to the 4.0 scale. A trailing + or - moves
// the score by 0.3.
func GradeScore(grade string) (float64, bool) {
	normalized := NormalizeGrade(grade)
	if normalized == "" {
		return 0, false
	}
	score, ok := letterScores[normalized[0]]
	if !ok {
		return 0, false
	}
	switch normalized[1:] {
	case "":
	case "+":
		score += gradeModifierStep
	case "-":
		score -= gradeModifierStep
	default:
		return 0, false
	}
	return score, true
}

// NormalizeGrade uppercases and trims a grade, folding the unicode minus sign
// into '-'. It returns "" for anything that is not a letter grade.
func NormalizeGrade(grade string) string {
	trimmed := strings.ToUpper(strings.TrimSpace(grade))
	trimmed = strings.ReplaceAll(trimmed, "−", "-")
	trimmed = strings.ReplaceAll(trimmed, " ", "")
	if trimmed == "" || len(trimmed) > 2 {
		return ""
	}
	if _, ok := letterScores[trimmed[0]]; !ok {
		return ""
	}
	if len(trimmed) == 2 && trimmed[1] != '+' && trimmed[1] != '-' {
		return ""
	}
	return trimmed
}

// Trajectory compares the first and last graded years of a series.
type Trajectory struct {
	Label      string  `json:"label"`
	FirstGrade string  `json:"firstGrade,omitempty"`
	LastGrade  string  `json:"latestGrade,omitempty"`
	FirstYear  int     `json:"firstYear,omitempty"`
	LastYear   int     `json:"latestYear,omitempty"`
	Delta      float64 `json:"delta"`
}

// GradeTrajectory classifies the movement between the first and last graded
// years. Fewer than two graded years is Unchanged.
func GradeTrajectory(s Series) Trajectory {
	graded := gradedYears(s)
	if len(graded) == 0 {
		return Trajectory{Label: Unchanged}
	}
	first := graded[0]
	last := graded[len(graded)-1]
	trajectory := Trajectory{
		Label:      Unchanged,
		FirstGrade: first.grade,
		LastGrade:  last.grade,
		FirstYear:  first.year,
		LastYear:   last.year,
	}
	if len(graded) < 2 {
		return trajectory
	}
	trajectory.Delta = round2(last.score - first.score)
	trajectory.Label = classifyDelta(trajectory.Delta)
	return trajectory
}

func classifyDelta(delta float64) string {
	switch {
	case delta > significantThreshold:
		return SignificantImprovement
	case delta > 0:
		return SlightImprovement
	case delta < -significantThreshold:
		return SignificantDecline
	case delta < 0:
		return SlightDecline
	default:
		return Unchanged
	}
}

type gradedYear struct {
	year  int
	grade string
	score float64
}

func gradedYears(s Series) []gradedYear {
	var out []gradedYear
	for _, label := range s.Labels() {
		score, ok := GradeScore(label.Text)
		if !ok {
			continue
		}
		out = append(out, gradedYear{year: label.Year, grade: NormalizeGrade(label.Text), score: score})
	}
	return out
}
