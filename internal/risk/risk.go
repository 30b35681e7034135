// Package risk holds the pure evaluation rules: point-based risk scoring
// with configurable trigger thresholds, and SLA timer classification. The
// functions here perform no I/O and keep no state, so they are testable with
// literal inputs.
package risk

import (
	"fmt"
	"time"

	"github.com/linguaops/classtrack-api/internal/models"
)

// Point weights are fixed; only the trigger thresholds are administrator
// configurable through RiskConfig.
const (
	attendanceRedPoints    = 40
	attendanceYellowPoints = 20
	notesRedPoints         = 30
	notesYellowPoints      = 15
	requestsRedPoints      = 30
	requestsYellowPoints   = 15

	maxScore = 100

	redLevelScore    = 50
	yellowLevelScore = 25
)

// Inputs are the independent signals feeding a student assessment.
type Inputs struct {
	AttendanceRate      float64
	NegativeNoteCount   int
	OverdueRequestCount int
	ConsecutiveAbsents  int
}

// AttendanceRate converts attendance counts into a 0-100 rate. A student
// with no history yet is neutral, not failing: zero records yield 100.
func AttendanceRate(present, late, total int) float64 {
	if total == 0 {
		return 100
	}
	return float64(present+late) / float64(total) * 100
}

// Evaluate scores the inputs against the configured thresholds. Each factor
// is judged independently and the points are summed; worsening any input
// never lowers the score. Factors list only the triggered reasons.
func Evaluate(in Inputs, cfg models.RiskConfig) models.RiskAssessment {
	score := 0
	factors := []string{}

	switch {
	case in.AttendanceRate < cfg.AttendanceRedBelow:
		score += attendanceRedPoints
		factors = append(factors, fmt.Sprintf("attendance rate %.0f%% below %.0f%%", in.AttendanceRate, cfg.AttendanceRedBelow))
	case in.AttendanceRate < cfg.AttendanceYellowBelow:
		score += attendanceYellowPoints
		factors = append(factors, fmt.Sprintf("attendance rate %.0f%% below %.0f%%", in.AttendanceRate, cfg.AttendanceYellowBelow))
	}

	switch {
	case in.NegativeNoteCount >= cfg.NegativeNotesRed:
		score += notesRedPoints
		factors = append(factors, fmt.Sprintf("%d needs-improvement notes", in.NegativeNoteCount))
	case in.NegativeNoteCount >= cfg.NegativeNotesYellow:
		score += notesYellowPoints
		factors = append(factors, fmt.Sprintf("%d needs-improvement notes", in.NegativeNoteCount))
	}

	switch {
	case in.OverdueRequestCount >= cfg.OverdueRequestsRed:
		score += requestsRedPoints
		factors = append(factors, fmt.Sprintf("%d overdue requests", in.OverdueRequestCount))
	case in.OverdueRequestCount >= cfg.OverdueRequestsYellow:
		score += requestsYellowPoints
		factors = append(factors, fmt.Sprintf("%d overdue requests", in.OverdueRequestCount))
	}

	if score > maxScore {
		score = maxScore
	}

	// The absence streak is surfaced for transparency only; it does not
	// participate in the score.
	if cfg.ConsecutiveAbsentsRed > 0 && in.ConsecutiveAbsents >= cfg.ConsecutiveAbsentsRed {
		factors = append(factors, fmt.Sprintf("%d consecutive absences", in.ConsecutiveAbsents))
	} else if cfg.ConsecutiveAbsentsYellow > 0 && in.ConsecutiveAbsents >= cfg.ConsecutiveAbsentsYellow {
		factors = append(factors, fmt.Sprintf("%d consecutive absences", in.ConsecutiveAbsents))
	}

	return models.RiskAssessment{
		Score:   score,
		Level:   Level(score),
		Factors: factors,
	}
}

// Level maps a total score to the three-tier classification.
func Level(score int) models.RiskLevel {
	switch {
	case score >= redLevelScore:
		return models.RiskRed
	case score >= yellowLevelScore:
		return models.RiskYellow
	default:
		return models.RiskGreen
	}
}

// EvaluateSLA classifies a deadline: overdue once passed, at risk inside the
// final quarter of the window, on track otherwise.
func EvaluateSLA(now, dueAt time.Time, window time.Duration) models.SLAStatus {
	if !now.Before(dueAt) {
		return models.SLAOverdue
	}
	if window > 0 && dueAt.Sub(now) <= window/4 {
		return models.SLAAtRisk
	}
	return models.SLAOnTrack
}
