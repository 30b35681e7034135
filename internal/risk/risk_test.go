package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/linguaops/classtrack-api/internal/models"
)

func TestEvaluateBoundaryVectors(t *testing.T) {
	cfg := models.DefaultRiskConfig()

	tests := []struct {
		name      string
		in        Inputs
		wantScore int
		wantLevel models.RiskLevel
	}{
		{
			name:      "poor attendance only is yellow",
			in:        Inputs{AttendanceRate: 69},
			wantScore: 40,
			wantLevel: models.RiskYellow,
		},
		{
			name:      "all factors worst tier is red at cap",
			in:        Inputs{AttendanceRate: 60, NegativeNoteCount: 6, OverdueRequestCount: 3},
			wantScore: 100,
			wantLevel: models.RiskRed,
		},
		{
			name:      "healthy student is green with no factors",
			in:        Inputs{AttendanceRate: 95, NegativeNoteCount: 1},
			wantScore: 0,
			wantLevel: models.RiskGreen,
		},
		{
			name:      "mid tiers sum to red",
			in:        Inputs{AttendanceRate: 80, NegativeNoteCount: 2, OverdueRequestCount: 1},
			wantScore: 50,
			wantLevel: models.RiskRed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.in, cfg)
			assert.Equal(t, tt.wantScore, got.Score)
			assert.Equal(t, tt.wantLevel, got.Level)
		})
	}
}

func TestEvaluateFactorsListOnlyTriggeredReasons(t *testing.T) {
	cfg := models.DefaultRiskConfig()

	healthy := Evaluate(Inputs{AttendanceRate: 100}, cfg)
	assert.Empty(t, healthy.Factors)

	flagged := Evaluate(Inputs{AttendanceRate: 60, OverdueRequestCount: 3}, cfg)
	assert.Len(t, flagged.Factors, 2)
}

func TestEvaluateMonotonicPerFactor(t *testing.T) {
	cfg := models.DefaultRiskConfig()

	prev := -1
	for rate := 100; rate >= 0; rate -= 5 {
		got := Evaluate(Inputs{AttendanceRate: float64(rate), NegativeNoteCount: 2, OverdueRequestCount: 1}, cfg)
		assert.GreaterOrEqual(t, got.Score, prev, "rate %d", rate)
		prev = got.Score
	}

	prev = -1
	for notes := 0; notes <= 10; notes++ {
		got := Evaluate(Inputs{AttendanceRate: 80, NegativeNoteCount: notes}, cfg)
		assert.GreaterOrEqual(t, got.Score, prev, "notes %d", notes)
		prev = got.Score
	}

	prev = -1
	for overdue := 0; overdue <= 10; overdue++ {
		got := Evaluate(Inputs{AttendanceRate: 80, OverdueRequestCount: overdue}, cfg)
		assert.GreaterOrEqual(t, got.Score, prev, "overdue %d", overdue)
		prev = got.Score
	}
}

func TestEvaluateStreakIsTransparencyOnly(t *testing.T) {
	cfg := models.DefaultRiskConfig()

	base := Evaluate(Inputs{AttendanceRate: 95}, cfg)
	streaked := Evaluate(Inputs{AttendanceRate: 95, ConsecutiveAbsents: 4}, cfg)

	assert.Equal(t, base.Score, streaked.Score)
	assert.Equal(t, base.Level, streaked.Level)
	assert.NotEmpty(t, streaked.Factors)
}

func TestAttendanceRateZeroHistoryIsNeutral(t *testing.T) {
	assert.Equal(t, float64(100), AttendanceRate(0, 0, 0))

	got := Evaluate(Inputs{AttendanceRate: AttendanceRate(0, 0, 0)}, models.DefaultRiskConfig())
	assert.Equal(t, 0, got.Score)
	assert.Equal(t, models.RiskGreen, got.Level)
}

func TestAttendanceRateCountsLateAsAttended(t *testing.T) {
	assert.InDelta(t, 75.0, AttendanceRate(5, 1, 8), 0.001)
}

func TestEvaluateSLA(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	window := 24 * time.Hour

	assert.Equal(t, models.SLAOnTrack, EvaluateSLA(now, now.Add(12*time.Hour), window))
	assert.Equal(t, models.SLAAtRisk, EvaluateSLA(now, now.Add(5*time.Hour), window))
	assert.Equal(t, models.SLAAtRisk, EvaluateSLA(now, now.Add(6*time.Hour), window))
	assert.Equal(t, models.SLAOverdue, EvaluateSLA(now, now, window))
	assert.Equal(t, models.SLAOverdue, EvaluateSLA(now, now.Add(-time.Hour), window))
}
