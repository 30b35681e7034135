package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/linguaops/classtrack-api/internal/models"
	appErrors "github.com/linguaops/classtrack-api/pkg/errors"
)

type fakeAttendanceSummaries struct {
	summaries map[string]models.AttendanceSummary
}

func (f *fakeAttendanceSummaries) StudentSummary(_ context.Context, studentID string) models.AttendanceSummary {
	if summary, ok := f.summaries[studentID]; ok {
		return summary
	}
	return models.AttendanceSummary{StudentID: studentID, Rate: 100}
}

type fakeNoteCounts struct {
	counts map[string]int // needs-improvement notes per student
	sbi    map[string]int
}

func (f *fakeNoteCounts) CountByType(_ context.Context, studentID string, noteType models.NoteType) int {
	switch noteType {
	case models.NoteNeedsImprovement:
		return f.counts[studentID]
	case models.NoteSBI:
		return f.sbi[studentID]
	}
	return 0
}

type fakeOverdueCounts struct {
	counts map[string]int
}

func (f *fakeOverdueCounts) CountOverdueForStudent(_ context.Context, studentID string) int {
	return f.counts[studentID]
}

type fakeStudents struct {
	students []models.Student
}

func (f *fakeStudents) GetByID(_ context.Context, id string) *models.Student {
	for i := range f.students {
		if f.students[i].ID == id {
			return &f.students[i]
		}
	}
	return nil
}

func (f *fakeStudents) List(_ context.Context, classID, _ string) []models.Student {
	var out []models.Student
	for _, s := range f.students {
		if classID == "" || s.ClassID == classID {
			out = append(out, s)
		}
	}
	return out
}

type memCacheRepo struct {
	entries map[string][]byte
}

func newMemCacheRepo() *memCacheRepo {
	return &memCacheRepo{entries: map[string][]byte{}}
}

func (r *memCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	payload, ok := r.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (r *memCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	r.entries[key] = payload
	return nil
}

func (r *memCacheRepo) DeleteByPattern(_ context.Context, pattern string) error {
	prefix, wildcard := strings.CutSuffix(pattern, "*")
	for key := range r.entries {
		if key == pattern || (wildcard && strings.HasPrefix(key, prefix)) {
			delete(r.entries, key)
		}
	}
	return nil
}

type fakeRiskConfig struct {
	cfg models.RiskConfig
}

func (f *fakeRiskConfig) Get(context.Context) models.RiskConfig {
	return f.cfg
}

func newRiskFixture(students ...models.Student) (*RiskService, *fakeAttendanceSummaries, *fakeNoteCounts, *fakeOverdueCounts) {
	attendance := &fakeAttendanceSummaries{summaries: map[string]models.AttendanceSummary{}}
	notes := &fakeNoteCounts{counts: map[string]int{}, sbi: map[string]int{}}
	overdue := &fakeOverdueCounts{counts: map[string]int{}}
	svc := NewRiskService(
		attendance,
		notes,
		overdue,
		&fakeStudents{students: students},
		&fakeRiskConfig{cfg: models.DefaultRiskConfig()},
		nil, // caching off
		0,
		zap.NewNop(),
	)
	return svc, attendance, notes, overdue
}

func TestAssessStudentUnknownStudent(t *testing.T) {
	svc, _, _, _ := newRiskFixture()
	_, err := svc.AssessStudent(context.Background(), "ghost")
	assert.Error(t, err)
}

func TestAssessStudentCleanRecordIsGreen(t *testing.T) {
	svc, _, _, _ := newRiskFixture(models.Student{ID: "stu1", ClassID: "c1"})

	assessment, err := svc.AssessStudent(context.Background(), "stu1")
	require.NoError(t, err)
	assert.Equal(t, 0, assessment.Score)
	assert.Equal(t, models.RiskGreen, assessment.Level)
	assert.Empty(t, assessment.Factors)
}

func TestAssessStudentIgnoresSBINotes(t *testing.T) {
	svc, _, notes, _ := newRiskFixture(models.Student{ID: "stu1", ClassID: "c1"})
	notes.sbi["stu1"] = 2

	assessment, err := svc.AssessStudent(context.Background(), "stu1")
	require.NoError(t, err)
	assert.Equal(t, 0, assessment.Score)
	assert.Equal(t, models.RiskGreen, assessment.Level)
	assert.Empty(t, assessment.Factors)
}

func TestAssessStudentCombinesFactors(t *testing.T) {
	svc, attendance, notes, overdue := newRiskFixture(models.Student{ID: "stu1", ClassID: "c1"})
	attendance.summaries["stu1"] = models.AttendanceSummary{StudentID: "stu1", Rate: 60}
	notes.counts["stu1"] = 6
	overdue.counts["stu1"] = 3

	assessment, err := svc.AssessStudent(context.Background(), "stu1")
	require.NoError(t, err)
	assert.Equal(t, 100, assessment.Score)
	assert.Equal(t, models.RiskRed, assessment.Level)
	assert.Len(t, assessment.Factors, 3)
}

func TestClassOverviewCountsLevels(t *testing.T) {
	svc, attendance, notes, _ := newRiskFixture(
		models.Student{ID: "stu1", FullName: "Ana", ClassID: "c1"},
		models.Student{ID: "stu2", FullName: "Ben", ClassID: "c1"},
		models.Student{ID: "stu3", FullName: "Caro", ClassID: "other"},
	)
	attendance.summaries["stu1"] = models.AttendanceSummary{Rate: 60}
	notes.counts["stu1"] = 3 // 40 + 30 points, red
	attendance.summaries["stu2"] = models.AttendanceSummary{Rate: 69} // 40 points, yellow

	overview, err := svc.ClassOverview(context.Background(), "c1")
	require.NoError(t, err)
	assert.Len(t, overview.Students, 2)
	assert.Equal(t, 1, overview.RedCount)
	assert.Equal(t, 1, overview.YellowCount)
	assert.Equal(t, 0, overview.GreenCount)
}

func TestClassOverviewRecomputedAfterInvalidate(t *testing.T) {
	attendance := &fakeAttendanceSummaries{summaries: map[string]models.AttendanceSummary{}}
	notes := &fakeNoteCounts{counts: map[string]int{}, sbi: map[string]int{}}
	overdue := &fakeOverdueCounts{counts: map[string]int{}}
	cache := NewCacheService(newMemCacheRepo(), nil, time.Minute, zap.NewNop(), true)
	svc := NewRiskService(
		attendance,
		notes,
		overdue,
		&fakeStudents{students: []models.Student{{ID: "stu1", FullName: "Ana", ClassID: "c1"}}},
		&fakeRiskConfig{cfg: models.DefaultRiskConfig()},
		cache,
		time.Minute,
		zap.NewNop(),
	)

	first, err := svc.ClassOverview(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, models.RiskGreen, first.Students[0].Assessment.Level)

	// Attendance collapses. Until the cache entry is dropped the overview is
	// served as cached, then a recompute picks up the new rate.
	attendance.summaries["stu1"] = models.AttendanceSummary{StudentID: "stu1", Rate: 50}

	cached, err := svc.ClassOverview(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, models.RiskGreen, cached.Students[0].Assessment.Level)

	svc.Invalidate(context.Background(), "c1")

	fresh, err := svc.ClassOverview(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, models.RiskYellow, fresh.Students[0].Assessment.Level)
	assert.Equal(t, 1, fresh.YellowCount)
}

func TestClassOverviewEmptyClass(t *testing.T) {
	svc, _, _, _ := newRiskFixture(models.Student{ID: "stu1", ClassID: "c1"})
	_, err := svc.ClassOverview(context.Background(), "empty")
	assert.Error(t, err)
}
