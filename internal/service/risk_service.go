package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/linguaops/classtrack-api/internal/models"
	"github.com/linguaops/classtrack-api/internal/risk"
	appErrors "github.com/linguaops/classtrack-api/pkg/errors"
)

type attendanceSummarizer interface {
	StudentSummary(ctx context.Context, studentID string) models.AttendanceSummary
}

type noteCounter interface {
	CountByType(ctx context.Context, studentID string, noteType models.NoteType) int
}

type overdueCounter interface {
	CountOverdueForStudent(ctx context.Context, studentID string) int
}

// riskInvalidator is satisfied by RiskService. Write-path services call it so
// cached overviews never outlive the records they were computed from.
type riskInvalidator interface {
	Invalidate(ctx context.Context, classID string)
}

type studentReader interface {
	GetByID(ctx context.Context, id string) *models.Student
	List(ctx context.Context, classID, search string) []models.Student
}

// StudentRisk pairs an assessment with the student it describes.
type StudentRisk struct {
	StudentID   string                `json:"student_id"`
	StudentName string                `json:"student_name"`
	Assessment  models.RiskAssessment `json:"assessment"`
}

// ClassRiskOverview is the dashboard aggregate for one class.
type ClassRiskOverview struct {
	ClassID     string        `json:"class_id"`
	Students    []StudentRisk `json:"students"`
	RedCount    int           `json:"red_count"`
	YellowCount int           `json:"yellow_count"`
	GreenCount  int           `json:"green_count"`
	GeneratedAt time.Time     `json:"generated_at"`
}

// RiskService derives intervention assessments from current records.
type RiskService struct {
	attendance attendanceSummarizer
	notes      noteCounter
	requests   overdueCounter
	students   studentReader
	config     riskConfigReader
	cache      *CacheService
	cacheTTL   time.Duration
	logger     *zap.Logger
}

// NewRiskService constructs a RiskService.
func NewRiskService(attendance attendanceSummarizer, notes noteCounter, requests overdueCounter, students studentReader, config riskConfigReader, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *RiskService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RiskService{
		attendance: attendance,
		notes:      notes,
		requests:   requests,
		students:   students,
		config:     config,
		cache:      cache,
		cacheTTL:   cacheTTL,
		logger:     logger,
	}
}

// AssessStudent computes a fresh assessment from the student's records.
// Nothing is persisted; the same records always yield the same result.
func (s *RiskService) AssessStudent(ctx context.Context, studentID string) (*models.RiskAssessment, error) {
	if s.students.GetByID(ctx, studentID) == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	assessment := s.assess(ctx, studentID, s.config.Get(ctx))
	return &assessment, nil
}

// ClassOverview assesses every student in the class. Results are cached per
// class and recomputed after the TTL or a settings change.
func (s *RiskService) ClassOverview(ctx context.Context, classID string) (*ClassRiskOverview, error) {
	cacheKey := fmt.Sprintf("risk:class:%s", classID)

	var cached ClassRiskOverview
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, nil
	}

	students := s.students.List(ctx, classID, "")
	if len(students) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class has no students")
	}

	cfg := s.config.Get(ctx)
	overview := ClassRiskOverview{
		ClassID:     classID,
		Students:    make([]StudentRisk, 0, len(students)),
		GeneratedAt: time.Now().UTC(),
	}
	for _, student := range students {
		assessment := s.assess(ctx, student.ID, cfg)
		switch assessment.Level {
		case models.RiskRed:
			overview.RedCount++
		case models.RiskYellow:
			overview.YellowCount++
		default:
			overview.GreenCount++
		}
		overview.Students = append(overview.Students, StudentRisk{
			StudentID:   student.ID,
			StudentName: student.FullName,
			Assessment:  assessment,
		})
	}

	if err := s.cache.Set(ctx, cacheKey, overview, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache class risk overview", zap.String("class_id", classID), zap.Error(err))
	}
	return &overview, nil
}

// Invalidate drops cached overviews after a record mutation.
func (s *RiskService) Invalidate(ctx context.Context, classID string) {
	pattern := "risk:*"
	if classID != "" {
		pattern = fmt.Sprintf("risk:class:%s", classID)
	}
	if err := s.cache.Invalidate(ctx, pattern); err != nil {
		s.logger.Warn("failed to invalidate risk cache", zap.String("pattern", pattern), zap.Error(err))
	}
}

func (s *RiskService) assess(ctx context.Context, studentID string, cfg models.RiskConfig) models.RiskAssessment {
	summary := s.attendance.StudentSummary(ctx, studentID)
	// Only needs-improvement notes count against the student; SBI entries are
	// structured feedback, not a negative signal.
	negativeNotes := s.notes.CountByType(ctx, studentID, models.NoteNeedsImprovement)

	assessment := risk.Evaluate(risk.Inputs{
		AttendanceRate:      summary.Rate,
		NegativeNoteCount:   negativeNotes,
		OverdueRequestCount: s.requests.CountOverdueForStudent(ctx, studentID),
		ConsecutiveAbsents:  summary.ConsecutiveAbsents,
	}, cfg)
	assessment.StudentID = studentID
	return assessment
}
