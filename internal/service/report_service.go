package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/linguaops/classtrack-api/internal/models"
	appErrors "github.com/linguaops/classtrack-api/pkg/errors"
)

type reportRepository interface {
	Upsert(ctx context.Context, report models.SessionReport) (models.SessionReport, error)
	GetBySession(ctx context.Context, sessionID string) *models.SessionReport
}

type attendanceLister interface {
	ListBySession(ctx context.Context, sessionID string) []models.AttendanceRecord
}

type noteLister interface {
	List(ctx context.Context, filter models.NoteFilter) []models.StudentNote
}

type studentAssessor interface {
	AssessStudent(ctx context.Context, studentID string) (*models.RiskAssessment, error)
}

// ReportService builds per-session aggregates. Regenerating a session's
// report replaces the previous one.
type ReportService struct {
	repo       reportRepository
	attendance attendanceLister
	notes      noteLister
	sessions   sessionReader
	students   studentReader
	assessor   studentAssessor
	config     riskConfigReader
	logger     *zap.Logger
}

// NewReportService constructs a ReportService.
func NewReportService(repo reportRepository, attendance attendanceLister, notes noteLister, sessions sessionReader, students studentReader, assessor studentAssessor, config riskConfigReader, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		repo:       repo,
		attendance: attendance,
		notes:      notes,
		sessions:   sessions,
		students:   students,
		assessor:   assessor,
		config:     config,
		logger:     logger,
	}
}

// Generate aggregates a session's records into its report and stores it.
func (s *ReportService) Generate(ctx context.Context, generatedBy, sessionID string) (*models.SessionReport, error) {
	session := s.sessions.GetByID(ctx, sessionID)
	if session == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
	}

	report := models.SessionReport{
		SessionID:   sessionID,
		ClassID:     session.ClassID,
		Date:        session.Date,
		GeneratedBy: generatedBy,
		GeneratedAt: time.Now().UTC(),
	}

	for _, rec := range s.attendance.ListBySession(ctx, sessionID) {
		switch rec.Status {
		case models.AttendancePresent:
			report.PresentCount++
		case models.AttendanceAbsent:
			report.AbsentCount++
		case models.AttendanceLate:
			report.LateCount++
		}
	}

	for _, note := range s.notes.List(ctx, models.NoteFilter{SessionID: sessionID}) {
		switch note.NoteType {
		case models.NotePositive:
			report.PositiveNotes++
		case models.NoteNeedsImprovement:
			report.ImprovementNotes++
		case models.NoteSBI:
			report.SBINotes++
		}
	}

	if s.config.Get(ctx).AutoFlagging {
		for _, student := range s.students.List(ctx, session.ClassID, "") {
			assessment, err := s.assessor.AssessStudent(ctx, student.ID)
			if err != nil {
				s.logger.Warn("skipping student in report flagging", zap.String("student_id", student.ID), zap.Error(err))
				continue
			}
			if assessment.Level == models.RiskGreen {
				continue
			}
			report.Flagged = append(report.Flagged, models.FlaggedStudent{
				StudentID:   student.ID,
				StudentName: student.FullName,
				Level:       assessment.Level,
				Score:       assessment.Score,
			})
		}
	}

	saved, err := s.repo.Upsert(ctx, report)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorageWrite.Code, appErrors.ErrStorageWrite.Status, "failed to persist report")
	}
	return &saved, nil
}

// GetBySession returns the stored report for a session.
func (s *ReportService) GetBySession(ctx context.Context, sessionID string) (*models.SessionReport, error) {
	report := s.repo.GetBySession(ctx, sessionID)
	if report == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "report not found")
	}
	return report, nil
}
