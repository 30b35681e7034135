package service

import (
	"context"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/linguaops/classtrack-api/internal/models"
	"github.com/linguaops/classtrack-api/internal/risk"
	appErrors "github.com/linguaops/classtrack-api/pkg/errors"
)

type attendanceRepository interface {
	Upsert(ctx context.Context, incoming ...models.AttendanceRecord) ([]models.AttendanceRecord, error)
	ListBySession(ctx context.Context, sessionID string) []models.AttendanceRecord
	ListByStudent(ctx context.Context, studentID string) []models.AttendanceRecord
}

type sessionReader interface {
	GetByID(ctx context.Context, id string) *models.Session
}

// MarkAttendanceRequest records one student's status for a session.
type MarkAttendanceRequest struct {
	SessionID string                  `json:"session_id" validate:"required"`
	StudentID string                  `json:"student_id" validate:"required"`
	Status    models.AttendanceStatus `json:"status" validate:"required,oneof=PRESENT ABSENT LATE"`
	Reason    *string                 `json:"reason,omitempty"`
}

// BulkMarkAttendanceRequest records a whole session roster in one call.
type BulkMarkAttendanceRequest struct {
	SessionID string                `json:"session_id" validate:"required"`
	Entries   []BulkAttendanceEntry `json:"entries" validate:"required,min=1,dive"`
}

// BulkAttendanceEntry is one roster row in a bulk submission.
type BulkAttendanceEntry struct {
	StudentID string                  `json:"student_id" validate:"required"`
	Status    models.AttendanceStatus `json:"status" validate:"required,oneof=PRESENT ABSENT LATE"`
	Reason    *string                 `json:"reason,omitempty"`
}

// AttendanceService manages per-session attendance and derived summaries.
type AttendanceService struct {
	repo      attendanceRepository
	sessions  sessionReader
	risk      riskInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs an AttendanceService.
func NewAttendanceService(repo attendanceRepository, sessions sessionReader, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AttendanceService{repo: repo, sessions: sessions, validator: validate, logger: logger}
}

// SetRiskInvalidator hooks the risk cache into the write path. Set after
// construction because the risk service reads back through this one.
func (s *AttendanceService) SetRiskInvalidator(risk riskInvalidator) {
	s.risk = risk
}

// Mark records or replaces one student's status for a session. Re-marking the
// same (session, student) pair overwrites the earlier record.
func (s *AttendanceService) Mark(ctx context.Context, recordedBy string, req MarkAttendanceRequest) (*models.AttendanceRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	session := s.sessions.GetByID(ctx, req.SessionID)
	if session == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
	}

	saved, err := s.repo.Upsert(ctx, models.AttendanceRecord{
		SessionID:  req.SessionID,
		StudentID:  req.StudentID,
		Status:     req.Status,
		Reason:     req.Reason,
		RecordedBy: recordedBy,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorageWrite.Code, appErrors.ErrStorageWrite.Status, "failed to persist attendance")
	}
	if s.risk != nil {
		s.risk.Invalidate(ctx, session.ClassID)
	}
	return &saved[0], nil
}

// BulkMark records the full roster for a session at once.
func (s *AttendanceService) BulkMark(ctx context.Context, recordedBy string, req BulkMarkAttendanceRequest) ([]models.AttendanceRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk attendance payload")
	}
	session := s.sessions.GetByID(ctx, req.SessionID)
	if session == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
	}

	records := make([]models.AttendanceRecord, 0, len(req.Entries))
	for _, entry := range req.Entries {
		records = append(records, models.AttendanceRecord{
			SessionID:  req.SessionID,
			StudentID:  entry.StudentID,
			Status:     entry.Status,
			Reason:     entry.Reason,
			RecordedBy: recordedBy,
		})
	}

	saved, err := s.repo.Upsert(ctx, records...)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorageWrite.Code, appErrors.ErrStorageWrite.Status, "failed to persist attendance")
	}
	if s.risk != nil {
		s.risk.Invalidate(ctx, session.ClassID)
	}
	return saved, nil
}

// ListBySession returns all attendance records for a session.
func (s *AttendanceService) ListBySession(ctx context.Context, sessionID string) []models.AttendanceRecord {
	return s.repo.ListBySession(ctx, sessionID)
}

// StudentSummary aggregates a student's full attendance history, including
// the current consecutive-absence streak ordered by session date.
func (s *AttendanceService) StudentSummary(ctx context.Context, studentID string) models.AttendanceSummary {
	records := s.repo.ListByStudent(ctx, studentID)
	summary := models.AttendanceSummary{StudentID: studentID}

	type dated struct {
		record models.AttendanceRecord
		date   time.Time
	}
	history := make([]dated, 0, len(records))
	for _, rec := range records {
		switch rec.Status {
		case models.AttendancePresent:
			summary.Present++
		case models.AttendanceAbsent:
			summary.Absent++
		case models.AttendanceLate:
			summary.Late++
		}
		summary.Total++

		date := rec.CreatedAt
		if sess := s.sessions.GetByID(ctx, rec.SessionID); sess != nil {
			date = sess.Date
		}
		history = append(history, dated{record: rec, date: date})
	}

	summary.Rate = risk.AttendanceRate(summary.Present, summary.Late, summary.Total)

	// Streak counts absences from the most recent session backwards; a late
	// arrival still breaks it.
	sort.Slice(history, func(i, j int) bool { return history[i].date.After(history[j].date) })
	for _, h := range history {
		if h.record.Status != models.AttendanceAbsent {
			break
		}
		summary.ConsecutiveAbsents++
	}
	return summary
}
