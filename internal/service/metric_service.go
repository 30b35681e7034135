package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/linguaops/classtrack-api/internal/models"
	appErrors "github.com/linguaops/classtrack-api/pkg/errors"
)

type metricRepository interface {
	Upsert(ctx context.Context, incoming ...models.SkillMetric) ([]models.SkillMetric, error)
	ListBySession(ctx context.Context, sessionID string) []models.SkillMetric
	ListByStudent(ctx context.Context, studentID string) []models.SkillMetric
}

// RecordMetricRequest scores a student's skills for one session. Scores use a
// 1-5 scale.
type RecordMetricRequest struct {
	SessionID     string  `json:"session_id" validate:"required"`
	StudentID     string  `json:"student_id" validate:"required"`
	Participation int     `json:"participation" validate:"required,min=1,max=5"`
	Comprehension int     `json:"comprehension" validate:"required,min=1,max=5"`
	Fluency       int     `json:"fluency" validate:"required,min=1,max=5"`
	Comment       *string `json:"comment,omitempty"`
}

// MetricService manages per-session skill assessments.
type MetricService struct {
	repo      metricRepository
	sessions  sessionReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewMetricService constructs a MetricService.
func NewMetricService(repo metricRepository, sessions sessionReader, validate *validator.Validate, logger *zap.Logger) *MetricService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &MetricService{repo: repo, sessions: sessions, validator: validate, logger: logger}
}

// Record stores or replaces the skill scores for a (session, student) pair.
func (s *MetricService) Record(ctx context.Context, recordedBy string, req RecordMetricRequest) (*models.SkillMetric, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid metric payload")
	}
	if s.sessions.GetByID(ctx, req.SessionID) == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
	}

	saved, err := s.repo.Upsert(ctx, models.SkillMetric{
		SessionID:     req.SessionID,
		StudentID:     req.StudentID,
		Participation: req.Participation,
		Comprehension: req.Comprehension,
		Fluency:       req.Fluency,
		Comment:       req.Comment,
		RecordedBy:    recordedBy,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorageWrite.Code, appErrors.ErrStorageWrite.Status, "failed to persist metric")
	}
	return &saved[0], nil
}

// ListBySession returns all skill metrics recorded for a session.
func (s *MetricService) ListBySession(ctx context.Context, sessionID string) []models.SkillMetric {
	return s.repo.ListBySession(ctx, sessionID)
}

// ListByStudent returns a student's full skill history.
func (s *MetricService) ListByStudent(ctx context.Context, studentID string) []models.SkillMetric {
	return s.repo.ListByStudent(ctx, studentID)
}
