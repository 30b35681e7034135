package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/linguaops/classtrack-api/internal/models"
	"github.com/linguaops/classtrack-api/internal/risk"
	appErrors "github.com/linguaops/classtrack-api/pkg/errors"
)

type requestRepository interface {
	Create(ctx context.Context, req models.SpecialRequest) (models.SpecialRequest, error)
	Update(ctx context.Context, req models.SpecialRequest) error
	GetByID(ctx context.Context, id string) *models.SpecialRequest
	List(ctx context.Context, filter models.RequestFilter) []models.SpecialRequest
}

type riskConfigReader interface {
	Get(ctx context.Context) models.RiskConfig
}

// CreateRequestRequest opens a tracked obligation for a class.
type CreateRequestRequest struct {
	ClassID   string             `json:"class_id" validate:"required"`
	StudentID *string            `json:"student_id,omitempty"`
	Kind      models.RequestKind `json:"kind" validate:"required,oneof=RESPONSE APPROVAL COMMUNICATION"`
	Title     string             `json:"title" validate:"required"`
	Details   string             `json:"details"`
}

// RequestService manages special requests and their SLA classification.
type RequestService struct {
	repo      requestRepository
	config    riskConfigReader
	risk      riskInvalidator
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewRequestService constructs a RequestService.
func NewRequestService(repo requestRepository, config riskConfigReader, validate *validator.Validate, logger *zap.Logger) *RequestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &RequestService{repo: repo, config: config, validator: validate, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// SetRiskInvalidator hooks the risk cache into the write path. Set after
// construction because the risk service counts overdues through this one.
func (s *RequestService) SetRiskInvalidator(risk riskInvalidator) {
	s.risk = risk
}

// Create opens a request. The due time is fixed at creation from the SLA
// window configured for its kind; later config changes do not move it.
func (s *RequestService) Create(ctx context.Context, createdBy string, req CreateRequestRequest) (*models.SpecialRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request payload")
	}

	cfg := s.config.Get(ctx)
	now := s.now()
	created, err := s.repo.Create(ctx, models.SpecialRequest{
		ClassID:   req.ClassID,
		StudentID: req.StudentID,
		Kind:      req.Kind,
		Title:     req.Title,
		Details:   req.Details,
		State:     models.RequestOpen,
		DueAt:     now.Add(cfg.Window(req.Kind)),
		CreatedBy: createdBy,
		CreatedAt: now,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorageWrite.Code, appErrors.ErrStorageWrite.Status, "failed to persist request")
	}
	if s.risk != nil {
		s.risk.Invalidate(ctx, created.ClassID)
	}
	s.classify(&created, cfg)
	return &created, nil
}

// Resolve closes an open request. Resolving is idempotent.
func (s *RequestService) Resolve(ctx context.Context, id string) (*models.SpecialRequest, error) {
	stored := s.repo.GetByID(ctx, id)
	if stored == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
	}
	if stored.State != models.RequestResolved {
		now := s.now()
		stored.State = models.RequestResolved
		stored.ResolvedAt = &now
		if err := s.repo.Update(ctx, *stored); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrStorageWrite.Code, appErrors.ErrStorageWrite.Status, "failed to persist request")
		}
		if s.risk != nil {
			s.risk.Invalidate(ctx, stored.ClassID)
		}
	}
	s.classify(stored, s.config.Get(ctx))
	return stored, nil
}

// Get returns one request with its SLA status freshly computed.
func (s *RequestService) Get(ctx context.Context, id string) (*models.SpecialRequest, error) {
	stored := s.repo.GetByID(ctx, id)
	if stored == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
	}
	s.classify(stored, s.config.Get(ctx))
	return stored, nil
}

// List returns requests matching the filter. SLA statuses are recomputed
// against the clock on every call, never served stale from storage.
func (s *RequestService) List(ctx context.Context, filter models.RequestFilter) []models.SpecialRequest {
	cfg := s.config.Get(ctx)
	requests := s.repo.List(ctx, filter)
	for i := range requests {
		s.classify(&requests[i], cfg)
	}
	return requests
}

// CountOverdueForStudent counts a student's open requests past their due time.
func (s *RequestService) CountOverdueForStudent(ctx context.Context, studentID string) int {
	state := models.RequestOpen
	cfg := s.config.Get(ctx)
	count := 0
	for _, req := range s.repo.List(ctx, models.RequestFilter{StudentID: studentID, State: &state}) {
		if risk.EvaluateSLA(s.now(), req.DueAt, cfg.Window(req.Kind)) == models.SLAOverdue {
			count++
		}
	}
	return count
}

// classify stamps the derived SLA status. Resolved requests stay on-track.
func (s *RequestService) classify(req *models.SpecialRequest, cfg models.RiskConfig) {
	if req.State == models.RequestResolved {
		req.SLAStatus = models.SLAOnTrack
		return
	}
	req.SLAStatus = risk.EvaluateSLA(s.now(), req.DueAt, cfg.Window(req.Kind))
}
