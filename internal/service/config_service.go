package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/linguaops/classtrack-api/internal/models"
	appErrors "github.com/linguaops/classtrack-api/pkg/errors"
)

type riskConfigRepository interface {
	Get(ctx context.Context) models.RiskConfig
	Replace(ctx context.Context, cfg models.RiskConfig) error
}

// UpdateConfigRequest replaces the risk settings wholesale.
type UpdateConfigRequest struct {
	AttendanceRedBelow       float64 `json:"attendance_red_below" validate:"required,gt=0,lte=100"`
	AttendanceYellowBelow    float64 `json:"attendance_yellow_below" validate:"required,gt=0,lte=100"`
	NegativeNotesRed         int     `json:"negative_notes_red" validate:"required,min=1"`
	NegativeNotesYellow      int     `json:"negative_notes_yellow" validate:"required,min=1"`
	OverdueRequestsRed       int     `json:"overdue_requests_red" validate:"required,min=1"`
	OverdueRequestsYellow    int     `json:"overdue_requests_yellow" validate:"required,min=1"`
	ConsecutiveAbsentsRed    int     `json:"consecutive_absents_red" validate:"required,min=1"`
	ConsecutiveAbsentsYellow int     `json:"consecutive_absents_yellow" validate:"required,min=1"`
	ResponseWindowHours      int     `json:"response_window_hours" validate:"required,min=1"`
	ApprovalWindowHours      int     `json:"approval_window_hours" validate:"required,min=1"`
	CommunicationWindowHours int     `json:"communication_window_hours" validate:"required,min=1"`
	AutoFlagging             bool    `json:"auto_flagging"`
	RequirePhotoConsent      bool    `json:"require_photo_consent"`
}

// ConfigService manages the singleton risk settings record.
type ConfigService struct {
	repo      riskConfigRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewConfigService constructs a ConfigService.
func NewConfigService(repo riskConfigRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ConfigService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ConfigService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// Get returns the current settings, seeded with defaults if never written.
func (s *ConfigService) Get(ctx context.Context) models.RiskConfig {
	return s.repo.Get(ctx)
}

// Replace validates and stores new settings, then drops any cached risk
// overviews computed under the old thresholds.
func (s *ConfigService) Replace(ctx context.Context, updatedBy string, req UpdateConfigRequest) (*models.RiskConfig, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid settings payload")
	}

	// The red tier must always be at least as severe as yellow.
	if req.AttendanceRedBelow >= req.AttendanceYellowBelow {
		return nil, appErrors.Clone(appErrors.ErrValidation, "attendance red threshold must be below the yellow threshold")
	}
	if req.NegativeNotesRed < req.NegativeNotesYellow {
		return nil, appErrors.Clone(appErrors.ErrValidation, "negative note red count must be at least the yellow count")
	}
	if req.OverdueRequestsRed < req.OverdueRequestsYellow {
		return nil, appErrors.Clone(appErrors.ErrValidation, "overdue request red count must be at least the yellow count")
	}
	if req.ConsecutiveAbsentsRed < req.ConsecutiveAbsentsYellow {
		return nil, appErrors.Clone(appErrors.ErrValidation, "consecutive absence red count must be at least the yellow count")
	}

	cfg := models.RiskConfig{
		AttendanceRedBelow:       req.AttendanceRedBelow,
		AttendanceYellowBelow:    req.AttendanceYellowBelow,
		NegativeNotesRed:         req.NegativeNotesRed,
		NegativeNotesYellow:      req.NegativeNotesYellow,
		OverdueRequestsRed:       req.OverdueRequestsRed,
		OverdueRequestsYellow:    req.OverdueRequestsYellow,
		ConsecutiveAbsentsRed:    req.ConsecutiveAbsentsRed,
		ConsecutiveAbsentsYellow: req.ConsecutiveAbsentsYellow,
		ResponseWindowHours:      req.ResponseWindowHours,
		ApprovalWindowHours:      req.ApprovalWindowHours,
		CommunicationWindowHours: req.CommunicationWindowHours,
		AutoFlagging:             req.AutoFlagging,
		RequirePhotoConsent:      req.RequirePhotoConsent,
		UpdatedBy:                updatedBy,
		UpdatedAt:                time.Now().UTC(),
	}
	if err := s.repo.Replace(ctx, cfg); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorageWrite.Code, appErrors.ErrStorageWrite.Status, "failed to persist settings")
	}

	if err := s.cache.Invalidate(ctx, "risk:*"); err != nil {
		s.logger.Warn("failed to invalidate risk cache after settings change", zap.Error(err))
	}
	return &cfg, nil
}
