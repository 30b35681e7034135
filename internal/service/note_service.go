package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/linguaops/classtrack-api/internal/models"
	appErrors "github.com/linguaops/classtrack-api/pkg/errors"
)

type noteRepository interface {
	Append(ctx context.Context, note models.StudentNote) (models.StudentNote, bool, error)
	List(ctx context.Context, filter models.NoteFilter) []models.StudentNote
}

// CreateNoteRequest captures a new observation about a student.
type CreateNoteRequest struct {
	ID                      string          `json:"id,omitempty"`
	SessionID               string          `json:"session_id" validate:"required"`
	StudentID               string          `json:"student_id" validate:"required"`
	NoteType                models.NoteType `json:"note_type" validate:"required,oneof=POSITIVE NEEDS_IMPROVEMENT SBI"`
	Content                 string          `json:"content" validate:"required"`
	Tags                    []string        `json:"tags,omitempty"`
	ParentSupportSuggestion *string         `json:"parent_support_suggestion,omitempty"`
}

// NoteService manages the append-only student note log.
type NoteService struct {
	repo      noteRepository
	sessions  sessionReader
	risk      riskInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewNoteService constructs a NoteService.
func NewNoteService(repo noteRepository, sessions sessionReader, validate *validator.Validate, logger *zap.Logger) *NoteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &NoteService{repo: repo, sessions: sessions, validator: validate, logger: logger}
}

// SetRiskInvalidator hooks the risk cache into the write path.
func (s *NoteService) SetRiskInvalidator(risk riskInvalidator) {
	s.risk = risk
}

// Create appends a note. Clients may supply their own id for retry safety;
// re-submitting an existing id returns the stored note unchanged.
func (s *NoteService) Create(ctx context.Context, createdBy string, req CreateNoteRequest) (*models.StudentNote, bool, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid note payload")
	}
	session := s.sessions.GetByID(ctx, req.SessionID)
	if session == nil {
		return nil, false, appErrors.Clone(appErrors.ErrNotFound, "session not found")
	}

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	note, inserted, err := s.repo.Append(ctx, models.StudentNote{
		ID:                      id,
		SessionID:               req.SessionID,
		StudentID:               req.StudentID,
		NoteType:                req.NoteType,
		Content:                 req.Content,
		Tags:                    req.Tags,
		CreatedBy:               createdBy,
		ParentSupportSuggestion: req.ParentSupportSuggestion,
	})
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrStorageWrite.Code, appErrors.ErrStorageWrite.Status, "failed to persist note")
	}
	if inserted && s.risk != nil {
		s.risk.Invalidate(ctx, session.ClassID)
	}
	return &note, inserted, nil
}

// List returns notes matching the filter, newest first.
func (s *NoteService) List(ctx context.Context, filter models.NoteFilter) []models.StudentNote {
	return s.repo.List(ctx, filter)
}
