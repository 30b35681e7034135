package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/linguaops/classtrack-api/internal/models"
	appErrors "github.com/linguaops/classtrack-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, classID, search string) []models.Student
	GetByID(ctx context.Context, id string) *models.Student
	Save(ctx context.Context, student models.Student) (models.Student, error)
}

type classRepository interface {
	List(ctx context.Context, activeOnly bool) []models.Class
	GetByID(ctx context.Context, id string) *models.Class
	Save(ctx context.Context, class models.Class) (models.Class, error)
}

type sessionRepository interface {
	ListByClass(ctx context.Context, classID string) []models.Session
	GetByID(ctx context.Context, id string) *models.Session
	Save(ctx context.Context, session models.Session) (models.Session, error)
}

// SaveStudentRequest creates or updates a student.
type SaveStudentRequest struct {
	ID            string `json:"id,omitempty"`
	FullName      string `json:"full_name" validate:"required"`
	ClassID       string `json:"class_id" validate:"required"`
	LanguageLevel string `json:"language_level"`
	GuardianName  string `json:"guardian_name"`
	GuardianPhone string `json:"guardian_phone"`
	PhotoConsent  bool   `json:"photo_consent"`
	Active        *bool  `json:"active"`
}

// SaveClassRequest creates or updates a class.
type SaveClassRequest struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name" validate:"required"`
	Language  string `json:"language" validate:"required"`
	TeacherID string `json:"teacher_id" validate:"required"`
	Schedule  string `json:"schedule"`
	Active    *bool  `json:"active"`
}

// SaveSessionRequest creates or updates a class session.
type SaveSessionRequest struct {
	ID      string               `json:"id,omitempty"`
	ClassID string               `json:"class_id" validate:"required"`
	Date    time.Time            `json:"date" validate:"required"`
	Topic   string               `json:"topic"`
	Status  models.SessionStatus `json:"status" validate:"required,oneof=SCHEDULED COMPLETED CANCELLED"`
}

// RosterService manages students, classes and sessions.
type RosterService struct {
	students  studentRepository
	classes   classRepository
	sessions  sessionRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRosterService constructs a RosterService.
func NewRosterService(students studentRepository, classes classRepository, sessions sessionRepository, validate *validator.Validate, logger *zap.Logger) *RosterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &RosterService{students: students, classes: classes, sessions: sessions, validator: validate, logger: logger}
}

// ListStudents returns students, optionally scoped to a class or search term.
func (s *RosterService) ListStudents(ctx context.Context, classID, search string) []models.Student {
	return s.students.List(ctx, classID, search)
}

// GetStudent returns a single student.
func (s *RosterService) GetStudent(ctx context.Context, id string) (*models.Student, error) {
	student := s.students.GetByID(ctx, id)
	if student == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	return student, nil
}

// SaveStudent creates or replaces a student record.
func (s *RosterService) SaveStudent(ctx context.Context, req SaveStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	if s.classes.GetByID(ctx, req.ClassID) == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}

	student := models.Student{
		ID:            req.ID,
		FullName:      req.FullName,
		ClassID:       req.ClassID,
		LanguageLevel: req.LanguageLevel,
		GuardianName:  req.GuardianName,
		GuardianPhone: req.GuardianPhone,
		PhotoConsent:  req.PhotoConsent,
		Active:        true,
	}
	if req.Active != nil {
		student.Active = *req.Active
	}
	saved, err := s.students.Save(ctx, student)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorageWrite.Code, appErrors.ErrStorageWrite.Status, "failed to persist student")
	}
	return &saved, nil
}

// ListClasses returns classes, optionally only active ones.
func (s *RosterService) ListClasses(ctx context.Context, activeOnly bool) []models.Class {
	return s.classes.List(ctx, activeOnly)
}

// GetClass returns a single class.
func (s *RosterService) GetClass(ctx context.Context, id string) (*models.Class, error) {
	class := s.classes.GetByID(ctx, id)
	if class == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}
	return class, nil
}

// SaveClass creates or replaces a class record.
func (s *RosterService) SaveClass(ctx context.Context, req SaveClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}
	class := models.Class{
		ID:        req.ID,
		Name:      req.Name,
		Language:  req.Language,
		TeacherID: req.TeacherID,
		Schedule:  req.Schedule,
		Active:    true,
	}
	if req.Active != nil {
		class.Active = *req.Active
	}
	saved, err := s.classes.Save(ctx, class)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorageWrite.Code, appErrors.ErrStorageWrite.Status, "failed to persist class")
	}
	return &saved, nil
}

// ListSessions returns a class's sessions ordered by date.
func (s *RosterService) ListSessions(ctx context.Context, classID string) []models.Session {
	return s.sessions.ListByClass(ctx, classID)
}

// GetSession returns a single session.
func (s *RosterService) GetSession(ctx context.Context, id string) (*models.Session, error) {
	session := s.sessions.GetByID(ctx, id)
	if session == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
	}
	return session, nil
}

// SaveSession creates or replaces a session record.
func (s *RosterService) SaveSession(ctx context.Context, req SaveSessionRequest) (*models.Session, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}
	if s.classes.GetByID(ctx, req.ClassID) == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}
	saved, err := s.sessions.Save(ctx, models.Session{
		ID:      req.ID,
		ClassID: req.ClassID,
		Date:    req.Date,
		Topic:   req.Topic,
		Status:  req.Status,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorageWrite.Code, appErrors.ErrStorageWrite.Status, "failed to persist session")
	}
	return &saved, nil
}
