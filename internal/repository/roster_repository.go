package repository

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/linguaops/classtrack-api/internal/models"
	"github.com/linguaops/classtrack-api/pkg/recordstore"
)

// StudentRepository manages the student roster.
type StudentRepository struct {
	c *collection[models.Student]
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(store *recordstore.Store) *StudentRepository {
	return &StudentRepository{c: newCollection[models.Student](store, keyStudents, nil)}
}

// List returns students, optionally scoped to a class or a name search.
func (r *StudentRepository) List(ctx context.Context, classID, search string) []models.Student {
	search = strings.ToLower(strings.TrimSpace(search))
	var out []models.Student
	for _, s := range r.c.snapshot(ctx) {
		if classID != "" && s.ClassID != classID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(s.FullName), search) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// GetByID returns the student or nil when absent.
func (r *StudentRepository) GetByID(ctx context.Context, id string) *models.Student {
	for _, s := range r.c.snapshot(ctx) {
		if s.ID == id {
			return &s
		}
	}
	return nil
}

// Save inserts or replaces a student by id.
func (r *StudentRepository) Save(ctx context.Context, student models.Student) (models.Student, error) {
	now := time.Now().UTC()
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	err := r.c.update(ctx, func(records []models.Student) []models.Student {
		return recordstore.Upsert(records, []models.Student{student}, func(a, b models.Student) bool {
			return a.ID == b.ID
		})
	})
	return student, err
}

// ClassRepository manages the class roster.
type ClassRepository struct {
	c *collection[models.Class]
}

// NewClassRepository constructs the repository.
func NewClassRepository(store *recordstore.Store) *ClassRepository {
	return &ClassRepository{c: newCollection[models.Class](store, keyClasses, nil)}
}

// List returns all classes, optionally only active ones.
func (r *ClassRepository) List(ctx context.Context, activeOnly bool) []models.Class {
	var out []models.Class
	for _, c := range r.c.snapshot(ctx) {
		if activeOnly && !c.Active {
			continue
		}
		out = append(out, c)
	}
	return out
}

// GetByID returns the class or nil when absent.
func (r *ClassRepository) GetByID(ctx context.Context, id string) *models.Class {
	for _, c := range r.c.snapshot(ctx) {
		if c.ID == id {
			return &c
		}
	}
	return nil
}

// Save inserts or replaces a class by id.
func (r *ClassRepository) Save(ctx context.Context, class models.Class) (models.Class, error) {
	now := time.Now().UTC()
	if class.ID == "" {
		class.ID = uuid.NewString()
	}
	if class.CreatedAt.IsZero() {
		class.CreatedAt = now
	}
	class.UpdatedAt = now
	err := r.c.update(ctx, func(records []models.Class) []models.Class {
		return recordstore.Upsert(records, []models.Class{class}, func(a, b models.Class) bool {
			return a.ID == b.ID
		})
	})
	return class, err
}

// SessionRepository manages scheduled sessions.
type SessionRepository struct {
	c *collection[models.Session]
}

// NewSessionRepository constructs the repository.
func NewSessionRepository(store *recordstore.Store) *SessionRepository {
	return &SessionRepository{c: newCollection[models.Session](store, keySessions, nil)}
}

// ListByClass returns a class's sessions ordered by date.
func (r *SessionRepository) ListByClass(ctx context.Context, classID string) []models.Session {
	var out []models.Session
	for _, s := range r.c.snapshot(ctx) {
		if classID == "" || s.ClassID == classID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// GetByID returns the session or nil when absent.
func (r *SessionRepository) GetByID(ctx context.Context, id string) *models.Session {
	for _, s := range r.c.snapshot(ctx) {
		if s.ID == id {
			return &s
		}
	}
	return nil
}

// Save inserts or replaces a session by id.
func (r *SessionRepository) Save(ctx context.Context, session models.Session) (models.Session, error) {
	now := time.Now().UTC()
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now
	err := r.c.update(ctx, func(records []models.Session) []models.Session {
		return recordstore.Upsert(records, []models.Session{session}, func(a, b models.Session) bool {
			return a.ID == b.ID
		})
	})
	return session, err
}
