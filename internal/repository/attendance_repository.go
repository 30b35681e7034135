package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/linguaops/classtrack-api/internal/models"
	"github.com/linguaops/classtrack-api/pkg/recordstore"
)

// AttendanceRepository handles persistence for attendance records.
type AttendanceRepository struct {
	c *collection[models.AttendanceRecord]
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(store *recordstore.Store) *AttendanceRepository {
	return &AttendanceRepository{c: newCollection[models.AttendanceRecord](store, keyAttendance, nil)}
}

// Upsert merges the incoming records by (session_id, student_id); the last
// write for a pair wins. Missing ids and timestamps are filled in.
func (r *AttendanceRepository) Upsert(ctx context.Context, incoming ...models.AttendanceRecord) ([]models.AttendanceRecord, error) {
	now := time.Now().UTC()
	for i := range incoming {
		if incoming[i].ID == "" {
			incoming[i].ID = uuid.NewString()
		}
		if incoming[i].CreatedAt.IsZero() {
			incoming[i].CreatedAt = now
		}
		incoming[i].UpdatedAt = now
	}
	err := r.c.update(ctx, func(records []models.AttendanceRecord) []models.AttendanceRecord {
		return recordstore.Upsert(records, incoming, models.AttendanceRecord.SameKey)
	})
	return incoming, err
}

// ListBySession returns the attendance rows for one session.
func (r *AttendanceRepository) ListBySession(ctx context.Context, sessionID string) []models.AttendanceRecord {
	var out []models.AttendanceRecord
	for _, rec := range r.c.snapshot(ctx) {
		if rec.SessionID == sessionID {
			out = append(out, rec)
		}
	}
	return out
}

// ListByStudent returns a student's full attendance history.
func (r *AttendanceRepository) ListByStudent(ctx context.Context, studentID string) []models.AttendanceRecord {
	var out []models.AttendanceRecord
	for _, rec := range r.c.snapshot(ctx) {
		if rec.StudentID == studentID {
			out = append(out, rec)
		}
	}
	return out
}
