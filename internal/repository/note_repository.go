package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/linguaops/classtrack-api/internal/models"
	"github.com/linguaops/classtrack-api/pkg/recordstore"
)

// NoteRepository handles the append-only student notes collection.
type NoteRepository struct {
	c *collection[models.StudentNote]
}

// NewNoteRepository constructs the repository.
func NewNoteRepository(store *recordstore.Store) *NoteRepository {
	return &NoteRepository{c: newCollection[models.StudentNote](store, keyNotes, nil)}
}

// Append inserts a note. A note whose id already exists is skipped, making
// re-submission idempotent; the stored note is returned either way.
func (r *NoteRepository) Append(ctx context.Context, note models.StudentNote) (models.StudentNote, bool, error) {
	if note.ID != "" {
		for _, existing := range r.c.snapshot(ctx) {
			if existing.ID == note.ID {
				return existing, false, nil
			}
		}
	} else {
		note.ID = uuid.NewString()
	}
	if note.CreatedAt.IsZero() {
		note.CreatedAt = time.Now().UTC()
	}
	err := r.c.update(ctx, func(records []models.StudentNote) []models.StudentNote {
		for _, existing := range records {
			if existing.ID == note.ID {
				return records
			}
		}
		return append(records, note)
	})
	return note, true, err
}

// List returns notes matching the filter, newest first.
func (r *NoteRepository) List(ctx context.Context, filter models.NoteFilter) []models.StudentNote {
	var out []models.StudentNote
	for _, note := range r.c.snapshot(ctx) {
		if filter.SessionID != "" && note.SessionID != filter.SessionID {
			continue
		}
		if filter.StudentID != "" && note.StudentID != filter.StudentID {
			continue
		}
		if filter.NoteType != nil && note.NoteType != *filter.NoteType {
			continue
		}
		if filter.From != nil && note.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && note.CreatedAt.After(*filter.To) {
			continue
		}
		out = append(out, note)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// CountByType tallies a student's notes of one type.
func (r *NoteRepository) CountByType(ctx context.Context, studentID string, noteType models.NoteType) int {
	count := 0
	for _, note := range r.c.snapshot(ctx) {
		if note.StudentID == studentID && note.NoteType == noteType {
			count++
		}
	}
	return count
}
