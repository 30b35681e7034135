package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/linguaops/classtrack-api/internal/models"
	"github.com/linguaops/classtrack-api/pkg/recordstore"
)

// PhotoRepository stores photo metadata; binaries live in file storage.
type PhotoRepository struct {
	c *collection[models.Photo]
}

// NewPhotoRepository constructs the repository.
func NewPhotoRepository(store *recordstore.Store) *PhotoRepository {
	return &PhotoRepository{c: newCollection[models.Photo](store, keyPhotos, nil)}
}

// Create appends the photo metadata record.
func (r *PhotoRepository) Create(ctx context.Context, photo models.Photo) (models.Photo, error) {
	if photo.ID == "" {
		photo.ID = uuid.NewString()
	}
	if photo.CreatedAt.IsZero() {
		photo.CreatedAt = time.Now().UTC()
	}
	err := r.c.update(ctx, func(records []models.Photo) []models.Photo {
		return append(records, photo)
	})
	return photo, err
}

// ListBySession returns the photos captured in one session.
func (r *PhotoRepository) ListBySession(ctx context.Context, sessionID string) []models.Photo {
	var out []models.Photo
	for _, p := range r.c.snapshot(ctx) {
		if p.SessionID == sessionID {
			out = append(out, p)
		}
	}
	return out
}

// GetByID returns the photo or nil when absent.
func (r *PhotoRepository) GetByID(ctx context.Context, id string) *models.Photo {
	for _, p := range r.c.snapshot(ctx) {
		if p.ID == id {
			return &p
		}
	}
	return nil
}
