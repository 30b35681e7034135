package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/linguaops/classtrack-api/internal/models"
	"github.com/linguaops/classtrack-api/pkg/recordstore"
)

// RequestRepository handles persistence for special requests.
type RequestRepository struct {
	c *collection[models.SpecialRequest]
}

// NewRequestRepository constructs the repository.
func NewRequestRepository(store *recordstore.Store) *RequestRepository {
	return &RequestRepository{c: newCollection[models.SpecialRequest](store, keyRequests, nil)}
}

// Create appends a new request.
func (r *RequestRepository) Create(ctx context.Context, req models.SpecialRequest) (models.SpecialRequest, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}
	err := r.c.update(ctx, func(records []models.SpecialRequest) []models.SpecialRequest {
		return append(records, req)
	})
	return req, err
}

// Update replaces the request with the same id.
func (r *RequestRepository) Update(ctx context.Context, req models.SpecialRequest) error {
	return r.c.update(ctx, func(records []models.SpecialRequest) []models.SpecialRequest {
		return recordstore.Upsert(records, []models.SpecialRequest{req}, func(a, b models.SpecialRequest) bool {
			return a.ID == b.ID
		})
	})
}

// GetByID returns the request or nil when absent.
func (r *RequestRepository) GetByID(ctx context.Context, id string) *models.SpecialRequest {
	for _, req := range r.c.snapshot(ctx) {
		if req.ID == id {
			return &req
		}
	}
	return nil
}

// List returns requests matching the filter.
func (r *RequestRepository) List(ctx context.Context, filter models.RequestFilter) []models.SpecialRequest {
	var out []models.SpecialRequest
	for _, req := range r.c.snapshot(ctx) {
		if filter.ClassID != "" && req.ClassID != filter.ClassID {
			continue
		}
		if filter.StudentID != "" && (req.StudentID == nil || *req.StudentID != filter.StudentID) {
			continue
		}
		if filter.State != nil && req.State != *filter.State {
			continue
		}
		if filter.Kind != nil && req.Kind != *filter.Kind {
			continue
		}
		out = append(out, req)
	}
	return out
}
