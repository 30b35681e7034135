package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/linguaops/classtrack-api/internal/models"
	"github.com/linguaops/classtrack-api/pkg/recordstore"
)

// MetricRepository handles persistence for skill metrics.
type MetricRepository struct {
	c *collection[models.SkillMetric]
}

// NewMetricRepository constructs the repository.
func NewMetricRepository(store *recordstore.Store) *MetricRepository {
	return &MetricRepository{c: newCollection[models.SkillMetric](store, keyMetrics, nil)}
}

// Upsert merges the incoming metrics by (session_id, student_id).
func (r *MetricRepository) Upsert(ctx context.Context, incoming ...models.SkillMetric) ([]models.SkillMetric, error) {
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
	err := r.c.update(ctx, func(records []models.SkillMetric) []models.SkillMetric {
		return recordstore.Upsert(records, incoming, models.SkillMetric.SameKey)
	})
	return incoming, err
}

// ListBySession returns metrics recorded in one session.
func (r *MetricRepository) ListBySession(ctx context.Context, sessionID string) []models.SkillMetric {
	var out []models.SkillMetric
	for _, m := range r.c.snapshot(ctx) {
		if m.SessionID == sessionID {
			out = append(out, m)
		}
	}
	return out
}

// ListByStudent returns a student's metric history.
func (r *MetricRepository) ListByStudent(ctx context.Context, studentID string) []models.SkillMetric {
	var out []models.SkillMetric
	for _, m := range r.c.snapshot(ctx) {
		if m.StudentID == studentID {
			out = append(out, m)
		}
	}
	return out
}
