package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/linguaops/classtrack-api/internal/models"
	"github.com/linguaops/classtrack-api/pkg/recordstore"
)

// ReportRepository handles per-session aggregate reports.
type ReportRepository struct {
	c *collection[models.SessionReport]
}

// NewReportRepository constructs the repository.
func NewReportRepository(store *recordstore.Store) *ReportRepository {
	return &ReportRepository{c: newCollection[models.SessionReport](store, keyReports, nil)}
}

// Upsert stores the report, replacing any prior report for the session.
func (r *ReportRepository) Upsert(ctx context.Context, report models.SessionReport) (models.SessionReport, error) {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	if report.GeneratedAt.IsZero() {
		report.GeneratedAt = time.Now().UTC()
	}
	err := r.c.update(ctx, func(records []models.SessionReport) []models.SessionReport {
		return recordstore.Upsert(records, []models.SessionReport{report}, func(a, b models.SessionReport) bool {
			return a.SessionID == b.SessionID
		})
	})
	return report, err
}

// GetBySession returns the report for a session, or nil when absent.
func (r *ReportRepository) GetBySession(ctx context.Context, sessionID string) *models.SessionReport {
	for _, report := range r.c.snapshot(ctx) {
		if report.SessionID == sessionID {
			return &report
		}
	}
	return nil
}

// ExportRepository tracks asynchronous export jobs.
type ExportRepository struct {
	c *collection[models.ExportJob]
}

// NewExportRepository constructs the repository.
func NewExportRepository(store *recordstore.Store) *ExportRepository {
	return &ExportRepository{c: newCollection[models.ExportJob](store, keyExports, nil)}
}

// Create appends a new export job.
func (r *ExportRepository) Create(ctx context.Context, job models.ExportJob) (models.ExportJob, error) {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	err := r.c.update(ctx, func(records []models.ExportJob) []models.ExportJob {
		return append(records, job)
	})
	return job, err
}

// Update replaces the job with the same id.
func (r *ExportRepository) Update(ctx context.Context, job models.ExportJob) error {
	return r.c.update(ctx, func(records []models.ExportJob) []models.ExportJob {
		return recordstore.Upsert(records, []models.ExportJob{job}, func(a, b models.ExportJob) bool {
			return a.ID == b.ID
		})
	})
}

// GetByID returns the job or nil when absent.
func (r *ExportRepository) GetByID(ctx context.Context, id string) *models.ExportJob {
	for _, job := range r.c.snapshot(ctx) {
		if job.ID == id {
			return &job
		}
	}
	return nil
}
