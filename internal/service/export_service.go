package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/linguaops/classtrack-api/internal/models"
	"github.com/linguaops/classtrack-api/pkg/export"
	appErrors "github.com/linguaops/classtrack-api/pkg/errors"
	"github.com/linguaops/classtrack-api/pkg/jobs"
	"github.com/linguaops/classtrack-api/pkg/storage"
)

type exportRepository interface {
	Create(ctx context.Context, job models.ExportJob) (models.ExportJob, error)
	Update(ctx context.Context, job models.ExportJob) error
	GetByID(ctx context.Context, id string) *models.ExportJob
}

type sessionReportReader interface {
	GetBySession(ctx context.Context, sessionID string) (*models.SessionReport, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportJobView is an export job plus its download URL when ready.
type ExportJobView struct {
	models.ExportJob
	DownloadURL string     `json:"download_url,omitempty"`
	URLExpires  *time.Time `json:"url_expires,omitempty"`
}

// ExportService renders session reports to files in the background and hands
// out signed download links.
type ExportService struct {
	repo    exportRepository
	reports sessionReportReader
	storage fileStorage
	csv     csvRenderer
	pdf     pdfRenderer
	signer  *storage.SignedURLSigner
	queue   *jobs.Queue
	logger  *zap.Logger
	cfg     ExportConfig
}

// NewExportService constructs an ExportService. Call StartQueue before
// accepting requests and StopQueue on shutdown.
func NewExportService(repo exportRepository, reports sessionReportReader, store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, queueCfg jobs.QueueConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	s := &ExportService{
		repo:    repo,
		reports: reports,
		storage: store,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		signer:  signer,
		logger:  logger,
		cfg:     cfg,
	}
	s.queue = jobs.NewQueue("report-exports", s.process, queueCfg)
	return s
}

// StartQueue launches the background workers.
func (s *ExportService) StartQueue(ctx context.Context) {
	s.queue.Start(ctx)
}

// StopQueue drains and stops the background workers.
func (s *ExportService) StopQueue() {
	s.queue.Stop()
}

// Request queues a new export of a session's report.
func (s *ExportService) Request(ctx context.Context, createdBy, sessionID string, format models.ExportFormat) (*models.ExportJob, error) {
	if !format.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
	if _, err := s.reports.GetBySession(ctx, sessionID); err != nil {
		return nil, err
	}

	job, err := s.repo.Create(ctx, models.ExportJob{
		SessionID: sessionID,
		Format:    format,
		Status:    models.ExportQueued,
		CreatedBy: createdBy,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorageWrite.Code, appErrors.ErrStorageWrite.Status, "failed to persist export job")
	}

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: "export", Payload: job.ID}); err != nil {
		job.Status = models.ExportFailed
		job.ErrorMessage = "export queue unavailable"
		if updateErr := s.repo.Update(ctx, job); updateErr != nil {
			s.logger.Error("failed to mark export job failed", zap.String("job_id", job.ID), zap.Error(updateErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue export")
	}
	return &job, nil
}

// Get returns a job and, once completed, a signed download URL for it.
func (s *ExportService) Get(ctx context.Context, id string) (*ExportJobView, error) {
	job := s.repo.GetByID(ctx, id)
	if job == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}
	view := &ExportJobView{ExportJob: *job}
	if job.Status == models.ExportCompleted && job.FilePath != "" {
		token, expiresAt, err := s.signer.Generate(job.ID, job.FilePath)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download url")
		}
		prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
		view.DownloadURL = fmt.Sprintf("%s/exports/download/%s", prefix, token)
		view.URLExpires = &expiresAt
	}
	return view, nil
}

// OpenByToken validates a download token and opens the file it names.
func (s *ExportService) OpenByToken(token string) (*os.File, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export file no longer available")
	}
	return file, nil
}

// Cleanup removes rendered files older than the configured TTL.
func (s *ExportService) Cleanup() ([]string, error) {
	return s.storage.CleanupOlderThan(s.cfg.ResultTTL)
}

func (s *ExportService) process(ctx context.Context, queued jobs.Job) error {
	jobID, _ := queued.Payload.(string)
	job := s.repo.GetByID(ctx, jobID)
	if job == nil {
		return fmt.Errorf("export job %s vanished", jobID)
	}

	job.Status = models.ExportRunning
	if err := s.repo.Update(ctx, *job); err != nil {
		s.logger.Warn("failed to mark export running", zap.String("job_id", job.ID), zap.Error(err))
	}

	relPath, err := s.render(ctx, job)
	now := time.Now().UTC()
	job.FinishedAt = &now
	if err != nil {
		job.Status = models.ExportFailed
		job.ErrorMessage = err.Error()
		if updateErr := s.repo.Update(ctx, *job); updateErr != nil {
			s.logger.Error("failed to record export failure", zap.String("job_id", job.ID), zap.Error(updateErr))
		}
		return err
	}

	job.Status = models.ExportCompleted
	job.FilePath = relPath
	job.ErrorMessage = ""
	if err := s.repo.Update(ctx, *job); err != nil {
		s.logger.Error("failed to record export completion", zap.String("job_id", job.ID), zap.Error(err))
		return err
	}
	return nil
}

func (s *ExportService) render(ctx context.Context, job *models.ExportJob) (string, error) {
	report, err := s.reports.GetBySession(ctx, job.SessionID)
	if err != nil {
		return "", err
	}

	dataset, title := reportDataset(report)

	var payload []byte
	switch job.Format {
	case models.ExportCSV:
		payload, err = s.csv.Render(dataset)
	case models.ExportPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", job.Format)
	}
	if err != nil {
		return "", err
	}

	filename := fmt.Sprintf("session_%s_%s.%s",
		sanitizeFilename(job.SessionID),
		time.Now().UTC().Format("20060102_150405"),
		strings.ToLower(string(job.Format)))
	return s.storage.Save(filename, payload)
}

func reportDataset(report *models.SessionReport) (export.Dataset, string) {
	rows := []map[string]string{{
		"Session":           report.SessionID,
		"Date":              report.Date.Format("2006-01-02"),
		"Present":           fmt.Sprintf("%d", report.PresentCount),
		"Absent":            fmt.Sprintf("%d", report.AbsentCount),
		"Late":              fmt.Sprintf("%d", report.LateCount),
		"Positive Notes":    fmt.Sprintf("%d", report.PositiveNotes),
		"Improvement Notes": fmt.Sprintf("%d", report.ImprovementNotes),
		"SBI Notes":         fmt.Sprintf("%d", report.SBINotes),
	}}
	headers := []string{"Session", "Date", "Present", "Absent", "Late", "Positive Notes", "Improvement Notes", "SBI Notes"}

	for _, flagged := range report.Flagged {
		rows = append(rows, map[string]string{
			"Session":           report.SessionID,
			"Date":              fmt.Sprintf("flagged: %s (%s, %d)", flagged.StudentName, flagged.Level, flagged.Score),
			"Present":           "",
			"Absent":            "",
			"Late":              "",
			"Positive Notes":    "",
			"Improvement Notes": "",
			"SBI Notes":         "",
		})
	}

	title := fmt.Sprintf("Session Report %s", report.Date.Format("2006-01-02"))
	return export.Dataset{Headers: headers, Rows: rows}, title
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
