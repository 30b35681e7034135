package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/linguaops/classtrack-api/internal/models"
	appErrors "github.com/linguaops/classtrack-api/pkg/errors"
	"github.com/linguaops/classtrack-api/pkg/storage"
)

type photoRepository interface {
	Create(ctx context.Context, photo models.Photo) (models.Photo, error)
	ListBySession(ctx context.Context, sessionID string) []models.Photo
	GetByID(ctx context.Context, id string) *models.Photo
}

type photoStorage interface {
	SaveStream(filename string, r io.Reader) (string, error)
	Open(filename string) (*os.File, error)
}

// PhotoConfig bounds uploads and signs download links.
type PhotoConfig struct {
	APIPrefix    string
	MaxSizeBytes int64
	AllowedMIMEs []string
}

// UploadPhotoRequest describes an incoming session photo.
type UploadPhotoRequest struct {
	SessionID   string
	StudentID   *string
	ContentType string
	SizeBytes   int64
	Filename    string
	Caption     string
}

// PhotoView is a photo plus its signed download URL.
type PhotoView struct {
	models.Photo
	DownloadURL string    `json:"download_url"`
	URLExpires  time.Time `json:"url_expires"`
}

// PhotoService stores session photos and their metadata. Photos of a specific
// student require that student's recorded consent.
type PhotoService struct {
	repo     photoRepository
	students studentReader
	sessions sessionReader
	config   riskConfigReader
	storage  photoStorage
	signer   *storage.SignedURLSigner
	logger   *zap.Logger
	cfg      PhotoConfig
}

// NewPhotoService constructs a PhotoService.
func NewPhotoService(repo photoRepository, students studentReader, sessions sessionReader, config riskConfigReader, store photoStorage, signer *storage.SignedURLSigner, cfg PhotoConfig, logger *zap.Logger) *PhotoService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxSizeBytes <= 0 {
		cfg.MaxSizeBytes = 10 << 20
	}
	if len(cfg.AllowedMIMEs) == 0 {
		cfg.AllowedMIMEs = []string{"image/jpeg", "image/png", "image/webp"}
	}
	return &PhotoService{
		repo:     repo,
		students: students,
		sessions: sessions,
		config:   config,
		storage:  store,
		signer:   signer,
		logger:   logger,
		cfg:      cfg,
	}
}

// Upload validates, stores and records a photo; body is streamed to disk.
func (s *PhotoService) Upload(ctx context.Context, uploadedBy string, req UploadPhotoRequest, body io.Reader) (*models.Photo, error) {
	if s.sessions.GetByID(ctx, req.SessionID) == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
	}
	if req.SizeBytes > s.cfg.MaxSizeBytes {
		return nil, appErrors.Clone(appErrors.ErrPayloadTooLarge, fmt.Sprintf("photo exceeds %d bytes", s.cfg.MaxSizeBytes))
	}
	if !s.mimeAllowed(req.ContentType) {
		return nil, appErrors.Clone(appErrors.ErrUnsupportedMedia, fmt.Sprintf("content type %s not allowed", req.ContentType))
	}

	if req.StudentID != nil {
		student := s.students.GetByID(ctx, *req.StudentID)
		if student == nil {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		if s.config.Get(ctx).RequirePhotoConsent && !student.PhotoConsent {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "student has no photo consent on file")
		}
	}

	filename := fmt.Sprintf("%s_%s%s", req.SessionID, uuid.NewString(), strings.ToLower(path.Ext(req.Filename)))
	relPath, err := s.storage.SaveStream(filename, io.LimitReader(body, s.cfg.MaxSizeBytes+1))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store photo")
	}

	photo, err := s.repo.Create(ctx, models.Photo{
		SessionID:   req.SessionID,
		StudentID:   req.StudentID,
		FilePath:    relPath,
		ContentType: req.ContentType,
		SizeBytes:   req.SizeBytes,
		Caption:     req.Caption,
		UploadedBy:  uploadedBy,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorageWrite.Code, appErrors.ErrStorageWrite.Status, "failed to persist photo metadata")
	}
	return &photo, nil
}

// ListBySession returns a session's photos with signed download links.
func (s *PhotoService) ListBySession(ctx context.Context, sessionID string) ([]PhotoView, error) {
	photos := s.repo.ListBySession(ctx, sessionID)
	views := make([]PhotoView, 0, len(photos))
	for _, photo := range photos {
		token, expiresAt, err := s.signer.Generate(photo.ID, photo.FilePath)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign photo url")
		}
		prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
		views = append(views, PhotoView{
			Photo:       photo,
			DownloadURL: fmt.Sprintf("%s/photos/download/%s", prefix, token),
			URLExpires:  expiresAt,
		})
	}
	return views, nil
}

// OpenByToken validates a download token and opens the photo it names. It
// returns the stored content type alongside the file.
func (s *PhotoService) OpenByToken(ctx context.Context, token string) (*os.File, string, error) {
	photoID, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}
	photo := s.repo.GetByID(ctx, photoID)
	if photo == nil || photo.FilePath != relPath {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "photo not found")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "photo file no longer available")
	}
	return file, photo.ContentType, nil
}

func (s *PhotoService) mimeAllowed(contentType string) bool {
	for _, allowed := range s.cfg.AllowedMIMEs {
		if strings.EqualFold(allowed, contentType) {
			return true
		}
	}
	return false
}
