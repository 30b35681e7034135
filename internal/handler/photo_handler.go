package handler

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/linguaops/classtrack-api/internal/service"
	appErrors "github.com/linguaops/classtrack-api/pkg/errors"
	"github.com/linguaops/classtrack-api/pkg/response"
)

// PhotoHandler wires HTTP endpoints to the photo service.
type PhotoHandler struct {
	service *service.PhotoService
}

// NewPhotoHandler creates a new handler.
func NewPhotoHandler(svc *service.PhotoService) *PhotoHandler {
	return &PhotoHandler{service: svc}
}

// Upload godoc
// @Summary Upload a session photo
// @Description Multipart upload; student photos require consent on file
// @Tags Photos
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Session ID"
// @Param file formData file true "Photo file"
// @Param student_id formData string false "Student the photo shows"
// @Param caption formData string false "Caption"
// @Success 201 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Failure 415 {object} response.Envelope
// @Router /sessions/{id}/photos [post]
func (h *PhotoHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "missing photo file"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload"))
		return
	}
	defer file.Close()

	req := service.UploadPhotoRequest{
		SessionID:   c.Param("id"),
		ContentType: fileHeader.Header.Get("Content-Type"),
		SizeBytes:   fileHeader.Size,
		Filename:    fileHeader.Filename,
		Caption:     c.PostForm("caption"),
	}
	if studentID := c.PostForm("student_id"); studentID != "" {
		req.StudentID = &studentID
	}

	photo, err := h.service.Upload(c.Request.Context(), actorID(c), req, file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, photo)
}

// ListBySession godoc
// @Summary List a session's photos
// @Description Each photo carries a signed, expiring download URL
// @Tags Photos
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/photos [get]
func (h *PhotoHandler) ListBySession(c *gin.Context) {
	photos, err := h.service.ListBySession(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, photos, nil)
}

// Download godoc
// @Summary Download a photo
// @Tags Photos
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Router /photos/download/{token} [get]
func (h *PhotoHandler) Download(c *gin.Context) {
	file, contentType, err := h.service.OpenByToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	c.Header("Content-Type", contentType)
	c.File(filepath.Clean(file.Name()))
}
