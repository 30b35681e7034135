package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/linguaops/classtrack-api/internal/service"
	appErrors "github.com/linguaops/classtrack-api/pkg/errors"
	"github.com/linguaops/classtrack-api/pkg/response"
)

// AutosaveHandler exposes the draft buffer for rapid in-session editing.
type AutosaveHandler struct {
	service *service.AutosaveService
}

// NewAutosaveHandler creates a new handler.
func NewAutosaveHandler(svc *service.AutosaveService) *AutosaveHandler {
	return &AutosaveHandler{service: svc}
}

type draftPayload struct {
	Attendance []service.BulkAttendanceEntry `json:"attendance,omitempty"`
	Metrics    []service.RecordMetricRequest `json:"metrics,omitempty"`
}

// Buffer godoc
// @Summary Stage draft edits for a session
// @Description Edits are committed after a quiet period; rapid edits coalesce into one save
// @Tags Autosave
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body draftPayload true "Draft edits"
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /sessions/{id}/draft [post]
func (h *AutosaveHandler) Buffer(c *gin.Context) {
	var payload draftPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid draft payload"))
		return
	}

	sessionID := c.Param("id")
	actor := actorID(c)
	if len(payload.Attendance) > 0 {
		h.service.BufferAttendance(actor, sessionID, payload.Attendance...)
	}
	for _, metric := range payload.Metrics {
		metric.SessionID = sessionID
		h.service.BufferMetric(actor, metric)
	}

	response.JSON(c, http.StatusAccepted, gin.H{"pending": h.service.Pending(sessionID)}, nil)
}

// Flush godoc
// @Summary Commit a session's draft immediately
// @Tags Autosave
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/draft/flush [post]
func (h *AutosaveHandler) Flush(c *gin.Context) {
	h.service.Flush(c.Param("id"))
	response.JSON(c, http.StatusOK, gin.H{"pending": false}, nil)
}

// Discard godoc
// @Summary Drop a session's draft without saving
// @Tags Autosave
// @Produce json
// @Param id path string true "Session ID"
// @Success 204 {object} response.Envelope
// @Router /sessions/{id}/draft [delete]
func (h *AutosaveHandler) Discard(c *gin.Context) {
	h.service.Discard(c.Param("id"))
	response.NoContent(c)
}

// Status godoc
// @Summary Report whether a session has uncommitted edits
// @Tags Autosave
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/draft [get]
func (h *AutosaveHandler) Status(c *gin.Context) {
	response.JSON(c, http.StatusOK, gin.H{"pending": h.service.Pending(c.Param("id"))}, nil)
}
