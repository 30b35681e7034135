package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/linguaops/classtrack-api/internal/models"
	"github.com/linguaops/classtrack-api/internal/service"
	appErrors "github.com/linguaops/classtrack-api/pkg/errors"
	"github.com/linguaops/classtrack-api/pkg/response"
)

// NoteHandler wires HTTP endpoints to the note service.
type NoteHandler struct {
	service *service.NoteService
}

// NewNoteHandler creates a new handler.
func NewNoteHandler(svc *service.NoteService) *NoteHandler {
	return &NoteHandler{service: svc}
}

// Create godoc
// @Summary Append a student note
// @Description Notes are append-only; resubmitting an id is a no-op
// @Tags Notes
// @Accept json
// @Produce json
// @Param payload body service.CreateNoteRequest true "Note payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /notes [post]
func (h *NoteHandler) Create(c *gin.Context) {
	var req service.CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid note payload"))
		return
	}

	note, inserted, err := h.service.Create(c.Request.Context(), actorID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !inserted {
		response.JSON(c, http.StatusOK, note, nil)
		return
	}
	response.Created(c, note)
}

// List godoc
// @Summary List student notes
// @Tags Notes
// @Produce json
// @Param session_id query string false "Filter by session"
// @Param student_id query string false "Filter by student"
// @Param note_type query string false "Filter by type"
// @Param from query string false "RFC3339 lower bound"
// @Param to query string false "RFC3339 upper bound"
// @Success 200 {object} response.Envelope
// @Router /notes [get]
func (h *NoteHandler) List(c *gin.Context) {
	filter := models.NoteFilter{
		SessionID: c.Query("session_id"),
		StudentID: c.Query("student_id"),
	}
	if noteType := c.Query("note_type"); noteType != "" {
		t := models.NoteType(noteType)
		if !t.Valid() {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown note type"))
			return
		}
		filter.NoteType = &t
	}
	if raw := c.Query("from"); raw != "" {
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.From = &ts
		}
	}
	if raw := c.Query("to"); raw != "" {
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.To = &ts
		}
	}

	notes := h.service.List(c.Request.Context(), filter)
	response.JSON(c, http.StatusOK, notes, nil)
}
