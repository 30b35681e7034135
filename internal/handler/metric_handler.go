package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/linguaops/classtrack-api/internal/service"
	appErrors "github.com/linguaops/classtrack-api/pkg/errors"
	"github.com/linguaops/classtrack-api/pkg/response"
)

// MetricHandler wires HTTP endpoints to the skill metric service.
type MetricHandler struct {
	service *service.MetricService
}

// NewMetricHandler creates a new handler.
func NewMetricHandler(svc *service.MetricService) *MetricHandler {
	return &MetricHandler{service: svc}
}

// Record godoc
// @Summary Record a student's skill scores
// @Description Re-recording the same (session, student) pair replaces the scores
// @Tags Metrics
// @Accept json
// @Produce json
// @Param payload body service.RecordMetricRequest true "Metric payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /metrics [post]
func (h *MetricHandler) Record(c *gin.Context) {
	var req service.RecordMetricRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid metric payload"))
		return
	}

	metric, err := h.service.Record(c.Request.Context(), actorID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, metric, nil)
}

// ListBySession godoc
// @Summary List a session's skill metrics
// @Tags Metrics
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/metrics [get]
func (h *MetricHandler) ListBySession(c *gin.Context) {
	metrics := h.service.ListBySession(c.Request.Context(), c.Param("id"))
	response.JSON(c, http.StatusOK, metrics, nil)
}

// ListByStudent godoc
// @Summary List a student's skill history
// @Tags Metrics
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/metrics [get]
func (h *MetricHandler) ListByStudent(c *gin.Context) {
	metrics := h.service.ListByStudent(c.Request.Context(), c.Param("id"))
	response.JSON(c, http.StatusOK, metrics, nil)
}
