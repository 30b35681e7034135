package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/linguaops/classtrack-api/internal/service"
	"github.com/linguaops/classtrack-api/pkg/response"
)

// RiskHandler wires HTTP endpoints to the risk service.
type RiskHandler struct {
	service *service.RiskService
}

// NewRiskHandler creates a new handler.
func NewRiskHandler(svc *service.RiskService) *RiskHandler {
	return &RiskHandler{service: svc}
}

// AssessStudent godoc
// @Summary Assess one student's intervention risk
// @Description Derived fresh from current records on every call
// @Tags Risk
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/risk [get]
func (h *RiskHandler) AssessStudent(c *gin.Context) {
	assessment, err := h.service.AssessStudent(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assessment, nil)
}

// ClassOverview godoc
// @Summary Risk overview for a whole class
// @Description Cached per class; recomputed after the TTL or a settings change
// @Tags Risk
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /classes/{id}/risk [get]
func (h *RiskHandler) ClassOverview(c *gin.Context) {
	overview, err := h.service.ClassOverview(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, overview, nil)
}
