package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/linguaops/classtrack-api/internal/models"
	"github.com/linguaops/classtrack-api/internal/service"
	appErrors "github.com/linguaops/classtrack-api/pkg/errors"
	"github.com/linguaops/classtrack-api/pkg/response"
)

// RequestHandler wires HTTP endpoints to the special request service.
type RequestHandler struct {
	service *service.RequestService
}

// NewRequestHandler creates a new handler.
func NewRequestHandler(svc *service.RequestService) *RequestHandler {
	return &RequestHandler{service: svc}
}

// Create godoc
// @Summary Open a special request
// @Description The due time is fixed from the SLA window configured for its kind
// @Tags Requests
// @Accept json
// @Produce json
// @Param payload body service.CreateRequestRequest true "Request payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /requests [post]
func (h *RequestHandler) Create(c *gin.Context) {
	var req service.CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid request payload"))
		return
	}

	created, err := h.service.Create(c.Request.Context(), actorID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

// Resolve godoc
// @Summary Resolve a special request
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /requests/{id}/resolve [post]
func (h *RequestHandler) Resolve(c *gin.Context) {
	resolved, err := h.service.Resolve(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resolved, nil)
}

// Get godoc
// @Summary Get a special request
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /requests/{id} [get]
func (h *RequestHandler) Get(c *gin.Context) {
	request, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// List godoc
// @Summary List special requests
// @Description SLA statuses are recomputed on every call
// @Tags Requests
// @Produce json
// @Param class_id query string false "Filter by class"
// @Param student_id query string false "Filter by student"
// @Param state query string false "Filter by state"
// @Param kind query string false "Filter by kind"
// @Success 200 {object} response.Envelope
// @Router /requests [get]
func (h *RequestHandler) List(c *gin.Context) {
	filter := models.RequestFilter{
		ClassID:   c.Query("class_id"),
		StudentID: c.Query("student_id"),
	}
	if state := c.Query("state"); state != "" {
		st := models.RequestState(state)
		filter.State = &st
	}
	if kind := c.Query("kind"); kind != "" {
		k := models.RequestKind(kind)
		if !k.Valid() {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown request kind"))
			return
		}
		filter.Kind = &k
	}

	requests := h.service.List(c.Request.Context(), filter)
	response.JSON(c, http.StatusOK, requests, nil)
}
