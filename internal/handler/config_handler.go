package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/linguaops/classtrack-api/internal/service"
	appErrors "github.com/linguaops/classtrack-api/pkg/errors"
	"github.com/linguaops/classtrack-api/pkg/response"
)

// ConfigHandler wires HTTP endpoints to the settings service.
type ConfigHandler struct {
	service *service.ConfigService
}

// NewConfigHandler creates a new handler.
func NewConfigHandler(svc *service.ConfigService) *ConfigHandler {
	return &ConfigHandler{service: svc}
}

// Get godoc
// @Summary Get risk and SLA settings
// @Tags Settings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /settings [get]
func (h *ConfigHandler) Get(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Get(c.Request.Context()), nil)
}

// Replace godoc
// @Summary Replace risk and SLA settings
// @Description Settings are replaced wholesale; partial updates are not supported
// @Tags Settings
// @Accept json
// @Produce json
// @Param payload body service.UpdateConfigRequest true "Settings payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /settings [put]
func (h *ConfigHandler) Replace(c *gin.Context) {
	var req service.UpdateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid settings payload"))
		return
	}

	cfg, err := h.service.Replace(c.Request.Context(), actorID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cfg, nil)
}
