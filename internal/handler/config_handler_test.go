package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/linguaops/classtrack-api/internal/middleware"
	"github.com/linguaops/classtrack-api/internal/models"
	"github.com/linguaops/classtrack-api/internal/service"
	"github.com/linguaops/classtrack-api/pkg/response"
)

type configRepoStub struct {
	cfg models.RiskConfig
}

func (r *configRepoStub) Get(_ context.Context) models.RiskConfig {
	return r.cfg
}

func (r *configRepoStub) Replace(_ context.Context, cfg models.RiskConfig) error {
	r.cfg = cfg
	return nil
}

func newConfigHandlerFixture() (*ConfigHandler, *configRepoStub) {
	repo := &configRepoStub{cfg: models.DefaultRiskConfig()}
	svc := service.NewConfigService(repo, nil, nil, zap.NewNop())
	return NewConfigHandler(svc), repo
}

func validSettingsPayload() service.UpdateConfigRequest {
	return service.UpdateConfigRequest{
		AttendanceRedBelow:       70,
		AttendanceYellowBelow:    85,
		NegativeNotesRed:         4,
		NegativeNotesYellow:      2,
		OverdueRequestsRed:       3,
		OverdueRequestsYellow:    1,
		ConsecutiveAbsentsRed:    4,
		ConsecutiveAbsentsYellow: 2,
		ResponseWindowHours:      12,
		ApprovalWindowHours:      24,
		CommunicationWindowHours: 48,
		AutoFlagging:             true,
		RequirePhotoConsent:      true,
	}
}

func TestConfigHandlerGetReturnsDefaults(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newConfigHandlerFixture()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/settings", nil)
	c.Request = req

	handler.Get(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data models.RiskConfig `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, float64(75), envelope.Data.AttendanceRedBelow)
	assert.Equal(t, 24, envelope.Data.ResponseWindowHours)
}

func TestConfigHandlerReplaceStampsActor(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, repo := newConfigHandlerFixture()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(validSettingsPayload())
	req, _ := http.NewRequest(http.MethodPut, "/settings", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})

	handler.Replace(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin-1", repo.cfg.UpdatedBy)
	assert.Equal(t, float64(70), repo.cfg.AttendanceRedBelow)
}

func TestConfigHandlerReplaceRejectsInvertedThresholds(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, repo := newConfigHandlerFixture()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	payload := validSettingsPayload()
	payload.AttendanceRedBelow = 95
	body, _ := json.Marshal(payload)
	req, _ := http.NewRequest(http.MethodPut, "/settings", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})

	handler.Replace(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, float64(75), repo.cfg.AttendanceRedBelow)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
}

func TestConfigHandlerReplaceInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newConfigHandlerFixture()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPut, "/settings", bytes.NewReader([]byte(`not-json`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Replace(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
