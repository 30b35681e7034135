package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/linguaops/classtrack-api/internal/models"
)

type fakeConfigRepo struct {
	cfg models.RiskConfig
}

func (f *fakeConfigRepo) Get(context.Context) models.RiskConfig {
	return f.cfg
}

func (f *fakeConfigRepo) Replace(_ context.Context, cfg models.RiskConfig) error {
	f.cfg = cfg
	return nil
}

func validUpdate() UpdateConfigRequest {
	return UpdateConfigRequest{
		AttendanceRedBelow:       70,
		AttendanceYellowBelow:    85,
		NegativeNotesRed:         4,
		NegativeNotesYellow:      2,
		OverdueRequestsRed:       3,
		OverdueRequestsYellow:    1,
		ConsecutiveAbsentsRed:    3,
		ConsecutiveAbsentsYellow: 2,
		ResponseWindowHours:      12,
		ApprovalWindowHours:      24,
		CommunicationWindowHours: 48,
		AutoFlagging:             true,
		RequirePhotoConsent:      true,
	}
}

func TestReplaceConfigStoresNewSettings(t *testing.T) {
	repo := &fakeConfigRepo{cfg: models.DefaultRiskConfig()}
	svc := NewConfigService(repo, nil, nil, zap.NewNop())

	cfg, err := svc.Replace(context.Background(), "admin-1", validUpdate())
	require.NoError(t, err)
	assert.Equal(t, float64(70), cfg.AttendanceRedBelow)
	assert.Equal(t, "admin-1", cfg.UpdatedBy)
	assert.Equal(t, float64(70), svc.Get(context.Background()).AttendanceRedBelow)
}

func TestReplaceConfigRejectsInvertedAttendanceTiers(t *testing.T) {
	svc := NewConfigService(&fakeConfigRepo{}, nil, nil, zap.NewNop())

	req := validUpdate()
	req.AttendanceRedBelow = 90
	req.AttendanceYellowBelow = 80
	_, err := svc.Replace(context.Background(), "admin-1", req)
	assert.Error(t, err)
}

func TestReplaceConfigRejectsInvertedCountTiers(t *testing.T) {
	svc := NewConfigService(&fakeConfigRepo{}, nil, nil, zap.NewNop())

	req := validUpdate()
	req.NegativeNotesRed = 1
	req.NegativeNotesYellow = 3
	_, err := svc.Replace(context.Background(), "admin-1", req)
	assert.Error(t, err)
}

func TestReplaceConfigRejectsMissingWindows(t *testing.T) {
	svc := NewConfigService(&fakeConfigRepo{}, nil, nil, zap.NewNop())

	req := validUpdate()
	req.ResponseWindowHours = 0
	_, err := svc.Replace(context.Background(), "admin-1", req)
	assert.Error(t, err)
}
