package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/linguaops/classtrack-api/internal/models"
)

type fakeRequestRepo struct {
	requests map[string]models.SpecialRequest
	nextID   int
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: map[string]models.SpecialRequest{}}
}

func (f *fakeRequestRepo) Create(_ context.Context, req models.SpecialRequest) (models.SpecialRequest, error) {
	if req.ID == "" {
		f.nextID++
		req.ID = string(rune('a' + f.nextID))
	}
	f.requests[req.ID] = req
	return req, nil
}

func (f *fakeRequestRepo) Update(_ context.Context, req models.SpecialRequest) error {
	f.requests[req.ID] = req
	return nil
}

func (f *fakeRequestRepo) GetByID(_ context.Context, id string) *models.SpecialRequest {
	if req, ok := f.requests[id]; ok {
		return &req
	}
	return nil
}

func (f *fakeRequestRepo) List(_ context.Context, filter models.RequestFilter) []models.SpecialRequest {
	var out []models.SpecialRequest
	for _, req := range f.requests {
		if filter.StudentID != "" && (req.StudentID == nil || *req.StudentID != filter.StudentID) {
			continue
		}
		if filter.State != nil && req.State != *filter.State {
			continue
		}
		out = append(out, req)
	}
	return out
}

func newRequestFixture(t *testing.T) (*RequestService, *fakeRequestRepo, *time.Time) {
	t.Helper()
	repo := newFakeRequestRepo()
	svc := NewRequestService(repo, &fakeRiskConfig{cfg: models.DefaultRiskConfig()}, nil, zap.NewNop())
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	return svc, repo, &now
}

func TestCreateRequestFixesDueAtFromKind(t *testing.T) {
	svc, _, now := newRequestFixture(t)

	created, err := svc.Create(context.Background(), "teacher-1", CreateRequestRequest{
		ClassID: "c1", Kind: models.RequestApproval, Title: "field trip consent",
	})
	require.NoError(t, err)
	assert.Equal(t, now.Add(48*time.Hour), created.DueAt)
	assert.Equal(t, models.RequestOpen, created.State)
	assert.Equal(t, models.SLAOnTrack, created.SLAStatus)
}

func TestRequestSLAStatusRecomputedOnRead(t *testing.T) {
	svc, _, now := newRequestFixture(t)

	created, err := svc.Create(context.Background(), "teacher-1", CreateRequestRequest{
		ClassID: "c1", Kind: models.RequestResponse, Title: "call home",
	})
	require.NoError(t, err)

	// Inside the final quarter of the 24h window.
	*now = now.Add(20 * time.Hour)
	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SLAAtRisk, got.SLAStatus)

	// Past the deadline.
	*now = now.Add(5 * time.Hour)
	got, err = svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SLAOverdue, got.SLAStatus)
}

func TestResolveRequestIsIdempotent(t *testing.T) {
	svc, _, _ := newRequestFixture(t)

	created, err := svc.Create(context.Background(), "teacher-1", CreateRequestRequest{
		ClassID: "c1", Kind: models.RequestResponse, Title: "call home",
	})
	require.NoError(t, err)

	first, err := svc.Resolve(context.Background(), created.ID)
	require.NoError(t, err)
	require.NotNil(t, first.ResolvedAt)

	second, err := svc.Resolve(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ResolvedAt, second.ResolvedAt)
	assert.Equal(t, models.SLAOnTrack, second.SLAStatus)
}

func TestRequestWritesDropClassRiskCache(t *testing.T) {
	svc, _, _ := newRequestFixture(t)
	spy := &spyInvalidator{}
	svc.SetRiskInvalidator(spy)

	created, err := svc.Create(context.Background(), "teacher-1", CreateRequestRequest{
		ClassID: "c1", Kind: models.RequestResponse, Title: "call home",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, spy.classIDs)

	_, err = svc.Resolve(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"c1", "c1"}, spy.classIDs)

	// resolving again changes no state, so nothing is dropped
	_, err = svc.Resolve(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"c1", "c1"}, spy.classIDs)
}

func TestCountOverdueForStudent(t *testing.T) {
	svc, _, now := newRequestFixture(t)
	studentID := "stu1"

	for range [2]struct{}{} {
		_, err := svc.Create(context.Background(), "teacher-1", CreateRequestRequest{
			ClassID: "c1", StudentID: &studentID, Kind: models.RequestResponse, Title: "follow up",
		})
		require.NoError(t, err)
	}
	resolved, err := svc.Create(context.Background(), "teacher-1", CreateRequestRequest{
		ClassID: "c1", StudentID: &studentID, Kind: models.RequestResponse, Title: "done already",
	})
	require.NoError(t, err)
	_, err = svc.Resolve(context.Background(), resolved.ID)
	require.NoError(t, err)

	*now = now.Add(25 * time.Hour)
	assert.Equal(t, 2, svc.CountOverdueForStudent(context.Background(), studentID))
}
