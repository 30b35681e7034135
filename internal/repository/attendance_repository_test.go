package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/linguaops/classtrack-api/internal/models"
	"github.com/linguaops/classtrack-api/pkg/recordstore"
)

func newTestStore(t *testing.T) *recordstore.Store {
	t.Helper()
	backend, err := recordstore.NewFileBackend(t.TempDir())
	require.NoError(t, err)
	return recordstore.New(backend, "test", zap.NewNop())
}

func TestAttendanceUpsertKeepsOneRecordPerKey(t *testing.T) {
	repo := NewAttendanceRepository(newTestStore(t))
	ctx := context.Background()

	_, err := repo.Upsert(ctx, models.AttendanceRecord{
		SessionID: "s1", StudentID: "stu1", Status: models.AttendancePresent,
	})
	require.NoError(t, err)

	_, err = repo.Upsert(ctx, models.AttendanceRecord{
		SessionID: "s1", StudentID: "stu1", Status: models.AttendanceAbsent,
	})
	require.NoError(t, err)

	rows := repo.ListBySession(ctx, "s1")
	require.Len(t, rows, 1)
	assert.Equal(t, models.AttendanceAbsent, rows[0].Status)
}

func TestAttendanceUpsertIdempotentResubmission(t *testing.T) {
	repo := NewAttendanceRepository(newTestStore(t))
	ctx := context.Background()

	rec := models.AttendanceRecord{SessionID: "s1", StudentID: "stu1", Status: models.AttendanceLate}
	_, err := repo.Upsert(ctx, rec)
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, rec)
	require.NoError(t, err)

	rows := repo.ListBySession(ctx, "s1")
	require.Len(t, rows, 1)
	assert.Equal(t, models.AttendanceLate, rows[0].Status)
}

func TestAttendanceSurvivesReload(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	repo := NewAttendanceRepository(store)
	_, err := repo.Upsert(ctx, models.AttendanceRecord{
		SessionID: "s1", StudentID: "stu1", Status: models.AttendancePresent,
	})
	require.NoError(t, err)

	// A fresh repository over the same backend sees the saved collection.
	reloaded := NewAttendanceRepository(store)
	rows := reloaded.ListBySession(ctx, "s1")
	require.Len(t, rows, 1)
	assert.Equal(t, "stu1", rows[0].StudentID)
}

func TestNoteAppendIsIdempotentByID(t *testing.T) {
	repo := NewNoteRepository(newTestStore(t))
	ctx := context.Background()

	note := models.StudentNote{
		ID: "n1", SessionID: "s1", StudentID: "stu1",
		NoteType: models.NotePositive, Content: "great participation",
	}
	_, inserted, err := repo.Append(ctx, note)
	require.NoError(t, err)
	assert.True(t, inserted)

	_, inserted, err = repo.Append(ctx, note)
	require.NoError(t, err)
	assert.False(t, inserted)

	notes := repo.List(ctx, models.NoteFilter{SessionID: "s1"})
	assert.Len(t, notes, 1)
}

func TestConfigReplaceOnSave(t *testing.T) {
	repo := NewConfigRepository(newTestStore(t))
	ctx := context.Background()

	// Unwritten config serves the seeded defaults.
	cfg := repo.Get(ctx)
	assert.Equal(t, models.DefaultRiskConfig().AttendanceRedBelow, cfg.AttendanceRedBelow)

	cfg.AttendanceRedBelow = 80
	require.NoError(t, repo.Replace(ctx, cfg))
	assert.Equal(t, float64(80), repo.Get(ctx).AttendanceRedBelow)
}
