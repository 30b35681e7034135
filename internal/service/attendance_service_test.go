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

type fakeAttendanceRepo struct {
	records []models.AttendanceRecord
}

func (f *fakeAttendanceRepo) Upsert(_ context.Context, incoming ...models.AttendanceRecord) ([]models.AttendanceRecord, error) {
	for _, rec := range incoming {
		replaced := false
		for i := range f.records {
			if f.records[i].SessionID == rec.SessionID && f.records[i].StudentID == rec.StudentID {
				f.records[i] = rec
				replaced = true
				break
			}
		}
		if !replaced {
			f.records = append(f.records, rec)
		}
	}
	return incoming, nil
}

func (f *fakeAttendanceRepo) ListBySession(_ context.Context, sessionID string) []models.AttendanceRecord {
	var out []models.AttendanceRecord
	for _, rec := range f.records {
		if rec.SessionID == sessionID {
			out = append(out, rec)
		}
	}
	return out
}

func (f *fakeAttendanceRepo) ListByStudent(_ context.Context, studentID string) []models.AttendanceRecord {
	var out []models.AttendanceRecord
	for _, rec := range f.records {
		if rec.StudentID == studentID {
			out = append(out, rec)
		}
	}
	return out
}

type fakeSessions struct {
	sessions map[string]models.Session
}

func (f *fakeSessions) GetByID(_ context.Context, id string) *models.Session {
	if sess, ok := f.sessions[id]; ok {
		return &sess
	}
	return nil
}

type spyInvalidator struct {
	classIDs []string
}

func (s *spyInvalidator) Invalidate(_ context.Context, classID string) {
	s.classIDs = append(s.classIDs, classID)
}

func newAttendanceFixture() (*AttendanceService, *fakeAttendanceRepo, *fakeSessions, *spyInvalidator) {
	repo := &fakeAttendanceRepo{}
	sessions := &fakeSessions{sessions: map[string]models.Session{
		"s1": {ID: "s1", ClassID: "c1", Date: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)},
	}}
	spy := &spyInvalidator{}
	svc := NewAttendanceService(repo, sessions, nil, zap.NewNop())
	svc.SetRiskInvalidator(spy)
	return svc, repo, sessions, spy
}

func TestMarkDropsClassRiskCache(t *testing.T) {
	svc, _, _, spy := newAttendanceFixture()

	_, err := svc.Mark(context.Background(), "teacher-1", MarkAttendanceRequest{
		SessionID: "s1", StudentID: "stu1", Status: models.AttendanceAbsent,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, spy.classIDs)
}

func TestMarkUnknownSessionDoesNotInvalidate(t *testing.T) {
	svc, _, _, spy := newAttendanceFixture()

	_, err := svc.Mark(context.Background(), "teacher-1", MarkAttendanceRequest{
		SessionID: "ghost", StudentID: "stu1", Status: models.AttendancePresent,
	})
	assert.Error(t, err)
	assert.Empty(t, spy.classIDs)
}

func TestBulkMarkDropsClassRiskCacheOnce(t *testing.T) {
	svc, repo, _, spy := newAttendanceFixture()

	saved, err := svc.BulkMark(context.Background(), "teacher-1", BulkMarkAttendanceRequest{
		SessionID: "s1",
		Entries: []BulkAttendanceEntry{
			{StudentID: "stu1", Status: models.AttendancePresent},
			{StudentID: "stu2", Status: models.AttendanceLate},
		},
	})
	require.NoError(t, err)
	assert.Len(t, saved, 2)
	assert.Len(t, repo.records, 2)
	assert.Equal(t, []string{"c1"}, spy.classIDs)
}

func TestNoteCreateDropsClassRiskCache(t *testing.T) {
	sessions := &fakeSessions{sessions: map[string]models.Session{
		"s1": {ID: "s1", ClassID: "c1"},
	}}
	spy := &spyInvalidator{}
	svc := NewNoteService(&fakeNoteRepo{}, sessions, nil, zap.NewNop())
	svc.SetRiskInvalidator(spy)

	note, inserted, err := svc.Create(context.Background(), "teacher-1", CreateNoteRequest{
		SessionID: "s1", StudentID: "stu1", NoteType: models.NoteNeedsImprovement, Content: "struggled with past tense",
	})
	require.NoError(t, err)
	require.True(t, inserted)
	assert.Equal(t, []string{"c1"}, spy.classIDs)

	// replaying the same id changes nothing, so the cache stays put
	_, inserted, err = svc.Create(context.Background(), "teacher-1", CreateNoteRequest{
		ID: note.ID, SessionID: "s1", StudentID: "stu1", NoteType: models.NoteNeedsImprovement, Content: "struggled with past tense",
	})
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Equal(t, []string{"c1"}, spy.classIDs)
}

type fakeNoteRepo struct {
	notes []models.StudentNote
}

func (f *fakeNoteRepo) Append(_ context.Context, note models.StudentNote) (models.StudentNote, bool, error) {
	for _, existing := range f.notes {
		if existing.ID == note.ID {
			return existing, false, nil
		}
	}
	f.notes = append(f.notes, note)
	return note, true, nil
}

func (f *fakeNoteRepo) List(_ context.Context, _ models.NoteFilter) []models.StudentNote {
	return f.notes
}
