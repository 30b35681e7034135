package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/linguaops/classtrack-api/internal/models"
)

type fakeAttendanceCommitter struct {
	mu    sync.Mutex
	calls []BulkMarkAttendanceRequest
}

func (f *fakeAttendanceCommitter) BulkMark(_ context.Context, _ string, req BulkMarkAttendanceRequest) ([]models.AttendanceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	return nil, nil
}

func (f *fakeAttendanceCommitter) commits() []BulkMarkAttendanceRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]BulkMarkAttendanceRequest, len(f.calls))
	copy(out, f.calls)
	return out
}

type fakeMetricCommitter struct {
	mu    sync.Mutex
	calls []RecordMetricRequest
}

func (f *fakeMetricCommitter) Record(_ context.Context, _ string, req RecordMetricRequest) (*models.SkillMetric, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	return &models.SkillMetric{}, nil
}

func (f *fakeMetricCommitter) commits() []RecordMetricRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]RecordMetricRequest, len(f.calls))
	copy(out, f.calls)
	return out
}

func TestAutosaveCoalescesRapidEdits(t *testing.T) {
	attendance := &fakeAttendanceCommitter{}
	metrics := &fakeMetricCommitter{}
	svc := NewAutosaveService(attendance, metrics, 40*time.Millisecond, zap.NewNop())

	svc.BufferAttendance("teacher-1", "s1", BulkAttendanceEntry{StudentID: "stu1", Status: models.AttendancePresent})
	svc.BufferAttendance("teacher-1", "s1", BulkAttendanceEntry{StudentID: "stu1", Status: models.AttendanceAbsent})
	svc.BufferAttendance("teacher-1", "s1", BulkAttendanceEntry{StudentID: "stu2", Status: models.AttendanceLate})

	time.Sleep(120 * time.Millisecond)

	calls := attendance.commits()
	assert.Len(t, calls, 1)
	assert.Len(t, calls[0].Entries, 2)
	for _, entry := range calls[0].Entries {
		if entry.StudentID == "stu1" {
			assert.Equal(t, models.AttendanceAbsent, entry.Status)
		}
	}
}

func TestAutosaveFlushCommitsImmediately(t *testing.T) {
	attendance := &fakeAttendanceCommitter{}
	metrics := &fakeMetricCommitter{}
	svc := NewAutosaveService(attendance, metrics, time.Hour, zap.NewNop())

	svc.BufferMetric("teacher-1", RecordMetricRequest{
		SessionID: "s1", StudentID: "stu1", Participation: 4, Comprehension: 3, Fluency: 5,
	})
	assert.True(t, svc.Pending("s1"))

	svc.Flush("s1")
	assert.Len(t, metrics.commits(), 1)
	assert.False(t, svc.Pending("s1"))
}

func TestAutosaveDiscardDropsDraft(t *testing.T) {
	attendance := &fakeAttendanceCommitter{}
	metrics := &fakeMetricCommitter{}
	svc := NewAutosaveService(attendance, metrics, 30*time.Millisecond, zap.NewNop())

	svc.BufferAttendance("teacher-1", "s1", BulkAttendanceEntry{StudentID: "stu1", Status: models.AttendancePresent})
	svc.Discard("s1")

	time.Sleep(90 * time.Millisecond)
	assert.Empty(t, attendance.commits())
}

func TestAutosaveShutdownCommitsAllDrafts(t *testing.T) {
	attendance := &fakeAttendanceCommitter{}
	metrics := &fakeMetricCommitter{}
	svc := NewAutosaveService(attendance, metrics, time.Hour, zap.NewNop())

	svc.BufferAttendance("teacher-1", "s1", BulkAttendanceEntry{StudentID: "stu1", Status: models.AttendancePresent})
	svc.BufferAttendance("teacher-1", "s2", BulkAttendanceEntry{StudentID: "stu2", Status: models.AttendanceLate})

	svc.Shutdown()

	calls := attendance.commits()
	assert.Len(t, calls, 2)
}
