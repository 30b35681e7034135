package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/linguaops/classtrack-api/internal/models"
	"github.com/linguaops/classtrack-api/pkg/debounce"
)

type attendanceCommitter interface {
	BulkMark(ctx context.Context, recordedBy string, req BulkMarkAttendanceRequest) ([]models.AttendanceRecord, error)
}

type metricCommitter interface {
	Record(ctx context.Context, recordedBy string, req RecordMetricRequest) (*models.SkillMetric, error)
}

// sessionDraft buffers unsaved edits for one session. Later edits for the
// same student replace earlier buffered ones.
type sessionDraft struct {
	recordedBy string
	attendance map[string]BulkAttendanceEntry
	metrics    map[string]RecordMetricRequest
	debouncer  *debounce.Debouncer
}

// AutosaveService coalesces rapid edits into one durable commit per session.
// Each edit restarts the session's quiet-period timer; the buffered draft is
// committed once edits pause, on an explicit flush, or at shutdown.
type AutosaveService struct {
	attendance attendanceCommitter
	metrics    metricCommitter
	quiet      time.Duration
	logger     *zap.Logger

	mu     sync.Mutex
	drafts map[string]*sessionDraft
}

// NewAutosaveService constructs an AutosaveService.
func NewAutosaveService(attendance attendanceCommitter, metrics metricCommitter, quiet time.Duration, logger *zap.Logger) *AutosaveService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if quiet <= 0 {
		quiet = 3 * time.Second
	}
	return &AutosaveService{
		attendance: attendance,
		metrics:    metrics,
		quiet:      quiet,
		logger:     logger,
		drafts:     make(map[string]*sessionDraft),
	}
}

// BufferAttendance stages attendance edits for a session and restarts its
// commit timer.
func (s *AutosaveService) BufferAttendance(recordedBy, sessionID string, entries ...BulkAttendanceEntry) {
	s.mu.Lock()
	draft := s.draftLocked(sessionID)
	draft.recordedBy = recordedBy
	for _, entry := range entries {
		draft.attendance[entry.StudentID] = entry
	}
	debouncer := draft.debouncer
	s.mu.Unlock()

	debouncer.Trigger()
}

// BufferMetric stages a skill metric edit for a session and restarts its
// commit timer.
func (s *AutosaveService) BufferMetric(recordedBy string, req RecordMetricRequest) {
	s.mu.Lock()
	draft := s.draftLocked(req.SessionID)
	draft.recordedBy = recordedBy
	draft.metrics[req.StudentID] = req
	debouncer := draft.debouncer
	s.mu.Unlock()

	debouncer.Trigger()
}

// Flush commits a session's draft immediately.
func (s *AutosaveService) Flush(sessionID string) {
	s.mu.Lock()
	draft, ok := s.drafts[sessionID]
	s.mu.Unlock()
	if ok {
		draft.debouncer.Flush()
	}
}

// Discard drops a session's draft without committing it.
func (s *AutosaveService) Discard(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if draft, ok := s.drafts[sessionID]; ok {
		draft.debouncer.Stop()
		delete(s.drafts, sessionID)
	}
}

// Pending reports whether a session has uncommitted edits.
func (s *AutosaveService) Pending(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	draft, ok := s.drafts[sessionID]
	return ok && draft.debouncer.Pending()
}

// Shutdown commits every outstanding draft. Call during graceful shutdown.
func (s *AutosaveService) Shutdown() {
	s.mu.Lock()
	pending := make([]*sessionDraft, 0, len(s.drafts))
	for _, draft := range s.drafts {
		pending = append(pending, draft)
	}
	s.mu.Unlock()

	for _, draft := range pending {
		draft.debouncer.Flush()
	}
}

// draftLocked returns the session's draft, creating it on first use. Caller
// holds s.mu.
func (s *AutosaveService) draftLocked(sessionID string) *sessionDraft {
	if draft, ok := s.drafts[sessionID]; ok {
		return draft
	}
	draft := &sessionDraft{
		attendance: make(map[string]BulkAttendanceEntry),
		metrics:    make(map[string]RecordMetricRequest),
	}
	draft.debouncer = debounce.New(s.quiet, func() { s.commit(sessionID) })
	s.drafts[sessionID] = draft
	return draft
}

// commit drains the draft and writes it through the domain services. The
// draft survives a failed commit so the next timer can retry it.
func (s *AutosaveService) commit(sessionID string) {
	s.mu.Lock()
	draft, ok := s.drafts[sessionID]
	if !ok {
		s.mu.Unlock()
		return
	}
	recordedBy := draft.recordedBy
	attendance := draft.attendance
	metrics := draft.metrics
	draft.attendance = make(map[string]BulkAttendanceEntry)
	draft.metrics = make(map[string]RecordMetricRequest)
	s.mu.Unlock()

	ctx := context.Background()

	if len(attendance) > 0 {
		entries := make([]BulkAttendanceEntry, 0, len(attendance))
		for _, entry := range attendance {
			entries = append(entries, entry)
		}
		if _, err := s.attendance.BulkMark(ctx, recordedBy, BulkMarkAttendanceRequest{SessionID: sessionID, Entries: entries}); err != nil {
			s.logger.Error("autosave attendance commit failed", zap.String("session_id", sessionID), zap.Error(err))
			s.restoreAttendance(sessionID, attendance)
		}
	}

	for studentID, req := range metrics {
		if _, err := s.metrics.Record(ctx, recordedBy, req); err != nil {
			s.logger.Error("autosave metric commit failed",
				zap.String("session_id", sessionID),
				zap.String("student_id", studentID),
				zap.Error(err))
			s.restoreMetric(sessionID, req)
		}
	}
}

func (s *AutosaveService) restoreAttendance(sessionID string, entries map[string]BulkAttendanceEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	draft, ok := s.drafts[sessionID]
	if !ok {
		return
	}
	for studentID, entry := range entries {
		if _, exists := draft.attendance[studentID]; !exists {
			draft.attendance[studentID] = entry
		}
	}
}

func (s *AutosaveService) restoreMetric(sessionID string, req RecordMetricRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	draft, ok := s.drafts[sessionID]
	if !ok {
		return
	}
	if _, exists := draft.metrics[req.StudentID]; !exists {
		draft.metrics[req.StudentID] = req
	}
}
