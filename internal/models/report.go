package models

import "time"

// FlaggedStudent names a student the risk evaluator marked in a report.
type FlaggedStudent struct {
	StudentID   string    `json:"student_id"`
	StudentName string    `json:"student_name"`
	Level       RiskLevel `json:"level"`
	Score       int       `json:"score"`
}

// SessionReport is the per-session aggregate; one per session, upserted by
// session id.
type SessionReport struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	ClassID   string    `json:"class_id"`
	Date      time.Time `json:"date"`

	PresentCount int `json:"present_count"`
	AbsentCount  int `json:"absent_count"`
	LateCount    int `json:"late_count"`

	PositiveNotes    int `json:"positive_notes"`
	ImprovementNotes int `json:"improvement_notes"`
	SBINotes         int `json:"sbi_notes"`

	Flagged []FlaggedStudent `json:"flagged,omitempty"`

	GeneratedBy string    `json:"generated_by"`
	GeneratedAt time.Time `json:"generated_at"`
}

// ExportFormat selects the rendering for a report export.
type ExportFormat string

const (
	ExportCSV ExportFormat = "CSV"
	ExportPDF ExportFormat = "PDF"
)

// Valid returns true when the format is supported.
func (f ExportFormat) Valid() bool {
	return f == ExportCSV || f == ExportPDF
}

// ExportStatus tracks an export job through its lifecycle.
type ExportStatus string

const (
	ExportQueued    ExportStatus = "QUEUED"
	ExportRunning   ExportStatus = "RUNNING"
	ExportCompleted ExportStatus = "COMPLETED"
	ExportFailed    ExportStatus = "FAILED"
)

// ExportJob records an asynchronous report export.
type ExportJob struct {
	ID           string       `json:"id"`
	SessionID    string       `json:"session_id"`
	Format       ExportFormat `json:"format"`
	Status       ExportStatus `json:"status"`
	FilePath     string       `json:"file_path,omitempty"`
	ErrorMessage string       `json:"error_message,omitempty"`
	CreatedBy    string       `json:"created_by"`
	CreatedAt    time.Time    `json:"created_at"`
	FinishedAt   *time.Time   `json:"finished_at,omitempty"`
}
