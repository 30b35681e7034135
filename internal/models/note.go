package models

import "time"

// NoteType represents the nature of a student note.
type NoteType string

const (
	NotePositive         NoteType = "POSITIVE"
	NoteNeedsImprovement NoteType = "NEEDS_IMPROVEMENT"
	NoteSBI              NoteType = "SBI"
)

// Valid returns true when the note type is a supported value.
func (t NoteType) Valid() bool {
	switch t {
	case NotePositive, NoteNeedsImprovement, NoteSBI:
		return true
	default:
		return false
	}
}

// StudentNote captures an observation about a student in a session. Notes are
// append-only; re-submitting an existing id is a no-op.
type StudentNote struct {
	ID                      string    `json:"id"`
	SessionID               string    `json:"session_id"`
	StudentID               string    `json:"student_id"`
	NoteType                NoteType  `json:"note_type"`
	Content                 string    `json:"content"`
	Tags                    []string  `json:"tags,omitempty"`
	CreatedBy               string    `json:"created_by"`
	CreatedAt               time.Time `json:"created_at"`
	ParentSupportSuggestion *string   `json:"parent_support_suggestion,omitempty"`
}

// NoteFilter scopes note listings.
type NoteFilter struct {
	SessionID string
	StudentID string
	NoteType  *NoteType
	From      *time.Time
	To        *time.Time
}
