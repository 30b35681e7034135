package models

import "time"

// Student represents a learner enrolled with the operator.
type Student struct {
	ID            string    `json:"id"`
	FullName      string    `json:"full_name"`
	ClassID       string    `json:"class_id"`
	LanguageLevel string    `json:"language_level"`
	GuardianName  string    `json:"guardian_name"`
	GuardianPhone string    `json:"guardian_phone"`
	PhotoConsent  bool      `json:"photo_consent"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Class groups students under a teacher and a language track.
type Class struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Language  string    `json:"language"`
	TeacherID string    `json:"teacher_id"`
	Schedule  string    `json:"schedule"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SessionStatus tracks a session through its lifecycle.
type SessionStatus string

const (
	SessionScheduled SessionStatus = "SCHEDULED"
	SessionCompleted SessionStatus = "COMPLETED"
	SessionCancelled SessionStatus = "CANCELLED"
)

// Valid returns true when the status is a supported value.
func (s SessionStatus) Valid() bool {
	switch s {
	case SessionScheduled, SessionCompleted, SessionCancelled:
		return true
	default:
		return false
	}
}

// Session is a single scheduled class meeting.
type Session struct {
	ID        string        `json:"id"`
	ClassID   string        `json:"class_id"`
	Date      time.Time     `json:"date"`
	Topic     string        `json:"topic"`
	Status    SessionStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}
