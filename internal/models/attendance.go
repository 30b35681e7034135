package models

import "time"

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "PRESENT"
	AttendanceAbsent  AttendanceStatus = "ABSENT"
	AttendanceLate    AttendanceStatus = "LATE"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLate:
		return true
	default:
		return false
	}
}

// AttendanceRecord is one student's attendance for one session. Identity is
// the (session_id, student_id) pair; later writes for the pair replace
// earlier ones.
type AttendanceRecord struct {
	ID         string           `json:"id"`
	SessionID  string           `json:"session_id"`
	StudentID  string           `json:"student_id"`
	Status     AttendanceStatus `json:"status"`
	Reason     *string          `json:"reason,omitempty"`
	RecordedBy string           `json:"recorded_by"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// SameKey reports whether two records share the composite identity.
func (r AttendanceRecord) SameKey(other AttendanceRecord) bool {
	return r.SessionID == other.SessionID && r.StudentID == other.StudentID
}

// AttendanceSummary aggregates a student's attendance history.
type AttendanceSummary struct {
	StudentID          string  `json:"student_id"`
	Present            int     `json:"present"`
	Absent             int     `json:"absent"`
	Late               int     `json:"late"`
	Total              int     `json:"total"`
	Rate               float64 `json:"rate"`
	ConsecutiveAbsents int     `json:"consecutive_absents"`
}
