package models

import "time"

// SkillMetric records a per-session skill and behaviour assessment for one
// student. Identity is the (session_id, student_id) pair, upserted like
// attendance.
type SkillMetric struct {
	ID            string    `json:"id"`
	SessionID     string    `json:"session_id"`
	StudentID     string    `json:"student_id"`
	Participation int       `json:"participation"`
	Comprehension int       `json:"comprehension"`
	Fluency       int       `json:"fluency"`
	Comment       *string   `json:"comment,omitempty"`
	RecordedBy    string    `json:"recorded_by"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// SameKey reports whether two metrics share the composite identity.
func (m SkillMetric) SameKey(other SkillMetric) bool {
	return m.SessionID == other.SessionID && m.StudentID == other.StudentID
}
