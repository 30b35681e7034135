package models

import "time"

// RiskLevel is the three-tier intervention classification.
type RiskLevel string

const (
	RiskGreen  RiskLevel = "GREEN"
	RiskYellow RiskLevel = "YELLOW"
	RiskRed    RiskLevel = "RED"
)

// RiskAssessment is derived on demand from current records; it is never
// persisted.
type RiskAssessment struct {
	StudentID string    `json:"student_id,omitempty"`
	Score     int       `json:"score"`
	Level     RiskLevel `json:"level"`
	Factors   []string  `json:"factors"`
}

// RiskConfig is the singleton settings record. Administrators replace it
// wholesale; it is seeded with defaults on first read.
type RiskConfig struct {
	AttendanceRedBelow       float64 `json:"attendance_red_below"`
	AttendanceYellowBelow    float64 `json:"attendance_yellow_below"`
	NegativeNotesRed         int     `json:"negative_notes_red"`
	NegativeNotesYellow      int     `json:"negative_notes_yellow"`
	OverdueRequestsRed       int     `json:"overdue_requests_red"`
	OverdueRequestsYellow    int     `json:"overdue_requests_yellow"`
	ConsecutiveAbsentsRed    int     `json:"consecutive_absents_red"`
	ConsecutiveAbsentsYellow int     `json:"consecutive_absents_yellow"`

	ResponseWindowHours      int `json:"response_window_hours"`
	ApprovalWindowHours      int `json:"approval_window_hours"`
	CommunicationWindowHours int `json:"communication_window_hours"`

	AutoFlagging        bool `json:"auto_flagging"`
	RequirePhotoConsent bool `json:"require_photo_consent"`

	UpdatedBy string    `json:"updated_by,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultRiskConfig returns the seeded deployment defaults.
func DefaultRiskConfig() RiskConfig {
	return RiskConfig{
		AttendanceRedBelow:       75,
		AttendanceYellowBelow:    90,
		NegativeNotesRed:         3,
		NegativeNotesYellow:      2,
		OverdueRequestsRed:       2,
		OverdueRequestsYellow:    1,
		ConsecutiveAbsentsRed:    3,
		ConsecutiveAbsentsYellow: 2,
		ResponseWindowHours:      24,
		ApprovalWindowHours:      48,
		CommunicationWindowHours: 72,
		AutoFlagging:             true,
		RequirePhotoConsent:      true,
	}
}

// Window returns the configured SLA window for a request kind.
func (c RiskConfig) Window(kind RequestKind) time.Duration {
	switch kind {
	case RequestApproval:
		return time.Duration(c.ApprovalWindowHours) * time.Hour
	case RequestCommunication:
		return time.Duration(c.CommunicationWindowHours) * time.Hour
	default:
		return time.Duration(c.ResponseWindowHours) * time.Hour
	}
}
