package models

import "time"

// RequestKind selects which configured SLA window applies.
type RequestKind string

const (
	RequestResponse      RequestKind = "RESPONSE"
	RequestApproval      RequestKind = "APPROVAL"
	RequestCommunication RequestKind = "COMMUNICATION"
)

// Valid returns true when the kind is a supported value.
func (k RequestKind) Valid() bool {
	switch k {
	case RequestResponse, RequestApproval, RequestCommunication:
		return true
	default:
		return false
	}
}

// RequestState tracks resolution of a special request.
type RequestState string

const (
	RequestOpen     RequestState = "OPEN"
	RequestResolved RequestState = "RESOLVED"
)

// SLAStatus classifies a time-bound obligation against its deadline.
type SLAStatus string

const (
	SLAOnTrack SLAStatus = "ON_TRACK"
	SLAAtRisk  SLAStatus = "AT_RISK"
	SLAOverdue SLAStatus = "OVERDUE"
)

// SpecialRequest is a tracked obligation raised for a class, optionally tied
// to a single student. SLAStatus is recomputed from the due time on every
// read, never persisted as authoritative.
type SpecialRequest struct {
	ID         string       `json:"id"`
	ClassID    string       `json:"class_id"`
	StudentID  *string      `json:"student_id,omitempty"`
	Kind       RequestKind  `json:"kind"`
	Title      string       `json:"title"`
	Details    string       `json:"details"`
	State      RequestState `json:"state"`
	SLAStatus  SLAStatus    `json:"sla_status"`
	DueAt      time.Time    `json:"due_at"`
	CreatedBy  string       `json:"created_by"`
	CreatedAt  time.Time    `json:"created_at"`
	ResolvedAt *time.Time   `json:"resolved_at,omitempty"`
}

// RequestFilter scopes request listings.
type RequestFilter struct {
	ClassID   string
	StudentID string
	State     *RequestState
	Kind      *RequestKind
}
