package models

import "time"

// Photo is the stored metadata for an uploaded session photo. The binary
// lives in file storage under FilePath; downloads go through signed URLs.
type Photo struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"`
	StudentID   *string   `json:"student_id,omitempty"`
	FilePath    string    `json:"file_path"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	Caption     string    `json:"caption,omitempty"`
	UploadedBy  string    `json:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at"`
}
