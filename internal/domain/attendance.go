package domain

import (
	"strings"
	"time"
)

// AttendanceStatus is the terminal outcome of a scan attempt.
type AttendanceStatus string

const (
	StatusPresent  AttendanceStatus = "Present"
	StatusRejected AttendanceStatus = "Rejected"
)

// AttendanceRecord is the persisted result of one scan attempt, keyed by
// (SessionID, RollNo). A resubmission for the same pair overwrites the
// previous record; the store's upsert provides last-write-wins semantics.
type AttendanceRecord struct {
	SessionID      string           `json:"session_id"`
	RollNo         string           `json:"roll_no"`
	Name           string           `json:"name"`
	Lat            float64          `json:"lat"`
	Lng            float64          `json:"lng"`
	Accuracy       float64          `json:"accuracy"`
	DistanceMeters float64          `json:"distance_meters"`
	Status         AttendanceStatus `json:"status"`
	Timestamp      time.Time        `json:"timestamp"`
	UserAgent      string           `json:"user_agent"`
	FaceVerified   bool             `json:"face_verified"`
	FaceConfidence float64          `json:"face_confidence"`
}

// Present reports whether the record counts toward attendance.
func (r AttendanceRecord) Present() bool {
	return r.Status == StatusPresent
}

// Student is a registry entry; RollNo doubles as the identity id used by
// the face engine's enrollment bucket.
type Student struct {
	RollNo string `json:"roll_no"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
