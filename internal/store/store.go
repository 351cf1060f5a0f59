// Package store persists sessions, attendance records and the student
// registry. Two implementations exist: Postgres for deployments with a
// DATABASE_URL, and an in-process memory store the server falls back to
// when none is configured.
package store

import (
	"context"

	"github.com/campusware/rollcall/internal/domain"
)

// Store is the record-store contract shared by both implementations.
// Attendance rows are keyed by (sessionID, rollNo); UpsertAttendance is
// last-write-wins on that pair.
type Store interface {
	CreateSession(ctx context.Context, s *domain.Session) error
	GetSession(ctx context.Context, id string) (*domain.Session, error)
	ListSessions(ctx context.Context, f domain.SessionFilter) ([]domain.Session, error)
	// SetSessionActive flips the active flag; inactive sessions reject
	// every scan.
	SetSessionActive(ctx context.Context, id string, active bool) error
	// DeleteSession removes the session and cascades its attendance rows.
	DeleteSession(ctx context.Context, id string) error

	UpsertAttendance(ctx context.Context, rec *domain.AttendanceRecord) error
	GetAttendance(ctx context.Context, sessionID, rollNo string) (*domain.AttendanceRecord, error)
	ListAttendance(ctx context.Context, sessionID string) ([]domain.AttendanceRecord, error)
	DeleteAttendance(ctx context.Context, sessionID, rollNo string) error

	UpsertStudent(ctx context.Context, st *domain.Student) error
	ListStudents(ctx context.Context) ([]domain.Student, error)
	DeleteStudent(ctx context.Context, rollNo string) error

	Ping(ctx context.Context) error
}

func sessionExistsError(id string) *domain.AppError {
	return &domain.AppError{
		Code:       "SESSION_ALREADY_EXISTS",
		Message:    "Session with this id already exists: " + id,
		StatusCode: 409,
	}
}
