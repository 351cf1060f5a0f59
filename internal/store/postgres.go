package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/campusware/rollcall/internal/domain"
)

// PgxPool is the subset of *pgxpool.Pool the store uses; pgxmock's pool
// interface satisfies it too.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

type Postgres struct {
	pool PgxPool
}

func NewPostgres(pool PgxPool) *Postgres {
	return &Postgres{pool: pool}
}

const sessionColumns = "id, name, room_no, date, start_time, end_time, lat, lng, nonce, nonce_issued_at, active"

func (p *Postgres) CreateSession(ctx context.Context, s *domain.Session) error {
	query := `
		INSERT INTO sessions (id, name, room_no, date, start_time, end_time, lat, lng, nonce, nonce_issued_at, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := p.pool.Exec(ctx, query,
		s.ID,
		s.Name,
		s.RoomNo,
		s.Date,
		s.StartTime,
		s.EndTime,
		s.Lat,
		s.Lng,
		s.Nonce,
		s.NonceIssuedAt,
		s.Active,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sessionExistsError(s.ID)
		}
		return fmt.Errorf("create session: %w", err)
	}

	return nil
}

func (p *Postgres) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE id = $1
	`

	var s domain.Session
	err := p.pool.QueryRow(ctx, query, id).Scan(
		&s.ID,
		&s.Name,
		&s.RoomNo,
		&s.Date,
		&s.StartTime,
		&s.EndTime,
		&s.Lat,
		&s.Lng,
		&s.Nonce,
		&s.NonceIssuedAt,
		&s.Active,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	return &s, nil
}

// ListSessions fetches every session and applies the filter in Go, so the
// filter semantics stay identical to the memory store's.
func (p *Postgres) ListSessions(ctx context.Context, f domain.SessionFilter) ([]domain.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		ORDER BY date, start_time, id
	`

	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []domain.Session
	for rows.Next() {
		var s domain.Session
		if err := rows.Scan(
			&s.ID,
			&s.Name,
			&s.RoomNo,
			&s.Date,
			&s.StartTime,
			&s.EndTime,
			&s.Lat,
			&s.Lng,
			&s.Nonce,
			&s.NonceIssuedAt,
			&s.Active,
		); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if f.Matches(s) {
			out = append(out, s)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	return out, nil
}

func (p *Postgres) SetSessionActive(ctx context.Context, id string, active bool) error {
	result, err := p.pool.Exec(ctx,
		`UPDATE sessions SET active = $2 WHERE id = $1`,
		id, active)
	if err != nil {
		return fmt.Errorf("set session active: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

// DeleteSession relies on the attendance FK's ON DELETE CASCADE.
func (p *Postgres) DeleteSession(ctx context.Context, id string) error {
	result, err := p.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

const attendanceColumns = "session_id, roll_no, name, lat, lng, accuracy, distance_meters, status, ts, user_agent, face_verified, face_confidence"

func (p *Postgres) UpsertAttendance(ctx context.Context, rec *domain.AttendanceRecord) error {
	query := `
		INSERT INTO attendance (session_id, roll_no, name, lat, lng, accuracy, distance_meters, status, ts, user_agent, face_verified, face_confidence)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (session_id, roll_no) DO UPDATE SET
			name = EXCLUDED.name,
			lat = EXCLUDED.lat,
			lng = EXCLUDED.lng,
			accuracy = EXCLUDED.accuracy,
			distance_meters = EXCLUDED.distance_meters,
			status = EXCLUDED.status,
			ts = EXCLUDED.ts,
			user_agent = EXCLUDED.user_agent,
			face_verified = EXCLUDED.face_verified,
			face_confidence = EXCLUDED.face_confidence
	`

	_, err := p.pool.Exec(ctx, query,
		rec.SessionID,
		rec.RollNo,
		rec.Name,
		rec.Lat,
		rec.Lng,
		rec.Accuracy,
		rec.DistanceMeters,
		rec.Status,
		rec.Timestamp,
		rec.UserAgent,
		rec.FaceVerified,
		rec.FaceConfidence,
	)
	if err != nil {
		return fmt.Errorf("upsert attendance: %w", err)
	}

	return nil
}

func (p *Postgres) GetAttendance(ctx context.Context, sessionID, rollNo string) (*domain.AttendanceRecord, error) {
	query := `
		SELECT ` + attendanceColumns + `
		FROM attendance
		WHERE session_id = $1 AND roll_no = $2
	`

	var rec domain.AttendanceRecord
	err := p.pool.QueryRow(ctx, query, sessionID, rollNo).Scan(
		&rec.SessionID,
		&rec.RollNo,
		&rec.Name,
		&rec.Lat,
		&rec.Lng,
		&rec.Accuracy,
		&rec.DistanceMeters,
		&rec.Status,
		&rec.Timestamp,
		&rec.UserAgent,
		&rec.FaceVerified,
		&rec.FaceConfidence,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get attendance: %w", err)
	}

	return &rec, nil
}

func (p *Postgres) ListAttendance(ctx context.Context, sessionID string) ([]domain.AttendanceRecord, error) {
	query := `
		SELECT ` + attendanceColumns + `
		FROM attendance
		WHERE session_id = $1
		ORDER BY ts, roll_no
	`

	rows, err := p.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	defer rows.Close()

	var out []domain.AttendanceRecord
	for rows.Next() {
		var rec domain.AttendanceRecord
		if err := rows.Scan(
			&rec.SessionID,
			&rec.RollNo,
			&rec.Name,
			&rec.Lat,
			&rec.Lng,
			&rec.Accuracy,
			&rec.DistanceMeters,
			&rec.Status,
			&rec.Timestamp,
			&rec.UserAgent,
			&rec.FaceVerified,
			&rec.FaceConfidence,
		); err != nil {
			return nil, fmt.Errorf("scan attendance: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}

	return out, nil
}

func (p *Postgres) DeleteAttendance(ctx context.Context, sessionID, rollNo string) error {
	result, err := p.pool.Exec(ctx,
		`DELETE FROM attendance WHERE session_id = $1 AND roll_no = $2`,
		sessionID, rollNo)
	if err != nil {
		return fmt.Errorf("delete attendance: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}
	return nil
}

func (p *Postgres) UpsertStudent(ctx context.Context, st *domain.Student) error {
	query := `
		INSERT INTO students (roll_no, name, email)
		VALUES ($1, $2, $3)
		ON CONFLICT (roll_no) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email
	`

	if _, err := p.pool.Exec(ctx, query, st.RollNo, st.Name, st.Email); err != nil {
		return fmt.Errorf("upsert student: %w", err)
	}
	return nil
}

func (p *Postgres) ListStudents(ctx context.Context) ([]domain.Student, error) {
	query := `
		SELECT roll_no, name, email
		FROM students
		ORDER BY roll_no
	`

	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	defer rows.Close()

	var out []domain.Student
	for rows.Next() {
		var st domain.Student
		if err := rows.Scan(&st.RollNo, &st.Name, &st.Email); err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}

	return out, nil
}

func (p *Postgres) DeleteStudent(ctx context.Context, rollNo string) error {
	result, err := p.pool.Exec(ctx, `DELETE FROM students WHERE roll_no = $1`, rollNo)
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// isUniqueViolation checks if the error is a unique constraint violation
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "23505") ||
		strings.Contains(errMsg, "unique") ||
		strings.Contains(errMsg, "duplicate key")
}
