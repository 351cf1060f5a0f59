package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusware/rollcall/internal/domain"
)

func TestPostgres_CreateSession(t *testing.T) {
	s := sampleSession("lec-1", "Databases", "2026-08-20", "10:00")

	tests := []struct {
		name      string
		mockSetup func(mock pgxmock.PgxPoolIface)
		wantErr   string
		wantCode  int
	}{
		{
			name: "successful insert",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO sessions`).
					WithArgs(s.ID, s.Name, s.RoomNo, s.Date, s.StartTime, s.EndTime,
						s.Lat, s.Lng, s.Nonce, s.NonceIssuedAt, s.Active).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
		},
		{
			name: "duplicate id maps to conflict",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO sessions`).
					WithArgs(s.ID, s.Name, s.RoomNo, s.Date, s.StartTime, s.EndTime,
						s.Lat, s.Lng, s.Nonce, s.NonceIssuedAt, s.Active).
					WillReturnError(errors.New(`duplicate key value violates unique constraint "sessions_pkey" (SQLSTATE 23505)`))
			},
			wantCode: 409,
		},
		{
			name: "database error",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO sessions`).
					WithArgs(s.ID, s.Name, s.RoomNo, s.Date, s.StartTime, s.EndTime,
						s.Lat, s.Lng, s.Nonce, s.NonceIssuedAt, s.Active).
					WillReturnError(errors.New("connection refused"))
			},
			wantErr: "create session",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.mockSetup(mock)

			err = NewPostgres(mock).CreateSession(context.Background(), s)

			switch {
			case tt.wantCode != 0:
				var appErr *domain.AppError
				require.ErrorAs(t, err, &appErr)
				assert.Equal(t, tt.wantCode, appErr.StatusCode)
			case tt.wantErr != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			default:
				require.NoError(t, err)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgres_GetSession(t *testing.T) {
	tests := []struct {
		name      string
		mockSetup func(mock pgxmock.PgxPoolIface)
		want      *domain.Session
		wantErr   error
	}{
		{
			name: "successful retrieval",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows([]string{
					"id", "name", "room_no", "date", "start_time", "end_time",
					"lat", "lng", "nonce", "nonce_issued_at", "active",
				}).AddRow(
					"lec-1", "Databases", "A-101", "2026-08-20", "10:00", "11:00",
					19.0760, 72.8777, "deadbeef", int64(1700000000), true,
				)
				mock.ExpectQuery(`SELECT (.+) FROM sessions WHERE id = \$1`).
					WithArgs("lec-1").
					WillReturnRows(rows)
			},
			want: sampleSession("lec-1", "Databases", "2026-08-20", "10:00"),
		},
		{
			name: "not found",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT (.+) FROM sessions WHERE id = \$1`).
					WithArgs("lec-1").
					WillReturnError(pgx.ErrNoRows)
			},
			wantErr: domain.ErrSessionNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.mockSetup(mock)

			got, err := NewPostgres(mock).GetSession(context.Background(), "lec-1")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgres_ListSessionsAppliesFilter(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rows := pgxmock.NewRows([]string{
		"id", "name", "room_no", "date", "start_time", "end_time",
		"lat", "lng", "nonce", "nonce_issued_at", "active",
	}).
		AddRow("lec-1", "Databases", "A-101", "2026-08-20", "10:00", "11:00",
			19.0760, 72.8777, "n1", int64(1), true).
		AddRow("lec-2", "Networks", "B-204", "2026-08-21", "09:00", "10:00",
			19.0760, 72.8777, "n2", int64(2), true)
	mock.ExpectQuery(`SELECT (.+) FROM sessions ORDER BY date, start_time, id`).
		WillReturnRows(rows)

	got, err := NewPostgres(mock).ListSessions(context.Background(),
		domain.SessionFilter{Subject: "networks"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "lec-2", got[0].ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_SetSessionActive(t *testing.T) {
	tests := []struct {
		name      string
		mockSetup func(mock pgxmock.PgxPoolIface)
		wantErr   error
	}{
		{
			name: "deactivated",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`UPDATE sessions SET active = \$2 WHERE id = \$1`).
					WithArgs("lec-1", false).
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
			},
		},
		{
			name: "not found",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`UPDATE sessions SET active = \$2 WHERE id = \$1`).
					WithArgs("lec-1", false).
					WillReturnResult(pgxmock.NewResult("UPDATE", 0))
			},
			wantErr: domain.ErrSessionNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.mockSetup(mock)

			err = NewPostgres(mock).SetSessionActive(context.Background(), "lec-1", false)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgres_DeleteSession(t *testing.T) {
	tests := []struct {
		name      string
		mockSetup func(mock pgxmock.PgxPoolIface)
		wantErr   error
	}{
		{
			name: "deleted",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`DELETE FROM sessions WHERE id = \$1`).
					WithArgs("lec-1").
					WillReturnResult(pgxmock.NewResult("DELETE", 1))
			},
		},
		{
			name: "not found",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`DELETE FROM sessions WHERE id = \$1`).
					WithArgs("lec-1").
					WillReturnResult(pgxmock.NewResult("DELETE", 0))
			},
			wantErr: domain.ErrSessionNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.mockSetup(mock)

			err = NewPostgres(mock).DeleteSession(context.Background(), "lec-1")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgres_UpsertAttendance(t *testing.T) {
	rec := &domain.AttendanceRecord{
		SessionID:      "lec-1",
		RollNo:         "ROLL07",
		Name:           "Asha",
		Lat:            19.0761,
		Lng:            72.8778,
		Accuracy:       8.5,
		DistanceMeters: 14.2,
		Status:         domain.StatusPresent,
		Timestamp:      time.Date(2026, 8, 20, 10, 5, 0, 0, time.UTC),
		UserAgent:      "Mozilla/5.0",
		FaceVerified:   true,
		FaceConfidence: 0.91,
	}

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`INSERT INTO attendance (.+) ON CONFLICT \(session_id, roll_no\) DO UPDATE`).
		WithArgs(rec.SessionID, rec.RollNo, rec.Name, rec.Lat, rec.Lng,
			rec.Accuracy, rec.DistanceMeters, rec.Status, rec.Timestamp,
			rec.UserAgent, rec.FaceVerified, rec.FaceConfidence).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, NewPostgres(mock).UpsertAttendance(context.Background(), rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetAttendance(t *testing.T) {
	ts := time.Date(2026, 8, 20, 10, 5, 0, 0, time.UTC)

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rows := pgxmock.NewRows([]string{
		"session_id", "roll_no", "name", "lat", "lng", "accuracy",
		"distance_meters", "status", "ts", "user_agent", "face_verified", "face_confidence",
	}).AddRow(
		"lec-1", "ROLL07", "Asha", 19.0761, 72.8778, 8.5,
		14.2, domain.StatusPresent, ts, "Mozilla/5.0", true, 0.91,
	)
	mock.ExpectQuery(`SELECT (.+) FROM attendance WHERE session_id = \$1 AND roll_no = \$2`).
		WithArgs("lec-1", "ROLL07").
		WillReturnRows(rows)

	got, err := NewPostgres(mock).GetAttendance(context.Background(), "lec-1", "ROLL07")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPresent, got.Status)
	assert.Equal(t, 0.91, got.FaceConfidence)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetAttendanceNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT (.+) FROM attendance WHERE session_id = \$1 AND roll_no = \$2`).
		WithArgs("lec-1", "ROLL99").
		WillReturnError(pgx.ErrNoRows)

	_, err = NewPostgres(mock).GetAttendance(context.Background(), "lec-1", "ROLL99")
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Students(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`INSERT INTO students (.+) ON CONFLICT \(roll_no\) DO UPDATE`).
		WithArgs("ROLL07", "Asha", "asha@example.edu").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	rows := pgxmock.NewRows([]string{"roll_no", "name", "email"}).
		AddRow("ROLL07", "Asha", "asha@example.edu")
	mock.ExpectQuery(`SELECT roll_no, name, email FROM students ORDER BY roll_no`).
		WillReturnRows(rows)

	mock.ExpectExec(`DELETE FROM students WHERE roll_no = \$1`).
		WithArgs("ROLL07").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	p := NewPostgres(mock)
	ctx := context.Background()

	require.NoError(t, p.UpsertStudent(ctx, &domain.Student{RollNo: "ROLL07", Name: "Asha", Email: "asha@example.edu"}))

	students, err := p.ListStudents(ctx)
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "Asha", students[0].Name)

	require.NoError(t, p.DeleteStudent(ctx, "ROLL07"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
