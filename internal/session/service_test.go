package session

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusware/rollcall/internal/domain"
	"github.com/campusware/rollcall/internal/store"
	"github.com/campusware/rollcall/internal/token"
)

func newTestService(t *testing.T) (*Service, store.Store) {
	t.Helper()
	st := store.NewMemory()
	codec := token.NewCodec("test-secret")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(st, codec, "https://rollcall.example.edu/", logger), st
}

func TestService_Create(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	sess, scanURL, err := svc.Create(ctx, CreateInput{
		Name:      "Databases",
		RoomNo:    "A-101",
		Date:      "2026-08-20",
		StartTime: "10:00",
		EndTime:   "11:00",
		Lat:       19.0760,
		Lng:       72.8777,
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(sess.ID, "lec-"), "generated id: %s", sess.ID)
	assert.Len(t, sess.Nonce, 32, "nonce is 16 random bytes hex-encoded")
	assert.NotZero(t, sess.NonceIssuedAt)
	assert.True(t, sess.Active)

	u, err := url.Parse(scanURL)
	require.NoError(t, err)
	assert.Equal(t, "/scan", u.Path)
	assert.Equal(t, sess.ID, u.Query().Get("lid"))
	assert.NotEmpty(t, u.Query().Get("t"))

	t.Run("name required", func(t *testing.T) {
		_, _, err := svc.Create(ctx, CreateInput{Name: "  "})
		var appErr *domain.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, 400, appErr.StatusCode)
	})

	t.Run("explicit id preserved", func(t *testing.T) {
		got, _, err := svc.Create(ctx, CreateInput{ID: "lec-db-monday", Name: "Databases"})
		require.NoError(t, err)
		assert.Equal(t, "lec-db-monday", got.ID)
	})
}

func TestService_ScanURLStableAcrossRebuilds(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	sess, first, err := svc.Create(ctx, CreateInput{Name: "Databases"})
	require.NoError(t, err)

	// Reprinting the QR for the same session yields the same link.
	assert.Equal(t, first, svc.ScanURL(sess))
}

func TestService_ValidateScan(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	sess, scanURL, err := svc.Create(ctx, CreateInput{Name: "Databases"})
	require.NoError(t, err)

	u, err := url.Parse(scanURL)
	require.NoError(t, err)
	tok := u.Query().Get("t")

	t.Run("valid link", func(t *testing.T) {
		got, err := svc.ValidateScan(ctx, sess.ID, tok)
		require.NoError(t, err)
		assert.Equal(t, sess.ID, got.ID)
	})

	t.Run("unknown session", func(t *testing.T) {
		_, err := svc.ValidateScan(ctx, "lec-nope", tok)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("tampered token", func(t *testing.T) {
		_, err := svc.ValidateScan(ctx, sess.ID, tok+"x")
		assert.ErrorIs(t, err, domain.ErrInvalidLink)
	})

	t.Run("token from a recreated session is stale", func(t *testing.T) {
		require.NoError(t, svc.Delete(ctx, sess.ID))

		recreated, _, err := svc.Create(ctx, CreateInput{ID: sess.ID, Name: "Databases"})
		require.NoError(t, err)
		require.Equal(t, sess.ID, recreated.ID)

		_, err = svc.ValidateScan(ctx, sess.ID, tok)
		assert.ErrorIs(t, err, domain.ErrInvalidLink)
	})

	t.Run("inactive session rejects valid token", func(t *testing.T) {
		sess2, scanURL2, err := svc.Create(ctx, CreateInput{Name: "Networks"})
		require.NoError(t, err)

		_, err = svc.SetActive(ctx, sess2.ID, false)
		require.NoError(t, err)

		u2, err := url.Parse(scanURL2)
		require.NoError(t, err)

		_, err = svc.ValidateScan(ctx, sess2.ID, u2.Query().Get("t"))
		assert.ErrorIs(t, err, domain.ErrInvalidLink)
	})
}

func TestService_SetActive(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	sess, scanURL, err := svc.Create(ctx, CreateInput{Name: "Databases"})
	require.NoError(t, err)

	u, err := url.Parse(scanURL)
	require.NoError(t, err)
	tok := u.Query().Get("t")

	got, err := svc.SetActive(ctx, sess.ID, false)
	require.NoError(t, err)
	assert.False(t, got.Active)

	_, err = svc.ValidateScan(ctx, sess.ID, tok)
	assert.ErrorIs(t, err, domain.ErrInvalidLink)

	// Reactivating revives the original QR code; the nonce is untouched.
	got, err = svc.SetActive(ctx, sess.ID, true)
	require.NoError(t, err)
	assert.True(t, got.Active)

	validated, err := svc.ValidateScan(ctx, sess.ID, tok)
	require.NoError(t, err)
	assert.Equal(t, sess.Nonce, validated.Nonce)

	_, err = svc.SetActive(ctx, "lec-nope", false)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestService_Report(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	sess, _, err := svc.Create(ctx, CreateInput{Name: "Databases"})
	require.NoError(t, err)

	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	require.NoError(t, st.UpsertAttendance(ctx, &domain.AttendanceRecord{
		SessionID: sess.ID, RollNo: "ROLL07", Status: domain.StatusPresent, Timestamp: base,
	}))
	require.NoError(t, st.UpsertAttendance(ctx, &domain.AttendanceRecord{
		SessionID: sess.ID, RollNo: "ROLL21", Status: domain.StatusRejected, Timestamp: base.Add(time.Minute),
	}))

	rep, err := svc.Report(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.PresentCount)
	assert.Equal(t, 1, rep.RejectedCount)
	assert.Len(t, rep.Records, 2)

	_, err = svc.Report(ctx, "lec-nope")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestService_CorrectRecord(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	sess, _, err := svc.Create(ctx, CreateInput{Name: "Databases"})
	require.NoError(t, err)

	require.NoError(t, st.UpsertAttendance(ctx, &domain.AttendanceRecord{
		SessionID: sess.ID, RollNo: "ROLL07", Name: "Asha",
		Status: domain.StatusRejected, Timestamp: time.Now(),
	}))

	t.Run("status flip keeps name when blank", func(t *testing.T) {
		rec, err := svc.CorrectRecord(ctx, sess.ID, "ROLL07", domain.StatusPresent, "")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPresent, rec.Status)
		assert.Equal(t, "Asha", rec.Name)
	})

	t.Run("name correction", func(t *testing.T) {
		rec, err := svc.CorrectRecord(ctx, sess.ID, "ROLL07", domain.StatusPresent, "Asha Patil")
		require.NoError(t, err)
		assert.Equal(t, "Asha Patil", rec.Name)
	})

	t.Run("unknown status", func(t *testing.T) {
		_, err := svc.CorrectRecord(ctx, sess.ID, "ROLL07", "Maybe", "")
		var appErr *domain.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, 400, appErr.StatusCode)
	})

	t.Run("missing record", func(t *testing.T) {
		_, err := svc.CorrectRecord(ctx, sess.ID, "ROLL99", domain.StatusPresent, "")
		assert.ErrorIs(t, err, domain.ErrRecordNotFound)
	})
}

func TestService_DeleteRecord(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	sess, _, err := svc.Create(ctx, CreateInput{Name: "Databases"})
	require.NoError(t, err)
	require.NoError(t, st.UpsertAttendance(ctx, &domain.AttendanceRecord{
		SessionID: sess.ID, RollNo: "ROLL07", Timestamp: time.Now(),
	}))

	require.NoError(t, svc.DeleteRecord(ctx, sess.ID, "ROLL07"))
	assert.ErrorIs(t, svc.DeleteRecord(ctx, sess.ID, "ROLL07"), domain.ErrRecordNotFound)
}
