// Package session owns the lecture-session lifecycle: creation with a
// one-time nonce, scan-URL issuance, validation of scanned links, and
// per-session attendance reporting.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/campusware/rollcall/internal/domain"
	"github.com/campusware/rollcall/internal/store"
	"github.com/campusware/rollcall/internal/token"
)

type Service struct {
	store   store.Store
	codec   *token.Codec
	baseURL string
	logger  *slog.Logger

	now   func() time.Time
	newID func() string
}

func NewService(st store.Store, codec *token.Codec, baseURL string, logger *slog.Logger) *Service {
	return &Service{
		store:   st,
		codec:   codec,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
		now:     time.Now,
		newID:   func() string { return "lec-" + uuid.NewString()[:8] },
	}
}

// CreateInput carries the faculty-provided session fields. ID is
// optional; a blank one gets a generated lec-xxxxxxxx id.
type CreateInput struct {
	ID        string  `json:"session_id"`
	Name      string  `json:"name"`
	RoomNo    string  `json:"room_no"`
	Date      string  `json:"date"`
	StartTime string  `json:"start_time"`
	EndTime   string  `json:"end_time"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
}

// Create stores a new session. The nonce and its issuance timestamp are
// generated exactly once here; every scan token is bound to the pair, so
// deleting and recreating a session invalidates old QR codes.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Session, string, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, "", domain.ErrBadRequest.WithError(fmt.Errorf("session name is required"))
	}

	nonce, err := newNonce()
	if err != nil {
		return nil, "", domain.ErrInternal.WithError(err)
	}

	sess := &domain.Session{
		ID:            strings.TrimSpace(in.ID),
		Name:          strings.TrimSpace(in.Name),
		RoomNo:        strings.TrimSpace(in.RoomNo),
		Date:          in.Date,
		StartTime:     in.StartTime,
		EndTime:       in.EndTime,
		Lat:           in.Lat,
		Lng:           in.Lng,
		Nonce:         nonce,
		NonceIssuedAt: s.now().Unix(),
		Active:        true,
	}
	if sess.ID == "" {
		sess.ID = s.newID()
	}

	if err := s.store.CreateSession(ctx, sess); err != nil {
		return nil, "", err
	}

	s.logger.Info("session created",
		slog.String("session_id", sess.ID),
		slog.String("name", sess.Name),
	)

	return sess, s.ScanURL(sess), nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Session, error) {
	return s.store.GetSession(ctx, id)
}

func (s *Service) List(ctx context.Context, f domain.SessionFilter) ([]domain.Session, error) {
	return s.store.ListSessions(ctx, f)
}

// SetActive flips the session's active flag. Deactivating kills the
// printed QR code without losing the attendance already collected.
func (s *Service) SetActive(ctx context.Context, id string, active bool) (*domain.Session, error) {
	if err := s.store.SetSessionActive(ctx, id, active); err != nil {
		return nil, err
	}
	s.logger.Info("session active flag changed",
		slog.String("session_id", id),
		slog.Bool("active", active),
	)
	return s.store.GetSession(ctx, id)
}

// Delete removes the session and, through the store, its attendance.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteSession(ctx, id); err != nil {
		return err
	}
	s.logger.Info("session deleted", slog.String("session_id", id))
	return nil
}

// ScanURL rebuilds the signed scan link for an existing session. The
// token is deterministic for a given (id, nonce, issuedAt) triple, so
// re-printing a QR code is safe.
func (s *Service) ScanURL(sess *domain.Session) string {
	tok := s.codec.IssueSession(sess.ID, sess.Nonce, sess.NonceIssuedAt)
	return fmt.Sprintf("%s/scan?lid=%s&t=%s", s.baseURL, url.QueryEscape(sess.ID), tok)
}

// ValidateScan resolves the session behind a scanned link and checks the
// token against the session's current nonce. Failures collapse into
// ErrInvalidLink; which check failed is logged, not disclosed.
func (s *Service) ValidateScan(ctx context.Context, sessionID, tok string) (*domain.Session, error) {
	sess, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.Active {
		s.logger.Warn("scan of inactive session", slog.String("session_id", sessionID))
		return nil, domain.ErrInvalidLink
	}
	if !s.codec.VerifySession(tok, sess.ID, sess.Nonce, sess.NonceIssuedAt) {
		s.logger.Warn("scan token rejected", slog.String("session_id", sessionID))
		return nil, domain.ErrInvalidLink
	}
	return sess, nil
}

// Report is the per-session attendance summary.
type Report struct {
	Session       *domain.Session           `json:"session"`
	Records       []domain.AttendanceRecord `json:"records"`
	PresentCount  int                       `json:"present_count"`
	RejectedCount int                       `json:"rejected_count"`
}

func (s *Service) Report(ctx context.Context, sessionID string) (*Report, error) {
	sess, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	records, err := s.store.ListAttendance(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	rep := &Report{Session: sess, Records: records}
	for _, rec := range records {
		if rec.Present() {
			rep.PresentCount++
		} else {
			rep.RejectedCount++
		}
	}
	return rep, nil
}

// CorrectRecord applies a manual fix to one attendance row. Blank name
// keeps the stored one.
func (s *Service) CorrectRecord(ctx context.Context, sessionID, rollNo string, status domain.AttendanceStatus, name string) (*domain.AttendanceRecord, error) {
	if status != domain.StatusPresent && status != domain.StatusRejected {
		return nil, domain.ErrBadRequest.WithError(fmt.Errorf("unknown status %q", status))
	}

	rec, err := s.store.GetAttendance(ctx, sessionID, rollNo)
	if err != nil {
		return nil, err
	}

	rec.Status = status
	if strings.TrimSpace(name) != "" {
		rec.Name = strings.TrimSpace(name)
	}

	if err := s.store.UpsertAttendance(ctx, rec); err != nil {
		return nil, err
	}

	s.logger.Info("attendance corrected",
		slog.String("session_id", sessionID),
		slog.String("roll_no", rollNo),
		slog.String("status", string(status)),
	)
	return rec, nil
}

func (s *Service) DeleteRecord(ctx context.Context, sessionID, rollNo string) error {
	return s.store.DeleteAttendance(ctx, sessionID, rollNo)
}

func newNonce() (string, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	return hex.EncodeToString(b[:]), nil
}
