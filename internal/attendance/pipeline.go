// Package attendance decides what happens when a student submits a
// scanned link: a chain of gates (scan token, identity fields, face
// proof, location, geofence) ending in an upserted attendance record.
package attendance

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/campusware/rollcall/internal/domain"
	"github.com/campusware/rollcall/internal/geo"
	"github.com/campusware/rollcall/internal/metrics"
	"github.com/campusware/rollcall/internal/session"
	"github.com/campusware/rollcall/internal/store"
	"github.com/campusware/rollcall/internal/token"
)

// Policy carries the submission-time knobs. FaceTokenStrict re-verifies
// the face token's signature, binding and TTL at submission; when false
// only its presence is checked, which trusts the verify endpoint's
// issuance entirely.
type Policy struct {
	GeofenceMeters  float64
	FaceTokenTTL    time.Duration
	FaceTokenStrict bool
}

type Pipeline struct {
	sessions *session.Service
	store    store.Store
	codec    *token.Codec
	metrics  *metrics.Metrics
	logger   *slog.Logger
	policy   Policy

	now func() time.Time
}

func NewPipeline(sessions *session.Service, st store.Store, codec *token.Codec, m *metrics.Metrics, logger *slog.Logger, policy Policy) *Pipeline {
	return &Pipeline{
		sessions: sessions,
		store:    st,
		codec:    codec,
		metrics:  m,
		logger:   logger,
		policy:   policy,
		now:      time.Now,
	}
}

// SubmitInput is one attendance submission. Lat/Lng are pointers because
// "no location shared" and "location 0,0" are different failures.
type SubmitInput struct {
	SessionID string   `json:"session_id"`
	Token     string   `json:"token"`
	Name      string   `json:"name"`
	RollNo    string   `json:"roll_no"`
	FaceToken string   `json:"face_token"`
	Lat       *float64 `json:"lat"`
	Lng       *float64 `json:"lng"`
	Accuracy  float64  `json:"accuracy"`
	UserAgent string   `json:"-"`
}

// Submit runs the decision chain. Gates before the geofence reject the
// request without writing anything; once the submission is authentic and
// complete, the outcome (Present or Rejected) is always persisted, keyed
// (sessionID, rollNo) with last-write-wins.
func (p *Pipeline) Submit(ctx context.Context, in SubmitInput) (*domain.AttendanceRecord, error) {
	sess, err := p.sessions.ValidateScan(ctx, in.SessionID, in.Token)
	if err != nil {
		p.metrics.Rejections.WithLabelValues("token").Inc()
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	rollNo := strings.TrimSpace(in.RollNo)
	if name == "" || rollNo == "" {
		p.metrics.Rejections.WithLabelValues("fields").Inc()
		return nil, domain.ErrMissingFields
	}

	faceConfidence, faceVerified, err := p.checkFaceToken(in.FaceToken, rollNo, sess.ID)
	if err != nil {
		p.metrics.Rejections.WithLabelValues("face_token").Inc()
		p.logger.Warn("face token rejected",
			slog.String("session_id", sess.ID),
			slog.String("roll_no", rollNo),
		)
		return nil, err
	}

	if in.Lat == nil || in.Lng == nil {
		p.metrics.Rejections.WithLabelValues("location").Inc()
		return nil, domain.ErrLocationUnavailable
	}

	distance := geo.DistanceMeters(*in.Lat, *in.Lng, sess.Lat, sess.Lng)
	status := geo.Decide(distance, p.policy.GeofenceMeters)

	rec := &domain.AttendanceRecord{
		SessionID:      sess.ID,
		RollNo:         rollNo,
		Name:           name,
		Lat:            *in.Lat,
		Lng:            *in.Lng,
		Accuracy:       in.Accuracy,
		DistanceMeters: distance,
		Status:         status,
		Timestamp:      p.now().UTC(),
		UserAgent:      in.UserAgent,
		FaceVerified:   faceVerified,
		FaceConfidence: faceConfidence,
	}

	if err := p.store.UpsertAttendance(ctx, rec); err != nil {
		return nil, err
	}

	p.metrics.Submissions.WithLabelValues(string(status)).Inc()
	p.logger.Info("attendance recorded",
		slog.String("session_id", sess.ID),
		slog.String("roll_no", rollNo),
		slog.String("status", string(status)),
		slog.Float64("distance_m", distance),
	)

	return rec, nil
}

// checkFaceToken reports the token's confidence and whether it was
// actually validated. In presence-only mode the token passes unchecked,
// so the record must not claim a verified face.
func (p *Pipeline) checkFaceToken(tok, rollNo, sessionID string) (float64, bool, error) {
	if tok == "" {
		return 0, false, domain.ErrFaceTokenMissing
	}
	if !p.policy.FaceTokenStrict {
		return 0, false, nil
	}

	confidence, ok := p.codec.VerifyFace(tok, rollNo, sessionID, p.policy.FaceTokenTTL)
	if !ok {
		return 0, false, domain.ErrFaceTokenInvalid
	}
	return confidence, true, nil
}
