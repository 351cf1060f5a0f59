package attendance

import (
	"context"
	"log/slog"

	"github.com/campusware/rollcall/internal/bucket"
	"github.com/campusware/rollcall/internal/domain"
	"github.com/campusware/rollcall/internal/face"
	"github.com/campusware/rollcall/internal/metrics"
	"github.com/campusware/rollcall/internal/token"
)

// FaceVerifier runs the pre-submission face check: resolve the typed
// roll against the enrolled set, verify the probe with the configured
// backend, and on success issue the short-lived face token the
// submission pipeline later demands.
type FaceVerifier struct {
	matcher    face.Matcher
	codec      *token.Codec
	bucket     *bucket.Bucket
	metrics    *metrics.Metrics
	logger     *slog.Logger
	softAccept bool
}

func NewFaceVerifier(m face.Matcher, codec *token.Codec, b *bucket.Bucket, mx *metrics.Metrics, logger *slog.Logger, softAccept bool) *FaceVerifier {
	return &FaceVerifier{
		matcher:    m,
		codec:      codec,
		bucket:     b,
		metrics:    mx,
		logger:     logger,
		softAccept: softAccept,
	}
}

type VerifyInput struct {
	SessionID string
	RollNo    string
	Image     []byte
}

// VerifyOutput is returned for every attempt, accepted or not. The
// submission must use ResolvedRoll: the face token is bound to it, not
// to whatever the student typed.
type VerifyOutput struct {
	Verified     bool               `json:"verified"`
	Reason       domain.MatchReason `json:"reason"`
	Score        float64            `json:"score"`
	SoftAccepted bool               `json:"soft_accepted,omitempty"`
	ResolvedRoll string             `json:"resolved_roll"`
	FaceToken    string             `json:"face_token,omitempty"`
}

func (v *FaceVerifier) Verify(ctx context.Context, in VerifyInput) *VerifyOutput {
	resolved, _ := ResolveRoll(in.RollNo, v.matcher.EnrolledIdentities(ctx))

	res := v.matcher.Verify(ctx, resolved, in.Image)
	backend := v.matcher.Status(ctx).Backend
	v.metrics.Verifications.WithLabelValues(backend, string(res.Reason)).Inc()

	out := &VerifyOutput{
		Verified:     res.Accepted,
		Reason:       res.Reason,
		Score:        res.Score,
		ResolvedRoll: resolved,
	}

	if !res.Accepted && v.softAccept && res.Reason.SoftAcceptable() {
		out.Verified = true
		out.SoftAccepted = true
		v.metrics.SoftAccepts.Inc()
		v.logger.Warn("face verification soft-accepted",
			slog.String("roll_no", resolved),
			slog.String("reason", string(res.Reason)),
			slog.Float64("score", res.Score),
		)
	}

	if !out.Verified {
		return out
	}

	out.FaceToken = v.codec.IssueFace(resolved, in.SessionID, res.Score)
	v.saveAuditSnapshot(resolved, in.Image)
	return out
}

// saveAuditSnapshot keeps the probe that passed verification. Failure is
// logged and counted, never surfaced: the student already has the token.
func (v *FaceVerifier) saveAuditSnapshot(rollNo string, image []byte) {
	if _, err := v.bucket.SaveAuditSnapshot(rollNo, image); err != nil {
		v.metrics.SwallowedErrors.WithLabelValues("audit_snapshot").Inc()
		v.logger.Warn("audit snapshot save failed",
			slog.String("roll_no", rollNo),
			slog.Any("error", err),
		)
	}
}
