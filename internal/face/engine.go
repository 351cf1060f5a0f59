package face

import (
	"fmt"
	"log/slog"

	"github.com/campusware/rollcall/internal/bucket"
	"github.com/campusware/rollcall/internal/domain"
	"github.com/campusware/rollcall/internal/imaging"
)

// Supported backend names. The set is closed: callers select one at
// process start and depend only on the Matcher interface afterwards.
const (
	BackendHistogram = "histogram"
	BackendEncoding  = "encoding"
	BackendEmbedding = "embedding"
)

// Config carries the per-backend thresholds and the shared detector
// setup. Values come from the environment; see internal/config.
type Config struct {
	Backend             string
	CascadeFile         string  // pigo cascade path; empty selects the texture heuristic
	HistogramThreshold  float64 // confidence ceiling, lower-is-better scale
	EncodingTolerance   float64 // Euclidean distance ceiling
	SimilarityThreshold float64 // cosine similarity floor
}

// NewMatcher constructs the configured backend over the given
// reference-image bucket. The matcher has process-scoped lifetime and is
// injected into the request layer; there is no ambient global instance.
func NewMatcher(cfg Config, b *bucket.Bucket, logger *slog.Logger) (Matcher, error) {
	detector, err := imaging.NewDetector(cfg.CascadeFile)
	if err != nil {
		return nil, fmt.Errorf("create face detector: %w", err)
	}

	switch cfg.Backend {
	case BackendHistogram:
		return newHistogramMatcher(b, detector, logger, cfg.HistogramThreshold), nil
	case BackendEncoding, "":
		return newEncodingMatcher(b, detector, logger, cfg.EncodingTolerance), nil
	case BackendEmbedding:
		return newEmbeddingMatcher(b, detector, logger, cfg.SimilarityThreshold), nil
	default:
		return nil, fmt.Errorf("unknown face backend: %s (supported: %s, %s, %s)",
			cfg.Backend, BackendHistogram, BackendEncoding, BackendEmbedding)
	}
}

func reject(reason domain.MatchReason, score float64) domain.MatchResult {
	return domain.MatchResult{Accepted: false, Score: score, Reason: reason}
}

// recoverGuard converts a panic inside Verify into a structured
// degraded-mode rejection. The pipeline must always receive a
// well-formed MatchResult.
func recoverGuard(logger *slog.Logger, res *domain.MatchResult) {
	if r := recover(); r != nil {
		logger.Error("face verification panic recovered", slog.Any("panic", r))
		*res = reject(domain.ReasonModelNotReady, 0)
	}
}
