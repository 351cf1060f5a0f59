package face

import (
	"context"
	"log/slog"
	"math"

	"github.com/campusware/rollcall/internal/bucket"
	"github.com/campusware/rollcall/internal/domain"
	"github.com/campusware/rollcall/internal/imaging"
)

// confidenceScale maps the raw histogram distance (roughly 0..1.4 for
// L1-normalized block histograms) onto the 0..140 confidence scale the
// threshold is configured in, for continuity with LBPH-style tunings.
const confidenceScale = 100.0

// HistogramMatcher is the classifier-style backend: a rebuild trains a
// nearest-centroid model over block intensity histograms of every
// enrolled identity jointly. Verification predicts a label for the probe
// and reports a distance-like confidence where lower is better; the
// probe passes only when the predicted label matches the claimed
// identity and the confidence stays within the threshold.
type HistogramMatcher struct {
	ix        *indexer
	threshold float64
}

func newHistogramMatcher(b *bucket.Bucket, d imaging.Detector, logger *slog.Logger, threshold float64) *HistogramMatcher {
	return &HistogramMatcher{
		ix:        newIndexer(b, d, imaging.BlockHistogram, logger.With("backend", BackendHistogram)),
		threshold: threshold,
	}
}

func (m *HistogramMatcher) EnsureIndexed(ctx context.Context) bool {
	return !m.ix.ensure(ctx).empty()
}

func (m *HistogramMatcher) Reload(ctx context.Context) bool {
	return !m.ix.rebuild(ctx).empty()
}

func (m *HistogramMatcher) EnrolledIdentities(ctx context.Context) []string {
	return m.ix.ensure(ctx).identities()
}

func (m *HistogramMatcher) Verify(ctx context.Context, identityID string, probe []byte) (res domain.MatchResult) {
	defer recoverGuard(m.ix.logger, &res)

	idx := m.ix.ensure(ctx)
	if idx.empty() {
		return reject(domain.ReasonIndexEmpty, 0)
	}
	if _, enrolled := idx.features[identityID]; !enrolled {
		return reject(domain.ReasonUnknownIdentity, 0)
	}

	feat, reason := m.ix.probeFeature(probe)
	if reason != domain.ReasonOK {
		return reject(reason, 0)
	}

	// Predict against every identity's centroid, not just the claimed
	// one: an impostor whose probe sits closer to another identity must
	// be rejected even if it is within threshold of the claimed one.
	predicted := ""
	best := math.Inf(1)
	for id, c := range idx.centroids {
		if d := imaging.EuclideanDistance(feat, c); d < best {
			best = d
			predicted = id
		}
	}
	confidence := best * confidenceScale

	if predicted == identityID && confidence <= m.threshold {
		return domain.MatchResult{Accepted: true, Score: confidence, Reason: domain.ReasonOK}
	}
	return reject(domain.ReasonMismatch, confidence)
}

func (m *HistogramMatcher) Status(ctx context.Context) domain.EngineStatus {
	idx := m.ix.ensure(ctx)
	return domain.EngineStatus{
		Backend:    BackendHistogram,
		Ready:      !idx.empty(),
		IndexCount: len(idx.identities()),
		Params:     map[string]float64{"confidence_threshold": m.threshold},
	}
}
