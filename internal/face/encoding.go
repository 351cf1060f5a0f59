package face

import (
	"context"
	"log/slog"
	"math"

	"github.com/campusware/rollcall/internal/bucket"
	"github.com/campusware/rollcall/internal/domain"
	"github.com/campusware/rollcall/internal/imaging"
)

// EncodingMatcher compares fixed-length grid encodings by Euclidean
// distance to the nearest reference of the claimed identity. Lower is
// better; the probe passes when the minimum distance stays within the
// tolerance.
type EncodingMatcher struct {
	ix        *indexer
	tolerance float64
}

func newEncodingMatcher(b *bucket.Bucket, d imaging.Detector, logger *slog.Logger, tolerance float64) *EncodingMatcher {
	return &EncodingMatcher{
		ix:        newIndexer(b, d, imaging.GridEncoding, logger.With("backend", BackendEncoding)),
		tolerance: tolerance,
	}
}

func (m *EncodingMatcher) EnsureIndexed(ctx context.Context) bool {
	return !m.ix.ensure(ctx).empty()
}

func (m *EncodingMatcher) Reload(ctx context.Context) bool {
	return !m.ix.rebuild(ctx).empty()
}

func (m *EncodingMatcher) EnrolledIdentities(ctx context.Context) []string {
	return m.ix.ensure(ctx).identities()
}

func (m *EncodingMatcher) Verify(ctx context.Context, identityID string, probe []byte) (res domain.MatchResult) {
	defer recoverGuard(m.ix.logger, &res)

	idx := m.ix.ensure(ctx)
	if idx.empty() {
		return reject(domain.ReasonIndexEmpty, 0)
	}
	refs, enrolled := idx.features[identityID]
	if !enrolled {
		return reject(domain.ReasonUnknownIdentity, 0)
	}

	feat, reason := m.ix.probeFeature(probe)
	if reason != domain.ReasonOK {
		return reject(reason, 0)
	}

	best := math.Inf(1)
	for _, ref := range refs {
		if d := imaging.EuclideanDistance(feat, ref); d < best {
			best = d
		}
	}
	if best <= m.tolerance {
		return domain.MatchResult{Accepted: true, Score: best, Reason: domain.ReasonOK}
	}
	return reject(domain.ReasonLowSimilarity, best)
}

func (m *EncodingMatcher) Status(ctx context.Context) domain.EngineStatus {
	idx := m.ix.ensure(ctx)
	return domain.EngineStatus{
		Backend:    BackendEncoding,
		Ready:      !idx.empty(),
		IndexCount: len(idx.identities()),
		Params:     map[string]float64{"tolerance": m.tolerance},
	}
}
