package face

import (
	"context"
	"log/slog"

	"github.com/campusware/rollcall/internal/bucket"
	"github.com/campusware/rollcall/internal/domain"
	"github.com/campusware/rollcall/internal/imaging"
)

// EmbeddingMatcher compares unit-normalized frequency-domain embeddings
// by cosine similarity to the nearest reference of the claimed identity.
// Higher is better; the probe passes when the maximum similarity reaches
// the threshold.
type EmbeddingMatcher struct {
	ix        *indexer
	threshold float64
}

func newEmbeddingMatcher(b *bucket.Bucket, d imaging.Detector, logger *slog.Logger, threshold float64) *EmbeddingMatcher {
	return &EmbeddingMatcher{
		ix:        newIndexer(b, d, imaging.DCTEmbedding, logger.With("backend", BackendEmbedding)),
		threshold: threshold,
	}
}

func (m *EmbeddingMatcher) EnsureIndexed(ctx context.Context) bool {
	return !m.ix.ensure(ctx).empty()
}

func (m *EmbeddingMatcher) Reload(ctx context.Context) bool {
	return !m.ix.rebuild(ctx).empty()
}

func (m *EmbeddingMatcher) EnrolledIdentities(ctx context.Context) []string {
	return m.ix.ensure(ctx).identities()
}

func (m *EmbeddingMatcher) Verify(ctx context.Context, identityID string, probe []byte) (res domain.MatchResult) {
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

	best := -1.0
	for _, ref := range refs {
		if s := imaging.CosineSimilarity(feat, ref); s > best {
			best = s
		}
	}
	if best >= m.threshold {
		return domain.MatchResult{Accepted: true, Score: best, Reason: domain.ReasonOK}
	}
	return reject(domain.ReasonLowSimilarity, best)
}

func (m *EmbeddingMatcher) Status(ctx context.Context) domain.EngineStatus {
	idx := m.ix.ensure(ctx)
	return domain.EngineStatus{
		Backend:    BackendEmbedding,
		Ready:      !idx.empty(),
		IndexCount: len(idx.identities()),
		Params:     map[string]float64{"similarity_threshold": m.threshold},
	}
}
