package face

import (
	"context"
	"image"
	"log/slog"
	"sort"
	"sync/atomic"

	"github.com/campusware/rollcall/internal/bucket"
	"github.com/campusware/rollcall/internal/domain"
	"github.com/campusware/rollcall/internal/imaging"
)

// extractor maps a detected face crop to the backend's canonical
// feature vector.
type extractor func(crop *image.Gray) []float64

// enrollmentIndex is an immutable snapshot: identity -> feature vectors,
// plus the per-identity centroid the classifier backend trains on. A
// rebuild constructs a fresh instance and publishes it with one atomic
// pointer swap, so readers see either the old or the new index in full.
type enrollmentIndex struct {
	features  map[string][][]float64
	centroids map[string][]float64
}

func (idx *enrollmentIndex) empty() bool {
	return idx == nil || len(idx.features) == 0
}

func (idx *enrollmentIndex) identities() []string {
	if idx == nil {
		return nil
	}
	ids := make([]string, 0, len(idx.features))
	for id := range idx.features {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// indexer owns the shared build/probe plumbing. Each backend embeds one
// with its own extractor.
type indexer struct {
	bucket   *bucket.Bucket
	detector imaging.Detector
	extract  extractor
	logger   *slog.Logger

	current atomic.Pointer[enrollmentIndex]
}

func newIndexer(b *bucket.Bucket, d imaging.Detector, ex extractor, logger *slog.Logger) *indexer {
	return &indexer{bucket: b, detector: d, extract: ex, logger: logger}
}

// ensure returns a usable index, building one if none is published yet.
// An empty bucket produces an empty index that is re-scanned on the next
// call, so late enrollments are picked up without an explicit reload.
// Concurrent first-time builds may race; last writer wins and every
// result is internally consistent.
func (ix *indexer) ensure(ctx context.Context) *enrollmentIndex {
	if idx := ix.current.Load(); !idx.empty() {
		return idx
	}
	return ix.rebuild(ctx)
}

// rebuild scans the whole bucket, builds a fresh index and swaps it in.
func (ix *indexer) rebuild(ctx context.Context) *enrollmentIndex {
	idx := &enrollmentIndex{
		features:  make(map[string][][]float64),
		centroids: make(map[string][]float64),
	}

	ids, err := ix.bucket.Identities()
	if err != nil {
		// Degraded mode: publish the empty index, report not-ready.
		ix.logger.Error("enrollment index scan failed", slog.Any("error", err))
		ix.current.Store(idx)
		return idx
	}

	for _, id := range ids {
		if ctx.Err() != nil {
			ix.logger.Warn("index rebuild cancelled", slog.Any("error", ctx.Err()))
			break
		}
		feats := ix.indexIdentity(id)
		if len(feats) == 0 {
			// Zero usable references: absent from the index, not an error.
			continue
		}
		idx.features[id] = feats
		idx.centroids[id] = centroid(feats)
	}

	ix.current.Store(idx)
	ix.logger.Info("enrollment index rebuilt", slog.Int("identities", len(idx.features)))
	return idx
}

func (ix *indexer) indexIdentity(id string) [][]float64 {
	paths, err := ix.bucket.Images(id)
	if err != nil {
		ix.logger.Warn("skipping identity, listing failed",
			slog.String("identity", id), slog.Any("error", err))
		return nil
	}

	var feats [][]float64
	for _, path := range paths {
		data, err := ix.bucket.Read(path)
		if err != nil {
			ix.logger.Warn("skipping unreadable reference",
				slog.String("path", path), slog.Any("error", err))
			continue
		}
		feat, reason := ix.probeFeature(data)
		if reason != domain.ReasonOK {
			ix.logger.Debug("skipping reference image",
				slog.String("path", path), slog.String("reason", string(reason)))
			continue
		}
		feats = append(feats, feat)
	}
	return feats
}

// probeFeature runs the decode -> detect -> extract pipeline used both
// at index time and at verification time.
func (ix *indexer) probeFeature(data []byte) ([]float64, domain.MatchReason) {
	img, err := imaging.Decode(data)
	if err != nil {
		return nil, domain.ReasonInvalidImage
	}
	gray := imaging.ToGray(img)

	region, found := ix.detector.Largest(gray)
	if !found {
		return nil, domain.ReasonNoFaceDetected
	}

	crop := imaging.CropResize(gray, region)
	return ix.extract(crop), domain.ReasonOK
}

// snapshot returns the currently published index without building.
func (ix *indexer) snapshot() *enrollmentIndex {
	return ix.current.Load()
}

func centroid(feats [][]float64) []float64 {
	if len(feats) == 0 {
		return nil
	}
	c := make([]float64, len(feats[0]))
	for _, f := range feats {
		for i := range c {
			c[i] += f[i]
		}
	}
	for i := range c {
		c[i] /= float64(len(feats))
	}
	return c
}
