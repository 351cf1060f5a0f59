package face

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusware/rollcall/internal/bucket"
	"github.com/campusware/rollcall/internal/domain"
	"github.com/campusware/rollcall/internal/imaging"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

// checker renders a checkerboard "identity" with per-image jitter, the
// synthetic stand-in for reference photos of one person.
func checker(cell int, seed int64) []byte {
	const size = 160
	g := image.NewGray(image.Rect(0, 0, size, size))
	rng := rand.New(rand.NewSource(seed))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			v := uint8(40)
			if ((x/cell)+(y/cell))%2 == 0 {
				v = 220
			}
			g.SetGray(x, y, color.Gray{Y: v + uint8(rng.Intn(12))})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, g); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// stripes renders a visually distinct second identity.
func stripes(band int, seed int64) []byte {
	const size = 160
	g := image.NewGray(image.Rect(0, 0, size, size))
	rng := rand.New(rand.NewSource(seed))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			v := uint8(40)
			if (x/band)%2 == 0 {
				v = 220
			}
			g.SetGray(x, y, color.Gray{Y: v + uint8(rng.Intn(12))})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, g); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func flatImage() []byte {
	g := image.NewGray(image.Rect(0, 0, 160, 160))
	for y := 0; y < 160; y++ {
		for x := 0; x < 160; x++ {
			g.SetGray(x, y, color.Gray{Y: 128})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, g); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func seedBucket(t *testing.T, images map[string][][]byte) *bucket.Bucket {
	t.Helper()
	root := t.TempDir()
	for id, imgs := range images {
		dir := filepath.Join(root, id)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		for i, data := range imgs {
			name := filepath.Join(dir, "ref"+string(rune('a'+i))+".png")
			require.NoError(t, os.WriteFile(name, data, 0o644))
		}
	}
	return bucket.New(root)
}

func twoIdentityBucket(t *testing.T) *bucket.Bucket {
	t.Helper()
	return seedBucket(t, map[string][][]byte{
		"ROLL07": {checker(8, 1), checker(8, 2)},
		"ROLL21": {stripes(32, 3), stripes(32, 4)},
	})
}

func allBackends(t *testing.T, b *bucket.Bucket) map[string]Matcher {
	t.Helper()
	d := &imaging.TextureDetector{}
	return map[string]Matcher{
		BackendHistogram: newHistogramMatcher(b, d, testLogger, 70),
		BackendEncoding:  newEncodingMatcher(b, d, testLogger, 0.6),
		BackendEmbedding: newEmbeddingMatcher(b, d, testLogger, 0.38),
	}
}

func TestMatcher_EmptyBucket(t *testing.T) {
	ctx := context.Background()
	for name, m := range allBackends(t, bucket.New(filepath.Join(t.TempDir(), "missing"))) {
		t.Run(name, func(t *testing.T) {
			assert.False(t, m.EnsureIndexed(ctx))
			assert.Empty(t, m.EnrolledIdentities(ctx))

			res := m.Verify(ctx, "ROLL07", checker(8, 9))
			assert.False(t, res.Accepted)
			assert.Equal(t, domain.ReasonIndexEmpty, res.Reason)

			st := m.Status(ctx)
			assert.False(t, st.Ready)
			assert.Zero(t, st.IndexCount)
		})
	}
}

func TestMatcher_VerifyOutcomes(t *testing.T) {
	ctx := context.Background()
	for name, m := range allBackends(t, twoIdentityBucket(t)) {
		t.Run(name, func(t *testing.T) {
			require.True(t, m.EnsureIndexed(ctx))
			assert.Equal(t, []string{"ROLL07", "ROLL21"}, m.EnrolledIdentities(ctx))

			t.Run("genuine probe accepted", func(t *testing.T) {
				res := m.Verify(ctx, "ROLL07", checker(8, 99))
				assert.True(t, res.Accepted, "score=%v reason=%s", res.Score, res.Reason)
				assert.Equal(t, domain.ReasonOK, res.Reason)
			})

			t.Run("impostor probe rejected with score", func(t *testing.T) {
				res := m.Verify(ctx, "ROLL07", stripes(32, 99))
				assert.False(t, res.Accepted)
				assert.Contains(t,
					[]domain.MatchReason{domain.ReasonLowSimilarity, domain.ReasonMismatch},
					res.Reason)
			})

			t.Run("unknown identity", func(t *testing.T) {
				res := m.Verify(ctx, "ROLL99", checker(8, 99))
				assert.Equal(t, domain.ReasonUnknownIdentity, res.Reason)
			})

			t.Run("invalid image", func(t *testing.T) {
				res := m.Verify(ctx, "ROLL07", []byte("not an image"))
				assert.Equal(t, domain.ReasonInvalidImage, res.Reason)
			})

			t.Run("no face detected", func(t *testing.T) {
				res := m.Verify(ctx, "ROLL07", flatImage())
				assert.Equal(t, domain.ReasonNoFaceDetected, res.Reason)
			})
		})
	}
}

func TestEncodingMatcher_SeparationAtDefaultTolerance(t *testing.T) {
	// Sweep many probe seeds so a single lucky render cannot hide a
	// distance scale that stopped discriminating between identities.
	ctx := context.Background()
	m := newEncodingMatcher(twoIdentityBucket(t), &imaging.TextureDetector{}, testLogger, 0.6)
	require.True(t, m.EnsureIndexed(ctx))

	for seed := int64(100); seed < 130; seed++ {
		genuine := m.Verify(ctx, "ROLL07", checker(8, seed))
		assert.True(t, genuine.Accepted, "seed=%d score=%v", seed, genuine.Score)

		impostor := m.Verify(ctx, "ROLL07", stripes(32, seed))
		assert.False(t, impostor.Accepted, "seed=%d score=%v", seed, impostor.Score)
		assert.Greater(t, impostor.Score, 0.6, "seed=%d", seed)
	}
}

func TestMatcher_IdentityWithoutUsableImages(t *testing.T) {
	// ROLL30's only reference is flat (no detectable region): absent
	// from the index, not an error.
	b := seedBucket(t, map[string][][]byte{
		"ROLL07": {checker(8, 1)},
		"ROLL30": {flatImage()},
	})
	ctx := context.Background()
	m := newEncodingMatcher(b, &imaging.TextureDetector{}, testLogger, 0.6)

	require.True(t, m.EnsureIndexed(ctx))
	assert.Equal(t, []string{"ROLL07"}, m.EnrolledIdentities(ctx))

	res := m.Verify(ctx, "ROLL30", checker(8, 9))
	assert.Equal(t, domain.ReasonUnknownIdentity, res.Reason)
}

func TestMatcher_ReloadPicksUpNewEnrollment(t *testing.T) {
	ctx := context.Background()
	b := seedBucket(t, map[string][][]byte{
		"ROLL07": {checker(8, 1), checker(8, 2)},
	})
	m := newEmbeddingMatcher(b, &imaging.TextureDetector{}, testLogger, 0.38)
	require.True(t, m.EnsureIndexed(ctx))
	assert.Equal(t, []string{"ROLL07"}, m.EnrolledIdentities(ctx))

	// Enroll a second identity after the first build.
	dir := filepath.Join(b.Root(), "ROLL21")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ref.png"), stripes(32, 3), 0o644))

	require.True(t, m.Reload(ctx))
	assert.Equal(t, []string{"ROLL07", "ROLL21"}, m.EnrolledIdentities(ctx))
}

func TestMatcher_ConcurrentVerifyAndReload(t *testing.T) {
	ctx := context.Background()
	m := newEncodingMatcher(twoIdentityBucket(t), &imaging.TextureDetector{}, testLogger, 0.6)
	require.True(t, m.EnsureIndexed(ctx))

	probe := checker(8, 50)
	valid := map[domain.MatchReason]bool{
		domain.ReasonOK:              true,
		domain.ReasonLowSimilarity:   true,
		domain.ReasonIndexEmpty:      true,
		domain.ReasonUnknownIdentity: true,
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				res := m.Verify(ctx, "ROLL07", probe)
				// Readers may land on either side of a swap but never
				// on a malformed result.
				assert.True(t, valid[res.Reason], "unexpected reason %s", res.Reason)
			}
		}()
	}
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				m.Reload(ctx)
			}
		}()
	}
	wg.Wait()
}

func TestNewMatcher_BackendSelection(t *testing.T) {
	b := bucket.New(t.TempDir())

	tests := []struct {
		backend string
		want    interface{}
		wantErr bool
	}{
		{backend: BackendHistogram, want: &HistogramMatcher{}},
		{backend: BackendEncoding, want: &EncodingMatcher{}},
		{backend: "", want: &EncodingMatcher{}},
		{backend: BackendEmbedding, want: &EmbeddingMatcher{}},
		{backend: "rekognition", wantErr: true},
	}

	for _, tt := range tests {
		t.Run("backend="+tt.backend, func(t *testing.T) {
			m, err := NewMatcher(Config{Backend: tt.backend}, b, testLogger)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, m)
		})
	}
}

func TestNewMatcher_MissingCascadeFile(t *testing.T) {
	_, err := NewMatcher(Config{
		Backend:     BackendEncoding,
		CascadeFile: filepath.Join(t.TempDir(), "absent.bin"),
	}, bucket.New(t.TempDir()), testLogger)
	assert.Error(t, err)
}

func TestMatcher_StatusParams(t *testing.T) {
	ctx := context.Background()
	for name, m := range allBackends(t, twoIdentityBucket(t)) {
		st := m.Status(ctx)
		assert.Equal(t, name, st.Backend)
		assert.True(t, st.Ready)
		assert.Equal(t, 2, st.IndexCount)
		assert.NotEmpty(t, st.Params)
	}
}
