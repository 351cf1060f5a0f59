package imaging

import (
	"image"
	"math"
)

// Feature extractors. Each one maps a canonical face crop to a fixed
// representation; a backend must use the same extractor at index time
// and at probe time or its thresholds are meaningless.

const (
	histogramGrid = 4  // 4x4 blocks
	histogramBins = 16 // intensity bins per block

	encodingGrid = 8 // 8x8 blocks, mean+stddev each -> 128 dims

	dctInput = 32 // DCT input size
	dctKeep  = 12 // top-left coefficient block kept, DC excluded
)

// BlockHistogram computes per-block intensity histograms over a grid of
// the crop. Each block's histogram is L1-normalized so the feature is
// robust to the crop's absolute brightness share.
func BlockHistogram(g *image.Gray) []float64 {
	crop := ResizeGray(g, CropSize, CropSize)
	feat := make([]float64, 0, histogramGrid*histogramGrid*histogramBins)
	block := CropSize / histogramGrid

	for by := 0; by < histogramGrid; by++ {
		for bx := 0; bx < histogramGrid; bx++ {
			hist := make([]float64, histogramBins)
			for y := by * block; y < (by+1)*block; y++ {
				for x := bx * block; x < (bx+1)*block; x++ {
					bin := int(crop.GrayAt(x, y).Y) * histogramBins / 256
					hist[bin]++
				}
			}
			total := float64(block * block)
			for i := range hist {
				hist[i] /= total
			}
			feat = append(feat, hist...)
		}
	}
	return feat
}

// GridEncoding computes a 128-dimensional encoding: mean and standard
// deviation of each block in an 8x8 grid, each scaled to [0,1]. The
// block statistics are compared raw, not unit-normalized: same-identity
// probes land near zero Euclidean distance while distinct identities
// land well above the configured tolerance.
func GridEncoding(g *image.Gray) []float64 {
	crop := ResizeGray(g, CropSize, CropSize)
	block := CropSize / encodingGrid
	feat := make([]float64, 0, encodingGrid*encodingGrid*2)

	for by := 0; by < encodingGrid; by++ {
		for bx := 0; bx < encodingGrid; bx++ {
			var sum, sumSq float64
			for y := by * block; y < (by+1)*block; y++ {
				for x := bx * block; x < (bx+1)*block; x++ {
					v := float64(crop.GrayAt(x, y).Y)
					sum += v
					sumSq += v * v
				}
			}
			n := float64(block * block)
			mean := sum / n
			variance := sumSq/n - mean*mean
			if variance < 0 {
				variance = 0
			}
			feat = append(feat, mean/255, math.Sqrt(variance)/255)
		}
	}
	return feat
}

// DCTEmbedding computes a frequency-domain embedding: the crop is scaled
// down, transformed with a 2D DCT-II, and the low-frequency coefficient
// block (DC excluded) is kept and unit-normalized. Low frequencies carry
// the coarse facial structure and shrug off pixel-level noise.
func DCTEmbedding(g *image.Gray) []float64 {
	small := ResizeGray(g, dctInput, dctInput)

	gray := make([][]float64, dctInput)
	for x := 0; x < dctInput; x++ {
		gray[x] = make([]float64, dctInput)
		for y := 0; y < dctInput; y++ {
			gray[x][y] = float64(small.GrayAt(x, y).Y)
		}
	}
	dct := dct2d(gray)

	feat := make([]float64, 0, dctKeep*dctKeep-1)
	for u := 0; u < dctKeep; u++ {
		for v := 0; v < dctKeep; v++ {
			if u == 0 && v == 0 {
				continue // DC carries only average brightness
			}
			feat = append(feat, dct[u][v])
		}
	}
	return Normalize(feat)
}

// dct2d computes a 2D DCT-II over a square matrix.
func dct2d(gray [][]float64) [][]float64 {
	size := len(gray)
	out := make([][]float64, size)
	for i := range out {
		out[i] = make([]float64, size)
	}

	cosTable := make([][]float64, size)
	for i := range cosTable {
		cosTable[i] = make([]float64, size)
		for j := 0; j < size; j++ {
			cosTable[i][j] = math.Cos(math.Pi * float64(i) * (2*float64(j) + 1) / (2 * float64(size)))
		}
	}

	for u := 0; u < size; u++ {
		for v := 0; v < size; v++ {
			var sum float64
			for x := 0; x < size; x++ {
				for y := 0; y < size; y++ {
					sum += gray[x][y] * cosTable[u][x] * cosTable[v][y]
				}
			}
			out[u][v] = sum
		}
	}
	return out
}

// EuclideanDistance returns the L2 distance between two vectors of equal
// length, or +Inf on a dimension mismatch.
func EuclideanDistance(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.Inf(1)
	}
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// CosineSimilarity returns the cosine of the angle between two vectors:
// -1.0 (opposite) to 1.0 (identical). Zero on mismatch or zero vectors.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Normalize scales a vector to unit length in place and returns it.
func Normalize(v []float64) []float64 {
	var norm float64
	for _, x := range v {
		norm += x * x
	}
	if norm == 0 {
		return v
	}
	norm = math.Sqrt(norm)
	for i := range v {
		v[i] /= norm
	}
	return v
}
