package imaging

import (
	"fmt"
	"image"
	"math"
	"os"

	pigo "github.com/esimov/pigo/core"
)

// Detector finds the most prominent face region in a grayscale image.
// When several candidates exist the largest bounding box wins.
type Detector interface {
	Largest(g *image.Gray) (image.Rectangle, bool)
}

// NewDetector returns a pigo-backed cascade detector when a cascade file
// is configured, or the texture heuristic otherwise. The heuristic keeps
// development and tests free of model files; production deployments
// should always point FACE_CASCADE_FILE at the pigo facefinder binary.
func NewDetector(cascadePath string) (Detector, error) {
	if cascadePath == "" {
		return &TextureDetector{}, nil
	}
	data, err := os.ReadFile(cascadePath)
	if err != nil {
		return nil, fmt.Errorf("read cascade file: %w", err)
	}
	classifier, err := pigo.NewPigo().Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("unpack cascade: %w", err)
	}
	return &cascadeDetector{classifier: classifier}, nil
}

// cascadeDetector wraps a pigo pixel-intensity-comparison cascade.
type cascadeDetector struct {
	classifier *pigo.Pigo
}

// minDetectionQuality rejects weak cascade hits; pigo documentation
// recommends treating Q below ~5 as noise.
const minDetectionQuality = 5.0

func (d *cascadeDetector) Largest(g *image.Gray) (image.Rectangle, bool) {
	bounds := g.Bounds()
	rows, cols := bounds.Dy(), bounds.Dx()
	if rows == 0 || cols == 0 {
		return image.Rectangle{}, false
	}

	params := pigo.CascadeParams{
		MinSize:     60,
		MaxSize:     max(rows, cols),
		ShiftFactor: 0.1,
		ScaleFactor: 1.1,
		ImageParams: pigo.ImageParams{
			Pixels: g.Pix,
			Rows:   rows,
			Cols:   cols,
			Dim:    g.Stride,
		},
	}

	dets := d.classifier.RunCascade(params, 0.0)
	dets = d.classifier.ClusterDetections(dets, 0.2)

	best := image.Rectangle{}
	found := false
	for _, det := range dets {
		if det.Q < minDetectionQuality {
			continue
		}
		half := det.Scale / 2
		r := image.Rect(det.Col-half, det.Row-half, det.Col+half, det.Row+half)
		if !found || area(r) > area(best) {
			best = r
			found = true
		}
	}
	return best, found
}

// TextureDetector is a model-free fallback. It slides square windows
// over the image and proposes the largest window whose local contrast
// clears a floor; flat frames (walls, covers, black images) yield no
// detection. It is a region proposer, not a face classifier.
type TextureDetector struct{}

// minWindowStddev is the contrast floor on the 0-255 intensity scale.
const minWindowStddev = 12.0

func (d *TextureDetector) Largest(g *image.Gray) (image.Rectangle, bool) {
	bounds := g.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w < 8 || h < 8 {
		return image.Rectangle{}, false
	}

	short := min(w, h)
	best := image.Rectangle{}
	found := false

	// Largest qualifying window wins, so scan big scales first.
	for _, frac := range []float64{0.9, 0.7, 0.5} {
		size := int(float64(short) * frac)
		if size < 8 {
			continue
		}
		step := max(size/8, 1)
		bestScore := 0.0
		var bestRect image.Rectangle
		for y := 0; y+size <= h; y += step {
			for x := 0; x+size <= w; x += step {
				r := image.Rect(x, y, x+size, y+size).Add(bounds.Min)
				score := stddev(g, r)
				if score > bestScore {
					bestScore = score
					bestRect = r
				}
			}
		}
		if bestScore >= minWindowStddev {
			best = bestRect
			found = true
			break
		}
	}
	return best, found
}

func stddev(g *image.Gray, r image.Rectangle) float64 {
	var sum, sumSq float64
	n := 0
	// Sample on a coarse grid; exact moments are not needed to rank
	// windows.
	step := max(r.Dx()/32, 1)
	for y := r.Min.Y; y < r.Max.Y; y += step {
		for x := r.Min.X; x < r.Max.X; x += step {
			v := float64(g.GrayAt(x, y).Y)
			sum += v
			sumSq += v * v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	mean := sum / float64(n)
	variance := sumSq/float64(n) - mean*mean
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance)
}

func area(r image.Rectangle) int {
	return r.Dx() * r.Dy()
}
