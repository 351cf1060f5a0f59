// Package imaging holds the image plumbing shared by the face backends:
// decoding, grayscale conversion, resizing and face-region detection.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

// CropSize is the canonical square size every face crop is normalized to
// before feature extraction. Index-time and probe-time representations
// must go through the same normalization.
const CropSize = 128

// Decode decodes image bytes (jpeg, png, gif, bmp).
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// ToGray converts an image to 8-bit grayscale using the ITU-R BT.601
// luma formula.
func ToGray(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			luma := 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
			gray.SetGray(x-bounds.Min.X, y-bounds.Min.Y, stdGray(luma))
		}
	}
	return gray
}

// ResizeGray scales a grayscale image to the given dimensions.
func ResizeGray(g *image.Gray, width, height int) *image.Gray {
	dst := image.NewGray(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(dst, dst.Bounds(), g, g.Bounds(), draw.Over, nil)
	return dst
}

// CropResize crops the region from the grayscale image and normalizes it
// to the canonical crop size. The region is clamped to the image bounds.
func CropResize(g *image.Gray, region image.Rectangle) *image.Gray {
	region = region.Intersect(g.Bounds())
	if region.Empty() {
		return ResizeGray(g, CropSize, CropSize)
	}
	sub := g.SubImage(region).(*image.Gray)

	// SubImage shares pixels but keeps the parent's coordinate space;
	// re-anchor at the origin before scaling.
	crop := image.NewGray(image.Rect(0, 0, region.Dx(), region.Dy()))
	draw.Draw(crop, crop.Bounds(), sub, region.Min, draw.Src)
	return ResizeGray(crop, CropSize, CropSize)
}

func stdGray(luma float64) color.Gray {
	if luma < 0 {
		luma = 0
	}
	if luma > 255 {
		luma = 255
	}
	return color.Gray{Y: uint8(luma + 0.5)}
}
