package image

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// WorkingCopy returns img unchanged when it has at most maxPixels pixels, otherwise a
// bilinear downscale preserving aspect ratio whose area does not exceed maxPixels.
func WorkingCopy(img image.Image, maxPixels int) image.Image {
	b := img.Bounds()
	area := b.Dx() * b.Dy()
	if maxPixels <= 0 || area <= maxPixels {
		return img
	}

	scale := math.Sqrt(float64(maxPixels) / float64(area))
	w := max(1, int(float64(b.Dx())*scale))
	h := max(1, int(float64(b.Dy())*scale))

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
