package colour

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

const (
	// AlphaFlag is the bit set in an index byte for opaque pixels.
	AlphaFlag = 0x80

	// IndexMask selects the palette index from an index byte.
	IndexMask = 0x7f
)

// PixelBuffer is a row-major image of Width*Height pixels.
type PixelBuffer struct {
	Width, Height int
	Pix           []Pixel
}

// Validate checks that the buffer holds exactly Width*Height pixels.
func (b PixelBuffer) Validate() error {
	if b.Width < 0 || b.Height < 0 || len(b.Pix) != b.Width*b.Height {
		return fmt.Errorf("%dx%d image with %d pixels: %w", b.Width, b.Height, len(b.Pix), ErrSizeMismatch)
	}
	return nil
}

type encodeOptions struct {
	progress Progress
	workers  int
}

// EncodeOption configures Encode.
type EncodeOption func(*encodeOptions)

// WithProgress reports indexing progress to p.
func WithProgress(p Progress) EncodeOption {
	return func(o *encodeOptions) {
		o.progress = p
	}
}

// WithWorkers splits the nearest-colour search across n goroutines.
// The output does not depend on n.
func WithWorkers(n int) EncodeOption {
	return func(o *encodeOptions) {
		o.workers = n
	}
}

// NearestIndex returns the index of the palette entry closest to c.
// Equal distances resolve to the lowest index.
func NearestIndex(palette []LAB, c LAB) uint8 {
	var best uint8
	dist := math.MaxFloat64
	for i, p := range palette {
		if d := Distance(p, c); d < dist {
			dist = d
			best = uint8(i)
		}
	}
	return best
}

// IndexByte packs a palette index and an opacity flag into one byte.
func IndexByte(index uint8, opaque bool) byte {
	b := index & IndexMask
	if opaque {
		b |= AlphaFlag
	}
	return b
}

// Encode maps every pixel to its nearest palette slot. Each output byte holds the
// slot index in its low 7 bits and AlphaFlag when the pixel alpha is at least
// alphaThreshold.
func Encode(pixels []Pixel, palette *Palette, alphaThreshold float64, opts ...EncodeOption) ([]byte, error) {
	if palette == nil {
		return nil, ErrNilPalette
	}
	if math.IsNaN(alphaThreshold) || alphaThreshold < 0 || alphaThreshold > 1 {
		return nil, fmt.Errorf("invalid alpha threshold %v: %w", alphaThreshold, ErrInvalidAlphaThreshold)
	}

	o := encodeOptions{workers: 1}
	for _, opt := range opts {
		opt(&o)
	}
	progress := progressOrNop(o.progress)
	workers := max(1, min(o.workers, len(pixels)))

	lab := palette.LAB()
	out := make([]byte, len(pixels))
	total := float64(len(pixels))
	var processed atomic.Int64

	// Workers report under mu and skip when it is held, so the reported
	// fraction only ever increases.
	var mu sync.Mutex
	var reported int64
	report := func(n int64) {
		if !mu.TryLock() {
			return
		}
		if n > reported {
			reported = n
			progress.Report(StageIndexing, float64(n)/total)
		}
		mu.Unlock()
	}

	chunk := (len(pixels) + workers - 1) / workers
	var g errgroup.Group
	for start := 0; start < len(pixels); start += chunk {
		end := min(start+chunk, len(pixels))
		g.Go(func() error {
			for i := start; i < end; i++ {
				p := pixels[i]
				out[i] = IndexByte(NearestIndex(lab, FromPixel(p)), p.A >= alphaThreshold)
				report(processed.Add(1))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if n := processed.Load(); n > reported {
		progress.Report(StageIndexing, float64(n)/total)
	}

	return out, nil
}

// EncodeBuffer validates the buffer dimensions and encodes its pixels.
func EncodeBuffer(buf PixelBuffer, palette *Palette, alphaThreshold float64, opts ...EncodeOption) ([]byte, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	return Encode(buf.Pix, palette, alphaThreshold, opts...)
}
