package colour

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats summarises how well an index buffer reproduces its source.
type Stats struct {
	// Pixels is the number of pixels measured.
	Pixels int `json:"pixels"`

	// Opaque is the number of pixels carrying the alpha flag.
	Opaque int `json:"opaque"`

	// SlotsUsed is the number of distinct palette slots referenced.
	SlotsUsed int `json:"slots_used"`

	// MeanError, StdDevError and MaxError describe the LAB distance between
	// each visible pixel and its palette colour.
	MeanError   float64 `json:"mean_error"`
	StdDevError float64 `json:"stddev_error"`
	MaxError    float64 `json:"max_error"`

	// Usage counts how many pixels reference each slot.
	Usage [PaletteSize]int `json:"-"`
}

// Measure compares source pixels with the palette colours selected by indices.
// Only pixels above VisibilityCutoff contribute to the error figures.
func Measure(pixels []Pixel, palette *Palette, indices []byte) (Stats, error) {
	if palette == nil {
		return Stats{}, ErrNilPalette
	}
	if len(pixels) != len(indices) {
		return Stats{}, fmt.Errorf("%d pixels and %d indices: %w", len(pixels), len(indices), ErrSizeMismatch)
	}

	s := Usage(indices)
	lab := palette.LAB()
	errs := make([]float64, 0, len(pixels))
	for i, p := range pixels {
		if p.A <= VisibilityCutoff {
			continue
		}
		errs = append(errs, Distance(FromPixel(p), lab[indices[i]&IndexMask]))
	}

	switch {
	case len(errs) == 1:
		s.MeanError, s.MaxError = errs[0], errs[0]
	case len(errs) > 1:
		s.MeanError, s.StdDevError = stat.MeanStdDev(errs, nil)
		s.MaxError = floats.Max(errs)
	}
	return s, nil
}

// Usage counts slot references and opaque pixels in an index buffer.
func Usage(indices []byte) Stats {
	s := Stats{Pixels: len(indices)}
	for _, b := range indices {
		s.Usage[b&IndexMask]++
		if b&AlphaFlag != 0 {
			s.Opaque++
		}
	}
	for _, n := range s.Usage {
		if n > 0 {
			s.SlotsUsed++
		}
	}
	return s
}

// String returns a short human-readable report.
func (s Stats) String() string {
	return fmt.Sprintf("pixels=%d opaque=%d slots=%d/%d error(mean=%.3f stddev=%.3f max=%.3f)",
		s.Pixels, s.Opaque, s.SlotsUsed, PaletteSize, s.MeanError, s.StdDevError, s.MaxError)
}
