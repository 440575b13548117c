package colour

import (
	"fmt"
	"math"
)

// VisibilityCutoff is the alpha a pixel must exceed to take part in clustering.
const VisibilityCutoff = 0.8

// WeightedColor is a running centroid of every source pixel merged into it.
// Weight starts at 1 and grows by exactly 1 per merge.
type WeightedColor struct {
	Color  LAB
	Weight float64
}

// Cluster reduces pixels to a set of weighted representative colours.
//
// Pixels at or below VisibilityCutoff alpha are ignored. The remaining pixels are
// visited in input order and merged into the first existing colour strictly closer
// than tolerance, otherwise they start a new colour. The first-match rule makes the
// result depend on pixel order: the same input in the same order always yields the
// same output, but a permuted input may not.
func Cluster(pixels []Pixel, tolerance float64, progress Progress) ([]WeightedColor, error) {
	if err := validateTolerance(tolerance); err != nil {
		return nil, err
	}
	progress = progressOrNop(progress)

	visible := make([]LAB, 0, len(pixels))
	for _, p := range pixels {
		if p.A > VisibilityCutoff {
			visible = append(visible, FromPixel(p))
		}
	}

	colours := make([]WeightedColor, 0)
	total := float64(len(visible))
	for i, c := range visible {
		merged := false
		for j := range colours {
			wc := &colours[j]
			if Distance(wc.Color, c) < tolerance {
				wc.Color = Lerp(wc.Color, c, 1/(wc.Weight+1))
				wc.Weight++
				merged = true
				break
			}
		}
		if !merged {
			colours = append(colours, WeightedColor{Color: c, Weight: 1})
		}
		progress.Report(StageClustering, float64(i+1)/total)
	}

	return colours, nil
}

func validateTolerance(tolerance float64) error {
	if math.IsNaN(tolerance) || tolerance < 0 {
		return fmt.Errorf("invalid tolerance %v: %w", tolerance, ErrInvalidTolerance)
	}
	return nil
}
