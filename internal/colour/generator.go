package colour

import "fmt"

// GeneratePalette clusters the visible pixels and builds a palette from the result.
// A palette built from fewer than PaletteSize colours is still returned; check
// Palette.Degraded to decide whether to retry with a lower tolerance.
func GeneratePalette(pixels []Pixel, tolerance float64, progress Progress) (*Palette, error) {
	weighted, err := Cluster(pixels, tolerance, progress)
	if err != nil {
		return nil, fmt.Errorf("failed to cluster colours: %w", err)
	}
	return BuildPalette(weighted), nil
}

// Result holds both artefacts of a full quantization run.
type Result struct {
	Palette *Palette
	Indices []byte
}

// Quantize generates a palette from sample and then encodes source against it.
// The sample is usually a downscaled copy of source.
func Quantize(sample []Pixel, source PixelBuffer, tolerance, alphaThreshold float64, opts ...EncodeOption) (*Result, error) {
	o := encodeOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	palette, err := GeneratePalette(sample, tolerance, o.progress)
	if err != nil {
		return nil, err
	}

	indices, err := EncodeBuffer(source, palette, alphaThreshold, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &Result{Palette: palette, Indices: indices}, nil
}
