package colour

import (
	"cmp"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"slices"
)

const (
	// PaletteSize is the number of entries in every palette. Indices fit in 7 bits.
	PaletteSize = 128

	// PaletteWidth and PaletteHeight describe the conventional image layout of a palette.
	PaletteWidth  = 16
	PaletteHeight = 8
)

// Palette is an ordered, fixed-size set of representative colours.
// Entries are ordered by descending weight. Slots beyond Used() are left zero.
type Palette struct {
	Colors  [PaletteSize]color.RGBA
	Weights [PaletteSize]float64

	// Unique is the number of weighted colours the palette was built from.
	Unique int
}

// BuildPalette sorts weighted colours by descending weight and keeps the first PaletteSize.
// Equal weights keep their discovery order.
func BuildPalette(weighted []WeightedColor) *Palette {
	sorted := slices.Clone(weighted)
	slices.SortStableFunc(sorted, func(a, b WeightedColor) int {
		return cmp.Compare(b.Weight, a.Weight)
	})

	p := &Palette{Unique: len(weighted)}
	for i := range min(PaletteSize, len(sorted)) {
		p.Colors[i] = sorted[i].Color.ToRGBA()
		p.Weights[i] = sorted[i].Weight
	}
	return p
}

// NewPaletteFromColors wraps host colours, such as the pixels of a palette image.
// Exactly PaletteSize colours are required.
func NewPaletteFromColors(colors []color.Color) (*Palette, error) {
	if len(colors) != PaletteSize {
		return nil, fmt.Errorf("got %d colours: %w", len(colors), ErrPaletteSize)
	}
	p := &Palette{Unique: PaletteSize}
	for i, c := range colors {
		p.Colors[i] = color.RGBAModel.Convert(c).(color.RGBA)
	}
	return p, nil
}

// Len returns the number of slots in the palette, which is always PaletteSize.
func (p *Palette) Len() int {
	return PaletteSize
}

// Used returns the number of slots holding a generated colour.
func (p *Palette) Used() int {
	return min(PaletteSize, p.Unique)
}

// Degraded reports whether fewer colours than slots were found.
// Lowering the clustering tolerance usually yields more colours.
func (p *Palette) Degraded() bool {
	return p.Unique < PaletteSize
}

// LAB converts every slot, including unused ones, to LAB.
func (p *Palette) LAB() []LAB {
	out := make([]LAB, PaletteSize)
	for i, c := range p.Colors {
		out[i] = FromColor(c)
	}
	return out
}

// Image lays the palette out as an opaque PaletteWidth x PaletteHeight image, row-major.
func (p *Palette) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, PaletteWidth, PaletteHeight))
	for i, c := range p.Colors {
		img.SetNRGBA(i%PaletteWidth, i/PaletteWidth, color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255})
	}
	return img
}

// RGB represents a color in RGB format.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// String returns the RGB color as a string in the format "rgb(r, g, b)".
func (rgb RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", rgb.R, rgb.G, rgb.B)
}

// Hex returns the RGB color as a hex string (e.g., "#1a2b3c").
func (rgb RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", rgb.R, rgb.G, rgb.B)
}

// ToRGB converts a color.Color to RGB.
func ToRGB(c color.Color) RGB {
	r, g, b, _ := c.RGBA()
	// RGBA returns values in the range [0, 65535], convert to [0, 255]
	return RGB{
		R: uint8(r >> 8),
		G: uint8(g >> 8),
		B: uint8(b >> 8),
	}
}

// ToRGBSlice converts the palette colors to RGB structs.
func (p *Palette) ToRGBSlice() []RGB {
	rgbColors := make([]RGB, PaletteSize)
	for i, c := range p.Colors {
		rgbColors[i] = ToRGB(c)
	}
	return rgbColors
}

// ColorJSON represents a palette slot in JSON output format.
type ColorJSON struct {
	Index  int     `json:"index"`
	Hex    string  `json:"hex"`
	RGB    RGB     `json:"rgb"`
	Weight float64 `json:"weight,omitempty"`
}

// PaletteJSON represents the palette in JSON format.
type PaletteJSON struct {
	Count    int         `json:"count"`
	Unique   int         `json:"unique"`
	Degraded bool        `json:"degraded"`
	Colors   []ColorJSON `json:"colors"`
}

// ToJSON converts the palette to JSON format.
func (p *Palette) ToJSON() ([]byte, error) {
	colors := make([]ColorJSON, PaletteSize)
	for i, c := range p.Colors {
		rgb := ToRGB(c)
		colors[i] = ColorJSON{
			Index:  i,
			Hex:    rgb.Hex(),
			RGB:    rgb,
			Weight: p.Weights[i],
		}
	}

	return json.MarshalIndent(PaletteJSON{
		Count:    PaletteSize,
		Unique:   p.Unique,
		Degraded: p.Degraded(),
		Colors:   colors,
	}, "", "  ")
}

// String returns a human-readable listing of the generated slots.
func (p *Palette) String() string {
	used := p.Used()
	if used == 0 {
		return "Empty palette"
	}

	result := fmt.Sprintf("Palette with %d of %d slots used:\n", used, PaletteSize)
	for i := range used {
		rgb := ToRGB(p.Colors[i])
		result += fmt.Sprintf("  %3d: %s (%s) weight=%g\n", i, rgb.Hex(), rgb.String(), p.Weights[i])
	}
	return result
}

// Get returns the color at the specified index.
func (p *Palette) Get(index int) (color.RGBA, error) {
	if index < 0 || index >= PaletteSize {
		return color.RGBA{}, fmt.Errorf("index out of bounds: %d (palette has %d colors)", index, PaletteSize)
	}
	return p.Colors[index], nil
}
