// Package colour implements perceptual palette generation and indexed colour encoding.
package colour

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// labScale maps go-colorful's normalised Lab (L in [0,1]) onto the CIE L*a*b* range
// (L in [0,100]) so tolerances are expressed in ΔE units.
const labScale = 100.0

// Pixel is a non-premultiplied RGBA sample with channels in [0,1].
type Pixel struct {
	R, G, B, A float64
}

// PixelFromColor converts any color.Color into a non-premultiplied Pixel.
// Straight-alpha colours keep their RGB channels even when fully transparent.
func PixelFromColor(c color.Color) Pixel {
	var n color.NRGBA64
	switch v := c.(type) {
	case color.NRGBA:
		n = color.NRGBA64{R: uint16(v.R) * 0x101, G: uint16(v.G) * 0x101, B: uint16(v.B) * 0x101, A: uint16(v.A) * 0x101}
	default:
		n = color.NRGBA64Model.Convert(c).(color.NRGBA64)
	}
	return Pixel{
		R: float64(n.R) / 0xffff,
		G: float64(n.G) / 0xffff,
		B: float64(n.B) / 0xffff,
		A: float64(n.A) / 0xffff,
	}
}

// LAB is a colour in CIE L*a*b* space (D65 white point).
type LAB struct {
	L, A, B float64
}

// FromPixel converts the RGB channels of an sRGB pixel to LAB. Alpha is ignored.
func FromPixel(p Pixel) LAB {
	l, a, b := colorful.Color{R: p.R, G: p.G, B: p.B}.Lab()
	return LAB{L: l * labScale, A: a * labScale, B: b * labScale}
}

// FromColor converts a host colour to LAB, ignoring alpha.
func FromColor(c color.Color) LAB {
	return FromPixel(PixelFromColor(c))
}

// Distance returns the Euclidean (CIE76) distance between two colours.
func Distance(a, b LAB) float64 {
	dl := a.L - b.L
	da := a.A - b.A
	db := a.B - b.B
	return math.Sqrt(dl*dl + da*da + db*db)
}

// Lerp interpolates componentwise from a (t=0) to b (t=1).
func Lerp(a, b LAB, t float64) LAB {
	return LAB{
		L: a.L + (b.L-a.L)*t,
		A: a.A + (b.A-a.A)*t,
		B: a.B + (b.B-a.B)*t,
	}
}

// ToRGBA converts the colour back to an opaque sRGB colour, clamped to gamut.
func (c LAB) ToRGBA() color.RGBA {
	col := colorful.Lab(c.L/labScale, c.A/labScale, c.B/labScale).Clamped()
	r, g, b := col.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
