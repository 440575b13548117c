package colour

import (
	"encoding/json"
	"errors"
	"image/color"
	"testing"
)

func weightedRun(n int) []WeightedColor {
	out := make([]WeightedColor, n)
	for i := range out {
		out[i] = WeightedColor{
			Color:  LAB{L: float64(i%100) + 0.5, A: float64(i%7) * 5, B: float64(i%11) * -4},
			Weight: float64(1 + i%5),
		}
	}
	return out
}

func TestBuildPaletteSize(t *testing.T) {
	tests := []struct {
		name     string
		count    int
		used     int
		degraded bool
	}{
		{name: "empty", count: 0, used: 0, degraded: true},
		{name: "single", count: 1, used: 1, degraded: true},
		{name: "exactly full", count: PaletteSize, used: PaletteSize, degraded: false},
		{name: "oversupplied", count: 200, used: PaletteSize, degraded: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := BuildPalette(weightedRun(tt.count))
			if p.Len() != PaletteSize || len(p.Colors) != PaletteSize {
				t.Errorf("Len() = %d, want %d", p.Len(), PaletteSize)
			}
			if p.Used() != tt.used {
				t.Errorf("Used() = %d, want %d", p.Used(), tt.used)
			}
			if p.Degraded() != tt.degraded {
				t.Errorf("Degraded() = %v, want %v", p.Degraded(), tt.degraded)
			}
			for i := tt.used; i < PaletteSize; i++ {
				if p.Colors[i] != (color.RGBA{}) {
					t.Fatalf("slot %d = %+v, want zero value", i, p.Colors[i])
				}
			}
		})
	}
}

func TestBuildPaletteOrder(t *testing.T) {
	weighted := []WeightedColor{
		{Color: FromPixel(red), Weight: 1},
		{Color: FromPixel(green), Weight: 3},
		{Color: FromPixel(blue), Weight: 1},
		{Color: FromPixel(white), Weight: 3},
	}

	p := BuildPalette(weighted)

	want := []color.RGBA{
		{R: 0, G: 255, B: 0, A: 255},
		{R: 255, G: 255, B: 255, A: 255},
		{R: 255, G: 0, B: 0, A: 255},
		{R: 0, G: 0, B: 255, A: 255},
	}
	for i, w := range want {
		if p.Colors[i] != w {
			t.Errorf("Colors[%d] = %+v, want %+v", i, p.Colors[i], w)
		}
	}
	if p.Weights[0] != 3 || p.Weights[3] != 1 {
		t.Errorf("Weights = %v, want descending", p.Weights[:4])
	}
	if weighted[0].Weight != 1 {
		t.Error("BuildPalette() reordered its input")
	}
}

func TestBuildPaletteFromClusteredRed(t *testing.T) {
	colours, err := Cluster([]Pixel{red, red, red, red}, 1.0, nil)
	if err != nil {
		t.Fatalf("Cluster() error = %v", err)
	}

	p := BuildPalette(colours)
	if p.Colors[0] != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("Colors[0] = %+v, want red", p.Colors[0])
	}
	for i := 1; i < PaletteSize; i++ {
		if p.Colors[i] != (color.RGBA{}) {
			t.Fatalf("Colors[%d] = %+v, want default", i, p.Colors[i])
		}
	}
}

func TestNewPaletteFromColors(t *testing.T) {
	tests := []struct {
		name    string
		count   int
		wantErr bool
	}{
		{name: "too few", count: 127, wantErr: true},
		{name: "exact", count: PaletteSize, wantErr: false},
		{name: "too many", count: 129, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			colors := make([]color.Color, tt.count)
			for i := range colors {
				colors[i] = color.RGBA{R: uint8(i), A: 255}
			}
			p, err := NewPaletteFromColors(colors)
			if tt.wantErr {
				if !errors.Is(err, ErrPaletteSize) {
					t.Errorf("NewPaletteFromColors() error = %v, want ErrPaletteSize", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewPaletteFromColors() error = %v", err)
			}
			if p.Colors[5].R != 5 {
				t.Errorf("Colors[5] = %+v, want R=5", p.Colors[5])
			}
		})
	}
}

func TestPaletteImage(t *testing.T) {
	p := BuildPalette([]WeightedColor{{Color: FromPixel(red), Weight: 1}})

	img := p.Image()
	if b := img.Bounds(); b.Dx() != PaletteWidth || b.Dy() != PaletteHeight {
		t.Fatalf("Image() bounds = %v, want %dx%d", b, PaletteWidth, PaletteHeight)
	}
	if got := img.NRGBAAt(0, 0); got != (color.NRGBA{R: 255, A: 255}) {
		t.Errorf("pixel (0,0) = %+v, want opaque red", got)
	}
	if got := img.NRGBAAt(PaletteWidth-1, PaletteHeight-1); got != (color.NRGBA{A: 255}) {
		t.Errorf("pixel (15,7) = %+v, want opaque black", got)
	}
}

func TestPaletteToJSON(t *testing.T) {
	p := BuildPalette([]WeightedColor{{Color: FromPixel(red), Weight: 4}})

	data, err := p.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	var got PaletteJSON
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.Count != PaletteSize || len(got.Colors) != PaletteSize {
		t.Errorf("Count = %d, colours = %d, want %d", got.Count, len(got.Colors), PaletteSize)
	}
	if !got.Degraded || got.Unique != 1 {
		t.Errorf("Degraded = %v, Unique = %d, want true, 1", got.Degraded, got.Unique)
	}
	if got.Colors[0].Hex != "#ff0000" || got.Colors[0].Weight != 4 {
		t.Errorf("Colors[0] = %+v, want #ff0000 weight 4", got.Colors[0])
	}
}

func TestPaletteGet(t *testing.T) {
	p := BuildPalette([]WeightedColor{{Color: FromPixel(blue), Weight: 1}})

	if _, err := p.Get(-1); err == nil {
		t.Error("Get(-1) expected error")
	}
	if _, err := p.Get(PaletteSize); err == nil {
		t.Error("Get(128) expected error")
	}
	c, err := p.Get(0)
	if err != nil {
		t.Fatalf("Get(0) error = %v", err)
	}
	if c != (color.RGBA{B: 255, A: 255}) {
		t.Errorf("Get(0) = %+v, want blue", c)
	}
}

func TestRGBHex(t *testing.T) {
	tests := []struct {
		name string
		rgb  RGB
		want string
	}{
		{name: "red", rgb: RGB{R: 255}, want: "#ff0000"},
		{name: "mixed", rgb: RGB{R: 0x1a, G: 0x2b, B: 0x3c}, want: "#1a2b3c"},
		{name: "black", rgb: RGB{}, want: "#000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rgb.Hex(); got != tt.want {
				t.Errorf("Hex() = %q, want %q", got, tt.want)
			}
		})
	}
}
