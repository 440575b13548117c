package colour

import (
	"fmt"
	"strings"
)

// ANSI escape codes for terminal colours.
const (
	ansiReset    = "\033[0m"
	ansiBgPrefix = "\033[48;2;"
	ansiSuffix   = "m"
	defaultWidth = 8
)

// ColourPreview returns an ANSI-coloured preview string for a colour.
// Width specifies how many characters wide the colour block should be.
func ColourPreview(c RGB, width int) string {
	if width <= 0 {
		width = defaultWidth
	}

	bgColour := fmt.Sprintf("%s%d;%d;%d%s", ansiBgPrefix, c.R, c.G, c.B, ansiSuffix)
	return bgColour + strings.Repeat(" ", width) + ansiReset
}

// FormatColourWithPreview formats a colour with its preview and hex code.
func FormatColourWithPreview(rgb RGB, width int) string {
	return fmt.Sprintf("%s %s", ColourPreview(rgb, width), rgb.Hex())
}

// PaletteGrid renders the palette as PaletteHeight rows of PaletteWidth blocks.
func PaletteGrid(p *Palette, width int) string {
	var sb strings.Builder
	for i, rgb := range p.ToRGBSlice() {
		sb.WriteString(ColourPreview(rgb, width))
		if (i+1)%PaletteWidth == 0 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
