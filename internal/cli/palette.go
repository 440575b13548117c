package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/indexed/internal/colour"
)

// paletteOptions holds the palette command flags.
type paletteOptions struct {
	encoderFlags
	output  string
	format  string
	preview bool
}

// newPaletteCmd creates the palette command.
func newPaletteCmd(root *rootOptions) *cobra.Command {
	opts := &paletteOptions{}

	cmd := &cobra.Command{
		Use:   "palette <image|directory>",
		Short: "Generate a 128-colour palette from an image",
		Long: `Generate a 128-colour perceptual palette from an image.

Pixels with alpha at or below 0.8 are ignored. The remaining pixels are merged
into weighted colours whenever they lie within the tolerance (a CIE L*a*b*
distance) of an existing colour. The 128 heaviest colours form the palette,
which is written as a 16x8 PNG next to the source image.

Large images are downscaled to at most --max-pixels pixels first.

Examples:
  # Write sprite_palette.png next to sprite.png
  indexed palette sprite.png

  # Use a lower tolerance to find more distinct colours
  indexed palette -t 2.5 sprite.png

  # Print the palette as JSON as well
  indexed palette --format json sprite.png

  # Show the palette grid in the terminal
  indexed palette --format grid sprite.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPalette(cmd, root, opts, args[0])
		},
	}

	addToleranceFlags(cmd.Flags(), &opts.encoderFlags)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "palette image path (default: <image>_palette.png)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "also print the palette (png, text, hex, rgb, json, grid)")
	cmd.Flags().BoolVar(&opts.preview, "preview", false, "show colour previews in terminal")

	return cmd
}

// runPalette executes the palette command.
func runPalette(cmd *cobra.Command, root *rootOptions, opts *paletteOptions, path string) error {
	cfg, err := opts.resolve(cmd, root.cfg)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := validateFormat(opts.format); err != nil {
		return err
	}

	s := newSession(cmd, root, cfg)
	sources, err := s.sources(path)
	if err != nil {
		return err
	}
	if opts.output != "" && len(sources) > 1 {
		return fmt.Errorf("--output cannot be used with %d source images", len(sources))
	}

	for _, source := range sources {
		_, sample, err := s.load(cmd.Context(), source)
		if err != nil {
			return err
		}
		palette, err := s.generatePalette(cmd.Context(), sample)
		if err != nil {
			return err
		}
		if _, err := s.writePalette(source, opts.output, palette); err != nil {
			return err
		}

		if printsPalette(opts.format) {
			out, err := formatPalette(palette, opts.format, opts.preview)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
		}
	}

	return nil
}

// validateFormat rejects unknown palette output formats before any work is done.
func validateFormat(format string) error {
	switch format {
	case "", "png", "text", "hex", "rgb", "json", "grid":
		return nil
	default:
		return fmt.Errorf("unsupported format: %s (supported: png, text, hex, rgb, json, grid)", format)
	}
}

// printsPalette reports whether format asks for more than the palette image.
func printsPalette(format string) bool {
	return format != "" && format != "png"
}

// formatPalette formats the palette according to the specified format.
func formatPalette(palette *colour.Palette, format string, showPreview bool) (string, error) {
	switch format {
	case "text":
		return palette.String(), nil
	case "hex":
		return formatHex(palette, showPreview), nil
	case "rgb":
		return formatRGB(palette, showPreview), nil
	case "json":
		jsonBytes, err := palette.ToJSON()
		if err != nil {
			return "", fmt.Errorf("failed to convert to JSON: %w", err)
		}
		return string(jsonBytes) + "\n", nil
	case "grid":
		return colour.PaletteGrid(palette, 2), nil
	default:
		return "", validateFormat(format)
	}
}

// formatHex formats the used palette slots as hex colour codes.
func formatHex(palette *colour.Palette, showPreview bool) string {
	var sb strings.Builder
	for _, rgb := range palette.ToRGBSlice()[:palette.Used()] {
		if showPreview {
			sb.WriteString(colour.FormatColourWithPreview(rgb, 8))
		} else {
			sb.WriteString(rgb.Hex())
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// formatRGB formats the used palette slots as RGB values.
func formatRGB(palette *colour.Palette, showPreview bool) string {
	var sb strings.Builder
	for _, rgb := range palette.ToRGBSlice()[:palette.Used()] {
		if showPreview {
			sb.WriteString(colour.ColourPreview(rgb, 8) + "  ")
		}
		sb.WriteString(rgb.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
