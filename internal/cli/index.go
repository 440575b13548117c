package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/indexed/internal/image"
)

// indexOptions holds the index command flags.
type indexOptions struct {
	encoderFlags
	palette string
	raw     rawOptions
}

// newIndexCmd creates the index command.
func newIndexCmd(root *rootOptions) *cobra.Command {
	opts := &indexOptions{}

	cmd := &cobra.Command{
		Use:   "index <image|directory>",
		Short: "Encode an image against an existing palette",
		Long: `Encode every pixel of an image as an index into an existing palette.

Each output byte stores the nearest palette slot in its low 7 bits. The high bit
is set when the pixel alpha is at or above the alpha threshold. The result is
written as an 8-bit greyscale PNG next to the source image.

The palette is read from <image>_palette.png unless --palette is given.

Examples:
  # Encode sprite.png using sprite_palette.png
  indexed index sprite.png

  # Share one palette across a directory of sprites
  indexed index --palette shared_palette.png sprites/

  # Also write an xz-compressed raw dump
  indexed index --raw --compress sprite.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(cmd, root, opts, args[0])
		},
	}

	addIndexFlags(cmd.Flags(), &opts.encoderFlags)
	cmd.Flags().StringVarP(&opts.palette, "palette", "p", "", "palette image path (default: <image>_palette.png)")
	addRawFlags(cmd.Flags(), &opts.raw)

	return cmd
}

// runIndex executes the index command.
func runIndex(cmd *cobra.Command, root *rootOptions, opts *indexOptions, path string) error {
	cfg, err := opts.resolve(cmd, root.cfg)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	s := newSession(cmd, root, cfg)
	sources, err := s.sources(path)
	if err != nil {
		return err
	}

	for _, source := range sources {
		palettePath := opts.palette
		if palettePath == "" {
			palettePath = s.palettePath(source)
		}
		palette, err := image.ReadPalette(palettePath)
		if err != nil {
			return fmt.Errorf("failed to read palette for %s: %w", source, err)
		}
		s.logger.Debug("palette loaded", "path", palettePath)

		buf, _, err := s.load(cmd.Context(), source)
		if err != nil {
			return err
		}
		indices, err := s.encode(cmd.Context(), buf, palette)
		if err != nil {
			return err
		}
		if err := s.writeIndexed(source, buf, indices, opts.raw); err != nil {
			return err
		}
	}

	return nil
}
