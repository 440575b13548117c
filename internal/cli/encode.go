package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/indexed/internal/colour"
)

// encodeOptions holds the encode command flags.
type encodeOptions struct {
	encoderFlags
	raw   rawOptions
	stats bool
	json  bool
}

// newEncodeCmd creates the encode command.
func newEncodeCmd(root *rootOptions) *cobra.Command {
	opts := &encodeOptions{}

	cmd := &cobra.Command{
		Use:   "encode <image|directory>",
		Short: "Generate a palette and index image in one run",
		Long: `Generate a palette from an image and encode the image against it.

This is equivalent to running "indexed palette" followed by "indexed index" and
writes both <image>_palette.png and <image>_indexed.png.

Examples:
  # Encode a single sprite
  indexed encode sprite.png

  # Encode every image in a directory and report quantization error
  indexed encode --stats sprites/`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEncode(cmd, root, opts, args[0])
		},
	}

	addToleranceFlags(cmd.Flags(), &opts.encoderFlags)
	addIndexFlags(cmd.Flags(), &opts.encoderFlags)
	addRawFlags(cmd.Flags(), &opts.raw)
	cmd.Flags().BoolVar(&opts.stats, "stats", false, "print quantization statistics")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print statistics as JSON (implies --stats)")

	return cmd
}

// runEncode executes the encode command.
func runEncode(cmd *cobra.Command, root *rootOptions, opts *encodeOptions, path string) error {
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
		buf, sample, err := s.load(cmd.Context(), source)
		if err != nil {
			return err
		}
		result, err := s.quantize(cmd.Context(), sample, buf)
		if err != nil {
			return err
		}
		if _, err := s.writePalette(source, "", result.Palette); err != nil {
			return err
		}
		if err := s.writeIndexed(source, buf, result.Indices, opts.raw); err != nil {
			return err
		}

		if opts.stats || opts.json {
			stats, err := colour.Measure(buf.Pix, result.Palette, result.Indices)
			if err != nil {
				return fmt.Errorf("failed to measure %s: %w", source, err)
			}
			if err := printStats(cmd, source, stats, opts.json); err != nil {
				return err
			}
		}
	}

	return nil
}

// statsReport is the JSON form of a per-source statistics line.
type statsReport struct {
	Source string `json:"source"`
	colour.Stats
}

func printStats(cmd *cobra.Command, source string, stats colour.Stats, asJSON bool) error {
	out := cmd.OutOrStdout()
	if !asJSON {
		fmt.Fprintf(out, "%s: %s\n", source, stats)
		return nil
	}
	data, err := json.Marshal(statsReport{Source: source, Stats: stats})
	if err != nil {
		return fmt.Errorf("failed to marshal statistics: %w", err)
	}
	fmt.Fprintln(out, string(data))
	return nil
}
