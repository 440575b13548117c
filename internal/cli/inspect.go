package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/indexed/internal/colour"
	"github.com/jmylchreest/indexed/internal/image"
)

// inspectOptions holds the inspect command flags.
type inspectOptions struct {
	palette string
	json    bool
	all     bool
}

// newInspectCmd creates the inspect command.
func newInspectCmd(root *rootOptions) *cobra.Command {
	opts := &inspectOptions{}

	cmd := &cobra.Command{
		Use:   "inspect <indexed.png|indexed.bin[.xz]>",
		Short: "Report palette slot usage of an index image",
		Long: `Decode an index image or raw index dump and report how often each palette
slot is referenced, along with alpha coverage.

Examples:
  # Summarise an index image
  indexed inspect sprite_indexed.png

  # Include palette colours in the report
  indexed inspect --palette sprite_palette.png sprite_indexed.bin.xz`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, root, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.palette, "palette", "p", "", "palette image used to show slot colours")
	cmd.Flags().BoolVar(&opts.json, "json", false, "output as JSON")
	cmd.Flags().BoolVar(&opts.all, "all", false, "list unused slots too")

	return cmd
}

// slotReport is one palette slot in the inspect output.
type slotReport struct {
	Slot   int    `json:"slot"`
	Pixels int    `json:"pixels"`
	Hex    string `json:"hex,omitempty"`
}

// inspectReport is the JSON form of the inspect output.
type inspectReport struct {
	Width     int          `json:"width"`
	Height    int          `json:"height"`
	Pixels    int          `json:"pixels"`
	Opaque    int          `json:"opaque"`
	SlotsUsed int          `json:"slots_used"`
	Slots     []slotReport `json:"slots"`
}

// runInspect executes the inspect command.
func runInspect(cmd *cobra.Command, root *rootOptions, opts *inspectOptions, path string) error {
	width, height, indices, err := image.ReadIndexed(path)
	if err != nil {
		return fmt.Errorf("failed to read index data: %w", err)
	}
	root.logger.Debug("index data loaded", "path", path, "width", width, "height", height)

	var palette *colour.Palette
	if opts.palette != "" {
		palette, err = image.ReadPalette(opts.palette)
		if err != nil {
			return fmt.Errorf("failed to read palette: %w", err)
		}
	}

	stats := colour.Usage(indices)
	report := inspectReport{
		Width:     width,
		Height:    height,
		Pixels:    stats.Pixels,
		Opaque:    stats.Opaque,
		SlotsUsed: stats.SlotsUsed,
	}
	for slot, n := range stats.Usage {
		if n == 0 && !opts.all {
			continue
		}
		sr := slotReport{Slot: slot, Pixels: n}
		if palette != nil {
			sr.Hex = colour.ToRGB(palette.Colors[slot]).Hex()
		}
		report.Slots = append(report.Slots, sr)
	}

	out := cmd.OutOrStdout()
	if opts.json {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	fmt.Fprintf(out, "%s: %dx%d, %d pixels, %d opaque (%.1f%%), %d/%d slots used\n\n",
		path, width, height, report.Pixels, report.Opaque,
		percent(report.Opaque, report.Pixels), report.SlotsUsed, colour.PaletteSize)

	headers := []string{"Slot", "Pixels", "Share"}
	if palette != nil {
		headers = append(headers, "Colour")
	}
	table := NewTable(headers)
	table.AlignRight(0)
	table.AlignRight(1)
	table.AlignRight(2)
	for _, sr := range report.Slots {
		table.AddRow(
			strconv.Itoa(sr.Slot),
			strconv.Itoa(sr.Pixels),
			fmt.Sprintf("%.1f%%", percent(sr.Pixels, report.Pixels)),
			sr.Hex,
		)
	}
	fmt.Fprint(out, table.Render())
	return nil
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) * 100 / float64(total)
}
