package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jmylchreest/indexed/internal/config"
)

// encoderFlags are the settings that can override the resolved configuration.
type encoderFlags struct {
	tolerance      float64
	alphaThreshold float64
	workers        int
	maxPixels      int
}

func addToleranceFlags(fs *pflag.FlagSet, f *encoderFlags) {
	fs.Float64VarP(&f.tolerance, "tolerance", "t", config.DefaultTolerance, "maximum LAB distance for merging pixels into one colour (0-100)")
	fs.IntVar(&f.maxPixels, "max-pixels", config.DefaultMaxWorkingPixels, "downscale the source to at most this many pixels before building the palette")
}

func addIndexFlags(fs *pflag.FlagSet, f *encoderFlags) {
	fs.Float64VarP(&f.alphaThreshold, "alpha-threshold", "a", config.DefaultAlphaThreshold, "alpha at or above which a pixel is encoded as opaque (0-1)")
	fs.IntVarP(&f.workers, "workers", "w", 0, "goroutines used for indexing (default: number of CPUs)")
}

func addRawFlags(fs *pflag.FlagSet, raw *rawOptions) {
	fs.BoolVar(&raw.enabled, "raw", false, "also write the index bytes as <image>_indexed.bin")
	fs.BoolVar(&raw.compress, "compress", false, "xz-compress the raw dump (<image>_indexed.bin.xz)")
}

// resolve applies explicitly set flags on top of cfg and validates the result.
func (f *encoderFlags) resolve(cmd *cobra.Command, cfg config.Config) (config.Config, error) {
	flags := cmd.Flags()
	if flags.Changed("tolerance") {
		cfg.Tolerance = f.tolerance
	}
	if flags.Changed("max-pixels") {
		cfg.MaxWorkingPixels = f.maxPixels
	}
	if flags.Changed("alpha-threshold") {
		cfg.AlphaThreshold = f.alphaThreshold
	}
	if flags.Changed("workers") {
		cfg.Workers = f.workers
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
