// Package cli provides the command-line interface for indexed.
package cli

import (
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/indexed/internal/config"
	"github.com/jmylchreest/indexed/internal/logging"
	"github.com/jmylchreest/indexed/internal/version"
)

// rootOptions holds state shared by every subcommand, resolved before each run.
type rootOptions struct {
	verbose    bool
	quiet      bool
	configPath string
	cacheDir   string

	logger hclog.Logger
	cfg    config.Config
}

// NewRootCmd builds the command tree. Each call returns an independent tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "indexed",
		Short: "Encode images as 128-colour palettes plus index maps",
		Long: `indexed converts full-colour sprites into a 128-entry perceptual colour
palette and a per-pixel index image for limited-colour rendering pipelines.

Each pixel of the index image stores a palette slot in its low 7 bits and a
1-bit alpha flag in its high bit. Palettes are written as 16x8 PNG images.`,
		Version:      version.Short(),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opts.logger = logging.New(logging.Options{
				Verbose: opts.verbose,
				Quiet:   opts.quiet,
				Output:  cmd.ErrOrStderr(),
			})

			cfg, err := config.NewBuilder().
				WithFile(opts.configPath).
				WithEnv().
				Build()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if cmd.Flags().Changed("cache-dir") {
				cfg.CacheDir = opts.cacheDir
			}
			opts.cfg = cfg
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&opts.cacheDir, "cache-dir", "", "keep downloaded URL sources in this directory")

	rootCmd.SetVersionTemplate(version.String() + "\n")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newPaletteCmd(opts))
	rootCmd.AddCommand(newIndexCmd(opts))
	rootCmd.AddCommand(newEncodeCmd(opts))
	rootCmd.AddCommand(newInspectCmd(opts))

	return rootCmd
}

// newVersionCmd creates the version command.
func newVersionCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including build date, commit hash, and Go version.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.GetInfo()
			if !asJSON {
				fmt.Fprintln(cmd.OutOrStdout(), info.String())
				return nil
			}
			data, err := json.MarshalIndent(info, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal version: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")

	return cmd
}
