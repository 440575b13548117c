// Package config resolves encoder settings from defaults, a YAML file and the environment.
package config

import (
	"fmt"
	"math"
	"os"
	"runtime"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/indexed/internal/colour"
)

// Environment variables read by WithEnv.
const (
	EnvTolerance        = "INDEXED_TOLERANCE"
	EnvAlphaThreshold   = "INDEXED_ALPHA_THRESHOLD"
	EnvWorkers          = "INDEXED_WORKERS"
	EnvMaxWorkingPixels = "INDEXED_MAX_WORKING_PIXELS"
	EnvCacheDir         = "INDEXED_CACHE_DIR"
)

const (
	// DefaultTolerance is the LAB distance below which pixels merge into one colour.
	DefaultTolerance = 5.0

	// DefaultAlphaThreshold is the alpha at or above which a pixel is encoded as opaque.
	DefaultAlphaThreshold = 0.8

	// DefaultMaxWorkingPixels caps the size of the copy the palette is generated from.
	DefaultMaxWorkingPixels = 256 * 256

	// MaxTolerance bounds the tolerance accepted from configuration.
	MaxTolerance = 100.0
)

// Config holds the settings shared by every command.
type Config struct {
	Tolerance        float64 `yaml:"tolerance"`
	AlphaThreshold   float64 `yaml:"alpha_threshold"`
	Workers          int     `yaml:"workers"`
	MaxWorkingPixels int     `yaml:"max_working_pixels"`
	PaletteSuffix    string  `yaml:"palette_suffix"`
	IndexedSuffix    string  `yaml:"indexed_suffix"`

	// CacheDir, when set, keeps downloaded URL sources so repeated runs reuse them.
	CacheDir string `yaml:"cache_dir"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Tolerance:        DefaultTolerance,
		AlphaThreshold:   DefaultAlphaThreshold,
		Workers:          runtime.GOMAXPROCS(0),
		MaxWorkingPixels: DefaultMaxWorkingPixels,
		PaletteSuffix:    "_palette",
		IndexedSuffix:    "_indexed",
	}
}

// Validate checks the configuration against the encoder's preconditions.
func (c Config) Validate() error {
	if math.IsNaN(c.Tolerance) || c.Tolerance < 0 || c.Tolerance > MaxTolerance {
		return fmt.Errorf("tolerance must be between 0 and %g, got %v: %w", MaxTolerance, c.Tolerance, colour.ErrInvalidTolerance)
	}
	if math.IsNaN(c.AlphaThreshold) || c.AlphaThreshold < 0 || c.AlphaThreshold > 1 {
		return fmt.Errorf("alpha threshold must be between 0 and 1, got %v: %w", c.AlphaThreshold, colour.ErrInvalidAlphaThreshold)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.MaxWorkingPixels < 1 {
		return fmt.Errorf("max working pixels must be at least 1, got %d", c.MaxWorkingPixels)
	}
	if c.PaletteSuffix == "" || c.IndexedSuffix == "" {
		return fmt.Errorf("output suffixes cannot be empty")
	}
	if c.PaletteSuffix == c.IndexedSuffix {
		return fmt.Errorf("palette and indexed suffixes must differ")
	}
	return nil
}

// Builder assembles a Config. Later sources override earlier ones:
// defaults, then the file, then the environment.
type Builder struct {
	filePath string
	useEnv   bool
	getenv   func(string) string
}

// NewBuilder creates a Builder starting from Default.
func NewBuilder() *Builder {
	return &Builder{getenv: os.Getenv}
}

// WithFile loads settings from a YAML file. An empty path is ignored.
func (b *Builder) WithFile(path string) *Builder {
	b.filePath = path
	return b
}

// WithEnv applies INDEXED_* environment variables.
func (b *Builder) WithEnv() *Builder {
	b.useEnv = true
	return b
}

// WithLookup replaces the environment lookup (useful for testing).
func (b *Builder) WithLookup(getenv func(string) string) *Builder {
	b.getenv = getenv
	return b
}

// Build resolves the configuration. It does not validate the result so flag
// overrides can be applied first.
func (b *Builder) Build() (Config, error) {
	cfg := Default()

	if b.filePath != "" {
		data, err := os.ReadFile(b.filePath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file %s: %w", b.filePath, err)
		}
	}

	if b.useEnv {
		if err := b.applyEnv(&cfg); err != nil {
			return cfg, err
		}
	}

	return cfg, nil
}

func (b *Builder) applyEnv(cfg *Config) error {
	if v := b.getenv(EnvTolerance); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvTolerance, err)
		}
		cfg.Tolerance = f
	}
	if v := b.getenv(EnvAlphaThreshold); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvAlphaThreshold, err)
		}
		cfg.AlphaThreshold = f
	}
	if v := b.getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvWorkers, err)
		}
		cfg.Workers = n
	}
	if v := b.getenv(EnvMaxWorkingPixels); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvMaxWorkingPixels, err)
		}
		cfg.MaxWorkingPixels = n
	}
	if v := b.getenv(EnvCacheDir); v != "" {
		cfg.CacheDir = v
	}
	return nil
}
