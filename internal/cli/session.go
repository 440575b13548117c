package cli

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/indexed/internal/colour"
	"github.com/jmylchreest/indexed/internal/config"
	"github.com/jmylchreest/indexed/internal/image"
	"github.com/jmylchreest/indexed/internal/util/imagecache"
)

// session carries the resolved settings and collaborators for one command run.
type session struct {
	cfg      config.Config
	logger   hclog.Logger
	loader   *image.SmartLoader
	tracker  *colour.Tracker
	progress *progressRenderer
}

func newSession(cmd *cobra.Command, opts *rootOptions, cfg config.Config) *session {
	loader := image.NewSmartLoader()
	if cfg.CacheDir != "" {
		loader.WithCache(&imagecache.Cache{Dir: cfg.CacheDir})
	}
	return &session{
		cfg:      cfg,
		logger:   opts.logger,
		loader:   loader,
		tracker:  colour.NewTracker(),
		progress: newProgressRenderer(cmd.ErrOrStderr(), opts.logger, opts.quiet),
	}
}

// sources validates path and expands directories into their images.
func (s *session) sources(path string) ([]string, error) {
	if err := image.ValidateImagePath(path); err != nil {
		return nil, fmt.Errorf("invalid image path: %w", err)
	}
	return image.ResolveImagePaths(path, s.cfg.PaletteSuffix, s.cfg.IndexedSuffix)
}

// load decodes a source image into a full-resolution pixel buffer and a
// working-copy sample for palette generation.
func (s *session) load(ctx context.Context, path string) (colour.PixelBuffer, []colour.Pixel, error) {
	s.logger.Debug("loading image", "path", path)
	img, err := s.loader.LoadContext(ctx, path)
	if err != nil {
		return colour.PixelBuffer{}, nil, fmt.Errorf("failed to load image: %w", err)
	}

	full := image.ToPixelBuffer(img)
	working := image.WorkingCopy(img, s.cfg.MaxWorkingPixels)
	sample := full.Pix
	if working.Bounds() != img.Bounds() {
		sample = image.ToPixelBuffer(working).Pix
		b := working.Bounds()
		s.logger.Debug("downscaled working copy", "width", b.Dx(), "height", b.Dy())
	}
	s.logger.Debug("image loaded", "width", full.Width, "height", full.Height)
	return full, sample, nil
}

// generatePalette clusters sample in the background and builds the palette.
func (s *session) generatePalette(ctx context.Context, sample []colour.Pixel) (*colour.Palette, error) {
	palette, err := runTracked(ctx, s.progress, s.tracker, func(context.Context) (*colour.Palette, error) {
		return colour.GeneratePalette(sample, s.cfg.Tolerance, s.tracker)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate palette: %w", err)
	}

	s.warnDegraded(palette)
	return palette, nil
}

func (s *session) warnDegraded(palette *colour.Palette) {
	if palette.Degraded() {
		s.logger.Warn("palette has fewer than 128 colours, tolerance could be lowered",
			"unique", palette.Unique, "tolerance", s.cfg.Tolerance)
	}
	s.logger.Debug("palette generated", "unique", palette.Unique, "used", palette.Used())
}

// encode indexes buf against palette in the background.
func (s *session) encode(ctx context.Context, buf colour.PixelBuffer, palette *colour.Palette) ([]byte, error) {
	indices, err := runTracked(ctx, s.progress, s.tracker, func(context.Context) ([]byte, error) {
		return colour.EncodeBuffer(buf, palette, s.cfg.AlphaThreshold,
			colour.WithProgress(s.tracker),
			colour.WithWorkers(s.cfg.Workers),
		)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return indices, nil
}

// quantize generates a palette from sample and encodes buf against it as one
// background task.
func (s *session) quantize(ctx context.Context, sample []colour.Pixel, buf colour.PixelBuffer) (*colour.Result, error) {
	result, err := runTracked(ctx, s.progress, s.tracker, func(context.Context) (*colour.Result, error) {
		return colour.Quantize(sample, buf, s.cfg.Tolerance, s.cfg.AlphaThreshold,
			colour.WithProgress(s.tracker),
			colour.WithWorkers(s.cfg.Workers),
		)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to quantize image: %w", err)
	}
	s.warnDegraded(result.Palette)
	return result, nil
}

// palettePath is where the palette of source is read from and written to.
func (s *session) palettePath(source string) string {
	return image.OutputPath(source, s.cfg.PaletteSuffix, ".png")
}

// writePalette stores the palette next to source unless override is set.
func (s *session) writePalette(source, override string, palette *colour.Palette) (string, error) {
	path := override
	if path == "" {
		path = s.palettePath(source)
	}
	if err := image.WritePalette(path, palette); err != nil {
		return "", fmt.Errorf("failed to write palette: %w", err)
	}
	s.logger.Info("palette written", "path", path, "colours", palette.Used())
	return path, nil
}

// rawOptions selects the optional raw index dump.
type rawOptions struct {
	enabled  bool
	compress bool
}

// writeIndexed stores the index image, and optionally a raw dump, next to source.
func (s *session) writeIndexed(source string, buf colour.PixelBuffer, indices []byte, raw rawOptions) error {
	path := image.OutputPath(source, s.cfg.IndexedSuffix, ".png")
	if err := image.WriteIndexed(path, buf.Width, buf.Height, indices); err != nil {
		return fmt.Errorf("failed to write indexed image: %w", err)
	}
	s.logger.Info("indexed image written", "path", path, "width", buf.Width, "height", buf.Height)

	if !raw.enabled {
		return nil
	}
	ext := ".bin"
	if raw.compress {
		ext += ".xz"
	}
	rawPath := image.OutputPath(source, s.cfg.IndexedSuffix, ext)
	if err := image.WriteRaw(rawPath, buf.Width, buf.Height, indices); err != nil {
		return fmt.Errorf("failed to write raw index dump: %w", err)
	}
	s.logger.Info("raw index dump written", "path", rawPath)
	return nil
}
