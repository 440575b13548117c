// Package image provides utilities for loading source images and converting them to pixel buffers.
package image

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format
	_ "image/jpeg" // Register JPEG format
	_ "image/png"  // Register PNG format
	"os"
	"path/filepath"
	"slices"
	"strings"

	_ "golang.org/x/image/webp" // Register WebP format

	"github.com/jmylchreest/indexed/internal/colour"
	"github.com/jmylchreest/indexed/internal/compression"
	"github.com/jmylchreest/indexed/internal/security"
	"github.com/jmylchreest/indexed/internal/util/imagecache"
	httputil "github.com/jmylchreest/indexed/internal/util/http"
)

// Loader handles loading images from various sources.
type Loader interface {
	// Load loads an image from the given path.
	Load(path string) (image.Image, error)
}

// FileLoader loads images from the local filesystem.
type FileLoader struct{}

// NewFileLoader creates a new FileLoader instance.
func NewFileLoader() *FileLoader {
	return &FileLoader{}
}

// Load loads an image from a file path.
// Supported formats: JPEG, PNG, GIF, WebP, optionally xz, gzip or bzip2 compressed.
func (l *FileLoader) Load(path string) (image.Image, error) {
	// Validate path.
	if path == "" {
		return nil, fmt.Errorf("image path cannot be empty")
	}

	// Check if file exists.
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("image file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to stat image file: %w", err)
	}

	// Check if it's a directory.
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}

	file, err := os.Open(path) // #nosec G304 - User-specified image path, intended to be read
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	r, err := compression.NewReader(path, file)
	if err != nil {
		return nil, err
	}

	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image (format: %s): %w", format, err)
	}

	return img, nil
}

// isURL reports whether path is an HTTP(S) URL.
func isURL(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

// ValidateImagePath checks if the given path is valid and points to a supported image file or directory.
// Supports local file paths, directories, and HTTP(S) URLs.
func ValidateImagePath(path string) error {
	if path == "" {
		return fmt.Errorf("image path cannot be empty")
	}

	// URLs are fetched later; avoid double-fetching.
	if isURL(path) {
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("image file or directory not found: %s", path)
		}
		return fmt.Errorf("failed to access image path: %w", err)
	}

	// Directories are scanned later.
	if info.IsDir() {
		return nil
	}

	file, err := os.Open(path) // #nosec G304 - User-specified image path, intended to be read
	if err != nil {
		return fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	r, err := compression.NewReader(path, file)
	if err != nil {
		return err
	}

	if _, _, err := image.DecodeConfig(r); err != nil {
		return fmt.Errorf("unsupported or invalid image format: %w", err)
	}

	return nil
}

// SupportedImageExtensions returns a list of supported image file extensions.
// Each may additionally carry a trailing compression extension.
func SupportedImageExtensions() []string {
	return []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}
}

// isImageFile checks if a file has a supported image extension.
func isImageFile(path string) bool {
	path = strings.ToLower(compression.Trim(path))
	return slices.Contains(SupportedImageExtensions(), filepath.Ext(path))
}

// ScanDirectoryForImages scans a directory and returns all valid image files in name order.
// It does not recurse into subdirectories, but follows symlinks. Files that look like
// outputs of a previous run (containing any of skipSuffixes before the extension) are skipped.
func ScanDirectoryForImages(dirPath string, skipSuffixes ...string) ([]string, error) {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var imageFiles []string
	for _, entry := range entries {
		fullPath := filepath.Join(dirPath, entry.Name())

		// For symlinks, stat the target to determine if it's a file.
		info, err := os.Stat(fullPath)
		if err != nil {
			// Skip entries we can't stat (broken symlinks, permission issues).
			continue
		}

		if info.IsDir() || !isImageFile(entry.Name()) {
			continue
		}

		base := stem(entry.Name())
		if slices.ContainsFunc(skipSuffixes, func(s string) bool { return s != "" && strings.HasSuffix(base, s) }) {
			continue
		}

		imageFiles = append(imageFiles, fullPath)
	}

	if len(imageFiles) == 0 {
		return nil, fmt.Errorf("no supported image files found in directory: %s", dirPath)
	}

	return imageFiles, nil
}

// ResolveImagePaths expands a path into the list of images to process.
// Directories yield every image they contain; files and URLs are returned as-is.
func ResolveImagePaths(path string, skipSuffixes ...string) ([]string, error) {
	if isURL(path) {
		return []string{path}, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to access path: %w", err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	return ScanDirectoryForImages(path, skipSuffixes...)
}

// SmartLoader loads images from both local files and HTTP(S) URLs.
type SmartLoader struct {
	fileLoader *FileLoader
	cache      *imagecache.Cache
}

// NewSmartLoader creates a new SmartLoader instance.
func NewSmartLoader() *SmartLoader {
	return &SmartLoader{
		fileLoader: NewFileLoader(),
	}
}

// WithCache stores downloaded images in cache and reuses them on later loads.
func (l *SmartLoader) WithCache(cache *imagecache.Cache) *SmartLoader {
	l.cache = cache
	return l
}

// Load loads an image from either a local file path or HTTP(S) URL.
func (l *SmartLoader) Load(path string) (image.Image, error) {
	return l.LoadContext(context.Background(), path)
}

// LoadContext is Load with a context bounding any download.
func (l *SmartLoader) LoadContext(ctx context.Context, path string) (image.Image, error) {
	if isURL(path) {
		return l.loadFromURL(ctx, path)
	}
	return l.fileLoader.Load(path)
}

// loadFromURL fetches and decodes an image from an HTTP(S) URL.
func (l *SmartLoader) loadFromURL(ctx context.Context, url string) (image.Image, error) {
	if l.cache != nil {
		path, err := l.cache.Get(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch image from URL: %w", err)
		}
		return l.fileLoader.Load(path)
	}

	if err := security.ValidateSourceURL(url); err != nil {
		return nil, err
	}
	data, err := httputil.Fetch(ctx, url, httputil.FetchOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image from URL: %w", err)
	}

	r, err := compression.NewReader(urlPath(url), bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image (format: %s): %w", format, err)
	}

	return img, nil
}

// urlPath strips any query or fragment from url.
func urlPath(url string) string {
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		return url[:i]
	}
	return url
}

// ToPixelBuffer converts an image to a row-major buffer of straight-alpha pixels.
func ToPixelBuffer(img image.Image) colour.PixelBuffer {
	b := img.Bounds()
	buf := colour.PixelBuffer{
		Width:  b.Dx(),
		Height: b.Dy(),
		Pix:    make([]colour.Pixel, 0, b.Dx()*b.Dy()),
	}

	if nrgba, ok := img.(*image.NRGBA); ok {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			row := nrgba.Pix[nrgba.PixOffset(b.Min.X, y):nrgba.PixOffset(b.Max.X, y)]
			for i := 0; i < len(row); i += 4 {
				buf.Pix = append(buf.Pix, colour.Pixel{
					R: float64(row[i]) / 255,
					G: float64(row[i+1]) / 255,
					B: float64(row[i+2]) / 255,
					A: float64(row[i+3]) / 255,
				})
			}
		}
		return buf
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			buf.Pix = append(buf.Pix, colour.PixelFromColor(img.At(x, y)))
		}
	}
	return buf
}
