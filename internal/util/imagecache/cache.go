// Package imagecache downloads remote source images once and serves later loads from disk.
package imagecache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/jmylchreest/indexed/internal/compression"
	"github.com/jmylchreest/indexed/internal/security"
	httputil "github.com/jmylchreest/indexed/internal/util/http"
)

// Cache stores downloaded images under Dir, keyed by URL.
type Cache struct {
	// Dir is the directory where images are cached.
	// If empty, DefaultCacheDir is used.
	Dir string

	// Refresh forces a new download even when a cached copy exists.
	Refresh bool

	// Fetch overrides the HTTP fetch options.
	Fetch httputil.FetchOptions
}

// DefaultCacheDir returns the default cache directory path.
func DefaultCacheDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		// Fallback to home directory if cache dir not available.
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to determine cache directory: %w", err)
		}
		return filepath.Join(home, ".cache", "indexed", "images"), nil
	}
	return filepath.Join(cacheDir, "indexed", "images"), nil
}

// Filename returns the deterministic cache file name for url: a hash of the URL plus
// the extension of its path, including a trailing compression extension.
func Filename(url string) string {
	hash := sha256.Sum256([]byte(url))
	name := fmt.Sprintf("%x", hash[:16])

	p := url
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	base := path.Base(p)
	comp := compression.Ext(base)
	ext := strings.ToLower(path.Ext(compression.Trim(base)))
	if ext == "" || len(ext) > 5 {
		ext = ".img"
	}
	return name + ext + comp
}

// Path returns where url is cached without downloading it.
func (c *Cache) Path(url string) (string, error) {
	dir := c.Dir
	if dir == "" {
		defaultDir, err := DefaultCacheDir()
		if err != nil {
			return "", err
		}
		dir = defaultDir
	}

	name := Filename(url)
	if err := security.ValidateCachePath(name, dir); err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// Get returns the local path of url, downloading it first when no cached copy exists.
func (c *Cache) Get(ctx context.Context, url string) (string, error) {
	if err := security.ValidateSourceURL(url); err != nil {
		return "", err
	}

	cachedPath, err := c.Path(url)
	if err != nil {
		return "", err
	}

	if !c.Refresh {
		if _, err := os.Stat(cachedPath); err == nil {
			return cachedPath, nil
		}
	}

	if err := os.MkdirAll(filepath.Dir(cachedPath), 0o755); err != nil { // #nosec G301 - Cache directory needs standard permissions
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}

	data, err := httputil.Fetch(ctx, url, c.Fetch)
	if err != nil {
		return "", fmt.Errorf("failed to download image: %w", err)
	}

	// Write then rename so a concurrent reader never sees a partial file.
	tmp, err := os.CreateTemp(filepath.Dir(cachedPath), ".download-*")
	if err != nil {
		return "", fmt.Errorf("failed to create cache file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write cached image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write cached image: %w", err)
	}
	if err := os.Rename(tmp.Name(), cachedPath); err != nil {
		return "", fmt.Errorf("failed to store cached image: %w", err)
	}

	return cachedPath, nil
}
