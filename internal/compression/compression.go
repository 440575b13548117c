// Package compression selects stream codecs for compressed image sources and index dumps
// by file extension.
package compression

import (
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/jmylchreest/indexed/internal/security"
)

// MaxDecompressedSize bounds how much a single compressed stream may expand to.
const MaxDecompressedSize = 512 * 1024 * 1024

// Recognised compression extensions.
const (
	ExtXz    = ".xz"
	ExtGzip  = ".gz"
	ExtBzip2 = ".bz2"
)

// Ext returns the compression extension of name in lower case, or "" when name is
// not compressed.
func Ext(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ExtXz, ExtGzip, ExtBzip2:
		return ext
	default:
		return ""
	}
}

// Trim removes a trailing compression extension from name.
func Trim(name string) string {
	return name[:len(name)-len(Ext(name))]
}

// NewReader wraps r in a decompressor chosen by the extension of name. Uncompressed
// names return r unchanged.
func NewReader(name string, r io.Reader) (io.Reader, error) {
	var dr io.Reader
	switch Ext(name) {
	case ExtXz:
		xzr, err := xz.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create xz reader: %w", err)
		}
		dr = xzr
	case ExtGzip:
		gzr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		dr = gzr
	case ExtBzip2:
		dr = bzip2.NewReader(r)
	default:
		return r, nil
	}
	return security.NewLimitedReader(dr, MaxDecompressedSize), nil
}

// nopCloser adapts a plain writer for uncompressed output.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// CanWrite reports whether NewWriter supports the compression named by name's
// extension, so callers can refuse before creating any output.
func CanWrite(name string) error {
	if Ext(name) == ExtBzip2 {
		return fmt.Errorf("writing %s is not supported", ExtBzip2)
	}
	return nil
}

// NewWriter wraps w in a compressor chosen by the extension of name. Closing the
// returned writer flushes the compressed stream but does not close w.
// Bzip2 has no encoder and is rejected.
func NewWriter(name string, w io.Writer) (io.WriteCloser, error) {
	switch Ext(name) {
	case ExtXz:
		xzw, err := xz.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("failed to create xz writer: %w", err)
		}
		return xzw, nil
	case ExtGzip:
		return gzip.NewWriter(w), nil
	case ExtBzip2:
		return nil, CanWrite(name)
	default:
		return nopCloser{w}, nil
	}
}
