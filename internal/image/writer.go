package image

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmylchreest/indexed/internal/colour"
	"github.com/jmylchreest/indexed/internal/compression"
)

// rawMagic prefixes raw index dumps.
var rawMagic = [4]byte{'I', 'D', 'X', '1'}

// maxRawPixels bounds the allocation made when reading a raw dump.
const maxRawPixels = 1 << 28

// OutputPath derives a sibling path of source: the source name without its
// extension (and without a trailing compression extension), plus suffix and ext.
// Sources given as URLs resolve to the working directory.
func OutputPath(source, suffix, ext string) string {
	if isURL(source) {
		return filepath.Join(".", stem(filepath.Base(urlPath(source)))+suffix+ext)
	}
	return filepath.Join(filepath.Dir(source), stem(filepath.Base(source))+suffix+ext)
}

// stem strips the image extension and an optional compression extension from name.
func stem(name string) string {
	name = compression.Trim(name)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// WritePNG encodes img to path.
func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path) // #nosec G304 - Output path derived from user input
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

// WritePalette writes the palette as a 16x8 opaque PNG.
func WritePalette(path string, p *colour.Palette) error {
	return WritePNG(path, p.Image())
}

// ReadPalette loads a 16x8 palette image. Any image holding exactly 128 pixels is accepted
// and read row-major.
func ReadPalette(path string) (*colour.Palette, error) {
	img, err := NewFileLoader().Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load palette: %w", err)
	}

	b := img.Bounds()
	colors := make([]color.Color, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			colors = append(colors, color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
		}
	}

	p, err := colour.NewPaletteFromColors(colors)
	if err != nil {
		return nil, fmt.Errorf("invalid palette image %s (%dx%d): %w", path, b.Dx(), b.Dy(), err)
	}
	return p, nil
}

// IndexedImage wraps an index buffer as a single-channel image.
func IndexedImage(width, height int, indices []byte) (*image.Gray, error) {
	if width < 0 || height < 0 || len(indices) != width*height {
		return nil, fmt.Errorf("%dx%d image with %d indices: %w", width, height, len(indices), colour.ErrSizeMismatch)
	}
	return &image.Gray{
		Pix:    indices,
		Stride: width,
		Rect:   image.Rect(0, 0, width, height),
	}, nil
}

// WriteIndexed writes the index buffer as an 8-bit greyscale PNG.
func WriteIndexed(path string, width, height int, indices []byte) error {
	img, err := IndexedImage(width, height, indices)
	if err != nil {
		return err
	}
	return WritePNG(path, img)
}

// ReadIndexed loads an index buffer from a greyscale PNG or a raw dump.
func ReadIndexed(path string) (width, height int, indices []byte, err error) {
	if isRawPath(path) {
		return ReadRaw(path)
	}

	img, err := NewFileLoader().Load(path)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("failed to load indexed image: %w", err)
	}

	b := img.Bounds()
	indices = make([]byte, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			indices = append(indices, color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y)
		}
	}
	return b.Dx(), b.Dy(), indices, nil
}

// isRawPath reports whether path names a raw index dump.
func isRawPath(path string) bool {
	return strings.EqualFold(filepath.Ext(compression.Trim(path)), ".bin")
}

// WriteRaw writes a raw index dump: magic, little-endian uint32 width and height, then
// one byte per pixel. Paths ending in .xz or .gz are compressed accordingly.
func WriteRaw(path string, width, height int, indices []byte) (err error) {
	if len(indices) != width*height {
		return fmt.Errorf("%dx%d image with %d indices: %w", width, height, len(indices), colour.ErrSizeMismatch)
	}
	if err := compression.CanWrite(path); err != nil {
		return err
	}

	f, err := os.Create(path) // #nosec G304 - Output path derived from user input
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(path)
		}
	}()

	cw, err := compression.NewWriter(path, f)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(cw)
	if err := writeRawTo(bw, width, height, indices); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := cw.Close(); err != nil {
		return fmt.Errorf("failed to finish compressed stream: %w", err)
	}
	return f.Close()
}

func writeRawTo(w io.Writer, width, height int, indices []byte) error {
	if _, err := w.Write(rawMagic[:]); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, [2]uint32{uint32(width), uint32(height)}); err != nil {
		return err
	}
	_, err := w.Write(indices)
	return err
}

// ReadRaw reads a dump written by WriteRaw.
func ReadRaw(path string) (width, height int, indices []byte, err error) {
	f, err := os.Open(path) // #nosec G304 - User-specified path, intended to be read
	if err != nil {
		return 0, 0, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r, err := compression.NewReader(path, f)
	if err != nil {
		return 0, 0, nil, err
	}
	return readRawFrom(bufio.NewReader(r))
}

func readRawFrom(r io.Reader) (width, height int, indices []byte, err error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return 0, 0, nil, fmt.Errorf("failed to read header: %w", err)
	}
	if magic != rawMagic {
		return 0, 0, nil, fmt.Errorf("not an index dump (magic %q)", magic[:])
	}

	var dims [2]uint32
	if err := binary.Read(r, binary.LittleEndian, &dims); err != nil {
		return 0, 0, nil, fmt.Errorf("failed to read dimensions: %w", err)
	}

	if uint64(dims[0])*uint64(dims[1]) > maxRawPixels {
		return 0, 0, nil, fmt.Errorf("index dump too large: %dx%d", dims[0], dims[1])
	}
	width, height = int(dims[0]), int(dims[1])
	indices = make([]byte, width*height)
	if _, err := io.ReadFull(r, indices); err != nil {
		return 0, 0, nil, fmt.Errorf("failed to read indices: %w", err)
	}
	return width, height, indices, nil
}
