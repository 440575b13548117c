package compression

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/jmylchreest/indexed/internal/security"
)

func TestExt(t *testing.T) {
	tests := []struct {
		name string
		want string
		trim string
	}{
		{"sprite.png", "", "sprite.png"},
		{"sprite.png.xz", ".xz", "sprite.png"},
		{"sprite.PNG.XZ", ".xz", "sprite.PNG"},
		{"dump.bin.gz", ".gz", "dump.bin"},
		{"dump.bin.bz2", ".bz2", "dump.bin"},
		{"archive.zip", "", "archive.zip"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Ext(tt.name); got != tt.want {
				t.Errorf("Ext() = %q, want %q", got, tt.want)
			}
			if got := Trim(tt.name); got != tt.trim {
				t.Errorf("Trim() = %q, want %q", got, tt.trim)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte("indexed "), 1024)

	for _, name := range []string{"plain.bin", "dump.bin.xz", "dump.bin.gz"} {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			w, err := NewWriter(name, &buf)
			if err != nil {
				t.Fatalf("NewWriter() error = %v", err)
			}
			if _, err := w.Write(payload); err != nil {
				t.Fatalf("Write() error = %v", err)
			}
			if err := w.Close(); err != nil {
				t.Fatalf("Close() error = %v", err)
			}

			r, err := NewReader(name, &buf)
			if err != nil {
				t.Fatalf("NewReader() error = %v", err)
			}
			got, err := io.ReadAll(r)
			if err != nil {
				t.Fatalf("ReadAll() error = %v", err)
			}
			if !bytes.Equal(got, payload) {
				t.Errorf("round trip returned %d bytes, want %d", len(got), len(payload))
			}
		})
	}
}

func TestNewWriterBzip2(t *testing.T) {
	if _, err := NewWriter("dump.bin.bz2", io.Discard); err == nil {
		t.Error("expected error writing bzip2")
	}
}

func TestCanWrite(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{name: "dump.bin"},
		{name: "dump.bin.gz"},
		{name: "dump.bin.xz"},
		{name: "dump.bin.bz2", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := CanWrite(tt.name); (err != nil) != tt.wantErr {
				t.Errorf("CanWrite() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewReaderInvalidStream(t *testing.T) {
	for _, name := range []string{"bad.xz", "bad.gz"} {
		t.Run(name, func(t *testing.T) {
			if _, err := NewReader(name, bytes.NewReader([]byte("not compressed"))); err == nil {
				t.Error("expected error for invalid stream header")
			}
		})
	}
}

func TestNewReaderLimited(t *testing.T) {
	r, err := NewReader("dump.bin.gz", gzipped(t, []byte("x")))
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}
	if _, ok := r.(*security.LimitedReader); !ok {
		t.Fatalf("NewReader() = %T, want *security.LimitedReader", r)
	}

	lr := r.(*security.LimitedReader)
	lr.Remaining = 0
	if _, err := lr.Read(make([]byte, 1)); !errors.Is(err, security.ErrSizeLimit) {
		t.Errorf("Read() error = %v, want ErrSizeLimit", err)
	}
}

func gzipped(t *testing.T, data []byte) io.Reader {
	t.Helper()
	var buf bytes.Buffer
	w, err := NewWriter("x.gz", &buf)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf
}
