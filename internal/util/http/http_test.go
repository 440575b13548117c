package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jmylchreest/indexed/internal/security"
)

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.Write([]byte(r.Header.Get("X-Test") + ":" + r.Header.Get("User-Agent")))
		case "/accept":
			w.Write([]byte(r.Header.Get("Accept")))
		case "/large":
			w.Write(bytes.Repeat([]byte{0xff}, 2048))
		case "/chunked":
			w.(http.Flusher).Flush()
			w.Write(bytes.Repeat([]byte{0xff}, 2048))
		case "/slow":
			time.Sleep(200 * time.Millisecond)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	t.Run("Headers", func(t *testing.T) {
		data, err := Fetch(context.Background(), srv.URL+"/ok", FetchOptions{
			Headers: map[string]string{"X-Test": "yes"},
		})
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if !strings.HasPrefix(string(data), "yes:"+UserAgentName+"/") {
			t.Errorf("Fetch() = %q, want custom header and user agent", data)
		}
	})

	t.Run("Accept", func(t *testing.T) {
		data, err := Fetch(context.Background(), srv.URL+"/accept", FetchOptions{})
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if string(data) != "image/*" {
			t.Errorf("Accept = %q, want image/*", data)
		}
	})

	t.Run("SizeLimit", func(t *testing.T) {
		tests := []struct {
			name     string
			path     string
			maxBytes int64
			wantErr  bool
		}{
			{name: "declared length over limit", path: "/large", maxBytes: 1024, wantErr: true},
			{name: "streamed body over limit", path: "/chunked", maxBytes: 1024, wantErr: true},
			{name: "exactly at limit", path: "/large", maxBytes: 2048},
			{name: "default limit", path: "/chunked"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				data, err := Fetch(context.Background(), srv.URL+tt.path, FetchOptions{MaxBytes: tt.maxBytes})
				if tt.wantErr {
					if !errors.Is(err, security.ErrSizeLimit) {
						t.Errorf("Fetch() error = %v, want ErrSizeLimit", err)
					}
					return
				}
				if err != nil {
					t.Fatalf("Fetch() error = %v", err)
				}
				if len(data) != 2048 {
					t.Errorf("Fetch() returned %d bytes, want 2048", len(data))
				}
			})
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := Fetch(context.Background(), srv.URL+"/missing", FetchOptions{})
		if err == nil || !strings.Contains(err.Error(), "404") {
			t.Errorf("Fetch() error = %v, want HTTP 404", err)
		}
	})

	t.Run("Timeout", func(t *testing.T) {
		if _, err := Fetch(context.Background(), srv.URL+"/slow", FetchOptions{Timeout: 20 * time.Millisecond}); err == nil {
			t.Error("Fetch() expected timeout error")
		}
	})

	t.Run("Cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := Fetch(ctx, srv.URL+"/ok", FetchOptions{}); err == nil {
			t.Error("Fetch() expected error for cancelled context")
		}
	})
}
