package source

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/siddheshzz/galileo/tile"
)

func TestHTTPTemplateSubstitution(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte{0x1a, 0x02})
	}))
	defer srv.Close()

	src := NewHTTP("osm", srv.URL+"/tiles/{z}/{x}/{y}.pbf")
	data, err := src.Fetch(context.Background(), tile.Coord{Z: 14, X: 8185, Y: 5447})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if gotPath != "/tiles/14/8185/5447.pbf" {
		t.Errorf("request path = %q", gotPath)
	}
	if !bytes.Equal(data, []byte{0x1a, 0x02}) {
		t.Errorf("body = %x", data)
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		wantNotFound bool
	}{
		{"404 means no tile", http.StatusNotFound, true},
		{"204 means no tile", http.StatusNoContent, true},
		{"500 is a real error", http.StatusInternalServerError, false},
		{"403 is a real error", http.StatusForbidden, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			src := NewHTTP("", srv.URL+"/{z}/{x}/{y}")
			_, err := src.Fetch(context.Background(), tile.Coord{})
			if err == nil {
				t.Fatal("Fetch returned no error")
			}
			if got := errors.Is(err, ErrNotFound); got != tt.wantNotFound {
				t.Errorf("errors.Is(err, ErrNotFound) = %v, want %v (err: %v)", got, tt.wantNotFound, err)
			}
		})
	}
}

func TestHTTPEmptyBodyIsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	src := NewHTTP("", srv.URL+"/{z}/{x}/{y}")
	if _, err := src.Fetch(context.Background(), tile.Coord{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestHTTPInflatesGzipBody(t *testing.T) {
	payload := []byte("vector tile bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Some tile servers store gzip'd blobs and serve them without
		// Content-Encoding, so the transport does not decode them.
		w.Write(gzipBytes(t, payload))
	}))
	defer srv.Close()

	src := NewHTTP("", srv.URL+"/{z}/{x}/{y}")
	data, err := src.Fetch(context.Background(), tile.Coord{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Errorf("body = %q, want %q", data, payload)
	}
}

func TestHTTPContextDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()

	src := NewHTTP("", srv.URL+"/{z}/{x}/{y}")
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := src.Fetch(ctx, tile.Coord{}); !errors.Is(err, ErrTimeout) {
		t.Errorf("err = %v, want ErrTimeout", err)
	}
}

func TestHTTPDefaultName(t *testing.T) {
	src := NewHTTP("", "https://tiles.example.com/{z}/{x}/{y}.mvt")
	if src.Name() != "tiles.example.com" {
		t.Errorf("Name = %q, want host", src.Name())
	}
}

func TestHTTPOpenViaRegistry(t *testing.T) {
	src, err := Open("https://tiles.example.com/{z}/{x}/{y}.mvt")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	h, ok := src.(*HTTP)
	if !ok {
		t.Fatalf("Open returned %T, want *HTTP", src)
	}
	if got := h.URL(tile.Coord{Z: 1, X: 0, Y: 1}); got != "https://tiles.example.com/1/0/1.mvt" {
		t.Errorf("URL = %q", got)
	}
}
