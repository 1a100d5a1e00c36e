// Package source abstracts where raw vector tile bytes come from.
//
// A Source returns the undecoded bytes for a tile coordinate. The
// package ships an HTTP source for {z}/{x}/{y} templated servers, an
// MBTiles reader, and an in-memory source for tests. Custom schemes
// plug in through Register; Open dispatches a URL to the factory for
// its scheme:
//
//	src, err := source.Open("https://tiles.example.com/{z}/{x}/{y}.pbf")
//
// Sources are safe for concurrent use.
package source

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/siddheshzz/galileo/tile"
)

// ErrNotFound reports that the source has no tile at the requested
// coordinate. It is terminal: retrying will not produce the tile.
var ErrNotFound = errors.New("source: tile not found")

// ErrTimeout reports that a fetch attempt ran out of time. Wraps the
// underlying network or context error; retryable.
var ErrTimeout = errors.New("source: fetch timed out")

// Source fetches raw tile bytes.
type Source interface {
	// Name identifies the source in logs and attribution UIs.
	Name() string

	// Fetch returns the raw (decompressed) tile bytes for c. Missing
	// tiles return ErrNotFound. Fetch honors ctx cancellation and
	// deadlines; it is the abort point for in-flight tile work.
	Fetch(ctx context.Context, c tile.Coord) ([]byte, error)
}

// Attributer is implemented by sources that carry an attribution
// notice to display with the map.
type Attributer interface {
	Attribution() string
}

// Factory creates a source from the full URL passed to Open.
type Factory func(rawURL string) (Source, error)

var (
	registryMu sync.RWMutex
	factories  = make(map[string]Factory)
)

// Register installs a factory for a URL scheme, replacing any previous
// registration. Typically called from init in the implementing file.
func Register(scheme string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	factories[strings.ToLower(scheme)] = f
}

// Schemes returns the registered scheme names, sorted.
func Schemes() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open creates a source for rawURL based on its scheme. The URL is
// passed to the factory whole, so templated paths like
// https://host/{z}/{x}/{y}.pbf survive untouched.
func Open(rawURL string) (Source, error) {
	scheme, _, ok := strings.Cut(rawURL, "://")
	if !ok || scheme == "" {
		return nil, fmt.Errorf("source: %q has no scheme", rawURL)
	}

	registryMu.RLock()
	f, ok := factories[strings.ToLower(scheme)]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("source: unknown scheme %q", scheme)
	}
	return f(rawURL)
}
