package source

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/siddheshzz/galileo/tile"
)

func init() {
	Register("mem", func(rawURL string) (Source, error) {
		_, name, _ := strings.Cut(rawURL, "://")
		return NewMem(name), nil
	})
}

// Mem is an in-memory tile source for tests and examples.
type Mem struct {
	name string

	mu    sync.RWMutex
	tiles map[tile.Coord][]byte
}

// NewMem creates an empty in-memory source.
func NewMem(name string) *Mem {
	if name == "" {
		name = "mem"
	}
	return &Mem{name: name, tiles: make(map[tile.Coord][]byte)}
}

// Name implements Source.
func (s *Mem) Name() string { return s.name }

// Put stores tile bytes at a coordinate, replacing any previous data.
func (s *Mem) Put(c tile.Coord, data []byte) {
	s.mu.Lock()
	s.tiles[c] = data
	s.mu.Unlock()
}

// Delete removes the tile at a coordinate.
func (s *Mem) Delete(c tile.Coord) {
	s.mu.Lock()
	delete(s.tiles, c)
	s.mu.Unlock()
}

// Len returns the number of stored tiles.
func (s *Mem) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tiles)
}

// Fetch implements Source.
func (s *Mem) Fetch(ctx context.Context, c tile.Coord) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	data, ok := s.tiles[c]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, c)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}
