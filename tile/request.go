package tile

import "fmt"

// Request identifies one unit of pipeline work: a tile coordinate prepared
// under a specific style version.
//
// The pair is the deduplication identity everywhere downstream. Two
// requests for the same coordinate under different style versions are
// distinct work items with distinct cache entries; a style change therefore
// invalidates lazily, by key, rather than by walking the cache.
//
// Request is comparable and usable as a map key.
type Request struct {
	Coord        Coord
	StyleVersion string
}

// String returns the request in z/x/y@version form for logs.
func (r Request) String() string {
	if r.StyleVersion == "" {
		return r.Coord.String()
	}
	return fmt.Sprintf("%s@%s", r.Coord, r.StyleVersion)
}
