// Package tile defines tile addresses in the XYZ tiling scheme and the
// request identity used throughout the pipeline.
//
// A tile coordinate names one square of the quadtree that covers the world:
// zoom level z splits the world into 2^z by 2^z tiles, with x growing east
// and y growing south. Coordinates are validated at construction and never
// silently clamped; an address outside the grid is a caller bug, not a
// request for the nearest valid tile.
package tile

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

// MaxZoom is the deepest zoom level a Coord can address. Beyond this the
// per-axis tile index no longer fits comfortably in 32 bits together with
// the subpixel precision the renderer needs.
const MaxZoom = 30

// ErrInvalidCoord is returned by New for addresses outside the tile grid.
var ErrInvalidCoord = errors.New("tile: invalid coordinate")

// Coord addresses a single tile: zoom level Z with column X and row Y.
//
// The zero Coord is the single tile covering the whole world at zoom 0.
type Coord struct {
	Z uint32
	X uint32
	Y uint32
}

// New returns the coordinate (z, x, y), or ErrInvalidCoord when z exceeds
// MaxZoom or x or y lie outside the 2^z grid.
func New(z, x, y uint32) (Coord, error) {
	c := Coord{Z: z, X: x, Y: y}
	if !c.Valid() {
		return Coord{}, fmt.Errorf("%w: %d/%d/%d", ErrInvalidCoord, z, x, y)
	}
	return c, nil
}

// Valid reports whether the coordinate addresses a tile that exists:
// Z at most MaxZoom and both axes within the 2^Z grid.
func (c Coord) Valid() bool {
	return c.Z <= MaxZoom && c.X < 1<<c.Z && c.Y < 1<<c.Z
}

// String returns the coordinate in z/x/y form.
func (c Coord) String() string {
	return fmt.Sprintf("%d/%d/%d", c.Z, c.X, c.Y)
}

// Parent returns the coordinate one zoom level up that contains this tile.
// The second result is false at zoom 0, which has no parent.
func (c Coord) Parent() (Coord, bool) {
	if c.Z == 0 {
		return Coord{}, false
	}
	return Coord{Z: c.Z - 1, X: c.X >> 1, Y: c.Y >> 1}, true
}

// Ancestor returns the coordinate n levels up that contains this tile.
// Ancestor(0) returns the coordinate itself. The second result is false
// when fewer than n levels exist above this tile.
func (c Coord) Ancestor(n uint32) (Coord, bool) {
	if n > c.Z {
		return Coord{}, false
	}
	return Coord{Z: c.Z - n, X: c.X >> n, Y: c.Y >> n}, true
}

// Children returns the four tiles one zoom level down that this tile
// contains, in row-major order. Children of a MaxZoom tile do not exist;
// the caller is expected to stop descending at MaxZoom.
func (c Coord) Children() [4]Coord {
	z, x, y := c.Z+1, c.X<<1, c.Y<<1
	return [4]Coord{
		{Z: z, X: x, Y: y},
		{Z: z, X: x + 1, Y: y},
		{Z: z, X: x, Y: y + 1},
		{Z: z, X: x + 1, Y: y + 1},
	}
}

// Contains reports whether this tile contains the given descendant, that
// is, whether c is an ancestor of d or equal to it.
func (c Coord) Contains(d Coord) bool {
	if d.Z < c.Z {
		return false
	}
	shift := d.Z - c.Z
	return d.X>>shift == c.X && d.Y>>shift == c.Y
}

// Maptile converts the coordinate to orb's maptile.Tile.
func (c Coord) Maptile() maptile.Tile {
	return maptile.Tile{X: c.X, Y: c.Y, Z: maptile.Zoom(c.Z)}
}

// FromMaptile converts an orb maptile.Tile to a Coord.
func FromMaptile(t maptile.Tile) Coord {
	return Coord{Z: uint32(t.Z), X: t.X, Y: t.Y}
}

// Bound returns the geographic bounds of the tile in WGS84 degrees.
func (c Coord) Bound() orb.Bound {
	return c.Maptile().Bound()
}
