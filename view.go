package galileo

import (
	"math"
	"slices"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
	"github.com/paulmach/orb/maptile/tilecover"

	"github.com/siddheshzz/galileo/geom"
	"github.com/siddheshzz/galileo/render"
	"github.com/siddheshzz/galileo/tile"
)

// tileSizePx is the on-screen size of one tile at its own integer zoom.
// Stroke widths and other pixel-denominated style values are converted
// against the same 256px reference during tessellation, so a line keeps
// its width when the viewport scale matches the tile zoom.
const tileSizePx = 256.0

// coveragePad widens the covered bound by this fraction per side so
// tiles begin loading just before they scroll into view.
const coveragePad = 0.125

// View is a viewport over the map: a geographic center, a fractional
// zoom, a pixel size, and a bearing.
//
// View is a value; mutate a copy and hand it to Map.SetView. The zero
// View looks at the null island at zoom 0 with an empty screen.
type View struct {
	// Center is the lon/lat at the middle of the screen.
	Center orb.Point

	// Zoom is the fractional zoom level. At integer zoom z a tile of
	// that zoom is exactly 256 screen pixels wide.
	Zoom float64

	// Width and Height are the screen size in pixels.
	Width, Height int

	// Bearing rotates the map around the screen center, in degrees.
	// Positive values turn the map clockwise on screen.
	Bearing float64
}

// TileZoom returns the integer zoom level tiles are requested at:
// the floor of Zoom, clamped to the valid tile zoom range.
func (v View) TileZoom() uint32 {
	z := math.Floor(v.Zoom)
	if z < 0 {
		return 0
	}
	if z > tile.MaxZoom {
		return tile.MaxZoom
	}
	return uint32(z)
}

// Coverage returns the tiles needed to fill the viewport at TileZoom,
// in deterministic row-major order. The covered region is the
// rotation-aware screen bound padded by a fraction on every side.
func (v View) Coverage() []tile.Coord {
	if v.Width <= 0 || v.Height <= 0 {
		return nil
	}

	w := float64(v.Width)
	h := float64(v.Height)
	corners := [4][2]float64{{0, 0}, {w, 0}, {w, h}, {0, h}}

	first := v.ScreenToGeo(corners[0][0], corners[0][1])
	b := orb.Bound{Min: first, Max: first}
	for _, c := range corners[1:] {
		b = b.Extend(v.ScreenToGeo(c[0], c[1]))
	}
	b = clampToWorld(geom.PadBound(b, coveragePad))

	tz := v.TileZoom()
	set, err := tilecover.Geometry(b, maptile.Zoom(tz))
	if err != nil {
		// A bound cannot fail to cover; keep the map usable anyway.
		center := maptile.At(v.Center, maptile.Zoom(tz))
		set = maptile.Set{center: true}
	}

	coords := make([]tile.Coord, 0, len(set))
	for t := range set {
		c := tile.Coord{Z: uint32(t.Z), X: t.X, Y: t.Y}
		if c.Valid() {
			coords = append(coords, c)
		}
	}
	slices.SortFunc(coords, func(a, b tile.Coord) int {
		if a.Y != b.Y {
			return int(a.Y) - int(b.Y)
		}
		return int(a.X) - int(b.X)
	})
	return coords
}

// ScreenToGeo converts a screen pixel position to lon/lat.
func (v View) ScreenToGeo(x, y float64) orb.Point {
	c := geom.TilePoint(v.Center, v.Zoom)
	dx := x - float64(v.Width)/2
	dy := y - float64(v.Height)/2
	sin, cos := math.Sincos(-v.Bearing * math.Pi / 180)
	rx := dx*cos - dy*sin
	ry := dx*sin + dy*cos
	return geom.LonLat(orb.Point{c[0] + rx/tileSizePx, c[1] + ry/tileSizePx}, v.Zoom)
}

// GeoToScreen converts lon/lat to a screen pixel position. Points
// outside the viewport yield coordinates outside the screen rectangle.
func (v View) GeoToScreen(ll orb.Point) (x, y float64) {
	c := geom.TilePoint(v.Center, v.Zoom)
	p := geom.TilePoint(ll, v.Zoom)
	dx := (p[0] - c[0]) * tileSizePx
	dy := (p[1] - c[1]) * tileSizePx
	sin, cos := math.Sincos(v.Bearing * math.Pi / 180)
	rx := dx*cos - dy*sin
	ry := dx*sin + dy*cos
	return rx + float64(v.Width)/2, ry + float64(v.Height)/2
}

// TileTransform returns the transform mapping a tile's local unit square
// to screen pixels under this view. It handles tiles of any zoom, so a
// cached ancestor standing in for a missing tile is scaled across the
// area its descendants would cover.
func (v View) TileTransform(c tile.Coord) render.Transform {
	// Tile side length and origin in fractional-zoom world units.
	k := math.Exp2(v.Zoom - float64(c.Z))
	ox := float64(c.X) * k
	oy := float64(c.Y) * k
	ctr := geom.TilePoint(v.Center, v.Zoom)

	t := render.Translate(float32(v.Width)/2, float32(v.Height)/2)
	if v.Bearing != 0 {
		t = t.Mul(render.Rotate(float32(v.Bearing * math.Pi / 180)))
	}
	t = t.Mul(render.Scale(tileSizePx, tileSizePx))
	t = t.Mul(render.Translate(float32(ox-ctr[0]), float32(oy-ctr[1])))
	return t.Mul(render.Scale(float32(k), float32(k)))
}

func clampToWorld(b orb.Bound) orb.Bound {
	b.Min[0] = max(b.Min[0], -180)
	b.Min[1] = max(b.Min[1], -geom.MaxLatitude)
	b.Max[0] = min(b.Max[0], 180)
	b.Max[1] = min(b.Max[1], geom.MaxLatitude)
	return b
}
