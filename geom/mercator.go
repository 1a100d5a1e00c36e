package geom

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

// MaxLatitude is the northern edge of the web mercator square. The
// projection diverges beyond it; latitudes outside the range are clamped.
const MaxLatitude = 85.05112877980659

// TilePoint projects a lon/lat point to fractional tile coordinates at
// the given zoom: the integer parts address a tile, the fractions the
// position inside it. Zoom may be fractional.
func TilePoint(ll orb.Point, zoom float64) orb.Point {
	lat := min(max(ll[1], -MaxLatitude), MaxLatitude)
	f := maptile.Fraction(orb.Point{ll[0], lat}, 0)
	n := math.Exp2(zoom)
	return orb.Point{f[0] * n, f[1] * n}
}

// LonLat converts fractional tile coordinates at the given zoom back to
// a lon/lat point. It is the inverse of TilePoint.
func LonLat(p orb.Point, zoom float64) orb.Point {
	n := math.Exp2(zoom)
	lon := p[0]/n*360 - 180
	lat := math.Atan(math.Sinh(math.Pi*(1-2*p[1]/n))) * 180 / math.Pi
	return orb.Point{lon, lat}
}
