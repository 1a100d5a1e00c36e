// Package geom defines the attribute value model and the small amount of
// geometry math shared by the decoding and tessellation stages.
//
// Feature geometries themselves are orb types (github.com/paulmach/orb) whose
// coordinates live in the tile-local integer space of the tile they were
// decoded from, not in any geographic CRS. Converting tile-local coordinates
// to screen or world space is the renderer's job.
package geom

import "github.com/paulmach/orb"

// SignedArea returns twice the signed area of a ring using the shoelace
// formula. The ring may be open or closed; the closing edge is implied.
//
// In tile-local coordinates (y grows downward) exterior rings of a vector
// tile wind clockwise on screen and produce a positive result, interior
// rings a negative one.
func SignedArea(ring orb.Ring) float64 {
	if len(ring) < 3 {
		return 0
	}

	var sum float64
	n := len(ring)
	for i := range n {
		j := (i + 1) % n
		sum += ring[i][0]*ring[j][1] - ring[j][0]*ring[i][1]
	}
	return sum
}

// PadBound grows a bound by the given fraction of its width and height on
// every side. A fraction of 0 returns the bound unchanged; negative
// fractions shrink it.
func PadBound(b orb.Bound, fraction float64) orb.Bound {
	dx := (b.Max[0] - b.Min[0]) * fraction
	dy := (b.Max[1] - b.Min[1]) * fraction
	return orb.Bound{
		Min: orb.Point{b.Min[0] - dx, b.Min[1] - dy},
		Max: orb.Point{b.Max[0] + dx, b.Max[1] + dy},
	}
}
