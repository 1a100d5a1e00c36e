package geom

import "github.com/paulmach/orb"

// Feature is a single decoded vector feature: an identifier, a geometry in
// tile-local coordinates, and its attributes.
//
// Features are built once by the decoder and treated as immutable
// afterwards; the tessellation stage reads them concurrently without
// locking.
type Feature struct {
	// ID is the feature identifier from the source tile, or 0 when the
	// source did not assign one.
	ID uint64

	// Geometry holds the shape in the tile-local coordinate space
	// [0, extent). One of orb.Point, orb.MultiPoint, orb.LineString,
	// orb.MultiLineString, orb.Polygon or orb.MultiPolygon.
	Geometry orb.Geometry

	// Properties holds the feature attributes.
	Properties Properties
}
