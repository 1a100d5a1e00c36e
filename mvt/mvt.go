// Package mvt decodes binary vector tiles into features.
//
// The wire format is the Mapbox Vector Tile protobuf encoding: a tile is a
// set of named layers, each carrying features whose geometries are command
// streams of zigzag-encoded deltas in the layer's integer extent, and whose
// attributes reference shared key and value pools. The decoder parses the
// protobuf wire format directly; it needs no schema compiler and allocates
// feature slices in a single pass per layer.
//
// Decoding is strict: any structural violation (truncated varint, tag index
// out of range, unterminated geometry command, unsupported layer version)
// fails the whole tile with an error wrapping ErrMalformed, and no partial
// result is returned. Malformed tiles are a data defect, not a transient
// condition; callers should not retry them.
package mvt

import (
	"errors"
	"fmt"

	"github.com/siddheshzz/galileo/geom"
)

// ErrMalformed is wrapped by all decode errors caused by invalid input.
var ErrMalformed = errors.New("mvt: malformed tile")

// malformedf builds a decode error wrapping ErrMalformed.
func malformedf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))
}

// DefaultExtent is the tile-local coordinate extent used when a layer does
// not declare one.
const DefaultExtent = 4096

// Tile is a fully decoded vector tile.
type Tile struct {
	// Layers holds the tile's layers in encounter order. A tile with no
	// layers is valid and renders nothing.
	Layers []Layer
}

// Layer returns the layer with the given name, or nil.
func (t *Tile) Layer(name string) *Layer {
	for i := range t.Layers {
		if t.Layers[i].Name == name {
			return &t.Layers[i]
		}
	}
	return nil
}

// Layer is one named layer of a tile.
type Layer struct {
	// Name is the layer name referenced by style rules.
	Name string

	// Version is the encoding version, 1 or 2.
	Version uint32

	// Extent is the size of the layer's square coordinate space.
	// Geometries span [0, Extent) plus whatever buffer the producer
	// encoded.
	Extent uint32

	// Features holds the decoded features in encounter order.
	Features []geom.Feature
}

// GeomType is the feature geometry type tag from the wire format.
type GeomType uint8

const (
	// GeomUnknown features are skipped during decoding.
	GeomUnknown GeomType = 0
	GeomPoint   GeomType = 1
	GeomLine    GeomType = 2
	GeomPolygon GeomType = 3
)

// String returns the wire-format name of the geometry type.
func (g GeomType) String() string {
	switch g {
	case GeomPoint:
		return "point"
	case GeomLine:
		return "linestring"
	case GeomPolygon:
		return "polygon"
	default:
		return "unknown"
	}
}
