package mvt

import (
	"context"
	"math"

	"github.com/siddheshzz/galileo/geom"
)

// Tile message field numbers.
const fieldTileLayer = 3

// Layer message field numbers.
const (
	fieldLayerName    = 1
	fieldLayerFeature = 2
	fieldLayerKey     = 3
	fieldLayerValue   = 4
	fieldLayerExtent  = 5
	fieldLayerVersion = 15
)

// Feature message field numbers.
const (
	fieldFeatureID       = 1
	fieldFeatureTags     = 2
	fieldFeatureType     = 3
	fieldFeatureGeometry = 4
)

// Value message field numbers.
const (
	fieldValueString = 1
	fieldValueFloat  = 2
	fieldValueDouble = 3
	fieldValueInt    = 4
	fieldValueUint   = 5
	fieldValueSint   = 6
	fieldValueBool   = 7
)

// Decode parses a binary vector tile.
func Decode(data []byte) (*Tile, error) {
	return DecodeContext(context.Background(), data)
}

// DecodeFeatures parses a binary vector tile and flattens it into a
// single feature list, layers in encoded order. Consumers that match
// features per source layer should use Decode instead.
func DecodeFeatures(data []byte) ([]geom.Feature, error) {
	t, err := Decode(data)
	if err != nil {
		return nil, err
	}
	var fs []geom.Feature
	for _, l := range t.Layers {
		fs = append(fs, l.Features...)
	}
	return fs, nil
}

// DecodeContext parses a binary vector tile, checking ctx between layers
// so a cancelled pipeline job abandons large tiles promptly. A context
// error is returned as-is, not wrapped in ErrMalformed.
func DecodeContext(ctx context.Context, data []byte) (*Tile, error) {
	t := &Tile{}
	r := &reader{buf: data}

	for !r.done() {
		field, wire, err := r.key()
		if err != nil {
			return nil, err
		}
		if field != fieldTileLayer {
			if err := r.skip(wire); err != nil {
				return nil, err
			}
			continue
		}
		if wire != wireBytes {
			return nil, malformedf("layer field has wire type %d", wire)
		}

		raw, err := r.bytes()
		if err != nil {
			return nil, err
		}
		layer, err := decodeLayer(raw)
		if err != nil {
			return nil, err
		}
		t.Layers = append(t.Layers, layer)

		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	return t, nil
}

// decodeLayer parses one layer message. Features are decoded after the
// whole message has been scanned, because the key and value pools they
// reference may be encoded after them.
func decodeLayer(data []byte) (Layer, error) {
	var (
		name        string
		nameSeen    bool
		version     uint64
		versionSeen bool
		extent      uint64 = DefaultExtent
		keys        []string
		values      []geom.Value
		rawFeatures [][]byte
	)

	r := &reader{buf: data}
	for !r.done() {
		field, wire, err := r.key()
		if err != nil {
			return Layer{}, err
		}

		switch field {
		case fieldLayerName:
			b, err := r.bytes()
			if err != nil {
				return Layer{}, err
			}
			name = string(b)
			nameSeen = true

		case fieldLayerFeature:
			b, err := r.bytes()
			if err != nil {
				return Layer{}, err
			}
			rawFeatures = append(rawFeatures, b)

		case fieldLayerKey:
			b, err := r.bytes()
			if err != nil {
				return Layer{}, err
			}
			keys = append(keys, string(b))

		case fieldLayerValue:
			b, err := r.bytes()
			if err != nil {
				return Layer{}, err
			}
			v, err := decodeValue(b)
			if err != nil {
				return Layer{}, err
			}
			values = append(values, v)

		case fieldLayerExtent:
			if extent, err = r.varint(); err != nil {
				return Layer{}, err
			}

		case fieldLayerVersion:
			if version, err = r.varint(); err != nil {
				return Layer{}, err
			}
			versionSeen = true

		default:
			if err := r.skip(wire); err != nil {
				return Layer{}, err
			}
		}
	}

	if !nameSeen {
		return Layer{}, malformedf("layer missing name")
	}
	if !versionSeen || (version != 1 && version != 2) {
		return Layer{}, malformedf("layer %q: unsupported version %d", name, version)
	}
	if extent == 0 || extent > math.MaxUint32 {
		return Layer{}, malformedf("layer %q: invalid extent %d", name, extent)
	}

	layer := Layer{
		Name:     name,
		Version:  uint32(version),
		Extent:   uint32(extent),
		Features: make([]geom.Feature, 0, len(rawFeatures)),
	}

	for _, raw := range rawFeatures {
		f, skip, err := decodeFeature(raw, keys, values)
		if err != nil {
			return Layer{}, malformedf("layer %q: %v", name, err)
		}
		if skip {
			continue
		}
		layer.Features = append(layer.Features, f)
	}

	return layer, nil
}

// decodeValue parses one value-pool entry. Integer variants are widened to
// float64, the attribute model's only number type; values beyond 2^53
// lose precision.
func decodeValue(data []byte) (geom.Value, error) {
	var (
		val geom.Value
		set bool
	)

	r := &reader{buf: data}
	for !r.done() {
		field, wire, err := r.key()
		if err != nil {
			return geom.Value{}, err
		}

		switch field {
		case fieldValueString:
			b, err := r.bytes()
			if err != nil {
				return geom.Value{}, err
			}
			val, set = geom.StringValue(string(b)), true

		case fieldValueFloat:
			bits, err := r.fixed32()
			if err != nil {
				return geom.Value{}, err
			}
			val, set = geom.NumberValue(float64(math.Float32frombits(bits))), true

		case fieldValueDouble:
			bits, err := r.fixed64()
			if err != nil {
				return geom.Value{}, err
			}
			val, set = geom.NumberValue(math.Float64frombits(bits)), true

		case fieldValueInt:
			v, err := r.varint()
			if err != nil {
				return geom.Value{}, err
			}
			val, set = geom.NumberValue(float64(int64(v))), true

		case fieldValueUint:
			v, err := r.varint()
			if err != nil {
				return geom.Value{}, err
			}
			val, set = geom.NumberValue(float64(v)), true

		case fieldValueSint:
			v, err := r.varint()
			if err != nil {
				return geom.Value{}, err
			}
			val, set = geom.NumberValue(float64(unzigzag(v))), true

		case fieldValueBool:
			v, err := r.varint()
			if err != nil {
				return geom.Value{}, err
			}
			val, set = geom.BoolValue(v != 0), true

		default:
			if err := r.skip(wire); err != nil {
				return geom.Value{}, err
			}
		}
	}

	if !set {
		return geom.Value{}, malformedf("empty value in value pool")
	}
	return val, nil
}

// decodeFeature parses one feature message. The skip result is true for
// features the decoder drops without error (unknown geometry type, or a
// geometry that turned out empty after degenerate rings were discarded).
func decodeFeature(data []byte, keys []string, values []geom.Value) (geom.Feature, bool, error) {
	var (
		id       uint64
		gtype    = GeomUnknown
		tags     []uint32
		geomInts []uint32
	)

	r := &reader{buf: data}
	for !r.done() {
		field, wire, err := r.key()
		if err != nil {
			return geom.Feature{}, false, err
		}

		switch field {
		case fieldFeatureID:
			if id, err = r.varint(); err != nil {
				return geom.Feature{}, false, err
			}

		case fieldFeatureTags:
			if tags, err = readUint32s(r, wire, tags); err != nil {
				return geom.Feature{}, false, err
			}

		case fieldFeatureType:
			v, err := r.varint()
			if err != nil {
				return geom.Feature{}, false, err
			}
			if v > 3 {
				return geom.Feature{}, false, malformedf("feature %d: geometry type %d", id, v)
			}
			gtype = GeomType(v)

		case fieldFeatureGeometry:
			if geomInts, err = readUint32s(r, wire, geomInts); err != nil {
				return geom.Feature{}, false, err
			}

		default:
			if err := r.skip(wire); err != nil {
				return geom.Feature{}, false, err
			}
		}
	}

	if gtype == GeomUnknown {
		return geom.Feature{}, true, nil
	}

	if len(tags)%2 != 0 {
		return geom.Feature{}, false, malformedf("feature %d: odd tag count %d", id, len(tags))
	}
	props := make(geom.Properties, len(tags)/2)
	for i := 0; i < len(tags); i += 2 {
		ki, vi := tags[i], tags[i+1]
		if int(ki) >= len(keys) {
			return geom.Feature{}, false, malformedf("feature %d: key index %d out of range %d", id, ki, len(keys))
		}
		if int(vi) >= len(values) {
			return geom.Feature{}, false, malformedf("feature %d: value index %d out of range %d", id, vi, len(values))
		}
		props[keys[ki]] = values[vi]
	}

	g, err := decodeGeometry(gtype, geomInts)
	if err != nil {
		return geom.Feature{}, false, malformedf("feature %d: %v", id, err)
	}
	if g == nil {
		return geom.Feature{}, true, nil
	}

	return geom.Feature{ID: id, Geometry: g, Properties: props}, false, nil
}

// readUint32s reads a repeated uint32 field in either packed or unpacked
// form, appending to dst.
func readUint32s(r *reader, wire uint8, dst []uint32) ([]uint32, error) {
	switch wire {
	case wireBytes:
		b, err := r.bytes()
		if err != nil {
			return nil, err
		}
		return packedUint32(b, dst)
	case wireVarint:
		v, err := r.varint()
		if err != nil {
			return nil, err
		}
		if v > math.MaxUint32 {
			return nil, malformedf("repeated value %d overflows uint32", v)
		}
		return append(dst, uint32(v)), nil
	default:
		return nil, malformedf("repeated uint32 field has wire type %d", wire)
	}
}
