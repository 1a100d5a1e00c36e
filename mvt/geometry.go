package mvt

import (
	"github.com/paulmach/orb"

	"github.com/siddheshzz/galileo/geom"
)

// Geometry command identifiers from the wire format. A command integer
// packs the identifier in its low three bits and the repeat count above
// them.
const (
	cmdMoveTo    = 1
	cmdLineTo    = 2
	cmdClosePath = 7
)

// cmdScanner walks a geometry command stream, maintaining the cursor the
// zigzag deltas are relative to.
type cmdScanner struct {
	ints []uint32
	pos  int
	x, y int64
}

func (s *cmdScanner) done() bool {
	return s.pos >= len(s.ints)
}

// next reads one command integer and validates its repeat count against
// both the command's rules and the space remaining in the stream, so a
// hostile count cannot drive allocation.
func (s *cmdScanner) next() (id uint32, count uint32, err error) {
	c := s.ints[s.pos]
	s.pos++
	id, count = c&7, c>>3

	switch id {
	case cmdMoveTo, cmdLineTo:
		if count == 0 {
			return 0, 0, malformedf("command %d with count 0", id)
		}
		if int(count) > (len(s.ints)-s.pos)/2 {
			return 0, 0, malformedf("command %d count %d exceeds remaining parameters", id, count)
		}
	case cmdClosePath:
		if count != 1 {
			return 0, 0, malformedf("close-path with count %d", count)
		}
	default:
		return 0, 0, malformedf("unknown geometry command %d", id)
	}
	return id, count, nil
}

// point reads one coordinate pair and advances the cursor.
func (s *cmdScanner) point() orb.Point {
	s.x += unzigzag(uint64(s.ints[s.pos]))
	s.y += unzigzag(uint64(s.ints[s.pos+1]))
	s.pos += 2
	return orb.Point{float64(s.x), float64(s.y)}
}

// decodeGeometry turns a command stream into an orb geometry in
// tile-local coordinates. A nil geometry with nil error means the feature
// should be skipped (everything it contained was degenerate).
func decodeGeometry(gt GeomType, ints []uint32) (orb.Geometry, error) {
	if len(ints) == 0 {
		return nil, malformedf("empty geometry")
	}
	s := &cmdScanner{ints: ints}

	switch gt {
	case GeomPoint:
		return decodePoints(s)
	case GeomLine:
		return decodeLines(s)
	case GeomPolygon:
		return decodePolygons(s)
	default:
		return nil, malformedf("geometry type %d", gt)
	}
}

// decodePoints handles POINT features: a single move-to whose count is
// the number of points.
func decodePoints(s *cmdScanner) (orb.Geometry, error) {
	id, count, err := s.next()
	if err != nil {
		return nil, err
	}
	if id != cmdMoveTo {
		return nil, malformedf("point geometry starts with command %d", id)
	}

	pts := make(orb.MultiPoint, 0, count)
	for range count {
		pts = append(pts, s.point())
	}
	if !s.done() {
		return nil, malformedf("trailing data after point geometry")
	}

	if len(pts) == 1 {
		return pts[0], nil
	}
	return pts, nil
}

// decodeLines handles LINESTRING features: repeated move-to(1) followed
// by line-to(n).
func decodeLines(s *cmdScanner) (orb.Geometry, error) {
	var lines orb.MultiLineString

	for !s.done() {
		id, count, err := s.next()
		if err != nil {
			return nil, err
		}
		if id != cmdMoveTo || count != 1 {
			return nil, malformedf("linestring part starts with command %d count %d", id, count)
		}
		line := orb.LineString{s.point()}

		if s.done() {
			return nil, malformedf("linestring part has no line-to")
		}
		id, count, err = s.next()
		if err != nil {
			return nil, err
		}
		if id != cmdLineTo {
			return nil, malformedf("linestring part continues with command %d", id)
		}
		for range count {
			line = append(line, s.point())
		}

		lines = append(lines, line)
	}

	if len(lines) == 1 {
		return lines[0], nil
	}
	return lines, nil
}

// decodePolygons handles POLYGON features: repeated rings of move-to(1),
// line-to(n), close-path. Ring winding assigns rings to polygons: a
// positive signed area (clockwise on screen, y-down) opens a new polygon,
// a negative area appends a hole to the current one. Zero-area rings are
// discarded.
func decodePolygons(s *cmdScanner) (orb.Geometry, error) {
	var polys orb.MultiPolygon

	for !s.done() {
		ring, err := decodeRing(s)
		if err != nil {
			return nil, err
		}

		area := geom.SignedArea(ring)
		switch {
		case area > 0:
			polys = append(polys, orb.Polygon{ring})
		case area < 0:
			if len(polys) == 0 {
				return nil, malformedf("interior ring before any exterior ring")
			}
			polys[len(polys)-1] = append(polys[len(polys)-1], ring)
		default:
			// Degenerate ring, drop it.
		}
	}

	if len(polys) == 0 {
		return nil, nil
	}
	if len(polys) == 1 {
		return polys[0], nil
	}
	return polys, nil
}

// decodeRing reads one closed ring. The returned ring is explicitly
// closed: its last point repeats the first.
func decodeRing(s *cmdScanner) (orb.Ring, error) {
	id, count, err := s.next()
	if err != nil {
		return nil, err
	}
	if id != cmdMoveTo || count != 1 {
		return nil, malformedf("ring starts with command %d count %d", id, count)
	}
	ring := orb.Ring{s.point()}

	if s.done() {
		return nil, malformedf("ring has no line-to")
	}
	id, count, err = s.next()
	if err != nil {
		return nil, err
	}
	if id != cmdLineTo {
		return nil, malformedf("ring continues with command %d", id)
	}
	for range count {
		ring = append(ring, s.point())
	}

	if s.done() {
		return nil, malformedf("ring not closed")
	}
	id, _, err = s.next()
	if err != nil {
		return nil, err
	}
	if id != cmdClosePath {
		return nil, malformedf("ring ends with command %d", id)
	}

	ring = append(ring, ring[0])
	return ring, nil
}
