package galileo

import (
	"github.com/siddheshzz/galileo/cache"
	"github.com/siddheshzz/galileo/render"
	"github.com/siddheshzz/galileo/tile"
)

// DefaultFallbackDepth is how many zoom levels above a missing tile the
// composer searches for a cached ancestor to draw in its place.
const DefaultFallbackDepth = 5

// Composer assembles frames from whatever the cache holds right now.
// It never blocks on fetching: a tile that is not resident is covered
// by a cached ancestor when one exists and otherwise left blank until
// the coordinator delivers it.
//
// Every cache entry that contributes to a frame is pinned so eviction
// cannot free primitives the frame still references. Compose returns
// the pinned requests; the caller unpins them once the frame has been
// superseded.
type Composer struct {
	// FallbackDepth bounds the ancestor search. Zero or negative means
	// DefaultFallbackDepth.
	FallbackDepth int
}

// LayerState names the style versions one layer may draw with during a
// frame: the active version plus, right after a style change, the one
// it replaced.
type LayerState struct {
	Current  string
	Previous string
}

// Compose builds a frame for v from the resident tiles of each layer,
// in layer order. Within a layer, draw order follows the style's
// z-layers, with ancestor substitutes underneath exact tiles at each
// z-layer so crisp geometry wins where both overlap.
//
// The returned requests are pinned in tc for the frame's lifetime.
func (cp *Composer) Compose(v View, tc *cache.TileCache, layers []LayerState) (*render.Frame, []tile.Request) {
	depth := cp.FallbackDepth
	if depth <= 0 {
		depth = DefaultFallbackDepth
	}

	frame := render.NewFrame(v.Width, v.Height)
	cn := &composition{tc: tc, depth: depth, seen: make(map[tile.Request]bool)}
	needed := v.Coverage()

	for _, ls := range layers {
		if ls.Current == "" {
			continue
		}
		var exact, fallback []*drawEntry
		used := make(map[tile.Request]bool)
		bottom, top := 0, 0

		for _, c := range needed {
			req, prims, level, ok := cn.resolve(c, ls)
			if !ok || used[req] {
				continue
			}
			used[req] = true
			if len(prims) == 0 {
				continue
			}
			e := &drawEntry{prims: prims, tr: v.TileTransform(req.Coord)}
			if level == 0 {
				exact = append(exact, e)
			} else {
				fallback = append(fallback, e)
			}
			// Entries are sorted by LayerIndex, so the ends bound the
			// z-layer range.
			if first := prims[0].LayerIndex; first < bottom {
				bottom = first
			}
			if last := prims[len(prims)-1].LayerIndex; last > top {
				top = last
			}
		}

		for ri := bottom; ri <= top; ri++ {
			emit(frame, fallback, ri)
			emit(frame, exact, ri)
		}
	}

	return frame, cn.pinned
}

// composition carries the pin bookkeeping of a single Compose call.
// Entries are pinned once per frame no matter how many coords or
// layers resolve to them.
type composition struct {
	tc     *cache.TileCache
	depth  int
	seen   map[tile.Request]bool
	pinned []tile.Request
}

// lookup pins and fetches req's entry. Once pinned the entry cannot be
// evicted, so the primitives stay valid for the rest of the frame.
func (cn *composition) lookup(req tile.Request) ([]*render.Primitive, bool) {
	if cn.seen[req] {
		prims, ok := cn.tc.Get(req)
		return prims, ok
	}
	if !cn.tc.Pin(req) {
		return nil, false
	}
	cn.seen[req] = true
	cn.pinned = append(cn.pinned, req)
	prims, _ := cn.tc.Get(req)
	return prims, true
}

// resolve finds the best resident entry covering coord: the exact tile
// at the current version, then at the previous version, then the same
// two checks on each ancestor up to depth levels above. The level of
// the winning entry is returned; level 0 means exact. An entry with no
// primitives resolves the coord (the tile is known empty) and stops
// the ancestor walk.
func (cn *composition) resolve(coord tile.Coord, ls LayerState) (tile.Request, []*render.Primitive, int, bool) {
	c := coord
	for level := 0; level <= cn.depth; level++ {
		req := tile.Request{Coord: c, StyleVersion: ls.Current}
		if prims, ok := cn.lookup(req); ok {
			return req, prims, level, true
		}
		if ls.Previous != "" && ls.Previous != ls.Current {
			req = tile.Request{Coord: c, StyleVersion: ls.Previous}
			if prims, ok := cn.lookup(req); ok {
				return req, prims, level, true
			}
		}
		parent, ok := c.Parent()
		if !ok {
			break
		}
		c = parent
	}
	return tile.Request{}, nil, 0, false
}

// drawEntry is one resolved tile's contribution to a frame. prims is
// ordered by LayerIndex, so emit can walk it with a cursor.
type drawEntry struct {
	prims []*render.Primitive
	tr    render.Transform
	next  int
}

// emit appends every primitive at draw layer ri from each entry,
// preserving the entries' resolution order.
func emit(frame *render.Frame, entries []*drawEntry, ri int) {
	for _, e := range entries {
		for e.next < len(e.prims) && e.prims[e.next].LayerIndex == ri {
			frame.Append(e.prims[e.next], e.tr)
			e.next++
		}
	}
}
