package galileo

import (
	"slices"
	"testing"

	"github.com/paulmach/orb"

	"github.com/siddheshzz/galileo/cache"
	"github.com/siddheshzz/galileo/geom"
	"github.com/siddheshzz/galileo/render"
	"github.com/siddheshzz/galileo/tile"
)

// composerView returns a view whose coverage at zoom 2 is exactly the
// tiles centered on (1.5, 1.5): one tile at 64px, a 3x1 strip at
// 320x64, a 3x3 block at 256x256.
func composerView(w, h int) View {
	return View{
		Center: geom.LonLat(orb.Point{1.5, 1.5}, 2),
		Zoom:   2,
		Width:  w,
		Height: h,
	}
}

func testPrim(c tile.Coord, ri int) *render.Primitive {
	p := render.NewPrimitive(render.LayoutPos,
		make([]byte, 3*8), make([]byte, 3*4), render.Material{Color: render.RGB(1, 0, 0)})
	p.Tile = c
	p.LayerIndex = ri
	return p
}

// insert caches one primitive per given draw layer for c.
func insert(tc *cache.TileCache, c tile.Coord, version string, ris ...int) []*render.Primitive {
	prims := make([]*render.Primitive, len(ris))
	for i, ri := range ris {
		prims[i] = testPrim(c, ri)
	}
	tc.Insert(tile.Request{Coord: c, StyleVersion: version}, prims)
	return prims
}

func TestComposeExactTile(t *testing.T) {
	tc := cache.New(0)
	v := composerView(64, 64)
	coord := tile.Coord{Z: 2, X: 1, Y: 1}
	prims := insert(tc, coord, "v1", 0)

	var cp Composer
	frame, pinned := cp.Compose(v, tc, []LayerState{{Current: "v1"}})
	defer frame.Release()

	if frame.Len() != 1 {
		t.Fatalf("frame has %d commands, want 1", frame.Len())
	}
	cmd := frame.Commands()[0]
	if cmd.Primitive != prims[0] {
		t.Error("frame draws a different primitive than was cached")
	}
	if want := v.TileTransform(coord); cmd.Transform != want {
		t.Errorf("draw transform = %v, want %v", cmd.Transform, want)
	}
	want := []tile.Request{{Coord: coord, StyleVersion: "v1"}}
	if !slices.Equal(pinned, want) {
		t.Errorf("pinned = %v, want %v", pinned, want)
	}

	// Pinned entries must survive a full eviction sweep.
	tc.EvictToBudget(0)
	if !tc.Has(want[0]) {
		t.Error("pinned entry was evicted")
	}
	tc.Unpin(want[0])
	tc.EvictToBudget(0)
	if tc.Has(want[0]) {
		t.Error("unpinned entry survived eviction to zero")
	}
}

func TestComposePreviousVersionFallback(t *testing.T) {
	tc := cache.New(0)
	v := composerView(64, 64)
	coord := tile.Coord{Z: 2, X: 1, Y: 1}
	prims := insert(tc, coord, "v1", 0)

	var cp Composer
	frame, pinned := cp.Compose(v, tc, []LayerState{{Current: "v2", Previous: "v1"}})
	defer frame.Release()

	if frame.Len() != 1 || frame.Commands()[0].Primitive != prims[0] {
		t.Fatal("frame does not draw the previous version's tile")
	}
	want := tile.Request{Coord: coord, StyleVersion: "v1"}
	if len(pinned) != 1 || pinned[0] != want {
		t.Errorf("pinned = %v, want [%v]", pinned, want)
	}
}

func TestComposeAncestorFallback(t *testing.T) {
	tc := cache.New(0)
	v := composerView(64, 64)
	parent := tile.Coord{Z: 1, X: 0, Y: 0}
	prims := insert(tc, parent, "v1", 0)

	var cp Composer
	frame, _ := cp.Compose(v, tc, []LayerState{{Current: "v1"}})
	defer frame.Release()

	if frame.Len() != 1 {
		t.Fatalf("frame has %d commands, want 1 from the ancestor", frame.Len())
	}
	cmd := frame.Commands()[0]
	if cmd.Primitive != prims[0] {
		t.Error("frame draws a different primitive than the ancestor's")
	}
	if want := v.TileTransform(parent); cmd.Transform != want {
		t.Errorf("ancestor transform = %v, want %v", cmd.Transform, want)
	}
}

func TestComposeFallbackDepthBound(t *testing.T) {
	tc := cache.New(0)
	v := composerView(64, 64)
	insert(tc, tile.Coord{Z: 0, X: 0, Y: 0}, "v1", 0)

	cp := Composer{FallbackDepth: 1}
	frame, pinned := cp.Compose(v, tc, []LayerState{{Current: "v1"}})
	defer frame.Release()
	if frame.Len() != 0 {
		t.Errorf("root tile drawn from two levels up with depth 1")
	}
	if len(pinned) != 0 {
		t.Errorf("pinned = %v, want none", pinned)
	}

	cp = Composer{FallbackDepth: 2}
	frame2, _ := cp.Compose(v, tc, []LayerState{{Current: "v1"}})
	defer frame2.Release()
	if frame2.Len() != 1 {
		t.Errorf("root tile not drawn with depth 2")
	}
}

func TestComposeEmptyEntryStopsFallback(t *testing.T) {
	tc := cache.New(0)
	v := composerView(64, 64)
	coord := tile.Coord{Z: 2, X: 1, Y: 1}
	tc.Insert(tile.Request{Coord: coord, StyleVersion: "v1"}, nil)
	insert(tc, tile.Coord{Z: 1, X: 0, Y: 0}, "v1", 0)

	var cp Composer
	frame, pinned := cp.Compose(v, tc, []LayerState{{Current: "v1"}})
	defer frame.Release()

	if frame.Len() != 0 {
		t.Errorf("ancestor drawn for a tile known to be empty")
	}
	want := []tile.Request{{Coord: coord, StyleVersion: "v1"}}
	if !slices.Equal(pinned, want) {
		t.Errorf("pinned = %v, want just the empty entry %v", pinned, want)
	}
}

func TestComposeDedupesSharedAncestor(t *testing.T) {
	tc := cache.New(0)
	v := composerView(256, 256) // nine tiles, all sharing the z0 root
	prims := insert(tc, tile.Coord{Z: 0, X: 0, Y: 0}, "v1", 0)

	var cp Composer
	frame, pinned := cp.Compose(v, tc, []LayerState{{Current: "v1"}})
	defer frame.Release()

	if frame.Len() != 1 {
		t.Fatalf("shared ancestor drawn %d times, want once", frame.Len())
	}
	if frame.Commands()[0].Primitive != prims[0] {
		t.Error("frame draws a different primitive than the root's")
	}
	if len(pinned) != 1 {
		t.Errorf("pinned %d entries, want 1", len(pinned))
	}
}

func TestComposeFallbackUnderExactPerStyleLayer(t *testing.T) {
	tc := cache.New(0)
	v := composerView(320, 64) // tiles (0,1) (1,1) (2,1) at zoom 2

	// (1,1) is resident exactly; (0,1) resolves to its z1 parent; (2,1)
	// stays unresolved.
	exact := insert(tc, tile.Coord{Z: 2, X: 1, Y: 1}, "v1", 0, 1)
	fb := insert(tc, tile.Coord{Z: 1, X: 0, Y: 0}, "v1", 0, 1)

	var cp Composer
	frame, _ := cp.Compose(v, tc, []LayerState{{Current: "v1"}})
	defer frame.Release()

	got := make([]*render.Primitive, frame.Len())
	for i, cmd := range frame.Commands() {
		got[i] = cmd.Primitive
	}
	// Interleaved by draw layer, substitute under exact each time.
	want := []*render.Primitive{fb[0], exact[0], fb[1], exact[1]}
	if !slices.Equal(got, want) {
		t.Errorf("draw order:\n got %v\nwant %v", names(got), names(want))
	}
}

func TestComposeLayerMajorOrder(t *testing.T) {
	tc := cache.New(0)
	v := composerView(64, 64)
	coord := tile.Coord{Z: 2, X: 1, Y: 1}
	base := insert(tc, coord, "base-v1", 0, 1)
	overlay := insert(tc, coord, "overlay-v1", 0)

	var cp Composer
	frame, _ := cp.Compose(v, tc, []LayerState{
		{Current: "base-v1"},
		{Current: "overlay-v1"},
	})
	defer frame.Release()

	got := make([]*render.Primitive, frame.Len())
	for i, cmd := range frame.Commands() {
		got[i] = cmd.Primitive
	}
	want := []*render.Primitive{base[0], base[1], overlay[0]}
	if !slices.Equal(got, want) {
		t.Errorf("draw order:\n got %v\nwant %v", names(got), names(want))
	}
}

func TestComposeSpansZLayerRange(t *testing.T) {
	tc := cache.New(0)
	v := composerView(64, 64)
	coord := tile.Coord{Z: 2, X: 1, Y: 1}
	prims := insert(tc, coord, "v1", -1, 3)

	var cp Composer
	frame, _ := cp.Compose(v, tc, []LayerState{{Current: "v1"}})
	defer frame.Release()

	got := make([]*render.Primitive, frame.Len())
	for i, cmd := range frame.Commands() {
		got[i] = cmd.Primitive
	}
	if want := []*render.Primitive{prims[0], prims[1]}; !slices.Equal(got, want) {
		t.Errorf("draw order:\n got %v\nwant %v", names(got), names(want))
	}
}

func TestComposeSkipsLayerWithoutStyle(t *testing.T) {
	tc := cache.New(0)
	v := composerView(64, 64)
	insert(tc, tile.Coord{Z: 2, X: 1, Y: 1}, "v1", 0)

	var cp Composer
	frame, pinned := cp.Compose(v, tc, []LayerState{{}})
	defer frame.Release()
	if frame.Len() != 0 || len(pinned) != 0 {
		t.Errorf("layer with no style composed %d commands, %d pins", frame.Len(), len(pinned))
	}
}

func names(prims []*render.Primitive) []string {
	out := make([]string, len(prims))
	for i, p := range prims {
		out[i] = p.Tile.String()
	}
	return out
}
