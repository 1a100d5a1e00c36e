// Copyright 2026 The galileo Authors
// SPDX-License-Identifier: MIT

package tess

import (
	"context"
	"errors"
	"testing"

	"github.com/paulmach/orb"

	"github.com/siddheshzz/galileo/geom"
	"github.com/siddheshzz/galileo/mvt"
	"github.com/siddheshzz/galileo/render"
	"github.com/siddheshzz/galileo/style"
)

// strokeOne tessellates a single feature under one line rule and returns
// the resulting primitive, nil when nothing was emitted.
func strokeOne(t *testing.T, g orb.Geometry, r style.Rule) (*render.Primitive, error) {
	t.Helper()
	layer := testLayer("roads", geom.Feature{Geometry: g})
	prims, err := New().Tessellate(context.Background(), []mvt.Layer{layer}, snapshot(r), 5)
	if err != nil {
		return nil, err
	}
	if len(prims) == 0 {
		return nil, nil
	}
	if len(prims) != 1 {
		t.Fatalf("got %d primitives, want at most 1", len(prims))
	}
	return prims[0], nil
}

func TestStrokeSegmentQuad(t *testing.T) {
	p, err := strokeOne(t, orb.LineString{{0, 2048}, {4096, 2048}}, lineRule("l", "roads"))
	if err != nil {
		t.Fatalf("Tessellate: %v", err)
	}
	if p == nil {
		t.Fatal("no primitive emitted")
	}
	if p.Layout != render.LayoutPos {
		t.Fatalf("layout = %v, want %v", p.Layout, render.LayoutPos)
	}
	if p.VertexCount() != 4 || p.IndexCount() != 6 {
		t.Fatalf("counts = %d verts, %d indices, want 4 and 6", p.VertexCount(), p.IndexCount())
	}

	// Width 2px at a 256px reference tile: half width 1/256.
	const h = 1.0 / 256
	want := []float32{
		0, 0.5 - h,
		0, 0.5 + h,
		1, 0.5 + h,
		1, 0.5 - h,
	}
	got := primFloats(t, p)
	for i, w := range want {
		if got[i] != w {
			t.Errorf("vertex float %d = %v, want %v", i, got[i], w)
		}
	}
}

func TestStrokeJoinShapes(t *testing.T) {
	// A right-angle elbow: east, then north.
	elbow := orb.LineString{{0, 2048}, {2048, 2048}, {2048, 0}}

	tests := []struct {
		name        string
		join        style.LineJoin
		wantVerts   int
		wantIndices int
	}{
		// Two quads plus a four-vertex miter quad.
		{"miter", style.JoinMiter, 12, 18},
		// Two quads plus a single bevel triangle.
		{"bevel", style.JoinBevel, 11, 15},
		// Two quads plus a four-step arc fan.
		{"round", style.JoinRound, 14, 24},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := lineRule("l", "roads")
			r.Line.Join = tt.join
			p, err := strokeOne(t, elbow, r)
			if err != nil {
				t.Fatalf("Tessellate: %v", err)
			}
			if p == nil {
				t.Fatal("no primitive emitted")
			}
			if p.VertexCount() != tt.wantVerts || p.IndexCount() != tt.wantIndices {
				t.Errorf("counts = %d verts, %d indices, want %d and %d",
					p.VertexCount(), p.IndexCount(), tt.wantVerts, tt.wantIndices)
			}
		})
	}
}

func TestStrokeMiterPoint(t *testing.T) {
	p, err := strokeOne(t, orb.LineString{{0, 2048}, {2048, 2048}, {2048, 0}}, lineRule("l", "roads"))
	if err != nil {
		t.Fatalf("Tessellate: %v", err)
	}
	fl := primFloats(t, p)

	// Join vertices follow the two segment quads: center, outer edge
	// end, miter point, outer edge start.
	const h = 1.0 / 256
	mx, my := fl[20], fl[21]
	if mx != 0.5+h || my != 0.5+h {
		t.Errorf("miter point = (%v, %v), want (%v, %v)", mx, my, 0.5+h, 0.5+h)
	}
}

func TestStrokeMiterLimitFallsBackToBevel(t *testing.T) {
	// A near-reversal: the miter would extend far beyond any sane
	// limit, so the join must emit a bevel triangle instead.
	spike := orb.LineString{{0, 2048}, {2048, 2048}, {0, 2049}}

	r := lineRule("l", "roads")
	r.Line.Join = style.JoinMiter
	p, err := strokeOne(t, spike, r)
	if err != nil {
		t.Fatalf("Tessellate: %v", err)
	}
	if p == nil {
		t.Fatal("no primitive emitted")
	}
	// Two quads (8) plus a bevel triangle (3), not a miter quad (4).
	if p.VertexCount() != 11 {
		t.Errorf("vertices = %d, want 11 (bevel fallback)", p.VertexCount())
	}
}

func TestStrokeShallowTurnSkipsJoin(t *testing.T) {
	nearly := orb.LineString{{0, 2048}, {2048, 2048}, {4096, 2049}}
	p, err := strokeOne(t, nearly, lineRule("l", "roads"))
	if err != nil {
		t.Fatalf("Tessellate: %v", err)
	}
	if p.VertexCount() != 8 || p.IndexCount() != 12 {
		t.Errorf("counts = %d verts, %d indices, want 8 and 12 (no join geometry)",
			p.VertexCount(), p.IndexCount())
	}
}

func TestStrokeCaps(t *testing.T) {
	line := orb.LineString{{1024, 2048}, {3072, 2048}}

	tests := []struct {
		name        string
		cap         style.LineCap
		wantVerts   int
		wantIndices int
	}{
		{"butt", style.CapButt, 4, 6},
		// One extension quad per end.
		{"square", style.CapSquare, 12, 18},
		// One eight-step half-circle fan per end.
		{"round", style.CapRound, 24, 54},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := lineRule("l", "roads")
			r.Line.Cap = tt.cap
			p, err := strokeOne(t, line, r)
			if err != nil {
				t.Fatalf("Tessellate: %v", err)
			}
			if p.VertexCount() != tt.wantVerts || p.IndexCount() != tt.wantIndices {
				t.Errorf("counts = %d verts, %d indices, want %d and %d",
					p.VertexCount(), p.IndexCount(), tt.wantVerts, tt.wantIndices)
			}
		})
	}
}

func TestStrokeClosedRing(t *testing.T) {
	p, err := strokeOne(t, orb.Polygon{closedSquare(1024, 3072)}, lineRule("outline", "roads"))
	if err != nil {
		t.Fatalf("Tessellate: %v", err)
	}
	if p == nil {
		t.Fatal("no primitive emitted")
	}
	// Four segment quads and four miter joins, no caps.
	if p.VertexCount() != 32 || p.IndexCount() != 48 {
		t.Errorf("counts = %d verts, %d indices, want 32 and 48", p.VertexCount(), p.IndexCount())
	}
}

func TestStrokeMultiLineString(t *testing.T) {
	g := orb.MultiLineString{
		{{0, 1024}, {4096, 1024}},
		{{0, 3072}, {4096, 3072}},
	}
	p, err := strokeOne(t, g, lineRule("l", "roads"))
	if err != nil {
		t.Fatalf("Tessellate: %v", err)
	}
	if p.VertexCount() != 8 || p.IndexCount() != 12 {
		t.Errorf("counts = %d verts, %d indices, want 8 and 12", p.VertexCount(), p.IndexCount())
	}
}

func TestStrokeDegenerateLines(t *testing.T) {
	t.Run("single point errors", func(t *testing.T) {
		_, err := strokeOne(t, orb.LineString{{100, 100}}, lineRule("l", "roads"))
		if !errors.Is(err, ErrUnsupportedGeometry) {
			t.Fatalf("err = %v, want ErrUnsupportedGeometry", err)
		}
	})

	t.Run("collapsed line emits nothing", func(t *testing.T) {
		p, err := strokeOne(t, orb.LineString{{100, 100}, {100, 100}}, lineRule("l", "roads"))
		if err != nil {
			t.Fatalf("Tessellate: %v", err)
		}
		if p != nil {
			t.Errorf("got a primitive for a zero-length line")
		}
	})

	t.Run("two point ring errors", func(t *testing.T) {
		_, err := strokeOne(t, orb.Polygon{orb.Ring{{0, 0}, {50, 0}}}, lineRule("l", "roads"))
		if !errors.Is(err, ErrUnsupportedGeometry) {
			t.Fatalf("err = %v, want ErrUnsupportedGeometry", err)
		}
	})
}

func TestStrokeWidthInterpolates(t *testing.T) {
	r := lineRule("l", "roads")
	r.Line.Width = style.Interpolated(
		style.Stop{Zoom: 5, Value: 2},
		style.Stop{Zoom: 10, Value: 6},
	)

	layer := testLayer("roads", geom.Feature{
		Geometry: orb.LineString{{0, 2048}, {4096, 2048}},
	})
	prims, err := New().Tessellate(context.Background(), []mvt.Layer{layer}, snapshot(r), 7.5)
	if err != nil || len(prims) != 1 {
		t.Fatalf("prims=%d err=%v", len(prims), err)
	}

	// Width 4px halfway between the stops: half width 2/256.
	const h = 2.0 / 256
	fl := primFloats(t, prims[0])
	if fl[1] != 0.5-h || fl[3] != 0.5+h {
		t.Errorf("edge y = %v and %v, want %v and %v", fl[1], fl[3], 0.5-h, 0.5+h)
	}
}

func TestStrokeZeroWidthEmitsNothing(t *testing.T) {
	r := lineRule("l", "roads")
	r.Line.Width = style.Constant(0)
	p, err := strokeOne(t, orb.LineString{{0, 2048}, {4096, 2048}}, r)
	if err != nil {
		t.Fatalf("Tessellate: %v", err)
	}
	if p != nil {
		t.Error("got a primitive for zero width")
	}
}
