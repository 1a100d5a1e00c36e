// Copyright 2026 The galileo Authors
// SPDX-License-Identifier: MIT

package tess

import (
	"bytes"
	"context"
	"testing"

	"github.com/paulmach/orb"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/siddheshzz/galileo/geom"
	"github.com/siddheshzz/galileo/mvt"
	"github.com/siddheshzz/galileo/render"
	"github.com/siddheshzz/galileo/style"
	"github.com/siddheshzz/galileo/text"
)

func symbolRule(id, source string) style.Rule {
	return style.Rule{
		ID:          id,
		Type:        style.TypeSymbol,
		SourceLayer: source,
		MaxZoom:     style.DefaultMaxZoom,
		Symbol: style.SymbolPaint{
			TextField: "name",
			TextSize:  style.Constant(16),
			TextColor: render.Color{R: 0.1, G: 0.1, B: 0.1, A: 1},
		},
	}
}

func labelTessellator(t *testing.T) *Tessellator {
	t.Helper()
	src, err := text.NewFontSource(goregular.TTF)
	if err != nil {
		t.Fatalf("NewFontSource: %v", err)
	}
	ts := New()
	ts.RegisterFont(src)
	return ts
}

func labelLayer(name, label string) mvt.Layer {
	return testLayer(name, geom.Feature{
		Geometry:   orb.Point{2048, 2048},
		Properties: geom.Properties{"name": geom.StringValue(label)},
	})
}

func TestLabelQuads(t *testing.T) {
	ts := labelTessellator(t)
	prims, err := ts.Tessellate(context.Background(),
		[]mvt.Layer{labelLayer("places", "AB")}, snapshot(symbolRule("labels", "places")), 12)
	if err != nil {
		t.Fatalf("Tessellate: %v", err)
	}
	if len(prims) != 1 {
		t.Fatalf("got %d primitives, want 1", len(prims))
	}

	p := prims[0]
	if p.Layout != render.LayoutPosOffsetUV {
		t.Fatalf("layout = %v, want %v", p.Layout, render.LayoutPosOffsetUV)
	}
	// One quad per glyph.
	if p.VertexCount() != 8 || p.IndexCount() != 12 {
		t.Fatalf("counts = %d verts, %d indices, want 8 and 12", p.VertexCount(), p.IndexCount())
	}
	if len(p.Vertices) != 8*p.Layout.Stride() {
		t.Errorf("vertex bytes = %d, want %d", len(p.Vertices), 8*p.Layout.Stride())
	}
	if p.Material.Atlas == nil {
		t.Error("material carries no atlas page")
	}
	if want := (render.Color{R: 0.1, G: 0.1, B: 0.1, A: 1}); p.Material.Color != want {
		t.Errorf("material color = %v, want %v", p.Material.Color, want)
	}

	fl := primFloats(t, p)
	for v := range 8 {
		x, y := fl[v*6], fl[v*6+1]
		if x != 0.5 || y != 0.5 {
			t.Errorf("vertex %d anchor = (%v, %v), want (0.5, 0.5)", v, x, y)
		}
		u, uvv := fl[v*6+4], fl[v*6+5]
		if u < 0 || u > 1 || uvv < 0 || uvv > 1 {
			t.Errorf("vertex %d uv = (%v, %v), want within [0,1]", v, u, uvv)
		}
	}
}

func TestLabelCenteredOnAnchor(t *testing.T) {
	ts := labelTessellator(t)
	prims, err := ts.Tessellate(context.Background(),
		[]mvt.Layer{labelLayer("places", "Berlin")}, snapshot(symbolRule("labels", "places")), 12)
	if err != nil || len(prims) != 1 {
		t.Fatalf("prims=%d err=%v", len(prims), err)
	}

	fl := primFloats(t, prims[0])
	minOX, maxOX := fl[2], fl[2]
	for v := range prims[0].VertexCount() {
		ox := fl[v*6+2]
		minOX = min(minOX, ox)
		maxOX = max(maxOX, ox)
	}
	if minOX >= 0 || maxOX <= 0 {
		t.Errorf("offsets span [%v, %v], want the anchor inside it", minOX, maxOX)
	}
}

func TestLabelSkipsSpaces(t *testing.T) {
	ts := labelTessellator(t)
	prims, err := ts.Tessellate(context.Background(),
		[]mvt.Layer{labelLayer("places", "A B")}, snapshot(symbolRule("labels", "places")), 12)
	if err != nil || len(prims) != 1 {
		t.Fatalf("prims=%d err=%v", len(prims), err)
	}
	// The space shapes to a glyph with no coverage and must not emit a quad.
	if got := prims[0].VertexCount(); got != 8 {
		t.Errorf("vertices = %d, want 8", got)
	}
}

func TestLabelMultiPoint(t *testing.T) {
	ts := labelTessellator(t)
	layer := testLayer("places", geom.Feature{
		Geometry:   orb.MultiPoint{{1024, 1024}, {3072, 3072}},
		Properties: geom.Properties{"name": geom.StringValue("AB")},
	})
	prims, err := ts.Tessellate(context.Background(),
		[]mvt.Layer{layer}, snapshot(symbolRule("labels", "places")), 12)
	if err != nil || len(prims) != 1 {
		t.Fatalf("prims=%d err=%v", len(prims), err)
	}
	if got := prims[0].VertexCount(); got != 16 {
		t.Errorf("vertices = %d, want 16", got)
	}
}

func TestLabelNumericProperty(t *testing.T) {
	ts := labelTessellator(t)
	layer := testLayer("places", geom.Feature{
		Geometry:   orb.Point{2048, 2048},
		Properties: geom.Properties{"name": geom.NumberValue(42)},
	})
	prims, err := ts.Tessellate(context.Background(),
		[]mvt.Layer{layer}, snapshot(symbolRule("labels", "places")), 12)
	if err != nil || len(prims) != 1 {
		t.Fatalf("prims=%d err=%v", len(prims), err)
	}
	// "42" renders two glyph quads.
	if got := prims[0].VertexCount(); got != 8 {
		t.Errorf("vertices = %d, want 8", got)
	}
}

func TestLabelWithoutText(t *testing.T) {
	ts := labelTessellator(t)
	layer := testLayer("places", geom.Feature{Geometry: orb.Point{2048, 2048}})
	prims, err := ts.Tessellate(context.Background(),
		[]mvt.Layer{layer}, snapshot(symbolRule("labels", "places")), 12)
	if err != nil {
		t.Fatalf("Tessellate: %v", err)
	}
	if len(prims) != 0 {
		t.Errorf("got %d primitives for a feature with no label text", len(prims))
	}
}

func TestLabelWithoutFont(t *testing.T) {
	prims, err := New().Tessellate(context.Background(),
		[]mvt.Layer{labelLayer("places", "AB")}, snapshot(symbolRule("labels", "places")), 12)
	if err != nil {
		t.Fatalf("Tessellate: %v", err)
	}
	if len(prims) != 0 {
		t.Errorf("got %d primitives with no font registered", len(prims))
	}
}

func TestLabelDeterministicAcrossRuns(t *testing.T) {
	ts := labelTessellator(t)
	layers := []mvt.Layer{labelLayer("places", "Determinism")}
	st := snapshot(symbolRule("labels", "places"))

	first, err := ts.Tessellate(context.Background(), layers, st, 12)
	if err != nil || len(first) != 1 {
		t.Fatalf("prims=%d err=%v", len(first), err)
	}
	// The second run hits the shaped-run and atlas caches and must
	// produce identical buffers.
	second, err := ts.Tessellate(context.Background(), layers, st, 12)
	if err != nil || len(second) != 1 {
		t.Fatalf("prims=%d err=%v", len(second), err)
	}
	if !bytes.Equal(first[0].Vertices, second[0].Vertices) {
		t.Error("vertex buffers differ between runs")
	}
	if !bytes.Equal(first[0].Indices, second[0].Indices) {
		t.Error("index buffers differ between runs")
	}
}
