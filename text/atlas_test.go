// Copyright 2026 The galileo Authors
// SPDX-License-Identifier: MIT

package text

import (
	"image"
	"testing"
)

func TestAtlasGlyph(t *testing.T) {
	source := testSource(t)
	atlas := NewAtlas()

	gid, ok := source.GlyphIndex('A')
	if !ok {
		t.Fatal("no glyph for 'A'")
	}

	region, ok := atlas.Glyph(source, gid, 32)
	if !ok {
		t.Fatal("Glyph('A') has no coverage")
	}
	if region.Page == nil {
		t.Fatal("region has no page")
	}
	if region.Rect.Empty() {
		t.Fatal("region rect is empty")
	}
	if !region.Rect.In(region.Page.Bounds()) {
		t.Errorf("rect %v outside page bounds %v", region.Rect, region.Page.Bounds())
	}
	// 'A' reaches above the baseline, so the cell top sits above the origin.
	if region.Top >= 0 {
		t.Errorf("Top = %f, want < 0", region.Top)
	}

	// The mask must contain actual coverage.
	var sum int
	for y := region.Rect.Min.Y; y < region.Rect.Max.Y; y++ {
		for x := region.Rect.Min.X; x < region.Rect.Max.X; x++ {
			sum += int(region.Page.AlphaAt(x, y).A)
		}
	}
	if sum == 0 {
		t.Error("glyph cell is fully transparent")
	}
}

func TestAtlasGlyphCached(t *testing.T) {
	source := testSource(t)
	atlas := NewAtlas()

	gid, _ := source.GlyphIndex('g')
	first, ok1 := atlas.Glyph(source, gid, 24)
	second, ok2 := atlas.Glyph(source, gid, 24)
	if !ok1 || !ok2 {
		t.Fatal("glyph not packed")
	}
	if first.Rect != second.Rect || first.Page != second.Page {
		t.Errorf("repeat lookup moved: %v vs %v", first.Rect, second.Rect)
	}
	if atlas.Pages() != 1 {
		t.Errorf("Pages() = %d, want 1", atlas.Pages())
	}

	// A different size is a different atlas entry.
	third, ok := atlas.Glyph(source, gid, 48)
	if !ok {
		t.Fatal("48px glyph not packed")
	}
	if third.Rect == first.Rect {
		t.Error("different sizes share a cell")
	}
}

func TestAtlasSpaceHasNoCoverage(t *testing.T) {
	source := testSource(t)
	atlas := NewAtlas()

	gid, ok := source.GlyphIndex(' ')
	if !ok {
		t.Fatal("no glyph for space")
	}

	if _, ok := atlas.Glyph(source, gid, 16); ok {
		t.Error("space glyph reported coverage")
	}
	// The miss is cached too.
	if _, ok := atlas.Glyph(source, gid, 16); ok {
		t.Error("space glyph reported coverage on second lookup")
	}
	if atlas.Pages() != 0 {
		t.Errorf("Pages() = %d, want 0 for coverage-free glyphs", atlas.Pages())
	}
}

func TestAtlasPadding(t *testing.T) {
	source := testSource(t)
	atlas := NewAtlas()

	gid, _ := source.GlyphIndex('M')
	region, ok := atlas.Glyph(source, gid, 40)
	if !ok {
		t.Fatal("glyph not packed")
	}

	// The one-pixel border of every cell stays transparent.
	r := region.Rect
	for x := r.Min.X; x < r.Max.X; x++ {
		if a := region.Page.AlphaAt(x, r.Min.Y).A; a != 0 {
			t.Fatalf("top border pixel (%d,%d) = %d, want 0", x, r.Min.Y, a)
		}
		if a := region.Page.AlphaAt(x, r.Max.Y-1).A; a != 0 {
			t.Fatalf("bottom border pixel (%d,%d) = %d, want 0", x, r.Max.Y-1, a)
		}
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		if a := region.Page.AlphaAt(r.Min.X, y).A; a != 0 {
			t.Fatalf("left border pixel (%d,%d) = %d, want 0", r.Min.X, y, a)
		}
		if a := region.Page.AlphaAt(r.Max.X-1, y).A; a != 0 {
			t.Fatalf("right border pixel (%d,%d) = %d, want 0", r.Max.X-1, y, a)
		}
	}
}

func TestAtlasReserveShelvesAndPages(t *testing.T) {
	atlas := NewAtlas()

	p1, x, y := atlas.reserve(600, 600)
	if x != 0 || y != 0 {
		t.Fatalf("first cell at (%d,%d), want (0,0)", x, y)
	}
	// Does not fit beside the first cell, opens a second shelf.
	p2, x, y := atlas.reserve(600, 300)
	if p2 != p1 || x != 0 || y != 600 {
		t.Fatalf("second cell at (%d,%d) samePage=%v, want (0,600) true", x, y, p2 == p1)
	}
	// Fits beside the second cell on the same shelf.
	p3, x, y := atlas.reserve(300, 200)
	if p3 != p1 || x != 600 || y != 600 {
		t.Fatalf("third cell at (%d,%d) samePage=%v, want (600,600) true", x, y, p3 == p1)
	}
	// Too tall for the remaining space, spills to a new page.
	p4, x, y := atlas.reserve(600, 600)
	if p4 == p1 || x != 0 || y != 0 {
		t.Fatalf("fourth cell at (%d,%d) newPage=%v, want (0,0) true", x, y, p4 != p1)
	}
	if atlas.Pages() != 2 {
		t.Errorf("Pages() = %d, want 2", atlas.Pages())
	}
}

func TestAtlasManyGlyphs(t *testing.T) {
	source := testSource(t)
	atlas := NewAtlas()

	packed := 0
	for r := 'A'; r <= 'Z'; r++ {
		gid, ok := source.GlyphIndex(r)
		if !ok {
			continue
		}
		for _, size := range []float64{12, 18, 24} {
			region, ok := atlas.Glyph(source, gid, size)
			if !ok {
				t.Fatalf("glyph %c at %v not packed", r, size)
			}
			if region.Rect.Empty() {
				t.Fatalf("glyph %c at %v has empty rect", r, size)
			}
			packed++
		}
	}
	if packed != 26*3 {
		t.Errorf("packed %d cells, want %d", packed, 26*3)
	}
	if atlas.Pages() != 1 {
		t.Errorf("Pages() = %d, want 1 for small glyphs", atlas.Pages())
	}

	// Distinct cells never overlap.
	type cell struct {
		page *image.Alpha
		rect image.Rectangle
	}
	var cells []cell
	for r := 'A'; r <= 'Z'; r++ {
		gid, _ := source.GlyphIndex(r)
		region, _ := atlas.Glyph(source, gid, 18)
		for _, c := range cells {
			if c.page == region.Page && c.rect.Overlaps(region.Rect) {
				t.Fatalf("cell %v overlaps %v", region.Rect, c.rect)
			}
		}
		cells = append(cells, cell{region.Page, region.Rect})
	}
}
