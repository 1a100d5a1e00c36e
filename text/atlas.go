// Copyright 2026 The galileo Authors
// SPDX-License-Identifier: MIT

package text

import (
	"image"
	"image/draw"
	"math"
	"sync"

	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// PageSize is the width and height of one atlas page in pixels.
const PageSize = 1024

// glyphPad is the empty border around each packed glyph so that linear
// texture filtering never samples a neighbor.
const glyphPad = 1

// Region locates a rasterized glyph within an atlas page. Left and Top
// offset Rect from the glyph origin on the baseline, in pixels with y
// increasing downward; Top is negative for glyphs reaching above the
// baseline.
type Region struct {
	Page *image.Alpha
	Rect image.Rectangle
	Left float64
	Top  float64
}

type glyphKey struct {
	source *FontSource
	gid    GlyphID
	size   fixed.Int26_6
}

// Atlas packs rasterized glyph coverage into fixed-size alpha pages using
// shelf packing. Pages are append-only and never repacked, so render
// surfaces can key texture uploads off the page pointer.
//
// Atlas is safe for concurrent use.
type Atlas struct {
	mu     sync.Mutex
	pages  []*atlasPage
	glyphs map[glyphKey]*Region // nil entry records a glyph with no coverage
	buf    sfnt.Buffer
	ras    vector.Rasterizer
}

type atlasPage struct {
	img    *image.Alpha
	penX   int
	shelfY int
	shelfH int
}

// NewAtlas creates an empty atlas. Pages are allocated on demand.
func NewAtlas() *Atlas {
	return &Atlas{glyphs: make(map[glyphKey]*Region)}
}

// Glyph returns the atlas region for a glyph at the given pixel size,
// rasterizing and packing it on first use. ok is false for glyphs with no
// coverage, such as spaces.
func (a *Atlas) Glyph(src *FontSource, gid GlyphID, size float64) (Region, bool) {
	key := glyphKey{source: src, gid: gid, size: floatToFixed(size)}

	a.mu.Lock()
	defer a.mu.Unlock()

	if r, cached := a.glyphs[key]; cached {
		if r == nil {
			return Region{}, false
		}
		return *r, true
	}

	r := a.pack(src, gid, key.size)
	a.glyphs[key] = r
	if r == nil {
		return Region{}, false
	}
	return *r, true
}

// Pages returns the number of allocated pages.
func (a *Atlas) Pages() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.pages)
}

// pack rasterizes one glyph and copies it into a page. Callers hold a.mu.
func (a *Atlas) pack(src *FontSource, gid GlyphID, size fixed.Int26_6) *Region {
	segs, err := src.outline.LoadGlyph(&a.buf, sfnt.GlyphIndex(gid), size, nil)
	if err != nil || len(segs) == 0 {
		return nil
	}

	minX, minY, maxX, maxY := segmentBounds(segs)
	left := int(math.Floor(minX))
	top := int(math.Floor(minY))
	w := int(math.Ceil(maxX)) - left
	h := int(math.Ceil(maxY)) - top
	if w <= 0 || h <= 0 {
		return nil
	}

	cellW := w + 2*glyphPad
	cellH := h + 2*glyphPad
	if cellW > PageSize || cellH > PageSize {
		return nil
	}

	// Rasterize at cell-local coordinates. Glyph outlines are y-down with
	// the baseline at y=0, so translating by the padded top-left corner is
	// all that is needed.
	a.ras.Reset(cellW, cellH)
	a.ras.DrawOp = draw.Src
	dx := float32(glyphPad - left)
	dy := float32(glyphPad - top)
	for _, seg := range segs {
		// Args are 26.6 fixed point.
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			a.ras.MoveTo(
				dx+float32(seg.Args[0].X)/64,
				dy+float32(seg.Args[0].Y)/64,
			)
		case sfnt.SegmentOpLineTo:
			a.ras.LineTo(
				dx+float32(seg.Args[0].X)/64,
				dy+float32(seg.Args[0].Y)/64,
			)
		case sfnt.SegmentOpQuadTo:
			a.ras.QuadTo(
				dx+float32(seg.Args[0].X)/64,
				dy+float32(seg.Args[0].Y)/64,
				dx+float32(seg.Args[1].X)/64,
				dy+float32(seg.Args[1].Y)/64,
			)
		case sfnt.SegmentOpCubeTo:
			a.ras.CubeTo(
				dx+float32(seg.Args[0].X)/64,
				dy+float32(seg.Args[0].Y)/64,
				dx+float32(seg.Args[1].X)/64,
				dy+float32(seg.Args[1].Y)/64,
				dx+float32(seg.Args[2].X)/64,
				dy+float32(seg.Args[2].Y)/64,
			)
		}
	}
	mask := image.NewAlpha(image.Rect(0, 0, cellW, cellH))
	a.ras.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	page, x, y := a.reserve(cellW, cellH)
	rect := image.Rect(x, y, x+cellW, y+cellH)
	draw.Draw(page.img, rect, mask, image.Point{}, draw.Src)

	return &Region{
		Page: page.img,
		Rect: rect,
		Left: float64(left - glyphPad),
		Top:  float64(top - glyphPad),
	}
}

// reserve finds room for a w x h cell, opening a new shelf or page when the
// current one is full. Callers hold a.mu.
func (a *Atlas) reserve(w, h int) (*atlasPage, int, int) {
	for {
		var p *atlasPage
		if len(a.pages) > 0 {
			p = a.pages[len(a.pages)-1]
		}
		if p == nil {
			p = &atlasPage{img: image.NewAlpha(image.Rect(0, 0, PageSize, PageSize))}
			a.pages = append(a.pages, p)
		}

		if p.penX+w > PageSize {
			p.shelfY += p.shelfH
			p.shelfH = 0
			p.penX = 0
		}
		if p.shelfY+h > PageSize {
			a.pages = append(a.pages, &atlasPage{img: image.NewAlpha(image.Rect(0, 0, PageSize, PageSize))})
			continue
		}

		x, y := p.penX, p.shelfY
		p.penX += w
		if h > p.shelfH {
			p.shelfH = h
		}
		return p, x, y
	}
}

// segmentBounds scans outline segments for their extent. Curve control
// points are included, slightly overestimating for curved glyphs.
func segmentBounds(segs sfnt.Segments) (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, seg := range segs {
		pts := 1
		switch seg.Op {
		case sfnt.SegmentOpQuadTo:
			pts = 2
		case sfnt.SegmentOpCubeTo:
			pts = 3
		}
		for i := range pts {
			x := fixedToFloat(seg.Args[i].X)
			y := fixedToFloat(seg.Args[i].Y)
			minX = math.Min(minX, x)
			maxX = math.Max(maxX, x)
			minY = math.Min(minY, y)
			maxY = math.Max(maxY, y)
		}
	}
	return minX, minY, maxX, maxY
}
