// Copyright 2026 The galileo Authors
// SPDX-License-Identifier: MIT

package tess

import (
	"image"
	"strconv"

	"github.com/paulmach/orb"

	"github.com/siddheshzz/galileo/geom"
	"github.com/siddheshzz/galileo/render"
	"github.com/siddheshzz/galileo/style"
	"github.com/siddheshzz/galileo/text"
)

// buildSymbol shapes and places text labels for selected point features.
// Glyph quads are billboards: the anchor scales with the map, glyph
// offsets stay in pixels. Quads are grouped per atlas page, one
// primitive each, since a material samples a single page; pages appear
// in first-use order so the output stays deterministic.
func (t *Tessellator) buildSymbol(rule *style.Rule, feats []geom.Feature, extent float32, zoom float64) ([]*render.Primitive, error) {
	src := t.font(rule.Symbol.TextFont)
	if src == nil {
		return nil, nil
	}
	size := rule.Symbol.TextSize.At(zoom)
	if size <= 0 {
		return nil, nil
	}
	face := src.Face(size)
	m := face.Metrics()
	// Drop the baseline below the anchor so the text block is
	// vertically centered on the feature point.
	baseline := float32((m.Ascent - m.Descent) / 2)

	var (
		pages []*image.Alpha
		bufs  []*buffers
	)
	pageBuf := func(pg *image.Alpha) *buffers {
		for i, p := range pages {
			if p == pg {
				return bufs[i]
			}
		}
		pages = append(pages, pg)
		bufs = append(bufs, &buffers{})
		return bufs[len(bufs)-1]
	}

	for i := range feats {
		f := &feats[i]
		txt := labelText(f.Properties, rule.Symbol.TextField)
		if txt == "" {
			continue
		}
		switch g := f.Geometry.(type) {
		case orb.Point:
			t.labelQuads(pageBuf, g, extent, face, txt, baseline)
		case orb.MultiPoint:
			for _, p := range g {
				t.labelQuads(pageBuf, p, extent, face, txt, baseline)
			}
		}
	}

	var prims []*render.Primitive
	for i, bf := range bufs {
		p := bf.primitive(render.LayoutPosOffsetUV, render.Material{
			Color: rule.Symbol.TextColor,
			Blend: render.BlendAlpha,
			Atlas: pages[i],
		})
		if p != nil {
			prims = append(prims, p)
		}
	}
	return prims, nil
}

// labelQuads shapes txt, packs its glyphs into the atlas and emits one
// UV quad per glyph with coverage, horizontally centered on the anchor.
func (t *Tessellator) labelQuads(pageBuf func(*image.Alpha) *buffers, pt orb.Point, extent float32, face text.Face, txt string, baseline float32) {
	glyphs := t.runs.GetOrShape(t.shaper, face, txt)
	if len(glyphs) == 0 {
		return
	}
	x := float32(pt[0]) / extent
	y := float32(pt[1]) / extent
	startX := float32(-text.Advance(glyphs) / 2)

	for _, g := range glyphs {
		region, ok := t.atlas.Glyph(face.Source, g.GID, face.Size)
		if !ok {
			continue // no coverage, e.g. spaces
		}
		b := pageBuf(region.Page)

		left := startX + float32(g.X) + float32(region.Left)
		top := baseline + float32(g.Y) + float32(region.Top)
		w := float32(region.Rect.Dx())
		h := float32(region.Rect.Dy())
		u0 := float32(region.Rect.Min.X) / text.PageSize
		v0 := float32(region.Rect.Min.Y) / text.PageSize
		u1 := float32(region.Rect.Max.X) / text.PageSize
		v1 := float32(region.Rect.Max.Y) / text.PageSize

		i0 := b.posOffsetUV(x, y, left, top, u0, v0)
		i1 := b.posOffsetUV(x, y, left+w, top, u1, v0)
		i2 := b.posOffsetUV(x, y, left+w, top+h, u1, v1)
		i3 := b.posOffsetUV(x, y, left, top+h, u0, v1)
		b.tri(i0, i1, i2)
		b.tri(i0, i2, i3)
	}
}

// labelText reads the label property, accepting strings directly and
// formatting numbers.
func labelText(props geom.Properties, field string) string {
	v, ok := props.Get(field)
	if !ok {
		return ""
	}
	if s, ok := v.AsString(); ok {
		return s
	}
	if n, ok := v.AsNumber(); ok {
		return strconv.FormatFloat(n, 'g', -1, 64)
	}
	return ""
}
