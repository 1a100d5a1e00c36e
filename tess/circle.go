// Copyright 2026 The galileo Authors
// SPDX-License-Identifier: MIT

package tess

import (
	"github.com/chewxy/math32"
	"github.com/paulmach/orb"

	"github.com/siddheshzz/galileo/geom"
	"github.com/siddheshzz/galileo/render"
	"github.com/siddheshzz/galileo/style"
)

// circleSegments is the fan resolution of point circles.
const circleSegments = 16

// buildCircle emits a screen-space circle fan for every selected point
// feature.
func buildCircle(rule *style.Rule, feats []geom.Feature, extent float32, zoom float64) ([]*render.Primitive, error) {
	radius := interpolate(rule.Circle.Radius, zoom)
	if radius <= 0 {
		return nil, nil
	}

	var b buffers
	for i := range feats {
		switch g := feats[i].Geometry.(type) {
		case orb.Point:
			circleFan(&b, g, extent, radius)
		case orb.MultiPoint:
			for _, p := range g {
				circleFan(&b, p, extent, radius)
			}
		}
	}

	p := b.primitive(render.LayoutPosOffset, render.Material{
		Color: paintColor(rule.Circle.Color, rule.Circle.Opacity, zoom),
		Blend: render.BlendAlpha,
	})
	if p == nil {
		return nil, nil
	}
	return []*render.Primitive{p}, nil
}

// circleFan emits one circle as billboard vertices: every vertex anchors
// at the feature point and carries a pixel offset, so circles keep their
// on-screen size as the map scales.
func circleFan(b *buffers, pt orb.Point, extent, radius float32) {
	x := float32(pt[0]) / extent
	y := float32(pt[1]) / extent

	c := b.posOffset(x, y, 0, 0)
	first := b.posOffset(x, y, radius, 0)
	last := first
	for s := 1; s <= circleSegments; s++ {
		cur := first
		if s < circleSegments {
			ang := 2 * math32.Pi * float32(s) / circleSegments
			cur = b.posOffset(x, y, radius*math32.Cos(ang), radius*math32.Sin(ang))
		}
		b.tri(c, last, cur)
		last = cur
	}
}
