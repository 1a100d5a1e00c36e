// Copyright 2026 The galileo Authors
// SPDX-License-Identifier: MIT

package tess

import (
	"fmt"

	"github.com/paulmach/orb"

	"github.com/siddheshzz/galileo/geom"
	"github.com/siddheshzz/galileo/render"
	"github.com/siddheshzz/galileo/style"
)

// buildFill triangulates the polygon interiors of the selected features
// into one primitive.
func buildFill(rule *style.Rule, feats []geom.Feature, extent float32, zoom float64) ([]*render.Primitive, error) {
	var b buffers
	for i := range feats {
		switch g := feats[i].Geometry.(type) {
		case orb.Polygon:
			if err := fillPolygon(&b, g, extent); err != nil {
				return nil, err
			}
		case orb.MultiPolygon:
			for _, poly := range g {
				if err := fillPolygon(&b, poly, extent); err != nil {
					return nil, err
				}
			}
		}
	}

	p := b.primitive(render.LayoutPos, render.Material{
		Color: paintColor(rule.Fill.Color, rule.Fill.Opacity, zoom),
		Blend: render.BlendAlpha,
	})
	if p == nil {
		return nil, nil
	}
	return []*render.Primitive{p}, nil
}

// fillPolygon triangulates one polygon with its holes and appends the
// result, normalized to unit tile space.
func fillPolygon(b *buffers, poly orb.Polygon, extent float32) error {
	if len(poly) == 0 {
		return nil
	}

	var (
		data  []float64
		holes []int
	)
	for ri, ring := range poly {
		pts := openRing(ring)
		if len(pts) < 3 {
			return fmt.Errorf("%w: polygon ring with %d points", ErrUnsupportedGeometry, len(pts))
		}
		if ri > 0 {
			holes = append(holes, len(data)/2)
		}
		for _, p := range pts {
			data = append(data, p[0], p[1])
		}
	}

	tris := earcut(data, holes)
	if len(tris) == 0 {
		return nil
	}

	base := b.n
	for i := 0; i < len(data); i += 2 {
		b.pos(float32(data[i])/extent, float32(data[i+1])/extent)
	}
	for i := 0; i < len(tris); i += 3 {
		b.tri(base+tris[i], base+tris[i+1], base+tris[i+2])
	}
	return nil
}

// openRing returns the ring without its closing duplicate point.
func openRing(r orb.Ring) orb.Ring {
	if len(r) >= 2 && r[0] == r[len(r)-1] {
		return r[:len(r)-1]
	}
	return r
}
