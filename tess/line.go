// Copyright 2026 The galileo Authors
// SPDX-License-Identifier: MIT

package tess

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/paulmach/orb"

	"github.com/siddheshzz/galileo/geom"
	"github.com/siddheshzz/galileo/render"
	"github.com/siddheshzz/galileo/style"
)

const (
	// strokeTolerance is the join flatness allowance in pixels. Turns
	// whose outer gap stays below it emit no join geometry.
	strokeTolerance = 0.25

	// arcStep is the angular resolution of round joins and caps.
	arcStep = math32.Pi / 8
)

// strokeOpts carries the resolved stroke parameters for one rule.
type strokeOpts struct {
	half         float32 // half width in tile units
	join         style.LineJoin
	cap          style.LineCap
	miterLimitSq float32
	joinThresh   float32
}

// buildLine expands the selected line geometries into stroke triangles.
// Polygon features are stroked along their rings as closed outlines.
func buildLine(rule *style.Rule, feats []geom.Feature, extent float32, zoom float64) ([]*render.Primitive, error) {
	width := interpolate(rule.Line.Width, zoom)
	if width <= 0 {
		return nil, nil
	}
	limit := float32(rule.Line.MiterLimit)
	o := strokeOpts{
		half:         width / 2 / referenceTileSize,
		join:         rule.Line.Join,
		cap:          rule.Line.Cap,
		miterLimitSq: limit * limit,
		joinThresh:   2 * strokeTolerance / width,
	}

	var b buffers
	for i := range feats {
		var err error
		switch g := feats[i].Geometry.(type) {
		case orb.LineString:
			err = strokeLineString(&b, g, extent, o)
		case orb.MultiLineString:
			for _, ls := range g {
				if err = strokeLineString(&b, ls, extent, o); err != nil {
					break
				}
			}
		case orb.Ring:
			err = strokeRing(&b, g, extent, o)
		case orb.Polygon:
			for _, r := range g {
				if err = strokeRing(&b, r, extent, o); err != nil {
					break
				}
			}
		case orb.MultiPolygon:
			for _, poly := range g {
				for _, r := range poly {
					if err = strokeRing(&b, r, extent, o); err != nil {
						break
					}
				}
				if err != nil {
					break
				}
			}
		}
		if err != nil {
			return nil, err
		}
	}

	p := b.primitive(render.LayoutPos, render.Material{
		Color: paintColor(rule.Line.Color, rule.Line.Opacity, zoom),
		Blend: render.BlendAlpha,
	})
	if p == nil {
		return nil, nil
	}
	return []*render.Primitive{p}, nil
}

func strokeLineString(b *buffers, ls orb.LineString, extent float32, o strokeOpts) error {
	if len(ls) < 2 {
		return fmt.Errorf("%w: line with %d points", ErrUnsupportedGeometry, len(ls))
	}
	pts := dedupPoints(ls, extent)
	if len(pts) < 2 {
		return nil // collapsed to a point
	}
	stroke(b, pts, false, o)
	return nil
}

func strokeRing(b *buffers, r orb.Ring, extent float32, o strokeOpts) error {
	open := openRing(r)
	if len(open) < 3 {
		return fmt.Errorf("%w: ring with %d points", ErrUnsupportedGeometry, len(open))
	}
	pts := dedupPoints(open, extent)
	if len(pts) >= 2 && pts[0] == pts[len(pts)-1] {
		pts = pts[:len(pts)-1]
	}
	if len(pts) < 3 {
		return nil
	}
	stroke(b, pts, true, o)
	return nil
}

// dedupPoints normalizes points to unit tile space, dropping consecutive
// duplicates that would produce zero-length segments. Comparison happens
// after the float32 conversion so near-coincident input cannot collapse
// a segment to zero length downstream.
func dedupPoints(pts []orb.Point, extent float32) []vec2 {
	out := make([]vec2, 0, len(pts))
	for _, p := range pts {
		v := vec2{float32(p[0]) / extent, float32(p[1]) / extent}
		if len(out) > 0 && v == out[len(out)-1] {
			continue
		}
		out = append(out, v)
	}
	return out
}

// stroke expands one polyline into triangles: a quad per segment, join
// geometry on the outer side of each turn, and caps on open ends. pts
// has no consecutive duplicates and at least two entries (three when
// closed).
func stroke(b *buffers, pts []vec2, closed bool, o strokeOpts) {
	n := len(pts)
	segs := n - 1
	if closed {
		segs = n
	}

	dirs := make([]vec2, segs)
	norms := make([]vec2, segs)
	for i := range segs {
		t := pts[(i+1)%n].sub(pts[i])
		d := t.scale(1 / t.length())
		dirs[i] = d
		norms[i] = d.perp().scale(o.half)
	}

	for i := range segs {
		a := pts[i]
		c := pts[(i+1)%n]
		nm := norms[i]
		a0 := b.pos(a.x-nm.x, a.y-nm.y)
		a1 := b.pos(a.x+nm.x, a.y+nm.y)
		c1 := b.pos(c.x+nm.x, c.y+nm.y)
		c0 := b.pos(c.x-nm.x, c.y-nm.y)
		b.tri(a0, a1, c1)
		b.tri(a0, c1, c0)
	}

	if closed {
		for vi := range n {
			p := (vi + segs - 1) % segs
			joinAt(b, pts[vi], dirs[p], dirs[vi], norms[p], norms[vi], o)
		}
		return
	}
	for vi := 1; vi < n-1; vi++ {
		joinAt(b, pts[vi], dirs[vi-1], dirs[vi], norms[vi-1], norms[vi], o)
	}
	capAt(b, pts[0], dirs[0].neg(), o)
	capAt(b, pts[n-1], dirs[segs-1], o)
}

// joinAt emits join geometry at v between segments with unit directions
// d1, d2 and scaled normals n1, n2.
func joinAt(b *buffers, v, d1, d2, n1, n2 vec2, o strokeOpts) {
	cross := d1.cross(d2)
	dot := d1.dot(d2)

	// Shallow turns leave a sub-tolerance sliver; skip the join.
	if dot > 0 && math32.Abs(cross) < o.joinThresh {
		return
	}

	// A positive cross turns toward the +normal side, leaving the outer
	// gap on the -normal side.
	outer1, outer2 := v.add(n1), v.add(n2)
	if cross > 0 {
		outer1, outer2 = v.sub(n1), v.sub(n2)
	}

	switch o.join {
	case style.JoinRound:
		roundFan(b, v, outer1, outer2, o.half, cross, dot)
	case style.JoinMiter:
		if 2 < (1+dot)*o.miterLimitSq {
			// The offset edges meet at v + k*2h²/|k|² with k the sum
			// of the outer normals.
			u1 := outer1.sub(v)
			u2 := outer2.sub(v)
			k := u1.add(u2)
			den := k.dot(k)
			if den > 0 {
				m := v.add(k.scale(2 * o.half * o.half / den))
				c := b.pos(v.x, v.y)
				e1 := b.pos(outer1.x, outer1.y)
				mi := b.pos(m.x, m.y)
				e2 := b.pos(outer2.x, outer2.y)
				b.tri(c, e1, mi)
				b.tri(c, mi, e2)
				return
			}
		}
		fallthrough
	default:
		c := b.pos(v.x, v.y)
		e1 := b.pos(outer1.x, outer1.y)
		e2 := b.pos(outer2.x, outer2.y)
		b.tri(c, e1, e2)
	}
}

// roundFan fills the outer wedge between e1 and e2 with an arc fan
// around v, sweeping in the turn direction. The final fan vertex lands
// exactly on e2 so the join is watertight against the next quad.
func roundFan(b *buffers, v, e1, e2 vec2, radius, cross, dot float32) {
	turn := math32.Atan2(math32.Abs(cross), dot)
	steps := int(math32.Ceil(turn / arcStep))
	if steps < 1 {
		steps = 1
	}
	sweep := turn
	if cross <= 0 {
		sweep = -turn
	}
	a0 := math32.Atan2(e1.y-v.y, e1.x-v.x)

	c := b.pos(v.x, v.y)
	last := b.pos(e1.x, e1.y)
	for s := 1; s <= steps; s++ {
		var cur uint32
		if s == steps {
			cur = b.pos(e2.x, e2.y)
		} else {
			ang := a0 + sweep*float32(s)/float32(steps)
			cur = b.pos(v.x+radius*math32.Cos(ang), v.y+radius*math32.Sin(ang))
		}
		b.tri(c, last, cur)
		last = cur
	}
}

// capAt emits cap geometry at endpoint e for a stroke leaving in unit
// direction d, pointing out of the line.
func capAt(b *buffers, e, d vec2, o strokeOpts) {
	if o.cap == style.CapButt {
		return
	}
	nm := d.perp().scale(o.half)

	switch o.cap {
	case style.CapSquare:
		ext := d.scale(o.half)
		p0 := e.sub(nm)
		p1 := e.add(nm)
		q1 := p1.add(ext)
		q0 := p0.add(ext)
		i0 := b.pos(p0.x, p0.y)
		i1 := b.pos(p1.x, p1.y)
		j1 := b.pos(q1.x, q1.y)
		j0 := b.pos(q0.x, q0.y)
		b.tri(i0, i1, j1)
		b.tri(i0, j1, j0)
	case style.CapRound:
		// Half circle from one stroke edge to the other, passing
		// through the cap direction.
		a0 := math32.Atan2(nm.y, nm.x)
		steps := int(math32.Ceil(math32.Pi / arcStep))
		e2 := e.sub(nm)
		c := b.pos(e.x, e.y)
		last := b.pos(e.x+nm.x, e.y+nm.y)
		for s := 1; s <= steps; s++ {
			var cur uint32
			if s == steps {
				cur = b.pos(e2.x, e2.y)
			} else {
				ang := a0 - math32.Pi*float32(s)/float32(steps)
				cur = b.pos(e.x+o.half*math32.Cos(ang), e.y+o.half*math32.Sin(ang))
			}
			b.tri(c, last, cur)
			last = cur
		}
	}
}
