// Copyright 2026 The galileo Authors
// SPDX-License-Identifier: MIT

package tess

import (
	"encoding/binary"

	"github.com/chewxy/math32"

	"github.com/siddheshzz/galileo/render"
	"github.com/siddheshzz/galileo/style"
)

// buffers accumulates one primitive's packed vertex and index data.
// All packing is explicit little-endian so identical input produces
// byte-identical buffers on every platform.
type buffers struct {
	verts []byte
	idx   []byte
	n     uint32
}

func (b *buffers) f32(v float32) {
	b.verts = binary.LittleEndian.AppendUint32(b.verts, math32.Float32bits(v))
}

// pos appends a LayoutPos vertex and returns its index.
func (b *buffers) pos(x, y float32) uint32 {
	b.f32(x)
	b.f32(y)
	i := b.n
	b.n++
	return i
}

// posOffset appends a LayoutPosOffset vertex and returns its index.
func (b *buffers) posOffset(x, y, ox, oy float32) uint32 {
	b.f32(x)
	b.f32(y)
	b.f32(ox)
	b.f32(oy)
	i := b.n
	b.n++
	return i
}

// posOffsetUV appends a LayoutPosOffsetUV vertex and returns its index.
func (b *buffers) posOffsetUV(x, y, ox, oy, u, v float32) uint32 {
	b.f32(x)
	b.f32(y)
	b.f32(ox)
	b.f32(oy)
	b.f32(u)
	b.f32(v)
	i := b.n
	b.n++
	return i
}

// tri appends one triangle to the index buffer.
func (b *buffers) tri(i0, i1, i2 uint32) {
	b.idx = binary.LittleEndian.AppendUint32(b.idx, i0)
	b.idx = binary.LittleEndian.AppendUint32(b.idx, i1)
	b.idx = binary.LittleEndian.AppendUint32(b.idx, i2)
}

func (b *buffers) empty() bool {
	return len(b.idx) == 0
}

// primitive wraps the accumulated buffers, or returns nil when nothing
// was emitted so the caller can skip the rule.
func (b *buffers) primitive(layout render.VertexLayout, mat render.Material) *render.Primitive {
	if b.empty() {
		return nil
	}
	return render.NewPrimitive(layout, b.verts, b.idx, mat)
}

// vec2 is a float32 point in normalized tile space, with the small
// vector algebra stroke expansion needs.
type vec2 struct {
	x, y float32
}

func (v vec2) add(o vec2) vec2      { return vec2{v.x + o.x, v.y + o.y} }
func (v vec2) sub(o vec2) vec2      { return vec2{v.x - o.x, v.y - o.y} }
func (v vec2) scale(s float32) vec2 { return vec2{v.x * s, v.y * s} }
func (v vec2) neg() vec2            { return vec2{-v.x, -v.y} }

// perp rotates the vector a quarter turn counterclockwise in y-down
// screen space.
func (v vec2) perp() vec2 { return vec2{-v.y, v.x} }

func (v vec2) length() float32 { return math32.Hypot(v.x, v.y) }

func (v vec2) dot(o vec2) float32 { return v.x*o.x + v.y*o.y }

func (v vec2) cross(o vec2) float32 { return v.x*o.y - v.y*o.x }

// interpolate evaluates a zoom-stop number, clamped at the outer stops.
func interpolate(n style.Number, zoom float64) float32 {
	return float32(n.At(zoom))
}
