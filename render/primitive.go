// Copyright 2026 The galileo Authors
// SPDX-License-Identifier: MIT

package render

import (
	"image"
	"sync"

	"github.com/siddheshzz/galileo/tile"
)

// VertexLayout identifies the vertex attribute layout of a primitive's
// vertex buffer. All attributes are little-endian float32.
type VertexLayout uint8

const (
	// LayoutPos packs (x, y) positions in tile-local units.
	LayoutPos VertexLayout = iota
	// LayoutPosUV packs (x, y, u, v): position plus a texture coordinate
	// into the primitive's atlas.
	LayoutPosUV
	// LayoutPosOffset packs (x, y, ox, oy): an anchor position in
	// tile-local units plus an offset in screen pixels applied after the
	// draw transform, keeping billboards a constant on-screen size.
	LayoutPosOffset
	// LayoutPosOffsetUV packs (x, y, ox, oy, u, v): a billboard anchor,
	// screen-pixel offset and a texture coordinate. Used for glyph quads.
	LayoutPosOffsetUV
)

// Stride returns the size of one vertex in bytes.
func (l VertexLayout) Stride() int {
	switch l {
	case LayoutPos:
		return 8
	case LayoutPosUV, LayoutPosOffset:
		return 16
	case LayoutPosOffsetUV:
		return 24
	default:
		return 0
	}
}

// String returns the layout name for logs.
func (l VertexLayout) String() string {
	switch l {
	case LayoutPos:
		return "pos"
	case LayoutPosUV:
		return "pos-uv"
	case LayoutPosOffset:
		return "pos-offset"
	case LayoutPosOffsetUV:
		return "pos-offset-uv"
	default:
		return "unknown"
	}
}

// BlendMode selects how a primitive's fragments combine with the target.
type BlendMode uint8

const (
	// BlendAlpha is standard source-over alpha blending.
	BlendAlpha BlendMode = iota
	// BlendNone overwrites the target without blending.
	BlendNone
)

// Material describes how a primitive is shaded.
type Material struct {
	// Color is the base color. For textured primitives the texture's
	// alpha modulates it.
	Color Color

	// Blend selects the blend mode.
	Blend BlendMode

	// Atlas is the alpha texture page sampled by LayoutPosUV primitives,
	// nil for untextured geometry. Pages are fixed-size and never
	// reallocated, so pointer identity keys GPU uploads.
	Atlas *image.Alpha
}

// primitiveOverhead approximates the fixed per-primitive memory cost
// beyond the packed buffers, for cache accounting.
const primitiveOverhead = 160

// Primitive is one self-contained GPU drawable: packed vertex and index
// buffers, a material, and the lineage of the tile and style layer that
// produced it.
//
// Primitives are immutable after construction and shared by reference
// between the cache and any in-flight frames. Sharing is tracked with a
// reference count: the cache holds one reference for a resident entry and
// each composed frame holds one per use. When the count reaches zero any
// GPU resources a surface attached are freed, exactly once. A frame still
// referencing an evicted primitive therefore keeps it drawable until the
// frame is released.
type Primitive struct {
	// Layout describes the vertex buffer format.
	Layout VertexLayout

	// Vertices is the packed little-endian vertex buffer.
	Vertices []byte

	// Indices is the packed little-endian uint32 index buffer, three
	// indices per triangle.
	Indices []byte

	// Material describes shading.
	Material Material

	// Tile is the coordinate of the tile this primitive was built from.
	Tile tile.Coord

	// LayerID is the style rule that produced the primitive.
	LayerID string

	// LayerIndex is the draw layer that rule paints into. Composers use
	// it to keep draw order consistent across tiles.
	LayerIndex int

	mu         sync.Mutex
	refs       int32
	gpuRelease func()
}

// NewPrimitive creates a primitive holding one reference owned by the
// caller.
func NewPrimitive(layout VertexLayout, vertices, indices []byte, mat Material) *Primitive {
	return &Primitive{
		Layout:   layout,
		Vertices: vertices,
		Indices:  indices,
		Material: mat,
		refs:     1,
	}
}

// VertexCount returns the number of vertices in the buffer.
func (p *Primitive) VertexCount() int {
	s := p.Layout.Stride()
	if s == 0 {
		return 0
	}
	return len(p.Vertices) / s
}

// IndexCount returns the number of indices in the buffer.
func (p *Primitive) IndexCount() int {
	return len(p.Indices) / 4
}

// Weight returns the primitive's approximate memory footprint in bytes,
// used for cache budget accounting.
func (p *Primitive) Weight() int {
	return len(p.Vertices) + len(p.Indices) + primitiveOverhead
}

// Retain adds a reference. Every Retain must be paired with a Release.
func (p *Primitive) Retain() {
	p.mu.Lock()
	p.refs++
	p.mu.Unlock()
}

// Release drops a reference. When the last reference is dropped, GPU
// resources attached by a surface are freed. Releasing more often than
// retaining is a bug; the count never goes below zero.
func (p *Primitive) Release() {
	p.mu.Lock()
	if p.refs > 0 {
		p.refs--
	}
	var free func()
	if p.refs == 0 {
		free = p.gpuRelease
		p.gpuRelease = nil
	}
	p.mu.Unlock()

	if free != nil {
		free()
	}
}

// Refs returns the current reference count. Intended for tests and
// debug logging; the value may be stale by the time it is observed.
func (p *Primitive) Refs() int32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.refs
}

// AttachGPU stores the release hook for GPU resources a surface created
// for this primitive. Attaching while a previous hook is present frees
// the previous resources first, so surfaces may re-upload safely.
func (p *Primitive) AttachGPU(release func()) {
	p.mu.Lock()
	prev := p.gpuRelease
	p.gpuRelease = release
	alive := p.refs > 0
	p.mu.Unlock()

	if prev != nil {
		prev()
	}
	if !alive && release != nil {
		// Raced with the final Release; free immediately.
		p.mu.Lock()
		p.gpuRelease = nil
		p.mu.Unlock()
		release()
	}
}
