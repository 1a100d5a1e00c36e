// Copyright 2026 The galileo Authors
// SPDX-License-Identifier: MIT

package render

import (
	"encoding/binary"
	"image"
	"image/color"
	"math"

	"github.com/gogpu/gputypes"
)

// SoftwareSurface rasterizes frames on the CPU into an image.RGBA.
//
// It implements the same Surface contract as GPU-backed surfaces and is
// used by tests and by headless snapshot rendering. Quality is basic:
// one sample per pixel center, no antialiasing.
type SoftwareSurface struct {
	img        *image.RGBA
	background Color
}

// NewSoftwareSurface creates a CPU surface of the given pixel size.
func NewSoftwareSurface(width, height int) *SoftwareSurface {
	return &SoftwareSurface{
		img:        image.NewRGBA(image.Rect(0, 0, width, height)),
		background: RGB(1, 1, 1),
	}
}

// SetBackground sets the color the target is cleared to at the start of
// every Submit.
func (s *SoftwareSurface) SetBackground(c Color) {
	s.background = c
}

// Size returns the target size in pixels.
func (s *SoftwareSurface) Size() (int, int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

// Format returns the pixel format of the target.
func (s *SoftwareSurface) Format() gputypes.TextureFormat {
	return gputypes.TextureFormatRGBA8Unorm
}

// Upload is a no-op: buffers are read directly at Submit time.
func (s *SoftwareSurface) Upload(*Primitive) error { return nil }

// Image returns the rendered target. Valid after Submit; the surface
// retains ownership.
func (s *SoftwareSurface) Image() *image.RGBA { return s.img }

// Submit clears the target and draws the frame's commands in order.
func (s *SoftwareSurface) Submit(f *Frame) error {
	s.clear()
	for _, cmd := range f.Commands() {
		s.draw(cmd)
	}
	return nil
}

func (s *SoftwareSurface) clear() {
	c := s.background.NRGBA()
	px := s.img.Pix
	for i := 0; i < len(px); i += 4 {
		px[i] = c.R
		px[i+1] = c.G
		px[i+2] = c.B
		px[i+3] = c.A
	}
}

// vertex is one decoded, transformed vertex.
type vertex struct {
	x, y float32
	u, v float32
}

func (s *SoftwareSurface) draw(cmd DrawCommand) {
	p := cmd.Primitive
	stride := p.Layout.Stride()
	if stride == 0 || len(p.Indices) < 12 {
		return
	}

	verts := decodeVertices(p, cmd.Transform)

	for i := 0; i+12 <= len(p.Indices); i += 12 {
		i0 := binary.LittleEndian.Uint32(p.Indices[i:])
		i1 := binary.LittleEndian.Uint32(p.Indices[i+4:])
		i2 := binary.LittleEndian.Uint32(p.Indices[i+8:])
		if int(i0) >= len(verts) || int(i1) >= len(verts) || int(i2) >= len(verts) {
			continue
		}
		s.fillTriangle(verts[i0], verts[i1], verts[i2], p.Material)
	}
}

// decodeVertices unpacks the primitive's vertex buffer and applies the
// draw transform. Offset attributes are screen-space and added after the
// transform.
func decodeVertices(p *Primitive, t Transform) []vertex {
	stride := p.Layout.Stride()
	n := len(p.Vertices) / stride
	verts := make([]vertex, n)

	for i := 0; i < n; i++ {
		base := i * stride
		x := f32At(p.Vertices, base)
		y := f32At(p.Vertices, base+4)
		sx, sy := t.Apply(x, y)

		switch p.Layout {
		case LayoutPosUV:
			verts[i] = vertex{
				x: sx, y: sy,
				u: f32At(p.Vertices, base+8),
				v: f32At(p.Vertices, base+12),
			}
		case LayoutPosOffset:
			verts[i] = vertex{
				x: sx + f32At(p.Vertices, base+8),
				y: sy + f32At(p.Vertices, base+12),
			}
		case LayoutPosOffsetUV:
			verts[i] = vertex{
				x: sx + f32At(p.Vertices, base+8),
				y: sy + f32At(p.Vertices, base+12),
				u: f32At(p.Vertices, base+16),
				v: f32At(p.Vertices, base+20),
			}
		default:
			verts[i] = vertex{x: sx, y: sy}
		}
	}
	return verts
}

func f32At(buf []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
}

func (s *SoftwareSurface) fillTriangle(v0, v1, v2 vertex, mat Material) {
	// Normalize winding so edge functions are positive inside.
	area := edge(v0, v1, v2)
	if area == 0 {
		return
	}
	if area < 0 {
		v1, v2 = v2, v1
		area = -area
	}

	b := s.img.Bounds()
	minX := clampInt(int(minf(v0.x, v1.x, v2.x)), b.Min.X, b.Max.X-1)
	maxX := clampInt(int(maxf(v0.x, v1.x, v2.x))+1, b.Min.X, b.Max.X-1)
	minY := clampInt(int(minf(v0.y, v1.y, v2.y)), b.Min.Y, b.Max.Y-1)
	maxY := clampInt(int(maxf(v0.y, v1.y, v2.y))+1, b.Min.Y, b.Max.Y-1)

	for py := minY; py <= maxY; py++ {
		for px := minX; px <= maxX; px++ {
			pt := vertex{x: float32(px) + 0.5, y: float32(py) + 0.5}
			w0 := edge(v1, v2, pt)
			w1 := edge(v2, v0, pt)
			w2 := edge(v0, v1, pt)
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}

			c := mat.Color
			if mat.Atlas != nil {
				inv := 1 / area
				u := (w0*v0.u + w1*v1.u + w2*v2.u) * inv
				v := (w0*v0.v + w1*v1.v + w2*v2.v) * inv
				c = c.WithAlpha(sampleAlpha(mat.Atlas, u, v))
			}
			s.blendPixel(px, py, c, mat.Blend)
		}
	}
}

// edge is the signed doubled area of the triangle (a, b, c); positive when
// c lies left of the directed edge a→b.
func edge(a, b, c vertex) float32 {
	return (b.x-a.x)*(c.y-a.y) - (b.y-a.y)*(c.x-a.x)
}

// sampleAlpha reads the atlas alpha at normalized texture coordinates
// with nearest-neighbor sampling.
func sampleAlpha(atlas *image.Alpha, u, v float32) float64 {
	b := atlas.Bounds()
	x := clampInt(int(u*float32(b.Dx())), b.Min.X, b.Max.X-1)
	y := clampInt(int(v*float32(b.Dy())), b.Min.Y, b.Max.Y-1)
	return float64(atlas.AlphaAt(x, y).A) / 255
}

func (s *SoftwareSurface) blendPixel(x, y int, c Color, blend BlendMode) {
	if blend == BlendNone {
		s.img.SetRGBA(x, y, rgbaOf(c))
		return
	}
	if c.A <= 0 {
		return
	}
	if c.A >= 1 {
		s.img.SetRGBA(x, y, rgbaOf(c))
		return
	}

	dst := s.img.RGBAAt(x, y)
	a := c.A
	s.img.SetRGBA(x, y, color.RGBA{
		R: uint8(clamp255(c.R*a*255 + float64(dst.R)*(1-a))),
		G: uint8(clamp255(c.G*a*255 + float64(dst.G)*(1-a))),
		B: uint8(clamp255(c.B*a*255 + float64(dst.B)*(1-a))),
		A: uint8(clamp255(a*255 + float64(dst.A)*(1-a))),
	})
}

func rgbaOf(c Color) color.RGBA {
	return color.RGBA{
		R: uint8(clamp255(c.R * 255)),
		G: uint8(clamp255(c.G * 255)),
		B: uint8(clamp255(c.B * 255)),
		A: uint8(clamp255(c.A * 255)),
	}
}

func minf(a, b, c float32) float32 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

func maxf(a, b, c float32) float32 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
