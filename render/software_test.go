// Copyright 2026 The galileo Authors
// SPDX-License-Identifier: MIT

package render

import (
	"image"
	"math"
	"testing"

	"github.com/gogpu/gputypes"
)

// packTestTriangle builds a LayoutPos primitive with one triangle.
func packTestTriangle(x0, y0, x1, y1, x2, y2 float32, c Color) *Primitive {
	verts := packFloats([]float32{x0, y0, x1, y1, x2, y2})
	idx := packIndices([]uint32{0, 1, 2})
	return NewPrimitive(LayoutPos, verts, idx, Material{Color: c})
}

func packFloats(vals []float32) []byte {
	buf := make([]byte, 0, len(vals)*4)
	for _, v := range vals {
		buf = appendF32(buf, v)
	}
	return buf
}

func packIndices(vals []uint32) []byte {
	buf := make([]byte, 0, len(vals)*4)
	for _, v := range vals {
		buf = append(buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
	}
	return buf
}

func appendF32(buf []byte, v float32) []byte {
	bits := math.Float32bits(v)
	return append(buf, byte(bits), byte(bits>>8), byte(bits>>16), byte(bits>>24))
}

func TestSoftwareSurfaceBasics(t *testing.T) {
	s := NewSoftwareSurface(64, 32)

	w, h := s.Size()
	if w != 64 || h != 32 {
		t.Errorf("Size() = %d,%d, want 64,32", w, h)
	}
	if s.Format() != gputypes.TextureFormatRGBA8Unorm {
		t.Errorf("Format() = %v, want RGBA8Unorm", s.Format())
	}
	if err := s.Upload(nil); err != nil {
		t.Errorf("Upload() error = %v", err)
	}
}

func TestSoftwareSurfaceTriangle(t *testing.T) {
	s := NewSoftwareSurface(32, 32)
	s.SetBackground(RGB(0, 0, 0))

	p := packTestTriangle(0, 0, 32, 0, 0, 32, RGB(1, 0, 0))
	defer p.Release()

	f := NewFrame(32, 32)
	f.Append(p, Identity())
	defer f.Release()

	if err := s.Submit(f); err != nil {
		t.Fatalf("Submit() error: %v", err)
	}

	img := s.Image()

	// Well inside the triangle.
	if got := img.RGBAAt(4, 4); got.R != 255 || got.G != 0 {
		t.Errorf("inside pixel = %v, want red", got)
	}
	// Well outside (opposite corner).
	if got := img.RGBAAt(30, 30); got.R != 0 {
		t.Errorf("outside pixel = %v, want background", got)
	}
}

func TestSoftwareSurfaceTransform(t *testing.T) {
	s := NewSoftwareSurface(32, 32)
	s.SetBackground(RGB(0, 0, 0))

	// Unit-space triangle scaled up by the draw transform.
	p := packTestTriangle(0, 0, 1, 0, 0, 1, RGB(0, 1, 0))
	defer p.Release()

	f := NewFrame(32, 32)
	f.Append(p, Scale(32, 32))
	defer f.Release()

	if err := s.Submit(f); err != nil {
		t.Fatalf("Submit() error: %v", err)
	}

	if got := s.Image().RGBAAt(4, 4); got.G != 255 {
		t.Errorf("scaled triangle missing at (4,4): %v", got)
	}
}

func TestSoftwareSurfaceWindingIndependent(t *testing.T) {
	s := NewSoftwareSurface(16, 16)
	s.SetBackground(RGB(0, 0, 0))

	// Same triangle, reversed winding.
	p := packTestTriangle(0, 0, 0, 16, 16, 0, RGB(0, 0, 1))
	defer p.Release()

	f := NewFrame(16, 16)
	f.Append(p, Identity())
	defer f.Release()

	if err := s.Submit(f); err != nil {
		t.Fatalf("Submit() error: %v", err)
	}
	if got := s.Image().RGBAAt(2, 2); got.B != 255 {
		t.Errorf("reverse-wound triangle not filled: %v", got)
	}
}

func TestSoftwareSurfaceAtlasSampling(t *testing.T) {
	// Atlas: left half transparent, right half opaque.
	atlas := image.NewAlpha(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 4; x < 8; x++ {
			atlas.Pix[y*atlas.Stride+x] = 255
		}
	}

	// Full-target quad with UVs spanning the atlas.
	verts := packFloats([]float32{
		0, 0, 0, 0,
		16, 0, 1, 0,
		16, 16, 1, 1,
		0, 16, 0, 1,
	})
	idx := packIndices([]uint32{0, 1, 2, 0, 2, 3})
	p := NewPrimitive(LayoutPosUV, verts, idx, Material{Color: RGB(1, 1, 1), Atlas: atlas})
	defer p.Release()

	s := NewSoftwareSurface(16, 16)
	s.SetBackground(RGB(0, 0, 0))

	f := NewFrame(16, 16)
	f.Append(p, Identity())
	defer f.Release()

	if err := s.Submit(f); err != nil {
		t.Fatalf("Submit() error: %v", err)
	}

	img := s.Image()
	if got := img.RGBAAt(2, 8); got.R != 0 {
		t.Errorf("transparent atlas region painted: %v", got)
	}
	if got := img.RGBAAt(13, 8); got.R != 255 {
		t.Errorf("opaque atlas region not painted: %v", got)
	}
}

func TestSoftwareSurfaceOffsetLayout(t *testing.T) {
	// Anchor at origin, offsets push the triangle into the target center.
	verts := packFloats([]float32{
		0, 0, 8, 8,
		0, 0, 24, 8,
		0, 0, 8, 24,
	})
	idx := packIndices([]uint32{0, 1, 2})
	p := NewPrimitive(LayoutPosOffset, verts, idx, Material{Color: RGB(1, 0, 1)})
	defer p.Release()

	s := NewSoftwareSurface(32, 32)
	s.SetBackground(RGB(0, 0, 0))

	f := NewFrame(32, 32)
	f.Append(p, Identity())
	defer f.Release()

	if err := s.Submit(f); err != nil {
		t.Fatalf("Submit() error: %v", err)
	}

	if got := s.Image().RGBAAt(10, 10); got.R != 255 || got.B != 255 {
		t.Errorf("offset triangle missing at (10,10): %v", got)
	}
	if got := s.Image().RGBAAt(2, 2); got.R != 0 {
		t.Errorf("offset triangle drawn at anchor: %v", got)
	}
}

func TestSoftwareSurfaceAlphaBlend(t *testing.T) {
	s := NewSoftwareSurface(8, 8)
	s.SetBackground(RGB(0, 0, 0))

	p := packTestTriangle(-8, -8, 24, -8, -8, 24, RGBA(1, 1, 1, 0.5))
	defer p.Release()

	f := NewFrame(8, 8)
	f.Append(p, Identity())
	defer f.Release()

	if err := s.Submit(f); err != nil {
		t.Fatalf("Submit() error: %v", err)
	}

	got := s.Image().RGBAAt(4, 4)
	if got.R < 120 || got.R > 135 {
		t.Errorf("half-alpha white over black = %v, want ~127", got)
	}
}
