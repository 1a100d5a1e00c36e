// Copyright 2026 The galileo Authors
// SPDX-License-Identifier: MIT

package render

import "github.com/chewxy/math32"

// Transform is a 2D affine transform in column-vector convention:
//
//	| A  C  E |   | x |
//	| B  D  F | * | y |
//	| 0  0  1 |   | 1 |
//
// Composers attach one Transform per draw command to map tile-local vertex
// coordinates to screen pixels, so vertex buffers stay immutable and
// shareable across frames.
type Transform struct {
	A, B, C, D, E, F float32
}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{A: 1, D: 1}
}

// Translate returns a transform that moves by (x, y).
func Translate(x, y float32) Transform {
	return Transform{A: 1, D: 1, E: x, F: y}
}

// Scale returns a transform that scales by (sx, sy).
func Scale(sx, sy float32) Transform {
	return Transform{A: sx, D: sy}
}

// Rotate returns a transform that rotates by rad radians around the origin.
func Rotate(rad float32) Transform {
	sin, cos := math32.Sincos(rad)
	return Transform{A: cos, B: sin, C: -sin, D: cos}
}

// Mul returns the composition t∘o: o is applied first, then t.
func (t Transform) Mul(o Transform) Transform {
	return Transform{
		A: t.A*o.A + t.C*o.B,
		B: t.B*o.A + t.D*o.B,
		C: t.A*o.C + t.C*o.D,
		D: t.B*o.C + t.D*o.D,
		E: t.A*o.E + t.C*o.F + t.E,
		F: t.B*o.E + t.D*o.F + t.F,
	}
}

// Apply transforms the point (x, y).
func (t Transform) Apply(x, y float32) (float32, float32) {
	return t.A*x + t.C*y + t.E, t.B*x + t.D*y + t.F
}

// Mat4 expands the transform to a column-major 4x4 matrix for GPU consumers.
func (t Transform) Mat4() [16]float32 {
	return [16]float32{
		t.A, t.B, 0, 0,
		t.C, t.D, 0, 0,
		0, 0, 1, 0,
		t.E, t.F, 0, 1,
	}
}
