// Copyright 2026 The galileo Authors
// SPDX-License-Identifier: MIT

package render

import (
	"math"
	"testing"
)

func almostEqual(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-4
}

func TestTransformApply(t *testing.T) {
	tests := []struct {
		name   string
		tr     Transform
		x, y   float32
		wx, wy float32
	}{
		{"identity", Identity(), 3, 4, 3, 4},
		{"translate", Translate(10, -5), 3, 4, 13, -1},
		{"scale", Scale(2, 3), 3, 4, 6, 12},
		{"rotate quarter", Rotate(math.Pi / 2), 1, 0, 0, 1},
		{"rotate half", Rotate(math.Pi), 1, 0, -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gx, gy := tt.tr.Apply(tt.x, tt.y)
			if !almostEqual(gx, tt.wx) || !almostEqual(gy, tt.wy) {
				t.Errorf("Apply(%v, %v) = (%v, %v), want (%v, %v)",
					tt.x, tt.y, gx, gy, tt.wx, tt.wy)
			}
		})
	}
}

func TestTransformMulOrder(t *testing.T) {
	// Mul composes right-to-left: scale first, then translate.
	tr := Translate(100, 0).Mul(Scale(2, 2))

	gx, gy := tr.Apply(5, 5)
	if !almostEqual(gx, 110) || !almostEqual(gy, 10) {
		t.Errorf("translate∘scale (5,5) = (%v, %v), want (110, 10)", gx, gy)
	}

	// Reversed composition gives a different result.
	tr2 := Scale(2, 2).Mul(Translate(100, 0))
	gx2, _ := tr2.Apply(5, 5)
	if !almostEqual(gx2, 210) {
		t.Errorf("scale∘translate x = %v, want 210", gx2)
	}
}

func TestTransformMat4(t *testing.T) {
	tr := Translate(7, 9)
	m := tr.Mat4()

	// Column-major: translation lives in the last column.
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Errorf("diagonal = %v %v %v %v, want identity", m[0], m[5], m[10], m[15])
	}
	if m[12] != 7 || m[13] != 9 {
		t.Errorf("translation = (%v, %v), want (7, 9)", m[12], m[13])
	}
}
