// Copyright 2026 The galileo Authors
// SPDX-License-Identifier: MIT

package render

import "image/color"

// Color is an RGBA color with components in the range [0, 1].
// Alpha is straight (not premultiplied); surfaces premultiply at blend time.
type Color struct {
	R, G, B, A float64
}

// RGB creates an opaque color from components in [0, 1].
func RGB(r, g, b float64) Color {
	return Color{R: r, G: g, B: b, A: 1}
}

// RGBA creates a color from components in [0, 1].
func RGBA(r, g, b, a float64) Color {
	return Color{R: r, G: g, B: b, A: a}
}

// Hex parses a hex color string. Supported forms: "RGB", "RRGGBB" and
// "RRGGBBAA", with or without a leading '#'. Unparseable input yields
// opaque black, matching the behavior of lenient style documents.
func Hex(hex string) Color {
	if hex != "" && hex[0] == '#' {
		hex = hex[1:]
	}

	var r, g, b uint32
	a := uint32(255)

	switch len(hex) {
	case 3:
		r, g, b = parseHex(hex[0:1]), parseHex(hex[1:2]), parseHex(hex[2:3])
		r, g, b = r*17, g*17, b*17
	case 6:
		r, g, b = parseHex(hex[0:2]), parseHex(hex[2:4]), parseHex(hex[4:6])
	case 8:
		r, g, b = parseHex(hex[0:2]), parseHex(hex[2:4]), parseHex(hex[4:6])
		a = parseHex(hex[6:8])
	default:
		return Color{A: 1}
	}

	return Color{
		R: float64(r) / 255,
		G: float64(g) / 255,
		B: float64(b) / 255,
		A: float64(a) / 255,
	}
}

func parseHex(s string) uint32 {
	var v uint32
	for i := 0; i < len(s); i++ {
		c := s[i]
		v *= 16
		switch {
		case '0' <= c && c <= '9':
			v += uint32(c - '0')
		case 'a' <= c && c <= 'f':
			v += uint32(c - 'a' + 10)
		case 'A' <= c && c <= 'F':
			v += uint32(c - 'A' + 10)
		}
	}
	return v
}

// WithAlpha returns the color with its alpha multiplied by a.
func (c Color) WithAlpha(a float64) Color {
	c.A *= a
	return c
}

// NRGBA converts the color to 8-bit non-premultiplied form.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{
		R: uint8(clamp255(c.R * 255)),
		G: uint8(clamp255(c.G * 255)),
		B: uint8(clamp255(c.B * 255)),
		A: uint8(clamp255(c.A * 255)),
	}
}

func clamp255(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
