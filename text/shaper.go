// Copyright 2026 The galileo Authors
// SPDX-License-Identifier: MIT

package text

import (
	"sync"

	"github.com/go-text/typesetting/di"
	gtfont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/bidi"
)

// GlyphID indexes a glyph within a font.
type GlyphID uint16

// ShapedGlyph is one positioned glyph in a shaped run. X and Y place the
// glyph origin relative to the run origin on the baseline, in pixels with y
// increasing downward. XAdvance is how far the pen moves after the glyph.
type ShapedGlyph struct {
	GID      GlyphID
	Cluster  int
	X, Y     float64
	XAdvance float64
}

// Advance returns the total pen advance of a shaped run in pixels.
func Advance(glyphs []ShapedGlyph) float64 {
	var w float64
	for _, g := range glyphs {
		w += g.XAdvance
	}
	return w
}

// Shaper converts a label string into positioned glyphs. Implementations
// must be safe for concurrent use.
type Shaper interface {
	Shape(text string, face Face) []ShapedGlyph
}

// GoTextShaper shapes text with go-text/typesetting's HarfBuzz
// implementation, handling kerning, ligatures, right-to-left scripts and
// complex shaping.
//
// GoTextShaper is safe for concurrent use. HarfbuzzShaper instances carry
// mutable buffers and are pooled; the parsed fonts they consume live on the
// FontSource and are read-only.
type GoTextShaper struct {
	pool sync.Pool
}

// NewGoTextShaper creates a GoTextShaper.
func NewGoTextShaper() *GoTextShaper {
	return &GoTextShaper{
		pool: sync.Pool{
			New: func() any {
				return &shaping.HarfbuzzShaper{}
			},
		},
	}
}

// Shape implements Shaper.
func (s *GoTextShaper) Shape(text string, face Face) []ShapedGlyph {
	if text == "" || face.Source == nil {
		return nil
	}

	// gtfont.Face is not safe for concurrent use; wrap the shared read-only
	// Font in a fresh Face per call. NewFace is cheap.
	gtFace := gtfont.NewFace(face.Source.shaping)

	runes := []rune(text)
	dir := baseDirection(runes)

	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: dir,
		Face:      gtFace,
		Size:      floatToFixed(face.Size),
		Script:    detectScript(runes),
		Language:  language.NewLanguage("en"),
	}

	hb := s.pool.Get().(*shaping.HarfbuzzShaper)
	out := hb.Shape(input)
	s.pool.Put(hb)

	return convertGlyphs(out.Glyphs)
}

// convertGlyphs turns HarfBuzz output into run-relative positions with a
// horizontal pen accumulating advances. Offsets are typographic (y up) and
// are flipped to screen orientation here.
func convertGlyphs(glyphs []shaping.Glyph) []ShapedGlyph {
	if len(glyphs) == 0 {
		return nil
	}

	result := make([]ShapedGlyph, len(glyphs))
	var x float64
	for i, g := range glyphs {
		adv := fixedToFloat(g.Advance)
		result[i] = ShapedGlyph{
			GID:      GlyphID(uint16(g.GlyphID)),
			Cluster:  g.TextIndex(),
			X:        x + fixedToFloat(g.XOffset),
			Y:        -fixedToFloat(g.YOffset),
			XAdvance: adv,
		}
		x += adv
	}
	return result
}

// baseDirection picks the shaping direction from the first strongly
// directional character.
func baseDirection(runes []rune) di.Direction {
	for _, r := range runes {
		p, _ := bidi.LookupRune(r)
		switch p.Class() {
		case bidi.L:
			return di.DirectionLTR
		case bidi.R, bidi.AL:
			return di.DirectionRTL
		}
	}
	return di.DirectionLTR
}

// detectScript returns the script of the first non-space rune. Mixed-script
// labels should be split into runs before shaping.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

// floatToFixed converts a pixel value to 26.6 fixed point.
func floatToFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}

// fixedToFloat converts a 26.6 fixed point value to pixels.
func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
