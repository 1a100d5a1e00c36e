// Copyright 2026 The galileo Authors
// SPDX-License-Identifier: MIT

package text

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sync"

	gtfont "github.com/go-text/typesetting/font"
	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
)

// ErrEmptyFontData is returned when font data is empty.
var ErrEmptyFontData = errors.New("text: empty font data")

// FontSource is a loaded font file. One FontSource can create any number of
// Face values at different sizes. FontSource is heavyweight and should be
// shared across the application.
//
// FontSource is safe for concurrent use and must not be copied after
// creation.
type FontSource struct {
	// addr points to the FontSource itself for copy protection.
	addr *FontSource

	// shaping is the go-text parse of the font, used by GoTextShaper.
	// gtfont.Font is read-only and safe for concurrent use.
	shaping *gtfont.Font

	// outline is the sfnt parse of the same data, used for glyph outlines
	// and metrics. Safe for concurrent use given a per-caller Buffer.
	outline *sfnt.Font

	name string

	// mu guards buf, the scratch buffer for metric lookups.
	mu  sync.Mutex
	buf sfnt.Buffer
}

// NewFontSource creates a FontSource from TTF or OTF data. The data slice
// is copied internally and can be reused after this call.
func NewFontSource(data []byte) (*FontSource, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFontData
	}

	dataCopy := make([]byte, len(data))
	copy(dataCopy, data)

	outline, err := sfnt.Parse(dataCopy)
	if err != nil {
		return nil, fmt.Errorf("text: parse font: %w", err)
	}
	gtFace, err := gtfont.ParseTTF(bytes.NewReader(dataCopy))
	if err != nil {
		return nil, fmt.Errorf("text: parse font for shaping: %w", err)
	}

	s := &FontSource{
		shaping: gtFace.Font,
		outline: outline,
	}
	s.addr = s
	s.name = fontName(outline)
	return s, nil
}

// LoadFontSource loads a FontSource from a font file path.
func LoadFontSource(path string) (*FontSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("text: read font file: %w", err)
	}
	return NewFontSource(data)
}

// Name returns the font family name.
func (s *FontSource) Name() string {
	s.copyCheck()
	return s.name
}

// NumGlyphs returns the number of glyphs in the font.
func (s *FontSource) NumGlyphs() int {
	s.copyCheck()
	return s.outline.NumGlyphs()
}

// GlyphIndex returns the glyph for a rune. ok is false when the font has no
// mapping for it.
func (s *FontSource) GlyphIndex(r rune) (GlyphID, bool) {
	s.copyCheck()
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, err := s.outline.GlyphIndex(&s.buf, r)
	if err != nil || idx == 0 {
		return 0, false
	}
	return GlyphID(idx), true
}

// Face pairs the source with a pixel size. Face values are cheap; create
// them freely.
func (s *FontSource) Face(size float64) Face {
	s.copyCheck()
	return Face{Source: s, Size: size}
}

// copyCheck panics if FontSource was copied by value.
func (s *FontSource) copyCheck() {
	if s.addr != s {
		panic("text: FontSource must not be copied by value")
	}
}

// Face selects a size of a FontSource. The zero Face is invalid.
type Face struct {
	Source *FontSource
	Size   float64
}

// Metrics are vertical font metrics at a Face's size, in pixels. Ascent and
// Descent are both positive distances from the baseline.
type Metrics struct {
	Ascent  float64
	Descent float64
	LineGap float64
}

// Metrics returns the font's vertical metrics at the face size.
func (f Face) Metrics() Metrics {
	s := f.Source
	if s == nil {
		return Metrics{}
	}
	s.copyCheck()

	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.outline.Metrics(&s.buf, floatToFixed(f.Size), font.HintingNone)
	if err != nil {
		return Metrics{}
	}
	return Metrics{
		Ascent:  fixedToFloat(m.Ascent),
		Descent: fixedToFloat(m.Descent),
		LineGap: fixedToFloat(m.Height - m.Ascent - m.Descent),
	}
}

func fontName(f *sfnt.Font) string {
	var buf sfnt.Buffer
	if name, err := f.Name(&buf, sfnt.NameIDFamily); err == nil && name != "" {
		return name
	}
	if name, err := f.Name(&buf, sfnt.NameIDFull); err == nil && name != "" {
		return name
	}
	return "Unknown Font"
}
