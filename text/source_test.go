// Copyright 2026 The galileo Authors
// SPDX-License-Identifier: MIT

package text

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font/gofont/goregular"
)

// testSource parses Go Regular, which carries Latin, Cyrillic and Greek
// glyphs plus kerning tables.
func testSource(t *testing.T) *FontSource {
	t.Helper()
	source, err := NewFontSource(goregular.TTF)
	if err != nil {
		t.Fatalf("NewFontSource: %v", err)
	}
	return source
}

func TestNewFontSource(t *testing.T) {
	source := testSource(t)

	if source.Name() == "" {
		t.Error("Name() is empty")
	}
	if n := source.NumGlyphs(); n <= 0 {
		t.Errorf("NumGlyphs() = %d, want > 0", n)
	}
}

func TestNewFontSourceErrors(t *testing.T) {
	if _, err := NewFontSource(nil); err == nil {
		t.Error("NewFontSource(nil) succeeded, want error")
	}
	if _, err := NewFontSource([]byte("not a font")); err == nil {
		t.Error("NewFontSource(garbage) succeeded, want error")
	}
}

func TestLoadFontSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "goregular.ttf")
	if err := os.WriteFile(path, goregular.TTF, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	source, err := LoadFontSource(path)
	if err != nil {
		t.Fatalf("LoadFontSource: %v", err)
	}
	if source.Name() == "" {
		t.Error("Name() is empty")
	}

	if _, err := LoadFontSource(filepath.Join(t.TempDir(), "missing.ttf")); err == nil {
		t.Error("LoadFontSource(missing) succeeded, want error")
	}
}

func TestGlyphIndex(t *testing.T) {
	source := testSource(t)

	gid, ok := source.GlyphIndex('A')
	if !ok || gid == 0 {
		t.Errorf("GlyphIndex('A') = %d, %v; want nonzero, true", gid, ok)
	}

	// Go Regular has no CJK coverage.
	if gid, ok := source.GlyphIndex('世'); ok {
		t.Errorf("GlyphIndex(CJK) = %d, true; want false", gid)
	}
}

func TestFaceMetrics(t *testing.T) {
	source := testSource(t)

	m := source.Face(16).Metrics()
	if m.Ascent <= 0 {
		t.Errorf("Ascent = %f, want > 0", m.Ascent)
	}
	if m.Descent <= 0 {
		t.Errorf("Descent = %f, want > 0", m.Descent)
	}
	if m.Ascent+m.Descent > 32 {
		t.Errorf("Ascent+Descent = %f, implausible for a 16px face", m.Ascent+m.Descent)
	}

	big := source.Face(32).Metrics()
	if big.Ascent <= m.Ascent {
		t.Errorf("32px Ascent %f not larger than 16px Ascent %f", big.Ascent, m.Ascent)
	}

	if zero := (Face{}).Metrics(); zero != (Metrics{}) {
		t.Errorf("zero Face Metrics = %+v, want zero", zero)
	}
}
