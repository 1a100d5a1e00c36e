// Copyright 2026 The galileo Authors
// SPDX-License-Identifier: MIT

// Package text shapes label strings into positioned glyphs and rasterizes
// them into shared alpha atlas pages for rendering as textured quads.
//
// FontSource is the heavyweight parsed font; it is shared across the
// application and safe for concurrent use. Face is a cheap value pairing a
// source with a pixel size. Shaping is a capability: the Shaper interface
// can be satisfied by any engine, with GoTextShaper (HarfBuzz via
// go-text/typesetting) as the default. Shaped runs are memoized in RunCache
// and glyph bitmaps are packed into Atlas pages keyed by glyph and size.
package text
