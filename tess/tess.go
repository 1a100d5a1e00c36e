// Copyright 2026 The galileo Authors
// SPDX-License-Identifier: MIT

// Package tess turns decoded vector features into GPU-ready primitives.
//
// The Tessellator walks a style snapshot in document order and, for every
// rule that is active at the tile's zoom, builds one primitive (or one per
// glyph atlas page, for labels) from the features the rule selects out of
// its source layer. Rules sharing a source layer and a draw layer form a
// decision list: the first rule to select a feature claims it, and later
// rules in the group skip it unless they stack (style.Rule.Stack). Polygon
// interiors are ear-clipped into triangles, lines are expanded into stroke
// triangles with configurable joins and caps, points become billboard fans
// and labels become atlas-mapped glyph quads.
//
// Output is deterministic: the same layers, style snapshot and zoom always
// produce byte-identical vertex and index buffers. All iteration in output
// paths is over slices in fixed order and all packing is explicit
// little-endian, so cached primitives can be compared and reused safely.
package tess

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/paulmach/orb"

	"github.com/siddheshzz/galileo/geom"
	"github.com/siddheshzz/galileo/mvt"
	"github.com/siddheshzz/galileo/render"
	"github.com/siddheshzz/galileo/style"
	"github.com/siddheshzz/galileo/text"
)

// ErrUnsupportedGeometry is wrapped by tessellation errors caused by
// geometry a builder cannot process, such as a polygon ring with fewer
// than three points. The failing rule's primitive is skipped; sibling
// rules still contribute.
var ErrUnsupportedGeometry = errors.New("tess: unsupported geometry")

// referenceTileSize is the on-screen edge length, in pixels, a tile is
// assumed to render at. Tile-local geometry is normalized to [0, 1] and
// pixel-denominated style values (line widths) divide by this to reach
// the same space. Billboard offsets stay in pixels.
const referenceTileSize = 256.0

// Tessellator builds primitives from features and a style snapshot.
//
// A single Tessellator is shared by all worker goroutines; the text
// shaping state it carries (shaper, run cache, glyph atlas) is internally
// synchronized. Fonts must be registered before tessellation starts.
type Tessellator struct {
	shaper text.Shaper
	runs   *text.RunCache
	atlas  *text.Atlas

	mu    sync.RWMutex
	fonts map[string]*text.FontSource
	def   *text.FontSource
}

// New creates a Tessellator with the default text shaper and empty font
// registry. Symbol rules produce no output until a font is registered.
func New() *Tessellator {
	return &Tessellator{
		shaper: text.NewGoTextShaper(),
		runs:   text.NewRunCache(),
		atlas:  text.NewAtlas(),
		fonts:  make(map[string]*text.FontSource),
	}
}

// RegisterFont makes a font available to symbol rules under its face
// name. The first registered font becomes the default used by rules that
// do not name one.
func (t *Tessellator) RegisterFont(src *text.FontSource) {
	if src == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.fonts[src.Name()] = src
	if t.def == nil {
		t.def = src
	}
}

// font resolves a rule's font name, falling back to the default face.
func (t *Tessellator) font(name string) *text.FontSource {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if name != "" {
		if src, ok := t.fonts[name]; ok {
			return src
		}
	}
	return t.def
}

// MaintainText advances the text run cache's frame clock, evicting shaped
// runs that have not been touched for a configured number of frames.
// Call once per rendered frame.
func (t *Tessellator) MaintainText() {
	t.runs.Maintain()
}

// Tessellate builds primitives for every style rule that is active at the
// given zoom and selects at least one feature of its source layer. Rules
// sharing a source layer and a ZLayer compete for features in document
// order; see style.Rule. The returned slice is sorted by ZLayer, document
// order within one, and each primitive carries its rule's id and ZLayer
// for later draw ordering.
//
// Geometry a builder cannot process fails only that rule's primitive with
// an error wrapping ErrUnsupportedGeometry; the remaining rules still
// build, and the joined per-rule errors are returned alongside whatever
// primitives succeeded. Cancellation is checked between rules: when ctx
// is done, primitives built so far are released and ctx.Err() returned.
func (t *Tessellator) Tessellate(ctx context.Context, layers []mvt.Layer, st *style.Style, zoom float64) ([]*render.Primitive, error) {
	if st == nil {
		return nil, nil
	}

	var (
		prims   []*render.Primitive
		errs    []error
		claimed = make(map[claimKey][]bool)
	)
	for ri := range st.Layers {
		if err := ctx.Err(); err != nil {
			for _, p := range prims {
				p.Release()
			}
			return nil, err
		}

		rule := &st.Layers[ri]
		if !rule.Active(zoom) {
			continue
		}
		layer := findLayer(layers, rule.SourceLayer)
		if layer == nil {
			continue
		}

		feats := selectFeatures(rule, layer, claimed)
		if len(feats) == 0 {
			continue
		}
		extent := float32(layer.Extent)
		if extent <= 0 {
			extent = mvt.DefaultExtent
		}

		built, err := t.buildRule(rule, feats, extent, zoom)
		if err != nil {
			errs = append(errs, fmt.Errorf("rule %q: %w", rule.ID, err))
			continue
		}
		prims = append(prims, built...)
	}

	// Explicit z-layers need not be monotone in document order.
	slices.SortStableFunc(prims, func(a, b *render.Primitive) int {
		return cmp.Compare(a.LayerIndex, b.LayerIndex)
	})
	return prims, errors.Join(errs...)
}

// claimKey identifies one competition group: the rules drawing a source
// layer into the same z-layer.
type claimKey struct {
	source string
	z      int
}

// selectFeatures picks the features a rule paints: those its filter
// matches, whose geometry its paint type can draw, and that no earlier
// rule in the same competition group claimed. The selection is claimed
// for the group. Stack rules ignore claims and leave them untouched.
func selectFeatures(rule *style.Rule, layer *mvt.Layer, claimed map[claimKey][]bool) []geom.Feature {
	var taken []bool
	if !rule.Stack {
		key := claimKey{source: layer.Name, z: rule.ZLayer}
		taken = claimed[key]
		if taken == nil {
			taken = make([]bool, len(layer.Features))
			claimed[key] = taken
		}
	}

	var feats []geom.Feature
	for i := range layer.Features {
		f := &layer.Features[i]
		if taken != nil && taken[i] {
			continue
		}
		if !rule.Matches(f.Properties) || !drawable(rule.Type, f.Geometry) {
			continue
		}
		if taken != nil {
			taken[i] = true
		}
		feats = append(feats, *f)
	}
	return feats
}

// drawable reports whether a rule type can paint a geometry. Features a
// rule cannot draw stay unclaimed, so a fill rule never swallows the
// points of its source layer from a circle rule in the same group.
func drawable(t style.Type, g orb.Geometry) bool {
	switch t {
	case style.TypeFill:
		switch g.(type) {
		case orb.Polygon, orb.MultiPolygon:
			return true
		}
	case style.TypeLine:
		switch g.(type) {
		case orb.LineString, orb.MultiLineString, orb.Ring, orb.Polygon, orb.MultiPolygon:
			return true
		}
	case style.TypeCircle, style.TypeSymbol:
		switch g.(type) {
		case orb.Point, orb.MultiPoint:
			return true
		}
	}
	return false
}

func findLayer(layers []mvt.Layer, name string) *mvt.Layer {
	for i := range layers {
		if layers[i].Name == name {
			return &layers[i]
		}
	}
	return nil
}

// buildRule dispatches to the per-type builder and stamps rule identity
// onto the resulting primitives.
func (t *Tessellator) buildRule(rule *style.Rule, feats []geom.Feature, extent float32, zoom float64) ([]*render.Primitive, error) {
	var (
		built []*render.Primitive
		err   error
	)
	switch rule.Type {
	case style.TypeFill:
		built, err = buildFill(rule, feats, extent, zoom)
	case style.TypeLine:
		built, err = buildLine(rule, feats, extent, zoom)
	case style.TypeCircle:
		built, err = buildCircle(rule, feats, extent, zoom)
	case style.TypeSymbol:
		built, err = t.buildSymbol(rule, feats, extent, zoom)
	default:
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	for _, p := range built {
		p.LayerID = rule.ID
		p.LayerIndex = rule.ZLayer
	}
	return built, nil
}

// paintColor folds a zoom-interpolated opacity into a base color.
func paintColor(c render.Color, opacity style.Number, zoom float64) render.Color {
	return c.WithAlpha(c.A * opacity.At(zoom))
}
