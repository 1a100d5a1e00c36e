// Package style defines the declarative styling model that drives
// tessellation: which features to draw, in what order, and with what
// paint.
//
// A Style is an immutable snapshot of a style document. Every loaded
// snapshot carries a unique Version tag; the pipeline keys all derived
// work (tessellated primitives, cache entries) on that tag, so changing
// the style never requires touching existing entries. They simply stop
// being referenced and age out.
package style

import (
	"github.com/siddheshzz/galileo/geom"
	"github.com/siddheshzz/galileo/render"
)

// Type identifies what kind of geometry a rule paints.
type Type uint8

const (
	// TypeFill paints polygon interiors.
	TypeFill Type = iota
	// TypeLine paints stroked lines.
	TypeLine
	// TypeCircle paints point features as screen-space circles.
	TypeCircle
	// TypeSymbol paints text labels anchored at point features.
	TypeSymbol
)

// String returns the document name of the type.
func (t Type) String() string {
	switch t {
	case TypeFill:
		return "fill"
	case TypeLine:
		return "line"
	case TypeCircle:
		return "circle"
	case TypeSymbol:
		return "symbol"
	default:
		return "unknown"
	}
}

// LineCap selects the shape of line endpoints.
type LineCap uint8

const (
	CapButt LineCap = iota
	CapSquare
	CapRound
)

// LineJoin selects the shape of line corners.
type LineJoin uint8

const (
	JoinMiter LineJoin = iota
	JoinBevel
	JoinRound
)

// Default paint values applied when a style document omits a property.
const (
	DefaultMaxZoom      = 24.0
	DefaultMiterLimit   = 2.0
	DefaultLineWidth    = 1.0
	DefaultCircleRadius = 5.0
	DefaultTextSize     = 16.0
)

// Style is an immutable style snapshot.
type Style struct {
	// Version tags this snapshot. Assigned at load time and unique per
	// load, even for identical documents.
	Version string

	// Name is the document's display name.
	Name string

	// Layers are the style rules in document order. Draw order follows
	// each rule's ZLayer, document order within one, so without explicit
	// z-layers earlier rules draw beneath later ones.
	Layers []Rule
}

// Rule is one style layer: a predicate selecting features plus the paint
// to apply to them.
type Rule struct {
	// ID names the rule within the document.
	ID string

	// Type selects the paint variant.
	Type Type

	// SourceLayer names the decoded tile layer this rule reads from.
	SourceLayer string

	// MinZoom and MaxZoom bound the zoom range the rule applies to.
	// MinZoom is inclusive, MaxZoom exclusive.
	MinZoom, MaxZoom float64

	// Filter restricts the rule to matching features. Nil matches all.
	Filter *Filter

	// ZLayer is the draw layer the rule paints into. Lower values draw
	// first. Rules sharing a ZLayer and a SourceLayer compete: each
	// feature goes to the first rule in document order that selects it.
	// Parse assigns every rule its own ZLayer unless the document says
	// otherwise, so JSON styles never compete by accident.
	ZLayer int

	// Stack exempts the rule from ZLayer competition: it paints every
	// feature it selects, claimed or not, and claims none itself.
	Stack bool

	// Exactly one of the following is meaningful, per Type.
	Fill   FillPaint
	Line   LinePaint
	Circle CirclePaint
	Symbol SymbolPaint
}

// Active reports whether the rule applies at the given zoom.
func (r *Rule) Active(zoom float64) bool {
	return zoom >= r.MinZoom && zoom < r.MaxZoom
}

// Matches reports whether the rule selects a feature with the given
// properties.
func (r *Rule) Matches(props geom.Properties) bool {
	return r.Filter == nil || r.Filter.Match(props)
}

// FillPaint styles polygon interiors.
type FillPaint struct {
	Color   render.Color
	Opacity Number
}

// LinePaint styles stroked lines.
type LinePaint struct {
	Color      render.Color
	Width      Number
	Opacity    Number
	Cap        LineCap
	Join       LineJoin
	MiterLimit float64
}

// CirclePaint styles point features drawn as circles.
type CirclePaint struct {
	Color   render.Color
	Radius  Number
	Opacity Number
}

// SymbolPaint styles text labels.
type SymbolPaint struct {
	// TextField is the feature property holding the label text.
	TextField string
	TextSize  Number
	TextColor render.Color
	// TextFont names a font face registered with the engine. Empty
	// selects the engine default face.
	TextFont string
}
