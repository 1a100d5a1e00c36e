package style

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/siddheshzz/galileo/render"
)

// document mirrors the JSON wire form of a style.
type document struct {
	Name   string      `json:"name"`
	Layers []layerJSON `json:"layers"`
}

type layerJSON struct {
	ID          string                     `json:"id"`
	Type        string                     `json:"type"`
	SourceLayer string                     `json:"source-layer"`
	MinZoom     *float64                   `json:"minzoom"`
	MaxZoom     *float64                   `json:"maxzoom"`
	ZLayer      *int                       `json:"z-layer"`
	Stack       bool                       `json:"stack"`
	Filter      json.RawMessage            `json:"filter"`
	Paint       map[string]json.RawMessage `json:"paint"`
	Layout      map[string]json.RawMessage `json:"layout"`
}

// Load reads and parses a style document from a file.
func Load(path string) (*Style, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("style: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses a style document and returns an immutable snapshot tagged
// with a fresh version.
func Parse(data []byte) (*Style, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("style: parse: %w", err)
	}

	st := &Style{
		Version: uuid.NewString(),
		Name:    doc.Name,
		Layers:  make([]Rule, 0, len(doc.Layers)),
	}

	seen := make(map[string]struct{}, len(doc.Layers))
	for i, lj := range doc.Layers {
		if lj.ID == "" {
			return nil, fmt.Errorf("style: layer %d has no id", i)
		}
		if _, dup := seen[lj.ID]; dup {
			return nil, fmt.Errorf("style: duplicate layer id %q", lj.ID)
		}
		seen[lj.ID] = struct{}{}

		rule, err := parseRule(lj)
		if err != nil {
			return nil, fmt.Errorf("style: layer %q: %w", lj.ID, err)
		}
		// Without an explicit z-layer each rule draws in its own layer,
		// at its document position.
		rule.ZLayer = i
		if lj.ZLayer != nil {
			rule.ZLayer = *lj.ZLayer
		}
		rule.Stack = lj.Stack
		st.Layers = append(st.Layers, rule)
	}

	return st, nil
}

func parseRule(lj layerJSON) (Rule, error) {
	r := Rule{
		ID:          lj.ID,
		SourceLayer: lj.SourceLayer,
		MinZoom:     0,
		MaxZoom:     DefaultMaxZoom,
	}
	if lj.MinZoom != nil {
		r.MinZoom = *lj.MinZoom
	}
	if lj.MaxZoom != nil {
		r.MaxZoom = *lj.MaxZoom
	}

	filter, err := ParseFilter(lj.Filter)
	if err != nil {
		return Rule{}, err
	}
	r.Filter = filter

	switch lj.Type {
	case "fill":
		r.Type = TypeFill
		r.Fill = FillPaint{
			Color:   paintColor(lj.Paint, "fill-color", render.RGB(0, 0, 0)),
			Opacity: paintNumber(lj.Paint, "fill-opacity", Constant(1)),
		}
	case "line":
		r.Type = TypeLine
		r.Line = LinePaint{
			Color:      paintColor(lj.Paint, "line-color", render.RGB(0, 0, 0)),
			Width:      paintNumber(lj.Paint, "line-width", Constant(DefaultLineWidth)),
			Opacity:    paintNumber(lj.Paint, "line-opacity", Constant(1)),
			Cap:        lineCap(layoutString(lj.Layout, "line-cap", "butt")),
			Join:       lineJoin(layoutString(lj.Layout, "line-join", "miter")),
			MiterLimit: layoutFloat(lj.Layout, "line-miter-limit", DefaultMiterLimit),
		}
	case "circle":
		r.Type = TypeCircle
		r.Circle = CirclePaint{
			Color:   paintColor(lj.Paint, "circle-color", render.RGB(0, 0, 0)),
			Radius:  paintNumber(lj.Paint, "circle-radius", Constant(DefaultCircleRadius)),
			Opacity: paintNumber(lj.Paint, "circle-opacity", Constant(1)),
		}
	case "symbol":
		r.Type = TypeSymbol
		r.Symbol = SymbolPaint{
			TextField: layoutString(lj.Layout, "text-field", "name"),
			TextSize:  layoutNumber(lj.Layout, "text-size", Constant(DefaultTextSize)),
			TextColor: paintColor(lj.Paint, "text-color", render.RGB(0, 0, 0)),
			TextFont:  layoutString(lj.Layout, "text-font", ""),
		}
	default:
		return Rule{}, fmt.Errorf("unknown layer type %q", lj.Type)
	}

	return r, nil
}

func paintColor(m map[string]json.RawMessage, key string, def render.Color) render.Color {
	raw, ok := m[key]
	if !ok {
		return def
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return def
	}
	return render.Hex(s)
}

func paintNumber(m map[string]json.RawMessage, key string, def Number) Number {
	raw, ok := m[key]
	if !ok {
		return def
	}
	var n Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return def
	}
	return n
}

func layoutNumber(m map[string]json.RawMessage, key string, def Number) Number {
	return paintNumber(m, key, def)
}

func layoutString(m map[string]json.RawMessage, key, def string) string {
	raw, ok := m[key]
	if !ok {
		return def
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return def
	}
	return s
}

func layoutFloat(m map[string]json.RawMessage, key string, def float64) float64 {
	raw, ok := m[key]
	if !ok {
		return def
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return def
	}
	return f
}

func lineCap(s string) LineCap {
	switch s {
	case "round":
		return CapRound
	case "square":
		return CapSquare
	default:
		return CapButt
	}
}

func lineJoin(s string) LineJoin {
	switch s {
	case "round":
		return JoinRound
	case "bevel":
		return JoinBevel
	default:
		return JoinMiter
	}
}
