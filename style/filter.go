package style

import (
	"encoding/json"
	"fmt"

	"github.com/siddheshzz/galileo/geom"
)

// FilterOp is a filter operator.
type FilterOp uint8

const (
	// OpEqual matches when the property exists and equals the operand.
	OpEqual FilterOp = iota
	// OpNotEqual matches when the property is missing or differs.
	OpNotEqual
	// OpLess, OpLessEqual, OpGreater and OpGreaterEqual compare
	// numerically; a missing or non-numeric property never matches.
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
	// OpHas matches when the property exists, OpNotHas when it does not.
	OpHas
	OpNotHas
	// OpAll, OpAny and OpNone combine sub-filters.
	OpAll
	OpAny
	OpNone
)

// Filter is a predicate over feature properties, parsed from the JSON
// array form used by map style documents:
//
//	["==", "class", "river"]
//	["has", "name"]
//	[">=", "admin_level", 4]
//	["all", ["==", "class", "road"], ["!=", "tunnel", true]]
type Filter struct {
	Op    FilterOp
	Key   string
	Value geom.Value
	Sub   []*Filter
}

// Match evaluates the filter against a property set.
func (f *Filter) Match(p geom.Properties) bool {
	switch f.Op {
	case OpEqual:
		v, ok := p.Get(f.Key)
		return ok && v.Equal(f.Value)
	case OpNotEqual:
		v, ok := p.Get(f.Key)
		return !ok || !v.Equal(f.Value)
	case OpLess, OpLessEqual, OpGreater, OpGreaterEqual:
		return f.compare(p)
	case OpHas:
		return p.Has(f.Key)
	case OpNotHas:
		return !p.Has(f.Key)
	case OpAll:
		for _, s := range f.Sub {
			if !s.Match(p) {
				return false
			}
		}
		return true
	case OpAny:
		for _, s := range f.Sub {
			if s.Match(p) {
				return true
			}
		}
		return false
	case OpNone:
		for _, s := range f.Sub {
			if s.Match(p) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func (f *Filter) compare(p geom.Properties) bool {
	v, ok := p.Get(f.Key)
	if !ok {
		return false
	}
	got, ok := v.AsNumber()
	if !ok {
		return false
	}
	want, ok := f.Value.AsNumber()
	if !ok {
		return false
	}

	switch f.Op {
	case OpLess:
		return got < want
	case OpLessEqual:
		return got <= want
	case OpGreater:
		return got > want
	case OpGreaterEqual:
		return got >= want
	default:
		return false
	}
}

var filterOps = map[string]FilterOp{
	"==":   OpEqual,
	"!=":   OpNotEqual,
	"<":    OpLess,
	"<=":   OpLessEqual,
	">":    OpGreater,
	">=":   OpGreaterEqual,
	"has":  OpHas,
	"!has": OpNotHas,
	"all":  OpAll,
	"any":  OpAny,
	"none": OpNone,
}

// ParseFilter parses the JSON array form of a filter. A nil or empty
// input yields a nil filter, which matches everything.
func ParseFilter(raw json.RawMessage) (*Filter, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var parts []json.RawMessage
	if err := json.Unmarshal(raw, &parts); err != nil {
		return nil, fmt.Errorf("style: filter is not an array: %w", err)
	}
	if len(parts) == 0 {
		return nil, nil
	}

	var opName string
	if err := json.Unmarshal(parts[0], &opName); err != nil {
		return nil, fmt.Errorf("style: filter operator: %w", err)
	}
	op, ok := filterOps[opName]
	if !ok {
		return nil, fmt.Errorf("style: unknown filter operator %q", opName)
	}

	f := &Filter{Op: op}

	switch op {
	case OpAll, OpAny, OpNone:
		for _, part := range parts[1:] {
			sub, err := ParseFilter(part)
			if err != nil {
				return nil, err
			}
			if sub != nil {
				f.Sub = append(f.Sub, sub)
			}
		}
		return f, nil

	case OpHas, OpNotHas:
		if len(parts) != 2 {
			return nil, fmt.Errorf("style: %q filter wants 1 argument, got %d", opName, len(parts)-1)
		}
		if err := json.Unmarshal(parts[1], &f.Key); err != nil {
			return nil, fmt.Errorf("style: %q filter key: %w", opName, err)
		}
		return f, nil

	default:
		if len(parts) != 3 {
			return nil, fmt.Errorf("style: %q filter wants 2 arguments, got %d", opName, len(parts)-1)
		}
		if err := json.Unmarshal(parts[1], &f.Key); err != nil {
			return nil, fmt.Errorf("style: %q filter key: %w", opName, err)
		}
		v, err := parseLiteral(parts[2])
		if err != nil {
			return nil, fmt.Errorf("style: %q filter value: %w", opName, err)
		}
		f.Value = v
		return f, nil
	}
}

// parseLiteral decodes a JSON scalar into a geom.Value.
func parseLiteral(raw json.RawMessage) (geom.Value, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return geom.StringValue(s), nil
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return geom.NumberValue(n), nil
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return geom.BoolValue(b), nil
	}
	return geom.Value{}, fmt.Errorf("not a string, number or bool: %s", raw)
}
