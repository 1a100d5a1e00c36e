package style

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Stop pairs a zoom level with a property value.
type Stop struct {
	Zoom  float64
	Value float64
}

// Number is a numeric style property that is either constant or linearly
// interpolated between zoom stops. Outside the stop range the value is
// clamped to the nearest stop, never extrapolated.
//
// The zero Number is the constant 0.
type Number struct {
	stops []Stop
	value float64
}

// Constant returns a Number that evaluates to v at every zoom.
func Constant(v float64) Number {
	return Number{value: v}
}

// Interpolated returns a Number interpolated between the given stops.
// Stops are sorted by zoom; with no stops the result is the constant 0.
func Interpolated(stops ...Stop) Number {
	if len(stops) == 0 {
		return Number{}
	}
	s := make([]Stop, len(stops))
	copy(s, stops)
	sort.Slice(s, func(i, j int) bool { return s[i].Zoom < s[j].Zoom })
	return Number{stops: s}
}

// At evaluates the property at the given zoom.
func (n Number) At(zoom float64) float64 {
	if len(n.stops) == 0 {
		return n.value
	}

	first := n.stops[0]
	if zoom <= first.Zoom {
		return first.Value
	}
	last := n.stops[len(n.stops)-1]
	if zoom >= last.Zoom {
		return last.Value
	}

	for i := 1; i < len(n.stops); i++ {
		hi := n.stops[i]
		if zoom > hi.Zoom {
			continue
		}
		lo := n.stops[i-1]
		if hi.Zoom == lo.Zoom {
			return hi.Value
		}
		t := (zoom - lo.Zoom) / (hi.Zoom - lo.Zoom)
		return lo.Value + (hi.Value-lo.Value)*t
	}
	return last.Value
}

// IsConstant reports whether the property is zoom-independent.
func (n Number) IsConstant() bool {
	return len(n.stops) == 0
}

// UnmarshalJSON accepts either a bare number or the stops object form
// used by style documents:
//
//	4.5
//	{"stops": [[5, 0.5], [14, 4]]}
func (n *Number) UnmarshalJSON(b []byte) error {
	var v float64
	if err := json.Unmarshal(b, &v); err == nil {
		*n = Constant(v)
		return nil
	}

	var obj struct {
		Stops [][2]float64 `json:"stops"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return fmt.Errorf("style: invalid number property: %w", err)
	}
	if len(obj.Stops) == 0 {
		return fmt.Errorf("style: number property has no stops")
	}

	stops := make([]Stop, len(obj.Stops))
	for i, s := range obj.Stops {
		stops[i] = Stop{Zoom: s[0], Value: s[1]}
	}
	*n = Interpolated(stops...)
	return nil
}
