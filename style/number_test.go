package style

import (
	"encoding/json"
	"math"
	"testing"
)

func TestNumberAt(t *testing.T) {
	n := Interpolated(Stop{Zoom: 5, Value: 1}, Stop{Zoom: 10, Value: 3}, Stop{Zoom: 15, Value: 3.5})

	tests := []struct {
		name string
		zoom float64
		want float64
	}{
		{"below first stop clamps", 2, 1},
		{"at first stop", 5, 1},
		{"midway", 7.5, 2},
		{"at middle stop", 10, 3},
		{"second segment", 12.5, 3.25},
		{"at last stop", 15, 3.5},
		{"above last stop clamps", 22, 3.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.At(tt.zoom)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("At(%v) = %v, want %v", tt.zoom, got, tt.want)
			}
		})
	}
}

func TestNumberConstant(t *testing.T) {
	n := Constant(4.5)
	if !n.IsConstant() {
		t.Error("IsConstant() = false for constant")
	}
	for _, zoom := range []float64{0, 10, 24} {
		if got := n.At(zoom); got != 4.5 {
			t.Errorf("At(%v) = %v, want 4.5", zoom, got)
		}
	}

	var zero Number
	if got := zero.At(12); got != 0 {
		t.Errorf("zero Number At() = %v, want 0", got)
	}
}

func TestNumberUnsortedStops(t *testing.T) {
	n := Interpolated(Stop{Zoom: 14, Value: 4}, Stop{Zoom: 5, Value: 0.5})
	if got := n.At(5); got != 0.5 {
		t.Errorf("At(5) = %v, want 0.5 after sorting", got)
	}
	if got := n.At(14); got != 4 {
		t.Errorf("At(14) = %v, want 4 after sorting", got)
	}
}

func TestNumberUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		zoom    float64
		want    float64
		wantErr bool
	}{
		{"bare number", `2.5`, 10, 2.5, false},
		{"stops", `{"stops": [[5, 1], [15, 11]]}`, 10, 6, false},
		{"empty stops", `{"stops": []}`, 0, 0, true},
		{"garbage", `"wide"`, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var n Number
			err := json.Unmarshal([]byte(tt.in), &n)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unmarshal error: %v", err)
			}
			if got := n.At(tt.zoom); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("At(%v) = %v, want %v", tt.zoom, got, tt.want)
			}
		})
	}
}
