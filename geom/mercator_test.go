package geom

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func TestTilePoint(t *testing.T) {
	tests := []struct {
		name string
		ll   orb.Point
		zoom float64
		want orb.Point
	}{
		{"origin at zoom 0", orb.Point{0, 0}, 0, orb.Point{0.5, 0.5}},
		{"origin at zoom 1", orb.Point{0, 0}, 1, orb.Point{1, 1}},
		{"west edge", orb.Point{-180, 0}, 2, orb.Point{0, 2}},
		{"north clamps", orb.Point{0, 89}, 0, orb.Point{0.5, 0}},
		{"south clamps", orb.Point{0, -89}, 0, orb.Point{0.5, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TilePoint(tt.ll, tt.zoom)
			if math.Abs(got[0]-tt.want[0]) > 1e-9 || math.Abs(got[1]-tt.want[1]) > 1e-9 {
				t.Errorf("TilePoint = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLonLatRoundTrip(t *testing.T) {
	pts := []orb.Point{
		{0, 0},
		{13.405, 52.52},
		{-122.4194, 37.7749},
		{151.2093, -33.8688},
	}
	for _, ll := range pts {
		for _, zoom := range []float64{0, 3, 11.5, 18} {
			p := TilePoint(ll, zoom)
			back := LonLat(p, zoom)
			if math.Abs(back[0]-ll[0]) > 1e-9 || math.Abs(back[1]-ll[1]) > 1e-9 {
				t.Errorf("round trip %v at z%v = %v", ll, zoom, back)
			}
		}
	}
}

func TestTilePointFractionalZoom(t *testing.T) {
	ll := orb.Point{13.405, 52.52}
	at10 := TilePoint(ll, 10)
	at11 := TilePoint(ll, 11)
	if math.Abs(at11[0]-2*at10[0]) > 1e-9 || math.Abs(at11[1]-2*at10[1]) > 1e-9 {
		t.Errorf("zoom 11 = %v, want double of %v", at11, at10)
	}
}
