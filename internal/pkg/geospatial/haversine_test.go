package geospatial

import (
	"math"
	"testing"

	"github.com/samirrijal/geoext/internal/core/geometry"
)

func TestHaversine(t *testing.T) {
	// One degree of latitude along a meridian.
	d := Haversine(geometry.Coord{X: 0, Y: 0}, geometry.Coord{X: 0, Y: 1})
	if math.Abs(d-111195) > 10 {
		t.Errorf("expected ~111195m, got %.1f", d)
	}
	if Haversine(geometry.Coord{X: -2.935, Y: 43.263}, geometry.Coord{X: -2.935, Y: 43.263}) != 0 {
		t.Error("expected zero distance for identical points")
	}
}

func TestPathLength(t *testing.T) {
	cs := []geometry.Coord{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: 2}}
	want := 2 * Haversine(cs[0], cs[1])
	if got := PathLength(cs); math.Abs(got-want) > 1e-6 {
		t.Errorf("expected %.3f, got %.3f", want, got)
	}
	if PathLength(cs[:1]) != 0 {
		t.Error("expected zero length for a single coordinate")
	}
}

func TestBoundingBox(t *testing.T) {
	oneDegree := Haversine(geometry.Coord{X: 0, Y: 0}, geometry.Coord{X: 0, Y: 1})
	b := BoundingBox(geometry.Coord{X: 10, Y: 0}, oneDegree)
	if math.Abs(b.Low.Y+1) > 1e-9 || math.Abs(b.High.Y-1) > 1e-9 {
		t.Errorf("unexpected latitude span %v..%v", b.Low.Y, b.High.Y)
	}
	if math.Abs(b.Low.X-9) > 1e-9 || math.Abs(b.High.X-11) > 1e-9 {
		t.Errorf("unexpected longitude span %v..%v", b.Low.X, b.High.X)
	}
}

func TestBoundingBox_HoldsEdgeOfRadius(t *testing.T) {
	center := geometry.Coord{X: 0, Y: 0}
	edge := geometry.Coord{X: 0, Y: 0.899}
	if d := Haversine(center, edge); d > 100000 {
		t.Fatalf("expected edge point inside 100km, got %.1f", d)
	}
	if b := BoundingBox(center, 100000); !inBox(b, edge) {
		t.Errorf("expected %v inside %v", edge, b)
	}

	// At high latitude the widest point of the circle lies poleward of the
	// center's parallel.
	north := geometry.Coord{X: 5, Y: 60}
	b := BoundingBox(north, 500000)
	for bearing := 0.0; bearing < 360; bearing += 1 {
		p := destination(north, 499999, bearing)
		if !inBox(b, p) {
			t.Fatalf("bearing %.0f: %v outside %v", bearing, p, b)
		}
	}
}

func TestBoundingBox_Pole(t *testing.T) {
	b := BoundingBox(geometry.Coord{X: 20, Y: 89.5}, 100000)
	if b.High.Y != 90 {
		t.Errorf("expected box clamped at the pole, got %v", b.High.Y)
	}
	if b.Low.X != -160 || b.High.X != 200 {
		t.Errorf("expected full longitude span, got %v..%v", b.Low.X, b.High.X)
	}
}

func inBox(b geometry.Box, p geometry.Coord) bool {
	return b.Contains(geometry.Box{Low: p, High: p})
}

// destination walks distance meters from c along bearing degrees.
func destination(c geometry.Coord, distance, bearing float64) geometry.Coord {
	r := distance / (earthRadiusKm * 1000)
	lat1, lon1, brg := toRad(c.Y), toRad(c.X), toRad(bearing)
	lat2 := math.Asin(math.Sin(lat1)*math.Cos(r) + math.Cos(lat1)*math.Sin(r)*math.Cos(brg))
	lon2 := lon1 + math.Atan2(math.Sin(brg)*math.Sin(r)*math.Cos(lat1), math.Cos(r)-math.Sin(lat1)*math.Sin(lat2))
	return geometry.Coord{X: toDeg(lon2), Y: toDeg(lat2)}
}
