package usecases_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/samirrijal/geoext/internal/core/domain"
	"github.com/samirrijal/geoext/internal/core/geometry"
	"github.com/samirrijal/geoext/internal/core/usecases"
)

func pt(srid int32, x, y float64) domain.Point { return domain.NewPoint(srid, x, y) }

func coords(xy ...float64) []geometry.Coord {
	out := make([]geometry.Coord, 0, len(xy)/2)
	for i := 0; i+1 < len(xy); i += 2 {
		out = append(out, geometry.Coord{X: xy[i], Y: xy[i+1]})
	}
	return out
}

func TestGeometryService_Distance(t *testing.T) {
	svc := usecases.NewGeometryService()

	d, err := svc.Distance(pt(0, 0, 0), pt(0, 3, 4))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d != 5 {
		t.Errorf("expected 5, got %v", d)
	}

	if _, err := svc.Distance(pt(0, 0, 0), pt(4326, 1, 1)); !errors.Is(err, domain.ErrSRIDMismatch) {
		t.Errorf("expected ErrSRIDMismatch, got %v", err)
	}
}

func TestGeometryService_Distance_Geodesic(t *testing.T) {
	svc := usecases.NewGeometryService()

	d, err := svc.Distance(pt(4326, 0, 0), pt(4326, 0, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(d-111195) > 10 {
		t.Errorf("expected ~111195m, got %.1f", d)
	}
}

func TestGeometryService_Length_Geodesic(t *testing.T) {
	svc := usecases.NewGeometryService()

	planar, _ := domain.NewLineString(0, coords(0, 0, 0, 1, 0, 2))
	if got := svc.Length(planar); got != 2 {
		t.Errorf("expected planar length 2, got %v", got)
	}

	wgs, _ := domain.NewLineString(4326, coords(0, 0, 0, 1, 0, 2))
	if got := svc.Length(wgs); math.Abs(got-2*111195) > 20 {
		t.Errorf("expected ~222390m, got %.1f", got)
	}

	m, err := svc.Measure(wgs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Length != svc.Length(wgs) {
		t.Errorf("expected measured length %v, got %v", svc.Length(wgs), m.Length)
	}
}

func TestGeometryService_Contains(t *testing.T) {
	svc := usecases.NewGeometryService()
	square, _ := domain.NewPolygon(0, coords(0, 0, 10, 0, 10, 10, 0, 10, 0, 0))

	inside, err := svc.Contains(square, pt(0, 5, 5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !inside {
		t.Error("expected (5,5) inside")
	}

	outside, _ := svc.Contains(square, pt(0, -1, 5))
	if outside {
		t.Error("expected (-1,5) outside")
	}
}

func TestGeometryService_Contains_ShortRing(t *testing.T) {
	svc := usecases.NewGeometryService()
	// Built without the constructor: the service must reject it, not panic.
	bad := domain.Polygon{Ring: coords(0, 0, 1, 1, 0, 0)}

	if _, err := svc.Contains(bad, pt(0, 0, 0)); !errors.Is(err, domain.ErrTooFewPoints) {
		t.Errorf("expected ErrTooFewPoints, got %v", err)
	}
}

func TestGeometryService_Relate(t *testing.T) {
	svc := usecases.NewGeometryService()

	r, err := svc.Relate(pt(0, 0, 0), pt(0, 10, 10), pt(0, 0, 10), pt(0, 10, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Relation != geometry.Cross {
		t.Fatalf("expected cross, got %s", r.Relation)
	}
	if len(r.Points) != 1 || r.Points[0] != pt(0, 5, 5) {
		t.Errorf("expected [(5,5)], got %v", r.Points)
	}

	r, _ = svc.Relate(pt(0, 0, 0), pt(0, 4, 0), pt(0, 2, 0), pt(0, 6, 0))
	if r.Relation != geometry.Overlap || len(r.Points) != 2 {
		t.Fatalf("expected overlap with 2 points, got %s %v", r.Relation, r.Points)
	}
	if r.Points[0] != pt(0, 2, 0) || r.Points[1] != pt(0, 4, 0) {
		t.Errorf("unexpected overlap ends %v", r.Points)
	}

	r, _ = svc.Relate(pt(0, 0, 0), pt(0, 1, 0), pt(0, 0, 5), pt(0, 1, 5))
	if r.Relation != geometry.Disjoint || len(r.Points) != 0 {
		t.Errorf("expected disjoint without points, got %s %v", r.Relation, r.Points)
	}

	if _, err := svc.Relate(pt(0, 0, 0), pt(0, 1, 1), pt(3857, 0, 1), pt(0, 1, 0)); !errors.Is(err, domain.ErrSRIDMismatch) {
		t.Errorf("expected ErrSRIDMismatch, got %v", err)
	}
}

func TestGeometryService_Intersections(t *testing.T) {
	svc := usecases.NewGeometryService()
	a, _ := domain.NewLineString(0, coords(0, 0, 10, 10, 20, 0))
	b, _ := domain.NewLineString(0, coords(0, 5, 20, 5))

	out, err := svc.Intersections(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 intersections, got %d", len(out))
	}
	if out[0].Points[0] != (geometry.Coord{X: 5, Y: 5}) || out[1].Points[0] != (geometry.Coord{X: 15, Y: 5}) {
		t.Errorf("unexpected points %v %v", out[0].Points, out[1].Points)
	}

	if _, err := svc.Intersections(a, domain.LineString{Points: coords(0, 0)}); !errors.Is(err, domain.ErrTooFewPoints) {
		t.Errorf("expected ErrTooFewPoints, got %v", err)
	}
}

func TestGeometryService_Compare(t *testing.T) {
	svc := usecases.NewGeometryService()

	c, err := svc.Compare(pt(0, 1, 9), pt(0, 2, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c != -1 {
		t.Errorf("expected -1, got %d", c)
	}
	if _, err := svc.Compare(pt(0, 1, 1), pt(4326, 1, 1)); !errors.Is(err, domain.ErrSRIDMismatch) {
		t.Errorf("expected ErrSRIDMismatch, got %v", err)
	}
}

func TestGeometryService_ParseConvert(t *testing.T) {
	svc := usecases.NewGeometryService()

	g, err := svc.Parse(usecases.FormatWKT, "SRID=4326;POINT(1 2)", 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	hexStr, err := svc.Convert(g, usecases.FormatHex)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hexStr) != 40 {
		t.Errorf("expected 40 hex chars, got %d", len(hexStr))
	}

	back, err := svc.Parse(usecases.FormatHex, hexStr, domain.KindPoint, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if back != g {
		t.Errorf("hex round trip: expected %v, got %v", g, back)
	}

	wkb, err := svc.Convert(g, usecases.FormatWKB)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	back, err = svc.Parse(usecases.FormatWKB, wkb, domain.KindPoint, 4326)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if back != g {
		t.Errorf("wkb round trip: expected %v, got %v", g, back)
	}

	ogcText, err := svc.Convert(g, usecases.FormatOGCWKT)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ogcText != "POINT (1 2)" {
		t.Errorf("expected POINT (1 2), got %q", ogcText)
	}
}

func TestGeometryService_Parse_Errors(t *testing.T) {
	svc := usecases.NewGeometryService()

	if _, err := svc.Parse(usecases.FormatHex, "00", 0, 0); !errors.Is(err, domain.ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind for hex without kind, got %v", err)
	}
	if _, err := svc.Parse(usecases.FormatWKT, "POINT(1 2)", domain.KindPolygon, 0); !errors.Is(err, domain.ErrKindMismatch) {
		t.Errorf("expected ErrKindMismatch, got %v", err)
	}
	if _, err := svc.Parse(usecases.FormatOGCWKT, "POINT (1 2)", 0, 0); !errors.Is(err, usecases.ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
	if _, err := usecases.ParseFormat("kml"); !errors.Is(err, usecases.ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
	if f, err := usecases.ParseFormat(" GeoJSON "); err != nil || f != usecases.FormatGeoJSON {
		t.Errorf("expected geojson, got %q %v", f, err)
	}
}

func TestGeometryService_Trajectory(t *testing.T) {
	svc := usecases.NewGeometryService()
	t0 := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	tr, err := svc.Trajectory([]domain.TrajectoryElement{
		{Time: t0.Add(10 * time.Second), Point: pt(0, 3, 4)},
		{Time: t0, Point: pt(0, 0, 0)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.Length() != 5 {
		t.Errorf("expected length 5, got %v", tr.Length())
	}
	if tr.MeanSpeed() != 0.5 {
		t.Errorf("expected speed 0.5, got %v", tr.MeanSpeed())
	}
}

func TestGeometryService_Measure(t *testing.T) {
	svc := usecases.NewGeometryService()
	square, _ := domain.NewPolygon(0, coords(0, 0, 10, 0, 10, 10, 0, 10, 0, 0))

	m, err := svc.Measure(square)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Area != 100 || m.Perimeter != 40 || m.NumPoints != 5 {
		t.Errorf("unexpected measures %+v", m)
	}
}
