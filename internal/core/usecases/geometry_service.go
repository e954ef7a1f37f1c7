package usecases

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/samirrijal/geoext/internal/codec/ogc"
	"github.com/samirrijal/geoext/internal/codec/wire"
	"github.com/samirrijal/geoext/internal/codec/wkt"
	"github.com/samirrijal/geoext/internal/core/domain"
	"github.com/samirrijal/geoext/internal/core/geometry"
	"github.com/samirrijal/geoext/internal/core/index"
	"github.com/samirrijal/geoext/internal/pkg/geospatial"
	"github.com/samirrijal/geoext/internal/pkg/metrics"
)

// Format names a geometry encoding.
type Format string

const (
	FormatWKT     Format = "wkt"
	FormatHex     Format = "hex"
	FormatGeoJSON Format = "geojson"
	FormatWKB     Format = "wkb"
	FormatOGCWKT  Format = "ogcwkt"
)

// ErrUnsupportedFormat is returned for an unknown or one-way encoding.
var ErrUnsupportedFormat = errors.New("unsupported format")

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatWKT, FormatHex, FormatGeoJSON, FormatWKB, FormatOGCWKT:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// SegmentRelation is the outcome of relating two segments.
type SegmentRelation struct {
	Relation geometry.Relation `json:"relation"`
	Points   []domain.Point    `json:"points"`
}

// GeometryService exposes the kernel to the API surfaces. Every entry point
// checks the preconditions the kernel assumes, so bad input comes back as an
// error rather than a panic.
type GeometryService struct{}

// NewGeometryService creates a new GeometryService.
func NewGeometryService() *GeometryService {
	return &GeometryService{}
}

// Distance between two points. WGS84 points are measured along the great
// circle, in meters; everything else is planar.
func (s *GeometryService) Distance(a, b domain.Point) (float64, error) {
	record("distance")
	if a.SRID == geospatial.SRIDWGS84 && b.SRID == geospatial.SRIDWGS84 {
		return geospatial.Haversine(a.Coord, b.Coord), nil
	}
	return a.Distance(b)
}

// Length of l. WGS84 lines are measured along great circles, in meters.
func (s *GeometryService) Length(l domain.LineString) float64 {
	record("length")
	return lineLength(l)
}

func lineLength(l domain.LineString) float64 {
	if l.SRID == geospatial.SRIDWGS84 {
		return geospatial.PathLength(l.Points)
	}
	return l.Length()
}

// measure is MeasureGeometry with WGS84 line lengths in meters.
func measure(g domain.Geometry) domain.Measures {
	m := domain.MeasureGeometry(g)
	if l, ok := g.(domain.LineString); ok {
		m.Length = lineLength(l)
	}
	return m
}

func (s *GeometryService) IsClosed(l domain.LineString) bool {
	record("is_closed")
	return l.IsClosed()
}

func (s *GeometryService) Boundary(l domain.LineString) (domain.Point, domain.Point) {
	record("boundary")
	return l.Boundary()
}

func (s *GeometryService) Area(p domain.Polygon) float64 {
	record("area")
	return p.Area()
}

func (s *GeometryService) Perimeter(p domain.Polygon) float64 {
	record("perimeter")
	return p.Perimeter()
}

// Contains reports whether pt lies inside p by the crossings test. Boundary
// points follow its >= tie-break.
func (s *GeometryService) Contains(p domain.Polygon, pt domain.Point) (bool, error) {
	record("contains")
	if err := domain.Validate(p); err != nil {
		return false, err
	}
	return p.Contains(pt)
}

// Relate classifies segment p1->p2 against q1->q2.
func (s *GeometryService) Relate(p1, p2, q1, q2 domain.Point) (SegmentRelation, error) {
	record("relate")
	srid := p1.SRID
	for _, p := range []domain.Point{p2, q1, q2} {
		if p.SRID != srid {
			return SegmentRelation{}, fmt.Errorf("%w: %d and %d", domain.ErrSRIDMismatch, srid, p.SRID)
		}
	}

	rel, ip1, ip2 := geometry.ComputeIntersection(p1.Coord, p2.Coord, q1.Coord, q2.Coord)
	metrics.SegmentRelations.WithLabelValues(rel.String()).Inc()

	out := SegmentRelation{Relation: rel, Points: []domain.Point{}}
	switch rel {
	case geometry.Cross, geometry.Touch:
		out.Points = append(out.Points, domain.Point{Coord: ip1, SRID: srid})
	case geometry.Overlap:
		out.Points = append(out.Points, domain.Point{Coord: ip1, SRID: srid}, domain.Point{Coord: ip2, SRID: srid})
	}
	return out, nil
}

// Intersections lists every meeting segment pair of a and b.
func (s *GeometryService) Intersections(a, b domain.LineString) ([]domain.SegmentIntersection, error) {
	record("intersections")
	if err := domain.Validate(a); err != nil {
		return nil, err
	}
	if err := domain.Validate(b); err != nil {
		return nil, err
	}
	out, err := a.Intersections(b)
	if err != nil {
		return nil, err
	}
	for _, si := range out {
		metrics.SegmentRelations.WithLabelValues(si.Relation.String()).Inc()
	}
	return out, nil
}

// Compare orders two points by x, then y.
func (s *GeometryService) Compare(a, b domain.Point) (int, error) {
	record("compare")
	return index.ComparePoints(a, b)
}

// Trajectory builds a time-ordered path from observations.
func (s *GeometryService) Trajectory(elems []domain.TrajectoryElement) (domain.Trajectory, error) {
	record("trajectory")
	return domain.BuildTrajectory(elems)
}

// Parse decodes input in the given format. kind is required for hex input
// and checked against the result otherwise (zero accepts any kind). srid
// applies to formats that do not carry one.
func (s *GeometryService) Parse(format Format, input string, kind domain.Kind, srid int32) (domain.Geometry, error) {
	record("parse")

	var (
		g   domain.Geometry
		err error
	)
	switch format {
	case FormatWKT:
		g, err = wkt.Decode(input)
	case FormatHex:
		if kind == 0 {
			return nil, fmt.Errorf("%w: hex input needs an explicit kind", domain.ErrUnknownKind)
		}
		g, err = wire.DecodeHex(kind, input)
	case FormatGeoJSON:
		g, err = ogc.UnmarshalGeoJSON([]byte(input), srid)
	case FormatWKB:
		raw, decErr := hex.DecodeString(strings.TrimSpace(input))
		if decErr != nil {
			return nil, fmt.Errorf("wkb: %w", decErr)
		}
		g, err = ogc.UnmarshalWKB(raw, srid)
	default:
		return nil, fmt.Errorf("%w: cannot parse %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}

	if kind != 0 && g.Kind() != kind {
		return nil, fmt.Errorf("%w: got %s, want %s", domain.ErrKindMismatch, g.Kind(), kind)
	}
	return g, nil
}

// Convert encodes g in the given format. Binary WKB is returned hex-encoded.
func (s *GeometryService) Convert(g domain.Geometry, format Format) (string, error) {
	record("convert")
	if err := domain.Validate(g); err != nil {
		return "", err
	}

	switch format {
	case FormatWKT:
		return wkt.Encode(g), nil
	case FormatHex:
		return wire.EncodeHex(g), nil
	case FormatGeoJSON:
		b, err := ogc.MarshalGeoJSON(g)
		if err != nil {
			return "", err
		}
		return string(b), nil
	case FormatWKB:
		b, err := ogc.MarshalWKB(g)
		if err != nil {
			return "", err
		}
		return hex.EncodeToString(b), nil
	case FormatOGCWKT:
		return ogc.MarshalWKT(g)
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// Measure computes the scalar properties of g.
func (s *GeometryService) Measure(g domain.Geometry) (domain.Measures, error) {
	record("measure")
	if err := domain.Validate(g); err != nil {
		return domain.Measures{}, err
	}
	return measure(g), nil
}

func record(op string) {
	metrics.KernelOperations.WithLabelValues(op).Inc()
}
