package domain

import (
	"fmt"
	"strings"

	"github.com/samirrijal/geoext/internal/core/geometry"
)

// Kind identifies a geometry type.
type Kind int

const (
	KindPoint Kind = iota + 1
	KindLineString
	KindPolygon
)

// String returns the SQL-style type name.
func (k Kind) String() string {
	switch k {
	case KindPoint:
		return "geo_point"
	case KindLineString:
		return "geo_linestring"
	case KindPolygon:
		return "geo_polygon"
	default:
		return "unknown"
	}
}

// ParseKind accepts either the type name ("geo_polygon") or the bare
// geometry name ("polygon"), case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "geo_") {
	case "point":
		return KindPoint, nil
	case "linestring":
		return KindLineString, nil
	case "polygon":
		return KindPolygon, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Geometry is implemented by Point, LineString and Polygon.
type Geometry interface {
	Kind() Kind
	SpatialRef() int32
	Coords() []geometry.Coord
	Bounds() geometry.Box
}

// Point is a single coordinate tagged with a spatial reference id.
type Point struct {
	geometry.Coord
	SRID int32 `json:"srid"`
}

// NewPoint returns a point at (x, y).
func NewPoint(srid int32, x, y float64) Point {
	return Point{Coord: geometry.Coord{X: x, Y: y}, SRID: srid}
}

func (p Point) Kind() Kind { return KindPoint }
func (p Point) SpatialRef() int32 { return p.SRID }
func (p Point) Coords() []geometry.Coord { return []geometry.Coord{p.Coord} }
func (p Point) Bounds() geometry.Box { return geometry.PointBox(p.Coord) }

// Distance is the planar distance to other.
func (p Point) Distance(other Point) (float64, error) {
	if err := sameSRID(p.SRID, other.SRID); err != nil {
		return 0, err
	}
	return geometry.Distance(p.Coord, other.Coord), nil
}

// LineString is an open or closed polyline of at least two points.
type LineString struct {
	SRID   int32            `json:"srid"`
	Points []geometry.Coord `json:"points"`
}

// NewLineString validates and wraps coords.
func NewLineString(srid int32, coords []geometry.Coord) (LineString, error) {
	if len(coords) < 2 {
		return LineString{}, fmt.Errorf("%w: linestring requires at least 2, got %d", ErrTooFewPoints, len(coords))
	}
	return LineString{SRID: srid, Points: coords}, nil
}

// MakeLineString joins two points into a single-segment line.
func MakeLineString(p1, p2 Point) (LineString, error) {
	if p1.SRID != p2.SRID {
		return LineString{}, fmt.Errorf("%w: first (%d) and second (%d) components", ErrSRIDMismatch, p1.SRID, p2.SRID)
	}
	return LineString{SRID: p1.SRID, Points: []geometry.Coord{p1.Coord, p2.Coord}}, nil
}

// LineStringFromArrays zips parallel x and y arrays into a line.
func LineStringFromArrays(srid int32, xs, ys []float64) (LineString, error) {
	if len(xs) != len(ys) {
		return LineString{}, fmt.Errorf("%w: %d x values, %d y values", ErrDimensionMismatch, len(xs), len(ys))
	}
	coords := make([]geometry.Coord, len(xs))
	for i := range xs {
		coords[i] = geometry.Coord{X: xs[i], Y: ys[i]}
	}
	return NewLineString(srid, coords)
}

func (l LineString) Kind() Kind { return KindLineString }
func (l LineString) SpatialRef() int32 { return l.SRID }
func (l LineString) Coords() []geometry.Coord { return l.Points }

func (l LineString) Bounds() geometry.Box {
	b, _ := geometry.BoundingBox(l.Points)
	return b
}

// IsClosed reports whether the first and last points coincide.
func (l LineString) IsClosed() bool {
	if len(l.Points) < 2 {
		return false
	}
	return geometry.Equals(l.Points[0], l.Points[len(l.Points)-1])
}

// Length of the polyline.
func (l LineString) Length() float64 { return geometry.Length(l.Points) }

// Boundary returns the first and last points.
func (l LineString) Boundary() (Point, Point) {
	if len(l.Points) == 0 {
		return Point{SRID: l.SRID}, Point{SRID: l.SRID}
	}
	return Point{Coord: l.Points[0], SRID: l.SRID},
		Point{Coord: l.Points[len(l.Points)-1], SRID: l.SRID}
}

// BoundaryPoints lays the boundary out as a 2xN array: xs in row 0, ys in row 1.
func (l LineString) BoundaryPoints() [2][]float64 {
	first, last := l.Boundary()
	return [2][]float64{{first.X, last.X}, {first.Y, last.Y}}
}

// SegmentIntersection is one non-disjoint pair of segments between two lines.
type SegmentIntersection struct {
	Segment      int               `json:"segment"`
	OtherSegment int               `json:"other_segment"`
	Relation     geometry.Relation `json:"relation"`
	Points       []geometry.Coord  `json:"points"`
}

// Intersections relates every segment of l to every segment of other and
// returns the pairs that meet. Segment boxes are compared first so most
// disjoint pairs never reach the kernel.
func (l LineString) Intersections(other LineString) ([]SegmentIntersection, error) {
	if err := sameSRID(l.SRID, other.SRID); err != nil {
		return nil, err
	}

	var out []SegmentIntersection
	for i := 0; i+1 < len(l.Points); i++ {
		p1, p2 := l.Points[i], l.Points[i+1]
		pb := geometry.NewBox(p1, p2)
		for j := 0; j+1 < len(other.Points); j++ {
			q1, q2 := other.Points[j], other.Points[j+1]
			if !pb.Overlaps(geometry.NewBox(q1, q2)) {
				continue
			}
			rel, ip1, ip2 := geometry.ComputeIntersection(p1, p2, q1, q2)
			if rel == geometry.Disjoint {
				continue
			}
			si := SegmentIntersection{Segment: i, OtherSegment: j, Relation: rel, Points: []geometry.Coord{ip1}}
			if rel == geometry.Overlap {
				si.Points = append(si.Points, ip2)
			}
			out = append(out, si)
		}
	}
	return out, nil
}

// Polygon is a single closed ring. Holes are not supported.
type Polygon struct {
	SRID int32            `json:"srid"`
	Ring []geometry.Coord `json:"ring"`
}

// NewPolygon validates ring: at least 4 vertices and first == last. Rings
// are never closed implicitly.
func NewPolygon(srid int32, ring []geometry.Coord) (Polygon, error) {
	if len(ring) < geometry.MinRingSize {
		return Polygon{}, fmt.Errorf("%w: polygon requires at least %d, got %d", ErrTooFewPoints, geometry.MinRingSize, len(ring))
	}
	if !geometry.Equals(ring[0], ring[len(ring)-1]) {
		return Polygon{}, ErrRingNotClosed
	}
	return Polygon{SRID: srid, Ring: ring}, nil
}

func (p Polygon) Kind() Kind { return KindPolygon }
func (p Polygon) SpatialRef() int32 { return p.SRID }
func (p Polygon) Coords() []geometry.Coord { return p.Ring }

func (p Polygon) Bounds() geometry.Box {
	b, _ := geometry.BoundingBox(p.Ring)
	return b
}

func (p Polygon) Area() float64 { return geometry.Area(p.Ring) }
func (p Polygon) SignedArea() float64 { return geometry.SignedArea(p.Ring) }
func (p Polygon) Perimeter() float64 { return geometry.Length(p.Ring) }

// Contains runs the crossings test for pt. The polygon must have been
// built through NewPolygon (or otherwise validated).
func (p Polygon) Contains(pt Point) (bool, error) {
	if err := sameSRID(p.SRID, pt.SRID); err != nil {
		return false, err
	}
	if len(p.Ring) < geometry.MinRingSize {
		return false, fmt.Errorf("%w: polygon requires at least %d, got %d", ErrTooFewPoints, geometry.MinRingSize, len(p.Ring))
	}
	return geometry.PointInPolygon(pt.Coord, p.Ring), nil
}

// Validate re-checks the constructor rules for g. It is used on values that
// were decoded field by field rather than built with a constructor.
func Validate(g Geometry) error {
	switch v := g.(type) {
	case Point:
		return nil
	case LineString:
		_, err := NewLineString(v.SRID, v.Points)
		return err
	case Polygon:
		_, err := NewPolygon(v.SRID, v.Ring)
		return err
	case nil:
		return fmt.Errorf("%w: nil geometry", ErrUnknownKind)
	default:
		return fmt.Errorf("%w: %T", ErrUnknownKind, g)
	}
}

func sameSRID(a, b int32) error {
	if a != b {
		return fmt.Errorf("%w: %d and %d", ErrSRIDMismatch, a, b)
	}
	return nil
}
