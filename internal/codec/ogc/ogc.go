// Package ogc converts domain geometries to and from the OGC interchange
// formats (GeoJSON, WKB and standard WKT) through go-geom.
package ogc

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkb"
	ogcwkt "github.com/twpayne/go-geom/encoding/wkt"

	"github.com/samirrijal/geoext/internal/core/domain"
	"github.com/samirrijal/geoext/internal/core/geometry"
)

// ErrUnsupported is returned for go-geom values with no domain equivalent,
// such as multi-geometries or polygons with holes.
var ErrUnsupported = errors.New("ogc: unsupported geometry")

// ToGeom converts g to its go-geom form.
func ToGeom(g domain.Geometry) (geom.T, error) {
	switch v := g.(type) {
	case domain.Point:
		return geom.NewPoint(geom.XY).MustSetCoords(toCoord(v.Coord)).SetSRID(int(v.SRID)), nil
	case domain.LineString:
		return geom.NewLineString(geom.XY).MustSetCoords(toCoords(v.Points)).SetSRID(int(v.SRID)), nil
	case domain.Polygon:
		return geom.NewPolygon(geom.XY).MustSetCoords([][]geom.Coord{toCoords(v.Ring)}).SetSRID(int(v.SRID)), nil
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupported, g)
}

// FromGeom converts a go-geom value and validates the result.
func FromGeom(t geom.T) (domain.Geometry, error) {
	if t.Layout() != geom.XY {
		return nil, fmt.Errorf("%w: layout %v", ErrUnsupported, t.Layout())
	}
	srid := int32(t.SRID())

	switch v := t.(type) {
	case *geom.Point:
		return domain.NewPoint(srid, v.X(), v.Y()), nil
	case *geom.LineString:
		return domain.NewLineString(srid, fromCoords(v.Coords()))
	case *geom.Polygon:
		if v.NumLinearRings() != 1 {
			return nil, fmt.Errorf("%w: polygon with %d rings", ErrUnsupported, v.NumLinearRings())
		}
		return domain.NewPolygon(srid, fromCoords(v.LinearRing(0).Coords()))
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupported, t)
}

// MarshalGeoJSON encodes g as a GeoJSON geometry object.
func MarshalGeoJSON(g domain.Geometry) ([]byte, error) {
	t, err := ToGeom(g)
	if err != nil {
		return nil, err
	}
	return geojson.Marshal(t)
}

// UnmarshalGeoJSON decodes a GeoJSON geometry object. GeoJSON has no SRID,
// so srid is applied to the result.
func UnmarshalGeoJSON(data []byte, srid int32) (domain.Geometry, error) {
	var t geom.T
	if err := geojson.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("ogc: decoding geojson: %w", err)
	}
	g, err := FromGeom(t)
	if err != nil {
		return nil, err
	}
	return withSRID(g, srid), nil
}

// MarshalWKB encodes g as little-endian WKB.
func MarshalWKB(g domain.Geometry) ([]byte, error) {
	t, err := ToGeom(g)
	if err != nil {
		return nil, err
	}
	return wkb.Marshal(t, binary.LittleEndian)
}

// UnmarshalWKB decodes WKB of either byte order.
func UnmarshalWKB(data []byte, srid int32) (domain.Geometry, error) {
	t, err := wkb.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("ogc: decoding wkb: %w", err)
	}
	g, err := FromGeom(t)
	if err != nil {
		return nil, err
	}
	return withSRID(g, srid), nil
}

// MarshalWKT writes standard OGC WKT, e.g. POLYGON ((0 0, 1 0, ...)).
func MarshalWKT(g domain.Geometry) (string, error) {
	t, err := ToGeom(g)
	if err != nil {
		return "", err
	}
	return ogcwkt.Marshal(t)
}

func withSRID(g domain.Geometry, srid int32) domain.Geometry {
	switch v := g.(type) {
	case domain.Point:
		v.SRID = srid
		return v
	case domain.LineString:
		v.SRID = srid
		return v
	case domain.Polygon:
		v.SRID = srid
		return v
	}
	return g
}

func toCoord(c geometry.Coord) geom.Coord { return geom.Coord{c.X, c.Y} }

func toCoords(cs []geometry.Coord) []geom.Coord {
	out := make([]geom.Coord, len(cs))
	for i, c := range cs {
		out[i] = toCoord(c)
	}
	return out
}

func fromCoords(cs []geom.Coord) []geometry.Coord {
	out := make([]geometry.Coord, len(cs))
	for i, c := range cs {
		out[i] = geometry.Coord{X: c.X(), Y: c.Y()}
	}
	return out
}
