package domain

import (
	"time"

	"github.com/samirrijal/geoext/internal/core/geometry"
)

// Feature is a named, stored geometry.
type Feature struct {
	ID        string
	Name      string
	Geometry  Geometry
	CreatedAt time.Time
}

// Bounds of the feature's geometry.
func (f *Feature) Bounds() geometry.Box { return f.Geometry.Bounds() }

// FeatureEventType names what happened to a feature.
type FeatureEventType string

const (
	FeatureCreated FeatureEventType = "created"
	FeatureDeleted FeatureEventType = "deleted"
)

// FeatureEvent is broadcast whenever the feature store changes. WKT is empty
// for deletions.
type FeatureEvent struct {
	Type      FeatureEventType `json:"type"`
	FeatureID string           `json:"feature_id"`
	Name      string           `json:"name,omitempty"`
	Kind      string           `json:"kind,omitempty"`
	WKT       string           `json:"wkt,omitempty"`
	At        time.Time        `json:"at"`
}

// Measures collects the scalar properties of a geometry.
type Measures struct {
	Kind      string       `json:"kind"`
	SRID      int32        `json:"srid"`
	NumPoints int          `json:"num_points"`
	Length    float64      `json:"length"`
	Area      float64      `json:"area"`
	Perimeter float64      `json:"perimeter"`
	Closed    bool         `json:"closed"`
	Bounds    geometry.Box `json:"bounds"`
}

// MeasureGeometry computes Measures for g. Fields that do not apply to the
// kind stay zero.
func MeasureGeometry(g Geometry) Measures {
	m := Measures{
		Kind:      g.Kind().String(),
		SRID:      g.SpatialRef(),
		NumPoints: len(g.Coords()),
		Bounds:    g.Bounds(),
	}
	switch v := g.(type) {
	case LineString:
		m.Length = v.Length()
		m.Closed = v.IsClosed()
	case Polygon:
		m.Area = v.Area()
		m.Perimeter = v.Perimeter()
		m.Closed = true
	}
	return m
}
