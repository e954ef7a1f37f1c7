package geospatial

import (
	"math"

	"github.com/samirrijal/geoext/internal/core/geometry"
)

// SRIDWGS84 is the reference system whose coordinates are lon/lat degrees.
const SRIDWGS84 = 4326

const earthRadiusKm = 6371.0

// Haversine calculates the great-circle distance in meters between two
// lon/lat coordinates (X is longitude, Y is latitude).
func Haversine(a, b geometry.Coord) float64 {
	dLat := toRad(b.Y - a.Y)
	dLon := toRad(b.X - a.X)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Y))*math.Cos(toRad(b.Y))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c * 1000 // meters
}

// PathLength sums Haversine over consecutive coordinates.
func PathLength(cs []geometry.Coord) float64 {
	var total float64
	for i := 1; i < len(cs); i++ {
		total += Haversine(cs[i-1], cs[i])
	}
	return total
}

// BoundingBox returns a lon/lat box that holds every coordinate within
// radiusMeters of center, measured on the same sphere as Haversine. Boxes
// reaching a pole span every longitude.
func BoundingBox(center geometry.Coord, radiusMeters float64) geometry.Box {
	r := radiusMeters / (earthRadiusKm * 1000) // angular radius
	lat := toRad(center.Y)
	latDelta := toDeg(r)

	lonDelta := 180.0
	if s := math.Sin(r) / math.Cos(lat); latDelta < 90-math.Abs(center.Y) && s < 1 {
		lonDelta = toDeg(math.Asin(s))
	}

	return geometry.Box{
		Low:  geometry.Coord{X: center.X - lonDelta, Y: math.Max(center.Y-latDelta, -90)},
		High: geometry.Coord{X: center.X + lonDelta, Y: math.Min(center.Y+latDelta, 90)},
	}
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func toDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}
