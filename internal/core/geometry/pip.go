package geometry

// MinRingSize is the smallest ring PointInPolygon accepts: a triangle plus
// its closing vertex.
const MinRingSize = 4

// PointInPolygon runs the crossings test of a +X ray from pt against ring.
//
// The ring must already be closed (ring[0] == ring[len-1]); edges are taken
// between consecutive vertices only. All comparisons use >=, so points on the
// right or top boundary of a ring count as inside while points on its left or
// bottom boundary do not.
//
// It panics when ring has fewer than MinRingSize vertices. Validate input
// before calling.
func PointInPolygon(pt Coord, ring []Coord) bool {
	if len(ring) < MinRingSize {
		panic("geometry: PointInPolygon needs a closed ring of at least 4 vertices")
	}

	inside := false
	vtx0 := ring[0]
	yflag0 := vtx0.Y >= pt.Y

	for i := 1; i < len(ring); i++ {
		vtx1 := ring[i]
		yflag1 := vtx1.Y >= pt.Y

		// Only edges straddling the ray's y-level can be hit.
		if yflag0 != yflag1 {
			xflag0 := vtx0.X >= pt.X
			if xflag0 == (vtx1.X >= pt.X) {
				if xflag0 {
					inside = !inside
				}
			} else if vtx1.X-(vtx1.Y-pt.Y)*(vtx0.X-vtx1.X)/(vtx0.Y-vtx1.Y) >= pt.X {
				inside = !inside
			}
		}

		yflag0 = yflag1
		vtx0 = vtx1
	}

	return inside
}
