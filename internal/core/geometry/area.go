package geometry

import "math"

// SignedArea applies the shoelace formula over consecutive pairs (i, i+1)
// for i in [0, n-2]. The ring is not closed implicitly: callers pass the
// first vertex again at the end. Counter-clockwise rings are positive.
func SignedArea(ring []Coord) float64 {
	var sum float64
	for i := 0; i+1 < len(ring); i++ {
		sum += ring[i].X*ring[i+1].Y - ring[i+1].X*ring[i].Y
	}
	return sum / 2
}

// Area is the absolute shoelace area of ring.
func Area(ring []Coord) float64 {
	return math.Abs(SignedArea(ring))
}
