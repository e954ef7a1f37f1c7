// Package geometry is the planar computational-geometry kernel.
//
// Every function is pure: it reads caller-owned coordinates, allocates
// nothing and keeps no state, so it is safe for concurrent use as long as
// callers do not mutate the slices they pass in. Arithmetic is plain IEEE
// float64; there is no robust-predicate machinery.
package geometry

import "math"

// Coord is a 2-D coordinate.
type Coord struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sub returns c - o.
func (c Coord) Sub(o Coord) Coord { return Coord{X: c.X - o.X, Y: c.Y - o.Y} }

// Equals reports whether a and b are the same coordinate. No tolerance is
// applied, so NaN is never equal to anything.
func Equals(a, b Coord) bool {
	return a.X == b.X && a.Y == b.Y
}

// Distance is the Euclidean distance between a and b.
func Distance(a, b Coord) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Length sums the distances between consecutive coordinates. Applied to a
// closed ring it yields the perimeter. Sequences shorter than two
// coordinates have zero length.
func Length(cs []Coord) float64 {
	var total float64
	for i := 0; i+1 < len(cs); i++ {
		total += Distance(cs[i], cs[i+1])
	}
	return total
}
