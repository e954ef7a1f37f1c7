package geometry

import "math"

// Box is an axis-aligned rectangle with Low <= High on both axes.
type Box struct {
	Low  Coord `json:"low"`
	High Coord `json:"high"`
}

// NewBox builds a box from two opposite corners in any order.
func NewBox(a, b Coord) Box {
	return Box{
		Low:  Coord{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y)},
		High: Coord{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y)},
	}
}

// PointBox is the degenerate box covering a single coordinate.
func PointBox(c Coord) Box { return Box{Low: c, High: c} }

// BoundingBox returns the smallest box covering cs. ok is false for an
// empty sequence.
func BoundingBox(cs []Coord) (b Box, ok bool) {
	if len(cs) == 0 {
		return Box{}, false
	}
	b = PointBox(cs[0])
	for _, c := range cs[1:] {
		b = b.Expand(c)
	}
	return b, true
}

// Expand returns b grown to cover c.
func (b Box) Expand(c Coord) Box {
	return Box{
		Low:  Coord{X: math.Min(b.Low.X, c.X), Y: math.Min(b.Low.Y, c.Y)},
		High: Coord{X: math.Max(b.High.X, c.X), Y: math.Max(b.High.Y, c.Y)},
	}
}

// Union returns the smallest box covering both a and b.
func Union(a, b Box) Box {
	return a.Expand(b.Low).Expand(b.High)
}

// Area of the box; zero for degenerate boxes.
func (b Box) Area() float64 {
	return (b.High.X - b.Low.X) * (b.High.Y - b.Low.Y)
}

// Center of the box.
func (b Box) Center() Coord {
	return Coord{X: (b.Low.X + b.High.X) / 2, Y: (b.Low.Y + b.High.Y) / 2}
}

// Overlaps reports whether a and b share at least one point.
func (b Box) Overlaps(o Box) bool {
	return b.Low.X <= o.High.X && o.Low.X <= b.High.X &&
		b.Low.Y <= o.High.Y && o.Low.Y <= b.High.Y
}

// Contains reports whether o lies entirely inside b, boundary included.
func (b Box) Contains(o Box) bool {
	return b.Low.X <= o.Low.X && o.High.X <= b.High.X &&
		b.Low.Y <= o.Low.Y && o.High.Y <= b.High.Y
}
