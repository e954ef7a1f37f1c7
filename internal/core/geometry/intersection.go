package geometry

import "math"

// Relation classifies how two segments meet.
type Relation int

const (
	Disjoint Relation = iota
	Cross
	Touch
	Overlap
)

func (r Relation) String() string {
	switch r {
	case Disjoint:
		return "disjoint"
	case Cross:
		return "cross"
	case Touch:
		return "touch"
	case Overlap:
		return "overlap"
	default:
		return "unknown"
	}
}

// MarshalText encodes the relation by name.
func (r Relation) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// ComputeIntersection relates segment p (p1->p2) to segment q (q1->q2)
// using Antonio's parametric test (Graphics Gems III).
//
// For Cross and Touch the meeting point is ip1. For Overlap, ip1 and ip2 are
// the ends of the shared sub-segment. Unused results are the zero Coord.
//
// A numerator of exactly zero in the non-parallel branch means the segments
// meet at an endpoint; that case is reported as Touch at the shared endpoint
// rather than Cross.
func ComputeIntersection(p1, p2, q1, q2 Coord) (rel Relation, ip1, ip2 Coord) {
	a := p2.Sub(p1)
	b := q1.Sub(q2)

	den := a.Y*b.X - a.X*b.Y
	if den == 0 {
		return collinearOverlap(p1, p2, q1, q2)
	}

	c := p1.Sub(q1)
	numAlpha := b.Y*c.X - b.X*c.Y
	numBeta := a.X*c.Y - a.Y*c.X

	// The sign of den decides the direction of each range check, which keeps
	// the division out of the rejection test.
	if den > 0 {
		if numAlpha < 0 || numAlpha > den || numBeta < 0 || numBeta > den {
			return Disjoint, Coord{}, Coord{}
		}
	} else {
		if numAlpha > 0 || numAlpha < den || numBeta > 0 || numBeta < den {
			return Disjoint, Coord{}, Coord{}
		}
	}

	switch {
	case numAlpha == 0:
		return Touch, p1, Coord{}
	case numAlpha == den:
		return Touch, p2, Coord{}
	case numBeta == 0:
		return Touch, q1, Coord{}
	case numBeta == den:
		return Touch, q2, Coord{}
	}

	alpha := numAlpha / den
	ip1 = Coord{X: p1.X + alpha*(p2.X-p1.X), Y: p1.Y + alpha*(p2.Y-p1.Y)}
	return Cross, ip1, Coord{}
}

// collinearOverlap handles den == 0. A zero-length segment is a point: it
// touches the other segment when it lies on it and is disjoint otherwise.
// Parallel segments that do not share a supporting line are disjoint; the
// rest are compared as 1-D intervals along y for vertical p and along x
// otherwise.
func collinearOverlap(p1, p2, q1, q2 Coord) (Relation, Coord, Coord) {
	switch pDegenerate, qDegenerate := Equals(p1, p2), Equals(q1, q2); {
	case pDegenerate && qDegenerate:
		if Equals(p1, q1) {
			return Touch, p1, Coord{}
		}
		return Disjoint, Coord{}, Coord{}
	case pDegenerate:
		if onSegment(p1, q1, q2) {
			return Touch, p1, Coord{}
		}
		return Disjoint, Coord{}, Coord{}
	case qDegenerate:
		if onSegment(q1, p1, p2) {
			return Touch, q1, Coord{}
		}
		return Disjoint, Coord{}, Coord{}
	}

	a := p2.Sub(p1)
	c := q1.Sub(p1)
	if a.X*c.Y-a.Y*c.X != 0 {
		return Disjoint, Coord{}, Coord{}
	}

	key := func(c Coord) float64 { return c.X }
	if p1.X == p2.X {
		key = func(c Coord) float64 { return c.Y }
	}

	pmin, pmax := p1, p2
	if key(pmin) > key(pmax) {
		pmin, pmax = pmax, pmin
	}
	qmin, qmax := q1, q2
	if key(qmin) > key(qmax) {
		qmin, qmax = qmax, qmin
	}

	switch {
	case key(pmax) < key(qmin) || key(pmin) > key(qmax):
		return Disjoint, Coord{}, Coord{}
	case key(pmax) == key(qmin):
		return Touch, pmax, Coord{}
	case key(pmin) == key(qmax):
		return Touch, pmin, Coord{}
	}

	ip1 := pmin
	if key(qmin) > key(pmin) {
		ip1 = qmin
	}
	ip2 := pmax
	if key(qmax) < key(pmax) {
		ip2 = qmax
	}
	return Overlap, ip1, ip2
}

// onSegment reports whether pt lies on the closed segment s1-s2.
func onSegment(pt, s1, s2 Coord) bool {
	d := s2.Sub(s1)
	e := pt.Sub(s1)
	if d.X*e.Y-d.Y*e.X != 0 {
		return false
	}
	return pt.X >= math.Min(s1.X, s2.X) && pt.X <= math.Max(s1.X, s2.X) &&
		pt.Y >= math.Min(s1.Y, s2.Y) && pt.Y <= math.Max(s1.Y, s2.Y)
}
