package index

import (
	"sort"

	"github.com/samirrijal/geoext/internal/core/geometry"
)

// Union covers every box. ok is false when boxes is empty.
func Union(boxes ...geometry.Box) (u geometry.Box, ok bool) {
	if len(boxes) == 0 {
		return geometry.Box{}, false
	}
	u = boxes[0]
	for _, b := range boxes[1:] {
		u = geometry.Union(u, b)
	}
	return u, true
}

// Penalty is the area orig must grow by to also cover add.
func Penalty(orig, add geometry.Box) float64 {
	return geometry.Union(orig, add).Area() - orig.Area()
}

// PickSplit divides boxes into two groups of positions. Boxes are ordered by
// center along the axis on which the centers spread widest, and the ordering
// is cut in half. Both groups are non-empty when len(boxes) >= 2.
func PickSplit(boxes []geometry.Box) (left, right []int) {
	idx := make([]int, len(boxes))
	for i := range idx {
		idx[i] = i
	}
	if len(boxes) < 2 {
		return idx, nil
	}

	centers := make([]geometry.Coord, len(boxes))
	for i, b := range boxes {
		centers[i] = b.Center()
	}
	spread, _ := geometry.BoundingBox(centers)

	key := func(i int) float64 { return centers[i].X }
	if spread.High.Y-spread.Low.Y > spread.High.X-spread.Low.X {
		key = func(i int) float64 { return centers[i].Y }
	}
	sort.SliceStable(idx, func(a, b int) bool { return key(idx[a]) < key(idx[b]) })

	mid := len(idx) / 2
	return idx[:mid], idx[mid:]
}
