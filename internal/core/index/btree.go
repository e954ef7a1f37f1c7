package index

import (
	"fmt"
	"sync"

	"github.com/google/btree"

	"github.com/samirrijal/geoext/internal/core/domain"
)

// ComparePoints orders points by x, then y. Points in different reference
// systems are not comparable.
func ComparePoints(a, b domain.Point) (int, error) {
	if a.SRID != b.SRID {
		return 0, fmt.Errorf("%w: %d and %d", domain.ErrSRIDMismatch, a.SRID, b.SRID)
	}
	return compareXY(a, b), nil
}

func compareXY(a, b domain.Point) int {
	switch {
	case a.X < b.X:
		return -1
	case a.X > b.X:
		return 1
	case a.Y < b.Y:
		return -1
	case a.Y > b.Y:
		return 1
	}
	return 0
}

// PointEntry is one indexed point.
type PointEntry struct {
	ID    string       `json:"id"`
	Point domain.Point `json:"point"`
}

func lessEntry(a, b PointEntry) bool {
	if a.Point.SRID != b.Point.SRID {
		return a.Point.SRID < b.Point.SRID
	}
	if c := compareXY(a.Point, b.Point); c != 0 {
		return c < 0
	}
	return a.ID < b.ID
}

// PointIndex keeps points in ComparePoints order, grouped by SRID. It is safe
// for concurrent use.
type PointIndex struct {
	mu   sync.RWMutex
	tree *btree.BTreeG[PointEntry]
	byID map[string]domain.Point
}

// NewPointIndex returns an empty index with the given B-tree degree.
func NewPointIndex(degree int) *PointIndex {
	if degree < 2 {
		degree = 2
	}
	return &PointIndex{
		tree: btree.NewG(degree, lessEntry),
		byID: make(map[string]domain.Point),
	}
}

// Put stores p under id, replacing any previous point for id.
func (x *PointIndex) Put(id string, p domain.Point) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if old, ok := x.byID[id]; ok {
		x.tree.Delete(PointEntry{ID: id, Point: old})
	}
	x.byID[id] = p
	x.tree.ReplaceOrInsert(PointEntry{ID: id, Point: p})
}

// Remove deletes id and reports whether it was present.
func (x *PointIndex) Remove(id string) bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	p, ok := x.byID[id]
	if !ok {
		return false
	}
	delete(x.byID, id)
	x.tree.Delete(PointEntry{ID: id, Point: p})
	return true
}

// Len is the number of indexed points.
func (x *PointIndex) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.tree.Len()
}

// Range returns the points p with lo <= p <= hi, in order. lo and hi must
// share an SRID; limit <= 0 means no limit.
func (x *PointIndex) Range(lo, hi domain.Point, limit int) ([]PointEntry, error) {
	if _, err := ComparePoints(lo, hi); err != nil {
		return nil, err
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	var out []PointEntry
	x.tree.AscendGreaterOrEqual(PointEntry{Point: lo}, func(e PointEntry) bool {
		if e.Point.SRID != hi.SRID || compareXY(e.Point, hi) > 0 {
			return false
		}
		out = append(out, e)
		return limit <= 0 || len(out) < limit
	})
	return out, nil
}
