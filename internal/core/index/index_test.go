package index_test

import (
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/samirrijal/geoext/internal/core/domain"
	"github.com/samirrijal/geoext/internal/core/geometry"
	"github.com/samirrijal/geoext/internal/core/index"
)

func box(lx, ly, hx, hy float64) geometry.Box {
	return geometry.Box{Low: geometry.Coord{X: lx, Y: ly}, High: geometry.Coord{X: hx, Y: hy}}
}

func TestParseStrategy(t *testing.T) {
	s, err := index.ParseStrategy("overlap")
	require.NoError(t, err)
	require.Equal(t, index.StrategyOverlap, s)

	s, err = index.ParseStrategy("<@")
	require.NoError(t, err)
	require.Equal(t, index.StrategyContainedBy, s)
	require.Equal(t, "contained_by", s.String())
	require.Equal(t, "<@", s.Operator())

	_, err = index.ParseStrategy("nearest")
	require.ErrorIs(t, err, index.ErrUnknownStrategy)
	require.Equal(t, "strategy(42)", index.Strategy(42).String())
}

func TestLeafConsistent(t *testing.T) {
	key := box(0, 0, 2, 2)
	cases := []struct {
		s     index.Strategy
		query geometry.Box
		want  bool
	}{
		{index.StrategyLeft, box(3, 0, 4, 1), true},
		{index.StrategyLeft, box(2, 0, 4, 1), false},
		{index.StrategyOverLeft, box(1, 0, 2, 1), true},
		{index.StrategyOverLeft, box(0, 0, 1, 1), false},
		{index.StrategyRight, box(-3, 0, -1, 1), true},
		{index.StrategyOverRight, box(0, 5, 9, 9), true},
		{index.StrategyBelow, box(0, 3, 1, 4), true},
		{index.StrategyOverBelow, box(0, 0, 1, 1), false},
		{index.StrategyAbove, box(0, -3, 1, -1), true},
		{index.StrategyOverAbove, box(5, -1, 6, 0), true},
		{index.StrategyOverlap, box(2, 2, 3, 3), true},
		{index.StrategyOverlap, box(2.1, 2, 3, 3), false},
		{index.StrategySame, box(0, 0, 2, 2), true},
		{index.StrategyContains, box(0.5, 0.5, 1, 1), true},
		{index.StrategyContains, box(0.5, 0.5, 3, 1), false},
		{index.StrategyContainedBy, box(-1, -1, 3, 3), true},
	}
	for _, tc := range cases {
		got, err := index.Consistent(key, tc.query, tc.s, true)
		require.NoError(t, err)
		require.Equal(t, tc.want, got, "%s %v", tc.s, tc.query)
	}

	_, err := index.Consistent(key, key, index.Strategy(0), true)
	require.ErrorIs(t, err, index.ErrUnknownStrategy)
	_, err = index.Consistent(key, key, index.Strategy(13), false)
	require.ErrorIs(t, err, index.ErrUnknownStrategy)
}

// An internal key must never prune a subtree that holds a leaf match.
func TestInternalConsistentNeverPrunesMatches(t *testing.T) {
	children := []geometry.Box{box(0, 0, 1, 1), box(4, 4, 6, 5), box(-2, 3, 0, 8)}
	parent, _ := index.Union(children...)
	queries := []geometry.Box{box(2, 2, 3, 3), box(-5, -5, 10, 10), box(5, 4.5, 5.5, 4.8), box(7, 0, 8, 1), box(0, 0, 1, 1)}

	for s := index.StrategyLeft; s <= index.StrategyOverAbove; s++ {
		for _, q := range queries {
			matched := false
			for _, c := range children {
				ok, err := index.Consistent(c, q, s, true)
				require.NoError(t, err)
				matched = matched || ok
			}
			if !matched {
				continue
			}
			ok, err := index.Consistent(parent, q, s, false)
			require.NoError(t, err)
			require.True(t, ok, "%s pruned a match for %v", s, q)
		}
	}
}

func TestUnionPenaltyPickSplit(t *testing.T) {
	u, ok := index.Union(box(0, 0, 1, 1), box(2, -1, 3, 0))
	require.True(t, ok)
	require.Equal(t, box(0, -1, 3, 1), u)
	_, ok = index.Union()
	require.False(t, ok)

	require.Zero(t, index.Penalty(box(0, 0, 4, 4), box(1, 1, 2, 2)))
	require.Equal(t, 4.0, index.Penalty(box(0, 0, 2, 2), box(3, 0, 4, 2)))

	boxes := []geometry.Box{box(10, 0, 11, 1), box(0, 0, 1, 1), box(11, 0, 12, 1), box(1, 0, 2, 1)}
	left, right := index.PickSplit(boxes)
	sort.Ints(left)
	sort.Ints(right)
	require.Equal(t, []int{1, 3}, left)
	require.Equal(t, []int{0, 2}, right)

	left, right = index.PickSplit(boxes[:1])
	require.Equal(t, []int{0}, left)
	require.Empty(t, right)
}

func TestRTree(t *testing.T) {
	tree := index.NewRTree(4)
	for i := 0; i < 10; i++ {
		for j := 0; j < 10; j++ {
			x, y := float64(i*10), float64(j*10)
			tree.Insert(fmt.Sprintf("%d-%d", i, j), box(x, y, x+5, y+5))
		}
	}
	require.Equal(t, 100, tree.Len())

	bounds, ok := tree.Bounds()
	require.True(t, ok)
	require.Equal(t, box(0, 0, 95, 95), bounds)

	ids, err := tree.Search(box(12, 12, 33, 24), index.StrategyOverlap)
	require.NoError(t, err)
	sort.Strings(ids)
	require.Equal(t, []string{"1-1", "1-2", "2-1", "2-2", "3-1", "3-2"}, ids)

	ids, err = tree.Search(box(0, 0, 25, 25), index.StrategyContainedBy)
	require.NoError(t, err)
	require.Len(t, ids, 9)

	ids, err = tree.Search(box(0, 0, 100, 100), index.StrategyLeft)
	require.NoError(t, err)
	require.Empty(t, ids)

	ids, err = tree.Search(box(89, 0, 89, 100), index.StrategyRight)
	require.NoError(t, err)
	require.Len(t, ids, 10)

	ids, err = tree.Search(box(41, 41, 42, 42), index.StrategyContains)
	require.NoError(t, err)
	require.Equal(t, []string{"4-4"}, ids)

	_, err = tree.Search(box(0, 0, 1, 1), index.Strategy(99))
	require.True(t, errors.Is(err, index.ErrUnknownStrategy))
}

func TestRTree_ReplaceAndDelete(t *testing.T) {
	tree := index.NewRTree(4)
	for i := 0; i < 20; i++ {
		tree.Insert(fmt.Sprint(i), box(float64(i), 0, float64(i)+0.5, 1))
	}

	tree.Insert("3", box(100, 100, 101, 101))
	require.Equal(t, 20, tree.Len())
	ids, err := tree.Search(box(3, 0, 3.5, 1), index.StrategySame)
	require.NoError(t, err)
	require.Empty(t, ids)
	ids, err = tree.Search(box(100, 100, 101, 101), index.StrategySame)
	require.NoError(t, err)
	require.Equal(t, []string{"3"}, ids)

	require.True(t, tree.Delete("3"))
	require.False(t, tree.Delete("3"))
	for i := 0; i < 20; i++ {
		tree.Delete(fmt.Sprint(i))
	}
	require.Zero(t, tree.Len())
	_, ok := tree.Bounds()
	require.False(t, ok)

	tree.Insert("again", box(0, 0, 1, 1))
	ids, err = tree.Search(box(0, 0, 1, 1), index.StrategyOverlap)
	require.NoError(t, err)
	require.Equal(t, []string{"again"}, ids)
}

func TestComparePoints(t *testing.T) {
	p := func(x, y float64) domain.Point { return domain.NewPoint(4326, x, y) }

	cmp, err := index.ComparePoints(p(1, 5), p(2, 0))
	require.NoError(t, err)
	require.Equal(t, -1, cmp)

	cmp, _ = index.ComparePoints(p(2, 1), p(2, 0))
	require.Equal(t, 1, cmp)

	cmp, _ = index.ComparePoints(p(2, 1), p(2, 1))
	require.Zero(t, cmp)

	_, err = index.ComparePoints(p(0, 0), domain.NewPoint(3857, 0, 0))
	require.ErrorIs(t, err, domain.ErrSRIDMismatch)
}

func TestPointIndex(t *testing.T) {
	idx := index.NewPointIndex(2)
	p := func(x, y float64) domain.Point { return domain.NewPoint(0, x, y) }

	idx.Put("a", p(3, 1))
	idx.Put("b", p(1, 9))
	idx.Put("c", p(1, 2))
	idx.Put("d", p(7, 7))
	idx.Put("e", domain.NewPoint(4326, 2, 2))
	require.Equal(t, 5, idx.Len())

	got, err := idx.Range(p(1, 0), p(3, 1), 0)
	require.NoError(t, err)
	require.Equal(t, []index.PointEntry{{ID: "c", Point: p(1, 2)}, {ID: "b", Point: p(1, 9)}, {ID: "a", Point: p(3, 1)}}, got)

	got, err = idx.Range(p(1, 0), p(100, 100), 2)
	require.NoError(t, err)
	require.Len(t, got, 2)

	idx.Put("c", p(9, 9))
	got, _ = idx.Range(p(0, 0), p(100, 100), 0)
	require.Equal(t, "b", got[0].ID)
	require.Equal(t, "c", got[len(got)-1].ID)

	require.True(t, idx.Remove("c"))
	require.False(t, idx.Remove("c"))
	require.Equal(t, 4, idx.Len())

	_, err = idx.Range(p(0, 0), domain.NewPoint(4326, 1, 1), 0)
	require.ErrorIs(t, err, domain.ErrSRIDMismatch)
}
