package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/samirrijal/geoext/internal/core/domain"
	"github.com/samirrijal/geoext/internal/core/geometry"
)

func c(x, y float64) geometry.Coord { return geometry.Coord{X: x, Y: y} }

func TestParseKind(t *testing.T) {
	for in, want := range map[string]domain.Kind{
		"point":        domain.KindPoint,
		"GEO_POINT":    domain.KindPoint,
		" LineString ": domain.KindLineString,
		"geo_polygon":  domain.KindPolygon,
	} {
		got, err := domain.ParseKind(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}
	_, err := domain.ParseKind("multipoint")
	require.ErrorIs(t, err, domain.ErrUnknownKind)
	require.Equal(t, "geo_linestring", domain.KindLineString.String())
}

func TestPointDistance(t *testing.T) {
	d, err := domain.NewPoint(4326, 0, 0).Distance(domain.NewPoint(4326, 3, 4))
	require.NoError(t, err)
	require.Equal(t, 5.0, d)

	_, err = domain.NewPoint(4326, 0, 0).Distance(domain.NewPoint(0, 3, 4))
	require.ErrorIs(t, err, domain.ErrSRIDMismatch)
}

func TestNewLineString(t *testing.T) {
	_, err := domain.NewLineString(0, []geometry.Coord{c(1, 1)})
	require.ErrorIs(t, err, domain.ErrTooFewPoints)

	ls, err := domain.NewLineString(0, []geometry.Coord{c(0, 0), c(3, 4), c(3, 0), c(0, 0)})
	require.NoError(t, err)
	require.True(t, ls.IsClosed())
	require.Equal(t, 12.0, ls.Length())
	require.Equal(t, geometry.Box{Low: c(0, 0), High: c(3, 4)}, ls.Bounds())

	first, last := ls.Boundary()
	require.Equal(t, domain.NewPoint(0, 0, 0), first)
	require.Equal(t, domain.NewPoint(0, 0, 0), last)
}

func TestMakeLineString(t *testing.T) {
	ls, err := domain.MakeLineString(domain.NewPoint(4326, 1, 2), domain.NewPoint(4326, 3, 4))
	require.NoError(t, err)
	require.Equal(t, []geometry.Coord{c(1, 2), c(3, 4)}, ls.Points)
	require.False(t, ls.IsClosed())
	require.Equal(t, [2][]float64{{1, 3}, {2, 4}}, ls.BoundaryPoints())

	_, err = domain.MakeLineString(domain.NewPoint(4326, 1, 2), domain.NewPoint(3857, 3, 4))
	require.ErrorIs(t, err, domain.ErrSRIDMismatch)
}

func TestLineStringFromArrays(t *testing.T) {
	ls, err := domain.LineStringFromArrays(0, []float64{1, 2, 3}, []float64{4, 5, 6})
	require.NoError(t, err)
	require.Equal(t, []geometry.Coord{c(1, 4), c(2, 5), c(3, 6)}, ls.Points)

	_, err = domain.LineStringFromArrays(0, []float64{1, 2}, []float64{4})
	require.ErrorIs(t, err, domain.ErrDimensionMismatch)

	_, err = domain.LineStringFromArrays(0, []float64{1}, []float64{4})
	require.ErrorIs(t, err, domain.ErrTooFewPoints)
}

func TestLineStringIntersections(t *testing.T) {
	zig, _ := domain.NewLineString(0, []geometry.Coord{c(0, 0), c(4, 4), c(8, 0)})
	flat, _ := domain.NewLineString(0, []geometry.Coord{c(-1, 2), c(9, 2)})

	got, err := zig.Intersections(flat)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, geometry.Cross, got[0].Relation)
	require.Equal(t, []geometry.Coord{c(2, 2)}, got[0].Points)
	require.Equal(t, 1, got[1].Segment)
	require.Equal(t, []geometry.Coord{c(6, 2)}, got[1].Points)

	base, _ := domain.NewLineString(0, []geometry.Coord{c(0, 0), c(4, 0)})
	along, _ := domain.NewLineString(0, []geometry.Coord{c(2, 0), c(6, 0), c(6, 5)})
	got, err = base.Intersections(along)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, geometry.Overlap, got[0].Relation)
	require.Equal(t, []geometry.Coord{c(2, 0), c(4, 0)}, got[0].Points)

	other := flat
	other.SRID = 4326
	_, err = zig.Intersections(other)
	require.ErrorIs(t, err, domain.ErrSRIDMismatch)
}

func TestNewPolygon(t *testing.T) {
	_, err := domain.NewPolygon(0, []geometry.Coord{c(0, 0), c(1, 0), c(0, 0)})
	require.ErrorIs(t, err, domain.ErrTooFewPoints)
	require.Contains(t, err.Error(), "at least 4")

	_, err = domain.NewPolygon(0, []geometry.Coord{c(0, 0), c(1, 0), c(1, 1), c(0, 1)})
	require.ErrorIs(t, err, domain.ErrRingNotClosed)

	sq, err := domain.NewPolygon(0, []geometry.Coord{c(0, 0), c(0, 10), c(10, 10), c(10, 0), c(0, 0)})
	require.NoError(t, err)
	require.Equal(t, 100.0, sq.Area())
	require.Equal(t, -100.0, sq.SignedArea())
	require.Equal(t, 40.0, sq.Perimeter())

	in, err := sq.Contains(domain.NewPoint(0, 5, 5))
	require.NoError(t, err)
	require.True(t, in)

	in, err = sq.Contains(domain.NewPoint(0, 11, 5))
	require.NoError(t, err)
	require.False(t, in)

	_, err = sq.Contains(domain.NewPoint(4326, 5, 5))
	require.ErrorIs(t, err, domain.ErrSRIDMismatch)

	// A zero-value polygon is rejected instead of reaching the kernel.
	_, err = domain.Polygon{}.Contains(domain.NewPoint(0, 5, 5))
	require.ErrorIs(t, err, domain.ErrTooFewPoints)
}

func TestValidate(t *testing.T) {
	require.NoError(t, domain.Validate(domain.NewPoint(0, 1, 1)))
	require.ErrorIs(t, domain.Validate(domain.LineString{}), domain.ErrTooFewPoints)
	require.ErrorIs(t, domain.Validate(domain.Polygon{Ring: []geometry.Coord{c(0, 0), c(1, 0), c(1, 1), c(2, 2)}}), domain.ErrRingNotClosed)
	require.ErrorIs(t, domain.Validate(nil), domain.ErrUnknownKind)
}

func TestMeasureGeometry(t *testing.T) {
	sq, _ := domain.NewPolygon(7, []geometry.Coord{c(0, 0), c(0, 2), c(2, 2), c(2, 0), c(0, 0)})
	m := domain.MeasureGeometry(sq)
	require.Equal(t, "geo_polygon", m.Kind)
	require.Equal(t, int32(7), m.SRID)
	require.Equal(t, 5, m.NumPoints)
	require.Equal(t, 4.0, m.Area)
	require.Equal(t, 8.0, m.Perimeter)
	require.True(t, m.Closed)

	ls, _ := domain.NewLineString(0, []geometry.Coord{c(0, 0), c(0, 3)})
	m = domain.MeasureGeometry(ls)
	require.Equal(t, 3.0, m.Length)
	require.Zero(t, m.Area)
	require.False(t, m.Closed)
}

func TestBuildTrajectory(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	elems := []domain.TrajectoryElement{
		{Time: t0.Add(20 * time.Second), Point: domain.NewPoint(0, 6, 8)},
		{Time: t0, Point: domain.NewPoint(0, 0, 0)},
		{Time: t0.Add(10 * time.Second), Point: domain.NewPoint(0, 3, 4)},
	}

	tr, err := domain.BuildTrajectory(elems)
	require.NoError(t, err)
	require.Equal(t, []geometry.Coord{c(0, 0), c(3, 4), c(6, 8)}, tr.Path.Points)
	require.Equal(t, t0, tr.Start)
	require.Equal(t, 20*time.Second, tr.Duration())
	require.Equal(t, 10.0, tr.Length())
	require.Equal(t, 0.5, tr.MeanSpeed())

	// Input order is untouched.
	require.Equal(t, 6.0, elems[0].Point.X)

	_, err = domain.BuildTrajectory(elems[:1])
	require.ErrorIs(t, err, domain.ErrTooFewPoints)

	elems[1].Point.SRID = 4326
	_, err = domain.BuildTrajectory(elems)
	require.True(t, errors.Is(err, domain.ErrSRIDMismatch))
}
