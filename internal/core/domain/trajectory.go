package domain

import (
	"fmt"
	"sort"
	"time"
)

// TrajectoryElement is one timestamped observation of a moving object.
type TrajectoryElement struct {
	Time  time.Time `json:"time"`
	Point Point     `json:"point"`
}

// Trajectory is the path traced by a sequence of elements, in time order.
type Trajectory struct {
	Path  LineString `json:"path"`
	Start time.Time  `json:"start"`
	End   time.Time  `json:"end"`
}

// Duration between the first and last observation.
func (t Trajectory) Duration() time.Duration { return t.End.Sub(t.Start) }

// Length of the path.
func (t Trajectory) Length() float64 { return t.Path.Length() }

// MeanSpeed is path length per second. Zero when all observations share a
// timestamp.
func (t Trajectory) MeanSpeed() float64 {
	secs := t.Duration().Seconds()
	if secs <= 0 {
		return 0
	}
	return t.Length() / secs
}

// BuildTrajectory orders elems by time and joins their points into a path.
// The input slice is not modified. Elements with equal timestamps keep
// their input order.
func BuildTrajectory(elems []TrajectoryElement) (Trajectory, error) {
	if len(elems) < 2 {
		return Trajectory{}, fmt.Errorf("%w: trajectory requires at least 2 elements, got %d", ErrTooFewPoints, len(elems))
	}

	sorted := make([]TrajectoryElement, len(elems))
	copy(sorted, elems)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })

	srid := sorted[0].Point.SRID
	ls := LineString{SRID: srid}
	for _, e := range sorted {
		if err := sameSRID(srid, e.Point.SRID); err != nil {
			return Trajectory{}, err
		}
		ls.Points = append(ls.Points, e.Point.Coord)
	}

	return Trajectory{
		Path:  ls,
		Start: sorted[0].Time,
		End:   sorted[len(sorted)-1].Time,
	}, nil
}
