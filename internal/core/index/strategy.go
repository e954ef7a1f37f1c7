// Package index holds the support routines a box-keyed R-tree and a
// point-keyed B-tree need: strategy dispatch for consistency checks, the
// union/penalty/split arithmetic, and point ordering.
package index

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samirrijal/geoext/internal/core/geometry"
)

// Strategy identifies a box operator. The numbering matches the usual
// R-tree strategy numbers so values can be exchanged with a database.
type Strategy uint16

const (
	StrategyLeft        Strategy = 1
	StrategyOverLeft    Strategy = 2
	StrategyOverlap     Strategy = 3
	StrategyOverRight   Strategy = 4
	StrategyRight       Strategy = 5
	StrategySame        Strategy = 6
	StrategyContains    Strategy = 7
	StrategyContainedBy Strategy = 8
	StrategyOverBelow   Strategy = 9
	StrategyBelow       Strategy = 10
	StrategyAbove       Strategy = 11
	StrategyOverAbove   Strategy = 12
)

// ErrUnknownStrategy is returned for strategies with no predicate.
var ErrUnknownStrategy = errors.New("unrecognized strategy")

var strategyNames = map[Strategy][2]string{
	StrategyLeft:        {"left", "<<"},
	StrategyOverLeft:    {"overleft", "&<"},
	StrategyOverlap:     {"overlap", "&&"},
	StrategyOverRight:   {"overright", "&>"},
	StrategyRight:       {"right", ">>"},
	StrategySame:        {"same", "~="},
	StrategyContains:    {"contains", "@>"},
	StrategyContainedBy: {"contained_by", "<@"},
	StrategyOverBelow:   {"overbelow", "&<|"},
	StrategyBelow:       {"below", "<<|"},
	StrategyAbove:       {"above", "|>>"},
	StrategyOverAbove:   {"overabove", "|&>"},
}

func (s Strategy) String() string {
	if n, ok := strategyNames[s]; ok {
		return n[0]
	}
	return fmt.Sprintf("strategy(%d)", uint16(s))
}

// Operator returns the SQL operator symbol for s.
func (s Strategy) Operator() string { return strategyNames[s][1] }

// ParseStrategy accepts a strategy name ("overlap") or operator ("&&").
func ParseStrategy(s string) (Strategy, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for k, n := range strategyNames {
		if n[0] == want || n[1] == want {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
}

type predicate func(key, query geometry.Box) bool

// leafPredicates apply the operator itself to a stored key.
var leafPredicates = map[Strategy]predicate{
	StrategyLeft:        Left,
	StrategyOverLeft:    OverLeft,
	StrategyOverlap:     Overlap,
	StrategyOverRight:   OverRight,
	StrategyRight:       Right,
	StrategySame:        Same,
	StrategyContains:    Contains,
	StrategyContainedBy: ContainedBy,
	StrategyOverBelow:   OverBelow,
	StrategyBelow:       Below,
	StrategyAbove:       Above,
	StrategyOverAbove:   OverAbove,
}

// internalPredicates decide whether any box under an internal key could
// satisfy the operator.
var internalPredicates = map[Strategy]predicate{
	StrategyLeft:        func(k, q geometry.Box) bool { return !OverRight(k, q) },
	StrategyOverLeft:    func(k, q geometry.Box) bool { return !Right(k, q) },
	StrategyOverlap:     Overlap,
	StrategyOverRight:   func(k, q geometry.Box) bool { return !Left(k, q) },
	StrategyRight:       func(k, q geometry.Box) bool { return !OverLeft(k, q) },
	StrategySame:        Contains,
	StrategyContains:    Contains,
	StrategyContainedBy: Overlap,
	StrategyOverBelow:   func(k, q geometry.Box) bool { return !Above(k, q) },
	StrategyBelow:       func(k, q geometry.Box) bool { return !OverAbove(k, q) },
	StrategyAbove:       func(k, q geometry.Box) bool { return !OverBelow(k, q) },
	StrategyOverAbove:   func(k, q geometry.Box) bool { return !Below(k, q) },
}

// Consistent reports whether key may match query under strategy. Leaf
// answers are exact; internal answers only rule subtrees out.
func Consistent(key, query geometry.Box, strategy Strategy, leaf bool) (bool, error) {
	table := internalPredicates
	if leaf {
		table = leafPredicates
	}
	fn, ok := table[strategy]
	if !ok {
		return false, fmt.Errorf("%w: %d", ErrUnknownStrategy, uint16(strategy))
	}
	return fn(key, query), nil
}

// Left: a is strictly left of b.
func Left(a, b geometry.Box) bool { return a.High.X < b.Low.X }

// OverLeft: a does not extend right of b.
func OverLeft(a, b geometry.Box) bool { return a.High.X <= b.High.X }

// Right: a is strictly right of b.
func Right(a, b geometry.Box) bool { return a.Low.X > b.High.X }

// OverRight: a does not extend left of b.
func OverRight(a, b geometry.Box) bool { return a.Low.X >= b.Low.X }

// Below: a is strictly below b.
func Below(a, b geometry.Box) bool { return a.High.Y < b.Low.Y }

// OverBelow: a does not extend above b.
func OverBelow(a, b geometry.Box) bool { return a.High.Y <= b.High.Y }

// Above: a is strictly above b.
func Above(a, b geometry.Box) bool { return a.Low.Y > b.High.Y }

// OverAbove: a does not extend below b.
func OverAbove(a, b geometry.Box) bool { return a.Low.Y >= b.Low.Y }

// Overlap: a and b share at least one point.
func Overlap(a, b geometry.Box) bool { return a.Overlaps(b) }

// Same: a and b are identical.
func Same(a, b geometry.Box) bool { return a == b }

// Contains: b lies inside a.
func Contains(a, b geometry.Box) bool { return a.Contains(b) }

// ContainedBy: a lies inside b.
func ContainedBy(a, b geometry.Box) bool { return b.Contains(a) }
