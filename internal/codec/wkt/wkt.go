// Package wkt reads and writes the simplified well-known-text dialect used
// by the geo_* types:
//
//	POINT(x y)
//	LINESTRING(x1 y1, x2 y2, ...)
//	POLYGON(x1 y1, x2 y2, ..., x1 y1)
//	BOX(lowx lowy, highx highy)
//
// Polygons carry a single ring with no inner parentheses. An optional
// "SRID=n;" prefix sets the spatial reference id, which is otherwise 0.
// Type tokens are matched case-insensitively.
package wkt

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/samirrijal/geoext/internal/core/domain"
	"github.com/samirrijal/geoext/internal/core/geometry"
)

const (
	tokenPoint      = "POINT"
	tokenLineString = "LINESTRING"
	tokenPolygon    = "POLYGON"
	tokenBox        = "BOX"
)

// SyntaxError reports text that is not valid for the named type.
type SyntaxError struct {
	Type  string
	Input string
	Err   error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid input syntax for type %s: %q", e.Type, e.Input)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// CoordCount returns the number of commas in s plus one, the number of
// coordinates a well-formed sequence holds.
func CoordCount(s string) int {
	return strings.Count(s, ",") + 1
}

// Decode parses any supported geometry, dispatching on its type token.
func Decode(s string) (domain.Geometry, error) {
	_, body := splitSRID(s)
	switch upper := strings.ToUpper(strings.TrimSpace(body)); {
	case strings.HasPrefix(upper, tokenPoint):
		return DecodePoint(s)
	case strings.HasPrefix(upper, tokenLineString):
		return DecodeLineString(s)
	case strings.HasPrefix(upper, tokenPolygon):
		return DecodePolygon(s)
	}
	return nil, &SyntaxError{Type: "geometry", Input: s, Err: domain.ErrUnknownKind}
}

// DecodePoint parses POINT(x y).
func DecodePoint(s string) (domain.Point, error) {
	srid, coords, err := decode(s, tokenPoint, domain.KindPoint.String())
	if err != nil {
		return domain.Point{}, err
	}
	if len(coords) != 1 {
		return domain.Point{}, &SyntaxError{Type: domain.KindPoint.String(), Input: s}
	}
	return domain.Point{Coord: coords[0], SRID: srid}, nil
}

// DecodeLineString parses LINESTRING(...). At least two coordinates are required.
func DecodeLineString(s string) (domain.LineString, error) {
	srid, coords, err := decode(s, tokenLineString, domain.KindLineString.String())
	if err != nil {
		return domain.LineString{}, err
	}
	return domain.NewLineString(srid, coords)
}

// DecodePolygon parses POLYGON(...). The ring must be closed and hold at
// least four coordinates.
func DecodePolygon(s string) (domain.Polygon, error) {
	srid, coords, err := decode(s, tokenPolygon, domain.KindPolygon.String())
	if err != nil {
		return domain.Polygon{}, err
	}
	return domain.NewPolygon(srid, coords)
}

// DecodeBox parses BOX(lx ly, hx hy). Corners may be given in any order.
func DecodeBox(s string) (geometry.Box, error) {
	_, coords, err := decode(s, tokenBox, "geo_box")
	if err != nil {
		return geometry.Box{}, err
	}
	if len(coords) != 2 {
		return geometry.Box{}, &SyntaxError{Type: "geo_box", Input: s}
	}
	return geometry.NewBox(coords[0], coords[1]), nil
}

// Encode writes g in the simplified dialect. The SRID prefix is emitted
// only when it is non-zero.
func Encode(g domain.Geometry) string {
	var token string
	switch g.Kind() {
	case domain.KindPoint:
		token = tokenPoint
	case domain.KindLineString:
		token = tokenLineString
	case domain.KindPolygon:
		token = tokenPolygon
	}

	var b strings.Builder
	if srid := g.SpatialRef(); srid != 0 {
		fmt.Fprintf(&b, "SRID=%d;", srid)
	}
	b.WriteString(token)
	writeSequence(&b, g.Coords())
	return b.String()
}

// EncodeBox writes b as BOX(lx ly, hx hy).
func EncodeBox(box geometry.Box) string {
	var b strings.Builder
	b.WriteString(tokenBox)
	writeSequence(&b, []geometry.Coord{box.Low, box.High})
	return b.String()
}

func writeSequence(b *strings.Builder, coords []geometry.Coord) {
	b.WriteByte('(')
	for i, c := range coords {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(formatFloat(c.X))
		b.WriteByte(' ')
		b.WriteString(formatFloat(c.Y))
	}
	b.WriteByte(')')
}

func formatFloat(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func splitSRID(s string) (string, string) {
	trimmed := strings.TrimSpace(s)
	if len(trimmed) < 5 || !strings.EqualFold(trimmed[:5], "SRID=") {
		return "", s
	}
	head, body, ok := strings.Cut(trimmed[5:], ";")
	if !ok {
		return "", s
	}
	return head, body
}

// decode checks the token and reads the parenthesised coordinate list.
func decode(s, token, typeName string) (int32, []geometry.Coord, error) {
	fail := func(err error) (int32, []geometry.Coord, error) {
		return 0, nil, &SyntaxError{Type: typeName, Input: s, Err: err}
	}

	var srid int32
	rawSRID, body := splitSRID(s)
	if rawSRID != "" {
		v, err := strconv.ParseInt(strings.TrimSpace(rawSRID), 10, 32)
		if err != nil {
			return fail(err)
		}
		srid = int32(v)
	}

	sc := scanner{s: strings.TrimSpace(body)}
	if len(sc.s) < len(token) || !strings.EqualFold(sc.s[:len(token)], token) {
		return fail(nil)
	}
	sc.pos = len(token)

	sc.skipSpace()
	if !sc.consume('(') {
		return fail(nil)
	}

	coords := make([]geometry.Coord, 0, CoordCount(sc.s))
	for {
		c, err := sc.coord()
		if err != nil {
			return fail(err)
		}
		coords = append(coords, c)

		sc.skipSpace()
		if sc.consume(',') {
			continue
		}
		if sc.consume(')') {
			break
		}
		return fail(nil)
	}

	sc.skipSpace()
	if !sc.done() {
		return fail(nil)
	}
	return srid, coords, nil
}

type scanner struct {
	s   string
	pos int
}

func (sc *scanner) done() bool { return sc.pos >= len(sc.s) }

func (sc *scanner) skipSpace() {
	for !sc.done() && isSpace(sc.s[sc.pos]) {
		sc.pos++
	}
}

func (sc *scanner) consume(b byte) bool {
	if !sc.done() && sc.s[sc.pos] == b {
		sc.pos++
		return true
	}
	return false
}

func (sc *scanner) float() (float64, error) {
	sc.skipSpace()
	start := sc.pos
	for !sc.done() && !isSpace(sc.s[sc.pos]) && sc.s[sc.pos] != ',' && sc.s[sc.pos] != ')' {
		sc.pos++
	}
	if start == sc.pos {
		return 0, fmt.Errorf("expected number at offset %d", start)
	}
	return strconv.ParseFloat(sc.s[start:sc.pos], 64)
}

func (sc *scanner) coord() (geometry.Coord, error) {
	x, err := sc.float()
	if err != nil {
		return geometry.Coord{}, err
	}
	y, err := sc.float()
	if err != nil {
		return geometry.Coord{}, err
	}
	return geometry.Coord{X: x, Y: y}, nil
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\v' || b == '\f'
}
