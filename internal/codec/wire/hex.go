package wire

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/samirrijal/geoext/internal/core/domain"
	"github.com/samirrijal/geoext/internal/core/geometry"
)

// Minimum hex lengths: a point is exact, sequences must hold at least the
// header plus the smallest legal number of coordinates.
const (
	pointHexLen      = 2 * pointSize
	boxHexLen        = 2 * 2 * coordSize
	minLineStringHex = 2 * (seqHeaderSize + 2*coordSize)
	minPolygonHex    = 2 * (seqHeaderSize + geometry.MinRingSize*coordSize)
)

// HexError reports a hex string that cannot hold a value of the named type.
type HexError struct {
	Type  string
	Input string
	Err   error
}

func (e *HexError) Error() string {
	return fmt.Sprintf("invalid input syntax for type %s: %q", e.Type, e.Input)
}

func (e *HexError) Unwrap() error { return e.Err }

// EncodeHex writes g in the hex text format.
func EncodeHex(g domain.Geometry) string {
	return hex.EncodeToString(appendGeometry(nil, binary.LittleEndian, g))
}

// DecodeHex parses the hex text format for kind.
func DecodeHex(kind domain.Kind, s string) (domain.Geometry, error) {
	minLen := pointHexLen
	switch kind {
	case domain.KindLineString:
		minLen = minLineStringHex
	case domain.KindPolygon:
		minLen = minPolygonHex
	}
	if len(s) < minLen || (kind == domain.KindPoint && len(s) != pointHexLen) {
		return nil, &HexError{Type: kind.String(), Input: s, Err: ErrShortBuffer}
	}

	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, &HexError{Type: kind.String(), Input: s, Err: err}
	}
	return decodeGeometry(binary.LittleEndian, kind, raw)
}

// EncodeBoxHex writes b as hex of (high, low).
func EncodeBoxHex(b geometry.Box) string {
	buf := appendCoord(nil, binary.LittleEndian, b.High)
	buf = appendCoord(buf, binary.LittleEndian, b.Low)
	return hex.EncodeToString(buf)
}

// DecodeBoxHex parses a box written by EncodeBoxHex.
func DecodeBoxHex(s string) (geometry.Box, error) {
	if len(s) != boxHexLen {
		return geometry.Box{}, &HexError{Type: "geo_box", Input: s, Err: ErrShortBuffer}
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return geometry.Box{}, &HexError{Type: "geo_box", Input: s, Err: err}
	}
	return geometry.Box{
		High: readCoord(binary.LittleEndian, raw),
		Low:  readCoord(binary.LittleEndian, raw[coordSize:]),
	}, nil
}
