// Package wire implements the binary layouts of the geo_* types.
//
// The send/recv format is what a client sees over a binary protocol and is
// what the feature store keeps in its bytea column. All fields are network
// byte order:
//
//	point:              x float8 | y float8 | srid int4
//	linestring/polygon: srid int4 | npts int4 | (x float8 | y float8) * npts
//
// The hex text format (see hex.go) lays the same fields out little-endian.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/samirrijal/geoext/internal/core/domain"
	"github.com/samirrijal/geoext/internal/core/geometry"
)

const (
	coordSize     = 16
	pointSize     = coordSize + 4
	seqHeaderSize = 8
)

var (
	// ErrShortBuffer is returned when the input ends before the layout does.
	ErrShortBuffer = errors.New("wire: short buffer")
	// ErrTrailingBytes is returned when input continues past the layout.
	ErrTrailingBytes = errors.New("wire: trailing bytes")
)

// Marshal encodes g in the send format.
func Marshal(g domain.Geometry) []byte {
	return appendGeometry(nil, binary.BigEndian, g)
}

// Unmarshal decodes data in the send format as a geometry of the given kind
// and validates it.
func Unmarshal(kind domain.Kind, data []byte) (domain.Geometry, error) {
	return decodeGeometry(binary.BigEndian, kind, data)
}

func appendGeometry(buf []byte, order binary.AppendByteOrder, g domain.Geometry) []byte {
	coords := g.Coords()
	if g.Kind() == domain.KindPoint {
		buf = appendCoord(buf, order, coords[0])
		return order.AppendUint32(buf, uint32(g.SpatialRef()))
	}

	buf = order.AppendUint32(buf, uint32(g.SpatialRef()))
	buf = order.AppendUint32(buf, uint32(len(coords)))
	for _, c := range coords {
		buf = appendCoord(buf, order, c)
	}
	return buf
}

func appendCoord(buf []byte, order binary.AppendByteOrder, c geometry.Coord) []byte {
	buf = order.AppendUint64(buf, math.Float64bits(c.X))
	return order.AppendUint64(buf, math.Float64bits(c.Y))
}

func readCoord(order binary.ByteOrder, b []byte) geometry.Coord {
	return geometry.Coord{
		X: math.Float64frombits(order.Uint64(b)),
		Y: math.Float64frombits(order.Uint64(b[8:])),
	}
}

func decodeGeometry(order binary.ByteOrder, kind domain.Kind, data []byte) (domain.Geometry, error) {
	switch kind {
	case domain.KindPoint:
		if len(data) < pointSize {
			return nil, fmt.Errorf("%w: point needs %d bytes, got %d", ErrShortBuffer, pointSize, len(data))
		}
		if len(data) > pointSize {
			return nil, ErrTrailingBytes
		}
		return domain.Point{
			Coord: readCoord(order, data),
			SRID:  int32(order.Uint32(data[coordSize:])),
		}, nil

	case domain.KindLineString, domain.KindPolygon:
		srid, coords, err := decodeSequence(order, data)
		if err != nil {
			return nil, err
		}
		if kind == domain.KindLineString {
			return domain.NewLineString(srid, coords)
		}
		return domain.NewPolygon(srid, coords)
	}
	return nil, fmt.Errorf("%w: %v", domain.ErrUnknownKind, kind)
}

func decodeSequence(order binary.ByteOrder, data []byte) (int32, []geometry.Coord, error) {
	if len(data) < seqHeaderSize {
		return 0, nil, fmt.Errorf("%w: header needs %d bytes, got %d", ErrShortBuffer, seqHeaderSize, len(data))
	}
	srid := int32(order.Uint32(data))
	npts := int32(order.Uint32(data[4:]))
	if npts < 0 {
		return 0, nil, fmt.Errorf("wire: negative point count %d", npts)
	}

	body := data[seqHeaderSize:]
	want := int(npts) * coordSize
	switch {
	case len(body) < want:
		return 0, nil, fmt.Errorf("%w: %d points need %d bytes, got %d", ErrShortBuffer, npts, want, len(body))
	case len(body) > want:
		return 0, nil, ErrTrailingBytes
	}

	coords := make([]geometry.Coord, npts)
	for i := range coords {
		coords[i] = readCoord(order, body[i*coordSize:])
	}
	return srid, coords, nil
}
