package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/geoext/internal/codec/wkt"
	"github.com/samirrijal/geoext/internal/core/domain"
	"github.com/samirrijal/geoext/internal/core/usecases"
	"github.com/samirrijal/geoext/internal/pkg/geospatial"
)

// pairRequest carries two WKT geometries.
type pairRequest struct {
	A string `json:"a"`
	B string `json:"b"`
}

// DistanceHandler returns the distance between two points.
func DistanceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req pairRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		a, err := wkt.DecodePoint(req.A)
		if err != nil {
			return writeError(c, err)
		}
		b, err := wkt.DecodePoint(req.B)
		if err != nil {
			return writeError(c, err)
		}

		d, err := deps.Geometry.Distance(a, b)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(fiber.Map{"distance": d, "geodesic": a.SRID == geospatial.SRIDWGS84})
	}
}

// MeasureHandler returns the scalar properties of any geometry.
func MeasureHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		g, err := parseGeometryBody(c, deps)
		if err != nil {
			return writeError(c, err)
		}
		m, err := deps.Geometry.Measure(g)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(m)
	}
}

// BoundaryHandler returns the end points of a linestring.
func BoundaryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			Geometry string `json:"geometry"`
		}
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		ls, err := wkt.DecodeLineString(req.Geometry)
		if err != nil {
			return writeError(c, err)
		}

		first, last := deps.Geometry.Boundary(ls)
		return c.JSON(fiber.Map{
			"first":  first,
			"last":   last,
			"closed": deps.Geometry.IsClosed(ls),
			"points": ls.BoundaryPoints(),
		})
	}
}

// ContainsHandler runs the point-in-polygon test.
func ContainsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			Polygon string `json:"polygon"`
			Point   string `json:"point"`
		}
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		poly, err := wkt.DecodePolygon(req.Polygon)
		if err != nil {
			return writeError(c, err)
		}
		pt, err := wkt.DecodePoint(req.Point)
		if err != nil {
			return writeError(c, err)
		}

		inside, err := deps.Geometry.Contains(poly, pt)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(fiber.Map{"contains": inside})
	}
}

// RelateHandler classifies two segments given as four WKT points.
func RelateHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			P1 string `json:"p1"`
			P2 string `json:"p2"`
			Q1 string `json:"q1"`
			Q2 string `json:"q2"`
		}
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		var pts [4]domain.Point
		for i, s := range []string{req.P1, req.P2, req.Q1, req.Q2} {
			p, err := wkt.DecodePoint(s)
			if err != nil {
				return writeError(c, err)
			}
			pts[i] = p
		}

		rel, err := deps.Geometry.Relate(pts[0], pts[1], pts[2], pts[3])
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(rel)
	}
}

// IntersectionsHandler lists the meeting segments of two linestrings.
func IntersectionsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req pairRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		a, err := wkt.DecodeLineString(req.A)
		if err != nil {
			return writeError(c, err)
		}
		b, err := wkt.DecodeLineString(req.B)
		if err != nil {
			return writeError(c, err)
		}

		out, err := deps.Geometry.Intersections(a, b)
		if err != nil {
			return writeError(c, err)
		}
		if out == nil {
			out = []domain.SegmentIntersection{}
		}
		return c.JSON(fiber.Map{"data": out, "count": len(out)})
	}
}

// CompareHandler orders two points.
func CompareHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req pairRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		a, err := wkt.DecodePoint(req.A)
		if err != nil {
			return writeError(c, err)
		}
		b, err := wkt.DecodePoint(req.B)
		if err != nil {
			return writeError(c, err)
		}

		cmp, err := deps.Geometry.Compare(a, b)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(fiber.Map{"order": cmp})
	}
}

// ConvertHandler re-encodes a geometry from one format to another.
func ConvertHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			Input string `json:"input"`
			From  string `json:"from"`
			To    string `json:"to"`
			Kind  string `json:"kind"`
			SRID  int32  `json:"srid"`
		}
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.From == "" {
			req.From = string(usecases.FormatWKT)
		}

		from, err := usecases.ParseFormat(req.From)
		if err != nil {
			return writeError(c, err)
		}
		to, err := usecases.ParseFormat(req.To)
		if err != nil {
			return writeError(c, err)
		}
		var kind domain.Kind
		if req.Kind != "" {
			if kind, err = domain.ParseKind(req.Kind); err != nil {
				return writeError(c, err)
			}
		}

		g, err := deps.Geometry.Parse(from, req.Input, kind, req.SRID)
		if err != nil {
			return writeError(c, err)
		}
		out, err := deps.Geometry.Convert(g, to)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(fiber.Map{"output": out, "format": to, "kind": g.Kind().String()})
	}
}

// TrajectoryHandler orders timestamped points into a path.
func TrajectoryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			Elements []struct {
				Time  time.Time `json:"time"`
				Point string    `json:"point"`
			} `json:"elements"`
		}
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		elems := make([]domain.TrajectoryElement, 0, len(req.Elements))
		for _, e := range req.Elements {
			p, err := wkt.DecodePoint(e.Point)
			if err != nil {
				return writeError(c, err)
			}
			elems = append(elems, domain.TrajectoryElement{Time: e.Time, Point: p})
		}

		tr, err := deps.Geometry.Trajectory(elems)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(fiber.Map{
			"path":             wkt.Encode(tr.Path),
			"start":            tr.Start,
			"end":              tr.End,
			"length":           tr.Length(),
			"duration_seconds": tr.Duration().Seconds(),
			"mean_speed":       tr.MeanSpeed(),
		})
	}
}

// geometryInput is a geometry in any supported input format.
type geometryInput struct {
	Geometry string `json:"geometry"`
	Format   string `json:"format"`
	Kind     string `json:"kind"`
	SRID     int32  `json:"srid"`
}

func (in geometryInput) parse(svc *usecases.GeometryService) (domain.Geometry, error) {
	format := usecases.FormatWKT
	if in.Format != "" {
		f, err := usecases.ParseFormat(in.Format)
		if err != nil {
			return nil, err
		}
		format = f
	}
	var kind domain.Kind
	if in.Kind != "" {
		k, err := domain.ParseKind(in.Kind)
		if err != nil {
			return nil, err
		}
		kind = k
	}
	return svc.Parse(format, in.Geometry, kind, in.SRID)
}

// parseGeometryBody decodes a geometryInput request body.
func parseGeometryBody(c *fiber.Ctx, deps *Dependencies) (domain.Geometry, error) {
	var in geometryInput
	if err := c.BodyParser(&in); err != nil {
		return nil, errInvalidBody
	}
	return in.parse(deps.Geometry)
}
