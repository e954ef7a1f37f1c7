package http

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/geoext/internal/codec/ogc"
	"github.com/samirrijal/geoext/internal/codec/wkt"
	"github.com/samirrijal/geoext/internal/core/domain"
	"github.com/samirrijal/geoext/internal/core/index"
)

// FeatureResponse is the JSON form of a stored feature.
type FeatureResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Kind      string          `json:"kind"`
	SRID      int32           `json:"srid"`
	WKT       string          `json:"wkt"`
	GeoJSON   json.RawMessage `json:"geojson,omitempty"`
	BBox      string          `json:"bbox"`
	CreatedAt time.Time       `json:"created_at"`
}

func toFeatureResponse(f *domain.Feature) FeatureResponse {
	resp := FeatureResponse{
		ID:        f.ID,
		Name:      f.Name,
		Kind:      f.Geometry.Kind().String(),
		SRID:      f.Geometry.SpatialRef(),
		WKT:       wkt.Encode(f.Geometry),
		BBox:      wkt.EncodeBox(f.Bounds()),
		CreatedAt: f.CreatedAt,
	}
	if gj, err := ogc.MarshalGeoJSON(f.Geometry); err == nil {
		resp.GeoJSON = gj
	}
	return resp
}

func toFeatureResponses(fs []domain.Feature) []FeatureResponse {
	out := make([]FeatureResponse, len(fs))
	for i := range fs {
		out[i] = toFeatureResponse(&fs[i])
	}
	return out
}

// ListFeaturesHandler returns a page of stored features.
func ListFeaturesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		pg := parsePagination(c)

		features, err := deps.Features.List(c.UserContext(), pg.Limit, pg.Offset)
		if err != nil {
			return writeError(c, err)
		}
		if pg.Total, err = deps.Features.Count(c.UserContext()); err != nil {
			return writeError(c, err)
		}
		return sendPage(c, toFeatureResponses(features), pg)
	}
}

// CreateFeatureHandler stores a new feature.
func CreateFeatureHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			Name string `json:"name"`
			geometryInput
		}
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, errInvalidBody)
		}
		g, err := req.geometryInput.parse(deps.Geometry)
		if err != nil {
			return writeError(c, err)
		}

		f, err := deps.Features.Create(c.UserContext(), req.Name, g)
		if err != nil {
			return writeError(c, err)
		}
		c.Location("/v1/features/" + f.ID)
		return c.Status(fiber.StatusCreated).JSON(toFeatureResponse(f))
	}
}

// GetFeatureHandler returns a single feature.
func GetFeatureHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := deps.Features.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(toFeatureResponse(f))
	}
}

// DeleteFeatureHandler removes a feature.
func DeleteFeatureHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Features.Delete(c.UserContext(), c.Params("id")); err != nil {
			return writeError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// FeatureMeasuresHandler returns the scalar properties of a stored feature.
func FeatureMeasuresHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		m, err := deps.Features.Measures(c.UserContext(), c.Params("id"))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(m)
	}
}

// SearchFeaturesHandler filters features by a box operator.
// Query: ?box=BOX(x1 y1, x2 y2)&op=overlap&limit=20
func SearchFeaturesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		boxParam := c.Query("box")
		if boxParam == "" {
			return errBadRequest(c, "box is required")
		}
		box, err := wkt.DecodeBox(boxParam)
		if err != nil {
			return writeError(c, err)
		}
		strategy, err := index.ParseStrategy(c.Query("op", "overlap"))
		if err != nil {
			return writeError(c, err)
		}

		features, err := deps.Features.Search(c.UserContext(), box, strategy, c.QueryInt("limit", 20))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(fiber.Map{"data": toFeatureResponses(features), "count": len(features), "op": strategy.String()})
	}
}

// ContainingFeaturesHandler returns the polygons that contain a point.
// Query: ?point=POINT(x y)&limit=20
func ContainingFeaturesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		pt, err := queryPoint(c, "point")
		if err != nil {
			return writeError(c, err)
		}
		features, err := deps.Features.Containing(c.UserContext(), pt, c.QueryInt("limit", 20))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(fiber.Map{"data": toFeatureResponses(features), "count": len(features)})
	}
}

// NearFeaturesHandler returns point features within a radius.
// Query: ?point=POINT(x y)&radius=500&limit=20
func NearFeaturesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		pt, err := queryPoint(c, "point")
		if err != nil {
			return writeError(c, err)
		}
		radius := c.QueryFloat("radius", 500)
		features, err := deps.Features.Near(c.UserContext(), pt, radius, c.QueryInt("limit", 20))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(fiber.Map{"data": toFeatureResponses(features), "count": len(features)})
	}
}

// PointsBetweenHandler returns point features in x-then-y order between two bounds.
// Query: ?from=POINT(x y)&to=POINT(x y)&limit=20
func PointsBetweenHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		from, err := queryPoint(c, "from")
		if err != nil {
			return writeError(c, err)
		}
		to, err := queryPoint(c, "to")
		if err != nil {
			return writeError(c, err)
		}
		features, err := deps.Features.PointsBetween(c.UserContext(), from, to, c.QueryInt("limit", 20))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(fiber.Map{"data": toFeatureResponses(features), "count": len(features)})
	}
}

// IndexStatsHandler reports the in-memory index sizes.
func IndexStatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		boxes, points := deps.Features.IndexSize()
		c.Set("Cache-Control", "no-cache")
		return c.JSON(fiber.Map{"rtree": boxes, "btree": points})
	}
}

func queryPoint(c *fiber.Ctx, key string) (domain.Point, error) {
	v := c.Query(key)
	if v == "" {
		return domain.Point{}, fmt.Errorf("%w: %s", errMissingParam, key)
	}
	return wkt.DecodePoint(v)
}
