package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/geoext/internal/codec/wkt"
	"github.com/samirrijal/geoext/internal/core/domain"
	"github.com/samirrijal/geoext/internal/core/index"
)

// featureMap flattens a feature for graphql-go's default map resolver.
func featureMap(f *domain.Feature) map[string]any {
	return map[string]any{
		"id":         f.ID,
		"name":       f.Name,
		"kind":       f.Geometry.Kind().String(),
		"srid":       int(f.Geometry.SpatialRef()),
		"wkt":        wkt.Encode(f.Geometry),
		"bbox":       wkt.EncodeBox(f.Bounds()),
		"created_at": f.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func featureMaps(fs []domain.Feature) []map[string]any {
	out := make([]map[string]any, len(fs))
	for i := range fs {
		out[i] = featureMap(&fs[i])
	}
	return out
}

func pointMap(p domain.Point) map[string]any {
	return map[string]any{"x": p.X, "y": p.Y, "srid": int(p.SRID)}
}

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	pointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Point",
		Fields: graphql.Fields{
			"x":    &graphql.Field{Type: graphql.Float},
			"y":    &graphql.Field{Type: graphql.Float},
			"srid": &graphql.Field{Type: graphql.Int},
		},
	})

	featureType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Feature",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: graphql.String},
			"name":       &graphql.Field{Type: graphql.String},
			"kind":       &graphql.Field{Type: graphql.String},
			"srid":       &graphql.Field{Type: graphql.Int},
			"wkt":        &graphql.Field{Type: graphql.String},
			"bbox":       &graphql.Field{Type: graphql.String},
			"created_at": &graphql.Field{Type: graphql.String},
		},
	})

	measuresType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Measures",
		Fields: graphql.Fields{
			"kind":       &graphql.Field{Type: graphql.String},
			"srid":       &graphql.Field{Type: graphql.Int},
			"num_points": &graphql.Field{Type: graphql.Int},
			"length":     &graphql.Field{Type: graphql.Float},
			"area":       &graphql.Field{Type: graphql.Float},
			"perimeter":  &graphql.Field{Type: graphql.Float},
			"closed":     &graphql.Field{Type: graphql.Boolean},
		},
	})

	relationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SegmentRelation",
		Fields: graphql.Fields{
			"relation": &graphql.Field{Type: graphql.String},
			"points":   &graphql.Field{Type: graphql.NewList(pointType)},
		},
	})

	nonNullString := graphql.NewNonNull(graphql.String)

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"feature": &graphql.Field{
				Type:        featureType,
				Description: "Get a feature by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: nonNullString},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					f, err := deps.Features.Get(p.Context, p.Args["id"].(string))
					if err != nil {
						return nil, err
					}
					return featureMap(f), nil
				},
			},
			"features": &graphql.Field{
				Type:        graphql.NewList(featureType),
				Description: "List features, newest first",
				Args: graphql.FieldConfigArgument{
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
					"offset": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					fs, err := deps.Features.List(p.Context, p.Args["limit"].(int), p.Args["offset"].(int))
					if err != nil {
						return nil, err
					}
					return featureMaps(fs), nil
				},
			},
			"featureMeasures": &graphql.Field{
				Type:        measuresType,
				Description: "Scalar properties of a stored feature",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: nonNullString},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					m, err := deps.Features.Measures(p.Context, p.Args["id"].(string))
					if err != nil {
						return nil, err
					}
					return map[string]any{
						"kind": m.Kind, "srid": int(m.SRID), "num_points": m.NumPoints,
						"length": m.Length, "area": m.Area, "perimeter": m.Perimeter, "closed": m.Closed,
					}, nil
				},
			},
			"searchFeatures": &graphql.Field{
				Type:        graphql.NewList(featureType),
				Description: "Features whose bounding box satisfies a box operator",
				Args: graphql.FieldConfigArgument{
					"box":   &graphql.ArgumentConfig{Type: nonNullString},
					"op":    &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: "overlap"},
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					box, err := wkt.DecodeBox(p.Args["box"].(string))
					if err != nil {
						return nil, err
					}
					strategy, err := index.ParseStrategy(p.Args["op"].(string))
					if err != nil {
						return nil, err
					}
					fs, err := deps.Features.Search(p.Context, box, strategy, p.Args["limit"].(int))
					if err != nil {
						return nil, err
					}
					return featureMaps(fs), nil
				},
			},
			"featuresContaining": &graphql.Field{
				Type:        graphql.NewList(featureType),
				Description: "Polygon features that contain a point",
				Args: graphql.FieldConfigArgument{
					"point": &graphql.ArgumentConfig{Type: nonNullString},
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					pt, err := wkt.DecodePoint(p.Args["point"].(string))
					if err != nil {
						return nil, err
					}
					fs, err := deps.Features.Containing(p.Context, pt, p.Args["limit"].(int))
					if err != nil {
						return nil, err
					}
					return featureMaps(fs), nil
				},
			},
			"distance": &graphql.Field{
				Type:        graphql.Float,
				Description: "Distance between two WKT points",
				Args: graphql.FieldConfigArgument{
					"a": &graphql.ArgumentConfig{Type: nonNullString},
					"b": &graphql.ArgumentConfig{Type: nonNullString},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					a, err := wkt.DecodePoint(p.Args["a"].(string))
					if err != nil {
						return nil, err
					}
					b, err := wkt.DecodePoint(p.Args["b"].(string))
					if err != nil {
						return nil, err
					}
					return deps.Geometry.Distance(a, b)
				},
			},
			"area": &graphql.Field{
				Type:        graphql.Float,
				Description: "Area of a WKT polygon",
				Args: graphql.FieldConfigArgument{
					"polygon": &graphql.ArgumentConfig{Type: nonNullString},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					poly, err := wkt.DecodePolygon(p.Args["polygon"].(string))
					if err != nil {
						return nil, err
					}
					return deps.Geometry.Area(poly), nil
				},
			},
			"contains": &graphql.Field{
				Type:        graphql.Boolean,
				Description: "Point-in-polygon test for a WKT polygon and point",
				Args: graphql.FieldConfigArgument{
					"polygon": &graphql.ArgumentConfig{Type: nonNullString},
					"point":   &graphql.ArgumentConfig{Type: nonNullString},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					poly, err := wkt.DecodePolygon(p.Args["polygon"].(string))
					if err != nil {
						return nil, err
					}
					pt, err := wkt.DecodePoint(p.Args["point"].(string))
					if err != nil {
						return nil, err
					}
					return deps.Geometry.Contains(poly, pt)
				},
			},
			"relate": &graphql.Field{
				Type:        relationType,
				Description: "Relation between segments p1-p2 and q1-q2",
				Args: graphql.FieldConfigArgument{
					"p1": &graphql.ArgumentConfig{Type: nonNullString},
					"p2": &graphql.ArgumentConfig{Type: nonNullString},
					"q1": &graphql.ArgumentConfig{Type: nonNullString},
					"q2": &graphql.ArgumentConfig{Type: nonNullString},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					var pts [4]domain.Point
					for i, k := range []string{"p1", "p2", "q1", "q2"} {
						pt, err := wkt.DecodePoint(p.Args[k].(string))
						if err != nil {
							return nil, err
						}
						pts[i] = pt
					}
					rel, err := deps.Geometry.Relate(pts[0], pts[1], pts[2], pts[3])
					if err != nil {
						return nil, err
					}
					points := make([]map[string]any, len(rel.Points))
					for i, ip := range rel.Points {
						points[i] = pointMap(ip)
					}
					return map[string]any{"relation": rel.Relation.String(), "points": points}, nil
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createFeature": &graphql.Field{
				Type:        featureType,
				Description: "Store a feature from WKT",
				Args: graphql.FieldConfigArgument{
					"name": &graphql.ArgumentConfig{Type: nonNullString},
					"wkt":  &graphql.ArgumentConfig{Type: nonNullString},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					g, err := wkt.Decode(p.Args["wkt"].(string))
					if err != nil {
						return nil, err
					}
					f, err := deps.Features.Create(p.Context, p.Args["name"].(string), g)
					if err != nil {
						return nil, err
					}
					return featureMap(f), nil
				},
			},
			"deleteFeature": &graphql.Field{
				Type:        graphql.Boolean,
				Description: "Delete a feature by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: nonNullString},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					if err := deps.Features.Delete(p.Context, p.Args["id"].(string)); err != nil {
						return false, err
					}
					return true, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string         `json:"query"`
		OperationName string         `json:"operationName"`
		Variables     map[string]any `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
