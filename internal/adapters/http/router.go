package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/geoext/internal/pkg/metrics"
)

// RouterConfig tunes the middleware stack.
type RouterConfig struct {
	RateLimit      int           // requests per minute per IP; 0 disables limiting
	RequestTimeout time.Duration // per-request deadline for /v1 handlers
	SpecPath       string
}

// DefaultRouterConfig returns the production defaults.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		RateLimit:      120,
		RequestTimeout: 15 * time.Second,
		SpecPath:       DefaultSpecPath,
	}
}

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies, cfg RouterConfig) {
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(AccessLogMiddleware())

	if cfg.RateLimit > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimit,
			Expiration: 1 * time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
			},
		}))
	}

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	with := func(h fiber.Handler) fiber.Handler {
		if cfg.RequestTimeout <= 0 {
			return h
		}
		return timeout.NewWithContext(h, cfg.RequestTimeout)
	}

	v1 := app.Group("/v1")

	// Stateless geometry operations
	geo := v1.Group("/geometry")
	geo.Post("/distance", with(DistanceHandler(deps)))
	geo.Post("/measure", with(MeasureHandler(deps)))
	geo.Post("/boundary", with(BoundaryHandler(deps)))
	geo.Post("/contains", with(ContainsHandler(deps)))
	geo.Post("/relate", with(RelateHandler(deps)))
	geo.Post("/intersections", with(IntersectionsHandler(deps)))
	geo.Post("/compare", with(CompareHandler(deps)))
	geo.Post("/convert", with(ConvertHandler(deps)))
	geo.Post("/trajectory", with(TrajectoryHandler(deps)))

	// Stored features; static paths before :id
	v1.Get("/features", with(ListFeaturesHandler(deps)))
	v1.Post("/features", with(CreateFeatureHandler(deps)))
	v1.Get("/features/search", with(SearchFeaturesHandler(deps)))
	v1.Get("/features/containing", with(ContainingFeaturesHandler(deps)))
	v1.Get("/features/near", with(NearFeaturesHandler(deps)))
	v1.Get("/features/points", with(PointsBetweenHandler(deps)))
	v1.Get("/features/:id", with(GetFeatureHandler(deps)))
	v1.Delete("/features/:id", with(DeleteFeatureHandler(deps)))
	v1.Get("/features/:id/measures", with(FeatureMeasuresHandler(deps)))

	v1.Get("/index/stats", IndexStatsHandler(deps))

	app.Post("/graphql", GraphQLHandler(deps))

	SetupDocs(app, cfg.SpecPath)

	if deps.NATS != nil {
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		})
		app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
	}
}
