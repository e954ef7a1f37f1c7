package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control headers on GET responses based on endpoint.
// Handlers that set their own header win.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet {
			return err
		}
		if c.Response().StatusCode() >= fiber.StatusBadRequest {
			c.Set("Cache-Control", "no-store")
			return err
		}
		if existing := c.GetRespHeader("Cache-Control"); existing != "" {
			return err
		}

		if ttl := cacheControlFor(c.Path()); ttl != "" {
			c.Set("Cache-Control", ttl)
		}
		return err
	}
}

// cacheControlFor maps a request path to its default Cache-Control value.
func cacheControlFor(path string) string {
	switch {
	case path == "/v1/health" || path == "/v1/ready":
		return "public, max-age=10"

	case path == "/metrics", strings.HasPrefix(path, "/v1/index"):
		return "no-cache"

	case path == "/graphql":
		return "private, max-age=0"

	// Query endpoints change whenever a feature is written.
	case path == "/v1/features",
		strings.HasPrefix(path, "/v1/features/search"),
		strings.HasPrefix(path, "/v1/features/containing"),
		strings.HasPrefix(path, "/v1/features/near"),
		strings.HasPrefix(path, "/v1/features/points"):
		return "public, max-age=5"

	// Stored features are immutable; only deletion changes them.
	case strings.HasPrefix(path, "/v1/features/"):
		return "public, max-age=60"

	case strings.HasPrefix(path, "/docs"):
		return "public, max-age=3600"

	case strings.HasPrefix(path, "/v1/"):
		return "public, max-age=30"
	}
	return ""
}
