package http

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/geoext/internal/pkg/logging"
)

// RequestIDLogMiddleware puts a logger tagged with the request id on the
// user context. Feature and geometry services log through
// logging.FromContext, so their lines carry the same id as the access log.
func RequestIDLogMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid, _ := c.Locals("requestid").(string)
		if rid == "" {
			return c.Next()
		}

		l := slog.Default().With(slog.String("request_id", rid))
		c.SetUserContext(logging.WithLogger(c.UserContext(), l))
		return c.Next()
	}
}
