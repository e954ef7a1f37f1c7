package http

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler is the liveness probe. It also reports index sizes so a
// replica that lost its index is visible without a metrics scrape.
func HealthHandler(deps *Dependencies) fiber.Handler {
	startedAt := time.Now()
	version := deps.Version
	if version == "" {
		version = "dev"
	}

	return func(c *fiber.Ctx) error {
		boxes, points := 0, 0
		if deps.Features != nil {
			boxes, points = deps.Features.IndexSize()
		}
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"uptime":  time.Since(startedAt).String(),
			"version": version,
			"index":   fiber.Map{"rtree": boxes, "btree": points},
		})
	}
}

// readinessCheck is one dependency probe. Optional dependencies that are
// not configured are reported but do not fail readiness.
type readinessCheck struct {
	name     string
	required bool
	probe    func(ctx context.Context) error // nil when not configured
}

var errNotWarmed = errors.New("spatial index not loaded")

func readinessChecks(deps *Dependencies) []readinessCheck {
	checks := []readinessCheck{
		{name: "database", required: true},
		{name: "index", required: true},
		{name: "nats"},
		{name: "cache"},
	}
	if deps.DB != nil {
		checks[0].probe = deps.DB.Ping
	}
	if deps.Features != nil {
		checks[1].probe = func(context.Context) error {
			if !deps.Features.Warmed() {
				return errNotWarmed
			}
			return nil
		}
	}
	if deps.NATS != nil {
		checks[2].probe = func(context.Context) error {
			if !deps.NATS.IsConnected() {
				return errors.New("disconnected")
			}
			return nil
		}
	}
	if deps.Cache != nil {
		checks[3].probe = deps.Cache.Ping
	}
	return checks
}

// ReadyHandler is the readiness probe: 503 until the database answers and
// the spatial index is loaded, or while a configured broker or cache is down.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	checks := readinessChecks(deps)

	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		results := make(map[string]string, len(checks))
		ready := true
		for _, chk := range checks {
			switch {
			case chk.probe == nil:
				results[chk.name] = "not configured"
				if chk.required {
					ready = false
				}
			default:
				if err := chk.probe(ctx); err != nil {
					results[chk.name] = "error: " + err.Error()
					ready = false
				} else {
					results[chk.name] = "ok"
				}
			}
		}

		if !ready {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "not ready", "checks": results})
		}
		return c.JSON(fiber.Map{"status": "ready", "checks": results})
	}
}
