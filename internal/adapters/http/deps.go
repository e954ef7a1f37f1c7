package http

import (
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/geoext/internal/adapters/postgres"
	"github.com/samirrijal/geoext/internal/adapters/valkey"
	"github.com/samirrijal/geoext/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Geometry *usecases.GeometryService
	Features *usecases.FeatureService
	NATS     *nats.Conn
	DB       *postgres.DB
	Cache    *valkey.Cache
	Version  string
}
