package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/geoext/internal/adapters/http"
	natsadapter "github.com/samirrijal/geoext/internal/adapters/nats"
	"github.com/samirrijal/geoext/internal/adapters/postgres"
	"github.com/samirrijal/geoext/internal/adapters/valkey"
	"github.com/samirrijal/geoext/internal/core/ports"
	"github.com/samirrijal/geoext/internal/core/usecases"
	"github.com/samirrijal/geoext/internal/pkg/config"
	"github.com/samirrijal/geoext/internal/pkg/logging"
	"github.com/samirrijal/geoext/internal/pkg/metrics"
	"github.com/samirrijal/geoext/internal/pkg/telemetry"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load("geoext-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	go reportPoolStats(ctx, db)

	// Cache
	var cacheSvc ports.CacheService
	cache, err := valkey.New(cfg.Valkey.Addr,
		valkey.WithPrefix(cfg.Valkey.Prefix),
		valkey.WithClientCache(time.Duration(cfg.Valkey.ClientCacheTTL)*time.Second),
	)
	if err != nil {
		slog.Warn("valkey unavailable, running without cache", "error", err)
		cache = nil
	} else {
		defer cache.Close()
		cacheSvc = cache
	}

	// NATS
	var publisher ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, feature events disabled", "error", err)
	} else {
		defer pub.Close()
		publisher = pub
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
		natsConn = nil
	} else {
		defer natsConn.Close()
	}

	// Use cases
	featureCfg := usecases.FeatureServiceConfig{
		RTreeFanout: cfg.Index.RTreeFanout,
		BTreeDegree: cfg.Index.BTreeDegree,
		FeatureTTL:  cfg.Cache.FeatureTTL,
		MeasuresTTL: cfg.Cache.MeasuresTTL,
	}
	features := usecases.NewFeatureService(postgres.NewFeatureRepo(db), cacheSvc, publisher, featureCfg)

	warmStart := time.Now()
	n, err := features.Warm(ctx)
	if err != nil {
		log.Fatalf("warm index: %v", err)
	}
	slog.Info("spatial index loaded", "features", n, "took", time.Since(warmStart).String())

	// Keep this replica's index in step with writes made elsewhere.
	if publisher != nil {
		hostname, _ := os.Hostname()
		sub, err := natsadapter.NewSubscriber(cfg.NATS.URL, "geoext-api-"+hostname)
		if err != nil {
			slog.Warn("nats subscriber unavailable", "error", err)
		} else {
			defer sub.Close()
			if err := sub.SubscribeFeatureEvents(ctx, features.ApplyEvent); err != nil {
				slog.Warn("subscribe feature events", "error", err)
			}
		}
	}

	deps := &http.Dependencies{
		Geometry: usecases.NewGeometryService(),
		Features: features,
		NATS:     natsConn,
		DB:       db,
		Cache:    cache,
		Version:  version,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
		AppName:      "geoext API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, If-None-Match",
		MaxAge:       3600,
	}))

	http.SetupRoutes(app, deps, http.DefaultRouterConfig())

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "version", version)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

// reportPoolStats refreshes the database pool gauges until ctx ends.
func reportPoolStats(ctx context.Context, db *postgres.DB) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		metrics.UpdateDBPoolMetrics(db.Stat())
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
