package main

import (
	"context"
	"log"
	"log/slog"
	"time"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/samirrijal/geoext/internal/adapters/nats"
	"github.com/samirrijal/geoext/internal/adapters/postgres"
	"github.com/samirrijal/geoext/internal/adapters/valkey"
	"github.com/samirrijal/geoext/internal/core/ports"
	"github.com/samirrijal/geoext/internal/core/usecases"
	"github.com/samirrijal/geoext/internal/pkg/config"
	"github.com/samirrijal/geoext/internal/pkg/logging"
	"github.com/samirrijal/geoext/internal/workflows"
)

func main() {
	cfg, err := config.Load("geoext-importer")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	var cacheSvc ports.CacheService
	if cache, err := valkey.New(cfg.Valkey.Addr,
		valkey.WithPrefix(cfg.Valkey.Prefix),
		valkey.WithClientCache(time.Duration(cfg.Valkey.ClientCacheTTL)*time.Second),
	); err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer cache.Close()
		cacheSvc = cache
	}

	// Imported features reach the API replicas through feature events.
	var publisher ports.EventPublisher
	if pub, err := natsadapter.NewPublisher(cfg.NATS.URL); err != nil {
		slog.Warn("nats unavailable, API indexes will only see imports after restart", "error", err)
	} else {
		defer pub.Close()
		publisher = pub
	}

	features := usecases.NewFeatureService(postgres.NewFeatureRepo(db), cacheSvc, publisher, usecases.FeatureServiceConfig{
		RTreeFanout: cfg.Index.RTreeFanout,
		BTreeDegree: cfg.Index.BTreeDegree,
		FeatureTTL:  cfg.Cache.FeatureTTL,
		MeasuresTTL: cfg.Cache.MeasuresTTL,
	})

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    logger,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})
	w.RegisterWorkflow(workflows.ImportWorkflow)
	w.RegisterActivity(&workflows.Activities{Features: features})

	slog.Info("import worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
