package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/samirrijal/geoext/internal/adapters/postgres"
	"github.com/samirrijal/geoext/internal/pkg/config"
	"github.com/samirrijal/geoext/internal/pkg/logging"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|down> [dir]")
	}
	dir := "migrations"
	if len(os.Args) > 2 {
		dir = os.Args[2]
	}

	cfg, err := config.Load("geoext-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, "text")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN(), 2)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	switch os.Args[1] {
	case "up":
		applied, err := db.Migrate(ctx, dir)
		for _, name := range applied {
			slog.Info("applied", "migration", name)
		}
		if err != nil {
			log.Fatalf("migrate: %v", err)
		}
		slog.Info("schema up to date", "applied", len(applied))
	case "down":
		if err := db.Reset(ctx); err != nil {
			log.Fatalf("down: %v", err)
		}
		slog.Info("features and schema_migrations dropped")
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
}
