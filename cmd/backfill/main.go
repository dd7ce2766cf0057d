package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	deliverysvc "github.com/mkcamara/graniteledger-backend/internal/deliveries"
	"github.com/mkcamara/graniteledger-backend/pkg/config"
	"github.com/mkcamara/graniteledger-backend/pkg/db"
	"github.com/mkcamara/graniteledger-backend/pkg/logger"
)

// One-shot recompute of the persisted financial columns. Run after the
// split constants or defaults change.
func main() {
	logg := logger.New(logger.Options{ServiceName: "backfill"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "backfill",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	recomputer, err := deliverysvc.NewRecomputer(deliverysvc.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create recomputer", err)
		os.Exit(1)
	}

	ctx := logg.WithFields(context.Background(), map[string]any{"env": cfg.App.Env})
	logg.Info(ctx, "starting financial recompute")

	updated, err := recomputer.Run(ctx)
	if err != nil {
		logg.Error(ctx, "recompute finished with errors", err)
		os.Exit(1)
	}

	logg.Info(logg.WithFields(ctx, map[string]any{"updated": updated}), "recompute complete")
}
