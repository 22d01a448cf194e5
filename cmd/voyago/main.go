package main

import (
	"context"
	"errors"
	"log"

	"github.com/tmorel/voyago/internal/config"
	"github.com/tmorel/voyago/internal/db"
	"github.com/tmorel/voyago/internal/domain"
	"github.com/tmorel/voyago/internal/kv"
	"github.com/tmorel/voyago/internal/logging"
	"github.com/tmorel/voyago/internal/service"
	"github.com/tmorel/voyago/internal/store"
)

func main() {
	cfg := config.Load()

	logger, closeLogs, err := logging.Setup(cfg)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := closeLogs(); err != nil {
			logger.Error("failed to close log file", "error", err)
		}
	}()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	kvStore := kv.NewSQLiteStore(database)
	destinationStore := store.NewDestinationStore(kvStore)
	userStore := store.NewUserStore(kvStore)
	tripStore := store.NewTripStore(kvStore)

	ctx := context.Background()
	for _, init := range []func(context.Context) error{
		destinationStore.Init,
		userStore.Init,
		tripStore.Init,
	} {
		if err := init(ctx); err != nil {
			logger.Error("failed to initialize stores", "error", err)
			return
		}
	}

	planner := service.NewPlannerService(tripStore, destinationStore, userStore, logger)
	auth := service.NewAuthService(userStore, kvStore, logger)

	if cfg.SeedDemo {
		if err := planner.Bootstrap(ctx); err != nil {
			logger.Error("failed to seed demo data", "error", err)
			return
		}
	}

	switch user, err := auth.CurrentUser(ctx); {
	case err == nil:
		logger.Info("session restored", "user_id", user.ID, "username", user.Username)
	case errors.Is(err, domain.ErrNotFound):
		logger.Info("no active session")
	default:
		logger.Error("failed to restore session", "error", err)
		return
	}

	destinations, err := destinationStore.List(ctx)
	if err != nil {
		logger.Error("failed to read catalog", "error", err)
		return
	}
	logger.Info("voyago ready", "db", cfg.DBPath, "destinations", len(destinations))
}
