package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"shelfwatch/configs"
	"shelfwatch/internal/silver"
	"shelfwatch/internal/storage"
)

// Rebuilds the cleaned observation table from the full raw history.
func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	appConfig := configs.AppLoad()

	store, err := storage.NewClickHouseStorage(appConfig.DBDSN)
	if err != nil {
		logger.Error("Failed to connect to DB", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	raw, err := store.FetchRawProducts(ctx)
	if err != nil {
		logger.Error("Failed to fetch raw products", "error", err)
		os.Exit(1)
	}

	observations, err := silver.NewTransformer(logger).Transform(raw)
	if err != nil {
		logger.Error("Transform failed", "error", err)
		os.Exit(1)
	}

	if err := store.ReplaceObservations(ctx, observations); err != nil {
		logger.Error("Failed to replace observations", "error", err)
		os.Exit(1)
	}

	logger.Info("Observation table rebuilt", "raw", len(raw), "observations", len(observations))
}
