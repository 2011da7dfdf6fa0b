package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"shelfwatch/configs"
	"shelfwatch/internal/gold"
	"shelfwatch/internal/storage"
)

// Rebuilds the analytics tables (dim_product, fct_price_history) from the
// observation history and swaps them in.
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

	observations, err := store.FetchObservations(ctx)
	if err != nil {
		logger.Error("Failed to fetch observations", "error", err)
		os.Exit(1)
	}

	dims, err := gold.BuildProductDimension(observations)
	if err != nil {
		logger.Error("Failed to build product dimension", "error", err)
		os.Exit(1)
	}

	facts, err := gold.BuildPriceHistory(observations)
	if err != nil {
		logger.Error("Failed to build price history", "error", err)
		os.Exit(1)
	}

	if err := store.ReplaceGold(ctx, dims, facts); err != nil {
		logger.Error("Failed to replace gold tables", "error", err)
		os.Exit(1)
	}

	logger.Info("Gold tables rebuilt",
		"observations", len(observations),
		"products", len(dims),
		"history_rows", len(facts))
}
