package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/lmguild/lootkeeper/internal/database"
	"github.com/lmguild/lootkeeper/internal/database/postgres"
	"github.com/lmguild/lootkeeper/internal/logger"
	"github.com/lmguild/lootkeeper/internal/notifier"
	"github.com/lmguild/lootkeeper/internal/refdata"
	"github.com/lmguild/lootkeeper/internal/registry"
)

// Catch-up processor: retries the Discord notification for registries
// whose webhook delivery failed at submission time. Meant to run as a
// scheduled one-shot job, not a daemon.

const (
	defaultBatchLimit = 50
	runTimeout        = 2 * time.Minute
)

func main() {
	_ = godotenv.Load()

	logger.Setup(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))

	webhookURL := os.Getenv("DISCORD_WEBHOOK_URL")
	if webhookURL == "" {
		slog.Error("DISCORD_WEBHOOK_URL is required")
		os.Exit(1)
	}

	limit := defaultBatchLimit
	if raw := os.Getenv("PROCESSOR_BATCH_LIMIT"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			slog.Error("Invalid PROCESSOR_BATCH_LIMIT", "value", raw)
			os.Exit(1)
		}
		limit = parsed
	}

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	// A one-shot job needs barely any pool.
	dbPool, err := database.NewPool(ctx, database.PoolConfig{
		ConnString: connStringFromEnv(),
		MaxConns:   2,
	})
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	itemRepo := postgres.NewItemRepository(dbPool)
	rankRepo := postgres.NewRankRepository(dbPool)
	memberRepo := postgres.NewMemberRepository(dbPool)
	inventoryRepo := postgres.NewInventoryRepository(dbPool)
	registryRepo := postgres.NewRegistryRepository(dbPool)

	store := refdata.NewStore(itemRepo, rankRepo, memberRepo, inventoryRepo)
	if err := store.Refresh(ctx); err != nil {
		slog.Error("Failed to load reference data", "error", err)
		os.Exit(1)
	}

	notifyClient := notifier.NewWebhookClient(webhookURL, 0)
	svc := registry.NewService(registryRepo, memberRepo, itemRepo, inventoryRepo, store, notifyClient)

	processed, err := svc.ProcessUnprocessed(ctx, limit)
	if err != nil {
		slog.Error("Catch-up run failed", "error", err, "processed", processed)
		os.Exit(1)
	}

	slog.Info("Catch-up run finished", "processed", processed)
}

func connStringFromEnv() string {
	get := func(key, fallback string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return fallback
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		get("DB_USER", "postgres"),
		get("DB_PASSWORD", "postgres"),
		get("DB_HOST", "localhost"),
		get("DB_PORT", "5432"),
		get("DB_NAME", "lootkeeper"),
	)
}
