package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmguild/lootkeeper/internal/auth"
	"github.com/lmguild/lootkeeper/internal/catalog"
	"github.com/lmguild/lootkeeper/internal/config"
	"github.com/lmguild/lootkeeper/internal/database"
	"github.com/lmguild/lootkeeper/internal/database/postgres"
	"github.com/lmguild/lootkeeper/internal/handler"
	"github.com/lmguild/lootkeeper/internal/inventory"
	"github.com/lmguild/lootkeeper/internal/logger"
	"github.com/lmguild/lootkeeper/internal/member"
	"github.com/lmguild/lootkeeper/internal/notifier"
	"github.com/lmguild/lootkeeper/internal/rank"
	"github.com/lmguild/lootkeeper/internal/refdata"
	"github.com/lmguild/lootkeeper/internal/registry"
	"github.com/lmguild/lootkeeper/internal/server"
)

const (
	shutdownTimeout  = 10 * time.Second
	startupQueryTime = 30 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Configuration failed", "error", err)
		os.Exit(1)
	}

	logger.Setup(cfg.LogLevel, cfg.LogFormat)
	handler.InitValidator()

	startupCtx, cancel := context.WithTimeout(context.Background(), startupQueryTime)
	defer cancel()

	dbPool, err := database.NewPool(startupCtx, database.PoolConfig{ConnString: cfg.GetDBConnString()})
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if err := database.Migrate(startupCtx, dbPool); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	itemRepo := postgres.NewItemRepository(dbPool)
	rankRepo := postgres.NewRankRepository(dbPool)
	memberRepo := postgres.NewMemberRepository(dbPool)
	inventoryRepo := postgres.NewInventoryRepository(dbPool)
	registryRepo := postgres.NewRegistryRepository(dbPool)
	adminRepo := postgres.NewAdminRepository(dbPool)

	store := refdata.NewStore(itemRepo, rankRepo, memberRepo, inventoryRepo)
	if err := store.Refresh(startupCtx); err != nil {
		slog.Error("Failed to load reference data", "error", err)
		os.Exit(1)
	}

	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	store.Watch(watchCtx, cfg.RefreshInterval)
	defer store.Stop()

	notifyClient := notifier.NewWebhookClient(cfg.WebhookURL, cfg.WebhookTimeout)
	if cfg.WebhookURL == "" {
		slog.Warn("DISCORD_WEBHOOK_URL not set, loot notifications disabled")
	}

	authService := auth.NewService(adminRepo)
	catalogService := catalog.NewService(itemRepo, store)
	rankService := rank.NewService(rankRepo, store)
	memberService := member.NewService(memberRepo, rankRepo, store)
	inventoryService := inventory.NewService(store, inventoryRepo)
	registryService := registry.NewService(registryRepo, memberRepo, itemRepo, inventoryRepo, store, notifyClient)

	srv := server.NewServer(cfg.Port, cfg.APIKey, cfg.TrustedProxies,
		dbPool, authService, catalogService, rankService, memberService,
		inventoryService, registryService)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	case sig := <-sigCh:
		slog.Info("Shutting down", "signal", sig.String())
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err := srv.Stop(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped")
}
