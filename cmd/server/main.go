// Package main is the entry point for the Lookout portfolio analytics
// service. It wires the trade ledger, the market data client and the risk
// engine together and serves them over HTTP.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/lookout/internal/config"
	"github.com/aristath/lookout/internal/database"
	"github.com/aristath/lookout/internal/di"
	"github.com/aristath/lookout/internal/scheduler"
	"github.com/aristath/lookout/internal/server"
	"github.com/aristath/lookout/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().
		Str("data_dir", cfg.DataDir).
		Int("port", cfg.Port).
		Bool("dev_mode", cfg.DevMode).
		Msg("Starting Lookout")

	container, err := di.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer func() {
		if err := container.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing databases")
		}
	}()

	// Background maintenance: WAL checkpoints nightly, stale cache rows
	// purged after, quota counter reset at midnight.
	sched := scheduler.New(log)

	maintenanceJob := scheduler.NewDatabaseMaintenanceJob(
		[]*database.DB{container.Databases.Portfolio},
		log,
	)
	quotaResetJob := scheduler.NewQuotaResetJob(container.MarketDataClient, log)

	if err := sched.AddJob("0 0 3 * * *", maintenanceJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register maintenance job")
	}
	if err := sched.AddJob("0 30 3 * * *", container.CacheCleanupJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register cache cleanup job")
	}
	if err := sched.AddJob("0 0 0 * * *", quotaResetJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register quota reset job")
	}

	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Config{
		Log:       log,
		Config:    cfg,
		Container: container,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
