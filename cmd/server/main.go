// Package main is the entry point for the market-clock server.
// It serves region session state over HTTP and, when enabled, runs the
// poll loop that sends open/close alerts ahead of each session boundary.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dgnsrekt/market-clock/internal/config"
	"github.com/dgnsrekt/market-clock/internal/di"
	"github.com/dgnsrekt/market-clock/internal/server"
	"github.com/dgnsrekt/market-clock/pkg/logger"
)

// main orchestrates startup:
// 1. Loads configuration from environment variables (.env supported)
// 2. Initializes logging
// 3. Wires dependencies (registry, dedup store, notifier, poller, jobs)
// 4. Starts the HTTP server, cron scheduler and poll loop
// 5. Waits for a shutdown signal and stops everything in reverse order
func main() {
	cfg, err := config.Load()
	if err != nil {
		// Use fallback logger if config fails
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting market-clock")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Configuration errors (bad timezone, bad holiday token, unreachable
	// trading day) and an unreachable dedup store are fatal here.
	container, jobs, err := di.Wire(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer func() {
		if err := container.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close dedup store")
		}
	}()

	srv := server.New(server.Config{
		Log:       log,
		Config:    cfg,
		Container: container,
		Jobs:      jobs,
		Port:      cfg.Port,
		DevMode:   cfg.DevMode,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	container.Scheduler.Start()

	var wg sync.WaitGroup
	if cfg.Alerts.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := container.Poller.Run(ctx); err != nil {
				log.Error().Err(err).Msg("Poll loop exited")
			}
		}()
	} else {
		log.Info().Msg("Notifier disabled, poll loop not started")
	}

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")

	// Stop the poll loop first so no alert is sent mid-shutdown
	cancel()
	wg.Wait()

	container.Scheduler.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
