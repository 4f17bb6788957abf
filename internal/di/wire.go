// Package di provides dependency injection wiring and initialization.
package di

import (
	"context"
	"fmt"

	"github.com/dgnsrekt/market-clock/internal/config"
	"github.com/rs/zerolog"
)

// Wire initializes all dependencies and returns a fully configured container
// Order of operations:
// 1. Build the region registry
// 2. Open the dedup store and build the alert pipeline
// 3. Build HTTP handlers
// 4. Register jobs
// The scheduler is returned stopped; the caller starts it.
func Wire(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Container, *JobInstances, error) {
	if cfg.Alerts.DedupBackend == "sqlite" {
		if err := cfg.EnsureDataDir(); err != nil {
			return nil, nil, err
		}
	}

	container := &Container{Config: cfg, Log: log}

	// Step 1: Region registry
	if err := InitializeRegistry(container, cfg, log); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize region registry: %w", err)
	}

	// Step 2: Alerts
	if err := InitializeAlerts(ctx, container, cfg, log); err != nil {
		_ = container.Close()
		return nil, nil, fmt.Errorf("failed to initialize alerts: %w", err)
	}

	// Step 3: Handlers
	InitializeHandlers(container, cfg, log)

	// Step 4: Jobs
	jobs, err := RegisterJobs(container, log)
	if err != nil {
		_ = container.Close()
		return nil, nil, fmt.Errorf("failed to register jobs: %w", err)
	}

	log.Info().Msg("Dependency injection wiring completed successfully")

	return container, jobs, nil
}
