// Package di provides dependency injection for application services.
package di

import (
	"context"
	"fmt"
	"time"

	"github.com/dgnsrekt/market-clock/internal/config"
	"github.com/dgnsrekt/market-clock/internal/modules/alerts"
	"github.com/dgnsrekt/market-clock/internal/modules/market_hours"
	"github.com/dgnsrekt/market-clock/internal/modules/market_hours/handlers"
	"github.com/rs/zerolog"
)

// BuildRegistry builds the region registry for year from the default
// exchange table and the optional regions file.
func BuildRegistry(cfg *config.Config, year int, log zerolog.Logger) (*market_hours.Registry, error) {
	var overrides []market_hours.RulesConfig
	if cfg.RegionsFile != "" {
		loaded, err := market_hours.LoadRulesFile(cfg.RegionsFile)
		if err != nil {
			return nil, err
		}
		overrides = loaded
		log.Info().
			Str("file", cfg.RegionsFile).
			Int("overrides", len(overrides)).
			Msg("Loaded region overrides")
	}

	rules, err := market_hours.BuildRules(year, overrides)
	if err != nil {
		return nil, err
	}
	return market_hours.NewRegistry(rules, log)
}

// InitializeRegistry builds the registry for the current UTC year
func InitializeRegistry(container *Container, cfg *config.Config, log zerolog.Logger) error {
	registry, err := BuildRegistry(cfg, time.Now().UTC().Year(), log)
	if err != nil {
		return err
	}
	container.Registry = registry

	log.Info().Int("regions", len(registry.Regions())).Int("year", registry.Year()).Msg("Region registry initialized")
	return nil
}

// InitializeAlerts opens the dedup store and builds the cache, notifier and poll loop.
func InitializeAlerts(ctx context.Context, container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container.Registry == nil {
		return fmt.Errorf("registry must be initialized before alerts")
	}

	store, err := alerts.NewStore(ctx, alerts.StoreConfig{
		Backend: cfg.Alerts.DedupBackend,
		Redis: alerts.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
		},
		SQLitePath: cfg.SQLitePath(),
	}, log)
	if err != nil {
		return fmt.Errorf("failed to open %s dedup store: %w", cfg.Alerts.DedupBackend, err)
	}
	container.Store = store
	if s, ok := store.(*alerts.SQLiteStore); ok {
		container.AlertsDB = s.DB()
	}

	container.Cache = alerts.NewCache(store, cfg.Alerts.Threshold, log)

	webhook := alerts.SlackWebhookURL(cfg.Slack.WebhookURL, cfg.Slack.WebhookToken)
	if webhook != "" {
		notifier, err := alerts.NewSlackNotifier(webhook)
		if err != nil {
			return err
		}
		container.Notifier = notifier
	} else {
		log.Warn().Msg("No Slack webhook configured, alerts will only be logged")
		container.Notifier = alerts.NewLogNotifier(log)
	}

	container.Poller = alerts.NewPoller(
		container.Registry,
		container.Cache,
		container.Notifier,
		alerts.PollerConfig{
			Threshold:      cfg.Alerts.Threshold,
			Interval:       cfg.Alerts.PollInterval,
			RequestTimeout: cfg.Alerts.RequestTimeout,
			NotifyPause:    cfg.Alerts.NotifyPause,
		},
		log,
	)

	log.Info().
		Str("backend", cfg.Alerts.DedupBackend).
		Dur("threshold", cfg.Alerts.Threshold).
		Dur("dedup_ttl", container.Cache.TTL()).
		Msg("Alerts initialized")
	return nil
}

// InitializeHandlers builds the HTTP handlers
func InitializeHandlers(container *Container, cfg *config.Config, log zerolog.Logger) {
	container.RegionHandler = handlers.NewHandler(container.Registry, cfg.StreamInterval, log)
}
