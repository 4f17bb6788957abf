/**
 * Package di provides dependency injection type definitions.
 *
 * The Container holds every long-lived component of the process and is
 * passed to the HTTP server and the CLI.
 */
package di

import (
	"github.com/dgnsrekt/market-clock/internal/config"
	"github.com/dgnsrekt/market-clock/internal/database"
	"github.com/dgnsrekt/market-clock/internal/modules/alerts"
	"github.com/dgnsrekt/market-clock/internal/modules/market_hours"
	"github.com/dgnsrekt/market-clock/internal/modules/market_hours/handlers"
	"github.com/dgnsrekt/market-clock/internal/scheduler"
	"github.com/rs/zerolog"
)

// Container holds all dependencies for the application.
type Container struct {
	Config *config.Config
	Log    zerolog.Logger

	// Calendar
	Registry *market_hours.Registry

	// Alerts
	Store    alerts.Store
	AlertsDB *database.DB // nil unless the sqlite dedup backend is selected
	Cache    *alerts.Cache
	Notifier alerts.Notifier
	Poller   *alerts.Poller

	// HTTP
	RegionHandler *handlers.Handler

	// Background jobs
	Scheduler *scheduler.Scheduler
}

// JobInstances holds references to registered jobs for manual triggering
type JobInstances struct {
	HolidayRollover *scheduler.HolidayRolloverJob
	PurgeMarkers    *scheduler.PurgeMarkersJob      // nil unless AlertsDB is set
	WALCheckpoints  *scheduler.CheckWALCheckpointsJob // nil unless AlertsDB is set
}

// Close releases the dedup store. Safe to call more than once.
func (c *Container) Close() error {
	if c == nil || c.Store == nil {
		return nil
	}
	err := c.Store.Close()
	c.Store = nil
	c.AlertsDB = nil
	return err
}
