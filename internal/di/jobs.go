// Package di provides dependency injection for scheduler jobs.
package di

import (
	"fmt"
	"time"

	"github.com/dgnsrekt/market-clock/internal/modules/alerts"
	"github.com/dgnsrekt/market-clock/internal/scheduler"
	"github.com/rs/zerolog"
)

// Job schedules (cron with seconds field)
const (
	holidayRolloverSchedule = "0 5 0 * * *"    // daily 00:05, rolls over once the year changes
	purgeMarkersSchedule    = "0 */30 * * * *" // every 30 minutes
	walCheckpointSchedule   = "0 0 * * * *"    // hourly
	purgeMarkersTimeout     = 30 * time.Second
)

// RegisterJobs creates the scheduler and registers the maintenance jobs.
// Returns JobInstances for manual triggering.
func RegisterJobs(container *Container, log zerolog.Logger) (*JobInstances, error) {
	if container == nil {
		return nil, fmt.Errorf("container cannot be nil")
	}
	if container.Registry == nil {
		return nil, fmt.Errorf("registry must be initialized before jobs")
	}

	sched := scheduler.New(log)
	instances := &JobInstances{}

	// ==========================================
	// Holiday rollover
	// ==========================================
	instances.HolidayRollover = scheduler.NewHolidayRolloverJob(container.Registry, log)
	if err := sched.AddJob(holidayRolloverSchedule, instances.HolidayRollover); err != nil {
		return nil, fmt.Errorf("failed to register holiday rollover job: %w", err)
	}

	// ==========================================
	// SQLite dedup store maintenance
	// ==========================================
	if container.AlertsDB != nil {
		if store, ok := container.Store.(*alerts.SQLiteStore); ok {
			instances.PurgeMarkers = scheduler.NewPurgeMarkersJob(store, purgeMarkersTimeout, log)
			if err := sched.AddJob(purgeMarkersSchedule, instances.PurgeMarkers); err != nil {
				return nil, fmt.Errorf("failed to register purge markers job: %w", err)
			}
		}

		instances.WALCheckpoints = scheduler.NewCheckWALCheckpointsJob(log, container.AlertsDB)
		if err := sched.AddJob(walCheckpointSchedule, instances.WALCheckpoints); err != nil {
			return nil, fmt.Errorf("failed to register WAL checkpoint job: %w", err)
		}
	}

	container.Scheduler = sched
	return instances, nil
}
