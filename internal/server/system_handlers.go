package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/dgnsrekt/market-clock/internal/database"
	"github.com/dgnsrekt/market-clock/internal/di"
	"github.com/dgnsrekt/market-clock/internal/modules/alerts"
	"github.com/dgnsrekt/market-clock/internal/scheduler"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemHandlers handles process monitoring and maintenance endpoints
type SystemHandlers struct {
	log         zerolog.Logger
	startupTime time.Time
	container   *di.Container
	jobs        map[string]scheduler.Job
}

// NewSystemHandlers creates a new system handlers instance
func NewSystemHandlers(log zerolog.Logger, container *di.Container, jobs *di.JobInstances) *SystemHandlers {
	h := &SystemHandlers{
		log:         log.With().Str("service", "system").Logger(),
		startupTime: time.Now(),
		container:   container,
		jobs:        make(map[string]scheduler.Job),
	}

	if jobs != nil {
		if jobs.HolidayRollover != nil {
			h.jobs["holiday-rollover"] = jobs.HolidayRollover
		}
		if jobs.PurgeMarkers != nil {
			h.jobs["purge-markers"] = jobs.PurgeMarkers
		}
		if jobs.WALCheckpoints != nil {
			h.jobs["wal-checkpoints"] = jobs.WALCheckpoints
		}
	}

	return h
}

// SystemStatusResponse represents the process status
type SystemStatusResponse struct {
	Status        string              `json:"status"`
	StartedAt     time.Time           `json:"started_at"`
	UptimeSeconds int64               `json:"uptime_seconds"`
	CPUPercent    float64             `json:"cpu_percent"`
	MemoryPercent float64             `json:"memory_percent"`
	Regions       int                 `json:"regions"`
	OpenRegions   int                 `json:"open_regions"`
	CalendarYear  int                 `json:"calendar_year"`
	DedupBackend  string              `json:"dedup_backend"`
	LastPoll      *alerts.CycleResult `json:"last_poll"`
	RecentAlerts  []alerts.Marker     `json:"recent_alerts"`
	AlertsDB      *database.Stats     `json:"alerts_db,omitempty"`
}

// HandleSystemStatus handles GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPercent, memPercent := h.getSystemStats()

	registry := h.container.Registry
	resp := SystemStatusResponse{
		Status:        "ok",
		StartedAt:     h.startupTime.UTC(),
		UptimeSeconds: int64(time.Since(h.startupTime).Seconds()),
		CPUPercent:    cpuPercent,
		MemoryPercent: memPercent,
		Regions:       len(registry.Regions()),
		OpenRegions:   len(registry.OpenRegions()),
		CalendarYear:  registry.Year(),
	}
	if h.container.Config != nil {
		resp.DedupBackend = h.container.Config.Alerts.DedupBackend
	}

	if h.container.Poller != nil {
		if last, ok := h.container.Poller.LastCycle(); ok {
			resp.LastPoll = &last
		}
	}

	resp.RecentAlerts = h.recentAlerts(r.Context())

	if h.container.AlertsDB != nil {
		stats, err := h.container.AlertsDB.GetStats()
		if err != nil {
			h.log.Warn().Err(err).Msg("Failed to get alerts database stats")
		} else {
			resp.AlertsDB = stats
		}
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// recentAlerts collects the unexpired dedup markers, one per delivered (region, kind).
func (h *SystemHandlers) recentAlerts(ctx context.Context) []alerts.Marker {
	out := []alerts.Marker{}
	if h.container.Cache == nil {
		return out
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	for _, region := range h.container.Registry.Regions() {
		for _, kind := range alerts.Kinds {
			m, err := h.container.Cache.Lookup(ctx, region.Key(), kind)
			if err != nil {
				h.log.Warn().Err(err).Str("region", region.Key()).Msg("Failed to read alert marker")
				if ctx.Err() != nil {
					return out
				}
				continue
			}
			if m != nil {
				out = append(out, *m)
			}
		}
	}
	return out
}

// HandleTriggerPoll handles POST /api/alerts/poll
// Runs a single poll cycle and returns its result
func (h *SystemHandlers) HandleTriggerPoll(w http.ResponseWriter, r *http.Request) {
	if h.container.Poller == nil {
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "alerts are not configured",
		})
		return
	}

	result := h.container.Poller.RunCycle(r.Context())
	h.writeJSON(w, http.StatusOK, result)
}

// HandleTriggerJob handles POST /api/jobs/{name}
func (h *SystemHandlers) HandleTriggerJob(w http.ResponseWriter, r *http.Request, name string) {
	job, ok := h.jobs[name]
	if !ok {
		h.writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "job not registered: " + name,
		})
		return
	}

	done := make(chan error, 1)
	go func() { done <- job.Run() }()

	select {
	case err := <-done:
		if err != nil {
			h.log.Error().Err(err).Str("job", name).Msg("Manual job run failed")
			h.writeJSON(w, http.StatusInternalServerError, map[string]string{
				"status": "error",
				"job":    name,
				"error":  err.Error(),
			})
			return
		}
	case <-r.Context().Done():
		h.writeJSON(w, http.StatusGatewayTimeout, map[string]string{
			"status": "error",
			"job":    name,
			"error":  context.Cause(r.Context()).Error(),
		})
		return
	}

	h.log.Info().Str("job", name).Msg("Job triggered manually")
	h.writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"job":    name,
	})
}

// getSystemStats returns CPU and RAM usage percentages.
// CPU is sampled over 100ms.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
