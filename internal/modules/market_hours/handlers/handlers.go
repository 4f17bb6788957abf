// Package handlers provides HTTP handlers for region session queries.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dgnsrekt/market-clock/internal/modules/market_hours"
	"github.com/rs/zerolog"
)

// Handler serves region session state over HTTP
type Handler struct {
	registry       *market_hours.Registry
	now            func() time.Time
	streamInterval time.Duration
	log            zerolog.Logger
}

// NewHandler creates a new region handler
func NewHandler(
	registry *market_hours.Registry,
	streamInterval time.Duration,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		registry:       registry,
		now:            time.Now,
		streamInterval: streamInterval,
		log:            log.With().Str("handler", "market_hours").Logger(),
	}
}

// RegionResponse is the serialized form of one region.
// The open pair and the close pair are never both non-null.
type RegionResponse struct {
	Name           string   `json:"name"`
	Exchange       string   `json:"exchange"`
	Timezone       string   `json:"timezone"`
	OpenTime       string   `json:"open_time"`
	CloseTime      string   `json:"close_time"`
	Weekends       []int    `json:"weekends"`
	Holidays       []string `json:"holidays"`
	IsOpen         bool     `json:"is_open"`
	TimeToOpen     *string  `json:"time_to_open"`
	SecondsToOpen  *int64   `json:"seconds_to_open"`
	TimeToClose    *string  `json:"time_to_close"`
	SecondsToClose *int64   `json:"seconds_to_close"`
	NextTradingDay string   `json:"next_trading_day"`
}

// NewRegionResponse converts a snapshot into its JSON representation.
func NewRegionResponse(s market_hours.Snapshot) RegionResponse {
	holidays := make([]string, len(s.Holidays))
	for i, d := range s.Holidays {
		holidays[i] = d.String()
	}

	resp := RegionResponse{
		Name:           s.Name,
		Exchange:       s.Exchange,
		Timezone:       s.Timezone,
		OpenTime:       s.Open.String(),
		CloseTime:      s.Close.String(),
		Weekends:       s.Weekends,
		Holidays:       holidays,
		IsOpen:         s.State.IsOpen,
		SecondsToOpen:  s.State.SecondsToOpen,
		SecondsToClose: s.State.SecondsToClose,
	}
	if !s.State.NextTradingDay.IsZero() {
		resp.NextTradingDay = s.State.NextTradingDay.String()
	}
	if s.State.TimeToOpen != nil {
		words := market_hours.DurationWords(*s.State.TimeToOpen)
		resp.TimeToOpen = &words
	}
	if s.State.TimeToClose != nil {
		words := market_hours.DurationWords(*s.State.TimeToClose)
		resp.TimeToClose = &words
	}
	return resp
}

func regionResponses(snapshots []market_hours.Snapshot) []RegionResponse {
	out := make([]RegionResponse, 0, len(snapshots))
	for _, s := range snapshots {
		out = append(out, NewRegionResponse(s))
	}
	return out
}

// HandleGetRegions handles GET /api/regions
// Refreshes every region and returns all of them
func (h *Handler) HandleGetRegions(w http.ResponseWriter, r *http.Request) {
	now := h.now()

	if err := h.registry.Refresh(now); err != nil {
		// regions that failed keep their previous state
		h.log.Warn().Err(err).Msg("Some regions failed to refresh")
	}

	h.writeData(w, http.StatusOK, map[string]interface{}{
		"timestamp": now.Format(time.RFC3339),
		"exchanges": regionResponses(h.registry.Snapshots()),
	})
}

// HandleGetOpenRegions handles GET /api/regions/open
func (h *Handler) HandleGetOpenRegions(w http.ResponseWriter, r *http.Request) {
	now := h.now()

	if err := h.registry.Refresh(now); err != nil {
		h.log.Warn().Err(err).Msg("Some regions failed to refresh")
	}

	open := regionResponses(h.registry.OpenRegions())
	h.writeData(w, http.StatusOK, map[string]interface{}{
		"timestamp": now.Format(time.RFC3339),
		"exchanges": open,
		"count":     len(open),
	})
}

// HandleGetRegion handles GET /api/regions/{name}
// Refreshes only the named region
func (h *Handler) HandleGetRegion(w http.ResponseWriter, r *http.Request, name string) {
	snapshot, err := h.registry.RefreshRegion(name, h.now())
	if err != nil {
		if errors.Is(err, market_hours.ErrRegionNotFound) {
			h.writeError(w, http.StatusNotFound, "unknown region: "+name)
			return
		}
		h.log.Error().Err(err).Str("region", name).Msg("Failed to refresh region")
		h.writeError(w, http.StatusInternalServerError, "Failed to refresh region")
		return
	}

	h.writeData(w, http.StatusOK, NewRegionResponse(snapshot))
}

func (h *Handler) writeData(w http.ResponseWriter, status int, data interface{}) {
	h.writeJSON(w, status, map[string]interface{}{
		"data": data,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
