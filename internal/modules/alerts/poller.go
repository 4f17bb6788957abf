package alerts

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dgnsrekt/market-clock/internal/modules/market_hours"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PollerConfig controls the poll loop timing.
type PollerConfig struct {
	// Threshold is how close to a transition an alert fires.
	Threshold time.Duration
	// Interval is the delay between the end of one cycle and the start of the next.
	Interval time.Duration
	// RequestTimeout bounds each dedup store and delivery call.
	RequestTimeout time.Duration
	// NotifyPause is slept after every delivered alert.
	NotifyPause time.Duration
}

// CycleResult summarises one poll cycle.
type CycleResult struct {
	ID            string    `json:"id"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
	Regions       int       `json:"regions"`
	RefreshErrors int       `json:"refresh_errors"`
	Sent          []string  `json:"sent"`
	Suppressed    int       `json:"suppressed"`
	Failed        int       `json:"failed"`
	StoreErrors   int       `json:"store_errors"`
}

// Poller periodically refreshes the registry and sends deduplicated alerts.
// Cycles never overlap.
type Poller struct {
	registry *market_hours.Registry
	cache    *Cache
	notifier Notifier
	cfg      PollerConfig
	now      func() time.Time
	log      zerolog.Logger

	mu   sync.RWMutex
	last *CycleResult
}

// NewPoller creates a poll loop.
func NewPoller(
	registry *market_hours.Registry,
	cache *Cache,
	notifier Notifier,
	cfg PollerConfig,
	log zerolog.Logger,
) *Poller {
	return &Poller{
		registry: registry,
		cache:    cache,
		notifier: notifier,
		cfg:      cfg,
		now:      time.Now,
		log:      log.With().Str("component", "poller").Logger(),
	}
}

// Run executes cycles until ctx is cancelled. Each wait starts after the
// previous cycle, including all deliveries, has finished.
func (p *Poller) Run(ctx context.Context) error {
	p.log.Info().
		Dur("interval", p.cfg.Interval).
		Dur("threshold", p.cfg.Threshold).
		Msg("Poll loop started")

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Info().Msg("Poll loop stopped")
			return nil
		case <-timer.C:
		}

		p.RunCycle(ctx)
		timer.Reset(p.cfg.Interval)
	}
}

// LastCycle returns the result of the most recent completed cycle.
func (p *Poller) LastCycle() (CycleResult, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.last == nil {
		return CycleResult{}, false
	}
	out := *p.last
	out.Sent = append([]string(nil), p.last.Sent...)
	return out, true
}

// RunCycle refreshes every region once and sends the alerts that are due.
func (p *Poller) RunCycle(ctx context.Context) CycleResult {
	now := p.now()
	result := CycleResult{
		ID:        uuid.NewString(),
		StartedAt: now,
		Sent:      make([]string, 0),
	}
	log := p.log.With().Str("cycle", result.ID).Logger()

	snapshots, err := p.registry.RefreshSnapshots(now)
	result.Regions = len(snapshots)
	if err != nil {
		result.RefreshErrors = len(p.registry.Regions()) - len(snapshots)
		log.Error().Err(err).Msg("Region refresh had errors")
	}

	thresholdSecs := int64(p.cfg.Threshold / time.Second)

	for _, s := range snapshots {
		if ctx.Err() != nil {
			break
		}

		if !s.State.IsOpen {
			d := *s.State.TimeToOpen
			log.Debug().Str("region", s.Key).Str("time_to_open", market_hours.DurationWords(d)).Msg("Market closed")
			if *s.State.SecondsToOpen <= thresholdSecs {
				p.alert(ctx, log, &result, s, Opening, d)
			}
			continue
		}

		d := *s.State.TimeToClose
		log.Debug().Str("region", s.Key).Str("time_to_close", market_hours.DurationWords(d)).Msg("Market open")
		if *s.State.SecondsToClose <= thresholdSecs {
			p.alert(ctx, log, &result, s, Closing, d)
		}
	}

	result.FinishedAt = p.now()

	p.mu.Lock()
	p.last = &result
	p.mu.Unlock()

	log.Info().
		Int("regions", result.Regions).
		Int("sent", len(result.Sent)).
		Int("suppressed", result.Suppressed).
		Int("failed", result.Failed).
		Int("store_errors", result.StoreErrors).
		Msg("Poll cycle complete")

	return result
}

// alert claims, delivers, and on failure releases one alert.
// A dedup store failure does not block delivery.
func (p *Poller) alert(
	ctx context.Context,
	log zerolog.Logger,
	result *CycleResult,
	s market_hours.Snapshot,
	kind TransitionKind,
	until time.Duration,
) {
	message := FormatMessage(s, kind, until)
	log = log.With().Str("region", s.Key).Str("kind", kind.String()).Logger()

	storeCtx, cancel := context.WithTimeout(ctx, p.cfg.RequestTimeout)
	claimed, err := p.cache.Claim(storeCtx, s.Key, kind, message)
	cancel()

	storeDown := err != nil
	if storeDown {
		result.StoreErrors++
		log.Warn().Err(err).Msg("Dedup store unavailable, sending alert anyway")
	} else if !claimed {
		result.Suppressed++
		return
	}

	deliverCtx, cancel := context.WithTimeout(ctx, p.cfg.RequestTimeout)
	err = p.notifier.Notify(deliverCtx, message)
	cancel()

	if err != nil {
		result.Failed++
		log.Error().Err(err).Msg("Failed to deliver alert")
		if !storeDown {
			releaseCtx, cancel := context.WithTimeout(ctx, p.cfg.RequestTimeout)
			if err := p.cache.Release(releaseCtx, s.Key, kind); err != nil {
				log.Error().Err(err).Msg("Failed to release alert claim")
			}
			cancel()
		}
		return
	}

	result.Sent = append(result.Sent, message)
	log.Info().Msg(message)

	if storeDown {
		recordCtx, cancel := context.WithTimeout(ctx, p.cfg.RequestTimeout)
		if err := p.cache.RecordSent(recordCtx, s.Key, kind, message); err != nil {
			log.Warn().Err(err).Msg("Failed to record alert after delivery")
		}
		cancel()
	}

	if p.cfg.NotifyPause > 0 {
		select {
		case <-ctx.Done():
		case <-time.After(p.cfg.NotifyPause):
		}
	}
}

// FormatMessage renders the alert text, e.g.
// "[Tokyo] - JPX Tokyo exchange opening in 14 minutes".
func FormatMessage(s market_hours.Snapshot, kind TransitionKind, until time.Duration) string {
	return fmt.Sprintf("[%s] - %s exchange %s in %s", s.Name, s.Exchange, kind, market_hours.DurationWords(until))
}
