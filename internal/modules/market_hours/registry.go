package market_hours

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Registry holds one Region per exchange in a fixed order.
type Registry struct {
	regions []*Region
	byKey   map[string]*Region
	log     zerolog.Logger

	yearMu sync.Mutex
	year   int
}

// NewRegistry builds a registry over rules. Duplicate keys are rejected.
func NewRegistry(rules []*CalendarRules, log zerolog.Logger) (*Registry, error) {
	if len(rules) == 0 {
		return nil, errors.New("registry needs at least one region")
	}

	r := &Registry{
		regions: make([]*Region, 0, len(rules)),
		byKey:   make(map[string]*Region, len(rules)),
		log:     log.With().Str("component", "region_registry").Logger(),
		year:    rules[0].Year(),
	}
	for _, cr := range rules {
		key := cr.Key()
		if _, dup := r.byKey[key]; dup {
			return nil, fmt.Errorf("duplicate region %s", key)
		}
		region := NewRegion(cr)
		r.regions = append(r.regions, region)
		r.byKey[key] = region
	}
	return r, nil
}

// Refresh recomputes every region at now. A failing region does not stop
// the others; all failures are returned joined.
func (r *Registry) Refresh(now time.Time) error {
	_, err := r.RefreshSnapshots(now)
	return err
}

// RefreshSnapshots recomputes every region at now and returns the snapshots
// of the regions that refreshed successfully, in registry order.
func (r *Registry) RefreshSnapshots(now time.Time) ([]Snapshot, error) {
	out := make([]Snapshot, 0, len(r.regions))
	var errs []error
	for _, region := range r.regions {
		snap, err := region.refresh(now)
		if err != nil {
			r.log.Error().Err(err).Str("region", region.Key()).Msg("Failed to refresh region")
			errs = append(errs, fmt.Errorf("refresh %s: %w", region.Key(), err))
			continue
		}
		out = append(out, snap)
	}
	return out, errors.Join(errs...)
}

// RefreshRegion recomputes one region and returns its snapshot.
func (r *Registry) RefreshRegion(name string, now time.Time) (Snapshot, error) {
	region, err := r.Lookup(name)
	if err != nil {
		return Snapshot{}, err
	}
	snap, err := region.refresh(now)
	if err != nil {
		return Snapshot{}, fmt.Errorf("refresh %s: %w", region.Key(), err)
	}
	return snap, nil
}

// Lookup finds a region by name, case-insensitively.
func (r *Registry) Lookup(name string) (*Region, error) {
	region, ok := r.byKey[NormalizeKey(name)]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrRegionNotFound)
	}
	return region, nil
}

// Regions returns the regions in registry order.
func (r *Registry) Regions() []*Region {
	out := make([]*Region, len(r.regions))
	copy(out, r.regions)
	return out
}

// Snapshots returns a snapshot of every region in registry order.
func (r *Registry) Snapshots() []Snapshot {
	out := make([]Snapshot, 0, len(r.regions))
	for _, region := range r.regions {
		out = append(out, region.Snapshot())
	}
	return out
}

// OpenRegions returns snapshots of the regions whose last state was open.
func (r *Registry) OpenRegions() []Snapshot {
	out := make([]Snapshot, 0)
	for _, region := range r.regions {
		s := region.Snapshot()
		if s.Refreshed && s.State.IsOpen {
			out = append(out, s)
		}
	}
	return out
}

// Year returns the year the current rules were normalized to.
func (r *Registry) Year() int {
	r.yearMu.Lock()
	defer r.yearMu.Unlock()
	return r.year
}

// Rollover rebuilds every region's rules for year. Nothing is replaced
// unless all regions rebuild cleanly.
func (r *Registry) Rollover(year int) error {
	r.yearMu.Lock()
	defer r.yearMu.Unlock()

	rebuilt := make([]*CalendarRules, len(r.regions))
	for i, region := range r.regions {
		rules, err := NewCalendarRules(region.Rules().Config(), year)
		if err != nil {
			return fmt.Errorf("rollover to %d: %w", year, err)
		}
		rebuilt[i] = rules
	}
	for i, region := range r.regions {
		region.ReplaceRules(rebuilt[i])
	}
	r.year = year

	r.log.Info().Int("year", year).Int("regions", len(rebuilt)).Msg("Calendar rules rolled over")
	return nil
}

// RolloverIfNeeded rolls the rules forward once now has passed into a later year.
func (r *Registry) RolloverIfNeeded(now time.Time) (bool, error) {
	year := now.UTC().Year()
	if year <= r.Year() {
		return false, nil
	}
	if err := r.Rollover(year); err != nil {
		return false, err
	}
	return true, nil
}
