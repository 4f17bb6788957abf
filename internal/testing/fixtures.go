package testing

import (
	"sync"
	"testing"
	"time"

	"github.com/dgnsrekt/market-clock/internal/modules/market_hours"
	"github.com/rs/zerolog"
)

// Reference instants used across tests.
var (
	// TuesdayAfternoonUTC is 13 October 2026 14:00 UTC: New York and London open, Tokyo closed.
	TuesdayAfternoonUTC = time.Date(2026, 10, 13, 14, 0, 0, 0, time.UTC)
	// FridayAfterNYClose is 16 October 2026 16:30 in New York (20:30 UTC).
	FridayAfterNYClose = time.Date(2026, 10, 16, 20, 30, 0, 0, time.UTC)
)

// NewTestLogger returns a logger that discards everything.
func NewTestLogger() zerolog.Logger {
	return zerolog.New(nil).Level(zerolog.Disabled)
}

// NewTestRegistry builds a registry over the default regions for 2026, with optional overrides.
func NewTestRegistry(t *testing.T, overrides ...market_hours.RulesConfig) *market_hours.Registry {
	t.Helper()

	rules, err := market_hours.BuildRules(2026, overrides)
	if err != nil {
		t.Fatalf("Failed to build region rules: %v", err)
	}
	registry, err := market_hours.NewRegistry(rules, NewTestLogger())
	if err != nil {
		t.Fatalf("Failed to build registry: %v", err)
	}
	return registry
}

// NewRulesFixture builds a single region registry: New York hours in UTC, no holidays.
func NewRulesFixture(t *testing.T) *market_hours.Registry {
	t.Helper()

	rules, err := market_hours.NewCalendarRules(market_hours.RulesConfig{
		ID:       market_hours.NewYork,
		Name:     "new_york",
		Exchange: "NYSE New York",
		Timezone: "UTC",
		Open:     "14:30",
		Close:    "21:00",
		Holidays: []string{},
	}, 2026)
	if err != nil {
		t.Fatalf("Failed to build rules fixture: %v", err)
	}
	registry, err := market_hours.NewRegistry([]*market_hours.CalendarRules{rules}, NewTestLogger())
	if err != nil {
		t.Fatalf("Failed to build registry: %v", err)
	}
	return registry
}

// FixedClock is a manually advanced clock.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixedClock returns a clock stopped at now.
func NewFixedClock(now time.Time) *FixedClock {
	return &FixedClock{now: now}
}

// Now returns the current fixed instant.
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to now.
func (c *FixedClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Advance moves the clock forward by d.
func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
