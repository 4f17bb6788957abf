package market_hours

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRules(t *testing.T, cfg RulesConfig) *CalendarRules {
	t.Helper()
	rules, err := NewCalendarRules(cfg, 2026)
	require.NoError(t, err)
	return rules
}

func mustLocation(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}

func TestIsOpen_RegularHours(t *testing.T) {
	rules := mustRules(t, validConfig())
	ny := mustLocation(t, "America/New_York")

	tests := []struct {
		name     string
		at       time.Time
		expected bool
	}{
		{"before open", time.Date(2026, 10, 13, 9, 29, 0, 0, ny), false},
		{"at open", time.Date(2026, 10, 13, 9, 30, 0, 0, ny), true},
		{"midday", time.Date(2026, 10, 13, 12, 0, 0, 0, ny), true},
		{"one second before close", time.Date(2026, 10, 13, 15, 59, 59, 0, ny), true},
		{"at close", time.Date(2026, 10, 13, 16, 0, 0, 0, ny), false},
		{"after close", time.Date(2026, 10, 13, 16, 30, 0, 0, ny), false},
		{"saturday", time.Date(2026, 10, 17, 12, 0, 0, 0, ny), false},
		{"sunday", time.Date(2026, 10, 18, 12, 0, 0, 0, ny), false},
		{"instant given in utc", time.Date(2026, 10, 13, 14, 0, 0, 0, time.UTC), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, rules.IsOpen(tt.at))
		})
	}
}

func TestState_FridayAfterClose(t *testing.T) {
	rules := mustRules(t, validConfig())
	ny := mustLocation(t, "America/New_York")
	friday := time.Date(2026, 10, 16, 16, 30, 0, 0, ny)

	state, err := rules.State(friday)
	require.NoError(t, err)

	assert.False(t, state.IsOpen)
	assert.Equal(t, Date{2026, time.October, 19}, state.NextTradingDay)
	require.NotNil(t, state.TimeToOpen)
	require.NotNil(t, state.SecondsToOpen)
	assert.Equal(t, 2*24*time.Hour+17*time.Hour, *state.TimeToOpen)
	assert.Equal(t, int64(65*3600), *state.SecondsToOpen)
	assert.Nil(t, state.TimeToClose)
	assert.Nil(t, state.SecondsToClose)
	assert.Equal(t, friday, state.ComputedAt)
}

func TestState_AcrossDSTChange(t *testing.T) {
	rules := mustRules(t, validConfig())
	ny := mustLocation(t, "America/New_York")

	// clocks go back on Sunday 1 November 2026
	state, err := rules.State(time.Date(2026, 10, 30, 16, 30, 0, 0, ny))
	require.NoError(t, err)
	require.NotNil(t, state.TimeToOpen)
	assert.Equal(t, 66*time.Hour, *state.TimeToOpen)
}

func TestState_AtCloseInstant(t *testing.T) {
	rules := mustRules(t, validConfig())
	ny := mustLocation(t, "America/New_York")
	closeInstant := time.Date(2026, 10, 13, 16, 0, 0, 0, ny)

	state, err := rules.State(closeInstant)
	require.NoError(t, err)

	assert.False(t, state.IsOpen)
	assert.Equal(t, Date{2026, time.October, 14}, state.NextTradingDay)
	require.NotNil(t, state.TimeToOpen)
	assert.Equal(t, 17*time.Hour+30*time.Minute, *state.TimeToOpen)
}

func TestState_WhileOpen(t *testing.T) {
	rules := mustRules(t, validConfig())
	ny := mustLocation(t, "America/New_York")

	state, err := rules.State(time.Date(2026, 10, 13, 15, 45, 30, 500, ny))
	require.NoError(t, err)

	assert.True(t, state.IsOpen)
	assert.Nil(t, state.TimeToOpen)
	assert.Nil(t, state.SecondsToOpen)
	require.NotNil(t, state.SecondsToClose)
	// truncated toward zero
	assert.Equal(t, int64(14*60+29), *state.SecondsToClose)
	assert.Equal(t, Date{2026, time.October, 14}, state.NextTradingDay)
}

func TestState_BeforeOpenIsToday(t *testing.T) {
	rules := mustRules(t, validConfig())
	ny := mustLocation(t, "America/New_York")

	state, err := rules.State(time.Date(2026, 10, 13, 9, 0, 0, 0, ny))
	require.NoError(t, err)
	assert.Equal(t, Date{2026, time.October, 13}, state.NextTradingDay)
	require.NotNil(t, state.SecondsToOpen)
	assert.Equal(t, int64(30*60), *state.SecondsToOpen)
}

func TestState_WeekdayHoliday(t *testing.T) {
	cfg := validConfig()
	cfg.Holidays = []string{"2026-10-14"}
	rules := mustRules(t, cfg)
	ny := mustLocation(t, "America/New_York")

	for _, hour := range []int{0, 9, 10, 12, 15, 23} {
		at := time.Date(2026, 10, 14, hour, 0, 0, 0, ny)
		assert.False(t, rules.IsOpen(at), "hour %d", hour)
	}

	next, err := rules.NextTradingDay(time.Date(2026, 10, 14, 8, 0, 0, 0, ny))
	require.NoError(t, err)
	assert.Equal(t, Date{2026, time.October, 15}, next)

	next, err = rules.NextTradingDay(time.Date(2026, 10, 13, 17, 0, 0, 0, ny))
	require.NoError(t, err)
	assert.Equal(t, Date{2026, time.October, 15}, next)
}

func TestTimeUntilClose_WhenClosed(t *testing.T) {
	rules := mustRules(t, validConfig())
	ny := mustLocation(t, "America/New_York")

	d, err := rules.TimeUntilClose(time.Date(2026, 10, 16, 16, 30, 0, 0, ny))
	require.NoError(t, err)
	assert.Equal(t, 2*24*time.Hour+23*time.Hour+30*time.Minute, d)
}

func TestState_UTCRegion(t *testing.T) {
	rules := mustRules(t, defaultConfig(t, UTC))

	tests := []struct {
		at       time.Time
		expected bool
	}{
		{time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC), true},
		{time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC), true},
		{time.Date(2026, 12, 25, 23, 58, 59, 0, time.UTC), true},
		{time.Date(2026, 12, 25, 23, 59, 0, 0, time.UTC), false},
		{time.Date(2026, 12, 25, 23, 59, 59, 0, time.UTC), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, rules.IsOpen(tt.at), "at %s", tt.at)
	}

	state, err := rules.State(time.Date(2026, 12, 25, 23, 59, 30, 0, time.UTC))
	require.NoError(t, err)
	require.NotNil(t, state.SecondsToOpen)
	assert.Equal(t, int64(30), *state.SecondsToOpen)
	assert.Equal(t, Date{2026, time.December, 26}, state.NextTradingDay)
}

func TestState_Invariants(t *testing.T) {
	rules, err := BuildRules(2026, nil)
	require.NoError(t, err)

	start := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	end := start.Add(21 * 24 * time.Hour)

	for _, r := range rules {
		for now := start; now.Before(end); now = now.Add(37 * time.Minute) {
			state, err := r.State(now)
			require.NoError(t, err, "%s at %s", r.Key(), now)

			if state.IsOpen {
				require.NotNil(t, state.TimeToClose)
				require.NotNil(t, state.SecondsToClose)
				require.Nil(t, state.TimeToOpen)
				require.Nil(t, state.SecondsToOpen)
				require.GreaterOrEqual(t, *state.SecondsToClose, int64(0))
			} else {
				require.NotNil(t, state.TimeToOpen)
				require.NotNil(t, state.SecondsToOpen)
				require.Nil(t, state.TimeToClose)
				require.Nil(t, state.SecondsToClose)
				require.GreaterOrEqual(t, *state.SecondsToOpen, int64(0))
			}

			require.False(t, r.IsHoliday(state.NextTradingDay), "%s next %s", r.Key(), state.NextTradingDay)
			require.False(t, r.Weekends().Contains(state.NextTradingDay.Weekday()), "%s next %s", r.Key(), state.NextTradingDay)

			again, err := r.State(now)
			require.NoError(t, err)
			require.Equal(t, state, again)
		}
	}
}

func defaultConfig(t *testing.T, id RegionID) RulesConfig {
	t.Helper()
	for _, cfg := range DefaultRulesConfig() {
		if cfg.ID == id {
			return cfg
		}
	}
	t.Fatalf("no default config for %s", id)
	return RulesConfig{}
}
