package market_hours

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() RulesConfig {
	return RulesConfig{
		ID:       NewYork,
		Name:     "new_york",
		Exchange: "NYSE New York",
		Timezone: "America/New_York",
		Open:     "09:30",
		Close:    "16:00",
	}
}

func TestNewCalendarRules(t *testing.T) {
	cfg := validConfig()
	cfg.Holidays = []string{"25.12", "2026-11-26", "25.12"}

	rules, err := NewCalendarRules(cfg, 2026)
	require.NoError(t, err)

	assert.Equal(t, "New_York", rules.Name())
	assert.Equal(t, "NEW_YORK", rules.Key())
	assert.Equal(t, "NYSE New York", rules.Exchange())
	assert.Equal(t, "America/New_York", rules.Timezone())
	assert.Equal(t, TimeOfDay{9, 30}, rules.OpenTime())
	assert.Equal(t, TimeOfDay{16, 0}, rules.CloseTime())
	assert.Equal(t, NormalWeekend, rules.Weekends())
	assert.Equal(t, 2026, rules.Year())
	assert.Equal(t, []Date{
		{2026, time.November, 26},
		{2026, time.December, 25},
		{2027, time.December, 25},
	}, rules.Holidays())
	assert.True(t, rules.IsHoliday(Date{2027, time.December, 25}))
	assert.False(t, rules.IsHoliday(Date{2026, time.December, 24}))
}

func TestNewCalendarRules_Weekends(t *testing.T) {
	t.Run("nil selects saturday and sunday", func(t *testing.T) {
		rules, err := NewCalendarRules(validConfig(), 2026)
		require.NoError(t, err)
		assert.Equal(t, []int{0, 6}, rules.Weekends().Indices())
	})

	t.Run("empty means no weekend", func(t *testing.T) {
		cfg := validConfig()
		cfg.Weekends = []int{}
		rules, err := NewCalendarRules(cfg, 2026)
		require.NoError(t, err)
		assert.Equal(t, 0, rules.Weekends().Len())
	})

	t.Run("friday saturday", func(t *testing.T) {
		cfg := validConfig()
		cfg.Weekends = []int{5, 6}
		rules, err := NewCalendarRules(cfg, 2026)
		require.NoError(t, err)
		assert.True(t, rules.Weekends().Contains(time.Friday))
		assert.False(t, rules.Weekends().Contains(time.Sunday))
	})
}

func TestNewCalendarRules_ConfigErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RulesConfig)
		field  string
	}{
		{"bad timezone", func(c *RulesConfig) { c.Timezone = "Mars/Olympus" }, "timezone"},
		{"empty timezone", func(c *RulesConfig) { c.Timezone = "" }, "timezone"},
		{"bad open", func(c *RulesConfig) { c.Open = "9h30" }, "open time"},
		{"bad close", func(c *RulesConfig) { c.Close = "25:00" }, "close time"},
		{"close before open", func(c *RulesConfig) { c.Close = "09:00" }, "close time"},
		{"close equals open", func(c *RulesConfig) { c.Close = "09:30" }, "close time"},
		{"weekend index too high", func(c *RulesConfig) { c.Weekends = []int{7} }, "weekend day"},
		{"weekend index negative", func(c *RulesConfig) { c.Weekends = []int{-1} }, "weekend day"},
		{"bad holiday", func(c *RulesConfig) { c.Holidays = []string{"31.13"} }, "holiday"},
		{"all weekends", func(c *RulesConfig) { c.Weekends = []int{0, 1, 2, 3, 4, 5, 6} }, "calendar"},
		{
			"week-long closure",
			func(c *RulesConfig) { c.Holidays = []string{"01.06", "02.06", "03.06", "04.06", "05.06"} },
			"calendar",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			_, err := NewCalendarRules(cfg, 2026)
			require.Error(t, err)

			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr), "expected ConfigError, got %T", err)
			assert.Equal(t, tt.field, cfgErr.Field)
			assert.Equal(t, "New_York", cfgErr.Region)
		})
	}
}

func TestNewCalendarRules_SixDayClosureAccepted(t *testing.T) {
	cfg := validConfig()
	// Sat 30.05 through Thu 04.06 in 2026
	cfg.Holidays = []string{"01.06", "02.06", "03.06", "04.06"}

	_, err := NewCalendarRules(cfg, 2026)
	assert.NoError(t, err)
}

func TestCanonicalName(t *testing.T) {
	tests := map[string]string{
		"hong_kong": "Hong_Kong",
		"HONG_KONG": "Hong_Kong",
		"UTC":       "Utc",
		"sao_paulo": "Sao_Paulo",
		" tokyo ":   "Tokyo",
		"":          "",
	}
	for in, want := range tests {
		assert.Equal(t, want, CanonicalName(in), "input %q", in)
	}
}

func TestNormalizeKey(t *testing.T) {
	assert.Equal(t, "NEW_YORK", NormalizeKey("New_York"))
	assert.Equal(t, "NEW_YORK", NormalizeKey(" new_york "))
}
