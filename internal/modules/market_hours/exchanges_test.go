package market_hours

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRules_Defaults(t *testing.T) {
	for year := 2024; year <= 2039; year++ {
		rules, err := BuildRules(year, nil)
		require.NoError(t, err, "year %d", year)
		assert.Len(t, rules, 19)
	}
}

func rulesByID(t *testing.T, year int) map[RegionID]*CalendarRules {
	t.Helper()
	rules, err := BuildRules(year, nil)
	require.NoError(t, err)
	out := make(map[RegionID]*CalendarRules, len(rules))
	for _, r := range rules {
		out[r.ID()] = r
	}
	return out
}

func TestBuildRules_MovingHolidays(t *testing.T) {
	tests := []struct {
		name    string
		year    int
		regions []RegionID
		date    Date
		holiday bool
	}{
		{"mlk day 2027", 2027, []RegionID{NewYork, Chicago}, Date{2027, time.January, 18}, true},
		{"thanksgiving 2027", 2027, []RegionID{NewYork, Chicago}, Date{2027, time.November, 25}, true},
		{"christmas observed 2027", 2027, []RegionID{NewYork, Chicago}, Date{2027, time.December, 24}, true},
		{"saturday new year not observed in december", 2027, []RegionID{NewYork}, Date{2027, time.December, 31}, false},
		{"independence day observed 2026", 2026, []RegionID{NewYork, Chicago}, Date{2026, time.July, 3}, true},
		{"day before observed independence day", 2026, []RegionID{NewYork}, Date{2026, time.July, 2}, false},
		{"thanksgiving 2026", 2026, []RegionID{NewYork}, Date{2026, time.November, 26}, true},
		{"memorial day 2027", 2027, []RegionID{NewYork, London}, Date{2027, time.May, 31}, true},
		{"uk early may bank holiday 2027", 2027, []RegionID{London}, Date{2027, time.May, 3}, true},
		{"uk christmas substitute 2027", 2027, []RegionID{London, Toronto}, Date{2027, time.December, 27}, true},
		{"uk boxing day substitute 2027", 2027, []RegionID{London, Toronto}, Date{2027, time.December, 28}, true},
		{"victoria day 2027", 2027, []RegionID{Toronto}, Date{2027, time.May, 24}, true},
		{"canada day substitute 2028", 2028, []RegionID{Toronto}, Date{2028, time.July, 3}, true},
		{"lunar new year 2027", 2027, []RegionID{HongKong, Shanghai}, Date{2027, time.February, 8}, true},
		{"lunar new year 2026", 2026, []RegionID{Singapore, HongKong, Shanghai}, Date{2026, time.February, 18}, true},
		{"sports day 2027", 2027, []RegionID{Tokyo}, Date{2027, time.October, 11}, true},
	}

	cache := map[int]map[RegionID]*CalendarRules{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			byID, ok := cache[tt.year]
			if !ok {
				byID = rulesByID(t, tt.year)
				cache[tt.year] = byID
			}
			for _, id := range tt.regions {
				assert.Equal(t, tt.holiday, byID[id].IsHoliday(tt.date), "%s %s", id, tt.date)
			}
		})
	}
}

func TestBuildRules_RegionDetails(t *testing.T) {
	rules, err := BuildRules(2026, nil)
	require.NoError(t, err)

	byKey := map[string]*CalendarRules{}
	for _, r := range rules {
		byKey[r.Key()] = r
	}

	saudi := byKey["SAUDI"]
	require.NotNil(t, saudi)
	assert.Equal(t, "TADAWUL Riyadh", saudi.Exchange())
	assert.Equal(t, []int{int(time.Friday), int(time.Saturday)}, saudi.Weekends().Indices())

	utc := byKey["UTC"]
	require.NotNil(t, utc)
	assert.Equal(t, "Utc", utc.Name())
	assert.Equal(t, 0, utc.Weekends().Len())
	assert.Empty(t, utc.Holidays())

	hk := byKey["HONG_KONG"]
	require.NotNil(t, hk)
	assert.Equal(t, "Hong_Kong", hk.Name())
	assert.Equal(t, "Asia/Hong_Kong", hk.Timezone())
}

func TestBuildRules_Overrides(t *testing.T) {
	overrides := []RulesConfig{
		{ID: "dubai", Weekends: []int{5, 6}, Holidays: []string{"01.01"}},
		{ID: Tokyo, Close: "15:30"},
	}

	rules, err := BuildRules(2026, overrides)
	require.NoError(t, err)

	for _, r := range rules {
		switch r.ID() {
		case Dubai:
			assert.Equal(t, []int{5, 6}, r.Weekends().Indices())
			assert.Len(t, r.Holidays(), 2)
			assert.Equal(t, "DFM Dubai", r.Exchange())
		case Tokyo:
			assert.Equal(t, TimeOfDay{15, 30}, r.CloseTime())
			assert.Equal(t, TimeOfDay{9, 0}, r.OpenTime())
		}
	}
}

func TestBuildRules_OverrideErrors(t *testing.T) {
	_, err := BuildRules(2026, []RulesConfig{{ID: "ATLANTIS"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRegionNotFound)

	_, err = BuildRules(2026, []RulesConfig{
		{ID: London, Timezone: "Nowhere/Land"},
		{ID: Tokyo, Holidays: []string{"not-a-date"}},
	})
	require.Error(t, err)
	var cfgErr *ConfigError
	assert.True(t, errors.As(err, &cfgErr))
	assert.Contains(t, err.Error(), "London")
	assert.Contains(t, err.Error(), "Tokyo")
}

func TestDefaultRulesConfig_ReturnsCopy(t *testing.T) {
	first := DefaultRulesConfig()
	first[0].Holidays[0] = "mutated"

	second := DefaultRulesConfig()
	assert.NotEqual(t, "mutated", second[0].Holidays[0])
}

func TestParseRegionID(t *testing.T) {
	id, err := ParseRegionID("sao_paulo")
	require.NoError(t, err)
	assert.Equal(t, SaoPaulo, id)

	_, err = ParseRegionID("paris")
	assert.ErrorIs(t, err, ErrRegionNotFound)
}
