package market_hours

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Region identifiers. The set is closed: configuration may only refer to these.
const (
	Wellington   RegionID = "WELLINGTON"
	Sydney       RegionID = "SYDNEY"
	Tokyo        RegionID = "TOKYO"
	Singapore    RegionID = "SINGAPORE"
	HongKong     RegionID = "HONG_KONG"
	Shanghai     RegionID = "SHANGHAI"
	India        RegionID = "INDIA"
	Dubai        RegionID = "DUBAI"
	Moscow       RegionID = "MOSCOW"
	Johannesburg RegionID = "JOHANNESBURG"
	Saudi        RegionID = "SAUDI"
	London       RegionID = "LONDON"
	Swiss        RegionID = "SWISS"
	Frankfurt    RegionID = "FRANKFURT"
	SaoPaulo     RegionID = "SAO_PAULO"
	NewYork      RegionID = "NEW_YORK"
	Toronto      RegionID = "TORONTO"
	Chicago      RegionID = "CHICAGO"
	UTC          RegionID = "UTC"
)

// friday/saturday weekend used on Tadawul
var fridaySaturday = []int{int(time.Friday), int(time.Saturday)}

// NYSE calendar; a Saturday New Year is not observed on the prior 31 December
var usHolidays = []string{
	"observed:01.01",
	"nth:01:mon:3", // Martin Luther King Jr. Day
	"nth:02:mon:3", // Presidents' Day
	"easter-2",
	"last:05:mon", // Memorial Day
	"observed:19.06",
	"observed:04.07",
	"nth:09:mon:1", // Labor Day
	"nth:11:thu:4", // Thanksgiving
	"observed:25.12",
}

// defaultConfigs lists every exchange in display order (roughly by open time, east to west).
var defaultConfigs = []RulesConfig{
	{
		ID: Wellington, Name: "wellington", Exchange: "NZX Wellington", Timezone: "Pacific/Auckland",
		Open: "10:00", Close: "16:45",
		Holidays: []string{
			"substitute:01.01", "substitute:02.01", "06.02", "easter-2", "easter+1", "25.04",
			"nth:06:mon:1", "nth:10:mon:4", "substitute:25.12", "substitute:26.12",
		},
	},
	{
		ID: Sydney, Name: "sydney", Exchange: "ASX Sydney", Timezone: "Australia/Sydney",
		Open: "10:00", Close: "16:00",
		Holidays: []string{
			"substitute:01.01", "substitute:26.01", "easter-2", "easter+1", "25.04",
			"nth:06:mon:2", "substitute:25.12", "substitute:26.12",
		},
	},
	{
		ID: Tokyo, Name: "tokyo", Exchange: "JPX Tokyo", Timezone: "Asia/Tokyo",
		Open: "09:00", Close: "15:00",
		Holidays: []string{
			"01.01", "02.01", "03.01", "nth:01:mon:2", "11.02", "23.02", "20.03", "29.04",
			"03.05", "04.05", "05.05", "nth:07:mon:3", "nth:09:mon:3", "nth:10:mon:2",
			"03.11", "23.11", "31.12",
		},
	},
	{
		ID: Singapore, Name: "singapore", Exchange: "SGX Singapore", Timezone: "Asia/Singapore",
		Open: "09:00", Close: "17:00",
		Holidays: []string{"01.01", "easter-2", "01.05", "09.08", "25.12", "lunar_new_year", "lunar_new_year+1"},
	},
	{
		ID: HongKong, Name: "hong_kong", Exchange: "HKEX Hong Kong", Timezone: "Asia/Hong_Kong",
		Open: "09:30", Close: "16:00",
		Holidays: []string{
			"01.01", "easter-2", "easter+1", "01.05", "01.07", "01.10", "25.12", "26.12",
			"lunar_new_year", "lunar_new_year+1", "lunar_new_year+2",
		},
	},
	{
		ID: Shanghai, Name: "shanghai", Exchange: "SSE Shanghai", Timezone: "Asia/Shanghai",
		Open: "09:15", Close: "15:00",
		Holidays: []string{
			"01.01", "01.05", "02.05", "03.05", "01.10", "02.10", "03.10",
			"lunar_new_year", "lunar_new_year+1", "lunar_new_year+2",
		},
	},
	{
		ID: India, Name: "india", Exchange: "NSE Mumbai", Timezone: "Asia/Kolkata",
		Open: "09:15", Close: "15:30",
		Holidays: []string{"26.01", "14.04", "01.05", "15.08", "02.10", "25.12", "easter-2"},
	},
	{
		ID: Dubai, Name: "dubai", Exchange: "DFM Dubai", Timezone: "Asia/Dubai",
		Open: "10:00", Close: "13:50",
		// Eid dates follow moon sighting and are published each year
		Holidays: []string{"01.01", "02.12", "03.12", "2026-03-20"},
	},
	{
		ID: Moscow, Name: "moscow", Exchange: "MOEX Moscow", Timezone: "Europe/Moscow",
		Open: "09:30", Close: "19:00",
		Holidays: []string{
			"01.01", "02.01", "07.01", "23.02", "08.03", "01.05", "09.05", "12.06", "04.11", "31.12",
		},
	},
	{
		ID: Johannesburg, Name: "johannesburg", Exchange: "JSE Johannesburg", Timezone: "Africa/Johannesburg",
		Open: "09:00", Close: "17:00",
		Holidays: []string{
			"01.01", "21.03", "easter-2", "easter+1", "27.04", "01.05",
			"16.06", "09.08", "24.09", "16.12", "25.12", "26.12",
		},
	},
	{
		ID: Saudi, Name: "saudi", Exchange: "TADAWUL Riyadh", Timezone: "Asia/Riyadh",
		Open: "10:00", Close: "15:00",
		Weekends: fridaySaturday,
		Holidays: []string{"22.02", "23.09"},
	},
	{
		ID: London, Name: "london", Exchange: "LSE London", Timezone: "Europe/London",
		Open: "08:00", Close: "16:30",
		Holidays: []string{
			"substitute:01.01", "easter-2", "easter+1", "nth:05:mon:1", "last:05:mon", "last:08:mon",
			"substitute:25.12", "substitute:26.12",
		},
	},
	{
		ID: Swiss, Name: "swiss", Exchange: "SIX Zurich", Timezone: "Europe/Zurich",
		Open: "09:00", Close: "17:30",
		Holidays: []string{
			"01.01", "02.01", "easter-2", "easter+1", "easter+39", "easter+50",
			"01.05", "01.08", "24.12", "25.12", "26.12", "31.12",
		},
	},
	{
		ID: Frankfurt, Name: "frankfurt", Exchange: "FWB Frankfurt", Timezone: "Europe/Berlin",
		Open: "08:00", Close: "17:30",
		Holidays: []string{"01.01", "easter-2", "easter+1", "01.05", "24.12", "25.12", "26.12", "31.12"},
	},
	{
		ID: SaoPaulo, Name: "sao_paulo", Exchange: "BOVESPA Sao Paulo", Timezone: "America/Sao_Paulo",
		Open: "10:00", Close: "16:55",
		Holidays: []string{
			"01.01", "easter-48", "easter-47", "easter-2", "21.04", "01.05",
			"easter+60", "20.11", "24.12", "25.12", "31.12",
		},
	},
	{
		ID: NewYork, Name: "new_york", Exchange: "NYSE New York", Timezone: "America/New_York",
		Open: "09:30", Close: "16:00",
		Holidays: usHolidays,
	},
	{
		ID: Toronto, Name: "toronto", Exchange: "TSX Toronto", Timezone: "America/Toronto",
		Open: "09:30", Close: "16:00",
		Holidays: []string{
			"substitute:01.01", "nth:02:mon:3", "easter-2", "before:25.05:mon", "substitute:01.07",
			"nth:08:mon:1", "nth:09:mon:1", "nth:10:mon:2", "substitute:25.12", "substitute:26.12",
		},
	},
	{
		ID: Chicago, Name: "chicago", Exchange: "NYSE Chicago", Timezone: "America/Chicago",
		Open: "08:30", Close: "15:00",
		Holidays: usHolidays,
	},
	{
		ID: UTC, Name: "utc", Exchange: "UTC", Timezone: "Etc/UTC",
		Open: "00:00", Close: "23:59",
		Weekends: []int{},
		Holidays: []string{},
	},
}

// RegionIDs returns the closed set of identifiers in display order.
func RegionIDs() []RegionID {
	ids := make([]RegionID, len(defaultConfigs))
	for i, cfg := range defaultConfigs {
		ids[i] = cfg.ID
	}
	return ids
}

// ParseRegionID resolves a case-insensitive identifier.
func ParseRegionID(value string) (RegionID, error) {
	id := RegionID(NormalizeKey(value))
	for _, cfg := range defaultConfigs {
		if cfg.ID == id {
			return id, nil
		}
	}
	return "", fmt.Errorf("%q: %w", value, ErrRegionNotFound)
}

// DefaultRulesConfig returns a copy of the built-in configuration for every region.
func DefaultRulesConfig() []RulesConfig {
	out := make([]RulesConfig, len(defaultConfigs))
	for i, cfg := range defaultConfigs {
		out[i] = cloneConfig(cfg)
	}
	return out
}

// BuildRules validates the default configuration, merged with overrides, for year.
// All invalid regions are reported together.
func BuildRules(year int, overrides []RulesConfig) ([]*CalendarRules, error) {
	configs := DefaultRulesConfig()
	index := make(map[RegionID]int, len(configs))
	for i, cfg := range configs {
		index[cfg.ID] = i
	}

	for _, o := range overrides {
		id, err := ParseRegionID(string(o.ID))
		if err != nil {
			return nil, &ConfigError{Region: string(o.ID), Field: "id", Value: string(o.ID), Err: err}
		}
		i := index[id]
		configs[i] = mergeConfig(configs[i], o)
	}

	rules := make([]*CalendarRules, 0, len(configs))
	var errs []error
	for _, cfg := range configs {
		r, err := NewCalendarRules(cfg, year)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		rules = append(rules, r)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return rules, nil
}

func mergeConfig(base, o RulesConfig) RulesConfig {
	if o.Name != "" {
		base.Name = o.Name
	}
	if o.Exchange != "" {
		base.Exchange = o.Exchange
	}
	if o.Timezone != "" {
		base.Timezone = o.Timezone
	}
	if o.Open != "" {
		base.Open = o.Open
	}
	if o.Close != "" {
		base.Close = o.Close
	}
	if o.Weekends != nil {
		base.Weekends = append([]int{}, o.Weekends...)
	}
	if o.Holidays != nil {
		base.Holidays = append([]string{}, o.Holidays...)
	}
	return base
}

func cloneConfig(cfg RulesConfig) RulesConfig {
	if cfg.Weekends != nil {
		cfg.Weekends = append([]int{}, cfg.Weekends...)
	}
	if cfg.Holidays != nil {
		cfg.Holidays = append([]string{}, cfg.Holidays...)
	}
	return cfg
}

func (id RegionID) String() string {
	return strings.ToUpper(string(id))
}
