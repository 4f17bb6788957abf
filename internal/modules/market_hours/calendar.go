package market_hours

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// lookaheadDays bounds the forward search for the next trading day.
const lookaheadDays = 7

// RulesConfig is the raw, unvalidated calendar configuration of one region.
// A nil Weekends slice selects NormalWeekend; an empty one means no weekend.
type RulesConfig struct {
	ID       RegionID `yaml:"id"`
	Name     string   `yaml:"name"`
	Exchange string   `yaml:"exchange"`
	Timezone string   `yaml:"timezone"`
	Open     string   `yaml:"open"`
	Close    string   `yaml:"close"`
	Weekends []int    `yaml:"weekends"`
	Holidays []string `yaml:"holidays"`
}

// CalendarRules is the validated, immutable trading calendar of one region.
// Its methods implement the session clock (see session.go).
type CalendarRules struct {
	id         RegionID
	name       string
	exchange   string
	location   *time.Location
	open       TimeOfDay
	close      TimeOfDay
	weekends   WeekdaySet
	holidays   []Date
	holidaySet map[Date]struct{}
	year       int
	source     RulesConfig
}

// NewCalendarRules validates cfg and normalizes year-agnostic holidays to year and year+1.
func NewCalendarRules(cfg RulesConfig, year int) (*CalendarRules, error) {
	rawName := cfg.Name
	if rawName == "" {
		rawName = string(cfg.ID)
	}
	name := CanonicalName(rawName)
	if name == "" {
		return nil, &ConfigError{Region: string(cfg.ID), Field: "name", Err: errors.New("empty name")}
	}
	fail := func(field, value string, err error) (*CalendarRules, error) {
		return nil, &ConfigError{Region: name, Field: field, Value: value, Err: err}
	}

	if cfg.Timezone == "" {
		return fail("timezone", "", errors.New("empty timezone"))
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fail("timezone", cfg.Timezone, err)
	}

	open, err := ParseTimeOfDay(cfg.Open)
	if err != nil {
		return fail("open time", cfg.Open, err)
	}
	closeAt, err := ParseTimeOfDay(cfg.Close)
	if err != nil {
		return fail("close time", cfg.Close, err)
	}
	if open.Minutes() >= closeAt.Minutes() {
		return fail("close time", cfg.Close, fmt.Errorf("must be after open time %s", open))
	}

	weekends := NormalWeekend
	if cfg.Weekends != nil {
		weekends = 0
		for _, idx := range cfg.Weekends {
			if idx < 0 || idx > 6 {
				return fail("weekend day", fmt.Sprint(idx), errors.New("must be between 0 (Sunday) and 6 (Saturday)"))
			}
			weekends |= NewWeekdaySet(time.Weekday(idx))
		}
	}

	holidays, token, err := resolveHolidays(cfg.Holidays, weekends, year, year+1)
	if err != nil {
		return fail("holiday", token, err)
	}

	exchange := cfg.Exchange
	if exchange == "" {
		exchange = name
	}

	r := &CalendarRules{
		id:         cfg.ID,
		name:       name,
		exchange:   exchange,
		location:   loc,
		open:       open,
		close:      closeAt,
		weekends:   weekends,
		holidays:   holidays,
		holidaySet: holidaySet,
		year:       year,
		source:     cfg,
	}

	if err := r.checkTradingDaysReachable(); err != nil {
		return fail("calendar", "", err)
	}

	return r, nil
}

// CanonicalName title-cases every underscore-separated segment: "hong_kong" -> "Hong_Kong".
func CanonicalName(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	parts := strings.Split(raw, "_")
	for i, p := range parts {
		parts[i] = cases.Title(language.Und).String(strings.ToLower(p))
	}
	return strings.Join(parts, "_")
}

// NormalizeKey returns the registry key for a region name.
func NormalizeKey(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// checkTradingDaysReachable rejects calendars with a closure run the lookahead cannot cross.
func (r *CalendarRules) checkTradingDaysReachable() error {
	if r.weekends.Len() == 7 {
		return errors.New("every weekday is a weekend day")
	}

	start := Date{Year: r.year, Month: time.January, Day: 1}
	end := Date{Year: r.year + 1, Month: time.December, Day: 31}
	run := 0
	for d := start; !end.Before(d); d = d.AddDays(1) {
		if r.isTradingDay(d) {
			run = 0
			continue
		}
		run++
		if run >= lookaheadDays {
			return fmt.Errorf("%d consecutive non-trading days ending %s", run, d)
		}
	}
	return nil
}

// ID returns the region identifier.
func (r *CalendarRules) ID() RegionID { return r.id }

// Name returns the canonical display name.
func (r *CalendarRules) Name() string { return r.name }

// Key returns the upper-cased registry key.
func (r *CalendarRules) Key() string { return NormalizeKey(r.name) }

// Exchange returns the exchange display label.
func (r *CalendarRules) Exchange() string { return r.exchange }

// Location returns the region's timezone.
func (r *CalendarRules) Location() *time.Location { return r.location }

// Timezone returns the IANA timezone identifier.
func (r *CalendarRules) Timezone() string { return r.location.String() }

// OpenTime returns the daily open wall-clock time.
func (r *CalendarRules) OpenTime() TimeOfDay { return r.open }

// CloseTime returns the daily close wall-clock time.
func (r *CalendarRules) CloseTime() TimeOfDay { return r.close }

// Weekends returns the weekend day set.
func (r *CalendarRules) Weekends() WeekdaySet { return r.weekends }

// Year returns the year year-agnostic holidays were normalized to.
func (r *CalendarRules) Year() int { return r.year }

// Config returns the configuration the rules were built from.
func (r *CalendarRules) Config() RulesConfig { return r.source }

// Holidays returns a copy of the sorted holiday dates.
func (r *CalendarRules) Holidays() []Date {
	out := make([]Date, len(r.holidays))
	copy(out, r.holidays)
	return out
}

// IsHoliday reports whether d is a configured holiday.
func (r *CalendarRules) IsHoliday(d Date) bool {
	_, ok := r.holidaySet[d]
	return ok
}
