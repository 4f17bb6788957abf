package market_hours

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CalendarType selects the computus used for Easter-relative holidays.
type CalendarType int

const (
	// Gregorian calendar (Western)
	Gregorian CalendarType = iota
	// Julian calendar (Orthodox)
	Julian
)

const (
	easterPrefix         = "easter"
	orthodoxEasterPrefix = "orthodox_easter"
	lunarNewYearPrefix   = "lunar_new_year"
	substitutePrefix     = "substitute:"
)

// CalculateEaster returns the date of Easter Sunday for a year
func CalculateEaster(year int, calendarType CalendarType) Date {
	if calendarType == Julian {
		return calculateJulianEaster(year)
	}
	return calculateGregorianEaster(year)
}

// calculateGregorianEaster uses the anonymous Gregorian computus
func calculateGregorianEaster(year int) Date {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451

	month := (h + l - 7*m + 114) / 31
	day := ((h + l - 7*m + 114) % 31) + 1

	return Date{Year: year, Month: time.Month(month), Day: day}
}

// calculateJulianEaster computes Orthodox Easter and converts it to the Gregorian calendar.
// The 13-day offset holds for 1900-2099.
func calculateJulianEaster(year int) Date {
	a := year % 4
	b := year % 7
	c := year % 19
	d := (19*c + 15) % 30
	e := (2*a + 4*b - d + 34) % 7

	month := (d + e + 114) / 31
	day := ((d + e + 114) % 31) + 1

	return Date{Year: year, Month: time.Month(month), Day: day}.AddDays(13)
}

// resolveHoliday expands one holiday token into concrete dates for the given years.
//
// Accepted forms:
//
//	"25.12"              day.month, repeated for every year
//	"2026-11-26"         an explicit date
//	"easter-2"           offset in days from Western Easter
//	"orthodox_easter+1"
//	"lunar_new_year+1"   offset from the first day of the lunar new year
//	"nth:11:thu:4"       4th Thursday of November
//	"last:05:mon"        last Monday of May
//	"before:25.05:mon"   last Monday before 25 May
//	"observed:04.07"     Saturday moves to Friday, Sunday to Monday; dropped if that crosses a year
//	"substitute:25.12"   see resolveHolidays
func resolveHoliday(token string, years ...int) ([]Date, error) {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return nil, fmt.Errorf("empty holiday")
	}

	if kind, rest, ok := strings.Cut(token, ":"); ok {
		return ruleHoliday(kind, strings.Split(rest, ":"), years)
	}

	switch {
	case strings.HasPrefix(token, orthodoxEasterPrefix):
		return easterRelative(token[len(orthodoxEasterPrefix):], Julian, years)
	case strings.HasPrefix(token, easterPrefix):
		return easterRelative(token[len(easterPrefix):], Gregorian, years)
	case strings.HasPrefix(token, lunarNewYearPrefix):
		return lunarRelative(token[len(lunarNewYearPrefix):], years)
	case strings.Contains(token, "."):
		return dayMonth(token, years)
	default:
		t, err := time.Parse("2006-01-02", token)
		if err != nil {
			return nil, fmt.Errorf("expected DD.MM, YYYY-MM-DD, easter±N or a rule such as nth:11:thu:4")
		}
		return []Date{DateOf(t)}, nil
	}
}

// resolveHolidays expands every token for the given years and returns the
// distinct dates in ascending order. A substitute holiday that falls on a
// weekend day is moved to the next trading weekday that is not already a
// holiday, after all other holidays are placed. On error the offending token
// is returned with it.
func resolveHolidays(tokens []string, weekends WeekdaySet, years ...int) ([]Date, string, error) {
	set := make(map[Date]struct{}, len(tokens)*len(years))
	var pending []Date

	for _, token := range tokens {
		dates, err := resolveHoliday(token, years...)
		if err != nil {
			return nil, token, err
		}
		substitute := strings.HasPrefix(strings.ToLower(strings.TrimSpace(token)), substitutePrefix)
		for _, d := range dates {
			if substitute && weekends.Contains(d.Weekday()) {
				pending = append(pending, d)
				continue
			}
			set[d] = struct{}{}
		}
	}

	sortDates(pending)
	for _, d := range pending {
		moved, ok := nextFreeWeekday(d, weekends, set)
		if !ok {
			return nil, substitutePrefix + fmt.Sprintf("%02d.%02d", d.Day, int(d.Month)), fmt.Errorf("no free weekday after %s", d)
		}
		set[moved] = struct{}{}
	}

	out := make([]Date, 0, len(set))
	for d := range set {
		out = append(out, d)
	}
	sortDates(out)
	return out, "", nil
}

// nextFreeWeekday searches at most a year ahead.
func nextFreeWeekday(d Date, weekends WeekdaySet, taken map[Date]struct{}) (Date, bool) {
	for i := 0; i < 366; i++ {
		if _, busy := taken[d]; !busy && !weekends.Contains(d.Weekday()) {
			return d, true
		}
		d = d.AddDays(1)
	}
	return Date{}, false
}

func ruleHoliday(kind string, args []string, years []int) ([]Date, error) {
	switch kind {
	case "nth":
		if len(args) != 3 {
			return nil, fmt.Errorf("expected nth:MM:weekday:N")
		}
		month, err := parseMonth(args[0])
		if err != nil {
			return nil, err
		}
		weekday, err := parseWeekday(args[1])
		if err != nil {
			return nil, err
		}
		n, err := strconv.Atoi(args[2])
		if err != nil || n < 1 || n > 4 {
			return nil, fmt.Errorf("occurrence must be 1-4")
		}
		out := make([]Date, 0, len(years))
		for _, y := range years {
			out = append(out, findNthWeekday(y, month, weekday, n))
		}
		return out, nil

	case "last":
		if len(args) != 2 {
			return nil, fmt.Errorf("expected last:MM:weekday")
		}
		month, err := parseMonth(args[0])
		if err != nil {
			return nil, err
		}
		weekday, err := parseWeekday(args[1])
		if err != nil {
			return nil, err
		}
		out := make([]Date, 0, len(years))
		for _, y := range years {
			next := DateOf(time.Date(y, month+1, 1, 12, 0, 0, 0, time.UTC))
			out = append(out, findLastWeekdayBefore(next, weekday))
		}
		return out, nil

	case "before":
		if len(args) != 2 {
			return nil, fmt.Errorf("expected before:DD.MM:weekday")
		}
		anchors, err := dayMonth(args[0], years)
		if err != nil {
			return nil, err
		}
		weekday, err := parseWeekday(args[1])
		if err != nil {
			return nil, err
		}
		out := make([]Date, 0, len(anchors))
		for _, d := range anchors {
			out = append(out, findLastWeekdayBefore(d, weekday))
		}
		return out, nil

	case "observed":
		if len(args) != 1 {
			return nil, fmt.Errorf("expected observed:DD.MM")
		}
		dates, err := dayMonth(args[0], years)
		if err != nil {
			return nil, err
		}
		out := make([]Date, 0, len(dates))
		for _, d := range dates {
			if o := observeOnWeekday(d); o.Year == d.Year {
				out = append(out, o)
			}
		}
		return out, nil

	case "substitute":
		if len(args) != 1 {
			return nil, fmt.Errorf("expected substitute:DD.MM")
		}
		return dayMonth(args[0], years)

	default:
		return nil, fmt.Errorf("unknown holiday rule %q", kind)
	}
}

// findNthWeekday finds the nth occurrence of a weekday in a given month/year
func findNthWeekday(year int, month time.Month, weekday time.Weekday, n int) Date {
	first := Date{Year: year, Month: month, Day: 1}
	daysToAdd := int(weekday - first.Weekday())
	if daysToAdd < 0 {
		daysToAdd += 7
	}
	return first.AddDays(daysToAdd + (n-1)*7)
}

// findLastWeekdayBefore finds the last occurrence of weekday strictly before d
func findLastWeekdayBefore(d Date, weekday time.Weekday) Date {
	prev := d.AddDays(-1)
	daysToSubtract := int(prev.Weekday() - weekday)
	if daysToSubtract < 0 {
		daysToSubtract += 7
	}
	return prev.AddDays(-daysToSubtract)
}

// observeOnWeekday moves a date to the nearest weekday if it falls on a weekend
// Saturday -> Friday, Sunday -> Monday
func observeOnWeekday(d Date) Date {
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDays(-1)
	case time.Sunday:
		return d.AddDays(1)
	default:
		return d
	}
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

func parseWeekday(s string) (time.Weekday, error) {
	wd, ok := weekdayNames[s]
	if !ok {
		return 0, fmt.Errorf("unknown weekday %q", s)
	}
	return wd, nil
}

func parseMonth(s string) (time.Month, error) {
	m, err := strconv.Atoi(s)
	if err != nil || m < 1 || m > 12 {
		return 0, fmt.Errorf("bad month %q", s)
	}
	return time.Month(m), nil
}

// lunarNewYear holds the first day of the Chinese lunar new year.
var lunarNewYear = map[int]Date{
	2020: {2020, time.January, 25},
	2021: {2021, time.February, 12},
	2022: {2022, time.February, 1},
	2023: {2023, time.January, 22},
	2024: {2024, time.February, 10},
	2025: {2025, time.January, 29},
	2026: {2026, time.February, 17},
	2027: {2027, time.February, 6},
	2028: {2028, time.January, 26},
	2029: {2029, time.February, 13},
	2030: {2030, time.February, 3},
	2031: {2031, time.January, 23},
	2032: {2032, time.February, 11},
	2033: {2033, time.January, 31},
	2034: {2034, time.February, 19},
	2035: {2035, time.February, 8},
	2036: {2036, time.January, 28},
	2037: {2037, time.February, 15},
	2038: {2038, time.February, 4},
	2039: {2039, time.January, 24},
	2040: {2040, time.February, 12},
}

func lunarRelative(offset string, years []int) ([]Date, error) {
	days, err := parseOffset(offset)
	if err != nil {
		return nil, err
	}
	out := make([]Date, 0, len(years))
	for _, y := range years {
		d, ok := lunarNewYear[y]
		if !ok {
			return nil, fmt.Errorf("no lunar new year date for %d", y)
		}
		out = append(out, d.AddDays(days))
	}
	return out, nil
}

func parseOffset(offset string) (int, error) {
	if offset == "" {
		return 0, nil
	}
	if offset[0] != '+' && offset[0] != '-' {
		return 0, fmt.Errorf("offset must start with + or -")
	}
	n, err := strconv.Atoi(offset)
	if err != nil {
		return 0, fmt.Errorf("bad offset: %w", err)
	}
	return n, nil
}

func easterRelative(offset string, calendarType CalendarType, years []int) ([]Date, error) {
	days, err := parseOffset(offset)
	if err != nil {
		return nil, fmt.Errorf("easter %w", err)
	}

	out := make([]Date, 0, len(years))
	for _, y := range years {
		out = append(out, CalculateEaster(y, calendarType).AddDays(days))
	}
	return out, nil
}

func dayMonth(token string, years []int) ([]Date, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 2 {
		return nil, fmt.Errorf("expected DD.MM")
	}
	day, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil, fmt.Errorf("bad day: %w", err)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, fmt.Errorf("bad month: %w", err)
	}
	// validate against a leap year so 29.02 is accepted
	if month < 1 || month > 12 || day < 1 || DateOf(time.Date(2000, time.Month(month), day, 12, 0, 0, 0, time.UTC)) != (Date{Year: 2000, Month: time.Month(month), Day: day}) {
		return nil, fmt.Errorf("no such day")
	}

	out := make([]Date, 0, len(years))
	for _, y := range years {
		d := Date{Year: y, Month: time.Month(month), Day: day}
		// 29.02 only exists in leap years
		if d.AddDays(0) != d {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}
