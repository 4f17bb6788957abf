package market_hours

import (
	"fmt"
	"time"
)

// SessionClock answers open/closed questions for one region at a given instant.
type SessionClock interface {
	IsOpen(now time.Time) bool
	NextTradingDay(now time.Time) (Date, error)
	TimeUntilOpen(now time.Time) (time.Duration, error)
	TimeUntilClose(now time.Time) (time.Duration, error)
	State(now time.Time) (SessionState, error)
}

var _ SessionClock = (*CalendarRules)(nil)

func (r *CalendarRules) isTradingDay(d Date) bool {
	if r.weekends.Contains(d.Weekday()) {
		return false
	}
	return !r.IsHoliday(d)
}

func (r *CalendarRules) openAt(d Date) time.Time {
	return d.At(r.open, r.location)
}

func (r *CalendarRules) closeAt(d Date) time.Time {
	return d.At(r.close, r.location)
}

// IsOpen reports whether the exchange is trading at now.
// The session is the half-open interval [open, close): the close instant itself is closed.
func (r *CalendarRules) IsOpen(now time.Time) bool {
	today := DateOf(now.In(r.location))
	if !r.isTradingDay(today) {
		return false
	}
	return !now.Before(r.openAt(today)) && now.Before(r.closeAt(today))
}

// NextTradingDay returns the date of the next session that has not started yet.
// Today qualifies only when it is a trading day and now is strictly before its open.
func (r *CalendarRules) NextTradingDay(now time.Time) (Date, error) {
	today := DateOf(now.In(r.location))
	if r.isTradingDay(today) && now.Before(r.openAt(today)) {
		return today, nil
	}
	for i := 1; i <= lookaheadDays; i++ {
		d := today.AddDays(i)
		if r.isTradingDay(d) {
			return d, nil
		}
	}
	return Date{}, fmt.Errorf("%s after %s: %w", r.name, today, ErrNoTradingDay)
}

// TimeUntilOpen returns the duration until the open of the next trading day.
func (r *CalendarRules) TimeUntilOpen(now time.Time) (time.Duration, error) {
	next, err := r.NextTradingDay(now)
	if err != nil {
		return 0, err
	}
	return r.openAt(next).Sub(now), nil
}

// TimeUntilClose returns the duration until today's close while open,
// otherwise until the close of the next trading day.
func (r *CalendarRules) TimeUntilClose(now time.Time) (time.Duration, error) {
	if r.IsOpen(now) {
		return r.closeAt(DateOf(now.In(r.location))).Sub(now), nil
	}
	next, err := r.NextTradingDay(now)
	if err != nil {
		return 0, err
	}
	return r.closeAt(next).Sub(now), nil
}

// State computes the full session state at now. Only the pair relevant to the
// current state is populated; the other pair is left nil.
func (r *CalendarRules) State(now time.Time) (SessionState, error) {
	state := SessionState{
		IsOpen:     r.IsOpen(now),
		ComputedAt: now,
	}

	next, err := r.NextTradingDay(now)
	if err != nil {
		return SessionState{}, err
	}
	state.NextTradingDay = next

	if state.IsOpen {
		d, err := r.TimeUntilClose(now)
		if err != nil {
			return SessionState{}, err
		}
		state.TimeToClose, state.SecondsToClose = durationPair(d)
		return state, nil
	}

	d, err := r.TimeUntilOpen(now)
	if err != nil {
		return SessionState{}, err
	}
	state.TimeToOpen, state.SecondsToOpen = durationPair(d)
	return state, nil
}

func durationPair(d time.Duration) (*time.Duration, *int64) {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	return &d, &secs
}
