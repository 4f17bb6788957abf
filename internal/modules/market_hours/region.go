package market_hours

import (
	"sync"
	"time"
)

// Region pairs calendar rules with the last computed session state.
// Refresh and Snapshot may be called concurrently.
type Region struct {
	mu        sync.RWMutex
	rules     *CalendarRules
	state     SessionState
	refreshed bool
}

// NewRegion creates a region that has not been refreshed yet.
func NewRegion(rules *CalendarRules) *Region {
	return &Region{rules: rules}
}

// Rules returns the current calendar rules.
func (r *Region) Rules() *CalendarRules {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rules
}

// Key returns the upper-cased registry key.
func (r *Region) Key() string {
	return r.Rules().Key()
}

// Refresh recomputes the session state at now and stores it as one unit.
func (r *Region) Refresh(now time.Time) (SessionState, error) {
	snap, err := r.refresh(now)
	if err != nil {
		return SessionState{}, err
	}
	return snap.State, nil
}

// refresh returns the snapshot of exactly the state it computed, even if a
// concurrent refresh has since replaced the stored one.
func (r *Region) refresh(now time.Time) (Snapshot, error) {
	rules := r.Rules()
	state, err := rules.State(now)
	if err != nil {
		return Snapshot{}, err
	}

	r.mu.Lock()
	// rules swapped by a concurrent rollover; the state still belongs to the old ones
	if r.rules == rules {
		r.state = state
		r.refreshed = true
	}
	r.mu.Unlock()

	return snapshotOf(rules, state, true), nil
}

// ReplaceRules swaps in new rules. The stored state is kept until the next refresh.
func (r *Region) ReplaceRules(rules *CalendarRules) {
	r.mu.Lock()
	r.rules = rules
	r.mu.Unlock()
}

// Snapshot returns a copy of the rules metadata and last state.
func (r *Region) Snapshot() Snapshot {
	r.mu.RLock()
	rules, state, refreshed := r.rules, r.state, r.refreshed
	r.mu.RUnlock()

	return snapshotOf(rules, state, refreshed)
}

func snapshotOf(rules *CalendarRules, state SessionState, refreshed bool) Snapshot {
	return Snapshot{
		ID:        rules.ID(),
		Name:      rules.Name(),
		Key:       rules.Key(),
		Exchange:  rules.Exchange(),
		Timezone:  rules.Timezone(),
		Open:      rules.OpenTime(),
		Close:     rules.CloseTime(),
		Weekends:  rules.Weekends().Indices(),
		Holidays:  rules.Holidays(),
		State:     copyState(state),
		Refreshed: refreshed,
	}
}

func copyState(s SessionState) SessionState {
	out := s
	if s.TimeToOpen != nil {
		d, secs := *s.TimeToOpen, *s.SecondsToOpen
		out.TimeToOpen, out.SecondsToOpen = &d, &secs
	}
	if s.TimeToClose != nil {
		d, secs := *s.TimeToClose, *s.SecondsToClose
		out.TimeToClose, out.SecondsToClose = &d, &secs
	}
	return out
}
