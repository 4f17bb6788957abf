package market_hours

import (
	"time"

	"github.com/hako/durafmt"
)

// DurationWords renders d as words down to minutes, e.g. "2 days 17 hours".
// Durations under a minute render as "0 minutes".
func DurationWords(d time.Duration) string {
	d = d.Truncate(time.Minute)
	if d <= 0 {
		return "0 minutes"
	}
	return durafmt.Parse(d).LimitFirstN(3).String()
}
