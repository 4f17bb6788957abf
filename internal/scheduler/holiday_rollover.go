package scheduler

import (
	"time"

	"github.com/rs/zerolog"
)

// RulesRoller rebuilds calendar rules once a new year starts
type RulesRoller interface {
	RolloverIfNeeded(now time.Time) (bool, error)
	Year() int
}

// HolidayRolloverJob renormalizes year-agnostic holidays after New Year
type HolidayRolloverJob struct {
	registry RulesRoller
	now      func() time.Time
	log      zerolog.Logger
}

// NewHolidayRolloverJob creates a new HolidayRolloverJob
func NewHolidayRolloverJob(registry RulesRoller, log zerolog.Logger) *HolidayRolloverJob {
	return &HolidayRolloverJob{
		registry: registry,
		now:      time.Now,
		log:      log.With().Str("job", "holiday_rollover").Logger(),
	}
}

// Name returns the job name
func (j *HolidayRolloverJob) Name() string {
	return "holiday_rollover"
}

// Run rolls the rules forward when the year has changed
func (j *HolidayRolloverJob) Run() error {
	rolled, err := j.registry.RolloverIfNeeded(j.now())
	if err != nil {
		return err
	}
	if rolled {
		j.log.Info().Int("year", j.registry.Year()).Msg("Holiday calendars rolled over")
	}
	return nil
}
