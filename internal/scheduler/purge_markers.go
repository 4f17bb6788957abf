package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// MarkerPurger deletes expired dedup markers
type MarkerPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// PurgeMarkersJob removes expired alert markers from the sqlite store
type PurgeMarkersJob struct {
	store   MarkerPurger
	timeout time.Duration
	log     zerolog.Logger
}

// NewPurgeMarkersJob creates a new PurgeMarkersJob
func NewPurgeMarkersJob(store MarkerPurger, timeout time.Duration, log zerolog.Logger) *PurgeMarkersJob {
	return &PurgeMarkersJob{
		store:   store,
		timeout: timeout,
		log:     log.With().Str("job", "purge_markers").Logger(),
	}
}

// Name returns the job name
func (j *PurgeMarkersJob) Name() string {
	return "purge_markers"
}

// Run deletes expired markers
func (j *PurgeMarkersJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	removed, err := j.store.PurgeExpired(ctx)
	if err != nil {
		return err
	}

	if removed > 0 {
		j.log.Info().Int64("removed", removed).Msg("Purged expired alert markers")
	}
	return nil
}
