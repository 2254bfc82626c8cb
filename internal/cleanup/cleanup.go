// Package cleanup runs the scheduled purge of soft-deleted expenses past the
// retention window.
package cleanup

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Purger removes soft-deleted rows older than the cutoff
type Purger interface {
	PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Job purges soft-deleted expenses on a daily schedule
type Job struct {
	purger    Purger
	retention time.Duration
	logger    zerolog.Logger
	cron      *cron.Cron
}

// NewJob creates a cleanup job with the given retention window
func NewJob(purger Purger, retentionDays int, logger zerolog.Logger) *Job {
	return &Job{
		purger:    purger,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		logger:    logger.With().Str("component", "cleanup").Logger(),
	}
}

// Start schedules the daily purge. Call Stop to shut the scheduler down.
func (j *Job) Start() error {
	j.cron = cron.New()
	if _, err := j.cron.AddFunc("@daily", j.Run); err != nil {
		return err
	}
	j.cron.Start()
	return nil
}

// Stop halts the scheduler, waiting for a running purge to finish
func (j *Job) Stop() {
	if j.cron != nil {
		<-j.cron.Stop().Done()
	}
}

// Run executes one purge pass
func (j *Job) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-j.retention)
	purged, err := j.purger.PurgeDeletedBefore(ctx, cutoff)
	if err != nil {
		j.logger.Error().Err(err).Msg("expense purge failed")
		return
	}
	j.logger.Info().Int64("purged", purged).Time("cutoff", cutoff).Msg("expense purge complete")
}
