package clientdata

import (
	"github.com/rs/zerolog"
)

// defaultGraceDays keeps expired entries around for stale fallbacks before
// the cleanup job purges them.
const defaultGraceDays = 30

// CleanupJob removes long-expired entries from the price cache.
// It is scheduled to run nightly.
type CleanupJob struct {
	repo      *Repository
	graceDays int
	log       zerolog.Logger
}

// NewCleanupJob creates a new cache cleanup job.
func NewCleanupJob(repo *Repository, log zerolog.Logger) *CleanupJob {
	return &CleanupJob{
		repo:      repo,
		graceDays: defaultGraceDays,
		log:       log.With().Str("job", "price_cache_cleanup").Logger(),
	}
}

// Run executes the cleanup job.
func (j *CleanupJob) Run() error {
	deleted, err := j.repo.DeleteExpired(j.graceDays)
	if err != nil {
		j.log.Error().Err(err).Msg("Failed to delete expired cache entries")
		return err
	}

	if deleted > 0 {
		j.log.Info().
			Int64("deleted", deleted).
			Msg("Price cache cleanup completed")
	}

	return nil
}

// Name returns the job name for scheduling and logging.
func (j *CleanupJob) Name() string {
	return "price_cache_cleanup"
}
