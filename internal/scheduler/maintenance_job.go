package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/lookout/internal/database"
	"github.com/rs/zerolog"
)

const checkTimeout = 30 * time.Second

// DatabaseMaintenanceJob checkpoints the WAL and runs an integrity quick
// check on each registered database. Long-running read services keep WAL
// files growing; a periodic TRUNCATE checkpoint keeps them bounded.
type DatabaseMaintenanceJob struct {
	databases []*database.DB
	log       zerolog.Logger
}

// NewDatabaseMaintenanceJob creates a maintenance job for the given databases
func NewDatabaseMaintenanceJob(databases []*database.DB, log zerolog.Logger) *DatabaseMaintenanceJob {
	return &DatabaseMaintenanceJob{
		databases: databases,
		log:       log.With().Str("job", "database_maintenance").Logger(),
	}
}

// Name returns the job name
func (j *DatabaseMaintenanceJob) Name() string {
	return "database_maintenance"
}

// Run checkpoints and quick-checks every database, continuing past
// individual failures and reporting the first one.
func (j *DatabaseMaintenanceJob) Run() error {
	var firstErr error

	for _, db := range j.databases {
		if err := db.WALCheckpoint("TRUNCATE"); err != nil {
			j.log.Warn().Err(err).Str("database", db.Name()).Msg("WAL checkpoint failed")
			if firstErr == nil {
				firstErr = fmt.Errorf("checkpoint %s: %w", db.Name(), err)
			}
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
		err := db.QuickCheck(ctx)
		cancel()
		if err != nil {
			j.log.Warn().Err(err).Str("database", db.Name()).Msg("Integrity quick check failed")
			if firstErr == nil {
				firstErr = fmt.Errorf("quick check %s: %w", db.Name(), err)
			}
			continue
		}

		j.log.Debug().Str("database", db.Name()).Msg("Database maintenance completed")
	}

	return firstErr
}
