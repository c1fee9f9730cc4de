package scheduler

import (
	"github.com/rs/zerolog"
)

// QuotaResetter is satisfied by the market data client
type QuotaResetter interface {
	ResetDailyCounter()
	GetRemainingRequests() int
}

// QuotaResetJob resets the market data client's daily request budget.
// The client also rolls the counter lazily on its first request after
// midnight UTC; the scheduled reset keeps the reported quota accurate for
// idle periods.
type QuotaResetJob struct {
	client QuotaResetter
	log    zerolog.Logger
}

// NewQuotaResetJob creates a quota reset job
func NewQuotaResetJob(client QuotaResetter, log zerolog.Logger) *QuotaResetJob {
	return &QuotaResetJob{
		client: client,
		log:    log.With().Str("job", "quota_reset").Logger(),
	}
}

// Name returns the job name
func (j *QuotaResetJob) Name() string {
	return "quota_reset"
}

// Run resets the daily request counter
func (j *QuotaResetJob) Run() error {
	before := j.client.GetRemainingRequests()
	j.client.ResetDailyCounter()
	j.log.Info().Int("remaining_before_reset", before).Msg("Daily request budget reset")
	return nil
}
