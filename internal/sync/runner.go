package sync

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/TobiSchelling/legisync/internal/database"
)

// Runner executes jobs in fixed dependency order, isolating failures:
// a failed job is logged and the next one still runs. Each job gets its
// own timeout so a rate-limit loop cannot stall the whole run.
type Runner struct {
	db      *database.DB
	log     *logrus.Logger
	timeout time.Duration
}

// RunSummary collects per-job results for one orchestrated run.
type RunSummary struct {
	RunID   string
	Results []*Result
}

// Failed reports whether any job failed.
func (s *RunSummary) Failed() bool {
	for _, r := range s.Results {
		if r.Err != nil {
			return true
		}
	}
	return false
}

// NewRunner creates a runner with the given per-job timeout.
func NewRunner(db *database.DB, logger *logrus.Logger, timeout time.Duration) *Runner {
	return &Runner{db: db, log: logger, timeout: timeout}
}

// Run executes the jobs in order. Every job run is recorded in the sync
// log exactly once; failed and cancelled runs keep their entity's
// watermark where it was, so the next run re-covers the same window.
func (r *Runner) Run(ctx context.Context, jobs []Job) *RunSummary {
	summary := &RunSummary{RunID: uuid.NewString()}

	for _, job := range jobs {
		entry := r.log.WithFields(logrus.Fields{"run": summary.RunID, "entity": job.Entity()})
		entry.Info("starting sync job")

		jobCtx, cancel := context.WithTimeout(ctx, r.timeout)
		started := time.Now()
		result := job.Run(jobCtx)
		cancel()

		status := database.StatusSuccess
		notes := ""
		if result.Err != nil {
			notes = result.Err.Error()
			if errors.Is(result.Err, context.Canceled) || errors.Is(result.Err, context.DeadlineExceeded) {
				status = database.StatusCancelled
			} else {
				status = database.StatusError
			}
		}

		if err := r.db.RecordRun(summary.RunID, result.Entity, result.Affected(), status, notes); err != nil {
			entry.WithError(err).Error("failed to record sync run")
		}

		entry = entry.WithField("took", time.Since(started).Round(time.Millisecond))
		if result.Err != nil {
			entry.WithError(result.Err).Error("sync job failed")
		} else {
			entry.Info("sync job finished: " + result.Summary())
		}

		summary.Results = append(summary.Results, result)
	}
	return summary
}
