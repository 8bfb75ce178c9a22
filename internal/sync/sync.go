// Package sync implements the incremental entity sync jobs and their
// orchestration. Each job reads its watermark, pulls whatever its source
// published since then, normalizes and resolves the records, and merges
// them idempotently; the runner records exactly one sync log entry per
// job whether it succeeded, failed, or was cancelled.
package sync

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/TobiSchelling/legisync/internal/fetch"
)

// Entity names used as sync log keys.
const (
	EntityBills      = "bills"
	EntitySponsors   = "sponsors"
	EntityCosponsors = "cosponsors"
	EntityVotes      = "votes"
	EntityCommittees = "committees"
	EntityDonations  = "donations"
)

// Fetcher is the subset of the HTTP fetch client the jobs use. Tests
// substitute an httptest-backed client.
type Fetcher interface {
	FetchAll(ctx context.Context, initialURL string, headers map[string]string, itemsKey string) ([]fetch.Page, error)
	Get(ctx context.Context, url string, headers map[string]string) ([]byte, error)
	GetStream(ctx context.Context, url string) (io.ReadCloser, error)
}

// Job is one entity sync job.
type Job interface {
	// Entity is the sync log key for this job.
	Entity() string
	// Incremental reports whether the job's source supports windowed
	// fetches. Snapshot-only sources (committee rosters) re-ingest the
	// full current state every run and cannot cover history.
	Incremental() bool
	// Run executes one sync pass. Run never panics and reports job-level
	// failure through the result, so the runner can always log the run.
	Run(ctx context.Context) *Result
}

// Result is the outcome of one job run. Per-record skips are tallied by
// reason; they never fail the job. Err marks job-level failure and
// prevents the watermark from advancing.
type Result struct {
	Entity      string
	Inserted    int
	Updated     int
	Skipped     int
	SkipReasons map[string]int
	Err         error
}

func newResult(entity string) *Result {
	return &Result{Entity: entity, SkipReasons: make(map[string]int)}
}

func (r *Result) skip(reason string) {
	r.Skipped++
	r.SkipReasons[reason]++
}

// Affected is the number of rows written.
func (r *Result) Affected() int {
	return r.Inserted + r.Updated
}

// Summary renders a one-line human-readable outcome.
func (r *Result) Summary() string {
	if r.Err != nil {
		return fmt.Sprintf("failed: %v", r.Err)
	}
	s := fmt.Sprintf("%d inserted, %d updated, %d skipped", r.Inserted, r.Updated, r.Skipped)
	if len(r.SkipReasons) > 0 {
		reasons := make([]string, 0, len(r.SkipReasons))
		for reason, count := range r.SkipReasons {
			reasons = append(reasons, fmt.Sprintf("%s=%d", reason, count))
		}
		sort.Strings(reasons)
		s += " (" + strings.Join(reasons, ", ") + ")"
	}
	return s
}
