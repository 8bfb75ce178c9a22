package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/TobiSchelling/legisync/internal/config"
	"github.com/TobiSchelling/legisync/internal/database"
	"github.com/TobiSchelling/legisync/internal/normalize"
	"github.com/TobiSchelling/legisync/internal/resolve"
)

// VotesJob walks each chamber's roll-call sequence for the current
// session and inserts every recorded position. Roll calls are numbered
// densely per session, so the walk probes numbers upward until the first
// missing document; votes already ingested or dated before the watermark
// are skipped cheaply, which keeps re-walking the sequence idempotent.
type VotesJob struct {
	db       *database.DB
	fetcher  Fetcher
	log      *logrus.Logger
	votesURL string
	congress int
	lookback time.Duration

	// now is injectable for tests; the session year comes from it.
	now func() time.Time
}

func NewVotesJob(db *database.DB, fetcher Fetcher, cfg *config.Config, logger *logrus.Logger) *VotesJob {
	return &VotesJob{
		db:       db,
		fetcher:  fetcher,
		log:      logger,
		votesURL: cfg.Sources.Legislative.VotesURL,
		congress: cfg.Sources.Legislative.Congress,
		lookback: lookbackDays(cfg.Sync.Lookback.Votes),
		now:      time.Now,
	}
}

func (j *VotesJob) Entity() string    { return EntityVotes }
func (j *VotesJob) Incremental() bool { return true }

func (j *VotesJob) Run(ctx context.Context) *Result {
	res := newResult(EntityVotes)

	since, err := j.db.LastSuccess(EntityVotes, j.lookback)
	if err != nil {
		res.Err = fmt.Errorf("reading watermark: %w", err)
		return res
	}
	cutoff := since.UTC().Format("2006-01-02")

	resolver, err := resolve.NewResolver(j.db)
	if err != nil {
		res.Err = err
		return res
	}

	year := j.now().Year()
	for _, chamber := range []string{"h", "s"} {
		if err := j.walkChamber(ctx, res, resolver, chamber, year, cutoff); err != nil {
			res.Err = err
			return res
		}
	}
	return res
}

// walkChamber fetches roll-call documents by increasing number until the
// first miss. Any fetch failure ends the walk for that chamber; the
// idempotent insert makes re-covering the range on the next run safe.
func (j *VotesJob) walkChamber(ctx context.Context, res *Result, resolver *resolve.Resolver, chamber string, year int, cutoff string) error {
	for number := 1; ; number++ {
		url := fmt.Sprintf("%s/%d/votes/%d/%s%d/data.json",
			j.votesURL, j.congress, year, chamber, number)

		body, err := j.fetcher.Get(ctx, url, nil)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			j.log.WithFields(logrus.Fields{"chamber": chamber, "last": number - 1}).
				Debug("end of roll-call sequence")
			return nil
		}

		rollCall := normalize.ParseRollCall(body)
		if rollCall == nil {
			res.skip("not_a_bill_vote")
			continue
		}
		if rollCall.Date != nil && len(*rollCall.Date) >= 10 && (*rollCall.Date)[:10] < cutoff {
			res.skip("outside_window")
			continue
		}

		billID, ok := resolver.Bill(rollCall.BillKey)
		if !ok {
			res.skip("unknown_bill")
			continue
		}

		for _, vote := range rollCall.Votes {
			politicianID, ok := resolver.Politician(vote.BioguideID)
			if !ok {
				res.skip("unknown_politician")
				continue
			}
			inserted, err := j.db.InsertVote(&database.VoteEvent{
				PoliticianID: politicianID,
				BillID:       billID,
				Date:         rollCall.Date,
				Position:     vote.Position,
				Category:     &rollCall.Category,
			})
			if err != nil {
				return fmt.Errorf("inserting vote %s%d: %w", chamber, number, err)
			}
			if inserted {
				res.Inserted++
			} else {
				res.skip("duplicate")
			}
		}
	}
}
