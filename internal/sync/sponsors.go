package sync

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/TobiSchelling/legisync/internal/config"
	"github.com/TobiSchelling/legisync/internal/database"
	"github.com/TobiSchelling/legisync/internal/normalize"
	"github.com/TobiSchelling/legisync/internal/resolve"
)

// SponsorsJob backfills sponsor references, introduced dates and summary
// text from the per-bill status documents. It is driven by the set of
// bills still missing a sponsor or summary rather than a time window, so
// a document that was missing last run is retried until it appears.
type SponsorsJob struct {
	db        *database.DB
	fetcher   Fetcher
	log       *logrus.Logger
	statusURL string
	congress  int
}

func NewSponsorsJob(db *database.DB, fetcher Fetcher, cfg *config.Config, logger *logrus.Logger) *SponsorsJob {
	return &SponsorsJob{
		db:        db,
		fetcher:   fetcher,
		log:       logger,
		statusURL: cfg.Sources.Legislative.StatusURL,
		congress:  cfg.Sources.Legislative.Congress,
	}
}

func (j *SponsorsJob) Entity() string    { return EntitySponsors }
func (j *SponsorsJob) Incremental() bool { return false }

func (j *SponsorsJob) Run(ctx context.Context) *Result {
	res := newResult(EntitySponsors)

	resolver, err := resolve.NewResolver(j.db)
	if err != nil {
		res.Err = err
		return res
	}

	bills, err := j.db.GetBillsWithoutSponsor(j.congress)
	if err != nil {
		res.Err = fmt.Errorf("loading bills without sponsor: %w", err)
		return res
	}
	j.log.WithField("bills", len(bills)).Info("backfilling bill sponsors")

	seen := make(map[int64]bool, len(bills))
	for i := range bills {
		bill := &bills[i]
		seen[bill.ID] = true

		body, err := fetchBillStatus(ctx, j.fetcher, j.statusURL, bill)
		if err != nil {
			res.Err = err
			return res
		}
		if body == nil {
			res.skip("document_unavailable")
			continue
		}

		status := normalize.ParseBillStatus(body)
		if status == nil {
			res.skip("unparseable")
			continue
		}

		var sponsorID *int64
		if status.SponsorBioguide != nil {
			if id, ok := resolver.Politician(*status.SponsorBioguide); ok {
				sponsorID = &id
			} else {
				res.skip("unknown_sponsor")
			}
		} else {
			res.skip("no_sponsor_listed")
		}

		if sponsorID != nil || status.IntroducedDate != nil {
			if err := j.db.SetBillSponsor(bill.ID, sponsorID, status.IntroducedDate); err != nil {
				res.Err = fmt.Errorf("patching bill %s: %w", bill.OfficialNumber, err)
				return res
			}
		}
		if status.Summary != nil && bill.Summary == nil {
			if err := j.db.SetBillSummary(bill.ID, *status.Summary); err != nil {
				res.Err = fmt.Errorf("storing summary for %s: %w", bill.OfficialNumber, err)
				return res
			}
		}
		if sponsorID != nil {
			res.Updated++
		}
	}

	if err := j.backfillSummaries(ctx, seen, res); err != nil {
		res.Err = err
	}
	return res
}

// backfillSummaries covers bills that resolved their sponsor in an
// earlier run but whose status document had no summary yet. Summaries
// publish days after introduction, so these are retried every run.
func (j *SponsorsJob) backfillSummaries(ctx context.Context, seen map[int64]bool, res *Result) error {
	bills, err := j.db.GetBillsWithoutSummaries(j.congress)
	if err != nil {
		return fmt.Errorf("loading bills without summaries: %w", err)
	}

	for i := range bills {
		bill := &bills[i]
		if seen[bill.ID] {
			continue
		}

		body, err := fetchBillStatus(ctx, j.fetcher, j.statusURL, bill)
		if err != nil {
			return err
		}
		if body == nil {
			res.skip("document_unavailable")
			continue
		}

		status := normalize.ParseBillStatus(body)
		if status == nil {
			res.skip("unparseable")
			continue
		}
		if status.Summary == nil {
			res.skip("no_summary_yet")
			continue
		}

		if err := j.db.SetBillSummary(bill.ID, *status.Summary); err != nil {
			return fmt.Errorf("storing summary for %s: %w", bill.OfficialNumber, err)
		}
		res.Updated++
	}
	return nil
}
