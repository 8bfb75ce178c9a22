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

// CosponsorsJob merges cosponsorship edges for bills introduced since the
// last successful run, from the per-bill status documents. A cosponsor
// citing an unknown legislator is dropped, never inserted with a dangling
// reference.
type CosponsorsJob struct {
	db        *database.DB
	fetcher   Fetcher
	log       *logrus.Logger
	statusURL string
	congress  int
	lookback  time.Duration
}

func NewCosponsorsJob(db *database.DB, fetcher Fetcher, cfg *config.Config, logger *logrus.Logger) *CosponsorsJob {
	return &CosponsorsJob{
		db:        db,
		fetcher:   fetcher,
		log:       logger,
		statusURL: cfg.Sources.Legislative.StatusURL,
		congress:  cfg.Sources.Legislative.Congress,
		lookback:  lookbackDays(cfg.Sync.Lookback.Cosponsors),
	}
}

func (j *CosponsorsJob) Entity() string    { return EntityCosponsors }
func (j *CosponsorsJob) Incremental() bool { return true }

func (j *CosponsorsJob) Run(ctx context.Context) *Result {
	res := newResult(EntityCosponsors)

	since, err := j.db.LastSuccess(EntityCosponsors, j.lookback)
	if err != nil {
		res.Err = fmt.Errorf("reading watermark: %w", err)
		return res
	}

	resolver, err := resolve.NewResolver(j.db)
	if err != nil {
		res.Err = err
		return res
	}

	bills, err := j.db.GetBillsIntroducedSince(since.UTC().Format("2006-01-02"), j.congress)
	if err != nil {
		res.Err = fmt.Errorf("loading bills: %w", err)
		return res
	}
	j.log.WithField("bills", len(bills)).Info("syncing cosponsors")

	for i := range bills {
		bill := &bills[i]

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

		for _, cosponsor := range status.Cosponsors {
			politicianID, ok := resolver.Politician(cosponsor.BioguideID)
			if !ok {
				res.skip("unknown_politician")
				continue
			}
			inserted, err := j.db.UpsertCosponsor(&database.Cosponsorship{
				BillID:              bill.ID,
				PoliticianID:        politicianID,
				SponsorshipDate:     cosponsor.SponsorshipDate,
				IsOriginalCosponsor: cosponsor.IsOriginal,
			})
			if err != nil {
				res.Err = fmt.Errorf("upserting cosponsor on %s: %w", bill.OfficialNumber, err)
				return res
			}
			if inserted {
				res.Inserted++
			} else {
				res.Updated++
			}
		}
	}
	return res
}
