package sync

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/TobiSchelling/legisync/internal/config"
	"github.com/TobiSchelling/legisync/internal/database"
	"github.com/TobiSchelling/legisync/internal/fetch"
	"github.com/TobiSchelling/legisync/internal/normalize"
)

// BillsJob pulls bills introduced since the last successful run from the
// paginated legislative API and merges them on (official number, congress).
type BillsJob struct {
	db       *database.DB
	fetcher  Fetcher
	log      *logrus.Logger
	baseURL  string
	apiKey   string
	pageSize int
	congress int
	lookback time.Duration
}

// NewBillsJob creates the bills sync job. The API key is read from the
// environment variable named in the config.
func NewBillsJob(db *database.DB, fetcher Fetcher, cfg *config.Config, logger *logrus.Logger) *BillsJob {
	leg := cfg.Sources.Legislative
	return &BillsJob{
		db:       db,
		fetcher:  fetcher,
		log:      logger,
		baseURL:  leg.BaseURL,
		apiKey:   os.Getenv(leg.APIKeyEnv),
		pageSize: leg.PageSize,
		congress: leg.Congress,
		lookback: lookbackDays(cfg.Sync.Lookback.Bills),
	}
}

func (j *BillsJob) Entity() string    { return EntityBills }
func (j *BillsJob) Incremental() bool { return true }

func (j *BillsJob) Run(ctx context.Context) *Result {
	res := newResult(EntityBills)

	if j.apiKey == "" {
		res.Err = fmt.Errorf("legislative API key not set")
		return res
	}

	since, err := j.db.LastSuccess(EntityBills, j.lookback)
	if err != nil {
		res.Err = fmt.Errorf("reading watermark: %w", err)
		return res
	}

	url := fmt.Sprintf("%s/bill/%d?limit=%d&fromDateTime=%s",
		j.baseURL, j.congress, j.pageSize, since.UTC().Format("2006-01-02T15:04:05Z"))
	headers := map[string]string{"X-Api-Key": j.apiKey}

	pages, err := j.fetcher.FetchAll(ctx, url, headers, "bills")
	if err != nil {
		res.Err = fmt.Errorf("fetching bills: %w", err)
		return res
	}

	cutoff := since.UTC().Format("2006-01-02")
	for _, raw := range fetch.Items(pages) {
		rec := normalize.ParseBillListItem(raw)
		if rec == nil {
			res.skip("unparseable")
			continue
		}
		// The source applies the fromDateTime filter loosely; enforce the
		// window on our side as well.
		if rec.IntroducedDate != nil && *rec.IntroducedDate < cutoff {
			res.skip("outside_window")
			continue
		}

		inserted, err := j.db.UpsertBill(&database.Bill{
			OfficialNumber: rec.OfficialNumber,
			Congress:       rec.Congress,
			BillType:       &rec.BillType,
			Title:          rec.Title,
			Status:         rec.Status,
			DateIntroduced: rec.IntroducedDate,
		})
		if err != nil {
			res.Err = fmt.Errorf("upserting bill %s: %w", rec.OfficialNumber, err)
			return res
		}
		if inserted {
			res.Inserted++
		} else {
			res.Updated++
		}
	}
	return res
}

func lookbackDays(days int) time.Duration {
	if days <= 0 {
		days = 30
	}
	return time.Duration(days) * 24 * time.Hour
}
