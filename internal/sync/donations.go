package sync

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/TobiSchelling/legisync/internal/config"
	"github.com/TobiSchelling/legisync/internal/database"
	"github.com/TobiSchelling/legisync/internal/normalize"
	"github.com/TobiSchelling/legisync/internal/resolve"
)

// DonationsJob downloads the current cycle's individual-contribution
// extract and streams it row by row. The extract ships as a zip archive
// holding one pipe-delimited file; row field mapping comes from the
// separately published header-definition file. Donors are created on
// first sighting, donations appended with best-effort dedup.
type DonationsJob struct {
	db        *database.DB
	fetcher   Fetcher
	log       *logrus.Logger
	bulkURL   string
	headerURL string
	tempDir   string
	lookback  time.Duration

	now func() time.Time
}

func NewDonationsJob(db *database.DB, fetcher Fetcher, cfg *config.Config, logger *logrus.Logger) *DonationsJob {
	return &DonationsJob{
		db:        db,
		fetcher:   fetcher,
		log:       logger,
		bulkURL:   cfg.Sources.Finance.BulkURL,
		headerURL: cfg.Sources.Finance.HeaderURL,
		tempDir:   filepath.Join(cfg.GetDataDir(), "tmp"),
		lookback:  lookbackDays(cfg.Sync.Lookback.Donations),
		now:       time.Now,
	}
}

func (j *DonationsJob) Entity() string    { return EntityDonations }
func (j *DonationsJob) Incremental() bool { return true }

func (j *DonationsJob) Run(ctx context.Context) *Result {
	res := newResult(EntityDonations)

	since, err := j.db.LastSuccess(EntityDonations, j.lookback)
	if err != nil {
		res.Err = fmt.Errorf("reading watermark: %w", err)
		return res
	}
	cutoff := since.UTC().Format("2006-01-02")

	headerData, err := j.fetcher.Get(ctx, j.headerURL, nil)
	if err != nil {
		res.Err = fmt.Errorf("fetching header definition: %w", err)
		return res
	}
	columns, err := normalize.ParseHeaderColumns(headerData)
	if err != nil {
		res.Err = err
		return res
	}

	cycle := electionCycle(j.now())
	archiveURL := fmt.Sprintf("%s/%d/indiv%02d.zip", j.bulkURL, cycle, cycle%100)

	extractPath, cleanup, err := j.downloadArchive(ctx, archiveURL)
	if err != nil {
		res.Err = err
		return res
	}
	defer cleanup()

	file, err := os.Open(extractPath)
	if err != nil {
		res.Err = fmt.Errorf("opening extract: %w", err)
		return res
	}
	defer file.Close()

	resolver, err := resolve.NewResolver(j.db)
	if err != nil {
		res.Err = err
		return res
	}

	reader := normalize.NewDonationReader(file, columns)
	rows := 0
	for {
		if rows%10000 == 0 && ctx.Err() != nil {
			res.Err = ctx.Err()
			return res
		}
		row, err := reader.Next()
		if err == io.EOF {
			break
		}
		rows++
		if row == nil {
			res.skip("unparseable")
			continue
		}
		if row.TransactionDate != nil && *row.TransactionDate < cutoff {
			res.skip("outside_window")
			continue
		}

		donorID, err := resolver.ResolveOrCreateDonor(&database.Donor{
			SourceKey:  row.DonorKey,
			Name:       &row.DonorName,
			City:       row.DonorCity,
			State:      row.DonorState,
			ZipCode:    row.DonorZip,
			Employer:   row.DonorEmployer,
			Occupation: row.DonorOccupation,
		})
		if err != nil {
			res.Err = fmt.Errorf("resolving donor: %w", err)
			return res
		}

		inserted, err := j.db.InsertDonation(&database.Donation{
			DonorID:         donorID,
			CommitteeID:     row.CommitteeID,
			Amount:          row.Amount,
			TransactionDate: row.TransactionDate,
			TransactionType: row.TransactionType,
			FilingID:        row.FilingID,
			MemoText:        row.MemoText,
		})
		if err != nil {
			res.Err = fmt.Errorf("inserting donation: %w", err)
			return res
		}
		if inserted {
			res.Inserted++
		} else {
			res.skip("duplicate")
		}
	}
	j.log.WithField("rows", rows).Info("donation extract processed")
	return res
}

// downloadArchive streams the zip to disk, extracts the delimited file it
// contains, and returns the extract path plus a cleanup func. The archive
// is spooled to a temp file because zip needs random access.
func (j *DonationsJob) downloadArchive(ctx context.Context, url string) (string, func(), error) {
	if err := os.MkdirAll(j.tempDir, 0o755); err != nil {
		return "", nil, fmt.Errorf("creating temp dir: %w", err)
	}

	stream, err := j.fetcher.GetStream(ctx, url)
	if err != nil {
		return "", nil, fmt.Errorf("downloading extract: %w", err)
	}
	defer stream.Close()

	archive, err := os.CreateTemp(j.tempDir, "indiv-*.zip")
	if err != nil {
		return "", nil, err
	}
	archivePath := archive.Name()
	if _, err := io.Copy(archive, stream); err != nil {
		archive.Close()
		os.Remove(archivePath)
		return "", nil, fmt.Errorf("spooling extract: %w", err)
	}
	archive.Close()

	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		os.Remove(archivePath)
		return "", nil, fmt.Errorf("opening archive: %w", err)
	}
	defer zr.Close()

	var entry *zip.File
	for _, f := range zr.File {
		if strings.HasSuffix(f.Name, ".txt") {
			entry = f
			break
		}
	}
	if entry == nil {
		os.Remove(archivePath)
		return "", nil, fmt.Errorf("no delimited file in archive %s", url)
	}

	src, err := entry.Open()
	if err != nil {
		os.Remove(archivePath)
		return "", nil, err
	}
	defer src.Close()

	extract, err := os.CreateTemp(j.tempDir, "indiv-*.txt")
	if err != nil {
		os.Remove(archivePath)
		return "", nil, err
	}
	extractPath := extract.Name()
	if _, err := io.Copy(extract, src); err != nil {
		extract.Close()
		os.Remove(archivePath)
		os.Remove(extractPath)
		return "", nil, fmt.Errorf("extracting archive: %w", err)
	}
	extract.Close()

	cleanup := func() {
		os.Remove(archivePath)
		os.Remove(extractPath)
	}
	return extractPath, cleanup, nil
}

// electionCycle rounds up to the even year the FEC files extracts under.
func electionCycle(now time.Time) int {
	year := now.Year()
	if year%2 != 0 {
		year++
	}
	return year
}
