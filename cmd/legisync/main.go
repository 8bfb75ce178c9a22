package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/TobiSchelling/legisync/internal/config"
	"github.com/TobiSchelling/legisync/internal/database"
	"github.com/TobiSchelling/legisync/internal/embed"
	"github.com/TobiSchelling/legisync/internal/fetch"
	"github.com/TobiSchelling/legisync/internal/hydrate"
	"github.com/TobiSchelling/legisync/internal/report"
	"github.com/TobiSchelling/legisync/internal/sync"
	"github.com/TobiSchelling/legisync/internal/vecstore"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "legisync",
	Short:   "Incremental legislative data synchronization",
	Long:    "Legisync pulls bills, sponsors, votes, committees, and donations into a local database and keeps them current with watermark-driven incremental runs.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(hydrateCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("legisync", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/legisync/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to configure source URLs, API key env vars, and lookback windows.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database and sync status",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats()
		if err != nil {
			return fmt.Errorf("getting stats: %w", err)
		}

		fmt.Println("Store:")
		fmt.Printf("  Politicians: %d\n", stats.Politicians)
		fmt.Printf("  Bills: %d\n", stats.Bills)
		fmt.Printf("  Cosponsor links: %d\n", stats.Cosponsors)
		fmt.Printf("  Votes: %d\n", stats.Votes)
		fmt.Printf("  Committees: %d\n", stats.Committees)
		fmt.Printf("  Assignments: %d\n", stats.Assignments)
		fmt.Printf("  Donors: %d\n", stats.Donors)
		fmt.Printf("  Donations: %d\n", stats.Donations)
		fmt.Printf("  Sync runs logged: %d\n", stats.SyncRuns)

		runs, err := db.RecentRuns(10)
		if err != nil {
			return fmt.Errorf("reading sync log: %w", err)
		}
		if len(runs) > 0 {
			fmt.Println("\nRecent runs:")
			for _, r := range runs {
				note := ""
				if r.Notes != nil && *r.Notes != "" {
					note = " (" + *r.Notes + ")"
				}
				fmt.Printf("  %s  %-12s %-10s %d records%s\n", r.RanAt, r.Entity, r.Status, r.RecordsAffected, note)
			}
		}
		return nil
	},
}

// --- sync command ---

var syncEntities []string

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run the sync jobs: bills -> sponsors -> cosponsors -> votes -> committees -> donations",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		logger := newLogger()
		fetcher := fetch.New(logger, cfg.RateLimitCooldown(), cfg.PageDelay())

		jobs := []sync.Job{
			sync.NewBillsJob(db, fetcher, cfg, logger),
			sync.NewSponsorsJob(db, fetcher, cfg, logger),
			sync.NewCosponsorsJob(db, fetcher, cfg, logger),
			sync.NewVotesJob(db, fetcher, cfg, logger),
			sync.NewCommitteesJob(db, fetcher, cfg, logger),
			sync.NewDonationsJob(db, fetcher, cfg, logger),
		}
		jobs = filterJobs(jobs, syncEntities)
		if len(jobs) == 0 {
			return fmt.Errorf("no jobs match --only=%s", strings.Join(syncEntities, ","))
		}

		runner := sync.NewRunner(db, logger, cfg.JobTimeout())
		summary := runner.Run(context.Background(), jobs)

		for _, res := range summary.Results {
			fmt.Printf("%-12s %s\n", res.Entity, res.Summary())
		}

		stats, err := db.GetStats()
		if err != nil {
			return fmt.Errorf("getting stats: %w", err)
		}
		markdown := report.Compose(summary, stats, time.Now())
		reportPath, err := report.WriteHTML(markdown, filepath.Join(cfg.GetDataDir(), "reports"), summary.RunID)
		if err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		fmt.Printf("\nReport: %s\n", reportPath)

		if summary.Failed() {
			return fmt.Errorf("run %s finished with failed jobs", summary.RunID)
		}
		return nil
	},
}

func init() {
	syncCmd.Flags().StringSliceVar(&syncEntities, "only", nil, "Run only the named entities (e.g. bills,votes)")
}

// filterJobs keeps jobs whose entity is listed in only. An empty list
// keeps everything.
func filterJobs(jobs []sync.Job, only []string) []sync.Job {
	if len(only) == 0 {
		return jobs
	}
	wanted := make(map[string]bool, len(only))
	for _, e := range only {
		wanted[strings.ToLower(strings.TrimSpace(e))] = true
	}
	var kept []sync.Job
	for _, j := range jobs {
		if wanted[j.Entity()] {
			kept = append(kept, j)
		}
	}
	return kept
}

// --- hydrate command ---

var hydrateCmd = &cobra.Command{
	Use:   "hydrate",
	Short: "Embed bill summaries into the vector index",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		index, err := vecstore.New(db.Conn())
		if err != nil {
			return fmt.Errorf("opening vector index: %w", err)
		}

		embedder := embed.NewClient(
			strings.TrimRight(cfg.Embedding.BaseURL, "/")+"/embeddings",
			cfg.Embedding.Model,
			os.Getenv(cfg.Embedding.APIKeyEnv),
		)

		logger := newLogger()
		h := hydrate.New(db, embedder, index, cfg.Embedding.TruncationTiers, logger)
		result, err := h.Run(context.Background())
		if err != nil {
			return err
		}

		fmt.Printf("Embedded %d bills, skipped %d.\n", result.Embedded, result.Skipped)
		return nil
	},
}

func newLogger() *logrus.Logger {
	logger := logrus.New()
	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	if verbose {
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)
	return logger
}

func openDB() (*database.DB, error) {
	dataDir := cfg.GetDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, "legisync.db")
	return database.Open(dbPath)
}
