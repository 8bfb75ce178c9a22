package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Sources   Sources   `yaml:"sources"`
	Sync      Sync      `yaml:"sync"`
	Embedding Embedding `yaml:"embedding"`
	Output    Output    `yaml:"output"`
	Logging   Logging   `yaml:"logging"`
}

type Sources struct {
	Legislative Legislative `yaml:"legislative"`
	Finance     Finance     `yaml:"finance"`
	Committees  Committees  `yaml:"committees"`
}

// Legislative is the paginated bill source API plus the bulk per-bill
// status and roll-call document roots.
type Legislative struct {
	BaseURL   string `yaml:"base_url"`
	StatusURL string `yaml:"status_url"`
	VotesURL  string `yaml:"votes_url"`
	APIKeyEnv string `yaml:"api_key_env"`
	PageSize  int    `yaml:"page_size"`
	Congress  int    `yaml:"congress"`
}

// Finance is the bulk campaign-finance extract source.
type Finance struct {
	BulkURL   string `yaml:"bulk_url"`
	HeaderURL string `yaml:"header_url"`
}

// Committees is the hierarchical committee/membership manifest source.
type Committees struct {
	ManifestURL   string `yaml:"manifest_url"`
	MembershipURL string `yaml:"membership_url"`
}

type Sync struct {
	// Lookback windows per entity, in days, used when the sync log has no
	// prior successful run for that entity.
	Lookback Lookback `yaml:"lookback"`

	JobTimeoutMinutes       int `yaml:"job_timeout_minutes"`
	RateLimitCooldownSecs   int `yaml:"rate_limit_cooldown_seconds"`
	PageDelayMillis         int `yaml:"page_delay_millis"`
}

type Lookback struct {
	Bills      int `yaml:"bills"`
	Cosponsors int `yaml:"cosponsors"`
	Votes      int `yaml:"votes"`
	Donations  int `yaml:"donations"`
}

type Embedding struct {
	BaseURL   string `yaml:"base_url"`
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
	// TruncationTiers are character ceilings tried in order until the
	// embedding service accepts the input. Must be sorted descending.
	TruncationTiers []int `yaml:"truncation_tiers"`
}

type Output struct {
	DataDir string `yaml:"data_dir"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// ConfigDir returns the XDG config directory for legisync.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "legisync")
}

// DataDir returns the XDG data directory for legisync.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "legisync")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/legisync/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'legisync init' to create a default config",
		xdgConfig,
	)
}

// Load reads and parses a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Sources: Sources{
			Legislative: Legislative{
				BaseURL:   "https://api.congress.gov/v3",
				StatusURL: "https://www.govinfo.gov/bulkdata/BILLSTATUS",
				VotesURL:  "https://www.govtrack.us/data/congress",
				APIKeyEnv: "CONGRESS_API_KEY",
				PageSize:  250,
				Congress:  119,
			},
			Finance: Finance{
				BulkURL:   "https://www.fec.gov/files/bulk-downloads",
				HeaderURL: "https://www.fec.gov/files/bulk-downloads/data_dictionaries/indiv_header_file.csv",
			},
			Committees: Committees{
				ManifestURL:   "https://raw.githubusercontent.com/unitedstates/congress-legislators/master/committees-current.yaml",
				MembershipURL: "https://raw.githubusercontent.com/unitedstates/congress-legislators/master/committee-membership-current.yaml",
			},
		},
		Sync: Sync{
			Lookback: Lookback{
				Bills:      30,
				Cosponsors: 7,
				Votes:      7,
				Donations:  30,
			},
			JobTimeoutMinutes:     30,
			RateLimitCooldownSecs: 60,
			PageDelayMillis:       400,
		},
		Embedding: Embedding{
			BaseURL:         "https://api.openai.com/v1",
			Model:           "text-embedding-3-small",
			APIKeyEnv:       "OPENAI_API_KEY",
			TruncationTiers: []int{32000, 20000, 10000},
		},
		Logging: Logging{Level: "info"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if !descending(cfg.Embedding.TruncationTiers) {
		return nil, fmt.Errorf("embedding.truncation_tiers must be sorted descending")
	}

	return cfg, nil
}

func descending(tiers []int) bool {
	for i := 1; i < len(tiers); i++ {
		if tiers[i] >= tiers[i-1] {
			return false
		}
	}
	return true
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

// JobTimeout returns the per-job timeout as a duration.
func (c *Config) JobTimeout() time.Duration {
	if c.Sync.JobTimeoutMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.Sync.JobTimeoutMinutes) * time.Minute
}

// RateLimitCooldown returns the wait applied after an HTTP 429.
func (c *Config) RateLimitCooldown() time.Duration {
	if c.Sync.RateLimitCooldownSecs <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.Sync.RateLimitCooldownSecs) * time.Second
}

// PageDelay returns the pause between successive successful page fetches.
func (c *Config) PageDelay() time.Duration {
	if c.Sync.PageDelayMillis <= 0 {
		return 400 * time.Millisecond
	}
	return time.Duration(c.Sync.PageDelayMillis) * time.Millisecond
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
