package config

import (
	"fmt"
	"os"
	"strings"

	"AdapterScout/internal/coverage"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Sources struct {
		ProtocolsURL string `yaml:"protocols_url"`
		PoolsURL     string `yaml:"pools_url"`
		GitHub       struct {
			Owner string `yaml:"owner"`
			Repo  string `yaml:"repo"`
			Ref   string `yaml:"ref"`
			Token string `yaml:"token"`
		} `yaml:"github"`
	} `yaml:"sources"`
	Coverage struct {
		AdapterDir              string   `yaml:"adapter_dir"`
		IndexFiles              []string `yaml:"index_files"`
		ExcludedCategories      []string `yaml:"excluded_categories"`
		YieldRelevantCategories []string `yaml:"yield_relevant_categories"`
	} `yaml:"coverage"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
		ReportCron  string `yaml:"report_cron"`
	} `yaml:"schedule"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Report struct {
		NewListingDays int     `yaml:"new_listing_days"`
		MinTVL         float64 `yaml:"min_tvl"`
	} `yaml:"report"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies .env and environment variable overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("PROTOCOLS_URL"); v != "" {
		cfg.Sources.ProtocolsURL = v
	}
	if v := os.Getenv("POOLS_URL"); v != "" {
		cfg.Sources.PoolsURL = v
	}
	if v := os.Getenv("GITHUB_TOKEN"); v != "" {
		cfg.Sources.GitHub.Token = v
	}
	if v := os.Getenv("GITHUB_REF"); v != "" {
		cfg.Sources.GitHub.Ref = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CRON_REFRESH"); v != "" {
		cfg.Schedule.RefreshCron = v
	}
	if v, ok := os.LookupEnv("SQLITE_PATH"); ok {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("EXCLUDED_CATEGORIES"); v != "" {
		cfg.Coverage.ExcludedCategories = splitList(v)
	}

	// Defaults
	if cfg.Sources.ProtocolsURL == "" {
		cfg.Sources.ProtocolsURL = "https://api.llama.fi/protocols"
	}
	if cfg.Sources.PoolsURL == "" {
		cfg.Sources.PoolsURL = "https://yields.llama.fi/pools"
	}
	if cfg.Sources.GitHub.Owner == "" {
		cfg.Sources.GitHub.Owner = "DefiLlama"
	}
	if cfg.Sources.GitHub.Repo == "" {
		cfg.Sources.GitHub.Repo = "yield-server"
	}
	if cfg.Sources.GitHub.Ref == "" {
		cfg.Sources.GitHub.Ref = "master"
	}
	defaults := coverage.DefaultRules()
	if cfg.Coverage.AdapterDir == "" {
		cfg.Coverage.AdapterDir = defaults.AdapterDir
	}
	if len(cfg.Coverage.IndexFiles) == 0 {
		cfg.Coverage.IndexFiles = defaults.IndexFiles
	}
	if cfg.Coverage.ExcludedCategories == nil {
		cfg.Coverage.ExcludedCategories = defaults.ExcludedCategories
	}
	if cfg.Coverage.YieldRelevantCategories == nil {
		cfg.Coverage.YieldRelevantCategories = defaults.YieldRelevantCategories
	}
	if cfg.Schedule.RefreshCron == "" {
		cfg.Schedule.RefreshCron = "0 */10 * * * *"
	}
	if cfg.Schedule.ReportCron == "" {
		cfg.Schedule.ReportCron = "0 0 9 * * *"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Report.NewListingDays == 0 {
		cfg.Report.NewListingDays = 7
	}
	if cfg.Database.SQLitePath == "" {
		if _, set := os.LookupEnv("SQLITE_PATH"); !set {
			cfg.Database.SQLitePath = "data/adapterscout.db"
		}
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Rules builds the coverage rules from the configuration.
func (c *Config) Rules() coverage.Rules {
	return coverage.Rules{
		AdapterDir:              c.Coverage.AdapterDir,
		IndexFiles:              c.Coverage.IndexFiles,
		ExcludedCategories:      c.Coverage.ExcludedCategories,
		YieldRelevantCategories: c.Coverage.YieldRelevantCategories,
	}
}

// TelegramEnabled reports whether both Telegram credentials are set.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Sources.GitHub.Owner == "" || c.Sources.GitHub.Repo == "" {
		return fmt.Errorf("sources.github.owner and sources.github.repo are required")
	}
	if strings.Trim(c.Coverage.AdapterDir, "/") == "" {
		return fmt.Errorf("coverage.adapter_dir is required")
	}
	for _, cat := range c.Coverage.ExcludedCategories {
		if strings.TrimSpace(cat) == "" {
			return fmt.Errorf("coverage.excluded_categories must not contain empty entries")
		}
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	if c.Report.MinTVL < 0 {
		return fmt.Errorf("report.min_tvl must not be negative")
	}
	if c.Report.NewListingDays < 0 {
		return fmt.Errorf("report.new_listing_days must not be negative")
	}
	return nil
}
