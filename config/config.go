package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/joho/godotenv"
	"github.com/rustyeddy/reflect/internal/logger"
	"github.com/rustyeddy/reflect/market"
	"github.com/rustyeddy/reflect/risk"
	"gopkg.in/yaml.v3"
)

const (
	FeedStatic = "static"
	FeedHTTP   = "http"
	FeedAlpaca = "alpaca"

	JournalMemory   = "memory"
	JournalCSV      = "csv"
	JournalSQLite   = "sqlite"
	JournalPostgres = "postgres"
)

// Environment variables that override file settings.
const (
	EnvAccountID   = "REFLECT_ACCOUNT_ID"
	EnvFeedType    = "REFLECT_FEED_TYPE"
	EnvFeedURL     = "REFLECT_FEED_URL"
	EnvJournalType = "REFLECT_JOURNAL_TYPE"
	EnvJournalDir  = "REFLECT_JOURNAL_DIR"
	EnvDBPath      = "REFLECT_DB_PATH"
	EnvLogLevel    = "REFLECT_LOG_LEVEL"
)

// Config represents the complete trading session configuration
type Config struct {
	Account AccountConfig `json:"account" yaml:"account"`
	Feed    FeedConfig    `json:"feed" yaml:"feed"`
	Journal JournalConfig `json:"journal" yaml:"journal"`
	Policy  risk.Policy   `json:"policy" yaml:"policy"`
	Log     LogConfig     `json:"log" yaml:"log"`
}

// AccountConfig contains account initialization parameters
type AccountConfig struct {
	ID          string  `json:"id" yaml:"id"`
	Currency    string  `json:"currency" yaml:"currency"`
	InitialCash float64 `json:"initial_cash" yaml:"initial_cash"`
}

// FeedConfig selects where quotes come from
type FeedConfig struct {
	Type          string             `json:"type" yaml:"type"` // static, http or alpaca
	Timeout       string             `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	BaseURL       string             `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	RatePerMinute int                `json:"rate_per_minute,omitempty" yaml:"rate_per_minute,omitempty"`
	Prices        map[string]float64 `json:"prices,omitempty" yaml:"prices,omitempty"` // static feed
}

// ParseTimeout converts the timeout string to a time.Duration. Empty means
// the market package default.
func (f FeedConfig) ParseTimeout() (time.Duration, error) {
	if f.Timeout == "" {
		return market.DefaultQuoteTimeout, nil
	}
	return time.ParseDuration(f.Timeout)
}

// JournalConfig contains journaling parameters. Postgres settings come from
// the POSTGRES_* environment variables.
type JournalConfig struct {
	Type   string `json:"type" yaml:"type"` // memory, csv, sqlite or postgres
	Dir    string `json:"dir,omitempty" yaml:"dir,omitempty"`
	DBPath string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

type LogConfig struct {
	Level string `json:"level" yaml:"level"`
}

// Load builds the session configuration: .env files are read into the
// environment, then the config file (or the defaults when path is empty),
// then REFLECT_* overrides. The result is validated.
func Load(path string, envFiles ...string) (*Config, error) {
	if err := loadEnv(envFiles...); err != nil {
		return nil, err
	}

	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = readFile(path); err != nil {
			return nil, err
		}
	}
	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// loadEnv reads .env files without overriding variables already set. A
// missing default .env is not an error.
func loadEnv(files ...string) error {
	if len(files) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}
		return nil
	}
	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("load env files: %w", err)
	}
	return nil
}

// LoadFromFile loads configuration from a file (YAML or JSON). Settings
// missing from the file keep their defaults.
func LoadFromFile(path string) (*Config, error) {
	cfg, err := readFile(path)
	if err != nil {
		return nil, err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func readFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		cfg = Default()
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}
	return cfg, nil
}

// SaveToFile saves configuration to a file (YAML for .yaml/.yml, JSON otherwise)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// ApplyEnv overrides settings from REFLECT_* environment variables.
func (c *Config) ApplyEnv() {
	set := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	set(&c.Account.ID, EnvAccountID)
	set(&c.Feed.Type, EnvFeedType)
	set(&c.Feed.BaseURL, EnvFeedURL)
	set(&c.Journal.Type, EnvJournalType)
	set(&c.Journal.Dir, EnvJournalDir)
	set(&c.Journal.DBPath, EnvDBPath)
	set(&c.Log.Level, EnvLogLevel)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Account.ID == "" {
		return fmt.Errorf("account.id is required")
	}
	if c.Account.Currency == "" {
		return fmt.Errorf("account.currency is required")
	}
	if money.GetCurrency(strings.ToUpper(c.Account.Currency)) == nil {
		return fmt.Errorf("account.currency %q is not a known currency code", c.Account.Currency)
	}
	if c.Account.InitialCash <= 0 {
		return fmt.Errorf("account.initial_cash must be positive")
	}

	switch c.Feed.Type {
	case FeedStatic:
		for sym, p := range c.Feed.Prices {
			if p <= 0 {
				return fmt.Errorf("feed.prices[%s] must be positive", sym)
			}
		}
	case FeedHTTP:
		if c.Feed.BaseURL == "" {
			return fmt.Errorf("feed.base_url required for http feed")
		}
	case FeedAlpaca:
	default:
		return fmt.Errorf("feed.type must be 'static', 'http' or 'alpaca'")
	}
	if d, err := c.Feed.ParseTimeout(); err != nil || d <= 0 {
		return fmt.Errorf("feed.timeout must be a positive duration")
	}
	if c.Feed.RatePerMinute < 0 {
		return fmt.Errorf("feed.rate_per_minute must not be negative")
	}

	switch c.Journal.Type {
	case JournalMemory, JournalPostgres:
	case JournalCSV:
		if c.Journal.Dir == "" {
			return fmt.Errorf("journal dir required for CSV type")
		}
	case JournalSQLite:
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'memory', 'csv', 'sqlite' or 'postgres'")
	}

	for name, pct := range map[string]float64{
		"max_position_pct":   c.Policy.MaxPositionPct,
		"max_order_pct":      c.Policy.MaxOrderPct,
		"max_daily_loss_pct": c.Policy.MaxDailyLossPct,
	} {
		if pct < 0 || pct > 1 {
			return fmt.Errorf("policy.%s must be between 0 and 1", name)
		}
	}

	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// Default returns a configuration with sensible defaults: a 50,000,000 won
// account priced from a static demo feed and journaled to CSV.
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			ID:          "SIM-001",
			Currency:    "KRW",
			InitialCash: 50_000_000,
		},
		Feed: FeedConfig{
			Type:    FeedStatic,
			Timeout: "5s",
			Prices: map[string]float64{
				"005930": 65000,
				"000660": 120000,
				"035420": 180000,
				"035720": 45000,
				"005380": 180000,
				"105560": 48000,
				"373220": 380000,
				"352820": 200000,
			},
		},
		Journal: JournalConfig{
			Type: JournalCSV,
			Dir:  "./journal",
		},
		Policy: risk.Policy{
			MaxPositionPct:       0.30,
			MaxOrderPct:          0.20,
			MaxDailyLossPct:      0.05,
			MemoRequiredEmotions: []string{"#fomo", "#greed", "#fear"},
		},
		Log: LogConfig{Level: "info"},
	}
}
