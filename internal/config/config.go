package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Env variable names.
const (
	EnvSpreadsheetID = "SPREADSHEET_ID"
	EnvSheetsCreds   = "GOOGLE_SHEETS_CREDENTIALS"
	EnvOpenAIKey     = "OPENAI_API_KEY"
)

// Tabs names the spreadsheet tabs the pipeline reads and writes.
type Tabs struct {
	Events string `yaml:"events"`
	Trucks string `yaml:"trucks"`
	Venues string `yaml:"venues"`
}

// Config is the full runtime configuration.
type Config struct {
	// Secrets, environment only.
	SpreadsheetID string `yaml:"-"`
	SheetsCreds   []byte `yaml:"-"`
	OpenAIKey     string `yaml:"-"`

	Model          string `yaml:"model"`
	LogFile        string `yaml:"log_file"`
	LocalStorePath string `yaml:"local_store_path"`
	Tabs           Tabs   `yaml:"tabs"`

	// NavigationTimeoutRaw holds the file value; NavigationTimeout is the
	// parsed result.
	NavigationTimeoutRaw string        `yaml:"navigation_timeout"`
	NavigationTimeout    time.Duration `yaml:"-"`

	MaxSources int `yaml:"max_sources"`
}

func defaults() Config {
	return Config{
		Model:             "gpt-4o-mini",
		LogFile:           "foodie-events.log",
		LocalStorePath:    "foodie-events.db",
		Tabs:              Tabs{Events: "Events", Trucks: "Trucks", Venues: "Venues"},
		NavigationTimeout: 25 * time.Second,
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// path, and the environment. When dryRun is set the spreadsheet secrets
// may be absent; the extraction key is always required.
func Load(path string, dryRun bool) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	cfg.OpenAIKey = os.Getenv(EnvOpenAIKey)
	if cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("%s is not set", EnvOpenAIKey)
	}

	cfg.SpreadsheetID = os.Getenv(EnvSpreadsheetID)
	if creds := os.Getenv(EnvSheetsCreds); creds != "" {
		cfg.SheetsCreds = []byte(creds)
	}
	if !dryRun {
		if cfg.SpreadsheetID == "" {
			return nil, fmt.Errorf("%s is not set", EnvSpreadsheetID)
		}
		if len(cfg.SheetsCreds) == 0 {
			return nil, fmt.Errorf("%s is not set", EnvSheetsCreds)
		}
	}

	if cfg.NavigationTimeoutRaw != "" {
		d, err := time.ParseDuration(cfg.NavigationTimeoutRaw)
		if err != nil {
			return nil, fmt.Errorf("parsing navigation_timeout: %w", err)
		}
		cfg.NavigationTimeout = d
	}
	if cfg.NavigationTimeout <= 0 {
		return nil, fmt.Errorf("navigation_timeout must be positive, got %s", cfg.NavigationTimeout)
	}
	if cfg.MaxSources < 0 {
		return nil, fmt.Errorf("max_sources must not be negative, got %d", cfg.MaxSources)
	}

	return &cfg, nil
}
