package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kalletarpila/osakedata-web-viewer/internal/model"
)

// Config holds all application configuration. It is built once in cmd and
// injected into every component; nothing reads paths from package state.
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Database struct {
		OsakedataPath string `yaml:"osakedata_path"`
		AnalysisPath  string `yaml:"analysis_path"`
	} `yaml:"database"`
	Importer struct {
		TickerFile  string        `yaml:"ticker_file"`
		CSVFile     string        `yaml:"csv_file"`
		FetchStart  string        `yaml:"fetch_start"` // YYYY-MM-DD
		FetchEnd    string        `yaml:"fetch_end"`   // YYYY-MM-DD
		TickerDelay time.Duration `yaml:"ticker_delay"`
		BlockDelay  time.Duration `yaml:"block_delay"`
		BlockSize   int           `yaml:"block_size"`
		CommitEvery int           `yaml:"commit_every"`
	} `yaml:"importer"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

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
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("OSAKEDATA_DB_PATH"); v != "" {
		cfg.Database.OsakedataPath = v
	}
	if v := os.Getenv("ANALYSIS_DB_PATH"); v != "" {
		cfg.Database.AnalysisPath = v
	}
	if v := os.Getenv("TICKER_FILE"); v != "" {
		cfg.Importer.TickerFile = v
	}
	if v := os.Getenv("CSV_FILE"); v != "" {
		cfg.Importer.CSVFile = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	// Defaults
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":5000"
	}
	if cfg.Database.OsakedataPath == "" {
		cfg.Database.OsakedataPath = "data/osakedata.db"
	}
	if cfg.Database.AnalysisPath == "" {
		cfg.Database.AnalysisPath = "data/analysis.db"
	}
	if cfg.Importer.TickerFile == "" {
		cfg.Importer.TickerFile = "data/osakkeet.txt"
	}
	if cfg.Importer.CSVFile == "" {
		cfg.Importer.CSVFile = "data/osakedata.csv"
	}
	if cfg.Importer.FetchStart == "" {
		cfg.Importer.FetchStart = "2023-07-01"
	}
	if cfg.Importer.FetchEnd == "" {
		cfg.Importer.FetchEnd = "2025-09-30"
	}
	if cfg.Importer.TickerDelay == 0 {
		cfg.Importer.TickerDelay = time.Second
	}
	if cfg.Importer.BlockDelay == 0 {
		cfg.Importer.BlockDelay = 10 * time.Second
	}
	if cfg.Importer.BlockSize == 0 {
		cfg.Importer.BlockSize = 100
	}
	if cfg.Importer.CommitEvery == 0 {
		cfg.Importer.CommitEvery = 10
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	return cfg, nil
}

// Validate checks that all required fields are usable.
func (c *Config) Validate() error {
	if c.Database.OsakedataPath == "" {
		return fmt.Errorf("database.osakedata_path is required")
	}
	if c.Database.AnalysisPath == "" {
		return fmt.Errorf("database.analysis_path is required")
	}
	if _, err := time.Parse(model.DateLayout, c.Importer.FetchStart); err != nil {
		return fmt.Errorf("importer.fetch_start: %w", err)
	}
	if _, err := time.Parse(model.DateLayout, c.Importer.FetchEnd); err != nil {
		return fmt.Errorf("importer.fetch_end: %w", err)
	}
	if c.Importer.TickerDelay < 0 || c.Importer.BlockDelay < 0 {
		return fmt.Errorf("importer delays must not be negative")
	}
	if c.Importer.BlockSize <= 0 || c.Importer.CommitEvery <= 0 {
		return fmt.Errorf("importer.block_size and importer.commit_every must be positive")
	}
	return nil
}

// FetchWindow returns the fixed historical window used by the remote importers.
func (c *Config) FetchWindow() (start, end time.Time) {
	start, _ = time.Parse(model.DateLayout, c.Importer.FetchStart)
	end, _ = time.Parse(model.DateLayout, c.Importer.FetchEnd)
	return start, end
}
