package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds all spectrail configuration for one tracked workspace.
type Config struct {
	ArtifactRoot     string   `json:"artifact_root"`
	HistoryDir       string   `json:"history_dir"`
	RetentionCap     int      `json:"retention_cap"`
	DiffSummaryLines int      `json:"diff_summary_lines"`
	ArtifactSuffixes []string `json:"artifact_suffixes"`
	IgnorePatterns   []string `json:"ignore_patterns"`
	DebounceMS       int      `json:"debounce_ms"`
	IndexDBPath      string   `json:"index_db_path"`
}

// DataDir is the per-workspace directory holding history, index, and
// config, kept outside the artifact namespace.
const DataDir = ".spectrail"

// Default returns a Config with sensible defaults: Gherkin feature files
// under ./features, history and index under ./.spectrail.
func Default() *Config {
	return &Config{
		ArtifactRoot:     "features",
		HistoryDir:       filepath.Join(DataDir, "history"),
		RetentionCap:     50,
		DiffSummaryLines: 50,
		ArtifactSuffixes: []string{".feature"},
		IgnorePatterns: []string{
			".git",
			DataDir,
			"node_modules",
			"*.swp",
			"*.tmp",
		},
		DebounceMS:  200,
		IndexDBPath: filepath.Join(DataDir, "index.db"),
	}
}

// Load reads configuration from a JSON file, falling back to defaults for
// any unset field. A missing file is fine and yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	// Zero caps mean "default", not "keep nothing"; the on-disk record
	// format stays the same whichever way they are tuned.
	if cfg.RetentionCap <= 0 {
		cfg.RetentionCap = 50
	}
	if cfg.DiffSummaryLines <= 0 {
		cfg.DiffSummaryLines = 50
	}
	if cfg.DebounceMS <= 0 {
		cfg.DebounceMS = 200
	}

	return cfg, nil
}

// EnsureDataDir creates the directories for history and the index if they
// do not exist.
func (c *Config) EnsureDataDir() error {
	if err := os.MkdirAll(c.HistoryDir, 0755); err != nil {
		return err
	}
	return os.MkdirAll(filepath.Dir(c.IndexDBPath), 0755)
}

// ConfigPath returns the default path to the config file.
func ConfigPath() string {
	return filepath.Join(DataDir, "config.json")
}
