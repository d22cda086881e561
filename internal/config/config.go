// Package config provides configuration management for photosync.
// Configuration can live in a YAML or TOML file (chosen by extension),
// with environment variables overriding individual settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/klauern/photosync/internal/util"
)

// Config represents the complete photosync configuration.
type Config struct {
	// Index configures tree indexing behavior
	Index IndexConfig `yaml:"index" toml:"index"`

	// Backup configures backups of removed duplicates
	Backup BackupConfig `yaml:"backup" toml:"backup"`

	// Output configures display preferences
	Output OutputConfig `yaml:"output" toml:"output"`
}

// IndexConfig holds tree indexing settings.
type IndexConfig struct {
	// Ignore lists glob patterns (matched against base names) skipped
	// during the walk
	Ignore []string `yaml:"ignore" toml:"ignore"`
}

// BackupConfig holds backup settings.
type BackupConfig struct {
	// Enabled stashes a copy of every removed duplicate
	Enabled bool `yaml:"enabled" toml:"enabled"`
	// Location is the backup directory path
	Location string `yaml:"location" toml:"location"`
	// MaxEntries is the maximum number of backups to keep
	MaxEntries int `yaml:"max_entries" toml:"max_entries"`
}

// OutputConfig holds display preferences.
type OutputConfig struct {
	// Format is the default plan output format (table, json, yaml)
	Format string `yaml:"format" toml:"format"`
	// Color controls color output (auto, never)
	Color string `yaml:"color" toml:"color"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Index: IndexConfig{
			Ignore: []string{".DS_Store", "Thumbs.db", "*.tmp"},
		},
		Backup: BackupConfig{
			Enabled:    true,
			Location:   util.BackupsPath(),
			MaxEntries: 100,
		},
		Output: OutputConfig{
			Format: "table",
			Color:  "auto",
		},
	}
}

// Load reads the config file at path, merging it over the defaults.
// The parser is chosen by extension: .toml uses TOML, anything else YAML.
func Load(path string) (*Config, error) {
	// #nosec G304 - path is the user's own config file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	cfg := Default()
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse TOML config %q: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config %q: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// LoadDefault looks for a config file in the photosync config directory
// (config.yaml, config.yml, then config.toml) and falls back to the
// defaults when none exists.
func LoadDefault() (*Config, error) {
	dir := util.ConfigDir()
	for _, name := range []string{"config.yaml", "config.yml", "config.toml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}

	cfg := Default()
	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overrides individual settings from the environment.
func (c *Config) applyEnv() {
	if v := os.Getenv("PHOTOSYNC_BACKUP_DIR"); v != "" {
		c.Backup.Location = v
	}
	if v := os.Getenv("PHOTOSYNC_BACKUP_MAX"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Backup.MaxEntries = n
		}
	}
	if v := os.Getenv("PHOTOSYNC_FORMAT"); v != "" {
		c.Output.Format = v
	}
}
