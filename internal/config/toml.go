// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	DataDir     *string      `toml:"data_dir"`
	SQLitePath  *string      `toml:"sqlite_path"`
	Source      *string      `toml:"source"`
	Manifest    *string      `toml:"manifest"`
	LogLevel    *string      `toml:"log_level"`
	DefaultGame *string      `toml:"default_game"`
	Search      SearchConfig `toml:"search"`
}

// SearchConfig maps search defaults.
type SearchConfig struct {
	PageSize *int    `toml:"page_size"`
	Sort     *string `toml:"sort"`
	Order    *string `toml:"order"`
	Range    *string `toml:"range"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}

// Template is written by EnsureFile when no config exists yet.
const Template = `# drawlens configuration. Command-line flags take precedence.

# Directory holding <prefix>master.csv, <prefix>holidays.csv, ...
# data_dir = "~/.local/share/drawlens/csv"

# Read tables from an SQLite database instead ("dir" or "sqlite").
# source = "dir"
# sqlite_path = "~/.local/share/drawlens/drawlens.db"

# Extra or replacement game profiles (YAML).
# manifest = "~/.config/drawlens/games.yaml"

# log_level = "warn"
# default_game = "playwhe"

[search]
# page_size = 10
# sort = "date"
# order = "desc"
# range = "all"
`

// EnsureFile creates path with Template unless it exists. It reports whether
// the file was created.
func EnsureFile(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to stat config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(Template), 0o644); err != nil {
		return false, fmt.Errorf("failed to write config: %w", err)
	}
	return true, nil
}
