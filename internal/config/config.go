// Package config handles global configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/matsen/pdfcite/internal/paper"
)

// GlobalConfig represents configuration stored in
// ~/.config/pdfcite/config.yml. Every field has a working zero-value
// default; the file is optional.
type GlobalConfig struct {
	DefaultFormat     string   `yaml:"default_format,omitempty"`
	NumAuthors        int      `yaml:"num_authors,omitempty"`
	CenturyPivot      int      `yaml:"century_pivot,omitempty"`
	MaxFilenameLength int      `yaml:"max_filename_length,omitempty"`
	FallbackYear      int      `yaml:"fallback_year,omitempty"`
	DisabledBackends  []string `yaml:"disabled_backends,omitempty"`
	Workers           int      `yaml:"workers,omitempty"`
	HistoryPath       string   `yaml:"history_path,omitempty"`
}

// Defaults applied when the file is absent or a field is unset.
const (
	DefaultFormat            = string(paper.FirstSurname)
	DefaultNumAuthors        = 3
	DefaultCenturyPivot      = 68
	DefaultMaxFilenameLength = 200
	DefaultFallbackYear      = 2024
	DefaultWorkers           = 4
)

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "pdfcite"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
	// HistoryFile is the default run-history database name, stored
	// alongside the config.
	HistoryFile = "history.db"
)

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/pdfcite/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file with defaults
// applied. Returns a default config (not an error) if the file doesn't
// exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	cfg := &GlobalConfig{}
	path := GlobalConfigPath()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// defaults only
		case err != nil:
			return nil, fmt.Errorf("reading global config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing global config: %w", err)
			}
		}
	}
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	globalConfigCache = cfg
	return cfg, nil
}

// ResetGlobalConfigCache clears the cached global config. Useful for
// testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

func (c *GlobalConfig) applyDefaults() {
	if c.DefaultFormat == "" {
		c.DefaultFormat = DefaultFormat
	}
	if c.NumAuthors <= 0 {
		c.NumAuthors = DefaultNumAuthors
	}
	if c.CenturyPivot <= 0 {
		c.CenturyPivot = DefaultCenturyPivot
	}
	if c.MaxFilenameLength <= 0 {
		c.MaxFilenameLength = DefaultMaxFilenameLength
	}
	if c.FallbackYear <= 0 {
		c.FallbackYear = DefaultFallbackYear
	}
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.HistoryPath == "" {
		if p := GlobalConfigPath(); p != "" {
			c.HistoryPath = filepath.Join(filepath.Dir(p), HistoryFile)
		}
	}
	c.HistoryPath = ExpandPath(c.HistoryPath)
}

func (c *GlobalConfig) validate() error {
	if _, err := paper.ParseFormat(c.DefaultFormat); err != nil {
		return fmt.Errorf("invalid default_format in config: %w", err)
	}
	return nil
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[1:])
}
