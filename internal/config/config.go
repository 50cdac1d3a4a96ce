package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const appName = "reconcile"

type Config struct {
	ScanRoot string `koanf:"scan_root"` // default library to scan
	DestRoot string `koanf:"dest_root"` // destination root for renames

	// MusicBrainz settings
	MusicBrainz MusicBrainzConfig `koanf:"musicbrainz"`

	// Provider response cache
	Cache CacheConfig `koanf:"cache"`

	// Matching pass settings
	Matching MatchingConfig `koanf:"matching"`

	// Rename execution settings
	Rename RenameConfig `koanf:"rename"`

	Log LogConfig `koanf:"log"`
}

// MusicBrainzConfig holds MusicBrainz-related configuration.
type MusicBrainzConfig struct {
	UserAgent         string  `koanf:"user_agent"`          // sent with every request
	BaseURL           string  `koanf:"base_url"`            // e.g. a local mirror
	RequestsPerSecond float64 `koanf:"requests_per_second"` // shared by all workers (default: 1)
	SearchLimit       int     `koanf:"search_limit"`        // candidates per search (1-100, default: 10)
}

// CacheConfig holds the provider response cache configuration.
type CacheConfig struct {
	Path     string `koanf:"path"`     // SQLite file (default: $XDG_DATA_HOME/reconcile/cache.db)
	TTLDays  int    `koanf:"ttl_days"` // entry lifetime (default: 30)
	Disabled bool   `koanf:"disabled"`
}

// MatchingConfig holds the matcher configuration.
type MatchingConfig struct {
	Workers     int `koanf:"workers"`      // concurrent searches per phase (1-8, default: 1)
	MaxVariants int `koanf:"max_variants"` // alternate-script retries per unit (0 = all)
}

// RenameConfig holds the rename executor configuration.
type RenameConfig struct {
	CleanupEmptyDirs *bool `koanf:"cleanup_empty_dirs"` // remove emptied source folders (default: true)
	MaxCleanupDepth  int   `koanf:"max_cleanup_depth"`  // ancestors visited per folder (default: 8)
	WriteTags        bool  `koanf:"write_tags"`         // write corrected tags after renaming
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `koanf:"level"` // debug, info, warn, error (default: info)
	File  string `koanf:"file"`  // rotated log file (default: $XDG_STATE_HOME/reconcile/reconcile.log)
}

// Load reads the user config then ./config.toml, the last one winning.
func Load() (*Config, error) {
	return LoadFrom(getConfigPaths()...)
}

// LoadFrom reads the given TOML files in order; missing files are skipped.
func LoadFrom(paths ...string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	cfg.ScanRoot = expandPath(cfg.ScanRoot)
	cfg.DestRoot = expandPath(cfg.DestRoot)
	cfg.Cache.Path = expandPath(cfg.Cache.Path)
	cfg.Log.File = expandPath(cfg.Log.File)

	// Normalize base URL (remove trailing slash)
	cfg.MusicBrainz.BaseURL = strings.TrimSuffix(cfg.MusicBrainz.BaseURL, "/")

	return cfg, nil
}

func getConfigPaths() []string {
	return []string{
		// 1. $XDG_CONFIG_HOME/reconcile/config.toml
		filepath.Join(xdg.ConfigHome, appName, "config.toml"),
		// 2. ./config.toml (pwd, highest priority)
		"config.toml",
	}
}

func expandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// GetMusicBrainzConfig returns the MusicBrainz configuration with defaults applied.
func (c *Config) GetMusicBrainzConfig() MusicBrainzConfig {
	cfg := c.MusicBrainz

	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 1
	}
	if cfg.SearchLimit <= 0 || cfg.SearchLimit > 100 {
		cfg.SearchLimit = 10
	}

	return cfg
}

// GetCacheConfig returns the cache configuration with defaults applied.
func (c *Config) GetCacheConfig() CacheConfig {
	cfg := c.Cache

	if cfg.Path == "" {
		cfg.Path = filepath.Join(xdg.DataHome, appName, "cache.db")
	}
	if cfg.TTLDays <= 0 {
		cfg.TTLDays = 30
	}

	return cfg
}

// GetMatchingConfig returns the matching configuration with defaults applied.
func (c *Config) GetMatchingConfig() MatchingConfig {
	cfg := c.Matching

	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Workers > 8 {
		cfg.Workers = 8
	}
	if cfg.MaxVariants < 0 {
		cfg.MaxVariants = 0
	}

	return cfg
}

// GetRenameConfig returns the rename configuration with defaults applied.
func (c *Config) GetRenameConfig() RenameConfig {
	cfg := c.Rename

	if cfg.CleanupEmptyDirs == nil {
		enabled := true
		cfg.CleanupEmptyDirs = &enabled
	}
	if cfg.MaxCleanupDepth <= 0 {
		cfg.MaxCleanupDepth = 8
	}

	return cfg
}

// GetLogConfig returns the logging configuration with defaults applied.
func (c *Config) GetLogConfig() LogConfig {
	cfg := c.Log

	if cfg.Level == "" {
		cfg.Level = "info"
	}
	if cfg.File == "" {
		cfg.File = filepath.Join(xdg.StateHome, appName, appName+".log")
	}

	return cfg
}
