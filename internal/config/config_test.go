package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir: %v", err)
	}

	for in, want := range map[string]string{
		"~":                home,
		"~/":               home,
		"~/Music/Unsorted": filepath.Join(home, "Music", "Unsorted"),
		"/srv/music":       "/srv/music",
		"music/incoming":   "music/incoming",
		"~other/music":     "~other/music",
		"":                 "",
	} {
		if got := expandPath(in); got != want {
			t.Errorf("expandPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGetConfigPaths(t *testing.T) {
	want := []string{filepath.Join(xdg.ConfigHome, "reconcile", "config.toml"), "config.toml"}
	got := getConfigPaths()
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("getConfigPaths() = %q, want %q", got, want)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("could not write config file: %v", err)
	}
	return path
}

func TestGetters_Defaults(t *testing.T) {
	cfg := &Config{}

	mb := cfg.GetMusicBrainzConfig()
	if mb.RequestsPerSecond != 1 {
		t.Errorf("RequestsPerSecond = %v, want 1", mb.RequestsPerSecond)
	}
	if mb.SearchLimit != 10 {
		t.Errorf("SearchLimit = %d, want 10", mb.SearchLimit)
	}

	cache := cfg.GetCacheConfig()
	if want := filepath.Join(xdg.DataHome, "reconcile", "cache.db"); cache.Path != want {
		t.Errorf("Cache.Path = %q, want %q", cache.Path, want)
	}
	if cache.TTLDays != 30 {
		t.Errorf("TTLDays = %d, want 30", cache.TTLDays)
	}

	m := cfg.GetMatchingConfig()
	if m.Workers != 1 {
		t.Errorf("Workers = %d, want 1", m.Workers)
	}
	if m.MaxVariants != 0 {
		t.Errorf("MaxVariants = %d, want 0", m.MaxVariants)
	}

	r := cfg.GetRenameConfig()
	if r.CleanupEmptyDirs == nil || !*r.CleanupEmptyDirs {
		t.Error("CleanupEmptyDirs should default to true")
	}
	if r.MaxCleanupDepth != 8 {
		t.Errorf("MaxCleanupDepth = %d, want 8", r.MaxCleanupDepth)
	}

	l := cfg.GetLogConfig()
	if l.Level != "info" {
		t.Errorf("Level = %q, want info", l.Level)
	}
	if want := filepath.Join(xdg.StateHome, "reconcile", "reconcile.log"); l.File != want {
		t.Errorf("Log.File = %q, want %q", l.File, want)
	}
}

func TestGetMatchingConfig_Bounds(t *testing.T) {
	tests := []struct {
		name        string
		input       MatchingConfig
		wantWorkers int
		wantMax     int
	}{
		{"in range", MatchingConfig{Workers: 4, MaxVariants: 3}, 4, 3},
		{"upper bound", MatchingConfig{Workers: 8}, 8, 0},
		{"above max", MatchingConfig{Workers: 32}, 8, 0},
		{"negative", MatchingConfig{Workers: -2, MaxVariants: -1}, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Matching: tt.input}
			got := cfg.GetMatchingConfig()
			if got.Workers != tt.wantWorkers {
				t.Errorf("Workers = %d, want %d", got.Workers, tt.wantWorkers)
			}
			if got.MaxVariants != tt.wantMax {
				t.Errorf("MaxVariants = %d, want %d", got.MaxVariants, tt.wantMax)
			}
		})
	}
}

func TestGetMusicBrainzConfig_InvalidValues(t *testing.T) {
	cfg := &Config{MusicBrainz: MusicBrainzConfig{RequestsPerSecond: -1, SearchLimit: 500}}
	got := cfg.GetMusicBrainzConfig()

	if got.RequestsPerSecond != 1 {
		t.Errorf("RequestsPerSecond = %v, want 1", got.RequestsPerSecond)
	}
	if got.SearchLimit != 10 {
		t.Errorf("SearchLimit = %d, want 10", got.SearchLimit)
	}
}

func TestLoadFrom_BasicConfig(t *testing.T) {
	path := writeConfig(t, `
scan_root = "~/incoming"
dest_root = "/music"

[musicbrainz]
user_agent = "test/1.0 (me@example.com)"
base_url = "http://mirror.local:5000/"
requests_per_second = 2.5

[cache]
ttl_days = 7

[matching]
workers = 4
max_variants = 2

[rename]
cleanup_empty_dirs = false
write_tags = true

[log]
level = "debug"
`)

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, "incoming"); cfg.ScanRoot != want {
		t.Errorf("ScanRoot = %q, want %q", cfg.ScanRoot, want)
	}
	if cfg.DestRoot != "/music" {
		t.Errorf("DestRoot = %q, want /music", cfg.DestRoot)
	}
	if cfg.MusicBrainz.BaseURL != "http://mirror.local:5000" {
		t.Errorf("BaseURL = %q, want trailing slash removed", cfg.MusicBrainz.BaseURL)
	}
	if cfg.GetMusicBrainzConfig().RequestsPerSecond != 2.5 {
		t.Errorf("RequestsPerSecond = %v, want 2.5", cfg.MusicBrainz.RequestsPerSecond)
	}
	if cfg.GetCacheConfig().TTLDays != 7 {
		t.Errorf("TTLDays = %d, want 7", cfg.Cache.TTLDays)
	}
	if m := cfg.GetMatchingConfig(); m.Workers != 4 || m.MaxVariants != 2 {
		t.Errorf("Matching = %+v, want workers 4, max_variants 2", m)
	}
	if r := cfg.GetRenameConfig(); *r.CleanupEmptyDirs || !r.WriteTags {
		t.Errorf("Rename = {cleanup %v, write_tags %v}, want {false, true}", *r.CleanupEmptyDirs, r.WriteTags)
	}
	if cfg.GetLogConfig().Level != "debug" {
		t.Errorf("Level = %q, want debug", cfg.Log.Level)
	}
}

func TestLoadFrom_LastWins(t *testing.T) {
	first := writeConfig(t, `
dest_root = "/first"
[matching]
workers = 2
`)
	second := writeConfig(t, `dest_root = "/second"`)

	cfg, err := LoadFrom(first, second, filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.DestRoot != "/second" {
		t.Errorf("DestRoot = %q, want /second", cfg.DestRoot)
	}
	if cfg.Matching.Workers != 2 {
		t.Errorf("Workers = %d, want 2 (kept from first file)", cfg.Matching.Workers)
	}
}

func TestLoad_InvalidToml(t *testing.T) {
	t.Chdir(t.TempDir())

	// Create invalid config file
	if err := os.WriteFile("config.toml", []byte("invalid = [[["), 0o600); err != nil {
		t.Fatalf("could not write config file: %v", err)
	}

	if _, err := Load(); err == nil {
		t.Error("Load() expected error for invalid TOML, got nil")
	}
}
