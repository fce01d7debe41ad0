// Package config handles loading and saving gridline configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config: ~/.config/gridline/config.yaml
//   - Cache:  ~/.cache/gridline/ (table cache files)
//   - State:  ~/.local/state/gridline/ (recent files)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// UIConfig holds interactive preferences.
type UIConfig struct {
	MaxColWidth   int  `yaml:"max_col_width,omitempty"`  // Visual cell width cap
	CaseSensitive bool `yaml:"case_sensitive,omitempty"` // Default filter case sensitivity
	ShowStats     bool `yaml:"show_stats,omitempty"`     // Numeric column stats in the status bar
}

// WatchConfig controls auto-reload of the open file.
type WatchConfig struct {
	Enabled      bool          `yaml:"enabled"`
	PollInterval time.Duration `yaml:"poll_interval,omitempty"` // Used when forced into polling mode
	Debounce     time.Duration `yaml:"debounce,omitempty"`
}

// CacheConfig controls the disk-backed table cache.
type CacheConfig struct {
	Dir string        `yaml:"dir,omitempty"` // Defaults to the XDG cache dir
	TTL time.Duration `yaml:"ttl,omitempty"` // Defaults to 30m
}

// Config is the top-level configuration for gridline.
type Config struct {
	UI          UIConfig    `yaml:"ui,omitempty"`
	Watch       WatchConfig `yaml:"watch,omitempty"`
	Cache       CacheConfig `yaml:"cache,omitempty"`
	RecentFiles []string    `yaml:"recent_files,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		UI: UIConfig{
			MaxColWidth: 40,
		},
		Watch: WatchConfig{
			Enabled:      true,
			PollInterval: 2 * time.Second,
			Debounce:     200 * time.Millisecond,
		},
		Cache: CacheConfig{
			Dir: CacheDir(),
			TTL: 30 * time.Minute,
		},
	}
}

// ConfigDir returns the XDG config directory for gridline.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "gridline")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "gridline")
}

// CacheDir returns the XDG cache directory for gridline.
func CacheDir() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, "gridline")
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "gridline")
}

// StateDir returns the XDG state directory for gridline.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "gridline")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "gridline")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Cache.Dir == "" {
		cfg.Cache.Dir = CacheDir()
	}
	cfg.Cache.Dir = expandHome(cfg.Cache.Dir)
	if cfg.Cache.TTL <= 0 {
		cfg.Cache.TTL = 30 * time.Minute
	}
	for i := range cfg.RecentFiles {
		cfg.RecentFiles[i] = expandHome(cfg.RecentFiles[i])
	}

	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// RememberFile prepends path to the recent-files list, dropping duplicates
// and capping the list at ten entries.
func (c *Config) RememberFile(path string) {
	out := []string{path}
	for _, p := range c.RecentFiles {
		if p != path {
			out = append(out, p)
		}
	}
	if len(out) > 10 {
		out = out[:10]
	}
	c.RecentFiles = out
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
