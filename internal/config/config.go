// # internal/config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	ScanPaths []string  `toml:"scan_paths"`
	Exclude   Exclude   `toml:"exclude"`
	Drift     Drift     `toml:"drift"`
	Assistant Assistant `toml:"assistant"`
	Cache     Cache     `toml:"cache"`
	Watch     Watch     `toml:"watch"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

type Drift struct {
	CommitLimit int `toml:"commit_limit"`
	SinceDays   int `toml:"since_days"` // 0 means no lower bound
}

type Assistant struct {
	Enabled           bool          `toml:"enabled"`
	Command           string        `toml:"command"`
	Args              []string      `toml:"args"`
	Timeout           time.Duration `toml:"timeout"`
	RequestsPerMinute int           `toml:"requests_per_minute"`
}

type Cache struct {
	Path string `toml:"path"`
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
}

// Default returns the configuration used when no config file is present.
func Default() *Config {
	return &Config{
		ScanPaths: []string{"."},
		Exclude: Exclude{
			Dirs: []string{"node_modules", ".git", "vendor", "__pycache__", "dist", "build"},
		},
		Drift: Drift{
			CommitLimit: 20,
		},
		Assistant: Assistant{
			Timeout:           30 * time.Second,
			RequestsPerMinute: 10,
		},
		Cache: Cache{
			Path: ".docwatch/cache.db",
		},
		Watch: Watch{
			Debounce: 500 * time.Millisecond,
		},
	}
}

// Load reads a TOML config file and fills unset fields with defaults. An
// empty path or a missing file yields the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if len(cfg.ScanPaths) == 0 {
		cfg.ScanPaths = []string{"."}
	}
	if cfg.Drift.CommitLimit <= 0 {
		cfg.Drift.CommitLimit = 20
	}
	if cfg.Assistant.Timeout <= 0 {
		cfg.Assistant.Timeout = 30 * time.Second
	}
	if cfg.Assistant.RequestsPerMinute <= 0 {
		cfg.Assistant.RequestsPerMinute = 10
	}
	if cfg.Watch.Debounce <= 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if cfg.Cache.Path == "" {
		cfg.Cache.Path = ".docwatch/cache.db"
	}

	return cfg, nil
}
