// Package config loads service settings from TOML files and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Addr    string        `koanf:"addr"`
	LogMode string        `koanf:"log_mode"` // "dev" or "prod"
	Search  SearchConfig  `koanf:"search"`
	Spotify SpotifyConfig `koanf:"spotify"`
	Storage StorageConfig `koanf:"storage"`
	Worker  WorkerConfig  `koanf:"worker"`
}

// SearchConfig controls the paginated search aggregator.
type SearchConfig struct {
	PageSize    int    `koanf:"page_size"`    // items per catalog page (1-50, default: 5)
	Dedupe      string `koanf:"dedupe"`       // "allow" or "drop" (default: "allow")
	MaxSessions int    `koanf:"max_sessions"` // live search sessions kept in memory (default: 1024)
}

// SpotifyConfig holds catalog credentials and HTTP behaviour.
type SpotifyConfig struct {
	ClientID       string `koanf:"client_id"`
	ClientSecret   string `koanf:"client_secret"`
	APIBase        string `koanf:"api_base"`
	AccountsBase   string `koanf:"accounts_base"`
	MaxRetries     int    `koanf:"max_retries"`
	RetryBackoffMs int    `koanf:"retry_backoff_ms"`
	TimeoutMs      int    `koanf:"timeout_ms"`
	ReuseToken     bool   `koanf:"reuse_token"` // cache the bearer token across searches (default: false)
}

type StorageConfig struct {
	DBPath      string `koanf:"db_path"`
	HistoryPath string `koanf:"history_path"`
}

type WorkerConfig struct {
	Workers   int `koanf:"workers"`
	QueueSize int `koanf:"queue_size"`
}

// RetryBackoff returns the base backoff as a duration.
func (s SpotifyConfig) RetryBackoff() time.Duration {
	return time.Duration(s.RetryBackoffMs) * time.Millisecond
}

// Timeout returns the per-request timeout as a duration.
func (s SpotifyConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutMs) * time.Millisecond
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Addr:    ":8080",
		LogMode: "dev",
		Search: SearchConfig{
			PageSize:    5,
			Dedupe:      "allow",
			MaxSessions: 1024,
		},
		Spotify: SpotifyConfig{
			APIBase:        "https://api.spotify.com/v1",
			AccountsBase:   "https://accounts.spotify.com",
			MaxRetries:     3,
			RetryBackoffMs: 500,
			TimeoutMs:      10000,
		},
		Storage: StorageConfig{
			DBPath:      "beatbuddies.db",
			HistoryPath: "history.db",
		},
		Worker: WorkerConfig{
			Workers:   2,
			QueueSize: 100,
		},
	}
}

// envKeys maps environment variables onto config keys.
var envKeys = map[string]string{
	"BEATBUDDIES_ADDR":         "addr",
	"LOG_MODE":                 "log_mode",
	"BEATBUDDIES_PAGE_SIZE":    "search.page_size",
	"BEATBUDDIES_DB":           "storage.db_path",
	"BEATBUDDIES_HISTORY_DB":   "storage.history_path",
	"SPOTIFY_CLIENT_ID":        "spotify.client_id",
	"SPOTIFY_CLIENT_SECRET":    "spotify.client_secret",
	"SPOTIFY_MAX_RETRIES":      "spotify.max_retries",
	"SPOTIFY_RETRY_BACKOFF_MS": "spotify.retry_backoff_ms",
	"SPOTIFY_REUSE_TOKEN":      "spotify.reuse_token",
}

// Load reads the default config paths and the process environment.
func Load() (*Config, error) {
	return LoadFrom(getConfigPaths(), os.LookupEnv)
}

// LoadFrom reads the given TOML files (missing ones are skipped, later files
// win) and then applies environment overrides from lookup.
func LoadFrom(paths []string, lookup func(string) (string, bool)) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, fmt.Errorf("config: load %s: %w", path, err)
			}
		}
	}

	// Values stay strings; the decoder converts them to the field types.
	if lookup != nil {
		for env, key := range envKeys {
			raw, ok := lookup(env)
			if !ok || strings.TrimSpace(raw) == "" {
				continue
			}
			if err := k.Set(key, strings.TrimSpace(raw)); err != nil {
				return nil, fmt.Errorf("config: apply %s: %w", env, err)
			}
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	cfg.Spotify.APIBase = strings.TrimSuffix(cfg.Spotify.APIBase, "/")
	cfg.Spotify.AccountsBase = strings.TrimSuffix(cfg.Spotify.AccountsBase, "/")
	cfg.Storage.DBPath = expandPath(cfg.Storage.DBPath)
	cfg.Storage.HistoryPath = expandPath(cfg.Storage.HistoryPath)

	return &cfg, nil
}

// Validate reports settings the service cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.Spotify.ClientID == "" || c.Spotify.ClientSecret == "" {
		errs = append(errs, errors.New("spotify.client_id and spotify.client_secret are required"))
	}
	if c.Search.PageSize < 1 || c.Search.PageSize > 50 {
		errs = append(errs, fmt.Errorf("search.page_size must be between 1 and 50, got %d", c.Search.PageSize))
	}
	if c.Search.Dedupe != "allow" && c.Search.Dedupe != "drop" {
		errs = append(errs, fmt.Errorf("search.dedupe must be \"allow\" or \"drop\", got %q", c.Search.Dedupe))
	}
	if c.Spotify.MaxRetries < 1 {
		errs = append(errs, fmt.Errorf("spotify.max_retries must be positive, got %d", c.Spotify.MaxRetries))
	}
	return errors.Join(errs...)
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/beatbuddies/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "beatbuddies", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
