// Package config loads editor configuration from a TOML file.
//
// Every field has a working default, so a missing config file is not an
// error: the zero-config CLI experience is the defaults. Values from the
// file overlay the defaults.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/signstudio/signstudio/pkg/editor"
	"github.com/signstudio/signstudio/pkg/interact"
	"github.com/signstudio/signstudio/pkg/snap"
)

// DefaultPath is the config file looked up in the working directory when no
// explicit path is given.
const DefaultPath = "signstudio.toml"

// Config is the full editor configuration.
type Config struct {
	Editor   EditorConfig   `toml:"editor"`
	Renderer RendererConfig `toml:"renderer"`
	Server   ServerConfig   `toml:"server"`
	Session  SessionConfig  `toml:"session"`
	Archive  ArchiveConfig  `toml:"archive"`
}

// EditorConfig holds the interaction and history limits.
type EditorConfig struct {
	MinBlockSize     int     `toml:"min_block_size"`
	SnapThreshold    int     `toml:"snap_threshold"`
	SnapEnabled      bool    `toml:"snap_enabled"`
	HistoryLimit     int     `toml:"history_limit"`
	MinScale         float64 `toml:"min_scale"`
	MaxScale         float64 `toml:"max_scale"`
	AutosaveSeconds  int     `toml:"autosave_seconds"`
	FitPaddingPixels int     `toml:"fit_padding_pixels"`
}

// RendererConfig points at the external block renderer.
type RendererConfig struct {
	BaseURL string `toml:"base_url"`
}

// ServerConfig configures the dev render server.
type ServerConfig struct {
	ListenAddr      string `toml:"listen_addr"`
	CacheDir        string `toml:"cache_dir"`
	CacheTTLMinutes int    `toml:"cache_ttl_minutes"`
}

// SessionConfig selects and configures the autosave backend.
type SessionConfig struct {
	Backend       string `toml:"backend"` // memory, file, redis
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// ArchiveConfig selects and configures the template archive backend.
type ArchiveConfig struct {
	Backend         string `toml:"backend"` // file, mongo
	Dir             string `toml:"dir"`
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Editor: EditorConfig{
			MinBlockSize:     interact.MinBlockSize,
			SnapThreshold:    snap.DefaultThreshold,
			SnapEnabled:      true,
			HistoryLimit:     editor.DefaultHistoryLimit,
			MinScale:         editor.MinScale,
			MaxScale:         editor.MaxScale,
			AutosaveSeconds:  30,
			FitPaddingPixels: 48,
		},
		Renderer: RendererConfig{
			BaseURL: "http://localhost:8480",
		},
		Server: ServerConfig{
			ListenAddr:      ":8480",
			CacheDir:        ".signstudio-cache",
			CacheTTLMinutes: 60,
		},
		Session: SessionConfig{
			Backend: "file",
		},
		Archive: ArchiveConfig{
			Backend: "file",
			Dir:     "archive",
		},
	}
}

// Load reads the config file at path, overlaying it onto the defaults.
// An empty path means DefaultPath; a missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks cross-field consistency. Out-of-range editor values are an
// error here rather than silently clamped, because a config file is explicit
// operator input.
func (c Config) Validate() error {
	e := c.Editor
	if e.MinBlockSize <= 0 {
		return fmt.Errorf("editor.min_block_size must be positive, got %d", e.MinBlockSize)
	}
	if e.SnapThreshold < 0 {
		return fmt.Errorf("editor.snap_threshold must not be negative, got %d", e.SnapThreshold)
	}
	if e.HistoryLimit <= 0 {
		return fmt.Errorf("editor.history_limit must be positive, got %d", e.HistoryLimit)
	}
	if e.MinScale <= 0 || e.MaxScale < e.MinScale {
		return fmt.Errorf("editor scale bounds invalid: [%v, %v]", e.MinScale, e.MaxScale)
	}
	switch c.Session.Backend {
	case "memory", "file", "redis":
	default:
		return fmt.Errorf("session.backend must be memory, file, or redis, got %q", c.Session.Backend)
	}
	switch c.Archive.Backend {
	case "file", "mongo":
	default:
		return fmt.Errorf("archive.backend must be file or mongo, got %q", c.Archive.Backend)
	}
	if c.Renderer.BaseURL == "" {
		return fmt.Errorf("renderer.base_url must not be empty")
	}
	return nil
}
