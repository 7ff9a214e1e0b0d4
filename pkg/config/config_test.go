package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "signstudio.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	oldwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(oldwd) })
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("explicit missing path must be an error")
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
[editor]
snap_threshold = 16
history_limit = 25

[renderer]
base_url = "http://render.internal:9000"

[session]
backend = "redis"
redis_addr = "localhost:6379"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Editor.SnapThreshold != 16 || cfg.Editor.HistoryLimit != 25 {
		t.Errorf("editor overrides not applied: %+v", cfg.Editor)
	}
	// Untouched fields keep their defaults.
	if cfg.Editor.MinBlockSize != Default().Editor.MinBlockSize {
		t.Errorf("min_block_size = %d, want default", cfg.Editor.MinBlockSize)
	}
	if cfg.Renderer.BaseURL != "http://render.internal:9000" {
		t.Errorf("base_url = %q", cfg.Renderer.BaseURL)
	}
	if cfg.Session.Backend != "redis" || cfg.Session.RedisAddr != "localhost:6379" {
		t.Errorf("session = %+v", cfg.Session)
	}
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	path := writeConfig(t, `editor = not toml`)
	if _, err := Load(path); err == nil {
		t.Fatal("malformed TOML must be an error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero min size", func(c *Config) { c.Editor.MinBlockSize = 0 }, "min_block_size"},
		{"negative threshold", func(c *Config) { c.Editor.SnapThreshold = -1 }, "snap_threshold"},
		{"zero history", func(c *Config) { c.Editor.HistoryLimit = 0 }, "history_limit"},
		{"inverted scale bounds", func(c *Config) { c.Editor.MinScale = 2; c.Editor.MaxScale = 1 }, "scale bounds"},
		{"bad session backend", func(c *Config) { c.Session.Backend = "sqlite" }, "session.backend"},
		{"bad archive backend", func(c *Config) { c.Archive.Backend = "s3" }, "archive.backend"},
		{"empty renderer url", func(c *Config) { c.Renderer.BaseURL = "" }, "base_url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}
