// Package cli implements the signstudio command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/signstudio/signstudio/pkg/archive"
	"github.com/signstudio/signstudio/pkg/buildinfo"
	"github.com/signstudio/signstudio/pkg/cache"
	"github.com/signstudio/signstudio/pkg/config"
	"github.com/signstudio/signstudio/pkg/session"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "signstudio"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "signstudio",
		Short:        "Signstudio edits digital signage templates",
		Long:         `Signstudio is a block-based editor for digital signage templates: load a template payload, arrange its blocks on the canvas, and save the result back.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Attach the logger to the command context so helpers that only receive
	// a context (backend factories, server collaborators) can log.
	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		return nil
	}

	// Register all subcommands
	root.AddCommand(c.editCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.prefetchCommand())
	root.AddCommand(c.sessionsCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file for a command's --config flag. An empty
// path means the defaults, overlaid by ./signstudio.toml when present.
func (c *CLI) loadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	c.Logger.Debug("config loaded",
		"session_backend", cfg.Session.Backend,
		"archive_backend", cfg.Archive.Backend,
		"renderer", cfg.Renderer.BaseURL,
	)
	return cfg, nil
}

// =============================================================================
// Backend Factories
// =============================================================================

// newPreviewCache creates the cache used for prefetched preview images.
func newPreviewCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// sessionStore builds the autosave backend selected by the config.
func sessionStore(ctx context.Context, cfg config.SessionConfig) (session.Store, error) {
	loggerFromContext(ctx).Debug("opening session store", "backend", cfg.Backend)
	switch cfg.Backend {
	case "memory":
		return session.NewMemoryStore(), nil
	case "redis":
		return session.NewRedisStore(ctx, session.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	default:
		return session.NewFileStore(cfg.Dir)
	}
}

// archiveStore builds the template archive selected by the config.
func archiveStore(ctx context.Context, cfg config.ArchiveConfig) (archive.Archive, error) {
	loggerFromContext(ctx).Debug("opening archive", "backend", cfg.Backend)
	if cfg.Backend == "mongo" {
		return archive.NewMongoArchive(ctx, archive.MongoConfig{
			URI:        cfg.MongoURI,
			Database:   cfg.MongoDatabase,
			Collection: cfg.MongoCollection,
		})
	}
	return archive.NewFileArchive(cfg.Dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/signstudio/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
