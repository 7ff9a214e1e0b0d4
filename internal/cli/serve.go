package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/signstudio/signstudio/internal/server"
	"github.com/signstudio/signstudio/pkg/cache"
)

// serveCommand creates the serve command for the development render service.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		configPath string
		addr       string
		noCache    bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the development render and template service",
		Long: `Run the development render and template service.

The service rasterizes block previews, serves background placeholders, and
stores saved templates in the configured archive backend. It is the local
stand-in for the production renderer the editor talks to.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd, configPath, addr, noCache)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "config file (default ./signstudio.toml)")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the render cache")

	return cmd
}

func (c *CLI) runServe(cmd *cobra.Command, configPath, addr string, noCache bool) error {
	ctx := cmd.Context()

	cfg, err := c.loadConfig(configPath)
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Server.ListenAddr
	}

	arch, err := archiveStore(ctx, cfg.Archive)
	if err != nil {
		return fmt.Errorf("initialize archive: %w", err)
	}
	defer arch.Close()

	var renderCache cache.Cache = cache.NewNullCache()
	if !noCache && cfg.Server.CacheDir != "" {
		renderCache, err = cache.NewFileCache(cfg.Server.CacheDir)
		if err != nil {
			return fmt.Errorf("initialize render cache: %w", err)
		}
	}
	defer renderCache.Close()

	srv, err := server.New(server.Config{
		ListenAddr: addr,
		Archive:    arch,
		Cache:      renderCache,
		Logger:     c.Logger,
		CacheTTL:   time.Duration(cfg.Server.CacheTTLMinutes) * time.Minute,
	})
	if err != nil {
		return err
	}

	printInfo("Serving on %s (archive: %s)", addr, cfg.Archive.Backend)
	return srv.Run(ctx)
}
