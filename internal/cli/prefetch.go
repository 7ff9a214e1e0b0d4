package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/signstudio/signstudio/pkg/cache"
	"github.com/signstudio/signstudio/pkg/preview"
	"github.com/signstudio/signstudio/pkg/template"
)

// prefetchCommand creates the prefetch command for warming the preview cache.
func (c *CLI) prefetchCommand() *cobra.Command {
	var (
		configPath string
		baseURL    string
		noCache    bool
	)

	cmd := &cobra.Command{
		Use:   "prefetch [payload.json]",
		Short: "Warm the preview image cache for a payload",
		Long: `Warm the preview image cache for a payload.

The prefetch command builds the preview URL for every block in the payload,
fetches the images from the renderer, and stores them in the local cache so
the editor opens with warm previews.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPrefetch(cmd.Context(), args[0], configPath, baseURL, noCache)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "config file (default ./signstudio.toml)")
	cmd.Flags().StringVar(&baseURL, "renderer", "", "renderer base URL (overrides config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "fetch without storing images locally")

	return cmd
}

func (c *CLI) runPrefetch(ctx context.Context, path, configPath, baseURL string, noCache bool) error {
	cfg, err := c.loadConfig(configPath)
	if err != nil {
		return err
	}
	if baseURL == "" {
		baseURL = cfg.Renderer.BaseURL
	}

	payload, err := template.ReadPayloadFile(path)
	if err != nil {
		return err
	}
	tpl := template.Normalize(payload)

	store, err := newPreviewCache(noCache)
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}
	defer store.Close()

	builder := preview.NewBuilder(baseURL)
	loader := preview.NewPreloader(preview.NewHTTPFetcher(), c.Logger, nil)
	prog := newProgress(c.Logger)

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Prefetching %d previews...", len(tpl.Blocks)))
	spinner.Start()

	// URLs per block, plus the background when the template has one.
	urls := make(map[string]string, len(tpl.Blocks)+1)
	for _, b := range tpl.Blocks {
		urls[b.ID] = builder.BlockURL(b, tpl.Width, tpl.Height)
	}
	if bg := builder.BackgroundURL(tpl.BackgroundID); bg != "" {
		urls["background"] = bg
	}

	cached := 0
	for id, u := range urls {
		key := cache.Hash([]byte(u))
		if _, hit, err := store.Get(ctx, key); err == nil && hit {
			cached++
			delete(urls, id)
			continue
		}
		loader.Prefetch(ctx, id, u)
	}
	loader.Wait()
	spinner.Stop()
	if err := ctx.Err(); err != nil {
		return err
	}

	names := blockNames(tpl)
	fetched := 0
	for id, u := range urls {
		img, ok := loader.Image(id)
		if !ok {
			printError("%s: fetch failed", names[id])
			continue
		}
		fetched++
		if err := store.Set(ctx, cache.Hash([]byte(u)), img.Data, 0); err != nil {
			c.Logger.Debug("cache store failed", "block", id, "err", err)
		}
		printFetchResult(names[id], len(img.Data), false)
	}
	if cached > 0 {
		printDetail("%d already cached", cached)
	}
	prog.done(fmt.Sprintf("Prefetched %d previews", fetched))
	return nil
}

// blockNames maps block ids to display names, with a fixed entry for the
// background image.
func blockNames(tpl *template.Template) map[string]string {
	names := make(map[string]string, len(tpl.Blocks)+1)
	for _, b := range tpl.Blocks {
		names[b.ID] = b.Name
	}
	names["background"] = "background"
	return names
}
