package preview

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/signstudio/signstudio/pkg/cache"
	"github.com/signstudio/signstudio/pkg/observability"
)

// Fetcher retrieves the bytes behind a preview URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher fetches previews over HTTP. Transport failures and 5xx
// responses are marked retryable so the preloader's backoff loop retries
// them; 4xx responses are permanent.
type HTTPFetcher struct {
	Client *http.Client
}

// NewHTTPFetcher creates a fetcher with a sane default timeout.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{Client: &http.Client{Timeout: 15 * time.Second}}
}

// Fetch performs one GET for the preview image.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, cache.Retryable(fmt.Errorf("%w: %v", cache.ErrNetwork, err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return nil, cache.Retryable(fmt.Errorf("%w: status %d", cache.ErrNetwork, resp.StatusCode))
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("preview fetch: status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// Image is the latest resolved preview for a block.
type Image struct {
	URL  string
	Data []byte
}

// Preloader keeps at most one resolved preview image per block.
//
// Fetches are cancellable-by-replacement: starting a newer Prefetch for a
// block supersedes any older in-flight fetch for the same block, whose
// outcome is then discarded when it resolves. The preloader never cancels
// the underlying request; it only refuses to apply a stale result.
type Preloader struct {
	fetcher  Fetcher
	logger   *log.Logger
	onUpdate func(blockID string)

	mu     sync.Mutex
	seq    map[string]uint64
	images map[string]Image

	wg sync.WaitGroup
}

// NewPreloader creates a preloader. onUpdate, if non-nil, is called from the
// fetch goroutine whenever a block's image changes; a nil logger disables
// logging.
func NewPreloader(fetcher Fetcher, logger *log.Logger, onUpdate func(blockID string)) *Preloader {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Preloader{
		fetcher:  fetcher,
		logger:   logger,
		onUpdate: onUpdate,
		seq:      map[string]uint64{},
		images:   map[string]Image{},
	}
}

// Prefetch starts an asynchronous fetch of url for the block. If the block's
// current image already came from the same URL the fetch is skipped, so
// stable URLs (the empty-picture variant) are never re-fetched.
func (p *Preloader) Prefetch(ctx context.Context, blockID, url string) {
	if url == "" {
		return
	}
	p.mu.Lock()
	if img, ok := p.images[blockID]; ok && img.URL == url {
		p.mu.Unlock()
		return
	}
	p.seq[blockID]++
	gen := p.seq[blockID]
	p.mu.Unlock()

	observability.Preview().OnFetchStart(ctx, blockID)
	p.wg.Add(1)
	go p.fetch(ctx, blockID, url, gen)
}

func (p *Preloader) fetch(ctx context.Context, blockID, url string, gen uint64) {
	defer p.wg.Done()
	start := time.Now()

	var data []byte
	err := cache.RetryWithBackoff(ctx, func() error {
		var ferr error
		data, ferr = p.fetcher.Fetch(ctx, url)
		return ferr
	})

	p.mu.Lock()
	stale := p.seq[blockID] != gen
	if !stale && err == nil {
		p.images[blockID] = Image{URL: url, Data: data}
	}
	p.mu.Unlock()

	if stale {
		observability.Preview().OnSuperseded(ctx, blockID)
		return
	}
	observability.Preview().OnFetchComplete(ctx, blockID, len(data), time.Since(start), err)
	if err != nil {
		p.logger.Debug("preview fetch failed", "block", blockID, "err", err)
		return
	}
	if p.onUpdate != nil {
		p.onUpdate(blockID)
	}
}

// Image returns the latest resolved preview for the block.
func (p *Preloader) Image(blockID string) (Image, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	img, ok := p.images[blockID]
	return img, ok
}

// Forget drops the stored image and supersedes any in-flight fetch for the
// block. Call when a block is deleted.
func (p *Preloader) Forget(blockID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seq[blockID]++
	delete(p.images, blockID)
}

// Wait blocks until all in-flight fetches have resolved.
func (p *Preloader) Wait() { p.wg.Wait() }
