// Package cache provides caching for the render service and the editor's
// preview pipeline.
//
// Rendered block previews are keyed by a hash of their canonical render
// query, so a cache entry is valid exactly as long as the block's style
// attributes are unchanged. Backends:
//   - file: persistent cache for the dev render server
//   - null: disables caching
package cache

import (
	"context"
	"time"
)

// Cache is the interface all cache backends implement. Values are opaque
// byte blobs (encoded PNGs, JSON payloads).
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer generates cache keys for the artifacts the render service stores.
type Keyer interface {
	// RenderKey keys a rendered block preview by its canonical render query.
	RenderKey(query string) string

	// PayloadKey keys a stored load payload by template id.
	PayloadKey(templateID string) string

	// BackgroundKey keys a background image by its identifier.
	BackgroundKey(id string) string
}

// DefaultKeyer is the standard key scheme.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return &DefaultKeyer{} }

// RenderKey hashes the render query so arbitrarily long attribute sets still
// produce fixed-length keys.
func (DefaultKeyer) RenderKey(query string) string { return hashKey("render", query) }

// PayloadKey generates a key for a template's load payload.
func (DefaultKeyer) PayloadKey(templateID string) string { return "payload:" + templateID }

// BackgroundKey generates a key for a background image.
func (DefaultKeyer) BackgroundKey(id string) string { return "background:" + id }
