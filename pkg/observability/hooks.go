// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about store mutations, drag interactions, and preview
// fetches.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the editor core dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, DataDog, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetStoreHooks(&myStoreHooks{})
//	    observability.SetPreviewHooks(&myPreviewHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Store().OnMutation(op, blockID)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from the editor store.
// All store operations are synchronous, so hook implementations must be fast
// or hand off to their own goroutines.
type StoreHooks interface {
	// OnLoad records a template load (block count after normalization).
	OnLoad(templateID string, blockCount int)

	// OnMutation records a structural mutation (op name, affected block id;
	// id is empty for template-level operations).
	OnMutation(op, blockID string)

	// OnDirty records the edge-triggered dirty transition.
	OnDirty(templateID string)

	// OnHistory records undo/redo traversal (direction is "undo" or "redo",
	// depth is the remaining stack depth in that direction).
	OnHistory(direction string, depth int)
}

// =============================================================================
// Interaction Hooks
// =============================================================================

// InteractionHooks receives events from drag/resize interactions.
type InteractionHooks interface {
	// OnDragStart records the start of a drag (mode is "move", "resize-e",
	// "resize-s", or "resize-se").
	OnDragStart(blockID, mode string)

	// OnDragEnd records the end of a drag along with its duration and how
	// many store updates it produced.
	OnDragEnd(blockID, mode string, duration time.Duration, updates int)
}

// =============================================================================
// Preview Hooks
// =============================================================================

// PreviewHooks receives events from block preview fetching.
type PreviewHooks interface {
	// OnFetchStart records an outgoing preview fetch.
	OnFetchStart(ctx context.Context, blockID string)

	// OnFetchComplete records a finished preview fetch.
	OnFetchComplete(ctx context.Context, blockID string, size int, duration time.Duration, err error)

	// OnSuperseded records an in-flight fetch made obsolete by a newer one.
	OnSuperseded(ctx context.Context, blockID string)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnLoad(string, int)        {}
func (NoopStoreHooks) OnMutation(string, string) {}
func (NoopStoreHooks) OnDirty(string)            {}
func (NoopStoreHooks) OnHistory(string, int)     {}

// NoopInteractionHooks is a no-op implementation of InteractionHooks.
type NoopInteractionHooks struct{}

func (NoopInteractionHooks) OnDragStart(string, string)                   {}
func (NoopInteractionHooks) OnDragEnd(string, string, time.Duration, int) {}

// NoopPreviewHooks is a no-op implementation of PreviewHooks.
type NoopPreviewHooks struct{}

func (NoopPreviewHooks) OnFetchStart(context.Context, string)                               {}
func (NoopPreviewHooks) OnFetchComplete(context.Context, string, int, time.Duration, error) {}
func (NoopPreviewHooks) OnSuperseded(context.Context, string)                               {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	storeHooks       StoreHooks       = NoopStoreHooks{}
	interactionHooks InteractionHooks = NoopInteractionHooks{}
	previewHooks     PreviewHooks     = NoopPreviewHooks{}
	hooksMu          sync.RWMutex
)

// SetStoreHooks registers custom store hooks.
// This should be called once at application startup before any store operations.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// SetInteractionHooks registers custom interaction hooks.
// This should be called once at application startup before any interactions.
func SetInteractionHooks(h InteractionHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		interactionHooks = h
	}
}

// SetPreviewHooks registers custom preview hooks.
// This should be called once at application startup before any preview fetches.
func SetPreviewHooks(h PreviewHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		previewHooks = h
	}
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// Interaction returns the registered interaction hooks.
func Interaction() InteractionHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return interactionHooks
}

// Preview returns the registered preview hooks.
func Preview() PreviewHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return previewHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	storeHooks = NoopStoreHooks{}
	interactionHooks = NoopInteractionHooks{}
	previewHooks = NoopPreviewHooks{}
}
