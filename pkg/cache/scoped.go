package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation.
// Useful when one cache backend serves several zones and their rendered
// artifacts must not collide.
//
// Example usage:
//
//	// Per-zone keys on a shared backend
//	zoneKeyer := NewScopedKeyer(NewDefaultKeyer(), "zone:lobby:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// RenderKey generates a prefixed key for a rendered block preview.
func (k *ScopedKeyer) RenderKey(query string) string {
	return k.prefix + k.inner.RenderKey(query)
}

// PayloadKey generates a prefixed key for a stored load payload.
func (k *ScopedKeyer) PayloadKey(templateID string) string {
	return k.prefix + k.inner.PayloadKey(templateID)
}

// BackgroundKey generates a prefixed key for a background image.
func (k *ScopedKeyer) BackgroundKey(id string) string {
	return k.prefix + k.inner.BackgroundKey(id)
}
