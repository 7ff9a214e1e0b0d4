// Package session persists editor autosave snapshots.
//
// While a template is open, the editor periodically writes the wire form of
// the current document into a session store so an interrupted edit can be
// resumed. Backends:
//   - memory: in-process storage for development/testing
//   - file: file-based storage for the CLI
//   - redis: Redis-backed storage for hosted multi-instance deployments
//
// # Usage
//
// Create a store:
//
//	// Development
//	store := session.NewMemoryStore()
//
//	// CLI
//	store, err := session.NewFileStore("")  // ~/.config/signstudio/sessions/
//
//	// Hosted
//	store, err := session.NewRedisStore(ctx, session.RedisConfig{
//	    Addr: "localhost:6379",
//	})
//
// Autosave a document and restore it later:
//
//	auto := session.NewAutosave(store)
//	auto.Save(ctx, templateID, name, snapshotJSON)
//	sess, err := auto.Restore(ctx, templateID)
package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("not found")

	// ErrExpired is returned when a session has exceeded its TTL.
	ErrExpired = errors.New("expired")
)

// DefaultTTL is how long an autosave snapshot survives without being
// refreshed.
const DefaultTTL = 7 * 24 * time.Hour

// Session is one autosave snapshot of a template under edit.
type Session struct {
	ID         string          `json:"id"`
	TemplateID string          `json:"template_id"`
	Name       string          `json:"name"`
	Snapshot   json.RawMessage `json:"snapshot"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	ExpiresAt  time.Time       `json:"expires_at"`
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// New creates a session for the given template with a fresh id.
func New(templateID, name string, snapshot []byte, ttl time.Duration) *Session {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := time.Now()
	return &Session{
		ID:         uuid.NewString(),
		TemplateID: templateID,
		Name:       name,
		Snapshot:   snapshot,
		CreatedAt:  now,
		UpdatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session doesn't exist.
	// Returns nil, ErrExpired if the session exists but has expired.
	Get(ctx context.Context, id string) (*Session, error)

	// Set stores a session, overwriting any previous value under its ID.
	Set(ctx context.Context, sess *Session) error

	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error

	// List returns all unexpired sessions.
	List(ctx context.Context) ([]*Session, error)

	// Cleanup removes expired sessions (may be a no-op for backends with
	// native expiry).
	Cleanup(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// =============================================================================
// Autosave convenience wrapper
// =============================================================================

const autosavePrefix = "autosave:"

// Autosave wraps a Store with one stable slot per template, so repeated
// saves for the same document overwrite each other instead of piling up.
type Autosave struct {
	store Store
	ttl   time.Duration
}

// NewAutosave creates an autosave wrapper with the default TTL.
func NewAutosave(store Store) *Autosave {
	return &Autosave{store: store, ttl: DefaultTTL}
}

func autosaveID(templateID string) string { return autosavePrefix + templateID }

// Save writes the snapshot into the template's autosave slot, refreshing the
// TTL. CreatedAt survives across saves of the same slot.
func (a *Autosave) Save(ctx context.Context, templateID, name string, snapshot []byte) error {
	now := time.Now()
	sess := &Session{
		ID:         autosaveID(templateID),
		TemplateID: templateID,
		Name:       name,
		Snapshot:   snapshot,
		CreatedAt:  now,
		UpdatedAt:  now,
		ExpiresAt:  now.Add(a.ttl),
	}
	if prev, err := a.store.Get(ctx, sess.ID); err == nil && prev != nil {
		sess.CreatedAt = prev.CreatedAt
	}
	return a.store.Set(ctx, sess)
}

// Restore returns the template's autosave snapshot, or nil if none exists.
func (a *Autosave) Restore(ctx context.Context, templateID string) (*Session, error) {
	return a.store.Get(ctx, autosaveID(templateID))
}

// Discard removes the template's autosave slot. Call after a successful
// explicit save.
func (a *Autosave) Discard(ctx context.Context, templateID string) error {
	return a.store.Delete(ctx, autosaveID(templateID))
}
