// Package archive persists saved template documents.
//
// Every accepted save appends a new version of the template's save payload,
// so earlier states remain recoverable. Backends:
//   - file: versioned JSON files under a directory (dev server default)
//   - mongo: a MongoDB collection for hosted deployments
package archive

import (
	"context"
	"errors"
	"time"

	"github.com/signstudio/signstudio/pkg/template"
)

// ErrNotFound is returned when a template has no archived versions.
var ErrNotFound = errors.New("not found")

// Document is one archived version of a template.
type Document struct {
	ID         string               `json:"id" bson:"_id"`
	TemplateID string               `json:"template_id" bson:"template_id"`
	Name       string               `json:"name" bson:"name"`
	Version    int                  `json:"version" bson:"version"`
	Payload    template.SavePayload `json:"payload" bson:"payload"`
	SavedAt    time.Time            `json:"saved_at" bson:"saved_at"`
}

// Archive is the interface for template archive backends.
type Archive interface {
	// Save appends the payload as the template's next version and returns
	// the stored document.
	Save(ctx context.Context, templateID string, payload template.SavePayload) (*Document, error)

	// Latest returns the newest version of the template, or ErrNotFound.
	Latest(ctx context.Context, templateID string) (*Document, error)

	// Versions returns all versions of the template, oldest first. An
	// unknown template yields an empty slice, not an error.
	Versions(ctx context.Context, templateID string) ([]*Document, error)

	// Close releases backend resources.
	Close() error
}
