package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/signstudio/signstudio/pkg/template"
)

// FileArchive stores versions as JSON files: {dir}/{templateID}/v{N}.json.
type FileArchive struct {
	mu  sync.Mutex
	dir string
}

// NewFileArchive creates a file archive rooted at dir, creating it if
// needed.
func NewFileArchive(dir string) (*FileArchive, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	return &FileArchive{dir: dir}, nil
}

func (a *FileArchive) templateDir(templateID string) string {
	return filepath.Join(a.dir, templateID)
}

func (a *FileArchive) versionPath(templateID string, version int) string {
	return filepath.Join(a.templateDir(templateID), fmt.Sprintf("v%d.json", version))
}

func (a *FileArchive) Save(ctx context.Context, templateID string, payload template.SavePayload) (*Document, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	versions, err := a.readVersions(templateID)
	if err != nil {
		return nil, err
	}
	next := 1
	if n := len(versions); n > 0 {
		next = versions[n-1].Version + 1
	}

	doc := &Document{
		ID:         uuid.NewString(),
		TemplateID: templateID,
		Name:       payload.Name,
		Version:    next,
		Payload:    payload,
		SavedAt:    time.Now().UTC(),
	}

	if err := os.MkdirAll(a.templateDir(templateID), 0755); err != nil {
		return nil, fmt.Errorf("create template dir: %w", err)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	if err := os.WriteFile(a.versionPath(templateID, next), data, 0644); err != nil {
		return nil, fmt.Errorf("write document: %w", err)
	}
	return doc, nil
}

func (a *FileArchive) Latest(ctx context.Context, templateID string) (*Document, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	versions, err := a.readVersions(templateID)
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, ErrNotFound
	}
	return versions[len(versions)-1], nil
}

func (a *FileArchive) Versions(ctx context.Context, templateID string) ([]*Document, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.readVersions(templateID)
}

// readVersions loads all documents for a template, sorted oldest first.
// Caller holds the lock.
func (a *FileArchive) readVersions(templateID string) ([]*Document, error) {
	entries, err := os.ReadDir(a.templateDir(templateID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read template dir: %w", err)
	}

	var out []*Document
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(a.templateDir(templateID), entry.Name()))
		if err != nil {
			continue
		}
		var doc Document
		if err := json.Unmarshal(data, &doc); err != nil {
			continue
		}
		out = append(out, &doc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

func (a *FileArchive) Close() error { return nil }

var _ Archive = (*FileArchive)(nil)
