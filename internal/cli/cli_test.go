package cli

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/signstudio/signstudio/pkg/block"
	"github.com/signstudio/signstudio/pkg/config"
	"github.com/signstudio/signstudio/pkg/session"
	"github.com/signstudio/signstudio/pkg/template"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	want := []string{"edit", "serve", "inspect", "prefetch", "sessions", "completion"}
	got := map[string]bool{}
	for _, cmd := range root.Commands() {
		got[cmd.Name()] = true
	}
	for _, name := range want {
		if !got[name] {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestRootCommandAttachesContextLogger(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetContext(context.Background())

	if err := root.PersistentPreRunE(root, nil); err != nil {
		t.Fatalf("PersistentPreRunE: %v", err)
	}
	if got := loggerFromContext(root.Context()); got != c.Logger {
		t.Error("command context should carry the CLI logger")
	}
}

func TestSetLogLevel(t *testing.T) {
	c := New(io.Discard, LogInfo)
	c.SetLogLevel(LogDebug)
	if c.Logger.GetLevel() != LogDebug {
		t.Errorf("level = %v, want debug", c.Logger.GetLevel())
	}
}

func writePayloadFile(t *testing.T) string {
	t.Helper()
	b := block.New(block.TypeRectangle)
	b.Name = "Box"
	payload := template.LoadPayload{
		Template: template.WireTemplate{
			ID:     "tpl-1",
			Name:   "Demo",
			Blocks: []block.Record{block.ToRecord(b)},
		},
		Zone: template.Zone{ID: "z", Width: 1920, Height: 1080},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	path := filepath.Join(t.TempDir(), "payload.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write payload: %v", err)
	}
	return path
}

func TestRunInspect(t *testing.T) {
	c := New(io.Discard, LogInfo)
	path := writePayloadFile(t)

	if err := c.runInspect(path, true); err != nil {
		t.Fatalf("runInspect: %v", err)
	}
	if err := c.runInspect(filepath.Join(t.TempDir(), "missing.json"), false); err == nil {
		t.Error("expected error for missing payload file")
	}
}

func TestSessionStoreBackends(t *testing.T) {
	ctx := context.Background()

	mem, err := sessionStore(ctx, config.SessionConfig{Backend: "memory"})
	if err != nil {
		t.Fatalf("memory backend: %v", err)
	}
	defer mem.Close()
	if _, ok := mem.(*session.MemoryStore); !ok {
		t.Errorf("backend = %T, want *session.MemoryStore", mem)
	}

	file, err := sessionStore(ctx, config.SessionConfig{Backend: "file", Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("file backend: %v", err)
	}
	defer file.Close()
	if _, ok := file.(*session.FileStore); !ok {
		t.Errorf("backend = %T, want *session.FileStore", file)
	}
}

func TestArchiveStoreFileBackend(t *testing.T) {
	arch, err := archiveStore(context.Background(), config.ArchiveConfig{Backend: "file", Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("archiveStore: %v", err)
	}
	defer arch.Close()

	doc, err := arch.Save(context.Background(), "tpl-1", template.SavePayload{Name: "Demo"})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if doc.Version != 1 {
		t.Errorf("version = %d, want 1", doc.Version)
	}
}
