package template

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/signstudio/signstudio/pkg/block"
)

// WireTemplate is the template portion of a load payload in the host's
// external naming convention. Blocks arrive as loosely-typed records and are
// normalized into canonical blocks by Normalize.
type WireTemplate struct {
	ID           string         `json:"ID" bson:"id"`
	Name         string         `json:"Name" bson:"name"`
	Description  string         `json:"Description" bson:"description"`
	BackgroundID string         `json:"BackgroundID" bson:"background_id"`
	IsDynamic    bool           `json:"IsDynamic" bson:"is_dynamic"`
	Blocks       []block.Record `json:"Blocks" bson:"blocks"`
}

// LoadPayload is the complete editor load input supplied by the host.
type LoadPayload struct {
	Template WireTemplate `json:"Template" bson:"template"`
	Zone     Zone         `json:"Zone" bson:"zone"`
	Media    []Media      `json:"Media" bson:"media"`
	Fonts    []Font       `json:"Fonts" bson:"fonts"`
}

// SavePayload is the export snapshot handed back to the host on save.
// Block records are re-keyed into the external naming convention and the
// session-local block ids are omitted.
type SavePayload struct {
	Name         string         `json:"Name" bson:"name"`
	BackgroundID string         `json:"BackgroundID" bson:"background_id"`
	Blocks       []block.Record `json:"Blocks" bson:"blocks"`
}

// Normalize builds a canonical Template from a load payload.
//
// Pixel dimensions come from the zone, falling back to 1920x1080 when the
// zone is unusable. Every block record is normalized with type defaults, so
// partial records never produce partial blocks. Block order is preserved:
// the payload sequence is the z-order, index 0 topmost.
func Normalize(p LoadPayload) *Template {
	w, h := p.Zone.Width, p.Zone.Height
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
	}

	t := &Template{
		ID:           p.Template.ID,
		Name:         p.Template.Name,
		Description:  p.Template.Description,
		Width:        w,
		Height:       h,
		BackgroundID: p.Template.BackgroundID,
		IsNew:        p.Template.ID == "",
		IsDynamic:    p.Template.IsDynamic,
		Blocks:       make([]block.Block, 0, len(p.Template.Blocks)),
	}
	if t.BackgroundID == "" {
		t.BackgroundID = NoBackground
	}
	for _, rec := range p.Template.Blocks {
		t.Blocks = append(t.Blocks, block.FromRecord(rec))
	}
	return t
}

// Export projects a template into its save payload. Pure projection, no
// mutation: the caller's template is untouched.
func Export(t *Template) SavePayload {
	out := SavePayload{
		Name:         t.Name,
		BackgroundID: t.BackgroundID,
		Blocks:       make([]block.Record, 0, len(t.Blocks)),
	}
	for i := range t.Blocks {
		out.Blocks = append(out.Blocks, block.ToRecord(t.Blocks[i]))
	}
	return out
}

// =============================================================================
// File import/export
// =============================================================================

// ReadPayloadFile reads a load payload from a JSON file.
func ReadPayloadFile(path string) (LoadPayload, error) {
	f, err := os.Open(path)
	if err != nil {
		return LoadPayload{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadPayload(f)
}

// ReadPayload decodes a load payload from an io.Reader.
func ReadPayload(r io.Reader) (LoadPayload, error) {
	var p LoadPayload
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return LoadPayload{}, fmt.Errorf("decode payload: %w", err)
	}
	return p, nil
}

// WriteSaveFile writes a save payload to a JSON file.
// The file is created with 0644 permissions.
func WriteSaveFile(p SavePayload, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteSave(p, f)
}

// WriteSave encodes a save payload as indented JSON to an io.Writer.
// Map keys are emitted in sorted order, so output is deterministic.
func WriteSave(p SavePayload, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	return nil
}

// MarshalSave converts a save payload to JSON bytes.
func MarshalSave(p SavePayload) ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}

// UnmarshalSave decodes JSON bytes into a save payload.
func UnmarshalSave(data []byte) (SavePayload, error) {
	var p SavePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return SavePayload{}, err
	}
	return p, nil
}
