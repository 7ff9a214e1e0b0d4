// Package template defines the document under edit and its wire formats.
//
// A Template is the authoritative document: pixel dimensions derived from
// the owning zone, a background reference, and an ordered sequence of blocks
// where index 0 is the topmost layer. Templates are created wholesale from a
// load payload and replaced wholesale by the next load; there is no partial
// persistence here.
//
// The wire types (LoadPayload, SavePayload) follow the host's external
// PascalCase naming convention and carry bson tags alongside json so saved
// documents can be archived to MongoDB without a second mapping layer.
package template

import (
	"slices"

	"github.com/signstudio/signstudio/pkg/block"
)

// NoBackground is the sentinel background identifier meaning "no background
// assigned". An empty string is treated the same way.
const NoBackground = "-1"

// Default template dimensions used when the zone carries no usable size.
const (
	DefaultWidth  = 1920
	DefaultHeight = 1080
)

// Zone describes the physical display area a template targets.
// Zones are supplied by the host and are read-only inputs to template
// creation; the template copies the pixel dimensions at load time.
type Zone struct {
	ID     string `json:"ID" bson:"id"`
	Name   string `json:"Name" bson:"name"`
	Width  int    `json:"Width" bson:"width"`
	Height int    `json:"Height" bson:"height"`
}

// Media is a host-managed media asset available for picture and video blocks.
type Media struct {
	ID   string `json:"ID" bson:"id"`
	Name string `json:"Name" bson:"name"`
	URL  string `json:"URL" bson:"url"`
}

// Font is a host-managed font available for text blocks.
type Font struct {
	ID   string `json:"ID" bson:"id"`
	Name string `json:"Name" bson:"name"`
}

// Template is the document being edited.
//
// Width and Height are derived from the owning zone at load time and are
// immutable for the rest of the session. Blocks are ordered back-to-front:
// index 0 is the topmost layer. Mutation happens only through the editor
// store.
type Template struct {
	ID           string
	Name         string
	Description  string
	Width        int
	Height       int
	BackgroundID string
	Blocks       []block.Block
	IsNew        bool
	IsDynamic    bool
}

// HasBackground reports whether the template has a background assigned.
// Both the sentinel and the empty string mean "none".
func (t *Template) HasBackground() bool {
	return t.BackgroundID != "" && t.BackgroundID != NoBackground
}

// Block returns the block with the given id and its index, or -1 if absent.
func (t *Template) Block(id string) (*block.Block, int) {
	for i := range t.Blocks {
		if t.Blocks[i].ID == id {
			return &t.Blocks[i], i
		}
	}
	return nil, -1
}

// Clone returns a deep copy of the template. Block is a pure value type, so
// cloning the slice is enough to make the copy fully independent.
func (t *Template) Clone() *Template {
	if t == nil {
		return nil
	}
	c := *t
	c.Blocks = slices.Clone(t.Blocks)
	return &c
}

// Equal reports whether two templates carry identical structural content.
// Block is a comparable value type, so the block sequence compares directly.
func (t *Template) Equal(o *Template) bool {
	if t == nil || o == nil {
		return t == o
	}
	return t.ID == o.ID &&
		t.Name == o.Name &&
		t.Description == o.Description &&
		t.Width == o.Width &&
		t.Height == o.Height &&
		t.BackgroundID == o.BackgroundID &&
		t.IsNew == o.IsNew &&
		t.IsDynamic == o.IsDynamic &&
		slices.Equal(t.Blocks, o.Blocks)
}

// BlockNames returns the set of block names currently in use.
func (t *Template) BlockNames() map[string]bool {
	names := make(map[string]bool, len(t.Blocks))
	for i := range t.Blocks {
		names[t.Blocks[i].Name] = true
	}
	return names
}
