// Package editor implements the block graph store: the single source of
// truth for the template under edit, selection, dirty/loaded flags, and the
// display scale factor.
//
// All operations are synchronous, in-memory, and atomically visible to the
// next read. The store is deliberately forgiving: operations referencing a
// missing block id, or arriving before any template is loaded, are silent
// no-ops. Callers (the TUI, the dev server) only ever act on ids they
// observed from current state, so raising errors for stale ids would punish
// ordinary event-loop races.
//
// Structural mutations push immutable snapshots onto a bounded undo stack.
// The scale factor is excluded from snapshots so zooming never consumes undo
// slots. The store is not safe for concurrent use without external
// synchronization; the editor is single-threaded by design.
package editor

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/signstudio/signstudio/pkg/block"
	"github.com/signstudio/signstudio/pkg/observability"
	"github.com/signstudio/signstudio/pkg/template"
)

// Default scale factor bounds. Hosts can narrow or widen the clamp range
// with WithScaleBounds.
const (
	MinScale = 0.1
	MaxScale = 3.0
)

// Op identifies a store operation in change events.
type Op string

// Store operations as reported to subscribers.
const (
	OpLoad       Op = "load"
	OpSelect     Op = "select"
	OpUpdate     Op = "updateBlock"
	OpAdd        Op = "addBlock"
	OpDelete     Op = "deleteBlock"
	OpDuplicate  Op = "duplicateBlock"
	OpReorder    Op = "reorderBlocks"
	OpBackground Op = "setBackground"
	OpRename     Op = "setTemplateName"
	OpScale      Op = "setScaleFactor"
	OpUndo       Op = "undo"
	OpRedo       Op = "redo"
)

// Event describes a completed store operation. BlockID is empty for
// template-level operations.
type Event struct {
	Op      Op
	BlockID string
}

// Store owns the template under edit and all editor session state.
//
// Construct with New and inject into consumers; there is no ambient global
// instance. Change notification is via Subscribe, and the edge-triggered
// dirty signal via NotifyDirty.
type Store struct {
	logger *log.Logger

	tpl   *template.Template
	zone  template.Zone
	media []template.Media
	fonts []template.Font

	selected string
	loaded   bool
	dirty    bool
	notified bool // dirty notification already sent since last load/save

	scale    float64
	minScale float64
	maxScale float64

	hist *history

	subs      map[int]func(Event)
	dirtySubs map[int]func()
	nextSub   int
}

// Option configures a Store at construction time.
type Option func(*Store)

// WithScaleBounds overrides the clamp range applied by SetScaleFactor.
// Non-positive or inverted bounds are ignored.
func WithScaleBounds(min, max float64) Option {
	return func(s *Store) {
		if min > 0 && max >= min {
			s.minScale = min
			s.maxScale = max
		}
	}
}

// New creates an empty store. A nil logger disables logging. A historyLimit
// of 0 uses DefaultHistoryLimit.
func New(logger *log.Logger, historyLimit int, opts ...Option) *Store {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Store{
		logger:    logger,
		scale:     1.0,
		minScale:  MinScale,
		maxScale:  MaxScale,
		hist:      newHistory(historyLimit),
		subs:      map[int]func(Event){},
		dirtySubs: map[int]func(){},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// =============================================================================
// Subscriptions
// =============================================================================

// Subscribe registers fn to be called after every completed store operation.
// It returns an unsubscribe function.
func (s *Store) Subscribe(fn func(Event)) func() {
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() { delete(s.subs, id) }
}

// NotifyDirty registers fn for the edge-triggered dirty signal: fn fires
// exactly once when the store first becomes dirty, and not again until the
// next load or save resets the edge.
func (s *Store) NotifyDirty(fn func()) func() {
	id := s.nextSub
	s.nextSub++
	s.dirtySubs[id] = fn
	return func() { delete(s.dirtySubs, id) }
}

func (s *Store) emit(op Op, blockID string) {
	observability.Store().OnMutation(string(op), blockID)
	for _, fn := range s.subs {
		fn(Event{Op: op, BlockID: blockID})
	}
}

// markDirty sets the dirty flag and fires the outbound notification on the
// false→true edge only.
func (s *Store) markDirty() {
	s.dirty = true
	if s.notified {
		return
	}
	s.notified = true
	observability.Store().OnDirty(s.templateID())
	for _, fn := range s.dirtySubs {
		fn()
	}
}

func (s *Store) templateID() string {
	if s.tpl == nil {
		return ""
	}
	return s.tpl.ID
}

// record pushes the current structural state onto the undo stack.
func (s *Store) record() {
	s.hist.push(snapshot{tpl: s.tpl.Clone(), selected: s.selected})
}

// =============================================================================
// Load / save
// =============================================================================

// Load replaces the template, zone, media, and fonts wholesale from a host
// payload. Selection is cleared, flags reset, and the undo history restarts
// from the loaded state as its baseline.
func (s *Store) Load(p template.LoadPayload) {
	s.tpl = template.Normalize(p)
	s.zone = p.Zone
	s.media = p.Media
	s.fonts = p.Fonts

	s.selected = ""
	s.loaded = true
	s.dirty = false
	s.notified = false
	s.hist.reset(snapshot{tpl: s.tpl.Clone()})

	observability.Store().OnLoad(s.tpl.ID, len(s.tpl.Blocks))
	s.logger.Debug("template loaded", "id", s.tpl.ID, "blocks", len(s.tpl.Blocks), "size", fmt.Sprintf("%dx%d", s.tpl.Width, s.tpl.Height))
	s.emit(OpLoad, "")
}

// TemplateForSave produces the export snapshot for the host, or false if no
// template has been loaded. Pure projection: the store is not mutated and
// the dirty flag is untouched (call MarkSaved once the host acknowledges).
func (s *Store) TemplateForSave() (template.SavePayload, bool) {
	if !s.loaded {
		return template.SavePayload{}, false
	}
	return template.Export(s.tpl), true
}

// MarkSaved resets the dirty flag and re-arms the dirty notification edge.
// Call after the host has accepted a save payload.
func (s *Store) MarkSaved() {
	s.dirty = false
	s.notified = false
}

// =============================================================================
// Selection
// =============================================================================

// SelectBlock sets the selection to the given block id, or clears it when id
// is empty. Unknown ids are ignored. Selection changes participate in undo
// history (so undo restores the exact prior selection) but never mark the
// template dirty.
func (s *Store) SelectBlock(id string) {
	if !s.loaded {
		return
	}
	if id != "" {
		if b, _ := s.tpl.Block(id); b == nil {
			return
		}
	}
	if s.selected == id {
		return
	}
	s.selected = id
	s.record()
	s.emit(OpSelect, id)
}

// Selected returns the selected block id, or "" when nothing is selected.
func (s *Store) Selected() string { return s.selected }

// SelectedBlock returns the selected block, or nil.
func (s *Store) SelectedBlock() *block.Block {
	if s.selected == "" || !s.loaded {
		return nil
	}
	b, _ := s.tpl.Block(s.selected)
	return b
}

// =============================================================================
// Block mutations
// =============================================================================

// UpdateBlock merges the patch into the block with the given id.
// Missing ids and empty patches are silent no-ops. The merge is sparse:
// only fields set in the patch change, everything else is untouched.
func (s *Store) UpdateBlock(id string, p block.Patch) {
	if !s.loaded || p.IsZero() {
		return
	}
	b, _ := s.tpl.Block(id)
	if b == nil {
		return
	}
	p.Apply(b)
	s.record()
	s.markDirty()
	s.emit(OpUpdate, id)
}

// AddBlock creates a block of the given type with type defaults, inserts it
// at the top of the z-order, selects it, and returns its id.
//
// When name is empty a unique one is generated ({TypePrefix}{N} with the
// smallest unused N). Successive new blocks cascade by (50 + 20*count) mod
// 100 pixels in both axes so they never land exactly on top of each other.
func (s *Store) AddBlock(t block.Type, name string) string {
	if !s.loaded || !t.Valid() {
		return ""
	}

	b := block.New(t)
	if name == "" {
		name = nextName(t, s.tpl.BlockNames())
	}
	b.Name = name

	offset := (50 + 20*len(s.tpl.Blocks)) % 100
	b.X, b.Y = offset, offset

	// Index 0 is the top of the z-order.
	s.tpl.Blocks = append([]block.Block{b}, s.tpl.Blocks...)
	s.selected = b.ID
	s.record()
	s.markDirty()
	s.logger.Debug("block added", "id", b.ID, "type", t, "name", name)
	s.emit(OpAdd, b.ID)
	return b.ID
}

// DeleteBlock removes the block with the given id, clearing the selection if
// it pointed at the removed block. Missing ids are silent no-ops.
func (s *Store) DeleteBlock(id string) {
	if !s.loaded {
		return
	}
	_, idx := s.tpl.Block(id)
	if idx < 0 {
		return
	}
	s.tpl.Blocks = append(s.tpl.Blocks[:idx], s.tpl.Blocks[idx+1:]...)
	if s.selected == id {
		s.selected = ""
	}
	s.record()
	s.markDirty()
	s.emit(OpDelete, id)
}

// DuplicateBlock clones the block with the given id. The clone gets a fresh
// id, a fresh unique name, a +20px offset in both axes, and is inserted at
// the source's index so it sits immediately above the source in z-order.
// The clone becomes the selection. Returns the clone's id, or "" on no-op.
func (s *Store) DuplicateBlock(id string) string {
	if !s.loaded {
		return ""
	}
	src, idx := s.tpl.Block(id)
	if src == nil {
		return ""
	}

	clone := *src
	clone.ID = block.NewID()
	clone.Name = nextName(clone.Type, s.tpl.BlockNames())
	clone.X += 20
	clone.Y += 20

	// Inserting at the source index shifts the source down by one, leaving
	// the clone directly above it.
	s.tpl.Blocks = append(s.tpl.Blocks[:idx], append([]block.Block{clone}, s.tpl.Blocks[idx:]...)...)
	s.selected = clone.ID
	s.record()
	s.markDirty()
	s.emit(OpDuplicate, clone.ID)
	return clone.ID
}

// ReorderBlocks moves the block at fromIndex to toIndex within the z-order.
// Invalid or equal indices are silent no-ops.
func (s *Store) ReorderBlocks(fromIndex, toIndex int) {
	if !s.loaded {
		return
	}
	n := len(s.tpl.Blocks)
	if fromIndex < 0 || fromIndex >= n || toIndex < 0 || toIndex >= n || fromIndex == toIndex {
		return
	}
	b := s.tpl.Blocks[fromIndex]
	rest := append(s.tpl.Blocks[:fromIndex], s.tpl.Blocks[fromIndex+1:]...)
	s.tpl.Blocks = append(rest[:toIndex], append([]block.Block{b}, rest[toIndex:]...)...)
	s.record()
	s.markDirty()
	s.emit(OpReorder, b.ID)
}

// =============================================================================
// Template-level mutations
// =============================================================================

// SetBackground assigns the template background id. The sentinel value
// template.NoBackground (or "") clears the background.
func (s *Store) SetBackground(id string) {
	if !s.loaded {
		return
	}
	if id == "" {
		id = template.NoBackground
	}
	if s.tpl.BackgroundID == id {
		return
	}
	s.tpl.BackgroundID = id
	s.record()
	s.markDirty()
	s.emit(OpBackground, "")
}

// SetTemplateName renames the template.
func (s *Store) SetTemplateName(name string) {
	if !s.loaded || s.tpl.Name == name {
		return
	}
	s.tpl.Name = name
	s.record()
	s.markDirty()
	s.emit(OpRename, "")
}

// MarkDirty is the explicit escape hatch for callers mutating state outside
// the store operations. It only touches the dirty flag and its notification
// edge; no history entry is pushed.
func (s *Store) MarkDirty() {
	if !s.loaded {
		return
	}
	s.markDirty()
}

// =============================================================================
// Scale
// =============================================================================

// SetScaleFactor sets the display scale, clamped to the store's bounds
// ([MinScale, MaxScale] unless overridden with WithScaleBounds). Scale is
// transient view state: it never marks the template dirty and never enters
// undo history.
func (s *Store) SetScaleFactor(f float64) {
	if f < s.minScale {
		f = s.minScale
	}
	if f > s.maxScale {
		f = s.maxScale
	}
	if s.scale == f {
		return
	}
	s.scale = f
	s.emit(OpScale, "")
}

// ScaleFactor returns the current display scale.
func (s *Store) ScaleFactor() float64 { return s.scale }

// =============================================================================
// Undo / redo
// =============================================================================

// Undo restores the previous structural state (template + selection).
// No-op when there is nothing to undo.
func (s *Store) Undo() {
	snap, ok := s.hist.undo()
	if !ok {
		return
	}
	s.restore(snap)
	observability.Store().OnHistory("undo", s.hist.undoDepth())
	s.emit(OpUndo, "")
}

// Redo restores the state that the last Undo undid.
// No-op when there is nothing to redo.
func (s *Store) Redo() {
	snap, ok := s.hist.redo()
	if !ok {
		return
	}
	s.restore(snap)
	observability.Store().OnHistory("redo", s.hist.redoDepth())
	s.emit(OpRedo, "")
}

// restore installs a history snapshot. The dirty flag only moves when the
// template content actually changes; stepping across a selection-only entry
// must not report unsaved work.
func (s *Store) restore(snap snapshot) {
	structural := !s.tpl.Equal(snap.tpl)
	s.tpl = snap.tpl.Clone()
	s.selected = snap.selected
	if structural {
		s.markDirty()
	}
}

// CanUndo reports whether an Undo would change state.
func (s *Store) CanUndo() bool { return s.hist.canUndo() }

// CanRedo reports whether a Redo would change state.
func (s *Store) CanRedo() bool { return s.hist.canRedo() }

// =============================================================================
// Accessors
// =============================================================================

// Template returns the template under edit, or nil before the first load.
// The returned pointer is the store's live state: treat it as read-only and
// go through store operations for every mutation.
func (s *Store) Template() *template.Template { return s.tpl }

// Zone returns the zone the current template targets.
func (s *Store) Zone() template.Zone { return s.zone }

// Media returns the media assets supplied with the last load.
func (s *Store) Media() []template.Media { return s.media }

// Fonts returns the fonts supplied with the last load.
func (s *Store) Fonts() []template.Font { return s.fonts }

// IsLoaded reports whether a template has ever been loaded.
func (s *Store) IsLoaded() bool { return s.loaded }

// IsDirty reports whether the template has unsaved structural changes.
func (s *Store) IsDirty() bool { return s.dirty }
