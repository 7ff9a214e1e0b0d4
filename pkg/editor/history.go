package editor

import "github.com/signstudio/signstudio/pkg/template"

// DefaultHistoryLimit bounds the undo stack to the most recent states.
const DefaultHistoryLimit = 50

// snapshot is one immutable history entry: the structural state of the
// editor at a point in time. Scale factor is deliberately absent so zooming
// never consumes undo slots.
type snapshot struct {
	tpl      *template.Template
	selected string
}

// history is a bounded stack of snapshots with a cursor.
//
// The cursor always points at the snapshot representing the current state.
// Mutations push after the cursor and discard any redo tail; undo and redo
// move the cursor without modifying the stack. When the stack exceeds the
// limit, the oldest entries fall off the front.
type history struct {
	stack  []snapshot
	cursor int
	limit  int
}

func newHistory(limit int) *history {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &history{limit: limit, cursor: -1}
}

// reset discards all history and installs s as the new baseline.
func (h *history) reset(s snapshot) {
	h.stack = []snapshot{s}
	h.cursor = 0
}

// push appends a new state after the cursor, discarding the redo tail.
func (h *history) push(s snapshot) {
	h.stack = append(h.stack[:h.cursor+1], s)
	if len(h.stack) > h.limit {
		h.stack = h.stack[len(h.stack)-h.limit:]
	}
	h.cursor = len(h.stack) - 1
}

func (h *history) canUndo() bool { return h.cursor > 0 }
func (h *history) canRedo() bool { return h.cursor >= 0 && h.cursor < len(h.stack)-1 }

// undo moves the cursor back one state and returns it.
func (h *history) undo() (snapshot, bool) {
	if !h.canUndo() {
		return snapshot{}, false
	}
	h.cursor--
	return h.stack[h.cursor], true
}

// redo moves the cursor forward one state and returns it.
func (h *history) redo() (snapshot, bool) {
	if !h.canRedo() {
		return snapshot{}, false
	}
	h.cursor++
	return h.stack[h.cursor], true
}

// undoDepth returns how many states can still be undone.
func (h *history) undoDepth() int {
	if h.cursor < 0 {
		return 0
	}
	return h.cursor
}

// redoDepth returns how many states can still be redone.
func (h *history) redoDepth() int {
	if h.cursor < 0 {
		return 0
	}
	return len(h.stack) - 1 - h.cursor
}
