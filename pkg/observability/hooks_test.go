package observability

import (
	"sync"
	"testing"
	"time"
)

type recordingStoreHooks struct {
	mu        sync.Mutex
	mutations []string
	dirty     int
}

func (r *recordingStoreHooks) OnLoad(string, int) {}
func (r *recordingStoreHooks) OnMutation(op, blockID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mutations = append(r.mutations, op)
}
func (r *recordingStoreHooks) OnDirty(string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dirty++
}
func (r *recordingStoreHooks) OnHistory(string, int) {}

func TestSetStoreHooks(t *testing.T) {
	defer Reset()

	rec := &recordingStoreHooks{}
	SetStoreHooks(rec)

	Store().OnMutation("updateBlock", "b1")
	Store().OnMutation("deleteBlock", "b2")
	Store().OnDirty("t1")

	if len(rec.mutations) != 2 {
		t.Errorf("mutations = %d, want 2", len(rec.mutations))
	}
	if rec.dirty != 1 {
		t.Errorf("dirty = %d, want 1", rec.dirty)
	}
}

func TestSetNilHooksKeepsCurrent(t *testing.T) {
	defer Reset()

	rec := &recordingStoreHooks{}
	SetStoreHooks(rec)
	SetStoreHooks(nil)

	Store().OnMutation("addBlock", "b1")
	if len(rec.mutations) != 1 {
		t.Error("nil registration should not replace hooks")
	}
}

func TestReset(t *testing.T) {
	rec := &recordingStoreHooks{}
	SetStoreHooks(rec)
	Reset()

	Store().OnMutation("addBlock", "b1")
	if len(rec.mutations) != 0 {
		t.Error("Reset should restore noop hooks")
	}
}

func TestNoopHooksAreSafe(t *testing.T) {
	defer Reset()
	Reset()

	// None of these should panic.
	Store().OnLoad("t1", 3)
	Store().OnHistory("undo", 2)
	Interaction().OnDragStart("b1", "move")
	Interaction().OnDragEnd("b1", "move", time.Second, 10)
	Preview().OnFetchStart(nil, "b1")
	Preview().OnFetchComplete(nil, "b1", 0, 0, nil)
	Preview().OnSuperseded(nil, "b1")
}
