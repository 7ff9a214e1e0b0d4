package editor

import (
	"fmt"
	"testing"

	"github.com/signstudio/signstudio/pkg/block"
	"github.com/signstudio/signstudio/pkg/template"
)

func newLoadedStore(t *testing.T, blocks ...block.Record) *Store {
	t.Helper()
	s := New(nil, 0)
	s.Load(template.LoadPayload{
		Template: template.WireTemplate{ID: "t1", Name: "Test", Blocks: blocks},
		Zone:     template.Zone{ID: "z1", Width: 1920, Height: 1080},
	})
	return s
}

func intp(v int) *int       { return &v }
func strp(v string) *string { return &v }

func TestLoadResetsSession(t *testing.T) {
	s := newLoadedStore(t, block.Record{"ID": "a", "BlockType": "Text"})

	s.SelectBlock("a")
	s.UpdateBlock("a", block.Patch{X: intp(5)})
	if !s.IsDirty() {
		t.Fatal("expected dirty after update")
	}

	s.Load(template.LoadPayload{Zone: template.Zone{Width: 100, Height: 100}})
	if s.IsDirty() {
		t.Error("load should clear dirty")
	}
	if s.Selected() != "" {
		t.Error("load should clear selection")
	}
	if !s.IsLoaded() {
		t.Error("load should set loaded")
	}
	if s.CanUndo() {
		t.Error("load should reset history baseline")
	}
}

func TestOperationsBeforeLoadAreNoOps(t *testing.T) {
	s := New(nil, 0)

	s.SelectBlock("a")
	s.UpdateBlock("a", block.Patch{X: intp(5)})
	s.DeleteBlock("a")
	s.SetTemplateName("x")
	s.MarkDirty()
	if id := s.AddBlock(block.TypeText, ""); id != "" {
		t.Errorf("AddBlock before load returned %q", id)
	}
	if _, ok := s.TemplateForSave(); ok {
		t.Error("TemplateForSave before load should report false")
	}
	if s.IsDirty() || s.IsLoaded() {
		t.Error("store should remain pristine")
	}
}

func TestUpdateBlockMergesExactly(t *testing.T) {
	s := newLoadedStore(t, block.Record{"ID": "a", "BlockType": "Text", "PosX": float64(10)})

	before := *mustBlock(t, s, "a")
	s.UpdateBlock("a", block.Patch{X: intp(99), TextColor: strp("AB12CD")})

	got := *mustBlock(t, s, "a")
	want := before
	want.X = 99
	want.TextColor = "AB12CD"
	if got != want {
		t.Errorf("merged block mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestUpdateBlockMissingIDIsNoOp(t *testing.T) {
	s := newLoadedStore(t, block.Record{"ID": "a", "BlockType": "Text"})
	s.UpdateBlock("ghost", block.Patch{X: intp(1)})
	if s.IsDirty() {
		t.Error("missing id must not dirty the store")
	}
}

func TestAddBlock(t *testing.T) {
	s := newLoadedStore(t)

	id1 := s.AddBlock(block.TypeText, "")
	id2 := s.AddBlock(block.TypeText, "")
	id3 := s.AddBlock(block.TypeRectangle, "")

	tpl := s.Template()
	if len(tpl.Blocks) != 3 {
		t.Fatalf("blocks = %d", len(tpl.Blocks))
	}

	// Newest block sits at the top of the z-order (index 0).
	if tpl.Blocks[0].ID != id3 || tpl.Blocks[2].ID != id1 {
		t.Error("new blocks should be inserted at the front")
	}

	// Generated names are unique per template.
	names := map[string]bool{}
	for _, b := range tpl.Blocks {
		if names[b.Name] {
			t.Errorf("duplicate name %q", b.Name)
		}
		names[b.Name] = true
	}
	if !names["Text1"] || !names["Text2"] || !names["Rectangle1"] {
		t.Errorf("unexpected names: %v", names)
	}

	// Cascading offsets: (50 + 20*count) mod 100 per insertion.
	b1, _ := tpl.Block(id1)
	b2, _ := tpl.Block(id2)
	b3, _ := tpl.Block(id3)
	for i, tc := range []struct {
		b    *block.Block
		want int
	}{{b1, 50}, {b2, 70}, {b3, 90}} {
		if tc.b.X != tc.want || tc.b.Y != tc.want {
			t.Errorf("block %d offset = (%d,%d), want (%d,%d)", i, tc.b.X, tc.b.Y, tc.want, tc.want)
		}
	}

	if s.Selected() != id3 {
		t.Error("AddBlock should select the new block")
	}
	if !s.IsDirty() {
		t.Error("AddBlock should mark dirty")
	}
}

func TestAddBlockNamesNeverCollide(t *testing.T) {
	s := newLoadedStore(t)
	seen := map[string]bool{}
	for i := 0; i < 25; i++ {
		id := s.AddBlock(block.TypeEllipse, "")
		b := mustBlock(t, s, id)
		if seen[b.Name] {
			t.Fatalf("iteration %d: name %q already used", i, b.Name)
		}
		seen[b.Name] = true
	}
}

func TestDeleteBlock(t *testing.T) {
	s := newLoadedStore(t,
		block.Record{"ID": "a", "BlockType": "Text"},
		block.Record{"ID": "b", "BlockType": "Video"},
	)

	s.SelectBlock("b")
	s.DeleteBlock("b")

	if _, idx := s.Template().Block("b"); idx != -1 {
		t.Error("block b should be gone")
	}
	if s.Selected() != "" {
		t.Error("deleting the selected block should clear selection")
	}
	if !s.IsDirty() {
		t.Error("delete should mark dirty")
	}

	// Missing id: silent no-op.
	before := len(s.Template().Blocks)
	s.DeleteBlock("ghost")
	if len(s.Template().Blocks) != before {
		t.Error("deleting a missing id changed the template")
	}
}

func TestDuplicateBlock(t *testing.T) {
	s := newLoadedStore(t,
		block.Record{"ID": "top", "BlockType": "Text"},
		block.Record{"ID": "src", "BlockType": "Ellipse", "BlockName": "Ellipse1", "PosX": float64(100), "PosY": float64(60), "BackColor": "112233"},
		block.Record{"ID": "bottom", "BlockType": "Video"},
	)

	cloneID := s.DuplicateBlock("src")
	if cloneID == "" {
		t.Fatal("DuplicateBlock returned empty id")
	}

	tpl := s.Template()
	if len(tpl.Blocks) != 4 {
		t.Fatalf("blocks = %d", len(tpl.Blocks))
	}

	// Clone is inserted at the source's index: the source shifts down one.
	if tpl.Blocks[1].ID != cloneID || tpl.Blocks[2].ID != "src" {
		t.Errorf("z-order = %s,%s,%s,%s", tpl.Blocks[0].ID, tpl.Blocks[1].ID, tpl.Blocks[2].ID, tpl.Blocks[3].ID)
	}

	src := mustBlock(t, s, "src")
	clone := mustBlock(t, s, cloneID)

	if clone.X != src.X+20 || clone.Y != src.Y+20 {
		t.Errorf("clone offset = (%d,%d), want (%d,%d)", clone.X, clone.Y, src.X+20, src.Y+20)
	}
	if clone.Name == src.Name {
		t.Error("clone must get a fresh name")
	}

	// Everything except id, name, and position is identical.
	want := *src
	want.ID = clone.ID
	want.Name = clone.Name
	want.X = clone.X
	want.Y = clone.Y
	if *clone != want {
		t.Errorf("clone attributes diverged:\n got %+v\nwant %+v", *clone, want)
	}

	if s.Selected() != cloneID {
		t.Error("DuplicateBlock should select the clone")
	}
}

func TestReorderBlocks(t *testing.T) {
	s := newLoadedStore(t,
		block.Record{"ID": "a", "BlockType": "Text"},
		block.Record{"ID": "b", "BlockType": "Text"},
		block.Record{"ID": "c", "BlockType": "Text"},
	)

	s.ReorderBlocks(0, 2)
	order := func() string {
		tpl := s.Template()
		return tpl.Blocks[0].ID + tpl.Blocks[1].ID + tpl.Blocks[2].ID
	}
	if order() != "bca" {
		t.Errorf("order = %s, want bca", order())
	}

	// Invalid and equal indices are no-ops.
	for _, tc := range [][2]int{{-1, 0}, {0, 3}, {3, 0}, {1, 1}} {
		before := order()
		s.ReorderBlocks(tc[0], tc[1])
		if order() != before {
			t.Errorf("ReorderBlocks(%d,%d) changed order", tc[0], tc[1])
		}
	}
}

func TestSelectBlock(t *testing.T) {
	s := newLoadedStore(t, block.Record{"ID": "a", "BlockType": "Text"})

	s.SelectBlock("a")
	if s.Selected() != "a" {
		t.Error("selection not applied")
	}
	if s.IsDirty() {
		t.Error("selection must not dirty the store")
	}

	s.SelectBlock("ghost")
	if s.Selected() != "a" {
		t.Error("unknown id should leave selection untouched")
	}

	s.SelectBlock("")
	if s.Selected() != "" {
		t.Error("empty id should clear selection")
	}
}

func TestSetScaleFactor(t *testing.T) {
	s := newLoadedStore(t)

	tests := []struct {
		in   float64
		want float64
	}{
		{0.5, 0.5},
		{0.01, MinScale},
		{99, MaxScale},
	}
	for _, tt := range tests {
		s.SetScaleFactor(tt.in)
		if got := s.ScaleFactor(); got != tt.want {
			t.Errorf("SetScaleFactor(%v) -> %v, want %v", tt.in, got, tt.want)
		}
	}

	if s.IsDirty() {
		t.Error("scale must not dirty the store")
	}
	if s.CanUndo() {
		t.Error("scale must not consume undo slots")
	}
}

func TestWithScaleBounds(t *testing.T) {
	s := New(nil, 0, WithScaleBounds(0.5, 2.0))
	s.Load(template.LoadPayload{Zone: template.Zone{Width: 100, Height: 100}})

	s.SetScaleFactor(0.2)
	if got := s.ScaleFactor(); got != 0.5 {
		t.Errorf("scale = %v, want clamp to configured min 0.5", got)
	}
	s.SetScaleFactor(5)
	if got := s.ScaleFactor(); got != 2.0 {
		t.Errorf("scale = %v, want clamp to configured max 2.0", got)
	}

	// Invalid bounds fall back to the defaults.
	s = New(nil, 0, WithScaleBounds(2.0, 0.5))
	s.SetScaleFactor(0.01)
	if got := s.ScaleFactor(); got != MinScale {
		t.Errorf("scale = %v, want default min %v", got, MinScale)
	}
}

func TestUndoRedoExactness(t *testing.T) {
	s := newLoadedStore(t, block.Record{"ID": "a", "BlockType": "Text", "PosX": float64(10)})

	s.SelectBlock("a")
	before := s.Template().Clone()
	beforeSel := s.Selected()

	s.UpdateBlock("a", block.Patch{X: intp(500), Width: intp(321)})
	after := s.Template().Clone()

	s.Undo()
	if got := mustBlock(t, s, "a"); got.X != 10 || *got != before.Blocks[0] {
		t.Errorf("undo state = %+v, want %+v", *got, before.Blocks[0])
	}
	if s.Selected() != beforeSel {
		t.Errorf("undo selection = %q, want %q", s.Selected(), beforeSel)
	}

	s.Redo()
	if got := mustBlock(t, s, "a"); *got != after.Blocks[0] {
		t.Errorf("redo state = %+v, want %+v", *got, after.Blocks[0])
	}
}

func TestUndoRestoresDeletedBlock(t *testing.T) {
	s := newLoadedStore(t,
		block.Record{"ID": "a", "BlockType": "Text", "BlockName": "Title"},
	)
	orig := *mustBlock(t, s, "a")

	s.DeleteBlock("a")
	s.Undo()

	got := mustBlock(t, s, "a")
	if got == nil || *got != orig {
		t.Errorf("undo did not restore deleted block exactly: %+v", got)
	}
}

func TestUndoSelectionOnlyKeepsClean(t *testing.T) {
	s := newLoadedStore(t, block.Record{"ID": "a", "BlockType": "Text"})

	var notifications int
	s.NotifyDirty(func() { notifications++ })

	s.SelectBlock("a")
	s.Undo()
	if s.IsDirty() {
		t.Error("undoing a selection change must not dirty the store")
	}
	if s.Selected() != "" {
		t.Errorf("selection = %q, want cleared", s.Selected())
	}

	s.Redo()
	if s.IsDirty() || notifications != 0 {
		t.Errorf("dirty = %v, notifications = %d after selection-only redo", s.IsDirty(), notifications)
	}

	// Structural steps still report unsaved work.
	s.UpdateBlock("a", block.Patch{X: intp(9)})
	s.MarkSaved()
	s.Undo()
	if !s.IsDirty() {
		t.Error("undoing a structural change must dirty the store")
	}
}

func TestRedoClearedByNewMutation(t *testing.T) {
	s := newLoadedStore(t, block.Record{"ID": "a", "BlockType": "Text"})

	s.UpdateBlock("a", block.Patch{X: intp(1)})
	s.Undo()
	if !s.CanRedo() {
		t.Fatal("expected redo available after undo")
	}
	s.UpdateBlock("a", block.Patch{X: intp(2)})
	if s.CanRedo() {
		t.Error("new mutation should discard the redo tail")
	}
}

func TestHistoryBounded(t *testing.T) {
	s := New(nil, 10)
	s.Load(template.LoadPayload{
		Template: template.WireTemplate{Blocks: []block.Record{{"ID": "a", "BlockType": "Text"}}},
		Zone:     template.Zone{Width: 100, Height: 100},
	})

	for i := 0; i < 50; i++ {
		s.UpdateBlock("a", block.Patch{X: intp(i)})
	}

	undos := 0
	for s.CanUndo() {
		s.Undo()
		undos++
	}
	if undos != 9 {
		t.Errorf("undo depth = %d, want 9 (limit 10 states)", undos)
	}
}

func TestDirtyNotifyEdgeTriggered(t *testing.T) {
	s := newLoadedStore(t, block.Record{"ID": "a", "BlockType": "Text"})

	var notifications int
	s.NotifyDirty(func() { notifications++ })

	// Three consecutive mutations produce exactly one notification.
	s.UpdateBlock("a", block.Patch{X: intp(1)})
	s.UpdateBlock("a", block.Patch{X: intp(2)})
	s.UpdateBlock("a", block.Patch{X: intp(3)})
	if notifications != 1 {
		t.Fatalf("notifications = %d, want 1", notifications)
	}

	// Save re-arms the edge.
	s.MarkSaved()
	s.UpdateBlock("a", block.Patch{X: intp(4)})
	if notifications != 2 {
		t.Errorf("notifications after save = %d, want 2", notifications)
	}

	// Load re-arms as well.
	s.Load(template.LoadPayload{
		Template: template.WireTemplate{Blocks: []block.Record{{"ID": "a", "BlockType": "Text"}}},
	})
	s.UpdateBlock("a", block.Patch{X: intp(5)})
	if notifications != 3 {
		t.Errorf("notifications after reload = %d, want 3", notifications)
	}
}

func TestSubscribe(t *testing.T) {
	s := newLoadedStore(t, block.Record{"ID": "a", "BlockType": "Text"})

	var events []Event
	unsub := s.Subscribe(func(e Event) { events = append(events, e) })

	s.UpdateBlock("a", block.Patch{X: intp(1)})
	s.DeleteBlock("a")
	if len(events) != 2 || events[0].Op != OpUpdate || events[1].Op != OpDelete {
		t.Errorf("events = %+v", events)
	}

	unsub()
	s.AddBlock(block.TypeText, "")
	if len(events) != 2 {
		t.Error("unsubscribed callback still invoked")
	}
}

func TestTemplateForSave(t *testing.T) {
	s := newLoadedStore(t, block.Record{"ID": "a", "BlockType": "Text", "BlockName": "Title"})
	s.SetTemplateName("Menu Board")
	s.SetBackground("bg7")

	out, ok := s.TemplateForSave()
	if !ok {
		t.Fatal("expected payload")
	}
	if out.Name != "Menu Board" || out.BackgroundID != "bg7" {
		t.Errorf("header = %q/%q", out.Name, out.BackgroundID)
	}
	if len(out.Blocks) != 1 {
		t.Fatalf("blocks = %d", len(out.Blocks))
	}
	if _, ok := out.Blocks[0]["ID"]; ok {
		t.Error("save payload must omit internal ids")
	}

	// Projection only: store stays loaded and dirty state is untouched.
	if !s.IsDirty() {
		t.Error("TemplateForSave must not reset dirty")
	}
}

func TestSetBackgroundSentinel(t *testing.T) {
	s := newLoadedStore(t)
	s.SetBackground("")
	if s.Template().HasBackground() {
		t.Error("empty id should clear background")
	}
	if s.Template().BackgroundID != template.NoBackground {
		t.Errorf("BackgroundID = %q", s.Template().BackgroundID)
	}
}

func mustBlock(t *testing.T, s *Store, id string) *block.Block {
	t.Helper()
	b, _ := s.Template().Block(id)
	if b == nil {
		t.Fatalf("block %q not found", id)
	}
	return b
}

func TestNextName(t *testing.T) {
	taken := map[string]bool{"Text1": true, "Text3": true}
	if got := nextName(block.TypeText, taken); got != "Text2" {
		t.Errorf("nextName = %q, want Text2 (smallest gap)", got)
	}
	if got := nextName(block.TypeVideo, map[string]bool{}); got != "Video1" {
		t.Errorf("nextName = %q, want Video1", got)
	}
	// Large sets still terminate with the next free slot.
	many := map[string]bool{}
	for i := 1; i <= 30; i++ {
		many[fmt.Sprintf("Picture%d", i)] = true
	}
	if got := nextName(block.TypePicture, many); got != "Picture31" {
		t.Errorf("nextName = %q, want Picture31", got)
	}
}
