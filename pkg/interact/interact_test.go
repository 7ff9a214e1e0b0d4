package interact

import (
	"testing"

	"github.com/signstudio/signstudio/pkg/block"
	"github.com/signstudio/signstudio/pkg/editor"
	"github.com/signstudio/signstudio/pkg/template"
)

// newFixture loads a 1920x1080 template with one 200x100 block at (100,100)
// and a second block used as a snap sibling.
func newFixture(t *testing.T, opts ...Option) (*editor.Store, *Controller) {
	t.Helper()
	s := editor.New(nil, 0)
	s.Load(template.LoadPayload{
		Template: template.WireTemplate{
			ID: "t1",
			Blocks: []block.Record{
				{"ID": "a", "BlockType": "Rectangle", "PosX": float64(100), "PosY": float64(100), "Width": float64(200), "Height": float64(100)},
				{"ID": "b", "BlockType": "Rectangle", "PosX": float64(600), "PosY": float64(600), "Width": float64(100), "Height": float64(100)},
			},
		},
		Zone: template.Zone{Width: 1920, Height: 1080},
	})
	return s, New(s, nil, opts...)
}

func geom(t *testing.T, s *editor.Store, id string) (x, y, w, h int) {
	t.Helper()
	b, _ := s.Template().Block(id)
	if b == nil {
		t.Fatalf("block %q missing", id)
	}
	return b.X, b.Y, b.Width, b.Height
}

func TestBeginMoveImplicitlySelects(t *testing.T) {
	s, c := newFixture(t)

	if !c.Begin("a", ModeMove, 10, 10) {
		t.Fatal("move capture refused")
	}
	if s.Selected() != "a" {
		t.Error("move must select the block")
	}
	if !c.Dragging() || c.ActiveMode() != ModeMove || c.BlockID() != "a" {
		t.Errorf("state = %v/%v/%v", c.Dragging(), c.ActiveMode(), c.BlockID())
	}
}

func TestBeginResizeRequiresSelection(t *testing.T) {
	s, c := newFixture(t)

	if c.Begin("a", ModeResizeEast, 10, 10) {
		t.Fatal("resize on an unselected block must be refused")
	}
	s.SelectBlock("a")
	if !c.Begin("a", ModeResizeEast, 10, 10) {
		t.Fatal("resize on the selected block refused")
	}
}

func TestBeginRefusals(t *testing.T) {
	_, c := newFixture(t)

	if c.Begin("ghost", ModeMove, 0, 0) {
		t.Error("unknown block captured")
	}
	c.Begin("a", ModeMove, 0, 0)
	if c.Begin("b", ModeMove, 0, 0) {
		t.Error("second drag captured while one is active")
	}

	idle := New(editor.New(nil, 0), nil)
	if idle.Begin("a", ModeMove, 0, 0) {
		t.Error("capture before load")
	}
}

func TestMoveAppliesScaledDelta(t *testing.T) {
	s, c := newFixture(t)
	s.SetScaleFactor(0.5)

	c.Begin("a", ModeMove, 300, 300)
	c.Move(310, 320) // 10/20 client px -> 20/40 template px at scale 0.5

	x, y, _, _ := geom(t, s, "a")
	if x != 120 || y != 140 {
		t.Errorf("pos = (%d,%d), want (120,140)", x, y)
	}
}

func TestMoveClampsToCanvas(t *testing.T) {
	s, c := newFixture(t)

	c.Begin("a", ModeMove, 0, 0)
	c.Move(-1e6, -1e6)
	if x, y, _, _ := geom(t, s, "a"); x != 0 || y != 0 {
		t.Errorf("pos = (%d,%d), want (0,0)", x, y)
	}

	c.Move(1e6, 1e6)
	x, y, w, h := geom(t, s, "a")
	if x != 1920-w || y != 1080-h {
		t.Errorf("pos = (%d,%d), want (%d,%d)", x, y, 1920-w, 1080-h)
	}
}

func TestMoveRoundsToNearestPixel(t *testing.T) {
	s, c := newFixture(t)
	s.SetScaleFactor(0.8)

	c.Begin("a", ModeMove, 0, 0)
	c.Move(2, 0) // 2 / 0.8 = 2.5 template px, rounds to 3

	if x, _, _, _ := geom(t, s, "a"); x != 103 {
		t.Errorf("x = %d, want 103", x)
	}
}

func TestResizeEast(t *testing.T) {
	s, c := newFixture(t)
	s.SelectBlock("a")

	c.Begin("a", ModeResizeEast, 500, 500)
	c.Move(550, 500)

	x, y, w, h := geom(t, s, "a")
	if w != 250 || h != 100 {
		t.Errorf("size = %dx%d, want 250x100", w, h)
	}
	if x != 100 || y != 100 {
		t.Error("resize east must not move the block")
	}
}

func TestResizeNeverBelowMinSize(t *testing.T) {
	s, c := newFixture(t)
	s.SelectBlock("a")

	c.Begin("a", ModeResizeSoutheast, 0, 0)
	c.Move(-1e9, -1e9)

	_, _, w, h := geom(t, s, "a")
	if w != MinBlockSize || h != MinBlockSize {
		t.Errorf("size = %dx%d, want %dx%d", w, h, MinBlockSize, MinBlockSize)
	}
}

func TestResizeClampedToCanvasFromStartPosition(t *testing.T) {
	s, c := newFixture(t)
	s.SelectBlock("a")

	c.Begin("a", ModeResizeSoutheast, 0, 0)
	c.Move(1e9, 1e9)

	_, _, w, h := geom(t, s, "a")
	if w != 1920-100 || h != 1080-100 {
		t.Errorf("size = %dx%d, want %dx%d", w, h, 1920-100, 1080-100)
	}
}

func TestResizeSouthOnlyTouchesHeight(t *testing.T) {
	s, c := newFixture(t)
	s.SelectBlock("a")

	c.Begin("a", ModeResizeSouth, 0, 0)
	c.Move(999, 30)

	_, _, w, h := geom(t, s, "a")
	if w != 200 {
		t.Errorf("width = %d, want untouched 200", w)
	}
	if h != 130 {
		t.Errorf("height = %d, want 130", h)
	}
}

func TestEndReturnsToIdle(t *testing.T) {
	_, c := newFixture(t)

	c.Begin("a", ModeMove, 0, 0)
	c.End()
	if c.Dragging() || c.BlockID() != "" || c.ActiveMode() != "" {
		t.Error("controller not idle after End")
	}

	// Moves after End are ignored.
	c.Move(100, 100)
}

func TestCancelKeepsLastUpdate(t *testing.T) {
	s, c := newFixture(t)

	c.Begin("a", ModeMove, 0, 0)
	c.Move(50, 0)
	c.Cancel()

	if x, _, _, _ := geom(t, s, "a"); x != 150 {
		t.Errorf("x = %d, want 150 (no rollback on cancel)", x)
	}
	if c.Dragging() {
		t.Error("controller not idle after Cancel")
	}
}

func TestDragUpdatesAreUndoneStepwise(t *testing.T) {
	s, c := newFixture(t)

	c.Begin("a", ModeMove, 0, 0)
	c.Move(10, 0)
	c.Move(20, 0)
	c.End()

	s.Undo()
	if x, _, _, _ := geom(t, s, "a"); x != 110 {
		t.Errorf("x after one undo = %d, want 110", x)
	}
}

func TestMoveSnapsToSiblingEdge(t *testing.T) {
	// Sibling "b" spans x [600,700]. Dragging "a" so its left edge lands at
	// 707 should snap to 700 and produce one vertical guide.
	s, c := newFixture(t, WithSnap(0))

	c.Begin("a", ModeMove, 0, 0)
	c.Move(607, 0) // start x 100 + 607 = 707

	if x, _, _, _ := geom(t, s, "a"); x != 700 {
		t.Errorf("x = %d, want snapped 700", x)
	}
	guides := c.Guides()
	if len(guides) != 1 || guides[0].Position != 700 {
		t.Errorf("guides = %+v, want one vertical guide at 700", guides)
	}
}

func TestGuidesClearedOnEnd(t *testing.T) {
	_, c := newFixture(t, WithSnap(0))

	c.Begin("a", ModeMove, 0, 0)
	c.Move(607, 0)
	c.End()
	if len(c.Guides()) != 0 {
		t.Error("guides must be empty while idle")
	}
}
