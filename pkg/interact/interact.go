// Package interact translates pointer event sequences into block mutations.
//
// A Controller is a per-drag state machine: Idle until Begin captures a
// block, then Dragging while Move events stream in, back to Idle on End or
// Cancel. Each Move converts the pointer delta from screen pixels to
// template pixels through the current scale factor, clamps the result, and
// applies it to the store as a sparse patch.
//
// Lifecycle is explicit: callers attach their widest-scope event listeners
// when Begin succeeds and tear them down on End/Cancel. Cancel does not roll
// anything back; the last applied update stands.
package interact

import (
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/signstudio/signstudio/pkg/block"
	"github.com/signstudio/signstudio/pkg/editor"
	"github.com/signstudio/signstudio/pkg/observability"
	"github.com/signstudio/signstudio/pkg/snap"
)

// MinBlockSize is the smallest width or height a resize can produce, in
// template pixels.
const MinBlockSize = 20

// Mode is the active manipulation kind of a drag.
type Mode string

const (
	ModeMove            Mode = "move"
	ModeResizeEast      Mode = "resize-e"
	ModeResizeSouth     Mode = "resize-s"
	ModeResizeSoutheast Mode = "resize-se"
)

// Controller drives one block manipulation at a time against a store.
// Only a single block may be dragging per controller; a second Begin while
// dragging is refused.
type Controller struct {
	store  *editor.Store
	logger *log.Logger

	minSize       int
	snapThreshold int
	snapEnabled   bool

	dragging bool
	mode     Mode
	blockID  string

	// Geometry and pointer position captured at Begin. All clamping during
	// the drag is computed against this snapshot, never against live values.
	startX, startY          int
	startWidth, startHeight int
	pointerX, pointerY      float64

	startedAt time.Time
	updates   int
	guides    []snap.Guide
}

// Option configures a Controller.
type Option func(*Controller)

// WithMinSize overrides the minimum block dimension enforced by resizes.
func WithMinSize(px int) Option {
	return func(c *Controller) {
		if px > 0 {
			c.minSize = px
		}
	}
}

// WithSnap enables snap-to-guide during moves with the given threshold in
// template pixels. A threshold <= 0 uses snap.DefaultThreshold.
func WithSnap(threshold int) Option {
	return func(c *Controller) {
		c.snapEnabled = true
		c.snapThreshold = threshold
	}
}

// New creates an idle controller bound to the store. A nil logger disables
// logging.
func New(store *editor.Store, logger *log.Logger, opts ...Option) *Controller {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	c := &Controller{
		store:   store,
		logger:  logger,
		minSize: MinBlockSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// =============================================================================
// State machine
// =============================================================================

// Begin starts a drag on the given block in the given mode. clientX/clientY
// are the pointer position in screen pixels.
//
// Move mode implicitly selects the block. Resize modes require the block to
// already be selected; a resize handle on an unselected block is not a valid
// capture. Returns whether the drag was captured.
func (c *Controller) Begin(blockID string, mode Mode, clientX, clientY float64) bool {
	if c.dragging || !c.store.IsLoaded() {
		return false
	}
	b, _ := c.store.Template().Block(blockID)
	if b == nil {
		return false
	}
	if mode == ModeMove {
		c.store.SelectBlock(blockID)
	} else if c.store.Selected() != blockID {
		return false
	}

	c.dragging = true
	c.mode = mode
	c.blockID = blockID
	c.startX, c.startY = b.X, b.Y
	c.startWidth, c.startHeight = b.Width, b.Height
	c.pointerX, c.pointerY = clientX, clientY
	c.startedAt = time.Now()
	c.updates = 0
	c.guides = nil

	observability.Interaction().OnDragStart(blockID, string(mode))
	c.logger.Debug("drag begin", "block", blockID, "mode", mode)
	return true
}

// Move processes one pointer-move event at the given screen position.
// No-op while idle. Updates are applied in delivery order.
func (c *Controller) Move(clientX, clientY float64) {
	if !c.dragging {
		return
	}

	scale := c.store.ScaleFactor()
	dx := (clientX - c.pointerX) / scale
	dy := (clientY - c.pointerY) / scale

	var p block.Patch
	switch c.mode {
	case ModeMove:
		p = c.movePatch(dx, dy)
	case ModeResizeEast:
		p = c.resizePatch(dx, 0)
	case ModeResizeSouth:
		p = c.resizePatch(0, dy)
	case ModeResizeSoutheast:
		p = c.resizePatch(dx, dy)
	}
	if p.IsZero() {
		return
	}
	c.store.UpdateBlock(c.blockID, p)
	c.updates++
}

// End terminates the drag normally. The controller returns to Idle.
func (c *Controller) End() {
	c.finish("end")
}

// Cancel force-terminates the drag (touch-cancel, pointer left the window).
// Identical to End: the last applied update stands, nothing is reverted.
func (c *Controller) Cancel() {
	c.finish("cancel")
}

func (c *Controller) finish(reason string) {
	if !c.dragging {
		return
	}
	observability.Interaction().OnDragEnd(c.blockID, string(c.mode), time.Since(c.startedAt), c.updates)
	c.logger.Debug("drag "+reason, "block", c.blockID, "mode", c.mode, "updates", c.updates)
	c.dragging = false
	c.blockID = ""
	c.guides = nil
}

// =============================================================================
// Geometry
// =============================================================================

// movePatch computes the clamped new position for a move drag and returns a
// patch containing only the axes that changed.
func (c *Controller) movePatch(dx, dy float64) block.Patch {
	tpl := c.store.Template()
	x := int(math.Round(float64(c.startX) + dx))
	y := int(math.Round(float64(c.startY) + dy))

	c.guides = nil
	if c.snapEnabled {
		res := snap.Compute(
			snap.Rect{X: x, Y: y, Width: c.startWidth, Height: c.startHeight},
			c.blockID, tpl.Blocks, tpl.Width, tpl.Height, c.snapThreshold,
		)
		if res.HasX {
			x = res.SnappedX
		}
		if res.HasY {
			y = res.SnappedY
		}
		c.guides = res.Guides
	}

	x = clamp(x, 0, tpl.Width-c.startWidth)
	y = clamp(y, 0, tpl.Height-c.startHeight)

	var p block.Patch
	b, _ := tpl.Block(c.blockID)
	if b == nil {
		return p
	}
	if x != b.X {
		p.X = &x
	}
	if y != b.Y {
		p.Y = &y
	}
	return p
}

// resizePatch computes clamped new dimensions for a resize drag. A zero
// delta on an axis leaves that axis untouched. Clamps use the drag-start
// position, so the block never grows past the canvas edge it started within.
func (c *Controller) resizePatch(dx, dy float64) block.Patch {
	tpl := c.store.Template()
	b, _ := tpl.Block(c.blockID)
	if b == nil {
		return block.Patch{}
	}

	var p block.Patch
	if dx != 0 {
		w := int(math.Round(float64(c.startWidth) + dx))
		w = clamp(w, c.minSize, tpl.Width-c.startX)
		if w != b.Width {
			p.Width = &w
		}
	}
	if dy != 0 {
		h := int(math.Round(float64(c.startHeight) + dy))
		h = clamp(h, c.minSize, tpl.Height-c.startY)
		if h != b.Height {
			p.Height = &h
		}
	}
	return p
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// =============================================================================
// Accessors
// =============================================================================

// Dragging reports whether a drag is active.
func (c *Controller) Dragging() bool { return c.dragging }

// ActiveMode returns the mode of the active drag, or "" while idle.
func (c *Controller) ActiveMode() Mode {
	if !c.dragging {
		return ""
	}
	return c.mode
}

// BlockID returns the id of the block being dragged, or "" while idle.
func (c *Controller) BlockID() string { return c.blockID }

// Guides returns the alignment guides from the most recent move event.
// Empty while idle or when nothing is within the snap threshold.
func (c *Controller) Guides() []snap.Guide { return c.guides }
