// Package viewport manages the display scale factor mapping template pixels
// to screen pixels.
//
// The controller owns no scale state of its own. Every zoom path (fit,
// stepped zoom, wheel, pinch) funnels into the store's clamped setter, so
// display scale never touches undo history or the dirty flag.
package viewport

import "github.com/signstudio/signstudio/pkg/editor"

const (
	// ZoomStep is the scale change per manual zoom step.
	ZoomStep = 0.1

	// DefaultPadding is the fixed padding in screen pixels subtracted from
	// the container on each fit-to-window computation.
	DefaultPadding = 48
)

// Controller converts window geometry and zoom gestures into scale changes.
type Controller struct {
	store   *editor.Store
	padding int

	pinching        bool
	pinchStartDist  float64
	pinchStartScale float64
}

// Option configures a Controller.
type Option func(*Controller)

// WithPadding overrides the fit-to-window padding.
func WithPadding(px int) Option {
	return func(c *Controller) {
		if px >= 0 {
			c.padding = px
		}
	}
}

// New creates a controller bound to the store.
func New(store *editor.Store, opts ...Option) *Controller {
	c := &Controller{store: store, padding: DefaultPadding}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Scale returns the current display scale.
func (c *Controller) Scale() float64 { return c.store.ScaleFactor() }

// FitToWindow scales the template to fill the container minus padding,
// never upscaling past 100%. No-op before a template is loaded.
func (c *Controller) FitToWindow(containerWidth, containerHeight int) {
	tpl := c.store.Template()
	if tpl == nil || tpl.Width <= 0 || tpl.Height <= 0 {
		return
	}
	availW := float64(containerWidth - c.padding)
	availH := float64(containerHeight - c.padding)

	scale := availW / float64(tpl.Width)
	if s := availH / float64(tpl.Height); s < scale {
		scale = s
	}
	if scale > 1 {
		scale = 1
	}
	c.store.SetScaleFactor(scale)
}

// ZoomIn increases the scale by one step.
func (c *Controller) ZoomIn() {
	c.store.SetScaleFactor(c.store.ScaleFactor() + ZoomStep)
}

// ZoomOut decreases the scale by one step.
func (c *Controller) ZoomOut() {
	c.store.SetScaleFactor(c.store.ScaleFactor() - ZoomStep)
}

// WheelZoom handles a wheel event. It only acts while the zoom modifier key
// is held, and the wheel direction is inverted: wheel-down (positive deltaY)
// zooms out. Returns whether the event was consumed.
func (c *Controller) WheelZoom(deltaY float64, modifier bool) bool {
	if !modifier || deltaY == 0 {
		return false
	}
	if deltaY > 0 {
		c.ZoomOut()
	} else {
		c.ZoomIn()
	}
	return true
}

// =============================================================================
// Pinch zoom
// =============================================================================

// PinchBegin starts pinch tracking when the second finger lands, capturing
// the initial two-finger distance and the scale at that moment.
func (c *Controller) PinchBegin(distance float64) {
	if distance <= 0 {
		return
	}
	c.pinching = true
	c.pinchStartDist = distance
	c.pinchStartScale = c.store.ScaleFactor()
}

// PinchMove rescales proportionally to the distance ratio since PinchBegin.
// No-op unless a pinch is being tracked.
func (c *Controller) PinchMove(distance float64) {
	if !c.pinching || distance <= 0 {
		return
	}
	c.store.SetScaleFactor(c.pinchStartScale * (distance / c.pinchStartDist))
}

// PinchEnd stops pinch tracking. Call when fewer than two touches remain.
func (c *Controller) PinchEnd() {
	c.pinching = false
	c.pinchStartDist = 0
	c.pinchStartScale = 0
}

// Pinching reports whether a pinch gesture is being tracked.
func (c *Controller) Pinching() bool { return c.pinching }
