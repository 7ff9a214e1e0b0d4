// Package snap computes alignment guides and snapped coordinates for a block
// being dragged against the canvas and its sibling blocks.
//
// Everything here is a pure function of the inputs. The engine is advisory:
// it never mutates editor state, it only proposes a snapped position and the
// guide lines to visualize. Callers feed SnappedX/SnappedY back into their
// move computation when present.
package snap

import "github.com/signstudio/signstudio/pkg/block"

// DefaultThreshold is the snap distance in template pixels. A candidate only
// matches when its distance is strictly below the threshold.
const DefaultThreshold = 10

// Axis identifies the orientation of a guide line.
type Axis int

const (
	// Vertical guides are lines at a fixed x position.
	Vertical Axis = iota
	// Horizontal guides are lines at a fixed y position.
	Horizontal
)

// Guide is one alignment line, expressed in template coordinates.
type Guide struct {
	Axis     Axis
	Position int
}

// Rect is the tentative geometry of the block being dragged. It is a plain
// value because mid-drag positions exist only in the interaction layer, never
// in the committed template.
type Rect struct {
	X, Y          int
	Width, Height int
}

// Result holds at most one guide per axis plus the coordinate that would
// align the moving block to it.
type Result struct {
	Guides   []Guide
	SnappedX int
	SnappedY int
	HasX     bool
	HasY     bool
}

// Compute evaluates the moving rect against the canvas edges, the canvas
// center, and every other block's edges and centers, independently per axis.
//
// For each axis, three alignments of the moving block (leading edge, trailing
// edge, center) are checked against every target. The closest match strictly
// inside the threshold wins; ties go to the first candidate found, scanning
// canvas targets before blocks and blocks in sequence order. The block with
// id excludeID is skipped so a block never snaps to itself. A threshold <= 0
// falls back to DefaultThreshold.
func Compute(moving Rect, excludeID string, blocks []block.Block, canvasWidth, canvasHeight, threshold int) Result {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	xTargets := make([]int, 0, 3+3*len(blocks))
	xTargets = append(xTargets, 0, canvasWidth, canvasWidth/2)
	yTargets := make([]int, 0, 3+3*len(blocks))
	yTargets = append(yTargets, 0, canvasHeight, canvasHeight/2)
	for i := range blocks {
		b := &blocks[i]
		if b.ID == excludeID {
			continue
		}
		xTargets = append(xTargets, b.X, b.Right(), b.CenterX())
		yTargets = append(yTargets, b.Y, b.Bottom(), b.CenterY())
	}

	var res Result
	if target, snapped, ok := bestMatch(moving.X, moving.Width, xTargets, threshold); ok {
		res.Guides = append(res.Guides, Guide{Axis: Vertical, Position: target})
		res.SnappedX = snapped
		res.HasX = true
	}
	if target, snapped, ok := bestMatch(moving.Y, moving.Height, yTargets, threshold); ok {
		res.Guides = append(res.Guides, Guide{Axis: Horizontal, Position: target})
		res.SnappedY = snapped
		res.HasY = true
	}
	return res
}

// bestMatch scans one axis. leading is the moving block's near edge on that
// axis, size its extent. Returns the winning target, the leading coordinate
// that aligns the chosen edge/center to it, and whether anything was inside
// the threshold.
func bestMatch(leading, size int, targets []int, threshold int) (target, snapped int, ok bool) {
	best := threshold
	trailing := leading + size
	center := leading + size/2

	for _, t := range targets {
		// Leading edge, trailing edge, then center. Strict comparison keeps
		// the first-found candidate on equal distance.
		if d := abs(leading - t); d < best {
			best, target, snapped, ok = d, t, t, true
		}
		if d := abs(trailing - t); d < best {
			best, target, snapped, ok = d, t, t-size, true
		}
		if d := abs(center - t); d < best {
			best, target, snapped, ok = d, t, t-size/2, true
		}
	}
	return target, snapped, ok
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
