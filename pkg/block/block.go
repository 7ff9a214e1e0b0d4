// Package block defines the Block content unit and its canonical attribute set.
//
// A Block is a positioned, styled rectangle on a template canvas. Every
// attribute has a total default regardless of block type: a Rectangle carries
// (unused) text attributes and a Text block carries (unused) media attributes.
// This keeps normalization simple and guarantees that any block, however
// partial its source record, is fully populated after FromRecord.
//
// Geometry is expressed in template pixel coordinates. Screen mapping is the
// viewport's concern and never leaks into this package.
package block

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Type tags the content kind of a block.
type Type string

// Supported block types.
const (
	TypeText       Type = "text"
	TypeRectangle  Type = "rectangle"
	TypeEllipse    Type = "ellipse"
	TypePicture    Type = "picture"
	TypeWebPicture Type = "webpicture"
	TypeVideo      Type = "video"
)

// Types lists all supported block types in display order.
var Types = []Type{TypeText, TypeRectangle, TypeEllipse, TypePicture, TypeWebPicture, TypeVideo}

// Valid reports whether t is a known block type.
func (t Type) Valid() bool {
	switch t {
	case TypeText, TypeRectangle, TypeEllipse, TypePicture, TypeWebPicture, TypeVideo:
		return true
	}
	return false
}

// NamePrefix returns the prefix used when auto-generating block names
// (e.g. "Text" for "Text1", "Text2", ...).
func (t Type) NamePrefix() string {
	switch t {
	case TypeText:
		return "Text"
	case TypeRectangle:
		return "Rectangle"
	case TypeEllipse:
		return "Ellipse"
	case TypePicture:
		return "Picture"
	case TypeWebPicture:
		return "WebPicture"
	case TypeVideo:
		return "Video"
	default:
		return "Block"
	}
}

// Alignment values for text blocks.
const (
	AlignLeft   = "left"
	AlignCenter = "center"
	AlignRight  = "right"
	AlignTop    = "top"
	AlignMiddle = "middle"
	AlignBottom = "bottom"
)

// Block is a rectangular content unit on the template canvas.
//
// The zero value is not usable - construct blocks with New, Defaults, or
// FromRecord so every attribute carries its type-appropriate default.
// Blocks are owned by their template and mutated only through the editor
// store; the struct itself is a plain value with no behavior beyond geometry
// helpers.
type Block struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type Type   `json:"type"`

	// Geometry in template pixels.
	X             int `json:"x"`
	Y             int `json:"y"`
	Width         int `json:"width"`
	Height        int `json:"height"`
	RotateDegrees int `json:"rotateDegrees"` // -360..360

	// Text attributes.
	Text        string `json:"text"`
	FontID      string `json:"fontId"`
	FontSize    int    `json:"fontSize"`
	Bold        bool   `json:"bold"`
	Italic      bool   `json:"italic"`
	Underline   bool   `json:"underline"`
	TextColor   string `json:"textColor"`   // 6 hex digits, no prefix
	TextOpacity int    `json:"textOpacity"` // 0..255
	HAlign      string `json:"hAlign"`
	VAlign      string `json:"vAlign"`

	// Fill attributes.
	FillColor       string `json:"fillColor"`
	FillOpacity     int    `json:"fillOpacity"`
	Gradient        bool   `json:"gradient"`
	GradientColor   string `json:"gradientColor"`
	GradientOpacity int    `json:"gradientOpacity"`
	GradientAngle   int    `json:"gradientAngle"`

	// Outline attributes.
	Outline        bool   `json:"outline"`
	OutlineColor   string `json:"outlineColor"`
	OutlineOpacity int    `json:"outlineOpacity"`
	OutlineWidth   int    `json:"outlineWidth"`

	// Shadow attributes.
	Shadow        bool   `json:"shadow"`
	ShadowColor   string `json:"shadowColor"`
	ShadowOpacity int    `json:"shadowOpacity"`
	ShadowOffsetX int    `json:"shadowOffsetX"`
	ShadowOffsetY int    `json:"shadowOffsetY"`
	ShadowBlur    int    `json:"shadowBlur"`

	// Reflection attributes.
	Reflection        bool `json:"reflection"`
	ReflectionOpacity int  `json:"reflectionOpacity"`
	ReflectionOffset  int  `json:"reflectionOffset"`

	// Glow attributes.
	Glow        bool   `json:"glow"`
	GlowColor   string `json:"glowColor"`
	GlowOpacity int    `json:"glowOpacity"`
	GlowRadius  int    `json:"glowRadius"`

	// Media attributes.
	MediaID   string `json:"mediaId"`
	SourceURL string `json:"sourceUrl"`
	Loop      bool   `json:"loop"`
	Muted     bool   `json:"muted"`
}

// Geometry helpers used by the snap engine and interaction controller.

// Right returns the x coordinate of the block's right edge.
func (b Block) Right() int { return b.X + b.Width }

// Bottom returns the y coordinate of the block's bottom edge.
func (b Block) Bottom() int { return b.Y + b.Height }

// CenterX returns the horizontal center in template pixels, rounded down for
// odd widths like the rest of the integer pixel model.
func (b Block) CenterX() int { return b.X + b.Width/2 }

// CenterY returns the vertical center in template pixels, rounded down for
// odd heights.
func (b Block) CenterY() int { return b.Y + b.Height/2 }

// New creates a fully-defaulted block of the given type with a fresh
// synthetic ID. Name is left empty; unique name assignment is the store's
// responsibility because uniqueness is a template-level invariant.
func New(t Type) Block {
	b := Defaults(t)
	b.ID = NewID()
	return b
}

// NewID generates a collision-resistant synthetic block ID.
// The ID combines a millisecond timestamp with a random suffix so ids remain
// sortable by creation time while staying unique across rapid insertions.
func NewID() string {
	return fmt.Sprintf("blk-%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

var hexColorRe = regexp.MustCompile(`^[0-9a-fA-F]{6}$`)

// ValidColor reports whether s is a 6-hex-digit color without prefix.
func ValidColor(s string) bool { return hexColorRe.MatchString(s) }

// ClampOpacity clamps v to the valid opacity range 0..255.
func ClampOpacity(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

// ClampRotation clamps v to the valid rotation range -360..360 degrees.
func ClampRotation(v int) int {
	if v < -360 {
		return -360
	}
	if v > 360 {
		return 360
	}
	return v
}
