package block

// Default geometry constants in template pixels.
const (
	// DefaultWidth is the initial width for newly created blocks.
	DefaultWidth = 200

	// DefaultTextHeight is the initial height for text blocks. Text blocks
	// start shorter than shapes because a single line of copy rarely needs a
	// square frame.
	DefaultTextHeight = 50

	// DefaultShapeHeight is the initial height for all non-text blocks.
	DefaultShapeHeight = 150
)

// Default style constants.
const (
	DefaultTextColor    = "000000"
	DefaultFillColor    = "FFFFFF"
	DefaultOutlineColor = "000000"
	DefaultShadowColor  = "000000"
	DefaultGlowColor    = "FFFF00"
	DefaultFontSize     = 20
	OpacityOpaque       = 255
	OpacityHalf         = 128
)

// Defaults returns a block of type t with every attribute set to its
// type-appropriate default. ID and Name are left empty.
//
// The invariant here is totality: every field has a meaningful value for
// every type, even when the field has no visual effect for that type. The
// load path relies on this to turn partial wire records into complete blocks
// by overlaying onto Defaults.
func Defaults(t Type) Block {
	b := Block{
		Type:   t,
		Width:  DefaultWidth,
		Height: DefaultShapeHeight,

		FontSize:    DefaultFontSize,
		TextColor:   DefaultTextColor,
		TextOpacity: OpacityOpaque,
		HAlign:      AlignCenter,
		VAlign:      AlignMiddle,

		FillColor:       DefaultFillColor,
		FillOpacity:     OpacityOpaque,
		GradientColor:   DefaultFillColor,
		GradientOpacity: OpacityOpaque,

		OutlineColor:   DefaultOutlineColor,
		OutlineOpacity: OpacityOpaque,
		OutlineWidth:   1,

		ShadowColor:   DefaultShadowColor,
		ShadowOpacity: OpacityHalf,
		ShadowOffsetX: 5,
		ShadowOffsetY: 5,
		ShadowBlur:    5,

		ReflectionOpacity: OpacityHalf,

		GlowColor:   DefaultGlowColor,
		GlowOpacity: OpacityHalf,
		GlowRadius:  5,

		Loop:  true,
		Muted: true,
	}
	if t == TypeText {
		b.Height = DefaultTextHeight
	}
	return b
}
