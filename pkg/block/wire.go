package block

// Record is a loosely-typed block record as it appears on the wire.
// Keys follow the host's external naming convention; values are whatever the
// JSON decoder produced (float64 for numbers, bool, string).
type Record map[string]any

// Wire field names that are not simple capitalizations of the internal
// names. The full internal↔external mapping is an explicit table rather than
// a runtime case conversion precisely because of fields like these.
const (
	wireName      = "BlockName"
	wireType      = "BlockType"
	wireX         = "PosX"
	wireY         = "PosY"
	wireRotation  = "Rotation"
	wireFontID    = "FontGUID"
	wireMediaID   = "MediaGUID"
	wireFillColor = "BackColor"
	wireFillOpac  = "BackOpacity"
)

// fieldMap is one bidirectional binding between an internal block attribute
// and its external wire name.
type fieldMap struct {
	external string
	apply    func(b *Block, v any) // overlay wire value onto block
	read     func(b Block) any     // project block value for save
}

// fields is the single source of truth for the wire mapping. Order matters
// only for deterministic iteration in tests; lookup is by external name.
var fields = []fieldMap{
	{wireName, applyString(func(b *Block) *string { return &b.Name }), func(b Block) any { return b.Name }},
	{wireX, applyInt(func(b *Block) *int { return &b.X }), func(b Block) any { return b.X }},
	{wireY, applyInt(func(b *Block) *int { return &b.Y }), func(b Block) any { return b.Y }},
	{"Width", applyInt(func(b *Block) *int { return &b.Width }), func(b Block) any { return b.Width }},
	{"Height", applyInt(func(b *Block) *int { return &b.Height }), func(b Block) any { return b.Height }},
	{wireRotation, applyRotation(), func(b Block) any { return b.RotateDegrees }},

	{"Text", applyString(func(b *Block) *string { return &b.Text }), func(b Block) any { return b.Text }},
	{wireFontID, applyString(func(b *Block) *string { return &b.FontID }), func(b Block) any { return b.FontID }},
	{"FontSize", applyInt(func(b *Block) *int { return &b.FontSize }), func(b Block) any { return b.FontSize }},
	{"Bold", applyBool(func(b *Block) *bool { return &b.Bold }), func(b Block) any { return b.Bold }},
	{"Italic", applyBool(func(b *Block) *bool { return &b.Italic }), func(b Block) any { return b.Italic }},
	{"Underline", applyBool(func(b *Block) *bool { return &b.Underline }), func(b Block) any { return b.Underline }},
	{"TextColor", applyColor(func(b *Block) *string { return &b.TextColor }), func(b Block) any { return b.TextColor }},
	{"TextOpacity", applyOpacity(func(b *Block) *int { return &b.TextOpacity }), func(b Block) any { return b.TextOpacity }},
	{"HorizontalAlignment", applyString(func(b *Block) *string { return &b.HAlign }), func(b Block) any { return b.HAlign }},
	{"VerticalAlignment", applyString(func(b *Block) *string { return &b.VAlign }), func(b Block) any { return b.VAlign }},

	{wireFillColor, applyColor(func(b *Block) *string { return &b.FillColor }), func(b Block) any { return b.FillColor }},
	{wireFillOpac, applyOpacity(func(b *Block) *int { return &b.FillOpacity }), func(b Block) any { return b.FillOpacity }},
	{"GradientEnabled", applyBool(func(b *Block) *bool { return &b.Gradient }), func(b Block) any { return b.Gradient }},
	{"GradientColor", applyColor(func(b *Block) *string { return &b.GradientColor }), func(b Block) any { return b.GradientColor }},
	{"GradientOpacity", applyOpacity(func(b *Block) *int { return &b.GradientOpacity }), func(b Block) any { return b.GradientOpacity }},
	{"GradientAngle", applyInt(func(b *Block) *int { return &b.GradientAngle }), func(b Block) any { return b.GradientAngle }},

	{"OutlineEnabled", applyBool(func(b *Block) *bool { return &b.Outline }), func(b Block) any { return b.Outline }},
	{"OutlineColor", applyColor(func(b *Block) *string { return &b.OutlineColor }), func(b Block) any { return b.OutlineColor }},
	{"OutlineOpacity", applyOpacity(func(b *Block) *int { return &b.OutlineOpacity }), func(b Block) any { return b.OutlineOpacity }},
	{"OutlineWidth", applyInt(func(b *Block) *int { return &b.OutlineWidth }), func(b Block) any { return b.OutlineWidth }},

	{"ShadowEnabled", applyBool(func(b *Block) *bool { return &b.Shadow }), func(b Block) any { return b.Shadow }},
	{"ShadowColor", applyColor(func(b *Block) *string { return &b.ShadowColor }), func(b Block) any { return b.ShadowColor }},
	{"ShadowOpacity", applyOpacity(func(b *Block) *int { return &b.ShadowOpacity }), func(b Block) any { return b.ShadowOpacity }},
	{"ShadowOffsetX", applyInt(func(b *Block) *int { return &b.ShadowOffsetX }), func(b Block) any { return b.ShadowOffsetX }},
	{"ShadowOffsetY", applyInt(func(b *Block) *int { return &b.ShadowOffsetY }), func(b Block) any { return b.ShadowOffsetY }},
	{"ShadowBlur", applyInt(func(b *Block) *int { return &b.ShadowBlur }), func(b Block) any { return b.ShadowBlur }},

	{"ReflectionEnabled", applyBool(func(b *Block) *bool { return &b.Reflection }), func(b Block) any { return b.Reflection }},
	{"ReflectionOpacity", applyOpacity(func(b *Block) *int { return &b.ReflectionOpacity }), func(b Block) any { return b.ReflectionOpacity }},
	{"ReflectionOffset", applyInt(func(b *Block) *int { return &b.ReflectionOffset }), func(b Block) any { return b.ReflectionOffset }},

	{"GlowEnabled", applyBool(func(b *Block) *bool { return &b.Glow }), func(b Block) any { return b.Glow }},
	{"GlowColor", applyColor(func(b *Block) *string { return &b.GlowColor }), func(b Block) any { return b.GlowColor }},
	{"GlowOpacity", applyOpacity(func(b *Block) *int { return &b.GlowOpacity }), func(b Block) any { return b.GlowOpacity }},
	{"GlowRadius", applyInt(func(b *Block) *int { return &b.GlowRadius }), func(b Block) any { return b.GlowRadius }},

	{wireMediaID, applyString(func(b *Block) *string { return &b.MediaID }), func(b Block) any { return b.MediaID }},
	{"SourceURL", applyString(func(b *Block) *string { return &b.SourceURL }), func(b Block) any { return b.SourceURL }},
	{"Loop", applyBool(func(b *Block) *bool { return &b.Loop }), func(b Block) any { return b.Loop }},
	{"Muted", applyBool(func(b *Block) *bool { return &b.Muted }), func(b Block) any { return b.Muted }},
}

// FromRecord normalizes a loosely-typed wire record into a canonical Block.
//
// Normalization is defaulting-then-overlaying: the block starts from the
// full default set for its type, then each recognized wire field is merged
// on top with range clamping. Missing fields keep their defaults, unknown
// fields are ignored, and malformed values (wrong type, invalid color) fall
// back to the default. A synthetic ID is generated when the record carries
// none, so the result is always fully populated and addressable.
func FromRecord(rec Record) Block {
	t := parseType(rec[wireType])
	b := Defaults(t)

	for _, f := range fields {
		if v, ok := rec[f.external]; ok {
			f.apply(&b, v)
		}
	}

	if id, ok := asString(rec["ID"]); ok && id != "" {
		b.ID = id
	} else {
		b.ID = NewID()
	}
	return b
}

// ToRecord projects a block into the external wire naming convention.
// The internal ID is deliberately omitted: ids are a session-local concern
// and the host assigns its own identifiers on save.
func ToRecord(b Block) Record {
	rec := Record{wireType: externalType(b.Type)}
	for _, f := range fields {
		rec[f.external] = f.read(b)
	}
	return rec
}

// parseType maps an external type tag onto a Type, defaulting to rectangle
// for unknown or missing tags so malformed records still normalize.
func parseType(v any) Type {
	s, ok := asString(v)
	if !ok {
		return TypeRectangle
	}
	switch s {
	case "Text":
		return TypeText
	case "Rectangle":
		return TypeRectangle
	case "Ellipse":
		return TypeEllipse
	case "Picture":
		return TypePicture
	case "WebPicture":
		return TypeWebPicture
	case "Video":
		return TypeVideo
	default:
		return TypeRectangle
	}
}

func externalType(t Type) string {
	switch t {
	case TypeText:
		return "Text"
	case TypeEllipse:
		return "Ellipse"
	case TypePicture:
		return "Picture"
	case TypeWebPicture:
		return "WebPicture"
	case TypeVideo:
		return "Video"
	default:
		return "Rectangle"
	}
}

// =============================================================================
// Overlay helpers - coercion from loosely-typed wire values
// =============================================================================

func applyString(field func(*Block) *string) func(*Block, any) {
	return func(b *Block, v any) {
		if s, ok := asString(v); ok {
			*field(b) = s
		}
	}
}

func applyInt(field func(*Block) *int) func(*Block, any) {
	return func(b *Block, v any) {
		if n, ok := asInt(v); ok {
			*field(b) = n
		}
	}
}

func applyBool(field func(*Block) *bool) func(*Block, any) {
	return func(b *Block, v any) {
		if t, ok := asBool(v); ok {
			*field(b) = t
		}
	}
}

func applyColor(field func(*Block) *string) func(*Block, any) {
	return func(b *Block, v any) {
		if s, ok := asString(v); ok && ValidColor(s) {
			*field(b) = s
		}
	}
}

func applyOpacity(field func(*Block) *int) func(*Block, any) {
	return func(b *Block, v any) {
		if n, ok := asInt(v); ok {
			*field(b) = ClampOpacity(n)
		}
	}
}

func applyRotation() func(*Block, any) {
	return func(b *Block, v any) {
		if n, ok := asInt(v); ok {
			b.RotateDegrees = ClampRotation(n)
		}
	}
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case int64:
		return int(n), true
	default:
		return 0, false
	}
}

func asBool(v any) (bool, bool) {
	t, ok := v.(bool)
	return t, ok
}
