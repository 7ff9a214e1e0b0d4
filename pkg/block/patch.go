package block

// Patch is a sparse partial update for a block. Nil fields are left
// untouched; set fields are merged into the target block by Apply.
//
// The patch is a dumb merge by design: cross-field consistency (keeping
// x+width inside the canvas, for example) is the interaction controller's
// job, not the store's. Scalar ranges are still clamped here because
// out-of-range numeric input is always recovered by clamping, never
// rejected.
type Patch struct {
	Name *string

	X             *int
	Y             *int
	Width         *int
	Height        *int
	RotateDegrees *int

	Text        *string
	FontID      *string
	FontSize    *int
	Bold        *bool
	Italic      *bool
	Underline   *bool
	TextColor   *string
	TextOpacity *int
	HAlign      *string
	VAlign      *string

	FillColor       *string
	FillOpacity     *int
	Gradient        *bool
	GradientColor   *string
	GradientOpacity *int
	GradientAngle   *int

	Outline        *bool
	OutlineColor   *string
	OutlineOpacity *int
	OutlineWidth   *int

	Shadow        *bool
	ShadowColor   *string
	ShadowOpacity *int
	ShadowOffsetX *int
	ShadowOffsetY *int
	ShadowBlur    *int

	Reflection        *bool
	ReflectionOpacity *int
	ReflectionOffset  *int

	Glow        *bool
	GlowColor   *string
	GlowOpacity *int
	GlowRadius  *int

	MediaID   *string
	SourceURL *string
	Loop      *bool
	Muted     *bool
}

// IsZero reports whether the patch carries no fields at all.
func (p Patch) IsZero() bool {
	return p == Patch{}
}

// Apply merges the patch into b. Opacities are clamped to 0..255, rotation
// to -360..360, and color fields are ignored unless they are valid
// 6-hex-digit strings. Geometry fields are merged verbatim.
func (p Patch) Apply(b *Block) {
	setString(&b.Name, p.Name)
	setInt(&b.X, p.X)
	setInt(&b.Y, p.Y)
	setInt(&b.Width, p.Width)
	setInt(&b.Height, p.Height)
	if p.RotateDegrees != nil {
		b.RotateDegrees = ClampRotation(*p.RotateDegrees)
	}

	setString(&b.Text, p.Text)
	setString(&b.FontID, p.FontID)
	setInt(&b.FontSize, p.FontSize)
	setBool(&b.Bold, p.Bold)
	setBool(&b.Italic, p.Italic)
	setBool(&b.Underline, p.Underline)
	setColor(&b.TextColor, p.TextColor)
	setOpacity(&b.TextOpacity, p.TextOpacity)
	setString(&b.HAlign, p.HAlign)
	setString(&b.VAlign, p.VAlign)

	setColor(&b.FillColor, p.FillColor)
	setOpacity(&b.FillOpacity, p.FillOpacity)
	setBool(&b.Gradient, p.Gradient)
	setColor(&b.GradientColor, p.GradientColor)
	setOpacity(&b.GradientOpacity, p.GradientOpacity)
	setInt(&b.GradientAngle, p.GradientAngle)

	setBool(&b.Outline, p.Outline)
	setColor(&b.OutlineColor, p.OutlineColor)
	setOpacity(&b.OutlineOpacity, p.OutlineOpacity)
	setInt(&b.OutlineWidth, p.OutlineWidth)

	setBool(&b.Shadow, p.Shadow)
	setColor(&b.ShadowColor, p.ShadowColor)
	setOpacity(&b.ShadowOpacity, p.ShadowOpacity)
	setInt(&b.ShadowOffsetX, p.ShadowOffsetX)
	setInt(&b.ShadowOffsetY, p.ShadowOffsetY)
	setInt(&b.ShadowBlur, p.ShadowBlur)

	setBool(&b.Reflection, p.Reflection)
	setOpacity(&b.ReflectionOpacity, p.ReflectionOpacity)
	setInt(&b.ReflectionOffset, p.ReflectionOffset)

	setBool(&b.Glow, p.Glow)
	setColor(&b.GlowColor, p.GlowColor)
	setOpacity(&b.GlowOpacity, p.GlowOpacity)
	setInt(&b.GlowRadius, p.GlowRadius)

	setString(&b.MediaID, p.MediaID)
	setString(&b.SourceURL, p.SourceURL)
	setBool(&b.Loop, p.Loop)
	setBool(&b.Muted, p.Muted)
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func setOpacity(dst *int, src *int) {
	if src != nil {
		*dst = ClampOpacity(*src)
	}
}

func setColor(dst *string, src *string) {
	if src != nil && ValidColor(*src) {
		*dst = *src
	}
}
