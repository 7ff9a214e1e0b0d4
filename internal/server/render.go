package server

import (
	"bytes"
	"net/http"
	"strconv"
	"sync"

	"github.com/fogleman/gg"
	"github.com/go-chi/chi/v5"

	"github.com/signstudio/signstudio/pkg/block"
	signerrors "github.com/signstudio/signstudio/pkg/errors"
)

// maxRenderDim caps requested preview dimensions so a bad query cannot
// allocate an absurd canvas.
const maxRenderDim = 4096

// handleRenderBlock rasterizes one block preview from its render query.
//
// The cache key is the canonical query with the cache-defeating token
// stripped: the token changes the URL, the remaining attributes identify
// the image.
func (s *Server) handleRenderBlock(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	q.Del("token")
	key := s.keyer.RenderKey(q.Encode())

	if png, hit, err := s.cache.Get(r.Context(), key); err == nil && hit {
		servePNG(w, png, false)
		return
	}

	b := block.FromRecord(recordFromQuery(r))
	png, err := renderBlock(b)
	if err != nil {
		s.respondError(w, signerrors.Wrap(signerrors.ErrCodeInternal, err, "render failed"))
		return
	}
	if err := s.cache.Set(r.Context(), key, png, s.cacheTTL); err != nil {
		s.logger.Debug("cache set failed", "key", key, "err", err)
	}
	servePNG(w, png, false)
}

var emptyPNGOnce = sync.OnceValues(func() ([]byte, error) {
	dc := gg.NewContext(1, 1)
	var buf bytes.Buffer
	err := dc.EncodePNG(&buf)
	return buf.Bytes(), err
})

// handleRenderEmpty serves the stable transparent variant used for Picture
// blocks with no media. The response is immutable, so clients cache it
// forever.
func (s *Server) handleRenderEmpty(w http.ResponseWriter, r *http.Request) {
	png, err := emptyPNGOnce()
	if err != nil {
		s.respondError(w, signerrors.Wrap(signerrors.ErrCodeInternal, err, "render failed"))
		return
	}
	servePNG(w, png, true)
}

// handleBackground serves a deterministic placeholder image for a
// background id: dev environments have no real asset store, but the editor
// still needs a fetchable URL per id.
func (s *Server) handleBackground(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	key := s.keyer.BackgroundKey(id)

	if png, hit, err := s.cache.Get(r.Context(), key); err == nil && hit {
		servePNG(w, png, true)
		return
	}

	png, err := renderBackground(id, s.zone.Width/4, s.zone.Height/4)
	if err != nil {
		s.respondError(w, signerrors.Wrap(signerrors.ErrCodeInternal, err, "render failed"))
		return
	}
	if err := s.cache.Set(r.Context(), key, png, s.cacheTTL); err != nil {
		s.logger.Debug("cache set failed", "key", key, "err", err)
	}
	servePNG(w, png, true)
}

func servePNG(w http.ResponseWriter, png []byte, immutable bool) {
	w.Header().Set("Content-Type", "image/png")
	if immutable {
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	} else {
		w.Header().Set("Cache-Control", "no-store")
	}
	w.Write(png)
}

// =============================================================================
// Rasterization
// =============================================================================

// renderBlock draws one block at its native size.
//
// This is a dev-quality approximation of the production renderer: fill,
// outline, opacity, and rotation are honored; text is indicated with an
// alignment strip rather than shaped glyphs, and media blocks get a crossed
// placeholder.
func renderBlock(b block.Block) ([]byte, error) {
	w := clampDim(b.Width)
	h := clampDim(b.Height)

	dc := gg.NewContext(w, h)
	if b.RotateDegrees != 0 {
		dc.RotateAbout(gg.Radians(float64(b.RotateDegrees)), float64(w)/2, float64(h)/2)
	}

	tracePath(dc, b.Type, w, h)
	setColor(dc, b.FillColor, b.FillOpacity)
	if b.Outline && b.OutlineWidth > 0 {
		dc.FillPreserve()
		setColor(dc, b.OutlineColor, b.OutlineOpacity)
		dc.SetLineWidth(float64(b.OutlineWidth))
		dc.Stroke()
	} else {
		dc.Fill()
	}

	switch b.Type {
	case block.TypeText:
		drawTextStrip(dc, b, w, h)
	case block.TypePicture, block.TypeWebPicture, block.TypeVideo:
		drawMediaCross(dc, w, h)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func tracePath(dc *gg.Context, t block.Type, w, h int) {
	if t == block.TypeEllipse {
		dc.DrawEllipse(float64(w)/2, float64(h)/2, float64(w)/2, float64(h)/2)
		return
	}
	dc.DrawRectangle(0, 0, float64(w), float64(h))
}

// drawTextStrip marks a text block with a baseline strip in the text color,
// positioned by the block's vertical alignment.
func drawTextStrip(dc *gg.Context, b block.Block, w, h int) {
	strip := float64(h) / 5
	y := float64(h)/2 - strip/2
	switch b.VAlign {
	case block.AlignTop:
		y = strip
	case block.AlignBottom:
		y = float64(h) - 2*strip
	}
	setColor(dc, b.TextColor, b.TextOpacity)
	dc.DrawRectangle(float64(w)/8, y, float64(w)*3/4, strip)
	dc.Fill()
}

// drawMediaCross marks media placeholders with a diagonal cross.
func drawMediaCross(dc *gg.Context, w, h int) {
	dc.SetRGBA(0.4, 0.4, 0.4, 0.8)
	dc.SetLineWidth(2)
	dc.DrawLine(0, 0, float64(w), float64(h))
	dc.DrawLine(0, float64(h), float64(w), 0)
	dc.Stroke()
}

// renderBackground draws a solid placeholder whose color is derived from
// the id, so distinct backgrounds are visually distinct.
func renderBackground(id string, w, h int) ([]byte, error) {
	w = clampDim(w)
	h = clampDim(h)

	dc := gg.NewContext(w, h)
	r, g, b := colorFromID(id)
	dc.SetRGB(r, g, b)
	dc.Clear()

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func colorFromID(id string) (r, g, b float64) {
	var sum uint32
	for _, c := range id {
		sum = sum*31 + uint32(c)
	}
	r = float64((sum>>16)&0xFF) / 255
	g = float64((sum>>8)&0xFF) / 255
	b = float64(sum&0xFF) / 255
	return r, g, b
}

func clampDim(v int) int {
	if v < 1 {
		return 1
	}
	if v > maxRenderDim {
		return maxRenderDim
	}
	return v
}

// setColor applies a 6-hex-digit color with a 0-255 opacity.
func setColor(dc *gg.Context, hex string, opacity int) {
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil || len(hex) != 6 {
		n = 0
	}
	a := float64(block.ClampOpacity(opacity)) / 255
	dc.SetRGBA(
		float64((n>>16)&0xFF)/255,
		float64((n>>8)&0xFF)/255,
		float64(n&0xFF)/255,
		a,
	)
}
