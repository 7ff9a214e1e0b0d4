// Package server implements the development render and template service.
//
// The editor core treats rendering as external: blocks are displayed as
// images addressed by deterministic queries (see pkg/preview). This server
// is the development stand-in for that collaborator. It rasterizes block
// previews with gg, caches the encoded PNGs, and persists saved templates
// through an archive backend.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/signstudio/signstudio/pkg/archive"
	"github.com/signstudio/signstudio/pkg/block"
	"github.com/signstudio/signstudio/pkg/cache"
	signerrors "github.com/signstudio/signstudio/pkg/errors"
	"github.com/signstudio/signstudio/pkg/template"
)

// Config holds the server's collaborators. Archive is required; everything
// else has a working default.
type Config struct {
	ListenAddr string
	Archive    archive.Archive
	Cache      cache.Cache
	Keyer      cache.Keyer
	Logger     *log.Logger
	CacheTTL   time.Duration

	// Zone served with load payloads. Zero values fall back to the default
	// template dimensions.
	ZoneWidth  int
	ZoneHeight int
}

// Server is the dev render and template service.
type Server struct {
	addr     string
	archive  archive.Archive
	cache    cache.Cache
	keyer    cache.Keyer
	logger   *log.Logger
	cacheTTL time.Duration
	zone     template.Zone
}

// New creates a server from the config.
func New(cfg Config) (*Server, error) {
	if cfg.Archive == nil {
		return nil, signerrors.New(signerrors.ErrCodeInvalidInput, "server requires an archive backend")
	}
	if cfg.Cache == nil {
		cfg.Cache = cache.NewNullCache()
	}
	if cfg.Keyer == nil {
		cfg.Keyer = cache.NewDefaultKeyer()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	if cfg.ZoneWidth <= 0 {
		cfg.ZoneWidth = template.DefaultWidth
	}
	if cfg.ZoneHeight <= 0 {
		cfg.ZoneHeight = template.DefaultHeight
	}
	return &Server{
		addr:     cfg.ListenAddr,
		archive:  cfg.Archive,
		cache:    cfg.Cache,
		keyer:    cfg.Keyer,
		logger:   cfg.Logger,
		cacheTTL: cfg.CacheTTL,
		zone:     template.Zone{ID: "dev", Name: "Development", Width: cfg.ZoneWidth, Height: cfg.ZoneHeight},
	}, nil
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/render/block", s.handleRenderBlock)
		r.Get("/render/empty", s.handleRenderEmpty)
		r.Get("/backgrounds/{id}", s.handleBackground)
		r.Route("/templates/{id}", func(r chi.Router) {
			r.Get("/payload", s.handlePayload)
			r.Post("/save", s.handleSave)
		})
	})
	return r
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Info("render service listening", "addr", s.addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"elapsed", time.Since(start).Round(time.Millisecond),
		)
	})
}

// =============================================================================
// Template handlers
// =============================================================================

// handlePayload serves the editor load payload for a template: the latest
// archived version of its blocks wrapped in the load contract.
func (s *Server) handlePayload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	doc, err := s.archive.Latest(r.Context(), id)
	if errors.Is(err, archive.ErrNotFound) {
		s.respondError(w, signerrors.New(signerrors.ErrCodeTemplateNotFound, "template has no archived versions"))
		return
	}
	if err != nil {
		s.respondError(w, signerrors.Wrap(signerrors.ErrCodeInternal, err, "archive lookup failed"))
		return
	}

	payload := template.LoadPayload{
		Template: template.WireTemplate{
			ID:           id,
			Name:         doc.Payload.Name,
			BackgroundID: doc.Payload.BackgroundID,
			Blocks:       doc.Payload.Blocks,
		},
		Zone: s.zone,
	}
	s.respondJSON(w, http.StatusOK, payload)
}

// saveResponse is the acknowledgement returned after an accepted save.
type saveResponse struct {
	ID         string    `json:"id"`
	TemplateID string    `json:"template_id"`
	Version    int       `json:"version"`
	SavedAt    time.Time `json:"saved_at"`
}

// handleSave accepts a save payload and archives it as the template's next
// version.
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var payload template.SavePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.respondError(w, signerrors.Wrap(signerrors.ErrCodeInvalidPayload, err, "malformed save payload"))
		return
	}
	if err := signerrors.ValidateTemplateName(payload.Name); err != nil {
		s.respondError(w, err)
		return
	}

	doc, err := s.archive.Save(r.Context(), id, payload)
	if err != nil {
		s.respondError(w, signerrors.Wrap(signerrors.ErrCodeInternal, err, "archive save failed"))
		return
	}
	s.logger.Info("template saved", "template", id, "version", doc.Version, "blocks", len(payload.Blocks))
	s.respondJSON(w, http.StatusOK, saveResponse{
		ID:         doc.ID,
		TemplateID: doc.TemplateID,
		Version:    doc.Version,
		SavedAt:    doc.SavedAt,
	})
}

// =============================================================================
// Responses
// =============================================================================

func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "err", err)
	}
}

type errorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

func (s *Server) respondError(w http.ResponseWriter, err error) {
	code := signerrors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case signerrors.ErrCodeNotFound, signerrors.ErrCodeTemplateNotFound, signerrors.ErrCodeMediaNotFound:
		status = http.StatusNotFound
	case signerrors.ErrCodeInvalidInput, signerrors.ErrCodeInvalidPayload, signerrors.ErrCodeInvalidName,
		signerrors.ErrCodeInvalidTemplate, signerrors.ErrCodeInvalidBlock:
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	s.respondJSON(w, status, errorResponse{Code: string(code), Error: signerrors.UserMessage(err)})
}

// recordFromQuery converts query parameters into a wire record, recovering
// the typed values the wire coercion expects. Unparseable values pass
// through as strings and fall back to defaults downstream.
func recordFromQuery(r *http.Request) block.Record {
	rec := block.Record{}
	for k, vs := range r.URL.Query() {
		if len(vs) == 0 || k == "token" || k == "TemplateWidth" || k == "TemplateHeight" {
			continue
		}
		v := vs[0]
		if n, err := strconv.Atoi(v); err == nil {
			rec[k] = n
			continue
		}
		if b, err := strconv.ParseBool(v); err == nil {
			rec[k] = b
			continue
		}
		rec[k] = v
	}
	return rec
}
