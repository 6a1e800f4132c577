// Package server exposes mockup generation over HTTP.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/letrabox/mockup/internal/config"
	"github.com/letrabox/mockup/internal/generation"
	"github.com/letrabox/mockup/internal/journal"
	"github.com/letrabox/mockup/internal/logger"
	"github.com/letrabox/mockup/internal/session"
)

// DefaultMaxUploadBytes caps a multipart request: two images plus fields.
const DefaultMaxUploadBytes = 32 << 20

// Options configures the router.
type Options struct {
	Journal        *journal.Store // optional; enables /api/sessions/{id}
	MCP            http.Handler   // optional; mounted at /mcp
	OutputFile     string         // download filename
	MaxUploadBytes int64
	Version        string
}

// Handler serves the HTTP API.
type Handler struct {
	gen  generation.Generator
	opts Options
}

// NewRouter wires the API routes around gen.
func NewRouter(gen generation.Generator, opts Options) http.Handler {
	if opts.OutputFile == "" {
		opts.OutputFile = config.DefaultOutputFile
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}
	h := &Handler{gen: gen, opts: opts}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.handleHealth)

	r.Route("/api", func(api chi.Router) {
		api.Get("/categories", h.handleCategories)
		api.Post("/mockups", h.handleCreateMockup)
		if opts.Journal != nil {
			api.Get("/sessions/{sessionID}", h.handleGetSession)
		}
	})

	if opts.MCP != nil {
		r.Handle("/mcp", opts.MCP)
	}

	return r
}

// requestLogger logs each request through the application logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logger.Info("[http] %s %s -> %d (%d bytes, %s) id=%s",
			r.Method, r.URL.Path, ww.Status(), ww.BytesWritten(),
			time.Since(start).Round(time.Millisecond), middleware.GetReqID(r.Context()))
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]string{"status": "ok"}
	if h.opts.Version != "" {
		body["version"] = h.opts.Version
	}
	RespondJSON(w, http.StatusOK, body)
}

type categoryResponse struct {
	Label string `json:"label"`
	Slug  string `json:"slug"`
}

func (h *Handler) handleCategories(w http.ResponseWriter, r *http.Request) {
	categories := make([]categoryResponse, len(session.Categories))
	for i, c := range session.Categories {
		categories[i] = categoryResponse{Label: c.Label(), Slug: c.Slug()}
	}
	RespondJSON(w, http.StatusOK, map[string]any{
		"categories": categories,
		"default":    session.DefaultCategory.Label(),
	})
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	state, err := h.opts.Journal.LoadState(r.Context(), sessionID)
	if err != nil {
		logger.Error("loading session %s: %v", sessionID, err)
		RespondError(w, http.StatusInternalServerError, "failed to load session")
		return
	}
	if state.StartedAt.IsZero() {
		RespondError(w, http.StatusNotFound, "session not found")
		return
	}
	RespondJSON(w, http.StatusOK, state)
}
