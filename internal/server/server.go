// Package server exposes the render-trigger endpoint consumed by a remote
// publish pipeline, plus health and metrics endpoints.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/builder"
	sberrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/publish"
	"git.home.luguber.info/inful/sitebuilder/internal/store"
)

// Renderer is the build orchestrator as the HTTP layer sees it.
type Renderer interface {
	BuildSite(ctx context.Context, siteID, buildID string) (builder.Result, error)
}

// Server hosts the daemon's HTTP surface.
type Server struct {
	renderer   Renderer
	metricsH   http.Handler
	httpServer *http.Server
}

// New builds a server listening on addr. metricsHandler may be nil, in which
// case /metrics responds 404.
func New(addr string, renderer Renderer, metricsHandler http.Handler) *Server {
	s := &Server{renderer: renderer, metricsH: metricsHandler}

	mux := http.NewServeMux()
	mux.HandleFunc("/internal/render", s.handleRender)
	mux.HandleFunc("/healthz", s.handleHealth)
	if metricsHandler != nil {
		mux.Handle("/metrics", metricsHandler)
	}

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		// Renders can legitimately take a while; the write timeout bounds a
		// stuck build, not a normal one.
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  2 * time.Minute,
	}
	return s
}

// Start begins serving. It blocks until the listener fails or Stop is called.
func (s *Server) Start() error {
	slog.Info("HTTP server listening", slog.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	slog.Info("Stopping HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the route mux, exposed for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleRender runs a site build synchronously and reports its artifacts.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeRenderError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var req publish.RenderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRenderError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.SiteID == "" {
		writeRenderError(w, http.StatusBadRequest, "siteId is required")
		return
	}

	res, err := s.renderer.BuildSite(r.Context(), req.SiteID, req.BuildID)
	if err != nil {
		slog.Error("Render request failed",
			logfields.SiteID(req.SiteID),
			logfields.BuildID(req.BuildID),
			logfields.Error(err))
		writeRenderError(w, renderErrorStatus(err), err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(publish.RenderResponse{
		OK:           true,
		ArtifactPath: res.ArtifactPath,
		OutDir:       res.OutputDir,
		Pages:        res.Pages,
	})
}

func renderErrorStatus(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound) || sberrors.IsCategory(err, sberrors.CategoryNotFound):
		return http.StatusNotFound
	case sberrors.IsRetryable(err):
		return http.StatusConflict // build already in flight
	default:
		return http.StatusInternalServerError
	}
}

func writeRenderError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(publish.RenderResponse{OK: false, Error: msg})
}
