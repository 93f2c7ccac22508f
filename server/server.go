// Package server serves the dashboard pages over HTTP. Every request re-runs
// its page from scratch with the controls taken from the query string.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lcap17/proyect-viernes/pages"
	"github.com/lcap17/proyect-viernes/render"
)

const (
	pagesPrefix     = "/pages"
	shutdownTimeout = 5 * time.Second
)

// Server routes requests to pages.
type Server struct {
	Env pages.Env
	// Pages defaults to pages.Registry().
	Pages []pages.Page
	// Gatherer backs /metrics; nil disables the endpoint.
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
}

// New returns a server over the registered pages.
func New(env pages.Env, gatherer prometheus.Gatherer, logger *slog.Logger) *Server {
	return &Server{Env: env, Pages: pages.Registry(), Gatherer: gatherer, Logger: logger}
}

// Handler returns the routes wrapped in request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /pages/{slug}", s.handlePage)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	if s.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	}
	return s.logRequests(mux)
}

// ListenAndServe serves on addr until ctx is done, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger().Info("listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger().Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// ---------------------------------------------------------------------------
// Handlers
// ---------------------------------------------------------------------------

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	var buf bytes.Buffer
	if err := render.Index(&buf, render.Nav(pagesPrefix, s.pages()...)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeBody(w, "text/html; charset=utf-8", buf.Bytes())
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	slug, asJSON := strings.CutSuffix(r.PathValue("slug"), ".json")
	page, ok := s.lookup(slug)
	if !ok {
		if asJSON {
			writeError(w, http.StatusNotFound, "page not found")
			return
		}
		http.NotFound(w, r)
		return
	}

	doc, err := page.Render(r.Context(), s.Env, pages.Controls(r.URL.Query()))
	if err != nil {
		if asJSON {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if asJSON {
		writeJSON(w, http.StatusOK, doc)
		return
	}
	var buf bytes.Buffer
	f := &render.HTMLFormatter{Nav: render.Nav(pagesPrefix, s.pages()...)}
	if err := f.Format(&buf, doc); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeBody(w, "text/html; charset=utf-8", buf.Bytes())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) pages() []pages.Page {
	if len(s.Pages) == 0 {
		return pages.Registry()
	}
	return s.Pages
}

func (s *Server) lookup(slug string) (pages.Page, bool) {
	for _, p := range s.pages() {
		if p.Slug == slug {
			return p, true
		}
	}
	return pages.Page{}, false
}

func (s *Server) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s.Logger
}

// ---------------------------------------------------------------------------
// Responses
// ---------------------------------------------------------------------------

func writeBody(w http.ResponseWriter, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}

// statusRecorder captures the status code for the access log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger().Debug("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("elapsed", time.Since(start)),
		)
	})
}
