// Package server exposes the processing stages over HTTP.
//
// One server process holds one session. Stage requests are serialised with a
// mutex, so two uploads never interleave inside the store.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ginjaninja78/payroll-bank-splitter/internal/config"
	"github.com/ginjaninja78/payroll-bank-splitter/internal/logging"
	"github.com/ginjaninja78/payroll-bank-splitter/internal/pipeline"
)

// Server is the HTTP surface of one processing session.
type Server struct {
	cfg      *config.Config
	pipeline *pipeline.Pipeline
	gatherer prometheus.Gatherer
	now      func() time.Time

	mu     sync.Mutex
	router *chi.Mux
	server *http.Server
}

// New creates a Server. gatherer backs GET /metrics.
func New(cfg *config.Config, p *pipeline.Pipeline, gatherer prometheus.Gatherer) *Server {
	s := &Server{
		cfg:      cfg,
		pipeline: p,
		gatherer: gatherer,
		now:      time.Now,
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger)
	s.router.Use(middleware.Recoverer)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	// Stages
	s.router.Post("/split", s.handleSplit)
	s.router.Post("/summary", s.handleSummary)
	s.router.Post("/convert", s.handleConvert)
	s.router.Delete("/text", s.handleDeleteText)

	// Artifacts
	s.router.Get("/artifacts", s.handleListArtifacts)
	s.router.Get("/artifacts/{name}", s.handleDownloadArtifact)
	s.router.Get("/bundle", s.handleBundle)
}

// Start begins listening for HTTP requests.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	slog.Info("starting server", "addr", addr, "session_id", s.pipeline.Store().SessionID())
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// =============================================================================
// RESPONSES
// =============================================================================

// errorResponse is the JSON body of every failed request.
type errorResponse struct {
	Error    string   `json:"error"`
	Warnings []string `json:"warnings,omitempty"`
}

// statusFor maps stage errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrSchema):
		return http.StatusUnprocessableEntity
	case errors.Is(err, pipeline.ErrEmptyInput):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondStageError logs a stage failure and writes its JSON body.
func respondStageError(w http.ResponseWriter, r *http.Request, err error, report *pipeline.Report) {
	status := statusFor(err)

	logging.FromContext(r.Context()).Error("stage failed",
		"path", r.URL.Path,
		"status", status,
		"error", err.Error(),
	)

	body := errorResponse{Error: err.Error()}
	if report != nil {
		body.Warnings = report.Warnings
	}
	writeJSONStatus(w, status, body)
}

// writeError writes a JSON error with the given status.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSONStatus(w, status, errorResponse{Error: message})
}

// writeJSON encodes v as JSON with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

// writeJSONStatus encodes v as JSON with the given status.
func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}

// requestLogger logs one line per request with its status and duration.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		logging.FromContext(r.Context()).Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
