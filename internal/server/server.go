// Package server exposes the analyzer over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/veracitylab/veracity/internal/history"
	"github.com/veracitylab/veracity/internal/logging"
	"github.com/veracitylab/veracity/internal/model"
	"github.com/veracitylab/veracity/internal/pipeline"
)

// Analyzer runs one analysis. Satisfied by *pipeline.Pipeline.
type Analyzer interface {
	Analyze(ctx context.Context, url string) (*model.Report, error)
}

// Server is the HTTP API surface
type Server struct {
	cfg      model.ServerConfig
	analyzer Analyzer
	store    *history.Store // nil when history is disabled
	router   chi.Router
	logger   logging.Logger
}

// New creates a server around an analyzer. store may be nil.
func New(cfg model.ServerConfig, analyzer Analyzer, store *history.Store, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.Nop{}
	}

	s := &Server{
		cfg:      cfg,
		analyzer: analyzer,
		store:    store,
		router:   chi.NewRouter(),
		logger:   logger,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router

	origins := s.cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         86400,
	}))

	r.Get("/healthz", s.handleHealth)
	r.Post("/analyze", s.handleAnalyze)

	if s.store != nil {
		r.Get("/reports", s.handleListReports)
		r.Get("/reports/{id}", s.handleGetReport)
	}
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("http_request",
		logging.F("method", r.Method),
		logging.F("path", r.URL.Path))

	s.router.ServeHTTP(w, r)
}

// HTTPServer creates an *http.Server ready to ListenAndServe
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		writeError(w, http.StatusUnsupportedMediaType, "request body must be application/json")
		return
	}

	var body struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if body.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	report, err := s.analyzer.Analyze(r.Context(), body.URL)
	if err != nil {
		if errors.Is(err, pipeline.ErrInvalidURL) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("analysis failed",
			logging.F("url", body.URL), logging.F("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "analysis failed")
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.logger.Error("listing reports", logging.F("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "could not list reports")
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}

	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	report, err := s.store.Get(r.Context(), id)
	if errors.Is(err, history.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no report with that id")
		return
	}
	if err != nil {
		s.logger.Error("loading report", logging.F("id", id), logging.F("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "could not load report")
		return
	}

	writeJSON(w, http.StatusOK, report)
}
