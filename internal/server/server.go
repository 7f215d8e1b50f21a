// Package server exposes the game analyzer over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/discochess/gamereview"
)

// requestTimeout bounds a single analysis request; deep analysis of a
// long game can take minutes.
const requestTimeout = 10 * time.Minute

// Server routes analysis requests to a shared Analyzer.
type Server struct {
	analyzer *gamereview.Analyzer
	registry *prometheus.Registry
	logger   *zap.Logger
}

// New creates a Server. registry may be nil, in which case /metrics
// serves the default prometheus registry.
func New(analyzer *gamereview.Analyzer, registry *prometheus.Registry, logger *zap.Logger) *Server {
	return &Server{
		analyzer: analyzer,
		registry: registry,
		logger:   logger,
	}
}

// Router builds the chi router with all endpoints mounted.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Post("/api/analyze", s.handleAnalyze)
	r.Post("/api/eval", s.handleEval)
	r.Get("/api/health", s.handleHealth)

	if s.registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	} else {
		r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	}

	return r
}

type analyzeRequest struct {
	PGN   string `json:"pgn"`
	Depth int    `json:"depth"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.PGN == "" {
		s.writeError(w, http.StatusBadRequest, "missing pgn")
		return
	}

	report, err := s.analyzer.Analyze(r.Context(), req.PGN, req.Depth)
	if err != nil {
		s.writeAnalyzerError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

type evalRequest struct {
	FEN       string `json:"fen"`
	Depth     int    `json:"depth"`
	Lines     int    `json:"lines"`
	Normalize bool   `json:"normalize"`
}

func (s *Server) handleEval(w http.ResponseWriter, r *http.Request) {
	var req evalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.FEN == "" {
		s.writeError(w, http.StatusBadRequest, "missing fen")
		return
	}

	report, err := s.analyzer.Evaluate(r.Context(), req.FEN, req.Depth, req.Lines, req.Normalize)
	if err != nil {
		s.writeAnalyzerError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

type healthResponse struct {
	Status string `json:"status"`
	Engine string `json:"engine,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	path, err := s.analyzer.Health(r.Context())
	if err != nil {
		s.logger.Warn("health check failed", zap.Error(err))
		s.writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
		return
	}
	s.writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Engine: path})
}

// writeAnalyzerError maps analyzer errors to HTTP status codes.
func (s *Server) writeAnalyzerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, gamereview.ErrParse):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, gamereview.ErrClosed):
		s.writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.logger.Error("analysis request failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encoding response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
