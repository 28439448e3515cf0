// Package server implements the HTTP server that exposes the recall dialogue
// engine via a small REST API. The server is started by the `recall serve`
// CLI command.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/54b3r/recall-go/internal/logging"
)

// defaultHistoryLimit is the number of exchanges returned by GET /api/history
// when no explicit limit is given.
const defaultHistoryLimit = 50

// maxHistoryLimit caps the limit query parameter on GET /api/history.
const maxHistoryLimit = 500

// New constructs a Server from the provided engine and config.
func New(eng turnHandler, cfg *Config) (*Server, error) {
	if eng == nil {
		return nil, fmt.Errorf("server: engine must not be nil")
	}
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		// WriteTimeout must cover a full generation round-trip.
		cfg.WriteTimeout = 5 * time.Minute
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = defaultRateLimit
	}
	if cfg.RateBurst == 0 {
		cfg.RateBurst = defaultRateBurst
	}

	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	if cfg.APIKey == "" {
		log.Warn("server: no API key configured — authentication disabled")
	}

	reg := cfg.MetricsRegistry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	gatherer := cfg.MetricsGatherer
	if gatherer == nil {
		// A *prometheus.Registry serves both roles; only a caller passing a
		// bare Registerer needs an explicit gatherer.
		g, ok := reg.(prometheus.Gatherer)
		if !ok {
			return nil, fmt.Errorf("server: MetricsGatherer is required when MetricsRegistry does not implement prometheus.Gatherer")
		}
		gatherer = g
	}

	s := &Server{
		engine:  eng,
		history: cfg.History,
		cfg:     cfg,
		log:     log,
		pingers: cfg.Pingers,
		metrics: newServerMetrics(reg),
	}

	rl, stopRL := newRateLimiter(cfg.RateLimit, cfg.RateBurst, log)
	s.stopRL = stopRL

	// protected wraps a handler with auth and per-IP rate limiting.
	protected := func(name string, h http.HandlerFunc) http.Handler {
		return authMiddleware(cfg.APIKey, rl.middleware(s.instrument(name, h)))
	}

	mux := http.NewServeMux()
	mux.Handle("POST /api/chat", protected("chat", s.handleChat))
	mux.Handle("GET /api/history", protected("history", s.handleHistory))
	mux.Handle("GET /api/health", s.instrument("health", s.handleHealth))
	mux.Handle("GET /api/ready", s.instrument("ready", s.handleReady))
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      requestLogger(log, mux),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s, nil
}

// Start begins listening and serving HTTP requests. It blocks until the
// context is cancelled, then performs a graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.log.Info("server: listening", slog.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.stopRL()
		return fmt.Errorf("server: listen error: %w", err)
	case <-ctx.Done():
		s.stopRL()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: graceful shutdown failed: %w", err)
		}
		return nil
	}
}

// handleChat handles POST /api/chat. It runs one dialogue turn and returns
// the engine result as JSON. Backend degradation never surfaces as an HTTP
// error — only a malformed or empty request does.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.observeTurn("invalid", start)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		s.observeTurn("invalid", start)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "message is required"})
		return
	}

	result := s.engine.HandleTurn(r.Context(), req.Message)

	outcome := "ok"
	if result.Error {
		outcome = "error"
	}
	s.observeTurn(outcome, start)

	writeJSON(w, http.StatusOK, result)
}

// handleHistory handles GET /api/history. It returns the most recent
// archived exchanges, newest first. The optional limit query parameter is
// clamped to [1, maxHistoryLimit].
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "exchange archive is disabled"})
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = n
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	log := logging.FromContext(r.Context())

	entries, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		log.Error("history: query failed", slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "history query failed"})
		return
	}
	count, err := s.history.Count(r.Context())
	if err != nil {
		log.Error("history: count failed", slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "history query failed"})
		return
	}

	resp := historyResponse{Count: count, Exchanges: []historyExchange{}}
	for _, e := range entries {
		resp.Exchanges = append(resp.Exchanges, historyExchange{
			ID:        e.ID,
			Ordinal:   e.Ordinal,
			User:      e.UserText,
			Assistant: e.AssistantText,
			CreatedAt: e.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleHealth handles GET /api/health for liveness checks.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// observeTurn records one completed /api/chat request against the turn metrics.
func (s *Server) observeTurn(outcome string, start time.Time) {
	s.metrics.turnRequestsTotal.WithLabelValues(outcome).Inc()
	s.metrics.turnDurationSeconds.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
}

// writeJSON encodes v as the JSON response body with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Error("server: response encode error", slog.Any("error", err))
	}
}
