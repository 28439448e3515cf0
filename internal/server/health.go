package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/54b3r/recall-go/internal/logging"
)

// probeTimeout bounds each dependency probe so /api/ready answers promptly
// even when a backend is hanging rather than refusing connections.
const probeTimeout = 5 * time.Second

// Pinger reports the reachability of one dependency. Implementations must be
// safe to call from multiple goroutines.
type Pinger interface {
	// Ping returns nil when the dependency is reachable, a descriptive
	// error otherwise.
	Ping(ctx context.Context) error

	// Name is the short label shown in readiness responses
	// (e.g. "ollama", "qdrant").
	Name() string
}

// MultiPinger folds several Pingers into one, reporting the first failure.
type MultiPinger struct {
	pingers []Pinger
}

// NewMultiPinger constructs a MultiPinger from the provided list of Pingers.
func NewMultiPinger(pingers ...Pinger) *MultiPinger {
	return &MultiPinger{pingers: pingers}
}

// Ping probes each dependency in order and returns the first error, prefixed
// with the failing dependency's name.
func (m *MultiPinger) Ping(ctx context.Context) error {
	for _, p := range m.pingers {
		if err := p.Ping(ctx); err != nil {
			return fmt.Errorf("%s: %w", p.Name(), err)
		}
	}
	return nil
}

// Name returns a combined label for logging purposes.
func (m *MultiPinger) Name() string { return "multi" }

// readyCheck is one dependency's probe result in the readiness response.
type readyCheck struct {
	Name string `json:"name"`
	OK   bool   `json:"ok"`
	// Error carries the failure reason; empty when OK.
	Error string `json:"error,omitempty"`
}

// readyResponse is the JSON body of GET /api/ready.
type readyResponse struct {
	Ready  bool         `json:"ready"`
	Checks []readyCheck `json:"checks"`
}

// handleReady handles GET /api/ready. Every registered Pinger is probed with
// its own short timeout; the endpoint answers 200 only when all dependencies
// respond, 503 otherwise. /api/health stays a pure liveness check — this is
// the one that tells an orchestrator whether traffic can be served.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	resp := readyResponse{Ready: true, Checks: []readyCheck{}}
	for _, p := range s.pingers {
		check := s.probe(r.Context(), p)
		if !check.OK {
			resp.Ready = false
			log.Warn("readiness probe failed",
				slog.String("dependency", check.Name),
				slog.String("error", check.Error),
			)
		}
		resp.Checks = append(resp.Checks, check)
	}

	status := http.StatusOK
	if !resp.Ready {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

// probe runs a single dependency probe under probeTimeout.
func (s *Server) probe(ctx context.Context, p Pinger) readyCheck {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	check := readyCheck{Name: p.Name(), OK: true}
	if err := p.Ping(ctx); err != nil {
		check.OK = false
		check.Error = err.Error()
	}
	return check
}
