package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/54b3r/recall-go/internal/archive"
	"github.com/54b3r/recall-go/internal/engine"
)

// Config holds the HTTP server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1).
	Host string
	// Port is the TCP port to listen on (default: 8080).
	Port int
	// ReadTimeout is the maximum duration for reading the request.
	ReadTimeout time.Duration
	// WriteTimeout is the maximum duration for writing the response.
	// Must cover a full LLM generation round-trip.
	WriteTimeout time.Duration
	// ShutdownTimeout is the maximum duration for a graceful shutdown.
	ShutdownTimeout time.Duration
	// Logger is the structured logger used by the server and its handlers.
	// If nil, slog.Default() is used.
	Logger *slog.Logger
	// Pingers is the ordered list of dependency probes run by GET /api/ready.
	// If empty, /api/ready returns 200 with no checks (liveness-only mode).
	Pingers []Pinger
	// RateLimit is the sustained request rate allowed per IP on rate-limited
	// endpoints (requests/second). Defaults to 10 if zero.
	RateLimit float64
	// RateBurst is the maximum instantaneous burst per IP. Defaults to 20 if zero.
	RateBurst int
	// APIKey is the Bearer token required on all protected /api/* routes.
	// If empty, authentication is disabled (development mode).
	APIKey string
	// History serves GET /api/history. If nil, the endpoint returns 404.
	History archive.Recorder
	// MetricsRegistry receives the server's Prometheus metrics. If nil, a
	// fresh private registry is created.
	MetricsRegistry prometheus.Registerer
	// MetricsGatherer backs GET /metrics. If nil, MetricsRegistry doubles as
	// the gatherer; this fails at construction when MetricsRegistry is a bare
	// Registerer that cannot be gathered from.
	MetricsGatherer prometheus.Gatherer
}

// turnHandler is the interface handleChat calls to run a dialogue turn.
// *engine.Engine satisfies it; tests inject a fake.
type turnHandler interface {
	// HandleTurn runs one full dialogue turn for the given user message.
	HandleTurn(ctx context.Context, message string) engine.Result
}

// Server is the HTTP server that exposes the dialogue engine.
type Server struct {
	// engine handles all dialogue turns.
	engine turnHandler
	// history is the optional exchange archive behind GET /api/history.
	history archive.Recorder
	// cfg holds the resolved server configuration.
	cfg *Config
	// httpServer is the underlying net/http server.
	httpServer *http.Server
	// log is the structured logger for this server instance.
	log *slog.Logger
	// pingers is the ordered list of dependency probes for GET /api/ready.
	pingers []Pinger
	// metrics holds the Prometheus instruments owned by this server.
	metrics *serverMetrics
	// stopRL stops the rate limiter's background eviction goroutine on shutdown.
	stopRL func()
}

// chatRequest is the JSON body for POST /api/chat.
type chatRequest struct {
	// Message is the user's natural language message.
	Message string `json:"message"`
}

// errorResponse is the JSON body for request-level failures.
type errorResponse struct {
	// Error describes the failure.
	Error string `json:"error"`
}

// historyExchange is one archived exchange in the /api/history response.
type historyExchange struct {
	// ID is the exchange's unique identifier.
	ID string `json:"id"`
	// Ordinal is the append-order sequence number.
	Ordinal int64 `json:"ordinal"`
	// User is the user's side of the exchange.
	User string `json:"user"`
	// Assistant is the assistant's side of the exchange.
	Assistant string `json:"assistant"`
	// CreatedAt is the RFC 3339 timestamp of persistence.
	CreatedAt string `json:"created_at"`
}

// historyResponse is the JSON body for GET /api/history.
type historyResponse struct {
	// Count is the total number of archived exchanges.
	Count int64 `json:"count"`
	// Exchanges lists the most recent exchanges, newest first.
	Exchanges []historyExchange `json:"exchanges"`
}
