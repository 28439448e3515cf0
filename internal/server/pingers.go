package server

import (
	"context"
	"fmt"

	"github.com/54b3r/recall-go/internal/llm"
	"github.com/54b3r/recall-go/internal/rag"
)

// LLMPinger probes the LLM backend with a zero-cost reachability check.
// It satisfies the Pinger interface and is used by GET /api/ready.
type LLMPinger struct {
	// client is the chat client to probe.
	client *llm.ChatClient
	// name identifies the backend in readiness responses (e.g. "ollama").
	name string
}

// NewLLMPinger constructs an LLMPinger for the given client and backend name.
func NewLLMPinger(client *llm.ChatClient, name string) *LLMPinger {
	return &LLMPinger{client: client, name: name}
}

// Name returns the backend label used in readiness responses.
func (p *LLMPinger) Name() string { return p.name }

// Ping checks the LLM backend is reachable without consuming any tokens.
func (p *LLMPinger) Ping(ctx context.Context) error {
	if err := p.client.Ping(ctx); err != nil {
		return fmt.Errorf("%s health check failed: %w", p.name, err)
	}
	return nil
}

// IndexPinger probes the Qdrant vector index using its native HealthCheck RPC.
// It satisfies the Pinger interface and is used by GET /api/ready.
type IndexPinger struct {
	// index is the Qdrant-backed vector index to probe.
	index *rag.QdrantIndex
}

// NewIndexPinger constructs an IndexPinger for the given index.
func NewIndexPinger(index *rag.QdrantIndex) *IndexPinger {
	return &IndexPinger{index: index}
}

// Name returns the dependency label used in readiness responses.
func (p *IndexPinger) Name() string { return "qdrant" }

// Ping calls the Qdrant HealthCheck RPC.
// Returns nil if Qdrant is reachable, or a descriptive error otherwise.
func (p *IndexPinger) Ping(ctx context.Context) error {
	if err := p.index.Ping(ctx); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	return nil
}
