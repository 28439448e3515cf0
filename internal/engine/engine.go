// Package engine implements the retrieval-augmented dialogue turn. A turn
// moves through a fixed sequence of states: the user message is embedded,
// similar past exchanges are retrieved from the vector index, a prompt is
// composed, the LLM generates a response, and the completed exchange is
// persisted back into the index for future retrieval.
//
// The engine degrades rather than fails: embedding or retrieval errors fall
// back to an empty context, generation errors produce a fixed apology, and
// persistence errors are logged and swallowed. Only a blank message yields
// an error result.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/54b3r/recall-go/internal/dialogue"
	"github.com/54b3r/recall-go/internal/llm"
	"github.com/54b3r/recall-go/internal/rag"
)

// defaultTopK is the number of similar exchanges retrieved per turn.
const defaultTopK = 3

// generationApology is returned when the LLM backend fails mid-turn.
const generationApology = "Sorry, I ran into a problem generating a response. Please try again."

// emptyMessageError is returned when a blank message reaches the engine.
const emptyMessageError = "No message provided."

// Persister stores a completed exchange. Satisfied by *dialogue.Store.
type Persister interface {
	Ingest(ctx context.Context, ex dialogue.Exchange) (bool, error)
}

// Result is the outcome of one dialogue turn, shaped for the chat API.
type Result struct {
	// Role is always "assistant".
	Role string `json:"role"`

	// Content is the generated response text.
	Content string `json:"content"`

	// ContextUsed reports whether any retrieved exchanges informed the prompt.
	ContextUsed bool `json:"context_used"`

	// SimilarCount is the number of similar exchanges retrieved.
	SimilarCount int `json:"similar_count"`

	// Error is true only when the turn failed outright (blank message).
	Error bool `json:"error,omitempty"`
}

// Config holds the dependencies required to construct an Engine.
type Config struct {
	// Embedder converts the user message into a query vector.
	Embedder rag.Embedder

	// Index retrieves similar past exchanges.
	Index rag.VectorIndex

	// Gateway generates the assistant response.
	Gateway llm.Gateway

	// Store persists completed exchanges. May be nil to skip persistence.
	Store Persister

	// TopK is the number of similar exchanges to retrieve. Defaults to 3.
	TopK int

	// Logger is the structured logger for turn events. Defaults to slog.Default().
	Logger *slog.Logger
}

// Engine orchestrates retrieval-augmented dialogue turns.
type Engine struct {
	embedder rag.Embedder
	index    rag.VectorIndex
	gateway  llm.Gateway
	store    Persister
	topK     int
	log      *slog.Logger
}

// New constructs an Engine from the provided Config.
func New(cfg *Config) (*Engine, error) {
	if cfg.Embedder == nil {
		return nil, fmt.Errorf("engine: Embedder must not be nil")
	}
	if cfg.Index == nil {
		return nil, fmt.Errorf("engine: Index must not be nil")
	}
	if cfg.Gateway == nil {
		return nil, fmt.Errorf("engine: Gateway must not be nil")
	}

	topK := cfg.TopK
	if topK <= 0 {
		topK = defaultTopK
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	return &Engine{
		embedder: cfg.Embedder,
		index:    cfg.Index,
		gateway:  cfg.Gateway,
		store:    cfg.Store,
		topK:     topK,
		log:      log,
	}, nil
}

// HandleTurn runs one full dialogue turn for the given user message.
// It always returns a usable Result; degraded turns carry an apology or an
// empty context rather than propagating backend errors to the caller.
func (e *Engine) HandleTurn(ctx context.Context, message string) Result {
	message = strings.TrimSpace(message)
	if message == "" {
		return Result{
			Role:    "assistant",
			Content: emptyMessageError,
			Error:   true,
		}
	}
	e.log.Debug("turn: received", slog.Int("message_len", len(message)))

	similar := e.retrieve(ctx, message)
	e.log.Debug("turn: retrieved", slog.Int("similar_count", len(similar)))

	prompt := composePrompt(message, similar)
	e.log.Debug("turn: prompted", slog.Int("prompt_len", len(prompt)))

	result := Result{
		Role:         "assistant",
		ContextUsed:  len(similar) > 0,
		SimilarCount: len(similar),
	}

	answer, err := e.gateway.Generate(ctx, prompt)
	if err != nil {
		e.log.Warn("turn: generation failed, returning apology",
			slog.String("error", err.Error()),
		)
		answer = generationApology
	} else {
		e.log.Debug("turn: generated", slog.Int("answer_len", len(answer)))
	}
	result.Content = answer

	// Persist the completed exchange so future turns can retrieve it. The
	// apology counts as the exchange's answer: the archive records what the
	// user was actually told. Persistence failures never affect the response.
	if e.store != nil {
		if _, err := e.store.Ingest(ctx, dialogue.Exchange{
			UserText:      message,
			AssistantText: answer,
		}); err != nil {
			e.log.Warn("turn: persistence failed",
				slog.String("error", err.Error()),
			)
		} else {
			e.log.Debug("turn: persisted")
		}
	}

	e.log.Debug("turn: responded")
	return result
}

// retrieve embeds the message and queries the index for similar question
// records. Any backend failure degrades to an empty context.
func (e *Engine) retrieve(ctx context.Context, message string) []rag.RetrievalResult {
	vectors, err := e.embedder.Embed(ctx, []string{message})
	if err != nil {
		e.log.Warn("turn: embedding failed, continuing without context",
			slog.String("error", err.Error()),
		)
		return nil
	}
	if len(vectors) != 1 {
		e.log.Warn("turn: embedder returned unexpected vector count, continuing without context",
			slog.Int("count", len(vectors)),
		)
		return nil
	}
	e.log.Debug("turn: embedded", slog.Int("dimensions", len(vectors[0])))

	similar, err := e.index.Query(ctx, vectors[0], rag.RecordQuestion, e.topK)
	if err != nil {
		e.log.Warn("turn: retrieval failed, continuing without context",
			slog.String("error", err.Error()),
		)
		return nil
	}
	return similar
}
