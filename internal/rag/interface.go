// Package rag defines the interfaces for the retrieval-augmentation core:
// text embedding and vector indexing of prior dialogue exchanges.
// Concrete implementations (Qdrant, Ollama, etc.) satisfy these interfaces so
// the engine layer never depends on a specific backend.
package rag

import (
	"context"
)

// RecordType discriminates the two kinds of records indexed per exchange.
// It is a closed enumeration — filter predicates must use these constants,
// never free-form strings.
type RecordType string

const (
	// RecordQuestion is a record whose vector embeds the user question alone.
	// Context retrieval queries are restricted to this type.
	RecordQuestion RecordType = "question"

	// RecordCombined is a record whose vector embeds the full exchange
	// ("Question: ...\nAnswer: ..."). Stored for future retrieval modes but
	// not queried when composing turn context.
	RecordCombined RecordType = "combined"
)

// IndexedRecord is one vector-plus-payload entry derived from an exchange.
// A valid exchange always produces exactly two records: one RecordQuestion
// and one RecordCombined.
type IndexedRecord struct {
	// ID is the unique point identifier (UUID).
	ID string

	// Vector is the embedding for this record. Its length must equal the
	// index's configured dimensionality.
	Vector []float32

	// Type discriminates question records from combined records.
	Type RecordType

	// ExchangeID links the record back to its source exchange.
	ExchangeID string

	// Ordinal is the source exchange's sequence number, zero when unknown.
	Ordinal int64

	// UserText is the user's side of the exchange.
	UserText string

	// AssistantText is the assistant's side of the exchange.
	AssistantText string

	// CombinedText is the rendered "Question: ...\nAnswer: ..." form.
	CombinedText string
}

// RetrievalResult is one similarity hit returned by a query. It is ephemeral
// — produced per query and never persisted.
type RetrievalResult struct {
	// ExchangeID identifies the exchange the hit belongs to.
	ExchangeID string

	// UserText is the stored user question.
	UserText string

	// AssistantText is the stored assistant response.
	AssistantText string

	// Score is the cosine similarity of the hit (higher = more similar).
	Score float32
}

// VectorIndex is the interface for persisting and searching dialogue records.
// Implementations must be safe to call from multiple goroutines; Reset is the
// exception — it is a destructive administrative operation expected only at
// initialization, never concurrently with query/upsert traffic.
type VectorIndex interface {
	// Reset drops the collection if present and recreates it empty with the
	// configured dimensionality and cosine similarity. Idempotent: absence of
	// a prior collection is not an error.
	Reset(ctx context.Context) error

	// Upsert inserts or overwrites records by ID. The batch is waited on so
	// that subsequent queries observe either all of it or none of it.
	Upsert(ctx context.Context, records []IndexedRecord) error

	// Query returns at most k records of the given type, ordered by
	// descending similarity to the query vector.
	Query(ctx context.Context, vector []float32, recordType RecordType, k int) ([]RetrievalResult, error)

	// Close releases any resources held by the index.
	Close() error
}

// Embedder is the interface for converting text into dense vector embeddings.
// Implementations must be deterministic for a given model version, hold no
// per-call state, and be safe to call from multiple goroutines. On backend
// failure they return an error — never a zero vector.
type Embedder interface {
	// Embed converts a batch of texts into their corresponding embeddings.
	// The returned slice is parallel to the input slice.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
