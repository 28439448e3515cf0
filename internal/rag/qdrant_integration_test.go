//go:build integration

package rag

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
)

// TestQdrantIndex_Integration exercises a real Qdrant instance end-to-end:
// collection reset (twice — it must be idempotent whether or not the
// collection already exists), an upsert, and a type-filtered query.
//
// Prerequisites:
//
//	docker run -p 6334:6334 qdrant/qdrant
//
// Run with:
//
//	go test -tags=integration -run TestQdrantIndex_Integration ./internal/rag/
//
// In CI, set QDRANT_HOST / QDRANT_PORT if Qdrant is not on localhost:6334.
// The test uses its own throwaway collection and never touches "dialogues".
func TestQdrantIndex_Integration(t *testing.T) {
	host := os.Getenv("QDRANT_HOST")
	if host == "" {
		host = "localhost"
	}
	port := 6334
	if v := os.Getenv("QDRANT_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			t.Fatalf("invalid QDRANT_PORT %q: %v", v, err)
		}
		port = p
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	collection := fmt.Sprintf("recall-it-%d", time.Now().UnixNano())
	idx, err := NewQdrantIndex(ctx, &QdrantConfig{
		Host:       host,
		Port:       port,
		Collection: collection,
		VectorSize: 4,
	})
	if err != nil {
		t.Fatalf("NewQdrantIndex failed: %v\n\nEnsure Qdrant is running:\n  docker run -p 6334:6334 qdrant/qdrant", err)
	}
	defer idx.Close()
	defer idx.Reset(ctx) // leave nothing behind

	// Reset on a collection that already exists (NewQdrantIndex created it),
	// then again on the freshly recreated one. Neither call may error.
	if err := idx.Reset(ctx); err != nil {
		t.Fatalf("first Reset failed: %v", err)
	}
	if err := idx.Reset(ctx); err != nil {
		t.Fatalf("second Reset failed: %v", err)
	}

	// After a reset the collection is empty.
	hits, err := idx.Query(ctx, []float32{1, 0, 0, 0}, RecordQuestion, 3)
	if err != nil {
		t.Fatalf("Query on empty collection failed: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("expected empty collection after Reset, got %d hits", len(hits))
	}

	exchangeID := uuid.NewString()
	records := []IndexedRecord{
		{
			ID:            uuid.NewString(),
			Vector:        []float32{1, 0, 0, 0},
			Type:          RecordQuestion,
			ExchangeID:    exchangeID,
			Ordinal:       1,
			UserText:      "What is fever?",
			AssistantText: "Fever is elevated body temperature.",
		},
		{
			ID:           uuid.NewString(),
			Vector:       []float32{0, 1, 0, 0},
			Type:         RecordCombined,
			ExchangeID:   exchangeID,
			Ordinal:      1,
			CombinedText: "Question: What is fever?\nAnswer: Fever is elevated body temperature.",
		},
	}
	if err := idx.Upsert(ctx, records); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	// The query is type-filtered: only the question record may come back,
	// even though the combined record is a closer match to its own vector.
	hits, err = idx.Query(ctx, []float32{1, 0, 0, 0}, RecordQuestion, 3)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected 1 question hit, got %d", len(hits))
	}
	if hits[0].ExchangeID != exchangeID {
		t.Errorf("ExchangeID = %q, want %q", hits[0].ExchangeID, exchangeID)
	}
	if hits[0].UserText != "What is fever?" {
		t.Errorf("UserText = %q", hits[0].UserText)
	}

	// Reset must also wipe stored points, not just recreate metadata.
	if err := idx.Reset(ctx); err != nil {
		t.Fatalf("Reset after upsert failed: %v", err)
	}
	hits, err = idx.Query(ctx, []float32{1, 0, 0, 0}, RecordQuestion, 3)
	if err != nil {
		t.Fatalf("Query after final Reset failed: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("expected 0 hits after Reset, got %d", len(hits))
	}
}
