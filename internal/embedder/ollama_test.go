package embedder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOllamaEmbedder_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var req ollamaEmbedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "nomic-embed-text" {
			t.Errorf("model: got %q, want nomic-embed-text", req.Model)
		}

		resp := ollamaEmbedResponse{Embeddings: make([][]float32, len(req.Input))}
		for i := range req.Input {
			resp.Embeddings[i] = []float32{0.1, 0.2, 0.3}
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	emb := NewOllamaEmbedder(&OllamaConfig{Host: srv.URL, Model: "nomic-embed-text"})

	vecs, err := emb.Embed(context.Background(), []string{"What is fever?", "Question: a\nAnswer: b"})
	if err != nil {
		t.Fatalf("Embed() failed: %v", err)
	}
	if len(vecs) != 2 {
		t.Fatalf("expected 2 embeddings, got %d", len(vecs))
	}
	if len(vecs[0]) != 3 {
		t.Errorf("expected dim 3, got %d", len(vecs[0]))
	}
}

func TestOllamaEmbedder_BackendError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(ollamaEmbedResponse{Error: "model not loaded"})
	}))
	defer srv.Close()

	emb := NewOllamaEmbedder(&OllamaConfig{Host: srv.URL, Model: "nomic-embed-text"})

	_, err := emb.Embed(context.Background(), []string{"hello"})
	if err == nil {
		t.Fatal("expected error for 500 response, got nil")
	}
}

func TestOllamaEmbedder_CountMismatch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// One embedding for a two-text batch.
		_ = json.NewEncoder(w).Encode(ollamaEmbedResponse{Embeddings: [][]float32{{0.5}}})
	}))
	defer srv.Close()

	emb := NewOllamaEmbedder(&OllamaConfig{Host: srv.URL, Model: "nomic-embed-text"})

	_, err := emb.Embed(context.Background(), []string{"a", "b"})
	if err == nil {
		t.Fatal("expected error for embedding count mismatch, got nil")
	}
}

func TestOllamaEmbedder_Unreachable(t *testing.T) {
	t.Parallel()

	// Closed server — the request must fail with an error, never a zero vector.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	emb := NewOllamaEmbedder(&OllamaConfig{Host: srv.URL, Model: "nomic-embed-text"})

	vecs, err := emb.Embed(context.Background(), []string{"hello"})
	if err == nil {
		t.Fatal("expected error for unreachable backend, got nil")
	}
	if vecs != nil {
		t.Errorf("expected nil embeddings on failure, got %v", vecs)
	}
}
