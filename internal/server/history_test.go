package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/54b3r/recall-go/internal/archive"
)

// newHistoryTestServer builds a *Server backed by an in-memory archive
// pre-loaded with the given exchanges.
func newHistoryTestServer(t *testing.T, exchanges [][2]string) *Server {
	t.Helper()
	a, err := archive.Open(":memory:")
	if err != nil {
		t.Fatalf("archive.Open failed: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })

	ctx := context.Background()
	for i, ex := range exchanges {
		id := "ex-" + string(rune('a'+i))
		if _, err := a.Append(ctx, id, ex[0], ex[1]); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	s := newTestServer()
	s.history = a
	return s
}

func TestHandleHistory_ReturnsNewestFirst(t *testing.T) {
	t.Parallel()

	s := newHistoryTestServer(t, [][2]string{
		{"first question", "first answer"},
		{"second question", "second answer"},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	w := httptest.NewRecorder()

	s.handleHistory(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d — body: %s", w.Code, w.Body.String())
	}

	var resp historyResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 2 {
		t.Errorf("count: expected 2, got %d", resp.Count)
	}
	if len(resp.Exchanges) != 2 {
		t.Fatalf("expected 2 exchanges, got %d", len(resp.Exchanges))
	}
	if resp.Exchanges[0].User != "second question" {
		t.Errorf("expected newest first, got %q", resp.Exchanges[0].User)
	}
	if resp.Exchanges[0].CreatedAt == "" {
		t.Error("expected non-empty created_at")
	}
}

func TestHandleHistory_LimitParameter(t *testing.T) {
	t.Parallel()

	s := newHistoryTestServer(t, [][2]string{
		{"q1", "a1"}, {"q2", "a2"}, {"q3", "a3"},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/history?limit=2", nil)
	w := httptest.NewRecorder()

	s.handleHistory(w, req)

	var resp historyResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Exchanges) != 2 {
		t.Errorf("expected 2 exchanges with limit=2, got %d", len(resp.Exchanges))
	}
	// Count reports the full archive size regardless of the limit.
	if resp.Count != 3 {
		t.Errorf("count: expected 3, got %d", resp.Count)
	}
}

func TestHandleHistory_InvalidLimit(t *testing.T) {
	t.Parallel()

	s := newHistoryTestServer(t, nil)

	for _, limit := range []string{"abc", "0", "-5"} {
		req := httptest.NewRequest(http.MethodGet, "/api/history?limit="+limit, nil)
		w := httptest.NewRecorder()

		s.handleHistory(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("limit=%q: expected 400, got %d", limit, w.Code)
		}
	}
}

func TestHandleHistory_ArchiveDisabled(t *testing.T) {
	t.Parallel()

	s := newTestServer() // no history wired
	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	w := httptest.NewRecorder()

	s.handleHistory(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 when archive disabled, got %d", w.Code)
	}
}

func TestHandleHistory_EmptyArchive(t *testing.T) {
	t.Parallel()

	s := newHistoryTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	w := httptest.NewRecorder()

	s.handleHistory(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp historyResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 0 || len(resp.Exchanges) != 0 {
		t.Errorf("expected empty response, got count=%d exchanges=%d",
			resp.Count, len(resp.Exchanges))
	}
}
