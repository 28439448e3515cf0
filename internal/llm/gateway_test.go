package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// completionsHandler returns an httptest handler that asserts the wire shape
// of the chat-completions request and replies with the given content.
func completionsHandler(t *testing.T, content string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Stream {
			t.Error("stream must be false")
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("expected a single user message, got %+v", req.Messages)
		}
		if req.Options.MaxTokens == 0 {
			t.Error("options.max_tokens not set")
		}

		var resp chatResponse
		resp.Choices = make([]struct {
			Message struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"message"`
		}, 1)
		resp.Choices[0].Message.Role = "assistant"
		resp.Choices[0].Message.Content = content
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*ChatClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewChatClient(&Config{
		BaseURL:     srv.URL,
		Model:       "deepseek-r1:14b",
		Temperature: 0.7,
		MaxTokens:   500,
	})
	if err != nil {
		t.Fatalf("NewChatClient failed: %v", err)
	}
	return client, srv
}

func TestChatClient_Generate(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, completionsHandler(t, "  Fever is elevated body temperature.\n"))

	got, err := client.Generate(context.Background(), "What is fever?")
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}
	if got != "Fever is elevated body temperature." {
		t.Errorf("Generate(): got %q, want trimmed content", got)
	}
}

func TestChatClient_NonSuccessStatus(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":{"message":"model overloaded"}}`))
	})

	_, err := client.Generate(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected error for 502 response, got nil")
	}
}

func TestChatClient_MalformedBody(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`this is not json`))
	})

	if _, err := client.Generate(context.Background(), "hello"); err == nil {
		t.Fatal("expected error for malformed body, got nil")
	}
}

func TestChatClient_EmptyChoices(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	if _, err := client.Generate(context.Background(), "hello"); err == nil {
		t.Fatal("expected error for empty choices, got nil")
	}
}

func TestChatClient_Unreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client, err := NewChatClient(&Config{BaseURL: srv.URL, Model: "m"})
	if err != nil {
		t.Fatalf("NewChatClient failed: %v", err)
	}

	if _, err := client.Generate(context.Background(), "hello"); err == nil {
		t.Fatal("expected error for unreachable backend, got nil")
	}
}

func TestNewChatClient_Validation(t *testing.T) {
	t.Parallel()

	if _, err := NewChatClient(&Config{Model: "m"}); err == nil {
		t.Error("expected error for missing base URL")
	}
	if _, err := NewChatClient(&Config{BaseURL: "http://localhost:11434"}); err == nil {
		t.Error("expected error for missing model")
	}
}

func TestNewFromEnv_UnknownBackend(t *testing.T) {
	t.Setenv("MODEL_PROVIDER", "bedrock")

	if _, err := NewFromEnv(); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestNewFromEnv_OpenAIRequiresKey(t *testing.T) {
	t.Setenv("MODEL_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "")

	if _, err := NewFromEnv(); err == nil {
		t.Fatal("expected error for openai backend with no API key")
	}
}
