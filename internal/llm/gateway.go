// Package llm provides the gateway to the text-generation backend. The
// gateway speaks the OpenAI-compatible chat-completions wire format that
// Ollama exposes at /v1/chat/completions, so the same client covers a local
// Ollama instance and any OpenAI-compatible hosted endpoint.
//
// The gateway reports failures as errors; it never substitutes fallback
// text itself. Which apology the user sees on failure is a policy decision
// that belongs to the engine, not to this transport layer.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// defaultRequestTimeout bounds the full generation round trip. Local models
// can be slow on first load, so the default is generous; override with
// Config.Timeout.
const defaultRequestTimeout = 2 * time.Minute

// Gateway is the interface the engine uses to generate a response for a
// composed prompt. Implementations must be safe to call from multiple
// goroutines.
type Gateway interface {
	// Generate sends the prompt to the backend and returns the generated
	// text, or an error on network failure, timeout, non-success status, or
	// a malformed response body.
	Generate(ctx context.Context, prompt string) (string, error)
}

// Config holds the settings for constructing a ChatClient.
type Config struct {
	// BaseURL is the inference server base URL
	// (e.g. "http://localhost:11434" for Ollama).
	BaseURL string

	// Model is the model identifier sent with every request
	// (e.g. "deepseek-r1:14b").
	Model string

	// APIKey is an optional Bearer token for hosted OpenAI-compatible
	// endpoints. Empty for local Ollama.
	APIKey string

	// Temperature controls sampling randomness.
	Temperature float32

	// MaxTokens caps the generated response length.
	MaxTokens int

	// Timeout bounds each generation request. Defaults to 2m if zero.
	Timeout time.Duration
}

// ChatClient implements Gateway against an OpenAI-compatible
// /v1/chat/completions endpoint.
type ChatClient struct {
	// cfg holds the resolved configuration for this client.
	cfg *Config
	// client is the shared HTTP client with a request timeout.
	client *http.Client
}

// NewChatClient constructs a ChatClient from the given config. A missing
// backend address is a configuration fault and fails immediately rather than
// on the first turn.
func NewChatClient(cfg *Config) (*ChatClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("llm: backend base URL must not be empty")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("llm: model identifier must not be empty")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &ChatClient{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}, nil
}

// chatMessage is one message in the chat-completions request body.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatOptions carries the generation parameters.
type chatOptions struct {
	Temperature float32 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

// chatRequest is the JSON body sent to /v1/chat/completions.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  chatOptions   `json:"options"`
}

// chatResponse is the JSON body returned from /v1/chat/completions.
// The generated text lives at choices[0].message.content.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Generate sends the composed prompt as a single user message and returns
// the generated text with surrounding whitespace trimmed.
func (c *ChatClient) Generate(ctx context.Context, prompt string) (string, error) {
	body := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
		Stream: false,
		Options: chatOptions{
			Temperature: c.cfg.Temperature,
			MaxTokens:   c.cfg.MaxTokens,
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("llm: marshal request: %w", err)
	}

	url := c.cfg.BaseURL + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("llm: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm: request failed: %w", err)
	}
	defer resp.Body.Close()

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("llm: decode response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := fmt.Sprintf("HTTP %d", resp.StatusCode)
		if result.Error != nil {
			msg = result.Error.Message
		}
		return "", fmt.Errorf("llm: %s", msg)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("llm: response contains no choices")
	}

	content := strings.TrimSpace(result.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("llm: response contains empty content")
	}

	return content, nil
}

// Ping checks backend reachability with a plain GET against the base URL.
// Ollama answers 200 on "/"; OpenAI-compatible servers answer something
// non-5xx. Used by the server's readiness probe.
func (c *ChatClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("backend unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("backend returned HTTP %d", resp.StatusCode)
	}
	return nil
}

// Model returns the configured model identifier, used for startup logging.
func (c *ChatClient) Model() string { return c.cfg.Model }
