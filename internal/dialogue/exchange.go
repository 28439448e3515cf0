// Package dialogue implements the dialogue store adapter. It turns user/
// assistant exchanges into indexed vector records: the user's question is
// embedded on its own for retrieval, and the combined question/answer text
// is embedded alongside it so the full exchange is preserved in the index.
// Bulk ingestion from JSON files is handled here as well, invoked by the
// `recall ingest` CLI command and the serve --seed-file flag.
package dialogue

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Exchange is a single user/assistant dialogue turn.
type Exchange struct {
	// ID uniquely identifies the exchange. Assigned on ingest if empty.
	ID string `json:"id,omitempty"`

	// Ordinal is the exchange's sequence number. Bulk ingestion assigns
	// 1..N in encounter order when the source does not supply one.
	Ordinal int64 `json:"ordinal,omitempty"`

	// UserText is the user's side of the exchange.
	UserText string `json:"user"`

	// AssistantText is the assistant's side of the exchange.
	AssistantText string `json:"assistant"`
}

// CombinedText renders the exchange as a single block of text for indexing.
func (e Exchange) CombinedText() string {
	return fmt.Sprintf("Question: %s\nAnswer: %s", e.UserText, e.AssistantText)
}

// DecodeExchanges parses exchanges from JSON input. Three layouts are
// accepted: a JSON array of exchange objects, a single exchange object, or
// newline-delimited JSON (one object per line).
func DecodeExchanges(r io.Reader) ([]Exchange, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("dialogue: reading input: %w", err)
	}

	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, fmt.Errorf("dialogue: empty input")
	}

	if strings.HasPrefix(trimmed, "[") {
		var exchanges []Exchange
		if err := json.Unmarshal([]byte(trimmed), &exchanges); err != nil {
			return nil, fmt.Errorf("dialogue: parsing JSON array: %w", err)
		}
		return exchanges, nil
	}

	// A stream decoder handles both a single object and NDJSON.
	dec := json.NewDecoder(strings.NewReader(trimmed))
	var exchanges []Exchange
	for {
		var ex Exchange
		if err := dec.Decode(&ex); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("dialogue: parsing JSON object %d: %w", len(exchanges)+1, err)
		}
		exchanges = append(exchanges, ex)
	}
	return exchanges, nil
}
