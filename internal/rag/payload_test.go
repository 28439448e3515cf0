package rag

import (
	"testing"

	"github.com/qdrant/go-client/qdrant"
)

func TestRecordPayload_AllFields(t *testing.T) {
	t.Parallel()

	rec := IndexedRecord{
		ID:            "11111111-2222-3333-4444-555555555555",
		Type:          RecordQuestion,
		ExchangeID:    "ex-1",
		UserText:      "What is fever?",
		AssistantText: "Fever is elevated body temperature.",
		CombinedText:  "Question: What is fever?\nAnswer: Fever is elevated body temperature.",
	}

	payload := recordPayload(rec)

	want := map[string]string{
		"type":           "question",
		"exchange_id":    "ex-1",
		"user_text":      "What is fever?",
		"assistant_text": "Fever is elevated body temperature.",
		"combined_text":  "Question: What is fever?\nAnswer: Fever is elevated body temperature.",
	}
	for k, v := range want {
		got, ok := payload[k]
		if !ok {
			t.Errorf("payload missing key %q", k)
			continue
		}
		if got != v {
			t.Errorf("payload[%q]: got %v, want %q", k, got, v)
		}
	}
}

func TestResultFromPayload_RoundTrip(t *testing.T) {
	t.Parallel()

	rec := IndexedRecord{
		Type:          RecordCombined,
		ExchangeID:    "ex-42",
		UserText:      "q",
		AssistantText: "a",
		CombinedText:  "Question: q\nAnswer: a",
	}
	payload := qdrant.NewValueMap(recordPayload(rec))

	res := resultFromPayload(0.93, payload)

	if res.ExchangeID != "ex-42" {
		t.Errorf("ExchangeID: got %q, want %q", res.ExchangeID, "ex-42")
	}
	if res.UserText != "q" || res.AssistantText != "a" {
		t.Errorf("texts: got (%q, %q), want (q, a)", res.UserText, res.AssistantText)
	}
	if res.Score != 0.93 {
		t.Errorf("Score: got %v, want 0.93", res.Score)
	}
}

func TestResultFromPayload_NilPayload(t *testing.T) {
	t.Parallel()

	res := resultFromPayload(0.5, nil)
	if res.ExchangeID != "" || res.UserText != "" || res.AssistantText != "" {
		t.Errorf("expected zero-value fields for nil payload, got %+v", res)
	}
	if res.Score != 0.5 {
		t.Errorf("Score: got %v, want 0.5", res.Score)
	}
}
