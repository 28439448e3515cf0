package dialogue

import (
	"strings"
	"testing"
)

func TestCombinedText(t *testing.T) {
	t.Parallel()
	ex := Exchange{UserText: "What is Go?", AssistantText: "A programming language."}
	want := "Question: What is Go?\nAnswer: A programming language."
	if got := ex.CombinedText(); got != want {
		t.Errorf("CombinedText() = %q, want %q", got, want)
	}
}

func TestDecodeExchanges_Array(t *testing.T) {
	t.Parallel()
	input := `[
		{"user": "q1", "assistant": "a1"},
		{"user": "q2", "assistant": "a2"}
	]`
	exchanges, err := DecodeExchanges(strings.NewReader(input))
	if err != nil {
		t.Fatalf("DecodeExchanges failed: %v", err)
	}
	if len(exchanges) != 2 {
		t.Fatalf("got %d exchanges, want 2", len(exchanges))
	}
	if exchanges[0].UserText != "q1" || exchanges[1].AssistantText != "a2" {
		t.Errorf("unexpected exchanges: %+v", exchanges)
	}
}

func TestDecodeExchanges_SingleObject(t *testing.T) {
	t.Parallel()
	input := `{"user": "only question", "assistant": "only answer"}`
	exchanges, err := DecodeExchanges(strings.NewReader(input))
	if err != nil {
		t.Fatalf("DecodeExchanges failed: %v", err)
	}
	if len(exchanges) != 1 {
		t.Fatalf("got %d exchanges, want 1", len(exchanges))
	}
	if exchanges[0].UserText != "only question" {
		t.Errorf("user text = %q", exchanges[0].UserText)
	}
}

func TestDecodeExchanges_NDJSON(t *testing.T) {
	t.Parallel()
	input := `{"user": "q1", "assistant": "a1"}
{"user": "q2", "assistant": "a2"}
{"user": "q3", "assistant": "a3"}`
	exchanges, err := DecodeExchanges(strings.NewReader(input))
	if err != nil {
		t.Fatalf("DecodeExchanges failed: %v", err)
	}
	if len(exchanges) != 3 {
		t.Fatalf("got %d exchanges, want 3", len(exchanges))
	}
	if exchanges[2].UserText != "q3" {
		t.Errorf("third user text = %q, want q3", exchanges[2].UserText)
	}
}

func TestDecodeExchanges_Empty(t *testing.T) {
	t.Parallel()
	if _, err := DecodeExchanges(strings.NewReader("   \n  ")); err == nil {
		t.Error("expected error for empty input")
	}
}

func TestDecodeExchanges_Invalid(t *testing.T) {
	t.Parallel()
	if _, err := DecodeExchanges(strings.NewReader("not json at all")); err == nil {
		t.Error("expected error for invalid JSON")
	}
	if _, err := DecodeExchanges(strings.NewReader(`[{"user": "q"}`)); err == nil {
		t.Error("expected error for truncated array")
	}
}
