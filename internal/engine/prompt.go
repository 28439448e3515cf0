package engine

import (
	"fmt"
	"strings"

	"github.com/54b3r/recall-go/internal/rag"
)

// preamble establishes the assistant persona at the top of every prompt.
const preamble = "You are a helpful and knowledgeable assistant."

// contextHeader introduces the retrieved exchanges when any are present.
const contextHeader = "Based on similar conversations:"

// maxContextPairs caps how many retrieved exchanges are rendered into the
// prompt, regardless of how many the index returned.
const maxContextPairs = 3

// composePrompt assembles the full generation prompt: persona preamble,
// an optional block of similar past exchanges, and the current user message.
func composePrompt(message string, similar []rag.RetrievalResult) string {
	var sb strings.Builder
	sb.WriteString(preamble)
	sb.WriteString("\n\n")

	if block := buildContextBlock(similar); block != "" {
		sb.WriteString(contextHeader)
		sb.WriteString("\n")
		sb.WriteString(block)
		sb.WriteString("\n\n")
	}

	fmt.Fprintf(&sb, "User: %s\nAssistant:", message)
	return sb.String()
}

// buildContextBlock renders retrieved exchanges as Q/A pairs separated by
// blank lines. Returns an empty string when there is nothing to render.
func buildContextBlock(similar []rag.RetrievalResult) string {
	if len(similar) == 0 {
		return ""
	}
	if len(similar) > maxContextPairs {
		similar = similar[:maxContextPairs]
	}

	pairs := make([]string, 0, len(similar))
	for _, r := range similar {
		pairs = append(pairs, fmt.Sprintf("Q: %s\nA: %s", r.UserText, r.AssistantText))
	}
	return strings.Join(pairs, "\n\n")
}
