package dialogue

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/54b3r/recall-go/internal/archive"
	"github.com/54b3r/recall-go/internal/rag"
)

// Store persists dialogue exchanges into the vector index and, when
// configured, into the durable exchange archive. Each exchange produces
// two indexed records: a question record carrying the user text alone,
// and a combined record carrying the full question/answer text.
type Store struct {
	// embedder converts exchange texts into dense vector embeddings.
	embedder rag.Embedder

	// index receives the embedded records.
	index rag.VectorIndex

	// recorder is the optional durable archive. May be nil.
	recorder archive.Recorder

	// log is the structured logger for ingestion events.
	log *slog.Logger
}

// NewStore constructs a Store from the provided dependencies.
// The recorder is optional; pass nil to skip durable archiving.
func NewStore(embedder rag.Embedder, index rag.VectorIndex, recorder archive.Recorder, log *slog.Logger) (*Store, error) {
	if embedder == nil {
		return nil, fmt.Errorf("dialogue: embedder must not be nil")
	}
	if index == nil {
		return nil, fmt.Errorf("dialogue: index must not be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		embedder: embedder,
		index:    index,
		recorder: recorder,
		log:      log,
	}, nil
}

// Ingest embeds and indexes a single exchange. It returns false with a nil
// error when the exchange is skipped because either side is blank after
// trimming. Archive failures are logged and swallowed — the index write is
// what makes an exchange retrievable.
func (s *Store) Ingest(ctx context.Context, ex Exchange) (bool, error) {
	ex.UserText = strings.TrimSpace(ex.UserText)
	ex.AssistantText = strings.TrimSpace(ex.AssistantText)
	if ex.UserText == "" || ex.AssistantText == "" {
		return false, nil
	}
	if ex.ID == "" {
		ex.ID = uuid.NewString()
	}

	combined := ex.CombinedText()
	embeddings, err := s.embedder.Embed(ctx, []string{ex.UserText, combined})
	if err != nil {
		return false, fmt.Errorf("dialogue: embedding exchange %s: %w", ex.ID, err)
	}
	if len(embeddings) != 2 {
		return false, fmt.Errorf("dialogue: expected 2 embeddings for exchange %s, got %d", ex.ID, len(embeddings))
	}

	records := []rag.IndexedRecord{
		{
			ID:            uuid.NewString(),
			Vector:        embeddings[0],
			Type:          rag.RecordQuestion,
			ExchangeID:    ex.ID,
			Ordinal:       ex.Ordinal,
			UserText:      ex.UserText,
			AssistantText: ex.AssistantText,
		},
		{
			ID:            uuid.NewString(),
			Vector:        embeddings[1],
			Type:          rag.RecordCombined,
			ExchangeID:    ex.ID,
			Ordinal:       ex.Ordinal,
			UserText:      ex.UserText,
			AssistantText: ex.AssistantText,
			CombinedText:  combined,
		},
	}

	if err := s.index.Upsert(ctx, records); err != nil {
		return false, fmt.Errorf("dialogue: indexing exchange %s: %w", ex.ID, err)
	}

	if s.recorder != nil {
		if _, err := s.recorder.Append(ctx, ex.ID, ex.UserText, ex.AssistantText); err != nil {
			s.log.Warn("dialogue: archive append failed",
				slog.String("exchange_id", ex.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	return true, nil
}

// ItemFailure records one exchange that could not be ingested.
type ItemFailure struct {
	// Index is the 1-based position of the exchange in the input.
	Index int
	// Reason describes why ingestion failed.
	Reason string
}

// Tally summarises a bulk ingestion run.
type Tally struct {
	// Total is the number of exchanges found in the input.
	Total int
	// Succeeded is the number of exchanges ingested into the index.
	Succeeded int
	// Skipped is the number of exchanges skipped for blank text.
	Skipped int
	// Failures lists the exchanges that errored.
	Failures []ItemFailure
}

// IngestReader bulk-loads exchanges from JSON input. Ingestion is
// best-effort: a failing exchange is recorded in the tally and the run
// continues. An error is returned only when the input itself cannot be
// parsed or the context is cancelled.
func (s *Store) IngestReader(ctx context.Context, r io.Reader) (*Tally, error) {
	exchanges, err := DecodeExchanges(r)
	if err != nil {
		return nil, err
	}

	tally := &Tally{Total: len(exchanges)}
	for i, ex := range exchanges {
		if err := ctx.Err(); err != nil {
			return tally, fmt.Errorf("dialogue: ingestion cancelled: %w", err)
		}

		if ex.Ordinal == 0 {
			ex.Ordinal = int64(i + 1)
		}
		ingested, err := s.Ingest(ctx, ex)
		if err != nil {
			s.log.Warn("dialogue: exchange ingestion failed",
				slog.Int("index", i+1),
				slog.String("error", err.Error()),
			)
			tally.Failures = append(tally.Failures, ItemFailure{
				Index:  i + 1,
				Reason: err.Error(),
			})
			continue
		}
		if !ingested {
			tally.Skipped++
			continue
		}
		tally.Succeeded++
	}

	s.log.Info("dialogue: bulk ingestion complete",
		slog.Int("total", tally.Total),
		slog.Int("succeeded", tally.Succeeded),
		slog.Int("skipped", tally.Skipped),
		slog.Int("failed", len(tally.Failures)),
	)
	return tally, nil
}

// IngestFile bulk-loads exchanges from a JSON file on disk.
func (s *Store) IngestFile(ctx context.Context, path string) (*Tally, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dialogue: opening %s: %w", path, err)
	}
	defer f.Close()
	return s.IngestReader(ctx, f)
}
