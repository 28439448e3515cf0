package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/54b3r/recall-go/internal/dialogue"
	"github.com/54b3r/recall-go/internal/logging"
)

// NewIngestCmd constructs the `recall ingest` command, which loads a JSON
// dialogue file into the vector index and exchange archive.
func NewIngestCmd() *cobra.Command {
	var file string
	var reset bool

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest a JSON dialogue file into the vector index",
		Long: `Embed and index past dialogues from a JSON file.

The file may be a JSON array of exchanges, a single exchange object, or
newline-delimited JSON. Each exchange needs "user" and "assistant" fields;
an "id" is generated when absent. Blank exchanges are skipped and a failing
exchange does not abort the rest of the file.

Required environment variables:
  QDRANT_HOST          Qdrant server hostname (default: localhost)
  QDRANT_PORT          Qdrant gRPC port (default: 6334)
  QDRANT_COLLECTION    Collection name (default: dialogues)
  QDRANT_API_KEY       Optional API key for authenticated clusters
  EMBEDDING_PROVIDER   Embedding backend: ollama, openai (default: MODEL_PROVIDER)

Examples:
  recall ingest --file dialogues.json
  recall ingest --file dialogues.json --reset`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			if file == "" {
				return fmt.Errorf("ingest: --file is required")
			}

			emb, err := buildEmbedder(log)
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}

			index, err := buildIndex(ctx, log)
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}
			defer index.Close()

			if reset {
				log.Info("resetting collection before ingest")
				if err := index.Reset(ctx); err != nil {
					return fmt.Errorf("ingest: failed to reset collection: %w", err)
				}
			}

			recorder, closeArchive := buildArchive(log)
			defer closeArchive()

			store, err := dialogue.NewStore(emb, index, recorder, log)
			if err != nil {
				return fmt.Errorf("ingest: failed to create dialogue store: %w", err)
			}

			tally, err := store.IngestFile(ctx, file)
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}

			log.Info("ingestion complete",
				slog.String("file", file),
				slog.Int("total", tally.Total),
				slog.Int("succeeded", tally.Succeeded),
				slog.Int("skipped", tally.Skipped),
				slog.Int("failed", len(tally.Failures)),
			)
			for _, f := range tally.Failures {
				log.Warn("exchange failed", slog.Int("index", f.Index), slog.String("reason", f.Reason))
			}

			if len(tally.Failures) > 0 {
				return fmt.Errorf("ingest: %d of %d exchanges failed", len(tally.Failures), tally.Total)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to the JSON dialogue file to ingest")
	cmd.Flags().BoolVar(&reset, "reset", false, "Drop and recreate the collection before ingesting")

	return cmd
}
