package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/54b3r/recall-go/internal/archive"
	"github.com/54b3r/recall-go/internal/embedder"
	"github.com/54b3r/recall-go/internal/rag"
)

// buildEmbedder validates embedding configuration and constructs the
// embedder from environment variables. Validation failures are fatal — an
// embedder with wrong credentials would poison the index with garbage.
func buildEmbedder(log *slog.Logger) (rag.Embedder, error) {
	if err := embedder.Validate(log); err != nil {
		return nil, fmt.Errorf("embedder validation failed: %w", err)
	}

	emb, err := embedder.NewFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to initialise embedder: %w", err)
	}
	log.Info("embedder initialised", slog.String("backend", embedder.ResolveBackend()))

	return emb, nil
}

// buildIndex connects to Qdrant using QDRANT_* environment variables and
// ensures the dialogue collection exists with the right vector dimensions.
func buildIndex(ctx context.Context, log *slog.Logger) (*rag.QdrantIndex, error) {
	host := getEnvOrDefault("QDRANT_HOST", "localhost")
	port := getEnvInt("QDRANT_PORT", 6334)
	collection := getEnvOrDefault("QDRANT_COLLECTION", "dialogues")
	vectorSize := uint64(embedder.DefaultDimensions(embedder.ResolveBackend())) //nolint:gosec // dimensions are bounded

	index, err := rag.NewQdrantIndex(ctx, &rag.QdrantConfig{
		Host:       host,
		Port:       port,
		Collection: collection,
		VectorSize: vectorSize,
		APIKey:     os.Getenv("QDRANT_API_KEY"),
		UseTLS:     os.Getenv("QDRANT_TLS") == "true",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Qdrant at %s:%d: %w", host, port, err)
	}
	log.Info("qdrant index ready",
		slog.String("host", host),
		slog.Int("port", port),
		slog.String("collection", collection),
	)

	return index, nil
}

// buildArchive opens the SQLite exchange archive. RECALL_ARCHIVE_DB overrides
// the default path (~/.recall/exchanges.db); set it to "disabled" to skip
// archiving entirely. Open failures disable the archive with a warning —
// the assistant stays useful without its local history.
//
// The returned Recorder is nil when archiving is unavailable. Callers must
// pass that nil through as-is: wrapping it would produce a non-nil interface
// holding a nil pointer.
func buildArchive(log *slog.Logger) (archive.Recorder, func()) {
	dbPath := os.Getenv("RECALL_ARCHIVE_DB")
	if dbPath == "disabled" {
		log.Info("archive: disabled via RECALL_ARCHIVE_DB=disabled")
		return nil, func() {}
	}

	if dbPath == "" {
		var err error
		dbPath, err = archive.DefaultDBPath()
		if err != nil {
			log.Warn("archive: could not resolve default DB path, disabling", slog.Any("error", err))
			return nil, func() {}
		}
	}

	db, err := archive.Open(dbPath)
	if err != nil {
		log.Warn("archive: failed to open, disabling", slog.Any("error", err))
		return nil, func() {}
	}
	log.Info("archive: opened", slog.String("path", dbPath))

	return db, func() { _ = db.Close() }
}

// getEnvOrDefault returns the value of the named environment variable, or
// fallback if the variable is unset or empty.
func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt parses the named environment variable as an integer, returning
// fallback when unset or unparseable.
func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
