package commands

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/54b3r/recall-go/internal/dialogue"
	"github.com/54b3r/recall-go/internal/engine"
	"github.com/54b3r/recall-go/internal/llm"
	"github.com/54b3r/recall-go/internal/logging"
	"github.com/54b3r/recall-go/internal/server"
)

// NewServeCmd constructs the `recall serve` command, which starts the HTTP
// API for interactive dialogue.
func NewServeCmd() *cobra.Command {
	var host string
	var port int
	var seedFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the recall HTTP server",
		Long: `Start the recall HTTP server on localhost.

The server exposes a JSON API: POST /api/chat answers a message with
context retrieved from past conversations, GET /api/history lists recent
exchanges, and /api/health, /api/ready and /metrics cover operations.

With --seed-file, the vector index is reset and repopulated from the given
JSON dialogue file before the server begins listening.

Examples:
  recall serve
  recall serve --port 9090
  recall serve --seed-file dialogues.json
  MODEL_PROVIDER=openai recall serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			// Flags win over SERVER_HOST/SERVER_PORT (set from YAML config).
			if !cmd.Flags().Changed("host") {
				host = getEnvOrDefault("SERVER_HOST", host)
			}
			if !cmd.Flags().Changed("port") {
				port = getEnvInt("SERVER_PORT", port)
			}

			log.Info("serve starting", slog.String("provider", getEnvOrDefault("MODEL_PROVIDER", "ollama")))

			emb, err := buildEmbedder(log)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}

			index, err := buildIndex(ctx, log)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			defer index.Close()

			gateway, err := llm.NewFromEnv()
			if err != nil {
				return fmt.Errorf("serve: failed to initialise model gateway: %w", err)
			}
			log.Info("model gateway initialised", slog.String("model", gateway.Model()))

			recorder, closeArchive := buildArchive(log)
			defer closeArchive()

			store, err := dialogue.NewStore(emb, index, recorder, log)
			if err != nil {
				return fmt.Errorf("serve: failed to create dialogue store: %w", err)
			}

			if seedFile != "" {
				log.Info("seeding index", slog.String("file", seedFile))
				if err := index.Reset(ctx); err != nil {
					return fmt.Errorf("serve: failed to reset index for seeding: %w", err)
				}
				tally, err := store.IngestFile(ctx, seedFile)
				if err != nil {
					return fmt.Errorf("serve: seeding failed: %w", err)
				}
				log.Info("seeding complete",
					slog.Int("total", tally.Total),
					slog.Int("succeeded", tally.Succeeded),
					slog.Int("skipped", tally.Skipped),
					slog.Int("failed", len(tally.Failures)),
				)
			}

			eng, err := engine.New(&engine.Config{
				Embedder: emb,
				Index:    index,
				Gateway:  gateway,
				Store:    store,
				Logger:   log,
			})
			if err != nil {
				return fmt.Errorf("serve: failed to create engine: %w", err)
			}

			srv, err := server.New(eng, &server.Config{
				Host:    host,
				Port:    port,
				Logger:  log,
				History: recorder,
				APIKey:  os.Getenv("RECALL_API_KEY"),
				Pingers: []server.Pinger{
					server.NewLLMPinger(gateway, getEnvOrDefault("MODEL_PROVIDER", "ollama")),
					server.NewIndexPinger(index),
				},
			})
			if err != nil {
				return fmt.Errorf("serve: failed to create server: %w", err)
			}

			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "Host address to bind to")
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "TCP port to listen on")
	cmd.Flags().StringVar(&seedFile, "seed-file", "", "JSON dialogue file to reset and seed the index from before serving")

	return cmd
}
