package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/54b3r/recall-go/internal/dialogue"
	"github.com/54b3r/recall-go/internal/engine"
	"github.com/54b3r/recall-go/internal/llm"
	"github.com/54b3r/recall-go/internal/logging"
)

// NewAskCmd constructs the `recall ask` command, which runs a single
// dialogue turn and prints the assistant's answer to stdout.
func NewAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask [message]",
		Short: "Ask the assistant a single question",
		Long: `Ask the assistant a question in a one-shot dialogue turn.

The question is embedded, similar past exchanges are retrieved from the
vector index as context, and the answer is generated by the configured
model. The completed exchange is indexed so future questions can draw
on it.

Examples:
  recall ask "what did we decide about the deployment schedule?"
  recall ask how do I rotate the staging credentials`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			emb, err := buildEmbedder(log)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}

			index, err := buildIndex(ctx, log)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}
			defer index.Close()

			gateway, err := llm.NewFromEnv()
			if err != nil {
				return fmt.Errorf("ask: failed to initialise model gateway: %w", err)
			}

			recorder, closeArchive := buildArchive(log)
			defer closeArchive()

			store, err := dialogue.NewStore(emb, index, recorder, log)
			if err != nil {
				return fmt.Errorf("ask: failed to create dialogue store: %w", err)
			}

			eng, err := engine.New(&engine.Config{
				Embedder: emb,
				Index:    index,
				Gateway:  gateway,
				Store:    store,
				Logger:   log,
			})
			if err != nil {
				return fmt.Errorf("ask: failed to create engine: %w", err)
			}

			res := eng.HandleTurn(ctx, strings.Join(args, " "))
			if res.Error {
				return fmt.Errorf("ask: %s", res.Content)
			}

			fmt.Fprintln(cmd.OutOrStdout(), res.Content)
			return nil
		},
	}

	return cmd
}
