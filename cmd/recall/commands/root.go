// Package commands defines all Cobra CLI commands for the recall binary.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/54b3r/recall-go/internal/audit"
	"github.com/54b3r/recall-go/internal/config"
	"github.com/54b3r/recall-go/internal/logging"
)

// configPath holds the --config flag value for YAML config file override.
var configPath string

// loadedConfigPath stores the resolved config file path for audit logging.
var loadedConfigPath string

// NewRootCmd constructs the root Cobra command that all subcommands attach to.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "recall",
		Short: "recall — a dialogue assistant that remembers past conversations",
		Long: `recall is a local-first dialogue assistant with long-term memory.

Every answered question is embedded and indexed; future questions retrieve
the most similar past exchanges and feed them to the LLM as context, so the
assistant's answers improve as the conversation archive grows.

Model provider is selected via the MODEL_PROVIDER environment variable
or a YAML config file (~/.recall/config.yaml).
See 'recall --help' for available commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			log := logging.New()

			// Load YAML config (env vars always override YAML values).
			path, err := config.Load(configPath, log)
			if err != nil {
				return err
			}
			loadedConfigPath = path

			// Emit structured audit log for every command invocation.
			audit.LogCommandStart(log, cmd.Name(), loadedConfigPath)

			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (default: ~/.recall/config.yaml)")

	root.AddCommand(
		NewAskCmd(),
		NewServeCmd(),
		NewIngestCmd(),
		NewVersionCmd(),
	)

	return root
}
