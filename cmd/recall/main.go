// Command recall is the entry point for the recall dialogue assistant.
// It provides a CLI interface (via Cobra) and an HTTP server that answers
// questions with context retrieved from past conversations.
package main

import (
	"fmt"
	"os"

	"github.com/54b3r/recall-go/cmd/recall/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
