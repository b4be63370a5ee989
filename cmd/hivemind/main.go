package main

import (
	"fmt"
	"os"

	"github.com/hivemindhq/hivemind/internal/cli"
	"github.com/hivemindhq/hivemind/internal/cli/client"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "hivemind",
		Short: "Hivemind CLI - Shared knowledge for teams and agents",
		Long: `Hivemind CLI posts knowledge entries and asks questions against the
accumulated knowledge of a space.

Environment variables:
  HIVEMIND_API_KEY   API key for authentication (required)
  HIVEMIND_API_URL   API base URL (default: http://localhost:8080)`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-key", "", "API key for authentication (overrides env and config)")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env and config)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.InitCmd())
	rootCmd.AddCommand(client.PostCmd())
	rootCmd.AddCommand(client.AskCmd())
	rootCmd.AddCommand(client.EntriesCmd())
	rootCmd.AddCommand(client.SummariesCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
