package main

import (
	"fmt"
	"os"

	"github.com/cloo-solutions/fingertips/internal/cli"
	"github.com/cloo-solutions/fingertips/internal/cli/client"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "fingertips",
		Short: "Fingertips CLI - Confluence answers at your fingertips",
		Long: `Fingertips CLI talks to the fingertips bot server and local desktop tools.

Environment variables:
  FINGERTIPS_API_TOKEN   Operator API token for the bot server
  FINGERTIPS_API_URL     API base URL (default: http://localhost:8080)
  GOOGLE_OAUTH_TOKEN     OAuth token for the agenda command`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-token", "", "Operator API token (overrides env and config)")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env and config)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.PagesCmd())
	rootCmd.AddCommand(client.AskCmd())
	rootCmd.AddCommand(client.AgendaCmd())
	rootCmd.AddCommand(client.ResolutionCmd())
	rootCmd.AddCommand(client.AuthCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
