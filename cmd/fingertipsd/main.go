package main

import (
	"fmt"
	"os"

	"github.com/cloo-solutions/fingertips/internal/cli"
	"github.com/cloo-solutions/fingertips/internal/cli/admin"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "fingertipsd",
		Short: "Fingertips daemon",
		Long:  "Fingertips daemon for running the Slack event server and operator API",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
