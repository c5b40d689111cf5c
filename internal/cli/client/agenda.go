package client

import (
	"encoding/json"
	"fmt"

	"github.com/cloo-solutions/fingertips/internal/calendar"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// AgendaCmd creates the agenda command.
func AgendaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agenda",
		Short: "Show upcoming calendar events",
		Long:  "Fetches the upcoming events of the primary Google Calendar using the GOOGLE_OAUTH_TOKEN environment variable.",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runAgenda(cmd, outputJSON)
		},
	}

	return cmd
}

func runAgenda(cmd *cobra.Command, outputJSON bool) error {
	_ = godotenv.Load()

	cal, err := calendar.NewClientFromEnv()
	if err != nil {
		return err
	}

	events, err := cal.Upcoming(cmd.Context())
	if err != nil {
		return err
	}

	if outputJSON {
		data, err := json.MarshalIndent(events, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal events: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	if len(events) == 0 {
		fmt.Println("No upcoming events")
		return nil
	}

	for _, event := range events {
		fmt.Printf("%s  %s\n", event.Start, event.Summary)
	}
	return nil
}
