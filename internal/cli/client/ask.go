package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// AskAPIRequest represents the ask API request.
type AskAPIRequest struct {
	Question       string `json:"question"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// AskAPIResponse represents the ask API response.
type AskAPIResponse struct {
	Answer         string `json:"answer"`
	ConversationID string `json:"conversation_id"`
}

// AskCmd creates the ask command.
func AskCmd() *cobra.Command {
	var conversationID string

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask the assistant a question",
		Long:  "Sends a free-form question to the assistant, which searches the wiki for an answer.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runAsk(cmd, strings.Join(args, " "), conversationID, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&conversationID, "conversation", "c", "", "Conversation ID to continue a previous exchange")

	return cmd
}

func runAsk(cmd *cobra.Command, question, conversationID string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Post("/ask", AskAPIRequest{
		Question:       question,
		ConversationID: conversationID,
	})
	if err != nil {
		return err
	}

	var answer AskAPIResponse
	if err := json.Unmarshal(resp.Data, &answer); err != nil {
		return fmt.Errorf("failed to parse ask response: %w", err)
	}

	if outputJSON {
		data, err := json.MarshalIndent(answer, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal answer: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Println(answer.Answer)
	if conversationID == "" {
		fmt.Printf("\n(conversation %s)\n", answer.ConversationID)
	}
	return nil
}
