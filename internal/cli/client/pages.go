package client

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

// PageItemResponse represents a single page in the listing response.
type PageItemResponse struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	WebUI string `json:"webui,omitempty"`
}

// PagesAPIResponse represents the page listing API response.
type PagesAPIResponse struct {
	Space string             `json:"space"`
	Pages []PageItemResponse `json:"pages"`
}

// PagesCmd creates the pages command.
func PagesCmd() *cobra.Command {
	var space string

	cmd := &cobra.Command{
		Use:   "pages",
		Short: "List wiki pages",
		Long:  "Lists the page titles of a Confluence space, one per line.",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runPages(cmd, space, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&space, "space", "s", "", "Space key (server default if omitted)")

	return cmd
}

func runPages(cmd *cobra.Command, space string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	path := "/pages"
	if space != "" {
		path += "?space=" + url.QueryEscape(space)
	}

	resp, err := api.Get(path)
	if err != nil {
		return err
	}

	var listing PagesAPIResponse
	if err := json.Unmarshal(resp.Data, &listing); err != nil {
		return fmt.Errorf("failed to parse pages response: %w", err)
	}

	if outputJSON {
		data, err := json.MarshalIndent(listing, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal listing: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	for _, page := range listing.Pages {
		fmt.Println(page.Title)
	}
	return nil
}
