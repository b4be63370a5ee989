package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

// EntryListResponse represents the entry list API response.
type EntryListResponse struct {
	Items   []Entry `json:"items"`
	Cursor  string  `json:"cursor,omitempty"`
	HasMore bool    `json:"has_more"`
}

// EntriesCmd creates the entries command.
func EntriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entries",
		Short: "Browse raw entries",
		Long:  "List entries in the knowledge space or show a single entry.",
	}

	cmd.AddCommand(entriesListCmd())
	cmd.AddCommand(entriesGetCmd())

	return cmd
}

func entriesListCmd() *cobra.Command {
	var (
		limit  int
		cursor string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List entries, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runEntriesList(limit, cursor, outputJSON)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of results")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Pagination cursor from previous response")

	return cmd
}

func runEntriesList(limit int, cursor string, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	params := url.Values{}
	if limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", limit))
	}
	if cursor != "" {
		params.Set("cursor", cursor)
	}

	path := "/entries"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	resp, err := api.Get(path)
	if err != nil {
		return fmt.Errorf("failed to list entries: %w", err)
	}

	var list EntryListResponse
	if err := json.Unmarshal(resp.Data, &list); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(list, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(list.Items) == 0 {
		fmt.Println("No entries found.")
		return nil
	}

	for _, entry := range list.Items {
		content := strings.ReplaceAll(entry.Content, "\n", " ")
		if len(content) > 80 {
			content = content[:77] + "..."
		}
		contributor := entry.Contributor
		if contributor == "" {
			contributor = "-"
		}
		fmt.Printf("%s  %-6s  %-12s  %s\n", entry.ID, entry.SourceType, contributor, content)
	}

	if list.HasMore && list.Cursor != "" {
		fmt.Printf("\nMore results available. Use --cursor %s\n", list.Cursor)
	}

	return nil
}

func entriesGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a single entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runEntriesGet(args[0], outputJSON)
		},
	}

	return cmd
}

func runEntriesGet(id string, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	resp, err := api.Get("/entries/" + id)
	if err != nil {
		return fmt.Errorf("failed to get entry: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(resp.Data, &entry); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(entry, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("ID: %s\n", entry.ID)
	fmt.Printf("Source: %s\n", entry.SourceType)
	if entry.Contributor != "" {
		fmt.Printf("Contributor: %s\n", entry.Contributor)
	}
	if len(entry.Metadata.Tags) > 0 {
		fmt.Printf("Tags: %s\n", strings.Join(entry.Metadata.Tags, ", "))
	}
	fmt.Printf("Created: %s\n\n", entry.CreatedAt)
	fmt.Println(entry.Content)

	return nil
}
