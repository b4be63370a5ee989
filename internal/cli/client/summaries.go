package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

// Summary represents a summary returned by the API.
type Summary struct {
	ID                  string              `json:"id"`
	SpaceID             string              `json:"space_id"`
	Domain              string              `json:"domain"`
	Subtopic            string              `json:"subtopic"`
	Content             string              `json:"content"`
	TopicSources        map[string][]string `json:"topic_sources"`
	ContributingEntries []string            `json:"contributing_entries"`
	EntryCount          int                 `json:"entry_count"`
	Version             int64               `json:"version"`
	CreatedAt           string              `json:"created_at"`
	LastUpdated         string              `json:"last_updated"`
}

// SummaryListResponse represents the summary list API response.
type SummaryListResponse struct {
	Items   []Summary `json:"items"`
	Cursor  string    `json:"cursor,omitempty"`
	HasMore bool      `json:"has_more"`
}

// DomainListResponse represents the domain list API response.
type DomainListResponse struct {
	Domains []string `json:"domains"`
}

// SummariesCmd creates the summaries command.
func SummariesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summaries",
		Short: "Browse accumulated summaries",
		Long:  "List summaries in the knowledge space, show one in full, or list the known domains.",
	}

	cmd.AddCommand(summariesListCmd())
	cmd.AddCommand(summariesGetCmd())
	cmd.AddCommand(summariesDomainsCmd())

	return cmd
}

func summariesListCmd() *cobra.Command {
	var (
		limit  int
		cursor string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List summaries, most recently updated first",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runSummariesList(limit, cursor, outputJSON)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of results")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Pagination cursor from previous response")

	return cmd
}

func runSummariesList(limit int, cursor string, outputJSON bool) error {
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

	path := "/summaries"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	resp, err := api.Get(path)
	if err != nil {
		return fmt.Errorf("failed to list summaries: %w", err)
	}

	var list SummaryListResponse
	if err := json.Unmarshal(resp.Data, &list); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(list, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(list.Items) == 0 {
		fmt.Println("No summaries found.")
		return nil
	}

	for _, s := range list.Items {
		fmt.Printf("%s  (%d entries, v%d, updated %s)\n", s.ID, s.EntryCount, s.Version, s.LastUpdated)
	}

	if list.HasMore && list.Cursor != "" {
		fmt.Printf("\nMore results available. Use --cursor %s\n", list.Cursor)
	}

	return nil
}

func summariesGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a single summary in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runSummariesGet(args[0], outputJSON)
		},
	}

	return cmd
}

func runSummariesGet(id string, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	resp, err := api.Get("/summaries/" + id)
	if err != nil {
		return fmt.Errorf("failed to get summary: %w", err)
	}

	var summary Summary
	if err := json.Unmarshal(resp.Data, &summary); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(summary, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("%s / %s (v%d, %d entries)\n\n", summary.Domain, summary.Subtopic, summary.Version, summary.EntryCount)
	fmt.Println(summary.Content)

	if len(summary.TopicSources) > 0 {
		fmt.Println("\nTopics:")
		for key, sources := range summary.TopicSources {
			fmt.Printf("  %s (%d entries)\n", key, len(sources))
		}
	}

	return nil
}

func summariesDomainsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "domains",
		Short: "List the domains the space has knowledge about",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runSummariesDomains(outputJSON)
		},
	}

	return cmd
}

func runSummariesDomains(outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	resp, err := api.Get("/summaries/domains")
	if err != nil {
		return fmt.Errorf("failed to list domains: %w", err)
	}

	var list DomainListResponse
	if err := json.Unmarshal(resp.Data, &list); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(list, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(list.Domains) == 0 {
		fmt.Println("No domains yet.")
		return nil
	}

	fmt.Println(strings.Join(list.Domains, "\n"))
	return nil
}
