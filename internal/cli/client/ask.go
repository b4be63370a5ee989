package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// QueryRequest represents the query API request.
type QueryRequest struct {
	Query string `json:"query"`
}

// EntrySource represents one original entry cited by an answer.
type EntrySource struct {
	EntryID     string `json:"entry_id"`
	Content     string `json:"content"`
	SourceType  string `json:"source_type,omitempty"`
	Contributor string `json:"contributor,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
	Missing     bool   `json:"missing,omitempty"`
}

// QueryResult represents the query API response.
type QueryResult struct {
	ID               string              `json:"id"`
	Query            string              `json:"query"`
	Answer           string              `json:"answer"`
	SummariesUsed    []string            `json:"summaries_used"`
	TopicsReferenced map[string][]string `json:"topics_referenced"`
	OriginalEntries  []string            `json:"original_entries"`
	EntryDetails     []EntrySource       `json:"entry_details"`
	Confidence       float64             `json:"confidence"`
	InsufficientInfo bool                `json:"insufficient_info"`
	CreatedAt        string              `json:"created_at"`
}

// AskCmd creates the ask command.
func AskCmd() *cobra.Command {
	var showSources bool

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask the shared knowledge space a question",
		Long:  "Resolves a question against the accumulated summaries and cites the original entries behind the answer.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runAsk(args[0], showSources, outputJSON)
		},
	}

	cmd.Flags().BoolVar(&showSources, "sources", false, "Show the original entries behind the answer")

	return cmd
}

func runAsk(question string, showSources, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	resp, err := api.Post("/query", QueryRequest{Query: question})
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	var result QueryResult
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return fmt.Errorf("failed to parse query result: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if result.InsufficientInfo {
		fmt.Println("The knowledge space does not have enough information to answer that.")
		return nil
	}

	fmt.Println(result.Answer)
	fmt.Printf("\nConfidence: %.2f\n", result.Confidence)

	if len(result.SummariesUsed) > 0 {
		fmt.Printf("Summaries used: %s\n", strings.Join(result.SummariesUsed, ", "))
	}

	if showSources && len(result.EntryDetails) > 0 {
		fmt.Printf("\nSources (%d entries):\n", len(result.EntryDetails))
		for i, src := range result.EntryDetails {
			fmt.Printf("%d. [%s]", i+1, src.EntryID)
			if src.Contributor != "" {
				fmt.Printf(" by %s", src.Contributor)
			}
			fmt.Println()

			content := src.Content
			if len(content) > 200 {
				content = content[:197] + "..."
			}
			fmt.Printf("   %s\n", content)
		}
	}

	return nil
}
