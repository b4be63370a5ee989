package client

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// CreateEntryRequest represents the create entry API request.
type CreateEntryRequest struct {
	Content     string        `json:"content"`
	SourceType  string        `json:"source_type,omitempty"`
	Contributor string        `json:"contributor,omitempty"`
	Metadata    EntryMetadata `json:"metadata,omitempty"`
}

// EntryMetadata mirrors the optional metadata accepted by the API.
type EntryMetadata struct {
	ConversationID string   `json:"conversation_id,omitempty"`
	QuestionID     string   `json:"question_id,omitempty"`
	Tags           []string `json:"tags,omitempty"`
}

// Entry represents an entry returned by the API.
type Entry struct {
	ID          string        `json:"id"`
	SpaceID     string        `json:"space_id"`
	Content     string        `json:"content"`
	SourceType  string        `json:"source_type"`
	Contributor string        `json:"contributor,omitempty"`
	Metadata    EntryMetadata `json:"metadata"`
	CreatedAt   string        `json:"created_at"`
}

// PostCmd creates the post command.
func PostCmd() *cobra.Command {
	var (
		file        string
		sourceType  string
		contributor string
		tags        []string
	)

	cmd := &cobra.Command{
		Use:   "post [content]",
		Short: "Post an entry to the shared knowledge space",
		Long: `Posts a knowledge entry. Content comes from the argument, a file, or stdin.

Examples:
  # Post inline content
  hivemind post "Deploys must go through the staging gate first."

  # Post from a file
  hivemind post --file notes.txt --contributor alice

  # Post from stdin with tags
  cat conversation.txt | hivemind post --source chat --tags deploys,ops`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			content := ""
			if len(args) == 1 {
				content = args[0]
			}
			return runPost(content, file, sourceType, contributor, tags, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Read entry content from file")
	cmd.Flags().StringVarP(&sourceType, "source", "s", "manual", "Source type (manual, help, chat)")
	cmd.Flags().StringVar(&contributor, "contributor", "", "Contributor name")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "Comma-separated tags")

	return cmd
}

func runPost(content, file, sourceType, contributor string, tags []string, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	if content == "" && file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		content = string(data)
	}
	if content == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		content = string(data)
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return fmt.Errorf("no content provided")
	}

	req := CreateEntryRequest{
		Content:     content,
		SourceType:  sourceType,
		Contributor: contributor,
		Metadata:    EntryMetadata{Tags: tags},
	}

	resp, err := api.Post("/entries", req)
	if err != nil {
		return fmt.Errorf("failed to post entry: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(resp.Data, &entry); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(entry, "", "  ")
		fmt.Println(string(output))
	} else {
		fmt.Printf("Posted entry: %s\n", entry.ID)
		fmt.Println("Topic extraction is queued; the entry will fold into summaries shortly.")
	}

	return nil
}
