package domain

import (
	"fmt"
	"time"
)

// SourceType represents how an entry was contributed
type SourceType string

const (
	SourceTypeManual SourceType = "manual"
	SourceTypeHelp   SourceType = "help"
	SourceTypeChat   SourceType = "chat"
)

// EntryMetadata carries optional linkage back to the conversation or
// question that produced the entry, plus free-form user tags.
type EntryMetadata struct {
	ConversationID string   `json:"conversation_id,omitempty"`
	QuestionID     string   `json:"question_id,omitempty"`
	Tags           []string `json:"tags,omitempty"`
}

// Entry is an immutable raw contribution to a space. Entries are created
// once and never mutated or deleted in normal operation.
type Entry struct {
	ID          string
	SpaceID     string
	Content     string
	SourceType  SourceType
	Contributor string
	Metadata    EntryMetadata
	CreatedAt   time.Time
}

// NewEntry creates a new Entry instance
func NewEntry(id, spaceID, content string, sourceType SourceType, contributor string, createdAt time.Time) *Entry {
	return &Entry{
		ID:          id,
		SpaceID:     spaceID,
		Content:     content,
		SourceType:  sourceType,
		Contributor: contributor,
		CreatedAt:   createdAt,
	}
}

// ValidateEntry validates an Entry instance
func ValidateEntry(e *Entry) error {
	if e == nil {
		return fmt.Errorf("entry cannot be nil")
	}

	if e.ID == "" {
		return fmt.Errorf("entry ID is required")
	}

	if e.SpaceID == "" {
		return fmt.Errorf("entry SpaceID is required")
	}

	if e.Content == "" {
		return fmt.Errorf("entry Content is required")
	}

	if !isValidSourceType(e.SourceType) {
		return fmt.Errorf("entry SourceType is invalid: %s", e.SourceType)
	}

	return nil
}

// isValidSourceType checks if a SourceType is valid
func isValidSourceType(t SourceType) bool {
	switch t {
	case SourceTypeManual, SourceTypeHelp, SourceTypeChat:
		return true
	}
	return false
}
